package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/dmitrijs2005/shopkeeper/internal/flagx"
	"github.com/joho/godotenv"
)

// parseEnv overlays cfg with SHOPKEEPER_* variables. A dotenv file given
// with -env-file is loaded first; variables already set in the process
// environment win over the file. Unset variables leave cfg untouched.
func parseEnv(cfg *Config) error {
	if path := flagx.EnvFileFlags(); path != "" {
		if err := godotenv.Load(path); err != nil {
			return err
		}
	}
	return env.Parse(cfg)
}
