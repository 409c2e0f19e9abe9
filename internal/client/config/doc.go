// Package config loads runtime configuration for the shopkeeper console.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Environment variables SHOPKEEPER_*, optionally seeded from a dotenv
//     file selected via -env-file.
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-a string   REST base URL of the backend
//	-t int      request timeout (seconds)
//	-i int      online status check interval (seconds)
//	-d string   session database file
//	-p int      rows per page
//	-l string   log level
//
// # JSON schema
//
// Intervals use timex.Duration, so they may be strings like "3s" or integer
// nanoseconds. Keys that are absent keep their previous value:
//
//	{
//	  "server_url": "http://127.0.0.1:8000/api",
//	  "request_timeout": "10s",
//	  "online_check_interval": "3s",
//	  "session_db": "shopkeeper.db",
//	  "page_size": 5,
//	  "log_level": "info",
//	  "rate_limit": 10,
//	  "rate_burst": 5
//	}
package config
