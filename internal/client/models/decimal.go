package models

import (
	"encoding/json"
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var ErrInvalidDecimal = errors.New("invalid decimal value")

var decimalPattern = regexp.MustCompile(`^-?\d+(\.\d+)?$`)

// Decimal is an exact decimal amount kept in its textual form. The backend
// may send prices either as JSON numbers or as strings ("19.90"); both decode
// to the same value and the value is always sent back as a JSON number.
type Decimal struct {
	text string
}

func ParseDecimal(s string) (Decimal, error) {
	s = strings.TrimSpace(s)
	if !decimalPattern.MatchString(s) {
		// exponent forms such as 1e2 or 1.5E-1, which JSON allows
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || !strings.ContainsAny(s, "eE") {
			return Decimal{}, ErrInvalidDecimal
		}
		s = strconv.FormatFloat(f, 'f', -1, 64)
	}

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, hasFrac := strings.Cut(s, ".")
	intPart = strings.TrimLeft(intPart, "0")
	if intPart == "" {
		intPart = "0"
	}
	if hasFrac {
		intPart += "." + frac
	}
	return Decimal{text: sign + intPart}, nil
}

func MustDecimal(s string) Decimal {
	d, err := ParseDecimal(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Decimal) String() string {
	if d.text == "" {
		return "0"
	}
	return d.text
}

func (d Decimal) IsNegative() bool {
	return strings.HasPrefix(d.text, "-") && strings.Trim(d.text, "-0.") != ""
}

// Float64 is for display and charting only.
func (d Decimal) Float64() float64 {
	f, _ := strconv.ParseFloat(d.String(), 64)
	return f
}

func (d Decimal) MarshalJSON() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Decimal) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*d = Decimal{}
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
	}
	parsed, err := ParseDecimal(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
