package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Window is the aggregation granularity of an analytics series.
type Window string

const (
	WindowWeek  Window = "week"
	WindowMonth Window = "month"
	WindowYear  Window = "year"
)

var ErrUnknownWindow = errors.New("unknown window, expected week, month or year")

func Windows() []Window {
	return []Window{WindowWeek, WindowMonth, WindowYear}
}

func ParseWindow(s string) (Window, error) {
	w := Window(strings.ToLower(strings.TrimSpace(s)))
	if !w.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownWindow, s)
	}
	return w, nil
}

func (w Window) Valid() bool {
	switch w {
	case WindowWeek, WindowMonth, WindowYear:
		return true
	}
	return false
}

// Point is one bar of a chart.
type Point struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

func (p *Point) UnmarshalJSON(b []byte) error {
	var raw struct {
		Label json.RawMessage `json:"label"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	label, err := flexString(raw.Label)
	if err != nil {
		return fmt.Errorf("label: %w", err)
	}
	value, err := flexFloat(raw.Value)
	if err != nil {
		return fmt.Errorf("value: %w", err)
	}

	p.Label, p.Value = label, value
	return nil
}

// Summary holds the dashboard counters.
type Summary struct {
	TotalCategories int     `json:"totalCategories"`
	TotalProducts   int     `json:"totalProducts"`
	TotalOrders     int     `json:"totalOrders"`
	TotalUsers      int     `json:"totalUsers"`
	TotalSales      float64 `json:"totalSales,omitempty"`
}

// flexFloat accepts 12, 12.5, "12.5" and null.
func flexFloat(b json.RawMessage) (float64, error) {
	s := strings.TrimSpace(string(b))
	if s == "" || s == "null" {
		return 0, nil
	}
	if strings.HasPrefix(s, `"`) {
		if err := json.Unmarshal(b, &s); err != nil {
			return 0, err
		}
	}
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// flexString accepts strings and numbers (e.g. a bare year 2024).
func flexString(b json.RawMessage) (string, error) {
	s := strings.TrimSpace(string(b))
	if s == "" || s == "null" {
		return "", nil
	}
	if strings.HasPrefix(s, `"`) {
		var out string
		err := json.Unmarshal(b, &out)
		return out, err
	}
	return s, nil
}

// Metric names an analytics series endpoint.
type Metric string

const (
	MetricOrders Metric = "orders"
	MetricSales  Metric = "sales"
)
