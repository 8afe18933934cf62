package siteengine

import (
	"fmt"
	"strconv"
	"strings"
)

// FilterEmpty removes empty/whitespace-only strings from a slice.
func FilterEmpty(vals []string) []string {
	var out []string
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// SplitList splits a textarea value on newlines and commas.
func SplitList(s string) []string {
	return FilterEmpty(strings.FieldsFunc(s, func(r rune) bool {
		return r == '\n' || r == ','
	}))
}

// SplitLines splits a textarea value into trimmed, non-empty lines.
func SplitLines(s string) []string {
	return FilterEmpty(strings.Split(s, "\n"))
}

func parseAmount(field, s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", field)
	}
	if v < 0 {
		return 0, fmt.Errorf("%s cannot be negative", field)
	}
	return v, nil
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
