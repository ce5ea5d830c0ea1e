// Package sku builds human-legible stock-keeping identifiers of the form
// NAM-G-SIZE-COL-001.
package sku

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	namePlaceholder   = "XXX"
	genderPlaceholder = "X"
	sizePlaceholder   = "XXXX"
	colorPlaceholder  = "XXX"
)

// Base returns the hyphen-joined prefix derived from the product attributes.
// Missing attributes fall back to fixed placeholders.
func Base(name, gender, size, colorPrint string) string {
	return strings.Join([]string{
		segment(name, 3, namePlaceholder),
		segment(gender, 1, genderPlaceholder),
		segment(strings.NewReplacer("-", "", " ", "").Replace(size), 4, sizePlaceholder),
		segment(colorPrint, 3, colorPlaceholder),
	}, "-")
}

// segment upper-cases the first n runes of s and trims surrounding space.
func segment(s string, n int, placeholder string) string {
	if s == "" {
		return placeholder
	}
	if utf8.RuneCountInString(s) > n {
		s = string([]rune(s)[:n])
	}
	s = strings.TrimSpace(strings.ToUpper(s))
	if s == "" {
		return placeholder
	}
	return s
}

// Prefix is the LIKE-style prefix every SKU under base starts with.
func Prefix(base string) string { return base + "-" }

// Next returns base-<max+1> where max is the largest numeric suffix found
// among existing identifiers sharing the base. Suffixes are zero-padded to
// three digits and grow past 999 without a cap.
func Next(base string, existing []string) string {
	max := 0
	prefix := Prefix(base)
	for _, s := range existing {
		if !strings.HasPrefix(s, prefix) {
			continue
		}
		n, ok := Suffix(s)
		if ok && n > max {
			max = n
		}
	}
	return fmt.Sprintf("%s-%03d", base, max+1)
}

// Suffix parses the number after the final hyphen of s.
func Suffix(s string) (int, bool) {
	i := strings.LastIndex(s, "-")
	if i < 0 || i == len(s)-1 {
		return 0, false
	}
	n, err := strconv.Atoi(s[i+1:])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
