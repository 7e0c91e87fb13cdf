// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package nuclide converts between the nuclide naming conventions used by
// the decay database ("Co060m"), dose factor tables ("Co60m") and reaction
// rate inputs ("co60m").
package nuclide

import (
	"fmt"
	"regexp"
	"strings"
)

// namePattern splits a nuclide name into element symbol, mass number and
// isomer suffix.
var namePattern = regexp.MustCompile(`^([A-Za-z]+)(\d+)([A-Za-z]*)$`)

// Parts is a parsed nuclide name.
type Parts struct {
	Element string
	Mass    int
	Isomer  string
}

// Parse splits name into its parts. The element symbol is capitalized and
// the isomer suffix lower-cased.
func Parse(name string) (Parts, error) {
	m := namePattern.FindStringSubmatch(strings.TrimSpace(name))
	if m == nil {
		return Parts{}, fmt.Errorf("invalid nuclide name %q", name)
	}
	var mass int
	if _, err := fmt.Sscanf(m[2], "%d", &mass); err != nil {
		return Parts{}, fmt.Errorf("invalid mass number in %q: %w", name, err)
	}
	return Parts{
		Element: capitalize(m[1]),
		Mass:    mass,
		Isomer:  strings.ToLower(m[3]),
	}, nil
}

// Long returns the decay database form of name: capitalized symbol and
// zero-padded three digit mass number ("co60m" -> "Co060m").
func Long(name string) (string, error) {
	p, err := Parse(name)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%03d%s", p.Element, p.Mass, p.Isomer), nil
}

// Short returns the dose table form of name without leading zeros
// ("Co060m" -> "Co60m").
func Short(name string) (string, error) {
	p, err := Parse(name)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%d%s", p.Element, p.Mass, p.Isomer), nil
}

// Element returns the capitalized element symbol of name.
func Element(name string) (string, error) {
	p, err := Parse(name)
	if err != nil {
		return "", err
	}
	return p.Element, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
