// Package catalog holds the date and time patterns recognized in free text
// and the month-name table used to resolve named months.
//
// A Catalog is immutable once built and safe for concurrent use. Patterns are
// compiled as case-insensitive RE2 expressions, so matching runs in time linear
// in the input length.
package catalog

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"
)

// Pattern is a single named regular expression in the catalog.
type Pattern struct {
	// Name identifies the pattern in diagnostics.
	Name string

	// Expr is the expression source, without the case-insensitivity flag.
	Expr string

	// Fields is the number of capture groups the expression must have.
	Fields int

	// Examples are phrases the pattern is expected to match.
	Examples []string

	re *regexp.Regexp
}

// Regexp returns the compiled expression. It is nil for patterns that were
// not obtained from a Catalog.
func (p Pattern) Regexp() *regexp.Regexp {
	return p.re
}

// Catalog is an ordered set of date and time patterns plus a month table.
type Catalog struct {
	dates  []Pattern
	times  []Pattern
	months map[string]int
}

var defaultCatalog = mustDefault()

// Default returns the built-in French/English catalog.
func Default() *Catalog {
	return defaultCatalog
}

func mustDefault() *Catalog {
	c, err := New(DefaultDatePatterns(), DefaultTimePatterns(), DefaultMonths())
	if err != nil {
		panic(fmt.Sprintf("catalog: invalid built-in patterns: %v", err))
	}
	return c
}

// New compiles the given patterns and copies the month table into a Catalog.
// Date patterns must declare 3 or 4 fields, time patterns 1, 2 or 4, and every
// expression must have exactly as many capture groups as it declares.
func New(dates, times []Pattern, months map[string]int) (*Catalog, error) {
	c := &Catalog{
		dates:  make([]Pattern, 0, len(dates)),
		times:  make([]Pattern, 0, len(times)),
		months: make(map[string]int, len(months)),
	}

	for i, p := range dates {
		if p.Fields != 3 && p.Fields != 4 {
			return nil, fmt.Errorf("dates[%d] (%s): fields must be 3 or 4, got %d", i, p.Name, p.Fields)
		}
		compiled, err := compile(p)
		if err != nil {
			return nil, fmt.Errorf("dates[%d] (%s): %w", i, p.Name, err)
		}
		c.dates = append(c.dates, compiled)
	}

	for i, p := range times {
		if p.Fields != 1 && p.Fields != 2 && p.Fields != 4 {
			return nil, fmt.Errorf("times[%d] (%s): fields must be 1, 2 or 4, got %d", i, p.Name, p.Fields)
		}
		compiled, err := compile(p)
		if err != nil {
			return nil, fmt.Errorf("times[%d] (%s): %w", i, p.Name, err)
		}
		c.times = append(c.times, compiled)
	}

	if err := addMonths(c.months, months); err != nil {
		return nil, err
	}

	return c, nil
}

func compile(p Pattern) (Pattern, error) {
	if p.Name == "" {
		return Pattern{}, fmt.Errorf("name is required")
	}
	re, err := regexp.Compile(`(?i)` + p.Expr)
	if err != nil {
		return Pattern{}, fmt.Errorf("invalid expression: %w", err)
	}
	if re.NumSubexp() != p.Fields {
		return Pattern{}, fmt.Errorf("expression has %d capture groups, want %d", re.NumSubexp(), p.Fields)
	}
	p.Examples = slices.Clone(p.Examples)
	p.re = re
	return p, nil
}

func addMonths(dst, src map[string]int) error {
	for name, n := range src {
		if n < 1 || n > 12 {
			return fmt.Errorf("month %q: number must be between 1 and 12, got %d", name, n)
		}
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			return fmt.Errorf("month names must not be empty")
		}
		dst[key] = n
	}
	return nil
}

// WithMonths returns a copy of c whose month table also holds extra.
// Names are lowercased; an extra name overrides a built-in one.
func (c *Catalog) WithMonths(extra map[string]int) (*Catalog, error) {
	out := &Catalog{
		dates:  c.dates,
		times:  c.times,
		months: maps.Clone(c.months),
	}
	if err := addMonths(out.months, extra); err != nil {
		return nil, err
	}
	return out, nil
}

// Dates returns the date patterns in scan order.
func (c *Catalog) Dates() []Pattern {
	return slices.Clone(c.dates)
}

// Times returns the time patterns in scan order.
func (c *Catalog) Times() []Pattern {
	return slices.Clone(c.times)
}

// Month resolves a month name, ignoring case.
func (c *Catalog) Month(name string) (int, bool) {
	n, ok := c.months[strings.ToLower(name)]
	return n, ok
}

// Months returns a copy of the month table.
func (c *Catalog) Months() map[string]int {
	return maps.Clone(c.months)
}
