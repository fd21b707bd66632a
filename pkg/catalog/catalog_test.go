package catalog

import (
	"testing"
)

func TestDefault_PatternsMatchExamples(t *testing.T) {
	c := Default()

	all := append(c.Dates(), c.Times()...)
	for _, p := range all {
		if p.Regexp() == nil {
			t.Fatalf("%s: pattern not compiled", p.Name)
		}
		if len(p.Examples) == 0 {
			t.Errorf("%s: no examples", p.Name)
		}
		for _, ex := range p.Examples {
			m := p.Regexp().FindStringSubmatch(ex)
			if m == nil {
				t.Errorf("%s: did not match example %q", p.Name, ex)
				continue
			}
			if len(m)-1 != p.Fields {
				t.Errorf("%s: %d fields for %q, want %d", p.Name, len(m)-1, ex, p.Fields)
			}
		}
	}
}

func TestDefault_Order(t *testing.T) {
	c := Default()

	wantDates := []string{NumericDMY, DayMonthNameYear, MonthNameDayYear, NumericYMD, WeekdayDayMonthNameYear}
	dates := c.Dates()
	if len(dates) != len(wantDates) {
		t.Fatalf("got %d date patterns, want %d", len(dates), len(wantDates))
	}
	for i, name := range wantDates {
		if dates[i].Name != name {
			t.Errorf("dates[%d] = %s, want %s", i, dates[i].Name, name)
		}
	}

	wantTimes := []string{HourHMinute, HourColon, BareHour, HourRange}
	times := c.Times()
	if len(times) != len(wantTimes) {
		t.Fatalf("got %d time patterns, want %d", len(times), len(wantTimes))
	}
	for i, name := range wantTimes {
		if times[i].Name != name {
			t.Errorf("times[%d] = %s, want %s", i, times[i].Name, name)
		}
	}
}

func TestPatterns_CaseInsensitive(t *testing.T) {
	c := Default()

	tests := []struct {
		pattern string
		input   string
	}{
		{WeekdayDayMonthNameYear, "DIMANCHE 20 AVRIL 2025"},
		{WeekdayDayMonthNameYear, "sunday 20 april 2025"},
		{NumericDMY, "20 DE 04 DE 2025"},
		{NumericDMY, "1 ÈME 04 ÈME 2025"},
		{HourHMinute, "10H30"},
		{BareHour, "9H"},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.input, func(t *testing.T) {
			p := find(t, c, tt.pattern)
			if !p.Regexp().MatchString(tt.input) {
				t.Errorf("%s did not match %q", tt.pattern, tt.input)
			}
		})
	}
}

func TestPatterns_NonMatches(t *testing.T) {
	c := Default()

	tests := []struct {
		pattern string
		input   string
	}{
		// Month-name groups only take letters.
		{DayMonthNameYear, "20/04/2025"},
		{MonthNameDayYear, "le 20/04/2025"},
		// Whitespace alone is not a separator.
		{DayMonthNameYear, "20 avril 2025"},
		// A bare hour must not be followed by minutes or a word.
		{BareHour, "10h30"},
		{BareHour, "9heures"},
		{BareHour, "9hé"},
		{BareHour, "9hÉtage"},
		{HourRange, "10h-12h"},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.input, func(t *testing.T) {
			p := find(t, c, tt.pattern)
			if m := p.Regexp().FindString(tt.input); m != "" {
				t.Errorf("%s unexpectedly matched %q in %q", tt.pattern, m, tt.input)
			}
		})
	}
}

func TestMonth(t *testing.T) {
	c := Default()

	tests := []struct {
		name string
		want int
		ok   bool
	}{
		{"avril", 4, true},
		{"AVRIL", 4, true},
		{"Décembre", 12, true},
		{"août", 8, true},
		{"september", 9, true},
		{"abril", 0, false},
		{"04", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, ok := c.Month(tt.name)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Month(%q) = %d, %v; want %d, %v", tt.name, got, ok, tt.want, tt.ok)
		}
	}

	if n := len(c.Months()); n != 24 {
		t.Errorf("Months() has %d entries, want 24", n)
	}
}

func TestWithMonths(t *testing.T) {
	base := Default()

	extended, err := base.WithMonths(map[string]int{"Abril": 4, "fevrier": 2})
	if err != nil {
		t.Fatalf("WithMonths() error = %v", err)
	}

	if n, ok := extended.Month("abril"); !ok || n != 4 {
		t.Errorf("extended Month(abril) = %d, %v", n, ok)
	}
	if n, ok := extended.Month("FEVRIER"); !ok || n != 2 {
		t.Errorf("extended Month(FEVRIER) = %d, %v", n, ok)
	}
	if _, ok := base.Month("abril"); ok {
		t.Error("WithMonths() mutated the base catalog")
	}
	if len(extended.Dates()) != len(base.Dates()) {
		t.Error("WithMonths() dropped date patterns")
	}
}

func TestWithMonths_Invalid(t *testing.T) {
	tests := []map[string]int{
		{"treizième": 13},
		{"zero": 0},
		{"  ": 3},
	}
	for _, extra := range tests {
		if _, err := Default().WithMonths(extra); err == nil {
			t.Errorf("WithMonths(%v) expected error", extra)
		}
	}
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name  string
		dates []Pattern
		times []Pattern
	}{
		{
			name:  "date with two fields",
			dates: []Pattern{{Name: "bad", Expr: `(\d)(\d)`, Fields: 2}},
		},
		{
			name:  "time with three fields",
			times: []Pattern{{Name: "bad", Expr: `(\d)(\d)(\d)`, Fields: 3}},
		},
		{
			name:  "group count mismatch",
			dates: []Pattern{{Name: "bad", Expr: `(\d)(\d)`, Fields: 3}},
		},
		{
			name:  "invalid expression",
			times: []Pattern{{Name: "bad", Expr: `(\d`, Fields: 1}},
		},
		{
			name:  "missing name",
			times: []Pattern{{Expr: `(\d)`, Fields: 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.dates, tt.times, nil); err == nil {
				t.Error("New() expected error")
			}
		})
	}
}

func TestDates_ReturnsCopy(t *testing.T) {
	c := Default()
	dates := c.Dates()
	dates[0] = Pattern{Name: "changed"}

	if c.Dates()[0].Name != NumericDMY {
		t.Error("Dates() exposed internal slice")
	}
}

func find(t *testing.T, c *Catalog, name string) Pattern {
	t.Helper()
	for _, p := range append(c.Dates(), c.Times()...) {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("pattern %s not found", name)
	return Pattern{}
}
