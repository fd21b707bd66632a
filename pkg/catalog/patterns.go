package catalog

// sep matches the separators accepted between date parts. Each side allows a
// single optional whitespace character.
const sep = `\s?(?:/|-|de|er|ème|eme)\s?`

// weekdayNames lists the weekday names accepted by the weekday-prefixed date
// pattern. French first, English after.
const weekdayNames = `dimanche|lundi|mardi|mercredi|jeudi|vendredi|samedi|` +
	`sunday|monday|tuesday|wednesday|thursday|friday|saturday`

// Date pattern names.
const (
	NumericDMY              = "numeric-dmy"
	DayMonthNameYear        = "day-monthname-year"
	MonthNameDayYear        = "monthname-day-year"
	NumericYMD              = "numeric-ymd"
	WeekdayDayMonthNameYear = "weekday-day-monthname-year"
)

// Time pattern names.
const (
	HourHMinute = "hour-h-minute"
	HourColon   = "hour-colon-minute"
	BareHour    = "bare-hour"
	HourRange   = "hour-range"
)

// DefaultDatePatterns returns the built-in date patterns in scan order.
// A 3-field capture is read as (day, month, year) whatever pattern produced it.
func DefaultDatePatterns() []Pattern {
	return []Pattern{
		{
			Name:     NumericDMY,
			Expr:     `(\d{1,2})` + sep + `(\d{1,2})` + sep + `(\d{4})`,
			Fields:   3,
			Examples: []string{"20/04/2025", "20-04-2025", "20 de 04 de 2025"},
		},
		{
			Name:     DayMonthNameYear,
			Expr:     `(\d{1,2})` + sep + `(\p{L}+)` + sep + `(\d{4})`,
			Fields:   3,
			Examples: []string{"20-avril-2025", "20 de abril de 2025"},
		},
		{
			Name:     MonthNameDayYear,
			Expr:     `(\p{L}+)\s?(\d{1,2})` + sep + `(\d{4})`,
			Fields:   3,
			Examples: []string{"avril 20-2025"},
		},
		{
			Name:     NumericYMD,
			Expr:     `(\d{4})` + sep + `(\d{1,2})` + sep + `(\d{1,2})`,
			Fields:   3,
			Examples: []string{"2025/04/20"},
		},
		{
			Name:     WeekdayDayMonthNameYear,
			Expr:     `(` + weekdayNames + `)\s?(\d{1,2})\s?(\p{L}+)\s?(\d{4})`,
			Fields:   4,
			Examples: []string{"Dimanche 20 avril 2025", "Sunday 20 April 2025"},
		},
	}
}

// DefaultTimePatterns returns the built-in time patterns in scan order.
func DefaultTimePatterns() []Pattern {
	return []Pattern{
		{
			Name:     HourHMinute,
			Expr:     `(\d{1,2})h(\d{2})`,
			Fields:   2,
			Examples: []string{"10h30"},
		},
		{
			Name:     HourColon,
			Expr:     `(\d{1,2}):(\d{2})`,
			Fields:   2,
			Examples: []string{"10:30"},
		},
		{
			// The h must not run into a letter or digit, so "10h30" and
			// "9heures" are left alone. RE2's \b only knows ASCII letters.
			Name:     BareHour,
			Expr:     `(\d{1,2})h(?:[^\p{L}\p{N}]|$)`,
			Fields:   1,
			Examples: []string{"9h", "14h.", "9h-10h"},
		},
		{
			Name:     HourRange,
			Expr:     `(\d{1,2})[h\s](\d{1,2})-(\d{1,2})[h\s](\d{1,2})`,
			Fields:   4,
			Examples: []string{"10h30-12h30", "10 30-12 30"},
		},
	}
}

// DefaultMonths returns a fresh copy of the French and English month table.
func DefaultMonths() map[string]int {
	return map[string]int{
		"janvier": 1, "février": 2, "mars": 3, "avril": 4,
		"mai": 5, "juin": 6, "juillet": 7, "août": 8,
		"septembre": 9, "octobre": 10, "novembre": 11, "décembre": 12,
		"january": 1, "february": 2, "march": 3, "april": 4,
		"may": 5, "june": 6, "july": 7, "august": 8,
		"september": 9, "october": 10, "november": 11, "december": 12,
	}
}
