// Package dateexpr resolves natural-language date expressions (English and
// Chinese) against a reference date. It never guesses: an expression that no
// rule recognizes is reported as unresolved.
package dateexpr

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Layout is the absolute date format used throughout the pipeline.
const Layout = "2006-01-02"

var (
	todayTokens      = []string{"today", "今天"}
	tomorrowTokens   = []string{"tomorrow", "明天"}
	nextWeekTokens   = []string{"next week", "下周", "下星期"}
	nextMonthTokens  = []string{"next month", "下个月", "下月"}
	endOfMonthTokens = []string{"end of month", "end of the month", "本月底", "月底"}
)

var nextWeekdayTokens = map[string]time.Weekday{
	"next monday":    time.Monday,
	"next tuesday":   time.Tuesday,
	"next wednesday": time.Wednesday,
	"next thursday":  time.Thursday,
	"next friday":    time.Friday,
	"next saturday":  time.Saturday,
	"next sunday":    time.Sunday,
	"下周一":            time.Monday,
	"下周二":            time.Tuesday,
	"下周三":            time.Wednesday,
	"下周四":            time.Thursday,
	"下周五":            time.Friday,
	"下周六":            time.Saturday,
	"下周日":            time.Sunday,
	"下周天":            time.Sunday,
	"下星期一":           time.Monday,
	"下星期二":           time.Tuesday,
	"下星期三":           time.Wednesday,
	"下星期四":           time.Thursday,
	"下星期五":           time.Friday,
	"下星期六":           time.Saturday,
	"下星期日":           time.Sunday,
	"下星期天":           time.Sunday,
}

var monthNames = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may":  time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

var (
	daysLaterPattern  = regexp.MustCompile(`(\d+|[一二两三四五六七八九十]+)\s*个?\s*(?:天|日|days?)\s*(?:之后|以后|后|later)`)
	inDaysPattern     = regexp.MustCompile(`^in\s+(\d+)\s+days?$`)
	isoPattern        = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
	cnFullPattern     = regexp.MustCompile(`^(\d{4})年(\d{1,2})月(\d{1,2})[日号]$`)
	cnMonthDayPattern = regexp.MustCompile(`^(\d{1,2})月(\d{1,2})[日号]$`)
	monthDayPattern   = regexp.MustCompile(`^([a-z]+)\.?\s+(\d{1,2})(?:st|nd|rd|th)?,?$`)
	dayMonthPattern   = regexp.MustCompile(`^(\d{1,2})(?:st|nd|rd|th)?\s+(?:of\s+)?([a-z]+)\.?$`)
)

// Resolve turns expr into an absolute date relative to ref. The boolean is
// false when no rule matches; callers must not substitute a date of their own.
// The returned time is midnight in ref's location.
func Resolve(expr string, ref time.Time) (time.Time, bool) {
	e := strings.ToLower(strings.TrimSpace(expr))
	if e == "" {
		return time.Time{}, false
	}
	day := midnight(ref)

	switch {
	case oneOf(e, todayTokens):
		return day, true
	case oneOf(e, tomorrowTokens):
		return day.AddDate(0, 0, 1), true
	}

	if wd, ok := nextWeekdayTokens[e]; ok {
		return nextWeekday(day, wd), true
	}

	switch {
	case oneOf(e, nextWeekTokens):
		return nextWeekday(day, time.Monday), true
	case oneOf(e, nextMonthTokens):
		return firstOfNextMonth(day), true
	case oneOf(e, endOfMonthTokens):
		return firstOfNextMonth(day).AddDate(0, 0, -1), true
	}

	if n, ok := daysLater(e); ok {
		return day.AddDate(0, 0, n), true
	}

	if m := isoPattern.FindStringSubmatch(e); m != nil {
		if _, err := time.Parse(Layout, e); err != nil {
			return time.Time{}, false
		}
		return makeDate(atoi(m[1]), atoi(m[2]), atoi(m[3]), ref.Location())
	}

	if m := cnFullPattern.FindStringSubmatch(e); m != nil {
		return makeDate(atoi(m[1]), atoi(m[2]), atoi(m[3]), ref.Location())
	}

	if m := cnMonthDayPattern.FindStringSubmatch(e); m != nil {
		return makeDate(day.Year(), atoi(m[1]), atoi(m[2]), ref.Location())
	}

	if m := monthDayPattern.FindStringSubmatch(e); m != nil {
		if month, ok := monthNames[m[1]]; ok {
			return makeDate(day.Year(), int(month), atoi(m[2]), ref.Location())
		}
	}
	if m := dayMonthPattern.FindStringSubmatch(e); m != nil {
		if month, ok := monthNames[m[2]]; ok {
			return makeDate(day.Year(), int(month), atoi(m[1]), ref.Location())
		}
	}

	return time.Time{}, false
}

// ResolveString is Resolve formatted as YYYY-MM-DD.
func ResolveString(expr string, ref time.Time) (string, bool) {
	t, ok := Resolve(expr, ref)
	if !ok {
		return "", false
	}
	return t.Format(Layout), true
}

// IsAbsolute reports whether s is a calendar-valid YYYY-MM-DD date.
func IsAbsolute(s string) bool {
	if !isoPattern.MatchString(s) {
		return false
	}
	_, err := time.Parse(Layout, s)
	return err == nil
}

// nextWeekday returns the next occurrence of wd strictly after day.
func nextWeekday(day time.Time, wd time.Weekday) time.Time {
	offset := int(wd) - int(day.Weekday())
	if offset <= 0 {
		offset += 7
	}
	return day.AddDate(0, 0, offset)
}

func firstOfNextMonth(day time.Time) time.Time {
	y, m, _ := day.Date()
	if m == time.December {
		return time.Date(y+1, time.January, 1, 0, 0, 0, 0, day.Location())
	}
	return time.Date(y, m+1, 1, 0, 0, 0, 0, day.Location())
}

func daysLater(e string) (int, bool) {
	if m := inDaysPattern.FindStringSubmatch(e); m != nil {
		return atoi(m[1]), true
	}
	m := daysLaterPattern.FindStringSubmatch(e)
	if m == nil {
		return 0, false
	}
	if n, err := strconv.Atoi(m[1]); err == nil {
		return n, true
	}
	return chineseNumeral(m[1])
}

// chineseNumeral parses 一..九十九 (including 两). Larger values are rejected.
func chineseNumeral(s string) (int, bool) {
	digits := map[rune]int{
		'一': 1, '二': 2, '两': 2, '三': 3, '四': 4,
		'五': 5, '六': 6, '七': 7, '八': 8, '九': 9,
	}
	runes := []rune(s)
	switch len(runes) {
	case 1:
		if runes[0] == '十' {
			return 10, true
		}
		d, ok := digits[runes[0]]
		return d, ok
	case 2:
		if runes[0] == '十' {
			d, ok := digits[runes[1]]
			return 10 + d, ok
		}
		if runes[1] == '十' {
			d, ok := digits[runes[0]]
			return d * 10, ok
		}
	case 3:
		if runes[1] != '十' {
			return 0, false
		}
		tens, ok1 := digits[runes[0]]
		ones, ok2 := digits[runes[2]]
		return tens*10 + ones, ok1 && ok2
	}
	return 0, false
}

func makeDate(year, month, day int, loc *time.Location) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	if t.Month() != time.Month(month) || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func oneOf(s string, tokens []string) bool {
	for _, tok := range tokens {
		if s == tok {
			return true
		}
	}
	return false
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
