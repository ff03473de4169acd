package gifting

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/turtacn/AutoGift-Intelligence/pkg/errors"
)

// Well-known date types.  DateType is free-form; these two carry scoring
// bonuses and recur yearly even when stored as full dates.
const (
	DateTypeBirthday    = "birthday"
	DateTypeAnniversary = "anniversary"
)

var monthDayPattern = regexp.MustCompile(`^(\d{2})-(\d{2})$`)

// SpecialDate is a calendar date owned by a user (its subject).
// Value is either a full ISO date ("2006-01-02" or RFC 3339) or a recurring
// "MM-DD" pattern.
type SpecialDate struct {
	OwnerID  string `json:"owner_id"`
	DateType string `json:"date_type"`
	Value    string `json:"value"`
}

// IsRecurringDateType reports whether dateType repeats every year.
func IsRecurringDateType(dateType string) bool {
	switch strings.ToLower(strings.TrimSpace(dateType)) {
	case DateTypeBirthday, DateTypeAnniversary:
		return true
	}
	return false
}

// NextOccurrence resolves the date to a concrete UTC instant relative to now.
func (d SpecialDate) NextOccurrence(now time.Time) (time.Time, error) {
	return NextOccurrence(d.Value, d.DateType, now)
}

// NextOccurrence normalizes value to the next concrete date on or after the
// start of now's UTC day.
//
//   - "MM-DD" rolls to this year's occurrence, or next year's if it has passed.
//     "02-29" is valid and falls on 28 February in non-leap years.
//   - Full dates of a recurring date type roll the same way by month and day.
//   - Other full dates are returned as-is.
//
// Unparseable values (including impossible days such as "02-30") yield a
// CodeMalformedDate error.
func NextOccurrence(value, dateType string, now time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	today := startOfDay(now)

	if m := monthDayPattern.FindStringSubmatch(value); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		if !validMonthDay(month, day) {
			return time.Time{}, errors.Newf(errors.CodeMalformedDate, "special date %q is not a calendar day", value)
		}
		return rollForward(time.Month(month), day, today), nil
	}

	parsed, err := parseFullDate(value)
	if err != nil {
		return time.Time{}, errors.Wrap(err, errors.CodeMalformedDate, "special date is not MM-DD or an ISO date").
			WithDetail("value=" + value)
	}
	if IsRecurringDateType(dateType) {
		return rollForward(parsed.Month(), parsed.Day(), today), nil
	}
	return parsed, nil
}

func parseFullDate(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// validMonthDay checks month/day against a leap year so "02-29" passes.
func validMonthDay(month, day int) bool {
	if month < 1 || month > 12 || day < 1 {
		return false
	}
	return day <= daysIn(time.Month(month), 2000)
}

func daysIn(month time.Month, year int) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func occurrenceIn(year int, month time.Month, day int) time.Time {
	if d := daysIn(month, year); day > d {
		day = d
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func rollForward(month time.Month, day int, today time.Time) time.Time {
	candidate := occurrenceIn(today.Year(), month, day)
	if candidate.Before(today) {
		candidate = occurrenceIn(today.Year()+1, month, day)
	}
	return candidate
}

func startOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// StartOfDay returns midnight UTC of t's UTC calendar day.
func StartOfDay(t time.Time) time.Time { return startOfDay(t) }

//Personal.AI order the ending
