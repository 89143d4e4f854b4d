package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
)

// NumberOfDays is the length of the teaching week.
const NumberOfDays = 5

var weekdayNames = [NumberOfDays]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

func (d Weekday) String() string {
	if d < Monday || d > Friday {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return weekdayNames[d]
}

// ParseWeekday converts a PascalCase day name (Monday..Friday) to its index.
func ParseWeekday(s string) (Weekday, error) {
	for i, name := range weekdayNames {
		if name == s {
			return Weekday(i), nil
		}
	}
	return 0, fmt.Errorf("invalid weekday %q, expected Monday to Friday in PascalCase", s)
}

// Slot is a weekly recurring time block. Start and Duration are in hours.
type Slot struct {
	day      Weekday
	start    decimal.Decimal
	duration decimal.Decimal
	category string
}

func NewSlot(day Weekday, start, duration decimal.Decimal, category string) Slot {
	return Slot{day: day, start: start, duration: duration, category: category}
}

func (s Slot) Weekday() Weekday          { return s.day }
func (s Slot) Start() decimal.Decimal    { return s.start }
func (s Slot) Duration() decimal.Decimal { return s.duration }
func (s Slot) Category() string          { return s.category }

func (s Slot) End() decimal.Decimal {
	return s.start.Add(s.duration)
}

// Collides reports whether both slots fall on the same day and their
// [start, end) intervals overlap. Touching endpoints do not collide.
func (s Slot) Collides(other Slot) bool {
	if s.day != other.day {
		return false
	}
	return s.start.LessThan(other.End()) && other.start.LessThan(s.End())
}

// Equal compares day, times and category. Decimal scale is ignored, so 9.5 equals 9.50.
func (s Slot) Equal(other Slot) bool {
	return s.day == other.day &&
		s.start.Equal(other.start) &&
		s.duration.Equal(other.duration) &&
		s.category == other.category
}

// Clock formats fractional hours as HH:MM.
func Clock(hours decimal.Decimal) string {
	minutes := hours.Mul(decimal.NewFromInt(60)).Round(0).IntPart()
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
