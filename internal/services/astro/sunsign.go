// Package astro labels calendar dates with a sun sign and a moon phase.
package astro

import "time"

// Sun sign labels in calendar order starting from the year boundary sign.
const (
	Capricorn   = "Capricorn"
	Aquarius    = "Aquarius"
	Pisces      = "Pisces"
	Aries       = "Aries"
	Taurus      = "Taurus"
	Gemini      = "Gemini"
	Cancer      = "Cancer"
	Leo         = "Leo"
	Virgo       = "Virgo"
	Libra       = "Libra"
	Scorpio     = "Scorpio"
	Sagittarius = "Sagittarius"
)

type signRange struct {
	name               string
	fromMonth, fromDay int
	toMonth, toDay     int
}

// Inclusive ranges. Capricorn wraps the year end.
var signs = []signRange{
	{Capricorn, 12, 22, 1, 19},
	{Aquarius, 1, 20, 2, 18},
	{Pisces, 2, 19, 3, 20},
	{Aries, 3, 21, 4, 19},
	{Taurus, 4, 20, 5, 20},
	{Gemini, 5, 21, 6, 20},
	{Cancer, 6, 21, 7, 22},
	{Leo, 7, 23, 8, 22},
	{Virgo, 8, 23, 9, 22},
	{Libra, 9, 23, 10, 22},
	{Scorpio, 10, 23, 11, 21},
	{Sagittarius, 11, 22, 12, 21},
}

// SunSigns returns the 12 labels in enumeration order.
func SunSigns() []string {
	out := make([]string, len(signs))
	for i, s := range signs {
		out[i] = s.name
	}
	return out
}

// SunSign returns the sign owning t's calendar day (in t's location).
func SunSign(t time.Time) string {
	return SunSignOf(int(t.Month()), t.Day())
}

// SunSignOf returns the sign for a (month, day) pair. Every valid pair maps to
// exactly one sign; out-of-range input falls through to Sagittarius.
func SunSignOf(month, day int) string {
	for _, s := range signs {
		if s.contains(month, day) {
			return s.name
		}
	}
	return Sagittarius
}

func (r signRange) contains(month, day int) bool {
	return (month == r.fromMonth && day >= r.fromDay) || (month == r.toMonth && day <= r.toDay)
}
