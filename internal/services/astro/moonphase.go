package astro

import (
	"math"
	"time"
)

// Moon phase labels, in cycle order from new moon.
const (
	NewMoon        = "New"
	WaxingCrescent = "Waxing Crescent"
	FirstQuarter   = "First Quarter"
	WaxingGibbous  = "Waxing Gibbous"
	FullMoon       = "Full"
	WaningGibbous  = "Waning Gibbous"
	LastQuarter    = "Last Quarter"
	WaningCrescent = "Waning Crescent"
)

const (
	synodicMonth = 29.5305882
	epochOffset  = 694039.09
)

var phases = [8]string{
	NewMoon, WaxingCrescent, FirstQuarter, WaxingGibbous,
	FullMoon, WaningGibbous, LastQuarter, WaningCrescent,
}

// MoonPhases returns the 8 labels in cycle order.
func MoonPhases() []string {
	out := make([]string, len(phases))
	copy(out, phases[:])
	return out
}

// MoonPhase returns the phase label for t's calendar day.
func MoonPhase(t time.Time) string {
	return MoonPhaseOf(t.Year(), int(t.Month()), t.Day())
}

// MoonPhaseOf maps a calendar date to one of 8 phases using a low precision
// day-count approximation. The result is a pure function of the date.
func MoonPhaseOf(year, month, day int) string {
	return phases[phaseIndex(CycleFraction(year, month, day))]
}

// CycleFraction is the position in the synodic cycle, in [0, 1).
func CycleFraction(year, month, day int) float64 {
	y, m := float64(year), float64(month)
	if month < 3 {
		y--
		m += 12
	}
	jd := 365.25*y + 30.6*(m+1) + float64(day) - epochOffset
	f := math.Mod(jd/synodicMonth, 1)
	if f < 0 {
		f++
	}
	return f
}

func phaseIndex(frac float64) int {
	return int(frac*8+0.5) & 7
}
