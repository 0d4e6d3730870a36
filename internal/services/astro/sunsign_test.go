package astro

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSunSignPartitionsLeapYear(t *testing.T) {
	valid := make(map[string]bool)
	for _, s := range SunSigns() {
		valid[s] = true
	}
	require.Len(t, valid, 12)

	// Every day of a leap year maps to exactly one range.
	counts := make(map[string]int)
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 366; i++ {
		d := day.AddDate(0, 0, i)
		m, dd := int(d.Month()), d.Day()

		owners := 0
		for _, r := range signs {
			if r.contains(m, dd) {
				owners++
			}
		}
		require.Equalf(t, 1, owners, "%02d-%02d owned by %d signs", m, dd, owners)

		s := SunSign(d)
		require.True(t, valid[s], "unexpected label %q", s)
		counts[s]++
	}
	assert.Len(t, counts, 12)

	total := 0
	for _, n := range counts {
		total += n
	}
	assert.Equal(t, 366, total)
}

func TestSunSignBoundaries(t *testing.T) {
	cases := []struct {
		month, day int
		want       string
	}{
		{1, 1, Capricorn},
		{1, 19, Capricorn},
		{1, 20, Aquarius},
		{2, 18, Aquarius},
		{2, 19, Pisces},
		{2, 29, Pisces},
		{3, 20, Pisces},
		{3, 21, Aries},
		{4, 19, Aries},
		{4, 20, Taurus},
		{5, 20, Taurus},
		{5, 21, Gemini},
		{6, 20, Gemini},
		{6, 21, Cancer},
		{7, 22, Cancer},
		{7, 23, Leo},
		{8, 22, Leo},
		{8, 23, Virgo},
		{9, 22, Virgo},
		{9, 23, Libra},
		{10, 12, Libra},
		{10, 22, Libra},
		{10, 23, Scorpio},
		{11, 21, Scorpio},
		{11, 22, Sagittarius},
		{12, 21, Sagittarius},
		{12, 22, Capricorn},
		{12, 31, Capricorn},
	}
	for _, tc := range cases {
		assert.Equalf(t, tc.want, SunSignOf(tc.month, tc.day), "%02d-%02d", tc.month, tc.day)
	}
}
