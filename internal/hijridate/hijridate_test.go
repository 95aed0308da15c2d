package hijridate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeConvertsHijriDate(t *testing.T) {
	got := Normalize("تاريخ الحادث: 15/6/1445 هـ")

	assert.NotContains(t, got, "1445", "hijri year should be rewritten")
	assert.NotContains(t, got, "هـ", "hijri marker should be consumed with the date")
	assert.Regexp(t, `\d{4}-\d{2}-\d{2}`, got)

	var date string
	require.NoError(t, scanDate(got, &date))
	parsed, err := time.Parse("2006-01-02", date)
	require.NoError(t, err)
	assert.Equal(t, 2023, parsed.Year())
	assert.Equal(t, time.December, parsed.Month())
}

func TestNormalizeLeavesImpossibleDateAlone(t *testing.T) {
	input := "تاريخ غير صالح: 31/13/9999 هـ"
	assert.Equal(t, input, Normalize(input))
}

func TestNormalizeLeavesGregorianDateAlone(t *testing.T) {
	input := "Issued on 12/5/2023 by the clinic"
	assert.Equal(t, input, Normalize(input))
}

func TestNormalizeDashSeparator(t *testing.T) {
	got := Normalize("15-6-1445 هجري")
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}$`, got)
}

func TestNormalizeMixedText(t *testing.T) {
	input := "First 15/6/1445 هـ then 31/13/9999 هـ and plain prose"
	got := Normalize(input)

	assert.Contains(t, got, "31/13/9999 هـ", "unconvertible date stays verbatim")
	assert.NotContains(t, got, "15/6/1445")
	assert.Contains(t, got, "and plain prose")
}

func TestNormalizeWithoutDates(t *testing.T) {
	input := "no dates here at all"
	assert.Equal(t, input, Normalize(input))
}

func TestNormalizeDoesNotEatTrailingWords(t *testing.T) {
	got := Normalize("15/6/1445 then more text")
	assert.Contains(t, got, " then more text")
}

func TestToGregorianRangeGuards(t *testing.T) {
	tests := []struct {
		name             string
		day, month, year int
	}{
		{"day too large", 31, 6, 1445},
		{"day zero", 0, 6, 1445},
		{"month too large", 15, 13, 1445},
		{"month zero", 15, 0, 1445},
		{"year before coverage", 15, 6, 1200},
		{"year after coverage", 15, 6, 9999},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ToGregorian(tt.day, tt.month, tt.year)
			assert.Error(t, err)
		})
	}
}

func TestToGregorianKnownDate(t *testing.T) {
	got, err := ToGregorian(1, 1, 1445)
	require.NoError(t, err)
	assert.Equal(t, 2023, got.Year())
	assert.Equal(t, time.July, got.Month())
}

// scanDate pulls the first YYYY-MM-DD substring out of s.
func scanDate(s string, out *string) error {
	for i := 0; i+10 <= len(s); i++ {
		candidate := s[i : i+10]
		if _, err := time.Parse("2006-01-02", candidate); err == nil {
			*out = candidate
			return nil
		}
	}
	return assert.AnError
}
