package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNextReference(t *testing.T) {
	cases := []struct {
		name     string
		existing []string
		want     string
	}{
		{"empty set starts at 00001", nil, "00001"},
		{"numeric increment", []string{"00001", "00002", "00003", "00004", "00005"}, "00006"},
		{"ignores blanks and ordering", []string{"", "00010", "00002"}, "00011"},
		{"numeric rollover to alpha", []string{"99999"}, "A0001"},
		{"alpha increment", []string{"99999", "A0001", "A0002"}, "A0003"},
		{"alpha suffix rollover", []string{"A9999"}, "B0001"},
		{"zero padded", []string{"00009"}, "00010"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, NextReference(tc.existing))
		})
	}
}

func TestNextReferenceFullAlphaBand(t *testing.T) {
	// {A0001..A9999} -> B0001
	existing := make([]string, 0, 9999)
	for i := 1; i <= 9999; i++ {
		existing = append(existing, NextReference(existing))
	}
	require.Equal(t, "A0001", NextReference(append(existing, "99999")))

	band := []string{"A9998", "A9999"}
	require.Equal(t, "B0001", NextReference(band))
}
