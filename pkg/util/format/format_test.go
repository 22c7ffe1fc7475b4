package format_test

import (
	"testing"

	"github.com/ostafen/partedit/pkg/util/format"
	"github.com/stretchr/testify/require"
)

func TestParseBytesAcceptsUnitSuffixes(t *testing.T) {
	cases := map[string]uint64{
		"0":      0,
		"512":    512,
		"4KB":    4 << 10,
		"4MB":    4 << 20,
		"1.5GB":  uint64(1.5 * (1 << 30)),
		"2tb":    2 << 40,
		"100B":   100,
		"":       0,
		"  8MB ": 8 << 20,
	}
	for in, want := range cases {
		got, err := format.ParseBytes(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}
}

func TestParseBytesRejectsGarbage(t *testing.T) {
	_, err := format.ParseBytes("not-a-size")
	require.Error(t, err)
}

func TestParseBytesRoundTripsWithFormatBytes(t *testing.T) {
	got, err := format.ParseBytes(format.FormatBytes(4 << 20))
	require.NoError(t, err)
	require.Equal(t, uint64(4<<20), got)
}
