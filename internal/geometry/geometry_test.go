package geometry_test

import (
	"testing"

	"github.com/ostafen/partedit/internal/geometry"
	"github.com/stretchr/testify/require"
)

func TestAlignDownUp(t *testing.T) {
	require.Equal(t, uint64(60), geometry.AlignDown(63, 20))
	require.Equal(t, uint64(63), geometry.AlignDown(63, 0))

	require.Equal(t, uint64(80), geometry.AlignUp(63, 20))
	require.Equal(t, uint64(60), geometry.AlignUp(60, 20))
	require.Equal(t, uint64(63), geometry.AlignUp(63, 0))
}

func TestSectorByteConversion(t *testing.T) {
	require.Equal(t, uint64(1024), geometry.SectorsToBytes(2, 512))
	require.Equal(t, uint64(2), geometry.BytesToSectors(1024, 512))
	require.Equal(t, uint64(1), geometry.BytesToSectors(1023, 512))
	require.Zero(t, geometry.BytesToSectors(1024, 0))
}

func TestExtendedPartitionType(t *testing.T) {
	require.Equal(t, byte(0x05), geometry.ExtendedPartitionType(geometry.CHSLBABoundary-1))
	require.Equal(t, byte(0x0F), geometry.ExtendedPartitionType(geometry.CHSLBABoundary))
}
