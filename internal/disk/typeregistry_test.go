package disk_test

import (
	"testing"

	"github.com/ostafen/partedit/internal/disk"
	"github.com/ostafen/partedit/internal/mbr"
	"github.com/stretchr/testify/require"
)

func TestTypeRegistryLookup(t *testing.T) {
	reg := disk.NewTypeRegistry()

	d := reg.Lookup(mbr.PartitionTypeNTFS)
	require.Equal(t, "NTFS/HPFS/exFAT", d.Name)
	require.True(t, d.Recognized)

	d = reg.Lookup(mbr.PartitionTypeExtendedLBA)
	require.Equal(t, "Extended (LBA)", d.Name)
	require.False(t, d.Recognized)
}

func TestTypeRegistryUnknownFallback(t *testing.T) {
	reg := disk.NewTypeRegistry()

	d := reg.Lookup(mbr.PartitionType(0x42))
	require.Equal(t, "Unknown", d.Name)
	require.False(t, d.Recognized)
}

func TestFATTypeForSize(t *testing.T) {
	const bps = 512

	require.Equal(t, mbr.PartitionTypeFAT12, disk.FATTypeForSize(1000, bps))
	require.Equal(t, mbr.PartitionTypeFAT16Small, disk.FATTypeForSize(200000, bps))
	require.Equal(t, mbr.PartitionTypeFAT16LBA, disk.FATTypeForSize(2000000, bps))
	require.Equal(t, mbr.PartitionTypeFAT32CHS, disk.FATTypeForSize(10000000, bps))
	require.Equal(t, mbr.PartitionTypeFAT32LBA, disk.FATTypeForSize(50000000, bps))
}
