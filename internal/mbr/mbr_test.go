package mbr_test

import (
	"testing"

	"github.com/ostafen/partedit/internal/geometry"
	"github.com/ostafen/partedit/internal/mbr"
	"github.com/stretchr/testify/require"
)

func TestParseRoundTrip(t *testing.T) {
	entries := [4]mbr.MBRPartitionEntry{
		{BootIndicator: true, PartitionType: mbr.PartitionTypeFAT32LBA, StartLBA: 2048, TotalSectors: 204800},
		{PartitionType: mbr.PartitionTypeExtendedLBA, StartLBA: 206848, TotalSectors: 1000000},
	}

	sector := mbr.EncodeSector(make([]byte, geometry.BootCodeSize), 0xDEADBEEF, entries)
	require.Len(t, sector, geometry.SectorSize)
	require.Equal(t, uint16(geometry.Magic), mbr.ReadMagic(sector))
	require.Equal(t, uint32(0xDEADBEEF), mbr.ReadDiskSignature(sector))

	parsed, err := mbr.Parse(sector)
	require.NoError(t, err)
	require.Equal(t, uint32(0xDEADBEEF), parsed.DiskSignature)
	require.True(t, parsed.Entries[0].BootIndicator)
	require.Equal(t, mbr.PartitionTypeFAT32LBA, parsed.Entries[0].PartitionType)
	require.Equal(t, uint32(2048), parsed.Entries[0].StartLBA)
	require.Equal(t, uint32(204800), parsed.Entries[0].TotalSectors)
	require.Equal(t, mbr.PartitionTypeExtendedLBA, parsed.Entries[1].PartitionType)
	require.False(t, parsed.Entries[2].BootIndicator)
}

func TestParseRejectsWrongSize(t *testing.T) {
	_, err := mbr.Parse(make([]byte, 100))
	require.Error(t, err)
}

func TestPartitionTypeClassification(t *testing.T) {
	require.True(t, mbr.PartitionTypeFAT32LBA.IsFATFamily())
	require.False(t, mbr.PartitionTypeNTFS.IsFATFamily())

	require.True(t, mbr.PartitionTypeExtendedCHS.IsContainer())
	require.True(t, mbr.PartitionTypeExtendedLBA.IsContainer())
	require.False(t, mbr.PartitionTypeFAT16.IsContainer())

	require.False(t, mbr.PartitionTypeUnused.IsRecognized())
	require.False(t, mbr.PartitionTypeExtendedLBA.IsRecognized())
	require.True(t, mbr.PartitionTypeNTFS.IsRecognized())
}

func TestChecksum(t *testing.T) {
	sector := mbr.EncodeSector(make([]byte, geometry.BootCodeSize), 0x11223344, [4]mbr.MBRPartitionEntry{})
	require.NotZero(t, mbr.Checksum(sector))

	var zeroSum uint32
	for i := 0; i < 128; i++ {
		zeroSum += 0
	}
	require.Equal(t, -zeroSum, mbr.Checksum(make([]byte, geometry.SectorSize)))
}

func TestLayoutBufferResize(t *testing.T) {
	buf := mbr.NewLayoutBuffer(4)
	buf.Entries[0].PartitionType = mbr.PartitionTypeNTFS

	buf.Resize(8)
	require.Len(t, buf.Entries, 8)
	require.Equal(t, mbr.PartitionTypeNTFS, buf.Entries[0].PartitionType)

	buf.Resize(2)
	require.Len(t, buf.Entries, 2)
	require.Equal(t, mbr.PartitionTypeNTFS, buf.Entries[0].PartitionType)
}
