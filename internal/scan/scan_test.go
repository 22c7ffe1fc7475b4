package scan

import (
	"testing"

	"github.com/ostafen/partedit/internal/disk"
	"github.com/ostafen/partedit/internal/geometry"
	"github.com/ostafen/partedit/internal/mbr"
	"github.com/stretchr/testify/require"
)

func mbrSector(entries [4]mbr.MBRPartitionEntry) []byte {
	return mbr.EncodeSector(make([]byte, geometry.BootCodeSize), 0x12345678, entries)
}

func TestClassifyStyleRaw(t *testing.T) {
	sector := make([]byte, 512)
	require.Equal(t, disk.StyleRaw, classifyStyle(0, sector))
}

func TestClassifyStyleMbr(t *testing.T) {
	var entries [4]mbr.MBRPartitionEntry
	entries[0] = mbr.MBRPartitionEntry{PartitionType: mbr.PartitionTypeFAT32LBA, StartLBA: 2048, TotalSectors: 4096}
	sector := mbrSector(entries)

	require.Equal(t, disk.StyleMbr, classifyStyle(geometry.Magic, sector))
}

func TestClassifyStyleGptProtective(t *testing.T) {
	var entries [4]mbr.MBRPartitionEntry
	entries[0] = mbr.MBRPartitionEntry{PartitionType: mbr.PartitionTypeGPTProtective, StartLBA: 1, TotalSectors: 0xFFFFFFFF}
	sector := mbrSector(entries)

	require.Equal(t, disk.StyleGpt, classifyStyle(geometry.Magic, sector))
}

func TestClassifyStyleGptProtectiveRejectedWhenOtherEntriesNonzero(t *testing.T) {
	var entries [4]mbr.MBRPartitionEntry
	entries[0] = mbr.MBRPartitionEntry{PartitionType: mbr.PartitionTypeGPTProtective, StartLBA: 1, TotalSectors: 0xFFFFFFFF}
	entries[1] = mbr.MBRPartitionEntry{PartitionType: mbr.PartitionTypeFAT32LBA, StartLBA: 100}
	sector := mbrSector(entries)

	require.Equal(t, disk.StyleMbr, classifyStyle(geometry.Magic, sector))
}

func TestIsSuperFloppyTrueForSingleZeroOffsetEntry(t *testing.T) {
	layout := mbr.NewLayoutBuffer(4)
	layout.Entries[0] = mbr.MBRPartitionEntry{PartitionType: mbr.PartitionTypeFAT32LBA, StartLBA: 0, TotalSectors: 1000}

	require.True(t, isSuperFloppy(layout))
}

func TestIsSuperFloppyFalseForMultipleEntries(t *testing.T) {
	layout := mbr.NewLayoutBuffer(4)
	layout.Entries[0] = mbr.MBRPartitionEntry{PartitionType: mbr.PartitionTypeFAT32LBA, StartLBA: 0, TotalSectors: 1000}
	layout.Entries[1] = mbr.MBRPartitionEntry{PartitionType: mbr.PartitionTypeFAT16LBA, StartLBA: 1000, TotalSectors: 1000}

	require.False(t, isSuperFloppy(layout))
}

func TestIsSuperFloppyFalseWhenStartLBANonzero(t *testing.T) {
	layout := mbr.NewLayoutBuffer(4)
	layout.Entries[0] = mbr.MBRPartitionEntry{PartitionType: mbr.PartitionTypeFAT32LBA, StartLBA: 2048, TotalSectors: 1000}

	require.False(t, isSuperFloppy(layout))
}

func TestScanForUnpartitionedSpaceInsertsLeadingAndTrailingFreeRegions(t *testing.T) {
	d := disk.NewDisk(0, nil, "")
	d.Alignment = 2048
	d.Geometry.Cylinders = 0
	d.Geometry.TracksPerCylinder = 0
	d.Geometry.SectorsPerTrack = 0
	d.Geometry.BytesPerSector = 512

	used := &disk.Region{StartSector: 10000, SectorCount: 10000, IsPartitioned: true}
	require.NoError(t, disk.InsertDiskRegion(d, used, false))

	// Fake a disk total of 30000 sectors by overriding geometry indirectly:
	// TotalSectors derives from Cylinders*Heads*SectorsPerTrack, so build it
	// from those fields directly instead.
	d.Geometry.Cylinders = 30000 / 63
	d.Geometry.TracksPerCylinder = 1
	d.Geometry.SectorsPerTrack = 63

	scanForUnpartitionedSpace(d)

	require.GreaterOrEqual(t, len(d.Primary), 2)
	require.False(t, d.Primary[0].IsPartitioned)
	require.Equal(t, used, d.Primary[1])
}

func TestCountPartitionedBefore(t *testing.T) {
	d := disk.NewDisk(0, nil, "")
	r1 := &disk.Region{StartSector: 0, SectorCount: 100, IsPartitioned: true}
	r2 := &disk.Region{StartSector: 100, SectorCount: 100}
	r3 := &disk.Region{StartSector: 200, SectorCount: 100, IsPartitioned: true}
	require.NoError(t, disk.InsertDiskRegion(d, r1, false))
	require.NoError(t, disk.InsertDiskRegion(d, r2, false))
	require.NoError(t, disk.InsertDiskRegion(d, r3, false))

	require.Equal(t, 1, countPartitionedBefore(d, r1))
	require.Equal(t, 2, countPartitionedBefore(d, r3))
}
