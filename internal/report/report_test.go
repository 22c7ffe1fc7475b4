package report_test

import (
	"bytes"
	"testing"

	"github.com/ostafen/partedit/internal/blockio"
	"github.com/ostafen/partedit/internal/disk"
	"github.com/ostafen/partedit/internal/mbr"
	"github.com/ostafen/partedit/internal/report"
	"github.com/stretchr/testify/require"
)

func buildTestList() *disk.PartitionList {
	d := disk.NewDisk(0, func(string) (blockio.Device, error) { return nil, nil }, "")
	d.Signature = 0xCAFEBABE
	d.Primary = []*disk.Region{
		{
			Disk: d, StartSector: 2048, SectorCount: 204800,
			IsPartitioned: true, PartitionType: mbr.PartitionTypeFAT32LBA,
			Volume: disk.Volume{DriveLetter: 'C', Filesystem: "FAT32"},
		},
		{Disk: d, StartSector: 206848, SectorCount: 1000},
	}
	return &disk.PartitionList{Disks: []*disk.Disk{d}}
}

func TestWriteListRoundTrip(t *testing.T) {
	list := buildTestList()

	var buf bytes.Buffer
	require.NoError(t, report.NewWriter(&buf).WriteList(list))
	require.Contains(t, buf.String(), "<partitionreport")

	disks, err := report.ReadDiskObjects(&buf)
	require.NoError(t, err)
	require.Len(t, disks, 1)

	d := disks[0]
	require.Equal(t, uint32(0xCAFEBABE), d.Signature)
	require.Len(t, d.Regions, 2)
	require.True(t, d.Regions[0].Partitioned)
	require.Equal(t, "C:", d.Regions[0].DriveLetter)
	require.False(t, d.Regions[1].Partitioned)
}

func TestBuildDiskObjectOrdersPrimaryThenLogical(t *testing.T) {
	d := disk.NewDisk(3, func(string) (blockio.Device, error) { return nil, nil }, "")
	d.Primary = []*disk.Region{{Disk: d, StartSector: 0, SectorCount: 100, IsPartitioned: true}}
	d.Logical = []*disk.Region{{Disk: d, StartSector: 200, SectorCount: 50, IsPartitioned: true}}

	obj := report.BuildDiskObject(d)
	require.Equal(t, 3, obj.Number)
	require.Len(t, obj.Regions, 2)
	require.False(t, obj.Regions[0].Logical)
	require.True(t, obj.Regions[1].Logical)
}
