package editor_test

import (
	"io"
	"testing"

	"github.com/ostafen/partedit/internal/blockio"
	"github.com/ostafen/partedit/internal/disk"
	"github.com/ostafen/partedit/internal/editor"
	"github.com/ostafen/partedit/internal/logger"
	"github.com/ostafen/partedit/internal/mount"
	"github.com/stretchr/testify/require"
)

func newTestDisk(t *testing.T, totalSectors uint64) *disk.Disk {
	t.Helper()
	d := disk.NewDisk(0, func(string) (blockio.Device, error) { return nil, nil }, `\Device\Harddisk0\Partition0`)
	d.Geometry.BytesPerSector = 512
	d.Alignment = 1
	free := &disk.Region{StartSector: 0, SectorCount: totalSectors}
	require.NoError(t, disk.InsertDiskRegion(d, free, false))
	return d
}

func newTestEditor() *editor.Editor {
	log := logger.New(io.Discard, logger.ErrorLevel)
	return &editor.Editor{Mounter: &mount.Mounter{Log: log}}
}

func TestCreatePartitionSplitsTrailingFreeSpace(t *testing.T) {
	d := newTestDisk(t, 204800)
	list := &disk.PartitionList{Disks: []*disk.Disk{d}}
	e := newTestEditor()

	created, err := e.CreatePartition(list, d.Primary[0], 100*512)
	require.NoError(t, err)
	require.True(t, created.IsPartitioned)
	require.Equal(t, uint64(100), created.SectorCount)

	require.Len(t, d.Primary, 2)
	require.False(t, d.Primary[1].IsPartitioned)
	require.Equal(t, uint64(100), d.Primary[1].StartSector)
	require.Equal(t, uint64(204700), d.Primary[1].SectorCount)

	require.Equal(t, byte('C'), created.Volume.DriveLetter)
	require.True(t, d.Dirty)
}

func TestCreatePartitionWholeRegion(t *testing.T) {
	d := newTestDisk(t, 2048)
	list := &disk.PartitionList{Disks: []*disk.Disk{d}}
	e := newTestEditor()

	created, err := e.CreatePartition(list, d.Primary[0], 0)
	require.NoError(t, err)
	require.Len(t, d.Primary, 1)
	require.Equal(t, uint64(2048), created.SectorCount)
}

func TestCreatePartitionTableFullRejectsFifthPrimary(t *testing.T) {
	d := newTestDisk(t, 40000)
	list := &disk.PartitionList{Disks: []*disk.Disk{d}}
	e := newTestEditor()

	for i := 0; i < 4; i++ {
		_, err := e.CreatePartition(list, d.Primary[len(d.Primary)-1], 1000*512)
		require.NoError(t, err)
	}

	_, err := e.CreatePartition(list, d.Primary[len(d.Primary)-1], 0)
	require.Error(t, err)
}

func TestCreateExtendedPartitionRejectsSecondExtended(t *testing.T) {
	d := newTestDisk(t, 40000)
	list := &disk.PartitionList{Disks: []*disk.Disk{d}}
	e := newTestEditor()

	_, err := e.CreateExtendedPartition(list, d.Primary[0], 20000*512)
	require.NoError(t, err)
	require.NotNil(t, d.Extended)

	_, err = e.CreateExtendedPartition(list, d.Primary[len(d.Primary)-1], 0)
	require.Error(t, err)
}

func TestDeletePartitionMergesAdjacentFreeRegions(t *testing.T) {
	d := newTestDisk(t, 60000)
	list := &disk.PartitionList{Disks: []*disk.Disk{d}}
	e := newTestEditor()

	first, err := e.CreatePartition(list, d.Primary[0], 10000*512)
	require.NoError(t, err)
	second, err := e.CreatePartition(list, d.Primary[len(d.Primary)-1], 10000*512)
	require.NoError(t, err)

	require.NoError(t, e.DeletePartition(list, first))
	require.NoError(t, e.DeletePartition(list, second))

	require.Len(t, d.Primary, 1)
	require.False(t, d.Primary[0].IsPartitioned)
	require.Equal(t, uint64(60000), d.Primary[0].SectorCount)
}

func TestDeletePartitionRejectsFreeRegion(t *testing.T) {
	d := newTestDisk(t, 2048)
	list := &disk.PartitionList{Disks: []*disk.Disk{d}}
	e := newTestEditor()

	err := e.DeletePartition(list, d.Primary[0])
	require.Error(t, err)

	var statusErr *editor.StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, editor.NotPartitioned, statusErr.Status)
}
