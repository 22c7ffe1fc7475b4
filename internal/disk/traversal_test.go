package disk_test

import (
	"testing"

	"github.com/ostafen/partedit/internal/blockio"
	"github.com/ostafen/partedit/internal/disk"
	"github.com/stretchr/testify/require"
)

func newAdjacencyTestDisk(number int) *disk.Disk {
	d := disk.NewDisk(number, func(string) (blockio.Device, error) { return nil, nil }, "")
	p1 := &disk.Region{StartSector: 0, SectorCount: 100, IsPartitioned: true, OnDiskPartitionNumber: 1}
	free := &disk.Region{StartSector: 100, SectorCount: 50}
	p2 := &disk.Region{StartSector: 150, SectorCount: 100, IsPartitioned: true, OnDiskPartitionNumber: 2}
	_ = disk.InsertDiskRegion(d, p1, false)
	_ = disk.InsertDiskRegion(d, free, false)
	_ = disk.InsertDiskRegion(d, p2, false)
	return d
}

func TestAdjacentRegionSkipsFreeWhenPartitionedOnly(t *testing.T) {
	d := newAdjacencyTestDisk(0)

	first := disk.AdjacentRegion(d, nil, disk.Next|disk.PartitionedOnly)
	require.Equal(t, d.Primary[0], first)

	second := disk.AdjacentRegion(d, first, disk.Next|disk.PartitionedOnly)
	require.Equal(t, d.Primary[2], second)

	require.Nil(t, disk.AdjacentRegion(d, second, disk.Next|disk.PartitionedOnly))
}

func TestAdjacentRegionPrevFromEnd(t *testing.T) {
	d := newAdjacencyTestDisk(0)

	last := disk.AdjacentRegion(d, nil, disk.Prev)
	require.Equal(t, d.Primary[2], last)
}

func TestAdjacentPartitionCrossesDisks(t *testing.T) {
	d0 := newAdjacencyTestDisk(0)
	d1 := newAdjacencyTestDisk(1)
	list := &disk.PartitionList{Disks: []*disk.Disk{d0, d1}}

	last := d0.Primary[2]
	next := disk.AdjacentPartition(list, nil, last, disk.Next|disk.PartitionedOnly)
	require.Equal(t, d1.Primary[0], next)
}

func TestGetDiskByNumberAndGetPartition(t *testing.T) {
	d0 := newAdjacencyTestDisk(0)
	d1 := newAdjacencyTestDisk(7)
	list := &disk.PartitionList{Disks: []*disk.Disk{d0, d1}}

	require.Equal(t, d1, list.GetDiskByNumber(7))
	require.Nil(t, list.GetDiskByNumber(99))

	require.Equal(t, d1.Primary[2], list.GetPartition(d1, 2))
	require.Nil(t, list.GetPartition(d1, 99))
}
