package editor_test

import (
	"testing"

	"github.com/ostafen/partedit/internal/disk"
	"github.com/ostafen/partedit/internal/editor"
	"github.com/ostafen/partedit/internal/mbr"
	"github.com/stretchr/testify/require"
)

func TestAssignDriveLettersSkipsContainersAndFreeRegions(t *testing.T) {
	d := newTestDisk(t, 40000)
	list := &disk.PartitionList{Disks: []*disk.Disk{d}}
	e := newTestEditor()

	first, err := e.CreatePartition(list, d.Primary[0], 5000*512)
	require.NoError(t, err)
	_, err = e.CreateExtendedPartition(list, d.Primary[len(d.Primary)-1], 20000*512)
	require.NoError(t, err)

	editor.AssignDriveLetters(list)

	require.Equal(t, byte('C'), first.Volume.DriveLetter)
	require.Zero(t, d.Extended.Volume.DriveLetter)
}

func TestUpdateDiskLayoutAssignsOnDiskPartitionNumbers(t *testing.T) {
	d := newTestDisk(t, 40000)
	list := &disk.PartitionList{Disks: []*disk.Disk{d}}
	e := newTestEditor()

	first, err := e.CreatePartition(list, d.Primary[0], 5000*512)
	require.NoError(t, err)
	second, err := e.CreatePartition(list, d.Primary[len(d.Primary)-1], 5000*512)
	require.NoError(t, err)

	editor.UpdateDiskLayout(d)

	require.Equal(t, 1, first.OnDiskPartitionNumber)
	require.Equal(t, 2, second.OnDiskPartitionNumber)
	require.True(t, d.Layout.Entries[0].Rewrite)
	require.Equal(t, uint32(first.StartSector), d.Layout.Entries[0].StartLBA)
}

func TestSetActivePartitionClearsPreviousBootFlag(t *testing.T) {
	d := newTestDisk(t, 40000)
	list := &disk.PartitionList{Disks: []*disk.Disk{d}}
	e := newTestEditor()

	first, err := e.CreatePartition(list, d.Primary[0], 5000*512)
	require.NoError(t, err)
	second, err := e.CreatePartition(list, d.Primary[len(d.Primary)-1], 5000*512)
	require.NoError(t, err)

	require.True(t, editor.SetActivePartition(list, first))
	require.True(t, first.BootIndicator)

	require.True(t, editor.SetActivePartition(list, second))
	require.False(t, first.BootIndicator)
	require.True(t, second.BootIndicator)
	require.Equal(t, second, list.SystemPartition)
}

func TestIsSupportedSystemPartition(t *testing.T) {
	unformatted := &disk.Region{Volume: disk.Volume{Format: disk.Unformatted}}
	require.True(t, editor.IsSupportedSystemPartition(unformatted))

	fat32 := &disk.Region{Volume: disk.Volume{Format: disk.Formatted, Filesystem: "FAT32"}}
	require.True(t, editor.IsSupportedSystemPartition(fat32))

	ntfs := &disk.Region{Volume: disk.Volume{Format: disk.Formatted, Filesystem: "NTFS"}}
	require.False(t, editor.IsSupportedSystemPartition(ntfs))

	ifs := &disk.Region{PartitionType: mbr.PartitionTypeIFS}
	require.False(t, editor.IsSupportedSystemPartition(ifs))

	require.False(t, editor.IsSupportedSystemPartition(nil))
}

func TestFindSupportedSystemPartitionPrefersCurrent(t *testing.T) {
	d := newTestDisk(t, 40000)
	list := &disk.PartitionList{Disks: []*disk.Disk{d}}
	e := newTestEditor()

	first, err := e.CreatePartition(list, d.Primary[0], 5000*512)
	require.NoError(t, err)
	list.SystemPartition = first

	got := editor.FindSupportedSystemPartition(list, false, nil, nil)
	require.Equal(t, first, got)
}

func TestFindSupportedSystemPartitionFallsBackToFreeSlot(t *testing.T) {
	d := newTestDisk(t, 40000)
	list := &disk.PartitionList{Disks: []*disk.Disk{d}}

	got := editor.FindSupportedSystemPartition(list, false, nil, nil)
	require.Equal(t, d.Primary[0], got)
	require.False(t, got.IsPartitioned)
}
