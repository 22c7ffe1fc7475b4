package mount_test

import (
	"io"
	"testing"

	"github.com/ostafen/partedit/internal/blockio"
	"github.com/ostafen/partedit/internal/disk"
	"github.com/ostafen/partedit/internal/logger"
	"github.com/ostafen/partedit/internal/mbr"
	"github.com/ostafen/partedit/internal/mount"
	"github.com/stretchr/testify/require"
)

type fakeDevice struct {
	sector                               []byte
	locked, dismounted, unlocked, closed bool
	lockErr, dismountErr, unlockErr      error
	label                                string
	hasLabel                             bool
}

func (d *fakeDevice) Close() error                                 { d.closed = true; return nil }
func (d *fakeDevice) ReadSector(lba uint64, n int) ([]byte, error) { return d.sector, nil }
func (d *fakeDevice) WriteSector(lba uint64, data []byte) error    { return nil }
func (d *fakeDevice) Geometry() (blockio.Geometry, error)          { return blockio.Geometry{}, nil }
func (d *fakeDevice) ScsiAddress() (blockio.ScsiAddress, error)    { return blockio.ScsiAddress{}, nil }
func (d *fakeDevice) GetDriveLayout() (*mbr.LayoutBuffer, error)   { return nil, nil }
func (d *fakeDevice) SetDriveLayout(*mbr.LayoutBuffer) error       { return nil }
func (d *fakeDevice) LockVolume() error                            { d.locked = true; return d.lockErr }
func (d *fakeDevice) DismountVolume() error                        { d.dismounted = true; return d.dismountErr }
func (d *fakeDevice) UnlockVolume() error                          { d.unlocked = true; return d.unlockErr }
func (d *fakeDevice) VolumeLabel() (string, error) {
	if !d.hasLabel {
		return "", nil
	}
	return d.label, nil
}

func fat32Sector() []byte {
	sector := make([]byte, 512)
	copy(sector[82:90], []byte("FAT32   "))
	sector[510] = 0x55
	sector[511] = 0xAA
	return sector
}

func newMounter(opener blockio.Opener) *mount.Mounter {
	return &mount.Mounter{Opener: opener, Log: logger.New(io.Discard, logger.ErrorLevel)}
}

func TestMountVolumeSkipsWhenDeviceNameEmpty(t *testing.T) {
	m := newMounter(func(string) (blockio.Device, error) { return nil, nil })
	region := &disk.Region{}

	m.MountVolume(region, mbr.PartitionTypeFAT32LBA)

	require.Equal(t, disk.Unformatted, region.Volume.Format)
}

func TestMountVolumeRecognizesFAT32AndReadsLabel(t *testing.T) {
	dev := &fakeDevice{sector: fat32Sector(), hasLabel: true, label: "BOOT"}
	m := newMounter(func(string) (blockio.Device, error) { return dev, nil })
	region := &disk.Region{Volume: disk.Volume{DeviceName: `\Device\Harddisk0\Partition1`}}

	m.MountVolume(region, mbr.PartitionTypeFAT32LBA)

	require.Equal(t, disk.Formatted, region.Volume.Format)
	require.Equal(t, "FAT32", region.Volume.Filesystem)
	require.Equal(t, "BOOT", region.Volume.Label)
	require.True(t, dev.closed)
}

func TestMountVolumeCorroboratesUnformattedWhenMbrTypeIsFAT(t *testing.T) {
	dev := &fakeDevice{sector: make([]byte, 512)}
	m := newMounter(func(string) (blockio.Device, error) { return dev, nil })
	region := &disk.Region{Volume: disk.Volume{DeviceName: `\Device\Harddisk0\Partition1`}}

	m.MountVolume(region, mbr.PartitionTypeFAT32LBA)

	require.Equal(t, disk.Unformatted, region.Volume.Format)
}

func TestMountVolumeDismountsOnGenuineRaw(t *testing.T) {
	sector := make([]byte, 512)
	sector[0] = 0xEB
	dev := &fakeDevice{sector: sector}
	m := newMounter(func(string) (blockio.Device, error) { return dev, nil })
	region := &disk.Region{Volume: disk.Volume{DeviceName: `\Device\Harddisk0\Partition1`}}

	m.MountVolume(region, mbr.PartitionTypeIFS)

	require.Equal(t, disk.UnknownFormat, region.Volume.Format)
	require.Empty(t, region.Volume.Filesystem)
	require.True(t, dev.dismounted)
}

func TestDismountVolumeRunsLockDismountUnlockSequence(t *testing.T) {
	dev := &fakeDevice{}
	m := newMounter(func(string) (blockio.Device, error) { return dev, nil })
	region := &disk.Region{Volume: disk.Volume{DeviceName: `\Device\Harddisk0\Partition1`, Format: disk.Formatted, Filesystem: "FAT32"}}

	m.DismountVolume(region)

	require.True(t, dev.locked)
	require.True(t, dev.dismounted)
	require.True(t, dev.unlocked)
	require.Equal(t, disk.Unformatted, region.Volume.Format)
	require.Empty(t, region.Volume.Filesystem)
}

func TestDismountVolumeSkipsIOWhenAlreadyUnmounted(t *testing.T) {
	opened := false
	m := newMounter(func(string) (blockio.Device, error) {
		opened = true
		return &fakeDevice{}, nil
	})
	region := &disk.Region{}

	m.DismountVolume(region)

	require.False(t, opened)
}
