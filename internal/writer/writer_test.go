package writer_test

import (
	"io"
	"testing"

	"github.com/ostafen/partedit/internal/blockio"
	"github.com/ostafen/partedit/internal/clock"
	"github.com/ostafen/partedit/internal/disk"
	"github.com/ostafen/partedit/internal/logger"
	"github.com/ostafen/partedit/internal/mbr"
	"github.com/ostafen/partedit/internal/regstore"
	"github.com/ostafen/partedit/internal/writer"
	"github.com/stretchr/testify/require"
)

type fakeDevice struct {
	closed        bool
	setLayoutCall *mbr.LayoutBuffer
	setLayoutErr  error
}

func (d *fakeDevice) Close() error { d.closed = true; return nil }
func (d *fakeDevice) ReadSector(lba uint64, n int) ([]byte, error) {
	return make([]byte, n*512), nil
}
func (d *fakeDevice) WriteSector(lba uint64, data []byte) error  { return nil }
func (d *fakeDevice) Geometry() (blockio.Geometry, error)        { return blockio.Geometry{}, nil }
func (d *fakeDevice) ScsiAddress() (blockio.ScsiAddress, error)  { return blockio.ScsiAddress{}, nil }
func (d *fakeDevice) GetDriveLayout() (*mbr.LayoutBuffer, error) { return nil, nil }
func (d *fakeDevice) SetDriveLayout(l *mbr.LayoutBuffer) error {
	d.setLayoutCall = l
	return d.setLayoutErr
}
func (d *fakeDevice) LockVolume() error     { return nil }
func (d *fakeDevice) DismountVolume() error { return nil }
func (d *fakeDevice) UnlockVolume() error   { return nil }

type fakeStore struct {
	written map[string][]byte
}

func newFakeStore() *fakeStore { return &fakeStore{written: map[string][]byte{}} }

func (s *fakeStore) EnumerateSubKeys(path string) ([]string, error) { return nil, nil }
func (s *fakeStore) ReadString(path, name string) (string, error)   { return "", regstore.ErrNotExist }
func (s *fakeStore) ReadBinary(path, name string) ([]byte, error)   { return nil, regstore.ErrNotExist }
func (s *fakeStore) ReadUint32(path, name string) (uint32, error)   { return 0, regstore.ErrNotExist }
func (s *fakeStore) WriteBinary(path, name string, data []byte) error {
	s.written[path+"/"+name] = data
	return nil
}

type fixedClock struct{ fields clock.Fields }

func (f fixedClock) Now() clock.Fields { return f.fields }

func newTestDiskWithDevice(t *testing.T, dev *fakeDevice) *disk.Disk {
	t.Helper()
	d := disk.NewDisk(0, func(string) (blockio.Device, error) { return dev, nil }, `\Device\Harddisk0\Partition0`)
	d.Layout = mbr.NewLayoutBuffer(4)
	d.Primary = []*disk.Region{
		{Disk: d, StartSector: 2048, SectorCount: 2048, IsPartitioned: true, OnDiskPartitionNumber: 1, Volume: disk.Volume{DriveLetter: 'C'}},
	}
	return d
}

func TestWritePartitionsSkipsWhenNotDirty(t *testing.T) {
	dev := &fakeDevice{}
	d := newTestDiskWithDevice(t, dev)
	d.Dirty = false

	w := &writer.Writer{}
	require.NoError(t, w.WritePartitions(d))
	require.Nil(t, dev.setLayoutCall)
}

func TestWritePartitionsPushesLayoutAndClearsDirty(t *testing.T) {
	dev := &fakeDevice{}
	d := newTestDiskWithDevice(t, dev)
	d.Dirty = true
	d.Layout.PartitionCount = 4

	w := &writer.Writer{}
	require.NoError(t, w.WritePartitions(d))

	require.False(t, d.Dirty)
	require.NotNil(t, dev.setLayoutCall)
	require.Equal(t, 4, d.Layout.PartitionCount)
	require.Equal(t, 1, d.Primary[0].PartitionNumber)
	require.False(t, d.Primary[0].New)
	require.True(t, dev.closed)
}

func TestWritePartitionsToDiskAssignsFreshSignatureWhenZero(t *testing.T) {
	dev := &fakeDevice{}
	d := newTestDiskWithDevice(t, dev)
	d.Signature = 0
	d.Dirty = false

	store := newFakeStore()
	w := &writer.Writer{
		Log:   logger.New(io.Discard, logger.ErrorLevel),
		Clock: fixedClock{fields: clock.Fields{Year: 2026, Month: 7, Day: 30, Hour: 1, Minute: 2, Second: 3, Millisecond: 4}},
		Store: store,
	}

	w.WritePartitionsToDisk(&disk.PartitionList{Disks: []*disk.Disk{d}})

	b0 := byte((2026 + 1) & 0xFF)
	b1 := byte((2026 >> 8) + 2)
	b2 := byte(7 + 3)
	b3 := byte(30 + 4)
	wantSignature := uint32(b0) | uint32(b1)<<8 | uint32(b2)<<16 | uint32(b3)<<24

	require.Equal(t, wantSignature, d.Signature)
	require.NotNil(t, dev.setLayoutCall)
	require.Contains(t, store.written, `SYSTEM\MountedDevices/\DosDevices\C:`)
}

func TestSetMountedDeviceValueWritesPackedBinary(t *testing.T) {
	store := newFakeStore()
	w := &writer.Writer{Store: store}

	require.NoError(t, w.SetMountedDeviceValue('D', 0xAABBCCDD, 1048576))

	data := store.written[`SYSTEM\MountedDevices/\DosDevices\D:`]
	require.Len(t, data, 12)
	require.Equal(t, byte(0xDD), data[0])
	require.Equal(t, byte(0xAA), data[3])
}
