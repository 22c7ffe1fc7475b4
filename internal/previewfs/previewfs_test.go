//go:build linux
// +build linux

package previewfs_test

import (
	"context"
	"testing"

	"bazil.org/fuse"
	"bazil.org/fuse/fs"

	"github.com/ostafen/partedit/internal/blockio"
	"github.com/ostafen/partedit/internal/disk"
	"github.com/ostafen/partedit/internal/mbr"
	"github.com/ostafen/partedit/internal/previewfs"
	"github.com/stretchr/testify/require"
)

type fakeDevice struct {
	data []byte
}

func (d *fakeDevice) Close() error { return nil }
func (d *fakeDevice) ReadSector(lba uint64, n int) ([]byte, error) {
	off := lba * 512
	return d.data[off : off+uint64(n)*512], nil
}
func (d *fakeDevice) WriteSector(lba uint64, data []byte) error { return nil }
func (d *fakeDevice) Geometry() (blockio.Geometry, error) {
	return blockio.Geometry{BytesPerSector: 512}, nil
}
func (d *fakeDevice) ScsiAddress() (blockio.ScsiAddress, error)  { return blockio.ScsiAddress{}, nil }
func (d *fakeDevice) GetDriveLayout() (*mbr.LayoutBuffer, error) { return nil, nil }
func (d *fakeDevice) SetDriveLayout(*mbr.LayoutBuffer) error     { return nil }
func (d *fakeDevice) LockVolume() error                          { return nil }
func (d *fakeDevice) DismountVolume() error                      { return nil }
func (d *fakeDevice) UnlockVolume() error                        { return nil }

func newTestList(t *testing.T) (*disk.PartitionList, *fakeDevice) {
	t.Helper()
	data := make([]byte, 4*512)
	for i := 2048; i < len(data); i++ {
		data[i] = 0xCD
	}
	dev := &fakeDevice{data: data}

	d := disk.NewDisk(3, func(string) (blockio.Device, error) { return dev, nil }, `\Device\Harddisk3\Partition0`)
	d.Geometry.BytesPerSector = 512
	d.Primary = []*disk.Region{
		{Disk: d, StartSector: 1, SectorCount: 3, IsPartitioned: true, OnDiskPartitionNumber: 1},
	}
	return &disk.PartitionList{Disks: []*disk.Disk{d}}, dev
}

func TestRootReadDirAllListsDisksByNumber(t *testing.T) {
	list, _ := newTestList(t)
	p := previewfs.New(list)

	root, err := p.Root()
	require.NoError(t, err)

	dirEntries, err := root.(fs.HandleReadDirAller).ReadDirAll(context.Background())
	require.NoError(t, err)
	require.Len(t, dirEntries, 1)
	require.Equal(t, "disk3", dirEntries[0].Name)
}

func TestRootLookupUnknownDiskReturnsENOENT(t *testing.T) {
	list, _ := newTestList(t)
	p := previewfs.New(list)

	root, err := p.Root()
	require.NoError(t, err)

	_, err = root.(fs.NodeStringLookuper).Lookup(context.Background(), "disk99")
	require.Error(t, err)
}

func TestRegionFileReadServesSectionOfUnderlyingDevice(t *testing.T) {
	list, dev := newTestList(t)
	p := previewfs.New(list)
	defer p.Close()

	root, err := p.Root()
	require.NoError(t, err)

	diskNode, err := root.(fs.NodeStringLookuper).Lookup(context.Background(), "disk3")
	require.NoError(t, err)

	fileNode, err := diskNode.(fs.NodeStringLookuper).Lookup(context.Background(), "partition1")
	require.NoError(t, err)

	var attr fuse.Attr
	require.NoError(t, fileNode.Attr(context.Background(), &attr))
	require.Equal(t, uint64(3*512), attr.Size)

	req := &fuse.ReadRequest{Offset: 0, Size: 512}
	resp := &fuse.ReadResponse{}
	require.NoError(t, fileNode.(fs.HandleReader).Read(context.Background(), req, resp))
	require.Equal(t, dev.data[512:1024], resp.Data)
}
