package fsinfer_test

import (
	"testing"

	"github.com/ostafen/partedit/internal/blockio"
	"github.com/ostafen/partedit/internal/fsinfer"
	"github.com/ostafen/partedit/internal/mbr"
	"github.com/stretchr/testify/require"
)

// sectorDevice serves a single fixed sector 0 and nothing else; every other
// blockio.Device method is unused by fsinfer.Infer.
type sectorDevice struct {
	sector []byte
}

func (d *sectorDevice) Close() error                                 { return nil }
func (d *sectorDevice) ReadSector(lba uint64, n int) ([]byte, error) { return d.sector, nil }
func (d *sectorDevice) WriteSector(lba uint64, data []byte) error    { return nil }
func (d *sectorDevice) Geometry() (blockio.Geometry, error)          { return blockio.Geometry{}, nil }
func (d *sectorDevice) ScsiAddress() (blockio.ScsiAddress, error)    { return blockio.ScsiAddress{}, nil }
func (d *sectorDevice) GetDriveLayout() (*mbr.LayoutBuffer, error)   { return nil, nil }
func (d *sectorDevice) SetDriveLayout(*mbr.LayoutBuffer) error       { return nil }
func (d *sectorDevice) LockVolume() error                            { return nil }
func (d *sectorDevice) DismountVolume() error                        { return nil }
func (d *sectorDevice) UnlockVolume() error                          { return nil }

func fat32BootSector() []byte {
	sector := make([]byte, 512)
	copy(sector[82:90], []byte("FAT32   "))
	sector[510] = 0x55
	sector[511] = 0xAA
	return sector
}

func TestInferFAT32(t *testing.T) {
	dev := &sectorDevice{sector: fat32BootSector()}
	result, err := fsinfer.Infer(dev)
	require.NoError(t, err)
	require.Equal(t, fsinfer.FAT32, result.Filesystem)
	require.False(t, result.Unformatted)
}

func TestInferZeroSectorIsRawUnformatted(t *testing.T) {
	dev := &sectorDevice{sector: make([]byte, 512)}
	result, err := fsinfer.Infer(dev)
	require.NoError(t, err)
	require.Equal(t, fsinfer.RAW, result.Filesystem)
	require.True(t, result.Unformatted)
}

func TestInferBtrfsMagic(t *testing.T) {
	sector := make([]byte, 512)
	copy(sector[0x40:], []byte("_BHRfS_M"))
	dev := &sectorDevice{sector: sector}

	result, err := fsinfer.Infer(dev)
	require.NoError(t, err)
	require.Equal(t, fsinfer.BTRFS, result.Filesystem)
}

func TestInferUnrecognizedNonZeroSectorIsRaw(t *testing.T) {
	sector := make([]byte, 512)
	sector[0] = 0xEB
	dev := &sectorDevice{sector: sector}

	result, err := fsinfer.Infer(dev)
	require.NoError(t, err)
	require.Equal(t, fsinfer.RAW, result.Filesystem)
	require.False(t, result.Unformatted)
}
