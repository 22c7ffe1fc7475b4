//go:build !windows
// +build !windows

// Copyright (c) 2025 Stefano Scafiti
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
package blockio

import (
	"fmt"
	"os"
	"syscall"

	"github.com/ostafen/partedit/internal/geometry"
	"github.com/ostafen/partedit/internal/mbr"
)

// MmapDevice is a read-optimized flavor of FileDevice: sector reads are
// served from a shared memory mapping of the whole image instead of
// syscall reads, which matters for the Scanner's repeated small reads over
// a large image. Writes (layout rewrites) still go through pwrite, so the
// mapping only ever needs PROT_READ.
type MmapDevice struct {
	path string
	file *os.File
	data []byte
}

// OpenMmap memory-maps path read-only and returns a Device backed by it.
func OpenMmap(path string) (Device, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("blockio: open %q: %w", path, err)
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("blockio: stat %q: %w", path, err)
	}
	if fi.Size() == 0 {
		f.Close()
		return nil, fmt.Errorf("blockio: %q is empty", path)
	}

	data, err := syscall.Mmap(int(f.Fd()), 0, int(fi.Size()), syscall.PROT_READ, syscall.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("blockio: mmap %q: %w", path, err)
	}

	return &MmapDevice{path: path, file: f, data: data}, nil
}

func (d *MmapDevice) Close() error {
	err := syscall.Munmap(d.data)
	if cerr := d.file.Close(); err == nil {
		err = cerr
	}
	return err
}

func (d *MmapDevice) ReadSector(lba uint64, n int) ([]byte, error) {
	start := int(lba) * geometry.SectorSize
	end := start + n*geometry.SectorSize
	if start < 0 || end > len(d.data) {
		return nil, fmt.Errorf("blockio: sector range [%d,%d) out of bounds for %q", lba, lba+uint64(n), d.path)
	}
	out := make([]byte, end-start)
	copy(out, d.data[start:end])
	return out, nil
}

func (d *MmapDevice) WriteSector(lba uint64, data []byte) error {
	if len(data)%geometry.SectorSize != 0 {
		return fmt.Errorf("blockio: write length %d is not sector-aligned", len(data))
	}
	off := int64(lba) * geometry.SectorSize
	_, err := d.file.WriteAt(data, off)
	return err
}

func (d *MmapDevice) Geometry() (Geometry, error) {
	totalSectors := uint64(len(d.data)) / geometry.SectorSize
	cylinders := totalSectors / (defaultSectorsPerTrack * defaultTracksPerCylinder)
	return Geometry{
		Cylinders:         int64(cylinders),
		MediaType:         MediaFixed,
		TracksPerCylinder: defaultTracksPerCylinder,
		SectorsPerTrack:   defaultSectorsPerTrack,
		BytesPerSector:    geometry.SectorSize,
	}, nil
}

func (d *MmapDevice) ScsiAddress() (ScsiAddress, error) { return ScsiAddress{}, nil }

func (d *MmapDevice) GetDriveLayout() (*mbr.LayoutBuffer, error) {
	sector, err := d.ReadSector(0, 1)
	if err != nil {
		return nil, err
	}
	parsed, err := mbr.Parse(sector)
	if err != nil {
		return nil, err
	}
	buf := mbr.NewLayoutBuffer(4)
	copy(buf.Entries, parsed.Entries[:])
	buf.Signature = parsed.DiskSignature
	buf.PartitionCount = 4
	return buf, nil
}

func (d *MmapDevice) SetDriveLayout(layout *mbr.LayoutBuffer) error {
	current, err := d.ReadSector(0, 1)
	if err != nil {
		return err
	}
	var out [4]mbr.MBRPartitionEntry
	for i := 0; i < 4 && i < len(layout.Entries); i++ {
		out[i] = layout.Entries[i]
	}
	sector := mbr.EncodeSector(current[:geometry.DiskSignatureOffset], layout.Signature, out)
	return d.WriteSector(0, sector)
}

func (d *MmapDevice) LockVolume() error     { return nil }
func (d *MmapDevice) DismountVolume() error { return nil }
func (d *MmapDevice) UnlockVolume() error   { return nil }
