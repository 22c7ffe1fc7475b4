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

	"github.com/ostafen/partedit/internal/geometry"
	"github.com/ostafen/partedit/internal/mbr"
)

// Conventional CHS defaults used when a disk image's geometry can't be
// queried through an ioctl (plain regular file, not a block device).
const (
	defaultSectorsPerTrack   = 63
	defaultTracksPerCylinder = 255
)

// FileDevice backs a Device onto a plain *os.File: a disk image used in
// development, in the test suite, and on any OS without the real Windows
// IOCTL backend. The kernel drive-layout ioctl has no analogue for a
// regular file, so GetDriveLayout/SetDriveLayout translate directly to/from
// sector 0 using the mbr package.
type FileDevice struct {
	path     string
	file     *os.File
	readOnly bool
	size     int64
}

// OpenFile opens path as a file-backed Device. The file must already exist
// and be non-empty; partedit never creates a fresh disk image implicitly.
func OpenFile(path string) (Device, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	readOnly := false
	if err != nil {
		f, err = os.Open(path)
		readOnly = true
		if err != nil {
			return nil, fmt.Errorf("blockio: open %q: %w", path, err)
		}
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

	return &FileDevice{path: path, file: f, readOnly: readOnly, size: fi.Size()}, nil
}

func (d *FileDevice) Close() error {
	return d.file.Close()
}

func (d *FileDevice) ReadSector(lba uint64, n int) ([]byte, error) {
	buf := make([]byte, n*geometry.SectorSize)
	off := int64(lba) * geometry.SectorSize
	if _, err := d.file.ReadAt(buf, off); err != nil {
		return nil, fmt.Errorf("blockio: read sector %d: %w", lba, err)
	}
	return buf, nil
}

func (d *FileDevice) WriteSector(lba uint64, data []byte) error {
	if d.readOnly {
		return fmt.Errorf("blockio: %q opened read-only", d.path)
	}
	if len(data)%geometry.SectorSize != 0 {
		return fmt.Errorf("blockio: write length %d is not sector-aligned", len(data))
	}
	off := int64(lba) * geometry.SectorSize
	_, err := d.file.WriteAt(data, off)
	return err
}

func (d *FileDevice) Geometry() (Geometry, error) {
	totalSectors := uint64(d.size) / geometry.SectorSize
	cylinders := totalSectors / (defaultSectorsPerTrack * defaultTracksPerCylinder)
	return Geometry{
		Cylinders:         int64(cylinders),
		MediaType:         MediaFixed,
		TracksPerCylinder: defaultTracksPerCylinder,
		SectorsPerTrack:   defaultSectorsPerTrack,
		BytesPerSector:    geometry.SectorSize,
	}, nil
}

func (d *FileDevice) ScsiAddress() (ScsiAddress, error) {
	return ScsiAddress{}, nil
}

func (d *FileDevice) GetDriveLayout() (*mbr.LayoutBuffer, error) {
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

func (d *FileDevice) SetDriveLayout(layout *mbr.LayoutBuffer) error {
	if d.readOnly {
		return fmt.Errorf("blockio: %q opened read-only", d.path)
	}

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

func (d *FileDevice) LockVolume() error     { return nil }
func (d *FileDevice) DismountVolume() error { return nil }
func (d *FileDevice) UnlockVolume() error   { return nil }
