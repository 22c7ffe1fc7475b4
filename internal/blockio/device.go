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

// Package blockio is the raw I/O collaborator the core consumes: opening a
// device by path, reading sectors, querying geometry and SCSI address,
// reading/writing the kernel drive layout, and locking/dismounting volumes.
// One implementation talks to real Windows devices through DeviceIoControl;
// others back onto a disk-image file for development and for the test
// suite.
package blockio

import (
	"io"

	"github.com/ostafen/partedit/internal/mbr"
)

// MediaType mirrors the subset of Windows' STORAGE_MEDIA_TYPE the Scanner
// cares about: only Fixed and Removable disks are scanned; any other media
// type causes the disk to be skipped.
type MediaType int

const (
	MediaUnknown MediaType = iota
	MediaFixed
	MediaRemovable
)

// Geometry is the subset of CM_DISK_GEOMETRY_DEVICE_DATA / DISK_GEOMETRY
// the engine needs: total sectors, bytes per sector, and the CHS shape used
// to derive sector/cylinder alignment.
type Geometry struct {
	Cylinders         int64
	MediaType         MediaType
	TracksPerCylinder uint32
	SectorsPerTrack   uint32
	BytesPerSector    uint32
}

// TotalSectors returns the disk's usable sector count implied by the CHS
// geometry (Cylinders * TracksPerCylinder * SectorsPerTrack).
func (g Geometry) TotalSectors() uint64 {
	return uint64(g.Cylinders) * uint64(g.TracksPerCylinder) * uint64(g.SectorsPerTrack)
}

// SectorAlignment is sectors-per-track: the alignment unit for region
// boundaries.
func (g Geometry) SectorAlignment() uint64 {
	if g.SectorsPerTrack == 0 {
		return 1
	}
	return uint64(g.SectorsPerTrack)
}

// CylinderAlignment is tracks-per-cylinder * sectors-per-track.
func (g Geometry) CylinderAlignment() uint64 {
	return uint64(g.TracksPerCylinder) * g.SectorAlignment()
}

// ScsiAddress identifies a device's position on its controller.
type ScsiAddress struct {
	PortNumber uint8
	PathID     uint8
	TargetID   uint8
	Lun        uint8
}

// Device is the per-disk I/O handle the Scanner, Editor, Mounter and Writer
// operate through. Every Device is opened scoped to one call site and
// closed on all exit paths; none are cached in the data model across calls.
type Device interface {
	io.Closer

	// ReadSector reads n sectors starting at the given 0-based LBA.
	ReadSector(lba uint64, n int) ([]byte, error)

	// WriteSector writes data (a multiple of the sector size) starting at
	// the given LBA. Only used by the real-device and file-backed Writer
	// paths; a read-only Device returns an error.
	WriteSector(lba uint64, data []byte) error

	Geometry() (Geometry, error)
	ScsiAddress() (ScsiAddress, error)

	// GetDriveLayout reads the kernel's current view of the partition
	// table (IOCTL_DISK_GET_DRIVE_LAYOUT_EX or equivalent).
	GetDriveLayout() (*mbr.LayoutBuffer, error)

	// SetDriveLayout pushes a rebuilt layout buffer to the kernel
	// (IOCTL_DISK_SET_DRIVE_LAYOUT_EX or equivalent). Implementations must
	// preserve the original PartitionCount field across the call the way
	// the kernel helper expects.
	SetDriveLayout(*mbr.LayoutBuffer) error

	// LockVolume/DismountVolume/UnlockVolume implement the volume dismount
	// sequence: lock, dismount, unlock, in that order, with the lock always
	// released even if dismount fails.
	LockVolume() error
	DismountVolume() error
	UnlockVolume() error
}

// Opener opens a Device by its collaborator-facing path
// (\Device\Harddisk<n>\Partition<p>, or a file path in file-backed mode).
type Opener func(path string) (Device, error)
