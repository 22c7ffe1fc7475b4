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

// Package disk holds the in-memory partition data model shared by the
// Scanner, Editor, Volume Mounter and Writer: PartitionList, Disk, Region
// and Volume, plus the invariants every Editor mutation must preserve.
//
// Ownership is pointer-style rather than index-based: a PartitionList owns
// a slice of *Disk and a *Disk owns slices of *Region, and a Region holds a
// back-pointer to its owning *Disk. Nothing here is copied by value once
// built; the Scanner and Editor always operate on the heap-allocated
// originals.
package disk

import (
	"fmt"

	"github.com/ostafen/partedit/internal/blockio"
	"github.com/ostafen/partedit/internal/firmware"
	"github.com/ostafen/partedit/internal/mbr"
)

// PartitionDevicePath formats the collaborator path used to open the n-th
// partition of disk diskNumber.
func PartitionDevicePath(diskNumber, partitionNumber int) string {
	return fmt.Sprintf(`\Device\Harddisk%d\Partition%d`, diskNumber, partitionNumber)
}

// Style is the classification of a disk's partition table.
type Style int

const (
	StyleUninitialized Style = iota
	StyleRaw
	StyleMbr
	StyleGpt
)

func (s Style) String() string {
	switch s {
	case StyleRaw:
		return "Raw"
	case StyleMbr:
		return "Mbr"
	case StyleGpt:
		return "Gpt"
	default:
		return "Uninitialized"
	}
}

// FormatState is the Volume Mounter's classification of a region's content.
type FormatState int

const (
	Unformatted FormatState = iota
	UnformattedOrDamaged
	UnknownFormat
	Formatted
)

// Volume is the filesystem-level view of a partitioned Region.
type Volume struct {
	DeviceName  string
	DriveLetter byte // 0 means unassigned
	Label       string
	Filesystem  string
	Format      FormatState
	New         bool
	NeedsCheck  bool
}

// Mounted reports whether the volume currently has an open device name and
// drive assignment, i.e. was produced by a successful MountVolume call.
func (v *Volume) Mounted() bool {
	return v.DeviceName != "" && v.DriveLetter != 0
}

// Reset clears every field mount-state carries, the way DismountVolume
// leaves a Volume regardless of whether the lock/dismount/unlock sequence
// itself succeeded.
func (v *Volume) Reset() {
	v.DriveLetter = 0
	v.Filesystem = ""
	v.Label = ""
	v.Format = Unformatted
	v.NeedsCheck = false
}

// Region is one contiguous sector range on a Disk: either partitioned
// (is_partitioned=true) or free space available for a new partition.
type Region struct {
	Disk *Disk

	StartSector uint64
	SectorCount uint64

	PartitionType mbr.PartitionType
	BootIndicator bool

	// OnDiskPartitionNumber is the sequential 1-based number assigned
	// across primaries then logicals (skipping containers); PartitionNumber
	// is set from OnDiskPartitionNumber by a successful writeback.
	OnDiskPartitionNumber int
	PartitionNumber       int

	// LayoutIndex is this region's slot in Disk.Layout.Entries, or -1 if it
	// has none yet (a region created but not yet laid out).
	LayoutIndex int

	Logical       bool
	IsPartitioned bool
	New           bool
	AutoCreated   bool
	Rewrite       bool

	Volume Volume
}

// EndSector is the sector one past the region's last sector.
func (r *Region) EndSector() uint64 {
	return r.StartSector + r.SectorCount
}

// IsContainer reports whether this region is the disk's extended container.
func (r *Region) IsContainer() bool {
	return r.IsPartitioned && r.PartitionType.IsContainer()
}

// MarkFree resets r in place to an unpartitioned region covering the same
// sector range, as the last arm of the Editor's delete-merge table does
// when neither neighbour is free.
func (r *Region) MarkFree() {
	r.IsPartitioned = false
	r.PartitionType = mbr.PartitionTypeUnused
	r.BootIndicator = false
	r.New = false
	r.AutoCreated = false
	r.OnDiskPartitionNumber = 0
	r.PartitionNumber = 0
	r.Volume = Volume{}
}

// Disk owns a single block device: its physical geometry, its classified
// style, the kernel-facing layout buffer, and the ordered primary/logical
// region lists that model it.
type Disk struct {
	Number int // system disk index n, from \Device\Harddisk<n>

	Geometry    blockio.Geometry
	Alignment   uint64 // sector alignment (sectors per track)
	CylinderLen uint64 // cylinder alignment

	Scsi blockio.ScsiAddress

	// Firmware annotation.
	HwAdapter    int
	HwController int
	HwDisk       int
	FirmwareHit  bool
	FixedIndex   int // index among fixed disks only, after removable compression

	Style Style

	// Signature and Checksum mirror the MBR fields read from sector 0.
	Signature uint32
	Checksum  uint32

	DriverName string

	Layout *mbr.LayoutBuffer
	Dirty  bool
	IsNew  bool

	SuperFloppy bool

	Primary []*Region
	Logical []*Region

	// Extended is the disk's single extended container region, or nil.
	Extended *Region

	opener blockio.Opener
	path   string
}

// NewDisk constructs a Disk scoped to the given system index, opened
// through opener against its whole-device path.
func NewDisk(number int, opener blockio.Opener, path string) *Disk {
	return &Disk{Number: number, opener: opener, path: path}
}

// DevicePath returns the collaborator path for this disk's whole-device
// handle, \Device\Harddisk<n>\Partition0.
func (d *Disk) DevicePath() string {
	return d.path
}

// Open opens a fresh Device handle for this disk through the Opener it was
// scanned with. Callers must Close it on every exit path.
func (d *Disk) Open() (blockio.Device, error) {
	return d.opener(d.path)
}

// PartitionList is the top-level aggregate: every scanned Disk, every
// firmware-visible disk, and an optional reference to the system partition.
type PartitionList struct {
	Disks         []*Disk
	FirmwareDisks []*firmware.Disk

	SystemPartition *Region
}

// GetDiskByNumber returns the Disk with the given system index, or nil.
func (l *PartitionList) GetDiskByNumber(n int) *Disk {
	for _, d := range l.Disks {
		if d.Number == n {
			return d
		}
	}
	return nil
}

// GetDiskByScsi returns the Disk at the given SCSI address, or nil.
func (l *PartitionList) GetDiskByScsi(addr blockio.ScsiAddress) *Disk {
	for _, d := range l.Disks {
		if d.Scsi == addr {
			return d
		}
	}
	return nil
}

// GetDiskBySignature returns the Disk whose MBR signature matches, or nil.
func (l *PartitionList) GetDiskBySignature(signature uint32) *Disk {
	for _, d := range l.Disks {
		if d.Signature == signature {
			return d
		}
	}
	return nil
}

// GetDiskByBiosNumber returns the Disk whose firmware entry reports the
// given BIOS Int13 drive select, or nil.
func (l *PartitionList) GetDiskByBiosNumber(n int) *Disk {
	for _, d := range l.Disks {
		for _, fd := range l.FirmwareDisks {
			if fd.Bound && fd.Int13.DriveSelect == uint8(n) && l.firmwareMatchesDisk(fd, d) {
				return d
			}
		}
	}
	return nil
}

func (l *PartitionList) firmwareMatchesDisk(fd *firmware.Disk, d *Disk) bool {
	return fd.Signature == d.Signature && fd.Checksum == d.Checksum
}

// GetPartition returns the region on disk carrying the given on-disk
// partition number, or nil.
func (l *PartitionList) GetPartition(d *Disk, partitionNumber int) *Region {
	for _, r := range d.Primary {
		if r.IsPartitioned && r.OnDiskPartitionNumber == partitionNumber {
			return r
		}
	}
	for _, r := range d.Logical {
		if r.IsPartitioned && r.OnDiskPartitionNumber == partitionNumber {
			return r
		}
	}
	return nil
}

// GetDiskOrPartition resolves a (disk number, optional partition number)
// pair against the list.
func (l *PartitionList) GetDiskOrPartition(diskNo int, partNo *int) (*Disk, *Region) {
	d := l.GetDiskByNumber(diskNo)
	if d == nil || partNo == nil {
		return d, nil
	}
	return d, l.GetPartition(d, *partNo)
}

// SelectPartition is a convenience accessor returning the Region for
// (diskNo, partNo), or nil if either half doesn't resolve.
func (l *PartitionList) SelectPartition(diskNo, partNo int) *Region {
	_, r := l.GetDiskOrPartition(diskNo, &partNo)
	return r
}

// IsSuperFloppy reports whether d was classified as a super-floppy: a
// single entry at offset 0 with zero hidden sectors, which restricts the
// Editor to a single primary partition.
func (d *Disk) IsSuperFloppy() bool {
	return d.SuperFloppy
}

// IsPartitionActive reports whether r carries the MBR boot indicator.
func IsPartitionActive(r *Region) bool {
	return r != nil && r.BootIndicator
}
