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

// Package mbr parses and serializes the 512-byte Master Boot Record sector
// and the kernel-facing "drive layout" buffer used by SET_DRIVE_LAYOUT.
package mbr

import (
	"encoding/binary"
	"fmt"

	"github.com/ostafen/partedit/internal/geometry"
)

// PartitionType is the single-byte MBR partition type code.
type PartitionType uint8

const (
	PartitionTypeUnused          PartitionType = 0x00
	PartitionTypeFAT12           PartitionType = 0x01
	PartitionTypeFAT16Small      PartitionType = 0x04
	PartitionTypeExtendedCHS     PartitionType = 0x05
	PartitionTypeFAT16           PartitionType = 0x06
	PartitionTypeNTFS            PartitionType = 0x07
	PartitionTypeFAT32CHS        PartitionType = 0x0B
	PartitionTypeFAT32LBA        PartitionType = 0x0C
	PartitionTypeFAT16LBA        PartitionType = 0x0E
	PartitionTypeExtendedLBA     PartitionType = 0x0F
	PartitionTypeIFS             PartitionType = 0x17
	PartitionTypeLinuxSwap       PartitionType = 0x82
	PartitionTypeLinuxFilesystem PartitionType = 0x83
	PartitionTypeGPTProtective   PartitionType = 0xEE
)

// IsFATFamily reports whether t is one of the FAT type bytes the Volume
// Mounter treats as "unformatted RAW is plausible".
func (t PartitionType) IsFATFamily() bool {
	switch t {
	case 0x01, 0x04, 0x06, 0x0E, 0x0B, 0x0C:
		return true
	}
	return false
}

// IsContainer reports whether t marks an extended partition container.
func (t PartitionType) IsContainer() bool {
	return t == PartitionTypeExtendedCHS || t == PartitionTypeExtendedLBA
}

// IsRecognized mirrors the kernel's IsRecognizedPartition classification:
// false only for an unused slot or an extended container.
func (t PartitionType) IsRecognized() bool {
	return t != PartitionTypeUnused && !t.IsContainer()
}

// MBRPartitionEntry is one 16-byte entry in the MBR partition table or the
// kernel drive-layout buffer.
type MBRPartitionEntry struct {
	BootIndicator bool
	StartCHS      [3]byte
	PartitionType PartitionType
	EndCHS        [3]byte
	StartLBA      uint32
	TotalSectors  uint32

	// Recognized mirrors the kernel's IsRecognizedPartition classification:
	// true for any partition type the OS knows how to mount a filesystem on.
	Recognized bool
	// Rewrite marks this slot for unconditional rewrite by the Writer, even
	// when its contents are unchanged.
	Rewrite bool
	// OnDiskPartitionNumber is the sequential 1-based partition number
	// assigned across primaries then logicals, skipping containers.
	OnDiskPartitionNumber int
}

func (e *MBRPartitionEntry) encode(buf []byte) {
	if e.BootIndicator {
		buf[0x00] = 0x80
	} else {
		buf[0x00] = 0x00
	}
	copy(buf[0x01:0x04], e.StartCHS[:])
	buf[0x04] = byte(e.PartitionType)
	copy(buf[0x05:0x08], e.EndCHS[:])
	binary.LittleEndian.PutUint32(buf[0x08:0x0C], e.StartLBA)
	binary.LittleEndian.PutUint32(buf[0x0C:0x10], e.TotalSectors)
}

func decodeEntry(buf []byte) MBRPartitionEntry {
	var e MBRPartitionEntry
	e.BootIndicator = buf[0x00] == 0x80
	copy(e.StartCHS[:], buf[0x01:0x04])
	e.PartitionType = PartitionType(buf[0x04])
	copy(e.EndCHS[:], buf[0x05:0x08])
	e.StartLBA = binary.LittleEndian.Uint32(buf[0x08:0x0C])
	e.TotalSectors = binary.LittleEndian.Uint32(buf[0x0C:0x10])
	return e
}

// Sector represents the parsed contents of MBR sector 0.
type Sector struct {
	BootCode      [geometry.BootCodeSize]byte
	DiskSignature uint32
	Entries       [4]MBRPartitionEntry
}

// Parse parses a 512-byte slice into a Sector. It does not validate the
// 0xAA55 magic; callers classify disk style from the raw bytes first, since
// a Raw disk's sector 0 is never handed to Parse.
func Parse(data []byte) (*Sector, error) {
	if len(data) != geometry.SectorSize {
		return nil, fmt.Errorf("mbr: expected %d bytes, got %d", geometry.SectorSize, len(data))
	}

	var s Sector
	copy(s.BootCode[:], data[0:geometry.DiskSignatureOffset])
	s.DiskSignature = binary.LittleEndian.Uint32(data[geometry.DiskSignatureOffset : geometry.DiskSignatureOffset+4])

	for i := 0; i < 4; i++ {
		off := geometry.PartitionTableOffset + i*geometry.PartitionEntrySize
		s.Entries[i] = decodeEntry(data[off : off+geometry.PartitionEntrySize])
	}
	return &s, nil
}

// ReadMagic returns the 2-byte magic at offset 0x1FE without requiring a
// full Parse, so the Scanner can classify disk style before deciding
// whether to parse the rest of the sector.
func ReadMagic(data []byte) uint16 {
	if len(data) < geometry.MagicOffset+2 {
		return 0
	}
	return binary.LittleEndian.Uint16(data[geometry.MagicOffset : geometry.MagicOffset+2])
}

// ReadDiskSignature reads the 4-byte disk signature at offset 0x1B8.
func ReadDiskSignature(data []byte) uint32 {
	if len(data) < geometry.DiskSignatureOffset+4 {
		return 0
	}
	return binary.LittleEndian.Uint32(data[geometry.DiskSignatureOffset : geometry.DiskSignatureOffset+4])
}

// Checksum computes the 32-bit MBR checksum: the two's-complement negation
// of the sum of the first 128 little-endian 32-bit words of the sector.
func Checksum(data []byte) uint32 {
	var sum uint32
	n := len(data)
	if n > geometry.SectorSize {
		n = geometry.SectorSize
	}
	words := n / 4
	if words > 128 {
		words = 128
	}
	for i := 0; i < words; i++ {
		sum += binary.LittleEndian.Uint32(data[i*4 : i*4+4])
	}
	return -sum
}

// LayoutBuffer mirrors the kernel-facing array of partition entries used by
// SET_DRIVE_LAYOUT/GET_DRIVE_LAYOUT. It grows in groups of four, matching
// the Scanner's grow-by-4-and-retry loop against the kernel ioctl.
type LayoutBuffer struct {
	PartitionCount int // kernel-reported partition count, preserved across SetDriveLayout
	Entries        []MBRPartitionEntry
	Signature      uint32
}

// NewLayoutBuffer allocates a LayoutBuffer with n entries (n must be a
// multiple of 4), all zeroed.
func NewLayoutBuffer(n int) *LayoutBuffer {
	return &LayoutBuffer{Entries: make([]MBRPartitionEntry, n)}
}

// Resize grows or shrinks the entry slice to exactly n slots, preserving
// existing entries in place.
func (b *LayoutBuffer) Resize(n int) {
	if n == len(b.Entries) {
		return
	}
	grown := make([]MBRPartitionEntry, n)
	copy(grown, b.Entries)
	b.Entries = grown
}

// EncodeSector writes the first four entries of the layout buffer and the
// disk signature into a fresh 512-byte MBR sector image, preserving the
// supplied boot code and setting the 0x55AA magic.
func EncodeSector(bootCode []byte, signature uint32, entries [4]MBRPartitionEntry) []byte {
	buf := make([]byte, geometry.SectorSize)
	copy(buf[0:geometry.DiskSignatureOffset], bootCode)
	binary.LittleEndian.PutUint32(buf[geometry.DiskSignatureOffset:geometry.DiskSignatureOffset+4], signature)

	for i, e := range entries {
		off := geometry.PartitionTableOffset + i*geometry.PartitionEntrySize
		e.encode(buf[off : off+geometry.PartitionEntrySize])
	}
	binary.LittleEndian.PutUint16(buf[geometry.MagicOffset:geometry.MagicOffset+2], geometry.Magic)
	return buf
}
