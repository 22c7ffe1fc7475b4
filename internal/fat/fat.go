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

// Package fat parses the FAT12/16/32 boot sector (BIOS Parameter Block).
// The Volume Mounter uses it as a fallback heuristic when the filesystem
// inference collaborator reports "RAW": a well-formed BPB with a FAT
// filesystem-type tag is a strong signal the volume is actually unformatted
// rather than damaged.
package fat

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// BootSectorSize is the size of a FAT boot sector in bytes.
const BootSectorSize = 0x200

// BootSector represents the FAT boot sector / BIOS Parameter Block.
type BootSector struct {
	Ignored           [3]byte
	SystemID          [8]byte
	SectorSize        uint16
	SectorsPerCluster uint8
	Reserved          uint16
	Fats              uint8
	DirEntries        uint16
	Sectors           uint16
	Media             uint8
	FatLength         uint16
	SecsTrack         uint16
	Heads             uint16
	Hidden            uint32
	TotalSect         uint32

	// FAT32-only fields.
	Fat32Length  uint32
	Flags        uint16
	Version      uint16
	RootCluster  uint32
	InfoSector   uint16
	BackupBoot   uint16
	BPBReserved  [12]byte
	BSDrvNum     uint8
	BSReserved1  uint8
	BSBootSig    uint8
	BSVolID      uint32
	BSVolLab     [11]byte
	BSFilSysType [8]byte

	Marker uint16
}

// Parse reads a 512-byte boot sector. It returns an error if the 0xAA55
// marker is missing; callers treat that as "not a FAT volume", not a fatal
// condition.
func Parse(data []byte) (*BootSector, error) {
	if len(data) != BootSectorSize {
		return nil, fmt.Errorf("fat: expected %d bytes, got %d", BootSectorSize, len(data))
	}

	var bs rawBootSector
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &bs); err != nil {
		return nil, fmt.Errorf("fat: decode boot sector: %w", err)
	}

	if bs.Marker != 0xAA55 {
		return nil, fmt.Errorf("fat: invalid boot sector marker 0x%04X", bs.Marker)
	}
	return bs.convert(), nil
}

// FilesystemTag returns the trimmed BSFilSysType/SystemID string ("FAT12",
// "FAT16", "FAT32", ...) used to corroborate a RAW inference result.
func (b *BootSector) FilesystemTag() string {
	tag := bytes.TrimRight(b.BSFilSysType[:], " \x00")
	if len(tag) == 0 {
		tag = bytes.TrimRight(b.SystemID[:], " \x00")
	}
	return string(tag)
}

// rawBootSector is the exact wire layout, decoded with binary.Read and then
// converted into the friendlier BootSector above.
type rawBootSector struct {
	Ignored           [3]byte
	SystemID          [8]byte
	SectorSize        uint16
	SectorsPerCluster uint8
	Reserved          uint16
	Fats              uint8
	DirEntries        uint16
	Sectors           uint16
	Media             uint8
	FatLength         uint16
	SecsTrack         uint16
	Heads             uint16
	Hidden            uint32
	TotalSect         uint32
	Fat32Length       uint32
	Flags             uint16
	Version           uint16
	RootCluster       uint32
	InfoSector        uint16
	BackupBoot        uint16
	BPBReserved       [12]byte
	BSDrvNum          uint8
	BSReserved1       uint8
	BSBootSig         uint8
	BSVolID           uint32
	BSVolLab          [11]byte
	BSFilSysType      [8]byte
	Nothing           [420]byte
	Marker            uint16
}

func (r *rawBootSector) convert() *BootSector {
	return &BootSector{
		Ignored:           r.Ignored,
		SystemID:          r.SystemID,
		SectorSize:        r.SectorSize,
		SectorsPerCluster: r.SectorsPerCluster,
		Reserved:          r.Reserved,
		Fats:              r.Fats,
		DirEntries:        r.DirEntries,
		Sectors:           r.Sectors,
		Media:             r.Media,
		FatLength:         r.FatLength,
		SecsTrack:         r.SecsTrack,
		Heads:             r.Heads,
		Hidden:            r.Hidden,
		TotalSect:         r.TotalSect,
		Fat32Length:       r.Fat32Length,
		Flags:             r.Flags,
		Version:           r.Version,
		RootCluster:       r.RootCluster,
		InfoSector:        r.InfoSector,
		BackupBoot:        r.BackupBoot,
		BPBReserved:       r.BPBReserved,
		BSDrvNum:          r.BSDrvNum,
		BSReserved1:       r.BSReserved1,
		BSBootSig:         r.BSBootSig,
		BSVolID:           r.BSVolID,
		BSVolLab:          r.BSVolLab,
		BSFilSysType:      r.BSFilSysType,
		Marker:            r.Marker,
	}
}
