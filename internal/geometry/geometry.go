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

// Package geometry holds the alignment arithmetic and disk-geometry
// constants shared by the scanner, editor and writer.
package geometry

// DefaultSectorSize is used whenever a device cannot report its own
// logical sector size (e.g. a plain disk image opened as a regular file).
const DefaultSectorSize = 512

// CHSLBABoundary is the CHS/LBA threshold in sectors (about 743 MB at 512
// bytes a sector) used to pick
// between PARTITION_EXTENDED and PARTITION_XINT13_EXTENDED for a new
// extended container.
const CHSLBABoundary uint64 = 1_450_560

// MBR on-disk layout constants.
const (
	SectorSize          = 512
	BootCodeSize         = 440
	DiskSignatureOffset  = 0x1B8
	PartitionTableOffset = 0x1BE
	PartitionEntrySize   = 16
	MagicOffset          = 0x1FE
	Magic                = 0xAA55
	MaxPrimaryEntries    = 4
)

// AlignDown rounds v down to the nearest multiple of a. a == 0 is treated
// as "no alignment" and returns v unchanged.
func AlignDown(v, a uint64) uint64 {
	if a == 0 {
		return v
	}
	return (v / a) * a
}

// AlignUp rounds v up to the nearest multiple of a, unless v is already a
// multiple of a.
func AlignUp(v, a uint64) uint64 {
	if a == 0 {
		return v
	}
	down := AlignDown(v, a)
	if down == v {
		return v
	}
	return down + a
}

// SectorsToBytes converts a sector count to a byte count given a sector size.
func SectorsToBytes(sectors uint64, sectorSize uint32) uint64 {
	return sectors * uint64(sectorSize)
}

// BytesToSectors converts a byte count to a (floor) sector count given a
// sector size. Used when clamping a requested partition size: a remainder
// smaller than one sector is dropped, never rounded up past the region.
func BytesToSectors(bytes uint64, sectorSize uint32) uint64 {
	if sectorSize == 0 {
		return 0
	}
	return bytes / uint64(sectorSize)
}

// ExtendedPartitionType returns the MBR type byte an extended container
// should be stamped with, based on where it starts on the disk.
func ExtendedPartitionType(startSector uint64) byte {
	if startSector < CHSLBABoundary {
		return 0x05
	}
	return 0x0F
}
