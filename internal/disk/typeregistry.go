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
package disk

import (
	"github.com/ostafen/partedit/internal/mbr"
	"github.com/ostafen/partedit/pkg/table"
)

// TypeDescriptor names and classifies one MBR partition type byte.
type TypeDescriptor struct {
	Type       mbr.PartitionType
	Name       string
	Recognized bool // IsRecognizedPartition: the OS knows how to mount this
}

// TypeRegistry is a byte-keyed lookup of MBR partition type descriptors,
// built once at startup. It is keyed through a PrefixTable the same way
// the file-signature registry keys multi-byte magic sequences, here over a
// one-byte key space.
type TypeRegistry struct {
	table *table.PrefixTable[TypeDescriptor]
}

// NewTypeRegistry builds the registry of well-known MBR partition types.
func NewTypeRegistry() *TypeRegistry {
	r := &TypeRegistry{table: table.New[TypeDescriptor]()}
	for _, d := range []TypeDescriptor{
		{mbr.PartitionTypeUnused, "Unused", false},
		{mbr.PartitionTypeFAT12, "FAT12", true},
		{mbr.PartitionTypeFAT16Small, "FAT16 (<32M)", true},
		{mbr.PartitionTypeExtendedCHS, "Extended", false},
		{mbr.PartitionTypeFAT16, "FAT16", true},
		{mbr.PartitionTypeNTFS, "NTFS/HPFS/exFAT", true},
		{mbr.PartitionTypeFAT32CHS, "FAT32", true},
		{mbr.PartitionTypeFAT32LBA, "FAT32 (LBA)", true},
		{mbr.PartitionTypeFAT16LBA, "FAT16 (LBA)", true},
		{mbr.PartitionTypeExtendedLBA, "Extended (LBA)", false},
		{mbr.PartitionTypeIFS, "IFS", true},
		{mbr.PartitionTypeLinuxSwap, "Linux swap", false},
		{mbr.PartitionTypeLinuxFilesystem, "Linux", false},
		{mbr.PartitionTypeGPTProtective, "GPT protective", false},
	} {
		r.table.Insert([]byte{byte(d.Type)}, d)
	}
	return r
}

// Lookup returns the descriptor for t, or a fallback "unrecognized" entry.
func (r *TypeRegistry) Lookup(t mbr.PartitionType) TypeDescriptor {
	if d, ok := r.table.Get([]byte{byte(t)}); ok {
		return d
	}
	return TypeDescriptor{Type: t, Name: "Unknown", Recognized: false}
}

// FATTypeForSize infers an MBR type byte for a newly created partition
// formatted as RawFS, choosing among the FAT-family codes by capacity: the
// same size bands the installer uses to decide FAT16 vs FAT16-LBA vs
// FAT32-LBA for a partition it is about to let Windows Setup format.
func FATTypeForSize(sectorCount uint64, bytesPerSector uint32) mbr.PartitionType {
	sizeBytes := sectorCount * uint64(bytesPerSector)
	const (
		mb32  = 32 << 20
		mb512 = 512 << 20
		gb2   = 2 << 30
		gb8   = 8 << 30
	)
	switch {
	case sizeBytes < mb32:
		return mbr.PartitionTypeFAT12
	case sizeBytes < mb512:
		return mbr.PartitionTypeFAT16Small
	case sizeBytes < gb2:
		return mbr.PartitionTypeFAT16LBA
	case sizeBytes < gb8:
		return mbr.PartitionTypeFAT32CHS
	default:
		return mbr.PartitionTypeFAT32LBA
	}
}
