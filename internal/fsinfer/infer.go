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

// Package fsinfer infers the filesystem actually present on a volume's
// first sectors, independent of what the MBR partition type byte claims.
// The Volume Mounter trusts this over the type byte: a partition can carry
// a stale or wrong type byte, but the boot sector rarely lies.
package fsinfer

import (
	"fmt"
	"strings"

	"github.com/ostafen/partedit/internal/blockio"
	"github.com/ostafen/partedit/internal/fat"
)

// Filesystem is the inferred kind of a volume's content.
type Filesystem string

const (
	Unknown Filesystem = "Unknown"
	RAW     Filesystem = "RAW"
	FAT12   Filesystem = "FAT12"
	FAT16   Filesystem = "FAT16"
	FAT32   Filesystem = "FAT32"
	NTFS    Filesystem = "NTFS"
	BTRFS   Filesystem = "BTRFS"
)

// Result is the outcome of inferring a volume's filesystem.
type Result struct {
	Filesystem Filesystem
	// Unformatted is true when the boot sector is well-formed but carries
	// no recognizable filesystem signature: a FAT BPB with a zero total
	// sector count, or an all-zero sector, rather than genuinely unreadable
	// media.
	Unformatted bool
}

const btrfsMagic = "_BHRfS_M"

// Infer reads the first sector of a volume through dev and classifies it.
func Infer(dev blockio.Device) (Result, error) {
	sector, err := dev.ReadSector(0, 1)
	if err != nil {
		return Result{}, fmt.Errorf("fsinfer: read boot sector: %w", err)
	}

	if isZero(sector) {
		return Result{Filesystem: RAW, Unformatted: true}, nil
	}

	if bs, err := fat.Parse(sector); err == nil {
		switch tag := bs.FilesystemTag(); {
		case tag == "NTFS":
			return Result{Filesystem: NTFS}, nil
		case strings.Contains(strings.ToUpper(tag), "FAT32"):
			return Result{Filesystem: FAT32}, nil
		case strings.Contains(strings.ToUpper(tag), "FAT16"):
			return Result{Filesystem: FAT16}, nil
		case strings.Contains(strings.ToUpper(tag), "FAT12"):
			return Result{Filesystem: FAT12}, nil
		case bs.Sectors == 0 && bs.TotalSect == 0:
			// Well-formed BPB but zero volume size: corroborates "plausibly
			// unformatted" rather than a damaged filesystem.
			return Result{Filesystem: RAW, Unformatted: true}, nil
		}
	}

	if len(sector) >= 0x48+len(btrfsMagic) && string(sector[0x40:0x40+len(btrfsMagic)]) == btrfsMagic {
		return Result{Filesystem: BTRFS}, nil
	}

	return Result{Filesystem: RAW}, nil
}

func isZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}
