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

// Package firmware enumerates the platform firmware's view of disks from
// the hierarchical configuration store: MultifunctionAdapter/<a>/
// DiskController/<c>/DiskPeripheral/<d>, each carrying an Identifier value
// and a Configuration Data resource list. The Scanner correlates these
// against the disks it discovers by (signature, checksum).
package firmware

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ostafen/partedit/internal/regstore"
)

const rootKey = `HARDWARE\DESCRIPTION\System\MultifunctionAdapter`

// Int13DriveParameter mirrors the BIOS INT 13h extended drive parameters
// captured in firmware Configuration Data: cylinders/heads/sectors and the
// signature the BIOS uses to identify the drive at boot.
type Int13DriveParameter struct {
	DriveSelect uint8
	MaxCylinder uint32
	MaxHead     uint8
	MaxSector   uint8
	Signature   uint32
}

// Disk is one firmware-visible disk entry.
type Disk struct {
	AdapterNumber    int
	ControllerNumber int
	DiskNumber       int

	Checksum  uint32
	Signature uint32

	Int13 Int13DriveParameter

	// Bound is true once the Scanner has matched this entry to a Disk by
	// (signature, checksum); firmware entries are matched at most once.
	Bound bool
}

// EnumerateFirmwareDisks walks the MultifunctionAdapter tree in store and
// returns every DiskPeripheral entry found, in adapter/controller/disk
// ascending enumeration order.
func EnumerateFirmwareDisks(store regstore.Store) ([]*Disk, error) {
	var disks []*Disk

	adapters, err := sortedNumericKeys(store, rootKey)
	if err != nil {
		if err == regstore.ErrNotExist {
			return nil, nil
		}
		return nil, err
	}

	for _, a := range adapters {
		controllerRoot := fmt.Sprintf(`%s\%d\DiskController`, rootKey, a)
		controllers, err := sortedNumericKeys(store, controllerRoot)
		if err == regstore.ErrNotExist {
			continue
		}
		if err != nil {
			return nil, err
		}

		for _, c := range controllers {
			peripheralRoot := fmt.Sprintf(`%s\%d\DiskPeripheral`, controllerRoot, c)
			peripherals, err := sortedNumericKeys(store, peripheralRoot)
			if err == regstore.ErrNotExist {
				continue
			}
			if err != nil {
				return nil, err
			}

			// Configuration Data under the controller key carries the
			// Int13DriveParameter list shared by every disk attached to it;
			// the d-th peripheral takes the d-th entry.
			int13s, err := parseInt13List(store, controllerRoot)
			if err != nil {
				return nil, err
			}

			for _, d := range peripherals {
				diskPath := fmt.Sprintf("%s\\%d", peripheralRoot, d)

				ident, err := store.ReadString(diskPath, "Identifier")
				if err != nil && err != regstore.ErrNotExist {
					return nil, err
				}
				checksum, signature, _ := parseIdentifier(ident)

				disk := &Disk{
					AdapterNumber:    0, // historical firmware convention, not <a>
					ControllerNumber: c,
					DiskNumber:       d,
					Checksum:         checksum,
					Signature:        signature,
				}
				if d < len(int13s) {
					disk.Int13 = int13s[d]
				}
				disks = append(disks, disk)
			}
		}
	}

	return disks, nil
}

// parseIdentifier parses "CCCCCCCC-SSSSSSSS-?" into (checksum, signature).
func parseIdentifier(ident string) (checksum, signature uint32, err error) {
	parts := strings.Split(ident, "-")
	if len(parts) < 2 {
		return 0, 0, fmt.Errorf("firmware: malformed identifier %q", ident)
	}
	c, err := strconv.ParseUint(parts[0], 16, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("firmware: malformed checksum in %q: %w", ident, err)
	}
	s, err := strconv.ParseUint(parts[1], 16, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("firmware: malformed signature in %q: %w", ident, err)
	}
	return uint32(c), uint32(s), nil
}

// parseInt13List reads the "Configuration Data" binary resource list under
// controllerPath and extracts each Int13DriveParameter record packed into
// it. The real resource list is a CM_FULL_RESOURCE_DESCRIPTOR chain; this
// trims it to the fixed-size Int13 records the Scanner needs, 14 bytes
// each: DriveSelect(1) MaxCylinder(4) MaxHead(1) MaxSector(1) Signature(4)
// plus 3 reserved bytes.
func parseInt13List(store regstore.Store, controllerPath string) ([]Int13DriveParameter, error) {
	data, err := store.ReadBinary(controllerPath, "Configuration Data")
	if err == regstore.ErrNotExist {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	const recordSize = 14
	n := len(data) / recordSize
	out := make([]Int13DriveParameter, 0, n)
	for i := 0; i < n; i++ {
		r := data[i*recordSize : (i+1)*recordSize]
		out = append(out, Int13DriveParameter{
			DriveSelect: r[0],
			MaxCylinder: leUint32(r[1:5]),
			MaxHead:     r[5],
			MaxSector:   r[6],
			Signature:   leUint32(r[7:11]),
		})
	}
	return out, nil
}

func leUint32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// sortedNumericKeys enumerates the subkeys of path and returns their
// integer names in ascending order, skipping any non-numeric subkey.
func sortedNumericKeys(store regstore.Store, path string) ([]int, error) {
	names, err := store.EnumerateSubKeys(path)
	if err != nil {
		return nil, err
	}

	nums := make([]int, 0, len(names))
	for _, name := range names {
		n, err := strconv.Atoi(name)
		if err != nil {
			continue
		}
		nums = append(nums, n)
	}
	sort.Ints(nums)
	return nums, nil
}
