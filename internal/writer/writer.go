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

// Package writer rebuilds a disk's on-disk layout buffer from the region
// model, pushes it to the device, and records the resulting drive-letter
// assignments in the mount-point registry.
package writer

import (
	"encoding/binary"
	"fmt"

	"github.com/ostafen/partedit/internal/clock"
	"github.com/ostafen/partedit/internal/disk"
	"github.com/ostafen/partedit/internal/logger"
	"github.com/ostafen/partedit/internal/regstore"
)

const mountedDevicesKey = `SYSTEM\MountedDevices`

// Writer pushes region-model changes to devices and the registry.
type Writer struct {
	Log   *logger.Logger
	Clock clock.Source
	Store regstore.Store
}

// WritePartitions pushes d's layout buffer to its device if dirty. On
// success it copies each partitioned region's OnDiskPartitionNumber into its
// PartitionNumber (partition numbers are not read back from the device),
// clears every region's New flag, and clears Dirty. It does not retry.
func (w *Writer) WritePartitions(d *disk.Disk) error {
	if !d.Dirty {
		return nil
	}

	dev, err := d.Open()
	if err != nil {
		return fmt.Errorf("writer: open disk %d: %w", d.Number, err)
	}
	defer dev.Close()

	savedCount := d.Layout.PartitionCount
	if err := dev.SetDriveLayout(d.Layout); err != nil {
		return fmt.Errorf("writer: set drive layout on disk %d: %w", d.Number, err)
	}
	d.Layout.PartitionCount = savedCount

	for _, r := range d.Primary {
		if r.IsPartitioned {
			r.PartitionNumber = r.OnDiskPartitionNumber
			r.New = false
		}
	}
	for _, r := range d.Logical {
		if r.IsPartitioned {
			r.PartitionNumber = r.OnDiskPartitionNumber
			r.New = false
		}
	}

	d.Dirty = false
	return nil
}

// WritePartitionsToDisk writes every dirty, non-GPT disk in list, logging
// and continuing past a per-disk failure rather than aborting the batch.
func (w *Writer) WritePartitionsToDisk(list *disk.PartitionList) {
	w.updateDiskSignatures(list)

	for _, d := range list.Disks {
		if d.Style == disk.StyleGpt {
			continue
		}
		if err := w.WritePartitions(d); err != nil {
			w.Log.Warnf("writer: disk %d: %v", d.Number, err)
		}
	}

	w.SetMountedDeviceValues(list)
}

// updateDiskSignatures assigns a fresh, collision-free signature to every
// disk whose signature is currently zero, before any writeback begins, and
// marks each disk's primary slot 0 for rewrite so the new signature reaches
// the device.
func (w *Writer) updateDiskSignatures(list *disk.PartitionList) {
	for _, d := range list.Disks {
		if d.Signature != 0 {
			continue
		}
		d.Signature = w.freshSignature(list)
		if d.Layout != nil && len(d.Layout.Entries) > 0 {
			d.Layout.Entries[0].Rewrite = true
			d.Layout.Signature = d.Signature
		}
		d.Dirty = true
	}
}

func (w *Writer) freshSignature(list *disk.PartitionList) uint32 {
	for {
		sig := w.Clock.Now().Seed()
		if !signatureTaken(list, sig) {
			return sig
		}
	}
}

func signatureTaken(list *disk.PartitionList, sig uint32) bool {
	for _, d := range list.Disks {
		if d.Signature == sig {
			return true
		}
	}
	return false
}

// SetMountedDeviceValues writes a mount-point registry entry for every
// partitioned region carrying a drive letter.
func (w *Writer) SetMountedDeviceValues(list *disk.PartitionList) {
	for _, d := range list.Disks {
		for _, r := range allRegions(d) {
			if !r.IsPartitioned || r.Volume.DriveLetter == 0 {
				continue
			}
			if err := w.SetMountedDeviceValue(r.Volume.DriveLetter, d.Signature, int64(r.StartSector)*int64(sectorSize(d))); err != nil {
				w.Log.Warnf("writer: mount-point value for %c: %v", r.Volume.DriveLetter, err)
			}
		}
	}
}

// SetMountedDeviceValue writes the packed {signature u32, starting_offset
// i64} binary value named "\DosDevices\<L>:" under SYSTEM\MountedDevices.
func (w *Writer) SetMountedDeviceValue(letter byte, signature uint32, startingOffset int64) error {
	buf := make([]byte, 12)
	binary.LittleEndian.PutUint32(buf[0:4], signature)
	binary.LittleEndian.PutUint64(buf[4:12], uint64(startingOffset))

	name := fmt.Sprintf(`\DosDevices\%c:`, letter)
	if err := w.Store.WriteBinary(mountedDevicesKey, name, buf); err != nil {
		return fmt.Errorf("writer: write %s: %w", name, err)
	}
	return nil
}

func allRegions(d *disk.Disk) []*disk.Region {
	out := make([]*disk.Region, 0, len(d.Primary)+len(d.Logical))
	out = append(out, d.Primary...)
	out = append(out, d.Logical...)
	return out
}

func sectorSize(d *disk.Disk) uint32 {
	if d.Geometry.BytesPerSector == 0 {
		return 512
	}
	return d.Geometry.BytesPerSector
}
