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
package editor

import (
	"github.com/ostafen/partedit/internal/disk"
	"github.com/ostafen/partedit/internal/geometry"
	"github.com/ostafen/partedit/internal/mbr"
)

// AssignDriveLetters runs a deterministic single pass over list starting at
// 'C': every disk's partitioned non-container primaries first, in disk
// order, then every disk's logicals, in disk order. Letters past 'Z'
// become unassigned (0).
func AssignDriveLetters(list *disk.PartitionList) {
	next := byte('C')
	assign := func(r *disk.Region) {
		if !r.IsPartitioned || r.IsContainer() {
			return
		}
		if !r.PartitionType.IsRecognized() && r.SectorCount == 0 {
			return
		}
		if next > 'Z' {
			r.Volume.DriveLetter = 0
			return
		}
		r.Volume.DriveLetter = next
		next++
	}

	for _, d := range list.Disks {
		for _, r := range d.Primary {
			assign(r)
		}
	}
	for _, d := range list.Disks {
		for _, r := range d.Logical {
			assign(r)
		}
	}
}

// UpdateDiskLayout rebuilds d's kernel-facing layout buffer from its region
// model: primaries fill the first four slots directly, logicals fill every
// fourth slot starting at index 4 with a container "link" descriptor in
// the preceding slot.
func UpdateDiskLayout(d *disk.Disk) {
	logicalCount := len(d.Logical)
	size := 4 + 4*logicalCount
	if d.Layout == nil {
		d.Layout = mbr.NewLayoutBuffer(size)
	} else {
		d.Layout.Resize(size)
	}
	for i := range d.Layout.Entries {
		d.Layout.Entries[i] = mbr.MBRPartitionEntry{}
	}

	bps := d.Geometry.BytesPerSector
	if bps == 0 {
		bps = geometry.DefaultSectorSize
	}
	alignment := d.Alignment
	if alignment == 0 {
		alignment = 1
	}

	onDiskNumber := 0
	slot := 0
	for _, r := range d.Primary {
		if !r.IsPartitioned {
			continue
		}
		if slot >= 4 {
			break
		}
		onDiskNumber++
		d.Layout.Entries[slot] = mbr.MBRPartitionEntry{
			BootIndicator: r.BootIndicator,
			PartitionType: r.PartitionType,
			StartLBA:      uint32(r.StartSector),
			TotalSectors:  uint32(r.SectorCount),
			Recognized:    !r.IsContainer(),
			Rewrite:       true,
		}
		r.OnDiskPartitionNumber = onDiskNumber
		r.LayoutIndex = slot
		slot++
	}

	for i, r := range d.Logical {
		idx := 4 + i*4
		if idx >= len(d.Layout.Entries) {
			break
		}
		onDiskNumber++
		d.Layout.Entries[idx] = mbr.MBRPartitionEntry{
			BootIndicator: r.BootIndicator,
			PartitionType: r.PartitionType,
			StartLBA:      uint32(r.StartSector),
			TotalSectors:  uint32(r.SectorCount),
			Recognized:    true,
			Rewrite:       true,
		}
		r.OnDiskPartitionNumber = onDiskNumber
		r.LayoutIndex = idx

		if i > 0 {
			linkStart := r.StartSector - alignment
			linkEnd := r.StartSector + alignment
			d.Layout.Entries[idx-3] = mbr.MBRPartitionEntry{
				PartitionType: geometry.ExtendedPartitionType(linkStart),
				StartLBA:      uint32(linkStart),
				TotalSectors:  uint32(linkEnd - linkStart),
				Rewrite:       true,
			}
		}
	}

	d.Dirty = true
}

// SetActivePartition clears the boot indicator on the current active
// partition of region's disk, if any, and sets it on region. It is a no-op
// if region is already the system partition and already active.
func SetActivePartition(list *disk.PartitionList, region *disk.Region) bool {
	if list == nil || region == nil {
		return false
	}
	if list.SystemPartition == region && region.BootIndicator {
		return true
	}

	d := region.Disk
	for _, r := range d.Primary {
		if r.BootIndicator && r != region {
			r.BootIndicator = false
			r.Rewrite = true
		}
	}

	region.BootIndicator = true
	region.Rewrite = true

	if isSystemDisk(list, d) {
		list.SystemPartition = region
	}
	return true
}

func isSystemDisk(list *disk.PartitionList, d *disk.Disk) bool {
	return len(list.Disks) > 0 && list.Disks[0] == d
}

// writableFilesystems is the set of formatted filesystems a supported
// system partition is allowed to carry.
var writableFilesystems = map[string]bool{
	"FAT":   true,
	"FAT32": true,
	"BTRFS": true,
}

// IsSupportedSystemPartition reports whether region can host the system
// partition: not a container, either Unformatted (assumed RawFS) or
// Formatted with a writable filesystem, and not carrying PARTITION_IFS.
func IsSupportedSystemPartition(region *disk.Region) bool {
	if region == nil || region.IsContainer() {
		return false
	}
	if region.PartitionType == mbr.PartitionTypeIFS {
		return false
	}
	switch region.Volume.Format {
	case disk.Unformatted:
		return true
	case disk.Formatted:
		return writableFilesystems[region.Volume.Filesystem]
	default:
		return false
	}
}

// FindSupportedSystemPartition implements the three-stage search: prefer
// the list's current system partition if supported, else scan the system
// disk for a supported primary (or a free primary slot), else fall
// through to an alternative disk/region hint.
func FindSupportedSystemPartition(list *disk.PartitionList, forceSelect bool, altDisk *disk.Disk, altPart *disk.Region) *disk.Region {
	if list.SystemPartition != nil && IsSupportedSystemPartition(list.SystemPartition) {
		return list.SystemPartition
	}

	if len(list.Disks) > 0 {
		sysDisk := list.Disks[0]
		for _, r := range sysDisk.Primary {
			if r.IsPartitioned && IsSupportedSystemPartition(r) {
				return r
			}
		}
		if countPartitioned(sysDisk.Primary) < 4 {
			for _, r := range sysDisk.Primary {
				if !r.IsPartitioned {
					return r
				}
			}
		}
	}

	if altDisk != nil && (forceSelect || (len(list.Disks) > 0 && list.Disks[0] != altDisk)) {
		for _, r := range altDisk.Primary {
			if r.BootIndicator && IsSupportedSystemPartition(r) {
				return r
			}
		}
		if altDisk.IsNew && len(altDisk.Primary) > 0 {
			first := altDisk.Primary[0]
			if !first.IsPartitioned || !first.BootIndicator {
				return first
			}
		}
		for _, r := range altDisk.Primary {
			if r.IsPartitioned || r.BootIndicator {
				return r
			}
		}
		if len(altDisk.Primary) > 0 {
			return altDisk.Primary[0]
		}
		return altPart
	}

	return altPart
}
