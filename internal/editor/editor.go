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

// Package editor creates, extends and deletes partitions, reassigns drive
// letters, and selects the active/system partition, maintaining every
// invariant in the disk package as it does so.
package editor

import (
	"github.com/ostafen/partedit/internal/disk"
	"github.com/ostafen/partedit/internal/geometry"
	"github.com/ostafen/partedit/internal/mount"
)

// Editor mutates a disk.PartitionList, dismounting and remounting volumes
// as regions come and go through its Mounter.
type Editor struct {
	Mounter *mount.Mounter
}

// PartitionCreationChecks runs the pre-creation checks for a plain (non-
// extended) partition create on region.
func PartitionCreationChecks(region *disk.Region) Status {
	d := region.Disk
	if d.Style == disk.StyleGpt {
		return WarnPartition
	}
	if region.IsPartitioned {
		return NewPartition
	}
	if d.IsSuperFloppy() {
		return PartitionTableFull
	}
	if !region.Logical && countPartitioned(d.Primary) >= 4 {
		return PartitionTableFull
	}
	return Success
}

// ExtendedPartitionCreationChecks additionally fails with OnlyOneExtended
// if the disk already has an extended container.
func ExtendedPartitionCreationChecks(region *disk.Region) Status {
	if s := PartitionCreationChecks(region); s != Success {
		return s
	}
	if region.Disk.Extended != nil {
		return OnlyOneExtended
	}
	return Success
}

func countPartitioned(regions []*disk.Region) int {
	n := 0
	for _, r := range regions {
		if r.IsPartitioned {
			n++
		}
	}
	return n
}

// CreatePartition creates a plain partition in region sized sizeBytes (0 or
// the region's full byte size both mean "use the whole region"). On
// success it returns region itself, now partitioned and possibly shrunk;
// any trailing free region split off from it is inserted into the disk's
// region list, not returned.
func (e *Editor) CreatePartition(list *disk.PartitionList, region *disk.Region, sizeBytes uint64) (*disk.Region, error) {
	if s := PartitionCreationChecks(region); s != Success {
		return nil, statusErr(s)
	}
	return e.createPartitionCommon(list, region, sizeBytes, false)
}

// CreateExtendedPartition creates the disk's extended container in region.
func (e *Editor) CreateExtendedPartition(list *disk.PartitionList, region *disk.Region, sizeBytes uint64) (*disk.Region, error) {
	if s := ExtendedPartitionCreationChecks(region); s != Success {
		return nil, statusErr(s)
	}
	return e.createPartitionCommon(list, region, sizeBytes, true)
}

func (e *Editor) createPartitionCommon(list *disk.PartitionList, region *disk.Region, sizeBytes uint64, extended bool) (*disk.Region, error) {
	d := region.Disk
	bps := d.Geometry.BytesPerSector
	if bps == 0 {
		bps = geometry.DefaultSectorSize
	}

	requestedSectors := region.SectorCount
	if sizeBytes != 0 && sizeBytes != region.SectorCount*uint64(bps) {
		requestedSectors = geometry.BytesToSectors(sizeBytes, bps)
		if requestedSectors == 0 {
			return nil, statusErr(NewPartition)
		}
		if requestedSectors > region.SectorCount {
			requestedSectors = region.SectorCount
		}
	}

	alignment := d.Alignment
	if alignment == 0 {
		alignment = 1
	}
	newEnd := geometry.AlignDown(region.StartSector+requestedSectors, alignment)
	if newEnd < region.StartSector {
		newEnd = region.StartSector
	}

	naturalEnd := region.EndSector()
	if newEnd != naturalEnd {
		trailing := &disk.Region{
			StartSector: newEnd,
			SectorCount: naturalEnd - newEnd,
			Logical:     region.Logical,
		}
		if err := disk.InsertDiskRegion(d, trailing, region.Logical); err != nil {
			return nil, TransientIoError(err)
		}
		region.SectorCount = newEnd - region.StartSector
	}

	region.IsPartitioned = true
	region.New = true
	region.BootIndicator = false
	region.Volume = disk.Volume{New: true}

	if extended {
		region.PartitionType = geometry.ExtendedPartitionType(region.StartSector)
		d.Extended = region
		freeStart := region.StartSector + alignment
		if freeStart < region.EndSector() {
			free := &disk.Region{
				StartSector: freeStart,
				SectorCount: region.EndSector() - freeStart,
				Logical:     true,
			}
			if err := disk.InsertDiskRegion(d, free, true); err != nil {
				return nil, TransientIoError(err)
			}
		}
	} else {
		region.PartitionType = disk.FATTypeForSize(region.SectorCount, bps)
	}

	UpdateDiskLayout(d)
	AssignDriveLetters(list)

	return region, nil
}

// DeletePartition deletes region, merging it with any adjacent free
// regions in the same list. Free regions cannot be deleted.
func (e *Editor) DeletePartition(list *disk.PartitionList, region *disk.Region) error {
	if !region.IsPartitioned {
		return statusErr(NotPartitioned)
	}
	d := region.Disk

	if region == d.Extended {
		for _, logical := range append([]*disk.Region(nil), d.Logical...) {
			if logical.Volume.Mounted() {
				e.Mounter.DismountVolume(logical)
			}
			disk.RemoveRegionFromDisk(d, logical)
		}
		d.Logical = nil
		d.Extended = nil
	} else if region.Volume.Mounted() {
		e.Mounter.DismountVolume(region)
	}

	if list.SystemPartition == region {
		list.SystemPartition = nil
	}

	mergeWithAdjacentFree(d, region)

	UpdateDiskLayout(d)
	AssignDriveLetters(list)
	return nil
}

func mergeWithAdjacentFree(d *disk.Disk, region *disk.Region) {
	listPtr := &d.Primary
	if region.Logical {
		listPtr = &d.Logical
	}
	list := *listPtr

	idx := -1
	for i, r := range list {
		if r == region {
			idx = i
			break
		}
	}
	if idx == -1 {
		// region is in neither region list; nothing to merge
		return
	}

	var prev, next *disk.Region
	if idx > 0 {
		prev = list[idx-1]
	}
	if idx < len(list)-1 {
		next = list[idx+1]
	}
	prevFree := prev != nil && !prev.IsPartitioned
	nextFree := next != nil && !next.IsPartitioned

	switch {
	case prevFree && nextFree:
		prev.SectorCount += region.SectorCount + next.SectorCount
		disk.RemoveRegionAt(listPtr, idx+1) // remove next first (higher index)
		disk.RemoveRegionAt(listPtr, idx)   // then region
	case prevFree && !nextFree:
		prev.SectorCount += region.SectorCount
		disk.RemoveRegionAt(listPtr, idx)
	case !prevFree && nextFree:
		next.StartSector = region.StartSector
		next.SectorCount += region.SectorCount
		disk.RemoveRegionAt(listPtr, idx)
	default:
		region.MarkFree()
	}
}
