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

import "fmt"

// overlaps reports whether a and b's sector extents overlap, treating a
// zero-length sentinel region (start=0, count=0) as never overlapping.
func overlaps(a, b *Region) bool {
	if a.SectorCount == 0 || b.SectorCount == 0 {
		return false
	}
	return a.StartSector < b.EndSector() && b.StartSector < a.EndSector()
}

// InsertDiskRegion inserts region into disk's primary or logical list (per
// logical) at its sorted position by StartSector. It rejects the insertion
// with an error, leaving the list unmodified, if region overlaps any
// existing region already in that list.
func InsertDiskRegion(d *Disk, region *Region, logical bool) error {
	list := &d.Primary
	if logical {
		list = &d.Logical
	}

	for _, existing := range *list {
		if overlaps(existing, region) {
			return fmt.Errorf("disk: region [%d,%d) overlaps existing region [%d,%d)",
				region.StartSector, region.EndSector(), existing.StartSector, existing.EndSector())
		}
	}

	region.Disk = d
	region.Logical = logical

	pos := len(*list)
	for i, existing := range *list {
		if region.StartSector < existing.StartSector {
			pos = i
			break
		}
	}

	*list = append(*list, nil)
	copy((*list)[pos+1:], (*list)[pos:])
	(*list)[pos] = region

	return nil
}

// RemoveRegionFromDisk removes region from whichever of disk's lists
// (primary or logical) currently holds it.
func RemoveRegionFromDisk(d *Disk, region *Region) {
	remove := func(list *[]*Region) bool {
		for i, r := range *list {
			if r == region {
				RemoveRegionAt(list, i)
				return true
			}
		}
		return false
	}
	if !remove(&d.Primary) {
		remove(&d.Logical)
	}
}

// RemoveRegionAt removes the region at index idx from list in place.
func RemoveRegionAt(list *[]*Region, idx int) {
	*list = append((*list)[:idx], (*list)[idx+1:]...)
}
