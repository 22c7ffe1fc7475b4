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

// TraverseFlags controls AdjacentRegion/AdjacentPartition traversal. Flags
// combine by bitwise OR.
type TraverseFlags int

const (
	Next TraverseFlags = 1 << iota
	Prev
	PartitionedOnly
	MbrPrimaryOnly
	MbrLogicalOnly
	MbrByOrder
)

func (f TraverseFlags) has(flag TraverseFlags) bool { return f&flag != 0 }

// orderedRegions returns d's regions in "by type" order (all primaries then
// all logicals) unless MbrByOrder is set, in which case the extended
// container is replaced in sequence by its logical regions and traversal
// resumes at the next primary.
func orderedRegions(d *Disk, flags TraverseFlags) []*Region {
	switch {
	case flags.has(MbrPrimaryOnly):
		return append([]*Region(nil), d.Primary...)
	case flags.has(MbrLogicalOnly):
		return append([]*Region(nil), d.Logical...)
	case flags.has(MbrByOrder):
		out := make([]*Region, 0, len(d.Primary)+len(d.Logical))
		for _, r := range d.Primary {
			if r == d.Extended {
				out = append(out, d.Logical...)
				continue
			}
			out = append(out, r)
		}
		return out
	default:
		out := make([]*Region, 0, len(d.Primary)+len(d.Logical))
		out = append(out, d.Primary...)
		out = append(out, d.Logical...)
		return out
	}
}

// AdjacentRegion yields the next or previous region on disk relative to
// current under flags. A nil current with Next set starts from the
// beginning of the ordered sequence; with Prev set, from the end.
func AdjacentRegion(d *Disk, current *Region, flags TraverseFlags) *Region {
	if d == nil {
		return nil
	}
	regions := orderedRegions(d, flags)

	idx := -1
	if current != nil {
		for i, r := range regions {
			if r == current {
				idx = i
				break
			}
		}
		if idx == -1 {
			return nil
		}
	}

	step := 1
	if flags.has(Prev) && !flags.has(Next) {
		step = -1
		if idx == -1 {
			idx = len(regions)
		}
	}

	for {
		idx += step
		if idx < 0 || idx >= len(regions) {
			return nil
		}
		r := regions[idx]
		if flags.has(PartitionedOnly) && !r.IsPartitioned {
			continue
		}
		return r
	}
}

// AdjacentPartition extends AdjacentRegion across disks: when a disk is
// exhausted, traversal advances to the next or previous disk in the list.
// If both current and disk are nil, the operation returns nil per the
// traversal contract.
func AdjacentPartition(list *PartitionList, disk *Disk, current *Region, flags TraverseFlags) *Region {
	if current == nil && disk == nil {
		return nil
	}
	if current != nil {
		disk = current.Disk
	}

	if r := AdjacentRegion(disk, current, flags); r != nil {
		return r
	}

	diskIdx := -1
	for i, d := range list.Disks {
		if d == disk {
			diskIdx = i
			break
		}
	}
	if diskIdx == -1 {
		return nil
	}

	step := 1
	if flags.has(Prev) && !flags.has(Next) {
		step = -1
	}

	for i := diskIdx + step; i >= 0 && i < len(list.Disks); i += step {
		if r := AdjacentRegion(list.Disks[i], nil, flags); r != nil {
			return r
		}
	}
	return nil
}
