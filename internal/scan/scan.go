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

// Package scan builds the in-memory region model for every system disk: it
// opens each block device, classifies its partition table style, loads the
// existing layout, and cross-references the firmware map.
package scan

import (
	"fmt"

	"github.com/ostafen/partedit/internal/blockio"
	"github.com/ostafen/partedit/internal/disk"
	"github.com/ostafen/partedit/internal/firmware"
	"github.com/ostafen/partedit/internal/geometry"
	"github.com/ostafen/partedit/internal/logger"
	"github.com/ostafen/partedit/internal/mbr"
	"github.com/ostafen/partedit/internal/mount"
	"github.com/ostafen/partedit/internal/regstore"
)

// Scanner discovers system disks and builds a disk.PartitionList.
type Scanner struct {
	Opener  blockio.Opener
	Store   regstore.Store
	Mounter *mount.Mounter
	Log     *logger.Logger
}

// Scan probes disk indices 0..maxDisks-1 (stopping at the first index whose
// scan fails: open, geometry, sector 0 or layout read) and returns the
// resulting PartitionList.
func (s *Scanner) Scan(maxDisks int) (*disk.PartitionList, error) {
	firmwareDisks, err := firmware.EnumerateFirmwareDisks(s.Store)
	if err != nil {
		s.Log.Warnf("scan: enumerate firmware map: %v", err)
	}

	list := &disk.PartitionList{FirmwareDisks: firmwareDisks}

	for n := 0; n < maxDisks; n++ {
		path := disk.PartitionDevicePath(n, 0)
		d, err := s.scanDisk(n, path, list)
		if err != nil {
			s.Log.Debugf("scan: disk %d: %v", n, err)
			break
		}
		if d != nil {
			list.Disks = append(list.Disks, d)
		}
	}

	return list, nil
}

func (s *Scanner) scanDisk(n int, path string, list *disk.PartitionList) (*disk.Disk, error) {
	dev, err := s.Opener(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer dev.Close()

	g, err := dev.Geometry()
	if err != nil {
		return nil, fmt.Errorf("geometry: %w", err)
	}
	if g.MediaType != blockio.MediaFixed && g.MediaType != blockio.MediaRemovable {
		return nil, nil
	}

	d := disk.NewDisk(n, s.Opener, path)
	d.Geometry = g
	d.Alignment = g.SectorAlignment()
	d.CylinderLen = g.CylinderAlignment()

	if addr, err := dev.ScsiAddress(); err == nil {
		d.Scsi = addr
	}

	bps := g.BytesPerSector
	if bps == 0 {
		bps = geometry.DefaultSectorSize
	}
	sector, err := dev.ReadSector(0, 1)
	if err != nil {
		return nil, fmt.Errorf("read sector 0: %w", err)
	}

	d.Checksum = mbr.Checksum(sector)
	d.Signature = mbr.ReadDiskSignature(sector)
	magic := mbr.ReadMagic(sector)

	d.Style = classifyStyle(magic, sector)
	s.correlateFirmware(list, d)

	if d.Style != disk.StyleMbr {
		return d, nil
	}

	layout, err := dev.GetDriveLayout()
	if err != nil {
		return nil, fmt.Errorf("get drive layout: %w", err)
	}
	d.Layout = layout

	s.buildRegionModel(d, layout, bps)
	scanForUnpartitionedSpace(d)
	d.SuperFloppy = isSuperFloppy(layout)

	return d, nil
}

// classifyStyle applies the Raw/Gpt/Mbr rule from sector 0.
func classifyStyle(magic uint16, sector []byte) disk.Style {
	if magic != geometry.Magic {
		return disk.StyleRaw
	}
	first := mbr.PartitionType(sector[geometry.PartitionTableOffset+4])
	if first == mbr.PartitionTypeGPTProtective {
		allZero := true
		for i := 1; i < 4; i++ {
			off := geometry.PartitionTableOffset + i*geometry.PartitionEntrySize + 4
			if sector[off] != 0 {
				allZero = false
				break
			}
		}
		if allZero {
			return disk.StyleGpt
		}
	}
	return disk.StyleMbr
}

// correlateFirmware matches d against the first unbound firmware entry
// sharing its (signature, checksum) pair.
func (s *Scanner) correlateFirmware(list *disk.PartitionList, d *disk.Disk) {
	for _, fd := range list.FirmwareDisks {
		if fd.Bound {
			continue
		}
		if fd.Signature == d.Signature && fd.Checksum == d.Checksum {
			fd.Bound = true
			d.HwAdapter = fd.AdapterNumber
			d.HwController = fd.ControllerNumber
			d.HwDisk = fd.DiskNumber
			d.FirmwareHit = true
			return
		}
	}
}

func (s *Scanner) buildRegionModel(d *disk.Disk, layout *mbr.LayoutBuffer, bps uint32) {
	n := len(layout.Entries)

	for i := 0; i < 4 && i < n; i++ {
		s.addPartition(d, layout.Entries[i], false, i)
	}
	for i := 4; i < n; i += 4 {
		e := layout.Entries[i]
		if e.PartitionType.IsContainer() {
			continue
		}
		s.addPartition(d, e, true, i)
	}
}

func (s *Scanner) addPartition(d *disk.Disk, e mbr.MBRPartitionEntry, logical bool, layoutIndex int) {
	if e.PartitionType == mbr.PartitionTypeUnused {
		return
	}

	r := &disk.Region{
		StartSector:   uint64(e.StartLBA),
		SectorCount:   uint64(e.TotalSectors),
		PartitionType: e.PartitionType,
		BootIndicator: e.BootIndicator,
		IsPartitioned: true,
		LayoutIndex:   layoutIndex,
	}

	if err := disk.InsertDiskRegion(d, r, logical); err != nil {
		s.Log.Warnf("scan: disk %d: %v", d.Number, err)
		return
	}

	if !logical && r.PartitionType.IsContainer() && d.Extended == nil {
		d.Extended = r
		return
	}

	if e.Recognized || e.PartitionType.IsRecognized() {
		partNum := countPartitionedBefore(d, r)
		r.Volume.DeviceName = disk.PartitionDevicePath(d.Number, partNum)
		s.Mounter.MountVolume(r, r.PartitionType)
	}
}

func countPartitionedBefore(d *disk.Disk, target *disk.Region) int {
	n := 0
	for _, r := range d.Primary {
		if r.IsPartitioned && !r.IsContainer() {
			n++
		}
		if r == target {
			return n
		}
	}
	for _, r := range d.Logical {
		if r.IsPartitioned {
			n++
		}
		if r == target {
			return n
		}
	}
	return n
}

// scanForUnpartitionedSpace walks each list in order and inserts a free
// region for every gap whose aligned length is at least one sector
// alignment, including the leading and trailing gaps.
func scanForUnpartitionedSpace(d *disk.Disk) {
	insertGaps(d, false)
	insertGaps(d, true)
}

func insertGaps(d *disk.Disk, logical bool) {
	list := d.Primary
	leadStart := max64(2048, d.Alignment)
	end := d.Geometry.TotalSectors()
	if logical {
		list = d.Logical
		if d.Extended == nil {
			return
		}
		leadStart = d.Extended.StartSector + d.Alignment
		end = d.Extended.EndSector()
	}

	cursor := leadStart
	for _, r := range list {
		if r.StartSector > cursor {
			gapLen := geometry.AlignDown(r.StartSector-cursor, d.Alignment)
			if gapLen >= d.Alignment {
				insertFree(d, cursor, gapLen, logical)
			}
		}
		if r.EndSector() > cursor {
			cursor = r.EndSector()
		}
	}
	if end > cursor {
		gapLen := geometry.AlignDown(end-cursor, d.Alignment)
		if gapLen >= d.Alignment {
			insertFree(d, cursor, gapLen, logical)
		}
	}
}

func insertFree(d *disk.Disk, start, length uint64, logical bool) {
	r := &disk.Region{StartSector: start, SectorCount: length, Logical: logical}
	_ = disk.InsertDiskRegion(d, r, logical)
}

func max64(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}

// isSuperFloppy reports whether layout has exactly one entry whose
// starting offset and hidden-sector count are both zero.
func isSuperFloppy(layout *mbr.LayoutBuffer) bool {
	count := 0
	for _, e := range layout.Entries {
		if e.PartitionType == mbr.PartitionTypeUnused {
			continue
		}
		count++
		if count > 1 {
			return false
		}
		if e.StartLBA != 0 {
			return false
		}
	}
	return count == 1
}
