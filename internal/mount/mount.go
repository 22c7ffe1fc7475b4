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

// Package mount opens a partitioned region's device, infers its filesystem,
// and reads its volume label; it also runs the lock/dismount/unlock
// sequence used when a region is deleted or replaced.
package mount

import (
	"github.com/ostafen/partedit/internal/blockio"
	"github.com/ostafen/partedit/internal/disk"
	"github.com/ostafen/partedit/internal/fsinfer"
	"github.com/ostafen/partedit/internal/logger"
	"github.com/ostafen/partedit/internal/mbr"
)

// Mounter mounts and dismounts volumes against an Opener, logging
// non-fatal I/O failures rather than unwinding the caller's edit.
type Mounter struct {
	Opener blockio.Opener
	Log    *logger.Logger
}

// MountVolume opens region's device, infers its filesystem, and classifies
// its format state. mbrType is the partition's current MBR type byte, used
// to corroborate a RAW inference as "plausibly unformatted" rather than
// damaged.
func (m *Mounter) MountVolume(region *disk.Region, mbrType mbr.PartitionType) {
	v := &region.Volume
	v.Format = disk.Unformatted
	v.Filesystem = ""

	if v.DeviceName == "" {
		return
	}

	dev, err := m.Opener(v.DeviceName)
	if err != nil {
		m.Log.Warnf("mount: open %s: %v", v.DeviceName, err)
		return
	}
	defer dev.Close()

	result, err := fsinfer.Infer(dev)
	if err != nil {
		m.Log.Warnf("mount: infer filesystem on %s: %v", v.DeviceName, err)
		return
	}
	v.Filesystem = string(result.Filesystem)

	switch {
	case result.Filesystem == fsinfer.RAW && mbrType.IsFATFamily():
		v.Format = disk.Unformatted
	case result.Filesystem == fsinfer.RAW:
		dev.Close()
		m.DismountVolume(region)
		v.Filesystem = ""
		v.Format = disk.UnknownFormat
		return
	default:
		v.Format = disk.Formatted
	}

	label, err := readVolumeLabel(dev)
	if err != nil {
		m.Log.Warnf("mount: read label on %s: %v", v.DeviceName, err)
		return
	}
	v.Label = label
}

// DismountVolume runs the lock/dismount/unlock sequence on region's
// volume and always clears its mount state, regardless of whether the
// control operations themselves succeed.
func (m *Mounter) DismountVolume(region *disk.Region) {
	v := &region.Volume
	if !v.Mounted() && v.DeviceName == "" {
		v.Reset()
		return
	}

	if v.DeviceName != "" {
		dev, err := m.Opener(v.DeviceName)
		if err != nil {
			m.Log.Warnf("dismount: open %s: %v", v.DeviceName, err)
		} else {
			if err := dev.LockVolume(); err != nil {
				m.Log.Warnf("dismount: lock %s: %v", v.DeviceName, err)
			}
			if err := dev.DismountVolume(); err != nil {
				m.Log.Warnf("dismount: dismount %s: %v", v.DeviceName, err)
			}
			if err := dev.UnlockVolume(); err != nil {
				m.Log.Warnf("dismount: unlock %s: %v", v.DeviceName, err)
			}
			dev.Close()
		}
	}

	v.Reset()
}

// readVolumeLabel returns the label reported by dev's VolumeLabel method,
// unchanged, when dev has one, and an empty label otherwise. FileDevice,
// MmapDevice and WindowsDevice have no VolumeLabel method, so volumes on
// them always get an empty label.
func readVolumeLabel(dev blockio.Device) (string, error) {
	type labelReader interface {
		VolumeLabel() (string, error)
	}
	if lr, ok := dev.(labelReader); ok {
		return lr.VolumeLabel()
	}
	return "", nil
}
