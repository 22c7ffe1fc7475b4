//go:build windows
// +build windows

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
package blockio

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/ostafen/partedit/internal/geometry"
	"github.com/ostafen/partedit/internal/mbr"
)

const (
	ioctlDiskGetDriveGeometry  = 0x70000
	ioctlDiskGetDriveLayoutEx  = 0x70050
	ioctlDiskSetDriveLayoutEx  = 0x7C054
	ioctlScsiGetAddress        = 0x41018
	fsctlLockVolume            = 0x90018
	fsctlDismountVolume        = 0x90020
	fsctlUnlockVolume          = 0x9001C

	partitionStyleMBR = 0
	maxLayoutEntries  = 128
)

// WindowsDevice talks to a live Windows block device through
// DeviceIoControl and ReadFile/WriteFile against a handle opened on its
// \Device\Harddisk<n>\Partition<p> path.
type WindowsDevice struct {
	path   string
	handle windows.Handle
}

// Open opens a device by its NT path, e.g. \Device\Harddisk0\Partition0.
func Open(path string) (Device, error) {
	handle, err := windows.CreateFile(
		windows.StringToUTF16Ptr(path),
		windows.GENERIC_READ|windows.GENERIC_WRITE,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE,
		nil,
		windows.OPEN_EXISTING,
		0,
		0,
	)
	if err != nil {
		handle, err = windows.CreateFile(
			windows.StringToUTF16Ptr(path),
			windows.GENERIC_READ,
			windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE,
			nil,
			windows.OPEN_EXISTING,
			0,
			0,
		)
		if err != nil {
			return nil, fmt.Errorf("blockio: open %q: %w", path, err)
		}
	}
	return &WindowsDevice{path: path, handle: handle}, nil
}

func (d *WindowsDevice) Close() error {
	return windows.CloseHandle(d.handle)
}

func (d *WindowsDevice) seek(lba uint64) error {
	_, err := windows.SetFilePointer(d.handle, int32(lba*geometry.SectorSize), nil, windows.FILE_BEGIN)
	return err
}

func (d *WindowsDevice) ReadSector(lba uint64, n int) ([]byte, error) {
	if err := d.seek(lba); err != nil {
		return nil, fmt.Errorf("blockio: seek to lba %d: %w", lba, err)
	}

	buf := make([]byte, n*geometry.SectorSize)
	var read uint32
	if err := windows.ReadFile(d.handle, buf, &read, nil); err != nil {
		return nil, fmt.Errorf("blockio: read sector %d: %w", lba, err)
	}
	return buf[:read], nil
}

func (d *WindowsDevice) WriteSector(lba uint64, data []byte) error {
	if len(data)%geometry.SectorSize != 0 {
		return fmt.Errorf("blockio: write length %d is not sector-aligned", len(data))
	}
	if err := d.seek(lba); err != nil {
		return fmt.Errorf("blockio: seek to lba %d: %w", lba, err)
	}

	var written uint32
	return windows.WriteFile(d.handle, data, &written, nil)
}

type diskGeometry struct {
	Cylinders         int64
	MediaType         uint32
	TracksPerCylinder uint32
	SectorsPerTrack   uint32
	BytesPerSector    uint32
}

func (d *WindowsDevice) Geometry() (Geometry, error) {
	var raw diskGeometry
	var returned uint32
	err := windows.DeviceIoControl(
		d.handle,
		ioctlDiskGetDriveGeometry,
		nil, 0,
		(*byte)(unsafe.Pointer(&raw)), uint32(unsafe.Sizeof(raw)),
		&returned, nil,
	)
	if err != nil {
		return Geometry{}, fmt.Errorf("blockio: IOCTL_DISK_GET_DRIVE_GEOMETRY: %w", err)
	}

	media := MediaUnknown
	// FixedMedia == 12, RemovableMedia == 11 in the Windows MEDIA_TYPE enum.
	switch raw.MediaType {
	case 11:
		media = MediaRemovable
	case 12:
		media = MediaFixed
	}

	return Geometry{
		Cylinders:         raw.Cylinders,
		MediaType:         media,
		TracksPerCylinder: raw.TracksPerCylinder,
		SectorsPerTrack:   raw.SectorsPerTrack,
		BytesPerSector:    raw.BytesPerSector,
	}, nil
}

type scsiAddress struct {
	Length     uint32
	PortNumber uint8
	PathID     uint8
	TargetID   uint8
	Lun        uint8
}

func (d *WindowsDevice) ScsiAddress() (ScsiAddress, error) {
	var raw scsiAddress
	raw.Length = uint32(unsafe.Sizeof(raw))
	var returned uint32
	err := windows.DeviceIoControl(
		d.handle,
		ioctlScsiGetAddress,
		nil, 0,
		(*byte)(unsafe.Pointer(&raw)), raw.Length,
		&returned, nil,
	)
	if err != nil {
		return ScsiAddress{}, fmt.Errorf("blockio: IOCTL_SCSI_GET_ADDRESS: %w", err)
	}
	return ScsiAddress{
		PortNumber: raw.PortNumber,
		PathID:     raw.PathID,
		TargetID:   raw.TargetID,
		Lun:        raw.Lun,
	}, nil
}

// GetDriveLayout issues IOCTL_DISK_GET_DRIVE_LAYOUT_EX into a growing
// buffer, starting at 4 entries and growing by 4 on
// ERROR_INSUFFICIENT_BUFFER until the call succeeds or the cap is hit.
func (d *WindowsDevice) GetDriveLayout() (*mbr.LayoutBuffer, error) {
	for n := 4; n <= maxLayoutEntries; n += 4 {
		size := driveLayoutExSize(n)
		raw := make([]byte, size)

		var returned uint32
		err := windows.DeviceIoControl(
			d.handle,
			ioctlDiskGetDriveLayoutEx,
			nil, 0,
			&raw[0], uint32(size),
			&returned, nil,
		)
		if err == windows.ERROR_INSUFFICIENT_BUFFER || err == windows.ERROR_MORE_DATA {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("blockio: IOCTL_DISK_GET_DRIVE_LAYOUT_EX: %w", err)
		}
		return decodeDriveLayoutEx(raw, n)
	}
	return nil, fmt.Errorf("blockio: drive layout exceeds %d entries", maxLayoutEntries)
}

// SetDriveLayout saves PartitionCount, issues IOCTL_DISK_SET_DRIVE_LAYOUT_EX,
// then restores it on the caller's layout: the kernel helper rounds the
// count up internally and callers must not lose the original value.
func (d *WindowsDevice) SetDriveLayout(layout *mbr.LayoutBuffer) error {
	savedCount := layout.PartitionCount
	raw := encodeDriveLayoutEx(layout)

	var returned uint32
	err := windows.DeviceIoControl(
		d.handle,
		ioctlDiskSetDriveLayoutEx,
		&raw[0], uint32(len(raw)),
		nil, 0,
		&returned, nil,
	)
	layout.PartitionCount = savedCount
	if err != nil {
		return fmt.Errorf("blockio: IOCTL_DISK_SET_DRIVE_LAYOUT_EX: %w", err)
	}
	return nil
}

func (d *WindowsDevice) LockVolume() error {
	var returned uint32
	return windows.DeviceIoControl(d.handle, fsctlLockVolume, nil, 0, nil, 0, &returned, nil)
}

func (d *WindowsDevice) DismountVolume() error {
	var returned uint32
	return windows.DeviceIoControl(d.handle, fsctlDismountVolume, nil, 0, nil, 0, &returned, nil)
}

func (d *WindowsDevice) UnlockVolume() error {
	var returned uint32
	return windows.DeviceIoControl(d.handle, fsctlUnlockVolume, nil, 0, nil, 0, &returned, nil)
}

// --- DRIVE_LAYOUT_INFORMATION_EX wire encoding ---
//
// struct layout (MBR variant):
//   uint32 PartitionStyle
//   uint32 PartitionCount
//   [8]byte DriveLayoutInformaton (union, MBR: Signature uint32 + 4 reserved bytes)
//   PARTITION_INFORMATION_EX[PartitionCount] entries, 144 bytes each (MBR arm used)

const partitionInfoExSize = 144

func driveLayoutExSize(n int) int {
	return 8 + 8 + n*partitionInfoExSize
}

func decodeDriveLayoutEx(raw []byte, n int) (*mbr.LayoutBuffer, error) {
	partitionCount := binary.LittleEndian.Uint32(raw[4:8])
	signature := binary.LittleEndian.Uint32(raw[8:12])

	buf := mbr.NewLayoutBuffer(n)
	buf.PartitionCount = int(partitionCount)
	buf.Signature = signature

	base := 16
	for i := 0; i < n; i++ {
		off := base + i*partitionInfoExSize
		if off+partitionInfoExSize > len(raw) {
			break
		}
		entry := raw[off : off+partitionInfoExSize]

		startOffset := binary.LittleEndian.Uint64(entry[8:16])
		length := binary.LittleEndian.Uint64(entry[16:24])
		partNum := binary.LittleEndian.Uint32(entry[24:28])

		// MBR-specific PARTITION_INFORMATION sub-struct begins at offset 32.
		partType := entry[32]
		boot := entry[33] != 0
		recognized := entry[34] != 0
		hiddenSectors := binary.LittleEndian.Uint32(entry[36:40])

		buf.Entries[i] = mbr.MBRPartitionEntry{
			BootIndicator:         boot,
			PartitionType:         mbr.PartitionType(partType),
			StartLBA:              uint32(startOffset / geometry.SectorSize),
			TotalSectors:          uint32(length / geometry.SectorSize),
			Recognized:            recognized,
			OnDiskPartitionNumber: int(partNum),
		}
		_ = hiddenSectors
	}
	return buf, nil
}

func encodeDriveLayoutEx(layout *mbr.LayoutBuffer) []byte {
	n := len(layout.Entries)
	raw := make([]byte, driveLayoutExSize(n))

	binary.LittleEndian.PutUint32(raw[0:4], partitionStyleMBR)
	binary.LittleEndian.PutUint32(raw[4:8], uint32(layout.PartitionCount))
	binary.LittleEndian.PutUint32(raw[8:12], layout.Signature)

	base := 16
	for i, e := range layout.Entries {
		off := base + i*partitionInfoExSize
		entry := raw[off : off+partitionInfoExSize]

		startOffset := uint64(e.StartLBA) * geometry.SectorSize
		length := uint64(e.TotalSectors) * geometry.SectorSize

		binary.LittleEndian.PutUint64(entry[8:16], startOffset)
		binary.LittleEndian.PutUint64(entry[16:24], length)
		binary.LittleEndian.PutUint32(entry[24:28], uint32(e.OnDiskPartitionNumber))

		entry[32] = byte(e.PartitionType)
		if e.BootIndicator {
			entry[33] = 1
		}
		if e.Recognized {
			entry[34] = 1
		}
		binary.LittleEndian.PutUint32(entry[36:40], e.StartLBA)
	}
	return raw
}
