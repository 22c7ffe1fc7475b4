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

//go:build linux
// +build linux

// Package previewfs exposes a scanned disk.PartitionList as a read-only
// FUSE filesystem: one directory per disk, one file per region (free
// regions included), each file's content a section read straight off the underlying device.
// There is no write path; the Editor, not a filesystem client, owns every
// mutation to the region model.
package previewfs

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"bazil.org/fuse"
	"bazil.org/fuse/fs"

	"github.com/ostafen/partedit/internal/blockio"
	"github.com/ostafen/partedit/internal/disk"
)

// PreviewFS is the bazil.org/fuse filesystem root.
type PreviewFS struct {
	list *disk.PartitionList

	mtx   sync.Mutex
	open  map[int]blockio.Device // disk number -> open handle, lazily populated
	bytes map[int]uint32         // disk number -> bytes per sector
}

// New builds a PreviewFS over list. Devices are opened lazily, on the first
// Attr/Read of a region file on a disk, and never closed until the filesystem itself
// is torn down by the caller via Close.
func New(list *disk.PartitionList) *PreviewFS {
	return &PreviewFS{
		list:  list,
		open:  map[int]blockio.Device{},
		bytes: map[int]uint32{},
	}
}

// Close closes every device opened during the filesystem's lifetime.
func (p *PreviewFS) Close() {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	for _, dev := range p.open {
		dev.Close()
	}
}

func (p *PreviewFS) deviceFor(d *disk.Disk) (blockio.Device, uint32, error) {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	if dev, ok := p.open[d.Number]; ok {
		return dev, p.bytes[d.Number], nil
	}

	dev, err := d.Open()
	if err != nil {
		return nil, 0, err
	}
	bps := d.Geometry.BytesPerSector
	if bps == 0 {
		bps = 512
	}
	p.open[d.Number] = dev
	p.bytes[d.Number] = bps
	return dev, bps, nil
}

func (p *PreviewFS) Root() (fs.Node, error) {
	return &rootDir{fs: p}, nil
}

type rootDir struct {
	fs *PreviewFS
}

func (*rootDir) Attr(ctx context.Context, a *fuse.Attr) error {
	a.Mode = os.ModeDir | 0555
	return nil
}

func (d *rootDir) Lookup(ctx context.Context, name string) (fs.Node, error) {
	var n int
	if _, err := fmt.Sscanf(name, "disk%d", &n); err != nil {
		return nil, fuse.ENOENT
	}
	dk := d.fs.list.GetDiskByNumber(n)
	if dk == nil {
		return nil, fuse.ENOENT
	}
	return &diskDir{fs: d.fs, disk: dk}, nil
}

func (d *rootDir) ReadDirAll(ctx context.Context) ([]fuse.Dirent, error) {
	entries := make([]fuse.Dirent, 0, len(d.fs.list.Disks))
	for i, dk := range d.fs.list.Disks {
		entries = append(entries, fuse.Dirent{
			Inode: uint64(i + 1),
			Name:  fmt.Sprintf("disk%d", dk.Number),
			Type:  fuse.DT_Dir,
		})
	}
	return entries, nil
}

// diskDir lists every region on one disk as a file named by its on-disk
// partition number, or "free<i>" for an unpartitioned region or the
// extended container.
type diskDir struct {
	fs   *PreviewFS
	disk *disk.Disk
}

func (*diskDir) Attr(ctx context.Context, a *fuse.Attr) error {
	a.Mode = os.ModeDir | 0555
	return nil
}

func regionName(r *disk.Region, idx int) string {
	if r.IsPartitioned && !r.IsContainer() {
		return fmt.Sprintf("partition%d", r.OnDiskPartitionNumber)
	}
	return fmt.Sprintf("free%d", idx)
}

func (d *diskDir) allRegions() []*disk.Region {
	regions := make([]*disk.Region, 0, len(d.disk.Primary)+len(d.disk.Logical))
	regions = append(regions, d.disk.Primary...)
	regions = append(regions, d.disk.Logical...)
	return regions
}

func (d *diskDir) Lookup(ctx context.Context, name string) (fs.Node, error) {
	for i, r := range d.allRegions() {
		if regionName(r, i) == name {
			return &regionFile{fs: d.fs, disk: d.disk, region: r}, nil
		}
	}
	return nil, fuse.ENOENT
}

func (d *diskDir) ReadDirAll(ctx context.Context) ([]fuse.Dirent, error) {
	regions := d.allRegions()
	entries := make([]fuse.Dirent, 0, len(regions))
	for i, r := range regions {
		entries = append(entries, fuse.Dirent{
			Inode: uint64(i + 1),
			Name:  regionName(r, i),
			Type:  fuse.DT_File,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// regionFile presents one region's sector range as a flat, read-only file.
type regionFile struct {
	fs     *PreviewFS
	disk   *disk.Disk
	region *disk.Region
}

func (f *regionFile) Attr(ctx context.Context, a *fuse.Attr) error {
	_, bps, err := f.fs.deviceFor(f.disk)
	if err != nil {
		return err
	}
	a.Mode = 0444
	a.Size = f.region.SectorCount * uint64(bps)
	a.Mtime = time.Now()
	return nil
}

func (f *regionFile) Read(ctx context.Context, req *fuse.ReadRequest, resp *fuse.ReadResponse) error {
	dev, bps, err := f.fs.deviceFor(f.disk)
	if err != nil {
		return err
	}

	sr := blockio.NewSectionReader(dev, bps, f.region.StartSector, f.region.SectorCount)

	buf := make([]byte, req.Size)
	n, err := sr.ReadAt(buf, req.Offset)
	if err != nil && err != io.EOF {
		return err
	}
	resp.Data = buf[:n]
	return nil
}
