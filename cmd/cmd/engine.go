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
package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ostafen/partedit/internal/blockio"
	"github.com/ostafen/partedit/internal/clock"
	"github.com/ostafen/partedit/internal/disk"
	"github.com/ostafen/partedit/internal/editor"
	"github.com/ostafen/partedit/internal/logger"
	"github.com/ostafen/partedit/internal/mount"
	"github.com/ostafen/partedit/internal/regstore"
	"github.com/ostafen/partedit/internal/scan"
	"github.com/ostafen/partedit/internal/writer"
	"github.com/spf13/cobra"
)

// engine bundles the collaborators every subcommand drives: the scanned
// region model plus an Editor, Writer and Mounter wired against the same
// Opener and Store.
type engine struct {
	List   *disk.PartitionList
	Editor *editor.Editor
	Writer *writer.Writer
	Mount  *mount.Mounter
	Log    *logger.Logger
}

// fileOpener resolves a collaborator-style device path
// (\Device\Harddisk<n>\Partition<p>) to disk<n>.img under dir: every
// partition of a disk is read through its whole-device image, since a
// plain image file carries no kernel-level partition objects. When mmap is
// set, images are opened through a shared memory mapping instead of pread,
// trading a larger up-front mapping for cheaper repeated small reads during
// scanning; it falls back to OpenFile wherever mmap isn't available.
func fileOpener(dir string, mmap bool) blockio.Opener {
	return func(path string) (blockio.Device, error) {
		var n int
		if _, err := fmt.Sscanf(path, `\Device\Harddisk%d\Partition`, &n); err != nil {
			return nil, fmt.Errorf("cmd: unrecognized device path %q: %w", path, err)
		}
		imgPath := filepath.Join(dir, fmt.Sprintf("disk%d.img", n))
		if mmap {
			if dev, err := blockio.OpenMmap(imgPath); err == nil {
				return dev, nil
			}
		}
		return blockio.OpenFile(imgPath)
	}
}

// newEngine builds the full collaborator set from a subcommand's persistent
// flags and scans every disk in diskDir up to max-disks.
func newEngine(cmd *cobra.Command) (*engine, error) {
	diskDir, _ := cmd.Flags().GetString("disk-dir")
	registryPath, _ := cmd.Flags().GetString("registry")
	maxDisks, _ := cmd.Flags().GetInt("max-disks")
	logLevel, _ := cmd.Flags().GetString("log-level")
	noLog, _ := cmd.Flags().GetBool("no-log")
	mmap, _ := cmd.Flags().GetBool("mmap")

	logOut := io.Writer(os.Stderr)
	if noLog {
		logOut = io.Discard
	}
	log := logger.New(logOut, logger.ParseLevel(logLevel))

	store, err := regstore.NewYAMLStore(registryPath)
	if err != nil {
		return nil, fmt.Errorf("cmd: open registry fixture: %w", err)
	}

	opener := fileOpener(diskDir, mmap)
	mounter := &mount.Mounter{Opener: opener, Log: log}

	scanner := &scan.Scanner{Opener: opener, Store: store, Mounter: mounter, Log: log}
	list, err := scanner.Scan(maxDisks)
	if err != nil {
		return nil, fmt.Errorf("cmd: scan disks: %w", err)
	}

	return &engine{
		List:   list,
		Editor: &editor.Editor{Mounter: mounter},
		Writer: &writer.Writer{Log: log, Clock: clock.System{}, Store: store},
		Mount:  mounter,
		Log:    log,
	}, nil
}

// selectRegion resolves disk and partition index flags to a *disk.Region,
// failing if either doesn't resolve.
func selectRegion(list *disk.PartitionList, diskNo, partNo int) (*disk.Region, error) {
	d := list.GetDiskByNumber(diskNo)
	if d == nil {
		return nil, fmt.Errorf("cmd: no disk %d", diskNo)
	}
	r := list.GetPartition(d, partNo)
	if r == nil {
		return nil, fmt.Errorf("cmd: no partition %d on disk %d", partNo, diskNo)
	}
	return r, nil
}

// selectRegionAt resolves a disk and a raw slice index into its Primary (or
// Logical, if logical is set) region list, for targeting a free region that
// hasn't been assigned an on-disk partition number yet.
func selectRegionAt(list *disk.PartitionList, diskNo, index int, logical bool) (*disk.Region, error) {
	d := list.GetDiskByNumber(diskNo)
	if d == nil {
		return nil, fmt.Errorf("cmd: no disk %d", diskNo)
	}
	regions := d.Primary
	if logical {
		regions = d.Logical
	}
	if index < 0 || index >= len(regions) {
		return nil, fmt.Errorf("cmd: region index %d out of range on disk %d", index, diskNo)
	}
	return regions[index], nil
}
