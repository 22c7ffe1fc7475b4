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

package previewfs

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"

	"github.com/ostafen/partedit/internal/disk"
	osutil "github.com/ostafen/partedit/pkg/util/os"
)

// Mount serves a read-only preview of list at mountpoint until a
// termination signal arrives, then unmounts and returns.
func Mount(mountpoint string, list *disk.PartitionList) error {
	created, err := osutil.EnsureDir(mountpoint, true)
	if err != nil {
		return err
	}
	if created {
		defer os.Remove(mountpoint)
	}

	c, err := fuse.Mount(mountpoint)
	if err != nil {
		return err
	}
	defer c.Close()

	pfs := New(list)
	defer pfs.Close()

	go func() {
		srv := fusefs.New(c, nil)
		if err := srv.Serve(pfs); err != nil {
			log.Fatalf("previewfs: serve: %v", err)
		}
	}()
	return waitForUnmount(mountpoint)
}

func waitForUnmount(mountpoint string) error {
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)

	log.Println("previewfs: waiting for termination signal...")

	const maxUnmountRetries = 3
	attempts := 0
	for sig := range sigc {
		log.Printf("previewfs: signal received: %v", sig)

		if attempts >= maxUnmountRetries {
			log.Fatalf("previewfs: unmount of %s failed %d times, exiting", mountpoint, maxUnmountRetries)
		}

		if err := fuse.Unmount(mountpoint); err == nil {
			log.Println("previewfs: unmounted")
			return nil
		} else {
			attempts++
			log.Printf("previewfs: unmount failed: %v, retries left: %d", err, maxUnmountRetries-attempts)
		}
	}
	return nil
}

