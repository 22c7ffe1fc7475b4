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

// Package regstore abstracts the registry-shaped key/value store the
// Firmware Map is read from and the mount-point registry is written to.
// A real build reads HKLM\HARDWARE\DESCRIPTION\System\MultifunctionAdapter
// and writes HKLM\SYSTEM\MountedDevices through the Windows registry; a
// file-backed store simulates the same shape from a YAML fixture for
// development and tests.
package regstore

import "fmt"

// ErrNotExist is returned by Read* when a key or value is absent, mirroring
// registry.ErrNotExist so callers can treat a missing key as "disk absent"
// rather than a hard failure.
var ErrNotExist = fmt.Errorf("regstore: key or value does not exist")

// Store is the registry-shaped collaborator used by the Firmware Map reader
// and the mount-point registry writer.
type Store interface {
	// EnumerateSubKeys lists the immediate child key names under path.
	EnumerateSubKeys(path string) ([]string, error)

	// ReadString reads a REG_SZ value.
	ReadString(path, name string) (string, error)

	// ReadBinary reads a REG_BINARY or REG_RESOURCE_LIST value.
	ReadBinary(path, name string) ([]byte, error)

	// ReadUint32 reads a REG_DWORD value.
	ReadUint32(path, name string) (uint32, error)

	// WriteBinary writes (creating the key if necessary) a REG_BINARY
	// value. Used for \SYSTEM\MountedDevices entries.
	WriteBinary(path, name string, data []byte) error
}
