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
package regstore

import (
	"fmt"

	"golang.org/x/sys/windows/registry"
)

// WindowsStore reads and writes HKEY_LOCAL_MACHINE through
// golang.org/x/sys/windows/registry.
type WindowsStore struct{}

// NewWindowsStore returns a Store rooted at HKEY_LOCAL_MACHINE.
func NewWindowsStore() *WindowsStore { return &WindowsStore{} }

func (s *WindowsStore) openKey(path string, access uint32) (registry.Key, error) {
	k, err := registry.OpenKey(registry.LOCAL_MACHINE, path, access)
	if err == registry.ErrNotExist {
		return 0, ErrNotExist
	}
	if err != nil {
		return 0, fmt.Errorf("regstore: open %q: %w", path, err)
	}
	return k, nil
}

func (s *WindowsStore) EnumerateSubKeys(path string) ([]string, error) {
	k, err := s.openKey(path, registry.ENUMERATE_SUB_KEYS)
	if err != nil {
		return nil, err
	}
	defer k.Close()

	names, err := k.ReadSubKeyNames(-1)
	if err != nil {
		return nil, fmt.Errorf("regstore: enumerate %q: %w", path, err)
	}
	return names, nil
}

func (s *WindowsStore) ReadString(path, name string) (string, error) {
	k, err := s.openKey(path, registry.QUERY_VALUE)
	if err != nil {
		return "", err
	}
	defer k.Close()

	v, _, err := k.GetStringValue(name)
	if err == registry.ErrNotExist {
		return "", ErrNotExist
	}
	if err != nil {
		return "", fmt.Errorf("regstore: read string %q\\%s: %w", path, name, err)
	}
	return v, nil
}

func (s *WindowsStore) ReadBinary(path, name string) ([]byte, error) {
	k, err := s.openKey(path, registry.QUERY_VALUE)
	if err != nil {
		return nil, err
	}
	defer k.Close()

	v, _, err := k.GetBinaryValue(name)
	if err == registry.ErrNotExist {
		return nil, ErrNotExist
	}
	if err != nil {
		return nil, fmt.Errorf("regstore: read binary %q\\%s: %w", path, name, err)
	}
	return v, nil
}

func (s *WindowsStore) ReadUint32(path, name string) (uint32, error) {
	k, err := s.openKey(path, registry.QUERY_VALUE)
	if err != nil {
		return 0, err
	}
	defer k.Close()

	v, _, err := k.GetIntegerValue(name)
	if err == registry.ErrNotExist {
		return 0, ErrNotExist
	}
	if err != nil {
		return 0, fmt.Errorf("regstore: read dword %q\\%s: %w", path, name, err)
	}
	return uint32(v), nil
}

func (s *WindowsStore) WriteBinary(path, name string, data []byte) error {
	k, _, err := registry.CreateKey(registry.LOCAL_MACHINE, path, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("regstore: create/open %q: %w", path, err)
	}
	defer k.Close()

	if err := k.SetBinaryValue(name, data); err != nil {
		return fmt.Errorf("regstore: write binary %q\\%s: %w", path, name, err)
	}
	return nil
}
