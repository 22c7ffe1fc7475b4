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
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// node is one simulated registry key: a set of typed values plus named
// child keys. Binary values are hex-encoded so the fixture stays plain
// YAML text instead of requiring a custom !!binary tag.
type node struct {
	SubKeys map[string]*node  `yaml:"subkeys,omitempty"`
	Strings map[string]string `yaml:"strings,omitempty"`
	Binary  map[string]string `yaml:"binary,omitempty"`
	DWORDs  map[string]uint32 `yaml:"dwords,omitempty"`
}

func newNode() *node {
	return &node{SubKeys: map[string]*node{}}
}

// YAMLStore simulates the shape of HKEY_LOCAL_MACHINE from a YAML fixture
// file, so the Firmware Map reader and the mount-point registry writer can
// be exercised without a real Windows registry. Writes are persisted back
// to disk immediately, the way the real registry is durable across calls.
type YAMLStore struct {
	mu   sync.Mutex
	path string
	root *node
}

// NewYAMLStore loads path, or starts from an empty store if it doesn't exist;
// the file itself is not created until the first write.
func NewYAMLStore(path string) (*YAMLStore, error) {
	s := &YAMLStore{path: path, root: newNode()}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("regstore: read %q: %w", path, err)
	}

	if err := yaml.Unmarshal(data, s.root); err != nil {
		return nil, fmt.Errorf("regstore: parse %q: %w", path, err)
	}
	if s.root.SubKeys == nil {
		s.root.SubKeys = map[string]*node{}
	}
	return s, nil
}

func splitPath(path string) []string {
	path = strings.Trim(path, `\`)
	if path == "" {
		return nil
	}
	return strings.Split(path, `\`)
}

func (s *YAMLStore) walk(path string, create bool) (*node, error) {
	cur := s.root
	for _, seg := range splitPath(path) {
		if cur.SubKeys == nil {
			cur.SubKeys = map[string]*node{}
		}
		next, ok := cur.SubKeys[seg]
		if !ok {
			if !create {
				return nil, ErrNotExist
			}
			next = newNode()
			cur.SubKeys[seg] = next
		}
		cur = next
	}
	return cur, nil
}

func (s *YAMLStore) persist() error {
	data, err := yaml.Marshal(s.root)
	if err != nil {
		return fmt.Errorf("regstore: marshal fixture: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("regstore: write %q: %w", s.path, err)
	}
	return nil
}

func (s *YAMLStore) EnumerateSubKeys(path string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.walk(path, false)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(n.SubKeys))
	for name := range n.SubKeys {
		names = append(names, name)
	}
	return names, nil
}

func (s *YAMLStore) ReadString(path, name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.walk(path, false)
	if err != nil {
		return "", err
	}
	v, ok := n.Strings[name]
	if !ok {
		return "", ErrNotExist
	}
	return v, nil
}

func (s *YAMLStore) ReadBinary(path, name string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.walk(path, false)
	if err != nil {
		return nil, err
	}
	encoded, ok := n.Binary[name]
	if !ok {
		return nil, ErrNotExist
	}
	data, err := hex.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("regstore: decode binary %q\\%s: %w", path, name, err)
	}
	return data, nil
}

func (s *YAMLStore) ReadUint32(path, name string) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.walk(path, false)
	if err != nil {
		return 0, err
	}
	v, ok := n.DWORDs[name]
	if !ok {
		return 0, ErrNotExist
	}
	return v, nil
}

func (s *YAMLStore) WriteBinary(path, name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.walk(path, true)
	if err != nil {
		return err
	}
	if n.Binary == nil {
		n.Binary = map[string]string{}
	}
	n.Binary[name] = hex.EncodeToString(data)
	return s.persist()
}
