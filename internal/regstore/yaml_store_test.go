package regstore_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ostafen/partedit/internal/regstore"
	"github.com/stretchr/testify/require"
)

func TestNewYAMLStoreCreatesEmptyFixtureWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yaml")

	s, err := regstore.NewYAMLStore(path)
	require.NoError(t, err)

	_, err = s.EnumerateSubKeys(`HARDWARE`)
	require.ErrorIs(t, err, regstore.ErrNotExist)
}

func TestYAMLStoreWriteBinaryPersistsAndRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.yaml")
	s, err := regstore.NewYAMLStore(path)
	require.NoError(t, err)

	data := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	require.NoError(t, s.WriteBinary(`SYSTEM\MountedDevices`, `\DosDevices\C:`, data))

	_, err = os.Stat(path)
	require.NoError(t, err)

	reloaded, err := regstore.NewYAMLStore(path)
	require.NoError(t, err)

	got, err := reloaded.ReadBinary(`SYSTEM\MountedDevices`, `\DosDevices\C:`)
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestYAMLStoreEnumerateSubKeysWalksNestedPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.yaml")
	s, err := regstore.NewYAMLStore(path)
	require.NoError(t, err)

	require.NoError(t, s.WriteBinary(`HARDWARE\DESCRIPTION\System\MultifunctionAdapter\0\DiskController\0`, "Configuration Data", []byte{1}))

	names, err := s.EnumerateSubKeys(`HARDWARE\DESCRIPTION\System\MultifunctionAdapter`)
	require.NoError(t, err)
	require.Equal(t, []string{"0"}, names)
}

func TestYAMLStoreReadStringAndUint32MissingReturnErrNotExist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.yaml")
	s, err := regstore.NewYAMLStore(path)
	require.NoError(t, err)
	require.NoError(t, s.WriteBinary(`SYSTEM`, "marker", []byte{0}))

	_, err = s.ReadString(`SYSTEM`, "missing")
	require.ErrorIs(t, err, regstore.ErrNotExist)

	_, err = s.ReadUint32(`SYSTEM`, "missing")
	require.ErrorIs(t, err, regstore.ErrNotExist)
}

func TestNewYAMLStoreLoadsHandWrittenFixture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.yaml")
	fixture := "subkeys:\n" +
		"  HARDWARE:\n" +
		"    strings:\n" +
		"      Identifier: \"AABBCCDD-11223344-0\"\n"
	require.NoError(t, os.WriteFile(path, []byte(fixture), 0o644))

	s, err := regstore.NewYAMLStore(path)
	require.NoError(t, err)

	v, err := s.ReadString(`HARDWARE`, "Identifier")
	require.NoError(t, err)
	require.Equal(t, "AABBCCDD-11223344-0", v)
}
