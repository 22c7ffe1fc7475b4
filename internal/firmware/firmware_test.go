package firmware_test

import (
	"testing"

	"github.com/ostafen/partedit/internal/firmware"
	"github.com/ostafen/partedit/internal/regstore"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	subkeys map[string][]string
	strings map[string]string
	binary  map[string][]byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{subkeys: map[string][]string{}, strings: map[string]string{}, binary: map[string][]byte{}}
}

func (s *fakeStore) EnumerateSubKeys(path string) ([]string, error) {
	keys, ok := s.subkeys[path]
	if !ok {
		return nil, regstore.ErrNotExist
	}
	return keys, nil
}

func (s *fakeStore) ReadString(path, name string) (string, error) {
	v, ok := s.strings[path+"|"+name]
	if !ok {
		return "", regstore.ErrNotExist
	}
	return v, nil
}

func (s *fakeStore) ReadBinary(path, name string) ([]byte, error) {
	v, ok := s.binary[path+"|"+name]
	if !ok {
		return nil, regstore.ErrNotExist
	}
	return v, nil
}

func (s *fakeStore) ReadUint32(path, name string) (uint32, error) { return 0, regstore.ErrNotExist }

func (s *fakeStore) WriteBinary(path, name string, data []byte) error { return nil }

func int13Record(driveSelect byte, maxCylinder uint32, maxHead, maxSector byte, signature uint32) []byte {
	r := make([]byte, 14)
	r[0] = driveSelect
	r[1] = byte(maxCylinder)
	r[2] = byte(maxCylinder >> 8)
	r[3] = byte(maxCylinder >> 16)
	r[4] = byte(maxCylinder >> 24)
	r[5] = maxHead
	r[6] = maxSector
	r[7] = byte(signature)
	r[8] = byte(signature >> 8)
	r[9] = byte(signature >> 16)
	r[10] = byte(signature >> 24)
	return r
}

func TestEnumerateFirmwareDisksWalksTreeInOrder(t *testing.T) {
	store := newFakeStore()
	store.subkeys[`HARDWARE\DESCRIPTION\System\MultifunctionAdapter`] = []string{"0"}
	store.subkeys[`HARDWARE\DESCRIPTION\System\MultifunctionAdapter\0\DiskController`] = []string{"0"}
	store.subkeys[`HARDWARE\DESCRIPTION\System\MultifunctionAdapter\0\DiskController\0\DiskPeripheral`] = []string{"0", "1"}

	store.strings[`HARDWARE\DESCRIPTION\System\MultifunctionAdapter\0\DiskController\0\DiskPeripheral\0|Identifier`] = "AABBCCDD-11223344-0"
	store.strings[`HARDWARE\DESCRIPTION\System\MultifunctionAdapter\0\DiskController\0\DiskPeripheral\1|Identifier`] = "00112233-44556677-0"

	cfg := append(int13Record(0x80, 1023, 254, 63, 0xAABBCCDD), int13Record(0x81, 2000, 255, 63, 0x00112233)...)
	store.binary[`HARDWARE\DESCRIPTION\System\MultifunctionAdapter\0\DiskController\0|Configuration Data`] = cfg

	disks, err := firmware.EnumerateFirmwareDisks(store)
	require.NoError(t, err)
	require.Len(t, disks, 2)

	require.Equal(t, uint32(0xAABBCCDD), disks[0].Checksum)
	require.Equal(t, uint32(0x11223344), disks[0].Signature)
	require.Equal(t, uint32(0xAABBCCDD), disks[0].Int13.Signature)
	require.False(t, disks[0].Bound)

	require.Equal(t, uint32(0x00112233), disks[1].Checksum)
	require.Equal(t, uint32(0x44556677), disks[1].Signature)
}

func TestEnumerateFirmwareDisksReturnsNilWhenRootMissing(t *testing.T) {
	store := newFakeStore()

	disks, err := firmware.EnumerateFirmwareDisks(store)
	require.NoError(t, err)
	require.Nil(t, disks)
}

func TestEnumerateFirmwareDisksSkipsControllerWithoutPeripherals(t *testing.T) {
	store := newFakeStore()
	store.subkeys[`HARDWARE\DESCRIPTION\System\MultifunctionAdapter`] = []string{"0"}
	store.subkeys[`HARDWARE\DESCRIPTION\System\MultifunctionAdapter\0\DiskController`] = []string{"0"}

	disks, err := firmware.EnumerateFirmwareDisks(store)
	require.NoError(t, err)
	require.Empty(t, disks)
}
