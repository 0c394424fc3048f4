// Package storagekey lays out the byte keys the engine uses against the
// host's persistent key-value store: a version byte, a kind byte, and the
// address (plus, for storage slots, the 32-byte slot key).
package storagekey

import "github.com/topnetwork/tvm-engine-go/tvmtypes"

// Version is the sole supported key-layout version.
const Version byte = 0x01

// Kind distinguishes the four record kinds that exist per address.
type Kind byte

const (
	// KindNonce keys an account's nonce record (8 BE bytes).
	KindNonce Kind = 0x01
	// KindBalance keys an account's balance record (8 BE bytes, uTOP).
	KindBalance Kind = 0x02
	// KindCode keys an account's code record (raw bytes).
	KindCode Kind = 0x03
	// KindStorage is both the per-address storage sentinel kind and the
	// kind byte embedded in every per-slot storage key.
	KindStorage Kind = 0x04
)

// AddressKeyLen is the byte width of a per-address record key.
const AddressKeyLen = 2 + tvmtypes.AddressLength

// StorageKeyLen is the byte width of a per-slot storage record key.
const StorageKeyLen = 2 + tvmtypes.AddressLength + tvmtypes.HashLength

// AddressToKey builds the 22-byte key for a per-address record of the given
// kind: [version, kind, addr[0..20]].
func AddressToKey(kind Kind, addr tvmtypes.Address) [AddressKeyLen]byte {
	var k [AddressKeyLen]byte
	k[0] = Version
	k[1] = byte(kind)
	copy(k[2:], addr.Bytes())
	return k
}

// StorageToKey builds the 54-byte key for a single storage slot:
// [version, KindStorage, addr[0..20], slot[0..32]].
func StorageToKey(addr tvmtypes.Address, slot tvmtypes.H256) [StorageKeyLen]byte {
	var k [StorageKeyLen]byte
	k[0] = Version
	k[1] = byte(KindStorage)
	copy(k[2:2+tvmtypes.AddressLength], addr.Bytes())
	copy(k[2+tvmtypes.AddressLength:], slot.Bytes())
	return k
}
