// Package tvmtypes defines the value types shared across the execution
// engine: addresses, 256-bit hashes and integers, gas amounts, and the
// native uTOP balance unit.
package tvmtypes

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// AddressLength is the byte width of an Address.
const AddressLength = 20

// ErrIncorrectLength is returned when an address is built from a byte slice
// or hex string of the wrong length.
var ErrIncorrectLength = errors.New("tvmtypes: incorrect address length")

// ErrDecodeFailure is returned when an address hex string is not valid hex.
var ErrDecodeFailure = errors.New("tvmtypes: address hex decode failure")

// Address is a 20-byte account or contract address.
type Address [AddressLength]byte

// ZeroAddress is the all-zero address; used as the deploy-contract sentinel
// in engine.CallArgs.Contract.
var ZeroAddress = Address{}

// AddressFromBytes builds an Address from exactly 20 bytes.
func AddressFromBytes(b []byte) (Address, error) {
	var a Address
	if len(b) != AddressLength {
		return a, ErrIncorrectLength
	}
	copy(a[:], b)
	return a, nil
}

// AddressFromHex builds an Address from 40 hex characters (no "0x" prefix).
func AddressFromHex(s string) (Address, error) {
	var a Address
	if len(s) != AddressLength*2 {
		return a, ErrIncorrectLength
	}
	if _, err := hex.Decode(a[:], []byte(s)); err != nil {
		return a, ErrDecodeFailure
	}
	return a, nil
}

// Bytes returns the raw 20 bytes of the address.
func (a Address) Bytes() []byte { return a[:] }

// Hex returns the lowercase hex encoding of the address (no "0x" prefix).
func (a Address) Hex() string { return hex.EncodeToString(a[:]) }

// String implements fmt.Stringer.
func (a Address) String() string { return a.Hex() }

// IsZero reports whether the address is the all-zero deploy sentinel.
func (a Address) IsZero() bool { return a == ZeroAddress }

// Compare gives a bytewise total order over addresses: -1, 0, or 1.
func (a Address) Compare(b Address) int {
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// tableidPrefix is the fixed ASCII prefix hashed together with an address's
// lowercase hex encoding to derive its shard id.
const tableidPrefix = "T80000"

// Tableid returns the 6-bit shard identifier of the address: the low 6 bits
// of xxhash64(seed=0) of "T80000" concatenated with the address's lowercase
// hex encoding. Accounts and the contracts they deploy must share a tableid;
// see the deploy address-derivation loop in package engine.
func (a Address) Tableid() uint8 {
	h := xxhash.Sum64String(tableidPrefix + a.Hex())
	return uint8(h & 0x3f)
}

// Format implements fmt.Formatter so addresses print as hex in logs.
func (a Address) Format(f fmt.State, verb rune) {
	fmt.Fprintf(f, "%s", a.Hex())
}
