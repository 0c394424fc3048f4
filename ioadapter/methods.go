package ioadapter

import (
	"github.com/topnetwork/tvm-engine-go/storagekey"
	"github.com/topnetwork/tvm-engine-go/tvmtypes"
)

// GetBalance returns the account's balance, or zero if no record exists.
func GetBalance(io IO, addr tvmtypes.Address) tvmtypes.UTop {
	key := storagekey.AddressToKey(storagekey.KindBalance, addr)
	si, ok := io.ReadStorage(key[:])
	if !ok {
		return tvmtypes.ZeroUTop
	}
	return tvmtypes.NewUTop(beToUint64(Bytes(si)))
}

// SetBalance writes the account's balance record.
func SetBalance(io IO, addr tvmtypes.Address, balance tvmtypes.UTop) {
	key := storagekey.AddressToKey(storagekey.KindBalance, addr)
	be := balance.ToBEBytes()
	io.WriteStorage(key[:], be[:])
}

// AddBalance adds amount to the account's current balance.
func AddBalance(io IO, addr tvmtypes.Address, amount tvmtypes.UTop) {
	SetBalance(io, addr, tvmtypes.NewUTop(GetBalance(io, addr).Raw()+amount.Raw()))
}

// GetNonce returns the account's nonce. Nonces are logically U256 but
// persisted as 8 big-endian bytes (see SPEC_FULL.md's open question on
// nonce encoding); the high bits are implicitly zero.
func GetNonce(io IO, addr tvmtypes.Address) *tvmtypes.U256 {
	key := storagekey.AddressToKey(storagekey.KindNonce, addr)
	si, ok := io.ReadStorage(key[:])
	if !ok {
		return tvmtypes.U256FromUint64(0)
	}
	return tvmtypes.U256FromUint64(beToUint64(Bytes(si)))
}

// SetNonce writes the account's nonce record, truncated to its low 8 bytes.
func SetNonce(io IO, addr tvmtypes.Address, nonce *tvmtypes.U256) {
	key := storagekey.AddressToKey(storagekey.KindNonce, addr)
	be := uint64ToBE(nonce.Uint64())
	io.WriteStorage(key[:], be[:])
}

// IncrementNonce adds one to the account's current nonce.
func IncrementNonce(io IO, addr tvmtypes.Address) {
	n := GetNonce(io, addr)
	n.AddUint64(n, 1)
	SetNonce(io, addr, n)
}

// GetCode returns the account's code, or nil if no code is recorded.
func GetCode(io IO, addr tvmtypes.Address) []byte {
	key := storagekey.AddressToKey(storagekey.KindCode, addr)
	si, ok := io.ReadStorage(key[:])
	if !ok {
		return nil
	}
	return Bytes(si)
}

// SetCode writes the account's code record.
func SetCode(io IO, addr tvmtypes.Address, code []byte) {
	key := storagekey.AddressToKey(storagekey.KindCode, addr)
	io.WriteStorage(key[:], code)
}

// GetCodeSize returns the length of the account's code without
// materialising it.
func GetCodeSize(io IO, addr tvmtypes.Address) int {
	key := storagekey.AddressToKey(storagekey.KindCode, addr)
	si, ok := io.ReadStorage(key[:])
	if !ok {
		return 0
	}
	return si.Len()
}

// RemoveCode deletes the account's code record.
func RemoveCode(io IO, addr tvmtypes.Address) {
	key := storagekey.AddressToKey(storagekey.KindCode, addr)
	io.RemoveStorage(key[:])
}

// GetStorage returns the value at a storage slot, or the zero hash if
// unset.
func GetStorage(io IO, addr tvmtypes.Address, slot tvmtypes.H256) tvmtypes.H256 {
	key := storagekey.StorageToKey(addr, slot)
	si, ok := io.ReadStorage(key[:])
	if !ok {
		return tvmtypes.ZeroHash
	}
	return tvmtypes.H256FromBytes(Bytes(si))
}

// SetStorage writes a storage slot.
func SetStorage(io IO, addr tvmtypes.Address, slot, value tvmtypes.H256) {
	key := storagekey.StorageToKey(addr, slot)
	io.WriteStorage(key[:], value.Bytes())
}

// RemoveStorage deletes a single storage slot.
func RemoveStorage(io IO, addr tvmtypes.Address, slot tvmtypes.H256) {
	key := storagekey.StorageToKey(addr, slot)
	io.RemoveStorage(key[:])
}

// RemoveAllStorage bulk-erases every slot recorded for addr.
func RemoveAllStorage(io IO, addr tvmtypes.Address) {
	io.RemoveAllStorage(addr)
}

// IsAccountEmpty reports whether the account has zero balance, zero nonce,
// and no code.
func IsAccountEmpty(io IO, addr tvmtypes.Address) bool {
	return GetBalance(io, addr).IsZero() && GetNonce(io, addr).IsZero() && GetCodeSize(io, addr) == 0
}

// RemoveAccount atomically removes an account's nonce, balance, code, and
// all storage.
func RemoveAccount(io IO, addr tvmtypes.Address) {
	nonceKey := storagekey.AddressToKey(storagekey.KindNonce, addr)
	balanceKey := storagekey.AddressToKey(storagekey.KindBalance, addr)
	io.RemoveStorage(nonceKey[:])
	io.RemoveStorage(balanceKey[:])
	RemoveCode(io, addr)
	RemoveAllStorage(io, addr)
}

func beToUint64(b []byte) uint64 {
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v
}

func uint64ToBE(v uint64) [8]byte {
	var b [8]byte
	for i := 7; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
	return b
}
