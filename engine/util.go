package engine

import (
	"crypto/sha256"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/topnetwork/tvm-engine-go/tvmtypes"
)

func codeKeccak(code []byte) []byte {
	return crypto.Keccak256(code)
}

// maxTableidAttempts bounds the CREATE2 salt-increment search for an
// address sharing the caller's tableid shard; exhausting it is a fatal
// engine error rather than an infinite loop, since a well-formed 6-bit
// shard space should be found in at most a few dozen tries in practice.
const maxTableidAttempts = 100_000

// deployAddress derives the address a deployment would land at for a
// given salt, using the standard CREATE2 formula but with the engine's
// own SHA-256 code hash in place of Keccak256(init_code): address =
// keccak256(0xff || caller || salt || sha256(init_code))[12:].
func deployAddress(caller tvmtypes.Address, salt [32]byte, codeHash [32]byte) tvmtypes.Address {
	buf := make([]byte, 0, 1+20+32+32)
	buf = append(buf, 0xff)
	buf = append(buf, caller.Bytes()...)
	buf = append(buf, salt[:]...)
	buf = append(buf, codeHash[:]...)
	digest := crypto.Keccak256(buf)
	var addr tvmtypes.Address
	copy(addr[:], digest[12:])
	return addr
}

// findDeploymentAddress searches for a salt, starting from
// sha256(nonceBE) and incrementing as a big-endian 256-bit integer on
// each retry, such that the derived contract address shares the caller's
// tableid shard. This mirrors deploy_code's tableid-matching loop: a
// contract must live in the same shard as its deployer.
func findDeploymentAddress(caller tvmtypes.Address, nonce uint64, code []byte) (tvmtypes.Address, [32]byte, error) {
	var nonceBE [8]byte
	for i := 7; i >= 0; i-- {
		nonceBE[i] = byte(nonce)
		nonce >>= 8
	}
	saltSeed := sha256.Sum256(nonceBE[:])
	return searchTableidSalt(caller, saltSeed, code)
}

// searchTableidSalt runs the tableid-matching salt-increment search from
// seed, shared by the top-level deploy_code dispatch (seeded from the
// caller's nonce) and in-contract CREATE/CREATE2 (seeded from the caller's
// nonce or the opcode's own salt operand, respectively): a contract must
// land in the same shard as whatever deploys it, no matter which call
// surface triggered the deployment.
func searchTableidSalt(caller tvmtypes.Address, seed [32]byte, code []byte) (tvmtypes.Address, [32]byte, error) {
	codeHash := sha256.Sum256(code)

	salt := new(uint256.Int).SetBytes(seed[:])
	callerShard := caller.Tableid()

	for attempt := 0; attempt < maxTableidAttempts; attempt++ {
		saltBytes := salt.Bytes32()
		addr := deployAddress(caller, saltBytes, codeHash)
		if addr.Tableid() == callerShard {
			return addr, saltBytes, nil
		}
		salt.AddUint64(salt, 1)
	}
	return tvmtypes.Address{}, [32]byte{}, ErrTableidExhausted
}
