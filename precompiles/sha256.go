package precompiles

import (
	"crypto/sha256"

	"github.com/topnetwork/tvm-engine-go/tvmtypes"
)

// sha256Hash is the 0x02 precompile.
type sha256Hash struct{}

func (c *sha256Hash) RequiredGas(input []byte) tvmtypes.Gas {
	return tvmtypes.Gas(60 + 12*wordCount(len(input)))
}

func (c *sha256Hash) Run(input []byte) ([]byte, error) {
	h := sha256.Sum256(input)
	return h[:], nil
}
