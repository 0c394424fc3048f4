package precompiles

import (
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // required precompile algorithm

	"github.com/topnetwork/tvm-engine-go/tvmtypes"
)

// ripemd160Hash is the 0x03 precompile.
type ripemd160Hash struct{}

func (c *ripemd160Hash) RequiredGas(input []byte) tvmtypes.Gas {
	return tvmtypes.Gas(600 + 120*wordCount(len(input)))
}

func (c *ripemd160Hash) Run(input []byte) ([]byte, error) {
	h := ripemd160.New()
	h.Write(input)
	digest := h.Sum(nil)

	result := make([]byte, 32)
	copy(result[12:], digest)
	return result, nil
}
