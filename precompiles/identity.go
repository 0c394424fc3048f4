package precompiles

import "github.com/topnetwork/tvm-engine-go/tvmtypes"

// identity is the 0x04 precompile: returns its input verbatim.
type identity struct{}

func (c *identity) RequiredGas(input []byte) tvmtypes.Gas {
	return tvmtypes.Gas(15 + 3*wordCount(len(input)))
}

func (c *identity) Run(input []byte) ([]byte, error) {
	out := make([]byte, len(input))
	copy(out, input)
	return out, nil
}
