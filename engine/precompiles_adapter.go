package engine

import (
	"github.com/topnetwork/tvm-engine-go/internal/vm"
	"github.com/topnetwork/tvm-engine-go/precompiles"
	"github.com/topnetwork/tvm-engine-go/tvmtypes"
)

// precompileAdapter satisfies internal/vm.PrecompileSet by delegating to
// the precompiles package, translating between its tvmtypes.Gas unit and
// the raw uint64 gas the interpreter deals in, and between
// precompiles.ErrOutOfGas and vm.ErrOutOfGas.
type precompileAdapter struct {
	set *precompiles.Set
}

func newPrecompileAdapter() *precompileAdapter {
	return &precompileAdapter{set: precompiles.NewSet()}
}

func (p *precompileAdapter) IsPrecompile(addr tvmtypes.Address) bool {
	return p.set.IsPrecompile(addr)
}

func (p *precompileAdapter) Run(addr tvmtypes.Address, input []byte, suppliedGas uint64, isStatic bool) (uint64, []byte, error) {
	cost, out, err := p.set.Run(addr, input, tvmtypes.Gas(suppliedGas), isStatic)
	if err == precompiles.ErrOutOfGas {
		err = vm.ErrOutOfGas
	}
	return cost.Uint64(), out, err
}
