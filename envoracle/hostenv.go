package envoracle

import (
	"github.com/topnetwork/tvm-engine-go/hostio"
	"github.com/topnetwork/tvm-engine-go/tvmtypes"
)

// HostEnv implements Env against a host's register callback surface,
// reusing the shared environment register (hostio.RegisterEnv) the same
// way the reference runtime binds both I/O and environment queries to one
// extern-function table.
type HostEnv struct {
	cb *hostio.Callbacks
}

// NewHostEnv binds a HostEnv to the given host callback surface.
func NewHostEnv(cb *hostio.Callbacks) *HostEnv {
	return &HostEnv{cb: cb}
}

func (e *HostEnv) GasPrice() *tvmtypes.U256 {
	return tvmtypes.U256FromUint64(e.cb.GasPrice())
}

func (e *HostEnv) Origin() tvmtypes.Address {
	e.cb.OriginAddress(hostio.RegisterEnv)
	return e.readEnvAddress()
}

func (e *HostEnv) BlockHeight() uint64 {
	return e.cb.BlockHeight()
}

func (e *HostEnv) BlockCoinbase() tvmtypes.Address {
	e.cb.BlockCoinbase(hostio.RegisterEnv)
	return e.readEnvAddress()
}

func (e *HostEnv) BlockTimestamp() Timestamp {
	return NewTimestamp(e.cb.BlockTimestamp())
}

func (e *HostEnv) ChainID() uint64 {
	return e.cb.ChainID()
}

func (e *HostEnv) BlockHash(*tvmtypes.U256) (tvmtypes.H256, error) {
	return tvmtypes.ZeroHash, ErrNotSupported
}

func (e *HostEnv) BlockDifficulty() (*tvmtypes.U256, error) {
	return nil, ErrNotSupported
}

func (e *HostEnv) BlockGasLimit() (*tvmtypes.U256, error) {
	return nil, ErrNotSupported
}

func (e *HostEnv) BlockBaseFeePerGas() (*tvmtypes.U256, error) {
	return nil, ErrNotSupported
}

func (e *HostEnv) readEnvAddress() tvmtypes.Address {
	n, _ := e.cb.RegisterLen(hostio.RegisterEnv)
	buf := make([]byte, n)
	e.cb.ReadRegister(hostio.RegisterEnv, buf)
	addr, _ := tvmtypes.AddressFromBytes(buf)
	return addr
}
