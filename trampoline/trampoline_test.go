package trampoline

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/topnetwork/tvm-engine-go/engine"
)

func buildFrame(kind byte, caller, contract [20]byte, gasLimit, value uint64, input []byte) []byte {
	buf := make([]byte, 0, 1+20+20+8+8+4+len(input))
	buf = append(buf, kind)
	buf = append(buf, caller[:]...)
	buf = append(buf, contract[:]...)

	var gasBuf, valBuf [8]byte
	binary.BigEndian.PutUint64(gasBuf[:], gasLimit)
	binary.BigEndian.PutUint64(valBuf[:], value)
	buf = append(buf, gasBuf[:]...)
	buf = append(buf, valBuf[:]...)

	var lenBuf4 [4]byte
	binary.BigEndian.PutUint32(lenBuf4[:], uint32(len(input)))
	buf = append(buf, lenBuf4[:]...)
	buf = append(buf, input...)
	return buf
}

func TestDecodeCallArgsCallKind(t *testing.T) {
	var caller, contract [20]byte
	caller[19] = 0x01
	contract[19] = 0x02
	input := []byte{0xde, 0xad, 0xbe, 0xef}

	raw := buildFrame(argsKindCall, caller, contract, 21000, 5, input)
	args, callerAddr, err := decodeCallArgs(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if callerAddr.Bytes()[19] != 0x01 {
		t.Errorf("caller = %x, want ...01", callerAddr.Bytes())
	}
	if args.Contract.Bytes()[19] != 0x02 {
		t.Errorf("contract = %x, want ...02", args.Contract.Bytes())
	}
	if args.GasLimit != 21000 {
		t.Errorf("gasLimit = %d, want 21000", args.GasLimit)
	}
	if !bytes.Equal(args.Input, input) {
		t.Errorf("input = %x, want %x", args.Input, input)
	}
}

func TestDecodeCallArgsDeployKindZeroesContract(t *testing.T) {
	var caller, contract [20]byte
	caller[19] = 0x01
	contract[19] = 0x99 // must be ignored for a deploy frame

	raw := buildFrame(argsKindDeploy, caller, contract, 100000, 0, []byte{0x60, 0x00})
	args, _, err := decodeCallArgs(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !args.Contract.IsZero() {
		t.Errorf("deploy frame contract = %x, want zero address", args.Contract.Bytes())
	}
}

func TestDecodeCallArgsTooShort(t *testing.T) {
	_, _, err := decodeCallArgs(make([]byte, 10))
	if err == nil {
		t.Fatal("expected an error for a truncated header")
	}
}

func TestDecodeCallArgsInputLengthExceedsFrame(t *testing.T) {
	var caller, contract [20]byte
	raw := buildFrame(argsKindCall, caller, contract, 0, 0, nil)
	// Overwrite the declared input length to claim more bytes than present.
	binary.BigEndian.PutUint32(raw[len(raw)-4:], 1000)
	_, _, err := decodeCallArgs(raw)
	if err == nil {
		t.Fatal("expected an error when declared input length exceeds the frame")
	}
}

func TestEncodeReturnResultRoundTrip(t *testing.T) {
	r := &engine.ReturnResult{Status: engine.StatusSucceed, Output: []byte{1, 2, 3}, GasUsed: 42}
	buf := encodeReturnResult(r)

	if status := binary.BigEndian.Uint32(buf[0:4]); status != r.Status.AsU32() {
		t.Errorf("status = %d, want %d", status, r.Status.AsU32())
	}
	if gasUsed := binary.BigEndian.Uint64(buf[4:12]); gasUsed != 42 {
		t.Errorf("gasUsed = %d, want 42", gasUsed)
	}
	outLen := binary.BigEndian.Uint32(buf[12:16])
	if outLen != 3 {
		t.Fatalf("outLen = %d, want 3", outLen)
	}
	if !bytes.Equal(buf[16:16+outLen], []byte{1, 2, 3}) {
		t.Errorf("output = %x, want 010203", buf[16:16+outLen])
	}
}

func TestEncodeFatalUsesSentinelStatus(t *testing.T) {
	buf := encodeFatal("boom")
	status := binary.BigEndian.Uint32(buf[0:4])
	if status != statusFatal {
		t.Errorf("status = %#x, want %#x", status, statusFatal)
	}
	if gasUsed := binary.BigEndian.Uint64(buf[4:12]); gasUsed != 0 {
		t.Errorf("gasUsed = %d, want 0", gasUsed)
	}
	msgLen := binary.BigEndian.Uint32(buf[12:16])
	if string(buf[16:16+msgLen]) != "boom" {
		t.Errorf("message = %q, want boom", buf[16:16+msgLen])
	}
}

func TestDecodeCallArgsRejectsNothing(t *testing.T) {
	// Sanity: a minimal, well-formed call frame with zero-length input
	// must decode cleanly.
	var caller, contract [20]byte
	raw := buildFrame(argsKindCall, caller, contract, 0, 0, nil)
	args, _, err := decodeCallArgs(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(args.Input) != 0 {
		t.Errorf("expected empty input, got %x", args.Input)
	}
}
