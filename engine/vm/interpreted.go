package vm

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"

	"github.com/synnergy/assetengine/engine/abi"
	"github.com/synnergy/assetengine/engine/types"
)

// Opcode is an InterpretedVM instruction. The set is a direct descendant of
// core/virtual_machine.go's LightVM opcodes (PUSH/ADD/STORE/LOAD/LOG/RET):
// STORE/LOAD (direct ledger access) are replaced with HOSTCALL, since this
// engine never lets guest code touch Track state except through the ABI;
// RETURN_BUCKET/RETURN_PROOF are new, letting a blueprint mark which of its
// local ids move back to the caller before RET ends the frame.
type Opcode byte

const (
	OpPush Opcode = iota
	OpAdd
	OpHostcall
	OpLog
	OpReturnBucket
	OpReturnProof
	OpRet
)

var (
	ErrStackUnderflow  = errors.New("vm: stack underflow")
	ErrMissingOperand  = errors.New("vm: instruction truncated")
	ErrUnknownOpcode   = errors.New("vm: unknown opcode")
	ErrExportNotFound  = errors.New("vm: export not found in module")
)

// module is the InterpretedVM's parsed form: one or more named bytecode
// exports. A guest module's raw bytes are a simple self-describing
// encoding: repeated (name-length byte, name, body-length uint32, body)
// records.
type module struct {
	exports map[string][]byte
}

func parseModule(code []byte) (*module, error) {
	m := &module{exports: make(map[string][]byte)}
	pos := 0
	for pos < len(code) {
		if pos+1 > len(code) {
			return nil, ErrMissingOperand
		}
		nameLen := int(code[pos])
		pos++
		if pos+nameLen > len(code) {
			return nil, ErrMissingOperand
		}
		name := string(code[pos : pos+nameLen])
		pos += nameLen
		if pos+4 > len(code) {
			return nil, ErrMissingOperand
		}
		bodyLen := int(binary.LittleEndian.Uint32(code[pos : pos+4]))
		pos += 4
		if pos+bodyLen > len(code) {
			return nil, ErrMissingOperand
		}
		m.exports[name] = code[pos : pos+bodyLen]
		pos += bodyLen
	}
	return m, nil
}

// InterpretedVM runs the module format above directly, with no JIT and no
// external dependency — the minimal reference backend so unit tests can
// exercise Process without a compiled .wasm blueprint on disk.
type InterpretedVM struct{}

func NewInterpretedVM() *InterpretedVM { return &InterpretedVM{} }

func (vm *InterpretedVM) Invoke(code []byte, export string, args [][]byte, host abi.HostService) (abi.CallResult, error) {
	m, err := parseModule(code)
	if err != nil {
		return abi.CallResult{}, err
	}
	body, ok := m.exports[export]
	if !ok {
		return abi.CallResult{}, fmt.Errorf("%w: %s", ErrExportNotFound, export)
	}

	stack := make([][]byte, 0, 16)
	for _, a := range args {
		stack = append(stack, a)
	}
	push := func(d []byte) { stack = append(stack, d) }
	pop := func() ([]byte, error) {
		if len(stack) == 0 {
			return nil, ErrStackUnderflow
		}
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v, nil
	}

	var result abi.CallResult
	pc := 0
	for pc < len(body) {
		op := Opcode(body[pc])
		pc++

		switch op {
		case OpPush:
			if pc >= len(body) {
				return abi.CallResult{}, ErrMissingOperand
			}
			l := int(body[pc])
			pc++
			if pc+l > len(body) {
				return abi.CallResult{}, ErrMissingOperand
			}
			push(body[pc : pc+l])
			pc += l

		case OpAdd:
			a, err := pop()
			if err != nil {
				return abi.CallResult{}, err
			}
			b, err := pop()
			if err != nil {
				return abi.CallResult{}, err
			}
			var ai, bi big.Int
			ai.SetBytes(a)
			bi.SetBytes(b)
			push(new(big.Int).Add(&ai, &bi).Bytes())

		case OpHostcall:
			if pc >= len(body) {
				return abi.CallResult{}, ErrMissingOperand
			}
			hostOp := abi.Op(body[pc])
			pc++
			payload, err := pop()
			if err != nil {
				return abi.CallResult{}, err
			}
			resp, err := abi.Dispatch(host, hostOp, payload)
			if err != nil {
				return abi.CallResult{}, err
			}
			push(resp)

		case OpLog:
			msg, err := pop()
			if err != nil {
				return abi.CallResult{}, err
			}
			if err := host.EmitLog(abi.EmitLogArgs{Level: "Info", Message: string(msg)}); err != nil {
				return abi.CallResult{}, err
			}

		case OpReturnBucket:
			b, err := pop()
			if err != nil {
				return abi.CallResult{}, err
			}
			if len(b) != 4 {
				return abi.CallResult{}, ErrMissingOperand
			}
			result.Buckets = append(result.Buckets, types.Bid(binary.LittleEndian.Uint32(b)))

		case OpReturnProof:
			r, err := pop()
			if err != nil {
				return abi.CallResult{}, err
			}
			if len(r) != 4 {
				return abi.CallResult{}, ErrMissingOperand
			}
			result.Proofs = append(result.Proofs, types.Rid(binary.LittleEndian.Uint32(r)))

		case OpRet:
			rd, err := pop()
			if err != nil {
				return abi.CallResult{}, err
			}
			result.ReturnData = rd
			return result, nil

		default:
			return abi.CallResult{}, fmt.Errorf("%w: 0x%02x", ErrUnknownOpcode, byte(op))
		}
	}
	return result, nil
}
