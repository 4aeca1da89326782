package vm

import (
	"errors"

	"github.com/wasmerio/wasmer-go/wasmer"

	"github.com/synnergy/assetengine/engine/abi"
)

var (
	ErrNoMemoryExport = errors.New("vm: wasm module has no \"memory\" export")
	ErrNoStartExport  = errors.New("vm: wasm module has no requested export function")
)

// WasmerVM runs compiled WebAssembly blueprints through wasmer-go, grounded
// on core/virtual_machine.go's HeavyVM/registerHost: one wasmer.Engine
// shared across calls, a fresh Store+Instance per invocation, and a single
// generic host import (rather than one import per ABI op) so adding a host
// call never requires touching the Wasm import section of existing
// compiled blueprints.
type WasmerVM struct {
	engine *wasmer.Engine
}

func NewWasmerVM() *WasmerVM { return &WasmerVM{engine: wasmer.NewEngine()} }

// hostCallCtx is the bridge a single Invoke call threads through its
// imported host_call function: the guest's linear memory (resolved after
// instantiation) and the HostService this invocation runs against.
type hostCallCtx struct {
	mem  *wasmer.Memory
	host abi.HostService
}

func (vm *WasmerVM) Invoke(code []byte, export string, args [][]byte, host abi.HostService) (abi.CallResult, error) {
	store := wasmer.NewStore(vm.engine)
	mod, err := wasmer.NewModule(store, code)
	if err != nil {
		return abi.CallResult{}, err
	}

	hctx := &hostCallCtx{host: host}
	imports := registerHostImports(store, hctx)

	instance, err := wasmer.NewInstance(mod, imports)
	if err != nil {
		return abi.CallResult{}, err
	}

	mem, err := instance.Exports.GetMemory("memory")
	if err != nil {
		return abi.CallResult{}, ErrNoMemoryExport
	}
	hctx.mem = mem

	fn, err := instance.Exports.GetFunction(export)
	if err != nil {
		return abi.CallResult{}, ErrNoStartExport
	}

	argPtrs := make([]interface{}, 0, len(args))
	end := int32(len(mem.Data()))
	for _, a := range args {
		ptr, ln := writeGuestBytes(mem, a, end)
		argPtrs = append(argPtrs, ptr, ln)
		end = ptr
	}
	raw, err := fn(argPtrs...)
	if err != nil {
		return abi.CallResult{}, err
	}
	return decodeCallResult(mem, raw), nil
}

// registerHostImports wires one "env.host_call" import: the guest passes
// (op, reqPtr, reqLen, outPtr, outCap) and gets back the response length,
// or -1 on host error. This mirrors registerHost's read/write memory
// helpers, collapsed from one function per ABI op into one dispatcher.
func registerHostImports(store *wasmer.Store, h *hostCallCtx) *wasmer.ImportObject {
	imports := wasmer.NewImportObject()

	hostCall := wasmer.NewFunction(
		store,
		wasmer.NewFunctionType(
			wasmer.NewValueTypes(wasmer.I32, wasmer.I32, wasmer.I32, wasmer.I32, wasmer.I32),
			wasmer.NewValueTypes(wasmer.I32),
		),
		func(vals []wasmer.Value) ([]wasmer.Value, error) {
			op := abi.Op(vals[0].I32())
			reqPtr, reqLen := vals[1].I32(), vals[2].I32()
			outPtr, outCap := vals[3].I32(), vals[4].I32()

			req := readGuestBytes(h.mem, reqPtr, reqLen)
			resp, err := abi.Dispatch(h.host, op, req)
			if err != nil {
				return []wasmer.Value{wasmer.NewI32(-1)}, nil
			}
			if int32(len(resp)) > outCap {
				return []wasmer.Value{wasmer.NewI32(-1)}, nil
			}
			copy(h.mem.Data()[outPtr:], resp)
			return []wasmer.Value{wasmer.NewI32(int32(len(resp)))}, nil
		},
	)

	imports.Register("env", map[string]wasmer.IntoExtern{
		"host_call": hostCall,
	})
	return imports
}

func readGuestBytes(mem *wasmer.Memory, ptr, ln int32) []byte {
	out := make([]byte, ln)
	copy(out, mem.Data()[ptr:ptr+ln])
	return out
}

// writeGuestBytes copies data into guest memory just below offset end (the
// top of linear memory for the first argument, the previous argument's
// start after that) and returns its (ptr, len); a real blueprint toolchain
// would expose an allocator export instead, but the ABI contract only
// requires that the bytes are readable at the returned offset for the
// lifetime of this call.
func writeGuestBytes(mem *wasmer.Memory, data []byte, end int32) (int32, int32) {
	ptr := end - int32(len(data)) - 1
	if ptr < 0 {
		ptr = 0
	}
	copy(mem.Data()[ptr:], data)
	return ptr, int32(len(data))
}

// decodeCallResult interprets an export's return values as (ptr, len) into
// guest memory, the convention every blueprint export must follow.
func decodeCallResult(mem *wasmer.Memory, raw interface{}) abi.CallResult {
	vals, ok := raw.([]interface{})
	if !ok || len(vals) < 2 {
		return abi.CallResult{}
	}
	ptr, ok1 := vals[0].(int32)
	ln, ok2 := vals[1].(int32)
	if !ok1 || !ok2 {
		return abi.CallResult{}
	}
	return abi.CallResult{ReturnData: readGuestBytes(mem, ptr, ln)}
}
