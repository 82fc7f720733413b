// Package exec decodes method bytecode into instructions and
// interprets them against a heap, call stack, and class loader.
package exec

// Opcode identifies the shape of an Instruction.
type Opcode uint8

const (
	OpIConstM1 Opcode = iota
	OpIConst0
	OpIConst1
	OpIConst2
	OpIConst3
	OpIConst4
	OpIConst5
	OpBiPush
	OpSiPush
	OpLdc
	OpILoad
	OpILoad0
	OpILoad1
	OpILoad2
	OpILoad3
	OpALoad
	OpALoad0
	OpALoad1
	OpALoad2
	OpALoad3
	OpIStore
	OpIStore0
	OpIStore1
	OpIStore2
	OpIStore3
	OpAStore
	OpAStore0
	OpAStore1
	OpAStore2
	OpAStore3
	OpPop
	OpDup
	OpDupX1
	OpDupX2
	OpDup2
	OpIAdd
	OpISub
	OpIMul
	OpIDiv
	OpIInc
	OpIfEq
	OpIfNe
	OpIfLt
	OpIfGe
	OpIfGt
	OpIfLe
	OpGoto
	OpReturn
	OpGetStatic
	OpGetField
	OpPutField
	OpInvokeVirtual
	OpInvokeSpecial
	OpInvokeStatic
	OpNew
	OpUnknown
)

// Instruction is one decoded bytecode instruction. Operand fills in
// depending on Op; instructions with no operand leave it zero.
type Instruction struct {
	Op      Opcode
	Operand int32
	Delta   int32 // second operand, iinc only
	RawByte uint8 // populated only for OpUnknown
}

// raw bytecode opcode values, per the class file format.
const (
	rawIConstM1        = 0x02
	rawIConst0         = 0x03
	rawIConst1         = 0x04
	rawIConst2         = 0x05
	rawIConst3         = 0x06
	rawIConst4         = 0x07
	rawIConst5         = 0x08
	rawBiPush          = 0x10
	rawSiPush          = 0x11
	rawLdc             = 0x12
	rawILoad           = 0x15
	rawALoad           = 0x19
	rawILoad0          = 0x1a
	rawILoad1          = 0x1b
	rawILoad2          = 0x1c
	rawILoad3          = 0x1d
	rawALoad0          = 0x2a
	rawALoad1          = 0x2b
	rawALoad2          = 0x2c
	rawALoad3          = 0x2d
	rawIStore          = 0x36
	rawAStore          = 0x3a
	rawIStore0         = 0x3b
	rawIStore1         = 0x3c
	rawIStore2         = 0x3d
	rawIStore3         = 0x3e
	rawAStore0         = 0x4b
	rawAStore1         = 0x4c
	rawAStore2         = 0x4d
	rawAStore3         = 0x4e
	rawPop             = 0x57
	rawDup             = 0x59
	rawDupX1           = 0x5a
	rawDupX2           = 0x5b
	rawDup2            = 0x5c
	rawIAdd            = 0x60
	rawISub            = 0x64
	rawIMul            = 0x68
	rawIDiv            = 0x6c
	rawIInc            = 0x84
	rawIfEq            = 0x99
	rawIfNe            = 0x9a
	rawIfLt            = 0x9b
	rawIfGe            = 0x9c
	rawIfGt            = 0x9d
	rawIfLe            = 0x9e
	rawGoto            = 0xa7
	rawReturn          = 0xb1
	rawGetStatic       = 0xb2
	rawGetField        = 0xb4
	rawPutField        = 0xb5
	rawInvokeVirtual   = 0xb6
	rawInvokeSpecial   = 0xb7
	rawInvokeStatic    = 0xb8
	rawNew             = 0xbb
)

// Decode reads one instruction starting at code[*pc], advancing *pc
// past it. A truncated operand (not enough bytes left for a two-byte
// index with the buffer ending early) decodes as OpUnknown rather
// than erroring: malformed bytecode degrades gracefully instead of
// aborting the whole class.
func Decode(code []byte, pc *int) Instruction {
	if *pc >= len(code) {
		return Instruction{Op: OpUnknown}
	}
	opcode := code[*pc]
	*pc++

	u1 := func() (uint8, bool) {
		if *pc >= len(code) {
			return 0, false
		}
		v := code[*pc]
		*pc++
		return v, true
	}
	u2 := func() (uint16, bool) {
		if *pc+1 >= len(code) {
			return 0, false
		}
		v := uint16(code[*pc])<<8 | uint16(code[*pc+1])
		*pc += 2
		return v, true
	}
	i2 := func() (int16, bool) {
		v, ok := u2()
		return int16(v), ok
	}

	switch opcode {
	case rawIConstM1:
		return Instruction{Op: OpIConstM1}
	case rawIConst0:
		return Instruction{Op: OpIConst0}
	case rawIConst1:
		return Instruction{Op: OpIConst1}
	case rawIConst2:
		return Instruction{Op: OpIConst2}
	case rawIConst3:
		return Instruction{Op: OpIConst3}
	case rawIConst4:
		return Instruction{Op: OpIConst4}
	case rawIConst5:
		return Instruction{Op: OpIConst5}
	case rawBiPush:
		v, ok := u1()
		if !ok {
			return Instruction{Op: OpUnknown, RawByte: opcode}
		}
		return Instruction{Op: OpBiPush, Operand: int32(int8(v))}
	case rawSiPush:
		v, ok := i2()
		if !ok {
			return Instruction{Op: OpUnknown, RawByte: opcode}
		}
		return Instruction{Op: OpSiPush, Operand: int32(v)}
	case rawLdc:
		v, ok := u1()
		if !ok {
			return Instruction{Op: OpUnknown, RawByte: opcode}
		}
		return Instruction{Op: OpLdc, Operand: int32(v)}
	case rawILoad:
		v, ok := u1()
		if !ok {
			return Instruction{Op: OpUnknown, RawByte: opcode}
		}
		return Instruction{Op: OpILoad, Operand: int32(v)}
	case rawILoad0:
		return Instruction{Op: OpILoad0}
	case rawILoad1:
		return Instruction{Op: OpILoad1}
	case rawILoad2:
		return Instruction{Op: OpILoad2}
	case rawILoad3:
		return Instruction{Op: OpILoad3}
	case rawALoad:
		v, ok := u1()
		if !ok {
			return Instruction{Op: OpUnknown, RawByte: opcode}
		}
		return Instruction{Op: OpALoad, Operand: int32(v)}
	case rawALoad0:
		return Instruction{Op: OpALoad0}
	case rawALoad1:
		return Instruction{Op: OpALoad1}
	case rawALoad2:
		return Instruction{Op: OpALoad2}
	case rawALoad3:
		return Instruction{Op: OpALoad3}
	case rawIStore:
		v, ok := u1()
		if !ok {
			return Instruction{Op: OpUnknown, RawByte: opcode}
		}
		return Instruction{Op: OpIStore, Operand: int32(v)}
	case rawIStore0:
		return Instruction{Op: OpIStore0}
	case rawIStore1:
		return Instruction{Op: OpIStore1}
	case rawIStore2:
		return Instruction{Op: OpIStore2}
	case rawIStore3:
		return Instruction{Op: OpIStore3}
	case rawAStore:
		v, ok := u1()
		if !ok {
			return Instruction{Op: OpUnknown, RawByte: opcode}
		}
		return Instruction{Op: OpAStore, Operand: int32(v)}
	case rawAStore0:
		return Instruction{Op: OpAStore0}
	case rawAStore1:
		return Instruction{Op: OpAStore1}
	case rawAStore2:
		return Instruction{Op: OpAStore2}
	case rawAStore3:
		return Instruction{Op: OpAStore3}
	case rawPop:
		return Instruction{Op: OpPop}
	case rawDup:
		return Instruction{Op: OpDup}
	case rawDupX1:
		return Instruction{Op: OpDupX1}
	case rawDupX2:
		return Instruction{Op: OpDupX2}
	case rawDup2:
		return Instruction{Op: OpDup2}
	case rawIAdd:
		return Instruction{Op: OpIAdd}
	case rawISub:
		return Instruction{Op: OpISub}
	case rawIMul:
		return Instruction{Op: OpIMul}
	case rawIDiv:
		return Instruction{Op: OpIDiv}
	case rawIInc:
		idx, ok1 := u1()
		delta, ok2 := u1()
		if !ok1 || !ok2 {
			return Instruction{Op: OpUnknown, RawByte: opcode}
		}
		return Instruction{Op: OpIInc, Operand: int32(idx), Delta: int32(int8(delta))}
	case rawIfEq:
		v, ok := i2()
		if !ok {
			return Instruction{Op: OpUnknown, RawByte: opcode}
		}
		return Instruction{Op: OpIfEq, Operand: int32(v)}
	case rawIfNe:
		v, ok := i2()
		if !ok {
			return Instruction{Op: OpUnknown, RawByte: opcode}
		}
		return Instruction{Op: OpIfNe, Operand: int32(v)}
	case rawIfLt:
		v, ok := i2()
		if !ok {
			return Instruction{Op: OpUnknown, RawByte: opcode}
		}
		return Instruction{Op: OpIfLt, Operand: int32(v)}
	case rawIfGe:
		v, ok := i2()
		if !ok {
			return Instruction{Op: OpUnknown, RawByte: opcode}
		}
		return Instruction{Op: OpIfGe, Operand: int32(v)}
	case rawIfGt:
		v, ok := i2()
		if !ok {
			return Instruction{Op: OpUnknown, RawByte: opcode}
		}
		return Instruction{Op: OpIfGt, Operand: int32(v)}
	case rawIfLe:
		v, ok := i2()
		if !ok {
			return Instruction{Op: OpUnknown, RawByte: opcode}
		}
		return Instruction{Op: OpIfLe, Operand: int32(v)}
	case rawGoto:
		v, ok := i2()
		if !ok {
			return Instruction{Op: OpUnknown, RawByte: opcode}
		}
		return Instruction{Op: OpGoto, Operand: int32(v)}
	case rawReturn:
		return Instruction{Op: OpReturn}
	case rawGetStatic:
		v, ok := u2()
		if !ok {
			return Instruction{Op: OpUnknown, RawByte: opcode}
		}
		return Instruction{Op: OpGetStatic, Operand: int32(v)}
	case rawGetField:
		v, ok := u2()
		if !ok {
			return Instruction{Op: OpUnknown, RawByte: opcode}
		}
		return Instruction{Op: OpGetField, Operand: int32(v)}
	case rawPutField:
		v, ok := u2()
		if !ok {
			return Instruction{Op: OpUnknown, RawByte: opcode}
		}
		return Instruction{Op: OpPutField, Operand: int32(v)}
	case rawInvokeVirtual:
		v, ok := u2()
		if !ok {
			return Instruction{Op: OpUnknown, RawByte: opcode}
		}
		return Instruction{Op: OpInvokeVirtual, Operand: int32(v)}
	case rawInvokeSpecial:
		v, ok := u2()
		if !ok {
			return Instruction{Op: OpUnknown, RawByte: opcode}
		}
		return Instruction{Op: OpInvokeSpecial, Operand: int32(v)}
	case rawInvokeStatic:
		v, ok := u2()
		if !ok {
			return Instruction{Op: OpUnknown, RawByte: opcode}
		}
		return Instruction{Op: OpInvokeStatic, Operand: int32(v)}
	case rawNew:
		v, ok := u2()
		if !ok {
			return Instruction{Op: OpUnknown, RawByte: opcode}
		}
		return Instruction{Op: OpNew, Operand: int32(v)}
	default:
		return Instruction{Op: OpUnknown, RawByte: opcode}
	}
}

func (o Opcode) String() string {
	names := map[Opcode]string{
		OpIConstM1: "iconst_m1", OpIConst0: "iconst_0", OpIConst1: "iconst_1",
		OpIConst2: "iconst_2", OpIConst3: "iconst_3", OpIConst4: "iconst_4", OpIConst5: "iconst_5",
		OpBiPush: "bipush", OpSiPush: "sipush", OpLdc: "ldc",
		OpILoad: "iload", OpILoad0: "iload_0", OpILoad1: "iload_1", OpILoad2: "iload_2", OpILoad3: "iload_3",
		OpALoad: "aload", OpALoad0: "aload_0", OpALoad1: "aload_1", OpALoad2: "aload_2", OpALoad3: "aload_3",
		OpIStore: "istore", OpIStore0: "istore_0", OpIStore1: "istore_1", OpIStore2: "istore_2", OpIStore3: "istore_3",
		OpAStore: "astore", OpAStore0: "astore_0", OpAStore1: "astore_1", OpAStore2: "astore_2", OpAStore3: "astore_3",
		OpPop: "pop", OpDup: "dup", OpDupX1: "dup_x1", OpDupX2: "dup_x2", OpDup2: "dup2",
		OpIAdd: "iadd", OpISub: "isub", OpIMul: "imul", OpIDiv: "idiv", OpIInc: "iinc",
		OpIfEq: "ifeq", OpIfNe: "ifne", OpIfLt: "iflt", OpIfGe: "ifge", OpIfGt: "ifgt", OpIfLe: "ifle",
		OpGoto: "goto", OpReturn: "return",
		OpGetStatic: "getstatic", OpGetField: "getfield", OpPutField: "putfield",
		OpInvokeVirtual: "invokevirtual", OpInvokeSpecial: "invokespecial", OpInvokeStatic: "invokestatic",
		OpNew: "new", OpUnknown: "unknown",
	}
	if n, ok := names[o]; ok {
		return n
	}
	return "?"
}
