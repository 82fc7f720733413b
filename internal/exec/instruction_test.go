package exec

import "testing"

func TestDecodeBiPushSignExtends(t *testing.T) {
	code := []byte{0x10, 0xFF} // bipush -1
	pc := 0
	instr := Decode(code, &pc)

	assert(t, instr.Op == OpBiPush, "expected bipush")
	assert(t, instr.Operand == -1, "expected sign-extended -1")
	assert(t, pc == 2, "expected pc advanced past opcode and operand")
}

func TestDecodeTruncatedOperandIsUnknown(t *testing.T) {
	code := []byte{0x11, 0x00} // sipush missing second operand byte
	pc := 0
	instr := Decode(code, &pc)

	assert(t, instr.Op == OpUnknown, "expected truncated operand to decode as unknown")
	assert(t, instr.RawByte == 0x11, "expected raw opcode preserved on unknown")
}

func TestDecodeIIncTwoOperands(t *testing.T) {
	code := []byte{0x84, 0x02, 0xFE} // iinc local #2 by -2
	pc := 0
	instr := Decode(code, &pc)

	assert(t, instr.Op == OpIInc, "expected iinc")
	assert(t, instr.Operand == 2, "expected local index 2")
	assert(t, instr.Delta == -2, "expected delta -2")
}

func TestDecodeGotoRelativeOffset(t *testing.T) {
	code := []byte{0xa7, 0x00, 0x05}
	pc := 0
	instr := Decode(code, &pc)

	assert(t, instr.Op == OpGoto, "expected goto")
	assert(t, instr.Operand == 5, "expected offset 5")
}
