package exec

import (
	"testing"

	"github.com/mabhi256/mjvm/internal/classfile"
	"github.com/mabhi256/mjvm/internal/loader"
	"github.com/mabhi256/mjvm/internal/runtime"
)

// recordingSink collects every diagnostic observed, so tests can
// assert a failure was reported without aborting execution.
type recordingSink struct {
	diagnostics []runtime.Diagnostic
}

func (s *recordingSink) Observe(d runtime.Diagnostic) {
	s.diagnostics = append(s.diagnostics, d)
}

func assert(t *testing.T, cond bool, msg string) {
	t.Helper()
	if !cond {
		t.Fatal(msg)
	}
}

// testClass builds a minimal single-method class file directly as a
// struct tree (bypassing the byte decoder, which has its own
// dedicated tests) so interpreter tests can focus purely on bytecode
// semantics.
func testClass(utf8Pool []string, code []byte, maxStack, maxLocals int) *classfile.ClassFile {
	pool := make([]classfile.ConstantPoolEntry, len(utf8Pool)+1)
	for i, s := range utf8Pool {
		pool[i+1] = classfile.ConstantPoolEntry{Tag: classfile.TagUtf8, Utf8: s}
	}

	return &classfile.ClassFile{
		ConstantPool: pool,
		ThisClass:    0,
		SuperClass:   0,
		Methods: []classfile.MethodInfo{
			{
				NameIndex:       1,
				DescriptorIndex: 2,
				Code: &classfile.CodeAttribute{
					MaxStack:  uint16(maxStack),
					MaxLocals: uint16(maxLocals),
					Code:      code,
				},
			},
		},
	}
}

func newInterpreter() *Interpreter {
	return New(loader.New())
}

func TestIntegerArithmetic(t *testing.T) {
	// iconst_2, bipush 7, iadd, return
	code := []byte{0x05, 0x10, 0x07, 0x60, 0xb1}
	cf := testClass([]string{"main", "()V"}, code, 4, 1)

	ip := newInterpreter()
	method := &cf.Methods[0]
	result, err := ip.ExecuteMethod(cf, method, nil)
	assert(t, err == nil, "unexpected execution error")
	assert(t, result != nil, "expected a value left on the stack at return")

	v, diag := result.AsInt()
	assert(t, diag == nil, "unexpected diagnostic narrowing result")
	assert(t, v == 9, "expected iconst_2 + bipush 7 == 9")
}

func TestDivisionByZeroLeavesNoPushedResult(t *testing.T) {
	// iconst_1, iconst_0, idiv, return
	code := []byte{0x04, 0x03, 0x6c, 0xb1}
	cf := testClass([]string{"main", "()V"}, code, 4, 1)

	ip := newInterpreter()
	method := &cf.Methods[0]
	result, err := ip.ExecuteMethod(cf, method, nil)
	assert(t, err == nil, "division by zero should not abort execution")
	assert(t, result == nil, "expected nothing pushed after a division by zero, so return sees an empty stack")
}

func TestStringInterningViaLdc(t *testing.T) {
	// ldc #4 (String -> "hello"), ldc #4, if_acmp-equivalent via manual compare is
	// out of scope for the opcode set; instead assert the heap itself interned
	// to the same object id across two loads.
	pool := []classfile.ConstantPoolEntry{
		{}, // 0 unused
		{Tag: classfile.TagUtf8, Utf8: "main"},
		{Tag: classfile.TagUtf8, Utf8: "()V"},
		{Tag: classfile.TagUtf8, Utf8: "hello"},
		{Tag: classfile.TagString, NameIndex: 3},
	}
	cf := &classfile.ClassFile{
		ConstantPool: pool,
		Methods: []classfile.MethodInfo{{
			NameIndex:       1,
			DescriptorIndex: 2,
			Code: &classfile.CodeAttribute{
				MaxStack: 4, MaxLocals: 1,
				// ldc #4, ldc #4, return
				Code: []byte{0x12, 0x04, 0x12, 0x04, 0xb1},
			},
		}},
	}

	ip := newInterpreter()
	method := &cf.Methods[0]
	result, err := ip.ExecuteMethod(cf, method, nil)
	assert(t, err == nil, "unexpected execution error")
	assert(t, result != nil, "expected the second ldc's object reference on top of stack")
	assert(t, ip.Heap.ObjectCount() == 1, "expected both Ldc loads to intern to a single String object")
}

func TestNewPutFieldGetFieldRoundTrip(t *testing.T) {
	pool := []classfile.ConstantPoolEntry{
		{},
		{Tag: classfile.TagUtf8, Utf8: "main"},       // 1
		{Tag: classfile.TagUtf8, Utf8: "()V"},        // 2
		{Tag: classfile.TagUtf8, Utf8: "Point"},      // 3
		{Tag: classfile.TagClass, NameIndex: 3},      // 4
		{Tag: classfile.TagUtf8, Utf8: "x"},          // 5
		{Tag: classfile.TagUtf8, Utf8: "I"},          // 6
		{Tag: classfile.TagNameAndType, NameIndex: 5, DescriptorIndex: 6}, // 7
		{Tag: classfile.TagFieldref, ClassIndex: 4, NameAndTypeIndex: 7},  // 8
	}
	cf := &classfile.ClassFile{
		ConstantPool: pool,
		Methods: []classfile.MethodInfo{{
			NameIndex:       1,
			DescriptorIndex: 2,
			Code: &classfile.CodeAttribute{
				MaxStack: 4, MaxLocals: 1,
				// new #4, dup, bipush 5, putfield #8, getfield #8, return
				Code: []byte{
					0xbb, 0x00, 0x04,
					0x59,
					0x10, 0x05,
					0xb5, 0x00, 0x08,
					0xb4, 0x00, 0x08,
					0xb1,
				},
			},
		}},
	}

	ip := newInterpreter()
	method := &cf.Methods[0]
	result, err := ip.ExecuteMethod(cf, method, nil)
	assert(t, err == nil, "unexpected execution error")
	assert(t, result != nil, "expected field value left on stack")

	v, diag := result.AsInt()
	assert(t, diag == nil, "unexpected diagnostic reading field value")
	assert(t, v == 5, "expected round-tripped field value of 5")
}

func TestGCSweepsUnreachableObjects(t *testing.T) {
	ip := newInterpreter()

	for i := 0; i < 150; i++ {
		ip.Heap.AllocObject("Scratch")
	}
	assert(t, ip.Heap.ObjectCount() == 150, "expected 150 allocated objects before collection")

	ip.GC.Collect(ip.Heap, ip.Stack)

	assert(t, ip.Heap.ObjectCount() == 0, "expected every unreachable object to be swept")
	assert(t, len(ip.GC.Ledger.All()) == 1, "expected one ledger entry recorded")
}

func TestUnknownOpcodeFailsExecution(t *testing.T) {
	code := []byte{0xff}
	cf := testClass([]string{"main", "()V"}, code, 1, 1)

	ip := newInterpreter()
	method := &cf.Methods[0]
	_, err := ip.ExecuteMethod(cf, method, nil)
	assert(t, err != nil, "expected unknown opcode to fail execution")
}

func TestLdcBadIndexIsNoOpWithDiagnostic(t *testing.T) {
	// ldc #99 (out of range), return
	code := []byte{0x12, 0x63, 0xb1}
	cf := testClass([]string{"main", "()V"}, code, 2, 1)

	ip := newInterpreter()
	sink := &recordingSink{}
	ip.Sink = sink

	method := &cf.Methods[0]
	result, err := ip.ExecuteMethod(cf, method, nil)
	assert(t, err == nil, "a bad constant pool index must not abort execution")
	assert(t, result == nil, "ldc failure must push nothing, leaving return with an empty stack")
	assert(t, len(sink.diagnostics) == 1, "expected one diagnostic reporting the resolution failure")
}

func TestGetFieldBadRefIsNoOp(t *testing.T) {
	pool := []classfile.ConstantPoolEntry{
		{},
		{Tag: classfile.TagUtf8, Utf8: "main"},  // 1
		{Tag: classfile.TagUtf8, Utf8: "()V"},   // 2
		{Tag: classfile.TagUtf8, Utf8: "Point"}, // 3
		{Tag: classfile.TagClass, NameIndex: 3}, // 4
	}
	cf := &classfile.ClassFile{
		ConstantPool: pool,
		Methods: []classfile.MethodInfo{{
			NameIndex:       1,
			DescriptorIndex: 2,
			Code: &classfile.CodeAttribute{
				MaxStack: 4, MaxLocals: 1,
				// new #4, getfield #1 (not a Fieldref), return
				Code: []byte{
					0xbb, 0x00, 0x04,
					0xb4, 0x00, 0x01,
					0xb1,
				},
			},
		}},
	}

	ip := newInterpreter()
	sink := &recordingSink{}
	ip.Sink = sink

	method := &cf.Methods[0]
	result, err := ip.ExecuteMethod(cf, method, nil)
	assert(t, err == nil, "a bad field reference must not abort execution")
	assert(t, result != nil, "getfield no-op must leave the object reference pushed by new on the stack")
	assert(t, len(sink.diagnostics) == 1, "expected one diagnostic reporting the field resolution failure")
}

func TestPutFieldBadRefIsNoOp(t *testing.T) {
	pool := []classfile.ConstantPoolEntry{
		{},
		{Tag: classfile.TagUtf8, Utf8: "main"},  // 1
		{Tag: classfile.TagUtf8, Utf8: "()V"},   // 2
		{Tag: classfile.TagUtf8, Utf8: "Point"}, // 3
		{Tag: classfile.TagClass, NameIndex: 3}, // 4
	}
	cf := &classfile.ClassFile{
		ConstantPool: pool,
		Methods: []classfile.MethodInfo{{
			NameIndex:       1,
			DescriptorIndex: 2,
			Code: &classfile.CodeAttribute{
				MaxStack: 4, MaxLocals: 1,
				// new #4, bipush 7, putfield #1 (not a Fieldref), return
				Code: []byte{
					0xbb, 0x00, 0x04,
					0x10, 0x07,
					0xb5, 0x00, 0x01,
					0xb1,
				},
			},
		}},
	}

	ip := newInterpreter()
	sink := &recordingSink{}
	ip.Sink = sink

	method := &cf.Methods[0]
	result, err := ip.ExecuteMethod(cf, method, nil)
	assert(t, err == nil, "a bad field reference must not abort execution")
	assert(t, result != nil, "putfield no-op must leave both operands on the stack")
	v, diag := result.AsInt()
	assert(t, diag == nil, "unexpected diagnostic narrowing the leftover operand")
	assert(t, v == 7, "expected the bipush operand left untouched by the no-op putfield")
	assert(t, len(sink.diagnostics) == 1, "expected one diagnostic reporting the field resolution failure")
}

func TestInvokeBadRefIsNoOp(t *testing.T) {
	// invokestatic #1 ("main", not a Methodref), return
	code := []byte{0xb8, 0x00, 0x01, 0xb1}
	cf := testClass([]string{"main", "()V"}, code, 1, 1)

	ip := newInterpreter()
	sink := &recordingSink{}
	ip.Sink = sink

	method := &cf.Methods[0]
	result, err := ip.ExecuteMethod(cf, method, nil)
	assert(t, err == nil, "a bad method reference must not abort execution")
	assert(t, result == nil, "invoke no-op must leave nothing on the stack")
	assert(t, len(sink.diagnostics) == 1, "expected one diagnostic reporting the method resolution failure")
}

func TestInvokeUnresolvableClassIsNoOpAndDoesNotAbortCaller(t *testing.T) {
	pool := []classfile.ConstantPoolEntry{
		{},
		{Tag: classfile.TagUtf8, Utf8: "main"},              // 1
		{Tag: classfile.TagUtf8, Utf8: "()V"},                // 2
		{Tag: classfile.TagUtf8, Utf8: "Missing"},            // 3
		{Tag: classfile.TagClass, NameIndex: 3},              // 4
		{Tag: classfile.TagUtf8, Utf8: "doStuff"},            // 5
		{Tag: classfile.TagNameAndType, NameIndex: 5, DescriptorIndex: 2}, // 6
		{Tag: classfile.TagMethodref, ClassIndex: 4, NameAndTypeIndex: 6}, // 7
	}
	cf := &classfile.ClassFile{
		ConstantPool: pool,
		Methods: []classfile.MethodInfo{{
			NameIndex:       1,
			DescriptorIndex: 2,
			Code: &classfile.CodeAttribute{
				MaxStack: 1, MaxLocals: 1,
				// invokestatic #7 (class Missing is not on any classpath), iconst_1, return
				Code: []byte{
					0xb8, 0x00, 0x07,
					0x04,
					0xb1,
				},
			},
		}},
	}

	ip := newInterpreter()
	sink := &recordingSink{}
	ip.Sink = sink

	method := &cf.Methods[0]
	result, err := ip.ExecuteMethod(cf, method, nil)
	assert(t, err == nil, "a class load failure during invoke must not abort the caller")
	assert(t, result != nil, "execution must continue past the failed invoke to the following iconst_1")
	v, diag := result.AsInt()
	assert(t, diag == nil, "unexpected diagnostic narrowing result")
	assert(t, v == 1, "expected dispatch to continue at the instruction after the failed invoke")
	assert(t, len(sink.diagnostics) == 1, "expected one diagnostic reporting the load failure")
}
