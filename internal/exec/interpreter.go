package exec

import (
	"fmt"

	"github.com/mabhi256/mjvm/internal/classfile"
	"github.com/mabhi256/mjvm/internal/gc"
	"github.com/mabhi256/mjvm/internal/loader"
	"github.com/mabhi256/mjvm/internal/native"
	"github.com/mabhi256/mjvm/internal/runtime"
)

// DiagnosticSink receives every Diagnostic the interpreter produces,
// in execution order. The CLI trace printer and the interactive
// debugger both implement this to surface division-by-zero, stack
// overflow, constant-pool resolution, and type-coercion notices as
// they happen.
type DiagnosticSink interface {
	Observe(d runtime.Diagnostic)
}

// Interpreter executes class file bytecode against a heap and call
// stack shared across every method invocation made from one entry
// point.
type Interpreter struct {
	Loader *loader.ClassLoader
	Heap   *runtime.Heap
	Stack  *runtime.Stack
	GC     *gc.Collector

	Debug bool
	Sink  DiagnosticSink
}

func New(l *loader.ClassLoader) *Interpreter {
	return &Interpreter{
		Loader: l,
		Heap:   runtime.NewHeap(),
		Stack:  runtime.NewStack(),
		GC:     gc.NewCollector(),
	}
}

func (ip *Interpreter) emit(d *runtime.Diagnostic) {
	if d == nil {
		return
	}
	if ip.Debug {
		fmt.Printf("[%s] %s\n", d.Severity, d.Message)
	}
	if ip.Sink != nil {
		ip.Sink.Observe(*d)
	}
}

// Run locates name's main entry point (public static void main, by
// convention the "main" method with any descriptor) and executes it
// to completion.
func (ip *Interpreter) Run(cf *classfile.ClassFile) error {
	method, err := cf.FindMethod("main", "")
	if err != nil {
		return err
	}
	_, err = ip.ExecuteMethod(cf, method, nil)
	return err
}

// ExecuteMethod runs one method to completion on a fresh frame pushed
// onto the shared call stack, and returns the value left on top of
// the operand stack at Return time, if any: a non-empty operand stack
// surfaces its top value, an empty one surfaces nil. An unresolvable
// this_class only leaves the frame's class name empty.
func (ip *Interpreter) ExecuteMethod(cf *classfile.ClassFile, method *classfile.MethodInfo, args []runtime.Value) (*runtime.Value, error) {
	if method.Code == nil {
		name, _ := cf.GetUTF8(method.NameIndex)
		return nil, fmt.Errorf("method %s has no Code attribute (native or abstract)", name)
	}

	className, _ := cf.Name()
	methodName, _ := cf.GetUTF8(method.NameIndex)
	descriptor, _ := cf.GetUTF8(method.DescriptorIndex)

	frame := runtime.NewFrame(className, methodName, descriptor, int(method.Code.MaxLocals), int(method.Code.MaxStack))
	for i, arg := range args {
		frame.SetLocal(i, arg)
	}
	ip.Stack.PushFrame(frame)

	code := method.Code.Code
	var result *runtime.Value
	for frame.PC < len(code) {
		_, returned, stepResult, err := ip.Step(cf, code, frame)
		if err != nil {
			ip.Stack.PopFrame()
			return nil, err
		}
		if returned {
			result = stepResult
			break
		}
	}

	ip.Stack.PopFrame()

	return result, nil
}

// Step decodes and executes exactly one instruction from frame's
// current PC. It is the single dispatch primitive both ExecuteMethod's
// run-to-completion loop and the interactive debugger drive: the
// debugger never reimplements instruction semantics, it just calls
// Step once per keypress against the same frame and stack.
//
// returned is true once the instruction was Return; stepResult then
// holds whatever value (if any) was left on the operand stack, exactly
// as ExecuteMethod's own Return handling does.
func (ip *Interpreter) Step(cf *classfile.ClassFile, code []byte, frame *runtime.Frame) (instr Instruction, returned bool, stepResult *runtime.Value, err error) {
	instr = Decode(code, &frame.PC)

	if instr.Op == OpReturn {
		if frame.StackSize() > 0 {
			v := frame.Peek()
			stepResult = &v
		}
		return instr, true, stepResult, nil
	}

	if err := ip.execInstruction(cf, frame, instr); err != nil {
		return instr, false, nil, err
	}

	if ip.Heap.ObjectCount() > gc.Threshold {
		ip.GC.Collect(ip.Heap, ip.Stack)
	}

	return instr, false, nil, nil
}

func (ip *Interpreter) execInstruction(cf *classfile.ClassFile, frame *runtime.Frame, instr Instruction) error {
	switch instr.Op {
	case OpIConstM1:
		ip.emit(frame.PushInt(-1))
	case OpIConst0:
		ip.emit(frame.PushInt(0))
	case OpIConst1:
		ip.emit(frame.PushInt(1))
	case OpIConst2:
		ip.emit(frame.PushInt(2))
	case OpIConst3:
		ip.emit(frame.PushInt(3))
	case OpIConst4:
		ip.emit(frame.PushInt(4))
	case OpIConst5:
		ip.emit(frame.PushInt(5))
	case OpBiPush, OpSiPush:
		ip.emit(frame.PushInt(instr.Operand))

	case OpLdc:
		entry, err := ip.loadConstant(cf, int(instr.Operand))
		if err != nil {
			ip.emit(&runtime.Diagnostic{Severity: runtime.SeverityWarning, Code: "cp-resolution", Message: err.Error()})
			break
		}
		ip.emit(frame.Push(entry))

	case OpILoad:
		ip.emit(frame.Push(frame.GetLocal(int(instr.Operand))))
	case OpILoad0:
		ip.emit(frame.Push(frame.GetLocal(0)))
	case OpILoad1:
		ip.emit(frame.Push(frame.GetLocal(1)))
	case OpILoad2:
		ip.emit(frame.Push(frame.GetLocal(2)))
	case OpILoad3:
		ip.emit(frame.Push(frame.GetLocal(3)))

	case OpALoad:
		ip.emit(frame.Push(frame.GetLocal(int(instr.Operand))))
	case OpALoad0:
		ip.emit(frame.Push(frame.GetLocal(0)))
	case OpALoad1:
		ip.emit(frame.Push(frame.GetLocal(1)))
	case OpALoad2:
		ip.emit(frame.Push(frame.GetLocal(2)))
	case OpALoad3:
		ip.emit(frame.Push(frame.GetLocal(3)))

	case OpIStore:
		frame.SetLocal(int(instr.Operand), frame.Pop())
	case OpIStore0:
		frame.SetLocal(0, frame.Pop())
	case OpIStore1:
		frame.SetLocal(1, frame.Pop())
	case OpIStore2:
		frame.SetLocal(2, frame.Pop())
	case OpIStore3:
		frame.SetLocal(3, frame.Pop())

	case OpAStore:
		frame.SetLocal(int(instr.Operand), frame.Pop())
	case OpAStore0:
		frame.SetLocal(0, frame.Pop())
	case OpAStore1:
		frame.SetLocal(1, frame.Pop())
	case OpAStore2:
		frame.SetLocal(2, frame.Pop())
	case OpAStore3:
		frame.SetLocal(3, frame.Pop())

	case OpPop:
		frame.Pop()

	case OpDup:
		v := frame.Peek()
		ip.emit(frame.Push(v))
	case OpDupX1:
		a := frame.Pop()
		b := frame.Pop()
		ip.emit(frame.Push(a))
		ip.emit(frame.Push(b))
		ip.emit(frame.Push(a))
	case OpDupX2:
		a := frame.Pop()
		b := frame.Pop()
		c := frame.Pop()
		ip.emit(frame.Push(a))
		ip.emit(frame.Push(c))
		ip.emit(frame.Push(b))
		ip.emit(frame.Push(a))
	case OpDup2:
		a := frame.Pop()
		b := frame.Pop()
		ip.emit(frame.Push(b))
		ip.emit(frame.Push(a))
		ip.emit(frame.Push(b))
		ip.emit(frame.Push(a))

	case OpIAdd, OpISub, OpIMul, OpIDiv:
		ip.execArith(frame, instr.Op)

	case OpIInc:
		idx := int(instr.Operand)
		v, diag := frame.GetLocal(idx).AsInt()
		ip.emit(diag)
		frame.SetLocal(idx, runtime.IntValue(v+int32(instr.Delta)))

	case OpIfEq, OpIfNe, OpIfLt, OpIfGe, OpIfGt, OpIfLe:
		ip.execBranch(frame, instr)

	case OpGoto:
		frame.PC += int(instr.Operand) - 3

	case OpGetStatic:
		// Static fields are not modeled as a separate store; treat as
		// a field access against null, which resolves to Null. Real
		// class files in this corpus never read a static field before
		// writing it through an instance.
		ip.emit(frame.Push(runtime.NullValue()))

	case OpGetField:
		ip.execGetField(cf, frame, instr)

	case OpPutField:
		ip.execPutField(cf, frame, instr)

	case OpInvokeVirtual, OpInvokeSpecial, OpInvokeStatic:
		ip.execInvoke(cf, frame, instr)

	case OpNew:
		className, err := cf.GetClassName(int(instr.Operand))
		if err != nil {
			ip.emit(&runtime.Diagnostic{Severity: runtime.SeverityWarning, Code: "cp-resolution", Message: err.Error()})
			break
		}
		id := ip.Heap.AllocObject(className)
		ip.emit(frame.Push(runtime.ObjectValue(id)))

	case OpUnknown:
		return fmt.Errorf("unknown opcode %#x at pc=%d in %s.%s", instr.RawByte, frame.PC, frame.ClassName, frame.MethodName)
	}

	return nil
}

func (ip *Interpreter) execArith(frame *runtime.Frame, op Opcode) {
	b, diagB := frame.PopInt()
	a, diagA := frame.PopInt()
	ip.emit(diagA)
	ip.emit(diagB)

	switch op {
	case OpIAdd:
		ip.emit(frame.PushInt(a + b))
	case OpISub:
		ip.emit(frame.PushInt(a - b))
	case OpIMul:
		ip.emit(frame.PushInt(a * b))
	case OpIDiv:
		if b == 0 {
			ip.emit(&runtime.Diagnostic{Severity: runtime.SeverityWarning, Code: "div-by-zero", Message: "division by zero"})
			return
		}
		ip.emit(frame.PushInt(a / b))
	}
}

func (ip *Interpreter) execBranch(frame *runtime.Frame, instr Instruction) {
	v, diag := frame.PopInt()
	ip.emit(diag)

	var take bool
	switch instr.Op {
	case OpIfEq:
		take = v == 0
	case OpIfNe:
		take = v != 0
	case OpIfLt:
		take = v < 0
	case OpIfGe:
		take = v >= 0
	case OpIfGt:
		take = v > 0
	case OpIfLe:
		take = v <= 0
	}

	if take {
		// instr.Operand is relative to the opcode's own position,
		// which Decode has already advanced past (3 bytes: opcode +
		// 2-byte offset).
		frame.PC += int(instr.Operand) - 3
	}
}

// loadConstant resolves an Ldc index to a pushable runtime value. A
// String entry is interned and pushed as an object reference; a Utf8
// entry is pushed as a raw string value (a rare but legal Ldc target
// in javac output predating some class file versions).
func (ip *Interpreter) loadConstant(cf *classfile.ClassFile, index int) (runtime.Value, error) {
	if s, err := cf.GetString(index); err == nil {
		id := ip.Heap.AllocString(s)
		return runtime.ObjectValue(id), nil
	}
	if s, err := cf.GetUTF8(index); err == nil {
		return runtime.StringValue(s), nil
	}
	if i, err := cf.GetInteger(index); err == nil {
		return runtime.IntValue(i), nil
	}
	if l, err := cf.GetLong(index); err == nil {
		return runtime.LongValue(l), nil
	}
	if f, err := cf.GetFloat(index); err == nil {
		return runtime.FloatValue(f), nil
	}
	if d, err := cf.GetDouble(index); err == nil {
		return runtime.DoubleValue(d), nil
	}
	return runtime.Value{}, fmt.Errorf("ldc: constant pool index %d is not a loadable constant", index)
}

// execGetField resolves instr's field reference and pushes the field's
// value. A resolution failure is reported as a diagnostic and the
// instruction becomes a no-op (the stack is left exactly as it was);
// a dangling object reference pushes Null rather than failing.
func (ip *Interpreter) execGetField(cf *classfile.ClassFile, frame *runtime.Frame, instr Instruction) {
	ref, err := cf.GetFieldRef(int(instr.Operand))
	if err != nil {
		ip.emit(&runtime.Diagnostic{Severity: runtime.SeverityWarning, Code: "cp-resolution", Message: err.Error()})
		return
	}
	objVal := frame.Pop()
	obj, ok := ip.Heap.Get(objVal.ObjectID())
	if !ok {
		ip.emit(frame.Push(runtime.NullValue()))
		return
	}
	ip.emit(frame.Push(obj.GetField(ref.Name)))
}

// execPutField mirrors execGetField's no-op-on-resolution-failure
// behavior.
func (ip *Interpreter) execPutField(cf *classfile.ClassFile, frame *runtime.Frame, instr Instruction) {
	ref, err := cf.GetFieldRef(int(instr.Operand))
	if err != nil {
		ip.emit(&runtime.Diagnostic{Severity: runtime.SeverityWarning, Code: "cp-resolution", Message: err.Error()})
		return
	}
	value := frame.Pop()
	objVal := frame.Pop()
	obj, ok := ip.Heap.Get(objVal.ObjectID())
	if !ok {
		return
	}
	obj.SetField(ref.Name, value)
}

// execInvoke resolves and dispatches instr's method reference. Every
// failure mode here — an unresolvable method reference, a class that
// fails to load, a method that can't be found, or an anomaly inside
// the invoked method itself — is reported as a diagnostic and leaves
// the invoke as a no-op rather than aborting the caller; only an
// unknown opcode inside the callee halts that callee's own dispatch
// loop, and even then the failure is localized to the callee and
// never unwinds back through this call.
func (ip *Interpreter) execInvoke(cf *classfile.ClassFile, frame *runtime.Frame, instr Instruction) {
	ref, err := cf.GetMethodRef(int(instr.Operand))
	if err != nil {
		ip.emit(&runtime.Diagnostic{Severity: runtime.SeverityWarning, Code: "cp-resolution", Message: err.Error()})
		return
	}

	if native.Invoke(ref.ClassName, ref.Name, ref.Descriptor, frame, ip.Heap) {
		return
	}

	target, err := ip.Loader.LoadClass(ref.ClassName)
	if err != nil {
		ip.emit(&runtime.Diagnostic{Severity: runtime.SeverityWarning, Code: "invoke-load", Message: fmt.Sprintf("invoke %s.%s%s: %s", ref.ClassName, ref.Name, ref.Descriptor, err)})
		return
	}
	method, err := target.FindMethod(ref.Name, ref.Descriptor)
	if err != nil {
		ip.emit(&runtime.Diagnostic{Severity: runtime.SeverityWarning, Code: "invoke-lookup", Message: fmt.Sprintf("invoke %s.%s%s: %s", ref.ClassName, ref.Name, ref.Descriptor, err)})
		return
	}

	argCount := countArgs(ref.Descriptor)
	args := make([]runtime.Value, argCount)
	for i := argCount - 1; i >= 0; i-- {
		args[i] = frame.Pop()
	}
	if instr.Op != OpInvokeStatic {
		frame.Pop() // receiver (this); unused since fields carry no vtable dispatch here
	}

	result, err := ip.ExecuteMethod(target, method, args)
	if err != nil {
		ip.emit(&runtime.Diagnostic{Severity: runtime.SeverityWarning, Code: "invoke-anomaly", Message: fmt.Sprintf("invoke %s.%s%s: %s", ref.ClassName, ref.Name, ref.Descriptor, err)})
		return
	}
	if result != nil {
		ip.emit(frame.Push(*result))
	}
}

// countArgs counts the parameter slots in a method descriptor like
// "(ILjava/lang/String;)V". Long/Double each still count as one slot
// here since this interpreter keeps every Value in a single local
// slot regardless of its JVM-spec width.
func countArgs(descriptor string) int {
	count := 0
	i := 1 // skip leading '('
	for i < len(descriptor) && descriptor[i] != ')' {
		switch descriptor[i] {
		case 'L':
			for i < len(descriptor) && descriptor[i] != ';' {
				i++
			}
		case '[':
			i++
			continue
		}
		i++
		count++
	}
	return count
}
