package classfile

import "testing"

func TestIndexZeroAlwaysFails(t *testing.T) {
	cf := &ClassFile{ConstantPool: make([]ConstantPoolEntry, 3)}
	_, err := cf.GetUTF8(0)
	assert(t, err != nil, "expected constant pool index 0 to always be absent")
}

func TestGetMethodRefResolvesThroughNameAndType(t *testing.T) {
	pool := []ConstantPoolEntry{
		{},
		{Tag: TagUtf8, Utf8: "Widget"},                                 // 1
		{Tag: TagClass, NameIndex: 1},                                   // 2
		{Tag: TagUtf8, Utf8: "spin"},                                    // 3
		{Tag: TagUtf8, Utf8: "()V"},                                     // 4
		{Tag: TagNameAndType, NameIndex: 3, DescriptorIndex: 4},         // 5
		{Tag: TagMethodref, ClassIndex: 2, NameAndTypeIndex: 5},         // 6
	}
	cf := &ClassFile{ConstantPool: pool}

	ref, err := cf.GetMethodRef(6)
	assert(t, err == nil, "unexpected error resolving methodref")
	assert(t, ref.ClassName == "Widget", "expected resolved class name Widget")
	assert(t, ref.Name == "spin", "expected resolved method name spin")
	assert(t, ref.Descriptor == "()V", "expected resolved descriptor ()V")
}

func TestGetMethodRefRejectsWrongTag(t *testing.T) {
	pool := []ConstantPoolEntry{{}, {Tag: TagUtf8, Utf8: "not a ref"}}
	cf := &ClassFile{ConstantPool: pool}

	_, err := cf.GetMethodRef(1)
	assert(t, err != nil, "expected type mismatch error resolving wrong tag as methodref")
}
