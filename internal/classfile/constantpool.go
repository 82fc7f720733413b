package classfile

import (
	"fmt"
	"math"
)

// NameAndType is the resolved (name, descriptor) pair behind a
// NameAndType constant-pool entry.
type NameAndType struct {
	Name       string
	Descriptor string
}

// MemberRef is the resolved (owning class, name, descriptor) behind a
// Fieldref, Methodref, or InterfaceMethodref entry.
type MemberRef struct {
	ClassName  string
	Name       string
	Descriptor string
}

func (cf *ClassFile) entry(index int) (ConstantPoolEntry, error) {
	if index <= 0 || index >= len(cf.ConstantPool) {
		return ConstantPoolEntry{}, fmt.Errorf("constant pool index %d out of range (pool size %d)", index, len(cf.ConstantPool))
	}
	return cf.ConstantPool[index], nil
}

// GetUTF8 resolves a Utf8 constant-pool entry.
func (cf *ClassFile) GetUTF8(index int) (string, error) {
	e, err := cf.entry(index)
	if err != nil {
		return "", err
	}
	if e.Tag != TagUtf8 {
		return "", fmt.Errorf("constant pool index %d: expected Utf8, got tag %d", index, e.Tag)
	}
	return e.Utf8, nil
}

// GetClassName resolves a Class constant-pool entry to its name.
func (cf *ClassFile) GetClassName(index int) (string, error) {
	e, err := cf.entry(index)
	if err != nil {
		return "", err
	}
	if e.Tag != TagClass {
		return "", fmt.Errorf("constant pool index %d: expected Class, got tag %d", index, e.Tag)
	}
	return cf.GetUTF8(e.NameIndex)
}

// GetString resolves a String constant-pool entry to its backing
// Utf8 text.
func (cf *ClassFile) GetString(index int) (string, error) {
	e, err := cf.entry(index)
	if err != nil {
		return "", err
	}
	if e.Tag != TagString {
		return "", fmt.Errorf("constant pool index %d: expected String, got tag %d", index, e.Tag)
	}
	return cf.GetUTF8(e.NameIndex)
}

// GetInteger resolves an Integer constant-pool entry.
func (cf *ClassFile) GetInteger(index int) (int32, error) {
	e, err := cf.entry(index)
	if err != nil {
		return 0, err
	}
	if e.Tag != TagInteger {
		return 0, fmt.Errorf("constant pool index %d: expected Integer, got tag %d", index, e.Tag)
	}
	return int32(e.Bits32), nil
}

// GetLong resolves a Long constant-pool entry.
func (cf *ClassFile) GetLong(index int) (int64, error) {
	e, err := cf.entry(index)
	if err != nil {
		return 0, err
	}
	if e.Tag != TagLong {
		return 0, fmt.Errorf("constant pool index %d: expected Long, got tag %d", index, e.Tag)
	}
	return int64(e.Bits64), nil
}

// GetFloat resolves a Float constant-pool entry.
func (cf *ClassFile) GetFloat(index int) (float32, error) {
	e, err := cf.entry(index)
	if err != nil {
		return 0, err
	}
	if e.Tag != TagFloat {
		return 0, fmt.Errorf("constant pool index %d: expected Float, got tag %d", index, e.Tag)
	}
	return math.Float32frombits(e.Bits32), nil
}

// GetDouble resolves a Double constant-pool entry.
func (cf *ClassFile) GetDouble(index int) (float64, error) {
	e, err := cf.entry(index)
	if err != nil {
		return 0, err
	}
	if e.Tag != TagDouble {
		return 0, fmt.Errorf("constant pool index %d: expected Double, got tag %d", index, e.Tag)
	}
	return math.Float64frombits(e.Bits64), nil
}

// GetNameAndType resolves a NameAndType constant-pool entry.
func (cf *ClassFile) GetNameAndType(index int) (NameAndType, error) {
	e, err := cf.entry(index)
	if err != nil {
		return NameAndType{}, err
	}
	if e.Tag != TagNameAndType {
		return NameAndType{}, fmt.Errorf("constant pool index %d: expected NameAndType, got tag %d", index, e.Tag)
	}
	name, err := cf.GetUTF8(e.NameIndex)
	if err != nil {
		return NameAndType{}, err
	}
	desc, err := cf.GetUTF8(e.DescriptorIndex)
	if err != nil {
		return NameAndType{}, err
	}
	return NameAndType{Name: name, Descriptor: desc}, nil
}

func (cf *ClassFile) getMemberRef(index int, want ConstantTag) (MemberRef, error) {
	e, err := cf.entry(index)
	if err != nil {
		return MemberRef{}, err
	}
	if e.Tag != want {
		return MemberRef{}, fmt.Errorf("constant pool index %d: expected tag %d, got %d", index, want, e.Tag)
	}
	className, err := cf.GetClassName(e.ClassIndex)
	if err != nil {
		return MemberRef{}, err
	}
	nat, err := cf.GetNameAndType(e.NameAndTypeIndex)
	if err != nil {
		return MemberRef{}, err
	}
	return MemberRef{ClassName: className, Name: nat.Name, Descriptor: nat.Descriptor}, nil
}

// GetFieldRef resolves a Fieldref constant-pool entry.
func (cf *ClassFile) GetFieldRef(index int) (MemberRef, error) {
	return cf.getMemberRef(index, TagFieldref)
}

// GetMethodRef resolves a Methodref constant-pool entry.
func (cf *ClassFile) GetMethodRef(index int) (MemberRef, error) {
	return cf.getMemberRef(index, TagMethodref)
}

// GetInterfaceMethodRef resolves an InterfaceMethodref constant-pool
// entry.
func (cf *ClassFile) GetInterfaceMethodRef(index int) (MemberRef, error) {
	return cf.getMemberRef(index, TagInterfaceMethodref)
}

// FindMethod locates a method by name and descriptor.
func (cf *ClassFile) FindMethod(name, descriptor string) (*MethodInfo, error) {
	for i := range cf.Methods {
		m := &cf.Methods[i]
		mName, err := cf.GetUTF8(m.NameIndex)
		if err != nil {
			return nil, err
		}
		if mName != name {
			continue
		}
		mDesc, err := cf.GetUTF8(m.DescriptorIndex)
		if err != nil {
			return nil, err
		}
		if mDesc == descriptor || descriptor == "" {
			return m, nil
		}
	}
	return nil, fmt.Errorf("method not found: %s%s", name, descriptor)
}

// Name returns the class's own name (this_class resolved to text).
func (cf *ClassFile) Name() (string, error) {
	return cf.GetClassName(cf.ThisClass)
}

// SuperName returns the superclass name, or "" if this class has none
// (true only for java/lang/Object).
func (cf *ClassFile) SuperName() (string, error) {
	if cf.SuperClass == 0 {
		return "", nil
	}
	return cf.GetClassName(cf.SuperClass)
}
