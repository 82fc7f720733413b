package classfile

import (
	"fmt"

	"github.com/mabhi256/mjvm/internal/reader"
)

const magic = 0xCAFEBABE

// Parse reads path fully into memory and decodes it as a class file.
func Parse(path string) (*ClassFile, error) {
	r, err := reader.FromFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(r)
}

// Decode walks a Reader positioned at the start of a class file and
// produces its structured representation.
func Decode(r *reader.Reader) (*ClassFile, error) {
	got, err := r.ReadU4()
	if err != nil {
		return nil, fmt.Errorf("failed to read magic: %w", err)
	}
	if got != magic {
		return nil, fmt.Errorf("not a class file: magic %#x != %#x", got, magic)
	}

	cf := &ClassFile{}

	if cf.MinorVersion, err = r.ReadU2(); err != nil {
		return nil, fmt.Errorf("failed to read minor version: %w", err)
	}
	if cf.MajorVersion, err = r.ReadU2(); err != nil {
		return nil, fmt.Errorf("failed to read major version: %w", err)
	}

	if cf.ConstantPool, err = decodeConstantPool(r); err != nil {
		return nil, fmt.Errorf("failed to read constant pool: %w", err)
	}

	if cf.AccessFlags, err = r.ReadU2(); err != nil {
		return nil, fmt.Errorf("failed to read access flags: %w", err)
	}

	thisClass, err := r.ReadU2()
	if err != nil {
		return nil, fmt.Errorf("failed to read this_class: %w", err)
	}
	cf.ThisClass = int(thisClass)

	superClass, err := r.ReadU2()
	if err != nil {
		return nil, fmt.Errorf("failed to read super_class: %w", err)
	}
	cf.SuperClass = int(superClass)

	if cf.Interfaces, err = decodeInterfaces(r); err != nil {
		return nil, fmt.Errorf("failed to read interfaces: %w", err)
	}

	if cf.Fields, err = decodeFields(r); err != nil {
		return nil, fmt.Errorf("failed to read fields: %w", err)
	}

	if cf.Methods, err = decodeMethods(r); err != nil {
		return nil, fmt.Errorf("failed to read methods: %w", err)
	}

	if cf.Attributes, err = decodeAttributes(r); err != nil {
		return nil, fmt.Errorf("failed to read class attributes: %w", err)
	}

	if err := resolveCodeAttributes(cf); err != nil {
		return nil, fmt.Errorf("failed to resolve code attributes: %w", err)
	}

	return cf, nil
}

// resolveCodeAttributes finds, among each method's opaque attributes,
// the one named "Code" and decodes it into MethodInfo.Code. Native and
// abstract methods carry no such attribute and are left with Code nil.
func resolveCodeAttributes(cf *ClassFile) error {
	for i := range cf.Methods {
		method := &cf.Methods[i]
		for _, attr := range method.Attributes {
			name, err := cf.GetUTF8(attr.NameIndex)
			if err != nil {
				return fmt.Errorf("method %d: %w", i, err)
			}
			if name != "Code" {
				continue
			}
			code, err := decodeCodeAttribute(attr.Info)
			if err != nil {
				return fmt.Errorf("method %d: bad Code attribute: %w", i, err)
			}
			method.Code = code
			break
		}
	}
	return nil
}

func decodeCodeAttribute(info []byte) (*CodeAttribute, error) {
	r := reader.FromBytes(info)

	maxStack, err := r.ReadU2()
	if err != nil {
		return nil, fmt.Errorf("failed to read max_stack: %w", err)
	}
	maxLocals, err := r.ReadU2()
	if err != nil {
		return nil, fmt.Errorf("failed to read max_locals: %w", err)
	}
	codeLength, err := r.ReadU4()
	if err != nil {
		return nil, fmt.Errorf("failed to read code_length: %w", err)
	}
	code, err := r.ReadBytes(int(codeLength))
	if err != nil {
		return nil, fmt.Errorf("failed to read code: %w", err)
	}
	codeCopy := make([]byte, len(code))
	copy(codeCopy, code)

	exceptionCount, err := r.ReadU2()
	if err != nil {
		return nil, fmt.Errorf("failed to read exception_table_length: %w", err)
	}
	exceptions := make([]ExceptionTableEntry, exceptionCount)
	for i := range exceptions {
		startPC, err := r.ReadU2()
		if err != nil {
			return nil, fmt.Errorf("exception %d: failed to read start_pc: %w", i, err)
		}
		endPC, err := r.ReadU2()
		if err != nil {
			return nil, fmt.Errorf("exception %d: failed to read end_pc: %w", i, err)
		}
		handlerPC, err := r.ReadU2()
		if err != nil {
			return nil, fmt.Errorf("exception %d: failed to read handler_pc: %w", i, err)
		}
		catchType, err := r.ReadU2()
		if err != nil {
			return nil, fmt.Errorf("exception %d: failed to read catch_type: %w", i, err)
		}
		exceptions[i] = ExceptionTableEntry{
			StartPC:   startPC,
			EndPC:     endPC,
			HandlerPC: handlerPC,
			CatchType: catchType,
		}
	}

	// Code attributes carry a trailing attributes list (line numbers,
	// local variable tables, ...). Nothing downstream needs them.

	return &CodeAttribute{
		MaxStack:       maxStack,
		MaxLocals:      maxLocals,
		Code:           codeCopy,
		ExceptionTable: exceptions,
	}, nil
}

// decodeConstantPool reads constant_pool_count and then that many
// entries (minus one, per the format's off-by-one count field).
// Slot 0 is always left as a zero-value Unknown entry: constant-pool
// indices are 1-based, and Long/Double entries consume two slots so
// the entry immediately following one is also left as Unknown.
func decodeConstantPool(r *reader.Reader) ([]ConstantPoolEntry, error) {
	count, err := r.ReadU2()
	if err != nil {
		return nil, err
	}

	pool := make([]ConstantPoolEntry, count)

	for i := 1; i < int(count); i++ {
		tag, err := r.ReadU1()
		if err != nil {
			return nil, fmt.Errorf("entry %d: failed to read tag: %w", i, err)
		}

		entry := ConstantPoolEntry{Tag: ConstantTag(tag)}

		switch ConstantTag(tag) {
		case TagUtf8:
			length, err := r.ReadU2()
			if err != nil {
				return nil, fmt.Errorf("entry %d: failed to read utf8 length: %w", i, err)
			}
			raw, err := r.ReadBytes(int(length))
			if err != nil {
				return nil, fmt.Errorf("entry %d: failed to read utf8 bytes: %w", i, err)
			}
			entry.Utf8 = string(raw)

		case TagInteger, TagFloat:
			v, err := r.ReadU4()
			if err != nil {
				return nil, fmt.Errorf("entry %d: failed to read 4-byte constant: %w", i, err)
			}
			entry.Bits32 = v

		case TagLong, TagDouble:
			v, err := r.ReadU8()
			if err != nil {
				return nil, fmt.Errorf("entry %d: failed to read 8-byte constant: %w", i, err)
			}
			entry.Bits64 = v

		case TagClass, TagString:
			idx, err := r.ReadU2()
			if err != nil {
				return nil, fmt.Errorf("entry %d: failed to read name index: %w", i, err)
			}
			entry.NameIndex = int(idx)

		case TagFieldref, TagMethodref, TagInterfaceMethodref:
			classIdx, err := r.ReadU2()
			if err != nil {
				return nil, fmt.Errorf("entry %d: failed to read class index: %w", i, err)
			}
			natIdx, err := r.ReadU2()
			if err != nil {
				return nil, fmt.Errorf("entry %d: failed to read name_and_type index: %w", i, err)
			}
			entry.ClassIndex = int(classIdx)
			entry.NameAndTypeIndex = int(natIdx)

		case TagNameAndType:
			nameIdx, err := r.ReadU2()
			if err != nil {
				return nil, fmt.Errorf("entry %d: failed to read name index: %w", i, err)
			}
			descIdx, err := r.ReadU2()
			if err != nil {
				return nil, fmt.Errorf("entry %d: failed to read descriptor index: %w", i, err)
			}
			entry.NameIndex = int(nameIdx)
			entry.DescriptorIndex = int(descIdx)

		case TagMethodHandle:
			if err := r.Skip(3); err != nil {
				return nil, fmt.Errorf("entry %d: failed to skip method handle: %w", i, err)
			}

		case TagMethodType:
			if err := r.Skip(2); err != nil {
				return nil, fmt.Errorf("entry %d: failed to skip method type: %w", i, err)
			}

		case TagDynamic, TagInvokeDynamic:
			if err := r.Skip(4); err != nil {
				return nil, fmt.Errorf("entry %d: failed to skip dynamic: %w", i, err)
			}

		case TagModule, TagPackage:
			if err := r.Skip(2); err != nil {
				return nil, fmt.Errorf("entry %d: failed to skip module/package: %w", i, err)
			}

		default:
			return nil, fmt.Errorf("entry %d: unknown constant tag %d", i, tag)
		}

		pool[i] = entry

		// Long and Double each occupy two constant pool slots; the
		// slot after this one stays zero-valued.
		if entry.Tag == TagLong || entry.Tag == TagDouble {
			i++
		}
	}

	return pool, nil
}

func decodeInterfaces(r *reader.Reader) ([]int, error) {
	count, err := r.ReadU2()
	if err != nil {
		return nil, err
	}
	interfaces := make([]int, count)
	for i := range interfaces {
		idx, err := r.ReadU2()
		if err != nil {
			return nil, fmt.Errorf("interface %d: %w", i, err)
		}
		interfaces[i] = int(idx)
	}
	return interfaces, nil
}

func decodeFields(r *reader.Reader) ([]FieldInfo, error) {
	count, err := r.ReadU2()
	if err != nil {
		return nil, err
	}
	fields := make([]FieldInfo, count)
	for i := range fields {
		accessFlags, err := r.ReadU2()
		if err != nil {
			return nil, fmt.Errorf("field %d: failed to read access flags: %w", i, err)
		}
		nameIdx, err := r.ReadU2()
		if err != nil {
			return nil, fmt.Errorf("field %d: failed to read name index: %w", i, err)
		}
		descIdx, err := r.ReadU2()
		if err != nil {
			return nil, fmt.Errorf("field %d: failed to read descriptor index: %w", i, err)
		}
		attrs, err := decodeAttributes(r)
		if err != nil {
			return nil, fmt.Errorf("field %d: failed to read attributes: %w", i, err)
		}
		fields[i] = FieldInfo{
			AccessFlags:     accessFlags,
			NameIndex:       int(nameIdx),
			DescriptorIndex: int(descIdx),
			Attributes:      attrs,
		}
	}
	return fields, nil
}

func decodeMethods(r *reader.Reader) ([]MethodInfo, error) {
	count, err := r.ReadU2()
	if err != nil {
		return nil, err
	}
	methods := make([]MethodInfo, count)
	for i := range methods {
		accessFlags, err := r.ReadU2()
		if err != nil {
			return nil, fmt.Errorf("method %d: failed to read access flags: %w", i, err)
		}
		nameIdx, err := r.ReadU2()
		if err != nil {
			return nil, fmt.Errorf("method %d: failed to read name index: %w", i, err)
		}
		descIdx, err := r.ReadU2()
		if err != nil {
			return nil, fmt.Errorf("method %d: failed to read descriptor index: %w", i, err)
		}
		attrs, err := decodeAttributes(r)
		if err != nil {
			return nil, fmt.Errorf("method %d: failed to read attributes: %w", i, err)
		}

		method := MethodInfo{
			AccessFlags:     accessFlags,
			NameIndex:       int(nameIdx),
			DescriptorIndex: int(descIdx),
			Attributes:      attrs,
		}
		methods[i] = method
	}
	return methods, nil
}

// decodeAttributes reads attribute_count followed by that many
// length-prefixed blobs. The "Code" attribute is additionally
// decoded into a CodeAttribute by the caller once the owning
// MethodInfo's name pool is known; resolveCodeAttributes does that
// pass.
func decodeAttributes(r *reader.Reader) ([]AttributeInfo, error) {
	count, err := r.ReadU2()
	if err != nil {
		return nil, err
	}
	attrs := make([]AttributeInfo, count)
	for i := range attrs {
		nameIdx, err := r.ReadU2()
		if err != nil {
			return nil, fmt.Errorf("attribute %d: failed to read name index: %w", i, err)
		}
		length, err := r.ReadU4()
		if err != nil {
			return nil, fmt.Errorf("attribute %d: failed to read length: %w", i, err)
		}
		info, err := r.ReadBytes(int(length))
		if err != nil {
			return nil, fmt.Errorf("attribute %d: failed to read info: %w", i, err)
		}
		// ReadBytes aliases the source buffer; copy so it survives
		// independent of the reader's lifetime.
		infoCopy := make([]byte, len(info))
		copy(infoCopy, info)
		attrs[i] = AttributeInfo{NameIndex: int(nameIdx), Info: infoCopy}
	}
	return attrs, nil
}
