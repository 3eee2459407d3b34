package javaser

import "github.com/pkg/errors"

// Class flags, low nibble (§3, SC_* in the glossary).
const (
	classFlagsMask byte = 0x0F

	scSerializable           byte = 0x02
	scSerializableWriteMethod byte = 0x03
	scExternalizableLegacy   byte = 0x04
	scExternalizableBlockData byte = 0x0C
)

// annotationKey is the reserved field-group key under which a class's
// write-method annotation block (or an externalizable class's opaque
// body) is stashed.
const annotationKey = "@"

// valueKey is the reserved field-group key a PostProcessor sets to
// publish the structured semantic value that should replace the whole
// object at its call site, mirroring the unwrap the teacher performs via
// its "@@value@@" sentinel field.
const valueKey = "@@value@@"

func (p *Parser) parseObject() (Value, error) {
	cls, err := p.classDesc()
	if err != nil {
		return nil, errors.Wrap(err, "error reading object class")
	}

	obj := newObjectDesc(cls)
	// Allocate the handle now, before reading ancestor data: a field
	// inside this object's own data that references the object itself
	// (a genuine cycle, not just a forward reference) resolves to this
	// same pointer, which keeps accumulating fields as we go.
	idx := p.handles.reserve()
	p.handles.assign(idx, obj)

	if err := p.fillAncestorChain(cls, obj); err != nil {
		return nil, errors.Wrap(err, "error reading recursive class data")
	}

	if v, has := obj.Fields[valueKey]; has {
		// A postprocessor unwrapped this object into a structured semantic
		// value (List, Set, Assoc, time.Time, ...). Back-fill the handle
		// slot with that same unwrapped value so a later back-reference to
		// this object sees exactly what an inline occurrence would have
		// produced, instead of the raw *ObjectDesc.
		p.handles.assign(idx, v)
		return v, nil
	}
	return obj, nil
}

// fillAncestorChain walks the super chain oldest-ancestor-first, reading
// each class's per-class data and folding it into both the per-ancestor
// group and the flattened projection (most-derived wins on collisions,
// since it is applied last).
func (p *Parser) fillAncestorChain(cls *ClassDesc, obj *ObjectDesc) error {
	if cls == nil {
		return nil
	}
	if err := p.fillAncestorChain(cls.Super, obj); err != nil {
		return err
	}

	fields, err := p.classData(cls)
	if err != nil {
		return errors.Wrap(err, "error reading recursive class data")
	}

	obj.Extends[cls.Name] = fields
	for k, v := range fields {
		obj.Fields[k] = v
	}
	return nil
}

// classData reads one class's per-class data, shaped by flags&0x0F
// (§4.7). The postprocessor registry lookup runs after data is read
// regardless of which of the three legal shapes produced it: the six
// required registrations (§4.9 of spec.md) all happen to name classes
// with a custom writeObject (flags 0x03), but several of the
// supplemented registrations (boxed primitives, Arrays$ArrayList) use
// plain default serialization (flags 0x02) and still need their shape
// rewritten — see DESIGN.md for this resolution.
func (p *Parser) classData(cls *ClassDesc) (map[string]Value, error) {
	flags := cls.Flags & classFlagsMask

	var data map[string]Value
	var anns []Value
	var err error

	switch flags {
	case scSerializable, scSerializableWriteMethod:
		data, err = p.fieldValues(cls)
		if err != nil {
			return nil, errors.Wrap(err, "error reading class data field values")
		}
	case scExternalizableLegacy:
		return nil, p.newDecodeError(ErrExternalizableUnsupported, "unable to parse externalizable content in the legacy layout", nil)
	case scExternalizableBlockData:
		data = make(map[string]Value)
	default:
		return nil, p.newDecodeError(ErrUnknownClassFlags, "unable to deserialize class with unrecognized flags", nil)
	}

	if flags == scSerializableWriteMethod || flags == scExternalizableBlockData {
		anns, err = p.annotations()
		if err != nil {
			return nil, errors.Wrap(err, "error reading annotations")
		}
		data[annotationKey] = annsToValue(anns)
	}

	if proc, ok := p.postProcs[cls.Name+"@"+cls.SerialVersionUID]; ok {
		data, err = proc(data, anns)
		if err != nil {
			return nil, errors.Wrapf(err, "error running postprocessor for %s", cls.Name)
		}
	}
	return data, nil
}

// annsToValue stores an annotation block as a List so it behaves like
// any other ordered sequence value (JSON-encodable, indexable).
func annsToValue(anns []Value) Value {
	return List(anns)
}

// fieldValues reads one value per field in cls, in field order.
func (p *Parser) fieldValues(cls *ClassDesc) (map[string]Value, error) {
	data := make(map[string]Value, len(cls.Fields))
	for _, f := range cls.Fields {
		v, err := p.readFieldValue(f.Type)
		if err != nil {
			return nil, errors.Wrap(err, "error reading primitive field value")
		}
		data[f.Name] = v
	}
	return data, nil
}

func (p *Parser) parseArray() (Value, error) {
	cls, err := p.classDesc()
	if err != nil {
		return nil, errors.Wrap(err, "error parsing array class")
	}

	arr := &ArrayDesc{Class: cls}
	p.handles.append(arr)

	size, err := p.cur.i32be()
	if err != nil {
		return nil, p.newDecodeError(ErrPrematureEndOfInput, "error reading array size", err)
	}
	if cls == nil {
		return arr, nil
	}
	if len(cls.Name) < 2 {
		return nil, p.newDecodeError(ErrUnknownFieldType, "array class name too short to carry an element type code", nil)
	}

	elemType := cls.Name[1]
	items := make([]Value, size)
	for i := 0; i < int(size); i++ {
		v, err := p.readFieldValue(elemType)
		if err != nil {
			return nil, errors.Wrap(err, "error reading primitive array member")
		}
		items[i] = v
	}
	arr.Items = items
	return arr, nil
}

func (p *Parser) parseEnum() (Value, error) {
	cls, err := p.classDesc()
	if err != nil {
		return nil, errors.Wrap(err, "error parsing enum class")
	}

	// Reserve the slot before reading the constant's name: the
	// class descriptor's super chain may encode java.lang.Enum, and the
	// constant payload itself is written after, so handle ordering is
	// fixed by wire position, not by when we finish building the value.
	idx := p.handles.reserve()

	name, err := p.content(nil)
	if err != nil {
		return nil, errors.Wrap(err, "error parsing enum constant")
	}
	nameStr, ok := name.(string)
	if !ok {
		return nil, p.newDecodeError(ErrUnknownTypeCode, "unexpected enum constant payload type", nil)
	}

	ec := EnumConstant{Class: cls, Name: nameStr}
	p.handles.assign(idx, ec)
	return ec, nil
}
