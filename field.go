package javaser

import (
	"fmt"

	"github.com/pkg/errors"
)

// Field type codes, per the wire format.
const (
	fieldByte    = 'B'
	fieldChar    = 'C'
	fieldDouble  = 'D'
	fieldFloat   = 'F'
	fieldInt     = 'I'
	fieldLong    = 'J'
	fieldShort   = 'S'
	fieldBool    = 'Z'
	fieldObject  = 'L'
	fieldArray   = '['
)

// classNameKinds restricts the content read for an L/[ field's declared
// nested type to a string or a back-reference to one already seen.
var classNameKinds = kindSet(KindString, KindReference, KindLongString)

// fieldDesc reads one FieldDesc: a type code byte, then the field name,
// then — for L and [ fields — the declared nested type signature.
func (p *Parser) fieldDesc() (FieldDesc, error) {
	typeCode, err := p.cur.u8()
	if err != nil {
		return FieldDesc{}, p.newDecodeError(ErrPrematureEndOfInput, "error reading field type", err)
	}

	name, err := p.cur.utfShort()
	if err != nil {
		return FieldDesc{}, p.newDecodeError(ErrPrematureEndOfInput, "error reading field name", err)
	}

	f := FieldDesc{Type: typeCode, Name: name}

	if typeCode == fieldObject || typeCode == fieldArray {
		className, err := p.content(classNameKinds)
		if err != nil {
			return FieldDesc{}, errors.Wrap(err, "error reading field class name")
		}
		s, isString := className.(string)
		if !isString {
			return FieldDesc{}, p.newDecodeError(ErrUnknownFieldType, "unexpected field class name type", nil)
		}
		f.ClassName = s
	}

	return f, nil
}

// readFieldValue dispatches on a field's type code to the matching
// primitive reader, or to a recursive content read (object position) for
// L and [ fields.
func (p *Parser) readFieldValue(typeCode byte) (Value, error) {
	switch typeCode {
	case fieldByte:
		v, err := p.cur.i8()
		return v, wrapPrim(err, "byte")
	case fieldChar:
		v, err := p.cur.u16be()
		if err != nil {
			return nil, wrapPrim(err, "char")
		}
		return string(rune(v)), nil
	case fieldDouble:
		v, err := p.cur.f64be()
		return v, wrapPrim(err, "double")
	case fieldFloat:
		v, err := p.cur.f32be()
		return v, wrapPrim(err, "float")
	case fieldInt:
		v, err := p.cur.i32be()
		return v, wrapPrim(err, "int")
	case fieldLong:
		hi, err := p.cur.u32be()
		if err != nil {
			return nil, wrapPrim(err, "long")
		}
		lo, err := p.cur.u32be()
		if err != nil {
			return nil, wrapPrim(err, "long")
		}
		return int64(uint64(hi)<<32 | uint64(lo)), nil
	case fieldShort:
		v, err := p.cur.i16be()
		return v, wrapPrim(err, "short")
	case fieldBool:
		v, err := p.cur.i8()
		if err != nil {
			return nil, wrapPrim(err, "boolean")
		}
		return v != 0, nil
	case fieldObject, fieldArray:
		v, err := p.content(nil)
		if err != nil {
			return nil, errors.Wrap(err, "error reading object field")
		}
		return v, nil
	default:
		return nil, p.newDecodeError(ErrUnknownFieldType, fmt.Sprintf("unknown field type %q", string(typeCode)), nil)
	}
}

func wrapPrim(err error, what string) error {
	if err == nil {
		return nil
	}
	return errors.Wrapf(err, "error reading %s primitive", what)
}
