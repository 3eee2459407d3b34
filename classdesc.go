package javaser

import "github.com/pkg/errors"

const serialVersionUIDLength = 8

// classDesc reads a class-descriptor position: exactly {ClassDesc,
// ProxyClassDesc, Null, Reference} are legal here. ProxyClassDesc is a
// fatal Unsupported further down the dispatch chain.
func (p *Parser) classDesc() (*ClassDesc, error) {
	v, err := p.content(classDescKinds)
	if err != nil {
		return nil, errors.Wrap(err, "error reading class description")
	}
	if v == nil {
		return nil, nil
	}
	cls, ok := v.(*ClassDesc)
	if !ok {
		return nil, p.newDecodeError(ErrUnknownTypeCode, "unexpected type returned while reading class description", nil)
	}
	return cls, nil
}

// parseClassDesc decodes a single class-descriptor node (§4.4): name,
// serialVersionUID, a handle allocated before anything else so the
// descriptor's own annotations or super chain can reference it, flags,
// fields, the class-level annotation block, then the chained super
// descriptor.
func (p *Parser) parseClassDesc() (Value, error) {
	cls := &ClassDesc{}

	name, err := p.cur.utfShort()
	if err != nil {
		return nil, p.newDecodeError(ErrPrematureEndOfInput, "error reading class name", err)
	}
	cls.Name = name

	uid, err := p.cur.hex(serialVersionUIDLength)
	if err != nil {
		return nil, p.newDecodeError(ErrPrematureEndOfInput, "error reading class serialVersionUID", err)
	}
	cls.SerialVersionUID = uid

	// Allocate the handle now, before reading further: this lets the
	// class's own annotation block or its super chain reference it.
	p.handles.append(cls)

	flags, err := p.cur.u8()
	if err != nil {
		return nil, p.newDecodeError(ErrPrematureEndOfInput, "error reading class flags", err)
	}
	cls.Flags = flags
	cls.IsEnum = flags&0x10 != 0

	fieldCount, err := p.cur.u16be()
	if err != nil {
		return nil, p.newDecodeError(ErrPrematureEndOfInput, "error reading class field count", err)
	}
	cls.Fields = make([]FieldDesc, 0, fieldCount)
	for i := 0; i < int(fieldCount); i++ {
		f, err := p.fieldDesc()
		if err != nil {
			return nil, errors.Wrap(err, "error reading class field")
		}
		cls.Fields = append(cls.Fields, f)
	}

	anns, err := p.annotations()
	if err != nil {
		return nil, errors.Wrap(err, "error reading class annotations")
	}
	cls.Annotations = anns

	super, err := p.classDesc()
	if err != nil {
		return nil, errors.Wrap(err, "error reading class super")
	}
	cls.Super = super

	return cls, nil
}
