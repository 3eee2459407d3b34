package javaser

import "github.com/pkg/errors"

// Kind is the closed enum of content-item kinds a type-code byte decodes
// to, after subtracting the 0x70 base.
type Kind int

const (
	KindNull Kind = iota
	KindReference
	KindClassDesc
	KindObject
	KindString
	KindArray
	KindClass
	KindBlockData
	KindEndBlockData
	KindReset
	KindBlockDataLong
	KindException
	KindLongString
	KindProxyClassDesc
	KindEnum

	kindCount
)

var kindNames = [kindCount]string{
	KindNull:           "Null",
	KindReference:      "Reference",
	KindClassDesc:      "ClassDesc",
	KindObject:         "Object",
	KindString:         "String",
	KindArray:          "Array",
	KindClass:          "Class",
	KindBlockData:      "BlockData",
	KindEndBlockData:   "EndBlockData",
	KindReset:          "Reset",
	KindBlockDataLong:  "BlockDataLong",
	KindException:      "Exception",
	KindLongString:     "LongString",
	KindProxyClassDesc: "ProxyClassDesc",
	KindEnum:           "Enum",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Unknown"
	}
	return kindNames[k]
}

// typeCodeBase is subtracted from a content item's leading byte to get
// its Kind.
const typeCodeBase uint8 = 0x70

// kindSet builds an allow-list for the content() call site restriction.
func kindSet(kinds ...Kind) map[Kind]bool {
	s := make(map[Kind]bool, len(kinds))
	for _, k := range kinds {
		s[k] = true
	}
	return s
}

// classDescKinds is the allow-list at a class-descriptor position: a
// plain descriptor, a proxy descriptor, null, or a back-reference.
var classDescKinds = kindSet(KindClassDesc, KindProxyClassDesc, KindNull, KindReference)

// Parser holds the cursor, handle table, and configuration for decoding
// one stream. It is single-use: construct one per buffer.
type Parser struct {
	cur                *byteCursor
	handles            handleTable
	maxDataBlockSize   int
	cycleReferenceValue Value
	postProcs          map[string]PostProcessor
}

// defaultMaxDataBlockSize bounds block-data reads absent an explicit
// SetMaxDataBlockSize call, guarding against a corrupt or hostile length
// prefix forcing an enormous allocation.
const defaultMaxDataBlockSize = 64 << 20

// NewParser constructs a Parser over buf using the default postprocessor
// registry.
func NewParser(buf []byte) *Parser {
	return &Parser{
		cur:              newByteCursor(buf),
		maxDataBlockSize: defaultMaxDataBlockSize,
		postProcs:        defaultPostProcessors(),
	}
}

// SetMaxDataBlockSize bounds the size of any single BlockData/BlockDataLong
// read. The default is generous; lower it when parsing untrusted input of
// known bounded size.
func (p *Parser) SetMaxDataBlockSize(n int) { p.maxDataBlockSize = n }

// SetCycleReferenceValue sets the value substituted for a Reference whose
// target handle slot is still an unfilled placeholder (a true cycle, as
// opposed to an ordinary forward reference to an already-assigned
// value). The default is nil.
func (p *Parser) SetCycleReferenceValue(v Value) { p.cycleReferenceValue = v }

// RegisterPostProcessor adds or overrides a processor for (className,
// serialVersionUID). uid must be exactly 16 hex characters.
func (p *Parser) RegisterPostProcessor(className, uid string, fn PostProcessor) error {
	if len(uid) != 16 {
		return errors.Errorf("postprocessor uid must be 16 hex characters, got %q", uid)
	}
	if p.postProcs == nil {
		p.postProcs = make(map[string]PostProcessor)
	}
	p.postProcs[className+"@"+uid] = fn
	return nil
}

// Parse decodes buf as a Java Object Serialization Stream (protocol
// version 5) and returns its top-level sequence of values.
func Parse(buf []byte) ([]Value, error) {
	return NewParser(buf).Parse()
}

// Parse runs the stream entry point (§4.10): validates the 4-byte
// prologue, then decodes content items until the buffer is exhausted.
func (p *Parser) Parse() ([]Value, error) {
	if err := p.magic(); err != nil {
		return nil, err
	}
	if err := p.version(); err != nil {
		return nil, err
	}

	var out []Value
	for !p.cur.atEnd() {
		v, err := p.content(nil)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

const magicNumber uint16 = 0xACED
const protocolVersion uint16 = 5

func (p *Parser) magic() error {
	v, err := p.cur.u16be()
	if err != nil {
		return p.newDecodeError(ErrPrematureEndOfInput, "error reading magic", err)
	}
	if v != magicNumber {
		return p.newDecodeError(ErrBadMagic, "magic number not found", nil)
	}
	return nil
}

func (p *Parser) version() error {
	v, err := p.cur.u16be()
	if err != nil {
		return p.newDecodeError(ErrPrematureEndOfInput, "error reading version", err)
	}
	if v != protocolVersion {
		return p.newDecodeError(ErrUnsupportedVersion, "protocol version not recognized", nil)
	}
	return nil
}

// content reads and dispatches one content item. allowed, if non-nil,
// restricts which kinds may legally appear at this call site.
func (p *Parser) content(allowed map[Kind]bool) (Value, error) {
	raw, err := p.cur.u8()
	if err != nil {
		return nil, p.newDecodeError(ErrPrematureEndOfInput, "error reading type code", err)
	}

	code := raw - typeCodeBase
	if code >= uint8(kindCount) {
		return nil, p.newDecodeError(ErrUnknownTypeCode, "unknown type code", errors.Errorf("%#x", raw))
	}
	kind := Kind(code)

	if allowed != nil && !allowed[kind] {
		return nil, p.newDecodeError(ErrDisallowedContent, kind.String()+" not allowed here", nil)
	}

	switch kind {
	case KindNull:
		return nil, nil
	case KindReference:
		return p.parseReference()
	case KindClassDesc:
		return p.parseClassDesc()
	case KindObject:
		return p.parseObject()
	case KindString:
		return p.parseString()
	case KindArray:
		return p.parseArray()
	case KindClass:
		return p.parseClass()
	case KindBlockData:
		return p.parseBlockData()
	case KindEndBlockData:
		return EndBlock, nil
	case KindReset, KindException, KindProxyClassDesc:
		return nil, p.newDecodeError(ErrUnsupported, "parsing "+kind.String()+" is currently not supported", nil)
	case KindBlockDataLong:
		return p.parseBlockDataLong()
	case KindLongString:
		return p.parseLongString()
	case KindEnum:
		return p.parseEnum()
	default:
		return nil, p.newDecodeError(ErrUnknownTypeCode, "unknown type code", nil)
	}
}

// annotations reads content items until an EndBlock sentinel is
// returned; the sentinel is consumed but not included in the result.
func (p *Parser) annotations() ([]Value, error) {
	var anns []Value
	for {
		v, err := p.content(nil)
		if err != nil {
			return nil, errors.Wrap(err, "error reading class annotation")
		}
		if v == EndBlock {
			return anns, nil
		}
		anns = append(anns, v)
	}
}

func (p *Parser) parseReference() (Value, error) {
	raw, err := p.cur.i32be()
	if err != nil {
		return nil, p.newDecodeError(ErrPrematureEndOfInput, "error reading reference index", err)
	}
	idx := int(raw) - handleBase
	v, ok := p.handles.get(idx)
	if !ok {
		return nil, p.newDecodeError(ErrInvalidHandle, "reference to an unallocated handle", nil)
	}
	if v == nil {
		// The slot was reserved (deferred) but not yet assigned: a true
		// cycle, as opposed to an ordinary forward reference.
		return p.cycleReferenceValue, nil
	}
	return v, nil
}

func (p *Parser) parseString() (Value, error) {
	s, err := p.cur.utfShort()
	if err != nil {
		return nil, p.newDecodeError(ErrPrematureEndOfInput, "error parsing string", err)
	}
	return p.handles.append(s), nil
}

func (p *Parser) parseLongString() (Value, error) {
	s, err := p.cur.utfLong()
	if err != nil {
		if errors.Cause(err) == errLongStringOverflow {
			return nil, p.newDecodeError(ErrLongStringOverflow, "error parsing long string", err)
		}
		return nil, p.newDecodeError(ErrPrematureEndOfInput, "error parsing long string", err)
	}
	return p.handles.append(s), nil
}

func (p *Parser) parseClass() (Value, error) {
	cls, err := p.classDesc()
	if err != nil {
		return nil, errors.Wrap(err, "error parsing class")
	}
	return p.handles.append(cls), nil
}

func (p *Parser) parseBlockData() (Value, error) {
	n, err := p.cur.u8()
	if err != nil {
		return nil, p.newDecodeError(ErrPrematureEndOfInput, "error parsing block data size", err)
	}
	if int(n) > p.maxDataBlockSize {
		return nil, p.newDecodeError(ErrPrematureEndOfInput, "block data exceeds configured maximum; use SetMaxDataBlockSize to raise it", nil)
	}
	b, err := p.cur.slice(int(n))
	if err != nil {
		return nil, p.newDecodeError(ErrPrematureEndOfInput, "error parsing block data", err)
	}
	return Bytes(b), nil
}

func (p *Parser) parseBlockDataLong() (Value, error) {
	n, err := p.cur.u32be()
	if err != nil {
		return nil, p.newDecodeError(ErrPrematureEndOfInput, "error parsing block data long size", err)
	}
	if int(n) > p.maxDataBlockSize {
		return nil, p.newDecodeError(ErrPrematureEndOfInput, "block data exceeds configured maximum; use SetMaxDataBlockSize to raise it", nil)
	}
	b, err := p.cur.slice(int(n))
	if err != nil {
		return nil, p.newDecodeError(ErrPrematureEndOfInput, "error parsing block data long", err)
	}
	return Bytes(b), nil
}
