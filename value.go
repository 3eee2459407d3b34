package javaser

import "encoding/json"

// Value is the language-neutral decoded value: nil (null), bool, int8,
// int16, int32, int64 (kept distinct from the 32-bit cases), float32,
// float64, string (scalars and single-code-unit chars alike), Bytes
// (opaque block data), *ClassDesc, *ObjectDesc, *ArrayDesc,
// EnumConstant, List, Set, Assoc, EnumAssoc, time.Time (from the Date and
// Calendar postprocessors), or the EndBlock sentinel.
type Value = interface{}

// Bytes is an opaque, immutable view of block-data read from the stream.
// It may alias the original input buffer; callers that need to retain it
// past the lifetime of that buffer should copy it.
type Bytes []byte

// endBlockT is the in-memory sentinel returned for an EndBlockData
// content item. It is never exposed in a parse result's top-level
// sequence; it only terminates annotation reads.
type endBlockT struct{}

// EndBlock is the distinguished end-of-block marker.
var EndBlock = endBlockT{}

func (endBlockT) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

// FieldDesc describes one member of a class: its wire type code, its
// name, and — for L (object reference) and [ (array reference) fields —
// the declared nested type signature.
type FieldDesc struct {
	Type      byte
	Name      string
	ClassName string
}

// ClassDesc represents one class in a descriptor chain, root-to-oldest
// ancestor via Super.
type ClassDesc struct {
	Name             string
	SerialVersionUID string
	Flags            byte
	IsEnum           bool
	Fields           []FieldDesc
	Annotations      []Value
	Super            *ClassDesc
}

func (c *ClassDesc) MarshalJSON() ([]byte, error) {
	if c == nil {
		return []byte("null"), nil
	}
	return json.Marshal(struct {
		Name             string `json:"name"`
		SerialVersionUID string `json:"serialVersionUID"`
		IsEnum           bool   `json:"isEnum"`
		Super            *ClassDesc `json:"super,omitempty"`
	}{c.Name, c.SerialVersionUID, c.IsEnum, c.Super})
}

// ObjectDesc is a materialized instance: the most-derived ClassDesc, the
// per-ancestor field groups, and the flattened (ancestor-first,
// most-derived-wins) field projection.
type ObjectDesc struct {
	Class   *ClassDesc
	Extends map[string]map[string]Value
	Fields  map[string]Value
}

func newObjectDesc(cls *ClassDesc) *ObjectDesc {
	return &ObjectDesc{
		Class:   cls,
		Extends: make(map[string]map[string]Value),
		Fields:  make(map[string]Value),
	}
}

func (o *ObjectDesc) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Class   *ClassDesc             `json:"class"`
		Extends map[string]map[string]Value `json:"extends"`
		Fields  map[string]Value       `json:"fields"`
	}{o.Class, o.Extends, o.Fields})
}

// ArrayDesc is an ordered sequence of values read from a typed Java
// array, plus the class descriptor it was read under. Extends is always
// empty for arrays; it is omitted here rather than carried as dead
// weight on every element.
type ArrayDesc struct {
	Class *ClassDesc
	Items []Value
}

func (a *ArrayDesc) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Class *ClassDesc `json:"class"`
		Items []Value    `json:"items"`
	}{a.Class, a.Items})
}

// EnumConstant carries an enum's textual constant plus the class
// descriptor it belongs to. It is equal-by-value to a bare string via
// Equal, but never compares type-identical to one.
type EnumConstant struct {
	Class *ClassDesc
	Name  string
}

// Equal reports whether other is either the same constant name as a bare
// string or another EnumConstant with the same name.
func (e EnumConstant) Equal(other Value) bool {
	switch v := other.(type) {
	case string:
		return v == e.Name
	case EnumConstant:
		return v.Name == e.Name
	default:
		return false
	}
}

func (e EnumConstant) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Name)
}

// String reports the bare constant name, matching how the teacher's
// unwrapped enum values stringify when used as a map key (fmt.Sprint
// checks fmt.Stringer before falling back to struct formatting).
func (e EnumConstant) String() string { return e.Name }

// List is the structured semantic value a PostProcessor produces for an
// ordered container (ArrayList, ArrayDeque, and the like).
type List []Value

// Set is the structured semantic value a PostProcessor produces for
// HashSet. Java's HashSet has no defined iteration order; this preserves
// wire order, which is what the serializing JVM actually emitted.
type Set []Value

// Assoc is the structured semantic value a PostProcessor produces for a
// key/value container (HashMap, Hashtable). Keys are stringified with
// fmt.Sprint the way the teacher implementation does, since the wire
// format carries keys as arbitrary values, not just strings.
type Assoc map[string]Value

// EnumAssoc is the structured semantic value for EnumMap: like Assoc,
// but keyed by enum constant name.
type EnumAssoc map[string]Value
