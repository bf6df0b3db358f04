package template

// Value is the parser-produced form of a resource property before any
// type-directed interpretation. It is a closed sum: the only implementations
// live in this package, so dispatch sites can type-switch exhaustively.
//
// Plain document shapes (null, bool, number, string, sequence, mapping) and
// the intrinsic-function forms (Ref, Fn::If, Fn::Join, Fn::GetAtt,
// Fn::FindInMap, Fn::Sub) are separate variants; an intrinsic is never
// represented as a plain mapping once parsed.
type Value interface {
	isValue()
}

// Null is an explicit null literal.
type Null struct{}

// Bool is a boolean literal.
type Bool bool

// Long is an integer literal.
type Long int64

// Double is a floating-point literal. CloudFormation documents carry plain
// numbers; integers and floats are kept apart so translation never truncates.
type Double float64

// String is a string literal.
type String string

// Sequence is an ordered list of values.
type Sequence []Value

// Mapping is a plain key/value object. Intrinsic forms are recognized during
// parsing and never appear as a Mapping.
type Mapping map[string]Value

// Ref is the Ref intrinsic: a bare symbol naming a pseudo-parameter,
// template parameter, or another resource's logical ID.
type Ref string

// If is the Fn::If intrinsic. Predicate must resolve to a condition name
// (a plain string); that shape is enforced during translation, not parsing.
type If struct {
	Predicate Value
	WhenTrue  Value
	WhenFalse Value
}

// Join is the Fn::Join intrinsic. The first element is the separator, the
// rest are the operands; a Join holding only a separator is legal.
type Join []Value

// GetAtt is the Fn::GetAtt intrinsic. Both operands must resolve to plain
// strings; attribute paths are opaque and never contain nested intrinsics.
type GetAtt struct {
	LogicalName Value
	Attribute   Value
}

// FindInMap is the Fn::FindInMap intrinsic. All three operands may be
// arbitrary expressions, including nested intrinsics.
type FindInMap struct {
	MapName   Value
	TopKey    Value
	SecondKey Value
}

// Sub is the Fn::Sub intrinsic. The first element is the substitution
// template string, any further elements are override objects.
type Sub []Value

func (Null) isValue()      {}
func (Bool) isValue()      {}
func (Long) isValue()      {}
func (Double) isValue()    {}
func (String) isValue()    {}
func (Sequence) isValue()  {}
func (Mapping) isValue()   {}
func (Ref) isValue()       {}
func (If) isValue()        {}
func (Join) isValue()      {}
func (GetAtt) isValue()    {}
func (FindInMap) isValue() {}
func (Sub) isValue()       {}
