package ast

import (
	"github.com/tessel-lang/tessel/frontend/types"
)

// IntegerLiteral is an integer literal. Before application its type is a
// type variable; application retypes it to the builtin argument type and
// wraps it in the conversion calls.
type IntegerLiteral struct {
	exprBase
	Text string
}

func NewIntegerLiteral(r Range, text string, ty types.Type) *IntegerLiteral {
	return &IntegerLiteral{exprBase: base(r, ty), Text: text}
}

type FloatLiteral struct {
	exprBase
	Text string
}

func NewFloatLiteral(r Range, text string, ty types.Type) *FloatLiteral {
	return &FloatLiteral{exprBase: base(r, ty), Text: text}
}

type CharacterLiteral struct {
	exprBase
	Value rune
}

func NewCharacterLiteral(r Range, value rune, ty types.Type) *CharacterLiteral {
	return &CharacterLiteral{exprBase: base(r, ty), Value: value}
}

type StringLiteral struct {
	exprBase
	Value string
}

func NewStringLiteral(r Range, value string, ty types.Type) *StringLiteral {
	return &StringLiteral{exprBase: base(r, ty), Value: value}
}

// InterpolatedStringLiteral holds the literal's segments; application
// records the built conversion call as the semantic form.
type InterpolatedStringLiteral struct {
	exprBase
	Segments []Expr
	Semantic Expr
}

func NewInterpolatedStringLiteral(r Range, segments []Expr) *InterpolatedStringLiteral {
	return &InterpolatedStringLiteral{exprBase: base(r, nil), Segments: segments}
}

type MagicKind uint8

const (
	MagicFile MagicKind = iota
	MagicLine
	MagicColumn
)

func (k MagicKind) String() string {
	switch k {
	case MagicFile:
		return "#file"
	case MagicLine:
		return "#line"
	case MagicColumn:
		return "#column"
	}
	return "#unknown"
}

// MagicIdentifierLiteral is #file, #line or #column; it reduces to a string
// or integer literal conversion at its own source location.
type MagicIdentifierLiteral struct {
	exprBase
	Kind MagicKind
}

func NewMagicIdentifierLiteral(r Range, kind MagicKind) *MagicIdentifierLiteral {
	return &MagicIdentifierLiteral{exprBase: base(r, nil), Kind: kind}
}

// ArrayLiteral is [a, b, c]; Sub is the element tuple, Semantic the
// conversion call application builds.
type ArrayLiteral struct {
	exprBase
	Sub      Expr
	Semantic Expr
}

func NewArrayLiteral(r Range, sub Expr) *ArrayLiteral {
	return &ArrayLiteral{exprBase: base(r, nil), Sub: sub}
}

// DictionaryLiteral is [k1: v1, k2: v2]; Sub is the tuple of key-value
// tuples.
type DictionaryLiteral struct {
	exprBase
	Sub      Expr
	Semantic Expr
}

func NewDictionaryLiteral(r Range, sub Expr) *DictionaryLiteral {
	return &DictionaryLiteral{exprBase: base(r, nil), Sub: sub}
}

// NewArray allocates an array of computed bound: new T[n]. Application
// resolves the injection function and the per-element construction.
type NewArray struct {
	exprBase
	// Bound computes the number of elements
	Bound Expr
	// ElementTy is the declared element type
	ElementTy types.Type
	// InjectionFn turns the raw buffer into a slice value
	InjectionFn Expr
	// ConstructionFn builds one element; either user-supplied or a
	// zero value of the innermost element type synthesized during
	// application
	ConstructionFn Expr
}

func NewNewArray(r Range, bound Expr, elementTy types.Type, constructionFn Expr) *NewArray {
	return &NewArray{exprBase: base(r, nil), Bound: bound, ElementTy: elementTy, ConstructionFn: constructionFn}
}
