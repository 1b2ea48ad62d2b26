// Package ast holds the expression tree the application stage rewrites.
// Nodes are allocated once and referenced by shared pointers; rewrites set
// type and child fields in place or return replacement nodes, but never
// free. Node identity is pointer identity.
package ast

import (
	"go/token"

	"github.com/tessel-lang/tessel/frontend/types"
)

type Positioner interface {
	Pos() token.Pos // position of first character belonging to the node
	End() token.Pos // position of first character immediately after the node
}

// Range is a half-open source range
type Range struct {
	PosStart token.Pos
	PosEnd   token.Pos
}

func (r Range) Pos() token.Pos { return r.PosStart }
func (r Range) End() token.Pos { return r.PosEnd }

func RangeOf(p Positioner) Range { return Range{PosStart: p.Pos(), PosEnd: p.End()} }

// Expr is implemented by every expression node.
type Expr interface {
	Positioner
	Type() types.Type
	SetType(types.Type)
	IsImplicit() bool
	SetImplicit()
	exprNode()
}

// exprBase carries the fields every node shares.
type exprBase struct {
	Range
	ty       types.Type
	implicit bool
}

func (e *exprBase) Type() types.Type     { return e.ty }
func (e *exprBase) SetType(t types.Type) { e.ty = t }
func (e *exprBase) IsImplicit() bool     { return e.implicit }
func (e *exprBase) SetImplicit()         { e.implicit = true }
func (e *exprBase) exprNode()            {}

func base(r Range, ty types.Type) exprBase { return exprBase{Range: r, ty: ty} }

// Error is a placeholder for an expression that failed to parse or check.
type Error struct {
	exprBase
}

func NewError(r Range) *Error { return &Error{exprBase: base(r, nil)} }

// OpaqueValue stands for an externally supplied value, used when a single
// subexpression must appear in more than one position.
type OpaqueValue struct {
	exprBase
}

func NewOpaqueValue(r Range, ty types.Type) *OpaqueValue {
	return &OpaqueValue{exprBase: base(r, ty)}
}

// ZeroValue is the zero of its type, synthesized by default construction.
type ZeroValue struct {
	exprBase
}

func NewZeroValue(r Range, ty types.Type) *ZeroValue {
	return &ZeroValue{exprBase: base(r, ty)}
}

// DefaultValue wraps an element whose value the callee's declared default
// supplies.
type DefaultValue struct {
	exprBase
	Sub Expr
}

func NewDefaultValue(sub Expr) *DefaultValue {
	return &DefaultValue{exprBase: base(RangeOf(sub), sub.Type()), Sub: sub}
}

// Module names a module used as a value.
type Module struct {
	exprBase
	Decl *types.ModuleDecl
}

func NewModule(r Range, decl *types.ModuleDecl, ty types.Type) *Module {
	return &Module{exprBase: base(r, ty), Decl: decl}
}
