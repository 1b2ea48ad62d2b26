package ast

import (
	"go/token"

	"github.com/tessel-lang/tessel/frontend/types"
)

// UnresolvedDot is base.name before the member has been chosen.
type UnresolvedDot struct {
	exprBase
	Base    Expr
	DotLoc  token.Pos
	Name    string
	NameLoc token.Pos
}

func NewUnresolvedDot(r Range, baseExpr Expr, dotLoc token.Pos, name string, nameLoc token.Pos) *UnresolvedDot {
	return &UnresolvedDot{exprBase: base(r, nil), Base: baseExpr, DotLoc: dotLoc, Name: name, NameLoc: nameLoc}
}

// UnresolvedMember is .name with the base type implied by context.
type UnresolvedMember struct {
	exprBase
	Name    string
	NameLoc token.Pos
}

func NewUnresolvedMember(r Range, name string, nameLoc token.Pos) *UnresolvedMember {
	return &UnresolvedMember{exprBase: base(r, nil), Name: name, NameLoc: nameLoc}
}

// MemberRef is a resolved member access on a concrete base.
type MemberRef struct {
	exprBase
	Base    Expr
	DotLoc  token.Pos
	Decl    *types.ValueDecl
	NameLoc token.Pos
	Subs    []types.Substitution
}

func NewMemberRef(baseExpr Expr, dotLoc token.Pos, decl *types.ValueDecl, nameLoc token.Pos, ty types.Type) *MemberRef {
	r := Range{PosStart: baseExpr.Pos(), PosEnd: nameLoc}
	return &MemberRef{exprBase: base(r, ty), Base: baseExpr, DotLoc: dotLoc, Decl: decl, NameLoc: nameLoc}
}

// ExistentialMemberRef accesses a protocol requirement through an
// existential base.
type ExistentialMemberRef struct {
	exprBase
	Base    Expr
	DotLoc  token.Pos
	Decl    *types.ValueDecl
	NameLoc token.Pos
}

func NewExistentialMemberRef(baseExpr Expr, dotLoc token.Pos, decl *types.ValueDecl, nameLoc token.Pos) *ExistentialMemberRef {
	r := Range{PosStart: baseExpr.Pos(), PosEnd: nameLoc}
	return &ExistentialMemberRef{exprBase: base(r, nil), Base: baseExpr, DotLoc: dotLoc, Decl: decl, NameLoc: nameLoc}
}

// ArchetypeMemberRef accesses a protocol requirement through an archetype
// base.
type ArchetypeMemberRef struct {
	exprBase
	Base    Expr
	DotLoc  token.Pos
	Decl    *types.ValueDecl
	NameLoc token.Pos
}

func NewArchetypeMemberRef(baseExpr Expr, dotLoc token.Pos, decl *types.ValueDecl, nameLoc token.Pos) *ArchetypeMemberRef {
	r := Range{PosStart: baseExpr.Pos(), PosEnd: nameLoc}
	return &ArchetypeMemberRef{exprBase: base(r, nil), Base: baseExpr, DotLoc: dotLoc, Decl: decl, NameLoc: nameLoc}
}

// DynamicMemberRef accesses a member found by dynamic lookup.
type DynamicMemberRef struct {
	exprBase
	Base    Expr
	DotLoc  token.Pos
	Decl    *types.ValueDecl
	NameLoc token.Pos
	Subs    []types.Substitution
}

func NewDynamicMemberRef(baseExpr Expr, dotLoc token.Pos, decl *types.ValueDecl, nameLoc token.Pos) *DynamicMemberRef {
	r := Range{PosStart: baseExpr.Pos(), PosEnd: nameLoc}
	return &DynamicMemberRef{exprBase: base(r, nil), Base: baseExpr, DotLoc: dotLoc, Decl: decl, NameLoc: nameLoc}
}

// DotSyntaxBaseIgnored evaluates the base for effect and yields the
// member: Module.value, Type.staticValue.
type DotSyntaxBaseIgnored struct {
	exprBase
	LHS Expr
	RHS Expr
}

func NewDotSyntaxBaseIgnored(lhs Expr, rhs Expr) *DotSyntaxBaseIgnored {
	r := Range{PosStart: lhs.Pos(), PosEnd: rhs.End()}
	return &DotSyntaxBaseIgnored{exprBase: base(r, rhs.Type()), LHS: lhs, RHS: rhs}
}

// TupleElement projects one field out of a tuple value.
type TupleElement struct {
	exprBase
	Base  Expr
	Index int
}

func NewTupleElement(baseExpr Expr, index int, ty types.Type) *TupleElement {
	return &TupleElement{exprBase: base(RangeOf(baseExpr), ty), Base: baseExpr, Index: index}
}

// Subscript is base[index] through a resolved subscript declaration.
type Subscript struct {
	exprBase
	Base  Expr
	Index Expr
	Decl  *types.ValueDecl
	Subs  []types.Substitution
}

func NewSubscript(baseExpr Expr, index Expr, decl *types.ValueDecl) *Subscript {
	r := Range{PosStart: baseExpr.Pos(), PosEnd: index.End()}
	return &Subscript{exprBase: base(r, nil), Base: baseExpr, Index: index, Decl: decl}
}

// ExistentialSubscript subscripts an existential base.
type ExistentialSubscript struct {
	exprBase
	Base  Expr
	Index Expr
	Decl  *types.ValueDecl
}

func NewExistentialSubscript(baseExpr Expr, index Expr, decl *types.ValueDecl) *ExistentialSubscript {
	r := Range{PosStart: baseExpr.Pos(), PosEnd: index.End()}
	return &ExistentialSubscript{exprBase: base(r, nil), Base: baseExpr, Index: index, Decl: decl}
}

// ArchetypeSubscript subscripts an archetype base.
type ArchetypeSubscript struct {
	exprBase
	Base  Expr
	Index Expr
	Decl  *types.ValueDecl
}

func NewArchetypeSubscript(baseExpr Expr, index Expr, decl *types.ValueDecl) *ArchetypeSubscript {
	r := Range{PosStart: baseExpr.Pos(), PosEnd: index.End()}
	return &ArchetypeSubscript{exprBase: base(r, nil), Base: baseExpr, Index: index, Decl: decl}
}

// DynamicSubscript subscripts a dynamic-lookup base.
type DynamicSubscript struct {
	exprBase
	Base  Expr
	Index Expr
	Decl  *types.ValueDecl
}

func NewDynamicSubscript(baseExpr Expr, index Expr, decl *types.ValueDecl) *DynamicSubscript {
	r := Range{PosStart: baseExpr.Pos(), PosEnd: index.End()}
	return &DynamicSubscript{exprBase: base(r, nil), Base: baseExpr, Index: index, Decl: decl}
}
