package ast

import (
	"go/token"

	"github.com/tessel-lang/tessel/frontend/types"
)

// DeclRef is a resolved reference to a value declaration. Specialized
// references carry the encoded substitution list.
type DeclRef struct {
	exprBase
	Decl *types.ValueDecl
	Subs []types.Substitution
}

func NewDeclRef(r Range, decl *types.ValueDecl, ty types.Type) *DeclRef {
	return &DeclRef{exprBase: base(r, ty), Decl: decl}
}

// OverloadedDeclRef is an unresolved reference to an overload set; the
// solver's overload choice for its locator selects the declaration.
type OverloadedDeclRef struct {
	exprBase
	Name  string
	Decls []*types.ValueDecl
}

func NewOverloadedDeclRef(r Range, name string, decls []*types.ValueDecl) *OverloadedDeclRef {
	return &OverloadedDeclRef{exprBase: base(r, nil), Name: name, Decls: decls}
}

// Specialize applies explicit generic arguments to a polymorphic
// reference: ref<T1, T2>.
type Specialize struct {
	exprBase
	Sub Expr
	// SubstTy is the substituted (monomorphic) type
	SubstTy types.Type
	Subs    []types.Substitution
}

func NewSpecialize(sub Expr, substTy types.Type, subs []types.Substitution) *Specialize {
	e := &Specialize{exprBase: base(RangeOf(sub), substTy), Sub: sub, SubstTy: substTy, Subs: subs}
	e.SetImplicit()
	return e
}

// MetatypeLiteral refers to a type used as a value. When WrittenTy is set
// the node was spelled with an explicit type and its base is nil.
type MetatypeLiteral struct {
	exprBase
	Base      Expr
	WrittenTy types.Type
}

func NewMetatypeLiteral(r Range, baseExpr Expr, writtenTy types.Type) *MetatypeLiteral {
	return &MetatypeLiteral{exprBase: base(r, nil), Base: baseExpr, WrittenTy: writtenTy}
}

// TypeOfLoc is a helper for building implicit references at a position.
func TypeOfLoc(pos token.Pos) Range { return Range{PosStart: pos, PosEnd: pos} }
