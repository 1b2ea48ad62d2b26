package ast

import (
	"github.com/tessel-lang/tessel/frontend/types"
)

// CallKind distinguishes the apply forms. Self-apply forms bind the
// argument as the instance context of the callee.
type CallKind uint8

const (
	CallNormal CallKind = iota
	// CallBinary and the unary kinds are operator applications
	CallBinary
	CallPrefixUnary
	CallPostfixUnary
	// CallDotSyntax binds a method to its receiver: the fn is the member
	// reference and the arg the base
	CallDotSyntax
	// CallConstructorRef binds a constructor to its metatype base
	CallConstructorRef
)

// IsSelfApply reports whether the call's argument is the instance context
// rather than an ordinary argument tuple.
func (k CallKind) IsSelfApply() bool {
	return k == CallDotSyntax || k == CallConstructorRef
}

// Call is every application form: f(x), a + b, receiver.method,
// Type.init. The kind tells the argument's role.
type Call struct {
	exprBase
	Fn   Expr
	Arg  Expr
	Kind CallKind
}

func NewCall(fn Expr, arg Expr, kind CallKind) *Call {
	r := Range{PosStart: fn.Pos(), PosEnd: arg.End()}
	if kind.IsSelfApply() {
		r = Range{PosStart: arg.Pos(), PosEnd: fn.End()}
	}
	return &Call{exprBase: base(r, nil), Fn: fn, Arg: arg, Kind: kind}
}

// Paren is a parenthesized subexpression, kept for source fidelity.
type Paren struct {
	exprBase
	Sub Expr
}

func NewParen(r Range, sub Expr) *Paren {
	return &Paren{exprBase: base(r, sub.Type()), Sub: sub}
}

// TupleExpr is a literal tuple (a, b: x).
type TupleExpr struct {
	exprBase
	Elems []Expr
	// Names holds the written label of each element, "" when unlabelled;
	// nil when no element is labelled
	Names []string
}

func NewTupleExpr(r Range, elems []Expr, names []string) *TupleExpr {
	return &TupleExpr{exprBase: base(r, nil), Elems: elems, Names: names}
}

func (e *TupleExpr) NameAt(i int) string {
	if e.Names == nil || i >= len(e.Names) {
		return ""
	}
	return e.Names[i]
}

// If is the ternary conditional c ? a : b.
type If struct {
	exprBase
	Cond Expr
	Then Expr
	Else Expr
}

func NewIf(r Range, cond, then, els Expr) *If {
	return &If{exprBase: base(r, nil), Cond: cond, Then: then, Else: els}
}

// Assign writes Src into the lvalue Dest.
type Assign struct {
	exprBase
	Dest Expr
	Src  Expr
}

func NewAssign(dest, src Expr) *Assign {
	r := Range{PosStart: dest.Pos(), PosEnd: src.End()}
	return &Assign{exprBase: base(r, nil), Dest: dest, Src: src}
}

// DiscardAssignment is the `_` pattern; legal only on the left of an
// assignment.
type DiscardAssignment struct {
	exprBase
}

func NewDiscardAssignment(r Range) *DiscardAssignment {
	return &DiscardAssignment{exprBase: base(r, nil)}
}

// ParamPattern is the parameter list of a closure, with the names written
// and the tuple type they bind at.
type ParamPattern struct {
	Range
	Names []string
	Ty    types.Type
}

func (p *ParamPattern) SetType(t types.Type) { p.Ty = t }

// Closure is a closure literal. Single-expression closures carry their
// body; others are checked by the type checker after application.
type Closure struct {
	exprBase
	Params *ParamPattern
	Body   Expr
	// SingleExpr is set when Body is the closure's one expression
	SingleExpr bool
	// DC is the closure's own declaration context
	DC *types.DeclContext
	// Captures is computed once the body is final
	Captures []*types.ValueDecl
}

func NewClosure(r Range, params *ParamPattern, body Expr, singleExpr bool, dc *types.DeclContext) *Closure {
	return &Closure{exprBase: base(r, nil), Params: params, Body: body, SingleExpr: singleExpr, DC: dc}
}

// ImplicitClosure wraps an expression in a nullary closure, produced when
// coercing to an autoclosure parameter.
type ImplicitClosure struct {
	exprBase
	Body Expr
	// DC is the enclosing declaration context the closure captures from
	DC       *types.DeclContext
	Captures []*types.ValueDecl
}

func NewImplicitClosure(body Expr, ty types.Type, dc *types.DeclContext) *ImplicitClosure {
	e := &ImplicitClosure{exprBase: base(RangeOf(body), ty), Body: body, DC: dc}
	e.SetImplicit()
	return e
}

// AddressOf is &x.
type AddressOf struct {
	exprBase
	Sub Expr
}

func NewAddressOf(r Range, sub Expr) *AddressOf {
	return &AddressOf{exprBase: base(r, nil), Sub: sub}
}
