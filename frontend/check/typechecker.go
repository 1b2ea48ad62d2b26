// Package check is the slice of the type checker the application stage
// calls back into: reference building, rvalue coercion, conformance and
// member lookup, and cast classification. Full expression checking is
// behind the ExprChecker hook, wired by the embedding compiler.
package check

import (
	"github.com/tessel-lang/tessel/frontend/ast"
	"github.com/tessel-lang/tessel/frontend/ilerr"
	"github.com/tessel-lang/tessel/frontend/locator"
	"github.com/tessel-lang/tessel/frontend/stdnames"
	"github.com/tessel-lang/tessel/frontend/types"
)

// ExprChecker type-checks expressions the application stage synthesizes
// (caller-side default literals, array construction functions) and closure
// bodies that are not single expressions.
type ExprChecker interface {
	// TypeCheckExpression checks expr against contextTy and returns the
	// (possibly replaced) expression
	TypeCheckExpression(expr ast.Expr, dc *types.DeclContext, contextTy types.Type, discarded bool) (ast.Expr, bool)
	TypeCheckClosureBody(closure *ast.Closure) bool
}

type TypeChecker struct {
	Universe *types.Universe
	Names    *stdnames.Registry
	Diags    *ilerr.Errors
	Locators *locator.Table

	// ExprCheck is installed by the embedding compiler; see
	// apply.StandaloneChecker for the self-contained form
	ExprCheck ExprChecker
}

func NewTypeChecker(u *types.Universe, names *stdnames.Registry) *TypeChecker {
	return &TypeChecker{
		Universe: u,
		Names:    names,
		Diags:    &ilerr.Errors{},
		Locators: locator.NewTable(),
	}
}

// ConformsToProtocol looks up the conformance of ty to proto.
func (tc *TypeChecker) ConformsToProtocol(ty types.Type, proto *types.ProtocolDecl) (*types.Conformance, bool) {
	if proto == nil {
		return nil, false
	}
	return tc.Universe.ConformanceFor(ty, proto)
}

// Protocol returns the stdlib protocol with the given role, or nil.
func (tc *TypeChecker) Protocol(kind types.KnownProtocolKind) *types.ProtocolDecl {
	return tc.Universe.Protocol(kind)
}

// DefaultLiteralType is the type a literal constrained only by proto
// defaults to.
func (tc *TypeChecker) DefaultLiteralType(proto *types.ProtocolDecl) types.Type {
	return tc.Universe.DefaultLiteralType(proto)
}

// CoerceToRValue loads e when it is an lvalue.
func (tc *TypeChecker) CoerceToRValue(e ast.Expr) ast.Expr {
	if lv, ok := e.Type().(*types.LValue); ok {
		return ast.NewLoad(e, lv.Object)
	}
	return e
}

// CoerceToMaterializable requalifies a non-default lvalue so it can be
// stored; rvalues and default lvalues pass through.
func (tc *TypeChecker) CoerceToMaterializable(e ast.Expr) ast.Expr {
	lv, ok := e.Type().(*types.LValue)
	if !ok || lv.Quals == types.QualDefaultForMemberAccess {
		return e
	}
	return ast.NewRequalify(e, &types.LValue{Object: lv.Object, Quals: types.QualDefaultForMemberAccess})
}

// UnopenedTypeOfReference is the type a bare reference to decl has:
// variables are referenced as lvalues.
func (tc *TypeChecker) UnopenedTypeOfReference(decl *types.ValueDecl) types.Type {
	if decl.Kind == types.DeclVar {
		if _, ok := decl.Ty.(*types.LValue); !ok {
			return &types.LValue{Object: decl.Ty, Quals: types.QualDefaultForMemberAccess}
		}
	}
	return decl.Ty
}

// BuildCheckedRefExpr builds a typed reference to decl.
func (tc *TypeChecker) BuildCheckedRefExpr(decl *types.ValueDecl, r ast.Range, implicit bool) *ast.DeclRef {
	ref := ast.NewDeclRef(r, decl, tc.UnopenedTypeOfReference(decl))
	if implicit {
		ref.SetImplicit()
	}
	return ref
}

// BuildRefExpr builds a reference with a known type.
func (tc *TypeChecker) BuildRefExpr(decl *types.ValueDecl, r ast.Range, ty types.Type, implicit bool) *ast.DeclRef {
	ref := ast.NewDeclRef(r, decl, ty)
	if implicit {
		ref.SetImplicit()
	}
	return ref
}

// BuildSpecializeExpr wraps a polymorphic reference with its substitutions.
func (tc *TypeChecker) BuildSpecializeExpr(ref ast.Expr, substTy types.Type, subs []types.Substitution) *ast.Specialize {
	return ast.NewSpecialize(ref, substTy, subs)
}

// BuildArrayInjectionFnRef builds a reference to the function that turns a
// raw buffer of boundTy elements into sliceTy.
func (tc *TypeChecker) BuildArrayInjectionFnRef(dc *types.DeclContext, sliceTy *types.Slice, boundTy types.Type, r ast.Range) *ast.DeclRef {
	fnTy := &types.Func{
		In:  types.ScalarFields(&types.BuiltinRawPointer{}, tc.Universe.WordInt),
		Out: sliceTy,
	}
	decl := &types.ValueDecl{
		Name:       "injectIntoSlice",
		Kind:       types.DeclFunc,
		Ty:         fnTy,
		ArgClauses: 1,
	}
	ref := ast.NewDeclRef(r, decl, fnTy)
	ref.SetImplicit()
	return ref
}

// LookupMember finds the named member of ty's nominal declaration, or of
// a protocol's requirements for existential and archetype bases.
func (tc *TypeChecker) LookupMember(ty types.Type, name string, dc *types.DeclContext) *types.ValueDecl {
	switch t := types.Canonical(ty).(type) {
	case *types.Existential:
		for _, proto := range t.Protocols {
			if req := proto.Requirement(name); req != nil {
				return req
			}
		}
	case *types.Archetype:
		for _, proto := range t.Conforms {
			if req := proto.Requirement(name); req != nil {
				return req
			}
		}
	default:
		if decl := types.NominalDeclOf(ty); decl != nil {
			return decl.Member(name)
		}
	}
	return nil
}

// ResolveTypeInContext is the type a type declaration denotes when named
// inside dc.
func (tc *TypeChecker) ResolveTypeInContext(decl *types.TypeDecl, dc *types.DeclContext, specialized bool) types.Type {
	return decl.DeclaredType()
}

// RequireOptionalIntrinsics verifies the universe declares the optional
// machinery; the stdlib not declaring it is a broken-protocol condition.
func (tc *TypeChecker) RequireOptionalIntrinsics(at ast.Positioner) bool {
	if tc.Universe.OptionalDecl == nil {
		tc.Diags = tc.Diags.With(ilerr.New(ilerr.NewBrokenProtocol{
			Positioner: at, Protocol: "Optional",
		}))
		return false
	}
	return true
}

// TypeCheckExpression delegates to the installed ExprChecker.
func (tc *TypeChecker) TypeCheckExpression(expr ast.Expr, dc *types.DeclContext, contextTy types.Type, discarded bool) (ast.Expr, bool) {
	if tc.ExprCheck == nil {
		return nil, false
	}
	return tc.ExprCheck.TypeCheckExpression(expr, dc, contextTy, discarded)
}

// TypeCheckClosureBody delegates to the installed ExprChecker.
func (tc *TypeChecker) TypeCheckClosureBody(closure *ast.Closure) bool {
	if tc.ExprCheck == nil {
		return false
	}
	return tc.ExprCheck.TypeCheckClosureBody(closure)
}

// ComputeCaptures records the outside declarations a closure body
// references.
func (tc *TypeChecker) ComputeCaptures(body ast.Expr, dc *types.DeclContext) []*types.ValueDecl {
	var captures []*types.ValueDecl
	seen := make(map[*types.ValueDecl]bool)
	ast.Walk(body, func(e ast.Expr) bool {
		ref, ok := e.(*ast.DeclRef)
		if !ok || ref.Decl.Kind != types.DeclVar {
			return true
		}
		if ref.Decl.Context == dc || seen[ref.Decl] {
			return true
		}
		seen[ref.Decl] = true
		captures = append(captures, ref.Decl)
		return true
	})
	return captures
}
