package apply

import (
	"go/token"

	"github.com/tessel-lang/tessel/frontend/ast"
	"github.com/tessel-lang/tessel/frontend/locator"
	"github.com/tessel-lang/tessel/frontend/solve"
	"github.com/tessel-lang/tessel/frontend/types"
)

var memberLogger = logger.With("section", "apply.member")

// buildMemberRef constructs a fully typed member access from a base
// expression and the declaration the solver selected, dispatching on the
// member's container: protocol requirements through archetypes and
// existentials, members of generic owners with base-conversion
// substitutions, plain members otherwise.
func (rw *Rewriter) buildMemberRef(base ast.Expr, dotLoc token.Pos, member *types.ValueDecl,
	nameLoc token.Pos, openedType types.Type, b locator.Builder, implicit bool) ast.Expr {

	baseTy := types.RValue(base.Type())
	baseIsInstance := true
	if meta, ok := types.Canonical(baseTy).(*types.Metatype); ok {
		baseIsInstance = false
		baseTy = meta.Instance
	}

	memberLogger.Debug("building member reference", "member", member.Name, "base", baseTy)

	// protocol requirement through an archetype or existential base
	if proto := member.Context.OwnerProtocolDecl(); proto != nil {
		if isArchetypeOrExistential(baseTy) {
			if member.IsInstanceMember() {
				base = rw.coerceObjectArgumentToType(base, baseTy, b.With(locator.Elem(locator.MemberRefBase)))
			} else {
				base = rw.tc.CoerceToRValue(base)
			}
			if base == nil {
				return nil
			}

			var result ast.Expr
			if types.IsExistential(baseTy) {
				ref := ast.NewExistentialMemberRef(base, dotLoc, member, nameLoc)
				result = ref
			} else {
				ref := ast.NewArchetypeMemberRef(base, dotLoc, member, nameLoc)
				result = ref
			}
			if implicit || base.IsImplicit() {
				result.SetImplicit()
			}

			refTy := rw.simplifyType(openedType)
			result.SetType(refTy)

			// a polymorphic result must be specialized before use
			if poly, ok := types.Canonical(refTy).(*types.PolyFunc); ok {
				return rw.specialize(result, poly, openedType)
			}
			return result
		}
	}

	ownerDecl := member.Context.OwnerTypeDecl()

	// member of an unspecialized generic owner: substitute the signature
	// through the base conversion
	if ownerDecl != nil && ownerDecl.Generic != nil {
		m := rw.baseConversionSubs(ownerDecl, baseTy)
		if m == nil {
			return nil
		}
		conformances, err := rw.tc.Universe.CheckSubstitutions(m)
		if err != nil {
			invariant("generic member base substitutions do not verify: %v", err)
		}
		encoded := types.EncodeSubstitutions(ownerDecl.Generic, m, conformances)
		ownerTy := types.Subst(m, ownerDecl.DeclaredType())
		memberTy := rw.substMemberSignature(member, m)

		if baseIsInstance && member.IsInstanceMember() {
			base = rw.coerceObjectArgumentToType(base, ownerTy, b.With(locator.Elem(locator.MemberRefBase)))
		} else {
			base = rw.tc.CoerceToRValue(base)
		}
		if base == nil {
			return nil
		}

		if member.RequiresContextBinding() {
			ref := rw.tc.BuildCheckedRefExpr(member, ast.Range{PosStart: nameLoc, PosEnd: nameLoc}, implicit)
			ref.SetType(memberTy)
			ref.Subs = encoded
			return rw.finishBoundMember(base, ref, member, baseIsInstance, openedType, b)
		}

		ref := ast.NewMemberRef(base, dotLoc, member, nameLoc, rw.memberAccessType(member, memberTy, baseIsInstance))
		ref.Subs = encoded
		if implicit {
			ref.SetImplicit()
		}
		return ref
	}

	// variable member of a non-module type
	if member.Kind == types.DeclVar && ownerDecl != nil {
		containerTy := ownerDecl.DeclaredType()
		base = rw.coerceObjectArgumentToType(base, containerTy, b.With(locator.Elem(locator.MemberRefBase)))
		if base == nil {
			return nil
		}
		ref := ast.NewMemberRef(base, dotLoc, member, nameLoc, rw.simplifyType(openedType))
		if implicit {
			ref.SetImplicit()
		}
		return ref
	}

	// everything else: a checked reference, bound to the base when the
	// member implies instance-context binding
	ref := rw.tc.BuildCheckedRefExpr(member, ast.Range{PosStart: nameLoc, PosEnd: nameLoc}, implicit)
	if openedType != nil {
		ref.SetType(rw.simplifyType(openedType))
	}

	if member.RequiresContextBinding() {
		return rw.finishBoundMember(base, ref, member, baseIsInstance, openedType, b)
	}

	var result ast.Expr = ast.NewDotSyntaxBaseIgnored(base, ref)
	if implicit {
		result.SetImplicit()
	}
	if poly, ok := types.Canonical(ref.Type()).(*types.PolyFunc); ok {
		result.SetType(ref.Type())
		return rw.specialize(result, poly, openedType)
	}
	result.SetType(ref.Type())
	return result
}

// finishBoundMember wraps a method, constructor or enum element reference
// in the call that binds its context, then finishes the apply.
func (rw *Rewriter) finishBoundMember(base ast.Expr, ref ast.Expr, member *types.ValueDecl,
	baseIsInstance bool, openedType types.Type, b locator.Builder) ast.Expr {

	switch {
	case member.Kind == types.DeclConstructor:
		call := ast.NewCall(ref, base, ast.CallConstructorRef)
		call.SetImplicit()
		return rw.finishApply(call, openedType, b)
	case baseIsInstance == member.IsInstanceMember():
		call := ast.NewCall(ref, base, ast.CallDotSyntax)
		if base.IsImplicit() {
			call.SetImplicit()
		}
		return rw.finishApply(call, openedType, b)
	default:
		// static member through an instance: the base is evaluated for
		// effect only
		result := ast.NewDotSyntaxBaseIgnored(base, ref)
		result.SetType(ref.Type())
		if poly, ok := types.Canonical(ref.Type()).(*types.PolyFunc); ok {
			return rw.specialize(result, poly, openedType)
		}
		return result
	}
}

// memberAccessType is the type of reading member on a base: variables and
// subscript results are lvalues when the access can mutate.
func (rw *Rewriter) memberAccessType(member *types.ValueDecl, memberTy types.Type, baseIsInstance bool) types.Type {
	if member.Kind == types.DeclVar && baseIsInstance {
		if _, ok := memberTy.(*types.LValue); !ok {
			return &types.LValue{Object: memberTy, Quals: types.QualDefaultForMemberAccess}
		}
	}
	return memberTy
}

func isArchetypeOrExistential(t types.Type) bool {
	if types.IsExistential(t) {
		return true
	}
	_, ok := types.Canonical(t).(*types.Archetype)
	return ok
}

// buildSubscript resolves the overload recorded for the subscript member
// locator, coerces the index, and emits the base-appropriate node.
func (rw *Rewriter) buildSubscript(baseExpr, index ast.Expr, b locator.Builder) ast.Expr {
	loc := rw.resolveBuilder(b.With(locator.Elem(locator.SubscriptMember)))
	sel, ok := rw.sol.OverloadFor(loc)
	if !ok {
		invariant("no overload choice recorded for subscript")
	}
	if sel.Choice.Kind != solve.ChoiceDecl && sel.Choice.Kind != solve.ChoiceDeclViaDynamic {
		invariant("subscript overload resolved to non-declaration choice")
	}
	decl := sel.Choice.Decl
	viaDynamic := sel.Choice.Kind == solve.ChoiceDeclViaDynamic

	fnTy, ok := types.Canonical(decl.Ty).(*types.Func)
	if !ok {
		invariant("subscript declaration %s has non-function type %s", decl.Name, decl.Ty)
	}
	innerFnTy, ok := types.Canonical(fnTy.Out).(*types.Func)
	if !ok {
		invariant("subscript declaration %s has uncurried type %s", decl.Name, decl.Ty)
	}
	indexTy := innerFnTy.In
	elemTy := innerFnTy.Out

	ownerDecl := decl.Context.OwnerTypeDecl()
	var encoded []types.Substitution
	if ownerDecl != nil && ownerDecl.Generic != nil {
		m := rw.baseConversionSubs(ownerDecl, types.RValue(baseExpr.Type()))
		conformances, err := rw.tc.Universe.CheckSubstitutions(m)
		if err != nil {
			invariant("subscript base substitutions do not verify: %v", err)
		}
		encoded = types.EncodeSubstitutions(ownerDecl.Generic, m, conformances)
		indexTy = types.Subst(m, indexTy)
		elemTy = types.Subst(m, elemTy)
	}

	index = rw.coerceToType(index, indexTy, b.With(locator.Elem(locator.SubscriptIndex)))
	if index == nil {
		return nil
	}

	baseTy := types.RValue(baseExpr.Type())
	switch {
	case viaDynamic:
		baseExpr = rw.tc.CoerceToRValue(baseExpr)
		result := ast.NewDynamicSubscript(baseExpr, index, decl)
		result.SetType(elemTy)
		return result
	case types.IsExistential(baseTy):
		baseExpr = rw.coerceObjectArgumentToType(baseExpr, baseTy, b.With(locator.Elem(locator.MemberRefBase)))
		result := ast.NewExistentialSubscript(baseExpr, index, decl)
		result.SetType(elemTy)
		return result
	case isArchetypeOrExistential(baseTy):
		baseExpr = rw.coerceObjectArgumentToType(baseExpr, baseTy, b.With(locator.Elem(locator.MemberRefBase)))
		result := ast.NewArchetypeSubscript(baseExpr, index, decl)
		result.SetType(elemTy)
		return result
	default:
		baseExpr = rw.coerceObjectArgumentToType(baseExpr, fnTy.In, b.With(locator.Elem(locator.MemberRefBase)))
		if baseExpr == nil {
			return nil
		}
		result := ast.NewSubscript(baseExpr, index, decl)
		result.Subs = encoded
		if _, ok := elemTy.(*types.LValue); !ok {
			elemTy = &types.LValue{Object: elemTy, Quals: types.QualDefaultForMemberAccess}
		}
		result.SetType(elemTy)
		return result
	}
}

// buildDynamicMemberRef accesses a member found by dynamic lookup.
func (rw *Rewriter) buildDynamicMemberRef(base ast.Expr, dotLoc token.Pos, member *types.ValueDecl,
	nameLoc token.Pos, openedType types.Type, b locator.Builder) ast.Expr {

	base = rw.tc.CoerceToRValue(base)
	ref := ast.NewDynamicMemberRef(base, dotLoc, member, nameLoc)

	refTy := rw.simplifyType(openedType)
	ref.SetType(refTy)

	// the substituted type itself is unused here; the reference only
	// carries the substitution list
	if poly, ok := types.Canonical(member.Ty).(*types.PolyFunc); ok {
		_, subs := rw.computeSubstitutions(poly.Params, openedType)
		if subs == nil {
			return nil
		}
		ref.Subs = subs.Encoded
	}
	return ref
}

// buildProtocolOperatorRef recovers the operator's base type from the
// protocol's Self archetype inside the opened type and dispatches to the
// general member-reference builder on that base's metatype.
func (rw *Rewriter) buildProtocolOperatorRef(member *types.ValueDecl, at ast.Positioner,
	openedType types.Type, b locator.Builder) ast.Expr {

	proto := member.Context.OwnerProtocolDecl()
	if proto == nil {
		invariant("protocol operator %s has no protocol context", member.Name)
	}

	var baseTy types.Type
	types.Walk(openedType, func(sub types.Type) bool {
		if tv, ok := sub.(*types.TypeVar); ok && tv.OpenedFrom == proto.SelfArch {
			baseTy = rw.simplifyType(tv)
			return false
		}
		return true
	})
	if baseTy == nil {
		invariant("cannot locate Self of %s inside opened operator type %s", proto.Name, openedType)
	}

	metaBase := rw.metatypeBase(at, baseTy)
	return rw.buildMemberRef(metaBase, at.Pos(), member, at.Pos(), openedType, b, true)
}
