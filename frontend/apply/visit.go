package apply

import (
	"github.com/tessel-lang/tessel/frontend/ast"
	"github.com/tessel-lang/tessel/frontend/ilerr"
	"github.com/tessel-lang/tessel/frontend/locator"
	"github.com/tessel-lang/tessel/frontend/solve"
	"github.com/tessel-lang/tessel/frontend/types"
)

// rewrite dispatches one already-walked node to its rewrite. Children
// have been rewritten except where the traversal driver says otherwise.
func (rw *Rewriter) rewrite(e ast.Expr) ast.Expr {
	switch e := e.(type) {
	case *ast.Error, *ast.OpaqueValue, *ast.ZeroValue, *ast.Module:
		if e.Type() != nil {
			e.SetType(rw.simplifyType(e.Type()))
		}
		return e

	case *ast.DefaultValue:
		return e

	case *ast.IntegerLiteral:
		return rw.convertLiteral(e, rw.simplifyType(e.Type()), rw.integerLiteralSpec())

	case *ast.FloatLiteral:
		return rw.convertLiteral(e, rw.simplifyType(e.Type()), rw.floatLiteralSpec())

	case *ast.CharacterLiteral:
		return rw.convertLiteral(e, rw.simplifyType(e.Type()), rw.characterLiteralSpec())

	case *ast.StringLiteral:
		return rw.convertLiteral(e, rw.simplifyType(e.Type()), rw.stringLiteralSpec())

	case *ast.MagicIdentifierLiteral:
		return rw.rewriteMagicLiteral(e, rw.simplifyType(e.Type()))

	case *ast.InterpolatedStringLiteral:
		return rw.rewriteInterpolation(e)

	case *ast.ArrayLiteral:
		return rw.rewriteCollectionLiteral(e, e.Sub,
			rw.tc.Protocol(types.ArrayLiteralConvertible), rw.tc.Names.ArrayLiteralRequirement,
			func(sem ast.Expr) { e.Semantic = sem })

	case *ast.DictionaryLiteral:
		return rw.rewriteCollectionLiteral(e, e.Sub,
			rw.tc.Protocol(types.DictionaryLiteralConvertible), rw.tc.Names.DictionaryLiteralRequirement,
			func(sem ast.Expr) { e.Semantic = sem })

	case *ast.DeclRef:
		return rw.rewriteDeclRef(e)

	case *ast.OverloadedDeclRef:
		return rw.rewriteOverloadedDeclRef(e)

	case *ast.UnresolvedDot:
		return rw.rewriteUnresolvedDot(e)

	case *ast.UnresolvedMember:
		return rw.rewriteUnresolvedMember(e)

	case *ast.MemberRef, *ast.ExistentialMemberRef, *ast.ArchetypeMemberRef, *ast.DynamicMemberRef,
		*ast.DotSyntaxBaseIgnored, *ast.Specialize:
		if e.Type() != nil {
			e.SetType(rw.simplifyType(e.Type()))
		}
		return e

	case *ast.TupleElement:
		if e.Type() != nil {
			e.SetType(rw.simplifyType(e.Type()))
		}
		return e

	case *ast.Paren:
		e.SetType(e.Sub.Type())
		return e

	case *ast.TupleExpr:
		fields := make([]types.TupleField, len(e.Elems))
		for i, elem := range e.Elems {
			fields[i] = types.TupleField{Name: e.NameAt(i), Ty: elem.Type()}
		}
		e.SetType(&types.Tuple{Fields: fields})
		return e

	case *ast.Subscript:
		return rw.buildSubscript(e.Base, e.Index, rw.builderFor(e))

	case *ast.Call:
		return rw.rewriteApply(e)

	case *ast.Assign:
		return rw.rewriteAssign(e)

	case *ast.DiscardAssignment:
		if e.Type() != nil {
			e.SetType(rw.simplifyType(e.Type()))
		}
		return e

	case *ast.If:
		return rw.rewriteIf(e)

	case *ast.ForceValue:
		return rw.rewriteForceValue(e)

	case *ast.BindOptional:
		return rw.rewriteBindOptional(e)

	case *ast.OptionalEvaluation:
		ty := rw.simplifyType(e.Type())
		sub := rw.coerceToType(e.Sub, ty, rw.builderFor(e))
		if sub == nil {
			return nil
		}
		e.Sub = sub
		e.SetType(ty)
		return e

	case *ast.Is:
		return rw.rewriteIs(e)

	case *ast.ConditionalCheckedCast:
		return rw.rewriteConditionalCheckedCast(e)

	case *ast.Coerce:
		return rw.rewriteCoerce(e)

	case *ast.AddressOf:
		ty := rw.simplifyType(e.Type())
		sub := rw.coerceToType(e.Sub, ty, rw.builderFor(e))
		if sub == nil {
			return nil
		}
		e.Sub = sub
		e.SetType(ty)
		return e

	case *ast.MetatypeLiteral:
		if e.WrittenTy != nil {
			e.SetType(&types.Metatype{Instance: e.WrittenTy})
			return e
		}
		e.SetType(&types.Metatype{Instance: types.RValue(e.Base.Type())})
		return e

	case ast.ImplicitConversion:
		// already the product of a rewrite
		return e
	}

	invariant("no rewrite for expression %T", e)
	return nil
}

func (rw *Rewriter) integerLiteralSpec() literalSpec {
	names := rw.tc.Names.IntegerLiteral
	return literalSpec{
		proto:              rw.tc.Protocol(types.IntegerLiteralConvertible),
		builtinProto:       rw.tc.Protocol(types.BuiltinIntegerLiteralConvertible),
		requirement:        names.Requirement,
		builtinRequirement: names.BuiltinRequirement,
		argAssoc:           names.AssocType,
		builtinArgAssoc:    names.BuiltinAssocType,
		directBuiltinArgTy: rw.tc.Universe.MaxBuiltinInt,
		validBuiltinArg: func(t types.Type) bool {
			_, ok := types.Canonical(t).(*types.BuiltinInt)
			return ok
		},
	}
}

func (rw *Rewriter) floatLiteralSpec() literalSpec {
	names := rw.tc.Names.FloatLiteral
	return literalSpec{
		proto:              rw.tc.Protocol(types.FloatLiteralConvertible),
		builtinProto:       rw.tc.Protocol(types.BuiltinFloatLiteralConvertible),
		requirement:        names.Requirement,
		builtinRequirement: names.BuiltinRequirement,
		argAssoc:           names.AssocType,
		builtinArgAssoc:    names.BuiltinAssocType,
		directBuiltinArgTy: rw.tc.Universe.MaxBuiltinFloat,
		validBuiltinArg: func(t types.Type) bool {
			_, ok := types.Canonical(t).(*types.BuiltinFloat)
			return ok
		},
	}
}

func (rw *Rewriter) characterLiteralSpec() literalSpec {
	names := rw.tc.Names.CharacterLiteral
	return literalSpec{
		proto:              rw.tc.Protocol(types.CharacterLiteralConvertible),
		builtinProto:       rw.tc.Protocol(types.BuiltinCharacterLiteralConvertible),
		requirement:        names.Requirement,
		builtinRequirement: names.BuiltinRequirement,
		argAssoc:           names.AssocType,
		builtinArgAssoc:    names.BuiltinAssocType,
		directBuiltinArgTy: &types.BuiltinInt{Width: 32},
		validBuiltinArg: func(t types.Type) bool {
			i, ok := types.Canonical(t).(*types.BuiltinInt)
			return ok && i.Width == 32
		},
	}
}

func (rw *Rewriter) stringLiteralSpec() literalSpec {
	names := rw.tc.Names.StringLiteral
	u := rw.tc.Universe
	return literalSpec{
		proto:              rw.tc.Protocol(types.StringLiteralConvertible),
		builtinProto:       rw.tc.Protocol(types.BuiltinStringLiteralConvertible),
		requirement:        names.Requirement,
		builtinRequirement: names.BuiltinRequirement,
		argAssoc:           names.AssocType,
		builtinArgAssoc:    names.BuiltinAssocType,
		directBuiltinArgTy: types.ScalarFields(&types.BuiltinRawPointer{}, u.WordInt, &types.BuiltinInt{Width: 1}),
		validBuiltinArg: func(t types.Type) bool {
			switch t := types.Canonical(t).(type) {
			case *types.BuiltinRawPointer:
				return true
			case *types.Tuple:
				if len(t.Fields) != 3 {
					return false
				}
				_, p := types.Canonical(t.Fields[0].Ty).(*types.BuiltinRawPointer)
				_, w := types.Canonical(t.Fields[1].Ty).(*types.BuiltinInt)
				bit, b := types.Canonical(t.Fields[2].Ty).(*types.BuiltinInt)
				return p && w && b && bit.Width == 1
			}
			return false
		},
	}
}

// rewriteMagicLiteral reduces #file to a string literal conversion and
// #line / #column to an integer literal conversion at the node's own
// location.
func (rw *Rewriter) rewriteMagicLiteral(e *ast.MagicIdentifierLiteral, ty types.Type) ast.Expr {
	switch e.Kind {
	case ast.MagicFile:
		return rw.convertLiteral(e, ty, rw.stringLiteralSpec())
	case ast.MagicLine, ast.MagicColumn:
		return rw.convertLiteral(e, ty, rw.integerLiteralSpec())
	}
	invariant("unknown magic identifier kind")
	return nil
}

// rewriteInterpolation coerces every segment to the result type and calls
// the interpolation witness over the segment tuple; the call becomes the
// node's semantic form.
func (rw *Rewriter) rewriteInterpolation(e *ast.InterpolatedStringLiteral) ast.Expr {
	ty := rw.simplifyType(e.Type())
	proto := rw.tc.Protocol(types.StringInterpolationConvertible)
	if proto == nil {
		invariant("string interpolation protocol is not declared")
	}
	conf, ok := rw.tc.ConformsToProtocol(ty, proto)
	if !ok {
		invariant("interpolation target %s does not conform to %s", ty, proto.Name)
	}

	for i, segment := range e.Segments {
		coerced := rw.coerceToType(segment, ty,
			rw.builderFor(e).With(locator.IndexedElem(locator.InterpolationArgument, i)))
		if coerced == nil {
			return nil
		}
		e.Segments[i] = coerced
	}

	// single-segment interpolations pass the segment directly
	var arg []ast.Expr
	if len(e.Segments) == 1 {
		arg = []ast.Expr{e.Segments[0]}
	} else {
		tuple := ast.NewTupleExpr(ast.RangeOf(e), e.Segments, nil)
		tys := make([]types.Type, len(e.Segments))
		for i, s := range e.Segments {
			tys[i] = s.Type()
		}
		tuple.SetImplicit()
		tuple.SetType(types.ScalarFields(tys...))
		arg = []ast.Expr{tuple}
	}

	call := rw.callWitness(rw.metatypeBase(e, ty), proto, conf, rw.tc.Names.InterpolationRequirement, arg)
	if call == nil {
		return nil
	}
	call.SetType(ty)
	e.Semantic = call
	e.SetType(ty)
	return e
}

// rewriteCollectionLiteral attaches the conversion-witness call over the
// literal's element subexpression as its semantic form.
func (rw *Rewriter) rewriteCollectionLiteral(e ast.Expr, sub ast.Expr,
	proto *types.ProtocolDecl, requirement string, setSemantic func(ast.Expr)) ast.Expr {

	if proto == nil {
		invariant("collection literal protocol is not declared")
	}
	ty := rw.simplifyType(e.Type())
	conf, ok := rw.tc.ConformsToProtocol(ty, proto)
	if !ok {
		invariant("collection literal target %s does not conform to %s", ty, proto.Name)
	}

	call := rw.callWitness(rw.metatypeBase(e, ty), proto, conf, requirement, []ast.Expr{sub})
	if call == nil {
		return nil
	}
	call.SetType(ty)
	setSemantic(call)
	e.SetType(ty)
	return e
}

func (rw *Rewriter) rewriteDeclRef(e *ast.DeclRef) ast.Expr {
	openedTy := e.Type()
	if openedTy == nil {
		openedTy = rw.tc.UnopenedTypeOfReference(e.Decl)
	}

	if e.Decl.Context != nil && e.Decl.Context.OwnerProtocolDecl() != nil && e.Decl.Kind == types.DeclFunc {
		return rw.buildProtocolOperatorRef(e.Decl, e, openedTy, rw.builderFor(e))
	}

	e.SetType(rw.simplifyType(openedTy))
	if poly, ok := types.Canonical(e.Decl.Ty).(*types.PolyFunc); ok && len(e.Subs) == 0 {
		return rw.specialize(e, poly, openedTy)
	}
	return e
}

func (rw *Rewriter) rewriteOverloadedDeclRef(e *ast.OverloadedDeclRef) ast.Expr {
	sel, ok := rw.sol.OverloadFor(rw.locatorFor(e))
	if !ok {
		invariant("no overload choice recorded for reference to %s", e.Name)
	}
	if sel.Choice.Kind != solve.ChoiceDecl {
		invariant("overloaded reference resolved to non-declaration choice")
	}
	decl := sel.Choice.Decl

	if decl.Context != nil && decl.Context.OwnerProtocolDecl() != nil && decl.Kind == types.DeclFunc {
		return rw.buildProtocolOperatorRef(decl, e, sel.OpenedType, rw.builderFor(e))
	}

	ref := rw.tc.BuildCheckedRefExpr(decl, ast.RangeOf(e), e.IsImplicit())
	ref.SetType(rw.simplifyType(sel.OpenedType))
	if poly, ok := types.Canonical(decl.Ty).(*types.PolyFunc); ok {
		return rw.specialize(ref, poly, sel.OpenedType)
	}
	return ref
}

func (rw *Rewriter) rewriteUnresolvedDot(e *ast.UnresolvedDot) ast.Expr {
	b := rw.builderFor(e).With(locator.Elem(locator.Member))
	loc := rw.resolveBuilder(b)
	sel, ok := rw.sol.OverloadFor(loc)
	if !ok {
		invariant("no overload choice recorded for member %s", e.Name)
	}

	switch sel.Choice.Kind {
	case solve.ChoiceDecl:
		result := rw.buildMemberRef(e.Base, e.DotLoc, sel.Choice.Decl, e.NameLoc,
			sel.OpenedType, b, e.IsImplicit())
		if result == nil {
			return nil
		}
		rw.trackPartialApplication(result, sel.Choice.Decl)
		return result

	case solve.ChoiceDeclViaDynamic:
		return rw.buildDynamicMemberRef(e.Base, e.DotLoc, sel.Choice.Decl, e.NameLoc, sel.OpenedType, b)

	case solve.ChoiceTupleIndex:
		baseExpr := e.Base
		baseTy := baseExpr.Type()
		baseIsLValue := false
		if _, ok := baseTy.(*types.LValue); ok {
			baseIsLValue = true
		} else {
			// materialize so the projection has an address to load from
			lv := &types.LValue{Object: types.RValue(baseTy), Quals: types.QualDefaultForMemberAccess | types.QualNonSettable}
			baseExpr = ast.NewMaterialize(baseExpr, lv)
		}
		tuple, ok := types.Canonical(types.RValue(baseTy)).(*types.Tuple)
		if !ok || sel.Choice.TupleIdx >= len(tuple.Fields) {
			invariant("tuple-index choice against non-tuple base %s", baseTy)
		}
		elemTy := tuple.Fields[sel.Choice.TupleIdx].ExternalType()
		if baseIsLValue {
			elemTy = &types.LValue{Object: elemTy, Quals: types.QualDefaultForMemberAccess}
		}
		return ast.NewTupleElement(baseExpr, sel.Choice.TupleIdx, elemTy)

	case solve.ChoiceBaseType:
		return e.Base
	}

	invariant("unexpected overload choice for member %s", e.Name)
	return nil
}

// trackPartialApplication records a dot-syntax call that bound a
// value-type method through an lvalue: the remaining argument clauses
// must all be applied before the expression is complete.
func (rw *Rewriter) trackPartialApplication(result ast.Expr, decl *types.ValueDecl) {
	call, ok := result.(*ast.Call)
	if !ok || call.Kind != ast.CallDotSyntax {
		return
	}
	if decl.Kind != types.DeclFunc || !decl.IsInstanceMember() {
		return
	}
	if _, baseIsLValue := call.Arg.Type().(*types.LValue); !baseIsLValue {
		return
	}
	rw.partialApps[call] = decl.ArgClauses - 1
}

func (rw *Rewriter) rewriteUnresolvedMember(e *ast.UnresolvedMember) ast.Expr {
	b := rw.builderFor(e).With(locator.Elem(locator.UnresolvedMember))
	loc := rw.resolveBuilder(b)
	sel, ok := rw.sol.OverloadFor(loc)
	if !ok {
		invariant("no overload choice recorded for .%s", e.Name)
	}
	if sel.Choice.Kind != solve.ChoiceDecl {
		invariant(".%s resolved to non-declaration choice", e.Name)
	}
	decl := sel.Choice.Decl
	ownerTy := decl.Context.DeclaredTypeOfContext()
	if ownerTy == nil {
		invariant(".%s is not a member of a type", e.Name)
	}
	metaBase := rw.metatypeBase(e, ownerTy)
	return rw.buildMemberRef(metaBase, e.Pos(), decl, e.NameLoc, sel.OpenedType, b, true)
}

func (rw *Rewriter) rewriteApply(e *ast.Call) ast.Expr {
	innerFn := e.Fn
	result := rw.finishApply(e, e.Type(), rw.builderFor(e))
	if result == nil {
		return nil
	}

	// advancing a tracked partial application consumes one clause
	if remaining, tracked := rw.partialApps[innerFn]; tracked {
		delete(rw.partialApps, innerFn)
		if remaining-1 > 0 {
			rw.partialApps[result] = remaining - 1
		}
	}
	return result
}

func (rw *Rewriter) rewriteAssign(e *ast.Assign) ast.Expr {
	destTy, ok := e.Dest.Type().(*types.LValue)
	if !ok {
		invariant("assignment destination is not an lvalue: %s", e.Dest.Type())
	}
	src := rw.coerceToType(e.Src, destTy.Object,
		rw.builderFor(e).With(locator.Elem(locator.AssignSource)))
	if src == nil {
		return nil
	}
	e.Src = src
	e.SetType(types.EmptyTuple())
	return e
}

func (rw *Rewriter) rewriteIf(e *ast.If) ast.Expr {
	ty := rw.simplifyType(e.Type())
	then := rw.coerceToType(e.Then, ty, rw.builderFor(e).With(locator.Elem(locator.IfThen)))
	if then == nil {
		return nil
	}
	els := rw.coerceToType(e.Else, ty, rw.builderFor(e).With(locator.Elem(locator.IfElse)))
	if els == nil {
		return nil
	}
	e.Then, e.Else = then, els
	e.SetType(ty)
	return e
}

func (rw *Rewriter) rewriteForceValue(e *ast.ForceValue) ast.Expr {
	valueTy := rw.simplifyType(e.Type())
	optTy := rw.tc.Universe.OptionalType(valueTy)
	sub := rw.coerceToType(e.Sub, optTy, rw.builderFor(e))
	if sub == nil {
		return nil
	}
	if _, injected := sub.(*ast.InjectIntoOptional); injected {
		rw.diag(ilerr.New(ilerr.NewRedundantOptionalForce{Positioner: e}))
	}
	e.Sub = sub
	e.SetType(valueTy)
	return e
}

func (rw *Rewriter) rewriteBindOptional(e *ast.BindOptional) ast.Expr {
	valueTy := rw.simplifyType(e.Type())
	optTy := rw.tc.Universe.OptionalType(valueTy)
	sub := rw.coerceToType(e.Sub, optTy, rw.builderFor(e))
	if sub == nil {
		return nil
	}
	if _, injected := sub.(*ast.InjectIntoOptional); injected {
		rw.diag(ilerr.New(ilerr.NewRedundantOptionalBind{Positioner: e}))
	}
	e.Sub = sub
	e.SetType(valueTy)
	return e
}

func (rw *Rewriter) rewriteIs(e *ast.Is) ast.Expr {
	kind := rw.tc.TypeCheckCheckedCast(e.Sub.Type(), e.TargetTy)
	if kind == ast.CastCoercion {
		rw.diag(ilerr.New(ilerr.NewCoercionToSupertype{
			Positioner: e,
			From:       types.RValue(e.Sub.Type()).String(),
			To:         e.TargetTy.String(),
		}))
	}
	e.CastKind = kind
	if e.Type() != nil {
		e.SetType(rw.simplifyType(e.Type()))
	}
	return e
}

func (rw *Rewriter) rewriteConditionalCheckedCast(e *ast.ConditionalCheckedCast) ast.Expr {
	optTy := rw.tc.Universe.OptionalType(e.TargetTy)
	kind := rw.tc.TypeCheckCheckedCast(e.Sub.Type(), e.TargetTy)

	if kind == ast.CastCoercion {
		// statically guaranteed: coerce, then inject to keep the
		// expression's expected optional type
		rw.diag(ilerr.New(ilerr.NewCoercionToSupertype{
			Positioner: e,
			From:       types.RValue(e.Sub.Type()).String(),
			To:         e.TargetTy.String(),
		}))
		coerced := rw.coerceToType(e.Sub, e.TargetTy, rw.builderFor(e))
		if coerced == nil {
			return nil
		}
		return ast.NewInjectIntoOptional(coerced, optTy)
	}

	e.Sub = rw.tc.CoerceToRValue(e.Sub)
	e.CastKind = kind
	e.SetType(optTy)
	return e
}

func (rw *Rewriter) rewriteCoerce(e *ast.Coerce) ast.Expr {
	sub := rw.coerceToType(e.Sub, e.TargetTy, rw.builderFor(e))
	if sub == nil {
		return nil
	}
	e.Sub = sub
	e.SetType(e.TargetTy)
	return e
}
