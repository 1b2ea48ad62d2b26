package apply

import (
	"github.com/tessel-lang/tessel/frontend/ast"
	"github.com/tessel-lang/tessel/frontend/locator"
	"github.com/tessel-lang/tessel/frontend/solve"
	"github.com/tessel-lang/tessel/frontend/types"
)

var coerceLogger = logger.With("section", "apply.coerce")

// coerceToType transforms expr into an equivalent expression whose type is
// toType. It never fails for a pair the solver recorded; reaching the
// final invariant means the solver and the rewriter disagree about the
// conversion lattice.
func (rw *Rewriter) coerceToType(expr ast.Expr, toType types.Type, b locator.Builder) ast.Expr {
	fromType := expr.Type()

	if types.Equal(fromType, toType) {
		return expr
	}
	coerceLogger.Debug("coercing", "from", fromType, "to", toType)

	// the solver may have recorded exactly what to do here
	if kind, ok := rw.sol.RestrictionFor(fromType, toType); ok {
		switch kind {
		case solve.RestrictionTupleToTuple:
			// handled by the structural tuple case below; restrictions
			// never dispatch it directly
			invariant("tuple-to-tuple conversion cannot be applied directly")

		case solve.RestrictionScalarToTuple:
			toTuple, ok := types.Canonical(toType).(*types.Tuple)
			if !ok {
				invariant("scalar-to-tuple restriction with non-tuple target %s", toType)
			}
			return rw.coerceScalarToTuple(expr, toTuple, toTuple.ScalarInitField(), toType, b)

		case solve.RestrictionSuperclass:
			return rw.coerceSuperclass(expr, toType)

		case solve.RestrictionExistential:
			return rw.coerceExistential(expr, toType, b)

		case solve.RestrictionValueToOptional:
			valueTy, ok := rw.tc.Universe.OptionalValueType(toType)
			if !ok {
				invariant("value-to-optional restriction with non-optional target %s", toType)
			}
			rw.tc.RequireOptionalIntrinsics(expr)
			inner := rw.coerceToType(expr, valueTy, b)
			if inner == nil {
				return nil
			}
			return ast.NewInjectIntoOptional(inner, toType)

		case solve.RestrictionUser:
			return rw.coerceViaUserConversion(expr, toType, b)
		}
	}

	// coercions to tuple type
	if toTuple, ok := types.Canonical(toType).(*types.Tuple); ok {
		if fromTuple, ok := types.Canonical(types.RValue(fromType)).(*types.Tuple); ok {
			if _, isLValue := fromType.(*types.LValue); !isLValue {
				sources, variadicArgs, shuffleOK := computeTupleShuffle(fromTuple, toTuple)
				if shuffleOK {
					return rw.coerceTupleToTuple(expr, fromTuple, toTuple, toType, b, sources, variadicArgs)
				}
			}
		}
		if scalarIdx := toTuple.ScalarInitField(); scalarIdx != -1 {
			if _, isLValue := fromType.(*types.LValue); !isLValue {
				return rw.coerceScalarToTuple(expr, toTuple, scalarIdx, toType, b)
			}
		}
	}

	// coercions from an lvalue: requalify or load first, they are often
	// the first step of a multi-step coercion
	if fromLValue, ok := fromType.(*types.LValue); ok {
		if toLValue, ok := toType.(*types.LValue); ok {
			expr = ast.NewRequalify(expr, &types.LValue{
				Object: fromLValue.Object,
				Quals:  toLValue.Quals,
			})
		} else {
			expr = ast.NewLoad(expr, fromLValue.Object)
		}
		return rw.coerceToType(expr, toType, b)
	}

	// coercions to an lvalue: materialize the value
	if toLValue, ok := toType.(*types.LValue); ok {
		expr = rw.coerceToType(expr, toLValue.Object, b)
		if expr == nil {
			return nil
		}
		return ast.NewMaterialize(expr, toType)
	}

	// subclass to superclass
	if rw.tc.Universe.MayHaveSuperclass(fromType) && rw.tc.Universe.IsClassOrClassBound(toType) {
		for super := rw.tc.Universe.SuperclassOf(fromType); super != nil; super = rw.tc.Universe.SuperclassOf(super) {
			if types.Equal(super, toType) {
				return rw.coerceSuperclass(expr, toType)
			}
		}
	}

	// coercions to function type
	if toFunc, ok := types.Canonical(toType).(*types.Func); ok {
		// an autoclosure parameter wraps its argument in an implicit
		// nullary closure
		if toFunc.AutoClosure {
			expr = rw.coerceToType(expr, toFunc.Out, b.With(locator.Elem(locator.Load)))
			if expr == nil {
				return nil
			}
			closure := ast.NewImplicitClosure(expr, toType, rw.dc)
			closure.Captures = rw.tc.ComputeCaptures(expr, rw.dc)
			return closure
		}

		fromFunc, fromIsFunc := types.Canonical(types.RValue(fromType)).(*types.Func)
		if toFunc.Block && (!fromIsFunc || !fromFunc.Block) {
			nonBlock := &types.Func{In: toFunc.In, Out: toFunc.Out, AutoClosure: toFunc.AutoClosure}
			expr = rw.coerceToType(expr, nonBlock, b)
			if expr == nil {
				return nil
			}
			return ast.NewBridgeToBlock(expr, toType)
		}

		if fromIsFunc {
			return ast.NewFunctionConversion(expr, toType)
		}
	}

	// erasure into an existential
	if types.IsExistential(toType) {
		return rw.coerceExistential(expr, toType, b)
	}

	// injection into an optional
	if valueTy, ok := rw.tc.Universe.OptionalValueType(toType); ok {
		rw.tc.RequireOptionalIntrinsics(expr)
		expr = rw.coerceToType(expr, valueTy, b)
		if expr == nil {
			return nil
		}
		return ast.NewInjectIntoOptional(expr, toType)
	}

	// user conversion via conversion function or constructor
	if nominalOrArchetype(fromType) || nominalOrArchetype(toType) {
		return rw.coerceViaUserConversion(expr, toType, b)
	}

	// metatype to metatype
	if _, ok := types.Canonical(fromType).(*types.Metatype); ok {
		if _, ok := types.Canonical(toType).(*types.Metatype); ok {
			return ast.NewMetatypeConversion(expr, toType)
		}
	}

	invariant("unhandled coercion from %s to %s", fromType, toType)
	return nil
}

func nominalOrArchetype(t types.Type) bool {
	switch types.Canonical(t).(type) {
	case *types.Nominal, *types.BoundGeneric, *types.Archetype:
		return true
	}
	return false
}

// coerceSuperclass moves expr up the class hierarchy: archetypes first
// surface their concrete superclass bound, then a derived-to-base edge
// finishes the job.
func (rw *Rewriter) coerceSuperclass(expr ast.Expr, toType types.Type) ast.Expr {
	if fromArchetype, ok := types.Canonical(expr.Type()).(*types.Archetype); ok && fromArchetype.Super != nil {
		expr = ast.NewArchetypeToSuper(expr, fromArchetype.Super)
		if types.Equal(expr.Type(), toType) {
			return expr
		}
	}
	return ast.NewDerivedToBase(expr, toType)
}

// coerceExistential erases expr into toType, witnessing the source type's
// conformance to each composed protocol.
func (rw *Rewriter) coerceExistential(expr ast.Expr, toType types.Type, b locator.Builder) ast.Expr {
	existential, ok := types.Canonical(toType).(*types.Existential)
	if !ok {
		invariant("existential coercion to non-existential %s", toType)
	}
	expr = rw.tc.CoerceToRValue(expr)
	fromType := expr.Type()

	conformances := make([]*types.Conformance, 0, len(existential.Protocols))
	for _, proto := range existential.Protocols {
		conf, ok := rw.tc.ConformsToProtocol(fromType, proto)
		if !ok {
			invariant("%s does not conform to %s for erasure", fromType, proto.Name)
		}
		conformances = append(conformances, conf)
	}
	return ast.NewErasure(expr, toType, conformances)
}

// coerceViaUserConversion applies the conversion member or constructor the
// solver chose for this edge.
func (rw *Rewriter) coerceViaUserConversion(expr ast.Expr, toType types.Type, b locator.Builder) ast.Expr {
	// conversion member on the source value
	convLoc := rw.resolveBuilder(b.With(locator.Elem(locator.ConversionMember)))
	if convLoc != nil {
		if sel, ok := rw.sol.OverloadFor(convLoc); ok {
			if sel.Choice.Kind != solve.ChoiceDecl {
				invariant("conversion member resolved to non-declaration choice")
			}
			memberRef := rw.buildMemberRef(expr, expr.End(), sel.Choice.Decl, expr.End(),
				sel.OpenedType, b.With(locator.Elem(locator.ConversionMember)), true)
			if memberRef == nil {
				return nil
			}
			emptyArg := ast.NewTupleExpr(ast.RangeOf(expr), nil, nil)
			emptyArg.SetImplicit()
			emptyArg.SetType(types.EmptyTuple())
			call := ast.NewCall(memberRef, emptyArg, ast.CallNormal)
			call.SetImplicit()
			finished := rw.finishApply(call, nil, b.With(locator.Elem(locator.ConversionMember)))
			if finished == nil {
				return nil
			}
			return rw.coerceToType(finished, toType, b)
		}
	}

	// constructor on the destination type, used for interpolated strings
	ctorLoc := rw.resolveBuilder(b.With(locator.Elem(locator.ConstructorMember)))
	if ctorLoc != nil {
		if sel, ok := rw.sol.OverloadFor(ctorLoc); ok {
			if sel.Choice.Kind == solve.ChoiceIdentityFunction {
				return rw.coerceToType(expr, toType, b.With(locator.Elem(locator.ApplyArgument)))
			}
			if sel.Choice.Kind != solve.ChoiceDecl {
				invariant("constructor member resolved to non-declaration choice")
			}
			metaBase := rw.metatypeBase(expr, toType)
			memberRef := rw.buildMemberRef(metaBase, expr.Pos(), sel.Choice.Decl, expr.Pos(),
				sel.OpenedType, b.With(locator.Elem(locator.ConstructorMember)), true)
			if memberRef == nil {
				return nil
			}
			call := ast.NewCall(memberRef, expr, ast.CallNormal)
			call.SetImplicit()
			finished := rw.finishApply(call, nil, b.With(locator.Elem(locator.ConstructorMember)))
			if finished == nil {
				return nil
			}
			return rw.coerceToType(finished, toType, b)
		}
	}

	invariant("no user conversion recorded from %s to %s", expr.Type(), toType)
	return nil
}

// coerceObjectArgumentToType passes expr as the object argument of a
// member access. Reference-semantics and metatype containers take the
// value directly; value-semantics containers take an lvalue so the member
// can mutate.
func (rw *Rewriter) coerceObjectArgumentToType(expr ast.Expr, toType types.Type, b locator.Builder) ast.Expr {
	containerTy := types.RValue(toType)
	if rw.tc.Universe.HasReferenceSemantics(containerTy) {
		return rw.coerceToType(expr, containerTy, b)
	}
	if _, isMeta := types.Canonical(containerTy).(*types.Metatype); isMeta {
		return rw.coerceToType(expr, containerTy, b)
	}

	destType := &types.LValue{Object: containerTy, Quals: types.QualDefaultForMemberAccess}
	fromType := expr.Type()
	if types.Equal(fromType, destType) {
		return expr
	}

	if fromLValue, ok := fromType.(*types.LValue); ok {
		if types.Equal(fromLValue.Object, containerTy) {
			requalified := ast.NewRequalify(expr, destType)
			requalified.ForObject = true
			return requalified
		}
		expr = rw.coerceToType(expr, containerTy, b)
		if expr == nil {
			return nil
		}
	}

	materialized := ast.NewMaterialize(expr, destType)
	materialized.ForObject = true
	return materialized
}
