package apply

import (
	"github.com/tessel-lang/tessel/frontend/ast"
	"github.com/tessel-lang/tessel/frontend/ilerr"
	"github.com/tessel-lang/tessel/frontend/locator"
	"github.com/tessel-lang/tessel/frontend/types"
)

// callWitness builds and finishes a call to the named requirement of a
// protocol against base's conformance: member reference, argument
// coercion, application. Returns nil after a broken-protocol diagnostic
// when the requirement is missing or has the wrong shape.
func (rw *Rewriter) callWitness(base ast.Expr, proto *types.ProtocolDecl,
	conformance *types.Conformance, name string, args []ast.Expr) ast.Expr {

	broken := func() {
		rw.diag(ilerr.New(ilerr.NewBrokenProtocol{
			Positioner:  base,
			Protocol:    proto.Name,
			Requirement: name,
		}))
	}

	witness := conformance.Witness(name)
	if witness == nil {
		broken()
		return nil
	}

	baseObjectTy := types.RValue(base.Type())
	if meta, ok := types.Canonical(baseObjectTy).(*types.Metatype); ok {
		baseObjectTy = meta.Instance
	}

	witnessTy := witness.Ty
	if conformance.Abstract {
		// requirement types are written in terms of the protocol's Self
		witnessTy = types.Subst(map[*types.Archetype]types.Type{
			proto.SelfArch: baseObjectTy,
		}, witnessTy)
	} else if owner := witness.Context.OwnerTypeDecl(); owner != nil && owner.Generic != nil {
		// witnesses of generic containers substitute through the base
		m := rw.baseConversionSubs(owner, baseObjectTy)
		if m == nil {
			return nil
		}
		witnessTy = rw.substMemberSignature(witness, m)
	}
	fnTy, ok := types.Canonical(witnessTy).(*types.Func)
	if !ok {
		broken()
		return nil
	}
	resultFnTy, ok := types.Canonical(fnTy.Out).(*types.Func)
	if !ok {
		broken()
		return nil
	}

	// bind the witness to the base
	var bound ast.Expr
	if conformance.Abstract {
		baseTy := types.RValue(base.Type())
		if types.IsExistential(baseTy) {
			ref := ast.NewExistentialMemberRef(base, base.End(), witness, base.End())
			ref.SetImplicit()
			ref.SetType(fnTy.Out)
			bound = ref
		} else {
			ref := ast.NewArchetypeMemberRef(base, base.End(), witness, base.End())
			ref.SetImplicit()
			ref.SetType(fnTy.Out)
			bound = ref
		}
	} else {
		coercedBase := rw.coerceObjectArgumentToType(base, fnTy.In, locator.Builder{})
		if coercedBase == nil {
			return nil
		}
		ref := rw.tc.BuildCheckedRefExpr(witness, ast.RangeOf(base), true)
		call := ast.NewCall(ref, coercedBase, ast.CallDotSyntax)
		call.SetImplicit()
		call.SetType(fnTy.Out)
		bound = call
	}

	// build the argument and coerce it to the requirement's input
	var arg ast.Expr
	switch len(args) {
	case 0:
		tuple := ast.NewTupleExpr(ast.RangeOf(base), nil, nil)
		tuple.SetImplicit()
		tuple.SetType(types.EmptyTuple())
		arg = tuple
	case 1:
		arg = args[0]
	default:
		tuple := ast.NewTupleExpr(ast.RangeOf(base), args, nil)
		tys := make([]types.Type, len(args))
		for i, a := range args {
			tys[i] = a.Type()
		}
		tuple.SetImplicit()
		tuple.SetType(types.ScalarFields(tys...))
		arg = tuple
	}
	arg = rw.coerceToType(arg, resultFnTy.In, locator.Builder{})
	if arg == nil {
		return nil
	}

	call := ast.NewCall(bound, arg, ast.CallNormal)
	call.SetImplicit()
	call.SetType(resultFnTy.Out)
	return call
}

// ConvertToLogicValue rewrites e into a 1-bit builtin integer through the
// LogicValue protocol; values already of that type are just loaded.
func (rw *Rewriter) ConvertToLogicValue(e ast.Expr, b locator.Builder) ast.Expr {
	return rw.convertToBuiltinValue(e,
		rw.tc.Protocol(types.LogicValue),
		rw.tc.Names.LogicValueRequirement,
		rw.tc.Names.BuiltinLogicValueRequirement,
		func(t types.Type) bool {
			i, ok := types.Canonical(t).(*types.BuiltinInt)
			return ok && i.Width == 1
		})
}

// ConvertToArrayBound rewrites e into some builtin integer through the
// ArrayBound protocol.
func (rw *Rewriter) ConvertToArrayBound(e ast.Expr, b locator.Builder) ast.Expr {
	return rw.convertToBuiltinValue(e,
		rw.tc.Protocol(types.ArrayBound),
		rw.tc.Names.ArrayBoundRequirement,
		rw.tc.Names.BuiltinArrayBoundRequirement,
		func(t types.Type) bool {
			_, ok := types.Canonical(t).(*types.BuiltinInt)
			return ok
		})
}

func (rw *Rewriter) convertToBuiltinValue(e ast.Expr, proto *types.ProtocolDecl,
	requirement, builtinRequirement string, valid func(types.Type) bool) ast.Expr {

	ty := types.RValue(e.Type())
	if valid(ty) {
		return rw.tc.CoerceToRValue(e)
	}
	if proto == nil {
		invariant("builtin value protocol is not declared")
	}
	conf, ok := rw.tc.ConformsToProtocol(ty, proto)
	if !ok {
		invariant("%s does not conform to %s", ty, proto.Name)
	}

	converted := rw.callWitness(e, proto, conf, requirement, nil)
	if converted == nil {
		return nil
	}
	if valid(types.RValue(converted.Type())) {
		return converted
	}

	// one more hop: the user-level value carries the builtin accessor
	resultTy := types.RValue(converted.Type())
	builtinWitness := rw.tc.LookupMember(resultTy, builtinRequirement, rw.dc)
	if builtinWitness == nil {
		rw.diag(ilerr.New(ilerr.NewBrokenProtocol{
			Positioner:  e,
			Protocol:    proto.Name,
			Requirement: builtinRequirement,
		}))
		return nil
	}
	fnTy, ok := types.Canonical(builtinWitness.Ty).(*types.Func)
	if !ok {
		rw.diag(ilerr.New(ilerr.NewBrokenProtocol{
			Positioner:  e,
			Protocol:    proto.Name,
			Requirement: builtinRequirement,
		}))
		return nil
	}
	resultFnTy, isFn := types.Canonical(fnTy.Out).(*types.Func)
	if !isFn || !valid(resultFnTy.Out) {
		rw.diag(ilerr.New(ilerr.NewBrokenProtocol{
			Positioner:  e,
			Protocol:    proto.Name,
			Requirement: builtinRequirement,
		}))
		return nil
	}

	ref := rw.tc.BuildCheckedRefExpr(builtinWitness, ast.RangeOf(e), true)
	dot := ast.NewCall(ref, converted, ast.CallDotSyntax)
	dot.SetImplicit()
	dot.SetType(fnTy.Out)
	empty := ast.NewTupleExpr(ast.RangeOf(e), nil, nil)
	empty.SetImplicit()
	empty.SetType(types.EmptyTuple())
	call := ast.NewCall(dot, empty, ast.CallNormal)
	call.SetImplicit()
	call.SetType(resultFnTy.Out)
	return call
}
