package apply

import (
	"github.com/tessel-lang/tessel/frontend/ast"
	"github.com/tessel-lang/tessel/frontend/locator"
	"github.com/tessel-lang/tessel/frontend/solve"
	"github.com/tessel-lang/tessel/frontend/types"
)

// finishApply completes a call whose function has been resolved: coerce
// the argument to the parameter type, set the result type, and desugar
// type-constructor calls. Constructing re-enters finishApply after the
// chosen constructor replaces the metatype function.
func (rw *Rewriter) finishApply(call *ast.Call, openedType types.Type, b locator.Builder) ast.Expr {
	call.Fn = rw.tc.CoerceToRValue(call.Fn)
	fnTy := types.RValue(call.Fn.Type())

	if fn, ok := types.Canonical(fnTy).(*types.Func); ok {
		var arg ast.Expr
		if call.Kind.IsSelfApply() {
			arg = rw.coerceObjectArgumentToType(call.Arg, fn.In, b.With(locator.Elem(locator.ApplyArgument)))
		} else {
			arg = rw.coerceToType(call.Arg, fn.In, b.With(locator.Elem(locator.ApplyArgument)))
		}
		if arg == nil {
			return nil
		}
		call.Arg = arg
		call.SetType(fn.Out)

		if poly, ok := types.Canonical(fn.Out).(*types.PolyFunc); ok && openedType != nil {
			if openedFn, ok := types.Canonical(openedType).(*types.Func); ok {
				return rw.specialize(call, poly, openedFn.Out)
			}
		}
		return call
	}

	if meta, ok := types.Canonical(fnTy).(*types.Metatype); ok {
		instanceTy := meta.Instance

		// constructing a tuple type is spelled as a coercion
		if _, isTuple := types.Canonical(instanceTy).(*types.Tuple); isTuple {
			return rw.coerceToType(call.Arg, instanceTy, b.With(locator.Elem(locator.ApplyArgument)))
		}

		ctorLoc := rw.resolveBuilder(b.With(locator.Elem(locator.ConstructorMember)))
		var sel solve.SelectedOverload
		found := false
		if ctorLoc != nil {
			sel, found = rw.sol.OverloadFor(ctorLoc)
		}
		if !found || sel.Choice.Kind == solve.ChoiceIdentityFunction {
			return rw.coerceToType(call.Arg, instanceTy, b.With(locator.Elem(locator.ApplyArgument)))
		}
		if sel.Choice.Kind != solve.ChoiceDecl {
			invariant("constructor overload resolved to non-declaration choice")
		}

		memberRef := rw.buildMemberRef(call.Fn, call.Fn.End(), sel.Choice.Decl, call.Fn.End(),
			sel.OpenedType, b.With(locator.Elem(locator.ConstructorMember)), true)
		if memberRef == nil {
			return nil
		}
		call.Fn = memberRef
		return rw.finishApply(call, openedType, b)
	}

	invariant("cannot apply a value of type %s", fnTy)
	return nil
}
