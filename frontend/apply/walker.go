package apply

import (
	"github.com/tessel-lang/tessel/frontend/ast"
	"github.com/tessel-lang/tessel/frontend/check"
	"github.com/tessel-lang/tessel/frontend/ilerr"
	"github.com/tessel-lang/tessel/frontend/locator"
	"github.com/tessel-lang/tessel/frontend/solve"
	"github.com/tessel-lang/tessel/frontend/types"
	"github.com/tessel-lang/tessel/util"
)

// Apply rewrites expr into its fully typed, desugared form under sol,
// then finalizes the rewriter (emitting partial-application diagnostics).
// Returns nil when a rewrite failed; diagnostics carry the reason.
func Apply(tc *check.TypeChecker, sol *solve.Solution, expr ast.Expr, dc *types.DeclContext) ast.Expr {
	rw := NewRewriter(tc, sol, dc)
	w := &walker{rw: rw}
	result := w.walk(expr)
	rw.Finalize()
	return result
}

// ApplyShallow rewrites a single node whose children are already in final
// form.
func ApplyShallow(tc *check.TypeChecker, sol *solve.Solution, expr ast.Expr, dc *types.DeclContext) ast.Expr {
	rw := NewRewriter(tc, sol, dc)
	return rw.rewrite(expr)
}

// walker drives the rewrite over the tree: post-order by default, with
// pre-order hooks for the node kinds that manage their own children. It
// tracks the assignments whose destination the walk is currently inside,
// and the declaration contexts saved across nested closures; statements
// and declarations are never traversed.
type walker struct {
	rw *Rewriter
	// lhs is nonempty while walking the destination of an assignment
	lhs util.Stack[*ast.Assign]
	// outerDCs holds the declaration contexts to restore when each
	// enclosing closure's body is done
	outerDCs util.Stack[*types.DeclContext]
}

func (w *walker) walk(e ast.Expr) ast.Expr {
	if e == nil {
		return nil
	}
	rw := w.rw

	// pre-order special cases
	switch e := e.(type) {
	case *ast.NewArray:
		return w.rewriteNewArray(e)

	case *ast.If:
		// the condition converts through the logic-value adapter exactly
		// once; then and else walk normally
		cond := w.walk(e.Cond)
		if cond == nil {
			return nil
		}
		cond = rw.ConvertToLogicValue(cond, rw.builderFor(e))
		if cond == nil {
			return nil
		}
		e.Cond = cond
		if e.Then = w.walk(e.Then); e.Then == nil {
			return nil
		}
		if e.Else = w.walk(e.Else); e.Else == nil {
			return nil
		}
		return rw.rewriteIf(e)

	case *ast.Is:
		// the subexpression was already checked on its own
		return rw.rewriteIs(e)

	case *ast.ConditionalCheckedCast:
		return rw.rewriteConditionalCheckedCast(e)

	case *ast.Coerce:
		return rw.rewriteCoerce(e)

	case *ast.DefaultValue:
		return e

	case *ast.Closure:
		return w.rewriteClosure(e)

	case *ast.MetatypeLiteral:
		if e.WrittenTy != nil {
			// spelled with an explicit type: already typed, skip children
			return rw.rewrite(e)
		}
		if e.Base = w.walk(e.Base); e.Base == nil {
			return nil
		}
		return rw.rewrite(e)

	case *ast.Assign:
		w.lhs.Push(e)
		dest := w.walk(e.Dest)
		w.lhs.Pop()
		if dest == nil {
			return nil
		}
		e.Dest = dest
		if e.Src = w.walk(e.Src); e.Src == nil {
			return nil
		}
		return rw.rewriteAssign(e)

	case *ast.DiscardAssignment:
		if w.lhs.Len() == 0 {
			rw.diag(ilerr.New(ilerr.NewDiscardOutsideAssignment{Positioner: e}))
		}
		return rw.rewrite(e)
	}

	// post-order: children first, then the node
	if !w.walkChildren(e) {
		return nil
	}
	return rw.rewrite(e)
}

// walkChildren rewrites e's children in place, returning false when any
// child rewrite failed.
func (w *walker) walkChildren(e ast.Expr) bool {
	set := func(target *ast.Expr) bool {
		if *target == nil {
			return true
		}
		rewritten := w.walk(*target)
		if rewritten == nil {
			return false
		}
		*target = rewritten
		return true
	}

	switch e := e.(type) {
	case *ast.InterpolatedStringLiteral:
		for i := range e.Segments {
			if !set(&e.Segments[i]) {
				return false
			}
		}
	case *ast.ArrayLiteral:
		return set(&e.Sub)
	case *ast.DictionaryLiteral:
		return set(&e.Sub)
	case *ast.UnresolvedDot:
		return set(&e.Base)
	case *ast.MemberRef:
		return set(&e.Base)
	case *ast.DotSyntaxBaseIgnored:
		return set(&e.LHS) && set(&e.RHS)
	case *ast.TupleElement:
		return set(&e.Base)
	case *ast.Subscript:
		return set(&e.Base) && set(&e.Index)
	case *ast.Call:
		return set(&e.Fn) && set(&e.Arg)
	case *ast.Paren:
		return set(&e.Sub)
	case *ast.TupleExpr:
		for i := range e.Elems {
			if !set(&e.Elems[i]) {
				return false
			}
		}
	case *ast.Specialize:
		return set(&e.Sub)
	case *ast.AddressOf:
		return set(&e.Sub)
	case *ast.ForceValue:
		return set(&e.Sub)
	case *ast.BindOptional:
		return set(&e.Sub)
	case *ast.OptionalEvaluation:
		return set(&e.Sub)
	}
	return true
}

// rewriteNewArray resolves the bound, the injection function and the
// element construction; children other than the bound are not walked.
func (w *walker) rewriteNewArray(e *ast.NewArray) ast.Expr {
	rw := w.rw

	sliceTy, ok := types.Canonical(rw.simplifyType(e.Type())).(*types.Slice)
	if !ok {
		invariant("array allocation with non-slice type %s", rw.simplifyType(e.Type()))
	}
	elemTy := sliceTy.Elem

	bound := w.walk(e.Bound)
	if bound == nil {
		return nil
	}
	bound = rw.ConvertToArrayBound(bound, rw.builderFor(e).With(locator.Elem(locator.NewArrayElement)))
	if bound == nil {
		return nil
	}
	e.Bound = bound

	e.InjectionFn = rw.tc.BuildArrayInjectionFnRef(rw.dc, sliceTy, rw.tc.Universe.WordInt, ast.RangeOf(e))

	if e.ConstructionFn != nil {
		ctorTy := &types.Func{In: types.EmptyTuple(), Out: elemTy}
		checked, ok := rw.tc.TypeCheckExpression(e.ConstructionFn, rw.dc, ctorTy, false)
		if !ok {
			return nil
		}
		e.ConstructionFn = checked
	} else {
		// default-construct the innermost element
		innermost := elemTy
		for {
			inner, ok := types.Canonical(innermost).(*types.Slice)
			if !ok {
				break
			}
			innermost = inner.Elem
		}
		zero := ast.NewZeroValue(ast.RangeOf(e), innermost)
		zero.SetImplicit()
		e.ConstructionFn = zero
	}

	e.SetType(sliceTy)
	return e
}

// rewriteClosure simplifies the closure's type, coerces the parameter
// pattern, and checks the body: inline for the single-expression form,
// via the type checker otherwise. The declaration context narrows to the
// closure for the body and is restored on every path out.
func (w *walker) rewriteClosure(e *ast.Closure) ast.Expr {
	rw := w.rw

	fnTy, ok := types.Canonical(rw.simplifyType(e.Type())).(*types.Func)
	if !ok {
		invariant("closure with non-function type %s", rw.simplifyType(e.Type()))
	}
	e.Params.SetType(fnTy.In)

	if e.SingleExpr {
		w.outerDCs.Push(rw.dc)
		rw.dc = e.DC
		body := w.walk(e.Body)
		if body != nil {
			body = rw.coerceToType(body, fnTy.Out,
				rw.builderFor(e).With(locator.Elem(locator.ClosureResult)))
		}
		if outer, ok := w.outerDCs.Pop(); ok {
			rw.dc = outer
		}
		if body == nil {
			return nil
		}
		e.Body = body
	} else {
		if !rw.tc.TypeCheckClosureBody(e) {
			return nil
		}
	}

	e.SetType(fnTy)
	e.Captures = rw.tc.ComputeCaptures(e.Body, e.DC)
	return e
}
