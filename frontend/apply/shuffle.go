package apply

import (
	"github.com/tessel-lang/tessel/frontend/ast"
	"github.com/tessel-lang/tessel/frontend/ilerr"
	"github.com/tessel-lang/tessel/frontend/locator"
	"github.com/tessel-lang/tessel/frontend/solve"
	"github.com/tessel-lang/tessel/frontend/types"
)

// computeTupleShuffle maps destination fields to source fields: named
// fields match by name, the rest positionally, missing fields fall back
// to their defaults, and a variadic destination collects every remaining
// source. Reports ok=false when no mapping exists.
func computeTupleShuffle(from, to *types.Tuple) (sources []int, variadicArgs []int, ok bool) {
	used := make([]bool, len(from.Fields))
	sources = make([]int, 0, len(to.Fields))
	nextSource := 0

	claim := func(i int) {
		used[i] = true
		for nextSource < len(from.Fields) && used[nextSource] {
			nextSource++
		}
	}

	for _, toField := range to.Fields {
		if toField.Variadic {
			// the variadic destination must come last and soaks up every
			// source not yet claimed
			sources = append(sources, ast.ShuffleFirstVariadic)
			for i := range from.Fields {
				if !used[i] {
					variadicArgs = append(variadicArgs, i)
					claim(i)
				}
			}
			continue
		}

		src := -1
		if toField.Name != "" {
			if idx := from.FieldIndexByName(toField.Name); idx >= 0 && !used[idx] {
				src = idx
			}
		}
		if src == -1 && nextSource < len(from.Fields) {
			candidate := from.Fields[nextSource]
			// a named source only flows positionally into a matching or
			// unlabelled destination
			if candidate.Name == "" || toField.Name == "" || candidate.Name == toField.Name {
				src = nextSource
			}
		}

		if src == -1 {
			if toField.Default != types.DefaultNone {
				sources = append(sources, ast.ShuffleDefaultInitialize)
				continue
			}
			return nil, nil, false
		}
		claim(src)
		sources = append(sources, src)
	}

	// leftover sources mean the shapes do not line up
	for i := range from.Fields {
		if !used[i] {
			return nil, nil, false
		}
	}
	return sources, variadicArgs, true
}

// tupleLiteralOf unwraps parens down to a tuple literal, when expr is one.
func tupleLiteralOf(expr ast.Expr) *ast.TupleExpr {
	for {
		switch e := expr.(type) {
		case *ast.TupleExpr:
			return e
		case *ast.Paren:
			expr = e.Sub
		default:
			return nil
		}
	}
}

// coerceTupleToTuple applies a computed shuffle: elements coerce in place
// inside tuple literals, defaults synthesize at the call site where the
// magic-identifier kinds allow, and the variadic tail gets its injection
// function.
func (rw *Rewriter) coerceTupleToTuple(expr ast.Expr, fromTuple, toTuple *types.Tuple,
	toType types.Type, b locator.Builder, sources []int, variadicArgs []int) ast.Expr {

	literal := tupleLiteralOf(expr)

	// destination-field order is authoritative; sugar for matching
	// elements comes from the source tuple
	sugarFields := make([]types.TupleField, len(toTuple.Fields))
	copy(sugarFields, toTuple.Fields)

	var defaultsOwner *types.ValueDecl
	ownerResolved := false
	callerDefaults := make([]ast.Expr, len(sources))
	anyDefaulted := false

	for destIdx, src := range sources {
		switch src {
		case ast.ShuffleDefaultInitialize:
			anyDefaulted = true
			if !ownerResolved {
				defaultsOwner = rw.defaultArgsOwner(b)
				ownerResolved = true
			}
			field := toTuple.Fields[destIdx]
			if synthesized := rw.callerDefaultArg(field, expr); synthesized != nil {
				sources[destIdx] = ast.ShuffleCallerDefaultInitialize
				callerDefaults[destIdx] = synthesized
			}

		case ast.ShuffleFirstVariadic:
			elemTy := toTuple.Fields[destIdx].Ty
			for _, varSrc := range variadicArgs {
				srcField := fromTuple.Fields[varSrc]
				if types.Equal(srcField.Ty, elemTy) {
					continue
				}
				if literal == nil {
					rw.diag(ilerr.New(ilerr.NewTupleConversionNotExpressible{Positioner: expr}))
					return nil
				}
				coerced := rw.coerceToType(literal.Elems[varSrc], elemTy,
					b.With(locator.IndexedElem(locator.TupleElement, varSrc)))
				if coerced == nil {
					return nil
				}
				literal.Elems[varSrc] = coerced
			}

		default:
			srcField := fromTuple.Fields[src]
			destField := toTuple.Fields[destIdx]
			if types.Equal(srcField.Ty, destField.Ty) {
				// carry the source's sugared element type
				sugarFields[destIdx].Ty = srcField.Ty
				continue
			}
			if literal == nil {
				rw.diag(ilerr.New(ilerr.NewTupleConversionNotExpressible{Positioner: expr}))
				return nil
			}
			coerced := rw.coerceToType(literal.Elems[src], destField.Ty,
				b.With(locator.IndexedElem(locator.TupleElement, src)))
			if coerced == nil {
				return nil
			}
			literal.Elems[src] = coerced
			sugarFields[destIdx].Ty = coerced.Type()
		}
	}

	if literal != nil {
		// retype the literal now that elements may have changed
		litFields := make([]types.TupleField, len(literal.Elems))
		for i, elem := range literal.Elems {
			litFields[i] = fromTuple.Fields[i]
			litFields[i].Ty = elem.Type()
		}
		literal.SetType(&types.Tuple{Fields: litFields})
	}

	resultTy := toType
	if !anyDefaulted {
		resultTy = &types.Tuple{Fields: sugarFields}
	}

	shuffle := ast.NewTupleShuffle(expr, resultTy, sources, variadicArgs)
	shuffle.CallerDefaults = callerDefaults
	shuffle.DefaultArgsOwner = defaultsOwner
	if varargsIdx := variadicFieldIndex(toTuple); varargsIdx != -1 {
		elemTy := toTuple.Fields[varargsIdx].Ty
		shuffle.VarargsInjectionFn = rw.tc.BuildArrayInjectionFnRef(rw.dc,
			rw.tc.Universe.SliceType(elemTy), rw.tc.Universe.WordInt, ast.RangeOf(expr))
	}
	return shuffle
}

func variadicFieldIndex(t *types.Tuple) int {
	for i, f := range t.Fields {
		if f.Variadic {
			return i
		}
	}
	return -1
}

// coerceScalarToTuple wraps a scalar into toTuple at the scalar-init
// field, filling every other field from defaults.
func (rw *Rewriter) coerceScalarToTuple(expr ast.Expr, toTuple *types.Tuple, scalarIdx int,
	toType types.Type, b locator.Builder) ast.Expr {

	if scalarIdx < 0 || scalarIdx >= len(toTuple.Fields) {
		invariant("scalar-to-tuple with no scalar-init field in %s", toTuple)
	}
	scalarField := toTuple.Fields[scalarIdx]

	// for a variadic destination the scalar becomes its one element
	coerced := rw.coerceToType(expr, scalarField.Ty, b.With(locator.Elem(locator.ScalarToTuple)))
	if coerced == nil {
		return nil
	}

	var defaultsOwner *types.ValueDecl
	ownerResolved := false
	elements := make([]ast.Expr, len(toTuple.Fields))
	for i, field := range toTuple.Fields {
		if i == scalarIdx || field.Variadic {
			continue
		}
		if !ownerResolved {
			defaultsOwner = rw.defaultArgsOwner(b)
			ownerResolved = true
		}
		elements[i] = rw.callerDefaultArg(field, expr)
	}

	// preserve the coerced scalar's sugar unless a declared initializer
	// forces the original destination type
	resultTy := toType
	anyInitializer := false
	for _, field := range toTuple.Fields {
		if field.Default != types.DefaultNone {
			anyInitializer = true
			break
		}
	}
	if !anyInitializer {
		sugarFields := make([]types.TupleField, len(toTuple.Fields))
		copy(sugarFields, toTuple.Fields)
		sugarFields[scalarIdx].Ty = coerced.Type()
		resultTy = &types.Tuple{Fields: sugarFields}
	}

	node := ast.NewScalarToTuple(coerced, resultTy, scalarIdx, elements)
	node.DefaultArgsOwner = defaultsOwner
	return node
}

// callerDefaultArg synthesizes the call-site default for a field, or nil
// when the callee supplies it. The magic-identifier kinds build a fresh
// literal at the call's source location and type-check it against the
// field's type; that check cannot fail because the field accepts the
// magic literal by construction.
func (rw *Rewriter) callerDefaultArg(field types.TupleField, at ast.Positioner) ast.Expr {
	var kind ast.MagicKind
	switch field.Default {
	case types.DefaultNone:
		invariant("field %s has no default to synthesize", field.Name)
	case types.DefaultNormal:
		return nil
	case types.DefaultFile:
		kind = ast.MagicFile
	case types.DefaultLine:
		kind = ast.MagicLine
	case types.DefaultColumn:
		kind = ast.MagicColumn
	}

	lit := ast.NewMagicIdentifierLiteral(ast.RangeOf(at), kind)
	lit.SetImplicit()
	checked, ok := rw.tc.TypeCheckExpression(lit, rw.dc, field.ExternalType(), false)
	if !ok {
		invariant("caller default synthesis failed for %s", kind)
	}
	return checked
}

// defaultArgsOwner walks from an argument locator back to the declaration
// whose parameter defaults apply: strip the trailing apply-argument
// element and resolve the function position instead.
func (rw *Rewriter) defaultArgsOwner(b locator.Builder) *types.ValueDecl {
	anchor := b.AnchorOf()
	if anchor == nil {
		return nil
	}
	elems := b.Elems()
	if n := len(elems); n > 0 && elems[n-1].Kind == locator.ApplyArgument {
		elems = elems[:n-1]
	}
	if n := len(elems); n > 0 && elems[n-1].Kind == locator.InterpolationArgument {
		elems = append(elems[:n-1], locator.Elem(locator.ConstructorMember))
	} else {
		elems = append(elems, locator.Elem(locator.ApplyFunction))
	}

	loc := rw.tc.Locators.Intern(anchor, elems...)
	if sel, ok := rw.sol.OverloadFor(loc); ok && sel.Choice.Kind == solve.ChoiceDecl {
		return sel.Choice.Decl
	}

	// last resort: the anchor may be a call whose function is already a
	// resolved reference
	if call, ok := anchor.(*ast.Call); ok {
		if decl, ok := memberDeclOf(call.Fn); ok {
			return decl
		}
	}
	return nil
}
