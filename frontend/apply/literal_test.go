package apply

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tessel-lang/tessel/frontend/ast"
	"github.com/tessel-lang/tessel/frontend/solve"
	"github.com/tessel-lang/tessel/frontend/types"
)

// an integer literal landing on a builtin-convertible type becomes a
// single call to the builtin witness, with the raw literal retyped to the
// max builtin integer
func TestIntegerLiteralConversion(t *testing.T) {
	tb := newTestbed(t)

	lit := ast.NewIntegerLiteral(ast.Range{}, "42", nil)
	tv := &types.TypeVar{ID: tb.u.FreshID(), Loc: tb.tc.Locators.Intern(lit)}
	lit.SetType(tv)

	sol := solve.NewBuilder().Bind(tv, tb.int32Ty).Build()
	result := Apply(tb.tc, sol, lit, tb.dc)
	if !assert.NotNil(t, result) {
		return
	}
	assert.False(t, tb.tc.Diags.HasError())
	assert.True(t, types.Equal(result.Type(), tb.int32Ty))

	call, ok := result.(*ast.Call)
	if !assert.True(t, ok, "expected a witness call, got %T", result) {
		return
	}
	assert.True(t, types.Equal(call.Arg.Type(), tb.u.MaxBuiltinInt),
		"the raw literal's type must be the max builtin integer, got %s", call.Arg.Type())
	assert.Same(t, ast.Expr(lit), call.Arg, "the original literal node must survive as the argument")

	// exactly one call to the builtin witness in the conversion tree
	witnessCalls := 0
	ast.Walk(result, func(e ast.Expr) bool {
		if ref, ok := e.(*ast.DeclRef); ok && ref.Decl == tb.intBuiltinWitness {
			witnessCalls++
		}
		return true
	})
	assert.Equal(t, 1, witnessCalls)

	// no type variable survives anywhere in the rewritten tree
	ast.Walk(result, func(e ast.Expr) bool {
		if e.Type() != nil {
			assert.False(t, types.HasTypeVariables(e.Type()),
				"type variable left in %T: %s", e, e.Type())
		}
		return true
	})
}

// a magic #line literal reduces to the integer literal conversion
func TestMagicLineLiteral(t *testing.T) {
	tb := newTestbed(t)

	lit := ast.NewMagicIdentifierLiteral(ast.Range{}, ast.MagicLine)
	tv := &types.TypeVar{ID: tb.u.FreshID(), Loc: tb.tc.Locators.Intern(lit)}
	lit.SetType(tv)

	sol := solve.NewBuilder().Bind(tv, tb.int32Ty).Build()
	result := Apply(tb.tc, sol, lit, tb.dc)
	if assert.NotNil(t, result) {
		assert.True(t, types.Equal(result.Type(), tb.int32Ty))
	}
}

// an array literal's semantic form is a call to the array conversion
// witness over the element tuple
func TestArrayLiteralConversion(t *testing.T) {
	tb := newTestbed(t)

	arrayTy := &types.BoundGeneric{Decl: tb.u.ArrayDecl, Args: []types.Type{tb.int32Ty}}

	var elems []ast.Expr
	builder := solve.NewBuilder()
	for _, text := range []string{"1", "2", "3"} {
		lit := ast.NewIntegerLiteral(ast.Range{}, text, nil)
		tv := &types.TypeVar{ID: tb.u.FreshID(), Loc: tb.tc.Locators.Intern(lit)}
		lit.SetType(tv)
		builder.Bind(tv, tb.int32Ty)
		elems = append(elems, lit)
	}
	tuple := ast.NewTupleExpr(ast.Range{}, elems, nil)
	arrayLit := ast.NewArrayLiteral(ast.Range{}, tuple)
	arrayLit.SetType(arrayTy)

	result := Apply(tb.tc, builder.Build(), arrayLit, tb.dc)
	if !assert.NotNil(t, result) {
		return
	}
	assert.False(t, tb.tc.Diags.HasError())

	rewritten, ok := result.(*ast.ArrayLiteral)
	if !assert.True(t, ok, "got %T", result) {
		return
	}
	assert.True(t, types.Equal(rewritten.Type(), arrayTy))
	if assert.NotNil(t, rewritten.Semantic, "semantic form must be the conversion call") {
		call, ok := rewritten.Semantic.(*ast.Call)
		if assert.True(t, ok, "semantic form should be a call, got %T", rewritten.Semantic) {
			assert.True(t, types.Equal(call.Type(), arrayTy))
		}
	}
}
