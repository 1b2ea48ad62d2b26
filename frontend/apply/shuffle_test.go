package apply

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/tessel-lang/tessel/frontend/ast"
	"github.com/tessel-lang/tessel/frontend/types"
)

func TestComputeTupleShufflePositional(t *testing.T) {
	tb := newTestbed(t)
	from := types.ScalarFields(tb.int32Ty, tb.stringTy)
	to := &types.Tuple{Fields: []types.TupleField{
		{Name: "x", Ty: tb.int32Ty},
		{Name: "y", Ty: tb.stringTy},
	}}

	sources, variadicArgs, ok := computeTupleShuffle(from, to)
	assert.True(t, ok)
	assert.Empty(t, variadicArgs)
	assert.Empty(t, cmp.Diff([]int{0, 1}, sources))
}

func TestComputeTupleShuffleByName(t *testing.T) {
	tb := newTestbed(t)
	from := &types.Tuple{Fields: []types.TupleField{
		{Name: "y", Ty: tb.stringTy},
		{Name: "x", Ty: tb.int32Ty},
	}}
	to := &types.Tuple{Fields: []types.TupleField{
		{Name: "x", Ty: tb.int32Ty},
		{Name: "y", Ty: tb.stringTy},
	}}

	sources, _, ok := computeTupleShuffle(from, to)
	assert.True(t, ok)
	assert.Empty(t, cmp.Diff([]int{1, 0}, sources))
}

func TestComputeTupleShuffleDefaultsAndVariadic(t *testing.T) {
	tb := newTestbed(t)
	from := &types.Tuple{Fields: []types.TupleField{
		{Ty: tb.int32Ty},
		{Name: "rest", Ty: tb.int32Ty},
		{Ty: tb.int32Ty},
	}}
	to := &types.Tuple{Fields: []types.TupleField{
		{Name: "first", Ty: tb.int32Ty},
		{Name: "flag", Ty: tb.stringTy, Default: types.DefaultNormal},
		{Name: "rest", Ty: tb.int32Ty, Variadic: true},
	}}

	sources, variadicArgs, ok := computeTupleShuffle(from, to)
	assert.True(t, ok)
	// |sources| == |destination fields|, variadic marker last
	assert.Len(t, sources, len(to.Fields))
	assert.Equal(t, ast.ShuffleDefaultInitialize, sources[1])
	assert.Equal(t, ast.ShuffleFirstVariadic, sources[2])
	assert.Empty(t, cmp.Diff([]int{1, 2}, variadicArgs))
	for _, src := range sources {
		if src >= 0 {
			assert.Less(t, src, len(from.Fields))
		}
	}
}

func TestComputeTupleShuffleRejectsMissingField(t *testing.T) {
	tb := newTestbed(t)
	from := types.ScalarFields(tb.int32Ty)
	to := &types.Tuple{Fields: []types.TupleField{
		{Name: "x", Ty: tb.int32Ty},
		{Name: "y", Ty: tb.stringTy},
	}}

	_, _, ok := computeTupleShuffle(from, to)
	assert.False(t, ok)
}

// a call with a trailing #line default synthesizes the caller-side
// argument and records the defaults owner
func TestCallerDefaultSynthesis(t *testing.T) {
	tb := newTestbed(t)

	paramTuple := &types.Tuple{Fields: []types.TupleField{
		{Name: "x", Ty: tb.int32Ty},
		{Name: "y", Ty: tb.stringTy},
		{Name: "z", Ty: tb.int32Ty, Default: types.DefaultLine},
	}}
	fnTy := &types.Func{In: paramTuple, Out: tb.int32Ty}
	fnDecl := &types.ValueDecl{Name: "f", Kind: types.DeclFunc, Ty: fnTy, Context: tb.dc, ArgClauses: 1}

	argX := tb.varRef("a", tb.int32Ty, tb.int32Ty)
	argY := tb.varRef("b", tb.stringTy, tb.stringTy)
	arg := ast.NewTupleExpr(ast.Range{}, []ast.Expr{argX, argY}, []string{"", "y"})
	arg.SetType(&types.Tuple{Fields: []types.TupleField{
		{Ty: tb.int32Ty},
		{Name: "y", Ty: tb.stringTy},
	}})

	call := ast.NewCall(ast.NewDeclRef(ast.Range{}, fnDecl, fnTy), arg, ast.CallNormal)
	result := Apply(tb.tc, tb.emptySolution(), call, tb.dc)
	if !assert.NotNil(t, result) {
		return
	}
	assert.False(t, tb.tc.Diags.HasError())

	finished, ok := result.(*ast.Call)
	assert.True(t, ok, "got %T", result)
	shuffle, ok := finished.Arg.(*ast.TupleShuffle)
	if !assert.True(t, ok, "argument should be a tuple shuffle, got %T", finished.Arg) {
		return
	}

	assert.Empty(t, cmp.Diff([]int{0, 1, ast.ShuffleCallerDefaultInitialize}, shuffle.Sources))
	assert.Same(t, fnDecl, shuffle.DefaultArgsOwner)
	if assert.NotNil(t, shuffle.CallerDefaults[2], "the #line default must be synthesized at the call site") {
		assert.True(t, types.Equal(shuffle.CallerDefaults[2].Type(), tb.int32Ty))
	}
	assert.True(t, types.Equal(finished.Type(), tb.int32Ty))
}
