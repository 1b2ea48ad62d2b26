package apply

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tessel-lang/tessel/frontend/solve"
	"github.com/tessel-lang/tessel/frontend/types"
)

func TestSimplifyTypeSubstitutesBindings(t *testing.T) {
	tb := newTestbed(t)
	tv1 := &types.TypeVar{ID: tb.u.FreshID()}
	tv2 := &types.TypeVar{ID: tb.u.FreshID()}

	sol := solve.NewBuilder().
		Bind(tv1, &types.Func{In: tb.int32Ty, Out: tv2}).
		Bind(tv2, tb.stringTy).
		Build()

	simplified := SimplifyType(sol, tv1)
	assert.True(t, types.Equal(simplified, &types.Func{In: tb.int32Ty, Out: tb.stringTy}))
	assert.False(t, types.HasTypeVariables(simplified))
}

func TestSimplifyTypeIdempotent(t *testing.T) {
	tb := newTestbed(t)
	tv := &types.TypeVar{ID: tb.u.FreshID()}
	sol := solve.NewBuilder().Bind(tv, tb.int32Ty).Build()

	ty := &types.Tuple{Fields: []types.TupleField{
		{Name: "a", Ty: tv},
		{Name: "b", Ty: tb.stringTy},
	}}
	once := SimplifyType(sol, ty)
	twice := SimplifyType(sol, once)
	assert.True(t, types.Identical(once, twice))
}

func TestSimplifyTypePreservesSugar(t *testing.T) {
	tb := newTestbed(t)
	arch := tb.u.NewArchetype("T", nil, nil)
	tv := &types.TypeVar{ID: tb.u.FreshID()}
	sol := solve.NewBuilder().Bind(tv, tb.int32Ty).Build()

	sugared := &types.Substituted{Original: arch, Replacement: tv}
	simplified := SimplifyType(sol, sugared)

	sub, ok := simplified.(*types.Substituted)
	if assert.True(t, ok, "substituted sugar should survive simplification") {
		assert.Same(t, arch, sub.Original)
		assert.True(t, types.Equal(sub.Replacement, tb.int32Ty))
	}
}
