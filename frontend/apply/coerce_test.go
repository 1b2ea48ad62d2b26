package apply

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tessel-lang/tessel/frontend/ast"
	"github.com/tessel-lang/tessel/frontend/locator"
	"github.com/tessel-lang/tessel/frontend/types"
)

func (tb *testbed) coerce(e ast.Expr, to types.Type) ast.Expr {
	rw := tb.rewriter(tb.emptySolution())
	return rw.coerceToType(e, to, locator.Builder{})
}

func TestCoerceIdentity(t *testing.T) {
	tb := newTestbed(t)
	e := tb.varRef("x", tb.int32Ty, tb.int32Ty)
	assert.Same(t, ast.Expr(e), tb.coerce(e, tb.int32Ty))
}

func TestCoerceLoadsLValue(t *testing.T) {
	tb := newTestbed(t)
	e := tb.varRef("x", tb.int32Ty, &types.LValue{Object: tb.int32Ty})

	result := tb.coerce(e, tb.int32Ty)
	load, ok := result.(*ast.Load)
	if assert.True(t, ok, "expected a load, got %T", result) {
		assert.True(t, types.Equal(load.Type(), tb.int32Ty))
	}
}

func TestCoerceMaterializesIntoLValue(t *testing.T) {
	tb := newTestbed(t)
	e := tb.varRef("x", tb.int32Ty, tb.int32Ty)
	lv := &types.LValue{Object: tb.int32Ty}

	result := tb.coerce(e, lv)
	mat, ok := result.(*ast.Materialize)
	if assert.True(t, ok, "expected a materialize, got %T", result) {
		assert.True(t, types.Equal(mat.Type(), lv))
	}
}

func TestCoerceDerivedToBase(t *testing.T) {
	tb := newTestbed(t)
	e := tb.varRef("rex", tb.dogTy, tb.dogTy)

	result := tb.coerce(e, tb.animalTy)
	d2b, ok := result.(*ast.DerivedToBase)
	if assert.True(t, ok, "expected derived-to-base, got %T", result) {
		assert.True(t, types.Equal(d2b.Type(), tb.animalTy))
	}
}

func TestCoerceInjectIntoOptional(t *testing.T) {
	tb := newTestbed(t)
	e := tb.varRef("rex", tb.dogTy, tb.dogTy)
	optAnimal := tb.u.OptionalType(tb.animalTy)

	result := tb.coerce(e, optAnimal)
	inject, ok := result.(*ast.InjectIntoOptional)
	if assert.True(t, ok, "expected optional injection, got %T", result) {
		assert.True(t, types.Equal(inject.Type(), optAnimal))
		_, inner := inject.ConversionSub().(*ast.DerivedToBase)
		assert.True(t, inner, "value should first convert to the optional's value type")
	}
}

func TestCoerceExistentialErasure(t *testing.T) {
	tb := newTestbed(t)
	e := tb.varRef("rex", tb.dogTy, tb.dogTy)
	petTy := &types.Existential{Protocols: []*types.ProtocolDecl{tb.petProto}}

	result := tb.coerce(e, petTy)
	erasure, ok := result.(*ast.Erasure)
	if assert.True(t, ok, "expected erasure, got %T", result) {
		assert.Len(t, erasure.Conformances, 1)
		assert.Same(t, tb.petProto, erasure.Conformances[0].Protocol)
		assert.True(t, types.Equal(erasure.Type(), petTy))
	}
}

func TestCoerceFunctionToBlock(t *testing.T) {
	tb := newTestbed(t)
	fnTy := &types.Func{In: tb.int32Ty, Out: tb.int32Ty}
	blockTy := &types.Func{In: tb.int32Ty, Out: tb.int32Ty, Block: true}
	e := tb.varRef("f", fnTy, fnTy)

	result := tb.coerce(e, blockTy)
	bridge, ok := result.(*ast.BridgeToBlock)
	if assert.True(t, ok, "expected bridge-to-block, got %T", result) {
		assert.True(t, types.Equal(bridge.Type(), blockTy))
	}
}

func TestCoerceAutoClosure(t *testing.T) {
	tb := newTestbed(t)
	autoTy := &types.Func{In: types.EmptyTuple(), Out: tb.int32Ty, AutoClosure: true}
	e := tb.varRef("x", tb.int32Ty, tb.int32Ty)

	result := tb.coerce(e, autoTy)
	closure, ok := result.(*ast.ImplicitClosure)
	if assert.True(t, ok, "expected an implicit closure, got %T", result) {
		assert.True(t, types.Equal(closure.Type(), autoTy))
		assert.Same(t, ast.Expr(e), closure.Body)
	}
}

func TestCoerceMetatypeConversion(t *testing.T) {
	tb := newTestbed(t)
	fromMeta := &types.Metatype{Instance: tb.dogTy}
	toMeta := &types.Metatype{Instance: tb.animalTy}
	e := tb.varRef("m", fromMeta, fromMeta)

	result := tb.coerce(e, toMeta)
	conv, ok := result.(*ast.MetatypeConversion)
	if assert.True(t, ok, "expected metatype conversion, got %T", result) {
		assert.True(t, types.Equal(conv.Type(), toMeta))
	}
}

// every coercion's recorded type must agree with its target
func TestCoercionResultTypesMatchTargets(t *testing.T) {
	tb := newTestbed(t)
	targets := []types.Type{
		tb.animalTy,
		tb.u.OptionalType(tb.animalTy),
		&types.Existential{Protocols: []*types.ProtocolDecl{tb.petProto}},
		&types.LValue{Object: tb.dogTy},
	}
	for _, target := range targets {
		e := tb.varRef("rex", tb.dogTy, tb.dogTy)
		result := tb.coerce(e, target)
		if assert.NotNil(t, result, "coercion to %s", target) {
			assert.True(t, types.Equal(result.Type(), target),
				"coerced to %s but node type is %s", target, result.Type())
		}
	}
}
