package apply

import (
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tessel-lang/tessel/frontend/ast"
	"github.com/tessel-lang/tessel/frontend/ilerr"
	"github.com/tessel-lang/tessel/frontend/locator"
	"github.com/tessel-lang/tessel/frontend/solve"
	"github.com/tessel-lang/tessel/frontend/types"
)

func diagCodes(tc interface{ Diagnostics() []ilerr.Diagnostic }) []ilerr.ErrCode {
	var codes []ilerr.ErrCode
	for _, d := range tc.Diagnostics() {
		codes = append(codes, d.Code())
	}
	return codes
}

// assignment coerces the source through the assign-source path and leaves
// the destination an lvalue
func TestAssignCoercesSource(t *testing.T) {
	tb := newTestbed(t)

	dest := tb.varRef("pet", tb.animalTy, &types.LValue{Object: tb.animalTy})
	src := tb.varRef("rex", tb.dogTy, tb.dogTy)
	assign := ast.NewAssign(dest, src)

	result := Apply(tb.tc, tb.emptySolution(), assign, tb.dc)
	if !assert.NotNil(t, result) {
		return
	}
	rewritten, ok := result.(*ast.Assign)
	if !assert.True(t, ok, "got %T", result) {
		return
	}
	_, destIsLValue := rewritten.Dest.Type().(*types.LValue)
	assert.True(t, destIsLValue, "destination must stay an lvalue")
	_, srcConverted := rewritten.Src.(*ast.DerivedToBase)
	assert.True(t, srcConverted, "source must be converted to the destination's object type, got %T", rewritten.Src)
	assert.False(t, tb.tc.Diags.HasError())
}

// `_ = x` is accepted; `_` anywhere else is diagnosed
func TestDiscardAssignmentPlacement(t *testing.T) {
	t.Run("left of assignment", func(t *testing.T) {
		tb := newTestbed(t)
		discard := ast.NewDiscardAssignment(ast.Range{})
		discard.SetType(&types.LValue{Object: tb.int32Ty})
		src := tb.varRef("x", tb.int32Ty, tb.int32Ty)
		assign := ast.NewAssign(discard, src)

		result := Apply(tb.tc, tb.emptySolution(), assign, tb.dc)
		assert.NotNil(t, result)
		assert.False(t, tb.tc.Diags.HasError())
	})

	t.Run("outside assignment", func(t *testing.T) {
		tb := newTestbed(t)
		discard := ast.NewDiscardAssignment(ast.Range{})
		discard.SetType(&types.LValue{Object: tb.int32Ty})

		Apply(tb.tc, tb.emptySolution(), discard, tb.dc)
		assert.Contains(t, diagCodes(tb.tc.Diags), ilerr.DiscardOutsideAssignment)
	})
}

// x as? Dog from an existential classifies as existential-to-concrete
// and produces an optional of the target
func TestConditionalCheckedCastFromExistential(t *testing.T) {
	tb := newTestbed(t)

	petTy := &types.Existential{Protocols: []*types.ProtocolDecl{tb.petProto}}
	value := tb.varRef("x", petTy, petTy)
	cast := ast.NewConditionalCheckedCast(value, tb.dogTy)

	result := Apply(tb.tc, tb.emptySolution(), cast, tb.dc)
	if !assert.NotNil(t, result) {
		return
	}
	rewritten, ok := result.(*ast.ConditionalCheckedCast)
	if !assert.True(t, ok, "got %T", result) {
		return
	}
	assert.Equal(t, ast.CastExistentialToConcrete, rewritten.CastKind)
	assert.True(t, types.Equal(rewritten.Type(), tb.u.OptionalType(tb.dogTy)))
}

// casting to a statically known supertype collapses to a coercion wrapped
// in an optional injection, with a warning
func TestConditionalCheckedCastCollapsesToCoercion(t *testing.T) {
	tb := newTestbed(t)

	value := tb.varRef("rex", tb.dogTy, tb.dogTy)
	cast := ast.NewConditionalCheckedCast(value, tb.animalTy)

	result := Apply(tb.tc, tb.emptySolution(), cast, tb.dc)
	if !assert.NotNil(t, result) {
		return
	}
	inject, ok := result.(*ast.InjectIntoOptional)
	if assert.True(t, ok, "got %T", result) {
		assert.True(t, types.Equal(inject.Type(), tb.u.OptionalType(tb.animalTy)))
	}
	assert.Contains(t, diagCodes(tb.tc.Diags), ilerr.CoercionToSupertype)
}

// forcing a value the rewrite itself injected into an optional warns
func TestForceOfInjectedOptionalWarns(t *testing.T) {
	tb := newTestbed(t)

	value := tb.varRef("rex", tb.dogTy, tb.dogTy)
	force := ast.NewForceValue(value, token.Pos(1))
	force.SetType(tb.animalTy)
	sol := solve.NewBuilder().
		Restrict(tb.dogTy, tb.u.OptionalType(tb.animalTy), solve.RestrictionValueToOptional).
		Build()

	result := Apply(tb.tc, sol, force, tb.dc)
	if assert.NotNil(t, result) {
		assert.Contains(t, diagCodes(tb.tc.Diags), ilerr.RedundantOptionalForce)
		assert.True(t, types.Equal(result.Type(), tb.animalTy))
	}
}

func (tb *testbed) methodDot(value *ast.DeclRef) (*ast.UnresolvedDot, *solve.Builder) {
	dot := ast.NewUnresolvedDot(ast.Range{}, value, token.Pos(1), tb.counterMethod.Name, token.Pos(2))
	loc := tb.tc.Locators.Intern(dot, locator.Elem(locator.Member))
	builder := solve.NewBuilder().Choose(loc, solve.OverloadChoice{
		Kind: solve.ChoiceDecl,
		Decl: tb.counterMethod,
	}, tb.counterMethod.Ty)
	return dot, builder
}

// binding a value-type method without applying its arguments is an error
func TestPartialApplicationOfValueTypeMethod(t *testing.T) {
	tb := newTestbed(t)

	value := tb.varRef("c", tb.counterTy, &types.LValue{Object: tb.counterTy})
	dot, builder := tb.methodDot(value)

	result := Apply(tb.tc, builder.Build(), dot, tb.dc)
	assert.NotNil(t, result)
	assert.Contains(t, diagCodes(tb.tc.Diags), ilerr.PartialValueTypeApplication)
}

// fully applying the method leaves the tracker empty
func TestFullApplicationOfValueTypeMethod(t *testing.T) {
	tb := newTestbed(t)

	value := tb.varRef("c", tb.counterTy, &types.LValue{Object: tb.counterTy})
	dot, builder := tb.methodDot(value)
	arg := tb.varRef("n", tb.int32Ty, tb.int32Ty)
	call := ast.NewCall(dot, arg, ast.CallNormal)

	result := Apply(tb.tc, builder.Build(), call, tb.dc)
	if !assert.NotNil(t, result) {
		return
	}
	assert.NotContains(t, diagCodes(tb.tc.Diags), ilerr.PartialValueTypeApplication)
	assert.True(t, types.Equal(result.Type(), tb.int32Ty))
}

// the ternary coerces both branches to the simplified result type
func TestIfCoercesBranches(t *testing.T) {
	tb := newTestbed(t)
	tb.registerLogicValue()

	cond := tb.varRef("flag", tb.boolTy(), tb.boolTy())
	thenE := tb.varRef("rex", tb.dogTy, tb.dogTy)
	elseE := tb.varRef("lassie", tb.animalTy, tb.animalTy)
	ifExpr := ast.NewIf(ast.Range{}, cond, thenE, elseE)
	ifExpr.SetType(tb.animalTy)

	result := Apply(tb.tc, tb.emptySolution(), ifExpr, tb.dc)
	if !assert.NotNil(t, result) {
		return
	}
	rewritten := result.(*ast.If)
	_, thenConverted := rewritten.Then.(*ast.DerivedToBase)
	assert.True(t, thenConverted, "then branch should convert up, got %T", rewritten.Then)
	assert.Same(t, ast.Expr(elseE), rewritten.Else, "else branch already has the result type")
}
