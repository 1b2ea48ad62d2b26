package solve_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tessel-lang/tessel/frontend/ast"
	"github.com/tessel-lang/tessel/frontend/locator"
	"github.com/tessel-lang/tessel/frontend/solve"
	"github.com/tessel-lang/tessel/frontend/types"
)

func TestSolutionBindings(t *testing.T) {
	u := types.NewUniverse()
	intDecl := u.NewTypeDecl("Int", types.KindStruct)
	intTy := &types.Nominal{Decl: intDecl}

	tv := &types.TypeVar{ID: u.FreshID()}
	unbound := &types.TypeVar{ID: u.FreshID()}

	sol := solve.NewBuilder().Bind(tv, intTy).Build()
	assert.True(t, types.Equal(sol.GetFixedType(tv), intTy))
	assert.Nil(t, sol.GetFixedType(unbound))
}

func TestSolutionRestrictions(t *testing.T) {
	u := types.NewUniverse()
	intDecl := u.NewTypeDecl("Int", types.KindStruct)
	intTy := &types.Nominal{Decl: intDecl}
	optTy := u.OptionalType(intTy)

	sol := solve.NewBuilder().
		Restrict(intTy, optTy, solve.RestrictionValueToOptional).
		Build()

	kind, ok := sol.RestrictionFor(intTy, optTy)
	assert.True(t, ok)
	assert.Equal(t, solve.RestrictionValueToOptional, kind)

	_, ok = sol.RestrictionFor(optTy, intTy)
	assert.False(t, ok)
}

func TestSolutionOverloads(t *testing.T) {
	table := locator.NewTable()
	anchor := ast.NewIntegerLiteral(ast.Range{}, "1", nil)
	loc := table.Intern(anchor, locator.Elem(locator.Member))

	decl := &types.ValueDecl{Name: "f", Kind: types.DeclFunc}
	sol := solve.NewBuilder().
		Choose(loc, solve.OverloadChoice{Kind: solve.ChoiceDecl, Decl: decl}, nil).
		Build()

	sel, ok := sol.OverloadFor(loc)
	assert.True(t, ok)
	assert.Same(t, decl, sel.Choice.Decl)

	_, ok = sol.OverloadFor(table.Intern(anchor))
	assert.False(t, ok)
}

// conversion overloads cost two points; literals landing on their default
// type earn one
func TestFixedScore(t *testing.T) {
	u := types.NewUniverse()
	table := locator.NewTable()

	proto := &types.ProtocolDecl{Name: "IntegerLiteralConvertible"}
	u.RegisterProtocol(types.IntegerLiteralConvertible, proto)
	intDecl := u.NewTypeDecl("Int", types.KindStruct)
	intTy := &types.Nominal{Decl: intDecl}
	u.SetDefaultLiteralType(proto, intTy)

	lit := ast.NewIntegerLiteral(ast.Range{}, "7", nil)
	tv := &types.TypeVar{ID: u.FreshID(), Loc: table.Intern(lit)}

	convDecl := &types.ValueDecl{Name: "asString", Kind: types.DeclFunc, Conversion: true}
	convLoc := table.Intern(lit, locator.Elem(locator.ConversionMember))

	sol := solve.NewBuilder().
		Bind(tv, intTy).
		Choose(convLoc, solve.OverloadChoice{Kind: solve.ChoiceDecl, Decl: convDecl}, nil).
		Build()

	// -2 for the conversion overload, +1 for the default-typed literal
	assert.Equal(t, -1, sol.FixedScore(u))
	// cached on second call
	assert.Equal(t, -1, sol.FixedScore(u))
}
