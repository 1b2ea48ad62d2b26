package check_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tessel-lang/tessel/frontend/ast"
	"github.com/tessel-lang/tessel/frontend/check"
	"github.com/tessel-lang/tessel/frontend/stdnames"
	"github.com/tessel-lang/tessel/frontend/types"
)

func newChecker() (*check.TypeChecker, *types.Universe) {
	u := types.NewUniverse()
	return check.NewTypeChecker(u, stdnames.Default()), u
}

func TestCheckedCastClassification(t *testing.T) {
	tc, u := newChecker()

	animal := u.NewTypeDecl("Animal", types.KindClass)
	dog := u.NewTypeDecl("Dog", types.KindClass)
	dog.Superclass = &types.Nominal{Decl: animal}
	animalTy := &types.Nominal{Decl: animal}
	dogTy := &types.Nominal{Decl: dog}

	proto := &types.ProtocolDecl{Name: "Pet"}
	proto.SelfArch = u.NewArchetype("Self", []*types.ProtocolDecl{proto}, nil)
	petTy := &types.Existential{Protocols: []*types.ProtocolDecl{proto}}
	arch := u.NewArchetype("T", []*types.ProtocolDecl{proto}, nil)

	assert.Equal(t, ast.CastCoercion, tc.TypeCheckCheckedCast(dogTy, animalTy))
	assert.Equal(t, ast.CastDowncast, tc.TypeCheckCheckedCast(animalTy, dogTy))
	assert.Equal(t, ast.CastExistentialToConcrete, tc.TypeCheckCheckedCast(petTy, dogTy))
	assert.Equal(t, ast.CastExistentialToArchetype, tc.TypeCheckCheckedCast(petTy, arch))
	assert.Equal(t, ast.CastArchetypeToConcrete, tc.TypeCheckCheckedCast(arch, dogTy))
	assert.Equal(t, ast.CastConcreteToArchetype, tc.TypeCheckCheckedCast(dogTy, arch))
	assert.Equal(t, ast.CastConcreteToUnrelatedExistential, tc.TypeCheckCheckedCast(animalTy, petTy))
}

func TestCoerceToRValue(t *testing.T) {
	tc, u := newChecker()
	intDecl := u.NewTypeDecl("Int", types.KindStruct)
	intTy := &types.Nominal{Decl: intDecl}

	decl := &types.ValueDecl{Name: "x", Kind: types.DeclVar, Ty: intTy}
	lvalueRef := ast.NewDeclRef(ast.Range{}, decl, &types.LValue{Object: intTy})

	loaded := tc.CoerceToRValue(lvalueRef)
	load, ok := loaded.(*ast.Load)
	if assert.True(t, ok) {
		assert.True(t, types.Equal(load.Type(), intTy))
	}

	rvalueRef := ast.NewDeclRef(ast.Range{}, decl, intTy)
	assert.Same(t, ast.Expr(rvalueRef), tc.CoerceToRValue(rvalueRef))
}

func TestLookupMember(t *testing.T) {
	tc, u := newChecker()

	decl := u.NewTypeDecl("Thing", types.KindStruct)
	member := decl.AddMember(&types.ValueDecl{Name: "size", Kind: types.DeclVar})
	assert.Same(t, member, tc.LookupMember(&types.Nominal{Decl: decl}, "size", nil))
	assert.Nil(t, tc.LookupMember(&types.Nominal{Decl: decl}, "missing", nil))

	proto := &types.ProtocolDecl{
		Name:         "Sized",
		Requirements: map[string]*types.ValueDecl{"count": {Name: "count", Kind: types.DeclVar}},
	}
	proto.SelfArch = u.NewArchetype("Self", []*types.ProtocolDecl{proto}, nil)
	existential := &types.Existential{Protocols: []*types.ProtocolDecl{proto}}
	assert.NotNil(t, tc.LookupMember(existential, "count", nil))
}
