package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tessel-lang/tessel/frontend/types"
)

func TestSubstitutedIsSugar(t *testing.T) {
	u := types.NewUniverse()
	intDecl := u.NewTypeDecl("Int", types.KindStruct)
	intTy := &types.Nominal{Decl: intDecl}
	arch := u.NewArchetype("T", nil, nil)

	sugared := &types.Substituted{Original: arch, Replacement: intTy}
	assert.True(t, types.Equal(sugared, intTy))
	assert.False(t, types.Identical(types.Type(sugared), &types.Func{In: intTy, Out: intTy}))
}

func TestCanonicalIdempotent(t *testing.T) {
	u := types.NewUniverse()
	intDecl := u.NewTypeDecl("Int", types.KindStruct)
	intTy := &types.Nominal{Decl: intDecl}
	arch := u.NewArchetype("T", nil, nil)

	ty := &types.Func{
		In:  &types.Substituted{Original: arch, Replacement: intTy},
		Out: u.OptionalType(intTy),
	}
	once := types.Canonical(ty)
	assert.True(t, types.Identical(once, types.Canonical(once)))
}

func TestScalarInitField(t *testing.T) {
	u := types.NewUniverse()
	intDecl := u.NewTypeDecl("Int", types.KindStruct)
	intTy := &types.Nominal{Decl: intDecl}

	plain := &types.Tuple{Fields: []types.TupleField{
		{Name: "x", Ty: intTy},
		{Name: "y", Ty: intTy, Default: types.DefaultNormal},
	}}
	assert.Equal(t, 0, plain.ScalarInitField())

	twoRequired := types.ScalarFields(intTy, intTy)
	assert.Equal(t, -1, twoRequired.ScalarInitField())

	variadicOnly := &types.Tuple{Fields: []types.TupleField{
		{Name: "rest", Ty: intTy, Variadic: true},
	}}
	assert.Equal(t, 0, variadicOnly.ScalarInitField())
}

func TestSubstWrapsInSugar(t *testing.T) {
	u := types.NewUniverse()
	intDecl := u.NewTypeDecl("Int", types.KindStruct)
	intTy := &types.Nominal{Decl: intDecl}
	arch := u.NewArchetype("T", nil, nil)

	fnTy := &types.Func{In: arch, Out: arch}
	substituted := types.Subst(map[*types.Archetype]types.Type{arch: intTy}, fnTy)

	fn, ok := substituted.(*types.Func)
	if !assert.True(t, ok) {
		return
	}
	sugar, ok := fn.In.(*types.Substituted)
	if assert.True(t, ok, "replacement should be wrapped in substituted sugar") {
		assert.Same(t, arch, sugar.Original)
	}
	assert.True(t, types.Equal(substituted, &types.Func{In: intTy, Out: intTy}))
}

func TestSubtypeChain(t *testing.T) {
	u := types.NewUniverse()
	animal := u.NewTypeDecl("Animal", types.KindClass)
	dog := u.NewTypeDecl("Dog", types.KindClass)
	dog.Superclass = &types.Nominal{Decl: animal}
	puppy := u.NewTypeDecl("Puppy", types.KindClass)
	puppy.Superclass = &types.Nominal{Decl: dog}

	animalTy := &types.Nominal{Decl: animal}
	puppyTy := &types.Nominal{Decl: puppy}
	assert.True(t, u.IsSubtype(puppyTy, animalTy))
	assert.False(t, u.IsSubtype(animalTy, puppyTy))
}

func TestCheckSubstitutionsVerifiesConformance(t *testing.T) {
	u := types.NewUniverse()
	proto := &types.ProtocolDecl{Name: "Equatable"}
	proto.SelfArch = u.NewArchetype("Self", []*types.ProtocolDecl{proto}, nil)

	conformingDecl := u.NewTypeDecl("Int", types.KindStruct)
	u.RegisterConformance(conformingDecl, &types.Conformance{Protocol: proto})
	otherDecl := u.NewTypeDecl("Opaque", types.KindStruct)

	arch := u.NewArchetype("T", []*types.ProtocolDecl{proto}, nil)

	good := map[*types.Archetype]types.Type{arch: &types.Nominal{Decl: conformingDecl}}
	conformances, err := u.CheckSubstitutions(good)
	assert.NoError(t, err)
	assert.NotNil(t, conformances[arch][proto])

	bad := map[*types.Archetype]types.Type{arch: &types.Nominal{Decl: otherDecl}}
	_, err = u.CheckSubstitutions(bad)
	assert.Error(t, err)
}
