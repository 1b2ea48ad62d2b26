package apply

import (
	"testing"

	"github.com/tessel-lang/tessel/frontend/ast"
	"github.com/tessel-lang/tessel/frontend/check"
	"github.com/tessel-lang/tessel/frontend/solve"
	"github.com/tessel-lang/tessel/frontend/stdnames"
	"github.com/tessel-lang/tessel/frontend/types"
)

// testbed is a miniature compilation: a universe with literal protocols,
// a couple of nominal types conforming to them, a class pair, a protocol
// for existential tests, and a value type with an instance method.
type testbed struct {
	t     *testing.T
	u     *types.Universe
	tc    *check.TypeChecker
	dc    *types.DeclContext
	names *stdnames.Registry

	int32Ty  *types.Nominal
	stringTy *types.Nominal

	animalTy *types.Nominal
	dogTy    *types.Nominal
	petProto *types.ProtocolDecl

	counterTy     *types.Nominal
	counterMethod *types.ValueDecl

	intBuiltinWitness *types.ValueDecl
}

func newTestbed(t *testing.T) *testbed {
	u := types.NewUniverse()
	names := stdnames.Default()
	tc := check.NewTypeChecker(u, names)
	tc.ExprCheck = &StandaloneChecker{TC: tc}
	module := types.NewModuleContext(&types.ModuleDecl{Name: "test"})

	tb := &testbed{t: t, u: u, tc: tc, dc: module, names: names}

	newProto := func(kind types.KnownProtocolKind, name string) *types.ProtocolDecl {
		p := &types.ProtocolDecl{Name: name}
		p.SelfArch = u.NewArchetype("Self", []*types.ProtocolDecl{p}, nil)
		u.RegisterProtocol(kind, p)
		return p
	}
	intGeneral := newProto(types.IntegerLiteralConvertible, names.IntegerLiteral.Protocol)
	intBuiltin := newProto(types.BuiltinIntegerLiteralConvertible, names.IntegerLiteral.BuiltinProtocol)
	newProto(types.StringLiteralConvertible, names.StringLiteral.Protocol)
	strBuiltin := newProto(types.BuiltinStringLiteralConvertible, names.StringLiteral.BuiltinProtocol)
	arrayLit := newProto(types.ArrayLiteralConvertible, names.ArrayLiteralProtocol)

	// Int32: converts from integer literals through the builtin witness
	int32Decl := u.NewTypeDecl("Int32", types.KindStruct)
	int32Decl.Context = module
	tb.int32Ty = &types.Nominal{Decl: int32Decl}
	tb.intBuiltinWitness = int32Decl.AddMember(&types.ValueDecl{
		Name:   names.IntegerLiteral.BuiltinRequirement,
		Kind:   types.DeclFunc,
		Static: true,
		Ty: &types.Func{
			In:  &types.Metatype{Instance: tb.int32Ty},
			Out: &types.Func{In: u.MaxBuiltinInt, Out: tb.int32Ty},
		},
		ArgClauses: 2,
	})
	u.RegisterConformance(int32Decl, &types.Conformance{
		Protocol:      intBuiltin,
		Witnesses:     map[string]*types.ValueDecl{tb.intBuiltinWitness.Name: tb.intBuiltinWitness},
		TypeWitnesses: map[string]types.Type{names.IntegerLiteral.BuiltinAssocType: u.MaxBuiltinInt},
	})
	u.SetDefaultLiteralType(intGeneral, tb.int32Ty)

	// String: converts from string literals via the builtin triple
	stringDecl := u.NewTypeDecl("String", types.KindStruct)
	stringDecl.Context = module
	tb.stringTy = &types.Nominal{Decl: stringDecl}
	strArgTy := types.ScalarFields(&types.BuiltinRawPointer{}, u.WordInt, &types.BuiltinInt{Width: 1})
	strWitness := stringDecl.AddMember(&types.ValueDecl{
		Name:   names.StringLiteral.BuiltinRequirement,
		Kind:   types.DeclFunc,
		Static: true,
		Ty: &types.Func{
			In:  &types.Metatype{Instance: tb.stringTy},
			Out: &types.Func{In: strArgTy, Out: tb.stringTy},
		},
		ArgClauses: 2,
	})
	u.RegisterConformance(stringDecl, &types.Conformance{
		Protocol:      strBuiltin,
		Witnesses:     map[string]*types.ValueDecl{strWitness.Name: strWitness},
		TypeWitnesses: map[string]types.Type{names.StringLiteral.BuiltinAssocType: strArgTy},
	})

	// Array<Element>: converts from array literals
	u.ArrayDecl.Context = module
	elemArch := u.ArrayDecl.Generic.Params[0].Archetype
	arrayWitness := u.ArrayDecl.AddMember(&types.ValueDecl{
		Name:   names.ArrayLiteralRequirement,
		Kind:   types.DeclFunc,
		Static: true,
		Ty: &types.Func{
			In: &types.Metatype{Instance: u.ArrayDecl.DeclaredType()},
			Out: &types.Func{
				In:  &types.Tuple{Fields: []types.TupleField{{Name: "elements", Ty: elemArch, Variadic: true}}},
				Out: u.ArrayDecl.DeclaredType(),
			},
		},
		ArgClauses: 2,
	})
	u.RegisterConformance(u.ArrayDecl, &types.Conformance{
		Protocol:  arrayLit,
		Witnesses: map[string]*types.ValueDecl{arrayWitness.Name: arrayWitness},
	})

	// a class pair and a protocol for subtype and existential coercions
	animalDecl := u.NewTypeDecl("Animal", types.KindClass)
	animalDecl.Context = module
	tb.animalTy = &types.Nominal{Decl: animalDecl}
	dogDecl := u.NewTypeDecl("Dog", types.KindClass)
	dogDecl.Context = module
	dogDecl.Superclass = tb.animalTy
	tb.dogTy = &types.Nominal{Decl: dogDecl}

	tb.petProto = &types.ProtocolDecl{Name: "Pet"}
	tb.petProto.SelfArch = u.NewArchetype("Self", []*types.ProtocolDecl{tb.petProto}, nil)
	u.RegisterConformance(dogDecl, &types.Conformance{Protocol: tb.petProto})

	// a value type with an instance method, for partial application
	counterDecl := u.NewTypeDecl("Counter", types.KindStruct)
	counterDecl.Context = module
	tb.counterTy = &types.Nominal{Decl: counterDecl}
	tb.counterMethod = counterDecl.AddMember(&types.ValueDecl{
		Name: "advance",
		Kind: types.DeclFunc,
		Ty: &types.Func{
			In:  tb.counterTy,
			Out: &types.Func{In: tb.int32Ty, Out: tb.int32Ty},
		},
		ArgClauses: 2,
	})

	return tb
}

func (tb *testbed) rewriter(sol *solve.Solution) *Rewriter {
	return NewRewriter(tb.tc, sol, tb.dc)
}

func (tb *testbed) emptySolution() *solve.Solution {
	return solve.NewBuilder().Build()
}

// boolTy lazily declares a Bool nominal type.
func (tb *testbed) boolTy() *types.Nominal {
	if decl := tb.u.TypeDeclNamed("Bool"); decl != nil {
		return &types.Nominal{Decl: decl}
	}
	decl := tb.u.NewTypeDecl("Bool", types.KindStruct)
	decl.Context = tb.dc
	return &types.Nominal{Decl: decl}
}

// registerLogicValue declares the LogicValue protocol and conforms Bool to
// it, with getLogicValue yielding a 1-bit builtin integer directly.
func (tb *testbed) registerLogicValue() {
	boolTy := tb.boolTy()
	proto := &types.ProtocolDecl{Name: tb.names.LogicValueProtocol}
	proto.SelfArch = tb.u.NewArchetype("Self", []*types.ProtocolDecl{proto}, nil)
	tb.u.RegisterProtocol(types.LogicValue, proto)

	witness := boolTy.Decl.AddMember(&types.ValueDecl{
		Name: tb.names.LogicValueRequirement,
		Kind: types.DeclFunc,
		Ty: &types.Func{
			In:  boolTy,
			Out: &types.Func{In: types.EmptyTuple(), Out: &types.BuiltinInt{Width: 1}},
		},
		ArgClauses: 2,
	})
	tb.u.RegisterConformance(boolTy.Decl, &types.Conformance{
		Protocol:  proto,
		Witnesses: map[string]*types.ValueDecl{witness.Name: witness},
	})
}

// varRef declares a module-scope variable and returns a reference to it
// with the given reference type (pass an lvalue to model a mutable slot).
func (tb *testbed) varRef(name string, declTy, refTy types.Type) *ast.DeclRef {
	decl := &types.ValueDecl{Name: name, Kind: types.DeclVar, Ty: declTy, Context: tb.dc}
	return ast.NewDeclRef(ast.Range{}, decl, refTy)
}
