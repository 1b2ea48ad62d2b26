package check

import (
	"github.com/tessel-lang/tessel/frontend/ast"
	"github.com/tessel-lang/tessel/frontend/types"
)

// TypeCheckCheckedCast classifies a checked cast from fromTy to toTy so
// later lowering knows which runtime check to emit.
func (tc *TypeChecker) TypeCheckCheckedCast(fromTy, toTy types.Type) ast.CheckedCastKind {
	u := tc.Universe
	fromTy = types.RValue(fromTy)

	// statically known subtype: the cast is a coercion
	if u.IsSubtype(fromTy, toTy) {
		return ast.CastCoercion
	}

	fromExistential := types.IsExistential(fromTy)
	_, fromArchetype := types.Canonical(fromTy).(*types.Archetype)
	toExistential := types.IsExistential(toTy)
	_, toArchetype := types.Canonical(toTy).(*types.Archetype)

	switch {
	case fromExistential && toArchetype:
		return ast.CastExistentialToArchetype
	case fromExistential:
		return ast.CastExistentialToConcrete
	case fromArchetype && toArchetype:
		return ast.CastArchetypeToArchetype
	case fromArchetype:
		return ast.CastArchetypeToConcrete
	case toArchetype:
		if u.IsClassOrClassBound(fromTy) && u.IsSubtype(toTy, fromTy) {
			return ast.CastSuperToArchetype
		}
		return ast.CastConcreteToArchetype
	case toExistential:
		return ast.CastConcreteToUnrelatedExistential
	case u.IsSubtype(toTy, fromTy):
		return ast.CastDowncast
	}
	return ast.CastUnresolved
}
