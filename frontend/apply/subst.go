package apply

import (
	"github.com/tessel-lang/tessel/frontend/ast"
	"github.com/tessel-lang/tessel/frontend/ilerr"
	"github.com/tessel-lang/tessel/frontend/types"
)

// Substitutions is the result of closing an opened polymorphic type over a
// Solution: the archetype map, the conformances witnessing each archetype
// requirement, and the encoded list for declaration references.
type Substitutions struct {
	Map          map[*types.Archetype]types.Type
	Conformances map[*types.Archetype]map[*types.ProtocolDecl]*types.Conformance
	Encoded      []types.Substitution
}

// computeSubstitutions derives the archetype map from an opened type: each
// type variable annotated with the archetype it was opened from records
// archetype -> simplified binding. The returned type is the opened type
// re-expressed with substituted sugar in place of each variable, so the
// original parameter names survive printing.
func (rw *Rewriter) computeSubstitutions(gp *types.GenericParams, openedTy types.Type) (types.Type, *Substitutions) {
	subs := &Substitutions{Map: make(map[*types.Archetype]types.Type)}

	types.Walk(openedTy, func(sub types.Type) bool {
		if tv, ok := sub.(*types.TypeVar); ok && tv.OpenedFrom != nil {
			if _, done := subs.Map[tv.OpenedFrom]; !done {
				subs.Map[tv.OpenedFrom] = rw.simplifyType(tv)
			}
		}
		return true
	})

	substituted := types.Transform(openedTy, func(sub types.Type) (types.Type, bool) {
		tv, ok := sub.(*types.TypeVar)
		if !ok {
			return nil, false
		}
		if tv.OpenedFrom != nil {
			return &types.Substituted{Original: tv.OpenedFrom, Replacement: subs.Map[tv.OpenedFrom]}, true
		}
		return rw.simplifyType(tv), true
	})

	// verify the substitutions against the declared requirements; the
	// solver should have made failure impossible
	conformances, err := rw.tc.Universe.CheckSubstitutions(subs.Map)
	if err != nil {
		logger.Warn("substitution verification failed", "err", err)
		rw.diag(ilerr.New(ilerr.NewBrokenProtocol{
			Positioner: ast.Range{},
			Protocol:   err.Error(),
		}))
		return nil, nil
	}
	subs.Conformances = conformances
	subs.Encoded = types.EncodeSubstitutions(gp, subs.Map, conformances)
	return substituted, subs
}

// specialize attaches substitutions to a reference whose type is
// polymorphic. References to non-polymorphic declarations pass through
// unchanged.
func (rw *Rewriter) specialize(ref ast.Expr, polyFn *types.PolyFunc, openedTy types.Type) ast.Expr {
	if polyFn == nil {
		return ref
	}
	substTy, subs := rw.computeSubstitutions(polyFn.Params, openedTy)
	if subs == nil {
		return nil
	}
	return rw.tc.BuildSpecializeExpr(ref, substTy, subs.Encoded)
}

// baseConversionSubs opens the owner of a generic member against the
// concrete object type. The sub-problem has a unique answer: the object
// type either is, or inherits from, a binding of the owner's declared
// type, so matching the type argument lists yields the map.
func (rw *Rewriter) baseConversionSubs(owner *types.TypeDecl, objectTy types.Type) map[*types.Archetype]types.Type {
	if owner.Generic == nil {
		return nil
	}
	objectTy = types.RValue(objectTy)
	for ty := objectTy; ty != nil; ty = rw.tc.Universe.SuperclassOf(ty) {
		bound, ok := types.Canonical(ty).(*types.BoundGeneric)
		if !ok || bound.Decl != owner {
			continue
		}
		m := make(map[*types.Archetype]types.Type, len(owner.Generic.Params))
		for i, p := range owner.Generic.Params {
			if i < len(bound.Args) {
				m[p.Archetype] = bound.Args[i]
			}
		}
		return m
	}
	invariant("object type %s is not a binding of generic owner %s", objectTy, owner.Name)
	return nil
}

// substMemberSignature substitutes a member's signature through the base
// conversion map, collapsing a polymorphic function type into a
// monomorphic one when every generic parameter was replaced.
func (rw *Rewriter) substMemberSignature(member *types.ValueDecl, m map[*types.Archetype]types.Type) types.Type {
	substituted := types.Subst(m, member.Ty)
	if poly, ok := substituted.(*types.PolyFunc); ok {
		allReplaced := true
		for _, arch := range poly.Params.Archetypes() {
			if _, ok := m[arch]; !ok {
				allReplaced = false
				break
			}
		}
		if allReplaced {
			return poly.AsMonomorphic()
		}
	}
	return substituted
}
