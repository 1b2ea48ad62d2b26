// Package solve holds the output side of the constraint solver: the
// Solution the application stage consumes. A Solution is built once by the
// solver and read-only afterwards, so its maps are persistent immutable
// structures.
package solve

import (
	"github.com/benbjohnson/immutable"

	"github.com/tessel-lang/tessel/frontend/locator"
	"github.com/tessel-lang/tessel/frontend/types"
)

// OverloadChoiceKind tags the union of ways an overloaded reference can
// resolve.
type OverloadChoiceKind uint8

const (
	ChoiceDecl OverloadChoiceKind = iota
	ChoiceDeclViaDynamic
	ChoiceTupleIndex
	ChoiceBaseType
	ChoiceFunctionReturningBaseType
	ChoiceIdentityFunction
	ChoiceTypeDecl
)

type OverloadChoice struct {
	Kind OverloadChoiceKind
	// Decl is set for ChoiceDecl and ChoiceDeclViaDynamic
	Decl *types.ValueDecl
	// BaseTy is set for the base-type kinds and identity functions
	BaseTy types.Type
	// TupleIdx is set for ChoiceTupleIndex
	TupleIdx int
	// TypeDecl is set for ChoiceTypeDecl
	TypeDecl *types.TypeDecl
}

// SelectedOverload pairs the solver's choice with the opened type of the
// chosen declaration reference.
type SelectedOverload struct {
	Choice     OverloadChoice
	OpenedType types.Type
}

// RestrictionKind tags a conversion between two specific canonical types,
// telling the rewriter which coercion to emit.
type RestrictionKind uint8

const (
	RestrictionTupleToTuple RestrictionKind = iota
	RestrictionScalarToTuple
	RestrictionSuperclass
	RestrictionExistential
	RestrictionValueToOptional
	RestrictionUser
)

// Binding pairs a type variable with its fixed type.
type Binding struct {
	Var *types.TypeVar
	Ty  types.Type
}

// RestrictionPair keys restrictions by the canonical hashes of both sides.
type RestrictionPair struct {
	From uint64
	To   uint64
}

type uint64Hasher struct{}

func (uint64Hasher) Hash(key types.TypeVarID) uint32 { return uint32(key * 2654435761) }
func (uint64Hasher) Equal(a, b types.TypeVarID) bool { return a == b }

type locatorHasher struct{}

func (locatorHasher) Hash(key *locator.Locator) uint32 { return uint32(key.Hash()) }
func (locatorHasher) Equal(a, b *locator.Locator) bool { return a == b }

type restrictionHasher struct{}

func (restrictionHasher) Hash(key RestrictionPair) uint32 {
	return uint32(key.From*31 ^ key.To*17)
}
func (restrictionHasher) Equal(a, b RestrictionPair) bool { return a == b }

// Solution is the solver's answer for one expression: type variable
// bindings, one overload choice per overloaded reference, and conversion
// restrictions per coercion edge.
type Solution struct {
	bindings     *immutable.Map[types.TypeVarID, Binding]
	overloads    *immutable.Map[*locator.Locator, SelectedOverload]
	restrictions *immutable.Map[RestrictionPair, RestrictionKind]

	score *int
}

// Builder accumulates a Solution while solving; Build freezes it.
type Builder struct {
	bindings     *immutable.MapBuilder[types.TypeVarID, Binding]
	overloads    *immutable.MapBuilder[*locator.Locator, SelectedOverload]
	restrictions *immutable.MapBuilder[RestrictionPair, RestrictionKind]
}

func NewBuilder() *Builder {
	return &Builder{
		bindings:     immutable.NewMapBuilder[types.TypeVarID, Binding](uint64Hasher{}),
		overloads:    immutable.NewMapBuilder[*locator.Locator, SelectedOverload](locatorHasher{}),
		restrictions: immutable.NewMapBuilder[RestrictionPair, RestrictionKind](restrictionHasher{}),
	}
}

func (b *Builder) Bind(tv *types.TypeVar, ty types.Type) *Builder {
	b.bindings.Set(tv.ID, Binding{Var: tv, Ty: ty})
	return b
}

func (b *Builder) Choose(loc *locator.Locator, choice OverloadChoice, openedType types.Type) *Builder {
	b.overloads.Set(loc, SelectedOverload{Choice: choice, OpenedType: openedType})
	return b
}

func (b *Builder) Restrict(from, to types.Type, kind RestrictionKind) *Builder {
	key := RestrictionPair{
		From: types.Canonical(from).Hash(),
		To:   types.Canonical(to).Hash(),
	}
	b.restrictions.Set(key, kind)
	return b
}

func (b *Builder) Build() *Solution {
	return &Solution{
		bindings:     b.bindings.Map(),
		overloads:    b.overloads.Map(),
		restrictions: b.restrictions.Map(),
	}
}

// GetFixedType returns the type bound to tv, or nil when unbound. An
// unbound variable reachable from the expression tree is a solver bug.
func (s *Solution) GetFixedType(tv *types.TypeVar) types.Type {
	binding, ok := s.bindings.Get(tv.ID)
	if !ok {
		return nil
	}
	return binding.Ty
}

// OverloadFor returns the recorded overload choice for the locator.
func (s *Solution) OverloadFor(loc *locator.Locator) (SelectedOverload, bool) {
	return s.overloads.Get(loc)
}

// RestrictionFor returns the conversion restriction recorded for the
// canonical (from, to) pair.
func (s *Solution) RestrictionFor(from, to types.Type) (RestrictionKind, bool) {
	key := RestrictionPair{
		From: types.Canonical(from).Hash(),
		To:   types.Canonical(to).Hash(),
	}
	return s.restrictions.Get(key)
}

// Bindings iterates every recorded binding.
func (s *Solution) Bindings(yield func(Binding) bool) {
	itr := s.bindings.Iterator()
	for !itr.Done() {
		_, binding, _ := itr.Next()
		if !yield(binding) {
			return
		}
	}
}

// Overloads iterates every recorded overload choice.
func (s *Solution) Overloads(yield func(*locator.Locator, SelectedOverload) bool) {
	itr := s.overloads.Iterator()
	for !itr.Done() {
		loc, sel, _ := itr.Next()
		if !yield(loc, sel) {
			return
		}
	}
}
