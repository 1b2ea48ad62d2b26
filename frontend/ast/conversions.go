package ast

import (
	"github.com/tessel-lang/tessel/frontend/types"
)

// ImplicitConversion is implemented by the nodes application inserts to
// make a coercion explicit. Each records its single operand; the node's
// type is the coercion target.
type ImplicitConversion interface {
	Expr
	ConversionSub() Expr
	conversionNode()
}

type conversionBase struct {
	exprBase
	Sub Expr
}

func (c *conversionBase) ConversionSub() Expr { return c.Sub }
func (c *conversionBase) conversionNode()     {}

func newConversion(sub Expr, ty types.Type) conversionBase {
	b := conversionBase{exprBase: base(RangeOf(sub), ty), Sub: sub}
	b.implicit = true
	return b
}

var (
	_ ImplicitConversion = (*Load)(nil)
	_ ImplicitConversion = (*Materialize)(nil)
	_ ImplicitConversion = (*Requalify)(nil)
	_ ImplicitConversion = (*TupleShuffle)(nil)
	_ ImplicitConversion = (*ScalarToTuple)(nil)
	_ ImplicitConversion = (*FunctionConversion)(nil)
	_ ImplicitConversion = (*BridgeToBlock)(nil)
	_ ImplicitConversion = (*MetatypeConversion)(nil)
	_ ImplicitConversion = (*DerivedToBase)(nil)
	_ ImplicitConversion = (*ArchetypeToSuper)(nil)
	_ ImplicitConversion = (*Erasure)(nil)
	_ ImplicitConversion = (*InjectIntoOptional)(nil)
)

// Load reads the value out of an lvalue.
type Load struct {
	conversionBase
}

func NewLoad(sub Expr, objectTy types.Type) *Load {
	return &Load{conversionBase: newConversion(sub, objectTy)}
}

// Materialize stores an rvalue into a settable temporary.
type Materialize struct {
	conversionBase
	// ForObject marks materialization of an object argument
	ForObject bool
}

func NewMaterialize(sub Expr, lvalueTy types.Type) *Materialize {
	return &Materialize{conversionBase: newConversion(sub, lvalueTy)}
}

// Requalify adjusts an lvalue's qualifier set.
type Requalify struct {
	conversionBase
	ForObject bool
}

func NewRequalify(sub Expr, lvalueTy types.Type) *Requalify {
	return &Requalify{conversionBase: newConversion(sub, lvalueTy)}
}

// Tuple shuffle source sentinels. Non-negative entries index source
// fields.
const (
	// ShuffleDefaultInitialize lets the callee materialize the declared
	// default
	ShuffleDefaultInitialize = -1
	// ShuffleFirstVariadic marks the variadic destination field; the
	// shuffle's VariadicArgs lists its sources
	ShuffleFirstVariadic = -2
	// ShuffleCallerDefaultInitialize marks a default synthesized at the
	// call site, stored in CallerDefaults
	ShuffleCallerDefaultInitialize = -3
)

// TupleShuffle rearranges a tuple value into another tuple shape:
// permutation, defaulted fields, and variadic collection.
type TupleShuffle struct {
	conversionBase
	// Sources has one entry per destination field
	Sources []int
	// VariadicArgs lists the source indices collected into the variadic
	// destination field
	VariadicArgs []int
	// CallerDefaults holds, per destination field, the call-site
	// synthesized default, or nil
	CallerDefaults []Expr
	// DefaultArgsOwner is the declaration whose defaults fill
	// ShuffleDefaultInitialize fields
	DefaultArgsOwner *types.ValueDecl
	// VarargsInjectionFn builds the slice for the variadic field
	VarargsInjectionFn Expr
}

func NewTupleShuffle(sub Expr, ty types.Type, sources []int, variadicArgs []int) *TupleShuffle {
	return &TupleShuffle{
		conversionBase: newConversion(sub, ty),
		Sources:        sources,
		VariadicArgs:   variadicArgs,
	}
}

// ScalarToTuple wraps a scalar into a tuple, filling the remaining fields
// from defaults.
type ScalarToTuple struct {
	conversionBase
	// ScalarField is the destination index the scalar lands in
	ScalarField int
	// Elements holds one entry per destination field: nil at the scalar
	// position, a caller default expression when one was synthesized
	Elements []Expr
	// DefaultArgsOwner supplies the defaults not synthesized here
	DefaultArgsOwner *types.ValueDecl
}

func NewScalarToTuple(sub Expr, ty types.Type, scalarField int, elements []Expr) *ScalarToTuple {
	return &ScalarToTuple{
		conversionBase: newConversion(sub, ty),
		ScalarField:    scalarField,
		Elements:       elements,
	}
}

// FunctionConversion converts between compatible function types.
type FunctionConversion struct {
	conversionBase
}

func NewFunctionConversion(sub Expr, ty types.Type) *FunctionConversion {
	return &FunctionConversion{conversionBase: newConversion(sub, ty)}
}

// BridgeToBlock converts a function value to its block form.
type BridgeToBlock struct {
	conversionBase
}

func NewBridgeToBlock(sub Expr, ty types.Type) *BridgeToBlock {
	return &BridgeToBlock{conversionBase: newConversion(sub, ty)}
}

// MetatypeConversion converts between metatypes along a subtype edge.
type MetatypeConversion struct {
	conversionBase
}

func NewMetatypeConversion(sub Expr, ty types.Type) *MetatypeConversion {
	return &MetatypeConversion{conversionBase: newConversion(sub, ty)}
}

// DerivedToBase moves a class value up its superclass chain.
type DerivedToBase struct {
	conversionBase
}

func NewDerivedToBase(sub Expr, ty types.Type) *DerivedToBase {
	return &DerivedToBase{conversionBase: newConversion(sub, ty)}
}

// ArchetypeToSuper converts an archetype value to its concrete superclass
// bound.
type ArchetypeToSuper struct {
	conversionBase
}

func NewArchetypeToSuper(sub Expr, superTy types.Type) *ArchetypeToSuper {
	return &ArchetypeToSuper{conversionBase: newConversion(sub, superTy)}
}

// Erasure converts a concrete value to an existential, recording the
// conformance witnesses for each composed protocol.
type Erasure struct {
	conversionBase
	Conformances []*types.Conformance
}

func NewErasure(sub Expr, ty types.Type, conformances []*types.Conformance) *Erasure {
	return &Erasure{conversionBase: newConversion(sub, ty), Conformances: conformances}
}

// InjectIntoOptional wraps a value of T into Optional<T>.
type InjectIntoOptional struct {
	conversionBase
}

func NewInjectIntoOptional(sub Expr, ty types.Type) *InjectIntoOptional {
	return &InjectIntoOptional{conversionBase: newConversion(sub, ty)}
}
