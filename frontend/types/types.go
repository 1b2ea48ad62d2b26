package types

import (
	"fmt"
	"hash/fnv"
	"iter"
	"strconv"
	"strings"

	"github.com/tessel-lang/tessel/frontend/locator"
	"github.com/tessel-lang/tessel/util"
)

// Type is the polymorphic type IR. Every variant implements a structural
// rewrite via doMap and a structural hash; equality of types is hash
// equality over canonical forms, following the same scheme the solver uses.
type Type interface {
	fmt.Stringer
	Hash() uint64
	doMap(func(Type) Type) Type
	children() iter.Seq[Type]
}

var (
	_ Type = (*TypeVar)(nil)
	_ Type = (*BuiltinInt)(nil)
	_ Type = (*BuiltinFloat)(nil)
	_ Type = (*BuiltinRawPointer)(nil)
	_ Type = (*Tuple)(nil)
	_ Type = (*Func)(nil)
	_ Type = (*PolyFunc)(nil)
	_ Type = (*LValue)(nil)
	_ Type = (*Metatype)(nil)
	_ Type = (*Nominal)(nil)
	_ Type = (*BoundGeneric)(nil)
	_ Type = (*Archetype)(nil)
	_ Type = (*Existential)(nil)
	_ Type = (*Slice)(nil)
	_ Type = (*Substituted)(nil)
)

var emptySeq iter.Seq[Type] = func(func(Type) bool) {}

// Canonical strips sugar constructors: substituted types collapse to their
// replacement, and children are canonicalized structurally. Tuple field
// names and defaults are part of the canonical type, they are not sugar.
func Canonical(t Type) Type {
	if sub, ok := t.(*Substituted); ok {
		return Canonical(sub.Replacement)
	}
	return t.doMap(Canonical)
}

// Equal compares two types for equality of their canonical forms.
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return Canonical(a).Hash() == Canonical(b).Hash()
}

// Identical compares two types without canonicalizing, sugar included.
func Identical(a, b Type) bool {
	return a.Hash() == b.Hash()
}

// RValue strips an outer lvalue, if any.
func RValue(t Type) Type {
	if lv, ok := t.(*LValue); ok {
		return lv.Object
	}
	return t
}

// TypeVarID identifies a type variable within one constraint system.
type TypeVarID = uint64

// TypeVar is an identity-bearing placeholder introduced by the solver when
// opening a generic declaration reference.
type TypeVar struct {
	ID TypeVarID
	// OpenedFrom is the archetype this variable was opened from, or nil
	OpenedFrom *Archetype
	// Loc anchors the variable in the source expression tree
	Loc *locator.Locator
}

func (t *TypeVar) String() string {
	return "$T" + strconv.FormatUint(t.ID, 10)
}
func (t *TypeVar) Hash() uint64               { return 31 * 7919 * (t.ID + 1) }
func (t *TypeVar) doMap(func(Type) Type) Type { return t }
func (t *TypeVar) children() iter.Seq[Type]   { return emptySeq }

// BuiltinInt is a built-in integer of a fixed bit width.
type BuiltinInt struct {
	Width int
}

func (t *BuiltinInt) String() string             { return "Builtin.Int" + strconv.Itoa(t.Width) }
func (t *BuiltinInt) Hash() uint64               { return 0x9E3779B9 ^ uint64(t.Width)*16777619 }
func (t *BuiltinInt) doMap(func(Type) Type) Type { return t }
func (t *BuiltinInt) children() iter.Seq[Type]   { return emptySeq }

type BuiltinFloat struct {
	Width int
}

func (t *BuiltinFloat) String() string             { return "Builtin.Float" + strconv.Itoa(t.Width) }
func (t *BuiltinFloat) Hash() uint64               { return 0x85EBCA6B ^ uint64(t.Width)*16777619 }
func (t *BuiltinFloat) doMap(func(Type) Type) Type { return t }
func (t *BuiltinFloat) children() iter.Seq[Type]   { return emptySeq }

type BuiltinRawPointer struct{}

func (t *BuiltinRawPointer) String() string             { return "Builtin.RawPointer" }
func (t *BuiltinRawPointer) Hash() uint64               { return 0xC2B2AE35 }
func (t *BuiltinRawPointer) doMap(func(Type) Type) Type { return t }
func (t *BuiltinRawPointer) children() iter.Seq[Type]   { return emptySeq }

// DefaultArgKind describes how a tuple field obtains a value when the
// caller omits it.
type DefaultArgKind uint8

const (
	DefaultNone DefaultArgKind = iota
	// DefaultNormal means the callee materializes the declared default
	DefaultNormal
	DefaultFile
	DefaultLine
	DefaultColumn
)

type TupleField struct {
	// Name may be "" for unlabelled fields
	Name string
	// Ty is the field type; for variadic fields it is the element type
	Ty       Type
	Default  DefaultArgKind
	Variadic bool
}

// ExternalType is the type a value stored in this field has: the element
// slice for variadic fields, Ty otherwise.
func (f TupleField) ExternalType() Type {
	if f.Variadic {
		return &Slice{Elem: f.Ty}
	}
	return f.Ty
}

func (f TupleField) hasDefault() bool { return f.Default != DefaultNone }

func (f TupleField) String() string {
	var sb strings.Builder
	if f.Name != "" {
		sb.WriteString(f.Name)
		sb.WriteString(": ")
	}
	sb.WriteString(f.Ty.String())
	if f.Variadic {
		sb.WriteString("...")
	}
	if f.hasDefault() {
		sb.WriteString(" = default")
	}
	return sb.String()
}

type Tuple struct {
	Fields []TupleField
}

var emptyTuple = &Tuple{}

func EmptyTuple() *Tuple { return emptyTuple }

// ScalarFields builds an unlabelled tuple out of raw types.
func ScalarFields(tys ...Type) *Tuple {
	fields := make([]TupleField, len(tys))
	for i, ty := range tys {
		fields[i] = TupleField{Ty: ty}
	}
	return &Tuple{Fields: fields}
}

func (t *Tuple) String() string {
	strs := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		strs[i] = f.String()
	}
	return "(" + strings.Join(strs, ", ") + ")"
}

func (t *Tuple) Hash() uint64 {
	h := fnv.New64a()
	var hash uint64 = 9973
	for _, f := range t.Fields {
		_, _ = h.Write([]byte(f.Name))
		hash = hash*433 ^ f.Ty.Hash()
		hash = hash*433 ^ uint64(f.Default)
		if f.Variadic {
			hash = hash*433 ^ 0x51
		}
	}
	return hash ^ h.Sum64()
}

func (t *Tuple) doMap(f func(Type) Type) Type {
	mapped := make([]TupleField, len(t.Fields))
	for i, field := range t.Fields {
		mapped[i] = field
		mapped[i].Ty = f(field.Ty)
	}
	return &Tuple{Fields: mapped}
}

func (t *Tuple) children() iter.Seq[Type] {
	return func(yield func(Type) bool) {
		for _, f := range t.Fields {
			if !yield(f.Ty) {
				return
			}
		}
	}
}

// ScalarInitField returns the index of the field a single scalar value can
// initialize: the unique field without a default. A variadic field counts
// as a candidate when every other field has a default. Returns -1 when no
// such unique field exists.
func (t *Tuple) ScalarInitField() int {
	found := -1
	for i, f := range t.Fields {
		if f.hasDefault() {
			continue
		}
		if found != -1 {
			return -1
		}
		found = i
	}
	return found
}

// FieldIndexByName returns the index of the named field, or -1.
func (t *Tuple) FieldIndexByName(name string) int {
	if name == "" {
		return -1
	}
	for i, f := range t.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

type Func struct {
	In  Type
	Out Type
	// AutoClosure marks functions whose argument expression is implicitly
	// wrapped in a nullary closure at the call site
	AutoClosure bool
	Block       bool
}

func (t *Func) String() string {
	var sb strings.Builder
	if t.AutoClosure {
		sb.WriteString("@auto_closure ")
	}
	if t.Block {
		sb.WriteString("@block ")
	}
	sb.WriteString(t.In.String())
	sb.WriteString(" -> ")
	sb.WriteString(t.Out.String())
	return sb.String()
}

func (t *Func) Hash() uint64 {
	var hash uint64 = 2166136261
	hash = hash*16777619 ^ t.In.Hash()
	hash = hash*16777619 ^ t.Out.Hash()
	if t.AutoClosure {
		hash ^= 0xA0
	}
	if t.Block {
		hash ^= 0xB0
	}
	return hash
}

func (t *Func) doMap(f func(Type) Type) Type {
	return &Func{In: f(t.In), Out: f(t.Out), AutoClosure: t.AutoClosure, Block: t.Block}
}

func (t *Func) children() iter.Seq[Type] {
	return func(yield func(Type) bool) {
		if !yield(t.In) {
			return
		}
		yield(t.Out)
	}
}

// PolyFunc is a function type parameterized by a generic parameter list. It
// must be specialized with substitutions before being referenced as a value.
type PolyFunc struct {
	Params *GenericParams
	In     Type
	Out    Type
}

func (t *PolyFunc) String() string {
	names := make([]string, len(t.Params.Params))
	for i, p := range t.Params.Params {
		names[i] = p.Name
	}
	return "<" + strings.Join(names, ", ") + "> " + t.In.String() + " -> " + t.Out.String()
}

func (t *PolyFunc) Hash() uint64 {
	var hash uint64 = 104729
	for _, p := range t.Params.Params {
		hash = hash*31 ^ p.Archetype.Hash()
	}
	hash = hash*16777619 ^ t.In.Hash()
	hash = hash*16777619 ^ t.Out.Hash()
	return hash
}

func (t *PolyFunc) doMap(f func(Type) Type) Type {
	return &PolyFunc{Params: t.Params, In: f(t.In), Out: f(t.Out)}
}

func (t *PolyFunc) children() iter.Seq[Type] {
	return func(yield func(Type) bool) {
		if !yield(t.In) {
			return
		}
		yield(t.Out)
	}
}

// AsMonomorphic returns the inner function type.
func (t *PolyFunc) AsMonomorphic() *Func {
	return &Func{In: t.In, Out: t.Out}
}

// Qualifier is the lvalue qualifier set.
type Qualifier uint8

const (
	QualImplicit Qualifier = 1 << iota
	QualNonSettable

	// QualDefaultForMemberAccess is what an object argument to a mutating
	// member is qualified with
	QualDefaultForMemberAccess Qualifier = QualImplicit
)

func (q Qualifier) String() string {
	var parts []string
	if q&QualImplicit != 0 {
		parts = append(parts, "implicit")
	}
	if q&QualNonSettable != 0 {
		parts = append(parts, "nonsettable")
	}
	return strings.Join(parts, ",")
}

type LValue struct {
	Object Type
	Quals  Qualifier
}

func (t *LValue) String() string {
	if t.Quals == 0 {
		return "@lvalue " + t.Object.String()
	}
	return "@lvalue(" + t.Quals.String() + ") " + t.Object.String()
}

func (t *LValue) Hash() uint64 {
	return 0x100001B3*t.Object.Hash() ^ uint64(t.Quals)
}

func (t *LValue) doMap(f func(Type) Type) Type {
	return &LValue{Object: f(t.Object), Quals: t.Quals}
}

func (t *LValue) children() iter.Seq[Type] { return util.SingleIter(t.Object) }

type Metatype struct {
	Instance Type
}

func (t *Metatype) String() string { return t.Instance.String() + ".metatype" }
func (t *Metatype) Hash() uint64   { return 0x27D4EB2F * t.Instance.Hash() }
func (t *Metatype) doMap(f func(Type) Type) Type {
	return &Metatype{Instance: f(t.Instance)}
}
func (t *Metatype) children() iter.Seq[Type] { return util.SingleIter(t.Instance) }

// Nominal is a reference to a non-generic named type declaration.
type Nominal struct {
	Decl *TypeDecl
}

func (t *Nominal) String() string { return t.Decl.Name }
func (t *Nominal) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(t.Decl.Name))
	return 1299709 ^ h.Sum64()
}
func (t *Nominal) doMap(func(Type) Type) Type { return t }
func (t *Nominal) children() iter.Seq[Type]   { return emptySeq }

// BoundGeneric is a generic declaration applied to type arguments. Optional
// types are a distinguished BoundGeneric whose declaration is the
// universe's optional declaration.
type BoundGeneric struct {
	Decl *TypeDecl
	Args []Type
}

func (t *BoundGeneric) String() string {
	return t.Decl.Name + "<" + util.JoinString(t.Args, ", ") + ">"
}

func (t *BoundGeneric) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(t.Decl.Name))
	hash := h.Sum64()
	for _, arg := range t.Args {
		hash = hash*31 ^ arg.Hash()
	}
	return hash
}

func (t *BoundGeneric) doMap(f func(Type) Type) Type {
	mapped := make([]Type, len(t.Args))
	for i, arg := range t.Args {
		mapped[i] = f(arg)
	}
	return &BoundGeneric{Decl: t.Decl, Args: mapped}
}

func (t *BoundGeneric) children() iter.Seq[Type] {
	return func(yield func(Type) bool) {
		for _, arg := range t.Args {
			if !yield(arg) {
				return
			}
		}
	}
}

// Archetype is a rigid variable standing for an opened generic parameter,
// carrying the protocol requirements its declaration imposes.
type Archetype struct {
	ID       uint64
	Name     string
	Conforms []*ProtocolDecl
	// Super is the archetype's declared superclass bound, or nil
	Super Type
}

func (t *Archetype) String() string             { return t.Name }
func (t *Archetype) Hash() uint64               { return 15487469 * (t.ID + 1) }
func (t *Archetype) doMap(func(Type) Type) Type { return t }
func (t *Archetype) children() iter.Seq[Type]   { return emptySeq }

func (t *Archetype) ConformsTo(proto *ProtocolDecl) bool {
	for _, p := range t.Conforms {
		if p == proto {
			return true
		}
	}
	return false
}

// Existential is the type of values known only to conform to a composition
// of protocols.
type Existential struct {
	Protocols []*ProtocolDecl
}

func (t *Existential) String() string {
	if len(t.Protocols) == 1 {
		return t.Protocols[0].Name
	}
	names := make([]string, len(t.Protocols))
	for i, p := range t.Protocols {
		names[i] = p.Name
	}
	return "protocol<" + strings.Join(names, ", ") + ">"
}

func (t *Existential) Hash() uint64 {
	h := fnv.New64a()
	for _, p := range t.Protocols {
		_, _ = h.Write([]byte(p.Name))
	}
	return 32452843 ^ h.Sum64()
}

func (t *Existential) doMap(func(Type) Type) Type { return t }
func (t *Existential) children() iter.Seq[Type]   { return emptySeq }

// Slice is the array slice type, Elem[].
type Slice struct {
	Elem Type
}

func (t *Slice) String() string               { return t.Elem.String() + "[]" }
func (t *Slice) Hash() uint64                 { return 2166136261*16777619 ^ t.Elem.Hash() }
func (t *Slice) doMap(f func(Type) Type) Type { return &Slice{Elem: f(t.Elem)} }
func (t *Slice) children() iter.Seq[Type]     { return util.SingleIter(t.Elem) }

// Substituted records that an archetype was replaced by a concrete type.
// It is sugar: the canonical form is the canonical replacement. Preserving
// it keeps diagnostics printed in terms of the original parameter.
type Substituted struct {
	Original    *Archetype
	Replacement Type
}

func (t *Substituted) String() string { return t.Replacement.String() }
func (t *Substituted) Hash() uint64   { return t.Replacement.Hash() }
func (t *Substituted) doMap(f func(Type) Type) Type {
	return &Substituted{Original: t.Original, Replacement: f(t.Replacement)}
}
func (t *Substituted) children() iter.Seq[Type] { return util.SingleIter(t.Replacement) }

// Transform rewrites a type pre-order: when f returns ok, its result
// replaces the subterm without visiting children; otherwise the rewrite
// recurses structurally.
func Transform(t Type, f func(Type) (Type, bool)) Type {
	if mapped, ok := f(t); ok {
		return mapped
	}
	return t.doMap(func(child Type) Type { return Transform(child, f) })
}

// Walk visits t and every reachable subterm, pre-order, until visit
// returns false.
func Walk(t Type, visit func(Type) bool) {
	if !visit(t) {
		return
	}
	for child := range t.children() {
		Walk(child, visit)
	}
}

// HasTypeVariables reports whether any type variable is reachable from t.
func HasTypeVariables(t Type) bool {
	found := false
	Walk(t, func(sub Type) bool {
		if _, ok := sub.(*TypeVar); ok {
			found = true
		}
		return !found
	})
	return found
}
