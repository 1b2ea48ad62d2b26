package types

import (
	"github.com/hashicorp/go-set/v3"

	"github.com/tessel-lang/tessel/util"
)

// KnownProtocolKind names the stdlib protocols the application stage
// needs to find by role rather than by spelling.
type KnownProtocolKind uint8

const (
	IntegerLiteralConvertible KnownProtocolKind = iota
	BuiltinIntegerLiteralConvertible
	FloatLiteralConvertible
	BuiltinFloatLiteralConvertible
	CharacterLiteralConvertible
	BuiltinCharacterLiteralConvertible
	StringLiteralConvertible
	BuiltinStringLiteralConvertible
	StringInterpolationConvertible
	ArrayLiteralConvertible
	DictionaryLiteralConvertible
	LogicValue
	ArrayBound
)

// Universe owns the declarations, conformances and stdlib lookups for one
// compilation. It plays the role the surrounding compiler's AST context
// plays: a factory and registry, never freed, never mutated during
// application.
type Universe struct {
	typeDecls map[string]*TypeDecl
	protocols map[KnownProtocolKind]*ProtocolDecl

	conformances map[conformanceKey]*Conformance

	// OptionalDecl is the distinguished generic declaration optionals are
	// bound from
	OptionalDecl *TypeDecl
	// ArrayDecl backs array literal types such as Array<Int>
	ArrayDecl *TypeDecl

	// MaxBuiltinInt is the interim type of integer literals
	MaxBuiltinInt Type
	// MaxBuiltinFloat is the interim type of float literals
	MaxBuiltinFloat Type
	// WordInt is the platform word integer
	WordInt Type

	defaultLiteralTypes map[*ProtocolDecl]Type

	nextID uint64
}

// conformanceKey pairs a declaration with one of its protocols.
type conformanceKey = util.Pair[*TypeDecl, *ProtocolDecl]

func NewUniverse() *Universe {
	u := &Universe{
		typeDecls:           make(map[string]*TypeDecl),
		protocols:           make(map[KnownProtocolKind]*ProtocolDecl),
		conformances:        make(map[conformanceKey]*Conformance),
		defaultLiteralTypes: make(map[*ProtocolDecl]Type),
		MaxBuiltinInt:       &BuiltinInt{Width: 2048},
		MaxBuiltinFloat:     &BuiltinFloat{Width: 64},
		WordInt:             &BuiltinInt{Width: 64},
	}
	u.OptionalDecl = u.NewGenericTypeDecl("Optional", KindEnum, "T")
	u.ArrayDecl = u.NewGenericTypeDecl("Array", KindStruct, "Element")
	return u
}

func (u *Universe) FreshID() uint64 {
	u.nextID++
	return u.nextID
}

func (u *Universe) NewTypeDecl(name string, kind TypeDeclKind) *TypeDecl {
	d := &TypeDecl{Name: name, Kind: kind}
	u.typeDecls[name] = d
	return d
}

func (u *Universe) NewGenericTypeDecl(name string, kind TypeDeclKind, params ...string) *TypeDecl {
	gp := &GenericParams{}
	for _, p := range params {
		gp.Params = append(gp.Params, GenericParam{
			Name:      p,
			Archetype: u.NewArchetype(p, nil, nil),
		})
	}
	d := &TypeDecl{Name: name, Kind: kind, Generic: gp}
	u.typeDecls[name] = d
	return d
}

func (u *Universe) NewArchetype(name string, conforms []*ProtocolDecl, super Type) *Archetype {
	return &Archetype{ID: u.FreshID(), Name: name, Conforms: conforms, Super: super}
}

func (u *Universe) TypeDeclNamed(name string) *TypeDecl { return u.typeDecls[name] }

func (u *Universe) RegisterProtocol(kind KnownProtocolKind, p *ProtocolDecl) {
	u.protocols[kind] = p
}

// Protocol returns the stdlib protocol with the given role, or nil when
// the stdlib in this universe does not declare it.
func (u *Universe) Protocol(kind KnownProtocolKind) *ProtocolDecl {
	return u.protocols[kind]
}

func (u *Universe) RegisterConformance(decl *TypeDecl, c *Conformance) {
	u.conformances[util.NewPair(decl, c.Protocol)] = c
}

func (u *Universe) SetDefaultLiteralType(proto *ProtocolDecl, ty Type) {
	u.defaultLiteralTypes[proto] = ty
}

// DefaultLiteralType is the type a literal constrained only by proto
// defaults to, or nil.
func (u *Universe) DefaultLiteralType(proto *ProtocolDecl) Type {
	return u.defaultLiteralTypes[proto]
}

// abstractConformance witnesses a requirement against an archetype or an
// existential: every witness is the protocol requirement itself.
func abstractConformance(proto *ProtocolDecl) *Conformance {
	return &Conformance{Protocol: proto, Witnesses: proto.Requirements, Abstract: true}
}

// ConformanceFor looks up how t conforms to proto. Archetypes conform per
// their declared requirements; existentials per their composition; nominal
// and bound-generic types per the registered witness tables.
func (u *Universe) ConformanceFor(t Type, proto *ProtocolDecl) (*Conformance, bool) {
	switch t := Canonical(t).(type) {
	case *Archetype:
		if t.ConformsTo(proto) {
			return abstractConformance(proto), true
		}
	case *Existential:
		protos := set.From(t.Protocols)
		if protos.Contains(proto) {
			return abstractConformance(proto), true
		}
	case *Nominal:
		if c, ok := u.conformances[util.NewPair(t.Decl, proto)]; ok {
			return c, true
		}
	case *BoundGeneric:
		if c, ok := u.conformances[util.NewPair(t.Decl, proto)]; ok {
			return c, true
		}
	}
	return nil, false
}

// OptionalType builds Optional<value>.
func (u *Universe) OptionalType(value Type) Type {
	return &BoundGeneric{Decl: u.OptionalDecl, Args: []Type{value}}
}

// OptionalValueType unwraps Optional<T> to T.
func (u *Universe) OptionalValueType(t Type) (Type, bool) {
	bound, ok := Canonical(t).(*BoundGeneric)
	if !ok || bound.Decl != u.OptionalDecl || len(bound.Args) != 1 {
		return nil, false
	}
	return bound.Args[0], true
}

// SliceType builds the array slice type over elem.
func (u *Universe) SliceType(elem Type) *Slice { return &Slice{Elem: elem} }

// SuperclassOf returns the immediate superclass of t, or nil.
func (u *Universe) SuperclassOf(t Type) Type {
	switch t := Canonical(t).(type) {
	case *Archetype:
		return t.Super
	case *Nominal:
		return t.Decl.Superclass
	case *BoundGeneric:
		return t.Decl.Superclass
	}
	return nil
}

// MayHaveSuperclass reports whether t sits in a class hierarchy.
func (u *Universe) MayHaveSuperclass(t Type) bool {
	switch t := Canonical(t).(type) {
	case *Archetype:
		return t.Super != nil
	case *Nominal:
		return t.Decl.Kind == KindClass
	case *BoundGeneric:
		return t.Decl.Kind == KindClass
	}
	return false
}

// IsClassOrClassBound reports whether t names a class type.
func (u *Universe) IsClassOrClassBound(t Type) bool {
	switch t := Canonical(t).(type) {
	case *Nominal:
		return t.Decl.Kind == KindClass
	case *BoundGeneric:
		return t.Decl.Kind == KindClass
	}
	return false
}

// IsSubtype reports whether sub is t itself or reaches t through its
// superclass chain.
func (u *Universe) IsSubtype(sub, t Type) bool {
	if Equal(sub, t) {
		return true
	}
	for super := u.SuperclassOf(sub); super != nil; super = u.SuperclassOf(super) {
		if Equal(super, t) {
			return true
		}
	}
	return false
}

// HasReferenceSemantics reports whether values of t are shared references.
func (u *Universe) HasReferenceSemantics(t Type) bool {
	switch t := Canonical(t).(type) {
	case *Nominal:
		return t.Decl.RefSemantics()
	case *BoundGeneric:
		return t.Decl.RefSemantics()
	case *Archetype:
		return t.Super != nil
	case *Existential:
		return false
	}
	return false
}

// NominalDeclOf returns the declaration behind a nominal or bound-generic
// type, or nil.
func NominalDeclOf(t Type) *TypeDecl {
	switch t := Canonical(t).(type) {
	case *Nominal:
		return t.Decl
	case *BoundGeneric:
		return t.Decl
	}
	return nil
}

// IsExistential reports whether t is an existential type.
func IsExistential(t Type) bool {
	_, ok := Canonical(t).(*Existential)
	return ok
}
