package types

import "strings"

// The declaration model is the smallest slice of the surrounding compiler
// the application stage needs: enough to ask who owns a member, whether a
// container has reference semantics, and what a declaration's unopened
// type is. Name binding and declaration checking happen elsewhere.

type TypeDeclKind uint8

const (
	KindStruct TypeDeclKind = iota
	KindClass
	KindEnum
	KindProtocol
)

type TypeDecl struct {
	Name    string
	Context *DeclContext
	Kind    TypeDeclKind
	// Generic is non-nil for generic declarations
	Generic *GenericParams
	// Superclass is set on classes with a base class
	Superclass Type
	// Members maps member names to declarations
	Members map[string]*ValueDecl
}

// Member returns the named member declaration, or nil.
func (d *TypeDecl) Member(name string) *ValueDecl {
	if d.Members == nil {
		return nil
	}
	return d.Members[name]
}

// AddMember registers a member and points its context at this type.
func (d *TypeDecl) AddMember(m *ValueDecl) *ValueDecl {
	if d.Members == nil {
		d.Members = make(map[string]*ValueDecl)
	}
	d.Members[m.Name] = m
	if m.Context == nil {
		m.Context = &DeclContext{Parent: d.Context, Owner: d}
	}
	return m
}

func (d *TypeDecl) RefSemantics() bool { return d.Kind == KindClass }

// DeclaredType is the type this declaration declares: a nominal for
// non-generic declarations, and the unspecialized bound-generic (bound to
// its own archetypes) otherwise.
func (d *TypeDecl) DeclaredType() Type {
	if d.Generic == nil {
		return &Nominal{Decl: d}
	}
	args := make([]Type, len(d.Generic.Params))
	for i, p := range d.Generic.Params {
		args[i] = p.Archetype
	}
	return &BoundGeneric{Decl: d, Args: args}
}

type GenericParam struct {
	Name      string
	Archetype *Archetype
}

type GenericParams struct {
	Params []GenericParam
}

func (g *GenericParams) Archetypes() []*Archetype {
	archetypes := make([]*Archetype, len(g.Params))
	for i, p := range g.Params {
		archetypes[i] = p.Archetype
	}
	return archetypes
}

func (g *GenericParams) String() string {
	names := make([]string, len(g.Params))
	for i, p := range g.Params {
		names[i] = p.Name
	}
	return "<" + strings.Join(names, ", ") + ">"
}

// ProtocolDecl is a protocol: named requirements plus associated types.
// Associated type witnesses live on each Conformance.
type ProtocolDecl struct {
	Name    string
	Context *DeclContext
	// SelfArch is the protocol's Self archetype, conforming to the
	// protocol itself
	SelfArch *Archetype
	// Requirements maps requirement names to their declarations; the
	// requirement types are written in terms of SelfArch
	Requirements map[string]*ValueDecl
	// AssocTypes lists associated type names
	AssocTypes []string
}

func (p *ProtocolDecl) DeclaredType() Type { return &Existential{Protocols: []*ProtocolDecl{p}} }

func (p *ProtocolDecl) Requirement(name string) *ValueDecl {
	if p.Requirements == nil {
		return nil
	}
	return p.Requirements[name]
}

type ValueDeclKind uint8

const (
	DeclVar ValueDeclKind = iota
	DeclFunc
	DeclConstructor
	DeclEnumElement
	DeclSubscript
)

type ValueDecl struct {
	Name    string
	Context *DeclContext
	Kind    ValueDeclKind
	// Ty is the declaration's unopened type. Methods are curried:
	// Self -> (Args -> Result).
	Ty     Type
	Static bool
	// Conversion marks declarations bearing the conversion attribute
	Conversion bool
	// ArgClauses is the number of argument clauses the declaration takes
	// when fully applied (2 for instance methods: self, then arguments)
	ArgClauses int
}

// IsInstanceMember reports whether referencing this declaration through a
// base binds the base as the instance context.
func (d *ValueDecl) IsInstanceMember() bool {
	if d.Static || d.Context == nil || (d.Context.Owner == nil && d.Context.OwnerProtocol == nil) {
		return false
	}
	switch d.Kind {
	case DeclFunc, DeclVar, DeclSubscript:
		return true
	case DeclConstructor, DeclEnumElement:
		// constructors and enum elements are used through the metatype
		return false
	}
	return false
}

// RequiresContextBinding reports whether a reference must be wrapped in a
// call binding the base (methods, enum elements, constructors).
func (d *ValueDecl) RequiresContextBinding() bool {
	switch d.Kind {
	case DeclFunc, DeclConstructor, DeclEnumElement:
		return d.Context != nil && (d.Context.Owner != nil || d.Context.OwnerProtocol != nil)
	}
	return false
}

// Conformance is the witness table tying a concrete type to a protocol.
type Conformance struct {
	Protocol *ProtocolDecl
	// Witnesses maps requirement names to the conforming type's
	// declarations
	Witnesses map[string]*ValueDecl
	// TypeWitnesses maps associated type names to concrete types
	TypeWitnesses map[string]Type
	// Abstract conformances witness an archetype's declared requirement:
	// the witnesses are the protocol requirements themselves
	Abstract bool
}

func (c *Conformance) Witness(name string) *ValueDecl {
	if c.Witnesses == nil {
		return nil
	}
	return c.Witnesses[name]
}

// Substitution is one entry of an encoded substitution list attached to a
// specialized declaration reference.
type Substitution struct {
	Archetype   *Archetype
	Replacement Type
	// Conformances witness each protocol the archetype requires, in
	// declaration order
	Conformances []*Conformance
}

// ModuleDecl is the root declaration context.
type ModuleDecl struct {
	Name string
}

// DeclContext is a node in the declaration context tree: a module, a type
// body, or a function body.
type DeclContext struct {
	Parent *DeclContext
	Module *ModuleDecl
	Owner  *TypeDecl
	// OwnerProtocol is set instead of Owner inside protocol bodies
	OwnerProtocol *ProtocolDecl
	Fn            *ValueDecl
}

func NewModuleContext(m *ModuleDecl) *DeclContext { return &DeclContext{Module: m} }

func (dc *DeclContext) WithOwner(owner *TypeDecl) *DeclContext {
	return &DeclContext{Parent: dc, Owner: owner}
}

func (dc *DeclContext) WithProtocol(p *ProtocolDecl) *DeclContext {
	return &DeclContext{Parent: dc, OwnerProtocol: p}
}

func (dc *DeclContext) WithFn(fn *ValueDecl) *DeclContext {
	return &DeclContext{Parent: dc, Fn: fn}
}

func (dc *DeclContext) IsModuleScope() bool { return dc != nil && dc.Module != nil }

// DeclaredTypeOfContext is the type declared by the innermost enclosing
// type context, or nil at module scope.
func (dc *DeclContext) DeclaredTypeOfContext() Type {
	for ctx := dc; ctx != nil; ctx = ctx.Parent {
		if ctx.Owner != nil {
			return ctx.Owner.DeclaredType()
		}
		if ctx.OwnerProtocol != nil {
			return ctx.OwnerProtocol.DeclaredType()
		}
	}
	return nil
}

// OwnerTypeDecl is the innermost enclosing type declaration, or nil.
func (dc *DeclContext) OwnerTypeDecl() *TypeDecl {
	for ctx := dc; ctx != nil; ctx = ctx.Parent {
		if ctx.Owner != nil {
			return ctx.Owner
		}
	}
	return nil
}

// OwnerProtocolDecl is the innermost enclosing protocol, or nil.
func (dc *DeclContext) OwnerProtocolDecl() *ProtocolDecl {
	for ctx := dc; ctx != nil; ctx = ctx.Parent {
		if ctx.OwnerProtocol != nil {
			return ctx.OwnerProtocol
		}
	}
	return nil
}
