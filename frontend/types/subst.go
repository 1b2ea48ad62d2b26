package types

import (
	"github.com/hashicorp/go-set/v3"
	"github.com/pkg/errors"
)

// Subst replaces every archetype in t that has an entry in m, wrapping the
// replacement in Substituted sugar so printed types keep the parameter
// names. Archetypes without an entry are left alone.
func Subst(m map[*Archetype]Type, t Type) Type {
	return Transform(t, func(sub Type) (Type, bool) {
		if arch, ok := sub.(*Archetype); ok {
			if replacement, ok := m[arch]; ok {
				if _, isSub := replacement.(*Substituted); isSub {
					return replacement, true
				}
				return &Substituted{Original: arch, Replacement: replacement}, true
			}
		}
		return nil, false
	})
}

// SubstClosed reports whether applying m to t leaves no archetype of
// params unreplaced.
func SubstClosed(m map[*Archetype]Type, t Type, params *GenericParams) bool {
	if params == nil {
		return true
	}
	keys := set.From(params.Archetypes())
	closed := true
	Walk(Subst(m, t), func(sub Type) bool {
		if arch, ok := sub.(*Archetype); ok && keys.Contains(arch) {
			closed = false
		}
		return closed
	})
	return closed
}

// CheckSubstitutions verifies that every replacement satisfies the
// protocol requirements its archetype declares, returning the conformance
// map. The solver should have prevented any failure here; the check is a
// defense against a solver bug silently producing ill-typed output.
func (u *Universe) CheckSubstitutions(m map[*Archetype]Type) (map[*Archetype]map[*ProtocolDecl]*Conformance, error) {
	conformances := make(map[*Archetype]map[*ProtocolDecl]*Conformance, len(m))
	for arch, replacement := range m {
		byProto := make(map[*ProtocolDecl]*Conformance, len(arch.Conforms))
		for _, proto := range arch.Conforms {
			c, ok := u.ConformanceFor(replacement, proto)
			if !ok {
				return nil, errors.Errorf(
					"substitution %s := %s does not satisfy requirement %s",
					arch.Name, replacement, proto.Name)
			}
			byProto[proto] = c
		}
		conformances[arch] = byProto
	}
	return conformances, nil
}

// EncodeSubstitutions flattens an archetype map plus its conformances into
// the substitution list attached to specialized declaration references,
// following the generic parameter list's declaration order.
func EncodeSubstitutions(gp *GenericParams, m map[*Archetype]Type,
	conformances map[*Archetype]map[*ProtocolDecl]*Conformance) []Substitution {
	if gp == nil {
		return nil
	}
	encoded := make([]Substitution, 0, len(gp.Params))
	for _, param := range gp.Params {
		arch := param.Archetype
		replacement, ok := m[arch]
		if !ok {
			continue
		}
		sub := Substitution{Archetype: arch, Replacement: replacement}
		for _, proto := range arch.Conforms {
			if byProto, ok := conformances[arch]; ok {
				sub.Conformances = append(sub.Conformances, byProto[proto])
			}
		}
		encoded = append(encoded, sub)
	}
	return encoded
}
