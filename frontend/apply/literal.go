package apply

import (
	"github.com/tessel-lang/tessel/frontend/ast"
	"github.com/tessel-lang/tessel/frontend/ilerr"
	"github.com/tessel-lang/tessel/frontend/types"
)

// literalSpec parameterizes the two-level literal conversion scheme: a
// general protocol the target type conforms to, and a builtin protocol
// whose witness consumes the raw literal.
type literalSpec struct {
	proto        *types.ProtocolDecl
	builtinProto *types.ProtocolDecl

	requirement        string
	builtinRequirement string

	// argAssoc and builtinArgAssoc name the associated types carrying
	// each conversion's argument type; directBuiltinArgTy short-circuits
	// the builtin lookup when set
	argAssoc           string
	builtinArgAssoc    string
	directBuiltinArgTy types.Type

	// validBuiltinArg vets the builtin argument type
	validBuiltinArg func(types.Type) bool
}

func (rw *Rewriter) brokenLiteralProtocol(at ast.Positioner, proto *types.ProtocolDecl, requirement string) {
	rw.diag(ilerr.New(ilerr.NewBrokenProtocol{
		Positioner:  at,
		Protocol:    proto.Name,
		Requirement: requirement,
	}))
}

// metatypeBase builds the implicit T.metatype base literal conversions
// call their witnesses on.
func (rw *Rewriter) metatypeBase(at ast.Positioner, ty types.Type) ast.Expr {
	lit := ast.NewMetatypeLiteral(ast.RangeOf(at), nil, ty)
	lit.SetImplicit()
	lit.SetType(&types.Metatype{Instance: ty})
	return lit
}

// convertLiteral converts a literal node to ty. When ty conforms to the
// builtin protocol directly the literal is retyped to the builtin argument
// type and handed to the builtin witness; otherwise the literal first goes
// through the builtin conversion to the general protocol's argument type,
// and the general witness finishes the job.
func (rw *Rewriter) convertLiteral(lit ast.Expr, ty types.Type, spec literalSpec) ast.Expr {
	if spec.proto == nil || spec.builtinProto == nil {
		invariant("literal protocols are not declared")
	}

	result := rw.convertLiteralInner(lit, ty, spec)
	if result == nil {
		return nil
	}

	// sugar: a literal landing on its protocol's default type prints as
	// the pretty default
	if defaultTy := rw.tc.DefaultLiteralType(spec.proto); defaultTy != nil && types.Equal(ty, defaultTy) {
		result.SetType(defaultTy)
	}
	return result
}

func (rw *Rewriter) convertLiteralInner(lit ast.Expr, ty types.Type, spec literalSpec) ast.Expr {
	if conf, ok := rw.tc.ConformsToProtocol(ty, spec.builtinProto); ok {
		return rw.convertViaBuiltinProtocol(lit, ty, conf, spec)
	}

	conf, ok := rw.tc.ConformsToProtocol(ty, spec.proto)
	if !ok {
		invariant("literal target %s conforms to neither %s nor %s",
			ty, spec.proto.Name, spec.builtinProto.Name)
	}

	argTy := conf.TypeWitnesses[spec.argAssoc]
	if argTy == nil {
		rw.brokenLiteralProtocol(lit, spec.proto, spec.argAssoc)
		return nil
	}

	builtinConf, ok := rw.tc.ConformsToProtocol(argTy, spec.builtinProto)
	if !ok {
		rw.brokenLiteralProtocol(lit, spec.proto, spec.argAssoc)
		return nil
	}
	converted := rw.convertViaBuiltinProtocol(lit, argTy, builtinConf, spec)
	if converted == nil {
		return nil
	}

	call := rw.callWitness(rw.metatypeBase(lit, ty), spec.proto, conf, spec.requirement, []ast.Expr{converted})
	if call == nil {
		return nil
	}
	call.SetType(ty)
	return call
}

// convertViaBuiltinProtocol retypes the raw literal to the builtin
// argument type and calls the builtin witness on ty's metatype.
func (rw *Rewriter) convertViaBuiltinProtocol(lit ast.Expr, ty types.Type, conf *types.Conformance, spec literalSpec) ast.Expr {
	argTy := conf.TypeWitnesses[spec.builtinArgAssoc]
	if argTy == nil {
		argTy = spec.directBuiltinArgTy
	}
	if argTy == nil {
		rw.brokenLiteralProtocol(lit, spec.builtinProto, spec.builtinArgAssoc)
		return nil
	}
	if spec.validBuiltinArg != nil && !spec.validBuiltinArg(argTy) {
		rw.brokenLiteralProtocol(lit, spec.builtinProto, spec.builtinRequirement)
		return nil
	}

	lit.SetType(argTy)
	call := rw.callWitness(rw.metatypeBase(lit, ty), spec.builtinProto, conf, spec.builtinRequirement, []ast.Expr{lit})
	if call == nil {
		return nil
	}
	call.SetType(ty)
	return call
}
