package solve

import (
	"github.com/tessel-lang/tessel/frontend/ast"
	"github.com/tessel-lang/tessel/frontend/locator"
	"github.com/tessel-lang/tessel/frontend/types"
)

// LiteralProtocolOf maps a literal expression to its general literal
// protocol in u, or nil for non-literal anchors.
func LiteralProtocolOf(u *types.Universe, anchor any) *types.ProtocolDecl {
	switch anchor.(type) {
	case *ast.IntegerLiteral:
		return u.Protocol(types.IntegerLiteralConvertible)
	case *ast.FloatLiteral:
		return u.Protocol(types.FloatLiteralConvertible)
	case *ast.CharacterLiteral:
		return u.Protocol(types.CharacterLiteralConvertible)
	case *ast.StringLiteral, *ast.InterpolatedStringLiteral:
		return u.Protocol(types.StringLiteralConvertible)
	case *ast.ArrayLiteral:
		return u.Protocol(types.ArrayLiteralConvertible)
	case *ast.DictionaryLiteral:
		return u.Protocol(types.DictionaryLiteralConvertible)
	}
	return nil
}

// FixedScore ranks the solution: conversion-attribute overloads cost 2
// each; a literal bound to its protocol's default type earns 1. The result
// is cached on first call.
func (s *Solution) FixedScore(u *types.Universe) int {
	if s.score != nil {
		return *s.score
	}

	score := 0
	s.Overloads(func(_ *locator.Locator, sel SelectedOverload) bool {
		if sel.Choice.Kind == ChoiceDecl && sel.Choice.Decl != nil && sel.Choice.Decl.Conversion {
			score -= 2
		}
		return true
	})

	s.Bindings(func(binding Binding) bool {
		if binding.Var.Loc == nil {
			return true
		}
		anchor := binding.Var.Loc.Anchor()
		proto := LiteralProtocolOf(u, anchor)
		if proto == nil {
			return true
		}
		defaultTy := u.DefaultLiteralType(proto)
		if defaultTy == nil {
			return true
		}
		boundDecl := types.NominalDeclOf(binding.Ty)
		if boundDecl != nil && boundDecl == types.NominalDeclOf(defaultTy) {
			score++
		}
		return true
	})

	s.score = &score
	return score
}
