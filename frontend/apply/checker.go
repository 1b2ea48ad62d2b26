package apply

import (
	"github.com/tessel-lang/tessel/frontend/ast"
	"github.com/tessel-lang/tessel/frontend/check"
	"github.com/tessel-lang/tessel/frontend/solve"
	"github.com/tessel-lang/tessel/frontend/types"
)

// StandaloneChecker is the self-contained ExprChecker: it handles the
// expressions the application stage itself synthesizes (magic-identifier
// defaults, plain literals, already-typed values) without a constraint
// system. An embedding compiler installs its full checker instead.
type StandaloneChecker struct {
	TC *check.TypeChecker
}

var _ check.ExprChecker = (*StandaloneChecker)(nil)

func (c *StandaloneChecker) rewriter(dc *types.DeclContext) *Rewriter {
	// synthesized expressions mention no type variables, so an empty
	// solution suffices
	return NewRewriter(c.TC, solve.NewBuilder().Build(), dc)
}

func (c *StandaloneChecker) TypeCheckExpression(expr ast.Expr, dc *types.DeclContext,
	contextTy types.Type, discarded bool) (ast.Expr, bool) {

	rw := c.rewriter(dc)
	switch e := expr.(type) {
	case *ast.MagicIdentifierLiteral:
		result := rw.rewriteMagicLiteral(e, contextTy)
		return result, result != nil
	case *ast.IntegerLiteral:
		result := rw.convertLiteral(e, contextTy, rw.integerLiteralSpec())
		return result, result != nil
	case *ast.FloatLiteral:
		result := rw.convertLiteral(e, contextTy, rw.floatLiteralSpec())
		return result, result != nil
	case *ast.StringLiteral:
		result := rw.convertLiteral(e, contextTy, rw.stringLiteralSpec())
		return result, result != nil
	}

	if expr.Type() == nil || types.HasTypeVariables(expr.Type()) {
		return nil, false
	}
	if contextTy == nil || types.Equal(expr.Type(), contextTy) {
		return expr, true
	}
	result := rw.coerceToType(expr, contextTy, rw.builderFor(expr))
	return result, result != nil
}

// TypeCheckClosureBody has nothing to do standalone: multi-statement
// bodies belong to the embedding compiler.
func (c *StandaloneChecker) TypeCheckClosureBody(closure *ast.Closure) bool {
	return closure.Body != nil && closure.Body.Type() != nil
}
