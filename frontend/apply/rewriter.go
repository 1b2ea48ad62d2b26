// Package apply is the solution-application stage: it rewrites a solved,
// partially typed expression tree into a fully typed one, making every
// implicit conversion an explicit node, resolving overloaded references,
// and specializing polymorphic declarations.
package apply

import (
	"github.com/pkg/errors"

	"github.com/tessel-lang/tessel/frontend/ast"
	"github.com/tessel-lang/tessel/frontend/check"
	"github.com/tessel-lang/tessel/frontend/ilerr"
	"github.com/tessel-lang/tessel/frontend/locator"
	"github.com/tessel-lang/tessel/frontend/solve"
	"github.com/tessel-lang/tessel/frontend/types"
	"github.com/tessel-lang/tessel/internal/log"
)

var logger = log.DefaultLogger.With("section", "apply")

// Rewriter applies one Solution to one expression tree. It is
// single-threaded; its only mutable state is the partial-application
// tracker and the current declaration context.
type Rewriter struct {
	tc  *check.TypeChecker
	sol *solve.Solution
	dc  *types.DeclContext

	// partialApps tracks method references that bound self on a value
	// type and still await argument clauses; a nonzero count at finalize
	// means self would be captured by reference
	partialApps map[ast.Expr]int
}

func NewRewriter(tc *check.TypeChecker, sol *solve.Solution, dc *types.DeclContext) *Rewriter {
	return &Rewriter{
		tc:          tc,
		sol:         sol,
		dc:          dc,
		partialApps: make(map[ast.Expr]int),
	}
}

func (rw *Rewriter) diag(d ilerr.Diagnostic) {
	rw.tc.Diags = rw.tc.Diags.With(d)
}

// locatorFor interns the canonical locator anchored at e.
func (rw *Rewriter) locatorFor(e ast.Expr, elems ...locator.PathElem) *locator.Locator {
	return rw.tc.Locators.Intern(e, elems...)
}

// builderFor starts a locator builder anchored at e.
func (rw *Rewriter) builderFor(e ast.Expr) locator.Builder {
	return locator.From(rw.locatorFor(e))
}

// resolveBuilder interns whatever path the builder accumulated.
func (rw *Rewriter) resolveBuilder(b locator.Builder) *locator.Locator {
	return b.Resolve(rw.tc.Locators)
}

// Finalize flushes the partial-application tracker: anything left is a
// method whose self is a value type and was never fully applied.
func (rw *Rewriter) Finalize() {
	for e, remaining := range rw.partialApps {
		if remaining <= 0 {
			continue
		}
		name := "method"
		if call, ok := e.(*ast.Call); ok {
			if ref, ok := memberDeclOf(call.Fn); ok {
				name = ref.Name
			}
		}
		rw.diag(ilerr.New(ilerr.NewPartialValueTypeApplication{
			Positioner: e,
			Method:     name,
		}))
	}
}

func memberDeclOf(e ast.Expr) (*types.ValueDecl, bool) {
	switch e := e.(type) {
	case *ast.DeclRef:
		return e.Decl, true
	case *ast.MemberRef:
		return e.Decl, true
	case *ast.Specialize:
		return memberDeclOf(e.Sub)
	}
	return nil, false
}

// invariant panics with a wrapped error: the solver handed the rewriter a
// state it cannot materialize, which is unreachable on correct inputs.
func invariant(format string, args ...any) {
	panic(errors.Errorf("solution application invariant: "+format, args...))
}
