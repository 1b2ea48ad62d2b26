package apply

import (
	"github.com/tessel-lang/tessel/frontend/solve"
	"github.com/tessel-lang/tessel/frontend/types"
)

// SimplifyType substitutes every type variable in t with its fixed type,
// returning a type free of variables. Sugar constructors survive: the
// rewrite is structural and only variables are replaced. A variable
// without a binding is a solver bug.
func SimplifyType(sol *solve.Solution, t types.Type) types.Type {
	return types.Transform(t, func(sub types.Type) (types.Type, bool) {
		tv, ok := sub.(*types.TypeVar)
		if !ok {
			return nil, false
		}
		fixed := sol.GetFixedType(tv)
		if fixed == nil {
			invariant("type variable %s has no binding", tv)
		}
		// bindings may mention further variables
		return SimplifyType(sol, fixed), true
	})
}

func (rw *Rewriter) simplifyType(t types.Type) types.Type {
	return SimplifyType(rw.sol, t)
}
