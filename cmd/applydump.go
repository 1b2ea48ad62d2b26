package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/tessel-lang/tessel/frontend/apply"
	"github.com/tessel-lang/tessel/frontend/ast"
	"github.com/tessel-lang/tessel/frontend/check"
	"github.com/tessel-lang/tessel/frontend/ilerr"
	"github.com/tessel-lang/tessel/frontend/solve"
	"github.com/tessel-lang/tessel/frontend/stdnames"
	"github.com/tessel-lang/tessel/frontend/types"
)

// ApplyDumpCmd runs the solution-application stage over built-in demo
// scenarios and prints the tree before and after, so changes to the
// rewriter can be eyeballed without a full compiler pipeline.
var ApplyDumpCmd = &cobra.Command{
	Use:          "applydump [scenario...]",
	Short:        "Dump expression trees before and after solution application",
	RunE:         runApplyDump,
	SilenceUsage: true,
}

var stdnamesPath *string

func init() {
	stdnamesPath = ApplyDumpCmd.Flags().String("stdnames", "", "YAML file overriding stdlib identifier names")
}

func runApplyDump(c *cobra.Command, args []string) error {
	names := stdnames.Default()
	if *stdnamesPath != "" {
		loaded, err := stdnames.Load(*stdnamesPath)
		if err != nil {
			return err
		}
		names = loaded
	}

	color := isatty.IsTerminal(os.Stdout.Fd())
	selected := func(name string) bool {
		if len(args) == 0 {
			return true
		}
		for _, a := range args {
			if a == name {
				return true
			}
		}
		return false
	}

	for _, scenario := range demoScenarios(names) {
		if !selected(scenario.name) {
			continue
		}
		heading := "== " + scenario.name + " =="
		if color {
			heading = "\x1b[1m" + heading + "\x1b[0m"
		}
		fmt.Println(heading)
		fmt.Println("before:")
		fmt.Print(indent(ast.Dump(scenario.expr)))

		result := apply.Apply(scenario.tc, scenario.sol, scenario.expr, scenario.dc)
		if result == nil {
			fmt.Println("rewrite failed:")
			for _, d := range scenario.tc.Diags.Diagnostics() {
				fmt.Println("  " + ilerr.FormatWithCode(d))
			}
			continue
		}
		after := "after:"
		if color {
			after = "\x1b[32m" + after + "\x1b[0m"
		}
		fmt.Println(after)
		fmt.Print(indent(ast.Dump(result)))
		for _, d := range scenario.tc.Diags.Diagnostics() {
			fmt.Println("  diagnostic: " + d.Error())
		}
		fmt.Println()
	}
	return nil
}

func indent(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	return "  " + strings.Join(lines, "\n  ") + "\n"
}

type demoScenario struct {
	name string
	expr ast.Expr
	sol  *solve.Solution
	tc   *check.TypeChecker
	dc   *types.DeclContext
}

// demoUniverse is a miniature stdlib: Int32 convertible from integer
// literals and a class pair for subtype coercions.
func demoUniverse(names *stdnames.Registry) (*check.TypeChecker, *types.DeclContext) {
	u := types.NewUniverse()
	tc := check.NewTypeChecker(u, names)
	tc.ExprCheck = &apply.StandaloneChecker{TC: tc}

	module := types.NewModuleContext(&types.ModuleDecl{Name: "demo"})

	builtinProto := &types.ProtocolDecl{Name: names.IntegerLiteral.BuiltinProtocol}
	builtinProto.SelfArch = u.NewArchetype("Self", []*types.ProtocolDecl{builtinProto}, nil)
	u.RegisterProtocol(types.BuiltinIntegerLiteralConvertible, builtinProto)

	generalProto := &types.ProtocolDecl{Name: names.IntegerLiteral.Protocol}
	generalProto.SelfArch = u.NewArchetype("Self", []*types.ProtocolDecl{generalProto}, nil)
	u.RegisterProtocol(types.IntegerLiteralConvertible, generalProto)

	int32Decl := u.NewTypeDecl("Int32", types.KindStruct)
	int32Decl.Context = module
	int32Ty := &types.Nominal{Decl: int32Decl}
	maxInt := u.MaxBuiltinInt
	witness := int32Decl.AddMember(&types.ValueDecl{
		Name:   names.IntegerLiteral.BuiltinRequirement,
		Kind:   types.DeclFunc,
		Static: true,
		Ty: &types.Func{
			In:  &types.Metatype{Instance: int32Ty},
			Out: &types.Func{In: maxInt, Out: int32Ty},
		},
		ArgClauses: 2,
	})
	u.RegisterConformance(int32Decl, &types.Conformance{
		Protocol:      builtinProto,
		Witnesses:     map[string]*types.ValueDecl{witness.Name: witness},
		TypeWitnesses: map[string]types.Type{names.IntegerLiteral.BuiltinAssocType: maxInt},
	})
	u.SetDefaultLiteralType(generalProto, int32Ty)

	animalDecl := u.NewTypeDecl("Animal", types.KindClass)
	animalDecl.Context = module
	dogDecl := u.NewTypeDecl("Dog", types.KindClass)
	dogDecl.Context = module
	dogDecl.Superclass = &types.Nominal{Decl: animalDecl}

	return tc, module
}

func demoScenarios(names *stdnames.Registry) []demoScenario {
	var scenarios []demoScenario

	// integer literal landing on Int32
	{
		tc, dc := demoUniverse(names)
		u := tc.Universe
		int32Ty := &types.Nominal{Decl: u.TypeDeclNamed("Int32")}
		lit := ast.NewIntegerLiteral(ast.Range{}, "42", nil)
		tv := &types.TypeVar{ID: u.FreshID(), Loc: tc.Locators.Intern(lit)}
		lit.SetType(tv)
		sol := solve.NewBuilder().Bind(tv, int32Ty).Build()
		scenarios = append(scenarios, demoScenario{name: "integer-literal", expr: lit, sol: sol, tc: tc, dc: dc})
	}

	// subclass value assigned through a superclass lvalue
	{
		tc, dc := demoUniverse(names)
		u := tc.Universe
		animalTy := &types.Nominal{Decl: u.TypeDeclNamed("Animal")}
		dogTy := &types.Nominal{Decl: u.TypeDeclNamed("Dog")}

		destDecl := &types.ValueDecl{Name: "pet", Kind: types.DeclVar, Ty: animalTy, Context: dc}
		srcDecl := &types.ValueDecl{Name: "rex", Kind: types.DeclVar, Ty: dogTy, Context: dc}
		dest := ast.NewDeclRef(ast.Range{}, destDecl, &types.LValue{Object: animalTy})
		src := ast.NewDeclRef(ast.Range{}, srcDecl, dogTy)
		assign := ast.NewAssign(dest, src)
		sol := solve.NewBuilder().Build()
		scenarios = append(scenarios, demoScenario{name: "assign-superclass", expr: assign, sol: sol, tc: tc, dc: dc})
	}

	// conditional checked cast from an existential-free class pair
	{
		tc, dc := demoUniverse(names)
		u := tc.Universe
		animalTy := &types.Nominal{Decl: u.TypeDeclNamed("Animal")}
		dogTy := &types.Nominal{Decl: u.TypeDeclNamed("Dog")}
		valueDecl := &types.ValueDecl{Name: "x", Kind: types.DeclVar, Ty: animalTy, Context: dc}
		value := ast.NewDeclRef(ast.Range{}, valueDecl, animalTy)
		cast := ast.NewConditionalCheckedCast(value, dogTy)
		sol := solve.NewBuilder().Build()
		scenarios = append(scenarios, demoScenario{name: "conditional-cast", expr: cast, sol: sol, tc: tc, dc: dc})
	}

	return scenarios
}
