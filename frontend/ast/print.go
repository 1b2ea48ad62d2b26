package ast

import (
	"fmt"
	"strings"
)

// Dump renders the expression tree one node per line, children indented,
// with each node's kind and type. Intended for debugging and golden
// output, not for users.
func Dump(e Expr) string {
	var sb strings.Builder
	dump(&sb, e, 0)
	return sb.String()
}

func dump(sb *strings.Builder, e Expr, depth int) {
	if e == nil {
		return
	}
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString(describe(e))
	if ty := e.Type(); ty != nil {
		sb.WriteString(" : ")
		sb.WriteString(ty.String())
	}
	sb.WriteString("\n")
	for _, child := range Children(e) {
		dump(sb, child, depth+1)
	}
}

func describe(e Expr) string {
	switch e := e.(type) {
	case *IntegerLiteral:
		return fmt.Sprintf("integer_literal %q", e.Text)
	case *FloatLiteral:
		return fmt.Sprintf("float_literal %q", e.Text)
	case *CharacterLiteral:
		return fmt.Sprintf("character_literal %q", string(e.Value))
	case *StringLiteral:
		return fmt.Sprintf("string_literal %q", e.Value)
	case *InterpolatedStringLiteral:
		return "interpolated_string_literal"
	case *MagicIdentifierLiteral:
		return "magic_identifier_literal " + e.Kind.String()
	case *ArrayLiteral:
		return "array_literal"
	case *DictionaryLiteral:
		return "dictionary_literal"
	case *NewArray:
		return "new_array"
	case *DeclRef:
		if len(e.Subs) > 0 {
			return fmt.Sprintf("decl_ref %s (specialized)", e.Decl.Name)
		}
		return "decl_ref " + e.Decl.Name
	case *OverloadedDeclRef:
		return "overloaded_decl_ref " + e.Name
	case *Specialize:
		return "specialize"
	case *MetatypeLiteral:
		return "metatype_literal"
	case *Module:
		return "module " + e.Decl.Name
	case *UnresolvedDot:
		return "unresolved_dot ." + e.Name
	case *UnresolvedMember:
		return "unresolved_member ." + e.Name
	case *MemberRef:
		return "member_ref " + e.Decl.Name
	case *ExistentialMemberRef:
		return "existential_member_ref " + e.Decl.Name
	case *ArchetypeMemberRef:
		return "archetype_member_ref " + e.Decl.Name
	case *DynamicMemberRef:
		return "dynamic_member_ref " + e.Decl.Name
	case *DotSyntaxBaseIgnored:
		return "dot_syntax_base_ignored"
	case *TupleElement:
		return fmt.Sprintf("tuple_element %d", e.Index)
	case *Subscript:
		return "subscript"
	case *ExistentialSubscript:
		return "existential_subscript"
	case *ArchetypeSubscript:
		return "archetype_subscript"
	case *DynamicSubscript:
		return "dynamic_subscript"
	case *Call:
		switch e.Kind {
		case CallDotSyntax:
			return "dot_syntax_call"
		case CallConstructorRef:
			return "constructor_ref_call"
		case CallBinary:
			return "binary"
		case CallPrefixUnary:
			return "prefix_unary"
		case CallPostfixUnary:
			return "postfix_unary"
		}
		return "call"
	case *Paren:
		return "paren"
	case *TupleExpr:
		return "tuple"
	case *If:
		return "if"
	case *Assign:
		return "assign"
	case *DiscardAssignment:
		return "discard_assignment"
	case *Closure:
		return "closure"
	case *ImplicitClosure:
		return "implicit_closure"
	case *AddressOf:
		return "address_of"
	case *ForceValue:
		return "force_value"
	case *BindOptional:
		return "bind_optional"
	case *OptionalEvaluation:
		return "optional_evaluation"
	case *Is:
		return "is " + e.CastKind.String()
	case *ConditionalCheckedCast:
		return "conditional_checked_cast " + e.CastKind.String()
	case *Coerce:
		return "coerce"
	case *Load:
		return "load"
	case *Materialize:
		return "materialize"
	case *Requalify:
		return "requalify"
	case *TupleShuffle:
		return fmt.Sprintf("tuple_shuffle %v", e.Sources)
	case *ScalarToTuple:
		return fmt.Sprintf("scalar_to_tuple @%d", e.ScalarField)
	case *FunctionConversion:
		return "function_conversion"
	case *BridgeToBlock:
		return "bridge_to_block"
	case *MetatypeConversion:
		return "metatype_conversion"
	case *DerivedToBase:
		return "derived_to_base"
	case *ArchetypeToSuper:
		return "archetype_to_super"
	case *Erasure:
		return "erasure"
	case *InjectIntoOptional:
		return "inject_into_optional"
	case *OpaqueValue:
		return "opaque_value"
	case *ZeroValue:
		return "zero_value"
	case *DefaultValue:
		return "default_value"
	case *Error:
		return "error"
	}
	return fmt.Sprintf("%T", e)
}
