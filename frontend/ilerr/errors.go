package ilerr

import (
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/tessel-lang/tessel/frontend/ast"
)

// enableDebugErrorPrinting makes errors include their stacktrace when printed
const enableDebugErrorPrinting bool = true
const enableDebugFullStacktrace bool = false

type ErrCode int

const (
	None ErrCode = iota
	BrokenProtocol
	DiscardOutsideAssignment
	PartialValueTypeApplication
	RedundantOptionalForce
	RedundantOptionalBind
	CoercionToSupertype
	TupleConversionNotExpressible
)

type Severity uint8

const (
	SeverityError Severity = iota
	SeverityWarning
)

type Diagnostic interface {
	Error() string
	Code() ErrCode
	Severity() Severity
	ast.Positioner

	withStack([]byte) Diagnostic
	getStack() []byte
}

func FormatWithCode(e Diagnostic) string {
	if enableDebugErrorPrinting && e.getStack() != nil {
		stack := string(e.getStack())
		if !enableDebugFullStacktrace {
			stack = strings.Split(stack, "\n")[6]
		}
		return fmt.Sprintf("%s:(E%03d) %s", stack, e.Code(), e.Error())
	}
	return fmt.Sprintf("(E%03d) %s", e.Code(), e.Error())
}

func New[E Diagnostic](err E) Diagnostic {
	return err.withStack(debug.Stack())
}

type NewBrokenProtocol struct {
	ast.Positioner
	Protocol    string
	Requirement string
	stack       []byte
}

func (e NewBrokenProtocol) Error() string {
	if e.Requirement == "" {
		return fmt.Sprintf("protocol '%s' is broken", e.Protocol)
	}
	return fmt.Sprintf("protocol '%s' requirement '%s' is missing or has the wrong shape", e.Protocol, e.Requirement)
}
func (e NewBrokenProtocol) Code() ErrCode      { return BrokenProtocol }
func (e NewBrokenProtocol) Severity() Severity { return SeverityError }
func (e NewBrokenProtocol) getStack() []byte   { return e.stack }
func (e NewBrokenProtocol) withStack(stack []byte) Diagnostic {
	e.stack = stack
	return e
}

type NewDiscardOutsideAssignment struct {
	ast.Positioner
	stack []byte
}

func (e NewDiscardOutsideAssignment) Error() string {
	return "'_' can only appear on the left side of an assignment"
}
func (e NewDiscardOutsideAssignment) Code() ErrCode      { return DiscardOutsideAssignment }
func (e NewDiscardOutsideAssignment) Severity() Severity { return SeverityError }
func (e NewDiscardOutsideAssignment) getStack() []byte   { return e.stack }
func (e NewDiscardOutsideAssignment) withStack(stack []byte) Diagnostic {
	e.stack = stack
	return e
}

type NewPartialValueTypeApplication struct {
	ast.Positioner
	Method string
	stack  []byte
}

func (e NewPartialValueTypeApplication) Error() string {
	return fmt.Sprintf("partial application of method '%s' on a value type is not allowed", e.Method)
}
func (e NewPartialValueTypeApplication) Code() ErrCode      { return PartialValueTypeApplication }
func (e NewPartialValueTypeApplication) Severity() Severity { return SeverityError }
func (e NewPartialValueTypeApplication) getStack() []byte   { return e.stack }
func (e NewPartialValueTypeApplication) withStack(stack []byte) Diagnostic {
	e.stack = stack
	return e
}

type NewRedundantOptionalForce struct {
	ast.Positioner
	stack []byte
}

func (e NewRedundantOptionalForce) Error() string {
	return "forcing a freshly injected optional is redundant; remove the '!'"
}
func (e NewRedundantOptionalForce) Code() ErrCode      { return RedundantOptionalForce }
func (e NewRedundantOptionalForce) Severity() Severity { return SeverityWarning }
func (e NewRedundantOptionalForce) getStack() []byte   { return e.stack }
func (e NewRedundantOptionalForce) withStack(stack []byte) Diagnostic {
	e.stack = stack
	return e
}

type NewRedundantOptionalBind struct {
	ast.Positioner
	stack []byte
}

func (e NewRedundantOptionalBind) Error() string {
	return "binding a freshly injected optional is redundant; remove the '?'"
}
func (e NewRedundantOptionalBind) Code() ErrCode      { return RedundantOptionalBind }
func (e NewRedundantOptionalBind) Severity() Severity { return SeverityWarning }
func (e NewRedundantOptionalBind) getStack() []byte   { return e.stack }
func (e NewRedundantOptionalBind) withStack(stack []byte) Diagnostic {
	e.stack = stack
	return e
}

type NewCoercionToSupertype struct {
	ast.Positioner
	From  string
	To    string
	stack []byte
}

func (e NewCoercionToSupertype) Error() string {
	return fmt.Sprintf("'%s' is implicitly convertible to '%s'; the 'as' cast always succeeds and can be removed", e.From, e.To)
}
func (e NewCoercionToSupertype) Code() ErrCode      { return CoercionToSupertype }
func (e NewCoercionToSupertype) Severity() Severity { return SeverityWarning }
func (e NewCoercionToSupertype) getStack() []byte   { return e.stack }
func (e NewCoercionToSupertype) withStack(stack []byte) Diagnostic {
	e.stack = stack
	return e
}

type NewTupleConversionNotExpressible struct {
	ast.Positioner
	stack []byte
}

func (e NewTupleConversionNotExpressible) Error() string {
	return "cannot express this tuple conversion; name the elements explicitly"
}
func (e NewTupleConversionNotExpressible) Code() ErrCode      { return TupleConversionNotExpressible }
func (e NewTupleConversionNotExpressible) Severity() Severity { return SeverityError }
func (e NewTupleConversionNotExpressible) getStack() []byte   { return e.stack }
func (e NewTupleConversionNotExpressible) withStack(stack []byte) Diagnostic {
	e.stack = stack
	return e
}
