package ilerr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tessel-lang/tessel/frontend/ast"
	"github.com/tessel-lang/tessel/frontend/ilerr"
)

func TestWarningsAreNotErrors(t *testing.T) {
	var errs *ilerr.Errors
	errs = errs.With(ilerr.New(ilerr.NewRedundantOptionalForce{Positioner: ast.Range{}}))
	assert.False(t, errs.HasError())
	assert.NoError(t, errs.Combined())

	errs = errs.With(ilerr.New(ilerr.NewDiscardOutsideAssignment{Positioner: ast.Range{}}))
	assert.True(t, errs.HasError())
	assert.Error(t, errs.Combined())
	assert.Len(t, errs.Diagnostics(), 2)
}

func TestMergeAccumulates(t *testing.T) {
	a := (&ilerr.Errors{}).With(ilerr.New(ilerr.NewBrokenProtocol{Positioner: ast.Range{}, Protocol: "P"}))
	b := (&ilerr.Errors{}).With(ilerr.New(ilerr.NewTupleConversionNotExpressible{Positioner: ast.Range{}}))
	merged := a.Merge(b)
	assert.Len(t, merged.Diagnostics(), 2)

	codes := []ilerr.ErrCode{merged.Diagnostics()[0].Code(), merged.Diagnostics()[1].Code()}
	assert.Contains(t, codes, ilerr.BrokenProtocol)
	assert.Contains(t, codes, ilerr.TupleConversionNotExpressible)
}

func TestFormatWithCode(t *testing.T) {
	d := ilerr.New(ilerr.NewPartialValueTypeApplication{Positioner: ast.Range{}, Method: "advance"})
	formatted := ilerr.FormatWithCode(d)
	assert.Contains(t, formatted, "advance")
}
