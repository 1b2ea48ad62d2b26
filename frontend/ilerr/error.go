package ilerr

import (
	"fmt"
	"log/slog"

	"go.uber.org/multierr"
)

type Errors struct {
	diags []Diagnostic
}

func (r *Errors) With(diag ...Diagnostic) *Errors {
	if r == nil {
		return &Errors{diags: diag}
	}
	r.diags = append(r.diags, diag...)
	return r
}

func (r *Errors) Merge(other *Errors) *Errors {
	if r == nil {
		return other
	}
	if other == nil || len(other.diags) == 0 {
		return r
	}
	return r.With(other.diags...)
}

func (r *Errors) Diagnostics() []Diagnostic {
	if r == nil {
		return nil
	}
	return r.diags
}

// HasError reports whether any accumulated diagnostic is an error;
// warnings alone do not count.
func (r *Errors) HasError() bool {
	if r == nil {
		return false
	}
	for _, d := range r.diags {
		if d.Severity() == SeverityError {
			return true
		}
	}
	return false
}

// Combined flattens every accumulated error into one, or nil.
func (r *Errors) Combined() error {
	if r == nil {
		return nil
	}
	var combined error
	for _, d := range r.diags {
		if d.Severity() == SeverityError {
			combined = multierr.Append(combined, d)
		}
	}
	return combined
}

func (r *Errors) LogValue() slog.Value {
	var vals []slog.Attr
	for i, v := range r.Diagnostics() {
		vals = append(vals, slog.Attr{
			Key: fmt.Sprint("e", i),
			Value: slog.GroupValue(
				slog.Attr{
					Key:   "msg",
					Value: slog.StringValue(FormatWithCode(v)),
				},
			),
		})
	}
	return slog.GroupValue(vals...)
}
