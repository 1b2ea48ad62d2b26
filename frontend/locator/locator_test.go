package locator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tessel-lang/tessel/frontend/locator"
)

type anchor struct{ name string }

func TestInterningIsCanonical(t *testing.T) {
	table := locator.NewTable()
	a := &anchor{name: "a"}

	first := table.Intern(a, locator.Elem(locator.ApplyArgument))
	second := table.Intern(a, locator.Elem(locator.ApplyArgument))
	assert.Same(t, first, second)

	other := table.Intern(a, locator.Elem(locator.ApplyFunction))
	assert.NotSame(t, first, other)

	differentAnchor := table.Intern(&anchor{name: "a"}, locator.Elem(locator.ApplyArgument))
	assert.NotSame(t, first, differentAnchor)
}

func TestIndexedElementsDistinguish(t *testing.T) {
	table := locator.NewTable()
	a := &anchor{}

	zero := table.Intern(a, locator.IndexedElem(locator.TupleElement, 0))
	one := table.Intern(a, locator.IndexedElem(locator.TupleElement, 1))
	assert.NotSame(t, zero, one)
}

func TestBuilderResolvesThroughTable(t *testing.T) {
	table := locator.NewTable()
	a := &anchor{}
	base := table.Intern(a)

	built := locator.From(base).
		With(locator.Elem(locator.ApplyArgument)).
		With(locator.IndexedElem(locator.TupleElement, 2)).
		Resolve(table)

	direct := table.Intern(a,
		locator.Elem(locator.ApplyArgument),
		locator.IndexedElem(locator.TupleElement, 2))
	assert.Same(t, direct, built)

	// resolving with no extra elements returns the base untouched
	assert.Same(t, base, locator.From(base).Resolve(table))
}

func TestBuilderPrefixSharing(t *testing.T) {
	table := locator.NewTable()
	a := &anchor{}
	prefix := locator.From(table.Intern(a)).With(locator.Elem(locator.ApplyArgument))

	left := prefix.With(locator.IndexedElem(locator.TupleElement, 0)).Resolve(table)
	right := prefix.With(locator.IndexedElem(locator.TupleElement, 1)).Resolve(table)

	assert.NotSame(t, left, right)
	assert.Len(t, left.Path(), 2)
	assert.Len(t, right.Path(), 2)
}
