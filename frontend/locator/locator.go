// Package locator provides interned path keys identifying positions in an
// expression tree. The solver records its decisions (overload choices,
// conversion restrictions) keyed by these paths, and the application stage
// reads them back.
package locator

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
)

type PathElemKind uint8

const (
	ApplyArgument PathElemKind = iota
	ApplyFunction
	MemberRefBase
	Member
	ConstructorMember
	ConversionMember
	SubscriptMember
	SubscriptIndex
	TupleElement
	ScalarToTuple
	InterpolationArgument
	IfThen
	IfElse
	ClosureResult
	Load
	NewArrayElement
	AssignSource
	UnresolvedMember
)

func (k PathElemKind) String() string {
	switch k {
	case ApplyArgument:
		return "apply argument"
	case ApplyFunction:
		return "apply function"
	case MemberRefBase:
		return "member reference base"
	case Member:
		return "member"
	case ConstructorMember:
		return "constructor member"
	case ConversionMember:
		return "conversion member"
	case SubscriptMember:
		return "subscript member"
	case SubscriptIndex:
		return "subscript index"
	case TupleElement:
		return "tuple element"
	case ScalarToTuple:
		return "scalar to tuple"
	case InterpolationArgument:
		return "interpolation argument"
	case IfThen:
		return "if then"
	case IfElse:
		return "if else"
	case ClosureResult:
		return "closure result"
	case Load:
		return "load"
	case NewArrayElement:
		return "new array element"
	case AssignSource:
		return "assign source"
	case UnresolvedMember:
		return "unresolved member"
	default:
		panic("unknown path element kind " + strconv.Itoa(int(k)))
	}
}

// hasIndex reports whether the element kind carries a meaningful index
func (k PathElemKind) hasIndex() bool {
	return k == TupleElement || k == InterpolationArgument
}

type PathElem struct {
	Kind  PathElemKind
	Index int
}

func Elem(kind PathElemKind) PathElem { return PathElem{Kind: kind} }

func IndexedElem(kind PathElemKind, index int) PathElem {
	return PathElem{Kind: kind, Index: index}
}

func (e PathElem) String() string {
	if e.Kind.hasIndex() {
		return fmt.Sprintf("%s %d", e.Kind, e.Index)
	}
	return e.Kind.String()
}

// Locator is an interned value: two locators with the same anchor and path
// are the same pointer, so they can be compared and used as map keys
// directly. Construct through Table.Intern or Builder.Resolve.
type Locator struct {
	anchor any
	path   []PathElem
	hash   uint64
}

func (l *Locator) Anchor() any { return l.anchor }

func (l *Locator) Path() []PathElem { return l.path }

func (l *Locator) Hash() uint64 { return l.hash }

func (l *Locator) String() string {
	var sb strings.Builder
	sb.WriteString("@anchor")
	for _, e := range l.path {
		sb.WriteString(" -> ")
		sb.WriteString(e.String())
	}
	return sb.String()
}

type internKey struct {
	anchor any
	path   string
}

func encodePath(path []PathElem) string {
	var sb strings.Builder
	for _, e := range path {
		sb.WriteByte(byte(e.Kind))
		if e.Kind.hasIndex() {
			sb.WriteString(strconv.Itoa(e.Index))
			sb.WriteByte(';')
		}
	}
	return sb.String()
}

// Table interns locators. It is owned by whoever owns the expression being
// checked; locator identity is only meaningful within one table.
type Table struct {
	interned map[internKey]*Locator
	nextID   uint64
}

func NewTable() *Table {
	return &Table{interned: make(map[internKey]*Locator)}
}

func (t *Table) Intern(anchor any, path ...PathElem) *Locator {
	key := internKey{anchor: anchor, path: encodePath(path)}
	if loc, ok := t.interned[key]; ok {
		return loc
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(key.path))
	t.nextID++
	loc := &Locator{
		anchor: anchor,
		path:   append([]PathElem(nil), path...),
		hash:   h.Sum64() ^ (t.nextID * 0x9E3779B97F4A7C15),
	}
	t.interned[key] = loc
	return loc
}

// Builder accumulates path elements without interning. Interning only
// happens on Resolve, so appending elements along a recursive walk is cheap.
type Builder struct {
	base  *Locator
	extra []PathElem
}

func From(base *Locator) Builder { return Builder{base: base} }

func (b Builder) With(elems ...PathElem) Builder {
	// copy so sibling builders sharing a prefix do not alias
	joined := make([]PathElem, 0, len(b.extra)+len(elems))
	joined = append(joined, b.extra...)
	joined = append(joined, elems...)
	return Builder{base: b.base, extra: joined}
}

// Elems returns a fresh copy of the builder's full path.
func (b Builder) Elems() []PathElem {
	var joined []PathElem
	if b.base != nil {
		joined = append(joined, b.base.path...)
	}
	return append(joined, b.extra...)
}

func (b Builder) AnchorOf() any {
	if b.base == nil {
		return nil
	}
	return b.base.anchor
}

func (b Builder) Resolve(t *Table) *Locator {
	if b.base == nil {
		return nil
	}
	if len(b.extra) == 0 {
		return b.base
	}
	return t.Intern(b.base.anchor, b.Elems()...)
}
