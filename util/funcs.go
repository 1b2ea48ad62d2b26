package util

import (
	"fmt"
	"iter"
	"strings"
)

func SingleIter[A any](elem A) iter.Seq[A] {
	return func(yield func(A) bool) {
		yield(elem)
	}
}

// JoinString renders every element with its String method, separated by sep
func JoinString[A fmt.Stringer](elems []A, sep string) string {
	strs := make([]string, len(elems))
	for i, e := range elems {
		strs[i] = e.String()
	}
	return strings.Join(strs, sep)
}
