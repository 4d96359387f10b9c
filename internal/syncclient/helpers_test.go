package syncclient_test

import (
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// sortDays ignores the order of concurrently pushed days.
func sortDays() cmp.Option {
	return cmpopts.SortSlices(func(a, b string) bool { return a < b })
}
