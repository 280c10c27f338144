// Package sequence hands out monotonically increasing product identifiers.
//
// Every implementation performs the increment and the read as a single atomic
// operation on the backing store, so concurrent callers never observe the same
// value. Values consumed by a request that later fails are not given back.
package sequence

import "context"

// ProductIDName is the key of the counter record used for product identifiers.
const ProductIDName = "product_id"

// Sequence returns the next identifier on every call.
type Sequence interface {
	Next(ctx context.Context) (int64, error)
}
