// Package weight implements the distributed weight balancer: given
// weighted items scattered arbitrarily across ranks, it redistributes
// them so each rank ends up holding exactly W_total/R of the total
// weight, splitting items across rank boundaries as needed.
package weight

// Item is a weighted item with a non-negative, finite weight. Item
// identity is not required to be unique; the same id may appear
// multiple times, and the balancer may split a single input item into
// several output items carrying the same id with divided weight.
type Item[T any] struct {
	ID     T
	Weight float64
}
