// Package book implements the resting-order data structures: PriceLevel,
// HalfBook and Book. It holds no matching logic of its own — the matcher
// package drives these primitives under price-time priority.
package book

import (
	"container/list"

	"github.com/shopspring/decimal"
	"lobengine/internal/model"
)

// PriceLevel is an insertion-ordered queue of resting orders at one price
// on one side. It is never left empty inside a HalfBook: the last
// Remove/PopOldest call that empties it is always followed by the
// HalfBook dropping the level.
//
// Backed by a doubly linked list plus an index from order number to list
// element, giving O(1) append, O(1) remove-by-key, and safe iteration
// while the element currently being visited is removed (the matcher does
// exactly that on every fill).
type PriceLevel struct {
	Price decimal.Decimal
	Side  model.Side

	orders *list.List
	index  map[int64]*list.Element
}

func newPriceLevel(side model.Side, price decimal.Decimal) *PriceLevel {
	return &PriceLevel{
		Price:  price,
		Side:   side,
		orders: list.New(),
		index:  make(map[int64]*list.Element),
	}
}

// Append places order strictly after all currently resting orders.
func (l *PriceLevel) Append(order *model.Order) {
	el := l.orders.PushBack(order)
	l.index[order.OrderNumber] = el
}

// PeekOldest returns the earliest-arrived resting order without removing
// it, or nil if the level is empty.
func (l *PriceLevel) PeekOldest() *model.Order {
	front := l.orders.Front()
	if front == nil {
		return nil
	}
	return front.Value.(*model.Order)
}

// PopOldest removes and returns the earliest-arrived resting order.
func (l *PriceLevel) PopOldest() *model.Order {
	front := l.orders.Front()
	if front == nil {
		return nil
	}
	order := front.Value.(*model.Order)
	l.orders.Remove(front)
	delete(l.index, order.OrderNumber)
	return order
}

// Remove deletes the order with the given order number, if present.
// Reports whether an order was removed.
func (l *PriceLevel) Remove(orderNumber int64) bool {
	el, ok := l.index[orderNumber]
	if !ok {
		return false
	}
	l.orders.Remove(el)
	delete(l.index, orderNumber)
	return true
}

// Get returns the resting order with the given order number, if present.
func (l *PriceLevel) Get(orderNumber int64) (*model.Order, bool) {
	el, ok := l.index[orderNumber]
	if !ok {
		return nil, false
	}
	return el.Value.(*model.Order), true
}

// IsEmpty reports whether no orders remain at this level.
func (l *PriceLevel) IsEmpty() bool {
	return l.orders.Len() == 0
}

// Iterate calls fn for each resting order, oldest to newest. fn is allowed
// to remove the order it was just handed via the level's Remove; the next
// pointer is captured before the callback runs so that removal of the
// current element never disturbs the walk.
func (l *PriceLevel) Iterate(fn func(order *model.Order) (stop bool)) {
	el := l.orders.Front()
	for el != nil {
		next := el.Next()
		order := el.Value.(*model.Order)
		if stop := fn(order); stop {
			return
		}
		el = next
	}
}

// TotalVolume sums original and disclosed volume across all resting orders.
func (l *PriceLevel) TotalVolume() (original, disclosed uint64) {
	for el := l.orders.Front(); el != nil; el = el.Next() {
		o := el.Value.(*model.Order)
		original += o.VolumeOriginal
		disclosed += o.VolumeDisclosed
	}
	return
}

// Len reports the number of resting orders.
func (l *PriceLevel) Len() int {
	return l.orders.Len()
}
