// Package model holds the data types shared by the book, matcher, router
// and journal: orders, trades, events, and the small enums that tag them.
package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Side is which half of the book an order rests on.
type Side int

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Buy {
		return "B"
	}
	return "S"
}

// Activity is the action a stream row carries.
type Activity int

const (
	Add Activity = iota + 1
	_            // 2 is unused in the source schema
	Cancel
	Modify
)

// Order is the identity + residual-volume state of one resting or incoming
// order. UUID is intentionally absent: order_number is the stable identity
// the source stream supplies.
type Order struct {
	OrderNumber     int64
	Side            Side
	LimitPrice      decimal.Decimal
	VolumeOriginal  uint64
	VolumeDisclosed uint64
	IsMarket        bool
	TransDate       time.Time
	TransTime       string
}

func (o Order) String() string {
	return fmt.Sprintf(
		"OrderNumber: %d, Side: %s, LimitPrice: %s, VolumeOriginal: %d, VolumeDisclosed: %d, IsMarket: %v",
		o.OrderNumber, o.Side, o.LimitPrice, o.VolumeOriginal, o.VolumeDisclosed, o.IsMarket,
	)
}
