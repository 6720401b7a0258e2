package model

import "errors"

// Fatal errors abort the current input stream (spec §7).
var (
	ErrUnknownActivity       = errors.New("unknown activity type")
	ErrInvalidMarketFlag     = errors.New("invalid market flag")
	ErrIllegalModifyOfMarket = errors.New("illegal modify of market order")
	ErrIllegalCancelOfMarket = errors.New("illegal cancel of market order")
	ErrInvalidPrice          = errors.New("crossed or malformed price")
)
