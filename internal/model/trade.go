package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Trade is a single fill, journaled and never mutated afterward.
type Trade struct {
	TradeSeq        int64
	Price           decimal.Decimal
	Quantity        uint64
	BuyOrderNumber  int64
	SellOrderNumber int64
	Date            time.Time
	Time            string
}

func (t Trade) String() string {
	return fmt.Sprintf(
		"TradeSeq: %d, Price: %s, Quantity: %d, Buy: %d, Sell: %d",
		t.TradeSeq, t.Price, t.Quantity, t.BuyOrderNumber, t.SellOrderNumber,
	)
}

// Snapshot is the pre-action top-of-book reading stamped onto every Event.
type Snapshot struct {
	BestBid               decimal.Decimal
	BestBidPresent        bool
	BestBidVolumeOriginal uint64
	BestAsk               decimal.Decimal
	BestAskPresent        bool
	BestAskVolumeOriginal uint64
}

// Event records one accepted action; if it produced a fill, Trade is set
// and HasTrade is true. Multi-fill actions emit one Event per fill, all
// sharing the same pre-action Snapshot.
type Event struct {
	EventSeq        int64
	Time            string
	Date            time.Time
	Price           decimal.Decimal
	OrderNumber     int64
	Action          string // "add", "modify", "cancel"
	Side            Side
	IsMarket        bool
	VolumeOriginal  uint64
	VolumeDisclosed uint64
	Snapshot        Snapshot
	HasTrade        bool
	Trade           Trade
}
