package book

import (
	"github.com/shopspring/decimal"

	"lobengine/internal/model"
)

// Book holds the two half-books plus the session state the router and
// matcher share: the current trading day, and the trade/event sequence
// counters (spec §4.3). Grounded on the teacher's OrderBook struct
// (internal/engine/orderbook.go) and on the original Python's
// _book_data/_event_counter/_trade_counter session state.
type Book struct {
	Bids *HalfBook
	Asks *HalfBook

	CurrentDay int // day-of-month sentinel; zero means "no action seen yet"
	HasDay     bool

	eventSeq int64
	tradeSeq int64
}

// New builds an empty book with both sequence counters starting at 1.
func New() *Book {
	return &Book{
		Bids:     NewHalfBook(model.Buy),
		Asks:     NewHalfBook(model.Sell),
		eventSeq: 0,
		tradeSeq: 1,
	}
}

// HalfBookFor returns the half-book an order with the given side rests on.
func (b *Book) HalfBookFor(side model.Side) *HalfBook {
	if side == model.Buy {
		return b.Bids
	}
	return b.Asks
}

// OppositeHalfBookFor returns the half-book on the other side from side.
func (b *Book) OppositeHalfBookFor(side model.Side) *HalfBook {
	if side == model.Buy {
		return b.Asks
	}
	return b.Bids
}

func (b *Book) BestBidPrice() (decimal.Decimal, bool) { return b.Bids.BestPrice() }
func (b *Book) BestAskPrice() (decimal.Decimal, bool) { return b.Asks.BestPrice() }

// BestBidQuantity returns the total original and disclosed volume resting
// at the best bid price, or (0, 0) if the bid side is empty.
func (b *Book) BestBidQuantity() (original, disclosed uint64) {
	price, ok := b.BestBidPrice()
	if !ok {
		return 0, 0
	}
	return b.Bids.TotalVolumeAt(price)
}

// BestAskQuantity is the ask-side analogue of BestBidQuantity.
func (b *Book) BestAskQuantity() (original, disclosed uint64) {
	price, ok := b.BestAskPrice()
	if !ok {
		return 0, 0
	}
	return b.Asks.TotalVolumeAt(price)
}

// Snapshot captures the pre-action top-of-book reading stamped onto the
// next Event (spec §3/§4.4: "all emissions for a single incoming action
// share the same pre-action top-of-book snapshot taken once at entry").
func (b *Book) Snapshot() model.Snapshot {
	var snap model.Snapshot
	if price, ok := b.BestBidPrice(); ok {
		snap.BestBid = price
		snap.BestBidPresent = true
		snap.BestBidVolumeOriginal, _ = b.BestBidQuantity()
	}
	if price, ok := b.BestAskPrice(); ok {
		snap.BestAsk = price
		snap.BestAskPresent = true
		snap.BestAskVolumeOriginal, _ = b.BestAskQuantity()
	}
	return snap
}

// NextTradeSeq returns the next trade sequence number and advances the
// counter.
func (b *Book) NextTradeSeq() int64 {
	seq := b.tradeSeq
	b.tradeSeq++
	return seq
}

// NextEventSeq returns the next event sequence number and advances the
// counter. Unlike the trade counter, this never resets.
func (b *Book) NextEventSeq() int64 {
	b.eventSeq++
	return b.eventSeq
}

// ClearBook empties both half-books and resets the trade sequence to 1.
// The event counter is untouched, and no previously journaled trade or
// event is erased (spec §4.3).
func (b *Book) ClearBook() {
	b.Bids.Clear()
	b.Asks.Clear()
	b.tradeSeq = 1
}

// ObserveDay records the day-of-month of the first action seen, and
// reports whether a day rollover occurred relative to a previously
// recorded day. Callers clear the book between recording the new day and
// handling the action when this returns true (spec §4.5).
func (b *Book) ObserveDay(day int) (rolledOver bool) {
	if !b.HasDay {
		b.CurrentDay = day
		b.HasDay = true
		return false
	}
	if day != b.CurrentDay {
		b.CurrentDay = day
		return true
	}
	return false
}
