// Package matcher implements the price-time-priority sweep that resolves
// an incoming order against the opposite half-book (spec §4.4). It knows
// nothing about routing, modify semantics, or CSV ingestion — it only
// consumes a Book and a Journal.
package matcher

import (
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"lobengine/internal/book"
	"lobengine/internal/journal"
	"lobengine/internal/model"
)

// Config gates the two source-preserved quirks the spec calls out as open
// questions. Both default to false, i.e. the literal source behavior.
type Config struct {
	// CorrectedFillQuantity switches the R>V fill quantity from the source's
	// R-V to the arithmetically correct V (spec §9, open question 1).
	CorrectedFillQuantity bool
	// PostMarketableResidual posts the unfilled residual of a marketable
	// limit order on its originating side once the opposite side empties,
	// instead of discarding it (spec §9, open question 2).
	PostMarketableResidual bool
}

// Matcher sweeps a Book's half-books and journals every fill it produces.
type Matcher struct {
	book    *book.Book
	journal *journal.Journal
	log     zerolog.Logger
	cfg     Config
}

// New builds a Matcher over the given book and journal.
func New(b *book.Book, j *journal.Journal, log zerolog.Logger, cfg Config) *Matcher {
	return &Matcher{book: b, journal: j, log: log, cfg: cfg}
}

// PostsMarketableResidual reports whether the matcher is configured to
// post an unfilled marketable-limit residual instead of discarding it.
func (m *Matcher) PostsMarketableResidual() bool {
	return m.cfg.PostMarketableResidual
}

// Sweep matches incoming against the opposite half-book under price-time
// priority until incoming.VolumeOriginal reaches zero or the opposite side
// is exhausted. snapshot is the pre-action top-of-book reading to stamp on
// every emitted Event (taken once by the caller before any mutation).
// Returns the incoming order's remaining (unfilled) volume.
func (m *Matcher) Sweep(incoming *model.Order, snapshot model.Snapshot) uint64 {
	opposite := m.book.OppositeHalfBookFor(incoming.Side)

	// The Event payload reports the incoming order's *requested* volume on
	// every fill it produces, not its shrinking residual (source behavior:
	// the event dict is built once, before the sweep mutates anything, and
	// reused unchanged across every fill it triggers).
	requestedOriginal := incoming.VolumeOriginal
	requestedDisclosed := incoming.VolumeDisclosed

	for incoming.VolumeOriginal > 0 {
		level := opposite.BestLevel()
		if level == nil {
			break
		}

		for incoming.VolumeOriginal > 0 && !level.IsEmpty() {
			resting := level.PeekOldest()
			restingVol := resting.VolumeOriginal
			incomingVol := incoming.VolumeOriginal

			var qty uint64
			switch {
			case restingVol == incomingVol:
				qty = incomingVol
				level.PopOldest()
				incoming.VolumeOriginal = 0
			case restingVol > incomingVol:
				qty = m.fillQuantity(restingVol, incomingVol)
				resting.VolumeOriginal -= incomingVol
				incoming.VolumeOriginal = 0
			default: // restingVol < incomingVol
				qty = restingVol
				level.PopOldest()
				incoming.VolumeOriginal -= restingVol
			}

			m.emitFill(incoming, resting, level.Price, qty, requestedOriginal, requestedDisclosed, snapshot)
		}

		if opposite.DropLevelIfEmpty(level) {
			m.log.Debug().
				Str("price", level.Price.String()).
				Msg("price level exhausted, dropping")
		}
	}

	return incoming.VolumeOriginal
}

// fillQuantity computes the R>V trade quantity. The source computes R-V,
// under-reporting the filled amount; Config.CorrectedFillQuantity selects
// the arithmetically correct V instead (spec §4.4, §9 open question 1).
func (m *Matcher) fillQuantity(restingVol, incomingVol uint64) uint64 {
	if m.cfg.CorrectedFillQuantity {
		return incomingVol
	}
	return restingVol - incomingVol
}

// emitFill journals one Trade and one Event for a single fill. Buy/sell
// attribution: the incoming order populates its own side's slot on entry;
// the resting order is inspected per fill and populates its side's slot
// (spec §4.4).
func (m *Matcher) emitFill(incoming, resting *model.Order, price decimal.Decimal, qty uint64, requestedOriginal, requestedDisclosed uint64, snapshot model.Snapshot) {
	var buyOrderNumber, sellOrderNumber int64
	if incoming.Side == model.Buy {
		buyOrderNumber = incoming.OrderNumber
	} else {
		sellOrderNumber = incoming.OrderNumber
	}
	if resting.Side == model.Buy {
		buyOrderNumber = resting.OrderNumber
	} else {
		sellOrderNumber = resting.OrderNumber
	}

	trade := model.Trade{
		TradeSeq:        m.book.NextTradeSeq(),
		Price:           price,
		Quantity:        qty,
		BuyOrderNumber:  buyOrderNumber,
		SellOrderNumber: sellOrderNumber,
		Date:            incoming.TransDate,
		Time:            incoming.TransTime,
	}
	m.journal.RecordTrade(trade)

	event := model.Event{
		EventSeq:        m.book.NextEventSeq(),
		Time:            incoming.TransTime,
		Date:            incoming.TransDate,
		Price:           incoming.LimitPrice,
		OrderNumber:     incoming.OrderNumber,
		Action:          "add",
		Side:            incoming.Side,
		IsMarket:        incoming.IsMarket,
		VolumeOriginal:  requestedOriginal,
		VolumeDisclosed: requestedDisclosed,
		Snapshot:        snapshot,
		HasTrade:        true,
		Trade:           trade,
	}
	m.journal.RecordEvent(event)

	m.log.Debug().
		Int64("tradeSeq", trade.TradeSeq).
		Str("price", price.String()).
		Uint64("qty", qty).
		Int64("buy", buyOrderNumber).
		Int64("sell", sellOrderNumber).
		Msg("trade executed")
}
