// Package journal implements the two append-only logs the engine produces:
// the trade tape and the event tape. Sequence numbers are minted by
// book.Book (trade_seq resets at day rollover, event_seq never does);
// Journal just accumulates and drains them.
package journal

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/shopspring/decimal"

	"lobengine/internal/model"
)

// Journal accumulates Trade and Event records across the lifetime of a
// run. Trades and events are never mutated once recorded.
type Journal struct {
	trades []model.Trade
	events []model.Event
}

// New returns an empty Journal.
func New() *Journal {
	return &Journal{}
}

// RecordTrade appends a trade to the tape.
func (j *Journal) RecordTrade(t model.Trade) {
	j.trades = append(j.trades, t)
}

// RecordEvent appends an event to the tape.
func (j *Journal) RecordEvent(e model.Event) {
	j.events = append(j.events, e)
}

// Trades returns every trade recorded so far, in sequence order.
func (j *Journal) Trades() []model.Trade { return j.trades }

// Events returns every event recorded so far, in sequence order.
func (j *Journal) Events() []model.Event { return j.events }

// WriteTrades drains the trade tape as CSV: trade_seq, trade_date,
// trade_time, trade_price (2 decimals), trade_quantity, buy_order_number,
// sell_order_number (spec §6).
func (j *Journal) WriteTrades(w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	for _, t := range j.trades {
		row := []string{
			strconv.FormatInt(t.TradeSeq, 10),
			t.Date.Format("01/02/2006"),
			t.Time,
			t.Price.StringFixed(2),
			strconv.FormatUint(t.Quantity, 10),
			strconv.FormatInt(t.BuyOrderNumber, 10),
			strconv.FormatInt(t.SellOrderNumber, 10),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return cw.Error()
}

// WriteEvents drains the event tape as CSV per spec §6: the thirteen
// always-present columns, followed by four trade columns when the event
// carries a fill.
func (j *Journal) WriteEvents(w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	for _, e := range j.events {
		row := []string{
			e.Time,
			e.Date.Format("01/02/2006"),
			e.Price.String(),
			strconv.FormatInt(e.OrderNumber, 10),
			e.Action,
			e.Side.String(),
			marketFlag(e.IsMarket),
			strconv.FormatUint(e.VolumeOriginal, 10),
			strconv.FormatUint(e.VolumeDisclosed, 10),
			priceOrEmpty(e.Snapshot.BestBidPresent, e.Snapshot.BestBid),
			strconv.FormatUint(e.Snapshot.BestBidVolumeOriginal, 10),
			priceOrEmpty(e.Snapshot.BestAskPresent, e.Snapshot.BestAsk),
			strconv.FormatUint(e.Snapshot.BestAskVolumeOriginal, 10),
		}
		if e.HasTrade {
			row = append(row,
				e.Trade.Price.StringFixed(2),
				strconv.FormatUint(e.Trade.Quantity, 10),
				strconv.FormatInt(e.Trade.BuyOrderNumber, 10),
				strconv.FormatInt(e.Trade.SellOrderNumber, 10),
			)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return cw.Error()
}

func marketFlag(isMarket bool) string {
	if isMarket {
		return "Y"
	}
	return "N"
}

// priceOrEmpty renders an absent best bid/ask as an empty column rather
// than a misleading zero.
func priceOrEmpty(present bool, price decimal.Decimal) string {
	if !present {
		return ""
	}
	return price.String()
}
