package router

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lobengine/internal/matcher"
	"lobengine/internal/model"
)

func newTestRouter(cfg matcher.Config) *Router {
	return New(zerolog.Nop(), cfg)
}

func price(v string) decimal.Decimal {
	d, err := decimal.NewFromString(v)
	if err != nil {
		panic(err)
	}
	return d
}

func testOrder(number int64, side model.Side, p decimal.Decimal, vol uint64, day int) model.Order {
	return model.Order{
		OrderNumber:     number,
		Side:            side,
		LimitPrice:      p,
		VolumeOriginal:  vol,
		VolumeDisclosed: vol,
		TransDate:       time.Date(2026, 7, day, 0, 0, 0, 0, time.UTC),
		TransTime:       "09:30:00",
	}
}

// A non-marketable add simply rests on its own side's book.
func TestRouter_AddNonMarketableOrderRests(t *testing.T) {
	r := newTestRouter(matcher.Config{})
	order := testOrder(1, model.Buy, price("49.00"), 100, 14)

	require.NoError(t, r.Process(model.Add, order))

	best, ok := r.Book().BestBidPrice()
	require.True(t, ok)
	assert.True(t, best.Equal(price("49.00")))
	events := r.Journal().Events()
	require.Len(t, events, 1)
	assert.Equal(t, "add", events[0].Action)
	assert.False(t, events[0].HasTrade)
}

// A marketable limit buy crosses the resting ask and produces a trade.
func TestRouter_AddMarketableLimitCrosses(t *testing.T) {
	r := newTestRouter(matcher.Config{CorrectedFillQuantity: true})
	require.NoError(t, r.Process(model.Add, testOrder(1, model.Sell, price("50.00"), 100, 14)))
	require.NoError(t, r.Process(model.Add, testOrder(2, model.Buy, price("50.00"), 100, 14)))

	trades := r.Journal().Trades()
	require.Len(t, trades, 1)
	assert.Equal(t, uint64(100), trades[0].Quantity)
	assert.True(t, r.Book().Asks.IsEmpty())
}

// A market order's unfilled residual is always discarded, never posted;
// the PostMarketableResidual toggle applies only to marketable limit orders.
func TestRouter_MarketOrderResidualDiscardedByDefault(t *testing.T) {
	r := newTestRouter(matcher.Config{})
	order := testOrder(1, model.Buy, decimal.Zero, 500, 14)
	order.IsMarket = true

	require.NoError(t, r.Process(model.Add, order))

	assert.True(t, r.Book().Bids.IsEmpty(), "unfilled market order never rests")
	assert.Empty(t, r.Journal().Trades())
}

// Cancel removes a resting order and preserves the rest of the level.
func TestRouter_CancelRemovesRestingOrder(t *testing.T) {
	r := newTestRouter(matcher.Config{})
	require.NoError(t, r.Process(model.Add, testOrder(1, model.Buy, price("49.00"), 100, 14)))
	require.NoError(t, r.Process(model.Add, testOrder(2, model.Buy, price("49.00"), 50, 14)))

	cancel := testOrder(1, model.Buy, price("49.00"), 100, 14)
	require.NoError(t, r.Process(model.Cancel, cancel))

	lvl := r.Book().Bids.Level(price("49.00"))
	require.NotNil(t, lvl)
	_, ok := lvl.Get(1)
	assert.False(t, ok)
	_, ok = lvl.Get(2)
	assert.True(t, ok)
}

// Cancelling a market order is illegal (spec §4.5.3).
func TestRouter_CancelOfMarketOrderIsIllegal(t *testing.T) {
	r := newTestRouter(matcher.Config{})
	order := testOrder(1, model.Buy, decimal.Zero, 100, 14)
	order.IsMarket = true

	err := r.Process(model.Cancel, order)
	assert.ErrorIs(t, err, model.ErrIllegalCancelOfMarket)
}

// modify itself rejects a market order (spec §4.5.2). Process never reaches
// it for market orders: it routes them to add instead (see the mislabeled
// market order test below), so modify is called directly here.
func TestRouter_ModifyOfMarketOrderIsIllegal(t *testing.T) {
	r := newTestRouter(matcher.Config{})
	order := testOrder(1, model.Buy, decimal.Zero, 100, 14)
	order.IsMarket = true

	err := r.modify(order)
	assert.ErrorIs(t, err, model.ErrIllegalModifyOfMarket)
}

// Source-preserved quirk: a market order mislabeled with activity_type 4
// (modify) is routed straight to add, not treated as an illegal modify
// (spec §9 open question 3).
func TestRouter_ModifyMislabeledMarketOrderRoutesToAdd(t *testing.T) {
	r := newTestRouter(matcher.Config{CorrectedFillQuantity: true})
	require.NoError(t, r.Process(model.Add, testOrder(1, model.Sell, price("50.00"), 50, 14)))

	order := testOrder(2, model.Buy, decimal.Zero, 50, 14)
	order.IsMarket = true
	require.NoError(t, r.Process(model.Modify, order))

	require.Len(t, r.Journal().Trades(), 1)
}

// Decreasing original volume modifies the resting order in place, keeping
// its position in the FIFO queue (spec §4.5.2 branch 2, spec §8 scenario 5).
func TestRouter_ModifyDecreaseVolumePreservesTimePriority(t *testing.T) {
	r := newTestRouter(matcher.Config{})
	require.NoError(t, r.Process(model.Add, testOrder(1, model.Buy, price("49.00"), 100, 14)))
	require.NoError(t, r.Process(model.Add, testOrder(2, model.Buy, price("49.00"), 50, 14)))

	modified := testOrder(1, model.Buy, price("49.00"), 40, 14)
	require.NoError(t, r.Process(model.Modify, modified))

	lvl := r.Book().Bids.Level(price("49.00"))
	oldest := lvl.PeekOldest()
	assert.Equal(t, int64(1), oldest.OrderNumber, "order 1 keeps its place at the front of the queue")
	assert.Equal(t, uint64(40), oldest.VolumeOriginal)
}

// Decreasing disclosed volume alone also modifies in place (branch 3).
func TestRouter_ModifyDecreaseDisclosedVolumePreservesTimePriority(t *testing.T) {
	r := newTestRouter(matcher.Config{})
	order := testOrder(1, model.Buy, price("49.00"), 100, 14)
	order.VolumeDisclosed = 100
	require.NoError(t, r.Process(model.Add, order))

	modified := testOrder(1, model.Buy, price("49.00"), 100, 14)
	modified.VolumeDisclosed = 20
	require.NoError(t, r.Process(model.Modify, modified))

	lvl := r.Book().Bids.Level(price("49.00"))
	resting, ok := lvl.Get(1)
	require.True(t, ok)
	assert.Equal(t, uint64(20), resting.VolumeDisclosed)
	assert.Equal(t, uint64(100), resting.VolumeOriginal)
}

// Increasing original volume re-drives the delta through add, losing time
// priority on the increment (branch 4).
func TestRouter_ModifyIncreaseVolumeLosesTimePriorityOnDelta(t *testing.T) {
	r := newTestRouter(matcher.Config{})
	require.NoError(t, r.Process(model.Add, testOrder(1, model.Buy, price("49.00"), 50, 14)))
	require.NoError(t, r.Process(model.Add, testOrder(2, model.Buy, price("49.00"), 50, 14)))

	modified := testOrder(1, model.Buy, price("49.00"), 90, 14)
	require.NoError(t, r.Process(model.Modify, modified))

	lvl := r.Book().Bids.Level(price("49.00"))
	assert.Equal(t, 3, lvl.Len(), "the delta becomes a brand new queue entry")
	oldest := lvl.PeekOldest()
	assert.Equal(t, int64(1), oldest.OrderNumber, "original entry keeps its place at the front of the queue")
	assert.Equal(t, uint64(50), oldest.VolumeOriginal, "original resting volume is untouched by the delta add")
}

// Changing price removes the order entirely and re-drives it through add,
// which may now cross (branch 1).
func TestRouter_ModifyPriceChangeCanCross(t *testing.T) {
	r := newTestRouter(matcher.Config{CorrectedFillQuantity: true})
	require.NoError(t, r.Process(model.Add, testOrder(1, model.Buy, price("48.00"), 50, 14)))
	require.NoError(t, r.Process(model.Add, testOrder(2, model.Sell, price("49.00"), 50, 14)))

	modified := testOrder(1, model.Buy, price("49.00"), 50, 14)
	require.NoError(t, r.Process(model.Modify, modified))

	require.Len(t, r.Journal().Trades(), 1)
	assert.True(t, r.Book().Asks.IsEmpty())
	assert.True(t, r.Book().Bids.IsEmpty())
}

// A day rollover flushes both half-books before processing the action that
// triggered it (spec §4.3, §8 scenario 6).
func TestRouter_DayRolloverClearsBookBeforeProcessingNextAction(t *testing.T) {
	r := newTestRouter(matcher.Config{})
	require.NoError(t, r.Process(model.Add, testOrder(1, model.Buy, price("49.00"), 50, 14)))
	require.NoError(t, r.Process(model.Add, testOrder(2, model.Sell, price("51.00"), 50, 14)))
	assert.False(t, r.Book().Bids.IsEmpty())
	assert.False(t, r.Book().Asks.IsEmpty())

	require.NoError(t, r.Process(model.Add, testOrder(3, model.Buy, price("49.50"), 20, 15)))

	assert.True(t, r.Book().Asks.IsEmpty(), "prior day's resting ask is gone after rollover")
	best, ok := r.Book().BestBidPrice()
	require.True(t, ok)
	assert.True(t, best.Equal(price("49.50")), "only the new day's order rests")
}
