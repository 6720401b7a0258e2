package book

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"lobengine/internal/model"
)

func d(v string) decimal.Decimal {
	dec, err := decimal.NewFromString(v)
	if err != nil {
		panic(err)
	}
	return dec
}

func TestHalfBook_BestPriceOrdering(t *testing.T) {
	bids := NewHalfBook(model.Buy)
	bids.EnsureLevel(d("49.00"))
	bids.EnsureLevel(d("49.50"))
	bids.EnsureLevel(d("48.75"))

	price, ok := bids.BestPrice()
	assert.True(t, ok)
	assert.True(t, price.Equal(d("49.50")), "best bid should be the highest resting price")

	asks := NewHalfBook(model.Sell)
	asks.EnsureLevel(d("51.00"))
	asks.EnsureLevel(d("50.25"))
	asks.EnsureLevel(d("52.00"))

	price, ok = asks.BestPrice()
	assert.True(t, ok)
	assert.True(t, price.Equal(d("50.25")), "best ask should be the lowest resting price")
}

func TestHalfBook_DropLevelIfEmpty(t *testing.T) {
	bids := NewHalfBook(model.Buy)
	lvl := bids.EnsureLevel(d("49.00"))
	lvl.Append(&model.Order{OrderNumber: 1, VolumeOriginal: 10})

	assert.False(t, bids.DropLevelIfEmpty(lvl))
	lvl.PopOldest()
	assert.True(t, bids.DropLevelIfEmpty(lvl))
	assert.True(t, bids.IsEmpty())
}

func TestBook_SnapshotReflectsTopOfBook(t *testing.T) {
	b := New()
	bidLvl := b.Bids.EnsureLevel(d("49.00"))
	bidLvl.Append(&model.Order{OrderNumber: 1, VolumeOriginal: 100})
	askLvl := b.Asks.EnsureLevel(d("50.00"))
	askLvl.Append(&model.Order{OrderNumber: 2, VolumeOriginal: 200})

	snap := b.Snapshot()
	assert.True(t, snap.BestBidPresent)
	assert.True(t, snap.BestBid.Equal(d("49.00")))
	assert.Equal(t, uint64(100), snap.BestBidVolumeOriginal)
	assert.True(t, snap.BestAskPresent)
	assert.True(t, snap.BestAsk.Equal(d("50.00")))
	assert.Equal(t, uint64(200), snap.BestAskVolumeOriginal)
}

func TestBook_SnapshotEmptySide(t *testing.T) {
	b := New()
	snap := b.Snapshot()
	assert.False(t, snap.BestBidPresent)
	assert.False(t, snap.BestAskPresent)
}

func TestBook_ClearBookEmptiesLevelsAndResetsTradeSeq(t *testing.T) {
	b := New()
	lvl := b.Bids.EnsureLevel(d("49.00"))
	lvl.Append(&model.Order{OrderNumber: 1, VolumeOriginal: 100})
	_ = b.NextTradeSeq()
	_ = b.NextTradeSeq()

	b.ClearBook()

	assert.True(t, b.Bids.IsEmpty())
	assert.True(t, b.Asks.IsEmpty())
	assert.Equal(t, int64(1), b.NextTradeSeq())
}

func TestBook_ObserveDayRollover(t *testing.T) {
	b := New()
	assert.False(t, b.ObserveDay(14), "first action never rolls over")
	assert.False(t, b.ObserveDay(14), "same day never rolls over")
	assert.True(t, b.ObserveDay(15), "changed day rolls over")
	assert.Equal(t, 15, b.CurrentDay)
}

func TestBook_EventSeqNeverResets(t *testing.T) {
	b := New()
	first := b.NextEventSeq()
	b.ClearBook()
	second := b.NextEventSeq()
	assert.Equal(t, first+1, second)
}
