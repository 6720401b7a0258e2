package book

import (
	"github.com/shopspring/decimal"
	"github.com/tidwall/btree"

	"lobengine/internal/model"
)

// levels is the ordered price index for one side, grounded on the
// teacher's `PriceLevels = btree.BTreeG[*PriceLevel]` (internal/engine/
// orderbook.go): a BTreeG keyed by price with an inverse comparator per
// side so that "best" is always the tree's Min.
type levels = btree.BTreeG[*PriceLevel]

// HalfBook is all resting orders on one side (bid or ask), indexed by
// price. The BID half-book's best price is its maximum key; the ASK
// half-book's best price is its minimum key. Both are modeled as a
// min-query over an inverse-ordered tree so BestPrice is always "the
// tree's minimum".
type HalfBook struct {
	side   model.Side
	levels *levels
}

// NewHalfBook builds an empty half-book for the given side.
func NewHalfBook(side model.Side) *HalfBook {
	var less func(a, b *PriceLevel) bool
	if side == model.Buy {
		// Bids: best is the highest price, so order descending.
		less = func(a, b *PriceLevel) bool { return a.Price.GreaterThan(b.Price) }
	} else {
		// Asks: best is the lowest price, so order ascending.
		less = func(a, b *PriceLevel) bool { return a.Price.LessThan(b.Price) }
	}
	return &HalfBook{
		side:   side,
		levels: btree.NewBTreeG(less),
	}
}

// BestPrice returns the best resting price and true, or false if the
// half-book is empty. A level returned by BestLevel is never itself empty:
// DropLevelIfEmpty always runs the instant a level's last order is removed.
func (h *HalfBook) BestPrice() (decimal.Decimal, bool) {
	lvl, ok := h.levels.Min()
	if !ok {
		return decimal.Zero, false
	}
	return lvl.Price, true
}

// BestLevel returns the best price level, or nil if the half-book is empty.
func (h *HalfBook) BestLevel() *PriceLevel {
	lvl, ok := h.levels.Min()
	if !ok {
		return nil
	}
	return lvl
}

// Level returns the level at price, or nil if none exists.
func (h *HalfBook) Level(price decimal.Decimal) *PriceLevel {
	probe := &PriceLevel{Price: price}
	lvl, ok := h.levels.Get(probe)
	if !ok {
		return nil
	}
	return lvl
}

// EnsureLevel returns the level at price, creating an empty one if absent.
func (h *HalfBook) EnsureLevel(price decimal.Decimal) *PriceLevel {
	if lvl := h.Level(price); lvl != nil {
		return lvl
	}
	lvl := newPriceLevel(h.side, price)
	h.levels.Set(lvl)
	return lvl
}

// DropLevel removes the level at price entirely. Must be called the
// instant a level's last order is removed.
func (h *HalfBook) DropLevel(price decimal.Decimal) {
	probe := &PriceLevel{Price: price}
	h.levels.Delete(probe)
}

// DropLevelIfEmpty drops lvl from the half-book if it has become empty.
// Returns whether it was dropped.
func (h *HalfBook) DropLevelIfEmpty(lvl *PriceLevel) bool {
	if !lvl.IsEmpty() {
		return false
	}
	h.DropLevel(lvl.Price)
	return true
}

// TotalVolumeAt sums the original and disclosed volume resting at price.
func (h *HalfBook) TotalVolumeAt(price decimal.Decimal) (original, disclosed uint64) {
	lvl := h.Level(price)
	if lvl == nil {
		return 0, 0
	}
	return lvl.TotalVolume()
}

// IsEmpty reports whether the half-book has no resting levels at all.
func (h *HalfBook) IsEmpty() bool {
	return h.levels.Len() == 0
}

// Clear removes all levels, used by Book.ClearBook at day rollover.
func (h *HalfBook) Clear() {
	h.levels.Clear()
}

// Levels returns every price level in best-to-worst order; used by the
// router to locate a resting order by order number when modifying it.
func (h *HalfBook) Levels() []*PriceLevel {
	out := make([]*PriceLevel, 0, h.levels.Len())
	h.levels.Scan(func(lvl *PriceLevel) bool {
		out = append(out, lvl)
		return true
	})
	return out
}
