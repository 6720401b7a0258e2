// Package driver reads the chronological order-action stream and feeds it
// to an OrderRouter in arrival order (spec §4, "Driver"). Row decoding is
// fanned out across a small worker pool — grounded on the teacher's
// tomb.Tomb-supervised WorkerPool (internal/worker.go) — but the decoded
// rows are always handed to the router one at a time, in the order they
// arrived, since the matching core is single-threaded and synchronous
// (spec §5).
package driver

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	tomb "gopkg.in/tomb.v2"

	"lobengine/internal/model"
	"lobengine/internal/router"
)

// column offsets into one input row, matching the source schema (spec §6):
// record_indicator, segment, order_number, trans_date, trans_time,
// buy_sell_indicator, activity_type, symbol, instrument, expiry_date,
// strike_price, option_type, volume_disclosed, volume_original,
// limit_price, trigger_price, mkt_flag, on_stop_flag, io_flag,
// spread_comb_type, algo_ind, client_id_flag.
const (
	colOrderNumber = 2
	colTransDate   = 3
	colTransTime   = 4
	colSide        = 5
	colActivity    = 6
	colVolDisc     = 12
	colVolOrig     = 13
	colLimitPrice  = 14
	colMktFlag     = 16
	numColumns     = 22
)

const dateLayout = "01/02/2006"

// Row is one decoded input record, ready to hand to the router.
type Row struct {
	Activity model.Activity
	Order    model.Order
}

// decodeResult pairs a decoded row (or the error that made it undecodable)
// with its original stream position, so concurrent decoding can be
// reassembled back into arrival order.
type decodeResult struct {
	index int
	row   Row
	err   error
}

// Driver reads a CSV stream and drives a Router one action at a time.
type Driver struct {
	log     zerolog.Logger
	workers int
}

// New builds a Driver that fans row decoding out across workers goroutines
// (minimum 1).
func New(log zerolog.Logger, workers int) *Driver {
	if workers < 1 {
		workers = 1
	}
	return &Driver{log: log, workers: workers}
}

// Run reads every row from r, decodes it, and feeds it to router.Process
// in arrival order. It stops at the first fatal error (spec §7) and
// returns it; everything journaled up to that point is retained.
func (d *Driver) Run(r io.Reader, rt *router.Router) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var records [][]string
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading input stream: %w", err)
		}
		records = append(records, rec)
	}

	results := make([]decodeResult, len(records))
	rowIdx := make(chan int, len(records))
	for i := range records {
		rowIdx <- i
	}
	close(rowIdx)

	t := new(tomb.Tomb)
	for w := 0; w < d.workers; w++ {
		t.Go(func() error {
			for idx := range rowIdx {
				row, err := decodeRow(records[idx])
				results[idx] = decodeResult{index: idx, row: row, err: err}
			}
			return nil
		})
	}
	_ = t.Wait()

	for _, res := range results {
		if res.err != nil {
			d.log.Error().
				Err(res.err).
				Int("row", res.index).
				Msg("malformed row, aborting stream")
			return res.err
		}

		if err := rt.Process(res.row.Activity, res.row.Order); err != nil {
			d.log.Error().
				Err(err).
				Int64("orderNumber", res.row.Order.OrderNumber).
				Int("activity", int(res.row.Activity)).
				Str("runID", rt.RunID().String()).
				Msg("fatal error processing action, aborting stream")
			return err
		}
	}
	return nil
}

// decodeRow parses one CSV record into a Row, validating the fields the
// engine depends on (spec §7: UnknownActivity, InvalidMarketFlag,
// crossed/malformed price are all fatal).
func decodeRow(rec []string) (Row, error) {
	if len(rec) < numColumns {
		return Row{}, fmt.Errorf("row has %d columns, want at least %d", len(rec), numColumns)
	}

	orderNumber, err := strconv.ParseInt(rec[colOrderNumber], 10, 64)
	if err != nil {
		return Row{}, fmt.Errorf("parsing order_number: %w", err)
	}

	activityCode, err := strconv.Atoi(rec[colActivity])
	if err != nil {
		return Row{}, fmt.Errorf("parsing activity_type: %w", err)
	}
	var activity model.Activity
	switch activityCode {
	case 1:
		activity = model.Add
	case 3:
		activity = model.Cancel
	case 4:
		activity = model.Modify
	default:
		return Row{}, model.ErrUnknownActivity
	}

	var side model.Side
	switch rec[colSide] {
	case "B":
		side = model.Buy
	case "S":
		side = model.Sell
	default:
		return Row{}, fmt.Errorf("invalid buy_sell_indicator %q", rec[colSide])
	}

	var isMarket bool
	switch rec[colMktFlag] {
	case "Y":
		isMarket = true
	case "N":
		isMarket = false
	default:
		return Row{}, model.ErrInvalidMarketFlag
	}

	transDate, err := time.Parse(dateLayout, rec[colTransDate])
	if err != nil {
		return Row{}, fmt.Errorf("parsing trans_date: %w", err)
	}

	price, err := decimal.NewFromString(rec[colLimitPrice])
	if err != nil {
		return Row{}, fmt.Errorf("parsing limit_price: %w", err)
	}
	if !isMarket && !price.IsPositive() {
		return Row{}, model.ErrInvalidPrice
	}

	volOriginal, err := strconv.ParseUint(rec[colVolOrig], 10, 64)
	if err != nil {
		return Row{}, fmt.Errorf("parsing volume_original: %w", err)
	}
	volDisclosed, err := strconv.ParseUint(rec[colVolDisc], 10, 64)
	if err != nil {
		return Row{}, fmt.Errorf("parsing volume_disclosed: %w", err)
	}

	order := model.Order{
		OrderNumber:     orderNumber,
		Side:            side,
		LimitPrice:      price,
		VolumeOriginal:  volOriginal,
		VolumeDisclosed: volDisclosed,
		IsMarket:        isMarket,
		TransDate:       transDate,
		TransTime:       rec[colTransTime],
	}
	return Row{Activity: activity, Order: order}, nil
}
