package composition

import (
	"github.com/quantframe-lab/quantframe/internal/marketdata"
	"github.com/quantframe-lab/quantframe/pkg/errors"
)

// Field names shared by the candle-backed compositions.
const (
	FieldTimestamp = "timestamp"
	FieldHigh      = "high"
	FieldLow       = "low"
	FieldClose     = "close"
)

// CloseComposition exposes (timestamp, close) rows from a candle source.
type CloseComposition struct {
	id          string
	name        string
	description string
	source      marketdata.CandleSource
}

func NewCloseComposition(id, name, description string, source marketdata.CandleSource) *CloseComposition {
	return &CloseComposition{
		id:          id,
		name:        name,
		description: description,
		source:      source,
	}
}

func (c *CloseComposition) ID() string {
	return c.id
}

func (c *CloseComposition) Name() string {
	return c.name
}

func (c *CloseComposition) Description() string {
	return c.description
}

func (c *CloseComposition) Fields() map[string]int {
	return map[string]int{
		FieldTimestamp: 0,
		FieldClose:     1,
	}
}

func (c *CloseComposition) Compose() ([]Row, error) {
	rows := make([]Row, 0, c.source.Len())
	for i := 0; i < c.source.Len(); i++ {
		candle, err := c.source.At(i)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeResourceUnavailable, err,
				"failed to read candle %d", i)
		}
		rows = append(rows, Row{
			Int(candle.Timestamp),
			Float(float64(candle.Close)),
		})
	}
	if err := Validate(rows, c.Fields()); err != nil {
		return nil, err
	}
	return rows, nil
}

// HLCComposition exposes (timestamp, high, low, close) rows from a candle
// source, for indicators that consume full bars.
type HLCComposition struct {
	id          string
	name        string
	description string
	source      marketdata.CandleSource
}

func NewHLCComposition(id, name, description string, source marketdata.CandleSource) *HLCComposition {
	return &HLCComposition{
		id:          id,
		name:        name,
		description: description,
		source:      source,
	}
}

func (c *HLCComposition) ID() string {
	return c.id
}

func (c *HLCComposition) Name() string {
	return c.name
}

func (c *HLCComposition) Description() string {
	return c.description
}

func (c *HLCComposition) Fields() map[string]int {
	return map[string]int{
		FieldTimestamp: 0,
		FieldHigh:      1,
		FieldLow:       2,
		FieldClose:     3,
	}
}

func (c *HLCComposition) Compose() ([]Row, error) {
	rows := make([]Row, 0, c.source.Len())
	for i := 0; i < c.source.Len(); i++ {
		candle, err := c.source.At(i)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeResourceUnavailable, err,
				"failed to read candle %d", i)
		}
		rows = append(rows, Row{
			Int(candle.Timestamp),
			Float(float64(candle.High)),
			Float(float64(candle.Low)),
			Float(float64(candle.Close)),
		})
	}
	if err := Validate(rows, c.Fields()); err != nil {
		return nil, err
	}
	return rows, nil
}
