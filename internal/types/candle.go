package types

import (
	"encoding/binary"
	"math"
)

// Candle is one OHLCV bar. The packed binary layout is an int64 timestamp in
// seconds followed by five float32 fields, little-endian, no padding. Existing
// data files use exactly this layout, so it must be preserved byte-for-byte.
type Candle struct {
	Timestamp int64
	Open      float32
	High      float32
	Low       float32
	Close     float32
	Volume    float32
}

// CandleRecordSize is the size in bytes of one packed candle record.
const CandleRecordSize = 8 + 5*4

// EncodeCandle writes the packed representation of c into buf.
// buf must be at least CandleRecordSize bytes long.
func EncodeCandle(c Candle, buf []byte) {
	binary.LittleEndian.PutUint64(buf[0:8], uint64(c.Timestamp))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(c.Open))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(c.High))
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(c.Low))
	binary.LittleEndian.PutUint32(buf[20:24], math.Float32bits(c.Close))
	binary.LittleEndian.PutUint32(buf[24:28], math.Float32bits(c.Volume))
}

// DecodeCandle reads a packed candle record from buf.
// buf must be at least CandleRecordSize bytes long.
func DecodeCandle(buf []byte) Candle {
	return Candle{
		Timestamp: int64(binary.LittleEndian.Uint64(buf[0:8])),
		Open:      math.Float32frombits(binary.LittleEndian.Uint32(buf[8:12])),
		High:      math.Float32frombits(binary.LittleEndian.Uint32(buf[12:16])),
		Low:       math.Float32frombits(binary.LittleEndian.Uint32(buf[16:20])),
		Close:     math.Float32frombits(binary.LittleEndian.Uint32(buf[20:24])),
		Volume:    math.Float32frombits(binary.LittleEndian.Uint32(buf[24:28])),
	}
}
