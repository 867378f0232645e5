package codec

import (
	"fmt"
	"math"
	"math/big"
)

// BigDecimal is an arbitrary-precision decimal: Unscaled * 10^(-Scale) with a
// declared Precision. A value with Scale == 0 and Precision == 0 travels as a
// big integer instead.
type BigDecimal struct {
	Unscaled  *big.Int
	Scale     int32
	Precision uint32
}

func (d *BigDecimal) String() string {
	return fmt.Sprintf("%v x 10^-%d (precision %d)", d.Unscaled, d.Scale, d.Precision)
}

// The flags byte after the 0x07 tag packs the layout of the record:
//
//	bit 7     scale sign (1 = negative)
//	bits 6..5 scale width - 1
//	bits 4..3 precision width - 1
//	bit 2     unscaled-value sign (1 = negative)
//	bits 1..0 unscaled-data length field width - 1
//
// Scale, precision, and the data length follow as little-endian unsigned
// integers of the flagged widths; the unscaled magnitude follows big-endian.
const (
	bigFlagScaleNeg    = 0x80
	bigFlagUnscaledNeg = 0x04
)

func (e *Encoder) writeBigDecimal(unscaled *big.Int, scale int32, precision uint32) error {
	if err := e.sink.WriteByte(tagBigDecimal); err != nil {
		return err
	}

	var flags byte
	var scaleMag uint64
	if scale < 0 {
		flags |= bigFlagScaleNeg
		scaleMag = uint64(-int64(scale))
	} else {
		scaleMag = uint64(scale)
	}
	scaleWidth := uintWidth(scaleMag)
	precWidth := uintWidth(uint64(precision))

	mag := unscaled.Bytes()
	lenWidth := uintWidth(uint64(len(mag)))
	if lenWidth > 4 {
		return fmt.Errorf("%w: unscaled value of %d bytes", ErrInvalidArgument, len(mag))
	}

	flags |= byte(scaleWidth-1) << 5
	flags |= byte(precWidth-1) << 3
	if unscaled.Sign() < 0 {
		flags |= bigFlagUnscaledNeg
	}
	flags |= byte(lenWidth - 1)

	if err := e.sink.WriteByte(flags); err != nil {
		return err
	}
	if err := e.sink.WriteUintLE(scaleMag, scaleWidth); err != nil {
		return err
	}
	if err := e.sink.WriteUintLE(uint64(precision), precWidth); err != nil {
		return err
	}
	if err := e.sink.WriteUintLE(uint64(len(mag)), lenWidth); err != nil {
		return err
	}
	return e.sink.WriteSlice(mag)
}

func (d *Decoder) readBigDecimal() (Event, error) {
	flags, err := d.src.ReadByte()
	if err != nil {
		return Event{}, err
	}
	scaleWidth := int(flags>>5&0x3) + 1
	precWidth := int(flags>>3&0x3) + 1
	lenWidth := int(flags&0x3) + 1

	scaleMag, err := d.src.ReadUintLE(scaleWidth)
	if err != nil {
		return Event{}, err
	}
	var scale int32
	if flags&bigFlagScaleNeg != 0 {
		if scaleMag > uint64(math.MaxInt32)+1 {
			return Event{}, fmt.Errorf("%w: scale -%d", ErrMalformed, scaleMag)
		}
		scale = int32(-int64(scaleMag))
	} else {
		if scaleMag > uint64(math.MaxInt32) {
			return Event{}, fmt.Errorf("%w: scale %d", ErrMalformed, scaleMag)
		}
		scale = int32(scaleMag)
	}

	precMag, err := d.src.ReadUintLE(precWidth)
	if err != nil {
		return Event{}, err
	}
	if precMag > math.MaxUint32 {
		return Event{}, fmt.Errorf("%w: precision %d", ErrMalformed, precMag)
	}

	magLen, err := d.src.ReadUintLE(lenWidth)
	if err != nil {
		return Event{}, err
	}
	if magLen > math.MaxInt32 {
		return Event{}, fmt.Errorf("%w: unscaled value of %d bytes", ErrMalformed, magLen)
	}
	mag, err := d.src.ReadSlice(int(magLen))
	if err != nil {
		return Event{}, err
	}

	// Some producers pad the magnitude with a sign-extension zero; strip it
	// so every producer round-trips to the same logical value.
	if len(mag) >= 2 && mag[0] == 0x00 && mag[1]&0x80 != 0 {
		mag = mag[1:]
	}

	unscaled := new(big.Int).SetBytes(mag)
	if flags&bigFlagUnscaledNeg != 0 {
		unscaled.Neg(unscaled)
	}

	if scale == 0 && precMag == 0 {
		return Event{Kind: EventBigInt, BigInt: unscaled}, nil
	}
	return Event{Kind: EventBigDecimal, BigDecimal: &BigDecimal{
		Unscaled:  unscaled,
		Scale:     scale,
		Precision: uint32(precMag),
	}}, nil
}
