package codec

import (
	"fmt"
	"math"
	"math/big"
)

type frameKind uint8

const (
	frameArray frameKind = iota
	frameObject
)

type encodeFrame struct {
	kind frameKind
	eof  bool
}

// Encoder writes one YAJBE document to a ByteSink. It owns the per-document
// field-name dictionary and enum-string state; a single instance must not be
// shared between goroutines or documents (use Reset between documents).
type Encoder struct {
	sink   ByteSink
	fields fieldNameWriter
	stack  []encodeFrame

	enum           *enumIndexer
	enumConfigSent bool
}

// NewEncoder creates an encoder over sink.
func NewEncoder(sink ByteSink) *Encoder {
	return &Encoder{sink: sink}
}

// EnableEnumIndex turns on enum-string indexing for this document. It must be
// called before the first write.
func (e *Encoder) EnableEnumIndex(cfg EnumConfig) error {
	if e.enum != nil {
		return fmt.Errorf("%w: enum index already enabled", ErrInvalidArgument)
	}
	idx, err := newEnumIndexer(cfg)
	if err != nil {
		return err
	}
	e.enum = idx
	return nil
}

// Reset re-arms the encoder for a new document on sink, discarding the
// field-name dictionary and enum state.
func (e *Encoder) Reset(sink ByteSink) {
	cfg := EnumConfig{}
	hadEnum := e.enum != nil
	if hadEnum {
		cfg = e.enum.cfg
	}
	*e = Encoder{sink: sink}
	if hadEnum {
		e.enum, _ = newEnumIndexer(cfg)
	}
}

// WriteNull writes a null value.
func (e *Encoder) WriteNull() error {
	return e.sink.WriteByte(tagNull)
}

// WriteBool writes a boolean value.
func (e *Encoder) WriteBool(v bool) error {
	if v {
		return e.sink.WriteByte(tagTrue)
	}
	return e.sink.WriteByte(tagFalse)
}

// WriteInt writes a signed integer. Values in [-23, 24] inline into the tag
// byte; everything else takes a width-tagged little-endian payload.
func (e *Encoder) WriteInt(v int64) error {
	switch {
	case v >= 1 && v <= smallIntPosMax:
		return e.sink.WriteByte(byte(maskIntPos + v - 1))
	case v <= 0 && v >= -smallIntNegMax:
		return e.sink.WriteByte(byte(maskIntNeg - v))
	case v > smallIntPosMax:
		return e.writeWideInt(0x58, uint64(v-wideIntPosBias))
	default:
		return e.writeWideInt(0x78, uint64(-(v + wideIntNegBias)))
	}
}

func (e *Encoder) writeWideInt(tag byte, payload uint64) error {
	width := uintWidth(payload)
	if err := e.sink.WriteByte(tag | byte(width-1)); err != nil {
		return err
	}
	return e.sink.WriteUintLE(payload, width)
}

// WriteFloat32 writes an IEEE 754 binary32 value, NaN payloads included.
func (e *Encoder) WriteFloat32(v float32) error {
	if err := e.sink.WriteByte(tagFloat32); err != nil {
		return err
	}
	return e.sink.WriteUintLE(uint64(math.Float32bits(v)), 4)
}

// WriteFloat64 writes an IEEE 754 binary64 value, NaN payloads included.
func (e *Encoder) WriteFloat64(v float64) error {
	if err := e.sink.WriteByte(tagFloat64); err != nil {
		return err
	}
	return e.sink.WriteUintLE(math.Float64bits(v), 8)
}

// WriteBigInt writes an arbitrary-precision integer.
func (e *Encoder) WriteBigInt(v *big.Int) error {
	return e.writeBigDecimal(v, 0, 0)
}

// WriteBigDecimal writes an arbitrary-precision decimal. A value with both
// scale and precision zero decodes as a big integer.
func (e *Encoder) WriteBigDecimal(d *BigDecimal) error {
	return e.writeBigDecimal(d.Unscaled, d.Scale, d.Precision)
}

// WriteBytes writes a byte string.
func (e *Encoder) WriteBytes(p []byte) error {
	if err := e.writeBlobHead(maskBytes, len(p)); err != nil {
		return err
	}
	return e.sink.WriteSlice(p)
}

// WriteString writes a text string. With enum indexing enabled, eligible
// strings may be replaced by a 1- or 2-byte reference.
func (e *Encoder) WriteString(s string) error {
	if e.enum != nil && len(s) >= enumMinLength {
		return e.writeEnumString(s)
	}
	return e.writeStringLiteral(s)
}

func (e *Encoder) writeStringLiteral(s string) error {
	if err := e.writeBlobHead(maskString, len(s)); err != nil {
		return err
	}
	return e.sink.WriteSlice([]byte(s))
}

func (e *Encoder) writeEnumString(s string) error {
	if !e.enumConfigSent {
		e.enumConfigSent = true
		if err := e.sink.WriteByte(tagEnumConfig); err != nil {
			return err
		}
		record := e.enum.cfg.configRecord()
		if err := e.sink.WriteSlice(record[:]); err != nil {
			return err
		}
	}
	if idx, ok := e.enum.lookup(s); ok {
		if idx <= 0xFF {
			if err := e.sink.WriteByte(tagEnumRef8); err != nil {
				return err
			}
			return e.sink.WriteByte(byte(idx))
		}
		if err := e.sink.WriteByte(tagEnumRef16); err != nil {
			return err
		}
		return e.sink.WriteUintLE(uint64(idx), 2)
	}
	if err := e.writeStringLiteral(s); err != nil {
		return err
	}
	e.enum.observe(s)
	return nil
}

// writeBlobHead emits a bytes/string header: lengths up to 59 inline into the
// tag, larger lengths as a width-tagged little-endian value of length-59.
func (e *Encoder) writeBlobHead(mask byte, n int) error {
	if n <= inlineBlobMax {
		return e.sink.WriteByte(mask | byte(n))
	}
	payload := uint64(n - wideBlobBias)
	width := uintWidth(payload)
	if width > 4 {
		return fmt.Errorf("%w: %d byte payload", ErrInvalidArgument, n)
	}
	if err := e.sink.WriteByte(mask | byte(wideBlobBias+width)); err != nil {
		return err
	}
	return e.sink.WriteUintLE(payload, width)
}

// BeginArray opens a sized array of exactly count elements.
func (e *Encoder) BeginArray(count int) error {
	if count < 0 {
		return fmt.Errorf("%w: array count %d", ErrInvalidArgument, count)
	}
	e.stack = append(e.stack, encodeFrame{kind: frameArray})
	return e.writeContainerHead(maskArray, count)
}

// BeginStreamArray opens an EOF-terminated array; EndArray emits the
// terminator.
func (e *Encoder) BeginStreamArray() error {
	e.stack = append(e.stack, encodeFrame{kind: frameArray, eof: true})
	return e.sink.WriteByte(tagArrayEOF)
}

// EndArray closes the innermost array.
func (e *Encoder) EndArray() error {
	return e.endFrame(frameArray)
}

// BeginObject opens a sized object of exactly count fields.
func (e *Encoder) BeginObject(count int) error {
	if count < 0 {
		return fmt.Errorf("%w: object count %d", ErrInvalidArgument, count)
	}
	e.stack = append(e.stack, encodeFrame{kind: frameObject})
	return e.writeContainerHead(maskObject, count)
}

// BeginStreamObject opens an EOF-terminated object; EndObject emits the
// terminator.
func (e *Encoder) BeginStreamObject() error {
	e.stack = append(e.stack, encodeFrame{kind: frameObject, eof: true})
	return e.sink.WriteByte(tagObjectEOF)
}

// WriteFieldName writes the next field name of the innermost object, using
// the dictionary and prefix/suffix compression. Field names never pass
// through the enum indexer.
func (e *Encoder) WriteFieldName(name string) error {
	if len(e.stack) == 0 || e.stack[len(e.stack)-1].kind != frameObject {
		return fmt.Errorf("%w: field name outside object", ErrInvalidArgument)
	}
	return e.fields.write(e.sink, name)
}

// EndObject closes the innermost object.
func (e *Encoder) EndObject() error {
	return e.endFrame(frameObject)
}

func (e *Encoder) endFrame(kind frameKind) error {
	if len(e.stack) == 0 || e.stack[len(e.stack)-1].kind != kind {
		return fmt.Errorf("%w: unbalanced container end", ErrInvalidArgument)
	}
	f := e.stack[len(e.stack)-1]
	e.stack = e.stack[:len(e.stack)-1]
	if f.eof {
		return e.sink.WriteByte(tagEnd)
	}
	return nil
}

func (e *Encoder) writeContainerHead(mask byte, count int) error {
	if count <= inlineCountMax {
		return e.sink.WriteByte(mask | byte(count))
	}
	payload := uint64(count - wideCountBias)
	width := uintWidth(payload)
	if width > 4 {
		return fmt.Errorf("%w: container of %d elements", ErrInvalidArgument, count)
	}
	if err := e.sink.WriteByte(mask | byte(wideCountBias+width)); err != nil {
		return err
	}
	return e.sink.WriteUintLE(payload, width)
}
