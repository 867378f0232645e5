package codec

import (
	"errors"
	"fmt"
	"math"
	"math/big"
)

// EventKind identifies what a decoder pull produced.
type EventKind uint8

const (
	EventNull EventKind = iota
	EventBool
	EventInt
	EventFloat32
	EventFloat64
	EventBigInt
	EventBigDecimal
	EventBytes
	EventString
	EventArrayStart
	EventArrayEnd
	EventObjectStart
	EventFieldName
	EventObjectEnd
	EventDocumentEnd
)

func (k EventKind) String() string {
	switch k {
	case EventNull:
		return "null"
	case EventBool:
		return "bool"
	case EventInt:
		return "int"
	case EventFloat32:
		return "float32"
	case EventFloat64:
		return "float64"
	case EventBigInt:
		return "bigint"
	case EventBigDecimal:
		return "bigdecimal"
	case EventBytes:
		return "bytes"
	case EventString:
		return "string"
	case EventArrayStart:
		return "array-start"
	case EventArrayEnd:
		return "array-end"
	case EventObjectStart:
		return "object-start"
	case EventFieldName:
		return "field-name"
	case EventObjectEnd:
		return "object-end"
	case EventDocumentEnd:
		return "document-end"
	default:
		return fmt.Sprintf("<invalid event kind 0x%02x>", uint8(k))
	}
}

// Event is one decoded item. Only the fields matching Kind are meaningful.
// Bytes is borrowed from the source where possible and is only valid until
// the next pull; Str carries both strings and field names.
type Event struct {
	Kind       EventKind
	Bool       bool
	Int        int64
	Float32    float32
	Float64    float64
	BigInt     *big.Int
	BigDecimal *BigDecimal
	Bytes      []byte
	Str        string

	// Count is the declared element count of ArrayStart/ObjectStart, or -1
	// for an EOF-terminated container.
	Count int
}

type decodeFrame struct {
	object        bool
	eof           bool
	remaining     int
	awaitingValue bool
}

// Decoder pulls one YAJBE document from a ByteSource as a sequence of
// events. It owns the per-document field-name dictionary and enum-string
// state; a single instance must not be shared between goroutines or
// documents (use Reset between documents).
type Decoder struct {
	src    ByteSource
	fields fieldNameReader
	stack  []decodeFrame
	enum   *enumIndexer
	done   bool
}

// NewDecoder creates a decoder over src.
func NewDecoder(src ByteSource) *Decoder {
	return &Decoder{src: src}
}

// Reset re-arms the decoder for a new document on src, discarding the
// field-name dictionary and enum state.
func (d *Decoder) Reset(src ByteSource) {
	*d = Decoder{src: src}
}

// Next returns the next event of the document. After the top-level value
// completes, every call returns a DocumentEnd event.
func (d *Decoder) Next() (Event, error) {
	if d.done {
		return Event{Kind: EventDocumentEnd}, nil
	}

	if len(d.stack) == 0 {
		// No length prefix exists for the document itself; EOF before the
		// first tag means an empty document.
		if _, err := d.src.Peek(); err != nil {
			if errors.Is(err, ErrUnexpectedEOF) {
				d.done = true
				return Event{Kind: EventDocumentEnd}, nil
			}
			return Event{}, err
		}
		return d.readValue()
	}

	f := &d.stack[len(d.stack)-1]
	if f.object && !f.awaitingValue {
		ended, err := d.frameEnded(f)
		if err != nil {
			return Event{}, err
		}
		if ended {
			return d.pop(EventObjectEnd)
		}
		name, err := d.fields.read(d.src)
		if err != nil {
			return Event{}, err
		}
		if !f.eof {
			f.remaining--
		}
		f.awaitingValue = true
		return Event{Kind: EventFieldName, Str: name}, nil
	}

	if f.object {
		f.awaitingValue = false
	} else {
		ended, err := d.frameEnded(f)
		if err != nil {
			return Event{}, err
		}
		if ended {
			return d.pop(EventArrayEnd)
		}
		if !f.eof {
			f.remaining--
		}
	}
	return d.readValue()
}

// frameEnded reports whether the current container has no more children. An
// EOF-terminated container peeks for the END marker in the slot where the
// next child's tag (or, in an object, the next field name) would appear; the
// check happens before dispatch, so the marker is never handed to the value
// or field-name readers.
func (d *Decoder) frameEnded(f *decodeFrame) (bool, error) {
	if !f.eof {
		return f.remaining == 0, nil
	}
	b, err := d.src.Peek()
	if err != nil {
		return false, err
	}
	if b != tagEnd {
		return false, nil
	}
	if _, err := d.src.ReadByte(); err != nil {
		return false, err
	}
	return true, nil
}

func (d *Decoder) pop(kind EventKind) (Event, error) {
	d.stack = d.stack[:len(d.stack)-1]
	if len(d.stack) == 0 {
		d.done = true
	}
	return Event{Kind: kind}, nil
}

// scalar finalizes a non-container value event.
func (d *Decoder) scalar(ev Event) (Event, error) {
	if len(d.stack) == 0 {
		d.done = true
	}
	return ev, nil
}

func (d *Decoder) readValue() (Event, error) {
	tag, err := d.src.ReadByte()
	if err != nil {
		return Event{}, err
	}
	info := tagTable[tag]

	switch info.kind {
	case kindNull:
		return d.scalar(Event{Kind: EventNull})
	case kindFalse:
		return d.scalar(Event{Kind: EventBool, Bool: false})
	case kindTrue:
		return d.scalar(Event{Kind: EventBool, Bool: true})

	case kindIntInline:
		return d.scalar(Event{Kind: EventInt, Int: int64(info.imm)})
	case kindIntPosWide:
		payload, err := d.src.ReadUintLE(info.imm)
		if err != nil {
			return Event{}, err
		}
		if payload > math.MaxInt64-wideIntPosBias {
			return Event{}, fmt.Errorf("%w: integer overflow", ErrMalformed)
		}
		return d.scalar(Event{Kind: EventInt, Int: int64(payload) + wideIntPosBias})
	case kindIntNegWide:
		payload, err := d.src.ReadUintLE(info.imm)
		if err != nil {
			return Event{}, err
		}
		if payload > 1<<63-wideIntNegBias {
			return Event{}, fmt.Errorf("%w: integer overflow", ErrMalformed)
		}
		return d.scalar(Event{Kind: EventInt, Int: -int64(payload) - wideIntNegBias})

	case kindFloat32:
		bits, err := d.src.ReadUintLE(4)
		if err != nil {
			return Event{}, err
		}
		return d.scalar(Event{Kind: EventFloat32, Float32: math.Float32frombits(uint32(bits))})
	case kindFloat64:
		bits, err := d.src.ReadUintLE(8)
		if err != nil {
			return Event{}, err
		}
		return d.scalar(Event{Kind: EventFloat64, Float64: math.Float64frombits(bits)})

	case kindBigDecimal:
		ev, err := d.readBigDecimal()
		if err != nil {
			return Event{}, err
		}
		return d.scalar(ev)

	case kindBytesInline:
		return d.readBytesValue(info.imm)
	case kindBytesWide:
		n, err := d.readBlobLength(info.imm)
		if err != nil {
			return Event{}, err
		}
		return d.readBytesValue(n)
	case kindStringInline:
		return d.readStringValue(info.imm)
	case kindStringWide:
		n, err := d.readBlobLength(info.imm)
		if err != nil {
			return Event{}, err
		}
		return d.readStringValue(n)

	case kindArraySized:
		d.stack = append(d.stack, decodeFrame{remaining: info.imm})
		return Event{Kind: EventArrayStart, Count: info.imm}, nil
	case kindArrayWide:
		count, err := d.readContainerCount(info.imm)
		if err != nil {
			return Event{}, err
		}
		d.stack = append(d.stack, decodeFrame{remaining: count})
		return Event{Kind: EventArrayStart, Count: count}, nil
	case kindArrayEOF:
		d.stack = append(d.stack, decodeFrame{eof: true})
		return Event{Kind: EventArrayStart, Count: -1}, nil

	case kindObjectSized:
		d.stack = append(d.stack, decodeFrame{object: true, remaining: info.imm})
		return Event{Kind: EventObjectStart, Count: info.imm}, nil
	case kindObjectWide:
		count, err := d.readContainerCount(info.imm)
		if err != nil {
			return Event{}, err
		}
		d.stack = append(d.stack, decodeFrame{object: true, remaining: count})
		return Event{Kind: EventObjectStart, Count: count}, nil
	case kindObjectEOF:
		d.stack = append(d.stack, decodeFrame{object: true, eof: true})
		return Event{Kind: EventObjectStart, Count: -1}, nil

	case kindEnumConfig:
		if err := d.readEnumConfig(); err != nil {
			return Event{}, err
		}
		// The config record is a prefix; the value of this slot follows.
		return d.readValue()
	case kindEnumRef8:
		idx, err := d.src.ReadByte()
		if err != nil {
			return Event{}, err
		}
		return d.resolveEnumRef(int(idx))
	case kindEnumRef16:
		idx, err := d.src.ReadUintLE(2)
		if err != nil {
			return Event{}, err
		}
		return d.resolveEnumRef(int(idx))

	case kindEnd:
		return Event{}, fmt.Errorf("%w: END marker outside EOF-terminated container", ErrMalformed)
	case kindReserved:
		return Event{}, fmt.Errorf("%w: reserved tag 0x%02x", ErrUnsupported, tag)
	default:
		return Event{}, fmt.Errorf("%w: tag 0x%02x", ErrMalformed, tag)
	}
}

func (d *Decoder) readBytesValue(n int) (Event, error) {
	p, err := d.src.ReadSlice(n)
	if err != nil {
		return Event{}, err
	}
	return d.scalar(Event{Kind: EventBytes, Bytes: p})
}

func (d *Decoder) readStringValue(n int) (Event, error) {
	p, err := d.src.ReadSlice(n)
	if err != nil {
		return Event{}, err
	}
	s := string(p)
	if d.enum != nil && len(s) >= enumMinLength {
		d.enum.observe(s)
	}
	return d.scalar(Event{Kind: EventString, Str: s})
}

func (d *Decoder) readBlobLength(width int) (int, error) {
	payload, err := d.src.ReadUintLE(width)
	if err != nil {
		return 0, err
	}
	if payload > math.MaxInt32 {
		return 0, fmt.Errorf("%w: payload of %d bytes", ErrMalformed, payload)
	}
	return int(payload) + wideBlobBias, nil
}

func (d *Decoder) readContainerCount(width int) (int, error) {
	payload, err := d.src.ReadUintLE(width)
	if err != nil {
		return 0, err
	}
	if payload > math.MaxInt32 {
		return 0, fmt.Errorf("%w: container of %d elements", ErrMalformed, payload)
	}
	return int(payload) + wideCountBias, nil
}

func (d *Decoder) readEnumConfig() error {
	if d.enum != nil {
		return fmt.Errorf("%w: duplicate enum config", ErrMalformed)
	}
	record, err := d.src.ReadSlice(2)
	if err != nil {
		return err
	}
	cfg, err := parseEnumConfig(record[0], record[1])
	if err != nil {
		return err
	}
	d.enum, err = newEnumIndexer(cfg)
	if err != nil {
		return fmt.Errorf("%w: enum config", ErrMalformed)
	}
	return nil
}

func (d *Decoder) resolveEnumRef(idx int) (Event, error) {
	if d.enum == nil {
		return Event{}, fmt.Errorf("%w: enum reference without config", ErrMalformed)
	}
	s, ok := d.enum.stringAt(idx)
	if !ok {
		return Event{}, fmt.Errorf("%w: enum index %d of %d", ErrMalformed, idx, len(d.enum.strings))
	}
	return d.scalar(Event{Kind: EventString, Str: s})
}

// Typed pull helpers. Each reads the next event and fails with
// ErrTypeMismatch when it is of a different category.

// ReadInt reads the next value as a signed integer.
func (d *Decoder) ReadInt() (int64, error) {
	ev, err := d.Next()
	if err != nil {
		return 0, err
	}
	if ev.Kind != EventInt {
		return 0, fmt.Errorf("%w: want int, have %v", ErrTypeMismatch, ev.Kind)
	}
	return ev.Int, nil
}

// ReadBool reads the next value as a boolean.
func (d *Decoder) ReadBool() (bool, error) {
	ev, err := d.Next()
	if err != nil {
		return false, err
	}
	if ev.Kind != EventBool {
		return false, fmt.Errorf("%w: want bool, have %v", ErrTypeMismatch, ev.Kind)
	}
	return ev.Bool, nil
}

// ReadString reads the next value as a text string.
func (d *Decoder) ReadString() (string, error) {
	ev, err := d.Next()
	if err != nil {
		return "", err
	}
	if ev.Kind != EventString {
		return "", fmt.Errorf("%w: want string, have %v", ErrTypeMismatch, ev.Kind)
	}
	return ev.Str, nil
}

// ReadBytes reads the next value as a byte string. The returned slice may be
// borrowed from the source.
func (d *Decoder) ReadBytes() ([]byte, error) {
	ev, err := d.Next()
	if err != nil {
		return nil, err
	}
	if ev.Kind != EventBytes {
		return nil, fmt.Errorf("%w: want bytes, have %v", ErrTypeMismatch, ev.Kind)
	}
	return ev.Bytes, nil
}

// ReadFloat64 reads the next value as a binary64 float.
func (d *Decoder) ReadFloat64() (float64, error) {
	ev, err := d.Next()
	if err != nil {
		return 0, err
	}
	if ev.Kind != EventFloat64 {
		return 0, fmt.Errorf("%w: want float64, have %v", ErrTypeMismatch, ev.Kind)
	}
	return ev.Float64, nil
}

// ReadFloat32 reads the next value as a binary32 float.
func (d *Decoder) ReadFloat32() (float32, error) {
	ev, err := d.Next()
	if err != nil {
		return 0, err
	}
	if ev.Kind != EventFloat32 {
		return 0, fmt.Errorf("%w: want float32, have %v", ErrTypeMismatch, ev.Kind)
	}
	return ev.Float32, nil
}
