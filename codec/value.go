package codec

import (
	"fmt"
	"math"
	"math/big"
	"sort"
)

// Tree-mode convenience layer over the push/pull APIs. Logical values map to
// nil, bool, int64, float32, float64, *big.Int, *BigDecimal, []byte, string,
// []any, and map[string]any.

// Marshal encodes v into a fresh buffer.
func Marshal(v any) ([]byte, error) {
	sink := NewBufferSink(nil)
	enc := NewEncoder(sink)
	if err := enc.WriteValue(v); err != nil {
		return nil, err
	}
	return sink.Bytes(), nil
}

// Unmarshal decodes a single document from data.
func Unmarshal(data []byte) (any, error) {
	dec := NewDecoder(NewBufferSource(data))
	return dec.ReadValue()
}

// WriteValue encodes one logical value, recursing through arrays and
// objects. Map fields are written in sorted key order; the format does not
// normalize key order, this just keeps the output deterministic.
func (e *Encoder) WriteValue(v any) error {
	switch t := v.(type) {
	case nil:
		return e.WriteNull()
	case bool:
		return e.WriteBool(t)
	case int:
		return e.WriteInt(int64(t))
	case int8:
		return e.WriteInt(int64(t))
	case int16:
		return e.WriteInt(int64(t))
	case int32:
		return e.WriteInt(int64(t))
	case int64:
		return e.WriteInt(t)
	case uint8:
		return e.WriteInt(int64(t))
	case uint16:
		return e.WriteInt(int64(t))
	case uint32:
		return e.WriteInt(int64(t))
	case uint64:
		if t > math.MaxInt64 {
			return e.WriteBigInt(new(big.Int).SetUint64(t))
		}
		return e.WriteInt(int64(t))
	case float32:
		return e.WriteFloat32(t)
	case float64:
		return e.WriteFloat64(t)
	case *big.Int:
		return e.WriteBigInt(t)
	case *BigDecimal:
		return e.WriteBigDecimal(t)
	case []byte:
		return e.WriteBytes(t)
	case string:
		return e.WriteString(t)
	case []any:
		if err := e.BeginArray(len(t)); err != nil {
			return err
		}
		for _, item := range t {
			if err := e.WriteValue(item); err != nil {
				return err
			}
		}
		return e.EndArray()
	case map[string]any:
		if err := e.BeginObject(len(t)); err != nil {
			return err
		}
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err := e.WriteFieldName(k); err != nil {
				return err
			}
			if err := e.WriteValue(t[k]); err != nil {
				return err
			}
		}
		return e.EndObject()
	default:
		return fmt.Errorf("%w: unsupported value type %T", ErrInvalidArgument, v)
	}
}

// ReadValue decodes one logical value, recursing through containers. Byte
// strings are copied out of the source, so the result outlives it.
func (d *Decoder) ReadValue() (any, error) {
	ev, err := d.Next()
	if err != nil {
		return nil, err
	}
	return d.valueFromEvent(ev)
}

func (d *Decoder) valueFromEvent(ev Event) (any, error) {
	switch ev.Kind {
	case EventNull:
		return nil, nil
	case EventBool:
		return ev.Bool, nil
	case EventInt:
		return ev.Int, nil
	case EventFloat32:
		return ev.Float32, nil
	case EventFloat64:
		return ev.Float64, nil
	case EventBigInt:
		return ev.BigInt, nil
	case EventBigDecimal:
		return ev.BigDecimal, nil
	case EventBytes:
		p := make([]byte, len(ev.Bytes))
		copy(p, ev.Bytes)
		return p, nil
	case EventString:
		return ev.Str, nil
	case EventArrayStart:
		arr := []any{}
		if ev.Count > 0 {
			arr = make([]any, 0, ev.Count)
		}
		for {
			next, err := d.Next()
			if err != nil {
				return nil, err
			}
			if next.Kind == EventArrayEnd {
				return arr, nil
			}
			item, err := d.valueFromEvent(next)
			if err != nil {
				return nil, err
			}
			arr = append(arr, item)
		}
	case EventObjectStart:
		obj := map[string]any{}
		for {
			next, err := d.Next()
			if err != nil {
				return nil, err
			}
			if next.Kind == EventObjectEnd {
				return obj, nil
			}
			if next.Kind != EventFieldName {
				return nil, fmt.Errorf("%w: want field name, have %v", ErrMalformed, next.Kind)
			}
			name := next.Str
			value, err := d.ReadValue()
			if err != nil {
				return nil, err
			}
			obj[name] = value
		}
	case EventDocumentEnd:
		return nil, fmt.Errorf("%w: empty document", ErrUnexpectedEOF)
	default:
		return nil, fmt.Errorf("%w: event %v", ErrMalformed, ev.Kind)
	}
}
