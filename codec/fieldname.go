package codec

import "fmt"

// Field-name form prefixes, in the top 3 bits of the first byte.
const (
	fieldFull         = 0x80 // 100: length, then the name bytes
	fieldIndexed      = 0xA0 // 101: index into the per-document dictionary
	fieldPrefix       = 0xC0 // 110: length, prefix count, then the tail bytes
	fieldPrefixSuffix = 0xE0 // 111: length, prefix count, suffix count, middle bytes
)

// maxFieldName bounds both a field-name length and the dictionary size.
// The length field tops out at 284 + 0xFFFF.
const maxFieldName = 65819

// Length-field thresholds: the low 5 bits hold 0..29 directly, 30 adds one
// extra byte (+29), 31 adds two little-endian bytes (+284).
const (
	fieldLenInlineMax = 29
	fieldLen1Bias     = 29
	fieldLen1Max      = 284
	fieldLen2Bias     = 284
)

// fieldNameWriter compresses object field names against a per-document
// dictionary and the previously written key. Encoder and decoder dictionaries
// stay index-identical because both apply the same transition rules in the
// same key order.
type fieldNameWriter struct {
	indexed map[string]int
	lastKey []byte
}

func (w *fieldNameWriter) reset() {
	w.indexed = nil
	w.lastKey = w.lastKey[:0]
}

func (w *fieldNameWriter) write(sink ByteSink, name string) error {
	if len(name) > maxFieldName {
		return fmt.Errorf("%w: field name of %d bytes", ErrInvalidArgument, len(name))
	}
	if w.indexed == nil {
		w.indexed = make(map[string]int)
	}

	if idx, ok := w.indexed[name]; ok {
		w.lastKey = append(w.lastKey[:0], name...)
		return writeFieldLength(sink, fieldIndexed, idx)
	}

	key := []byte(name)
	err := w.writeLiteral(sink, key)
	if err != nil {
		return err
	}
	if len(w.indexed) < maxFieldName {
		w.indexed[name] = len(w.indexed)
	}
	w.lastKey = key
	return nil
}

// writeLiteral picks among the full, prefix-shared, and prefix+suffix-shared
// forms. Sharing only pays off against keys longer than 4 bytes.
func (w *fieldNameWriter) writeLiteral(sink ByteSink, key []byte) error {
	if len(w.lastKey) > 4 {
		p := commonPrefix(w.lastKey, key)
		s := commonSuffix(w.lastKey, key, p)
		if s > 2 {
			if err := writeFieldLength(sink, fieldPrefixSuffix, len(key)-p-s); err != nil {
				return err
			}
			if err := sink.WriteByte(byte(p)); err != nil {
				return err
			}
			if err := sink.WriteByte(byte(s)); err != nil {
				return err
			}
			return sink.WriteSlice(key[p : len(key)-s])
		}
		if p > 2 {
			if err := writeFieldLength(sink, fieldPrefix, len(key)-p); err != nil {
				return err
			}
			if err := sink.WriteByte(byte(p)); err != nil {
				return err
			}
			return sink.WriteSlice(key[p:])
		}
	}
	if err := writeFieldLength(sink, fieldFull, len(key)); err != nil {
		return err
	}
	return sink.WriteSlice(key)
}

// commonPrefix returns the shared leading byte count of a and b, capped at 255.
func commonPrefix(a, b []byte) int {
	n := min(len(a), len(b))
	if n > 255 {
		n = 255
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}

// commonSuffix returns the shared trailing byte count of a and b, capped at
// 255. The suffix never reaches back into the first prefix bytes of the
// shorter key.
func commonSuffix(a, b []byte, prefix int) int {
	n := min(len(a), len(b)) - prefix
	if n > 255 {
		n = 255
	}
	i := 0
	for i < n && a[len(a)-1-i] == b[len(b)-1-i] {
		i++
	}
	return i
}

func writeFieldLength(sink ByteSink, form byte, v int) error {
	switch {
	case v <= fieldLenInlineMax:
		return sink.WriteByte(form | byte(v))
	case v <= fieldLen1Max:
		if err := sink.WriteByte(form | 30); err != nil {
			return err
		}
		return sink.WriteByte(byte(v - fieldLen1Bias))
	case v <= maxFieldName:
		if err := sink.WriteByte(form | 31); err != nil {
			return err
		}
		return sink.WriteUintLE(uint64(v-fieldLen2Bias), 2)
	default:
		return fmt.Errorf("%w: field length %d", ErrInvalidArgument, v)
	}
}

// fieldNameReader mirrors fieldNameWriter on the decode side.
type fieldNameReader struct {
	indexed []string
	lastKey []byte
}

func (r *fieldNameReader) reset() {
	r.indexed = r.indexed[:0]
	r.lastKey = r.lastKey[:0]
}

func (r *fieldNameReader) read(src ByteSource) (string, error) {
	head, err := src.ReadByte()
	if err != nil {
		return "", err
	}
	if head < fieldFull {
		return "", fmt.Errorf("%w: field-name tag 0x%02x", ErrMalformed, head)
	}
	n, err := readFieldLength(src, head)
	if err != nil {
		return "", err
	}

	form := head & 0xE0
	if form == fieldIndexed {
		if n >= len(r.indexed) {
			return "", fmt.Errorf("%w: field index %d of %d", ErrMalformed, n, len(r.indexed))
		}
		name := r.indexed[n]
		r.lastKey = append(r.lastKey[:0], name...)
		return name, nil
	}

	var name string
	switch form {
	case fieldFull:
		part, err := src.ReadSlice(n)
		if err != nil {
			return "", err
		}
		name = string(part)
	case fieldPrefix:
		p, err := src.ReadByte()
		if err != nil {
			return "", err
		}
		if int(p) > len(r.lastKey) {
			return "", fmt.Errorf("%w: shared prefix %d of %d", ErrMalformed, p, len(r.lastKey))
		}
		part, err := src.ReadSlice(n)
		if err != nil {
			return "", err
		}
		name = string(r.lastKey[:p]) + string(part)
	case fieldPrefixSuffix:
		p, err := src.ReadByte()
		if err != nil {
			return "", err
		}
		s, err := src.ReadByte()
		if err != nil {
			return "", err
		}
		if int(p)+int(s) > len(r.lastKey) {
			return "", fmt.Errorf("%w: shared prefix %d + suffix %d of %d", ErrMalformed, p, s, len(r.lastKey))
		}
		part, err := src.ReadSlice(n)
		if err != nil {
			return "", err
		}
		name = string(r.lastKey[:p]) + string(part) + string(r.lastKey[len(r.lastKey)-int(s):])
	}

	if len(name) > maxFieldName {
		return "", fmt.Errorf("%w: field name of %d bytes", ErrMalformed, len(name))
	}
	if len(r.indexed) < maxFieldName {
		r.indexed = append(r.indexed, name)
	}
	r.lastKey = append(r.lastKey[:0], name...)
	return name, nil
}

func readFieldLength(src ByteSource, head byte) (int, error) {
	n := int(head & 0x1F)
	switch n {
	case 30:
		b, err := src.ReadByte()
		if err != nil {
			return 0, err
		}
		return fieldLen1Bias + int(b), nil
	case 31:
		u, err := src.ReadUintLE(2)
		if err != nil {
			return 0, err
		}
		return fieldLen2Bias + int(u), nil
	default:
		return n, nil
	}
}
