package codec

// Tag bytes with a fixed single-byte encoding.
const (
	tagNull       = 0x00
	tagEnd        = 0x01 // only valid inside an EOF-terminated container
	tagFalse      = 0x02
	tagTrue       = 0x03
	tagFloat16    = 0x04 // reserved, never produced
	tagFloat32    = 0x05
	tagFloat64    = 0x06
	tagBigDecimal = 0x07
	tagEnumConfig = 0x08
	tagEnumRef8   = 0x09
	tagEnumRef16  = 0x0A
)

// Tag group masks. The low bits carry the inline parameter.
const (
	maskArray  = 0x20 // 0010_xxxx
	maskObject = 0x30 // 0011_xxxx
	maskIntPos = 0x40 // 010x_xxxx
	maskIntNeg = 0x60 // 011x_xxxx
	maskBytes  = 0x80 // 10xx_xxxx
	maskString = 0xC0 // 11xx_xxxx
)

const (
	tagArrayEOF  = maskArray | 0x0F  // 0x2F
	tagObjectEOF = maskObject | 0x0F // 0x3F
)

// Inline capacities per tag group.
const (
	smallIntPosMax  = 24 // values 1..24 inline into the tag
	smallIntNegMax  = 23 // values 0..-23 inline into the tag
	inlineBlobMax   = 59 // bytes/string lengths 0..59 inline into the tag
	inlineCountMax  = 10 // array/object counts 0..10 inline into the tag
	wideIntPosBias  = 25 // wide positive payload encodes value-25
	wideIntNegBias  = 24 // wide negative payload encodes (-value)-24
	wideBlobBias    = 59 // wide bytes/string payload encodes length-59
	wideCountBias   = 10 // wide array/object payload encodes count-10
)

// tagKind classifies what follows a tag byte.
type tagKind uint8

const (
	kindInvalid tagKind = iota
	kindNull
	kindEnd
	kindFalse
	kindTrue
	kindFloat32
	kindFloat64
	kindBigDecimal
	kindEnumConfig
	kindEnumRef8
	kindEnumRef16
	kindReserved
	kindIntInline   // imm is the value
	kindIntPosWide  // imm is the payload width
	kindIntNegWide  // imm is the payload width
	kindBytesInline // imm is the length
	kindBytesWide   // imm is the length-field width
	kindStringInline
	kindStringWide
	kindArraySized // imm is the count
	kindArrayWide  // imm is the count-field width
	kindArrayEOF
	kindObjectSized
	kindObjectWide
	kindObjectEOF
)

// tagInfo is one entry of the decoder dispatch table: the tag's kind plus
// the immediate extracted from its low bits.
type tagInfo struct {
	kind tagKind
	imm  int
}

// tagTable is the 256-entry dispatch table, indexed by the first byte of a
// value. Built once; the decoder never re-derives classification per call.
var tagTable = buildTagTable()

func buildTagTable() [256]tagInfo {
	var t [256]tagInfo

	t[tagNull] = tagInfo{kind: kindNull}
	t[tagEnd] = tagInfo{kind: kindEnd}
	t[tagFalse] = tagInfo{kind: kindFalse}
	t[tagTrue] = tagInfo{kind: kindTrue}
	t[tagFloat16] = tagInfo{kind: kindReserved}
	t[tagFloat32] = tagInfo{kind: kindFloat32}
	t[tagFloat64] = tagInfo{kind: kindFloat64}
	t[tagBigDecimal] = tagInfo{kind: kindBigDecimal}
	t[tagEnumConfig] = tagInfo{kind: kindEnumConfig}
	t[tagEnumRef8] = tagInfo{kind: kindEnumRef8}
	t[tagEnumRef16] = tagInfo{kind: kindEnumRef16}
	for b := 0x0B; b <= 0x0F; b++ {
		t[b] = tagInfo{kind: kindReserved}
	}

	for n := 0; n <= inlineCountMax; n++ {
		t[maskArray|n] = tagInfo{kind: kindArraySized, imm: n}
		t[maskObject|n] = tagInfo{kind: kindObjectSized, imm: n}
	}
	for n := 11; n <= 14; n++ {
		t[maskArray|n] = tagInfo{kind: kindArrayWide, imm: n - wideCountBias}
		t[maskObject|n] = tagInfo{kind: kindObjectWide, imm: n - wideCountBias}
	}
	t[tagArrayEOF] = tagInfo{kind: kindArrayEOF}
	t[tagObjectEOF] = tagInfo{kind: kindObjectEOF}

	for v := 1; v <= smallIntPosMax; v++ {
		t[maskIntPos+v-1] = tagInfo{kind: kindIntInline, imm: v}
	}
	for w := 1; w <= 8; w++ {
		t[0x58+w-1] = tagInfo{kind: kindIntPosWide, imm: w}
	}
	for v := 0; v <= smallIntNegMax; v++ {
		t[maskIntNeg+v] = tagInfo{kind: kindIntInline, imm: -v}
	}
	for w := 1; w <= 8; w++ {
		t[0x78+w-1] = tagInfo{kind: kindIntNegWide, imm: w}
	}

	for n := 0; n <= inlineBlobMax; n++ {
		t[maskBytes|n] = tagInfo{kind: kindBytesInline, imm: n}
		t[maskString|n] = tagInfo{kind: kindStringInline, imm: n}
	}
	for n := 60; n <= 63; n++ {
		t[maskBytes|n] = tagInfo{kind: kindBytesWide, imm: n - wideBlobBias}
		t[maskString|n] = tagInfo{kind: kindStringWide, imm: n - wideBlobBias}
	}

	return t
}

// uintWidth returns the minimal number of little-endian bytes needed for v,
// always at least 1.
func uintWidth(v uint64) int {
	w := 1
	for v > 0xFF {
		v >>= 8
		w++
	}
	return w
}
