package rdb

// ExpireTimeKind tags which of the three ExpireTime alternatives decoded.
type ExpireTimeKind int

const (
	ExpireNone ExpireTimeKind = iota
	ExpireMilliseconds
	ExpireSeconds
)

const (
	opcodeExpireMs = 0xFC
	opcodeExpire   = 0xFD
)

// ExpireTime is spec.md §3's tagged variant {Milliseconds(i64), Seconds(i32),
// None}. Values are absolute timestamps (per the Open Question resolution
// in SPEC_FULL.md §7), never relative durations.
type ExpireTime struct {
	Kind ExpireTimeKind
	Ms   int64
	Sec  int32
	width int
}

// Width reports 9 for Milliseconds, 5 for Seconds, 0 for None (no opcode
// byte is consumed when the expiry is absent — the caller only peeked it).
func (e ExpireTime) Width() int { return e.width }

// decodeExpireTime peeks the next byte: 0xFC selects an 8-byte LE
// millisecond timestamp, 0xFD a 4-byte LE second timestamp, anything else
// means no expiry prefix is present (zero bytes consumed).
func decodeExpireTime(src []byte) (ExpireTime, error) {
	if len(src) < 1 {
		return ExpireTime{}, errMore
	}
	switch src[0] {
	case opcodeExpireMs:
		ms, n, err := readI64LE(src[1:])
		if err != nil {
			return ExpireTime{}, err
		}
		return ExpireTime{Kind: ExpireMilliseconds, Ms: ms, width: 1 + n}, nil
	case opcodeExpire:
		sec, n, err := readI32LE(src[1:])
		if err != nil {
			return ExpireTime{}, err
		}
		return ExpireTime{Kind: ExpireSeconds, Sec: sec, width: 1 + n}, nil
	default:
		return ExpireTime{Kind: ExpireNone, width: 0}, nil
	}
}

// RedisDataKind tags which of the nine typed values a Record carries.
type RedisDataKind int

const (
	DataString RedisDataKind = iota
	DataList
	DataSet
	DataSortedSet
	DataHash
	DataListAsZipList
	DataSortedSetAsZipList
	DataHashAsZipList
	DataSetAsIntSet
)

// StringPair is the item shape for Hash containers (field, value).
type StringPair = Pair[RedisString, RedisString]

// RedisData is spec.md §3's tagged variant of the nine typed values. Each
// variant owns its payload in the field matching its Kind; for the four
// ziplist/intset-backed kinds, decoding the nested structure is deferred
// to the projector (spec.md §4.4) — ZipListPayload holds the still-packed
// outer RedisString.
type RedisData struct {
	Kind RedisDataKind

	String         RedisString
	List           Container[RedisString]
	Set            Container[RedisString]
	SortedSet      Container[StringPair]
	Hash           Container[StringPair]
	ZipListPayload RedisString // ListAsZipList, SortedSetAsZipList, HashAsZipList
	IntSetPayload  RedisString // SetAsIntSet

	width int
}

// Width reports the wire bytes consumed by whichever variant is populated.
func (d RedisData) Width() int { return d.width }

const (
	rdbTypeString    = 0
	rdbTypeList      = 1
	rdbTypeSet       = 2
	rdbTypeSortedSet = 3
	rdbTypeHash      = 4
	rdbTypeZipmap    = 9 // unsupported, fatal
	rdbTypeListZip   = 10
	rdbTypeSetIntSet = 11
	rdbTypeZSetZip   = 12
	rdbTypeHashZip   = 13
)

// decodeRedisStringItem adapts decodeRedisString to the decodeItem[T]
// shape Container needs, closing over the Decompressor.
func decodeRedisStringItem(decomp Decompressor) decodeItem[RedisString] {
	return func(src []byte) (RedisString, error) {
		return decodeRedisString(src, decomp)
	}
}

// decodeRedisData dispatches on the type byte per spec.md §4.4's table.
// Type 9 (legacy zipmap) is always Malformed, never attempted.
func decodeRedisData(typeByte byte, src []byte, decomp Decompressor) (RedisData, error) {
	item := decodeRedisStringItem(decomp)
	switch typeByte {
	case rdbTypeString:
		s, err := decodeRedisString(src, decomp)
		if err != nil {
			return RedisData{}, err
		}
		return RedisData{Kind: DataString, String: s, width: s.Width()}, nil

	case rdbTypeList:
		c, err := decodeContainer(src, item)
		if err != nil {
			return RedisData{}, err
		}
		return RedisData{Kind: DataList, List: c, width: c.Width()}, nil

	case rdbTypeSet:
		c, err := decodeContainer(src, item)
		if err != nil {
			return RedisData{}, err
		}
		return RedisData{Kind: DataSet, Set: c, width: c.Width()}, nil

	case rdbTypeSortedSet:
		c, err := decodeContainer(src, decodePair(item, item))
		if err != nil {
			return RedisData{}, err
		}
		return RedisData{Kind: DataSortedSet, SortedSet: c, width: c.Width()}, nil

	case rdbTypeHash:
		c, err := decodeContainer(src, decodePair(item, item))
		if err != nil {
			return RedisData{}, err
		}
		return RedisData{Kind: DataHash, Hash: c, width: c.Width()}, nil

	case rdbTypeZipmap:
		return RedisData{}, errMalformed("legacy zipmap (type 9) unsupported")

	case rdbTypeListZip:
		s, err := decodeRedisString(src, decomp)
		if err != nil {
			return RedisData{}, err
		}
		return RedisData{Kind: DataListAsZipList, ZipListPayload: s, width: s.Width()}, nil

	case rdbTypeSetIntSet:
		s, err := decodeRedisString(src, decomp)
		if err != nil {
			return RedisData{}, err
		}
		return RedisData{Kind: DataSetAsIntSet, IntSetPayload: s, width: s.Width()}, nil

	case rdbTypeZSetZip:
		s, err := decodeRedisString(src, decomp)
		if err != nil {
			return RedisData{}, err
		}
		return RedisData{Kind: DataSortedSetAsZipList, ZipListPayload: s, width: s.Width()}, nil

	case rdbTypeHashZip:
		s, err := decodeRedisString(src, decomp)
		if err != nil {
			return RedisData{}, err
		}
		return RedisData{Kind: DataHashAsZipList, ZipListPayload: s, width: s.Width()}, nil

	default:
		return RedisData{}, errMalformedf("unsupported record type byte %d", typeByte)
	}
}

// Record is spec.md §4.4's envelope: an optional expiry, the type byte,
// the key, and the per-type value.
type Record struct {
	Expire ExpireTime
	Type   byte
	Key    RedisString
	Data   RedisData
	width  int
}

// Width reports the total wire bytes this record occupied.
func (r Record) Width() int { return r.width }

// decodeRecord implements `Record = expire:ExpireTime|None ++ type:u8 ++
// key:RedisString ++ value:<per type>`.
func decodeRecord(src []byte, decomp Decompressor) (Record, error) {
	expire, err := decodeExpireTime(src)
	if err != nil {
		return Record{}, err
	}
	cur := src[expire.Width():]
	width := expire.Width()

	if len(cur) < 1 {
		return Record{}, errMore
	}
	typeByte := cur[0]
	cur = cur[1:]
	width++

	key, err := decodeRedisString(cur, decomp)
	if err != nil {
		if isAlternative(err) {
			return Record{}, errMalformed("record: invalid key")
		}
		return Record{}, err
	}
	cur = cur[key.Width():]
	width += key.Width()

	data, err := decodeRedisData(typeByte, cur, decomp)
	if err != nil {
		return Record{}, err
	}
	width += data.Width()

	return Record{Expire: expire, Type: typeByte, Key: key, Data: data, width: width}, nil
}

// RdbEntryKind tags which of the four stream-level productions an
// RdbEntry carries.
type RdbEntryKind int

const (
	EntryVersion RdbEntryKind = iota
	EntrySelector
	EntryRecord
	EntryCrc
)

// RdbEntry is spec.md §3's tagged variant {Version(u32), Selector(length),
// Record{...}, Crc(bytes)} emitted by the stream state machine.
type RdbEntry struct {
	Kind     RdbEntryKind
	Version  uint32
	Selector Length
	Record   Record
	Crc      []byte
	width    int
}

// Width reports the wire bytes this entry occupied.
func (e RdbEntry) Width() int { return e.width }
