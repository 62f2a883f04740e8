package rdb

import (
	"strconv"
	"time"
)

// Command is one argv-style command group: an ordered sequence of raw
// byte-string arguments, per spec.md §4.6.
type Command [][]byte

// Clock reports the current wall-clock time as Unix milliseconds. Tests
// inject a fixed Clock to make "is this deadline in the future" decisions
// deterministic; production code uses SystemClock.
type Clock func() int64

// SystemClock is the production Clock, backed by time.Now.
var SystemClock Clock = func() int64 { return time.Now().UnixMilli() }

// Projector maps decoded Records into command groups, per spec.md §4.6.
// Grounded directly on the teacher's flow_writer_pipeline.go buildCommand,
// the clearest precedent in the pack for "decoded RDB record -> command
// argv", including its exact SET/HSET/RPUSH/SADD/ZADD mapping. Diverges
// from the teacher in two ways (see DESIGN.md): absolute-timestamp expiry
// is only emitted for future deadlines, and the SortedSetAsZipList
// member/score wire order is swapped explicitly before projection.
type Projector struct {
	decomp Decompressor
	clock  Clock
}

// NewProjector builds a Projector. A nil clock defaults to SystemClock.
func NewProjector(decomp Decompressor, clock Clock) *Projector {
	if clock == nil {
		clock = SystemClock
	}
	return &Projector{decomp: decomp, clock: clock}
}

// Project converts one decoded Record into its command group(s): exactly
// one value command, plus an expiry command when the key carries a
// still-future deadline.
func (pr *Projector) Project(rec Record) ([]Command, error) {
	value, err := pr.projectValue(rec.Key, rec.Data)
	if err != nil {
		return nil, err
	}
	cmds := []Command{value}
	if expire, ok := pr.projectExpire(rec.Key, rec.Expire); ok {
		cmds = append(cmds, expire)
	}
	return cmds, nil
}

func (pr *Projector) projectValue(key RedisString, data RedisData) (Command, error) {
	switch data.Kind {
	case DataString:
		return Command{[]byte("SET"), key.Bytes, data.String.Bytes}, nil

	case DataList:
		return append(Command{[]byte("LPUSH"), key.Bytes}, stringsToArgs(data.List.Items)...), nil

	case DataSet:
		return append(Command{[]byte("SADD"), key.Bytes}, stringsToArgs(data.Set.Items)...), nil

	case DataSortedSet:
		cmd := Command{[]byte("ZADD"), key.Bytes}
		for _, pair := range data.SortedSet.Items {
			cmd = append(cmd, pair.Second.Bytes, pair.First.Bytes) // score, member
		}
		return cmd, nil

	case DataHash:
		cmd := Command{[]byte("HSET"), key.Bytes}
		for _, pair := range data.Hash.Items {
			cmd = append(cmd, pair.First.Bytes, pair.Second.Bytes) // field, value
		}
		return cmd, nil

	case DataSetAsIntSet:
		set, err := decodeIntSet(data.IntSetPayload.Bytes)
		if err != nil {
			return nil, err
		}
		cmd := Command{[]byte("SADD"), key.Bytes}
		for _, v := range set.Values {
			cmd = append(cmd, []byte(strconv.FormatInt(v, 10)))
		}
		return cmd, nil

	case DataListAsZipList:
		zl, err := decodeZipList(data.ZipListPayload.Bytes)
		if err != nil {
			return nil, err
		}
		cmd := Command{[]byte("RPUSH"), key.Bytes}
		for _, e := range zl.Entries {
			cmd = append(cmd, e.Bytes)
		}
		return cmd, nil

	case DataHashAsZipList:
		zl, err := decodeZipList(data.ZipListPayload.Bytes)
		if err != nil {
			return nil, err
		}
		cmd := Command{[]byte("HSET"), key.Bytes}
		for _, e := range zl.Entries {
			cmd = append(cmd, e.Bytes) // already flat field, value, field, value...
		}
		return cmd, nil

	case DataSortedSetAsZipList:
		zl, err := decodeZipList(data.ZipListPayload.Bytes)
		if err != nil {
			return nil, err
		}
		if len(zl.Entries)%2 != 0 {
			return nil, errMalformed("zset ziplist: odd entry count")
		}
		cmd := Command{[]byte("ZADD"), key.Bytes}
		for i := 0; i < len(zl.Entries); i += 2 {
			member, score := zl.Entries[i], zl.Entries[i+1]
			if _, err := strconv.ParseFloat(string(score.Bytes), 64); err != nil {
				return nil, errMalformed("zset score")
			}
			cmd = append(cmd, score.Bytes, member.Bytes)
		}
		return cmd, nil

	default:
		return nil, errMalformedf("projector: unhandled record kind %d", data.Kind)
	}
}

// projectExpire emits PEXPIREAT/EXPIREAT only for deadlines strictly in
// the future relative to the Projector's clock, per spec.md §4.6 and the
// absolute-timestamp Open Question resolution in SPEC_FULL.md §7. Past
// deadlines emit no command; the value is retained (deletion policy is
// the consumer's choice).
func (pr *Projector) projectExpire(key RedisString, expire ExpireTime) (Command, bool) {
	now := pr.clock()
	switch expire.Kind {
	case ExpireMilliseconds:
		if expire.Ms <= now {
			return nil, false
		}
		return Command{[]byte("PEXPIREAT"), key.Bytes, []byte(strconv.FormatInt(expire.Ms, 10))}, true
	case ExpireSeconds:
		if int64(expire.Sec)*1000 <= now {
			return nil, false
		}
		return Command{[]byte("EXPIREAT"), key.Bytes, []byte(strconv.FormatInt(int64(expire.Sec), 10))}, true
	default:
		return nil, false
	}
}

func stringsToArgs(items []RedisString) [][]byte {
	args := make([][]byte, len(items))
	for i, s := range items {
		args[i] = s.Bytes
	}
	return args
}
