package rdb

import (
	"errors"
	"io"
)

type parserState int

const (
	stateHeader parserState = iota
	stateAux
	stateSelector
	stateRecord
	stateCrc
	stateEnd
)

const (
	rdbMagic       = "REDIS"
	opcodeAux      = 0xFA
	opcodeSelectDB = 0xFE
	opcodeEOF      = 0xFF
)

const initialReadWindow = 4096

// Parser is spec.md §4.5's stream state machine: Header → Selector →
// Record* → EOF → CRC, feeding bytes from a ByteSource into a growable
// buffer and advancing a cursor on each successful decode. Grounded on the
// teacher's ParseHeader/ParseNext (rdb_parser.go), generalized from a
// blocking bufio.Reader loop to the explicit buffer-and-cursor model
// spec.md §5 requires against a possibly-nonblocking ByteSource.
//
// Per SPEC_FULL.md §5, the Header state additionally tolerates zero or
// more AUX key/value pairs before the first Selector/Record byte,
// discarding them — real snapshot files carry these even though spec.md's
// bare state diagram omits them.
type Parser struct {
	source ByteSource
	decomp Decompressor

	buf    []byte
	cursor int
	state  parserState
	window int
}

// NewParser constructs a Parser reading from source, decompressing LZF
// strings with decomp.
func NewParser(source ByteSource, decomp Decompressor) *Parser {
	return &Parser{source: source, decomp: decomp, state: stateHeader, window: initialReadWindow}
}

// Done reports whether the machine has reached the terminal End state.
func (p *Parser) Done() bool { return p.state == stateEnd }

// Drain decodes as many entries as currently-buffered and freshly-read
// bytes allow. It returns when the machine reaches End, when the source
// reports "would block" (a zero-byte, no-error read, meaning "try again
// later"), or on a fatal Malformed/IO error — in the last case, along with
// any entries decoded before the fault, per spec.md §6/§7. A genuine EOF
// from the source mid-entity is a fatal truncation, since no more bytes
// will ever arrive to satisfy the pending MORE.
func (p *Parser) Drain() ([]RdbEntry, error) {
	var entries []RdbEntry
	for {
		entry, skip, err := p.step()
		if err == nil {
			if !skip {
				entries = append(entries, entry)
			}
			if p.state == stateEnd {
				return entries, nil
			}
			continue
		}
		if !IsMore(err) {
			return entries, err
		}
		grew, eof, rerr := p.refill()
		if rerr != nil {
			return entries, rerr
		}
		if !grew {
			if eof {
				return entries, errMalformed("truncated stream: unexpected EOF")
			}
			return entries, nil
		}
	}
}

// step attempts one decode cycle in the current state against the
// buffered-but-unconsumed bytes. skip reports an entity that consumed
// bytes (or merely changed state) but produces no RdbEntry in the output
// sequence — AUX pairs, and the state-only transitions out of Aux/
// Selector when their opcode byte doesn't match.
func (p *Parser) step() (entry RdbEntry, skip bool, err error) {
	src := p.buf[p.cursor:]
	switch p.state {
	case stateHeader:
		return p.decodeHeader(src)
	case stateAux:
		return p.decodeAux(src)
	case stateSelector:
		return p.decodeSelector(src)
	case stateRecord:
		return p.decodeRecordStep(src)
	case stateCrc:
		return p.decodeCrcStep(src)
	default:
		return RdbEntry{}, false, errMalformed("parser: step called in terminal state")
	}
}

func (p *Parser) advance(n int) { p.cursor += n }

// decodeHeader expects the 5-byte magic literal REDIS followed by 4 ASCII
// version digits.
func (p *Parser) decodeHeader(src []byte) (RdbEntry, bool, error) {
	if len(src) < 9 {
		return RdbEntry{}, false, errMore
	}
	if string(src[:5]) != rdbMagic {
		return RdbEntry{}, false, errMalformed("header: bad magic")
	}
	version := uint32(0)
	for _, b := range src[5:9] {
		if b < '0' || b > '9' {
			return RdbEntry{}, false, errMalformed("header: bad version digits")
		}
		version = version*10 + uint32(b-'0')
	}
	p.advance(9)
	p.state = stateAux
	return RdbEntry{Kind: EntryVersion, Version: version, width: 9}, false, nil
}

// decodeAux discards AUX key/value pairs (opcode 0xFA) until the next
// byte isn't one, at which point it hands off to Selector without
// consuming that byte.
func (p *Parser) decodeAux(src []byte) (RdbEntry, bool, error) {
	if len(src) < 1 {
		return RdbEntry{}, false, errMore
	}
	if src[0] != opcodeAux {
		p.state = stateSelector
		return RdbEntry{}, true, nil
	}
	cur := src[1:]
	width := 1

	key, err := decodeRedisString(cur, p.decomp)
	if err != nil {
		if isAlternative(err) {
			return RdbEntry{}, false, errMalformed("aux: invalid key")
		}
		return RdbEntry{}, false, err
	}
	cur = cur[key.Width():]
	width += key.Width()

	val, err := decodeRedisString(cur, p.decomp)
	if err != nil {
		if isAlternative(err) {
			return RdbEntry{}, false, errMalformed("aux: invalid value")
		}
		return RdbEntry{}, false, err
	}
	width += val.Width()

	p.advance(width)
	return RdbEntry{}, true, nil
}

// decodeSelector expects opcode 0xFE followed by a Length. Any other
// leading byte means there are no records at all; the selector opcode is
// the only way to stay in record-mode (spec.md §4.5).
func (p *Parser) decodeSelector(src []byte) (RdbEntry, bool, error) {
	if len(src) < 1 {
		return RdbEntry{}, false, errMore
	}
	if src[0] != opcodeSelectDB {
		p.state = stateCrc
		return RdbEntry{}, true, nil
	}
	l, err := decodeLength(src[1:])
	if err != nil {
		if isAlternative(err) {
			return RdbEntry{}, false, errMalformed("selector: invalid length")
		}
		return RdbEntry{}, false, err
	}
	width := 1 + l.Width()
	p.advance(width)
	p.state = stateRecord
	return RdbEntry{Kind: EntrySelector, Selector: l, width: width}, false, nil
}

// decodeRecordStep transitions to Crc on a leading 0xFF; otherwise it
// decodes one full Record (expiry + type + key + value) and remains in
// Record.
func (p *Parser) decodeRecordStep(src []byte) (RdbEntry, bool, error) {
	if len(src) < 1 {
		return RdbEntry{}, false, errMore
	}
	if src[0] == opcodeEOF {
		p.state = stateCrc
		return RdbEntry{}, true, nil
	}
	rec, err := decodeRecord(src, p.decomp)
	if err != nil {
		return RdbEntry{}, false, err
	}
	p.advance(rec.Width())
	return RdbEntry{Kind: EntryRecord, Record: rec, width: rec.Width()}, false, nil
}

// decodeCrcStep consumes the 0xFF terminator plus the trailing 8-byte
// checksum, stored verbatim — verification is not mandated (spec.md §6).
func (p *Parser) decodeCrcStep(src []byte) (RdbEntry, bool, error) {
	if len(src) < 1 {
		return RdbEntry{}, false, errMore
	}
	if src[0] != opcodeEOF {
		return RdbEntry{}, false, errMalformed("crc: expected 0xFF terminator")
	}
	if len(src) < 9 {
		return RdbEntry{}, false, errMore
	}
	crc := make([]byte, 8)
	copy(crc, src[1:9])
	p.advance(9)
	p.state = stateEnd
	return RdbEntry{Kind: EntryCrc, Crc: crc, width: 9}, false, nil
}

// refill compacts the buffer to its unconsumed high-water mark, reads one
// window's worth of fresh bytes from the source, and doubles the window
// when a read fills it completely (spec.md §5's geometric growth).
// grew is false either on a "would block" (zero bytes, nil error) read or
// on EOF with nothing new; eof is true once the source is permanently
// exhausted.
func (p *Parser) refill() (grew bool, eof bool, err error) {
	if p.cursor > 0 {
		copy(p.buf, p.buf[p.cursor:])
		p.buf = p.buf[:len(p.buf)-p.cursor]
		p.cursor = 0
	}

	dst := make([]byte, p.window)
	n, rerr := p.source.Read(dst)
	if n > 0 {
		p.buf = append(p.buf, dst[:n]...)
	}
	if rerr != nil {
		if errors.Is(rerr, io.EOF) {
			return n > 0, true, nil
		}
		return false, false, rerr
	}
	if n == 0 {
		return false, false, nil
	}
	if n == len(dst) {
		p.window *= 2
	}
	return true, false, nil
}
