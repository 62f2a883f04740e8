package rdb

// Widther is implemented by every decoded item a Container can hold, so
// the container can account its own total wire width without re-deriving
// it from the decode function's return.
type Widther interface {
	Width() int
}

// Container is the generic, length-prefixed homogeneous sequence spec.md
// §9 calls out as implementable "via generics, interface/trait dispatch,
// or by duplicating the container decoder per item kind." Go generics are
// used here instead of the teacher's per-type duplicated loops
// (parseHashStandard/parseSetStandard/parseZSetStandard all hand-roll the
// same length-prefix-then-loop shape).
type Container[T Widther] struct {
	Items []T
	width int
}

// Width reports the total wire bytes consumed: the count prefix plus every
// item's own width.
func (c Container[T]) Width() int { return c.width }

// decodeItem decodes a single homogeneous item from src, returning its
// value and the number of bytes consumed.
type decodeItem[T Widther] func(src []byte) (T, error)

// decodeContainer reads a Length count prefix, then that many items via
// decode, per spec.md §4.3's generic container shape (LinkedList, Set,
// Hash key/value pairs, SortedSet member/score pairs all instantiate this
// with a different item decoder; for pairs the count prefix is the number
// of pairs, each decoded as one item).
func decodeContainer[T Widther](src []byte, decode decodeItem[T]) (Container[T], error) {
	countLen, err := decodeLength(src)
	if err != nil {
		if isAlternative(err) {
			return Container[T]{}, errMalformed("container: invalid count prefix")
		}
		return Container[T]{}, err
	}
	cur := src[countLen.Width():]
	width := countLen.Width()

	items := make([]T, 0, countLen.Value)
	for i := uint64(0); i < countLen.Value; i++ {
		item, err := decode(cur)
		if err != nil {
			return Container[T]{}, err
		}
		items = append(items, item)
		cur = cur[item.Width():]
		width += item.Width()
	}
	return Container[T]{Items: items, width: width}, nil
}

// Pair is a 2-tuple item used to instantiate Container for Hash
// (field, value) and SortedSet (member, score) records.
type Pair[A, B Widther] struct {
	First  A
	Second B
}

// Width reports the combined width of both elements.
func (p Pair[A, B]) Width() int { return p.First.Width() + p.Second.Width() }

// decodePair builds a decodeItem[Pair[A,B]] from two single-item decoders,
// letting Hash and SortedSet reuse decodeContainer unchanged.
func decodePair[A, B Widther](decodeFirst decodeItem[A], decodeSecond decodeItem[B]) decodeItem[Pair[A, B]] {
	return func(src []byte) (Pair[A, B], error) {
		a, err := decodeFirst(src)
		if err != nil {
			return Pair[A, B]{}, err
		}
		b, err := decodeSecond(src[a.Width():])
		if err != nil {
			return Pair[A, B]{}, err
		}
		return Pair[A, B]{First: a, Second: b}, nil
	}
}
