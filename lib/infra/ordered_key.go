package infra

type Signed interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

// Unsigned is a constraint that permits any unsigned integer type.
type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Integer is a constraint that permits any integer type.
type Integer interface {
	Signed | Unsigned
}

// Float is a constraint that permits any floating-point type.
// NaN has no position in the order and must not be used as a key.
type Float interface {
	~float32 | ~float64
}

// OrderedKey
// byte => ~uint8
type OrderedKey interface {
	Integer | Float | ~string
}

// KeyComparator
// Assume i is the new key.
//  1. i == j (return 0)
//  2. i > j (return 1), turn to right part.
//  3. i < j (return -1), turn to left part.
type KeyComparator[K any] func(i, j K) int64

// OrderedKeyComparator is a KeyComparator restricted to the native ordered types.
type OrderedKeyComparator[K OrderedKey] func(i, j K) int64

func OrderedCompare[K OrderedKey](i, j K) int64 {
	if i == j {
		return 0
	} else if i < j {
		return -1
	}
	return 1
}

// LessComparator derives a three-way comparator from a strict less-than.
// Two keys are equal if neither is less than the other.
func LessComparator[K any](less func(i, j K) bool) KeyComparator[K] {
	return func(i, j K) int64 {
		if less(i, j) {
			return -1
		} else if less(j, i) {
			return 1
		}
		return 0
	}
}

func ReverseComparator[K any](cmp KeyComparator[K]) KeyComparator[K] {
	return func(i, j K) int64 {
		return cmp(j, i)
	}
}
