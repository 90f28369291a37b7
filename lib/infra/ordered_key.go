package infra

import (
	"math"

	"github.com/samber/lo"
)

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
type Float interface {
	~float32 | ~float64
}

// OrderedKey
// byte => ~uint8
type OrderedKey interface {
	Integer | Float | ~string
}

// Comparable is implemented by the key types which carry their own
// natural order.
// k.CompareTo(other) follows the same sign rules as OrderedKeyComparator.
type Comparable[K any] interface {
	CompareTo(other K) int64
}

// OrderedKeyComparator
// Assume i is the new key.
//  1. i == j (i-j == 0, return 0)
//  2. i > j (i-j > 0, return 1), turn to right part.
//  3. i < j (i-j < 0, return -1), turn to left part.
type OrderedKeyComparator[K any] func(i, j K) int64

func NaturalOrder[K OrderedKey]() OrderedKeyComparator[K] {
	return func(i, j K) int64 {
		if i == j {
			return 0
		} else if i < j {
			return -1
		}
		return 1
	}
}

func ComparableOrder[K Comparable[K]]() OrderedKeyComparator[K] {
	return func(i, j K) int64 {
		return i.CompareTo(j)
	}
}

// Reverse flips the comparator, the smallest key becomes the greatest one.
func Reverse[K any](cmp OrderedKeyComparator[K]) OrderedKeyComparator[K] {
	if cmp == nil {
		return nil
	}
	return func(i, j K) int64 {
		return cmp(j, i)
	}
}

// IsValidOrderedKey reports whether k is able to take part in the
// natural order. NaN is neither less, equal nor greater than any
// key, so it would break the total order.
func IsValidOrderedKey[K OrderedKey](k K) bool {
	switch v := any(k).(type) {
	case float64:
		return !math.IsNaN(v)
	case float32:
		return !math.IsNaN(float64(v))
	default:
	}
	// Named float types. k != k only holds for NaN.
	return k == k
}

// IsValidComparableKey rejects the nil keys (nil interface or typed nil
// pointer), calling CompareTo on them is a nil dereference.
func IsValidComparableKey[K Comparable[K]](k K) bool {
	return !lo.IsNil(k)
}
