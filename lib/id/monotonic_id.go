package id

import (
	"errors"
	randv2 "math/rand/v2"
	"strconv"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/cpu"
)

const cacheLinePadSize = unsafe.Sizeof(cpu.CacheLinePad{})

// monotonicNonZeroID is an ID generator.
// Only increase, if it overflows, it will be reset to 1.
// Occupy a whole cache line (flag+tag+data), and a cache line data is 64 bytes.
type monotonicNonZeroID struct {
	_   [cacheLinePadSize - unsafe.Sizeof(*new(uint64))]byte // padding for CPU cache line, avoid false sharing
	val uint64
	_   [cacheLinePadSize - unsafe.Sizeof(*new(uint64))]byte // padding for CPU cache line, avoid false sharing
}

func (id *monotonicNonZeroID) next(step uint64) uint64 {
	var v uint64
	if v = atomic.AddUint64(&id.val, step); v == 0 {
		v = atomic.AddUint64(&id.val, 1)
	}
	return v
}

func newGenerator(number Gen) Generator {
	return &defaultID{
		number: number,
		str: func() string {
			return strconv.FormatUint(number(), 10)
		},
	}
}

func MonotonicNonZeroID() (Generator, error) {
	src := &monotonicNonZeroID{val: 0}
	return newGenerator(func() uint64 {
		return src.next(1)
	}), nil
}

// MonotonicRandomStepID is still strictly increasing, but every number
// skips a random gap in [1, maxStep]. It makes unique keys that are not
// dense, the red-black tree tests shuffle them as random input.
func MonotonicRandomStepID(maxStep uint32) (Generator, error) {
	if maxStep == 0 {
		return nil, errors.New("[id] random step must be positive")
	}
	src := &monotonicNonZeroID{val: 0}
	return newGenerator(func() uint64 {
		return src.next(uint64(randv2.Uint32N(maxStep)) + 1)
	}), nil
}
