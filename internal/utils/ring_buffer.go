package utils

import "sync"

// RingBuffer is a fixed-size buffer of items of type T. Pushing into a full
// buffer overwrites the oldest item. Items are kept in arrival order, from
// the oldest to the newest. All methods are safe for concurrent use.
//
//	rb := NewRingBuffer[int](3)
//	rb.Push(1)
//	rb.Push(2)
//	rb.Push(3)
//	rb.Push(4) // 1 is evicted
//	fmt.Println(rb.ToSlice()) // [2 3 4]
type RingBuffer[T any] struct {
	data  []T
	size  int
	count int
	head  int // index of the oldest item
	tail  int // index of the next write
	mu    sync.RWMutex
}

// NewRingBuffer creates a buffer of the given size. It panics if size is not
// positive.
func NewRingBuffer[T any](size int) *RingBuffer[T] {
	if size <= 0 {
		panic("ring buffer size must be positive")
	}
	return &RingBuffer[T]{
		data: make([]T, size),
		size: size,
	}
}

// Push appends item. When the buffer is full the oldest item is overwritten
// and returned with evicted set to true.
func (rb *RingBuffer[T]) Push(item T) (old T, evicted bool) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	if rb.count == rb.size {
		old, evicted = rb.data[rb.head], true
		rb.head = (rb.head + 1) % rb.size
	} else {
		rb.count++
	}

	rb.data[rb.tail] = item
	rb.tail = (rb.tail + 1) % rb.size

	return old, evicted
}

// Len returns the number of items, always within [0, Cap()].
func (rb *RingBuffer[T]) Len() int {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	return rb.count
}

// Cap returns the buffer capacity.
func (rb *RingBuffer[T]) Cap() int {
	return rb.size
}

// At returns the i-th item, where 0 is the oldest and Len()-1 the newest.
// It panics if i is out of range.
func (rb *RingBuffer[T]) At(i int) T {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	return rb.at(i)
}

func (rb *RingBuffer[T]) at(i int) T {
	if i < 0 || i >= rb.count {
		panic("index out of range")
	}
	return rb.data[(rb.head+i)%rb.size]
}

// ToSlice returns a copy of the items from the oldest to the newest.
func (rb *RingBuffer[T]) ToSlice() []T {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	result := make([]T, rb.count)
	for i := range rb.count {
		result[i] = rb.at(i)
	}
	return result
}
