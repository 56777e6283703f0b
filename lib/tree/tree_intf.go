package tree

import (
	"iter"
	"strconv"
)

type RBColor uint8

const (
	Black RBColor = iota
	Red
)

func (c RBColor) String() string {
	switch c {
	case Black:
		return "Black"
	case Red:
		return "Red"
	default:
	}
	return "RBColor(" + strconv.Itoa(int(c)) + ")"
}

type RBDirection int8

const (
	Left RBDirection = -1 + iota
	Root
	Right
)

func (d RBDirection) String() string {
	switch d {
	case Left:
		return "Left"
	case Root:
		return "Root"
	case Right:
		return "Right"
	default:
	}
	return "RBDirection(" + strconv.Itoa(int(d)) + ")"
}

// opposite turns Left into Right and vice versa. Root stays Root.
func (d RBDirection) opposite() RBDirection {
	return -d
}

type RBNode[K any] interface {
	Key() K
	Color() RBColor
	Left() RBNode[K]
	Right() RBNode[K]
	Parent() RBNode[K]
}

// RBTree is an insert-only ordered set. It is not safe for concurrent use,
// callers have to serialize every access, reads included.
type RBTree[K any] interface {
	Len() int64
	IsEmpty() bool
	Root() RBNode[K]
	// Insert returns false and leaves the tree untouched if key is present.
	Insert(key K) bool
	Contains(key K) bool
	Min() (K, bool)
	Max() (K, bool)
	Height() int
	Foreach(action func(idx int64, color RBColor, key K) bool)
	All() iter.Seq[K]
	Keys() []K
	// Clear releases every node without recursion.
	Clear()
}

type RBTreeEvent uint8

const (
	EventInsert RBTreeEvent = iota
	EventDuplicate
	EventRecolor
	EventRotateLeft
	EventRotateRight
	EventClear
)

func (e RBTreeEvent) String() string {
	switch e {
	case EventInsert:
		return "insert"
	case EventDuplicate:
		return "duplicate"
	case EventRecolor:
		return "recolor"
	case EventRotateLeft:
		return "rotate-left"
	case EventRotateRight:
		return "rotate-right"
	case EventClear:
		return "clear"
	default:
	}
	return "unknown"
}

// RBTreeObserver receives tree events synchronously.
// n is the number of released nodes for EventClear, otherwise 1.
type RBTreeObserver interface {
	Observe(event RBTreeEvent, n int64)
}
