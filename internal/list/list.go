// Package list is a specialized doubly linked list for use in the content cache.
//
// Nodes of every list created from the same [Arena] live in one slice
// and are addressed by [Handle] values instead of pointers,
// so a node can be relinked from one list into another
// without being reallocated.
package list

import "iter"

type (
	// Handle identifies a node within its [Arena].
	// Handles of removed nodes are recycled by later insertions.
	Handle int32
	node[Key comparable, Value any] struct {
		prev, next Handle
		key        Key
		value      Value
	}
	// Arena stores the nodes (including sentinels)
	// of all lists created from it.
	Arena[Key comparable, Value any] struct {
		nodes []node[Key, Value]
		free  []Handle
	}
	// A List is a sequence bounded by two sentinel nodes.
	// The sentinels never hold a valid key or value.
	// The node nearest the head is the most recently inserted or moved.
	List[Key comparable, Value any] struct {
		arena      *Arena[Key, Value]
		head, tail Handle
		length     int
	}
)

// None is never a valid handle.
const None Handle = -1

// NewArena creates an arena with room for sizeHint nodes
// before its backing storage needs to grow.
func NewArena[Key comparable, Value any](sizeHint int) *Arena[Key, Value] {
	return &Arena[Key, Value]{
		nodes: make([]node[Key, Value], 0, max(sizeHint, 0)),
	}
}

func (a *Arena[Key, Value]) alloc(key Key, value Value) Handle {
	if last := len(a.free) - 1; last >= 0 {
		h := a.free[last]
		a.free = a.free[:last]
		a.nodes[h] = node[Key, Value]{
			prev: None, next: None,
			key: key, value: value,
		}
		return h
	}
	a.nodes = append(a.nodes, node[Key, Value]{
		prev: None, next: None,
		key: key, value: value,
	})
	return Handle(len(a.nodes) - 1)
}

func (a *Arena[Key, Value]) release(h Handle) {
	a.nodes[h] = node[Key, Value]{prev: None, next: None}
	a.free = append(a.free, h)
}

// New creates an empty list whose nodes are stored in arena.
func New[Key comparable, Value any](arena *Arena[Key, Value]) *List[Key, Value] {
	var (
		zeroKey   Key
		zeroValue Value
		l         = &List[Key, Value]{
			arena: arena,
			head:  arena.alloc(zeroKey, zeroValue),
			tail:  arena.alloc(zeroKey, zeroValue),
		}
	)
	arena.nodes[l.head].next = l.tail
	arena.nodes[l.tail].prev = l.head
	return l
}

// link places h directly after the head sentinel.
func (l *List[Key, Value]) link(h Handle) {
	var (
		nodes = l.arena.nodes
		first = nodes[l.head].next
	)
	nodes[h].prev = l.head
	nodes[h].next = first
	nodes[l.head].next = h
	nodes[first].prev = h
	l.length++
}

func (l *List[Key, Value]) unlink(h Handle) {
	var (
		nodes      = l.arena.nodes
		prev, next = nodes[h].prev, nodes[h].next
	)
	nodes[prev].next = next
	nodes[next].prev = prev
	nodes[h].prev = None
	nodes[h].next = None
	l.length--
}

// InsertAtHead stores a new node for key and value
// at the head of the list and returns its handle.
func (l *List[Key, Value]) InsertAtHead(key Key, value Value) Handle {
	h := l.arena.alloc(key, value)
	l.link(h)
	return h
}

// Remove unlinks h from the list, releases its
// slot back to the arena, and returns its value.
// h must be a live member of l.
func (l *List[Key, Value]) Remove(h Handle) Value {
	value := l.arena.nodes[h].value
	l.unlink(h)
	l.arena.release(h)
	return value
}

// PopTail removes the node adjacent to the tail sentinel.
// It returns false if the list is empty.
func (l *List[Key, Value]) PopTail() (Key, Value, bool) {
	h, ok := l.Tail()
	if !ok {
		var (
			zeroKey   Key
			zeroValue Value
		)
		return zeroKey, zeroValue, false
	}
	key := l.arena.nodes[h].key
	return key, l.Remove(h), true
}

// MoveToHead relinks h from its current list (which may be l)
// to the head of l. Both lists must share the same arena.
// The node keeps its handle, key, and value.
func (l *List[Key, Value]) MoveToHead(h Handle, from *List[Key, Value]) {
	if from.arena != l.arena {
		panic("list: move between lists of different arenas")
	}
	from.unlink(h)
	l.link(h)
}

// Tail returns the node nearest the tail sentinel,
// i.e. the least recently inserted or moved node.
func (l *List[Key, Value]) Tail() (Handle, bool) {
	if l.length == 0 {
		return None, false
	}
	return l.arena.nodes[l.tail].prev, true
}

// Find scans the list from head to tail
// and returns the first node with key.
func (l *List[Key, Value]) Find(key Key) (Handle, bool) {
	nodes := l.arena.nodes
	for h := nodes[l.head].next; h != l.tail; h = nodes[h].next {
		if nodes[h].key == key {
			return h, true
		}
	}
	return None, false
}

// Key returns the key stored in h.
func (l *List[Key, Value]) Key(h Handle) Key {
	return l.arena.nodes[h].key
}

// Value returns a pointer to the value stored in h.
// The pointer is only valid until the next insertion
// into any list sharing l's arena.
func (l *List[Key, Value]) Value(h Handle) *Value {
	return &l.arena.nodes[h].value
}

// Len returns the number of live nodes in l.
// It does not count the sentinels.
func (l *List[Key, Value]) Len() int { return l.length }

// All returns an iterator over the live nodes
// from head to tail.
// The behavior is undefined if the list is modified during iteration.
func (l *List[Key, Value]) All() iter.Seq2[Handle, *Value] {
	return func(yield func(Handle, *Value) bool) {
		nodes := l.arena.nodes
		for h := nodes[l.head].next; h != l.tail; h = nodes[h].next {
			if !yield(h, &nodes[h].value) {
				return
			}
		}
	}
}

// Backward returns an iterator over the live nodes
// from tail to head.
// The behavior is undefined if the list is modified during iteration.
func (l *List[Key, Value]) Backward() iter.Seq2[Handle, *Value] {
	return func(yield func(Handle, *Value) bool) {
		nodes := l.arena.nodes
		for h := nodes[l.tail].prev; h != l.head; h = nodes[h].prev {
			if !yield(h, &nodes[h].value) {
				return
			}
		}
	}
}

// Keys returns an iterator over the keys of l
// from head to tail.
func (l *List[Key, Value]) Keys() iter.Seq[Key] {
	return func(yield func(Key) bool) {
		for h := range l.All() {
			if !yield(l.arena.nodes[h].key) {
				return
			}
		}
	}
}
