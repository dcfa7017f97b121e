package selector

import "time"

// entry is a stored derivation result plus bookkeeping.
type entry[S comparable, T any] struct {
	key          string
	params       []any
	result       T
	state        S
	createdAt    time.Time
	lastAccessed time.Time
	accessCount  int64
	prev         *entry[S, T]
	next         *entry[S, T]
}

func (e *entry[S, T]) touch(state S, at time.Time) {
	e.state = state
	e.lastAccessed = at
	e.accessCount++
}

// lruList orders entries from most (head) to least (tail) recently accessed.
type lruList[S comparable, T any] struct {
	head *entry[S, T]
	tail *entry[S, T]
	len  int
}

// pushFront adds an entry to the front of the list.
func (l *lruList[S, T]) pushFront(e *entry[S, T]) {
	e.prev = nil
	e.next = l.head
	if l.head != nil {
		l.head.prev = e
	}
	l.head = e
	if l.tail == nil {
		l.tail = e
	}
	l.len++
}

// remove unlinks an entry.
func (l *lruList[S, T]) remove(e *entry[S, T]) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		l.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		l.tail = e.prev
	}
	e.prev = nil
	e.next = nil
	l.len--
}

// moveToFront marks an entry as most recently used.
func (l *lruList[S, T]) moveToFront(e *entry[S, T]) {
	if e == l.head {
		return
	}
	l.remove(e)
	l.pushFront(e)
}

// popBack removes and returns the least recently used entry.
func (l *lruList[S, T]) popBack() *entry[S, T] {
	e := l.tail
	if e != nil {
		l.remove(e)
	}
	return e
}

func (l *lruList[S, T]) reset() {
	l.head = nil
	l.tail = nil
	l.len = 0
}
