package session

import (
	"github.com/ashureev/bloomify/internal/domain"
)

// Window is a fixed-size circular buffer of conversation turns.
// When full, appending overwrites the oldest turn. Not safe for concurrent
// use; MemoryStore guards it.
type Window struct {
	buf  []domain.Turn
	size int
	head int // write position
	tail int // read position
	full bool
}

// NewWindow creates a window holding at most size turns. Odd sizes are
// rounded down so the window always starts on a user turn.
func NewWindow(size int) *Window {
	size = evenCapacity(size)
	return &Window{
		buf:  make([]domain.Turn, size),
		size: size,
	}
}

func evenCapacity(size int) int {
	if size < 2 {
		return 2
	}
	return size - size%2
}

// Append writes turns, evicting the oldest once capacity is reached.
func (w *Window) Append(turns ...domain.Turn) {
	for _, t := range turns {
		if w.full {
			w.tail = (w.tail + 1) % w.size
		}
		w.buf[w.head] = t
		w.head = (w.head + 1) % w.size
		if w.head == w.tail {
			w.full = true
		}
	}
}

// Turns returns the buffered turns oldest first.
func (w *Window) Turns() []domain.Turn {
	n := w.Len()
	out := make([]domain.Turn, n)
	for i := 0; i < n; i++ {
		out[i] = w.buf[(w.tail+i)%w.size]
	}
	return out
}

// Len returns the number of buffered turns.
func (w *Window) Len() int {
	switch {
	case w.full:
		return w.size
	case w.head >= w.tail:
		return w.head - w.tail
	default:
		return (w.size - w.tail) + w.head
	}
}

// Reset clears the window.
func (w *Window) Reset() {
	w.head = 0
	w.tail = 0
	w.full = false
	clear(w.buf)
}

// Capacity returns the maximum number of turns held.
func (w *Window) Capacity() int {
	return w.size
}
