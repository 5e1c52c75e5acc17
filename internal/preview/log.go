package preview

import "sync"

// ringLog keeps the last capacity lines of studio output and fans new
// lines out to subscribers. Slow subscribers lose their oldest queued
// line rather than blocking the reader.
type ringLog struct {
	mu    sync.Mutex
	lines []string
	cap   int
	subs  map[chan string]struct{}
}

func newRingLog(capacity int) *ringLog {
	if capacity <= 0 {
		capacity = 500
	}
	return &ringLog{
		cap:  capacity,
		subs: make(map[chan string]struct{}),
	}
}

func (l *ringLog) append(line string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, line)
	if len(l.lines) > l.cap {
		l.lines = l.lines[len(l.lines)-l.cap:]
	}
	for ch := range l.subs {
		pushLine(ch, line)
	}
}

// pushLine delivers without ever blocking: a full buffer drops its
// oldest entry to make room.
func pushLine(ch chan string, line string) {
	select {
	case ch <- line:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- line:
	default:
	}
}

func (l *ringLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.lines))
	copy(out, l.lines)
	return out
}

// subscribe registers a live channel and returns the history captured
// up to the same instant, so no line is missed or duplicated between
// the two.
func (l *ringLog) subscribe(buffer int) (history []string, ch chan string, cancel func()) {
	if buffer <= 0 {
		buffer = 64
	}
	ch = make(chan string, buffer)
	l.mu.Lock()
	history = make([]string, len(l.lines))
	copy(history, l.lines)
	l.subs[ch] = struct{}{}
	l.mu.Unlock()

	var once sync.Once
	cancel = func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.subs, ch)
			l.mu.Unlock()
		})
	}
	return history, ch, cancel
}
