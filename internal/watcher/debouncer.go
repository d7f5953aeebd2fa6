package watcher

import (
	"sync"
	"time"
)

// Handler consumes one coalesced event after its quiescence window.
type Handler func(PendingEvent)

// Debouncer collects the raw events of one watched folder and coalesces
// bursts into a single flush per burst. Events for a path already queued
// update that entry in place rather than queueing twice; the drained batch
// is processed in enqueue order, outside the lock, so the next burst can
// queue while the current one is still being handled.
type Debouncer struct {
	window  time.Duration
	handler Handler

	mu      sync.Mutex
	queue   []PendingEvent
	queued  map[string]int
	timer   *time.Timer
	armed   bool
	stopped bool
	wg      sync.WaitGroup
}

func NewDebouncer(window time.Duration, handler Handler) *Debouncer {
	return &Debouncer{
		window:  window,
		handler: handler,
		queued:  make(map[string]int),
	}
}

// Enqueue records a raw event. The first event of a burst arms exactly one
// flush task; further events ride the same task.
func (d *Debouncer) Enqueue(path string, kind EventKind, category string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	if i, ok := d.queued[path]; ok {
		d.queue[i].Kind = kind
		return
	}

	d.queued[path] = len(d.queue)
	d.queue = append(d.queue, PendingEvent{
		Path:     path,
		Kind:     kind,
		QueuedAt: time.Now(),
		Category: category,
	})

	if !d.armed {
		d.armed = true
		d.wg.Add(1)
		d.timer = time.AfterFunc(d.window, d.flush)
	}
}

func (d *Debouncer) flush() {
	defer d.wg.Done()

	d.mu.Lock()
	batch := d.queue
	d.queue = nil
	d.queued = make(map[string]int)
	d.armed = false
	d.timer = nil
	d.mu.Unlock()

	d.process(batch)
}

func (d *Debouncer) process(batch []PendingEvent) {
	for _, event := range batch {
		d.dispatch(event)
	}
}

// dispatch isolates the handler: one item blowing up must not take the rest
// of the drained batch with it.
func (d *Debouncer) dispatch(event PendingEvent) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("event handler panic", "path", event.Path, "panic", r)
		}
	}()
	d.handler(event)
}

// Pending reports the queued item count. Test hook.
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queue)
}

// Stop disarms any pending flush, processes what was queued, and waits for
// an in-flight flush to complete. Further enqueues are dropped.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true

	var batch []PendingEvent
	if d.armed && d.timer.Stop() {
		batch = d.queue
		d.queue = nil
		d.queued = make(map[string]int)
		d.armed = false
		d.timer = nil
		d.wg.Done()
	}
	d.mu.Unlock()

	d.process(batch)
	d.wg.Wait()
}
