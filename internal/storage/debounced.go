package storage

import (
	"context"
	"log"
	"sync"
	"time"
)

// Debounced coalesces bursts of saves into one write per document.
// A zero delay makes it a write-through pass-through.
type Debounced struct {
	inner DocumentStore
	delay time.Duration

	mu      sync.Mutex
	pending map[string][]byte
	timers  map[string]*time.Timer
}

// NewDebounced wraps inner with the given coalescing delay
func NewDebounced(inner DocumentStore, delay time.Duration) *Debounced {
	return &Debounced{
		inner:   inner,
		delay:   delay,
		pending: make(map[string][]byte),
		timers:  make(map[string]*time.Timer),
	}
}

// Load returns unflushed data when present, otherwise reads through
func (d *Debounced) Load(ctx context.Context, name string) ([]byte, error) {
	d.mu.Lock()
	data, ok := d.pending[name]
	d.mu.Unlock()
	if ok {
		return data, nil
	}
	return d.inner.Load(ctx, name)
}

// Save schedules a write after the delay, replacing any earlier unflushed data
func (d *Debounced) Save(ctx context.Context, name string, data []byte) error {
	if d.delay <= 0 {
		return d.inner.Save(ctx, name, data)
	}

	buf := make([]byte, len(data))
	copy(buf, data)

	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending[name] = buf
	if _, scheduled := d.timers[name]; !scheduled {
		d.timers[name] = time.AfterFunc(d.delay, func() {
			if err := d.flushOne(context.Background(), name); err != nil {
				log.Printf("[Storage] Deferred save of %s failed: %v", name, err)
			}
		})
	}
	return nil
}

// Names merges unflushed documents with the stored ones
func (d *Debounced) Names(ctx context.Context) ([]string, error) {
	names, err := d.inner.Names(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(names))
	for _, n := range names {
		seen[n] = true
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	for n := range d.pending {
		if !seen[n] {
			names = append(names, n)
		}
	}
	return names, nil
}

// Flush writes every pending document now
func (d *Debounced) Flush(ctx context.Context) error {
	d.mu.Lock()
	names := make([]string, 0, len(d.pending))
	for n := range d.pending {
		names = append(names, n)
	}
	d.mu.Unlock()

	var firstErr error
	for _, n := range names {
		if err := d.flushOne(ctx, n); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (d *Debounced) flushOne(ctx context.Context, name string) error {
	d.mu.Lock()
	data, ok := d.pending[name]
	delete(d.pending, name)
	if t, scheduled := d.timers[name]; scheduled {
		t.Stop()
		delete(d.timers, name)
	}
	d.mu.Unlock()

	if !ok {
		return nil
	}

	if err := d.inner.Save(ctx, name, data); err != nil {
		// keep the data unless a newer save already replaced it
		d.mu.Lock()
		if _, newer := d.pending[name]; !newer {
			d.pending[name] = data
		}
		d.mu.Unlock()
		return err
	}
	return nil
}
