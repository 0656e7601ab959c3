package store

import (
	"context"
	"sync"

	"ventas/models"
)

// productWatch fans product-list snapshots out to subscribers. It replaces
// the push channel of the hosted variant with an in-process observer; the
// sale engine never consumes it and always re-reads authoritative state
// inside its own transaction.
type productWatch struct {
	mu   sync.Mutex
	subs map[int]func([]models.Product)
	next int
}

func (w *productWatch) subscribe(fn func([]models.Product)) func() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.subs == nil {
		w.subs = make(map[int]func([]models.Product))
	}
	id := w.next
	w.next++
	w.subs[id] = fn
	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		delete(w.subs, id)
	}
}

func (w *productWatch) broadcast(products []models.Product) {
	w.mu.Lock()
	fns := make([]func([]models.Product), 0, len(w.subs))
	for _, fn := range w.subs {
		fns = append(fns, fn)
	}
	w.mu.Unlock()
	for _, fn := range fns {
		fn(products)
	}
}

// notifyProducts re-reads the product list after a committed mutation and
// pushes it to subscribers, mirroring the re-read-on-change behavior of the
// hosted realtime channel.
func notifyProducts(ctx context.Context, s Store, w *productWatch) {
	w.mu.Lock()
	empty := len(w.subs) == 0
	w.mu.Unlock()
	if empty {
		return
	}
	products, err := s.ListProducts(ctx)
	if err != nil {
		return
	}
	w.broadcast(products)
}
