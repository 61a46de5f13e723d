// Package state holds the host-owned page: the file list element and the
// upload form that the file manager renders into.
package state

import (
	"sync"
	"time"

	"github.com/filebox/filebox-client/internal/events"
	"github.com/filebox/filebox-client/internal/view"
)

// Page is the observable file list container.
// Every Commit replaces the whole list at once; readers never see a
// partially built list. Thread-safe for concurrent access.
type Page struct {
	eventBus *events.EventBus

	items      []view.ItemNode
	generation uint64
	renderedAt time.Time
	lastError  error

	mu sync.RWMutex
}

// NewPage creates an empty page. eventBus may be nil.
func NewPage(eventBus *events.EventBus) *Page {
	return &Page{
		eventBus: eventBus,
		items:    make([]view.ItemNode, 0),
	}
}

// Commit replaces the list with items and publishes a list_rendered event.
func (p *Page) Commit(items []view.ItemNode) {
	itemsCopy := make([]view.ItemNode, len(items))
	copy(itemsCopy, items)

	p.mu.Lock()
	p.items = itemsCopy
	p.generation++
	p.renderedAt = time.Now()
	p.lastError = nil
	generation := p.generation
	p.mu.Unlock()

	if p.eventBus != nil {
		names := make([]string, len(itemsCopy))
		for i, item := range itemsCopy {
			names[i] = item.Name
		}
		p.eventBus.PublishListRendered(generation, names)
	}
}

// Items returns a copy of the committed items.
func (p *Page) Items() []view.ItemNode {
	p.mu.RLock()
	defer p.mu.RUnlock()

	result := make([]view.ItemNode, len(p.items))
	copy(result, p.items)
	return result
}

// Len returns the number of committed items.
func (p *Page) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.items)
}

// Item returns the committed item at index i.
func (p *Page) Item(i int) (view.ItemNode, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if i < 0 || i >= len(p.items) {
		return view.ItemNode{}, false
	}
	return p.items[i], true
}

// Find returns the committed item with the given name.
func (p *Page) Find(name string) (view.ItemNode, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, item := range p.items {
		if item.Name == name {
			return item, true
		}
	}
	return view.ItemNode{}, false
}

// Generation returns how many times the list has been committed.
func (p *Page) Generation() uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.generation
}

// RenderedAt returns the time of the last commit, zero if never committed.
func (p *Page) RenderedAt() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.renderedAt
}

// SetError records the last failed refresh. The committed items are kept.
func (p *Page) SetError(err error) {
	p.mu.Lock()
	p.lastError = err
	p.mu.Unlock()
}

// LastError returns the error of the last failed refresh, cleared by Commit.
func (p *Page) LastError() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastError
}
