package workflow

import (
	"context"
	"sync"

	"github.com/pratik-mahalle/wardroberec/internal/pkg/logger"
	"github.com/pratik-mahalle/wardroberec/internal/pkg/metrics"
	"github.com/pratik-mahalle/wardroberec/pkg/client"
)

// WardrobeView holds the wardrobe list shown to the user
type WardrobeView struct {
	clothes Wardrobe
	log     *logger.Logger

	mu     sync.Mutex
	items  []client.ClothingItem
	filter *client.WardrobeFilter
	loaded bool
}

// NewWardrobeView creates an empty view
func NewWardrobeView(clothes Wardrobe, log *logger.Logger) *WardrobeView {
	return &WardrobeView{
		clothes: clothes,
		log:     orNop(log).ForFlow(flowWardrobe),
	}
}

// SetFilter changes the filter used by the next Refresh
func (v *WardrobeView) SetFilter(filter *client.WardrobeFilter) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if filter == nil {
		v.filter = nil
		return
	}
	f := *filter
	v.filter = &f
}

// Items returns a copy of the current list
func (v *WardrobeView) Items() []client.ClothingItem {
	v.mu.Lock()
	defer v.mu.Unlock()
	return copyItems(v.items)
}

// Loaded reports whether a fetch has ever succeeded
func (v *WardrobeView) Loaded() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loaded
}

// Refresh fetches the list. On failure the previous list is kept.
func (v *WardrobeView) Refresh(ctx context.Context) ([]client.ClothingItem, error) {
	v.mu.Lock()
	var filter *client.WardrobeFilter
	if v.filter != nil {
		f := *v.filter
		filter = &f
	}
	v.mu.Unlock()

	items, err := v.clothes.List(ctx, filter)
	if err != nil {
		return v.Items(), fail(v.log, flowWardrobe, "list", err)
	}
	if items == nil {
		items = []client.ClothingItem{}
	}

	v.mu.Lock()
	v.items = items
	v.loaded = true
	v.mu.Unlock()

	metrics.RecordWorkflowEvent(flowWardrobe, "listed")
	v.log.Debugf("wardrobe holds %d items", len(items))
	return copyItems(items), nil
}

// Delete removes an item and, only when the server confirms, re-fetches
// the whole list. A refused delete returns false and leaves the list as is.
func (v *WardrobeView) Delete(ctx context.Context, id int) (bool, error) {
	ok, err := v.clothes.Delete(ctx, id)
	if err != nil {
		return false, fail(v.log, flowWardrobe, "delete", err)
	}
	if !ok {
		metrics.RecordWorkflowEvent(flowWardrobe, "delete_refused")
		v.log.With("id", id).Warnf("server refused delete")
		return false, nil
	}

	metrics.RecordWorkflowEvent(flowWardrobe, "deleted")
	if _, err := v.Refresh(ctx); err != nil {
		return true, err
	}
	return true, nil
}

// copyItems keeps an empty list distinct from a nil one
func copyItems(items []client.ClothingItem) []client.ClothingItem {
	if items == nil {
		return nil
	}
	out := make([]client.ClothingItem, len(items))
	copy(out, items)
	return out
}
