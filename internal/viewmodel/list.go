// Package viewmodel mirrors storefront collections for the console. A List
// holds one resource type's items, loading flag and filter; a Coordinator
// performs mutations against it and resynchronizes by reloading.
package viewmodel

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/classiccarrry/classic-carrry-admin/internal/metrics"
	"github.com/classiccarrry/classic-carrry-admin/internal/models"
	"github.com/classiccarrry/classic-carrry-admin/internal/storefront"
)

// Remote is the storefront client surface the view-models use.
type Remote interface {
	List(ctx context.Context, rt models.ResourceType, query url.Values) ([]models.Resource, *storefront.Response, error)
	Get(ctx context.Context, rt models.ResourceType, id string) (models.Resource, error)
	Create(ctx context.Context, rt models.ResourceType, body models.Resource) (*storefront.Response, error)
	Update(ctx context.Context, rt models.ResourceType, id string, body interface{}) (*storefront.Response, error)
	Delete(ctx context.Context, rt models.ResourceType, id string) (*storefront.Response, error)
	Patch(ctx context.Context, rt models.ResourceType, id, suffix string) (*storefront.Response, error)
	Do(ctx context.Context, req storefront.Request) (*storefront.Response, error)
}

// Notifier receives the outcome of loads and mutations.
type Notifier interface {
	Success(message string) models.Notification
	Error(message string) models.Notification
}

// StatsFunc loads counters shown next to a list, such as contact stats.
type StatsFunc func(ctx context.Context) (interface{}, error)

// Deps are the collaborators shared by every view-model.
type Deps struct {
	Remote   Remote
	Notifier Notifier
	Metrics  *metrics.Metrics
	Logger   *zap.Logger
}

// Filter selects what a List shows. Server is sent as the resource type's
// filter parameter; Query narrows the loaded items locally.
type Filter struct {
	Server string `json:"server,omitempty"`
	Query  string `json:"query,omitempty"`
}

// serverValue is the filter value actually sent. "all" is the unfiltered tab.
func (f Filter) serverValue() string {
	v := strings.TrimSpace(f.Server)
	if strings.EqualFold(v, "all") {
		return ""
	}
	return v
}

// Snapshot is a copy of a List's state.
type Snapshot struct {
	Resource string                     `json:"resource"`
	Items    []models.Resource          `json:"items"`
	Visible  []models.Resource          `json:"visible"`
	Loading  bool                       `json:"loading"`
	Filter   Filter                     `json:"filter"`
	Extra    map[string]json.RawMessage `json:"extra,omitempty"`
	Stats    interface{}                `json:"stats,omitempty"`
}

// List mirrors one storefront collection.
type List struct {
	rt    models.ResourceType
	deps  Deps
	stats StatsFunc

	mu      sync.Mutex
	items   []models.Resource
	visible []models.Resource
	extra   map[string]json.RawMessage
	statsV  interface{}
	loading bool
	loaded  bool
	filter  Filter
	seq     uint64
}

// NewList creates an empty List for rt.
func NewList(rt models.ResourceType, deps Deps) *List {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &List{
		rt:      rt,
		deps:    deps,
		items:   []models.Resource{},
		visible: []models.Resource{},
	}
}

// ResourceType returns the descriptor the List was built for.
func (l *List) ResourceType() models.ResourceType { return l.rt }

// Load fetches the collection with f's server-side portion and replaces the
// items on success. f's query applies at once; its server filter becomes
// current only with the items it selected. A failure leaves items and server
// filter as they were and emits an error notification. Only the most
// recently issued load is applied; older responses that arrive later are
// dropped.
func (l *List) Load(ctx context.Context, f Filter) error {
	l.mu.Lock()
	l.seq++
	seq := l.seq
	l.filter.Query = f.Query
	l.loading = true
	l.recomputeLocked()
	l.mu.Unlock()

	query := l.query(f)
	items, resp, err := l.deps.Remote.List(ctx, l.rt, query)

	var stats interface{}
	var statsErr error
	if err == nil && l.stats != nil {
		stats, statsErr = l.stats(ctx)
	}

	l.mu.Lock()
	if seq != l.seq {
		l.mu.Unlock()
		l.deps.Metrics.ObserveStaleLoad()
		l.deps.Logger.Debug("discarding stale load",
			zap.String("resource", l.rt.Name), zap.Uint64("seq", seq))
		return nil
	}
	l.loading = false
	if err != nil {
		l.mu.Unlock()
		l.deps.Logger.Warn("load failed", zap.String("resource", l.rt.Name), zap.Error(err))
		l.deps.Notifier.Error(storefront.UserMessage(err, "Failed to fetch "+lowerLabel(l.rt.Label)))
		return err
	}
	l.items = items
	l.filter.Server = f.Server
	l.loaded = true
	l.extra = resp.Extra
	if statsErr != nil {
		l.deps.Logger.Warn("loading stats failed", zap.String("resource", l.rt.Name), zap.Error(statsErr))
	} else if stats != nil {
		l.statsV = stats
	}
	l.recomputeLocked()
	l.mu.Unlock()
	return nil
}

// query merges the resource type's base query with f's server filter.
func (l *List) query(f Filter) url.Values {
	v := f.serverValue()
	if len(l.rt.BaseQuery) == 0 && (v == "" || l.rt.FilterParam == "") {
		return nil
	}
	query := url.Values{}
	for k, vs := range l.rt.BaseQuery {
		query[k] = append([]string(nil), vs...)
	}
	if v != "" && l.rt.FilterParam != "" {
		query.Set(l.rt.FilterParam, v)
	}
	return query
}

// Reload repeats the last load with the current filter.
func (l *List) Reload(ctx context.Context) error {
	return l.Load(ctx, l.Filter())
}

// SetFilter changes the server-side filter and reloads only if it changed.
func (l *List) SetFilter(ctx context.Context, server string) error {
	l.mu.Lock()
	f := l.filter
	l.mu.Unlock()
	if (Filter{Server: server}).serverValue() == f.serverValue() {
		return nil
	}
	f.Server = server
	return l.Load(ctx, f)
}

// SetQuery changes the local search text. It never issues a request.
func (l *List) SetQuery(q string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.filter.Query = q
	l.recomputeLocked()
}

// Filter returns the current filter.
func (l *List) Filter() Filter {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.filter
}

// Loading reports whether the latest load is still in flight.
func (l *List) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loading
}

// Loaded reports whether any load has succeeded since the List was created.
func (l *List) Loaded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loaded
}

// Items returns the loaded collection in server order.
func (l *List) Items() []models.Resource {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.Resource(nil), l.items...)
}

// Visible returns the items matching the current query.
func (l *List) Visible() []models.Resource {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.Resource(nil), l.visible...)
}

// Find returns a loaded item by id.
func (l *List) Find(id string) (models.Resource, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, item := range l.items {
		if item.ID() == id {
			return item.Clone(), true
		}
	}
	return nil, false
}

// Snapshot returns a copy of the List's state.
func (l *List) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Snapshot{
		Resource: l.rt.Name,
		Items:    append([]models.Resource{}, l.items...),
		Visible:  append([]models.Resource{}, l.visible...),
		Loading:  l.loading,
		Filter:   l.filter,
		Extra:    l.extra,
		Stats:    l.statsV,
	}
}

func (l *List) recomputeLocked() {
	l.visible = Search(l.items, l.rt.SearchFields, l.filter.Query)
}

// lowerLabel lower-cases a label for use mid-sentence, keeping acronyms
// such as "FAQs" intact.
func lowerLabel(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		stem := strings.TrimSuffix(w, "s")
		if len(stem) > 1 && stem == strings.ToUpper(stem) {
			continue
		}
		words[i] = strings.ToLower(w)
	}
	return strings.Join(words, " ")
}
