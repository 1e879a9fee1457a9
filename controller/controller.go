package controller

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/formdeck/formdeck/analytics"
	"github.com/formdeck/formdeck/filter"
	"github.com/formdeck/formdeck/log"
	"github.com/formdeck/formdeck/model"
	"github.com/formdeck/formdeck/store"
)

const persistKeyPrefix = "formdeck.filters."

// PersistKey is the namespaced KV key holding one form's saved filter
// state. Shared with the HTTP layer so saved state round-trips.
func PersistKey(formID string) string {
	return persistKeyPrefix + formID
}

const defaultPageSize = 10

// Config tunes one controller instance. A nil KV disables filter
// persistence; a zero Debounce applies search input immediately.
type Config struct {
	Debounce time.Duration
	PageSize int
	KV       store.KV
	OnChange func(View)
}

// View is the derived output consumers render from: the current page
// of the filtered, sorted collection plus the state that produced it.
type View struct {
	filter.PageResult
	Criteria model.FilterCriteria `json:"criteria"`
	Sort     model.SortSpec       `json:"sort"`
}

// Controller owns the transient filter/sort/page state for one form's
// submission list and recomputes the view on every mutation. All
// computation is synchronous; the one async edge is the debounce
// timer, so state is guarded by a mutex.
type Controller struct {
	formID string
	cfg    Config

	mu          sync.Mutex
	schema      []model.FieldDefinition
	submissions []model.Submission
	criteria    model.FilterCriteria
	sortSpec    model.SortSpec
	page        int
	pageSize    int
	searchInput string
	timer       *time.Timer
}

func New(formID string, schema []model.FieldDefinition, cfg Config) *Controller {
	if cfg.PageSize < 1 {
		cfg.PageSize = defaultPageSize
	}

	c := &Controller{
		formID:   formID,
		cfg:      cfg,
		schema:   schema,
		sortSpec: model.SortSpec{Field: "submittedAt", Order: model.Desc},
		page:     1,
		pageSize: cfg.PageSize,
	}
	c.criteria = c.loadCriteria()
	c.searchInput = c.criteria.SearchTerm
	return c
}

// loadCriteria restores persisted filter state. Anything unreadable
// counts as "no saved filters".
func (c *Controller) loadCriteria() model.FilterCriteria {
	criteria := model.FilterCriteria{}
	if c.cfg.KV == nil {
		return criteria
	}
	raw, ok := c.cfg.KV.Get(PersistKey(c.formID))
	if !ok {
		return criteria
	}
	if err := json.Unmarshal([]byte(raw), &criteria); err != nil {
		log.Debugf("controller.load_filters.corrupt: %s", err)
		return model.FilterCriteria{}
	}
	return criteria
}

func (c *Controller) persistCriteria() {
	if c.cfg.KV == nil {
		return
	}
	raw, err := json.Marshal(c.criteria)
	if err != nil {
		log.Errorf("controller.save_filters: %s", err)
		return
	}
	c.cfg.KV.Set(PersistKey(c.formID), string(raw))
}

// SetSubmissions replaces the collection, typically from a store
// subscription delivery. The current page is kept: arrival of data is
// not navigation.
func (c *Controller) SetSubmissions(submissions []model.Submission) {
	c.mu.Lock()
	c.submissions = submissions
	c.mu.Unlock()
	c.changed()
}

// SearchInput is the raw, undebounced text for rendering the search
// box; the committed criteria may lag behind it by the debounce delay.
func (c *Controller) SearchInput() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.searchInput
}

// SetSearch records the raw input and schedules the debounced commit.
// A new keystroke restarts the timer: last write wins, intermediate
// values are never applied.
func (c *Controller) SetSearch(term string) {
	c.mu.Lock()
	c.searchInput = term
	if c.timer != nil {
		c.timer.Stop()
	}
	if c.cfg.Debounce <= 0 {
		c.commitSearchLocked(term)
		c.mu.Unlock()
		c.changed()
		return
	}
	c.timer = time.AfterFunc(c.cfg.Debounce, func() {
		c.mu.Lock()
		c.commitSearchLocked(term)
		c.mu.Unlock()
		c.changed()
	})
	c.mu.Unlock()
}

func (c *Controller) commitSearchLocked(term string) {
	c.criteria.SearchTerm = term
	c.page = 1
	c.persistCriteria()
}

func (c *Controller) SetStatus(status string) {
	c.mutateCriteria(func() { c.criteria.Status = status })
}

// SetDateRange replaces the date bounds. An inverted range violates
// the criteria invariant and is dropped.
func (c *Controller) SetDateRange(r *model.DateRange) {
	if r != nil && r.Start != nil && r.End != nil && r.End.Before(*r.Start) {
		log.Debugf("controller.set_date_range.inverted: %s > %s", r.Start, r.End)
		return
	}
	c.mutateCriteria(func() { c.criteria.DateRange = r })
}

func (c *Controller) SetFieldFilter(fieldID, value string) {
	c.mutateCriteria(func() {
		if c.criteria.FieldFilters == nil {
			c.criteria.FieldFilters = map[string]string{}
		}
		c.criteria.FieldFilters[fieldID] = value
	})
}

func (c *Controller) ClearFilters() {
	c.mutateCriteria(func() {
		c.criteria = model.FilterCriteria{}
		c.searchInput = ""
	})
}

// mutateCriteria applies a filter change; every such change resets the
// page so pagination never points past the freshly filtered set.
func (c *Controller) mutateCriteria(mutate func()) {
	c.mu.Lock()
	mutate()
	c.page = 1
	c.persistCriteria()
	c.mu.Unlock()
	c.changed()
}

func (c *Controller) SetSort(field string, order model.SortOrder) {
	c.mu.Lock()
	c.sortSpec = model.SortSpec{Field: field, Order: order}
	c.page = 1
	c.mu.Unlock()
	c.changed()
}

// SetPage is explicit navigation. Out-of-range pages stay as given and
// simply yield an empty page; see filter.Paginate.
func (c *Controller) SetPage(page int) {
	c.mu.Lock()
	c.page = page
	c.mu.Unlock()
	c.changed()
}

// View runs filter, sort, paginate over the current state.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

func (c *Controller) viewLocked() View {
	filtered := filter.Apply(c.submissions, c.criteria)
	sorted := filter.Sort(filtered, c.sortSpec.Field, c.sortSpec.Order)
	return View{
		PageResult: filter.Paginate(sorted, c.page, c.pageSize),
		Criteria:   c.criteria,
		Sort:       c.sortSpec,
	}
}

// Analytics recomputes the snapshot over the unfiltered collection.
func (c *Controller) Analytics(timeRange string) analytics.Snapshot {
	c.mu.Lock()
	submissions := c.submissions
	schema := c.schema
	c.mu.Unlock()
	return analytics.Analyze(submissions, schema, analytics.Options{TimeRange: timeRange})
}

func (c *Controller) changed() {
	if c.cfg.OnChange == nil {
		return
	}
	c.mu.Lock()
	view := c.viewLocked()
	c.mu.Unlock()
	c.cfg.OnChange(view)
}
