package store

import (
	"context"
	"errors"

	"github.com/formdeck/formdeck/model"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrVersionConflict = errors.New("version conflict")
)

// Forms is the form persistence contract. Updates are guarded by an
// optimistic version check and fail with ErrVersionConflict when the
// stored version moved on.
type Forms interface {
	Create(ctx context.Context, form *model.Form) error
	List(ctx context.Context) ([]model.Form, error)
	Get(ctx context.Context, id string) (*model.Form, error)
	Update(ctx context.Context, form *model.Form) error
	Delete(ctx context.Context, id string) error
}

// Submissions persists submission records and notifies subscribers
// with the full per-form list after every write. The core recomputes
// its views from scratch on each delivery.
type Submissions interface {
	Save(ctx context.Context, submission *model.Submission) error
	ListByForm(ctx context.Context, formID string) ([]model.Submission, error)
	UpdateStatus(ctx context.Context, id, status string, flags []string) error
	Subscribe(formID string, onUpdate func([]model.Submission)) (unsubscribe func())
}

// KV mirrors a browser key-value store: lookups either hit or miss,
// and write failures are logged by implementations rather than
// surfaced, since persisted filter state is best-effort by contract.
type KV interface {
	Get(key string) (string, bool)
	Set(key, value string)
}
