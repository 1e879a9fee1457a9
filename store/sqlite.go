package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"

	"github.com/formdeck/formdeck/log"
	"github.com/formdeck/formdeck/model"
)

type SQLForms struct {
	db *sql.DB
}

func NewSQLForms(db *sql.DB) *SQLForms {
	return &SQLForms{db: db}
}

func (s *SQLForms) Create(ctx context.Context, form *model.Form) error {
	fieldsJSON, err := json.Marshal(form.Fields)
	if err != nil {
		return errors.Wrap(err, "marshal form fields")
	}

	form.Version = 1
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO form (id, version, title, status, fields)
		VALUES (?, ?, ?, ?, ?)`,
		form.ID, form.Version, form.Title, form.Status, string(fieldsJSON),
	)
	return errors.Wrap(err, "insert form")
}

func (s *SQLForms) List(ctx context.Context) ([]model.Form, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, version, title, status, fields
		FROM form`)
	if err != nil {
		return nil, errors.Wrap(err, "query forms")
	}
	defer rows.Close()

	forms := []model.Form{}
	for rows.Next() {
		form, err := scanForm(rows)
		if err != nil {
			return nil, err
		}
		forms = append(forms, *form)
	}
	return forms, rows.Err()
}

func (s *SQLForms) Get(ctx context.Context, id string) (*model.Form, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, version, title, status, fields
		FROM form
		WHERE id = ?`,
		id,
	)
	if err != nil {
		return nil, errors.Wrap(err, "query form")
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ErrNotFound
	}
	return scanForm(rows)
}

func scanForm(rows *sql.Rows) (*model.Form, error) {
	form := model.Form{}
	var fieldsJSON string
	err := rows.Scan(&form.ID, &form.Version, &form.Title, &form.Status, &fieldsJSON)
	if err != nil {
		return nil, errors.Wrap(err, "scan form")
	}
	if fieldsJSON != "" {
		if err := json.Unmarshal([]byte(fieldsJSON), &form.Fields); err != nil {
			return nil, errors.Wrap(err, "parse form fields")
		}
	}
	return &form, nil
}

func (s *SQLForms) Update(ctx context.Context, form *model.Form) error {
	fieldsJSON, err := json.Marshal(form.Fields)
	if err != nil {
		return errors.Wrap(err, "marshal form fields")
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE form
		SET
			title = ?,
			status = ?,
			fields = ?,
			version = version+1
		WHERE	id = ?
			AND version = ?`,
		form.Title, form.Status, string(fieldsJSON),
		form.ID, form.Version,
	)
	if err != nil {
		return errors.Wrap(err, "update form")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "update form verify")
	}
	if n < 1 {
		// optimistic lock: row is gone or someone got there first
		if _, err := s.Get(ctx, form.ID); err != nil {
			return err
		}
		return ErrVersionConflict
	}
	form.Version++
	return nil
}

func (s *SQLForms) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM form WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(err, "delete form")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "delete form verify")
	}
	if n < 1 {
		return ErrNotFound
	}
	return nil
}

type SQLSubmissions struct {
	db *sql.DB

	mu          sync.Mutex
	nextSub     int
	subscribers map[int]subscriber
}

type subscriber struct {
	formID   string
	onUpdate func([]model.Submission)
}

func NewSQLSubmissions(db *sql.DB) *SQLSubmissions {
	return &SQLSubmissions{
		db:          db,
		subscribers: make(map[int]subscriber),
	}
}

func (s *SQLSubmissions) Save(ctx context.Context, submission *model.Submission) error {
	dataJSON, err := json.Marshal(submission.Data)
	if err != nil {
		return errors.Wrap(err, "marshal submission data")
	}
	flagsJSON, err := json.Marshal(submission.Flags)
	if err != nil {
		return errors.Wrap(err, "marshal submission flags")
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO submission (id, form_id, data, submitted_at, submitted_by, user_agent, status, flags)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		submission.ID, submission.FormID, string(dataJSON),
		submission.SubmittedAt, submission.SubmittedBy, submission.UserAgent,
		submission.Status, string(flagsJSON),
	)
	if err != nil {
		return errors.Wrap(err, "insert submission")
	}

	s.notify(ctx, submission.FormID)
	return nil
}

func (s *SQLSubmissions) ListByForm(ctx context.Context, formID string) ([]model.Submission, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, form_id, data, submitted_at, submitted_by, user_agent, status, flags
		FROM submission
		WHERE form_id = ?
		ORDER BY submitted_at, id`,
		formID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "query submissions")
	}
	defer rows.Close()

	submissions := []model.Submission{}
	for rows.Next() {
		sub := model.Submission{}
		var dataJSON, flagsJSON string
		err = rows.Scan(
			&sub.ID, &sub.FormID, &dataJSON, &sub.SubmittedAt,
			&sub.SubmittedBy, &sub.UserAgent, &sub.Status, &flagsJSON,
		)
		if err != nil {
			return nil, errors.Wrap(err, "scan submission")
		}
		if err := json.Unmarshal([]byte(dataJSON), &sub.Data); err != nil {
			return nil, errors.Wrap(err, "parse submission data")
		}
		if flagsJSON != "" && flagsJSON != "null" {
			if err := json.Unmarshal([]byte(flagsJSON), &sub.Flags); err != nil {
				return nil, errors.Wrap(err, "parse submission flags")
			}
		}
		submissions = append(submissions, sub)
	}
	return submissions, rows.Err()
}

func (s *SQLSubmissions) UpdateStatus(ctx context.Context, id, status string, flags []string) error {
	flagsJSON, err := json.Marshal(flags)
	if err != nil {
		return errors.Wrap(err, "marshal submission flags")
	}

	var formID string
	err = s.db.QueryRowContext(ctx, `
		UPDATE submission
		SET status = ?, flags = ?
		WHERE id = ?
		RETURNING form_id`,
		status, string(flagsJSON), id,
	).Scan(&formID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return errors.Wrap(err, "update submission status")
	}

	s.notify(ctx, formID)
	return nil
}

// Subscribe registers a callback receiving the full submission list of
// a form after every write. The returned function removes the
// subscription.
func (s *SQLSubmissions) Subscribe(formID string, onUpdate func([]model.Submission)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = subscriber{formID: formID, onUpdate: onUpdate}
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

func (s *SQLSubmissions) notify(ctx context.Context, formID string) {
	s.mu.Lock()
	var targets []func([]model.Submission)
	for _, sub := range s.subscribers {
		if sub.formID == formID {
			targets = append(targets, sub.onUpdate)
		}
	}
	s.mu.Unlock()

	if len(targets) == 0 {
		return
	}

	submissions, err := s.ListByForm(ctx, formID)
	if err != nil {
		log.Errorf("store.notify.list: %s", err)
		return
	}
	for _, onUpdate := range targets {
		onUpdate(submissions)
	}
}

// SQLKV is the key-value capability backed by the kv table. Failures
// are logged and reads fall back to a miss: persisted UI state is
// best-effort.
type SQLKV struct {
	db *sql.DB
}

func NewSQLKV(db *sql.DB) *SQLKV {
	return &SQLKV{db: db}
}

func (s *SQLKV) Get(key string) (string, bool) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false
	}
	if err != nil {
		log.Errorf("store.kv.get: %s", err)
		return "", false
	}
	return value, true
}

func (s *SQLKV) Set(key, value string) {
	_, err := s.db.Exec(`
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		log.Errorf("store.kv.set: %s", err)
	}
}
