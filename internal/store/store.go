// Package store owns the canonical task collection and keeps it persisted
// in a key-value backend.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"taskboard/internal/models"
	"taskboard/internal/storage"
)

// DefaultKey is the storage key the collection is written under.
const DefaultKey = "kanban_tasks_v1"

// EventType names a change to the collection
type EventType string

const (
	EventCreated EventType = "task_created"
	EventUpdated EventType = "task_updated"
	EventDeleted EventType = "task_deleted"
	EventReset   EventType = "board_reset"
)

// Event is delivered to subscribers after every applied mutation.
type Event struct {
	Type    EventType    `json:"type"`
	TaskID  string       `json:"taskId"`
	Version uint64       `json:"version"`
	Task    *models.Task `json:"task,omitempty"`
}

type subscriber struct {
	id int
	fn func(Event)
}

// Store is the single owner of the task collection. Mutations are applied
// in memory first; persisting them is best-effort.
type Store struct {
	mu      sync.RWMutex
	tasks   []models.Task
	version uint64
	seeded  bool

	kv    storage.Storage
	key   string
	newID func() string
	log   *log.Entry

	subMu   sync.Mutex
	subs    []subscriber
	nextSub int
}

type Option func(*Store)

// WithKey overrides DefaultKey.
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// WithIDGenerator replaces the uuid v4 generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

func WithLogger(l *log.Entry) Option {
	return func(s *Store) { s.log = l }
}

// New loads the collection from kv, falling back to the seed board when
// nothing valid is stored.
func New(ctx context.Context, kv storage.Storage, opts ...Option) *Store {
	s := &Store{
		kv:    kv,
		key:   DefaultKey,
		newID: uuid.NewString,
		log:   log.WithField("component", "store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.load(ctx)
	return s
}

func (s *Store) load(ctx context.Context) {
	data, err := s.kv.Get(ctx, s.key)
	if err == nil {
		tasks, decodeErr := Decode(data)
		if decodeErr == nil {
			s.tasks = tasks
			s.log.WithField("tasks", len(tasks)).Debug("loaded persisted board")
			return
		}
		err = decodeErr
	}
	if errors.Is(err, storage.ErrNotFound) {
		s.log.Info("no persisted board, using seed tasks")
	} else {
		s.log.WithError(err).Warn("persisted board unreadable, using seed tasks")
	}
	s.tasks = SeedTasks(s.newID)
	s.seeded = true
	s.persist(ctx)
}

// Seeded reports whether the store started from the seed board.
func (s *Store) Seeded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seeded
}

// Version is incremented by every applied mutation.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// List returns a snapshot of all tasks in collection order.
func (s *Store) List() []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Task, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t.Clone()
	}
	return out
}

func (s *Store) Get(id string) (models.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.tasks[i].Clone(), true
	}
	return models.Task{}, false
}

// Create inserts a new task at the head of the collection.
func (s *Store) Create(ctx context.Context, d models.TaskDraft) (models.Task, error) {
	if err := d.Validate(); err != nil {
		return models.Task{}, err
	}

	s.mu.Lock()
	t := models.Task{
		ID:          s.uniqueID(),
		Title:       d.Title,
		Description: d.Description,
		Status:      d.Status,
		Priority:    d.Priority,
		Tags:        append([]string{}, d.Tags...),
	}
	if t.Priority == "" {
		t.Priority = models.PriorityMedium
	}
	s.tasks = append([]models.Task{t}, s.tasks...)
	ev := s.commit(ctx, EventCreated, &t)
	s.mu.Unlock()

	s.publish(ev)
	return t.Clone(), nil
}

// Update merges patch into the task with the given id. An unknown id is a
// no-op and reports false.
func (s *Store) Update(ctx context.Context, id string, patch models.TaskPatch) (bool, error) {
	if err := patch.Validate(); err != nil {
		return false, err
	}

	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return false, nil
	}
	patch.Apply(&s.tasks[i])
	t := s.tasks[i]
	ev := s.commit(ctx, EventUpdated, &t)
	s.mu.Unlock()

	s.publish(ev)
	return true, nil
}

// Delete removes the task with the given id. An unknown id is a no-op and
// reports false.
func (s *Store) Delete(ctx context.Context, id string) bool {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)
	ev := s.commit(ctx, EventDeleted, nil)
	ev.TaskID = id
	s.mu.Unlock()

	s.publish(ev)
	return true
}

// Reset drops the stored board and starts over from the seed tasks.
func (s *Store) Reset(ctx context.Context) error {
	if err := s.kv.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("delete %s: %w", s.key, err)
	}

	s.mu.Lock()
	s.tasks = SeedTasks(s.newID)
	s.seeded = true
	ev := s.commit(ctx, EventReset, nil)
	s.mu.Unlock()

	s.log.WithField("version", ev.Version).Info("board reset to seed tasks")
	s.publish(ev)
	return nil
}

// Subscribe registers fn to receive every future Event. The returned
// function removes the subscription.
func (s *Store) Subscribe(fn func(Event)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.nextSub++
	id := s.nextSub
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// commit must be called with mu held.
func (s *Store) commit(ctx context.Context, typ EventType, t *models.Task) Event {
	s.version++
	s.persist(ctx)
	ev := Event{Type: typ, Version: s.version}
	if t != nil {
		c := t.Clone()
		ev.TaskID = c.ID
		ev.Task = &c
	}
	return ev
}

// persist writes the whole collection. Failures leave the in-memory state
// untouched and only affect future sessions.
func (s *Store) persist(ctx context.Context) {
	data, err := Encode(s.tasks)
	if err != nil {
		s.log.WithError(err).Warn("encode board failed")
		return
	}
	if err := s.kv.Set(ctx, s.key, data); err != nil {
		s.log.WithError(err).WithField("key", s.key).Warn("persist board failed")
	}
}

func (s *Store) publish(ev Event) {
	s.subMu.Lock()
	subs := append([]subscriber(nil), s.subs...)
	s.subMu.Unlock()
	for _, sub := range subs {
		sub.fn(ev)
	}
}

func (s *Store) indexOf(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) uniqueID() string {
	for {
		id := s.newID()
		if id != "" && s.indexOf(id) < 0 {
			return id
		}
	}
}
