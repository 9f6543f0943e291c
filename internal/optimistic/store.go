// Package optimistic mirrors an owner-scoped remote collection locally and
// applies mutations to the mirror before the remote store confirms them.
//
// Every mutation moves through idle -> applied-locally -> confirmed, or
// idle -> applied-locally -> reverted when the remote call fails. Reverting is
// asymmetric: a failed create is rolled back exactly (the entity was absent
// before), while a failed update or delete triggers a full reload since prior
// field values are not retained.
//
// Operations are neither queued nor serialized against each other. Two quick
// writes to the same entity race at the remote store, where the last write
// wins; there is no versioning or conflict detection.
package optimistic

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskpad/internal/model"
	"github.com/BuzzLyutic/taskpad/internal/notify"
	"github.com/BuzzLyutic/taskpad/internal/session"
)

var ErrNoOwner = errors.New("no signed-in owner")

type options struct {
	dispatcher Dispatcher
	notifier   notify.Notifier
	logger     *zap.Logger
	now        func() time.Time
	newID      func() string
	meter      metric.Meter
}

type Option func(*options)

func WithDispatcher(d Dispatcher) Option { return func(o *options) { o.dispatcher = d } }

func WithNotifier(n notify.Notifier) Option { return func(o *options) { o.notifier = n } }

func WithLogger(l *zap.Logger) Option { return func(o *options) { o.logger = l } }

func WithClock(now func() time.Time) Option { return func(o *options) { o.now = now } }

func WithIDGenerator(gen func() string) Option { return func(o *options) { o.newID = gen } }

func WithMeter(m metric.Meter) Option { return func(o *options) { o.meter = m } }

// Store is the local mirror of one remote collection for the current owner.
// Methods return as soon as the local state has changed; remote calls and
// their reconciliation run on the dispatcher.
type Store[T model.Entity[T], P model.Patch[T, P]] struct {
	remote  Collection[T, P]
	cfg     Config
	opts    options
	metrics *metrics

	mu      sync.Mutex
	owner   string
	items   []T
	loading bool
	seq     uint64 // orders creates, confirmations and load issues
	creates map[string]*createRecord[T]

	inflight sync.WaitGroup
}

// createRecord follows a local create until no load in flight can have
// missed it.
type createRecord[T any] struct {
	entity      T
	issuedAt    uint64
	confirmedAt uint64 // 0 while the remote call is pending
}

func New[T model.Entity[T], P model.Patch[T, P]](remote Collection[T, P], cfg Config, opts ...Option) *Store[T, P] {
	o := options{
		dispatcher: goroutines{},
		logger:     zap.NewNop(),
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Store[T, P]{
		remote:  remote,
		cfg:     cfg,
		opts:    o,
		metrics: newMetrics(o.meter, cfg.Name),
		creates: make(map[string]*createRecord[T]),
	}
}

// Bind follows the session: every change of signed-in owner replaces the
// collection and reloads it. The returned func ends the subscription.
func (s *Store[T, P]) Bind(ctx context.Context, p session.Provider) (unbind func()) {
	return p.Subscribe(func(st session.State) {
		if st.Loading {
			return
		}
		s.SetOwner(ctx, st.OwnerID())
	})
}

// SetOwner switches the mirror to another owner. The local collection is
// cleared and, for a non-empty owner, loaded again.
func (s *Store[T, P]) SetOwner(ctx context.Context, owner string) {
	s.mu.Lock()
	if owner == s.owner {
		s.mu.Unlock()
		return
	}
	s.owner = owner
	s.items = nil
	s.loading = owner != ""
	clear(s.creates)
	s.mu.Unlock()

	s.opts.logger.Debug("owner changed", zap.String("collection", s.cfg.Name), zap.String("owner", owner))
	if owner != "" {
		s.reload(ctx)
	}
}

func (s *Store[T, P]) Owner() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.owner
}

// Load fetches the full collection of the current owner and replaces the
// local one when it arrives. Local creates the snapshot may predate are kept
// on top of it. A failed load leaves the collection empty.
// A result for an owner that is no longer current is dropped.
func (s *Store[T, P]) Load(ctx context.Context) error {
	s.mu.Lock()
	owner := s.owner
	if owner == "" {
		s.mu.Unlock()
		return ErrNoOwner
	}
	s.loading = true
	s.seq++
	issued := s.seq
	s.mu.Unlock()

	s.dispatch(ctx, func(ctx context.Context) {
		items, err := s.remote.List(ctx, owner, s.cfg.Order)

		s.mu.Lock()
		if owner != s.owner {
			s.mu.Unlock()
			s.metrics.record(ctx, opLoad, outcomeStale)
			return
		}
		s.loading = false
		if err != nil {
			s.items = nil
		} else {
			s.items = s.withLocalCreates(ownedBy(items, owner), issued)
		}
		s.mu.Unlock()

		if err != nil {
			s.opts.logger.Error("load failed", zap.String("collection", s.cfg.Name), zap.Error(err))
			notify.Error(s.opts.notifier, s.cfg.Messages.LoadFailed)
			s.metrics.record(ctx, opLoad, outcomeFailed)
			return
		}
		s.metrics.record(ctx, opLoad, outcomeConfirmed)
	})
	return nil
}

// Create stamps draft with a fresh id, the owner and the current time,
// prepends it locally and sends it to the remote store.
func (s *Store[T, P]) Create(ctx context.Context, draft T) (T, error) {
	var zero T
	if err := draft.Validate(); err != nil {
		return zero, err
	}

	s.mu.Lock()
	if s.owner == "" {
		s.mu.Unlock()
		return zero, ErrNoOwner
	}
	entity := draft.Stamp(s.opts.newID(), s.owner, s.opts.now())
	s.items = append([]T{entity}, s.items...)
	s.seq++
	s.creates[entity.EntityID()] = &createRecord[T]{entity: entity, issuedAt: s.seq}
	s.mu.Unlock()

	id := entity.EntityID()
	s.dispatch(ctx, func(ctx context.Context) {
		if _, err := s.remote.Create(ctx, entity); err != nil {
			s.mu.Lock()
			s.items = without(s.items, id)
			delete(s.creates, id)
			s.mu.Unlock()

			s.opts.logger.Error("create failed", zap.String("collection", s.cfg.Name), zap.String("id", id), zap.Error(err))
			notify.Error(s.opts.notifier, s.cfg.Messages.CreateFailed)
			s.metrics.record(ctx, opCreate, outcomeReverted)
			return
		}
		s.mu.Lock()
		if rec, ok := s.creates[id]; ok {
			s.seq++
			rec.confirmedAt = s.seq
		}
		s.mu.Unlock()

		notify.Success(s.opts.notifier, s.cfg.Messages.Created)
		s.metrics.record(ctx, opCreate, outcomeConfirmed)
	})
	return entity, nil
}

// Update applies patch locally with updated_at set to now (never earlier than
// the current value) and sends the same patch and timestamp to the remote
// store. A remote failure reloads the whole collection.
func (s *Store[T, P]) Update(ctx context.Context, id string, patch P) (T, error) {
	var zero T
	if err := patch.Validate(); err != nil {
		return zero, err
	}

	s.mu.Lock()
	i := indexOf(s.items, id)
	if i < 0 {
		s.mu.Unlock()
		return zero, model.ErrNotFound
	}
	at := s.opts.now()
	if prev := s.items[i].Updated(); at.Before(prev) {
		at = prev
	}
	patch = patch.At(at)
	updated := patch.Apply(s.items[i])
	s.items[i] = updated
	if rec, ok := s.creates[id]; ok {
		rec.entity = updated
	}
	s.mu.Unlock()

	s.dispatch(ctx, func(ctx context.Context) {
		if _, err := s.remote.Update(ctx, id, patch); err != nil {
			s.opts.logger.Error("update failed", zap.String("collection", s.cfg.Name), zap.String("id", id), zap.Error(err))
			notify.Error(s.opts.notifier, s.cfg.Messages.UpdateFailed)
			s.metrics.record(ctx, opUpdate, outcomeReloaded)
			s.reload(ctx)
			return
		}
		notify.Success(s.opts.notifier, s.cfg.Messages.Updated)
		s.metrics.record(ctx, opUpdate, outcomeConfirmed)
	})
	return updated, nil
}

// Delete removes id locally and remotely. Deleting an id that is not in the
// local collection does nothing.
func (s *Store[T, P]) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	if indexOf(s.items, id) < 0 {
		s.mu.Unlock()
		return nil
	}
	s.items = without(s.items, id)
	delete(s.creates, id)
	s.mu.Unlock()

	s.dispatch(ctx, func(ctx context.Context) {
		if err := s.remote.Delete(ctx, id); err != nil {
			s.opts.logger.Error("delete failed", zap.String("collection", s.cfg.Name), zap.String("id", id), zap.Error(err))
			notify.Error(s.opts.notifier, s.cfg.Messages.DeleteFailed)
			s.metrics.record(ctx, opDelete, outcomeReloaded)
			s.reload(ctx)
			return
		}
		notify.Success(s.opts.notifier, s.cfg.Messages.Deleted)
		s.metrics.record(ctx, opDelete, outcomeConfirmed)
	})
	return nil
}

// Items returns a copy of the local collection in display order.
func (s *Store[T, P]) Items() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store[T, P]) Get(id string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexOf(s.items, id); i >= 0 {
		return s.items[i], true
	}
	var zero T
	return zero, false
}

func (s *Store[T, P]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Store[T, P]) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Wait blocks until every remote call issued so far, and any reload it
// triggered, has settled.
func (s *Store[T, P]) Wait() {
	s.inflight.Wait()
}

func (s *Store[T, P]) reload(ctx context.Context) {
	if err := s.Load(ctx); err != nil {
		s.opts.logger.Warn("reload skipped", zap.String("collection", s.cfg.Name), zap.Error(err))
	}
}

// dispatch detaches the job from the caller's cancellation: a call in flight
// is never aborted by a later action.
func (s *Store[T, P]) dispatch(ctx context.Context, job func(context.Context)) {
	s.inflight.Add(1)
	s.opts.dispatcher.Submit(context.WithoutCancel(ctx), func(ctx context.Context) {
		defer s.inflight.Done()
		job(ctx)
	})
}

// withLocalCreates puts back, newest first, the creates a snapshot issued at
// seq issued may lack: those still pending and those confirmed after the
// load was issued. Creates confirmed before it are settled and forgotten.
// s.mu is held.
func (s *Store[T, P]) withLocalCreates(loaded []T, issued uint64) []T {
	var missing []*createRecord[T]
	for id, rec := range s.creates {
		if rec.confirmedAt != 0 && rec.confirmedAt < issued {
			delete(s.creates, id)
			continue
		}
		if indexOf(loaded, id) < 0 {
			missing = append(missing, rec)
		}
	}
	if len(missing) == 0 {
		return loaded
	}

	sort.Slice(missing, func(i, j int) bool { return missing[i].issuedAt > missing[j].issuedAt })
	out := make([]T, 0, len(missing)+len(loaded))
	for _, rec := range missing {
		out = append(out, rec.entity)
	}
	return append(out, loaded...)
}

func indexOf[T model.Entity[T]](items []T, id string) int {
	for i, e := range items {
		if e.EntityID() == id {
			return i
		}
	}
	return -1
}

func without[T model.Entity[T]](items []T, id string) []T {
	out := make([]T, 0, len(items))
	for _, e := range items {
		if e.EntityID() != id {
			out = append(out, e)
		}
	}
	return out
}

func ownedBy[T model.Entity[T]](items []T, owner string) []T {
	out := make([]T, 0, len(items))
	for _, e := range items {
		if e.Owner() == owner {
			out = append(out, e)
		}
	}
	return out
}
