package query

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// Status is the fetch state of a cache entry.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	}
	return "unknown"
}

// Key is the deterministic composite of an operation name and its parameter
// tuple, e.g. "leaveRequests/EMP-0001".
type Key string

func NewKey(op string, args ...string) Key {
	if len(args) == 0 {
		return Key(op)
	}
	return Key(op + "/" + strings.Join(args, "/"))
}

// Matches reports whether the key falls under the given prefix. A prefix
// matches itself and every key nested below it.
func (k Key) Matches(prefix Key) bool {
	if k == prefix {
		return true
	}
	return strings.HasPrefix(string(k), string(prefix)+"/")
}

// Options control a single read request.
type Options struct {
	// Enabled gates fetching. A disabled read returns whatever is cached and
	// never calls the fetcher; collaborators use this to suppress queries
	// until the connection binding is ready.
	Enabled bool
	// Retry is the number of extra attempts after a failed fetch. Profile and
	// role reads keep the default of zero: repeated failures there indicate a
	// structural precondition, not a transient fault.
	Retry int
}

var DefaultOptions = Options{Enabled: true}

// Fetcher loads the value for a key from the remote service.
type Fetcher func(ctx context.Context) (any, error)

// Result is a point-in-time snapshot of a cache entry.
type Result struct {
	Key           Key
	Status        Status
	Value         any
	Err           error
	Stale         bool
	LastFetchedAt time.Time
}

// As extracts a typed value from a result.
func As[T any](res Result) (T, bool) {
	v, ok := res.Value.(T)
	return v, ok
}

type entry struct {
	status     Status
	value      any
	err        error
	stale      bool
	fetchedAt  time.Time
	generation uint64
	applied    uint64
	observers  int
	fetcher    Fetcher
	opts       Options
}

// Store is the process-wide query cache. All mutation of a key goes through
// Get's fetch path or Invalidate; collaborators never overwrite entries
// directly.
type Store struct {
	mu      sync.Mutex
	entries map[Key]*entry
	flight  singleflight.Group
	log     *slog.Logger
	now     func() time.Time

	hits        uint64
	misses      uint64
	dedups      uint64
	refetches   uint64
	invalidated uint64
}

func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		entries: make(map[Key]*entry),
		log:     logger,
		now:     time.Now,
	}
}

func (s *Store) ensure(key Key) *entry {
	e, ok := s.entries[key]
	if !ok {
		e = &entry{}
		s.entries[key] = e
	}
	return e
}

func (s *Store) snapshot(key Key, e *entry) Result {
	return Result{
		Key:           key,
		Status:        e.status,
		Value:         e.value,
		Err:           e.err,
		Stale:         e.stale,
		LastFetchedAt: e.fetchedAt,
	}
}

// Get returns the cached value for key, fetching it if missing or stale.
// Concurrent reads for the same key share a single in-flight fetch; late
// joiners attach to the pending result. The returned error is the fetch
// error, if any; the result still carries the last successful value.
func (s *Store) Get(ctx context.Context, key Key, fetch Fetcher, opts Options) (Result, error) {
	s.mu.Lock()
	e := s.ensure(key)
	if fetch != nil {
		e.fetcher = fetch
		e.opts = opts
	}
	if !opts.Enabled || fetch == nil {
		res := s.snapshot(key, e)
		s.mu.Unlock()
		return res, nil
	}
	if e.status == StatusSuccess && !e.stale {
		atomic.AddUint64(&s.hits, 1)
		res := s.snapshot(key, e)
		s.mu.Unlock()
		return res, nil
	}
	gen := e.generation
	if e.status != StatusSuccess {
		e.status = StatusLoading
	}
	s.mu.Unlock()

	// The generation is part of the flight key so a fetch issued after an
	// invalidation never joins a pre-invalidation flight.
	flightKey := fmt.Sprintf("%s#%d", key, gen)
	_, err, shared := s.flight.Do(flightKey, func() (any, error) {
		return s.fetchAndApply(ctx, key, gen, fetch, opts)
	})
	if shared {
		atomic.AddUint64(&s.dedups, 1)
	} else {
		atomic.AddUint64(&s.misses, 1)
	}

	s.mu.Lock()
	res := s.snapshot(key, s.ensure(key))
	s.mu.Unlock()
	return res, err
}

func (s *Store) fetchAndApply(ctx context.Context, key Key, gen uint64, fetch Fetcher, opts Options) (any, error) {
	// In-flight fetches are never force-cancelled, only de-referenced: a
	// completed fetch still populates the cache for future readers.
	fctx := context.WithoutCancel(ctx)

	var value any
	var err error
	for attempt := 0; ; attempt++ {
		value, err = fetch(fctx)
		if err == nil || attempt >= opts.Retry {
			break
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		// Cache cleared mid-flight; drop the result.
		return value, err
	}
	if err != nil {
		if e.generation == gen {
			e.status = StatusError
			e.err = err
			// Last successful value is preserved (stale-while-error).
		}
		return nil, err
	}
	if gen >= e.applied {
		e.value = value
		e.err = nil
		e.status = StatusSuccess
		e.fetchedAt = s.now()
		e.applied = gen
		// A fetch overtaken by an invalidation keeps the entry stale so the
		// next read refetches.
		e.stale = e.generation != gen
	}
	return value, nil
}

// Peek returns the current snapshot without triggering a fetch.
func (s *Store) Peek(key Key) Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return Result{Key: key, Status: StatusIdle}
	}
	return s.snapshot(key, e)
}

// Subscribe marks the key as observed by a live reader. Observed entries are
// refetched in the background when invalidated. The returned release func is
// idempotent.
func (s *Store) Subscribe(key Key) func() {
	s.mu.Lock()
	e := s.ensure(key)
	e.observers++
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			if e, ok := s.entries[key]; ok && e.observers > 0 {
				e.observers--
			}
			s.mu.Unlock()
		})
	}
}

// Invalidate marks every entry under the prefix stale and schedules a
// background refetch for entries with live observers.
func (s *Store) Invalidate(prefix Key) {
	type job struct {
		key   Key
		fetch Fetcher
		opts  Options
	}
	var jobs []job

	s.mu.Lock()
	for k, e := range s.entries {
		if !k.Matches(prefix) {
			continue
		}
		e.generation++
		e.stale = true
		atomic.AddUint64(&s.invalidated, 1)
		if e.observers > 0 && e.fetcher != nil {
			jobs = append(jobs, job{key: k, fetch: e.fetcher, opts: e.opts})
		}
	}
	s.mu.Unlock()

	for _, j := range jobs {
		go func(j job) {
			atomic.AddUint64(&s.refetches, 1)
			if _, err := s.Get(context.Background(), j.key, j.fetch, j.opts); err != nil {
				s.log.Debug("background refetch failed", "key", string(j.key), "error", err)
			}
		}(j)
	}
}

// Clear drops every entry. Used when the identity changes: cached snapshots
// belong to the previous caller.
func (s *Store) Clear() {
	s.mu.Lock()
	s.entries = make(map[Key]*entry)
	s.mu.Unlock()
}

// Stats returns cache counters for diagnostics.
func (s *Store) Stats() map[string]any {
	return map[string]any{
		"hits":        atomic.LoadUint64(&s.hits),
		"misses":      atomic.LoadUint64(&s.misses),
		"dedups":      atomic.LoadUint64(&s.dedups),
		"refetches":   atomic.LoadUint64(&s.refetches),
		"invalidated": atomic.LoadUint64(&s.invalidated),
	}
}
