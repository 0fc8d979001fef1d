package accountmap

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"buktitf/pkg/receipt"
)

// Store is the process-wide mapping cache. It loads lazily on first use;
// callers arriving while a load is in flight wait for it instead of starting
// another one.
type Store struct {
	src  Source
	repo Repository
	log  zerolog.Logger
	now  func() time.Time

	mu      sync.Mutex
	mapping *Mapping
	loading chan struct{}
	loads   int
}

// Option configures a Store.
type Option func(*Store)

// WithRepository persists upserts and merges stored pairs over the seed on load.
func WithRepository(r Repository) Option {
	return func(s *Store) { s.repo = r }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.log = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New returns a Store seeded from src (the embedded seed when src is nil).
func New(src Source, opts ...Option) *Store {
	if src == nil {
		src = EmbeddedSeed()
	}
	s := &Store{src: src, log: zerolog.Nop(), now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Loads reports how many loads have started since the store was created.
func (s *Store) Loads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loads
}

func (s *Store) ensureLoaded(ctx context.Context) (*Mapping, error) {
	s.mu.Lock()
	for {
		if s.mapping != nil {
			m := s.mapping
			s.mu.Unlock()
			return m, nil
		}
		if s.loading == nil {
			break
		}
		ch := s.loading
		s.mu.Unlock()
		select {
		case <-ch:
		case <-ctx.Done():
			return nil, fmt.Errorf("wait for mapping load: %w", ctx.Err())
		}
		s.mu.Lock()
	}
	ch := make(chan struct{})
	s.loading = ch
	s.loads++
	s.mu.Unlock()

	m := s.safeLoad(ctx)

	s.mu.Lock()
	s.mapping = m
	s.loading = nil
	s.mu.Unlock()
	close(ch)
	return m, nil
}

// safeLoad runs load and turns a panicking source or repository into the
// fallback mapping, so waiters are always released.
func (s *Store) safeLoad(ctx context.Context) (m *Mapping) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Msg("account mapping load panicked, using fallback mapping")
			m = fallbackMapping(s.now())
		}
	}()
	return s.load(ctx)
}

// load never fails: a broken seed degrades to the built-in fallback and a
// broken repository only loses the learned pairs.
func (s *Store) load(ctx context.Context) *Mapping {
	m, err := s.src.Load(ctx)
	if err == nil && (m == nil || m.NameToAccount == nil) {
		err = ErrEmptySeed
	}
	if err != nil {
		s.log.Warn().Err(err).Msg("account mapping seed unavailable, using fallback mapping")
		m = fallbackMapping(s.now())
	}
	if s.repo != nil {
		stored, err := s.repo.All(ctx)
		if err != nil {
			s.log.Warn().Err(err).Msg("account mapping repository unavailable, using seed only")
		}
		for k, v := range stored {
			m.NameToAccount[NormalizeName(k)] = v
		}
	}
	s.log.Info().
		Int("accounts", len(m.NameToAccount)).
		Str("version", m.Version).
		Str("last_updated", m.LastUpdated).
		Msg("account mapping loaded")
	return m
}

// Lookup returns the account learned for name.
func (s *Store) Lookup(ctx context.Context, name string) (string, bool) {
	key := NormalizeName(name)
	if key == "" {
		return "", false
	}
	m, err := s.ensureLoaded(ctx)
	if err != nil {
		return "", false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := m.NameToAccount[key]
	return acct, ok
}

// Upsert records name → account and bumps lastUpdated. The in-memory mapping
// is updated even when persisting to the repository fails.
func (s *Store) Upsert(ctx context.Context, name, account string) error {
	key := NormalizeName(name)
	account = strings.TrimSpace(account)
	if key == "" || account == "" {
		return ErrInvalidPair
	}
	m, err := s.ensureLoaded(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	m.NameToAccount[key] = account
	m.LastUpdated = s.now().Format(dateLayout)
	s.mu.Unlock()

	s.log.Info().Str("name", key).Str("account", account).Msg("account mapping upserted")
	if s.repo != nil {
		if err := s.repo.Save(ctx, key, account); err != nil {
			return fmt.Errorf("persist mapping %q: %w", key, err)
		}
	}
	return nil
}

// AutoSave learns the pair from a confirmed receipt. Placeholder values and
// pairs already known are skipped; saved reports whether anything changed.
func (s *Store) AutoSave(ctx context.Context, name, account string) (saved bool, err error) {
	if receipt.IsSentinelName(name) || receipt.IsSentinelAccount(account) {
		return false, nil
	}
	if cur, ok := s.Lookup(ctx, name); ok && cur == strings.TrimSpace(account) {
		return false, nil
	}
	if err := s.Upsert(ctx, name, account); err != nil {
		return false, err
	}
	return true, nil
}

// Reload drops the cache and loads again from the seed and repository.
func (s *Store) Reload(ctx context.Context) error {
	s.mu.Lock()
	for s.loading != nil {
		ch := s.loading
		s.mu.Unlock()
		select {
		case <-ch:
		case <-ctx.Done():
			return fmt.Errorf("wait for mapping load: %w", ctx.Err())
		}
		s.mu.Lock()
	}
	s.mapping = nil
	s.mu.Unlock()

	_, err := s.ensureLoaded(ctx)
	if err == nil {
		s.log.Info().Msg("account mapping reloaded")
	}
	return err
}

// All returns a copy of every known pair.
func (s *Store) All(ctx context.Context) (map[string]string, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.NameToAccount, nil
}

// Snapshot returns a copy of the whole document.
func (s *Store) Snapshot(ctx context.Context) (Mapping, error) {
	m, err := s.ensureLoaded(ctx)
	if err != nil {
		return Mapping{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return m.clone(), nil
}
