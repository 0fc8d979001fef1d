package accountmap

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 7, 25, 9, 0, 0, 0, time.UTC)

func staticSource(pairs map[string]string) Source {
	return SourceFunc(func(context.Context) (*Mapping, error) {
		m := &Mapping{NameToAccount: map[string]string{}, LastUpdated: "2025-01-01", Version: "test"}
		for k, v := range pairs {
			m.NameToAccount[k] = v
		}
		return m, nil
	})
}

func newTestStore(src Source, opts ...Option) *Store {
	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	return New(src, opts...)
}

func TestEmbeddedSeedLoads(t *testing.T) {
	s := New(nil)
	acct, ok := s.Lookup(context.Background(), "yulia ningsih")
	require.True(t, ok)
	assert.Equal(t, "***********8532", acct)

	snap, err := s.Snapshot(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, fallbackVersion, snap.Version)
}

func TestLookupNormalizesKeys(t *testing.T) {
	s := newTestStore(staticSource(map[string]string{"SITI AMINAH": "6603 0103 5831539"}))
	ctx := context.Background()

	for _, name := range []string{"SITI AMINAH", "siti aminah", "  Siti   Aminah ", "SITI\tAMINAH"} {
		acct, ok := s.Lookup(ctx, name)
		assert.True(t, ok, name)
		assert.Equal(t, "6603 0103 5831539", acct, name)
	}
	_, ok := s.Lookup(ctx, "")
	assert.False(t, ok)
}

func TestUpsertThenLookup(t *testing.T) {
	s := newTestStore(staticSource(nil))
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, "  dewi   lestari", "0291883451"))
	acct, ok := s.Lookup(ctx, "DEWI LESTARI")
	require.True(t, ok)
	assert.Equal(t, "0291883451", acct)

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2025-07-25", snap.LastUpdated)

	assert.ErrorIs(t, s.Upsert(ctx, " ", "123"), ErrInvalidPair)
	assert.ErrorIs(t, s.Upsert(ctx, "A NAME", ""), ErrInvalidPair)
}

func TestConcurrentFirstUseLoadsOnce(t *testing.T) {
	var calls int32
	release := make(chan struct{})
	src := SourceFunc(func(context.Context) (*Mapping, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return &Mapping{NameToAccount: map[string]string{"BUDI SANTOSO": "1670903504"}, Version: "slow"}, nil
	})
	s := newTestStore(src)

	const n = 32
	var wg sync.WaitGroup
	results := make([]string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = s.Lookup(context.Background(), "budi santoso")
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, 1, s.Loads())
	for _, r := range results {
		assert.Equal(t, "1670903504", r)
	}
}

func TestWaitingCallerHonoursContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	src := SourceFunc(func(context.Context) (*Mapping, error) {
		<-release
		return &Mapping{NameToAccount: map[string]string{}}, nil
	})
	s := newTestStore(src)

	go s.Lookup(context.Background(), "X")
	require.Eventually(t, func() bool { return s.Loads() == 1 }, time.Second, time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := s.All(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSeedFailureFallsBack(t *testing.T) {
	var buf bytes.Buffer
	src := SourceFunc(func(context.Context) (*Mapping, error) { return nil, errors.New("seed missing") })
	s := newTestStore(src, WithLogger(zerolog.New(&buf)))

	acct, ok := s.Lookup(context.Background(), "Yulia Ningsih")
	require.True(t, ok)
	assert.Equal(t, "***********8532", acct)

	snap, err := s.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fallbackVersion, snap.Version)
	assert.Equal(t, "2025-07-25", snap.LastUpdated)
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("using fallback mapping")))
}

func TestPanickingSourceReleasesCallers(t *testing.T) {
	var buf bytes.Buffer
	release := make(chan struct{})
	src := SourceFunc(func(context.Context) (*Mapping, error) {
		<-release
		panic("corrupt seed")
	})
	s := newTestStore(src, WithLogger(zerolog.New(&buf)))

	const n = 8
	var wg sync.WaitGroup
	results := make([]string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			results[i], _ = s.Lookup(ctx, "yulia ningsih")
		}(i)
	}
	require.Eventually(t, func() bool { return s.Loads() == 1 }, time.Second, time.Millisecond)
	close(release)
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, "***********8532", r)
	}
	assert.Equal(t, 1, s.Loads())
	assert.Contains(t, buf.String(), "account mapping load panicked")

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, fallbackVersion, snap.Version)
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mapping.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"nameToAccount":{"rina kusuma":"1370012345678"},"lastUpdated":"2025-07-01","version":"2"}`), 0o644))

	s := newTestStore(FileSource(path))
	acct, ok := s.Lookup(context.Background(), "RINA KUSUMA")
	require.True(t, ok)
	assert.Equal(t, "1370012345678", acct)

	_, err := FileSource(filepath.Join(dir, "missing.json")).Load(context.Background())
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`{"version":"3"}`), 0o644))
	_, err = FileSource(path).Load(context.Background())
	assert.ErrorIs(t, err, ErrEmptySeed)
}

func TestReloadDropsInMemoryChanges(t *testing.T) {
	s := newTestStore(staticSource(map[string]string{"A B C": "111"}))
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, "NEW NAME", "999"))
	require.NoError(t, s.Reload(ctx))

	_, ok := s.Lookup(ctx, "NEW NAME")
	assert.False(t, ok)
	assert.Equal(t, 2, s.Loads())
}

func TestAutoSave(t *testing.T) {
	s := newTestStore(staticSource(map[string]string{"YULIA NINGSIH": "***********8532"}))
	ctx := context.Background()

	saved, err := s.AutoSave(ctx, "YULIA NINGSIH", "***********8532")
	require.NoError(t, err)
	assert.False(t, saved, "identical pair")

	saved, err = s.AutoSave(ctx, "NAMA PENERIMA", "123456")
	require.NoError(t, err)
	assert.False(t, saved, "placeholder name")

	saved, err = s.AutoSave(ctx, "DEWI LESTARI", "NOMOR REKENING")
	require.NoError(t, err)
	assert.False(t, saved, "placeholder account")

	saved, err = s.AutoSave(ctx, "dewi lestari", "0291883451")
	require.NoError(t, err)
	assert.True(t, saved)

	saved, err = s.AutoSave(ctx, "YULIA NINGSIH", "6603 0103 5831539")
	require.NoError(t, err)
	assert.True(t, saved, "changed account")

	all, err := s.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"YULIA NINGSIH": "6603 0103 5831539",
		"DEWI LESTARI":  "0291883451",
	}, all)
}

func TestAllReturnsCopy(t *testing.T) {
	s := newTestStore(staticSource(map[string]string{"A B C": "111"}))
	all, err := s.All(context.Background())
	require.NoError(t, err)
	all["A B C"] = "tampered"

	acct, _ := s.Lookup(context.Background(), "A B C")
	assert.Equal(t, "111", acct)
}
