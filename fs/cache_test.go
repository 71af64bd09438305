package fs_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/fwojciec/blame"
	"github.com/fwojciec/blame/fs"
	"github.com/fwojciec/blame/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var commit = blame.ObjectID{0xc0, 0xff, 0xee}

func sampleOutcome() *blame.Outcome {
	return &blame.Outcome{
		Entries: []blame.Entry{
			{StartInBlamed: 0, StartInSource: 0, Len: 1, Commit: commit},
			{StartInBlamed: 1, StartInSource: 3, Len: 2, Commit: blame.ObjectID{0x01}, OriginalPath: "old.go"},
			{StartInBlamed: 3, StartInSource: 3, Len: 1, Unblamable: true},
		},
		Blob:       []byte("a\nb\nc\nd\n"),
		Statistics: blame.Statistics{CommitsTraversed: 3, TreesDecoded: 4, TreesDiffed: 1, BlobsDiffed: 2},
	}
}

// countingService returns out and counts calls.
func countingService(out *blame.Outcome, calls *int) *mock.Service {
	return &mock.Service{
		BlameFn: func(context.Context, blame.ObjectID, string, blame.Options) (*blame.Outcome, error) {
			*calls++
			return out, nil
		},
	}
}

func TestCache_CacheMiss_DelegatesToInner(t *testing.T) {
	t.Parallel()

	calls := 0
	expected := sampleOutcome()
	cache := fs.NewCache(countingService(expected, &calls), t.TempDir())

	out, err := cache.Blame(context.Background(), commit, "a.go", blame.DefaultOptions())

	require.NoError(t, err)
	assert.Equal(t, 1, calls, "inner service should be called on cache miss")
	assert.Equal(t, expected, out)
}

func TestCache_CacheHit_ReturnsWithoutCallingInner(t *testing.T) {
	t.Parallel()

	calls := 0
	expected := sampleOutcome()
	cache := fs.NewCache(countingService(expected, &calls), t.TempDir())
	ctx := context.Background()

	_, err := cache.Blame(ctx, commit, "a.go", blame.DefaultOptions())
	require.NoError(t, err)

	out, err := cache.Blame(ctx, commit, "a.go", blame.DefaultOptions())

	require.NoError(t, err)
	assert.Equal(t, 1, calls, "second call should be served from the cache")
	assert.Equal(t, expected, out)
}

func TestCache_KeyCoversOptions(t *testing.T) {
	t.Parallel()

	ranges, err := blame.FromOneBasedRanges([2]int{1, 2})
	require.NoError(t, err)

	variants := map[string]func(*blame.Options){
		"algorithm": func(o *blame.Options) { o.Algorithm = blame.AlgorithmRatcliff },
		"ranges":    func(o *blame.Options) { o.Ranges = ranges },
		"since":     func(o *blame.Options) { o.Since = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) },
		"renames":   func(o *blame.Options) { o.FollowRenames = false },
		"threshold": func(o *blame.Options) { o.RenameThreshold = 0.9 },
		"ignore":    func(o *blame.Options) { o.Ignore = blame.NewRevisionSet(blame.ObjectID{0x02}) },
	}

	for name, modify := range variants {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			calls := 0
			cache := fs.NewCache(countingService(sampleOutcome(), &calls), t.TempDir())
			ctx := context.Background()

			_, err := cache.Blame(ctx, commit, "a.go", blame.DefaultOptions())
			require.NoError(t, err)

			opts := blame.DefaultOptions()
			modify(&opts)
			_, err = cache.Blame(ctx, commit, "a.go", opts)
			require.NoError(t, err)

			assert.Equal(t, 2, calls, "changing %s must miss the cache", name)
		})
	}
}

func TestCache_KeyCoversCommitAndPath(t *testing.T) {
	t.Parallel()

	calls := 0
	cache := fs.NewCache(countingService(sampleOutcome(), &calls), t.TempDir())
	ctx := context.Background()
	opts := blame.DefaultOptions()

	for _, call := range []struct {
		commit blame.ObjectID
		path   string
	}{
		{commit, "a.go"},
		{commit, "b.go"},
		{blame.ObjectID{0x02}, "a.go"},
	} {
		_, err := cache.Blame(ctx, call.commit, call.path, opts)
		require.NoError(t, err)
	}

	assert.Equal(t, 3, calls)
}

func TestCache_ZeroThresholdMatchesDefault(t *testing.T) {
	t.Parallel()

	calls := 0
	cache := fs.NewCache(countingService(sampleOutcome(), &calls), t.TempDir())
	ctx := context.Background()

	_, err := cache.Blame(ctx, commit, "a.go", blame.DefaultOptions())
	require.NoError(t, err)
	opts := blame.DefaultOptions()
	opts.RenameThreshold = 0
	_, err = cache.Blame(ctx, commit, "a.go", opts)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
}

func TestCache_InnerError_NotCached(t *testing.T) {
	t.Parallel()

	cacheDir := t.TempDir()
	calls := 0
	inner := &mock.Service{
		BlameFn: func(context.Context, blame.ObjectID, string, blame.Options) (*blame.Outcome, error) {
			calls++
			return nil, errors.New("repository unavailable")
		},
	}
	cache := fs.NewCache(inner, cacheDir)

	_, err1 := cache.Blame(context.Background(), commit, "a.go", blame.DefaultOptions())
	_, err2 := cache.Blame(context.Background(), commit, "a.go", blame.DefaultOptions())

	assert.Error(t, err1)
	assert.Error(t, err2)
	assert.Equal(t, 2, calls, "errors should not be cached")

	entries, err := os.ReadDir(cacheDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCache_CorruptEntry_Recomputes(t *testing.T) {
	t.Parallel()

	cacheDir := t.TempDir()
	calls := 0
	cache := fs.NewCache(countingService(sampleOutcome(), &calls), cacheDir)
	ctx := context.Background()

	_, err := cache.Blame(ctx, commit, "a.go", blame.DefaultOptions())
	require.NoError(t, err)

	files, err := filepath.Glob(filepath.Join(cacheDir, "*.json"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.NoError(t, os.WriteFile(files[0], []byte("{not json"), 0644))

	out, err := cache.Blame(ctx, commit, "a.go", blame.DefaultOptions())

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, sampleOutcome(), out)
}

func TestCache_CreatesCacheDir(t *testing.T) {
	t.Parallel()

	cacheDir := filepath.Join(t.TempDir(), "nested", "cache")
	calls := 0
	cache := fs.NewCache(countingService(sampleOutcome(), &calls), cacheDir)

	_, err := cache.Blame(context.Background(), commit, "a.go", blame.DefaultOptions())
	require.NoError(t, err)

	files, err := filepath.Glob(filepath.Join(cacheDir, "*.json"))
	require.NoError(t, err)
	assert.Len(t, files, 1)
	tmp, err := filepath.Glob(filepath.Join(cacheDir, "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, tmp, "temporary files are renamed into place")
}

func TestCache_WrapsBlamer(t *testing.T) {
	t.Parallel()

	repo := &mock.Repository{
		CommitFn: func(_ context.Context, id blame.ObjectID) (*blame.Commit, error) {
			return &blame.Commit{ID: id, Tree: blame.ObjectID{0x0e}}, nil
		},
		EntryByPathFn: func(context.Context, blame.ObjectID, string) (blame.ObjectID, bool, error) {
			return blame.ObjectID{0x0b}, true, nil
		},
		BlobFn: func(context.Context, blame.ObjectID) ([]byte, error) {
			return []byte("x\ny\n"), nil
		},
	}
	cache := fs.NewCache(blame.NewBlamer(repo, nil, nil), t.TempDir())
	ctx := context.Background()

	first, err := cache.Blame(ctx, commit, "a.go", blame.DefaultOptions())
	require.NoError(t, err)
	repo.BlobFn = func(context.Context, blame.ObjectID) ([]byte, error) {
		return nil, errors.New("must not be read on a cache hit")
	}
	second, err := cache.Blame(ctx, commit, "a.go", blame.DefaultOptions())

	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, []blame.Entry{{StartInBlamed: 0, StartInSource: 0, Len: 2, Commit: commit}}, second.Entries)
}

func TestDefaultCacheDir(t *testing.T) {
	t.Run("environment override", func(t *testing.T) {
		t.Setenv(fs.CacheDirEnv, "/tmp/blame-cache")

		assert.Equal(t, "/tmp/blame-cache", fs.DefaultCacheDir())
	})

	t.Run("user cache directory", func(t *testing.T) {
		t.Setenv(fs.CacheDirEnv, "")
		base, err := os.UserCacheDir()
		if err != nil {
			t.Skip("no user cache directory")
		}

		assert.Equal(t, filepath.Join(base, "blame"), fs.DefaultCacheDir())
	})

	t.Run("XDG cache home on linux", func(t *testing.T) {
		if runtime.GOOS != "linux" {
			t.Skip("XDG_CACHE_HOME is only consulted on linux")
		}
		t.Setenv(fs.CacheDirEnv, "")
		t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")

		assert.Equal(t, filepath.Join("/tmp/xdg", "blame"), fs.DefaultCacheDir())
	})
}
