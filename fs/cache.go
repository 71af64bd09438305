package fs

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fwojciec/blame"
)

// Compile-time interface verification.
var _ blame.Service = (*Cache)(nil)

// cacheVersion is part of every key; bump it when the outcome encoding or
// the attribution rules change.
const cacheVersion = 1

// Cache wraps a blame.Service with file-based caching. Outcomes are keyed by
// commit, path and options, which fully determine them.
type Cache struct {
	inner    blame.Service
	cacheDir string
}

// NewCache creates a new caching service.
func NewCache(inner blame.Service, cacheDir string) *Cache {
	return &Cache{
		inner:    inner,
		cacheDir: cacheDir,
	}
}

// Blame returns a cached outcome or delegates to the inner service.
func (c *Cache) Blame(ctx context.Context, commit blame.ObjectID, path string, opts blame.Options) (*blame.Outcome, error) {
	hash := hashKey(commit, path, opts)

	if cached, err := c.load(hash); err == nil {
		return cached, nil
	}

	out, err := c.inner.Blame(ctx, commit, path, opts)
	if err != nil {
		return nil, err
	}

	// Store in cache (best-effort)
	_ = c.save(hash, out)

	return out, nil
}

type cacheKey struct {
	Version         int
	Commit          blame.ObjectID
	Path            string
	Algorithm       string
	Ranges          []blame.Range
	Since           time.Time
	FollowRenames   bool
	RenameThreshold float64
	Ignore          []blame.ObjectID
}

func hashKey(commit blame.ObjectID, path string, opts blame.Options) string {
	ignore := make([]blame.ObjectID, 0, opts.Ignore.Len())
	for id := range opts.Ignore {
		ignore = append(ignore, id)
	}
	sort.Slice(ignore, func(i, j int) bool {
		return bytes.Compare(ignore[i][:], ignore[j][:]) < 0
	})
	threshold := opts.RenameThreshold
	if threshold <= 0 {
		threshold = blame.DefaultRenameThreshold
	}
	data, _ := json.Marshal(cacheKey{
		Version:         cacheVersion,
		Commit:          commit,
		Path:            path,
		Algorithm:       opts.Algorithm.String(),
		Ranges:          opts.Ranges.Ranges(),
		Since:           opts.Since.UTC(),
		FollowRenames:   opts.FollowRenames,
		RenameThreshold: threshold,
		Ignore:          ignore,
	})
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func (c *Cache) cachePath(hash string) string {
	return filepath.Join(c.cacheDir, hash+".json")
}

func (c *Cache) load(hash string) (*blame.Outcome, error) {
	data, err := os.ReadFile(c.cachePath(hash))
	if err != nil {
		return nil, err
	}

	var out blame.Outcome
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

// save writes through a temporary file so concurrent readers never see a
// partial outcome.
func (c *Cache) save(hash string, out *blame.Outcome) error {
	if err := os.MkdirAll(c.cacheDir, 0755); err != nil {
		return err
	}

	data, err := json.Marshal(out)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(c.cacheDir, hash+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), c.cachePath(hash))
}
