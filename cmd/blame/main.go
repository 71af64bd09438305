package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	lg "github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/blame"
	"github.com/fwojciec/blame/bubbletea"
	"github.com/fwojciec/blame/chroma"
	"github.com/fwojciec/blame/clipboard"
	"github.com/fwojciec/blame/difflib"
	"github.com/fwojciec/blame/fs"
	"github.com/fwojciec/blame/git"
	"github.com/fwojciec/blame/gogit"
	"github.com/fwojciec/blame/jsonl"
	"github.com/fwojciec/blame/lipgloss"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ErrNoPaths is returned when no file to blame is given.
var ErrNoPaths = errors.New("no paths to blame")

// App encapsulates the application logic for testing.
type App struct {
	Stdout io.Writer

	Repo       blame.Repository
	Resolver   blame.Resolver
	Differ     blame.Differ
	Similarity blame.Similarity
	Formatter  blame.Formatter
	Viewer     blame.Viewer // When set, results are browsed instead of written
	Logger     logrus.FieldLogger

	Rev        string   // Revision to blame at
	IgnoreRevs []string // Revisions to look through, resolved with Resolver
	Paths      []string
	Options    blame.Options
	Jobs       int    // Maximum concurrent blames; zero or less means unlimited
	CacheDir   string // Directory for cached outcomes; empty disables caching
}

// Run blames every path concurrently and writes the outputs in argument order,
// or hands them to the Viewer. The first error cancels the remaining blames.
func (a *App) Run(ctx context.Context) error {
	if len(a.Paths) == 0 {
		return ErrNoPaths
	}
	rev := a.Rev
	if rev == "" {
		rev = "HEAD"
	}
	commit, err := a.Resolver.Resolve(rev)
	if err != nil {
		return err
	}

	opts := a.Options
	if len(a.IgnoreRevs) > 0 {
		ignore := blame.NewRevisionSet()
		for id := range opts.Ignore {
			ignore.Add(id)
		}
		for _, r := range a.IgnoreRevs {
			id, err := a.Resolver.Resolve(r)
			if err != nil {
				return fmt.Errorf("ignore revision: %w", err)
			}
			ignore.Add(id)
		}
		opts.Ignore = ignore
	}

	blamer := blame.NewBlamer(a.Repo, a.Differ, a.Similarity)
	blamer.Logger = a.Logger
	var svc blame.Service = blamer
	if a.CacheDir != "" {
		svc = fs.NewCache(blamer, a.CacheDir)
	}

	outputs := make([]bytes.Buffer, len(a.Paths))
	docs := make([]blame.Document, len(a.Paths))
	g, gctx := errgroup.WithContext(ctx)
	if a.Jobs > 0 {
		g.SetLimit(a.Jobs)
	}
	for i, path := range a.Paths {
		g.Go(func() error {
			out, err := svc.Blame(gctx, commit, path, opts)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			if a.Logger != nil {
				a.Logger.WithFields(logrus.Fields{
					"path":    path,
					"entries": len(out.Entries),
					"commits": out.Statistics.CommitsTraversed,
				}).Info("blamed")
			}
			docs[i] = blame.Document{Path: path, Outcome: out}
			if a.Viewer != nil {
				return nil
			}
			return a.Formatter.Format(&outputs[i], path, out)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if a.Viewer != nil {
		return a.Viewer.View(ctx, docs)
	}

	for i := range outputs {
		if _, err := outputs[i].WriteTo(a.Stdout); err != nil {
			return err
		}
	}
	return nil
}

// Resolvers tries each resolver in turn and returns the first success.
type Resolvers []blame.Resolver

// Resolve implements blame.Resolver.
func (rs Resolvers) Resolve(rev string) (blame.ObjectID, error) {
	var errs []error
	for _, r := range rs {
		id, err := r.Resolve(rev)
		if err == nil {
			return id, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return blame.ObjectID{}, fmt.Errorf("resolve %q: no resolver", rev)
	}
	return blame.ObjectID{}, errors.Join(errs...)
}

// Config holds the parsed command line.
type Config struct {
	RepoPath       string
	Rev            string
	Ranges         [][2]int
	Since          time.Time
	NoRenames      bool
	IgnoreRevs     []string
	IgnoreRevsFile string
	Algorithm      blame.Algorithm
	Format         string
	Theme          string
	Jobs           int
	Cache          bool
	Debug          bool
	Paths          []string
}

// ParseFlags parses the command line arguments, excluding the program name.
func ParseFlags(args []string) (*Config, error) {
	cfg := &Config{}
	flags := flag.NewFlagSet("blame", flag.ContinueOnError)
	flags.StringVar(&cfg.RepoPath, "C", ".", "Path inside the repository")
	flags.StringVar(&cfg.Rev, "rev", "HEAD", "Revision to blame at")
	flags.Func("L", "Blame only lines `N,M` or N,+K (1-based, repeatable)", func(s string) error {
		r, err := blame.ParseRange(s)
		if err != nil {
			return err
		}
		cfg.Ranges = append(cfg.Ranges, r)
		return nil
	})
	flags.Func("since", "Do not look past commits older than `date` (YYYY-MM-DD or RFC 3339)", func(s string) error {
		t, err := parseDate(s)
		if err != nil {
			return err
		}
		cfg.Since = t
		return nil
	})
	flags.BoolVar(&cfg.NoRenames, "no-renames", false, "Do not follow the file across renames")
	flags.Func("ignore-rev", "Attribute changes of `rev` to the commits before it (repeatable)", func(s string) error {
		cfg.IgnoreRevs = append(cfg.IgnoreRevs, s)
		return nil
	})
	flags.StringVar(&cfg.IgnoreRevsFile, "ignore-revs-file", "", "Read revisions to ignore from `file`")
	flags.Func("algorithm", "Line diff algorithm: myers or ratcliff", func(s string) error {
		algo, err := blame.ParseAlgorithm(s)
		if err != nil {
			return err
		}
		cfg.Algorithm = algo
		return nil
	})
	flags.StringVar(&cfg.Format, "format", "pretty", "Output format: pretty, porcelain, json or tui")
	flags.StringVar(&cfg.Theme, "theme", "dark", "Color theme for pretty output: dark or light")
	flags.IntVar(&cfg.Jobs, "jobs", runtime.NumCPU(), "Number of files blamed concurrently")
	flags.BoolVar(&cfg.Cache, "cache", false, "Reuse outcomes cached on disk by earlier runs")
	flags.BoolVar(&cfg.Debug, "debug", false, "Log traversal details to stderr")

	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	cfg.Paths = flags.Args()
	if len(cfg.Paths) == 0 {
		return nil, ErrNoPaths
	}
	switch cfg.Format {
	case "pretty", "porcelain", "json", "tui":
	default:
		return nil, fmt.Errorf("unknown format %q", cfg.Format)
	}
	switch cfg.Theme {
	case "dark", "light":
	default:
		return nil, fmt.Errorf("unknown theme %q", cfg.Theme)
	}
	return cfg, nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD or RFC 3339", s)
	}
	return t, nil
}

// Options maps the configuration onto blame options. Revisions named in the
// ignore file are read from r.
func (c *Config) Options(r io.Reader) (blame.Options, error) {
	opts := blame.DefaultOptions()
	opts.Algorithm = c.Algorithm
	opts.Since = c.Since
	opts.FollowRenames = !c.NoRenames
	ranges, err := blame.FromOneBasedRanges(c.Ranges...)
	if err != nil {
		return blame.Options{}, err
	}
	opts.Ranges = ranges
	if r != nil {
		ignore, err := blame.ParseIgnoreRevs(r)
		if err != nil {
			return blame.Options{}, fmt.Errorf("%s: %w", c.IgnoreRevsFile, err)
		}
		opts.Ignore = ignore
	}
	return opts, nil
}

// NewFormatter returns the formatter for the configured output format,
// styled for w.
func (c *Config) NewFormatter(w io.Writer) blame.Formatter {
	switch c.Format {
	case "porcelain":
		return &blame.PorcelainFormatter{}
	case "json":
		return jsonl.NewFormatter()
	}
	renderer := lg.NewRenderer(w)
	return lipgloss.NewFormatter(renderer, c.theme(), chroma.NewHighlighter(renderer.ColorProfile(), ""))
}

// NewViewer returns the interactive viewer for the tui format, or nil for
// the other formats.
func (c *Config) NewViewer(w io.Writer) blame.Viewer {
	if c.Format != "tui" {
		return nil
	}
	renderer := lg.NewRenderer(w)
	theme := c.theme()
	formatter := lipgloss.NewFormatter(renderer, theme, chroma.NewHighlighter(renderer.ColorProfile(), ""))
	return bubbletea.NewViewer(formatter, bubbletea.WithModelOptions(
		bubbletea.WithRenderer(renderer),
		bubbletea.WithTheme(theme),
		bubbletea.WithClipboard(clipboard.NewSystem()),
	))
}

func (c *Config) theme() *lipgloss.Theme {
	if c.Theme == "light" {
		return lipgloss.LightTheme()
	}
	return lipgloss.DarkTheme()
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := ParseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("%w\n\nUsage: blame [flags] path...", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.WarnLevel)
	if cfg.Debug {
		logger.SetLevel(logrus.DebugLevel)
	}

	runner := git.NewRunner(cfg.RepoPath)
	repo, err := gogit.Open(cfg.RepoPath)
	if err != nil {
		return err
	}
	top, prefix, err := worktree(ctx, runner, repo, cfg.RepoPath)
	if err != nil {
		return err
	}
	paths, err := RepoPaths(top, prefix, cfg.Paths)
	if err != nil {
		return err
	}

	if cfg.IgnoreRevsFile == "" {
		file, err := runner.IgnoreRevsFile(ctx)
		if err != nil {
			logger.WithError(err).Debug("reading blame.ignoreRevsFile")
		}
		cfg.IgnoreRevsFile = ConfiguredPath(top, file)
	}

	var ignoreFile io.Reader
	if cfg.IgnoreRevsFile != "" {
		f, err := os.Open(cfg.IgnoreRevsFile)
		if err != nil {
			return err
		}
		defer f.Close()
		ignoreFile = f
	}
	opts, err := cfg.Options(ignoreFile)
	if err != nil {
		return err
	}

	app := &App{
		Stdout:     os.Stdout,
		Repo:       repo,
		Resolver:   Resolvers{repo, runner},
		Differ:     difflib.NewDiffer(),
		Similarity: difflib.NewSimilarity(),
		Formatter:  cfg.NewFormatter(os.Stdout),
		Viewer:     cfg.NewViewer(os.Stdout),
		Logger:     logger,
		Rev:        cfg.Rev,
		IgnoreRevs: cfg.IgnoreRevs,
		Paths:      paths,
		Options:    opts,
		Jobs:       cfg.Jobs,
	}
	if cfg.Cache {
		app.CacheDir = fs.DefaultCacheDir()
	}
	return app.Run(ctx)
}

// ConfiguredPath resolves a path read from git config. Relative values are
// relative to the top of the work tree, not the current directory.
func ConfiguredPath(top, file string) string {
	if file == "" || filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(top, file)
}

// ErrOutsideRepository is returned for a path that leaves the work tree.
var ErrOutsideRepository = errors.New("path is outside the repository")

// RepoPaths converts paths given relative to the directory at prefix, or as
// absolute paths below top, into the slash separated form stored in trees.
func RepoPaths(top, prefix string, paths []string) ([]string, error) {
	out := make([]string, len(paths))
	for i, p := range paths {
		rel := strings.ReplaceAll(p, `\`, "/")
		if filepath.IsAbs(p) {
			r, err := filepath.Rel(top, p)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", p, ErrOutsideRepository)
			}
			rel = filepath.ToSlash(r)
		} else {
			rel = path.Join(prefix, rel)
		}
		rel = path.Clean(rel)
		if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") {
			return nil, fmt.Errorf("%s: %w", p, ErrOutsideRepository)
		}
		out[i] = rel
	}
	return out, nil
}

// worktree returns the top of the work tree containing dir and the prefix
// of dir below it. The git binary is asked first; go-git answers when it is
// missing. A bare repository has no work tree, so paths name tree entries
// directly.
func worktree(ctx context.Context, runner *git.Runner, repo *gogit.Repository, dir string) (top, prefix string, err error) {
	top, err = runner.TopLevel(ctx)
	if err == nil {
		prefix, err = runner.Prefix(ctx)
	}
	if err == nil {
		return top, prefix, nil
	}

	top, err = repo.Root()
	if err != nil {
		return dir, "", nil
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	if resolved, err := filepath.EvalSymlinks(top); err == nil {
		top = resolved
	}
	rel, err := filepath.Rel(top, abs)
	if err != nil {
		return "", "", err
	}
	if rel == "." {
		return top, "", nil
	}
	return top, filepath.ToSlash(rel) + "/", nil
}
