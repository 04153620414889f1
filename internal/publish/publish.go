// Package publish commits synced posts and images to the site repository and
// optionally pushes them.
package publish

import (
	"context"
	stderrors "errors"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"

	"git.home.luguber.info/inful/notionsync/internal/config"
	"git.home.luguber.info/inful/notionsync/internal/foundation/errors"
)

// Result describes what a Commit did.
type Result struct {
	Committed bool
	Hash      string
	Files     []string
	Pushed    bool
}

// Publisher stages changes below a set of directories and commits them.
type Publisher struct {
	repoDir string
	author  object.Signature
	push    bool
	remote  string
	auth    transport.AuthMethod
	now     func() time.Time
}

// Option customises a Publisher.
type Option func(*Publisher)

// WithAuth sets the transport auth used for push.
func WithAuth(auth transport.AuthMethod) Option {
	return func(p *Publisher) { p.auth = auth }
}

// TokenAuth returns HTTP basic auth carrying an access token, or nil for an empty token.
func TokenAuth(token string) transport.AuthMethod {
	if token == "" {
		return nil
	}
	return &githttp.BasicAuth{Username: "notionsync", Password: token}
}

func New(cfg config.GitPublishConfig, opts ...Option) *Publisher {
	p := &Publisher{
		repoDir: cfg.RepoDir,
		author:  object.Signature{Name: cfg.AuthorName, Email: cfg.AuthorEmail},
		push:    cfg.Push,
		remote:  cfg.Remote,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Commit stages every changed, new or deleted file below dirs and commits them with
// message. Changes outside dirs are left alone. Nothing is committed when dirs hold
// no changes.
func (p *Publisher) Commit(ctx context.Context, message string, dirs ...string) (Result, error) {
	repo, err := git.PlainOpenWithOptions(p.repoDir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return Result{}, errors.GitError("failed to open repository").WithCause(err).WithContext("path", p.repoDir).Build()
	}
	wt, err := repo.Worktree()
	if err != nil {
		return Result{}, errors.GitError("failed to get worktree").WithCause(err).Build()
	}

	prefixes, err := relativePrefixes(wt.Filesystem.Root(), dirs)
	if err != nil {
		return Result{}, err
	}

	status, err := wt.Status()
	if err != nil {
		return Result{}, errors.GitError("failed to read worktree status").WithCause(err).Build()
	}

	var staged []string
	for file, st := range status {
		if !underAny(file, prefixes) || st.Worktree == git.Unmodified {
			continue
		}
		if st.Worktree == git.Deleted {
			_, err = wt.Remove(file)
		} else {
			_, err = wt.Add(file)
		}
		if err != nil {
			return Result{}, errors.GitError("failed to stage file").WithCause(err).WithContext("path", file).Build()
		}
		staged = append(staged, file)
	}
	if len(staged) == 0 {
		return Result{}, nil
	}
	sort.Strings(staged)

	sig := p.author
	sig.When = p.now()
	hash, err := wt.Commit(message, &git.CommitOptions{Author: &sig})
	if err != nil {
		return Result{}, errors.GitError("failed to commit").WithCause(err).Build()
	}
	res := Result{Committed: true, Hash: hash.String(), Files: staged}
	slog.Info("Committed synced posts", "hash", hash.String()[:7], "files", len(staged))

	if !p.push {
		return res, nil
	}
	err = repo.PushContext(ctx, &git.PushOptions{RemoteName: p.remote, Auth: p.auth})
	if err != nil && !stderrors.Is(err, git.NoErrAlreadyUpToDate) {
		return res, errors.GitError("failed to push").
			WithCause(err).
			WithContext("remote", p.remote).
			Retryable().
			Build()
	}
	res.Pushed = true
	return res, nil
}

// relativePrefixes turns dirs into slash separated paths relative to root.
func relativePrefixes(root string, dirs []string) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.GitError("failed to resolve repository root").WithCause(err).Build()
	}
	prefixes := make([]string, 0, len(dirs))
	for _, d := range dirs {
		abs := d
		if !filepath.IsAbs(d) {
			abs = filepath.Join(absRoot, d)
		}
		rel, err := filepath.Rel(absRoot, abs)
		if err != nil || strings.HasPrefix(rel, "..") {
			return nil, errors.ValidationError("directory is outside the repository").
				WithContext("path", d).
				WithContext("repo", absRoot).
				Build()
		}
		prefixes = append(prefixes, filepath.ToSlash(rel))
	}
	return prefixes, nil
}

func underAny(file string, prefixes []string) bool {
	for _, p := range prefixes {
		if p == "." || file == p || strings.HasPrefix(file, p+"/") {
			return true
		}
	}
	return false
}
