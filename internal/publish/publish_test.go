package publish

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/notionsync/internal/config"
	"git.home.luguber.info/inful/notionsync/internal/foundation/errors"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func headTree(t *testing.T, dir string) *object.Tree {
	t.Helper()
	repo, err := git.PlainOpen(dir)
	require.NoError(t, err)
	ref, err := repo.Head()
	require.NoError(t, err)
	commit, err := repo.CommitObject(ref.Hash())
	require.NoError(t, err)
	tree, err := commit.Tree()
	require.NoError(t, err)
	return tree
}

func newPublisher(dir string) *Publisher {
	p := New(config.GitPublishConfig{
		Enabled:     true,
		RepoDir:     dir,
		AuthorName:  "sync bot",
		AuthorEmail: "bot@example.com",
	})
	p.now = func() time.Time { return time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC) }
	return p
}

func TestCommitStagesOnlyManagedDirs(t *testing.T) {
	dir := t.TempDir()
	_, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	writeFile(t, filepath.Join(dir, "posts", "tech", "hello.md"), "hello")
	writeFile(t, filepath.Join(dir, "images", "hello", "0.png"), "png")
	writeFile(t, filepath.Join(dir, "notes.txt"), "unrelated")

	p := newPublisher(dir)
	res, err := p.Commit(t.Context(), "sync: hello", "posts", filepath.Join(dir, "images"))
	require.NoError(t, err)
	assert.True(t, res.Committed)
	assert.False(t, res.Pushed)
	assert.Equal(t, []string{"images/hello/0.png", "posts/tech/hello.md"}, res.Files)
	assert.Len(t, res.Hash, 40)

	tree := headTree(t, dir)
	_, err = tree.File("posts/tech/hello.md")
	require.NoError(t, err)
	_, err = tree.File("notes.txt")
	require.ErrorIs(t, err, object.ErrFileNotFound)

	repo, err := git.PlainOpen(dir)
	require.NoError(t, err)
	ref, err := repo.Head()
	require.NoError(t, err)
	commit, err := repo.CommitObject(ref.Hash())
	require.NoError(t, err)
	assert.Equal(t, "sync bot", commit.Author.Name)
	assert.Equal(t, "bot@example.com", commit.Author.Email)
	assert.Equal(t, "sync: hello", commit.Message)
}

func TestCommitWithoutChanges(t *testing.T) {
	dir := t.TempDir()
	_, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	writeFile(t, filepath.Join(dir, "posts", "a.md"), "a")

	p := newPublisher(dir)
	_, err = p.Commit(t.Context(), "first", "posts")
	require.NoError(t, err)

	res, err := p.Commit(t.Context(), "second", "posts")
	require.NoError(t, err)
	assert.False(t, res.Committed)
	assert.Empty(t, res.Files)
}

func TestCommitRecordsDeletions(t *testing.T) {
	dir := t.TempDir()
	_, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	writeFile(t, filepath.Join(dir, "posts", "a.md"), "a")
	writeFile(t, filepath.Join(dir, "posts", "b.md"), "b")

	p := newPublisher(dir)
	_, err = p.Commit(t.Context(), "add", "posts")
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(dir, "posts", "a.md")))
	res, err := p.Commit(t.Context(), "remove a", "posts")
	require.NoError(t, err)
	assert.True(t, res.Committed)
	assert.Equal(t, []string{"posts/a.md"}, res.Files)

	tree := headTree(t, dir)
	_, err = tree.File("posts/a.md")
	require.ErrorIs(t, err, object.ErrFileNotFound)
	_, err = tree.File("posts/b.md")
	require.NoError(t, err)
}

func TestCommitErrors(t *testing.T) {
	t.Run("not a repository", func(t *testing.T) {
		p := newPublisher(t.TempDir())
		_, err := p.Commit(t.Context(), "msg", "posts")
		require.Error(t, err)
		assert.True(t, errors.HasCategory(err, errors.CategoryGit))
	})

	t.Run("directory outside repository", func(t *testing.T) {
		dir := t.TempDir()
		_, err := git.PlainInit(dir, false)
		require.NoError(t, err)
		p := newPublisher(dir)
		_, err = p.Commit(t.Context(), "msg", "../elsewhere")
		require.Error(t, err)
		assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
	})
}

func TestCommitPushesToRemote(t *testing.T) {
	remoteDir := t.TempDir()
	_, err := git.PlainInit(remoteDir, true)
	require.NoError(t, err)

	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	_, err = repo.CreateRemote(&gitconfig.RemoteConfig{Name: "origin", URLs: []string{remoteDir}})
	require.NoError(t, err)

	writeFile(t, filepath.Join(dir, "posts", "a.md"), "a")
	p := newPublisher(dir)
	p.push = true
	p.remote = "origin"

	res, err := p.Commit(t.Context(), "add", "posts")
	require.NoError(t, err)
	assert.True(t, res.Pushed)

	remote, err := git.PlainOpen(remoteDir)
	require.NoError(t, err)
	_, err = remote.CommitObject(plumbing.NewHash(res.Hash))
	require.NoError(t, err)
}

func TestTokenAuth(t *testing.T) {
	assert.Nil(t, TokenAuth(""))
	assert.NotNil(t, TokenAuth("secret"))
}
