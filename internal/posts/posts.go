// Package posts writes rendered pages as post files laid out as
// <posts_dir>/<category>/<slug>.md.
package posts

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"git.home.luguber.info/inful/notionsync/internal/foundation/errors"
	"git.home.luguber.info/inful/notionsync/internal/frontmatter"
)

const ext = ".md"

// Entry is one post file on disk.
type Entry struct {
	Category string
	Slug     string
	Path     string
}

// Key returns "category/slug".
func (e Entry) Key() string {
	return Key(e.Category, e.Slug)
}

// Key builds the identity of a post within the posts directory.
func Key(category, slug string) string {
	return category + "/" + slug
}

// Compose joins the header and the rendered body into the file content.
func Compose(h frontmatter.Header, body string) string {
	return h.Marshal() + "\n\n" + body + "\n"
}

// Store manages post files under a root directory.
type Store struct {
	root string
}

func NewStore(root string) *Store {
	return &Store{root: root}
}

// Root returns the posts directory.
func (s *Store) Root() string { return s.root }

// ValidName reports whether name can be used as a single path element: not
// empty, not . or .., and free of separators.
func ValidName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, `/\`+"\x00")
}

// Path returns the file path of a post. Category and slug must be valid names and
// the result must stay below the root.
func (s *Store) Path(category, slug string) (string, error) {
	if !ValidName(category) || !ValidName(slug) {
		return "", errors.ValidationError("invalid post category or slug").
			WithContext("category", category).
			WithContext("slug", slug).
			Build()
	}
	path := filepath.Join(s.root, category, slug+ext)
	if !s.contains(path) {
		return "", errors.ValidationError("post path escapes the posts directory").WithContext("path", path).Build()
	}
	return path, nil
}

// contains reports whether path lies strictly below the root.
func (s *Store) contains(path string) bool {
	root, err := filepath.Abs(s.root)
	if err != nil {
		return false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Write stores the composed post and returns its path.
func (s *Store) Write(h frontmatter.Header, body string) (string, error) {
	if h.Category == "" || h.Slug == "" {
		return "", errors.ValidationError("post needs a category and a slug").
			WithContext("notion_id", h.NotionID).
			Build()
	}
	path, err := s.Path(h.Category, h.Slug)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", errors.FileSystemError("failed to create category directory").WithCause(err).WithContext("path", path).Build()
	}
	if err := os.WriteFile(path, []byte(Compose(h, body)), 0o644); err != nil {
		return "", errors.FileSystemError("failed to write post").WithCause(err).WithContext("path", path).Build()
	}
	return path, nil
}

// Exists reports whether a post file exists at path.
func (s *Store) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Remove deletes a post file below the root. A missing file is not an error.
func (s *Store) Remove(path string) error {
	if !s.contains(path) {
		return errors.ValidationError("refusing to remove a file outside the posts directory").WithContext("path", path).Build()
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.FileSystemError("failed to remove post").WithCause(err).WithContext("path", path).Build()
	}
	return nil
}

// List returns the posts found one directory level below the root, sorted by key.
// A missing root yields no entries.
func (s *Store) List() ([]Entry, error) {
	categories, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.FileSystemError("failed to read posts directory").WithCause(err).WithContext("path", s.root).Build()
	}

	var entries []Entry
	for _, c := range categories {
		if !c.IsDir() {
			continue
		}
		dir := filepath.Join(s.root, c.Name())
		files, err := os.ReadDir(dir)
		if err != nil {
			return nil, errors.FileSystemError("failed to read category directory").WithCause(err).WithContext("path", dir).Build()
		}
		for _, f := range files {
			if f.IsDir() || !strings.HasSuffix(f.Name(), ext) {
				continue
			}
			entries = append(entries, Entry{
				Category: c.Name(),
				Slug:     strings.TrimSuffix(f.Name(), ext),
				Path:     filepath.Join(dir, f.Name()),
			})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key() < entries[j].Key() })
	return entries, nil
}

// SlugsInCategory returns the slugs of the post files of one category.
func (s *Store) SlugsInCategory(category string) ([]string, error) {
	if !ValidName(category) {
		return nil, errors.ValidationError("invalid post category").WithContext("category", category).Build()
	}
	dir := filepath.Join(s.root, category)
	files, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.FileSystemError("failed to list category").WithCause(err).WithContext("path", dir).Build()
	}
	var slugs []string
	for _, f := range files {
		if !f.IsDir() && strings.HasSuffix(f.Name(), ext) {
			slugs = append(slugs, strings.TrimSuffix(f.Name(), ext))
		}
	}
	return slugs, nil
}

// ReadHeader parses the header of an existing post file.
func (s *Store) ReadHeader(path string) (frontmatter.Header, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return frontmatter.Header{}, errors.FileSystemError("failed to read post").WithCause(err).WithContext("path", path).Build()
	}
	h, err := frontmatter.ParseHeader(data)
	if err != nil {
		return frontmatter.Header{}, errors.WrapError(err, errors.CategoryValidation, "invalid post header").
			WithContext("path", path).
			Build()
	}
	return h, nil
}

// ReadBody returns the rendered body of a post without its header.
func (s *Store) ReadBody(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.FileSystemError("failed to read post").WithCause(err).WithContext("path", path).Build()
	}
	_, body, _, err := frontmatter.Split(data)
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryValidation, "invalid post header").WithContext("path", path).Build()
	}
	return string(body), nil
}
