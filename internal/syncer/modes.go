package syncer

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/notionsync/internal/events"
	"git.home.luguber.info/inful/notionsync/internal/foundation/errors"
	"git.home.luguber.info/inful/notionsync/internal/logfields"
	"git.home.luguber.info/inful/notionsync/internal/metrics"
	"git.home.luguber.info/inful/notionsync/internal/notion"
	"git.home.luguber.info/inful/notionsync/internal/posts"
)

// runScheduled publishes the oldest due page that has not been published yet.
func (s *Syncer) runScheduled(ctx context.Context, r *run) error {
	due, err := s.source.QueryDue(ctx, s.now())
	if err != nil {
		return err
	}

	var next *notion.Page
	for i := range due {
		_, published, err := s.state.GetPublished(ctx, due[i].ID)
		if err != nil {
			return err
		}
		if !published {
			next = &due[i]
			break
		}
	}
	if next == nil {
		r.log.Info("No due pages to publish", logfields.Count(len(due)))
		return nil
	}

	props := notion.ExtractProperties(*next, s.cfg.Notion.DefaultContentType)
	if !publishable(r.log.With(logfields.PageID(props.NotionID), logfields.Title(props.Title)), &props) {
		s.skip(r)
		return nil
	}
	props.Slug, err = s.allocateSlug(ctx, props)
	if err != nil {
		return err
	}
	return s.publishPage(ctx, r, props, nil)
}

// runWebhook applies a single page status change.
func (s *Syncer) runWebhook(ctx context.Context, r *run, pageID, status string) error {
	log := r.log.With(logfields.PageID(pageID), logfields.Status(status))

	switch status {
	case s.cfg.Notion.PublishedStatus:
		page, err := s.source.RetrievePage(ctx, pageID)
		if err != nil {
			return err
		}
		props := notion.ExtractProperties(page, s.cfg.Notion.DefaultContentType)
		if !publishable(log.With(logfields.Title(props.Title)), &props) {
			s.skip(r)
			return nil
		}
		props.Slug, err = s.allocateSlug(ctx, props)
		if err != nil {
			return err
		}
		prev, had, err := s.state.GetPublished(ctx, pageID)
		if err != nil {
			return err
		}
		if !had {
			return s.publishPage(ctx, r, props, nil)
		}
		return s.publishPage(ctx, r, props, &prev)

	case s.cfg.Notion.DeletedStatus:
		prev, had, err := s.state.GetPublished(ctx, pageID)
		if err != nil {
			return err
		}
		if !had {
			log.Info("No published post for deleted page")
			return nil
		}
		return s.unpublish(ctx, r, prev.NotionID, prev.Category, prev.Slug, prev.FilePath)

	default:
		log.Info("Ignoring page status")
		return nil
	}
}

// runManual mirrors every published page and removes posts that are no longer
// published.
func (s *Syncer) runManual(ctx context.Context, r *run) error {
	pages, err := s.source.QueryPublished(ctx)
	if err != nil {
		return err
	}
	r.log.Info("Fetched published pages", logfields.Count(len(pages)))

	s.progress.Start(len(pages))
	defer s.progress.Done()

	active := make(map[string]bool, len(pages))
	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		props := notion.ExtractProperties(page, s.cfg.Notion.DefaultContentType)
		s.progress.Advance(props.Title)

		if !publishable(r.log.With(logfields.PageID(props.NotionID), logfields.Title(props.Title)), &props) {
			s.skip(r)
			continue
		}
		props.Slug, err = s.allocateSlug(ctx, props)
		if err != nil {
			return err
		}
		active[posts.Key(props.Category, props.Slug)] = true

		unchanged, err := s.unchangedSinceLastSync(ctx, props)
		if err != nil {
			return err
		}
		if unchanged {
			r.log.Debug("Page unchanged", logfields.PageID(props.NotionID), logfields.Slug(props.Slug))
			s.skip(r)
			continue
		}

		if err := s.publishPage(ctx, r, props, nil); err != nil {
			if errors.HasCategory(err, errors.CategoryAuth) {
				return err
			}
			r.report.Failed++
			s.recorder.IncPage(metrics.PageFailed)
			r.log.Error("Failed to sync page",
				logfields.PageID(props.NotionID),
				logfields.Title(props.Title),
				logfields.Error(err))
		}
	}

	return s.removeDeletedPosts(ctx, r, active)
}

func (s *Syncer) unchangedSinceLastSync(ctx context.Context, props notion.Properties) (bool, error) {
	cached, ok, err := s.state.GetCache(ctx, props.NotionID)
	if err != nil || !ok {
		return false, err
	}
	if cached.LastEditedTime != props.LastEditedTime {
		return false, nil
	}
	path, err := s.posts.Path(props.Category, props.Slug)
	if err != nil {
		return false, err
	}
	return s.posts.Exists(path), nil
}

// publishable checks that the category and slug can name files below the posts
// directory. A Slug property that is not a single path element is re-derived
// like a title; a category that is not is refused.
func publishable(log *slog.Logger, props *notion.Properties) bool {
	switch {
	case props.Category == "":
		log.Warn("Page has no category; not publishing")
		return false
	case !posts.ValidName(props.Category):
		log.Warn("Page category is not a valid directory name; not publishing", logfields.Category(props.Category))
		return false
	}
	if !posts.ValidName(props.Slug) {
		slug := notion.Slugify(props.Slug, props.NotionID)
		log.Warn("Page slug is not a valid file name; using a derived slug", logfields.Slug(props.Slug), slog.String("derived", slug))
		props.Slug = slug
	}
	return true
}

// removeDeletedPosts deletes every post whose category/slug is not in active,
// along with its images and state.
func (s *Syncer) removeDeletedPosts(ctx context.Context, r *run, active map[string]bool) error {
	existing, err := s.posts.List()
	if err != nil {
		return err
	}
	records, err := s.state.ListPublished(ctx)
	if err != nil {
		return err
	}
	owner := make(map[string]string, len(records))
	for _, rec := range records {
		owner[posts.Key(rec.Category, rec.Slug)] = rec.NotionID
	}

	for _, e := range existing {
		if active[e.Key()] {
			continue
		}
		if err := s.unpublish(ctx, r, owner[e.Key()], e.Category, e.Slug, e.Path); err != nil {
			return err
		}
	}
	return nil
}

// unpublish removes a post, its images and its state. notionID may be empty for
// files without a publish record.
func (s *Syncer) unpublish(ctx context.Context, r *run, notionID, category, slug, path string) error {
	log := r.log.With(logfields.Category(category), logfields.Slug(slug))
	r.report.Deleted++
	r.report.Files = append(r.report.Files, path)
	s.recorder.IncPage(metrics.PageDeleted)
	if s.dryRun {
		log.Info("Would delete post", logfields.Path(path))
		return nil
	}

	if err := s.posts.Remove(path); err != nil {
		return err
	}
	if err := s.images.Remove(slug); err != nil {
		log.Warn("Failed to remove images", logfields.Error(err))
	}
	if notionID != "" {
		if err := s.state.DeletePublished(ctx, notionID); err != nil {
			return err
		}
		if err := s.state.DeleteCache(ctx, notionID); err != nil {
			return err
		}
	}
	log.Info("Deleted post", logfields.Path(path))
	s.emit(ctx, r, events.Event{
		Type:     events.PageDeleted,
		NotionID: notionID,
		Slug:     slug,
		Category: category,
		Path:     path,
	})
	return nil
}

func (s *Syncer) skip(r *run) {
	r.report.Skipped++
	s.recorder.IncPage(metrics.PageSkipped)
}

