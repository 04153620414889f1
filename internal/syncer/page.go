package syncer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/notionsync/internal/content"
	"git.home.luguber.info/inful/notionsync/internal/events"
	"git.home.luguber.info/inful/notionsync/internal/frontmatter"
	"git.home.luguber.info/inful/notionsync/internal/linkcheck"
	"git.home.luguber.info/inful/notionsync/internal/logfields"
	"git.home.luguber.info/inful/notionsync/internal/metrics"
	"git.home.luguber.info/inful/notionsync/internal/notion"
	"git.home.luguber.info/inful/notionsync/internal/state"
)

// publishPage renders one page and writes it unless the stored fingerprint shows
// the same output is already on disk. prev, when set, is the page's current post:
// its images are dropped once the blocks are fetched and its file once the new
// post is written.
func (s *Syncer) publishPage(ctx context.Context, r *run, props notion.Properties, prev *state.PublishRecord) error {
	log := r.log.With(logfields.PageID(props.NotionID), logfields.Category(props.Category), logfields.Slug(props.Slug))

	path, err := s.posts.Path(props.Category, props.Slug)
	if err != nil {
		return err
	}
	blocks, err := s.source.FetchBlocks(ctx, props.NotionID)
	if err != nil {
		return err
	}
	if prev != nil && !s.dryRun {
		if err := s.images.Remove(prev.Slug); err != nil {
			log.Warn("Failed to remove previous images", logfields.Slug(prev.Slug), logfields.Error(err))
		}
	}

	var locations content.ImageLocations
	if !s.dryRun {
		locations = s.images.Localize(ctx, props.Slug, blocks)
		total := 0
		for _, b := range content.Images(blocks) {
			if b.Payload.(content.Image).URL() != "" {
				total++
			}
		}
		for i := range total {
			s.recorder.IncImage(i < len(locations))
		}
	}

	body := s.renderer.Document(blocks, locations)
	header := headerFor(props)
	fingerprint := fingerprintOf(header, body)
	moved := prev != nil && prev.FilePath != "" && prev.FilePath != path

	cached, ok, err := s.state.GetCache(ctx, props.NotionID)
	if err != nil {
		return err
	}
	if ok && !moved && cached.Fingerprint == fingerprint && s.posts.Exists(path) {
		log.Debug("Rendered output unchanged")
		s.skip(r)
		if !s.dryRun {
			cached.LastEditedTime = props.LastEditedTime
			cached.SyncedAt = s.now()
			return s.state.PutCache(ctx, cached)
		}
		return nil
	}

	report, err := linkcheck.AnalyzeString(body)
	if err != nil {
		log.Warn("Link analysis failed", logfields.Error(err))
	}
	for _, p := range report.Problems {
		log.Warn("Link problem", logfields.URL(p.URL), slog.String("reason", p.Reason))
	}

	r.report.Written++
	r.report.Files = append(r.report.Files, path)
	s.recorder.IncPage(metrics.PageWritten)
	if s.dryRun {
		log.Info("Would write post", logfields.Path(path), logfields.Title(props.Title))
		return nil
	}

	if _, err := s.posts.Write(header, body); err != nil {
		return err
	}
	now := s.now()
	if err := s.state.PutCache(ctx, state.CacheEntry{
		NotionID:       props.NotionID,
		LastEditedTime: props.LastEditedTime,
		Fingerprint:    fingerprint,
		SyncedAt:       now,
	}); err != nil {
		return err
	}
	if err := s.state.PutPublished(ctx, state.PublishRecord{
		NotionID:    props.NotionID,
		Slug:        props.Slug,
		Category:    props.Category,
		FilePath:    path,
		PublishedAt: now,
	}); err != nil {
		return err
	}
	if moved {
		if err := s.posts.Remove(prev.FilePath); err != nil {
			log.Warn("Failed to remove previous post", logfields.Path(prev.FilePath), logfields.Error(err))
		}
	}

	log.Info("Wrote post",
		logfields.Path(path),
		logfields.Title(props.Title),
		slog.Int("ctas", len(report.CTAs)),
		slog.Int("remote_images", len(report.RemoteImages)))
	s.emit(ctx, r, events.Event{
		Type:     events.PagePublished,
		NotionID: props.NotionID,
		Title:    props.Title,
		Slug:     props.Slug,
		Category: props.Category,
		Path:     path,
	})
	return nil
}

// fingerprintOf hashes the post without its edit timestamp, so a page that was
// touched in Notion but renders the same is not rewritten.
func fingerprintOf(h frontmatter.Header, body string) string {
	h.LastEditedTime = ""
	return mdfp.CalculateFingerprintFromParts(h.Marshal(), body)
}

func headerFor(props notion.Properties) frontmatter.Header {
	return frontmatter.Header{
		Title:          props.Title,
		Description:    props.Description,
		Category:       props.Category,
		ContentType:    props.ContentType,
		Slug:           props.Slug,
		Date:           props.Date,
		ReadTime:       props.ReadTime,
		Featured:       props.Featured,
		NotionID:       props.NotionID,
		LastEditedTime: props.LastEditedTime,
	}
}

// allocateSlug keeps an explicit Slug property. Otherwise the page keeps the slug
// it was last published under, and a new page gets its title slug made unique in
// the category with -2, -3, ... suffixes.
func (s *Syncer) allocateSlug(ctx context.Context, props notion.Properties) (string, error) {
	if props.SlugProvided {
		return props.Slug, nil
	}
	rec, ok, err := s.state.GetPublished(ctx, props.NotionID)
	if err != nil {
		return "", err
	}
	if ok && rec.Slug != "" && rec.Category == props.Category {
		return rec.Slug, nil
	}

	taken := map[string]bool{}
	recorded, err := s.state.SlugsInCategory(ctx, props.Category, props.NotionID)
	if err != nil {
		return "", err
	}
	for _, slug := range recorded {
		taken[slug] = true
	}
	files, err := s.posts.SlugsInCategory(props.Category)
	if err != nil {
		return "", err
	}
	for _, slug := range files {
		if taken[slug] {
			continue
		}
		// A file written for this page before the state was lost is still ours.
		path, err := s.posts.Path(props.Category, slug)
		if err != nil {
			taken[slug] = true
			continue
		}
		h, err := s.posts.ReadHeader(path)
		if err == nil && h.NotionID == props.NotionID {
			continue
		}
		taken[slug] = true
	}

	slug := props.Slug
	for n := 2; taken[slug]; n++ {
		slug = fmt.Sprintf("%s-%d", props.Slug, n)
	}
	return slug, nil
}
