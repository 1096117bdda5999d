package scraper

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/anonto42/tooth-fae/backend/internal/models"
	"github.com/anonto42/tooth-fae/backend/internal/sanitizer"
	"github.com/gocolly/colly/v2"
	"github.com/rs/zerolog"
)

// DefaultContentSelector picks the game container on the source sites
const DefaultContentSelector = ".game-content"

// Options configures a Scraper
type Options struct {
	ContentSelector string
	UserAgent       string
	Timeout         time.Duration
}

// Scraper fetches third-party game pages and turns them into sanitized
// content artifacts
type Scraper struct {
	opts Options
	log  zerolog.Logger
	now  func() time.Time
}

// New creates a Scraper, filling in defaults for empty options
func New(opts Options, log zerolog.Logger) *Scraper {
	if opts.ContentSelector == "" {
		opts.ContentSelector = DefaultContentSelector
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "ToothFaeBot/1.0 (+https://toothfae.example)"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	return &Scraper{opts: opts, log: log, now: time.Now}
}

type pageMeta struct {
	title         string
	ogTitle       string
	description   string
	ogDescription string
	image         string
	tags          []string
	content       string
	body          string
}

// Fetch downloads pageURL and returns its artifact together with every
// sanitizer stage. An empty slug is derived from the URL path.
func (s *Scraper) Fetch(ctx context.Context, pageURL, slug string) (*models.GameContent, sanitizer.ScrapedGameRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, sanitizer.ScrapedGameRecord{}, err
	}
	if slug == "" {
		slug = SlugFromURL(pageURL)
	}
	if slug == "" {
		return nil, sanitizer.ScrapedGameRecord{}, fmt.Errorf("cannot derive a slug from %s", pageURL)
	}

	c := colly.NewCollector(colly.UserAgent(s.opts.UserAgent))
	c.SetRequestTimeout(s.opts.Timeout)

	var (
		meta     pageMeta
		fetchErr error
	)

	c.OnHTML("title", func(e *colly.HTMLElement) {
		if meta.title == "" {
			meta.title = strings.TrimSpace(e.Text)
		}
	})
	c.OnHTML(`meta[property="og:title"]`, func(e *colly.HTMLElement) {
		meta.ogTitle = strings.TrimSpace(e.Attr("content"))
	})
	c.OnHTML(`meta[name="description"]`, func(e *colly.HTMLElement) {
		meta.description = strings.TrimSpace(e.Attr("content"))
	})
	c.OnHTML(`meta[property="og:description"]`, func(e *colly.HTMLElement) {
		meta.ogDescription = strings.TrimSpace(e.Attr("content"))
	})
	c.OnHTML(`meta[property="og:image"]`, func(e *colly.HTMLElement) {
		meta.image = e.Request.AbsoluteURL(e.Attr("content"))
	})
	c.OnHTML(`a[rel="tag"], .tags a`, func(e *colly.HTMLElement) {
		if tag := strings.TrimSpace(e.Text); tag != "" {
			meta.tags = appendUnique(meta.tags, tag)
		}
	})
	c.OnHTML(s.opts.ContentSelector, func(e *colly.HTMLElement) {
		if meta.content != "" {
			return
		}
		if markup, err := e.DOM.Html(); err == nil {
			meta.content = markup
		}
	})
	c.OnHTML("body", func(e *colly.HTMLElement) {
		if markup, err := e.DOM.Html(); err == nil {
			meta.body = markup
		}
	})
	c.OnError(func(r *colly.Response, err error) {
		fetchErr = fmt.Errorf("fetch %s: status %d: %w", r.Request.URL, r.StatusCode, err)
	})

	if err := c.Visit(pageURL); err != nil && fetchErr == nil {
		fetchErr = fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	c.Wait()
	if fetchErr != nil {
		return nil, sanitizer.ScrapedGameRecord{}, fetchErr
	}

	raw := meta.content
	if raw == "" {
		s.log.Warn().Str("url", pageURL).Str("selector", s.opts.ContentSelector).Msg("content selector matched nothing, using page body")
		raw = meta.body
	}
	record := sanitizer.Process(raw)

	content := &models.GameContent{
		Slug:        slug,
		Title:       firstNonEmpty(meta.ogTitle, meta.title),
		Description: firstNonEmpty(meta.ogDescription, meta.description),
		Image:       meta.image,
		Tags:        meta.tags,
		Content:     models.GameHTMLBody{HTML: record.ExtractedFragment},
		Href:        pageURL,
		FetchedAt:   s.now().UTC(),
	}
	if content.Tags == nil {
		content.Tags = []string{}
	}

	s.log.Info().
		Str("slug", slug).
		Int("raw_bytes", len(record.RawHTML)).
		Int("fragment_bytes", len(record.ExtractedFragment)).
		Msg("game page scraped")
	return content, record, nil
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lower-cases s and joins its alphanumeric runs with dashes
func Slugify(s string) string {
	return strings.Trim(nonSlugChars.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

// SlugFromURL derives a slug from the last path segment of a URL
func SlugFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	base := path.Base(strings.TrimSuffix(u.Path, "/"))
	base = strings.TrimSuffix(base, path.Ext(base))
	if base == "." || base == "/" {
		return ""
	}
	return Slugify(base)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if strings.EqualFold(existing, v) {
			return list
		}
	}
	return append(list, v)
}
