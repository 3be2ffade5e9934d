package github

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/handiism/gist-downloader/internal/http"
	"github.com/handiism/gist-downloader/internal/logging"
	"github.com/handiism/gist-downloader/internal/metrics"
	"github.com/handiism/gist-downloader/internal/model"
)

const (
	// DefaultBaseURL is the public GitHub REST API.
	DefaultBaseURL = "https://api.github.com"

	// DefaultPerPage is the page size used when no item limit is set.
	DefaultPerPage = 100

	// NoLimit requests every gist the user has.
	NoLimit = -1

	// contextRadius is how many bytes around a parse failure are logged.
	contextRadius = 50
)

// ErrInvalidUsername is returned for an empty or malformed username.
var ErrInvalidUsername = errors.New("invalid username")

// PageFetcher fetches one listing page. *http.Client implements it.
type PageFetcher interface {
	GetPage(ctx context.Context, url string) (*http.Page, error)
}

// Lister walks the paginated gist listing of a user.
//
// Requests are issued strictly one after another. Between pages the Lister
// consults the rate limit headers of the previous response and pauses via
// its Throttle when the remaining quota is exhausted or unknown.
//
// Example usage:
//
//	lister := github.NewLister(http.NewClient(http.DefaultOptions()),
//	    github.WithLogger(logger))
//
//	gists, err := lister.List(ctx, "octocat", 10)
//	if err != nil {
//	    var perr *github.ParseError
//	    if errors.As(err, &perr) {
//	        fmt.Println(perr.Context(50))
//	    }
//	}
type Lister struct {
	fetcher  PageFetcher
	baseURL  string
	throttle *Throttle
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

// Option configures a Lister.
type Option func(*Lister)

// WithBaseURL points the Lister at another API root.
func WithBaseURL(base string) Option {
	return func(l *Lister) {
		l.baseURL = strings.TrimRight(base, "/")
	}
}

// WithThrottle replaces the default 3s throttle.
func WithThrottle(t *Throttle) Option {
	return func(l *Lister) {
		l.throttle = t
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Lister) {
		l.logger = logging.OrNop(logger)
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Lister) {
		l.metrics = m
	}
}

// NewLister creates a Lister using fetcher for every request.
func NewLister(fetcher PageFetcher, opts ...Option) *Lister {
	l := &Lister{
		fetcher:  fetcher,
		baseURL:  DefaultBaseURL,
		throttle: NewThrottle(DefaultThrottleDelay),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// List returns the gists of username in listing order.
//
// A positive limit caps the result and is also used as the page size; the
// walk stops as soon as limit gists are collected. A negative limit
// (NoLimit) fetches every page. A limit of 0 returns an empty list without
// issuing any request.
//
// The walk stops at the first page whose Link header has no rel="next"
// entry. A gist id that reappears on a later page is dropped.
//
// Returns:
//   - *http.TransportError if a request fails or answers non-2xx
//   - *ParseError if a page body is not a valid gist array
//   - ErrInvalidUsername for an empty or malformed username
//   - ctx.Err() if cancelled during a throttle pause
func (l *Lister) List(ctx context.Context, username string, limit int) ([]*model.Gist, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if limit == 0 {
		return []*model.Gist{}, nil
	}

	perPage := DefaultPerPage
	if limit > 0 {
		perPage = limit
	}

	var (
		gists []*model.Gist
		seen  = make(map[string]struct{})
		page  = 1
	)

	for {
		pageURL := l.pageURL(username, perPage, page)
		l.logger.Debug("fetching gist page", zap.String("url", pageURL), zap.Int("page", page))

		resp, err := l.fetcher.GetPage(ctx, pageURL)
		if err != nil {
			l.logger.Error("gist page request failed", zap.Int("page", page), zap.Error(err))
			return nil, err
		}
		l.metrics.PageFetched()

		rate := ParseRateStatus(resp.Header)
		more := HasNextPage(resp.Header)
		l.logger.Debug("gist page received",
			zap.Int("page", page),
			zap.Int("status", resp.StatusCode),
			zap.Int("rate_limit", rate.Limit),
			zap.Int("rate_remaining", rate.Remaining),
			zap.Bool("more_pages", more),
		)

		parsed, err := parseGists(resp.Body)
		if err != nil {
			var perr *ParseError
			if errors.As(err, &perr) {
				l.logger.Error("invalid gist page",
					zap.Int("page", page),
					zap.Int64("offset", perr.Offset),
					zap.String("context", perr.Context(contextRadius)),
					zap.Error(perr.Err),
				)
			}
			return nil, err
		}

		for _, g := range parsed {
			if _, dup := seen[g.ID]; dup {
				l.logger.Debug("dropping repeated gist", zap.String("gist_id", g.ID))
				continue
			}
			seen[g.ID] = struct{}{}
			gists = append(gists, g)
		}

		if limit > 0 && len(gists) >= limit {
			gists = gists[:limit]
			break
		}
		if !more {
			break
		}

		if ShouldPause(rate) {
			l.metrics.ThrottlePaused()
			l.logger.Info("rate limit exhausted or unknown, pausing",
				zap.Duration("delay", l.throttle.Delay()),
				zap.Int("rate_remaining", rate.Remaining),
			)
		}
		if _, err := l.throttle.Wait(ctx, rate); err != nil {
			return nil, err
		}

		page++
	}

	l.logger.Info("gist listing complete",
		zap.String("username", username),
		zap.Int("gists", len(gists)),
		zap.Int("pages", page),
	)

	if gists == nil {
		gists = []*model.Gist{}
	}
	return gists, nil
}

func (l *Lister) pageURL(username string, perPage, page int) string {
	q := url.Values{}
	q.Set("per_page", strconv.Itoa(perPage))
	q.Set("page", strconv.Itoa(page))
	return fmt.Sprintf("%s/users/%s/gists?%s", l.baseURL, url.PathEscape(username), q.Encode())
}

// ValidateUsername rejects usernames that cannot name a GitHub account.
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("%w: empty", ErrInvalidUsername)
	}
	if strings.ContainsAny(username, "/?#% \t\n") {
		return fmt.Errorf("%w: %q", ErrInvalidUsername, username)
	}
	return nil
}
