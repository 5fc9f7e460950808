package analytics

import (
	"context"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// Recorder stores a page view for every successful request below a path
// prefix. Each client address is limited to a fixed number of recorded
// views per minute so a reload loop cannot flood the database.
type Recorder struct {
	store   *Store
	prefix  string
	limiter *rateLimiter
	now     func() time.Time
}

// NewRecorder returns a Recorder for requests whose path starts with prefix.
func NewRecorder(store *Store, prefix string) *Recorder {
	return &Recorder{
		store:   store,
		prefix:  prefix,
		limiter: newRateLimiter(60, time.Minute),
		now:     time.Now,
	}
}

// Middleware returns an echo middleware recording page views after the
// wrapped handler has run.
func (r *Recorder) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			req := c.Request()
			if req.Method != "GET" || !strings.HasPrefix(req.URL.Path, r.prefix) {
				return err
			}
			status := c.Response().Status
			if err != nil || status >= 400 {
				return err
			}
			if recErr := r.record(req.Context(), c, status); recErr != nil {
				c.Logger().Warnf("analytics: %v", recErr)
			}
			return err
		}
	}
}

// Close stops the recorder's background work.
func (r *Recorder) Close() {
	r.limiter.stop()
}

func (r *Recorder) record(ctx context.Context, c echo.Context, status int) error {
	ip := c.RealIP()
	if !r.limiter.allow(ip) {
		return nil
	}
	req := c.Request()
	ua := req.UserAgent()
	now := r.now().UTC()
	ctx = context.WithoutCancel(ctx)

	if IsBot(ua) {
		name := BotName(ua)
		if name == "" {
			name = "Unknown"
		}
		return r.store.SaveBotVisit(ctx, BotVisit{
			BotName:   name,
			IPHash:    r.store.HashIP(ip),
			UserAgent: ua,
			Path:      req.URL.Path,
			Timestamp: now,
		})
	}

	browser, os, device := ParseUserAgent(ua)
	return r.store.SaveVisit(ctx, Visit{
		Path:      req.URL.Path,
		Status:    status,
		IPHash:    r.store.HashIP(ip),
		VisitorID: r.store.VisitorID(ip, ua),
		Browser:   browser,
		OS:        os,
		Device:    device,
		Referrer:  CleanReferrer(req.Referer()),
		Timestamp: now,
	})
}
