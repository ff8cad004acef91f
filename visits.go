package rango

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/eringen/rango/visit"
)

const sessionCleanupInterval = 24 * time.Hour

// newVisitStore builds the backend named by Config.VisitStore and registers
// whatever it needs torn down on Close.
func (a *App) newVisitStore() (visit.Store, error) {
	switch a.Config.VisitStore {
	case VisitStoreSQLite:
		stop := a.Store.StartSessionCleanup(a.Config.VisitTTL, sessionCleanupInterval)
		a.closers = append(a.closers, stop)
		return a.Store.SessionValues(), nil
	case VisitStoreRedis:
		if a.Config.RedisURL == "" {
			return nil, fmt.Errorf("REDIS_URL is required for the redis visit store")
		}
		opts, err := redis.ParseURL(a.Config.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)
		a.closers = append(a.closers, func() { _ = client.Close() })
		return visit.NewStore(visit.BackendRedis, visit.WithRedisClient(client), visit.WithTTL(a.Config.VisitTTL))
	default:
		return visit.NewStore(a.Config.VisitStore)
	}
}

// trackVisit counts the current request against the visitor's session and
// returns the number to display. Failures are logged and yield 0; a visit
// count is never worth an error page.
func (a *App) trackVisit(c echo.Context) int {
	if ua := c.Request().UserAgent(); isCrawler(ua) {
		c.Logger().Debugf("visit tracking: skipping crawler %q", ua)
		return 0
	}
	sess, err := loadSession(c)
	if err != nil {
		c.Logger().Warnf("visit tracking: no session: %v", err)
		return 0
	}

	visitorID, _ := sess.Values[sessionVisitorID].(string)
	if visitorID == "" {
		visitorID = uuid.NewString()
		sess.Values[sessionVisitorID] = visitorID
		if err := sess.Save(c.Request(), c.Response()); err != nil {
			c.Logger().Errorf("visit tracking: save session: %v", err)
			return 0
		}
	}

	res, err := a.tracker.Track(c.Request().Context(), visitorID)
	if err != nil {
		c.Logger().Errorf("visit tracking: %v", err)
		return 0
	}
	if res.Reset {
		c.Logger().Warnf("visit tracking: malformed state for visitor %s, starting over", visitorID)
	}
	return res.Count
}

// crawlerMarkers are User-Agent fragments of search engines and link
// preview fetchers.
var crawlerMarkers = []string{
	"bot", "crawler", "spider", "crawl", "slurp", "scrape",
	"yandex", "baidu", "facebookexternalhit",
}

func isCrawler(ua string) bool {
	ua = strings.ToLower(ua)
	for _, m := range crawlerMarkers {
		if strings.Contains(ua, m) {
			return true
		}
	}
	return false
}
