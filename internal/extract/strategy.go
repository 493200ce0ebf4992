package extract

import (
	"net/url"
	"strings"
	"time"

	"github.com/hyperifyio/newsdigest/internal/article"
)

// Fields are the values a strategy could locate. Absent values stay zero;
// sentinels are applied later by article.Record.View.
type Fields struct {
	Title     string
	Authors   []string
	Published article.Timestamp
	Content   string
}

// Strategy extracts article fields and listing links for one kind of site.
// Every lookup is best effort: a missing element leaves the field empty.
type Strategy interface {
	Name() string
	Article(p Page, loc *time.Location) Fields
	// Links returns article URLs from a listing page in document order.
	Links(p Page, limit int) []string
}

// Registry picks a Strategy by host. Hosts match their registered domain and
// any subdomain of it; unknown hosts get the fallback.
type Registry struct {
	byHost   map[string]Strategy
	fallback Strategy
}

// NewRegistry returns a registry with the built-in site strategies and the
// readability-based generic fallback.
func NewRegistry() *Registry {
	r := &Registry{byHost: map[string]Strategy{}, fallback: Generic{}}
	r.Register("techcrunch.com", TechCrunch{})
	return r
}

// Register binds a strategy to a domain.
func (r *Registry) Register(domain string, s Strategy) {
	r.byHost[normalizeHost(domain)] = s
}

// For returns the strategy for u.
func (r *Registry) For(u *url.URL) Strategy {
	if u == nil {
		return r.fallback
	}
	host := normalizeHost(u.Hostname())
	for host != "" {
		if s, ok := r.byHost[host]; ok {
			return s
		}
		i := strings.IndexByte(host, '.')
		if i < 0 {
			break
		}
		host = host[i+1:]
	}
	return r.fallback
}

func normalizeHost(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.TrimPrefix(h, "www.")
}
