// Package tasktype is the single mapping between deliverable types and the
// quota counters they consume. Every caller that turns a type string into a
// counter goes through this table.
package tasktype

import (
	"errors"
	"strings"
)

type Type string

const (
	Page        Type = "page"
	Blog        Type = "blog"
	GBPPost     Type = "gbp_post"
	Improvement Type = "improvement"
	Maintenance Type = "maintenance"
)

// Counter names a quota bucket on a package or dealership.
type Counter string

const (
	CounterNone         Counter = ""
	CounterPages        Counter = "pages"
	CounterBlogs        Counter = "blogs"
	CounterGBPPosts     Counter = "gbpPosts"
	CounterImprovements Counter = "improvements"
)

var ErrUnknownType = errors.New("unknown task type")

var counters = map[Type]Counter{
	Page:        CounterPages,
	Blog:        CounterBlogs,
	GBPPost:     CounterGBPPosts,
	Improvement: CounterImprovements,
	Maintenance: CounterNone,
}

// vendor spellings seen in SEOWorks payloads
var aliases = map[string]Type{
	"page":          Page,
	"pages":         Page,
	"landing_page":  Page,
	"blog":          Blog,
	"blogs":         Blog,
	"blog_post":     Blog,
	"gbp_post":      GBPPost,
	"gbp_posts":     GBPPost,
	"gbp":           GBPPost,
	"google_post":   GBPPost,
	"improvement":   Improvement,
	"improvements":  Improvement,
	"seo_change":    Improvement,
	"maintenance":   Maintenance,
	"technical_fix": Maintenance,
}

// prefixes used by the vendor's task ids, e.g. "task-p-123"
var idPrefixes = []struct {
	prefix string
	t      Type
}{
	{"task-p-", Page},
	{"task-b-", Blog},
	{"task-g-", GBPPost},
	{"task-i-", Improvement},
	{"task-m-", Maintenance},
}

// Parse normalizes case, dashes and spaces before matching.
func Parse(raw string) (Type, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.NewReplacer("-", "_", " ", "_").Replace(key)
	if t, ok := aliases[key]; ok {
		return t, nil
	}
	return "", ErrUnknownType
}

// FromExternalID infers the type from the vendor task id prefix.
func FromExternalID(externalID string) (Type, bool) {
	id := strings.ToLower(strings.TrimSpace(externalID))
	for _, p := range idPrefixes {
		if strings.HasPrefix(id, p.prefix) {
			return p.t, true
		}
	}
	return "", false
}

// Infer walks the candidates in order and returns the first parseable type,
// then tries the external id prefix.
func Infer(externalID string, candidates ...string) (Type, bool) {
	for _, c := range candidates {
		if t, err := Parse(c); err == nil {
			return t, true
		}
	}
	return FromExternalID(externalID)
}

// Counter returns the quota bucket consumed by t. Maintenance and unknown
// types return CounterNone.
func (t Type) Counter() Counter {
	return counters[t]
}

func (t Type) Valid() bool {
	_, ok := counters[t]
	return ok
}

// All returns every known type.
func All() []Type {
	return []Type{Page, Blog, GBPPost, Improvement, Maintenance}
}
