// Package packages holds the compiled-in catalog of SEO package tiers and the
// deliverable quota each tier grants per billing period.
package packages

import (
	"errors"
	"strings"

	"github.com/dealerseo/seodash/internal/pkg/tasktype"
)

type Type string

const (
	Silver   Type = "SILVER"
	Gold     Type = "GOLD"
	Platinum Type = "PLATINUM"
)

// Default is assigned to dealerships and auto-created requests without a tier.
const Default = Silver

var ErrUnknownPackage = errors.New("unknown package type")

// Breakdown is the per-counter quota of a package.
type Breakdown struct {
	Pages        int `json:"pages"`
	Blogs        int `json:"blogs"`
	GBPPosts     int `json:"gbpPosts"`
	Improvements int `json:"improvements"`
}

// Of returns the quota for a single counter.
func (b Breakdown) Of(c tasktype.Counter) int {
	switch c {
	case tasktype.CounterPages:
		return b.Pages
	case tasktype.CounterBlogs:
		return b.Blogs
	case tasktype.CounterGBPPosts:
		return b.GBPPosts
	case tasktype.CounterImprovements:
		return b.Improvements
	default:
		return 0
	}
}

// Sum adds up every counter including improvements.
func (b Breakdown) Sum() int {
	return b.Pages + b.Blogs + b.GBPPosts + b.Improvements
}

type Package struct {
	Type       Type      `json:"type"`
	Name       string    `json:"name"`
	TotalTasks int       `json:"totalTasks"`
	Breakdown  Breakdown `json:"breakdown"`
}

var catalog = map[Type]Package{
	Silver: {
		Type:       Silver,
		Name:       "Silver",
		TotalTasks: 24,
		Breakdown:  Breakdown{Pages: 3, Blogs: 4, GBPPosts: 8, Improvements: 9},
	},
	Gold: {
		Type:       Gold,
		Name:       "Gold",
		TotalTasks: 42,
		Breakdown:  Breakdown{Pages: 6, Blogs: 8, GBPPosts: 16, Improvements: 12},
	},
	Platinum: {
		Type:       Platinum,
		Name:       "Platinum",
		TotalTasks: 61,
		Breakdown:  Breakdown{Pages: 9, Blogs: 12, GBPPosts: 20, Improvements: 20},
	},
}

// Lookup returns a copy of the catalog entry for t.
func Lookup(t Type) (Package, error) {
	p, ok := catalog[t]
	if !ok {
		return Package{}, ErrUnknownPackage
	}
	return p, nil
}

// Parse accepts any casing and surrounding whitespace.
func Parse(raw string) (Type, error) {
	t := Type(strings.ToUpper(strings.TrimSpace(raw)))
	if _, ok := catalog[t]; !ok {
		return "", ErrUnknownPackage
	}
	return t, nil
}

// ParseOrDefault falls back to Default for empty or unknown input.
func ParseOrDefault(raw string) Type {
	t, err := Parse(raw)
	if err != nil {
		return Default
	}
	return t
}

// All lists the tiers from smallest to largest.
func All() []Package {
	return []Package{catalog[Silver], catalog[Gold], catalog[Platinum]}
}

func (t Type) Valid() bool {
	_, ok := catalog[t]
	return ok
}
