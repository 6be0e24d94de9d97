// Package quota derives package usage for a dealership's billing period and
// maintains the persisted per-period usage counters.
package quota

import (
	"github.com/dealerseo/seodash/app/models"
	"github.com/dealerseo/seodash/internal/pkg/packages"
	"github.com/dealerseo/seodash/internal/pkg/tasktype"
)

// Count is completed-versus-quota for one deliverable counter.
type Count struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

type Breakdown struct {
	Pages        Count `json:"pages"`
	Blogs        Count `json:"blogs"`
	GBPPosts     Count `json:"gbpPosts"`
	Improvements Count `json:"improvements"`
}

func (b *Breakdown) counter(c tasktype.Counter) *Count {
	switch c {
	case tasktype.CounterPages:
		return &b.Pages
	case tasktype.CounterBlogs:
		return &b.Blogs
	case tasktype.CounterGBPPosts:
		return &b.GBPPosts
	case tasktype.CounterImprovements:
		return &b.Improvements
	default:
		return nil
	}
}

func (b Breakdown) completed() int {
	return b.Pages.Completed + b.Blogs.Completed + b.GBPPosts.Completed + b.Improvements.Completed
}

type Progress struct {
	PackageType    packages.Type `json:"packageType"`
	TotalTasks     int           `json:"totalTasks"`
	CompletedTasks int           `json:"completedTasks"`
	ActiveTasks    int           `json:"activeTasks"`
	Breakdown      Breakdown     `json:"breakdown"`
}

// Calculate counts completed requests against the package quota. Status is
// compared case-insensitively; maintenance and unknown types are ignored.
// The only error is packages.ErrUnknownPackage.
func Calculate(pkg packages.Type, requests []models.RequestSummary) (Progress, error) {
	p, err := packages.Lookup(pkg)
	if err != nil {
		return Progress{}, err
	}

	progress := Progress{
		PackageType: p.Type,
		TotalTasks:  p.TotalTasks,
		Breakdown: Breakdown{
			Pages:        Count{Total: p.Breakdown.Pages},
			Blogs:        Count{Total: p.Breakdown.Blogs},
			GBPPosts:     Count{Total: p.Breakdown.GBPPosts},
			Improvements: Count{Total: p.Breakdown.Improvements},
		},
	}

	for _, r := range requests {
		status, err := models.ParseRequestStatus(r.Status)
		if err != nil || status != models.RequestStatusCompleted {
			continue
		}
		t, err := tasktype.Parse(r.Type)
		if err != nil {
			continue
		}
		if c := progress.Breakdown.counter(t.Counter()); c != nil {
			c.Completed++
		}
	}

	progress.CompletedTasks = progress.Breakdown.completed()
	progress.ActiveTasks = progress.TotalTasks - progress.CompletedTasks
	return progress, nil
}
