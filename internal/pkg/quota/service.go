package quota

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/dealerseo/seodash/app/models"
	"github.com/dealerseo/seodash/app/repository"
	"github.com/dealerseo/seodash/internal/pkg/apperror"
	"github.com/dealerseo/seodash/internal/pkg/tasktype"
)

// Cache stores computed dealership progress between completions.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, v interface{}) error
	Delete(ctx context.Context, key string) error
}

type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Usage mirrors the persisted *_used_this_period counters.
type Usage struct {
	Pages        int `json:"pages"`
	Blogs        int `json:"blogs"`
	GBPPosts     int `json:"gbpPosts"`
	Improvements int `json:"improvements"`
}

type DealershipProgress struct {
	DealershipID string   `json:"dealershipId"`
	PackageType  string   `json:"packageType"`
	Period       Period   `json:"period"`
	Usage        Usage    `json:"usage"`
	Progress     Progress `json:"progress"`
}

type Service struct {
	repos *repository.Repositories
	cache Cache
	now   func() time.Time
}

func NewService(repos *repository.Repositories) *Service {
	return &Service{repos: repos, now: func() time.Time { return time.Now().UTC() }}
}

// WithCache enables the progress cache.
func (s *Service) WithCache(c Cache) *Service {
	s.cache = c
	return s
}

// DealershipProgress loads the dealership, its current period and the
// requests of that period, and computes progress.
func (s *Service) DealershipProgress(ctx context.Context, dealershipID string) (*DealershipProgress, error) {
	if s.cache != nil {
		var cached DealershipProgress
		hit, err := s.cache.GetJSON(ctx, dealershipID, &cached)
		if err != nil {
			log.Warnf("[Quota] cache read failed for dealership %s: %v", dealershipID, err)
		} else if hit {
			return &cached, nil
		}
	}

	d, err := s.repos.Dealership.GetByID(dealershipID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Dealership not found")
		}
		return nil, apperror.Internal("load dealership", err)
	}
	return s.progressFor(ctx, d)
}

// ProgressFor computes progress for an already loaded dealership.
func (s *Service) ProgressFor(ctx context.Context, d *models.Dealership) (*DealershipProgress, error) {
	return s.progressFor(ctx, d)
}

func (s *Service) progressFor(ctx context.Context, d *models.Dealership) (*DealershipProgress, error) {
	start, end := d.Period(s.now())
	summaries, err := s.repos.Request.ListSummariesForPeriod(d.ID, start, end)
	if err != nil {
		return nil, apperror.Internal("load period requests", err)
	}

	progress, err := Calculate(d.Package(), summaries)
	if err != nil {
		return nil, apperror.Internal("calculate progress", err)
	}

	out := &DealershipProgress{
		DealershipID: d.ID,
		PackageType:  string(progress.PackageType),
		Period:       Period{Start: start, End: end},
		Usage: Usage{
			Pages:        d.PagesUsedThisPeriod,
			Blogs:        d.BlogsUsedThisPeriod,
			GBPPosts:     d.GBPPostsUsedThisPeriod,
			Improvements: d.ImprovementsUsedThisPeriod,
		},
		Progress: progress,
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, d.ID, out); err != nil {
			log.Warnf("[Quota] cache write failed for dealership %s: %v", d.ID, err)
		}
	}
	return out, nil
}

// Invalidate drops the cached progress of a dealership.
func (s *Service) Invalidate(ctx context.Context, dealershipID string) {
	if s.cache == nil || dealershipID == "" {
		return
	}
	if err := s.cache.Delete(ctx, dealershipID); err != nil {
		log.Warnf("[Quota] cache invalidation failed for dealership %s: %v", dealershipID, err)
	}
}

// RecordCompletion increments the usage counter matching t. It must be called
// with repositories bound to the transaction that completed the request.
// Types without a counter are ignored.
func RecordCompletion(tx *repository.Repositories, dealershipID string, t tasktype.Type) error {
	column := models.UsageColumn(t.Counter())
	if column == "" || dealershipID == "" {
		return nil
	}
	if err := tx.Dealership.IncrementUsage(dealershipID, column, 1); err != nil {
		return fmt.Errorf("increment %s for dealership %s: %w", column, dealershipID, err)
	}
	return nil
}

// RolloverExpiredPeriods advances every dealership whose billing period ended
// before now, one month at a time, and resets its usage counters. Dealerships
// without a period get the calendar month containing now.
func (s *Service) RolloverExpiredPeriods(ctx context.Context, now time.Time) (int, error) {
	now = now.UTC()
	due, err := s.repos.Dealership.ListPeriodEndedBefore(now)
	if err != nil {
		return 0, fmt.Errorf("list expired periods: %w", err)
	}

	rolled := 0
	for i := range due {
		if err := ctx.Err(); err != nil {
			return rolled, err
		}
		d := due[i]
		start, end := nextPeriod(&d, now)

		err := s.repos.Transaction(func(tx *repository.Repositories) error {
			locked, err := tx.Dealership.GetByIDForUpdate(d.ID)
			if err != nil {
				return err
			}
			// another worker already advanced it
			if locked.CurrentBillingPeriodEnd != nil && locked.CurrentBillingPeriodEnd.After(now) {
				return nil
			}
			locked.CurrentBillingPeriodStart = &start
			locked.CurrentBillingPeriodEnd = &end
			locked.ResetUsage()
			return tx.Dealership.Update(locked)
		})
		if err != nil {
			log.Errorf("[Quota] rollover failed for dealership %s: %v", d.ID, err)
			continue
		}
		s.Invalidate(ctx, d.ID)
		rolled++
	}

	if rolled > 0 {
		log.Infof("[Quota] rolled over %d billing period(s)", rolled)
	}
	return rolled, nil
}

func nextPeriod(d *models.Dealership, now time.Time) (time.Time, time.Time) {
	if d.CurrentBillingPeriodStart == nil || d.CurrentBillingPeriodEnd == nil {
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, 0)
	}
	start := d.CurrentBillingPeriodEnd.UTC()
	end := start.AddDate(0, 1, 0)
	for !end.After(now) {
		start = end
		end = start.AddDate(0, 1, 0)
	}
	return start, end
}
