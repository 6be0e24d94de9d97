package quota

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealerseo/seodash/app/models"
	"github.com/dealerseo/seodash/app/repository"
	"github.com/dealerseo/seodash/internal/pkg/apperror"
	"github.com/dealerseo/seodash/internal/pkg/tasktype"
	"github.com/dealerseo/seodash/internal/pkg/testutil"
)

type mapCache struct {
	data    map[string]DealershipProgress
	deletes int
}

func (m *mapCache) GetJSON(_ context.Context, key string, dst interface{}) (bool, error) {
	v, ok := m.data[key]
	if ok {
		*(dst.(*DealershipProgress)) = v
	}
	return ok, nil
}

func (m *mapCache) SetJSON(_ context.Context, key string, v interface{}) error {
	m.data[key] = *(v.(*DealershipProgress))
	return nil
}

func (m *mapCache) Delete(_ context.Context, key string) error {
	delete(m.data, key)
	m.deletes++
	return nil
}

func createRequest(t *testing.T, repos *repository.Repositories, tenant *testutil.Tenant, typ string, status models.RequestStatus) *models.Request {
	t.Helper()
	req := &models.Request{
		UserID:       tenant.User.ID,
		DealershipID: tenant.Dealership.ID,
		AgencyID:     &tenant.Agency.ID,
		Title:        "Request " + typ,
		Type:         typ,
		Status:       status,
	}
	if status == models.RequestStatusCompleted {
		now := time.Now().UTC()
		req.CompletedAt = &now
	}
	require.NoError(t, repos.Request.Create(req))
	return req
}

func TestDealershipProgress(t *testing.T) {
	db := testutil.NewTestDB(t)
	repos := repository.NewRepositories(db)
	tenant := testutil.SeedTenant(t, db, "GOLD")

	for i := 0; i < 3; i++ {
		createRequest(t, repos, tenant, "page", models.RequestStatusCompleted)
	}
	createRequest(t, repos, tenant, "blog", models.RequestStatusInProgress)
	createRequest(t, repos, tenant, "maintenance", models.RequestStatusCompleted)

	svc := NewService(repos)
	got, err := svc.DealershipProgress(context.Background(), tenant.Dealership.ID)
	require.NoError(t, err)

	assert.Equal(t, tenant.Dealership.ID, got.DealershipID)
	assert.Equal(t, "GOLD", got.PackageType)
	assert.Equal(t, Count{Completed: 3, Total: 6}, got.Progress.Breakdown.Pages)
	assert.Equal(t, 3, got.Progress.CompletedTasks)
	assert.Equal(t, 39, got.Progress.ActiveTasks)
	assert.True(t, got.Period.End.After(got.Period.Start))
}

func TestDealershipProgressIgnoresOtherPeriods(t *testing.T) {
	db := testutil.NewTestDB(t)
	repos := repository.NewRepositories(db)
	tenant := testutil.SeedTenant(t, db, "SILVER")

	old := createRequest(t, repos, tenant, "blog", models.RequestStatusCompleted)
	past := tenant.Dealership.CurrentBillingPeriodStart.AddDate(0, -2, 0)
	require.NoError(t, db.Model(&models.Request{}).Where("id = ?", old.ID).
		UpdateColumns(map[string]interface{}{"created_at": past, "completed_at": past}).Error)
	createRequest(t, repos, tenant, "blog", models.RequestStatusCompleted)

	got, err := NewService(repos).DealershipProgress(context.Background(), tenant.Dealership.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Progress.Breakdown.Blogs.Completed)
}

func TestDealershipProgressNotFound(t *testing.T) {
	db := testutil.NewTestDB(t)
	_, err := NewService(repository.NewRepositories(db)).DealershipProgress(context.Background(), "missing")
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestDealershipProgressCache(t *testing.T) {
	db := testutil.NewTestDB(t)
	repos := repository.NewRepositories(db)
	tenant := testutil.SeedTenant(t, db, "SILVER")
	c := &mapCache{data: map[string]DealershipProgress{}}
	svc := NewService(repos).WithCache(c)

	first, err := svc.DealershipProgress(context.Background(), tenant.Dealership.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, first.Progress.CompletedTasks)

	createRequest(t, repos, tenant, "page", models.RequestStatusCompleted)
	cached, err := svc.DealershipProgress(context.Background(), tenant.Dealership.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, cached.Progress.CompletedTasks)

	svc.Invalidate(context.Background(), tenant.Dealership.ID)
	fresh, err := svc.DealershipProgress(context.Background(), tenant.Dealership.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, fresh.Progress.CompletedTasks)
	assert.Equal(t, 1, c.deletes)
}

func TestRecordCompletion(t *testing.T) {
	db := testutil.NewTestDB(t)
	repos := repository.NewRepositories(db)
	tenant := testutil.SeedTenant(t, db, "SILVER")

	err := repos.Transaction(func(tx *repository.Repositories) error {
		if err := RecordCompletion(tx, tenant.Dealership.ID, tasktype.GBPPost); err != nil {
			return err
		}
		if err := RecordCompletion(tx, tenant.Dealership.ID, tasktype.GBPPost); err != nil {
			return err
		}
		return RecordCompletion(tx, tenant.Dealership.ID, tasktype.Maintenance)
	})
	require.NoError(t, err)

	d, err := repos.Dealership.GetByID(tenant.Dealership.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, d.GBPPostsUsedThisPeriod)
	assert.Equal(t, 0, d.PagesUsedThisPeriod)
}

func TestRecordCompletionUnknownDealership(t *testing.T) {
	db := testutil.NewTestDB(t)
	repos := repository.NewRepositories(db)
	err := RecordCompletion(repos, "missing", tasktype.Page)
	assert.Error(t, err)
}

func TestRolloverExpiredPeriods(t *testing.T) {
	db := testutil.NewTestDB(t)
	repos := repository.NewRepositories(db)
	tenant := testutil.SeedTenant(t, db, "SILVER")

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	d := tenant.Dealership
	d.CurrentBillingPeriodStart = &start
	d.CurrentBillingPeriodEnd = &end
	d.PagesUsedThisPeriod = 2
	d.BlogsUsedThisPeriod = 3
	require.NoError(t, repos.Dealership.Update(d))

	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	svc := NewService(repos)
	n, err := svc.RolloverExpiredPeriods(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := repos.Dealership.GetByID(d.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.PagesUsedThisPeriod)
	assert.Equal(t, 0, got.BlogsUsedThisPeriod)
	assert.True(t, got.CurrentBillingPeriodStart.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, got.CurrentBillingPeriodEnd.Equal(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)))

	n, err = svc.RolloverExpiredPeriods(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestNextPeriodWithoutAssignment(t *testing.T) {
	now := time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC)
	start, end := nextPeriod(&models.Dealership{}, now)
	assert.Equal(t, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC), end)
}
