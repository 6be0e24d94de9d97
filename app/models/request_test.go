package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequestStatus(t *testing.T) {
	tests := []struct {
		in   string
		want RequestStatus
	}{
		{"pending", RequestStatusPending},
		{"in_progress", RequestStatusInProgress},
		{"In-Progress", RequestStatusInProgress},
		{"completed", RequestStatusCompleted},
		{"COMPLETED", RequestStatusCompleted},
		{"done", RequestStatusCompleted},
		{"canceled", RequestStatusCancelled},
		{"CANCELLED", RequestStatusCancelled},
	}
	for _, tt := range tests {
		got, err := ParseRequestStatus(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseRequestStatus("archived")
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from RequestStatus
		to   RequestStatus
		err  error
	}{
		{"pending to in progress", RequestStatusPending, RequestStatusInProgress, nil},
		{"pending to completed", RequestStatusPending, RequestStatusCompleted, nil},
		{"in progress to completed", RequestStatusInProgress, RequestStatusCompleted, nil},
		{"pending to cancelled", RequestStatusPending, RequestStatusCancelled, nil},
		{"in progress to cancelled", RequestStatusInProgress, RequestStatusCancelled, nil},
		{"in progress back to pending", RequestStatusInProgress, RequestStatusPending, ErrInvalidTransition},
		{"pending to pending", RequestStatusPending, RequestStatusPending, ErrInvalidTransition},
		{"completed to cancelled", RequestStatusCompleted, RequestStatusCancelled, ErrTerminalStatus},
		{"completed to in progress", RequestStatusCompleted, RequestStatusInProgress, ErrTerminalStatus},
		{"cancelled to completed", RequestStatusCancelled, RequestStatusCompleted, ErrTerminalStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.from.CanTransition(tt.to)
			if tt.err == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.err)
			}
		})
	}
}

func TestMarkCompleted(t *testing.T) {
	r := &Request{Type: "page", Status: RequestStatusInProgress}
	at := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)

	err := r.MarkCompleted(at, &CompletedTask{Title: "X", Type: "page", URL: "https://example.com/x", CompletedAt: at})
	require.NoError(t, err)

	assert.Equal(t, RequestStatusCompleted, r.Status)
	require.NotNil(t, r.CompletedAt)
	assert.True(t, at.Equal(*r.CompletedAt))
	assert.Equal(t, 1, r.PagesCompleted)
	assert.Len(t, r.CompletedTasks, 1)

	later := at.Add(time.Hour)
	err = r.MarkCompleted(later, &CompletedTask{Title: "Y"})
	assert.ErrorIs(t, err, ErrTerminalStatus)
	assert.True(t, at.Equal(*r.CompletedAt), "completedAt must not move on a rejected transition")
	assert.Equal(t, 1, r.PagesCompleted)
	assert.Len(t, r.CompletedTasks, 1)
}

func TestMarkCompletedCounters(t *testing.T) {
	at := time.Now()
	for typ, check := range map[string]func(*Request) int{
		"blog":        func(r *Request) int { return r.BlogsCompleted },
		"gbp_post":    func(r *Request) int { return r.GBPPostsCompleted },
		"improvement": func(r *Request) int { return r.ImprovementsCompleted },
	} {
		r := &Request{Type: typ, Status: RequestStatusPending}
		require.NoError(t, r.MarkCompleted(at, nil))
		assert.Equal(t, 1, check(r), typ)
	}

	m := &Request{Type: "maintenance", Status: RequestStatusPending}
	require.NoError(t, m.MarkCompleted(at, nil))
	assert.Zero(t, m.PagesCompleted+m.BlogsCompleted+m.GBPPostsCompleted+m.ImprovementsCompleted)
}

func TestDealershipPeriodDefaultsToCalendarMonth(t *testing.T) {
	d := &Dealership{}
	now := time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)
	start, end := d.Period(now)
	assert.Equal(t, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC), end)
}

func TestNewUserValidates(t *testing.T) {
	u, err := NewUser("Dana", "Dana@Example.com", "secret-pass", ROLE_AGENCY_ADMIN)
	require.NoError(t, err)
	assert.Equal(t, "dana@example.com", u.Email)
	assert.True(t, u.CheckPassword("secret-pass"))
	assert.False(t, u.CheckPassword("wrong"))

	_, err = NewUser("Dana", "not-an-email", "secret-pass", ROLE_USER)
	assert.Error(t, err)

	_, err = NewUser("Dana", "d@example.com", "secret-pass", "OWNER")
	assert.Error(t, err)
}
