package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dealerseo/seodash/app/models"
	"github.com/dealerseo/seodash/internal/pkg/apperror"
)

func TestDealershipRules(t *testing.T) {
	d := &models.Dealership{ID: "d1", AgencyID: "a1"}

	tests := []struct {
		name       string
		actor      Actor
		wantRead   bool
		wantManage bool
	}{
		{"super admin", Actor{UserID: "s", Role: models.ROLE_SUPER_ADMIN}, true, true},
		{"own agency admin", Actor{UserID: "aa", Role: models.ROLE_AGENCY_ADMIN, AgencyID: "a1"}, true, true},
		{"other agency admin", Actor{UserID: "ab", Role: models.ROLE_AGENCY_ADMIN, AgencyID: "a2"}, false, false},
		{"user of dealership", Actor{UserID: "u", Role: models.ROLE_USER, AgencyID: "a1", DealershipID: "d1"}, true, false},
		{"user elsewhere", Actor{UserID: "u2", Role: models.ROLE_USER, AgencyID: "a1", DealershipID: "d9"}, false, false},
		{"agency admin without agency", Actor{UserID: "x", Role: models.ROLE_AGENCY_ADMIN}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantRead, CanReadDealership(tt.actor, d) == nil)
			assert.Equal(t, tt.wantManage, CanManageDealership(tt.actor, d) == nil)
		})
	}
}

func TestUserMayOnlyCancelOwnRequests(t *testing.T) {
	d := &models.Dealership{ID: "d1", AgencyID: "a1"}
	owner := Actor{UserID: "u1", Role: models.ROLE_USER, DealershipID: "d1"}
	other := Actor{UserID: "u2", Role: models.ROLE_USER, DealershipID: "d1"}
	req := &models.Request{ID: "r1", UserID: "u1", DealershipID: "d1"}

	assert.NoError(t, CanUpdateRequestStatus(owner, req, d, models.RequestStatusCancelled))

	err := CanUpdateRequestStatus(owner, req, d, models.RequestStatusCompleted)
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))

	err = CanUpdateRequestStatus(other, req, d, models.RequestStatusCancelled)
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))

	admin := Actor{UserID: "aa", Role: models.ROLE_AGENCY_ADMIN, AgencyID: "a1"}
	assert.NoError(t, CanUpdateRequestStatus(admin, req, d, models.RequestStatusCompleted))
}

func TestAuthorCanReadRequestAfterSwitchingDealership(t *testing.T) {
	d := &models.Dealership{ID: "d1", AgencyID: "a1"}
	author := Actor{UserID: "u1", Role: models.ROLE_USER, DealershipID: "d2"}
	req := &models.Request{ID: "r1", UserID: "u1", DealershipID: "d1"}

	assert.NoError(t, CanReadRequest(author, req, d))
	assert.Error(t, CanReadRequest(Actor{UserID: "u3", Role: models.ROLE_USER, DealershipID: "d2"}, req, d))
}

func TestCanListAgency(t *testing.T) {
	assert.NoError(t, CanListAgency(Actor{Role: models.ROLE_SUPER_ADMIN}, "a1"))
	assert.NoError(t, CanListAgency(Actor{Role: models.ROLE_AGENCY_ADMIN, AgencyID: "a1"}, "a1"))
	assert.Error(t, CanListAgency(Actor{Role: models.ROLE_USER, AgencyID: "a1"}, "a1"))
}
