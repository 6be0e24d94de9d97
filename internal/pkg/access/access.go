// Package access holds the tenant authorization rules. Every check returns
// nil or an apperror Forbidden error.
package access

import (
	"github.com/dealerseo/seodash/app/models"
	"github.com/dealerseo/seodash/internal/pkg/apperror"
)

// Actor is the authenticated caller as seen by the rules.
type Actor struct {
	UserID       string
	Role         string
	AgencyID     string
	DealershipID string
}

func (a Actor) IsSuperAdmin() bool {
	return a.Role == models.ROLE_SUPER_ADMIN
}

func (a Actor) IsAgencyAdmin() bool {
	return a.Role == models.ROLE_AGENCY_ADMIN
}

// IsAdmin is true for agency and super admins.
func (a Actor) IsAdmin() bool {
	return a.IsSuperAdmin() || a.IsAgencyAdmin()
}

func (a Actor) ownsAgency(agencyID string) bool {
	return a.IsAgencyAdmin() && a.AgencyID != "" && a.AgencyID == agencyID
}

func forbidden() error {
	return apperror.Forbidden("Access denied")
}

// CanReadDealership allows super admins, admins of the owning agency and
// users whose current dealership it is.
func CanReadDealership(a Actor, d *models.Dealership) error {
	switch {
	case a.IsSuperAdmin():
		return nil
	case a.ownsAgency(d.AgencyID):
		return nil
	case a.DealershipID != "" && a.DealershipID == d.ID:
		return nil
	}
	return forbidden()
}

// CanManageDealership is reserved to admins.
func CanManageDealership(a Actor, d *models.Dealership) error {
	if a.IsSuperAdmin() || a.ownsAgency(d.AgencyID) {
		return nil
	}
	return forbidden()
}

// CanListAgency allows super admins and the agency's own admins.
func CanListAgency(a Actor, agencyID string) error {
	if a.IsSuperAdmin() || a.ownsAgency(agencyID) {
		return nil
	}
	return forbidden()
}

// CanCreateRequest checks that the actor may file work against d.
func CanCreateRequest(a Actor, d *models.Dealership) error {
	return CanReadDealership(a, d)
}

// CanReadRequest allows anyone who can read the request's dealership and
// the request's author.
func CanReadRequest(a Actor, r *models.Request, d *models.Dealership) error {
	if r.UserID != "" && r.UserID == a.UserID {
		return nil
	}
	return CanReadDealership(a, d)
}

// CanUpdateRequestStatus lets admins move requests of their tenants freely.
// Plain users may only cancel requests they filed.
func CanUpdateRequestStatus(a Actor, r *models.Request, d *models.Dealership, to models.RequestStatus) error {
	if CanManageDealership(a, d) == nil {
		return nil
	}
	if r.UserID == a.UserID && to == models.RequestStatusCancelled {
		return nil
	}
	return forbidden()
}

// CanLinkExternalTask is admin-only.
func CanLinkExternalTask(a Actor, d *models.Dealership) error {
	return CanManageDealership(a, d)
}
