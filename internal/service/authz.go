package service

import (
	"context"
	"fmt"

	"donation-settle-api/internal/constant"
	mainmodel "donation-settle-api/internal/model/main"
)

// OrgReader loads organizations; a missing row is (nil, nil).
type OrgReader interface {
	GetOrganization(ctx context.Context, orgID uint64) (*mainmodel.Organization, error)
}

// Authorizer answers the one capability question every mutation asks: is the acting
// user the designated representative of an organization.
type Authorizer struct {
	orgs OrgReader
}

func NewAuthorizer(orgs OrgReader) *Authorizer {
	return &Authorizer{orgs: orgs}
}

// IsRepresentative is false for unknown organizations and anonymous actors.
func (a *Authorizer) IsRepresentative(ctx context.Context, actor string, orgID uint64) (bool, error) {
	if actor == "" {
		return false, nil
	}
	org, err := a.orgs.GetOrganization(ctx, orgID)
	if err != nil {
		return false, fmt.Errorf("authorize org %d: %w", orgID, err)
	}
	return org != nil && org.Representative() == actor, nil
}

// RequireRepresentative fails with the generic access-denied error unless actor
// represents orgID.
func (a *Authorizer) RequireRepresentative(ctx context.Context, actor string, orgID uint64) error {
	if actor == "" {
		return constant.NewError(constant.CodeUnauthorized)
	}
	ok, err := a.IsRepresentative(ctx, actor, orgID)
	if err != nil {
		return err
	}
	if !ok {
		return constant.ErrAccessDenied
	}
	return nil
}
