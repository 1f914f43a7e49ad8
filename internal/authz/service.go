package authz

import (
	"context"
)

// MembershipStore reads role rows. ActiveRole reports the role from an active
// membership row for (user, company); ActiveRoles reports the distinct roles
// the user holds across all companies; GlobalRole reports the user's global
// role when one is set.
type MembershipStore interface {
	ActiveRole(ctx context.Context, userID, companyID int64) (Role, bool, error)
	ActiveRoles(ctx context.Context, userID int64) ([]Role, error)
	GlobalRole(ctx context.Context, userID int64) (GlobalRole, bool, error)
}

// Service evaluates role and capability questions. It performs pure lookups
// with no side effects; callers are responsible for logging denied attempts.
type Service struct {
	store MembershipStore
}

// NewService constructs the evaluator.
func NewService(store MembershipStore) *Service {
	return &Service{store: store}
}

// RoleOf resolves the user's role within a company. Users without an active
// membership row have no role, unless they hold the global administrator
// role, which maps to administrator in every company.
func (s *Service) RoleOf(ctx context.Context, userID, companyID int64) (Role, bool, error) {
	role, ok, err := s.store.ActiveRole(ctx, userID, companyID)
	if err != nil {
		return "", false, err
	}
	if ok {
		return role, true, nil
	}
	global, ok, err := s.store.GlobalRole(ctx, userID)
	if err != nil {
		return "", false, err
	}
	if ok && global == GlobalRoleAdministrator {
		return RoleAdministrator, true, nil
	}
	return "", false, nil
}

// IsGlobalAdministrator reports whether the user holds the account-level
// administrator role.
func (s *Service) IsGlobalAdministrator(ctx context.Context, userID int64) (bool, error) {
	global, ok, err := s.store.GlobalRole(ctx, userID)
	if err != nil {
		return false, err
	}
	return ok && global == GlobalRoleAdministrator, nil
}

// CanCreateCompany decides whether the user may create a new company. The
// capability is not company-scoped, so it is granted when any of the user's
// existing roles carries it, or when the user is a global administrator.
func (s *Service) CanCreateCompany(ctx context.Context, userID int64) (bool, error) {
	ok, err := s.IsGlobalAdministrator(ctx, userID)
	if err != nil || ok {
		return ok, err
	}
	roles, err := s.store.ActiveRoles(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, role := range roles {
		if RoleCan(role, CapCompaniesCreate) {
			return true, nil
		}
	}
	return false, nil
}

// Can decides whether the user may perform the capability within the company.
func (s *Service) Can(ctx context.Context, userID, companyID int64, cap Capability) (bool, error) {
	role, ok, err := s.RoleOf(ctx, userID, companyID)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	return RoleCan(role, cap), nil
}

// CanAssign decides whether the acting user may grant target within the company.
func (s *Service) CanAssign(ctx context.Context, actorID, companyID int64, target Role) (bool, error) {
	role, ok, err := s.RoleOf(ctx, actorID, companyID)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	return CanAssignRole(role, target), nil
}
