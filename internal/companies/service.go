package companies

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ledgerline/ledgerline/internal/authz"
	"github.com/ledgerline/ledgerline/internal/shared"
)

var (
	// ErrNotFound indicates a missing company.
	ErrNotFound = errors.New("companies: not found")
	// ErrDuplicateCode indicates a company code collision.
	ErrDuplicateCode = errors.New("companies: code already in use")
	// ErrHasPostedEntries blocks deletion while posted ledger data exists.
	// Posted journal entries are never cascaded away.
	ErrHasPostedEntries = errors.New("companies: posted ledger entries exist")
	// ErrPermissionDenied indicates the actor lacks the required capability.
	ErrPermissionDenied = errors.New("companies: permission denied")
)

// Repository defines data access for companies.
type Repository interface {
	ListForUser(ctx context.Context, userID int64) ([]Company, error)
	ListAll(ctx context.Context) ([]Company, error)
	Get(ctx context.Context, id int64) (Company, error)
	// CreateWithOwner inserts the company and an administrator membership for
	// the creating user in one transaction.
	CreateWithOwner(ctx context.Context, company Company, ownerID int64) (Company, error)
	Update(ctx context.Context, company Company) error
	HasPostedEntries(ctx context.Context, companyID int64) (bool, error)
	// DeleteCascade removes the company and its ledger-independent rows. It
	// re-checks for posted entries inside the transaction and fails with
	// ErrHasPostedEntries if any exist.
	DeleteCascade(ctx context.Context, companyID int64) error
}

// AuditPort records company lifecycle events.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service owns company lifecycle including the deletion policy.
type Service struct {
	repo  Repository
	authz *authz.Service
	audit AuditPort
	now   func() time.Time
}

// NewService constructs the company service.
func NewService(repo Repository, authorizer *authz.Service, audit AuditPort) *Service {
	return &Service{repo: repo, authz: authorizer, audit: audit, now: time.Now}
}

// ListForUser returns companies the user is an active member of. Global
// administrators see every company.
func (s *Service) ListForUser(ctx context.Context, userID int64) ([]Company, error) {
	global, err := s.authz.IsGlobalAdministrator(ctx, userID)
	if err != nil {
		return nil, err
	}
	if global {
		return s.repo.ListAll(ctx)
	}
	return s.repo.ListForUser(ctx, userID)
}

// Get fetches a company the actor may see.
func (s *Service) Get(ctx context.Context, actorID, companyID int64) (Company, error) {
	_, ok, err := s.authz.RoleOf(ctx, actorID, companyID)
	if err != nil {
		return Company{}, err
	}
	if !ok {
		return Company{}, ErrNotFound
	}
	return s.repo.Get(ctx, companyID)
}

// Create registers a new tenant. Requires companies:create through an
// existing administrator role or the global administrator role; the creator
// becomes the new company's administrator.
func (s *Service) Create(ctx context.Context, actorID int64, company Company) (Company, error) {
	allowed, err := s.authz.CanCreateCompany(ctx, actorID)
	if err != nil {
		return Company{}, err
	}
	if !allowed {
		return Company{}, ErrPermissionDenied
	}
	if err := validate(company); err != nil {
		return Company{}, err
	}
	company.IsActive = true
	created, err := s.repo.CreateWithOwner(ctx, company, actorID)
	if err != nil {
		return Company{}, err
	}
	s.record(ctx, actorID, "company.create", created.ID, map[string]any{"code": created.Code})
	return created, nil
}

// Update changes company master data. Requires companies:manage.
func (s *Service) Update(ctx context.Context, actorID, companyID int64, company Company) (Company, error) {
	if err := s.requireCapability(ctx, actorID, companyID, authz.CapCompaniesManage); err != nil {
		return Company{}, err
	}
	if err := validate(company); err != nil {
		return Company{}, err
	}
	current, err := s.repo.Get(ctx, companyID)
	if err != nil {
		return Company{}, err
	}
	current.Code = strings.TrimSpace(company.Code)
	current.Name = strings.TrimSpace(company.Name)
	current.Address = strings.TrimSpace(company.Address)
	current.TaxID = strings.TrimSpace(company.TaxID)
	if err := s.repo.Update(ctx, current); err != nil {
		return Company{}, err
	}
	s.record(ctx, actorID, "company.update", companyID, nil)
	return current, nil
}

// Delete removes a tenant. The policy refuses while posted ledger data
// exists: drafts, accounts, and memberships cascade, posted entries never do.
func (s *Service) Delete(ctx context.Context, actorID, companyID int64) error {
	if err := s.requireCapability(ctx, actorID, companyID, authz.CapCompaniesManage); err != nil {
		return err
	}
	posted, err := s.repo.HasPostedEntries(ctx, companyID)
	if err != nil {
		return err
	}
	if posted {
		return ErrHasPostedEntries
	}
	if err := s.repo.DeleteCascade(ctx, companyID); err != nil {
		return err
	}
	s.record(ctx, actorID, "company.delete", companyID, nil)
	return nil
}

func (s *Service) requireCapability(ctx context.Context, actorID, companyID int64, cap authz.Capability) error {
	ok, err := s.authz.Can(ctx, actorID, companyID, cap)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: user %d lacks %s", ErrPermissionDenied, actorID, cap)
	}
	return nil
}

func (s *Service) record(ctx context.Context, actorID int64, action string, companyID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		CompanyID: companyID,
		ActorID:   actorID,
		Action:    action,
		Entity:    "company",
		EntityID:  fmt.Sprintf("%d", companyID),
		Meta:      meta,
		At:        s.now(),
	})
}

func validate(c Company) error {
	if strings.TrimSpace(c.Code) == "" {
		return errors.New("companies: code is required")
	}
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("companies: name is required")
	}
	return nil
}
