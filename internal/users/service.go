package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/ledgerline/ledgerline/internal/authz"
	"github.com/ledgerline/ledgerline/internal/shared"
)

var (
	// ErrNotFound indicates a missing user or membership.
	ErrNotFound = errors.New("users: not found")
	// ErrDuplicateEmail indicates an email collision.
	ErrDuplicateEmail = errors.New("users: email already registered")
	// ErrPermissionDenied indicates the actor lacks the required capability
	// or may not touch the target's current role.
	ErrPermissionDenied = errors.New("users: permission denied")
	// ErrSelfDemotion blocks an actor from changing their own membership.
	ErrSelfDemotion = errors.New("users: cannot modify own membership")
)

// RepositoryPort defines data access for accounts and memberships.
type RepositoryPort interface {
	ListUsers(ctx context.Context) ([]User, error)
	GetUser(ctx context.Context, id int64) (User, error)
	CreateUser(ctx context.Context, user User, passwordHash string) (User, error)
	ListMembers(ctx context.Context, companyID int64) ([]Membership, error)
	GetMembership(ctx context.Context, userID, companyID int64) (Membership, error)
	// UpsertMembership writes the role, reactivating a previously removed
	// membership row if one exists.
	UpsertMembership(ctx context.Context, userID, companyID int64, role authz.Role) error
	DeactivateMembership(ctx context.Context, userID, companyID int64) error
}

// AuditPort records membership changes.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service handles account and membership management.
type Service struct {
	repo  RepositoryPort
	authz *authz.Service
	audit AuditPort
	now   func() time.Time
}

// NewService builds the user service.
func NewService(repo RepositoryPort, authorizer *authz.Service, audit AuditPort) *Service {
	return &Service{repo: repo, authz: authorizer, audit: audit, now: time.Now}
}

// ListUsers returns every account. Restricted to global administrators since
// the listing spans all tenants.
func (s *Service) ListUsers(ctx context.Context, actorID int64) ([]User, error) {
	global, err := s.authz.IsGlobalAdministrator(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !global {
		return nil, ErrPermissionDenied
	}
	return s.repo.ListUsers(ctx)
}

// CreateUser registers a new account. Restricted to global administrators.
func (s *Service) CreateUser(ctx context.Context, actorID int64, email, name, password string) (User, error) {
	global, err := s.authz.IsGlobalAdministrator(ctx, actorID)
	if err != nil {
		return User{}, err
	}
	if !global {
		return User{}, ErrPermissionDenied
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || strings.TrimSpace(name) == "" {
		return User{}, errors.New("users: email and name are required")
	}
	if len(password) < 8 {
		return User{}, errors.New("users: password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}
	created, err := s.repo.CreateUser(ctx, User{Email: email, Name: strings.TrimSpace(name), IsActive: true}, string(hash))
	if err != nil {
		return User{}, err
	}
	s.record(ctx, actorID, "user.create", created.ID, 0, map[string]any{"email": created.Email})
	return created, nil
}

// ListMembers lists a company's active memberships. Requires users:manage.
func (s *Service) ListMembers(ctx context.Context, actorID, companyID int64) ([]Membership, error) {
	if err := s.requireCapability(ctx, actorID, companyID, authz.CapUsersManage); err != nil {
		return nil, err
	}
	return s.repo.ListMembers(ctx, companyID)
}

// AssignRole grants a role within a company. The actor must hold
// roles:assign, must be allowed to grant the target role, and when the
// target already holds a role, must be allowed to grant that one too. A
// manager therefore cannot quietly reassign another manager.
func (s *Service) AssignRole(ctx context.Context, actorID, companyID, targetUserID int64, role authz.Role) error {
	if actorID == targetUserID {
		return ErrSelfDemotion
	}
	if !role.Valid() {
		return authz.ErrUnknownRole
	}
	if err := s.requireCapability(ctx, actorID, companyID, authz.CapRolesAssign); err != nil {
		return err
	}
	allowed, err := s.authz.CanAssign(ctx, actorID, companyID, role)
	if err != nil {
		return err
	}
	if !allowed {
		return fmt.Errorf("%w: cannot grant role %s", ErrPermissionDenied, role)
	}
	if err := s.requireTargetReach(ctx, actorID, companyID, targetUserID); err != nil {
		return err
	}
	if _, err := s.repo.GetUser(ctx, targetUserID); err != nil {
		return err
	}
	if err := s.repo.UpsertMembership(ctx, targetUserID, companyID, role); err != nil {
		return err
	}
	s.record(ctx, actorID, "membership.assign", targetUserID, companyID, map[string]any{"role": string(role)})
	return nil
}

// RemoveMember deactivates a membership. The membership row is kept so past
// journal entries retain a valid creator reference.
func (s *Service) RemoveMember(ctx context.Context, actorID, companyID, targetUserID int64) error {
	if actorID == targetUserID {
		return ErrSelfDemotion
	}
	if err := s.requireCapability(ctx, actorID, companyID, authz.CapUsersManage); err != nil {
		return err
	}
	if err := s.requireTargetReach(ctx, actorID, companyID, targetUserID); err != nil {
		return err
	}
	if err := s.repo.DeactivateMembership(ctx, targetUserID, companyID); err != nil {
		return err
	}
	s.record(ctx, actorID, "membership.remove", targetUserID, companyID, nil)
	return nil
}

// requireTargetReach refuses changes to a member whose current role the actor
// could not have granted.
func (s *Service) requireTargetReach(ctx context.Context, actorID, companyID, targetUserID int64) error {
	current, err := s.repo.GetMembership(ctx, targetUserID, companyID)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	allowed, err := s.authz.CanAssign(ctx, actorID, companyID, current.Role)
	if err != nil {
		return err
	}
	if !allowed {
		return fmt.Errorf("%w: cannot modify a %s", ErrPermissionDenied, current.Role)
	}
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

func (s *Service) record(ctx context.Context, actorID int64, action string, targetID, companyID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		CompanyID: companyID,
		ActorID:   actorID,
		Action:    action,
		Entity:    "user",
		EntityID:  fmt.Sprintf("%d", targetID),
		Meta:      meta,
		At:        s.now(),
	})
}
