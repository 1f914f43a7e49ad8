package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ledgerline/ledgerline/internal/authz"
)

type stubMemberships struct {
	roles   map[[2]int64]authz.Role
	globals map[int64]authz.GlobalRole
}

func (s stubMemberships) ActiveRole(ctx context.Context, userID, companyID int64) (authz.Role, bool, error) {
	r, ok := s.roles[[2]int64{userID, companyID}]
	return r, ok, nil
}

func (s stubMemberships) ActiveRoles(ctx context.Context, userID int64) ([]authz.Role, error) {
	var roles []authz.Role
	for key, role := range s.roles {
		if key[0] == userID {
			roles = append(roles, role)
		}
	}
	return roles, nil
}

func (s stubMemberships) GlobalRole(ctx context.Context, userID int64) (authz.GlobalRole, bool, error) {
	g, ok := s.globals[userID]
	return g, ok, nil
}

type memoryUserRepo struct {
	users       map[int64]User
	memberships map[[2]int64]Membership
	hashes      map[int64]string
	nextID      int64
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{
		users:       make(map[int64]User),
		memberships: make(map[[2]int64]Membership),
		hashes:      make(map[int64]string),
	}
}

func (r *memoryUserRepo) ListUsers(ctx context.Context) ([]User, error) {
	out := make([]User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, nil
}

func (r *memoryUserRepo) GetUser(ctx context.Context, id int64) (User, error) {
	u, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (r *memoryUserRepo) CreateUser(ctx context.Context, user User, passwordHash string) (User, error) {
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return User{}, ErrDuplicateEmail
		}
	}
	r.nextID++
	user.ID = r.nextID
	r.users[user.ID] = user
	r.hashes[user.ID] = passwordHash
	return user, nil
}

func (r *memoryUserRepo) ListMembers(ctx context.Context, companyID int64) ([]Membership, error) {
	var out []Membership
	for key, m := range r.memberships {
		if key[1] == companyID && m.IsActive {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memoryUserRepo) GetMembership(ctx context.Context, userID, companyID int64) (Membership, error) {
	m, ok := r.memberships[[2]int64{userID, companyID}]
	if !ok || !m.IsActive {
		return Membership{}, ErrNotFound
	}
	return m, nil
}

func (r *memoryUserRepo) UpsertMembership(ctx context.Context, userID, companyID int64, role authz.Role) error {
	r.memberships[[2]int64{userID, companyID}] = Membership{
		UserID: userID, CompanyID: companyID, Role: role, IsActive: true,
	}
	return nil
}

func (r *memoryUserRepo) DeactivateMembership(ctx context.Context, userID, companyID int64) error {
	key := [2]int64{userID, companyID}
	m, ok := r.memberships[key]
	if !ok || !m.IsActive {
		return ErrNotFound
	}
	m.IsActive = false
	r.memberships[key] = m
	return nil
}

const companyID = int64(1)

func setup(roles map[[2]int64]authz.Role, globals map[int64]authz.GlobalRole) (*Service, *memoryUserRepo) {
	repo := newMemoryUserRepo()
	evaluator := authz.NewService(stubMemberships{roles: roles, globals: globals})
	return NewService(repo, evaluator, nil), repo
}

func TestAssignRoleWithinReach(t *testing.T) {
	svc, repo := setup(map[[2]int64]authz.Role{{10, companyID}: authz.RoleManager}, nil)
	repo.users[20] = User{ID: 20, Email: "new@test.local", IsActive: true}

	require.NoError(t, svc.AssignRole(context.Background(), 10, companyID, 20, authz.RoleAccountant))
	m, err := repo.GetMembership(context.Background(), 20, companyID)
	require.NoError(t, err)
	require.Equal(t, authz.RoleAccountant, m.Role)
}

func TestAssignRoleBeyondReach(t *testing.T) {
	svc, repo := setup(map[[2]int64]authz.Role{{10, companyID}: authz.RoleManager}, nil)
	repo.users[20] = User{ID: 20, IsActive: true}

	err := svc.AssignRole(context.Background(), 10, companyID, 20, authz.RoleAdministrator)
	require.ErrorIs(t, err, ErrPermissionDenied)
}

func TestAssignRoleCannotTouchHigherMember(t *testing.T) {
	svc, repo := setup(map[[2]int64]authz.Role{{10, companyID}: authz.RoleManager}, nil)
	repo.users[20] = User{ID: 20, IsActive: true}
	// Target already holds administrator, which a manager cannot grant.
	require.NoError(t, repo.UpsertMembership(context.Background(), 20, companyID, authz.RoleAdministrator))

	err := svc.AssignRole(context.Background(), 10, companyID, 20, authz.RoleAssistant)
	require.ErrorIs(t, err, ErrPermissionDenied)
	require.ErrorIs(t, svc.RemoveMember(context.Background(), 10, companyID, 20), ErrPermissionDenied)
}

func TestAssignRoleRejectsSelf(t *testing.T) {
	svc, _ := setup(map[[2]int64]authz.Role{{10, companyID}: authz.RoleAdministrator}, nil)
	err := svc.AssignRole(context.Background(), 10, companyID, 10, authz.RoleAssistant)
	require.ErrorIs(t, err, ErrSelfDemotion)
}

func TestAssignRoleUnknownRole(t *testing.T) {
	svc, _ := setup(map[[2]int64]authz.Role{{10, companyID}: authz.RoleAdministrator}, nil)
	err := svc.AssignRole(context.Background(), 10, companyID, 20, authz.Role("owner"))
	require.ErrorIs(t, err, authz.ErrUnknownRole)
}

func TestRemoveMemberDeactivates(t *testing.T) {
	svc, repo := setup(map[[2]int64]authz.Role{{10, companyID}: authz.RoleAdministrator}, nil)
	repo.users[20] = User{ID: 20, IsActive: true}
	require.NoError(t, repo.UpsertMembership(context.Background(), 20, companyID, authz.RoleAssistant))

	require.NoError(t, svc.RemoveMember(context.Background(), 10, companyID, 20))
	_, err := repo.GetMembership(context.Background(), 20, companyID)
	require.ErrorIs(t, err, ErrNotFound)
	// The row survives deactivated so historical references stay valid.
	require.Contains(t, repo.memberships, [2]int64{20, companyID})
}

func TestCreateUserGlobalAdministratorOnly(t *testing.T) {
	svc, repo := setup(nil, map[int64]authz.GlobalRole{1: authz.GlobalRoleAdministrator})

	created, err := svc.CreateUser(context.Background(), 1, "New@Test.Local", "New User", "long password")
	require.NoError(t, err)
	require.Equal(t, "new@test.local", created.Email)
	require.NotEmpty(t, repo.hashes[created.ID])
	require.NotEqual(t, "long password", repo.hashes[created.ID])

	_, err = svc.CreateUser(context.Background(), 2, "other@test.local", "Other", "long password")
	require.ErrorIs(t, err, ErrPermissionDenied)
}

func TestCreateUserRejectsShortPassword(t *testing.T) {
	svc, _ := setup(nil, map[int64]authz.GlobalRole{1: authz.GlobalRoleAdministrator})
	_, err := svc.CreateUser(context.Background(), 1, "a@test.local", "A", "short")
	require.Error(t, err)
}

func TestListMembersRequiresCapability(t *testing.T) {
	svc, _ := setup(map[[2]int64]authz.Role{{10, companyID}: authz.RoleAccountant}, nil)
	_, err := svc.ListMembers(context.Background(), 10, companyID)
	require.ErrorIs(t, err, ErrPermissionDenied)
}

func TestListUsersRequiresGlobalAdministrator(t *testing.T) {
	svc, _ := setup(map[[2]int64]authz.Role{{10, companyID}: authz.RoleAdministrator}, nil)
	_, err := svc.ListUsers(context.Background(), 10)
	require.ErrorIs(t, err, ErrPermissionDenied)
}
