package authz

import (
	"context"
	"testing"
)

type stubStore struct {
	roles   map[[2]int64]Role
	globals map[int64]GlobalRole
}

func (s stubStore) ActiveRole(ctx context.Context, userID, companyID int64) (Role, bool, error) {
	role, ok := s.roles[[2]int64{userID, companyID}]
	return role, ok, nil
}

func (s stubStore) ActiveRoles(ctx context.Context, userID int64) ([]Role, error) {
	var roles []Role
	for key, role := range s.roles {
		if key[0] == userID {
			roles = append(roles, role)
		}
	}
	return roles, nil
}

func (s stubStore) GlobalRole(ctx context.Context, userID int64) (GlobalRole, bool, error) {
	g, ok := s.globals[userID]
	return g, ok, nil
}

func TestRoleOfUsesMembership(t *testing.T) {
	svc := NewService(stubStore{
		roles: map[[2]int64]Role{{1, 10}: RoleAccountant},
	})

	role, ok, err := svc.RoleOf(context.Background(), 1, 10)
	if err != nil || !ok || role != RoleAccountant {
		t.Fatalf("got (%s, %v, %v)", role, ok, err)
	}

	// Same user, different company: no role.
	_, ok, err = svc.RoleOf(context.Background(), 1, 11)
	if err != nil || ok {
		t.Fatalf("membership must be company scoped, got ok=%v err=%v", ok, err)
	}
}

func TestRoleOfGlobalAdministratorBypass(t *testing.T) {
	svc := NewService(stubStore{
		globals: map[int64]GlobalRole{2: GlobalRoleAdministrator},
	})

	role, ok, err := svc.RoleOf(context.Background(), 2, 99)
	if err != nil || !ok || role != RoleAdministrator {
		t.Fatalf("global administrator must map to administrator everywhere, got (%s, %v, %v)", role, ok, err)
	}

	can, err := svc.Can(context.Background(), 2, 99, CapAuditRead)
	if err != nil || !can {
		t.Fatalf("global administrator denied %s", CapAuditRead)
	}

	global, err := svc.IsGlobalAdministrator(context.Background(), 2)
	if err != nil || !global {
		t.Fatal("IsGlobalAdministrator must report true")
	}
	global, err = svc.IsGlobalAdministrator(context.Background(), 3)
	if err != nil || global {
		t.Fatal("unknown user must not be a global administrator")
	}
}

func TestCanDeniesWithoutMembership(t *testing.T) {
	svc := NewService(stubStore{})
	can, err := svc.Can(context.Background(), 5, 10, CapAccountingRead)
	if err != nil || can {
		t.Fatalf("user without membership must be denied, got can=%v err=%v", can, err)
	}
}

func TestCanCreateCompany(t *testing.T) {
	svc := NewService(stubStore{
		roles: map[[2]int64]Role{
			{1, 10}: RoleAdministrator,
			{2, 10}: RoleManager,
		},
		globals: map[int64]GlobalRole{3: GlobalRoleAdministrator},
	})

	for _, tc := range []struct {
		userID int64
		want   bool
	}{
		{1, true},  // administrator somewhere
		{2, false}, // manager lacks companies:create
		{3, true},  // global administrator, no memberships
		{4, false}, // no memberships at all
	} {
		got, err := svc.CanCreateCompany(context.Background(), tc.userID)
		if err != nil || got != tc.want {
			t.Fatalf("user %d: got (%v, %v), want %v", tc.userID, got, err, tc.want)
		}
	}
}

func TestCanAssignFollowsRoleMatrix(t *testing.T) {
	svc := NewService(stubStore{
		roles: map[[2]int64]Role{
			{1, 10}: RoleManager,
			{2, 10}: RoleAssistant,
		},
	})

	ok, err := svc.CanAssign(context.Background(), 1, 10, RoleAccountant)
	if err != nil || !ok {
		t.Fatal("manager must assign accountant")
	}
	ok, err = svc.CanAssign(context.Background(), 1, 10, RoleAdministrator)
	if err != nil || ok {
		t.Fatal("manager must not assign administrator")
	}
	ok, err = svc.CanAssign(context.Background(), 2, 10, RoleAssistant)
	if err != nil || ok {
		t.Fatal("assistant must not assign anyone")
	}
}
