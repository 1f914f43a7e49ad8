package authz

import "errors"

// Role is a company-scoped permission grouping. A user may hold different
// roles in different companies.
type Role string

const (
	RoleAdministrator Role = "administrator"
	RoleManager       Role = "manager"
	RoleAccountant    Role = "accountant"
	RoleAssistant     Role = "assistant"
)

// GlobalRole is an account-level role spanning all companies.
type GlobalRole string

// GlobalRoleAdministrator grants administrator rights in every company,
// including companies the user holds no membership row for.
const GlobalRoleAdministrator GlobalRole = "global_administrator"

// Capability names a permitted module:action pair.
type Capability string

const (
	CapAccountingRead  Capability = "accounting:read"
	CapAccountingWrite Capability = "accounting:write"
	CapAccountingPost  Capability = "accounting:post"
	CapReportsRead     Capability = "reports:read"
	CapUsersManage     Capability = "users:manage"
	CapRolesAssign     Capability = "roles:assign"
	CapCompaniesManage Capability = "companies:manage"
	CapCompaniesCreate Capability = "companies:create"
	CapAuditRead       Capability = "audit:read"
)

// ErrUnknownRole indicates a role value outside the static set.
var ErrUnknownRole = errors.New("authz: unknown role")

// roleCapabilities is the single static capability table. Each tier is a
// superset of the tier below it, so capability checks are monotone across
// assistant -> accountant -> manager -> administrator.
var roleCapabilities = func() map[Role]map[Capability]struct{} {
	assistant := []Capability{CapAccountingRead, CapReportsRead}
	accountant := append([]Capability{CapAccountingWrite, CapAccountingPost}, assistant...)
	manager := append([]Capability{CapUsersManage, CapRolesAssign, CapCompaniesManage}, accountant...)
	administrator := append([]Capability{CapCompaniesCreate, CapAuditRead}, manager...)

	table := make(map[Role]map[Capability]struct{}, 4)
	for role, caps := range map[Role][]Capability{
		RoleAssistant:     assistant,
		RoleAccountant:    accountant,
		RoleManager:       manager,
		RoleAdministrator: administrator,
	} {
		set := make(map[Capability]struct{}, len(caps))
		for _, c := range caps {
			set[c] = struct{}{}
		}
		table[role] = set
	}
	return table
}()

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := roleCapabilities[r]
	return ok
}

// RoleCan reports whether the role holds the capability.
func RoleCan(role Role, cap Capability) bool {
	caps, ok := roleCapabilities[role]
	if !ok {
		return false
	}
	_, ok = caps[cap]
	return ok
}

// Capabilities returns the role's capability set in undefined order.
func Capabilities(role Role) []Capability {
	caps := roleCapabilities[role]
	out := make([]Capability, 0, len(caps))
	for c := range caps {
		out = append(out, c)
	}
	return out
}

// CanAssignRole decides whether a holder of assigner may grant target within
// a company. Administrators assign any role; managers assign only accountant
// and assistant; accountants and assistants assign none.
func CanAssignRole(assigner, target Role) bool {
	if !assigner.Valid() || !target.Valid() {
		return false
	}
	switch assigner {
	case RoleAdministrator:
		return true
	case RoleManager:
		return target == RoleAccountant || target == RoleAssistant
	}
	return false
}
