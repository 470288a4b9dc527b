// Package rbac holds the permission policy used to gate row actions and
// individual form fields. Permissions are "{entity}.{action}" strings;
// field-level gates use "{entity}.field.{name}".
package rbac

// Roles maps a role to the permissions it grants. "*" grants everything.
var Roles = map[string][]string{
	"admin":      {"*"},
	"manager":    {"staffs.*", "clients.*", "salaries.*", "zones.*", "subzones.*", "vendors.*", "invoices.read", "invoices.export"},
	"accountant": {"salaries.*", "invoices.*", "clients.read", "staffs.read"},
	"operator":   {"clients.read", "clients.create", "clients.update", "zones.read", "subzones.read"},
}

// CheckPermission reports whether role grants permission. A grant of
// "{entity}.*" covers every action on that entity.
func CheckPermission(role, permission string) bool {
	perms, ok := Roles[role]
	if !ok {
		return false
	}
	for _, p := range perms {
		if p == "*" || p == permission {
			return true
		}
		if n := len(p); n > 2 && p[n-2:] == ".*" && matchesPrefix(permission, p[:n-2]) {
			return true
		}
	}
	return false
}

// CheckAny reports whether any of the roles grants permission.
func CheckAny(roles []string, permission string) bool {
	for _, r := range roles {
		if CheckPermission(r, permission) {
			return true
		}
	}
	return false
}

func matchesPrefix(permission, prefix string) bool {
	return len(permission) > len(prefix) && permission[:len(prefix)] == prefix && permission[len(prefix)] == '.'
}
