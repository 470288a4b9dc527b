package rbac

import "testing"

func TestCheckPermission(t *testing.T) {
	t.Parallel()

	cases := []struct {
		role string
		perm string
		want bool
	}{
		{"admin", "staffs.delete", true},
		{"manager", "staffs.delete", true},
		{"manager", "invoices.export", true},
		{"manager", "invoices.delete", false},
		{"accountant", "salaries.field.bonus", true},
		{"operator", "clients.delete", false},
		{"operator", "clients.create", true},
		{"unknown", "clients.read", false},
	}
	for _, tc := range cases {
		if got := CheckPermission(tc.role, tc.perm); got != tc.want {
			t.Errorf("CheckPermission(%q, %q) = %v, want %v", tc.role, tc.perm, got, tc.want)
		}
	}
}

func TestCheckAny(t *testing.T) {
	t.Parallel()

	if !CheckAny([]string{"operator", "accountant"}, "invoices.delete") {
		t.Fatalf("accountant should grant invoices.delete")
	}
	if CheckAny([]string{"operator"}, "invoices.delete") {
		t.Fatalf("operator should not grant invoices.delete")
	}
}
