package policy

import (
	"errors"
	"testing"

	"github.com/greenfield-library/lending-system/internal/core/domain"
)

func TestAuthorize(t *testing.T) {
	cases := []struct {
		name  string
		role  string
		op    Operation
		allow bool
	}{
		{"student browses catalog", domain.RoleStudent, OpBrowseCatalog, true},
		{"admin browses catalog", domain.RoleAdmin, OpBrowseCatalog, true},
		{"student submits request", domain.RoleStudent, OpSubmitRequest, true},
		{"admin cannot submit request", domain.RoleAdmin, OpSubmitRequest, false},
		{"admin approves request", domain.RoleAdmin, OpApproveRequest, true},
		{"student cannot approve", domain.RoleStudent, OpApproveRequest, false},
		{"admin adds book", domain.RoleAdmin, OpAddBook, true},
		{"student cannot add book", domain.RoleStudent, OpAddBook, false},
		{"student cannot toggle availability", domain.RoleStudent, OpSetAvailability, false},
		{"student cannot list students", domain.RoleStudent, OpListStudents, false},
		{"admin views dashboard", domain.RoleAdmin, OpViewDashboard, true},
		{"student lists own requests", domain.RoleStudent, OpListOwnRequests, true},
		{"admin lists all requests", domain.RoleAdmin, OpListAllRequests, true},
		{"student cannot list all requests", domain.RoleStudent, OpListAllRequests, false},
		{"empty role denied", "", OpBrowseCatalog, false},
		{"unknown role denied", "librarian", OpApproveRequest, false},
		{"unknown operation denied", domain.RoleAdmin, Operation("drop_tables"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Authorize(tc.role, tc.op)
			if tc.allow && err != nil {
				t.Fatalf("expected allow, got %v", err)
			}
			if !tc.allow {
				if err == nil {
					t.Fatal("expected deny, got allow")
				}
				if !errors.Is(err, domain.ErrForbidden) {
					t.Fatalf("expected ErrForbidden, got %v", err)
				}
			}
		})
	}
}
