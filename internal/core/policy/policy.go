// Package policy is the access-control gate for every caller-facing
// operation. It runs before any handler or service logic, so a denied
// caller never causes a store mutation.
package policy

import (
	"github.com/greenfield-library/lending-system/internal/core/domain"
)

// Operation identifies a caller-facing operation for authorization purposes.
type Operation string

const (
	OpBrowseCatalog   Operation = "browse_catalog"
	OpAddBook         Operation = "add_book"
	OpSetAvailability Operation = "set_availability"
	OpSubmitRequest   Operation = "submit_request"
	OpApproveRequest  Operation = "approve_request"
	OpListOwnRequests Operation = "list_own_requests"
	OpListOwnBooks    Operation = "list_own_books"
	OpListAllRequests Operation = "list_all_requests"
	OpListStudents    Operation = "list_students"
	OpViewStudent     Operation = "view_student"
	OpViewDashboard   Operation = "view_dashboard"
)

// allowedRoles maps each operation to the set of roles permitted to run it.
// The catalog read is open to any authenticated role; everything else is
// strictly student-only or admin-only.
var allowedRoles = map[Operation]map[string]struct{}{
	OpBrowseCatalog:   roles(domain.RoleStudent, domain.RoleAdmin),
	OpAddBook:         roles(domain.RoleAdmin),
	OpSetAvailability: roles(domain.RoleAdmin),
	OpSubmitRequest:   roles(domain.RoleStudent),
	OpApproveRequest:  roles(domain.RoleAdmin),
	OpListOwnRequests: roles(domain.RoleStudent),
	OpListOwnBooks:    roles(domain.RoleStudent),
	OpListAllRequests: roles(domain.RoleAdmin),
	OpListStudents:    roles(domain.RoleAdmin),
	OpViewStudent:     roles(domain.RoleAdmin),
	OpViewDashboard:   roles(domain.RoleAdmin),
}

func roles(rs ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(rs))
	for _, r := range rs {
		m[r] = struct{}{}
	}
	return m
}

// Authorize reports whether callerRole may perform op. Unknown operations
// and unknown roles are both denied.
func Authorize(callerRole string, op Operation) error {
	allowed, ok := allowedRoles[op]
	if !ok {
		return domain.ErrForbidden
	}
	if _, ok := allowed[callerRole]; !ok {
		return domain.ErrForbidden
	}
	return nil
}
