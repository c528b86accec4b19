package authz

import (
	"github.com/google/uuid"

	"github.com/motorforge/workshop-backend/pkg/db/models"
	"github.com/motorforge/workshop-backend/pkg/enums"
)

// Visibility rules:
//   - admins see every order
//   - employees see orders they created or are assigned to
//   - customers see their own orders only

// CanViewOrder reports whether the user may read the order.
func CanViewOrder(userID uuid.UUID, role enums.Role, order *models.Order) bool {
	if order == nil {
		return false
	}
	if role.IsAdmin() {
		return true
	}
	if role == enums.RoleEmployee {
		if order.CreatedBy == userID {
			return true
		}
		return order.AssignedTo != nil && *order.AssignedTo == userID
	}
	if role == enums.RoleCustomer {
		return order.CustomerID == userID
	}
	return false
}

// CanManageOrder reports whether the user may run staff lifecycle operations
// (budget, work, delivery, hold, cancel, detail edits) on the order.
func CanManageOrder(userID uuid.UUID, role enums.Role, order *models.Order) bool {
	if order == nil || !role.IsStaff() {
		return false
	}
	if role.IsAdmin() {
		return true
	}
	if order.CreatedBy == userID {
		return true
	}
	return order.AssignedTo != nil && *order.AssignedTo == userID
}

// CanApproveOrder reports whether the user may decide the customer approval
// step. The owning customer approves; admins may record an approval taken
// over the counter.
func CanApproveOrder(userID uuid.UUID, role enums.Role, order *models.Order) bool {
	if order == nil {
		return false
	}
	if role.IsAdmin() {
		return true
	}
	return role == enums.RoleCustomer && order.CustomerID == userID
}

// CanAssignOrders reports whether the role may change order assignment.
func CanAssignOrders(role enums.Role) bool {
	return role.IsAdmin()
}

// ListScope describes the row filter a caller's role imposes on order lists.
type ListScope struct {
	// CustomerID restricts results to the customer's own orders.
	CustomerID *uuid.UUID
	// StaffScopeID restricts results to orders created by or assigned to the user.
	StaffScopeID *uuid.UUID
}

// ScopeFor resolves the list filter for the caller. Admins get an empty scope.
func ScopeFor(userID uuid.UUID, role enums.Role) ListScope {
	switch {
	case role.IsAdmin():
		return ListScope{}
	case role == enums.RoleEmployee:
		id := userID
		return ListScope{StaffScopeID: &id}
	default:
		id := userID
		return ListScope{CustomerID: &id}
	}
}
