package authz

import (
	"testing"

	"github.com/google/uuid"

	"github.com/motorforge/workshop-backend/pkg/db/models"
	"github.com/motorforge/workshop-backend/pkg/enums"
)

func TestCanViewOrder(t *testing.T) {
	owner := uuid.New()
	creator := uuid.New()
	assignee := uuid.New()
	order := &models.Order{
		CustomerID: owner,
		CreatedBy:  creator,
		AssignedTo: &assignee,
	}

	cases := []struct {
		name   string
		userID uuid.UUID
		role   enums.Role
		want   bool
	}{
		{"admin sees any", uuid.New(), enums.RoleAdmin, true},
		{"super admin sees any", uuid.New(), enums.RoleSuperAdmin, true},
		{"creating employee", creator, enums.RoleEmployee, true},
		{"assigned employee", assignee, enums.RoleEmployee, true},
		{"unrelated employee", uuid.New(), enums.RoleEmployee, false},
		{"owning customer", owner, enums.RoleCustomer, true},
		{"other customer", uuid.New(), enums.RoleCustomer, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanViewOrder(tc.userID, tc.role, order); got != tc.want {
				t.Fatalf("expected %v got %v", tc.want, got)
			}
		})
	}
}

func TestCanManageOrderExcludesCustomers(t *testing.T) {
	owner := uuid.New()
	order := &models.Order{CustomerID: owner, CreatedBy: uuid.New()}
	if CanManageOrder(owner, enums.RoleCustomer, order) {
		t.Fatal("customer must not manage orders")
	}
	if !CanManageOrder(uuid.New(), enums.RoleAdmin, order) {
		t.Fatal("admin must manage any order")
	}
	if CanManageOrder(uuid.New(), enums.RoleEmployee, order) {
		t.Fatal("unrelated employee must not manage the order")
	}
}

func TestCanApproveOrder(t *testing.T) {
	owner := uuid.New()
	order := &models.Order{CustomerID: owner}
	if !CanApproveOrder(owner, enums.RoleCustomer, order) {
		t.Fatal("owning customer must approve")
	}
	if CanApproveOrder(uuid.New(), enums.RoleCustomer, order) {
		t.Fatal("other customer must not approve")
	}
	if CanApproveOrder(uuid.New(), enums.RoleEmployee, order) {
		t.Fatal("employee must not approve")
	}
	if !CanApproveOrder(uuid.New(), enums.RoleAdmin, order) {
		t.Fatal("admin may record an approval")
	}
}

func TestScopeFor(t *testing.T) {
	userID := uuid.New()

	admin := ScopeFor(userID, enums.RoleAdmin)
	if admin.CustomerID != nil || admin.StaffScopeID != nil {
		t.Fatal("admin scope must be empty")
	}

	employee := ScopeFor(userID, enums.RoleEmployee)
	if employee.StaffScopeID == nil || *employee.StaffScopeID != userID {
		t.Fatal("employee scope must pin staff id")
	}

	customer := ScopeFor(userID, enums.RoleCustomer)
	if customer.CustomerID == nil || *customer.CustomerID != userID {
		t.Fatal("customer scope must pin customer id")
	}
}
