package models

// Role enum
type Role string

const (
	RoleAdmin            Role = "admin"
	RoleInventoryManager Role = "inventory manager"
	RoleSalesManager     Role = "sales manager"
	RoleStaff            Role = "staff"
	RoleCustomer         Role = "customer"
)

// StaffRoles lists every role a row in the users table may carry
var StaffRoles = []Role{RoleAdmin, RoleInventoryManager, RoleSalesManager, RoleStaff}

// IsStaff reports whether r is one of the staff roles
func (r Role) IsStaff() bool {
	for _, s := range StaffRoles {
		if r == s {
			return true
		}
	}
	return false
}

// OrderStatus enum
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

var orderStatuses = map[OrderStatus]bool{
	OrderStatusPending:    true,
	OrderStatusProcessing: true,
	OrderStatusShipped:    true,
	OrderStatusDelivered:  true,
	OrderStatusCancelled:  true,
}

// IsValid reports whether s is one of the enumerated order statuses
func (s OrderStatus) IsValid() bool {
	return orderStatuses[s]
}
