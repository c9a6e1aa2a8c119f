// Package policy is the single authorization table consulted by handlers
// and services.
package policy

import "market-service/internal/domain"

type Resource string

type Action string

const (
	Orders     Resource = "orders"
	Payments   Resource = "payments"
	Products   Resource = "products"
	Categories Resource = "categories"
	Cart       Resource = "cart"
	Wishlist   Resource = "wishlist"
	Reviews    Resource = "reviews"
	Users      Resource = "users"
	Profile    Resource = "profile"
)

const (
	Create       Action = "create"
	Read         Action = "read"
	ReadAny      Action = "read_any"
	Cancel       Action = "cancel"
	CancelAny    Action = "cancel_any"
	UpdateStatus Action = "update_status"
	Manage       Action = "manage"
	DeleteAny    Action = "delete_any"
	View         Action = "view"
)

var (
	everyone = []domain.Role{domain.RoleAdmin, domain.RoleConsumer, domain.RoleProducer, domain.RoleWholesaler, domain.RoleSuperseller}
	admins   = []domain.Role{domain.RoleAdmin}
	sellers  = []domain.Role{domain.RoleProducer}
)

var table = map[Resource]map[Action][]domain.Role{
	Orders: {
		Create:       everyone,
		Read:         everyone,
		Cancel:       everyone,
		ReadAny:      admins,
		CancelAny:    admins,
		UpdateStatus: admins,
	},
	Payments: {
		Create:       everyone,
		Read:         everyone,
		ReadAny:      admins,
		UpdateStatus: admins,
	},
	Products: {
		Manage:    sellers,
		DeleteAny: admins,
	},
	Categories: {
		Create: {domain.RoleProducer, domain.RoleAdmin},
	},
	Cart:     {Manage: everyone},
	Wishlist: {Manage: everyone},
	Reviews:  {Create: everyone},
	Users:    {Manage: admins},
	Profile:  {Manage: everyone},
}

// Dashboard is the resource guarding the dashboard of one role.
func Dashboard(role domain.Role) Resource {
	return Resource("dashboard:" + string(role))
}

func init() {
	for _, r := range domain.Roles {
		table[Dashboard(r)] = map[Action][]domain.Role{View: {r}}
	}
}

// Allow reports whether role may perform action on resource. Unknown roles,
// resources and actions are denied.
func Allow(role domain.Role, resource Resource, action Action) bool {
	for _, r := range table[resource][action] {
		if r == role {
			return true
		}
	}
	return false
}
