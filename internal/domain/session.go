package domain

import "strings"

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// Known reports whether r is one of the roles the storefront understands.
func (r Role) Known() bool {
	return r == RoleCustomer || r == RoleAdmin
}

// UserSession is the authenticated visitor. Field names follow the remote login payload.
type UserSession struct {
	Name    string `json:"LOGIN_NAME,omitempty"`
	Email   string `json:"LOGIN_EMAIL"`
	Phone   string `json:"LOGIN_PHONE,omitempty"`
	Address string `json:"LOGIN_ADDRESS,omitempty"`
	Role    Role   `json:"role,omitempty"`
}

// IsComplete reports whether the session carries everything an order needs.
func (u UserSession) IsComplete() bool {
	for _, v := range []string{u.Name, u.Email, u.Phone, u.Address} {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

// EffectiveRole returns the role, defaulting to customer.
func (u UserSession) EffectiveRole() Role {
	if u.Role == "" {
		return RoleCustomer
	}
	return u.Role
}

func (u UserSession) IsAdmin() bool {
	return u.EffectiveRole() == RoleAdmin
}
