package models

import (
	"fmt"
	"time"
)

// Role is the closed set of account roles. Routing and screen access are
// driven off this value, so adding a role means updating every switch that
// consumes it.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleSales Role = "SALES"
)

// ParseRole converts a raw string into a Role, rejecting anything outside
// the closed set.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleSales:
		return RoleSales, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// User represents an account in the credential store.
// TargetOmset is the monthly revenue target in whole rupiah; it is only
// meaningful for sales accounts and stays nil for admins.
type User struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name        string    `json:"name" validate:"required,min=2,max=100"`
	Username    string    `json:"username" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=3,max=100"`
	Password    string    `json:"-" gorm:"type:varchar(255)"` // bcrypt hash, never the raw password
	Role        Role      `json:"role" gorm:"type:varchar(10)"`
	TargetOmset *int64    `json:"target_omset,omitempty"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName keeps the table name aligned with the original schema.
func (User) TableName() string {
	return "users"
}
