// models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles used across the portal
const (
	RoleSuperAdmin  = "SUPER_ADMIN" // Platform Super Admin
	RoleAdmin       = "ADMIN"       // Sales Admin (manages sales agents)
	RoleUWAdmin     = "UW_ADMIN"    // Underwriter Admin (manages underwriters)
	RoleAgent       = "AGENT"       // Sales Agent
	RoleUnderwriter = "UNDERWRITER" // Underwriting team
)

// User model
type User struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Username  string             `json:"username" bson:"username"`
	Password  string             `json:"password,omitempty" bson:"password"`
	FullName  string             `json:"fullName" bson:"fullName"`
	Email     string             `json:"email,omitempty" bson:"email,omitempty"`
	Role      string             `json:"role" bson:"role"`
	IsActive  bool               `json:"isActive" bson:"isActive"`
	LastLogin *time.Time         `json:"lastLogin,omitempty" bson:"lastLogin,omitempty"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// HasAssignmentAuthority reports whether the role may assign or unassign
// underwriters on a QRF.
func (u User) HasAssignmentAuthority() bool {
	return u.Role == RoleSuperAdmin || u.Role == RoleUWAdmin
}

// IsUnderwritingSide covers both underwriters and their admins.
func (u User) IsUnderwritingSide() bool {
	return u.Role == RoleUnderwriter || u.Role == RoleUWAdmin
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginData struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	User         User   `json:"user"`
}

type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"fullName" validate:"required"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Role     string `json:"role" validate:"required,oneof=SUPER_ADMIN ADMIN UW_ADMIN AGENT UNDERWRITER"`
}

type UpdateUserRequest struct {
	FullName string `json:"fullName,omitempty"`
	Password string `json:"password,omitempty"`
	Role     string `json:"role,omitempty" validate:"omitempty,oneof=SUPER_ADMIN ADMIN UW_ADMIN AGENT UNDERWRITER"`
	IsActive *bool  `json:"isActive,omitempty"`
}

// Response is the uniform API response envelope
type Response struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
