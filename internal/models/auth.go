package models

import "github.com/golang-jwt/jwt/v5"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RoleAdvisor UserRole = "ADVISOR"
	RoleStudent UserRole = "STUDENT"
)

// JWTClaims is the access-token payload issued by the login service.
// For students UserID is the student id their plan is stored under.
type JWTClaims struct {
	UserID    string   `json:"user_id"`
	Role      UserRole `json:"role"`
	FirstName string   `json:"first_name,omitempty"`
	Program   Program  `json:"program,omitempty"`
	jwt.RegisteredClaims
}
