package model

import "time"

// Grader permissions checked by the permission middleware on grading routes.
const (
	PermissionGradingRead  = "grading.read"
	PermissionGradingWrite = "grading.write"
	PermissionContentRead  = "content.read"
)

// Grader represents a grader (examiner) account.
type Grader struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Permissions  []string  `json:"permissions"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// GraderLoginRequest is the payload for grader authentication.
type GraderLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=4,max=128"`
}

// GraderLoginResponse is returned after successful grader login.
type GraderLoginResponse struct {
	Token  string `json:"token"`
	Grader Grader `json:"grader"`
}
