// Package models defines the core data structures exchanged with the
// issue-tracking API: identities, issues, and the auth and counts payloads.
package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Role is the authorization level of a user.
type Role string

const (
	// RoleUser is a regular account.
	RoleUser Role = "user"
	// RoleAdmin may delete issues.
	RoleAdmin Role = "admin"
)

// User is an identity known to the API. It is both the session subject
// and the assignee-selection data for new issues.
type User struct {
	// ID is the API's identifier for the user.
	ID string `json:"_id"`
	// Name is the display name.
	Name string `json:"name"`
	// Email is the contact address, also used to log in.
	Email string `json:"email"`
	// Role is either "user" or "admin".
	Role Role `json:"role"`
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Status is the workflow state of an issue.
type Status string

const (
	StatusOpen       Status = "Open"
	StatusInProgress Status = "In-Progress"
	StatusResolved   Status = "Resolved"
)

// Statuses lists every status in workflow order.
var Statuses = []Status{StatusOpen, StatusInProgress, StatusResolved}

// Priority is the urgency of an issue.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Priorities lists every priority from most to least urgent.
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

// Assignee is either an embedded user object or a raw identifier string,
// depending on whether the API populated the reference.
type Assignee struct {
	User *User
	Ref  string
}

// UnmarshalJSON accepts both a user object and a plain string.
func (a *Assignee) UnmarshalJSON(data []byte) error {
	*a = Assignee{}
	if string(data) == "null" {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &a.Ref)
	}
	var u User
	if err := json.Unmarshal(data, &u); err != nil {
		return fmt.Errorf("decode assignee: %w", err)
	}
	a.User = &u
	return nil
}

// MarshalJSON writes the assignee back in the shape it was received.
func (a Assignee) MarshalJSON() ([]byte, error) {
	if a.User != nil {
		return json.Marshal(a.User)
	}
	return json.Marshal(a.Ref)
}

// Name returns the text to display for the assignee.
func (a *Assignee) Name() string {
	if a == nil {
		return ""
	}
	if a.User != nil {
		return a.User.Name
	}
	return a.Ref
}

// Issue is a tracked work item. Title is unique and doubles as the
// addressable key in API paths and routes.
type Issue struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	Priority    Priority  `json:"priority"`
	Assignee    *Assignee `json:"assignee,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// IssueCounts is the aggregate shown on the dashboard. Field names follow
// the API's /issue/counts payload.
type IssueCounts struct {
	Total      int `json:"total"`
	Open       int `json:"open"`
	InProgress int `json:"InProgress"`
	Resolved   int `json:"resolved"`
}

// AuthResponse is returned by the login and register endpoints.
type AuthResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	User    User   `json:"user"`
}

// LoginRequest is the body of POST /user/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignupRequest is the body of POST /user/register.
type SignupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// IssueInput is the body of POST /issue. An empty Assignee is left out
// of the request entirely.
type IssueInput struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Status      Status   `json:"status" validate:"required,oneof=Open In-Progress Resolved"`
	Priority    Priority `json:"priority" validate:"required,oneof=High Medium Low"`
	Assignee    string   `json:"assignee,omitempty"`
}

// NewIssueInput returns a draft with the form defaults applied.
func NewIssueInput() IssueInput {
	return IssueInput{Status: StatusOpen, Priority: PriorityLow}
}

// IssueUpdate is the editable part of an issue, sent whole on PUT.
type IssueUpdate struct {
	Description string   `json:"description" validate:"required"`
	Status      Status   `json:"status" validate:"required,oneof=Open In-Progress Resolved"`
	Priority    Priority `json:"priority" validate:"required,oneof=High Medium Low"`
}

// Draft returns the editable fields of the issue.
func (i Issue) Draft() IssueUpdate {
	return IssueUpdate{Description: i.Description, Status: i.Status, Priority: i.Priority}
}

// Apply merges an update into the issue.
func (i Issue) Apply(u IssueUpdate) Issue {
	i.Description = u.Description
	i.Status = u.Status
	i.Priority = u.Priority
	return i
}

// Principal is the authenticated caller of the API, as carried by a
// verified credential.
type Principal struct {
	UserID string
	Name   string
	Role   Role
}

// IsAdmin reports whether the caller holds the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// UserRecord is a stored user together with its password hash. It never
// leaves the server.
type UserRecord struct {
	User
	PasswordHash string `json:"-"`
}
