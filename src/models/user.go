package models

import "time"

// User is a UI-surface account. Each user belongs to a default
// organization created alongside it.
type User struct {
	ID                    int64     `json:"id"`
	Username              string    `json:"username"`
	PasswordHash          string    `json:"-"`
	Email                 string    `json:"email"`
	DefaultOrganizationID int64     `json:"default_organization_id"`
	CreatedAt             time.Time `json:"created_at"`
}

// Organization is the default organization record created with a user.
type Organization struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// EmailVerification gates account creation: a token is single-use and
// time-boxed to 24 hours.
type EmailVerification struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	Used      bool      `json:"used"`
	CreatedAt time.Time `json:"created_at"`
}

// ContentReview tracks a review request email sent for a package.
type ContentReview struct {
	ID        int64     `json:"id"`
	PackageID int64     `json:"package_id"`
	Email     string    `json:"email"`
	Token     string    `json:"-"`
	Feedback  string    `json:"feedback"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
}
