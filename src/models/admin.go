package models

import "time"

// AdminUser represents an admin console account
type AdminUser struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"` // never expose
	Email        string     `json:"email"`
	IsActive     bool       `json:"is_active"`
	IsSysAdmin   bool       `json:"is_sys_admin"`
	LastLogin    *time.Time `json:"last_login"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// AdminSession is a server-side session row. At most one row exists
// per admin user; prior rows are deleted on each successful login.
type AdminSession struct {
	ID           int64     `json:"id"`
	AdminUserID  int64     `json:"admin_user_id"`
	SessionToken string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry. Expiry is
// enforced by callers; there is no background reaper.
func (s *AdminSession) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
