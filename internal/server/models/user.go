// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an account row. PasswordHash never leaves the server.
type User struct {
	ID                   int64     `db:"id"`
	Username             string    `db:"username"`
	Email                string    `db:"email"`
	PasswordHash         string    `db:"password_hash"`
	NotificationsEnabled bool      `db:"notifications_enabled"`
	FunFactsEnabled      bool      `db:"fun_facts_enabled"`
	CreatedAt            time.Time `db:"created_at"`
}
