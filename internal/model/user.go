package model

import "time"

// User is a registered account. PasswordHash never leaves the server.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"-"`
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	AccessToken  string `json:"access_token"`
	User         User   `json:"user"`
	RefreshToken string `json:"-"`
}
