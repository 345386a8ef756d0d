package models

import (
	"time"
)

// Verified identity of the request sender, restored from access token on every request
type Principal struct {
	ID        int64
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}
