package models

import (
	"time"
)

const (
	DefaultBookLanguage = "English"
	DefaultBookAuthor   = "Unknown"
)

type Book struct {
	ID          int64
	OwnerID     int64
	CreatedAt   time.Time
	Title       string
	Author      string
	Language    string
	ISBN        *string
	Genre       *string
	Description *string
	CoverImage  *string
}
