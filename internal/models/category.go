package models

import "time"

type Category struct {
	ID          string
	UserID      string
	Name        string
	Description *string
	Color       string
	Icon        *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Tag struct {
	ID        string
	UserID    string
	Name      string
	Color     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
