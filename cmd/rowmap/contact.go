package main

import (
	"reflect"
	"time"

	"github.com/google/uuid"
)

// Contact is the record type the CLI moves between stores.
type Contact struct {
	ID         uuid.UUID  `db:"id"`
	FullName   string     `db:"full_name"`
	Email      *string    `db:"email"`
	Age        int32      `db:"age"`
	Score      *float64   `db:"score"`
	Subscribed bool       `db:"subscribed"`
	CreatedAt  time.Time  `db:"created_at"`
	UpdatedAt  *time.Time `db:"updated_at"`
	Tags       []string   `db:"-"`
}

var contactType = reflect.TypeFor[Contact]()
