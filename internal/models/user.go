package models

import "time"

// User represents a single record in the directory.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Mobile    string    `json:"mobile"`
	DOB       string    `json:"dob"` // Date of birth as submitted, YYYY-MM-DD
	Photo     string    `json:"photo,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
