package domain

import "time"

// Account represents a registered user. Password holds only the bcrypt
// hash; accounts created through Google sign-in keep it empty and cannot
// authenticate with a password.
type Account struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	Email     string    `json:"email" bson:"email"`
	Password  string    `json:"-" bson:"password"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}
