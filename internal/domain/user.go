package domain

import (
	"context"
	"errors"
	"time"
)

var ErrUserNotFound = errors.New("user not found")

// User is the traveler profile owned by the account collaborator. The
// core only ever reads it: admission joins it onto pending requests and
// the chat layer stamps messages with the sender's name.
type User struct {
	ID            string    `json:"id" bson:"id"`
	Name          string    `json:"name" bson:"name"`
	Email         string    `json:"email" bson:"email"`
	City          string    `json:"city" bson:"city"`
	Age           int       `json:"age" bson:"age"`
	AverageRating float64   `json:"average_rating" bson:"average_rating"`
	TotalRatings  int       `json:"total_ratings" bson:"total_ratings"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
}

// Profile is the minimal projection exposed alongside a pending join
// request so the admin can decide without seeing the full account.
type Profile struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	City          string  `json:"city"`
	Age           int     `json:"age"`
	AverageRating float64 `json:"average_rating"`
}

func (u *User) Profile() Profile {
	return Profile{
		ID:            u.ID,
		Name:          u.Name,
		City:          u.City,
		Age:           u.Age,
		AverageRating: u.AverageRating,
	}
}

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*User, error)
}
