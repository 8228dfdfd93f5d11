package domain

import "time"

type Client struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	NormalizedName string    `json:"normalized_name"`
	Currency       *string   `json:"currency"`
	CreatedAt      time.Time `json:"created_at"`
}
