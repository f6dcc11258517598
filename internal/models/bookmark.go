package models

import "time"

// Bookmark records a user saving a listing for later.
type Bookmark struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	ProductCode int       `json:"productCode"`
	CreatedAt   time.Time `json:"createdAt"`
}
