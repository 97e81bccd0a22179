package model

import "time"

// SlotLock is an advisory lock on one bookable resource ("room:<id>" or
// "member:<id>") held while a meeting is checked and written.
type SlotLock struct {
	ID        string    `bson:"_id" json:"id"`
	Owner     string    `bson:"owner" json:"owner"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
