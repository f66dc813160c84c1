package models

import "time"

// Settings are the per-collection ordering preferences, filled in over time
// by the chat's configuration commands.
type Settings struct {
	StoreID       string `json:"store_id,omitempty"`
	ServiceMethod string `json:"service_method,omitempty"`
	Address       string `json:"address,omitempty"`
	Name          string `json:"name,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Email         string `json:"email,omitempty"`
}

// Collection is one order-gathering session for a chat. A chat has at most
// one active collection; closed collections stay around for bookkeeping.
type Collection struct {
	ID        string    `json:"id"`
	Chat      int64     `json:"chat"`
	UUID      string    `json:"uuid"`
	Active    bool      `json:"active"`
	Settings  Settings  `json:"settings"`
	CreatedAt time.Time `json:"created_at"`
}

// OrderLine is one collected chat message. Only the first text line is fed to
// the interpreter; the rest is free commentary.
type OrderLine struct {
	ID             string    `json:"id"`
	CollectionUUID string    `json:"collection_uuid"`
	User           string    `json:"user"`
	Text           string    `json:"order_text"`
	CreatedAt      time.Time `json:"created_at"`
}
