// Package realtime pushes change notifications to a user's open
// connections.
//
// Delivery is fire-and-forget: Notify never blocks the caller and never
// reports failure. Every connection of a user joins the group
// "user:{id}" and receives every event published for that user.
package realtime

import "fmt"

// Event names sent to clients.
const (
	EventBookCreated     = "bookCreated"
	EventBookUpdated     = "bookUpdated"
	EventBookDeleted     = "bookDeleted"
	EventBookFavorited   = "bookFavorited"
	EventBookUnfavorited = "bookUnfavorited"
	EventBookRead        = "bookRead"
	EventStatsUpdated    = "statsUpdated"
)

// Notifier publishes an event to every connection of a user.
type Notifier interface {
	Notify(userID uint, event string, payload any)
}

// BookRef is the payload of events that only identify a book.
type BookRef struct {
	ID string `json:"id"`
}

// StatsChanged is the (empty) payload of statsUpdated.
type StatsChanged struct{}

// Group names the fan-out group of a user.
func Group(userID uint) string {
	return fmt.Sprintf("user:%d", userID)
}

// NopNotifier drops every event.
type NopNotifier struct{}

func (NopNotifier) Notify(uint, string, any) {}
