package ws

import (
	"time"

	"github.com/shist-app/shist/internal/shist/domain"
)

// Server-to-client event types.
const (
	EventItemAdded   = "item_added"
	EventItemUpdated = "item_updated"
	EventItemDeleted = "item_deleted"
	EventError       = "error"
)

// Client-to-server frame types.
const (
	FrameSubscribeList   = "subscribe_list"
	FrameUnsubscribeList = "unsubscribe_list"
)

// Event is a list-change notification pushed to subscribers. Item is set for
// add/update events, ItemID for deletes.
type Event struct {
	Type   string       `json:"type"`
	ListID string       `json:"listId"`
	Item   *ItemPayload `json:"item,omitempty"`
	ItemID string       `json:"itemId,omitempty"`

	// Error fields, only set on error events.
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// ItemPayload is the wire shape of an item inside an event.
type ItemPayload struct {
	ID        string    `json:"id"`
	ListID    string    `json:"listId"`
	Name      string    `json:"name"`
	Category  string    `json:"category,omitempty"`
	Done      bool      `json:"done"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Frame is a client request to change this connection's subscriptions.
type Frame struct {
	Type   string `json:"type"`
	ListID string `json:"listId"`
}

func itemPayload(it domain.Item) *ItemPayload {
	return &ItemPayload{
		ID:        it.ID,
		ListID:    it.ListID,
		Name:      it.Name,
		Category:  it.Category,
		Done:      it.Done,
		CreatedBy: it.CreatedBy,
		CreatedAt: it.CreatedAt,
		UpdatedAt: it.UpdatedAt,
	}
}

// ItemAdded builds the event for a newly created item.
func ItemAdded(it domain.Item) Event {
	return Event{Type: EventItemAdded, ListID: it.ListID, Item: itemPayload(it)}
}

// ItemUpdated builds the event for a mutated item.
func ItemUpdated(it domain.Item) Event {
	return Event{Type: EventItemUpdated, ListID: it.ListID, Item: itemPayload(it)}
}

// ItemDeleted builds the event for a removed item. Only the id survives
// deletion, so the payload carries itemId instead of the full item.
func ItemDeleted(listID, itemID string) Event {
	return Event{Type: EventItemDeleted, ListID: listID, ItemID: itemID}
}

func errorEvent(code, message string) Event {
	return Event{Type: EventError, Code: code, Message: message}
}
