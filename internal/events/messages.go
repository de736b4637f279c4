package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Kind is also used as the AMQP routing key.
type Kind string

const (
	TransactionCreated Kind = "transaction.created"
	TransactionUpdated Kind = "transaction.updated"
	TransactionDeleted Kind = "transaction.deleted"
	SessionStarted     Kind = "session.started"
	SessionEnded       Kind = "session.ended"
)

// Event is a lightweight notification. It carries identifiers only;
// consumers fetch details from the API.
type Event struct {
	ID            string    `json:"event_id"`
	Kind          Kind      `json:"kind"`
	UserID        int64     `json:"user_id,omitempty"`
	TransactionID int64     `json:"transaction_id,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewTransactionEvent(kind Kind, userID, transactionID int64) Event {
	return Event{
		ID:            uuid.NewString(),
		Kind:          kind,
		UserID:        userID,
		TransactionID: transactionID,
		Timestamp:     time.Now().UTC(),
	}
}

func NewSessionEvent(kind Kind, userID int64) Event {
	return NewTransactionEvent(kind, userID, 0)
}

func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func EventFromJSON(data []byte) (Event, error) {
	var e Event
	err := json.Unmarshal(data, &e)
	return e, err
}
