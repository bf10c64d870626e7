package history

import "time"

// StoredMessage is one entry in a recipient's history. Only the body and
// the dispatcher's verdict are exposed on the read path; event id and
// timestamp are kept for operability.
type StoredMessage struct {
	EventID   string    `bson:"eventId" json:"-"`
	Message   string    `bson:"message" json:"message"`
	Status    string    `bson:"status" json:"status"`
	Timestamp time.Time `bson:"timestamp" json:"-"`
}

// RecipientRecord is the document store unit, one per recipient, keyed by
// phone number. Created on first append, never deleted.
type RecipientRecord struct {
	PhoneNumber string          `bson:"_id"`
	Messages    []StoredMessage `bson:"messages"`
	UpdatedAt   time.Time       `bson:"updated_at"`
}
