package entity

import (
	"time"

	"github.com/suimeet/eventgraph/core/types"
)

// AttendeeRecord is one entry of an event's attendee table, decoded against
// that event's own registration-field schema.
type AttendeeRecord struct {
	EventID types.ObjectID `json:"eventId"`
	Address types.Address  `json:"address"`

	// RegistrationValues maps schema field names to the attendee's answers.
	// Built by zipping the event's registration-field names with the stored
	// positional value array.
	RegistrationValues map[string]string `json:"registrationValues"`

	CheckedIn       bool       `json:"checkedIn"`
	CheckedInAt     *time.Time `json:"checkedInAt,omitempty"`
	RegisteredAt    time.Time  `json:"registeredAt"`
	NFTMinted       bool       `json:"nftMinted"`
	TicketTierIndex uint64     `json:"ticketTierIndex"`

	// Account is the attendee's profile, nil when none exists.
	Account *Account `json:"account,omitempty"`
}

// AttendeeSummary is the aggregate view of one event's roster.
type AttendeeSummary struct {
	Total     int `json:"total"`
	CheckedIn int `json:"checkedIn"`
	NFTMinted int `json:"nftMinted"`
}
