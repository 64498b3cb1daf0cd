package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/suimeet/eventgraph/core/types"
)

type EventStatus uint8

const (
	EventStatusActive EventStatus = iota
	EventStatusCompleted
	EventStatusCancelled
)

func (s EventStatus) String() string {
	switch s {
	case EventStatusActive:
		return "active"
	case EventStatusCompleted:
		return "completed"
	case EventStatusCancelled:
		return "cancelled"
	}
	return "unknown"
}

// RegistrationField is one named input an organizer requires at registration.
// The ordered list of these on an Event is the positional decode schema for
// every attendee's stored answers.
type RegistrationField struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
}

// TicketTier is a named capacity/price bucket an event may offer.
type TicketTier struct {
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	MaxQuantity uint64          `json:"maxQuantity"`
	Sold        uint64          `json:"sold"`
}

// NFTConfig is an event's ticket-NFT configuration. A missing on-chain config
// decodes to the explicit disabled value, never to nil.
type NFTConfig struct {
	Enabled     bool   `json:"enabled"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
}

// NFTConfigDisabled is the sentinel for events without NFT ticketing.
var NFTConfigDisabled = NFTConfig{Enabled: false}

type Event struct {
	ID                 types.ObjectID      `json:"id"`
	Title              string              `json:"title"`
	Description        string              `json:"description"`
	Location           string              `json:"location"`
	StartTime          time.Time           `json:"startTime"`
	EndTime            time.Time           `json:"endTime"`
	MaxAttendees       uint64              `json:"maxAttendees"`
	AttendeesCount     uint64              `json:"attendeesCount"`
	CheckedInCount     uint64              `json:"checkedInCount"`
	OrganizerAddresses []types.Address     `json:"organizerAddresses"`
	Organizers         []Organizer         `json:"organizers"`
	RegistrationFields []RegistrationField `json:"registrationFields"`
	TicketTiers        []TicketTier        `json:"ticketTiers"`
	NFTConfig          NFTConfig           `json:"nftConfig"`
	Tags               []string            `json:"tags"`
	Status             EventStatus         `json:"status"`

	// AttendeeTable is the handle of the event's associative attendee table.
	AttendeeTable types.ObjectID `json:"attendeeTable"`
}

// IsOrganizer reports whether addr is one of the event's organizers.
func (e *Event) IsOrganizer(addr types.Address) bool {
	for _, organizer := range e.OrganizerAddresses {
		if organizer == addr {
			return true
		}
	}
	return false
}
