package entity

import (
	"fmt"

	"github.com/suimeet/eventgraph/core/types"
)

type Account struct {
	ID       types.ObjectID `json:"id"`
	Owner    types.Address  `json:"owner"`
	Name     string         `json:"name"`
	Email    string         `json:"email"`
	Bio      string         `json:"bio"`
	Twitter  string         `json:"twitter"`
	Telegram string         `json:"telegram"`
	Website  string         `json:"website"`
	Avatar   string         `json:"avatar"`

	EventsOrganized  uint64 `json:"eventsOrganized"`
	EventsAttended   uint64 `json:"eventsAttended"`
	EventsHosted     uint64 `json:"eventsHosted"`
	EventsRegistered uint64 `json:"eventsRegistered"`
}

// Organizer is an Account projected into an Event's organizer list. It is a
// view entity, never persisted.
type Organizer struct {
	Address types.Address `json:"address"`
	Name    string        `json:"name"`
	Avatar  string        `json:"avatar"`

	// Placeholder is true when the backing Account could not be fetched and
	// the organizer was synthesized from the address alone.
	Placeholder bool `json:"placeholder"`
}

// GeneratedAvatarURL is the deterministic avatar for addresses without a
// profile, keyed on the address so it is stable across renders.
func GeneratedAvatarURL(addr types.Address) string {
	return fmt.Sprintf("https://api.dicebear.com/7.x/identicon/svg?seed=%s", addr)
}

// PlaceholderOrganizer synthesizes an Organizer for an address whose Account
// is absent or undecodable.
func PlaceholderOrganizer(addr types.Address) Organizer {
	return Organizer{
		Address:     addr,
		Name:        addr.Short(),
		Avatar:      GeneratedAvatarURL(addr),
		Placeholder: true,
	}
}

// OrganizerFromAccount projects an Account into an Event's organizer list.
func OrganizerFromAccount(account *Account) Organizer {
	organizer := Organizer{
		Address: account.Owner,
		Name:    account.Name,
		Avatar:  account.Avatar,
	}
	if organizer.Name == "" {
		organizer.Name = account.Owner.Short()
	}
	if organizer.Avatar == "" {
		organizer.Avatar = GeneratedAvatarURL(account.Owner)
	}
	return organizer
}
