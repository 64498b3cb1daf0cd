package types

import (
	"encoding/hex"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/suimeet/eventgraph/common/errs"
)

// IdentityLength is the byte length of addresses and object ids on the graph.
const IdentityLength = 32

// Address is a 32-byte account address, canonically rendered as "0x" + 64 hex digits.
type Address [IdentityLength]byte

// ObjectID is a 32-byte object identity in the content-addressed store.
type ObjectID [IdentityLength]byte

func parseIdentity(s string) ([IdentityLength]byte, error) {
	var out [IdentityLength]byte
	raw := strings.TrimPrefix(strings.ToLower(s), "0x")
	if raw == "" {
		return out, errors.Wrap(errs.InvalidIdentity, "empty identity")
	}
	// short-form identities are zero-padded on the left
	if len(raw) < IdentityLength*2 {
		raw = strings.Repeat("0", IdentityLength*2-len(raw)) + raw
	}
	if len(raw) != IdentityLength*2 {
		return out, errors.Wrapf(errs.InvalidIdentity, "identity %q is too long", s)
	}
	decoded, err := hex.DecodeString(raw)
	if err != nil {
		return out, errors.Wrapf(errs.InvalidIdentity, "identity %q is not valid hex", s)
	}
	copy(out[:], decoded)
	return out, nil
}

// ParseAddress parses a "0x"-prefixed hex account address.
func ParseAddress(s string) (Address, error) {
	v, err := parseIdentity(s)
	return Address(v), errors.WithStack(err)
}

// ParseObjectID parses a "0x"-prefixed hex object id.
func ParseObjectID(s string) (ObjectID, error) {
	v, err := parseIdentity(s)
	return ObjectID(v), errors.WithStack(err)
}

func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

func (a Address) IsZero() bool {
	return a == Address{}
}

// Short returns the truncated display form of the address,
// e.g. "0xabcdef...wxyz" (first 6 and last 4 hex digits).
func (a Address) Short() string {
	full := hex.EncodeToString(a[:])
	return "0x" + full[:6] + "..." + full[len(full)-4:]
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return errors.WithStack(err)
	}
	*a = parsed
	return nil
}

func (id ObjectID) String() string {
	return "0x" + hex.EncodeToString(id[:])
}

func (id ObjectID) IsZero() bool {
	return id == ObjectID{}
}

func (id ObjectID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *ObjectID) UnmarshalText(text []byte) error {
	parsed, err := ParseObjectID(string(text))
	if err != nil {
		return errors.WithStack(err)
	}
	*id = parsed
	return nil
}
