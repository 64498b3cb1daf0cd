// Package derive computes secondary object identities from a root anchor and
// an owner identity, matching the store's own child-object derivation so that
// per-owner records can be looked up without any index.
package derive

import (
	"github.com/cockroachdb/errors"
	"github.com/suimeet/eventgraph/common/errs"
	"github.com/suimeet/eventgraph/core/types"
	"github.com/suimeet/eventgraph/pkg/leb128"
	"golang.org/x/crypto/blake2b"
)

// childDerivationPrefix tags the hash input as a child-object derivation.
const childDerivationPrefix = 0xf0

// accountFieldTag namespaces account records under the registry anchor.
const accountFieldTag = "accounts"

// ChildID derives the object id of an associative-table child from its parent
// handle and the child's canonical key bytes. Pure and deterministic: the same
// (parent, key) pair always yields the same id.
func ChildID(parent types.ObjectID, key []byte) types.ObjectID {
	input := make([]byte, 0, 1+len(parent)+10+len(key))
	input = append(input, childDerivationPrefix)
	input = append(input, parent[:]...)
	input = append(input, leb128.EncodeUint64(uint64(len(key)))...)
	input = append(input, key...)
	return types.ObjectID(blake2b.Sum256(input))
}

// AccountID derives the account object identity for an owner address under
// the account registry anchor. Total and deterministic over valid addresses.
func AccountID(registry types.ObjectID, owner types.Address) (types.ObjectID, error) {
	if owner.IsZero() {
		return types.ObjectID{}, errors.Wrap(errs.InvalidIdentity, "owner address is zero")
	}
	if registry.IsZero() {
		return types.ObjectID{}, errors.Wrap(errs.InvalidIdentity, "registry anchor is zero")
	}
	key := make([]byte, 0, len(accountFieldTag)+len(owner))
	key = append(key, []byte(accountFieldTag)...)
	key = append(key, owner[:]...)
	return ChildID(registry, key), nil
}

// AttendeeRecordID derives the attendee-table entry id for an address,
// letting callers check registration membership with a single point lookup.
func AttendeeRecordID(attendeeTable types.ObjectID, attendee types.Address) (types.ObjectID, error) {
	if attendee.IsZero() {
		return types.ObjectID{}, errors.Wrap(errs.InvalidIdentity, "attendee address is zero")
	}
	if attendeeTable.IsZero() {
		return types.ObjectID{}, errors.Wrap(errs.InvalidIdentity, "attendee table handle is zero")
	}
	return ChildID(attendeeTable, attendee[:]), nil
}
