// Package names resolves player name indices against the externally
// populated name table and derives the composite display name.
package names

import (
	"context"
	"errors"
	"fmt"

	"github.com/heavyhelms/playerindex/internal/storage"
)

// Name table types. First names split by index range; surnames are their
// own table.
const (
	typeFirstNameReserved = 0
	typeFirstNameStandard = 1
	typeSurname           = 2

	// reservedFirstNameFloor is the first index of the reserved range.
	reservedFirstNameFloor = 1000
)

// FirstNameKey builds the lookup key for a first name index. Indices at or
// above the reserved floor live in the type-0 table, the rest in type 1.
// The key format is a contract with the out-of-band table loader; creation
// and name-update projections must both build keys through here.
func FirstNameKey(index uint16) string {
	nameType := typeFirstNameStandard
	if index >= reservedFirstNameFloor {
		nameType = typeFirstNameReserved
	}
	return fmt.Sprintf("%d-%d", nameType, index)
}

// SurnameKey builds the lookup key for a surname index.
func SurnameKey(index uint16) string {
	return fmt.Sprintf("%d-%d", typeSurname, index)
}

// Parts is the resolved portion of a player's name. Fields stay empty when
// the corresponding table entry is absent; FullName is set only when both
// halves resolved.
type Parts struct {
	FirstName string
	Surname   string
	FullName  string
}

// Resolver resolves name index pairs through a NameStore.
type Resolver struct {
	store storage.NameStore
}

// NewResolver returns a resolver over the given name table.
func NewResolver(store storage.NameStore) *Resolver {
	return &Resolver{store: store}
}

// Resolve looks up both name halves. A missing table entry leaves its field
// empty and is not an error; only store failures propagate.
func (r *Resolver) Resolve(ctx context.Context, firstNameIndex, surnameIndex uint16) (Parts, error) {
	var parts Parts

	firstName, err := r.store.GetName(ctx, FirstNameKey(firstNameIndex))
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return Parts{}, fmt.Errorf("resolve first name %d: %w", firstNameIndex, err)
		}
	} else {
		parts.FirstName = firstName.Value
	}

	surname, err := r.store.GetName(ctx, SurnameKey(surnameIndex))
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return Parts{}, fmt.Errorf("resolve surname %d: %w", surnameIndex, err)
		}
	} else {
		parts.Surname = surname.Value
	}

	if parts.FirstName != "" && parts.Surname != "" {
		parts.FullName = parts.FirstName + " " + parts.Surname
	}
	return parts, nil
}
