package domain

import "time"

// Rarity categories used by the default draw tables
const (
	RarityCommon    = "common"
	RarityUncommon  = "uncommon"
	RarityRare      = "rare"
	RarityLegendary = "legendary"
)

// Card is a single drawn reward instance. It is never persisted on its own;
// it is folded into the owner's InventoryStack.
type Card struct {
	Rarity string `json:"rarity"`
	File   string `json:"file"`
	Name   string `json:"name"`
}

// Key returns the stack key this card folds into
func (c Card) Key() StackKey {
	return StackKey{Name: c.Name, Rarity: c.Rarity}
}

// StackKey identifies one stack per user
type StackKey struct {
	Name   string `json:"name" validate:"required"`
	Rarity string `json:"rarity" validate:"required"`
}

// InventoryStack aggregates held copies of one (name, rarity) pair
type InventoryStack struct {
	UserID          string    `json:"user_id"`
	Name            string    `json:"name"`
	Rarity          string    `json:"rarity"`
	Count           int       `json:"count"`
	File            string    `json:"file,omitempty"`
	Locked          bool      `json:"locked"`
	FirstAcquiredAt time.Time `json:"first_acquired_at"`
	LastAcquiredAt  time.Time `json:"last_acquired_at"`
}

// Key returns the stack's (name, rarity) key
func (s InventoryStack) Key() StackKey {
	return StackKey{Name: s.Name, Rarity: s.Rarity}
}

// StackMeta carries optional metadata written alongside a delta
type StackMeta struct {
	File string
	At   time.Time
}

// StackRemoval is one line of a batch removal
type StackRemoval struct {
	Name   string `json:"name"`
	Rarity string `json:"rarity"`
	Count  int    `json:"count"`
}

// Key returns the stack key for the removal
func (r StackRemoval) Key() StackKey {
	return StackKey{Name: r.Name, Rarity: r.Rarity}
}
