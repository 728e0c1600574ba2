package discord

import (
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// pendingBurn is a preview waiting for its owner to press a button
type pendingBurn struct {
	Token       string
	UserID      string
	DiscordID   string
	Session     *discordgo.Session
	Interaction *discordgo.Interaction

	settled atomic.Bool
}

// settle marks the preview answered; only the first caller wins
func (p *pendingBurn) settle() bool {
	return p.settled.CompareAndSwap(false, true)
}

// ClaimResult explains the outcome of PendingBurns.Claim
type ClaimResult int

const (
	ClaimOK ClaimResult = iota
	ClaimMissing
	ClaimNotOwner
)

// PendingBurns tracks burn previews with live buttons. Entries that are
// neither confirmed nor cancelled within the wait are handed to onExpire
// exactly once.
type PendingBurns struct {
	cache *expirable.LRU[string, *pendingBurn]
	wait  time.Duration
}

// NewPendingBurns creates a store whose entries expire after wait
func NewPendingBurns(wait time.Duration, size int, onExpire func(*pendingBurn)) *PendingBurns {
	evict := func(_ string, p *pendingBurn) {
		// Called under the cache lock for both expiry and removal
		if p.settle() && onExpire != nil {
			go onExpire(p)
		}
	}
	return &PendingBurns{
		cache: expirable.NewLRU[string, *pendingBurn](size, evict, wait),
		wait:  wait,
	}
}

// Wait is how long buttons stay live
func (b *PendingBurns) Wait() time.Duration {
	return b.wait
}

// Add starts the wait for a fresh preview
func (b *PendingBurns) Add(p *pendingBurn) {
	b.cache.Add(p.Token, p)
}

// Claim takes the preview for token on behalf of discordID. Only the owner
// can claim, and a claimed preview no longer expires.
func (b *PendingBurns) Claim(token, discordID string) (*pendingBurn, ClaimResult) {
	p, ok := b.cache.Peek(token)
	if !ok {
		return nil, ClaimMissing
	}
	if p.DiscordID != discordID {
		return nil, ClaimNotOwner
	}
	if !p.settle() {
		return nil, ClaimMissing
	}
	b.cache.Remove(token)
	return p, ClaimOK
}

// Len reports how many previews are waiting
func (b *PendingBurns) Len() int {
	return b.cache.Len()
}
