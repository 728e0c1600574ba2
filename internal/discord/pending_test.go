package discord

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingBurns_ExpiresOnce(t *testing.T) {
	var expired atomic.Int32
	var got atomic.Value
	burns := NewPendingBurns(50*time.Millisecond, 8, func(p *pendingBurn) {
		expired.Add(1)
		got.Store(p.Token)
	})

	burns.Add(&pendingBurn{Token: "tok", DiscordID: "u1"})

	require.Eventually(t, func() bool { return expired.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "tok", got.Load())

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), expired.Load())

	_, result := burns.Claim("tok", "u1")
	assert.Equal(t, ClaimMissing, result)
}

func TestPendingBurns_ClaimStopsExpiry(t *testing.T) {
	var expired atomic.Int32
	burns := NewPendingBurns(50*time.Millisecond, 8, func(*pendingBurn) { expired.Add(1) })
	burns.Add(&pendingBurn{Token: "tok", DiscordID: "u1"})

	p, result := burns.Claim("tok", "u1")
	require.Equal(t, ClaimOK, result)
	assert.Equal(t, "tok", p.Token)
	assert.Equal(t, 0, burns.Len())

	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(0), expired.Load())
}

func TestPendingBurns_Claim(t *testing.T) {
	burns := NewPendingBurns(time.Minute, 8, nil)
	burns.Add(&pendingBurn{Token: "tok", DiscordID: "u1"})

	tests := []struct {
		name    string
		token   string
		user    string
		want    ClaimResult
		pending int
	}{
		{"unknown token", "nope", "u1", ClaimMissing, 1},
		{"someone else", "tok", "u2", ClaimNotOwner, 1},
		{"owner", "tok", "u1", ClaimOK, 0},
		{"already claimed", "tok", "u1", ClaimMissing, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, result := burns.Claim(tt.token, tt.user)
			assert.Equal(t, tt.want, result)
			assert.Equal(t, tt.pending, burns.Len())
		})
	}
}

func TestPendingBurns_EvictionOnOverflowExpires(t *testing.T) {
	var expired atomic.Int32
	burns := NewPendingBurns(time.Minute, 1, func(*pendingBurn) { expired.Add(1) })

	burns.Add(&pendingBurn{Token: "a", DiscordID: "u1"})
	burns.Add(&pendingBurn{Token: "b", DiscordID: "u1"})

	require.Eventually(t, func() bool { return expired.Load() == 1 }, time.Second, 10*time.Millisecond)
	_, result := burns.Claim("a", "u1")
	assert.Equal(t, ClaimMissing, result)
	_, result = burns.Claim("b", "u1")
	assert.Equal(t, ClaimOK, result)
}
