package discord

import "time"

// Discord users are namespaced in the PullBot user id space
const UserIDPrefix = "discord:"

// API client settings
const (
	APIPrefix         = "/api/v1"
	APIRequestTimeout = 10 * time.Second
	APIMaxRetries     = 3
	APIRetryDelay     = 500 * time.Millisecond
)

// DefaultConfirmWait bounds how long burn buttons stay live. It should not
// exceed the server's preview confirm window.
const DefaultConfirmWait = 60 * time.Second

// MaxPendingBurns caps outstanding burn previews across all users
const MaxPendingBurns = 1024

// Component custom-id prefixes; the preview token follows the separator
const (
	ComponentBurnConfirm = "burn_confirm"
	ComponentBurnCancel  = "burn_cancel"
	ComponentIDSeparator = ":"
)

// Embed colors
const (
	ColorPull        = 0xf1c40f
	ColorAllowance   = 0x3498db
	ColorInventory   = 0x9b59b6
	ColorProgression = 0x1abc9c
	ColorBurnPending = 0xe67e22
	ColorBurnDone    = 0x2ecc71
	ColorBurnStopped = 0x95a5a6
)

// Footer constants for standardized embed footers
const (
	FooterPullBot = "PullBot"
)

// InventoryDisplayLimit caps how many stacks one inventory embed lists
const InventoryDisplayLimit = 25

// Friendly message constants for Discord responses
const (
	MsgInsufficientBalance = "⏳ **Out of pulls!**"
	MsgNoActiveGrant       = "🎟️ **No active grant**\nThat grant is not running right now."
	MsgNothingToBurn       = "🔥 **Nothing to burn**\nNo stacks matched those filters."
	MsgNotEnoughCards      = "🎒 **Not Enough Cards**\nYour stacks changed since the preview."
	MsgPreviewGone         = "⌛ **Burn expired**\nRun /burn again for a fresh preview."
	MsgSlowDown            = "🐢 **Slow down!**\nToo many pulls in a short time."
	MsgBusy                = "🔁 **Busy**\nSomething else is updating your account, try again."
	MsgNotYourBurn         = "This burn belongs to someone else."
	MsgBurnCancelled       = "Burn cancelled. Nothing was removed."
	MsgEmptyInventory      = "Your collection is empty. Try /pull!"
	MsgGenericError        = "❌ Something went wrong."
	MsgServerUnreachable   = "❌ Error connecting to the game server."
)

// Log messages
const (
	LogMsgBotRunning          = "Discord bot is now running"
	LogMsgBotReady            = "Bot is ready"
	LogMsgRespondFailed       = "Failed to respond to interaction"
	LogMsgDeferFailed         = "Failed to send deferred response"
	LogMsgEditFailed          = "Failed to edit interaction response"
	LogMsgActionFailed        = "Action failed"
	LogMsgRetryingRequest     = "Retrying API request"
	LogMsgRequestFailed       = "API request failed"
	LogMsgBurnExpired         = "Burn preview expired without an answer"
	LogMsgBurnCancelFailed    = "Failed to cancel expired burn preview"
	LogMsgCheckingCommands    = "Checking Discord commands..."
	LogMsgCommandsUnchanged   = "Commands unchanged, skipping registration"
	LogMsgCommandsUpdated     = "Commands updated successfully"
	LogMsgInternalServerStart = "Starting Discord internal HTTP server"
	LogMsgInternalServerError = "Discord internal HTTP server failed"
)
