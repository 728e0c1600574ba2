package discord

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

// CommandHandler handles a slash command
type CommandHandler func(s *discordgo.Session, i *discordgo.InteractionCreate, client *APIClient)

// ComponentHandler handles a button press. arg is the custom id after the
// prefix separator.
type ComponentHandler func(s *discordgo.Session, i *discordgo.InteractionCreate, client *APIClient, arg string)

// CommandRegistry holds the registered commands and component handlers
type CommandRegistry struct {
	Commands   map[string]*discordgo.ApplicationCommand
	Handlers   map[string]CommandHandler
	Components map[string]ComponentHandler
}

// NewCommandRegistry creates a new registry
func NewCommandRegistry() *CommandRegistry {
	return &CommandRegistry{
		Commands:   make(map[string]*discordgo.ApplicationCommand),
		Handlers:   make(map[string]CommandHandler),
		Components: make(map[string]ComponentHandler),
	}
}

// Register adds a command to the registry
func (r *CommandRegistry) Register(cmd *discordgo.ApplicationCommand, handler CommandHandler) {
	r.Commands[cmd.Name] = cmd
	r.Handlers[cmd.Name] = handler
}

// RegisterComponent routes custom ids starting with prefix to handler
func (r *CommandRegistry) RegisterComponent(prefix string, handler ComponentHandler) {
	r.Components[prefix] = handler
}

// Handle dispatches a slash command or a button press. It reports whether
// a handler was found.
func (r *CommandRegistry) Handle(s *discordgo.Session, i *discordgo.InteractionCreate, client *APIClient) bool {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		h, ok := r.Handlers[i.ApplicationCommandData().Name]
		if ok {
			h(s, i, client)
		}
		return ok
	case discordgo.InteractionMessageComponent:
		prefix, arg, _ := strings.Cut(i.MessageComponentData().CustomID, ComponentIDSeparator)
		h, ok := r.Components[prefix]
		if ok {
			h(s, i, client, arg)
		}
		return ok
	}
	return false
}

// RegisterCommands registers or updates commands with Discord. Unchanged
// command sets are skipped to avoid rate limits.
func (b *Bot) RegisterCommands(forceUpdate bool) error {
	slog.Info(LogMsgCheckingCommands)

	desiredCmds := make([]*discordgo.ApplicationCommand, 0, len(b.Registry.Commands))
	for _, cmd := range b.Registry.Commands {
		desiredCmds = append(desiredCmds, cmd)
	}

	if !forceUpdate {
		existingCmds, err := b.Session.ApplicationCommands(b.AppID, "")
		if err != nil {
			return fmt.Errorf("failed to fetch existing commands: %w", err)
		}
		if commandsEqual(existingCmds, desiredCmds) {
			slog.Info(LogMsgCommandsUnchanged, "count", len(existingCmds))
			return nil
		}
	}

	if _, err := b.Session.ApplicationCommandBulkOverwrite(b.AppID, "", desiredCmds); err != nil {
		return fmt.Errorf("failed to update commands: %w", err)
	}
	slog.Info(LogMsgCommandsUpdated, "count", len(desiredCmds), "forced", forceUpdate)
	return nil
}

// commandsEqual checks if two command sets are equivalent
func commandsEqual(existing, desired []*discordgo.ApplicationCommand) bool {
	if len(existing) != len(desired) {
		return false
	}

	existingMap := make(map[string]*discordgo.ApplicationCommand, len(existing))
	for _, cmd := range existing {
		existingMap[cmd.Name] = cmd
	}

	for _, d := range desired {
		e, ok := existingMap[d.Name]
		if !ok || !commandEqual(e, d) {
			return false
		}
	}
	return true
}

func commandEqual(a, b *discordgo.ApplicationCommand) bool {
	if a.Name != b.Name || a.Description != b.Description {
		return false
	}
	if len(a.Options) != len(b.Options) {
		return false
	}
	for i := range a.Options {
		if !optionEqual(a.Options[i], b.Options[i]) {
			return false
		}
	}
	return true
}

func optionEqual(a, b *discordgo.ApplicationCommandOption) bool {
	if a.Type != b.Type || a.Name != b.Name || a.Description != b.Description || a.Required != b.Required {
		return false
	}
	if len(a.Choices) != len(b.Choices) {
		return false
	}
	for i := range a.Choices {
		if a.Choices[i].Name != b.Choices[i].Name || fmt.Sprint(a.Choices[i].Value) != fmt.Sprint(b.Choices[i].Value) {
			return false
		}
	}
	return true
}

// deferResponse acknowledges an interaction with a deferred message.
// Returns false if deferral failed.
func deferResponse(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}); err != nil {
		slog.Error(LogMsgDeferFailed, "error", err)
		return false
	}
	return true
}

// respondEphemeral answers only to the invoking user
func respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: message,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	}); err != nil {
		slog.Error(LogMsgRespondFailed, "error", err)
	}
}

// respondError replaces the deferred response with message
func respondError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Content: &message,
	}); err != nil {
		slog.Error(LogMsgEditFailed, "error", err)
	}
}

// respondFriendlyError maps an API failure onto a readable message
func respondFriendlyError(s *discordgo.Session, i *discordgo.InteractionCreate, err error) {
	respondError(s, i, formatFriendlyError(err))
}

func formatFriendlyError(err error) string {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return MsgServerUnreachable
	}

	switch {
	case apiErr.Balance != nil:
		msg := fmt.Sprintf("%s\nYou need %d more.", MsgInsufficientBalance, apiErr.Balance.Shortfall)
		if apiErr.Balance.NextRefillInMS > 0 {
			wait := time.Duration(apiErr.Balance.NextRefillInMS) * time.Millisecond
			msg += fmt.Sprintf(" Next refill in **%s**.", formatWait(wait))
		}
		return msg
	case apiErr.Status == http.StatusTooManyRequests:
		return MsgSlowDown
	case apiErr.Status == http.StatusUnprocessableEntity:
		return MsgNothingToBurn
	case apiErr.Status == http.StatusServiceUnavailable:
		return MsgBusy
	case apiErr.Status == http.StatusNotFound && strings.Contains(strings.ToLower(apiErr.Message), "preview"):
		return MsgPreviewGone
	case apiErr.Status == http.StatusConflict && strings.Contains(strings.ToLower(apiErr.Message), "grant"):
		return MsgNoActiveGrant
	case apiErr.Status == http.StatusConflict && strings.Contains(strings.ToLower(apiErr.Message), "quantity"):
		return MsgNotEnoughCards
	case apiErr.Status >= http.StatusInternalServerError:
		return MsgGenericError
	default:
		return "❌ " + apiErr.Message
	}
}

// formatWait renders a duration rounded to the second, minimum one second
func formatWait(d time.Duration) string {
	if d < time.Second {
		d = time.Second
	}
	return d.Round(time.Second).String()
}

// sendEmbed replaces the deferred response with embed and components.
// A non-nil empty components slice clears existing buttons.
func sendEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) {
	edit := &discordgo.WebhookEdit{
		Embeds: &[]*discordgo.MessageEmbed{embed},
	}
	if components != nil {
		edit.Components = &components
	}
	if _, err := s.InteractionResponseEdit(i.Interaction, edit); err != nil {
		slog.Error(LogMsgEditFailed, "error", err)
	}
}

func createEmbed(title, description string, color int) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       color,
		Footer: &discordgo.MessageEmbedFooter{
			Text: FooterPullBot,
		},
	}
}

// getInteractionUser handles both guild (i.Member.User) and DM (i.User)
// contexts. Always returns a non-nil *discordgo.User.
func getInteractionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	if i.User != nil {
		return i.User
	}
	return &discordgo.User{}
}

// apiUserID maps a Discord user onto the PullBot user id
func apiUserID(u *discordgo.User) string {
	return UserIDPrefix + u.ID
}

// optionMap indexes the command's options by name
func optionMap(i *discordgo.InteractionCreate) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	opts := i.ApplicationCommandData().Options
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(opts))
	for _, o := range opts {
		m[o.Name] = o
	}
	return m
}

func stringOption(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	if o, ok := opts[name]; ok {
		return o.StringValue()
	}
	return ""
}

func intOption(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string, def int) int {
	if o, ok := opts[name]; ok {
		return int(o.IntValue())
	}
	return def
}
