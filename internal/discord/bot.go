package discord

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"
)

// Bot represents the Discord bot
type Bot struct {
	Session  *discordgo.Session
	Client   *APIClient
	AppID    string
	Registry *CommandRegistry
	Burns    *PendingBurns

	startedAt    time.Time
	commands     atomic.Int64
	lastCommand  atomic.Int64
	shutdownOnce atomic.Bool
}

// Config holds the bot configuration
type Config struct {
	Token       string
	AppID       string
	APIURL      string
	APIKey      string
	ConfirmWait time.Duration
}

// New creates a new Discord bot with the PullBot commands registered
func New(cfg Config) (*Bot, error) {
	s, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}
	return newBot(s, NewAPIClient(cfg.APIURL, cfg.APIKey), cfg), nil
}

func newBot(s *discordgo.Session, client *APIClient, cfg Config) *Bot {
	wait := cfg.ConfirmWait
	if wait <= 0 {
		wait = DefaultConfirmWait
	}

	b := &Bot{
		Session:   s,
		Client:    client,
		AppID:     cfg.AppID,
		Registry:  NewCommandRegistry(),
		startedAt: time.Now(),
	}
	b.Burns = NewPendingBurns(wait, MaxPendingBurns, b.expireBurn)

	b.Registry.Register(PullCommand())
	b.Registry.Register(AllowanceCommand())
	b.Registry.Register(InventoryCommand())
	b.Registry.Register(ProgressionCommand())
	b.Registry.Register(BurnCommand(b.Burns))
	b.Registry.RegisterComponent(ComponentBurnConfirm, BurnConfirmComponent(b.Burns))
	b.Registry.RegisterComponent(ComponentBurnCancel, BurnCancelComponent(b.Burns))
	return b
}

// Start opens the gateway connection
func (b *Bot) Start() error {
	b.Session.AddHandler(b.ready)
	b.Session.AddHandler(b.interactionCreate)

	if err := b.Session.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}

	slog.Info(LogMsgBotRunning)
	return nil
}

// Stop closes the gateway connection
func (b *Bot) Stop() {
	if b.shutdownOnce.CompareAndSwap(false, true) {
		b.Session.Close()
	}
}

// Run runs the bot until ctx is cancelled
func (b *Bot) Run(ctx context.Context) error {
	if err := b.Start(); err != nil {
		return err
	}
	defer b.Stop()

	<-ctx.Done()
	return nil
}

func (b *Bot) ready(s *discordgo.Session, r *discordgo.Ready) {
	slog.Info(LogMsgBotReady, "user", r.User.Username)
}

func (b *Bot) interactionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if b.Registry.Handle(s, i, b.Client) {
		b.commands.Add(1)
		b.lastCommand.Store(time.Now().Unix())
	}
}

// expireBurn runs when a preview's buttons time out unanswered: the buttons
// are cleared and the server-side preview is dropped.
func (b *Bot) expireBurn(p *pendingBurn) {
	slog.Info(LogMsgBurnExpired, "user_id", p.UserID)

	embed := createEmbed("🔥 Burn expired", MsgPreviewGone, ColorBurnStopped)
	sendEmbed(p.Session, &discordgo.InteractionCreate{Interaction: p.Interaction}, embed, []discordgo.MessageComponent{})

	ctx, cancel := context.WithTimeout(context.Background(), APIRequestTimeout)
	defer cancel()
	if err := b.Client.CancelBurn(ctx, p.UserID, p.Token); err != nil {
		slog.Warn(LogMsgBurnCancelFailed, "user_id", p.UserID, "error", err)
	}
}
