package discord

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/osse101/PullBot_Go/internal/domain"
)

// BurnCommand previews a bulk conversion and attaches Confirm/Cancel buttons
// that stay live for the store's wait
func BurnCommand(burns *PendingBurns) (*discordgo.ApplicationCommand, CommandHandler) {
	minZero := 0.0
	cmd := &discordgo.ApplicationCommand{
		Name:        "burn",
		Description: "Convert spare cards into character experience",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "character",
				Description: "Character that receives the experience",
				Required:    true,
			},
			rarityOption("Only burn cards of this rarity"),
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "keep",
				Description: "Copies of each card to keep (default: 1)",
				MinValue:    &minZero,
			},
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "min_stack",
				Description: "Only stacks holding at least this many copies",
				MinValue:    &minZero,
			},
		},
	}

	handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, client *APIClient) {
		if !deferResponse(s, i) {
			return
		}

		user := getInteractionUser(i)
		opts := optionMap(i)
		character := stringOption(opts, "character")

		var filter BurnFilter
		if rarity := stringOption(opts, "rarity"); rarity != "" {
			filter.Rarities = []string{rarity}
		}
		if minStack := intOption(opts, "min_stack", 0); minStack > 0 {
			filter.Op = string(domain.OpGreaterOrEqual)
			filter.Threshold = minStack
		}
		keep := intOption(opts, "keep", 1)

		ctx, cancel := context.WithTimeout(context.Background(), APIRequestTimeout)
		defer cancel()

		preview, err := client.PreviewBurn(ctx, apiUserID(user), character, filter, keep)
		if err != nil {
			respondFriendlyError(s, i, err)
			return
		}

		burns.Add(&pendingBurn{
			Token:       preview.Token,
			UserID:      apiUserID(user),
			DiscordID:   user.ID,
			Session:     s,
			Interaction: i.Interaction,
		})

		embed := createEmbed(
			fmt.Sprintf("🔥 Burn into %s?", character),
			formatPreview(preview, formatWait(burns.Wait())),
			ColorBurnPending,
		)
		sendEmbed(s, i, embed, burnButtons(preview.Token))
	}

	return cmd, handler
}

// BurnConfirmComponent commits the preview behind a Confirm button
func BurnConfirmComponent(burns *PendingBurns) ComponentHandler {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate, client *APIClient, token string) {
		p, ok := claimBurn(s, i, burns, token)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), APIRequestTimeout)
		defer cancel()

		res, err := client.ConfirmBurn(ctx, p.UserID, p.Token)
		if err != nil {
			embed := createEmbed("🔥 Burn failed", formatFriendlyError(err), ColorBurnStopped)
			sendEmbed(s, i, embed, []discordgo.MessageComponent{})
			return
		}
		sendEmbed(s, i, createEmbed("🔥 Burn complete", formatBurnResult(res), ColorBurnDone), []discordgo.MessageComponent{})
	}
}

// BurnCancelComponent drops the preview behind a Cancel button
func BurnCancelComponent(burns *PendingBurns) ComponentHandler {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate, client *APIClient, token string) {
		p, ok := claimBurn(s, i, burns, token)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), APIRequestTimeout)
		defer cancel()

		// A preview that already expired server-side is as good as cancelled
		_ = client.CancelBurn(ctx, p.UserID, p.Token)
		sendEmbed(s, i, createEmbed("🔥 Burn cancelled", MsgBurnCancelled, ColorBurnStopped), []discordgo.MessageComponent{})
	}
}

// claimBurn answers presses from other users or on stale buttons directly;
// on success the interaction is deferred as a message update
func claimBurn(s *discordgo.Session, i *discordgo.InteractionCreate, burns *PendingBurns, token string) (*pendingBurn, bool) {
	p, result := burns.Claim(token, getInteractionUser(i).ID)
	switch result {
	case ClaimNotOwner:
		respondEphemeral(s, i, MsgNotYourBurn)
		return nil, false
	case ClaimMissing:
		respondEphemeral(s, i, MsgPreviewGone)
		return nil, false
	}

	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	}); err != nil {
		slog.Warn(LogMsgRespondFailed, "error", err)
	}
	return p, true
}

func burnButtons(token string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Confirm",
					Style:    discordgo.SuccessButton,
					CustomID: ComponentBurnConfirm + ComponentIDSeparator + token,
				},
				discordgo.Button{
					Label:    "Cancel",
					Style:    discordgo.DangerButton,
					CustomID: ComponentBurnCancel + ComponentIDSeparator + token,
				},
			},
		},
	}
}

func formatPreview(p *domain.BurnPreview, wait string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Burn **%d** cards for **%d** xp.\n", p.TotalCount, p.TotalXP)
	sampled := 0
	for _, r := range p.Sample {
		fmt.Fprintf(&sb, "• %s (%s) x%d\n", r.Name, r.Rarity, r.Count)
		sampled += r.Count
	}
	if sampled < p.TotalCount {
		sb.WriteString("…\n")
	}
	fmt.Fprintf(&sb, "\nButtons expire in %s.", wait)
	return sb.String()
}

func formatBurnResult(r *domain.BurnResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Burned **%d** cards for **%d** xp.\n", r.CardsRemoved, r.XPGained)
	if r.LevelsGained > 0 {
		fmt.Fprintf(&sb, "Level **%d** → **%d**!\n", r.PreviousLevel, r.NewLevel)
	} else {
		fmt.Fprintf(&sb, "Level **%d**\n", r.NewLevel)
	}
	fmt.Fprintf(&sb, "XP %d / %d\n", r.XP, r.XPToNext)
	for _, m := range r.Milestones {
		fmt.Fprintf(&sb, "🏅 %s\n", milestoneLabel(m))
	}
	if r.CreditsGranted > 0 {
		fmt.Fprintf(&sb, "🎟️ +%d pull credits\n", r.CreditsGranted)
	}
	for _, c := range r.CardsMinted {
		fmt.Fprintf(&sb, "✨ %s (%s)\n", c.Name, c.Rarity)
	}
	return sb.String()
}

func milestoneLabel(m domain.MilestoneGrant) string {
	if m.Description != "" {
		return m.Description
	}
	return fmt.Sprintf("%s at level %d", m.MilestoneID, m.Level)
}
