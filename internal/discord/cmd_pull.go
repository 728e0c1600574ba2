package discord

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/osse101/PullBot_Go/internal/domain"
	"github.com/osse101/PullBot_Go/internal/quota"
	"github.com/osse101/PullBot_Go/internal/utils"
)

var rarityEmoji = map[string]string{
	domain.RarityCommon:    "⚪",
	domain.RarityUncommon:  "🟢",
	domain.RarityRare:      "🔵",
	domain.RarityLegendary: "🟡",
}

func rarityOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "rarity",
		Description: description,
		Choices: []*discordgo.ApplicationCommandOptionChoice{
			{Name: "Common", Value: domain.RarityCommon},
			{Name: "Uncommon", Value: domain.RarityUncommon},
			{Name: "Rare", Value: domain.RarityRare},
			{Name: "Legendary", Value: domain.RarityLegendary},
		},
	}
}

// PullCommand draws one packet
func PullCommand() (*discordgo.ApplicationCommand, CommandHandler) {
	cmd := &discordgo.ApplicationCommand{
		Name:        "pull",
		Description: "Open a card packet",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "policy",
				Description: "Which balance pays for the packet (default: best available)",
				Choices: []*discordgo.ApplicationCommandOptionChoice{
					{Name: "Best available", Value: quota.PolicyNameBest},
					{Name: "Event credits, then timed", Value: quota.PolicyNameEventThenTimed},
					{Name: "Timed only", Value: quota.PolicyNameTimed},
					{Name: "Event credits only", Value: quota.PolicyNameEvent},
					{Name: "Named grant", Value: quota.PolicyNameNamed},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "grant",
				Description: "Grant label when paying from a named grant",
			},
		},
	}

	handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, client *APIClient) {
		if !deferResponse(s, i) {
			return
		}

		user := getInteractionUser(i)
		opts := optionMap(i)

		ctx, cancel := context.WithTimeout(context.Background(), APIRequestTimeout)
		defer cancel()

		res, err := client.Pull(ctx, apiUserID(user), stringOption(opts, "policy"), stringOption(opts, "grant"))
		if err != nil {
			respondFriendlyError(s, i, err)
			return
		}

		embed := createEmbed(fmt.Sprintf("🎴 %s opened a packet", user.Username), formatCards(res.Cards), ColorPull)
		embed.Fields = []*discordgo.MessageEmbedField{
			{Name: "Remaining", Value: formatBalance(&res.Allowance), Inline: false},
		}
		sendEmbed(s, i, embed, nil)
	}

	return cmd, handler
}

// AllowanceCommand shows the user's pool balances
func AllowanceCommand() (*discordgo.ApplicationCommand, CommandHandler) {
	cmd := &discordgo.ApplicationCommand{
		Name:        "allowance",
		Description: "Check how many packets you can open",
	}

	handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, client *APIClient) {
		if !deferResponse(s, i) {
			return
		}

		user := getInteractionUser(i)
		ctx, cancel := context.WithTimeout(context.Background(), APIRequestTimeout)
		defer cancel()

		view, err := client.GetAllowance(ctx, apiUserID(user))
		if err != nil {
			respondFriendlyError(s, i, err)
			return
		}

		sendEmbed(s, i, createEmbed(fmt.Sprintf("🎟️ %s's allowance", user.Username), formatBalance(view), ColorAllowance), nil)
	}

	return cmd, handler
}

// formatCards lists drawn cards in draw order, folding duplicates
func formatCards(cards []domain.Card) string {
	if len(cards) == 0 {
		return "The packet was empty."
	}
	var sb strings.Builder
	for _, st := range utils.FoldCards(cards) {
		emoji := rarityEmoji[st.Key.Rarity]
		if emoji == "" {
			emoji = "▫️"
		}
		fmt.Fprintf(&sb, "%s **%s**", emoji, st.Key.Name)
		if st.Count > 1 {
			fmt.Fprintf(&sb, " x%d", st.Count)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func formatBalance(v *domain.AllowanceView) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Timed: **%d/%d**", v.TimedStock, v.MaxStock)
	if v.TimedStock < v.MaxStock && v.NextRefillMS > 0 {
		fmt.Fprintf(&sb, " (next in %s)", formatWait(time.Duration(v.NextRefillMS)*time.Millisecond))
	}
	fmt.Fprintf(&sb, "\nEvent credits: **%d**", v.EventCredits)
	for _, n := range v.Named {
		label := n.DisplayLabel
		if label == "" {
			label = n.Label
		}
		fmt.Fprintf(&sb, "\n%s: **%d** (until <t:%d:R>)", label, n.Remaining, n.ExpiresAt.Unix())
	}
	return sb.String()
}
