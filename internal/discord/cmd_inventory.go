package discord

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// InventoryCommand returns the inventory command definition and handler
func InventoryCommand() (*discordgo.ApplicationCommand, CommandHandler) {
	cmd := &discordgo.ApplicationCommand{
		Name:        "inventory",
		Description: "View your card collection",
		Options: []*discordgo.ApplicationCommandOption{
			rarityOption("Only show cards of this rarity"),
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

		stacks, err := client.GetInventory(ctx, apiUserID(user), stringOption(opts, "rarity"))
		if err != nil {
			respondFriendlyError(s, i, err)
			return
		}

		var description string
		if len(stacks) == 0 {
			description = MsgEmptyInventory
		} else {
			lines := make([]string, 0, min(len(stacks), InventoryDisplayLimit)+1)
			for n, st := range stacks {
				if n == InventoryDisplayLimit {
					lines = append(lines, fmt.Sprintf("…and %d more", len(stacks)-n))
					break
				}
				line := fmt.Sprintf("%s **%s** x%d", rarityEmoji[st.Rarity], st.Name, st.Count)
				if st.Locked {
					line += " 🔒"
				}
				lines = append(lines, line)
			}
			description = strings.Join(lines, "\n")
		}

		sendEmbed(s, i, createEmbed(fmt.Sprintf("%s's Collection", user.Username), description, ColorInventory), nil)
	}

	return cmd, handler
}

// ProgressionCommand shows a character's level
func ProgressionCommand() (*discordgo.ApplicationCommand, CommandHandler) {
	cmd := &discordgo.ApplicationCommand{
		Name:        "progression",
		Description: "Show a character's level and experience",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "character",
				Description: "Character to inspect",
				Required:    true,
			},
		},
	}

	handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, client *APIClient) {
		if !deferResponse(s, i) {
			return
		}

		user := getInteractionUser(i)
		character := stringOption(optionMap(i), "character")

		ctx, cancel := context.WithTimeout(context.Background(), APIRequestTimeout)
		defer cancel()

		state, err := client.GetProgression(ctx, apiUserID(user), character)
		if err != nil {
			respondFriendlyError(s, i, err)
			return
		}

		description := fmt.Sprintf("Level **%d**\nXP %d / %d", state.Level, state.XP, state.XPToNext)
		sendEmbed(s, i, createEmbed(fmt.Sprintf("📈 %s", character), description, ColorProgression), nil)
	}

	return cmd, handler
}
