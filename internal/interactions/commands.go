package interactions

import (
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"
)

var adminPermission int64 = discordgo.PermissionAdministrator

func adminCommand(cmd *discordgo.ApplicationCommand) *discordgo.ApplicationCommand {
	cmd.DefaultMemberPermissions = &adminPermission
	return cmd
}

func bonusOptions(verb string) []*discordgo.ApplicationCommandOption {
	return []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: fmt.Sprintf("User to %s bonus invites", verb),
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "amount",
			Description: "Number of bonus invites",
			Required:    true,
		},
	}
}

// Commands returns the slash command definitions served by the router
func Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		adminCommand(&discordgo.ApplicationCommand{Name: "setup-invites", Description: "Configure invite tracking"}),
		{
			Name:        "invites",
			Description: "Show invite stats",
			Options: []*discordgo.ApplicationCommandOption{{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "user",
				Description: "User to check (defaults to you)",
			}},
		},
		{Name: "generator", Description: "Show the account generator"},
		adminCommand(&discordgo.ApplicationCommand{Name: "restock", Description: "Add accounts to stock"}),
		adminCommand(&discordgo.ApplicationCommand{Name: "setup-generator", Description: "Configure the generator embed"}),
		{Name: "help", Description: "List the bot's commands"},
		adminCommand(&discordgo.ApplicationCommand{
			Name:        "setup-social",
			Description: "Configure the social boost embed",
			Options: []*discordgo.ApplicationCommandOption{{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "api_key",
				Description: "Panel API key",
			}},
		}),
		{Name: "social", Description: "Boost your social accounts with invites"},
		{Name: "compensation", Description: "Refund invites for a failed boost"},
		{Name: "refill", Description: "Refill a recent boost"},
		{Name: "members", Description: "Trade invites for server members"},
		adminCommand(&discordgo.ApplicationCommand{Name: "resetserverinvites", Description: "Reset all invite data for this server"}),
		adminCommand(&discordgo.ApplicationCommand{Name: "addbonus", Description: "Add bonus invites", Options: bonusOptions("add")}),
		adminCommand(&discordgo.ApplicationCommand{Name: "removebonus", Description: "Remove bonus invites", Options: bonusOptions("remove")}),
		adminCommand(&discordgo.ApplicationCommand{Name: "reloadaccounts", Description: "Reload the account stock from disk"}),
	}
}

// RegisterCommands replaces the application's commands. An empty guildID registers them globally.
func RegisterCommands(s *discordgo.Session, appID, guildID string) error {
	created, err := s.ApplicationCommandBulkOverwrite(appID, guildID, Commands())
	if err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}
	log.Printf("[Interactions] Registered %d commands", len(created))
	return nil
}
