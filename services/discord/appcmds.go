package discord

import (
	"github.com/Clinet/squadbot/cmds"
	"github.com/Clinet/squadbot/services"
	"github.com/bwmarrin/discordgo"
)

func appCmdOptions(args []*cmds.CmdArg) []*discordgo.ApplicationCommandOption {
	//Discord wants required options first
	required := make([]*discordgo.ApplicationCommandOption, 0)
	optional := make([]*discordgo.ApplicationCommandOption, 0)

	for _, arg := range args {
		appCmdOpt := &discordgo.ApplicationCommandOption{
			Name:        arg.Name,
			Description: arg.Description,
			Required:    arg.Required,
		}
		if appCmdOpt.Description == "" {
			appCmdOpt.Description = arg.Name
		}

		switch arg.Value.(type) {
		case int:
			appCmdOpt.Type = discordgo.ApplicationCommandOptionInteger
		case bool:
			appCmdOpt.Type = discordgo.ApplicationCommandOptionBoolean
		case *services.User:
			appCmdOpt.Type = discordgo.ApplicationCommandOptionUser
		default:
			appCmdOpt.Type = discordgo.ApplicationCommandOptionString
		}

		Log.Trace("- Built appCmdOpt: ", appCmdOpt)
		if arg.Required {
			required = append(required, appCmdOpt)
		} else {
			optional = append(optional, appCmdOpt)
		}
	}
	return append(required, optional...)
}

func CmdToAppCommand(cmd *cmds.Cmd) *discordgo.ApplicationCommand {
	appCmd := &discordgo.ApplicationCommand{
		Name:        cmd.Name,
		Description: cmd.Description,
		Options:     appCmdOptions(cmd.Args),
	}

	for _, subCmd := range cmd.Subcommands {
		appCmd.Options = append(appCmd.Options, CmdToAppSubCommand(subCmd))
	}

	Log.Trace("- Built cmd: ", appCmd)
	return appCmd
}

func CmdToAppSubCommand(cmd *cmds.Cmd) *discordgo.ApplicationCommandOption {
	appSubCmd := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommand,
		Name:        cmd.Name,
		Description: cmd.Description,
		Options:     appCmdOptions(cmd.Args),
	}

	Log.Trace("- Built subcmd: ", appSubCmd)
	return appSubCmd
}

func CmdsToAppCommands() []*discordgo.ApplicationCommand {
	appCmds := make([]*discordgo.ApplicationCommand, 0)
	for _, cmd := range cmds.List() {
		appCmds = append(appCmds, CmdToAppCommand(cmd))
	}
	return appCmds
}
