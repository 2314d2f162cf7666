package discord

import (
	"github.com/Clinet/squadbot/cmds"
	"github.com/Clinet/squadbot/services"
	"github.com/bwmarrin/discordgo"
)

//cmdHandler runs an application command, descending into the chosen subcommand
func cmdHandler(cmd *cmds.Cmd, interaction *discordgo.Interaction, eventOpts []*discordgo.ApplicationCommandInteractionDataOption) []*cmds.CmdResp {
	for len(cmd.Subcommands) > 0 {
		if len(eventOpts) != 1 || eventOpts[0].Type != discordgo.ApplicationCommandOptionSubCommand {
			return []*cmds.CmdResp{cmds.NewCmdRespErr("You must specify one of the available subcommands!")}
		}
		Log.Trace("Checking subcommands for " + cmd.Name + " using subcommand " + eventOpts[0].Name)
		subCmd := cmd.GetSubCmd(eventOpts[0].Name)
		if subCmd == nil {
			Log.Error("Command " + cmd.Name + " has no subcommand " + eventOpts[0].Name)
			return []*cmds.CmdResp{cmds.NewCmdRespErr("Unknown subcommand " + eventOpts[0].Name)}
		}
		cmd = subCmd
		eventOpts = eventOpts[0].Options
	}

	userID := ""
	if interaction.Member != nil && interaction.Member.User != nil {
		userID = interaction.Member.User.ID
	} else if interaction.User != nil {
		userID = interaction.User.ID
	}

	user := &services.User{
		ServerID: interaction.GuildID,
		UserID:   userID,
	}
	channel := &services.Channel{
		ServerID:  interaction.GuildID,
		ChannelID: interaction.ChannelID,
	}
	server := &services.Server{
		ServerID: interaction.GuildID,
	}
	message := &services.Message{
		AuthorID:  userID,
		MessageID: interaction.ID,
		ChannelID: interaction.ChannelID,
		ServerID:  interaction.GuildID,
		Context:   interaction,
	}

	cmdCtx := cmds.NewCmdCtx().
		SetAlias(cmd.Name).
		SetPrefix("/").
		SetUser(user).
		SetChannel(channel).
		SetServer(server).
		SetMessage(message).
		SetService(Discord).
		AddArgs(discordCmdArgs(cmd, interaction.GuildID, eventOpts)...)

	cmdResps := cmds.CmdBatch(cmds.CmdBuildCommand(cmd, cmdCtx)).Run()
	if len(cmdResps) == 0 {
		Log.Warn("No responses for cmd " + cmd.FullName())
	}
	return cmdResps
}

//discordCmdArgs fills fresh copies of the command's arguments from the interaction options
func discordCmdArgs(cmd *cmds.Cmd, serverID string, eventArgs []*discordgo.ApplicationCommandInteractionDataOption) []*cmds.CmdArg {
	finalArgs := make([]*cmds.CmdArg, 0, len(cmd.Args))

	for _, arg := range cmd.Args {
		cmdArg := cmds.NewCmdArg(arg.Name, arg.Description, arg.Value)
		for _, eventArg := range eventArgs {
			if eventArg.Name != arg.Name {
				continue
			}
			switch eventArg.Type {
			case discordgo.ApplicationCommandOptionString:
				cmdArg.SetValue(eventArg.StringValue())
			case discordgo.ApplicationCommandOptionInteger:
				cmdArg.SetValue(int(eventArg.IntValue()))
			case discordgo.ApplicationCommandOptionBoolean:
				cmdArg.SetValue(eventArg.BoolValue())
			case discordgo.ApplicationCommandOptionUser:
				cmdArg.SetValue(&services.User{
					ServerID: serverID,
					UserID:   eventArg.UserValue(nil).ID,
				})
			default:
				cmdArg.SetValue(eventArg.Value)
			}
			Log.Trace("Filled in cmdArg: ", cmdArg.Name)
			break
		}
		finalArgs = append(finalArgs, cmdArg)
	}

	return finalArgs
}
