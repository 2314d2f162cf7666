package discord

import (
	"errors"
	"runtime/debug"

	"github.com/Clinet/squadbot/cmds"
	"github.com/Clinet/squadbot/pages"
	"github.com/Clinet/squadbot/services"
	"github.com/bwmarrin/discordgo"
)

//recoverEvent keeps a panicking handler from taking the whole bot down
func recoverEvent(event string) {
	if panicReason := recover(); panicReason != nil {
		Log.Error("Recovered from panic in ", event, ": ", panicReason, "\n", string(debug.Stack()))
	}
}

func discordReady(session *discordgo.Session, event *discordgo.Ready) {
	defer recoverEvent("ready")
	Log.Trace("--- discordReady(", event.SessionID, ") ---")

	Discord.User = event.User
	Log.Info("Logged into Discord as ", Discord.User, "!")

	Discord.startStatus()
	for _, readyFunc := range ReadyFuncs {
		go func(readyFunc func(services.Service)) {
			defer recoverEvent("ready hook")
			readyFunc(Discord)
		}(readyFunc)
	}
}

func discordMessageCreate(session *discordgo.Session, event *discordgo.MessageCreate) {
	defer recoverEvent("messageCreate")
	if event.Author == nil || event.Author.Bot {
		return
	}
	Log.Trace("--- discordMessageCreate(", event.ID, ") ---")

	msg := &services.Message{
		AuthorID:  event.Author.ID,
		MessageID: event.ID,
		ChannelID: event.ChannelID,
		ServerID:  event.GuildID,
		Content:   event.Content,
		Context:   event.Message,
	}
	for _, filter := range MessageFilters {
		if filter(msg, Discord) {
			Log.Trace("Message ", event.ID, " was handled by a filter")
			return
		}
	}

	cmdName, cmdResps, err := cmds.CmdHandler(msg, Discord)
	if err != nil {
		if errors.Is(err, cmds.ErrCmdEmptyMsg) {
			return
		}
		cmdResps = []*cmds.CmdResp{cmds.NewCmdRespErr(err.Error())}
	}
	if cmdName == "" && len(cmdResps) == 0 {
		if resp := convoHandler(msg); resp != nil {
			cmdResps = []*cmds.CmdResp{resp}
		}
	}
	if cmdName != "" {
		Log.Debug("Handled cmd ", cmdName, " for ", event.Author.ID)
	}

	sendResps(cmdResps, event.Message, event.Message, event.GuildID, event.ChannelID)
}

func discordInteractionCreate(session *discordgo.Session, event *discordgo.InteractionCreate) {
	defer recoverEvent("interactionCreate")
	if event.Type != discordgo.InteractionApplicationCommand {
		return
	}
	Log.Trace("--- discordInteractionCreate(", event.ID, ") ---")

	data := event.ApplicationCommandData()
	cmd := cmds.GetCmd(data.Name)
	if cmd == nil {
		Log.Error("Unable to find command " + data.Name)
		return
	}

	//Discord only waits a few seconds for the first answer
	err := session.InteractionRespond(event.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err != nil {
		Log.Error("Unable to defer interaction for cmd ", data.Name, ": ", err)
		return
	}

	cmdResps := cmdHandler(cmd, event.Interaction, data.Options)
	if len(cmdResps) == 0 {
		cmdResps = []*cmds.CmdResp{cmds.NewCmdRespOK("Done!")}
	}

	//Only the first response answers the interaction, the rest go to the channel
	channelCtx := &discordgo.Message{ChannelID: event.ChannelID, GuildID: event.GuildID}
	sendResps(cmdResps, event.Interaction, channelCtx, event.GuildID, event.ChannelID)
}

func discordVoiceStateUpdate(session *discordgo.Session, event *discordgo.VoiceStateUpdate) {
	defer recoverEvent("voiceStateUpdate")
	if Discord.User == nil || event.UserID != Discord.User.ID {
		return
	}

	beforeChannelID := ""
	if event.BeforeUpdate != nil {
		beforeChannelID = event.BeforeUpdate.ChannelID
	}
	Log.Trace("--- discordVoiceStateUpdate(", event.GuildID, ", ", beforeChannelID, " -> ", event.ChannelID, ") ---")

	if event.ChannelID == "" {
		Discord.dropVoiceConnection(event.GuildID)
	}
	if BotVoiceStateFunc == nil {
		return
	}
	BotVoiceStateFunc(event.GuildID, beforeChannelID, event.ChannelID)
}

func discordMessageReactionAdd(session *discordgo.Session, event *discordgo.MessageReactionAdd) {
	defer recoverEvent("messageReactionAdd")
	if Discord.User == nil || event.UserID == Discord.User.ID {
		return
	}

	page, err := Pager.Flip(event.MessageID, event.Emoji.Name)
	if err != nil {
		return
	}
	Log.Trace("Flipping paged list ", event.MessageID, " for ", event.UserID)

	if _, err := session.ChannelMessageEditEmbed(event.ChannelID, event.MessageID, buildEmbed(page)); err != nil {
		//Usually the message is gone, so stop paging it
		Log.Error("Unable to flip paged list: ", err)
		Pager.Untrack(event.MessageID)
		return
	}
	if err := session.MessageReactionRemove(event.ChannelID, event.MessageID, event.Emoji.APIName(), event.UserID); err != nil {
		Log.Debug("Unable to remove reaction: ", err)
	}
}

//sendResps sends every ready response, answering with firstCtx and following up with nextCtx
func sendResps(cmdResps []*cmds.CmdResp, firstCtx, nextCtx interface{}, serverID, channelID string) {
	sent := 0
	for _, resp := range cmdResps {
		if resp == nil || !resp.Ready {
			continue
		}

		resp.Context = nextCtx
		if sent == 0 {
			resp.Context = firstCtx
		}
		if resp.ServerID == "" {
			resp.ServerID = serverID
		}
		if resp.ChannelID == "" {
			resp.ChannelID = channelID
		}

		msg, err := Discord.MsgSend(resp.Message)
		if err != nil {
			Log.Error("Unable to send response: ", err)
			continue
		}
		sent++
		Log.Trace("Sent message: ", msg.MessageID)

		if resp.Pages != nil {
			trackPages(msg, resp.Pages)
		}
	}
}

func trackPages(msg *services.Message, list *pages.PagedList) {
	Pager.Track(msg.MessageID, list)
	for _, emoji := range []string{pages.EmojiPrev, pages.EmojiNext} {
		if err := Discord.MessageReactionAdd(msg.ChannelID, msg.MessageID, emoji); err != nil {
			Log.Warn("Unable to add page reaction: ", err)
			return
		}
	}
}
