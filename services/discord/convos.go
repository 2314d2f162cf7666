package discord

import (
	"strings"

	"github.com/Clinet/squadbot/cmds"
	"github.com/Clinet/squadbot/services"
)

//convoHandler answers messages that mention the bot, returning nil for everything else
func convoHandler(msg *services.Message) *cmds.CmdResp {
	if Conversations == nil || Discord.User == nil {
		return nil
	}

	content := msg.Content
	mentioned := false
	for _, mention := range []string{"<@" + Discord.User.ID + ">", "<@!" + Discord.User.ID + ">"} {
		if strings.Contains(content, mention) {
			mentioned = true
			content = strings.ReplaceAll(content, mention, "")
		}
	}
	if !mentioned {
		return nil
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return cmds.NewCmdRespMsg("Hey! Ask me anything, or try `" + Discord.CmdPrefix() + "help`.")
	}

	state := Conversations.Query(msg.ChannelID, content)
	for _, err := range state.Errors {
		Log.Debug("Conversation source failed: ", err)
	}

	resp := cmds.NewCmdRespMsg(state.Reply())
	if state.Response != nil && state.Response.ImageURL != "" {
		resp.SetImage(state.Response.ImageURL).SetColor(services.ColorInfo)
	}
	return resp
}
