package discord

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/Clinet/discordgo-embed"
	"github.com/Clinet/squadbot/services"
	"github.com/bwmarrin/discordgo"
	"github.com/robfig/cron/v3"
)

//ClientDiscord implements services.Service and holds a Discord session
type ClientDiscord struct {
	*discordgo.Session
	User *discordgo.User

	prefix      string
	statuses    []string
	statusEvery time.Duration
	cron        *cron.Cron
	statusOnce  sync.Once
}

var _ services.Service = (*ClientDiscord)(nil)

func (discord *ClientDiscord) Shutdown() {
	Log.Trace("--- ClientDiscord.Shutdown() ---")
	discord.statusOnce.Do(func() {}) //No rotation can start after this
	if discord.cron != nil {
		<-discord.cron.Stop().Done()
	}

	discord.RLock()
	vcs := make([]*discordgo.VoiceConnection, 0, len(discord.VoiceConnections))
	for _, vc := range discord.VoiceConnections {
		vcs = append(vcs, vc)
	}
	discord.RUnlock()
	for _, vc := range vcs {
		if err := vc.Disconnect(); err != nil {
			Log.Error(err)
		}
	}

	if err := discord.Close(); err != nil {
		Log.Error(err)
	}
}

func (discord *ClientDiscord) CmdPrefix() string {
	return discord.prefix
}

//forbidden turns Discord's missing permissions responses into services.ErrForbidden
func forbidden(err error) error {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil && restErr.Response.StatusCode == http.StatusForbidden {
		return services.ErrForbidden
	}
	return err
}

//buildEmbed converts a service message into a Discord embed
func buildEmbed(msg *services.Message) *discordgo.MessageEmbed {
	retEmbed := embed.NewEmbed().SetDescription(msg.Content)
	if msg.Title != "" {
		retEmbed.SetTitle(msg.Title)
	}
	if msg.Color != nil {
		retEmbed.SetColor(*msg.Color)
	}
	if msg.Image != "" {
		retEmbed.SetImage(msg.Image)
	}
	if msg.Thumbnail != "" {
		retEmbed.SetThumbnail(msg.Thumbnail)
	}
	if msg.Footer != "" {
		retEmbed.SetFooter(msg.Footer)
	}
	for _, field := range msg.Fields {
		if len(retEmbed.Fields) >= embed.EmbedLimitField {
			break
		}
		retEmbed.AddField(field.Name, field.Value)
		retEmbed.Fields[len(retEmbed.Fields)-1].Inline = field.Inline
	}
	return retEmbed.Truncate().MessageEmbed
}

func (discord *ClientDiscord) MsgEdit(msg *services.Message) (ret *services.Message, err error) {
	Log.Trace("--- ClientDiscord.MsgEdit(", msg.ChannelID, ", ", msg.MessageID, ") ---")
	var discordMsg *discordgo.Message
	if msg.IsEmbed() {
		discordMsg, err = discord.ChannelMessageEditEmbed(msg.ChannelID, msg.MessageID, buildEmbed(msg))
	} else {
		discordMsg, err = discord.ChannelMessageEdit(msg.ChannelID, msg.MessageID, msg.Content)
	}
	if err != nil {
		return nil, forbidden(err)
	}
	return fromDiscordMessage(discordMsg), nil
}

func (discord *ClientDiscord) MsgRemove(msg *services.Message) (err error) {
	Log.Trace("--- ClientDiscord.MsgRemove(", msg.ChannelID, ", ", msg.MessageID, ") ---")
	return forbidden(discord.ChannelMessageDelete(msg.ChannelID, msg.MessageID))
}

//MsgSend answers interactions, sends to channels, or DMs a user when given a user ID without a server or context
func (discord *ClientDiscord) MsgSend(msg *services.Message) (ret *services.Message, err error) {
	if msg.Content == "" && !msg.IsEmbed() {
		return nil, services.Error("discord: MsgSend(msg: %v): missing content", msg)
	}

	switch msgContext := msg.Context.(type) {
	case *discordgo.Interaction:
		//Interactions are deferred as soon as they arrive, so the answer is an edit of the deferred response
		edit := &discordgo.WebhookEdit{}
		if msg.IsEmbed() {
			embeds := []*discordgo.MessageEmbed{buildEmbed(msg)}
			edit.Embeds = &embeds
		} else {
			edit.Content = &msg.Content
		}
		discordMsg, err := discord.InteractionResponseEdit(msgContext, edit)
		if err != nil {
			return nil, err
		}
		return fromDiscordMessage(discordMsg), nil
	case *discordgo.Message:
		if msg.ChannelID == "" {
			msg.ChannelID = msgContext.ChannelID
		}
	case nil:
		//Sending a DM to a user should always be a regular message
		if msg.ServerID == "" && msg.ChannelID != "" {
			channelDM, err := discord.UserChannelCreate(msg.ChannelID)
			if err != nil {
				return nil, services.Error("discord: MsgSend(msg: %v): unable to create DM with userID: %s: %v", msg, msg.ChannelID, err)
			}
			msg.ChannelID = channelDM.ID
		}
	default:
		return nil, services.Error("discord: MsgSend(msg: %v): unknown MsgContext: %T", msg, msgContext)
	}
	if msg.ChannelID == "" {
		return nil, services.Error("discord: MsgSend(msg: %v): missing channel ID", msg)
	}

	var discordMsg *discordgo.Message
	if msg.IsEmbed() {
		discordMsg, err = discord.ChannelMessageSendComplex(msg.ChannelID, &discordgo.MessageSend{Embed: buildEmbed(msg)})
	} else {
		discordMsg, err = discord.ChannelMessageSend(msg.ChannelID, msg.Content)
	}
	if err != nil {
		return nil, forbidden(err)
	}
	return fromDiscordMessage(discordMsg), nil
}

func fromDiscordMessage(discordMsg *discordgo.Message) *services.Message {
	ret := &services.Message{
		MessageID: discordMsg.ID,
		ChannelID: discordMsg.ChannelID,
		ServerID:  discordMsg.GuildID,
		Content:   discordMsg.Content,
		Context:   discordMsg,
	}
	if discordMsg.Author != nil {
		ret.AuthorID = discordMsg.Author.ID
	}
	return ret
}

func (discord *ClientDiscord) GetUser(serverID, userID string) (ret *services.User, err error) {
	member, err := discord.State.Member(serverID, userID)
	if err != nil {
		member, err = discord.GuildMember(serverID, userID)
		if err != nil {
			return nil, err
		}
	}

	userRoles := make([]*services.Role, len(member.Roles))
	for i := 0; i < len(userRoles); i++ {
		userRoles[i] = &services.Role{RoleID: member.Roles[i]}
	}
	return &services.User{
		ServerID: serverID,
		UserID:   userID,
		Username: member.User.Username,
		Nickname: member.Nick,
		Bot:      member.User.Bot,
		Roles:    userRoles,
	}, nil
}

//GetUserPerms resolves the effective permissions of a user in a channel, overwrites and ownership included
func (discord *ClientDiscord) GetUserPerms(serverID, channelID, userID string) (perms *services.Perms, err error) {
	Log.Trace("--- ClientDiscord.GetUserPerms(", serverID, ", ", channelID, ", ", userID, ") ---")
	permissions, err := discord.UserChannelPermissions(userID, channelID)
	if err != nil {
		return nil, err
	}

	return &services.Perms{
		Administrator:  permissions&discordgo.PermissionAdministrator != 0,
		Ban:            permissions&discordgo.PermissionBanMembers != 0,
		Kick:           permissions&discordgo.PermissionKickMembers != 0,
		MuteMembers:    permissions&discordgo.PermissionVoiceMuteMembers != 0,
		ManageMessages: permissions&discordgo.PermissionManageMessages != 0,
	}, nil
}

func (discord *ClientDiscord) UserMute(user *services.User, mute bool) (err error) {
	Log.Trace("Mute(", user.ServerID, ", ", user.UserID, ", ", mute, ")")
	return forbidden(discord.GuildMemberMute(user.ServerID, user.UserID, mute))
}
func (discord *ClientDiscord) UserBan(user *services.User, reason string) (err error) {
	Log.Trace("Ban(", user.ServerID, ", ", user.UserID, ", ", reason, ")")
	return forbidden(discord.GuildBanCreateWithReason(user.ServerID, user.UserID, reason, 0))
}
func (discord *ClientDiscord) UserKick(user *services.User, reason string) (err error) {
	Log.Trace("Kick(", user.ServerID, ", ", user.UserID, ", ", reason, ")")
	return forbidden(discord.GuildMemberDeleteWithReason(user.ServerID, user.UserID, reason))
}

func (discord *ClientDiscord) GetServer(serverID string) (server *services.Server, err error) {
	guild, err := discord.State.Guild(serverID)
	if err != nil {
		return nil, err
	}

	voiceStates := make([]*services.VoiceState, len(guild.VoiceStates))
	for i := 0; i < len(voiceStates); i++ {
		vs := guild.VoiceStates[i]
		voiceStates[i] = &services.VoiceState{
			ChannelID: vs.ChannelID,
			UserID:    vs.UserID,
			SessionID: vs.SessionID,
			Deaf:      vs.Deaf,
			Mute:      vs.Mute,
			SelfDeaf:  vs.SelfDeaf,
			SelfMute:  vs.SelfMute,
		}
	}

	roles := make([]*services.Role, 0, len(guild.Roles))
	for _, role := range guild.Roles {
		if role.ID == guild.ID {
			continue //@everyone
		}
		roles = append(roles, &services.Role{RoleID: role.ID, Name: role.Name})
	}

	server = &services.Server{
		ServerID:       serverID,
		Name:           guild.Name,
		OwnerID:        guild.OwnerID,
		MemberCount:    guild.MemberCount,
		IconURL:        guild.IconURL("256"),
		BoostLevel:     int(guild.PremiumTier),
		BoostCount:     guild.PremiumSubscriptionCount,
		DefaultChannel: guild.SystemChannelID,
		Roles:          roles,
		VoiceStates:    voiceStates,
	}
	if createdAt, err := discordgo.SnowflakeTimestamp(serverID); err == nil {
		server.CreatedAt = createdAt
	}
	return server, nil
}

func (discord *ClientDiscord) GetChannel(channelID string) (*services.Channel, error) {
	channel, err := discord.State.Channel(channelID)
	if err != nil {
		channel, err = discord.Channel(channelID)
		if err != nil {
			return nil, err
		}
	}
	return &services.Channel{
		ServerID:  channel.GuildID,
		ChannelID: channel.ID,
		Name:      channel.Name,
		Voice:     channel.Type == discordgo.ChannelTypeGuildVoice || channel.Type == discordgo.ChannelTypeGuildStageVoice,
	}, nil
}
