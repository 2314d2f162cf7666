package moderation

import (
	"errors"
	"fmt"

	"github.com/Clinet/squadbot/cmds"
	"github.com/Clinet/squadbot/config"
	"github.com/Clinet/squadbot/pages"
	"github.com/Clinet/squadbot/services"
	"github.com/Clinet/squadbot/store"
	"github.com/Clinet/squadbot/utils/logger"
	"github.com/dustin/go-humanize"
)

//Needed for the cmds framework
var Log *logger.Logger
var Cmds []*cmds.Cmd
var Storage *services.Storage
var Store *store.Store
var PageSize = 5

//ModLogLimit is how many moderation log lines the modlog command pages through
var ModLogLimit = 50

var (
	warnLimit       int
	warnLimitAction = "none"
)

func Init(db *store.Store, cfg *config.CfgModeration, pageSize int) error {
	if db == nil {
		return errors.New("moderation: no store")
	}
	Store = db
	if pageSize > 0 {
		PageSize = pageSize
	}
	if cfg == nil {
		cfg = &config.CfgModeration{}
	}
	warnLimit = cfg.WarnLimit
	warnLimitAction = cfg.WarnLimitAction
	if warnLimitAction == "" {
		warnLimitAction = "none"
	}

	Storage = services.NewStorage()
	if err := Storage.LoadFrom("moderation"); err != nil {
		return err
	}

	resetFilters(cfg.BannedWords)

	Cmds = []*cmds.Cmd{
		cmds.NewCmd("mute", "Server mutes a user in voice", handleMute(true)).AddArgs(
			cmds.NewCmdArg("user", "Who to mute", cmds.ArgTypeUser).SetRequired(),
		),
		cmds.NewCmd("unmute", "Server unmutes a user in voice", handleMute(false)).AddArgs(
			cmds.NewCmdArg("user", "Who to unmute", cmds.ArgTypeUser).SetRequired(),
		),
		cmds.NewCmd("warn", "Warns a given user", handleWarn).AddArgs(
			cmds.NewCmdArg("user", "Who to warn", cmds.ArgTypeUser).SetRequired(),
			cmds.NewCmdArg("reason", "Reason for the warning", "No reason provided.").SetGreedy(),
		),
		cmds.NewCmd("warnings", "Lists the warnings of a user", handleWarnings).AddArgs(
			cmds.NewCmdArg("user", "Whose warnings to list, defaults to you", cmds.ArgTypeUser),
		),
		cmds.NewCmd("clearwarnings", "Clears every warning of a user", handleClearWarnings).AddArgs(
			cmds.NewCmdArg("user", "Whose warnings to clear", cmds.ArgTypeUser).SetRequired(),
		),
		cmds.NewCmd("modlog", "Shows the moderation log", handleModLog),
		automodCmd(),
	}
	return nil
}

func logAction(serverID, action string) {
	if err := Store.LogAction(serverID, action); err != nil {
		Log.Error(err)
	}
}

func perms(ctx *cmds.CmdCtx) *services.Perms {
	ctxPerms, err := ctx.Perms()
	if err != nil {
		Log.Error(err)
		return &services.Perms{}
	}
	return ctxPerms
}

func isModerator(ctxPerms *services.Perms) bool {
	return ctxPerms.CanKick() || ctxPerms.CanMute() || ctxPerms.CanBan()
}

func requireManager(ctx *cmds.CmdCtx) *cmds.CmdResp {
	if !perms(ctx).CanManageMessages() {
		return cmds.NewCmdRespErr("You need the Manage Messages permission to do that!")
	}
	return nil
}

func handleMute(mute bool) func(*cmds.CmdCtx) *cmds.CmdResp {
	verb, emoji := "mute", "🔇"
	if !mute {
		verb, emoji = "unmute", "🔊"
	}

	return func(ctx *cmds.CmdCtx) *cmds.CmdResp {
		if !perms(ctx).CanMute() {
			return cmds.NewCmdRespErr(fmt.Sprintf("You're not allowed to %s anyone!", verb))
		}

		user := ctx.GetArg("user").GetUser()
		if user == nil {
			return cmds.NewCmdRespErr("You must mention someone to " + verb + "!")
		}
		user.ServerID = ctx.Server.ServerID

		server, err := ctx.Service.GetServer(ctx.Server.ServerID)
		if err != nil {
			Log.Error(err)
			return cmds.NewCmdRespErr("❌ Error: " + err.Error())
		}
		if server.VoiceStateOf(user.UserID) == nil {
			return cmds.NewCmdRespWarn(user.Mention() + " is not in a voice channel!")
		}

		if err := ctx.Service.UserMute(user, mute); err != nil {
			if errors.Is(err, services.ErrForbidden) {
				return cmds.NewCmdRespErr(fmt.Sprintf("⚠️ I don't have permission to %s members!", verb))
			}
			Log.Error(err)
			return cmds.NewCmdRespErr("❌ Error: " + err.Error())
		}

		logAction(ctx.Server.ServerID, fmt.Sprintf("%s %sd %s", ctx.User.Mention(), verb, user.Mention()))
		return cmds.NewCmdRespOK(fmt.Sprintf("%s %s has been %sd.", emoji, user.Mention(), verb))
	}
}

func handleWarn(ctx *cmds.CmdCtx) *cmds.CmdResp {
	if !perms(ctx).CanKick() && !perms(ctx).CanMute() {
		return cmds.NewCmdRespErr("You're not allowed to warn anyone!")
	}

	user := ctx.GetArg("user").GetUser()
	if user == nil {
		return cmds.NewCmdRespErr("You must mention someone to warn!")
	}
	user.ServerID = ctx.Server.ServerID
	reason := ctx.GetArg("reason").GetString()

	warning := &store.Warning{
		GuildID:     ctx.Server.ServerID,
		UserID:      user.UserID,
		Reason:      reason,
		ModeratorID: ctx.User.UserID,
	}
	if err := Store.AddWarning(warning); err != nil {
		Log.Error(err)
		return cmds.NewCmdRespErr("Something went wrong while saving that warning...")
	}
	logAction(ctx.Server.ServerID, fmt.Sprintf("%s warned %s: %s", ctx.User.Mention(), user.Mention(), reason))

	msgWarning := services.NewMessage().
		SetContent("You've been warned. The following reason was given: " + reason).
		SetColor(services.ColorWarning)
	if server, err := ctx.Service.GetServer(ctx.Server.ServerID); err != nil {
		Log.Error(err)
	} else {
		msgWarning.SetTitle(server.Name)
	}

	//Ship off the DM
	dmFailed := false
	msgWarning.ChannelID = user.UserID
	if _, err := ctx.Service.MsgSend(msgWarning); err != nil {
		Log.Error(err)
		dmFailed = true
	}

	resp := fmt.Sprintf("⚠️ %s has been warned.", user.Mention())
	if action := enforceWarnLimit(ctx.Service, user, reason); action != "" {
		resp += " " + action
	}
	if dmFailed {
		resp += " I couldn't DM them the warning, but it applied anyway."
	}
	return cmds.NewCmdRespWarn(resp)
}

//enforceWarnLimit kicks or bans a user who has collected too many warnings, describing what it did
func enforceWarnLimit(service services.Service, user *services.User, reason string) string {
	if warnLimit <= 0 || warnLimitAction == "none" {
		return ""
	}
	count, err := Store.CountWarnings(user.ServerID, user.UserID)
	if err != nil {
		Log.Error(err)
		return ""
	}
	if count < int64(warnLimit) {
		return ""
	}

	reason = fmt.Sprintf("Reached %d warnings, last one: %s", count, reason)
	switch warnLimitAction {
	case "kick":
		err = service.UserKick(user, reason)
	case "ban":
		err = service.UserBan(user, reason)
	default:
		return ""
	}
	if err != nil {
		Log.Error("Unable to ", warnLimitAction, " ", user.UserID, ": ", err)
		return fmt.Sprintf("They've reached %d warnings, but I couldn't %s them.", count, warnLimitAction)
	}

	past := "kicked"
	if warnLimitAction == "ban" {
		past = "banned"
	}
	logAction(user.ServerID, fmt.Sprintf("%s was %s after reaching %d warnings", user.Mention(), past, count))
	return fmt.Sprintf("They've reached %d warnings and were %s.", count, past)
}

func handleWarnings(ctx *cmds.CmdCtx) *cmds.CmdResp {
	user := ctx.GetArg("user").GetUser()
	if user == nil {
		user = ctx.User
	}
	if user.UserID != ctx.User.UserID && !isModerator(perms(ctx)) {
		return cmds.NewCmdRespErr("You can only check your own warnings!")
	}

	warnings, err := Store.Warnings(ctx.Server.ServerID, user.UserID)
	if err != nil {
		Log.Error(err)
		return cmds.NewCmdRespErr("Something went wrong while fetching warnings...")
	}
	if len(warnings) == 0 {
		return cmds.NewCmdRespOK(fmt.Sprintf("%s has no warnings.", user.Mention()))
	}

	items := make([]*services.MessageField, len(warnings))
	for i, warning := range warnings {
		by := "auto-moderation"
		if warning.ModeratorID != "" {
			by = (&services.User{UserID: warning.ModeratorID}).Mention()
		}
		items[i] = &services.MessageField{
			Name:  fmt.Sprintf("#%d · %s", i+1, humanize.Time(warning.CreatedAt)),
			Value: fmt.Sprintf("%s\nBy %s", warning.Reason, by),
		}
	}

	list, err := pages.NewPagedList(items, PageSize)
	if err != nil {
		Log.Error(err)
		return cmds.NewCmdRespErr("Something went wrong while listing warnings...")
	}
	resp := cmds.NewCmdRespPages(list.SetTitle(fmt.Sprintf("Warnings (%d)", len(warnings))).SetColor(services.ColorWarning))
	resp.SetContent(user.Mention())
	return resp
}

func handleClearWarnings(ctx *cmds.CmdCtx) *cmds.CmdResp {
	if !perms(ctx).CanKick() && !perms(ctx).CanMute() {
		return cmds.NewCmdRespErr("You're not allowed to clear warnings!")
	}
	user := ctx.GetArg("user").GetUser()
	if user == nil {
		return cmds.NewCmdRespErr("You must mention someone to clear warnings for!")
	}

	cleared, err := Store.ClearWarnings(ctx.Server.ServerID, user.UserID)
	if err != nil {
		Log.Error(err)
		return cmds.NewCmdRespErr("Something went wrong while clearing warnings...")
	}
	if cleared == 0 {
		return cmds.NewCmdRespOK(fmt.Sprintf("%s has no warnings.", user.Mention()))
	}
	logAction(ctx.Server.ServerID, fmt.Sprintf("%s cleared %d warnings of %s", ctx.User.Mention(), cleared, user.Mention()))
	return cmds.NewCmdRespOK(fmt.Sprintf("🧹 Cleared %s of %s.", humanize.Comma(cleared)+" "+plural(cleared, "warning"), user.Mention()))
}

func plural(n int64, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

func handleModLog(ctx *cmds.CmdCtx) *cmds.CmdResp {
	if resp := requireManager(ctx); resp != nil {
		return resp
	}

	entries, err := Store.ModLog(ctx.Server.ServerID, ModLogLimit)
	if err != nil {
		Log.Error(err)
		return cmds.NewCmdRespErr("Something went wrong while fetching the moderation log...")
	}
	if len(entries) == 0 {
		return cmds.NewCmdRespOK("The moderation log is empty.")
	}

	items := make([]*services.MessageField, len(entries))
	for i, entry := range entries {
		items[i] = &services.MessageField{
			Name:  humanize.Time(entry.CreatedAt),
			Value: entry.Action,
		}
	}

	list, err := pages.NewPagedList(items, PageSize)
	if err != nil {
		Log.Error(err)
		return cmds.NewCmdRespErr("Something went wrong while listing the moderation log...")
	}
	return cmds.NewCmdRespPages(list.SetTitle("📜 Moderation log").SetColor(services.ColorInfo))
}
