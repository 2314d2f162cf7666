package info

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Clinet/squadbot/cmds"
	"github.com/Clinet/squadbot/features"
	"github.com/Clinet/squadbot/pages"
	"github.com/Clinet/squadbot/services"
	"github.com/Clinet/squadbot/utils/logger"
	"github.com/dustin/go-humanize"
)

var Log *logger.Logger
var Cmds []*cmds.Cmd
var PageSize = 5

//Started is when the bot came up, for uptime
var Started = time.Now()

//RoleLimit is how many roles serverinfo mentions before summarizing the rest
const RoleLimit = 5

func Init(pageSize int) error {
	if pageSize > 0 {
		PageSize = pageSize
	}

	Cmds = []*cmds.Cmd{
		cmds.NewCmd("serverinfo", "Shows information about this server", handleServerInfo),
		cmds.NewCmd("botinfo", "Shows information about the bot", handleBotInfo),
		cmds.NewCmd("help", "Lists every command", handleHelp),
		cmds.NewCmd("ping", "Checks if the bot is listening", handlePing),
	}
	return nil
}

func handlePing(ctx *cmds.CmdCtx) *cmds.CmdResp {
	return cmds.NewCmdRespOK("🏓 Pong!")
}

func handleServerInfo(ctx *cmds.CmdCtx) *cmds.CmdResp {
	server, err := ctx.Service.GetServer(ctx.Server.ServerID)
	if err != nil {
		Log.Error(err)
		return cmds.NewCmdRespErr("We can't find your server!")
	}

	roles := "None"
	if len(server.Roles) > 0 {
		mentions := make([]string, 0, RoleLimit)
		for i := 0; i < len(server.Roles) && i < RoleLimit; i++ {
			mentions = append(mentions, server.Roles[i].Mention())
		}
		roles = strings.Join(mentions, " ")
		if len(server.Roles) > RoleLimit {
			roles += fmt.Sprintf("\n+%d more...", len(server.Roles)-RoleLimit)
		}
	}

	owner := "Unknown"
	if server.OwnerID != "" {
		owner = (&services.User{UserID: server.OwnerID}).Mention()
	}
	created := "Unknown"
	if !server.CreatedAt.IsZero() {
		created = server.CreatedAt.UTC().Format("2006-01-02")
	}

	msg := services.NewMessage().
		SetTitle(server.Name).
		SetThumbnail(server.IconURL).
		AddField("Server Name", server.Name, true).
		AddField("Member Count", humanize.Comma(int64(server.MemberCount)), true).
		AddField("Owner", owner, true).
		AddField("Created At", created, true).
		AddField("Boost Level", "Level "+strconv.Itoa(server.BoostLevel), true).
		AddField("Boosts", strconv.Itoa(server.BoostCount), true).
		AddField(fmt.Sprintf("Roles (%d)", len(server.Roles)), roles, false).
		SetFooter("Server ID: " + server.ServerID).
		SetColor(services.ColorInfo)
	return cmds.CmdRespFromMsg(msg).SetReady(true)
}

func handleBotInfo(ctx *cmds.CmdCtx) *cmds.CmdResp {
	enabled := make([]string, 0)
	for _, name := range []string{features.AutoMod, features.Convos, features.Fun, features.Scrims, features.Stats, features.TTS, features.VoiceKeeper} {
		if features.IsEnabled(name) {
			enabled = append(enabled, name)
		}
	}
	if len(enabled) == 0 {
		enabled = append(enabled, "none")
	}

	msg := services.NewMessage().
		SetTitle("Bot Info").
		AddField("Default Prefix", ctx.Service.CmdPrefix(), true).
		AddField("Command Count", strconv.Itoa(len(cmds.List())), true).
		AddField("Up Since", humanize.Time(Started), true).
		AddField("Features", strings.Join(enabled, ", "), false).
		SetColor(services.ColorOK)
	return cmds.CmdRespFromMsg(msg).SetReady(true)
}

func handleHelp(ctx *cmds.CmdCtx) *cmds.CmdResp {
	items := make([]*services.MessageField, 0)
	for _, cmd := range cmds.List() {
		if len(cmd.Subcommands) == 0 {
			items = append(items, helpField(cmd, ctx.Prefix))
			continue
		}
		for _, subCmd := range cmd.Subcommands {
			items = append(items, helpField(subCmd, ctx.Prefix))
		}
	}

	list, err := pages.NewPagedList(items, PageSize)
	if err != nil {
		Log.Error(err)
		return cmds.NewCmdRespErr("There are no commands to list!")
	}
	return cmds.NewCmdRespPages(list.SetTitle("Commands").SetColor(services.ColorInfo))
}

func helpField(cmd *cmds.Cmd, prefix string) *services.MessageField {
	return &services.MessageField{
		Name:  "`" + cmd.UsageText(prefix) + "`",
		Value: cmd.Description,
	}
}
