package scrims

import (
	"errors"
	"fmt"

	"github.com/Clinet/squadbot/cmds"
	"github.com/Clinet/squadbot/pages"
	"github.com/Clinet/squadbot/services"
	"github.com/Clinet/squadbot/store"
	"github.com/Clinet/squadbot/utils/logger"
)

//Needed for the cmds framework
var Log *logger.Logger
var Cmds []*cmds.Cmd
var Store *store.Store
var PageSize = 5

func Init(db *store.Store, pageSize int) error {
	if db == nil {
		return errors.New("scrims: no store")
	}
	Store = db
	if pageSize > 0 {
		PageSize = pageSize
	}

	Cmds = []*cmds.Cmd{
		cmds.NewCmd("scrim", "Schedule practice matches", nil).AddSubCmds(
			cmds.NewCmd("add", "Schedules a scrim", handleAdd).AddArgs(
				cmds.NewCmdArg("date", "Day of the scrim as YYYY-MM-DD", "").SetRequired(),
				cmds.NewCmdArg("time", "Start time as HH:MM (24 hour clock)", "").SetRequired(),
				cmds.NewCmdArg("description", "Who you're playing and anything else worth knowing", "").SetRequired().SetGreedy(),
			),
			cmds.NewCmd("list", "Lists scheduled scrims", handleList),
			cmds.NewCmd("remove", "Removes a scheduled scrim", handleRemove).AddArgs(
				cmds.NewCmdArg("id", "ID of the scrim, as shown in the list", 0).SetRequired(),
			),
		),
	}
	return nil
}

func canManage(ctx *cmds.CmdCtx) bool {
	perms, err := ctx.Perms()
	if err != nil {
		Log.Error(err)
		return false
	}
	return perms.CanManageMessages()
}

func handleAdd(ctx *cmds.CmdCtx) *cmds.CmdResp {
	if !canManage(ctx) {
		return cmds.NewCmdRespErr("You need the Manage Messages permission to schedule scrims!")
	}

	scrim := &store.Scrim{
		GuildID:     ctx.Server.ServerID,
		Date:        ctx.GetArg("date").GetString(),
		Time:        ctx.GetArg("time").GetString(),
		Description: ctx.GetArg("description").GetString(),
		CreatedBy:   ctx.User.UserID,
	}
	if err := Store.AddScrim(scrim); err != nil {
		if errors.Is(err, store.ErrInvalid) {
			return cmds.NewCmdRespErr("Invalid scrim: " + store.InvalidReason(err))
		}
		Log.Error(err)
		return cmds.NewCmdRespErr("Something went wrong while saving that scrim...")
	}

	action := fmt.Sprintf("%s scheduled scrim #%d for %s %s: %s", ctx.User.Mention(), scrim.ID, scrim.Date, scrim.Time, scrim.Description)
	if err := Store.LogAction(ctx.Server.ServerID, action); err != nil {
		Log.Error(err)
	}

	msg := services.NewMessage().
		SetTitle(fmt.Sprintf("📅 Scrim #%d scheduled", scrim.ID)).
		SetContent(scrim.Description).
		AddField("Date", scrim.Date, true).
		AddField("Time", scrim.Time, true).
		SetColor(services.ColorOK)
	return cmds.CmdRespFromMsg(msg).SetReady(true)
}

func handleList(ctx *cmds.CmdCtx) *cmds.CmdResp {
	scrims, err := Store.ListScrims(ctx.Server.ServerID)
	if err != nil {
		Log.Error(err)
		return cmds.NewCmdRespErr("Something went wrong while fetching scrims...")
	}
	if len(scrims) == 0 {
		return cmds.NewCmdRespOK("No scrims scheduled.")
	}

	items := make([]*services.MessageField, len(scrims))
	for i, scrim := range scrims {
		items[i] = &services.MessageField{
			Name:  fmt.Sprintf("#%d · %s %s", scrim.ID, scrim.Date, scrim.Time),
			Value: scrim.Description,
		}
	}

	list, err := pages.NewPagedList(items, PageSize)
	if err != nil {
		Log.Error(err)
		return cmds.NewCmdRespErr("Something went wrong while listing scrims...")
	}
	return cmds.NewCmdRespPages(list.SetTitle("Scheduled scrims"))
}

func handleRemove(ctx *cmds.CmdCtx) *cmds.CmdResp {
	if !canManage(ctx) {
		return cmds.NewCmdRespErr("You need the Manage Messages permission to remove scrims!")
	}

	id := ctx.GetArg("id").GetInt()
	if id <= 0 {
		return cmds.NewCmdRespErr("Scrim IDs are positive numbers.")
	}
	if err := Store.DeleteScrim(ctx.Server.ServerID, uint(id)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return cmds.NewCmdRespErr(fmt.Sprintf("Scrim #%d doesn't exist.", id))
		}
		Log.Error(err)
		return cmds.NewCmdRespErr("Something went wrong while removing that scrim...")
	}

	if err := Store.LogAction(ctx.Server.ServerID, fmt.Sprintf("%s removed scrim #%d", ctx.User.Mention(), id)); err != nil {
		Log.Error(err)
	}
	return cmds.NewCmdRespOK(fmt.Sprintf("🗑️ Scrim #%d removed.", id))
}
