package stats

import (
	"errors"
	"fmt"

	"github.com/Clinet/squadbot/cmds"
	"github.com/Clinet/squadbot/pages"
	"github.com/Clinet/squadbot/services"
	"github.com/Clinet/squadbot/store"
	"github.com/Clinet/squadbot/utils/logger"
	"github.com/dustin/go-humanize"
)

var Log *logger.Logger
var Cmds []*cmds.Cmd
var Store *store.Store
var PageSize = 5

//LeaderboardLimit is how many players the leaderboard ranks
var LeaderboardLimit = 25

func matchArgs() []*cmds.CmdArg {
	return []*cmds.CmdArg{
		cmds.NewCmdArg("kills", "Total kills", 0).SetRequired(),
		cmds.NewCmdArg("damage", "Total damage dealt", 0).SetRequired(),
		cmds.NewCmdArg("placement", "Final placement, 1 being a win", 0).SetRequired(),
	}
}

func Init(db *store.Store, pageSize int) error {
	if db == nil {
		return errors.New("stats: no store")
	}
	Store = db
	if pageSize > 0 {
		PageSize = pageSize
	}

	Cmds = []*cmds.Cmd{
		cmds.NewCmd("match", "Records a team match result", handleMatch).AddArgs(matchArgs()...),
		cmds.NewCmd("mymatch", "Records one of your own match results", handleMyMatch).AddArgs(matchArgs()...),
		cmds.NewCmd("stats", "Shows the team's match statistics", handleStats),
		cmds.NewCmd("playerstats", "Shows a player's match statistics", handlePlayerStats).AddArgs(
			cmds.NewCmdArg("user", "Whose stats to show, defaults to you", cmds.ArgTypeUser),
		),
		cmds.NewCmd("leaderboard", "Ranks players by kills", handleLeaderboard),
	}
	return nil
}

func handleMatch(ctx *cmds.CmdCtx) *cmds.CmdResp {
	perms, err := ctx.Perms()
	if err != nil {
		Log.Error(err)
		return cmds.NewCmdRespErr("Unable to check your permissions, try again later!")
	}
	if !perms.CanManageMessages() {
		return cmds.NewCmdRespErr("You need the Manage Messages permission to record team matches!")
	}

	match := &store.TeamMatch{
		GuildID:    ctx.Server.ServerID,
		Kills:      ctx.GetArg("kills").GetInt(),
		Damage:     ctx.GetArg("damage").GetInt(),
		Placement:  ctx.GetArg("placement").GetInt(),
		RecordedBy: ctx.User.UserID,
	}
	if err := Store.AddTeamMatch(match); err != nil {
		return storeErr(err, "match")
	}
	return recorded("Team match", match.ID, match.Kills, match.Damage, match.Placement)
}

func handleMyMatch(ctx *cmds.CmdCtx) *cmds.CmdResp {
	match := &store.PlayerMatch{
		GuildID:    ctx.Server.ServerID,
		UserID:     ctx.User.UserID,
		Kills:      ctx.GetArg("kills").GetInt(),
		Damage:     ctx.GetArg("damage").GetInt(),
		Placement:  ctx.GetArg("placement").GetInt(),
		RecordedBy: ctx.User.UserID,
	}
	if err := Store.AddPlayerMatch(match); err != nil {
		return storeErr(err, "match")
	}
	return recorded("Your match", match.ID, match.Kills, match.Damage, match.Placement)
}

func storeErr(err error, what string) *cmds.CmdResp {
	if errors.Is(err, store.ErrInvalid) {
		return cmds.NewCmdRespErr(fmt.Sprintf("Invalid %s: %s", what, store.InvalidReason(err)))
	}
	Log.Error(err)
	return cmds.NewCmdRespErr(fmt.Sprintf("Something went wrong while saving that %s...", what))
}

func recorded(title string, id uint, kills, damage, placement int) *cmds.CmdResp {
	msg := services.NewMessage().
		SetTitle(fmt.Sprintf("✅ %s #%d recorded", title, id)).
		AddField("Kills", humanize.Comma(int64(kills)), true).
		AddField("Damage", humanize.Comma(int64(damage)), true).
		AddField("Placement", humanize.Ordinal(placement), true).
		SetColor(services.ColorOK)
	return cmds.CmdRespFromMsg(msg).SetReady(true)
}

//statsMessage renders an aggregate, or nil when there's nothing to show
func statsMessage(title string, stats *store.Stats) *services.Message {
	if stats == nil || stats.Matches == 0 {
		return nil
	}
	return services.NewMessage().
		SetTitle(title).
		AddField("Matches", humanize.Comma(stats.Matches), true).
		AddField("Wins", humanize.Comma(stats.Wins), true).
		AddField("Best Placement", humanize.Ordinal(stats.BestPlacement), true).
		AddField("Kills", humanize.Comma(stats.Kills), true).
		AddField("Damage", humanize.Comma(stats.Damage), true).
		AddField("Avg Placement", fmt.Sprintf("%.1f", stats.AvgPlacement), true).
		AddField("Avg Kills", fmt.Sprintf("%.1f", stats.AvgKills), true).
		AddField("Avg Damage", humanize.CommafWithDigits(stats.AvgDamage, 1), true).
		SetColor(services.ColorInfo)
}

func handleStats(ctx *cmds.CmdCtx) *cmds.CmdResp {
	stats, err := Store.TeamStats(ctx.Server.ServerID)
	if err != nil {
		Log.Error(err)
		return cmds.NewCmdRespErr("Something went wrong while fetching team stats...")
	}
	msg := statsMessage("📊 Team Stats", stats)
	if msg == nil {
		return cmds.NewCmdRespOK("No team matches recorded yet.")
	}
	return cmds.CmdRespFromMsg(msg).SetReady(true)
}

func handlePlayerStats(ctx *cmds.CmdCtx) *cmds.CmdResp {
	user := ctx.GetArg("user").GetUser()
	if user == nil {
		user = ctx.User
	}

	stats, err := Store.PlayerStats(ctx.Server.ServerID, user.UserID)
	if err != nil {
		Log.Error(err)
		return cmds.NewCmdRespErr("Something went wrong while fetching player stats...")
	}
	msg := statsMessage("📊 Player Stats", stats)
	if msg == nil {
		return cmds.NewCmdRespOK(fmt.Sprintf("No matches recorded for %s yet.", user.Mention()))
	}
	msg.SetContent(user.Mention())
	return cmds.CmdRespFromMsg(msg).SetReady(true)
}

func handleLeaderboard(ctx *cmds.CmdCtx) *cmds.CmdResp {
	entries, err := Store.Leaderboard(ctx.Server.ServerID, LeaderboardLimit)
	if err != nil {
		Log.Error(err)
		return cmds.NewCmdRespErr("Something went wrong while fetching the leaderboard...")
	}
	if len(entries) == 0 {
		return cmds.NewCmdRespOK("No player matches recorded yet.")
	}

	items := make([]*services.MessageField, len(entries))
	for i, entry := range entries {
		user := &services.User{UserID: entry.UserID}
		items[i] = &services.MessageField{
			Name: fmt.Sprintf("%s place", humanize.Ordinal(i+1)),
			Value: fmt.Sprintf("%s · %s kills · %s damage · %s wins in %s matches",
				user.Mention(),
				humanize.Comma(entry.Kills), humanize.Comma(entry.Damage),
				humanize.Comma(entry.Wins), humanize.Comma(entry.Matches)),
		}
	}

	list, err := pages.NewPagedList(items, PageSize)
	if err != nil {
		Log.Error(err)
		return cmds.NewCmdRespErr("Something went wrong while building the leaderboard...")
	}
	return cmds.NewCmdRespPages(list.SetTitle("🏆 Leaderboard").SetColor(services.ColorInfo))
}
