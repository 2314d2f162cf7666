package dumpctx

import (
	"github.com/Clinet/squadbot/cmds"
)

var Cmds []*cmds.Cmd

//ownerID is the only user allowed to see command contexts
var ownerID string

func Init(owner string) error {
	ownerID = owner
	Cmds = []*cmds.Cmd{
		cmds.NewCmd("dumpctx", "DEBUG: Dumps the command context as the bot sees it", handleDumpCtx).AddArgs(
			cmds.NewCmdArg("args", "Anything, to see how it's parsed", "").SetGreedy(),
		),
	}
	return nil
}

func handleDumpCtx(ctx *cmds.CmdCtx) *cmds.CmdResp {
	if ownerID == "" || ctx.User.UserID != ownerID {
		return cmds.NewCmdRespErr("Only the bot owner can do that!")
	}
	return cmds.NewCmdRespEmbed("Dump of ctx (*cmds.CmdCtx)", "```JSON\n"+ctx.String()+"```")
}
