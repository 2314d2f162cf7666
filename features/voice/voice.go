package voice

import (
	"errors"
	"strings"
	"time"

	"github.com/Clinet/squadbot/cmds"
	"github.com/Clinet/squadbot/config"
	"github.com/Clinet/squadbot/features"
	"github.com/Clinet/squadbot/services"
	"github.com/Clinet/squadbot/utils/logger"
)

var Log *logger.Logger
var Cmds []*cmds.Cmd
var Storage *services.Storage

//Presence is the running voice keeper, nil until StartKeeper
var Presence *Keeper
var Speech = NewSpeaker()

var (
	channelID      string
	reconnectEvery = 5 * time.Minute
	ttsLanguage    = config.DefaultTTSLanguage
	ttsMaxChars    = config.DefaultTTSMaxChars
)

//Init prepares the voice commands, the keeper only starts once a service is connected
func Init(cfg *config.CfgVoice, voiceChannelID string) error {
	Storage = services.NewStorage()
	if err := Storage.LoadFrom("voice"); err != nil {
		Log.Error(err)
		return err
	}

	channelID = voiceChannelID
	Presence = nil
	if cfg != nil {
		if cfg.ReconnectEvery != "" {
			every, err := time.ParseDuration(cfg.ReconnectEvery)
			if err != nil {
				return err
			}
			reconnectEvery = every
		}
		if cfg.TTSLanguage != "" {
			ttsLanguage = cfg.TTSLanguage
		}
		if cfg.TTSMaxChars > 0 {
			ttsMaxChars = cfg.TTSMaxChars
		}
	}

	Cmds = []*cmds.Cmd{
		cmds.NewCmd("voice", "For more direct control of voice channels", nil).AddSubCmds(
			cmds.NewCmd("join", "Joins your active voice channel", handleJoin),
			cmds.NewCmd("leave", "Leaves the voice channel", handleLeave),
			cmds.NewCmd("stay", "Returns to the designated voice channel and stays there", handleStay),
		),
	}
	if features.IsEnabled(features.TTS) {
		Cmds = append(Cmds, cmds.NewCmd("say", "Speaks your message in voice", handleSay).AddArgs(
			cmds.NewCmdArg("text", "What to say", "").SetRequired().SetGreedy(),
		))
	}
	return nil
}

//StartKeeper starts holding the designated voice channel on the given service
func StartKeeper(service services.Service) error {
	if !features.IsEnabled(features.VoiceKeeper) || channelID == "" {
		return nil
	}
	if Presence == nil {
		Presence = NewKeeper(service, channelID, reconnectEvery)
	}
	return Presence.Start()
}

func StopKeeper() {
	if Presence != nil {
		Presence.Stop()
	}
}

//OnVoiceStateUpdate forwards the bot's own voice state changes to the keeper
func OnVoiceStateUpdate(serverID, beforeChannelID, afterChannelID string) {
	if Presence != nil {
		Presence.OnVoiceStateUpdate(serverID, beforeChannelID, afterChannelID)
	}
}

//callerChannel returns the voice channel the caller is in, or an error response
func callerChannel(ctx *cmds.CmdCtx) (string, *cmds.CmdResp) {
	server, err := ctx.Service.GetServer(ctx.Server.ServerID)
	if err != nil {
		Log.Error(err)
		return "", cmds.NewCmdRespErr("We can't find your server!")
	}
	vs := server.VoiceStateOf(ctx.User.UserID)
	if vs == nil {
		return "", cmds.NewCmdRespWarn("You need to be in a voice channel first!")
	}
	return vs.ChannelID, nil
}

func isPresenceServer(serverID string) bool {
	return Presence != nil && Presence.ServerID() == serverID
}

func handleJoin(ctx *cmds.CmdCtx) *cmds.CmdResp {
	voiceChannelID, resp := callerChannel(ctx)
	if resp != nil {
		return resp
	}

	//The keeper would drag us back otherwise
	if isPresenceServer(ctx.Server.ServerID) && voiceChannelID != Presence.ChannelID() {
		Presence.SetActive(false)
	}

	if err := ctx.Service.VoiceJoin(ctx.Server.ServerID, voiceChannelID, false, true); err != nil {
		Log.Error(err)
		return cmds.NewCmdRespErr("We were unable to join your voice channel!")
	}
	return cmds.NewCmdRespOK("I'm in your voice channel now!")
}

func handleLeave(ctx *cmds.CmdCtx) *cmds.CmdResp {
	var err error
	if isPresenceServer(ctx.Server.ServerID) {
		err = Presence.Leave()
	} else {
		err = ctx.Service.VoiceLeave(ctx.Server.ServerID)
	}
	if err != nil {
		if errors.Is(err, services.ErrNotConnected) {
			return cmds.NewCmdRespWarn("I'm not in a voice channel!")
		}
		Log.Error(err)
		return cmds.NewCmdRespErr("We were unable to leave the voice channel!")
	}

	content := "I left the voice channel!"
	if isPresenceServer(ctx.Server.ServerID) {
		content += " Use `" + ctx.Prefix + "voice stay` to bring me back."
	}
	return cmds.NewCmdRespOK(content)
}

func handleStay(ctx *cmds.CmdCtx) *cmds.CmdResp {
	if Presence == nil {
		return cmds.NewCmdRespErr("There's no designated voice channel to stay in!")
	}
	if serverID := Presence.ServerID(); serverID != "" && serverID != ctx.Server.ServerID {
		return cmds.NewCmdRespErr("My designated voice channel is in another server!")
	}

	Presence.SetActive(true)
	Presence.Check()
	if !Presence.Connected() {
		return cmds.NewCmdRespWarn("I'll stay, but I couldn't join the voice channel just yet. I'll keep trying!")
	}
	return cmds.NewCmdRespOK("🔁 I'm back in <#" + Presence.ChannelID() + "> and staying there.")
}

func handleSay(ctx *cmds.CmdCtx) *cmds.CmdResp {
	text := strings.TrimSpace(ctx.GetArg("text").GetString())
	chunks := ChunkText(text, ttsMaxChars)
	if len(chunks) == 0 {
		return cmds.NewCmdRespErr("You need to tell me what to say!")
	}
	if Speech.Busy(ctx.Server.ServerID) {
		return cmds.NewCmdRespWarn("I'm already speaking, wait for me to finish!")
	}

	if ctx.Service.VoiceChannelOf(ctx.Server.ServerID) == "" {
		voiceChannelID, resp := callerChannel(ctx)
		if resp != nil {
			return resp
		}
		if err := ctx.Service.VoiceJoin(ctx.Server.ServerID, voiceChannelID, false, true); err != nil {
			Log.Error(err)
			return cmds.NewCmdRespErr("We were unable to join your voice channel!")
		}
	}

	urls := make([]string, len(chunks))
	for i, chunk := range chunks {
		urls[i] = TTSURL(chunk, ttsLanguage)
	}
	if err := Speech.Speak(ctx.Service, ctx.Server.ServerID, urls); err != nil {
		if errors.Is(err, services.ErrBusy) {
			return cmds.NewCmdRespWarn("I'm already speaking, wait for me to finish!")
		}
		Log.Error(err)
		return cmds.NewCmdRespErr("I couldn't speak that...")
	}
	return cmds.NewCmdRespOK("🗣️ Speaking...")
}
