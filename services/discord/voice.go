package discord

import (
	"io"

	"github.com/Clinet/squadbot/services"
	"github.com/bwmarrin/discordgo"
	"github.com/jonas747/dca"
)

func (discord *ClientDiscord) voiceConnection(serverID string) *discordgo.VoiceConnection {
	discord.RLock()
	defer discord.RUnlock()
	return discord.VoiceConnections[serverID]
}

//dropVoiceConnection forgets a connection Discord already ended, which the session keeps around otherwise
func (discord *ClientDiscord) dropVoiceConnection(serverID string) {
	discord.Lock()
	vc := discord.VoiceConnections[serverID]
	delete(discord.VoiceConnections, serverID)
	discord.Unlock()

	if vc != nil {
		Log.Debug("Dropping stale voice connection in ", serverID)
		vc.Close()
	}
}

func (discord *ClientDiscord) VoiceChannelOf(serverID string) string {
	vc := discord.voiceConnection(serverID)
	if vc == nil {
		return ""
	}
	vc.RLock()
	defer vc.RUnlock()
	return vc.ChannelID
}

func (discord *ClientDiscord) VoiceJoin(serverID, channelID string, muted, deafened bool) (err error) {
	Log.Trace("--- ClientDiscord.VoiceJoin(", serverID, ", ", channelID, ") ---")
	//Joining again in the same server moves the existing connection
	_, err = discord.ChannelVoiceJoin(serverID, channelID, muted, deafened)
	return forbidden(err)
}

func (discord *ClientDiscord) VoiceLeave(serverID string) (err error) {
	Log.Trace("--- ClientDiscord.VoiceLeave(", serverID, ") ---")
	vc := discord.voiceConnection(serverID)
	if vc == nil {
		return services.ErrNotConnected
	}
	return vc.Disconnect()
}

//VoicePlay encodes the media with ffmpeg and streams it into the server's voice connection, blocking until it ends
func (discord *ClientDiscord) VoicePlay(serverID, mediaURL string) (err error) {
	Log.Trace("--- ClientDiscord.VoicePlay(", serverID, ", ", mediaURL, ") ---")
	vc := discord.voiceConnection(serverID)
	if vc == nil {
		return services.ErrNotConnected
	}

	encodingOptions := *dca.StdEncodeOptions
	encodingOptions.RawOutput = true
	encodingOptions.Application = dca.AudioApplicationVoip
	encodingSession, err := dca.EncodeFile(mediaURL, &encodingOptions)
	if err != nil {
		return err
	}
	defer encodingSession.Cleanup()

	if err := vc.Speaking(true); err != nil {
		Log.Warn("Unable to set speaking state: ", err)
	}
	defer vc.Speaking(false)

	done := make(chan error)
	dca.NewStream(encodingSession, vc, done)
	if err := <-done; err != nil && err != io.EOF {
		return err
	}
	return nil
}
