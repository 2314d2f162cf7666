package discord

import (
	"time"

	"github.com/Clinet/squadbot/config"
	"github.com/Clinet/squadbot/convos"
	"github.com/Clinet/squadbot/pages"
	"github.com/Clinet/squadbot/services"
	"github.com/Clinet/squadbot/utils/logger"
	"github.com/bwmarrin/discordgo"
)

var Log *logger.Logger
var Discord *ClientDiscord

//Hooks set by main before Login
var (
	MessageFilters    []func(msg *services.Message, service services.Service) bool //Return true to stop handling the message
	ReadyFuncs        []func(service services.Service)                             //Ran in the background once connected
	BotVoiceStateFunc func(serverID, beforeChannelID, afterChannelID string)       //Called when the bot's own voice state changes
	Conversations     *convos.Conversations                                        //Answers mentions, nil to ignore them
	Pager             = pages.NewPager()
)

const intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMembers |
	discordgo.IntentsGuildVoiceStates |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsGuildMessageReactions |
	discordgo.IntentsDirectMessages |
	discordgo.IntentMessageContent

//Login connects to Discord and registers every command as an application command
func Login(cfg *config.CfgDiscord) error {
	Log.Trace("--- Login() ---")

	statusEvery, err := time.ParseDuration(cfg.StatusEvery)
	if err != nil {
		return err
	}

	Log.Debug("Creating Discord struct...")
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		Log.Error("Unable to create a Discord session!")
		return err
	}
	session.Identify.Intents = intents

	//Only enable informational Discord logging if we're tracing
	if Log.Verbosity == 2 {
		Log.Debug("Setting Discord log level to informational...")
		session.LogLevel = discordgo.LogInformational
	}

	//Handlers may fire as soon as the socket opens
	Discord = &ClientDiscord{
		Session:     session,
		prefix:      cfg.Prefix,
		statuses:    cfg.Statuses,
		statusEvery: statusEvery,
	}

	Log.Info("Registering Discord event handlers...")
	session.AddHandler(discordReady)
	session.AddHandler(discordMessageCreate)
	session.AddHandler(discordInteractionCreate)
	session.AddHandler(discordVoiceStateUpdate)
	session.AddHandler(discordMessageReactionAdd)

	Log.Info("Connecting to Discord...")
	if err := session.Open(); err != nil {
		Log.Error("Unable to connect to Discord!", err)
		return err
	}
	Log.Info("Connected to Discord!")

	Log.Info("Registering application commands...")
	appCmds, err := Discord.ApplicationCommandBulkOverwrite(session.State.User.ID, "", CmdsToAppCommands())
	if err != nil {
		Log.Error("Unable to register application commands: ", err)
		return err
	}
	Log.Info("Registered ", len(appCmds), " application commands!")
	return nil
}
