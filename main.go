package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Clinet/squadbot/apis"
	"github.com/Clinet/squadbot/cmds"
	"github.com/Clinet/squadbot/config"
	"github.com/Clinet/squadbot/convos"
	"github.com/Clinet/squadbot/features"
	"github.com/Clinet/squadbot/features/dumpctx"
	"github.com/Clinet/squadbot/features/fun"
	"github.com/Clinet/squadbot/features/info"
	"github.com/Clinet/squadbot/features/moderation"
	"github.com/Clinet/squadbot/features/scrims"
	"github.com/Clinet/squadbot/features/stats"
	"github.com/Clinet/squadbot/features/voice"
	"github.com/Clinet/squadbot/keepalive"
	"github.com/Clinet/squadbot/services"
	"github.com/Clinet/squadbot/services/discord"
	"github.com/Clinet/squadbot/store"
	"github.com/Clinet/squadbot/utils/logger"
	"github.com/spf13/pflag"
)

var log *logger.Logger

var (
	configFile  string
	envFile     string
	verbosity   int
	isBot       bool
	killOldBot  bool
	watchdogPID int
)

func init() {
	pflag.StringVarP(&configFile, "config", "c", "config.json", "JSON or TOML configuration file, picked by extension")
	pflag.StringVar(&envFile, "env", "bot_token.env", "env file holding DC_TOKEN and VC_ID")
	pflag.IntVarP(&verbosity, "verbosity", "v", 0, "0 = info, 1 = debug, 2 = trace")
	pflag.BoolVar(&isBot, "isBot", false, "run the bot in this process instead of supervising one")
	pflag.BoolVar(&killOldBot, "killOldBot", false, "kill stale bot processes before spawning a new one")
	pflag.IntVar(&watchdogPID, "watchdogPID", -1, "PID of the supervising watchdog")
}

func main() {
	pflag.Parse()
	log = logger.NewLogger("squadbot", verbosity)

	if !isBot {
		log.Info("Starting watchdog...")
		doWatchdog()
		return
	}

	defer recoverPanic()
	if err := bot(); err != nil {
		log.Fatal(err)
	}
}

func initLoggers() {
	config.Log = log.Child("config")
	store.Log = log.Child("store")
	cmds.Log = log.Child("cmds")
	convos.Log = log.Child("convos")
	apis.Log = log.Child("apis")
	keepalive.Log = log.Child("keepalive")
	discord.Log = log.Child("discord")
	fun.Log = log.Child("fun")
	info.Log = log.Child("info")
	moderation.Log = log.Child("moderation")
	scrims.Log = log.Child("scrims")
	stats.Log = log.Child("stats")
	voice.Log = log.Child("voice")
}

//loadConfig reads the configuration file when there is one, then lets the environment fill in the rest
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configFile, config.TypeFromPath(configFile))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		log.Warn("No configuration file at ", configFile, ", using the environment only")
		cfg = config.NewConfig()
	}
	if err := cfg.ApplyEnv(envFile); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

//initFeatures prepares every enabled feature and registers its commands
func initFeatures(cfg *config.Config, db *store.Store) error {
	log.Info("Initializing features...")

	if err := info.Init(cfg.PageSize); err != nil {
		return err
	}
	cmds.Register(info.Cmds...)

	if cfg.Discord.OwnerID != "" {
		if err := dumpctx.Init(cfg.Discord.OwnerID); err != nil {
			return err
		}
		cmds.Register(dumpctx.Cmds...)
	}

	if err := moderation.Init(db, cfg.Moderation, cfg.PageSize); err != nil {
		return err
	}
	cmds.Register(moderation.Cmds...)
	discord.MessageFilters = append(discord.MessageFilters, moderation.Scan)

	if err := voice.Init(cfg.Voice, cfg.Discord.VoiceChannelID); err != nil {
		return err
	}
	cmds.Register(voice.Cmds...)
	discord.ReadyFuncs = append(discord.ReadyFuncs, func(service services.Service) {
		if err := voice.StartKeeper(service); err != nil {
			log.Error("Unable to start the voice keeper: ", err)
		}
	})
	discord.BotVoiceStateFunc = voice.OnVoiceStateUpdate

	if features.IsEnabled(features.Scrims) {
		if err := scrims.Init(db, cfg.PageSize); err != nil {
			return err
		}
		cmds.Register(scrims.Cmds...)
	}
	if features.IsEnabled(features.Stats) {
		if err := stats.Init(db, cfg.PageSize); err != nil {
			return err
		}
		cmds.Register(stats.Cmds...)
	}
	if features.IsEnabled(features.Fun) {
		client := apis.NewClient(apis.Endpoints{
			Meme:   cfg.APIs.Meme,
			Joke:   cfg.APIs.Joke,
			Trivia: cfg.APIs.Trivia,
			Quote:  cfg.APIs.Quote,
		})
		if err := fun.Init(client); err != nil {
			return err
		}
		cmds.Register(fun.Cmds...)
	}
	if features.IsEnabled(features.Convos) {
		if cfg.DuckDuckGo.AppName != "" {
			convos.AuthDuckDuckGo(cfg.DuckDuckGo.AppName)
		}
		if cfg.WolframAlpha.AppID != "" {
			convos.AuthWolframAlpha(cfg.WolframAlpha.AppID)
		}
		discord.Conversations = convos.NewConversations()
	}

	log.Info("Registered ", len(cmds.List()), " commands")
	return nil
}

func bot() error {
	initLoggers()
	log.Trace("--- bot() ---")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	features.SetFeatures(cfg.Features)
	services.StateDir = cfg.StateDir

	log.Info("Opening the database at ", cfg.Store.Path, "...")
	db, err := store.Open(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := initFeatures(cfg, db); err != nil {
		return err
	}

	if err := discord.Login(cfg.Discord); err != nil {
		return err
	}
	defer discord.Discord.Shutdown()
	checkPanicRecovery(cfg.Discord.OwnerID)

	var server *keepalive.Server
	if !cfg.KeepAlive.Disabled {
		var source keepalive.StatusSource
		if features.IsEnabled(features.VoiceKeeper) {
			source = presence{}
		}
		server = keepalive.NewServer(cfg.KeepAlive.Addr(), source)
		server.Start()
	}

	log.Info("Bot is running, press Ctrl+C to exit")
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM)
	<-sc

	log.Info("Shutting down...")
	voice.StopKeeper()
	voice.Speech.Wait()
	if server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Error(err)
		}
	}
	log.Info("Good-bye!")
	return nil
}

//presence reads the voice keeper lazily, it only exists once Discord is ready
type presence struct{}

func (presence) Active() bool {
	return voice.Presence != nil && voice.Presence.Active()
}

func (presence) Connected() bool {
	return voice.Presence != nil && voice.Presence.Connected()
}
