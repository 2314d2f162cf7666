package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Clinet/squadbot/features"
	"github.com/Clinet/squadbot/utils/logger"
	"github.com/JoshuaDoes/json"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

var Log *logger.Logger

var (
	ErrUnknownType    = errors.New("config: unknown configuration type")
	ErrMissingToken   = errors.New("DC_TOKEN not found in environment variables.")
	ErrMissingVoiceID = errors.New("VC_ID not found in environment variables.")
	ErrInvalidVoiceID = errors.New("VC_ID must be a valid integer.")
)

type ConfigType int

const (
	ConfigTypeJSON ConfigType = iota
	ConfigTypeTOML
)

//Defaults filled in by Validate
const (
	DefaultPrefix         = "!"
	DefaultReconnectEvery = "5m"
	DefaultStatusEvery    = "1m"
	DefaultStorePath      = "data/squadbot.db"
	DefaultStateDir       = "states"
	DefaultPageSize       = 5
	DefaultTTSLanguage    = "en"
	DefaultTTSMaxChars    = 200
	DefaultKeepAliveHost  = "0.0.0.0"
	DefaultKeepAlivePort  = 8080

	maxPageSize = 24 //Paged lists must stay under the 25 field embed limit
)

type Config struct {
	Features     []*features.Feature `json:"features" toml:"features"`
	Discord      *CfgDiscord         `json:"discord" toml:"discord"`
	Voice        *CfgVoice           `json:"voice" toml:"voice"`
	Moderation   *CfgModeration      `json:"moderation" toml:"moderation"`
	Store        *CfgStore           `json:"store" toml:"store"`
	KeepAlive    *CfgKeepAlive       `json:"keepAlive" toml:"keepAlive"`
	APIs         *CfgAPIs            `json:"apis" toml:"apis"`
	WolframAlpha *CfgWolframAlpha    `json:"wolframAlpha" toml:"wolframAlpha"`
	DuckDuckGo   *CfgDuckDuckGo      `json:"duckDuckGo" toml:"duckDuckGo"`
	StateDir     string              `json:"stateDir" toml:"stateDir"`
	PageSize     int                 `json:"pageSize" toml:"pageSize"`

	path string //The path to the configuration file
}

type CfgDiscord struct {
	Token          string   `json:"token" toml:"token"`
	OwnerID        string   `json:"ownerID" toml:"ownerID"`
	Prefix         string   `json:"prefix" toml:"prefix"`
	VoiceChannelID string   `json:"voiceChannelID" toml:"voiceChannelID"`
	Statuses       []string `json:"statuses" toml:"statuses"`
	StatusEvery    string   `json:"statusEvery" toml:"statusEvery"`
}

type CfgVoice struct {
	ReconnectEvery string `json:"reconnectEvery" toml:"reconnectEvery"` //How often the voice keeper checks its channel
	TTSLanguage    string `json:"ttsLanguage" toml:"ttsLanguage"`
	TTSMaxChars    int    `json:"ttsMaxChars" toml:"ttsMaxChars"` //Longest chunk handed to the TTS endpoint
}

type CfgModeration struct {
	BannedWords     []string `json:"bannedWords" toml:"bannedWords"`
	WarnLimit       int      `json:"warnLimit" toml:"warnLimit"`             //0 disables automatic actions
	WarnLimitAction string   `json:"warnLimitAction" toml:"warnLimitAction"` //kick, ban or none
}

type CfgStore struct {
	Path string `json:"path" toml:"path"`
}

//CfgKeepAlive configures the liveness server, which runs unless disabled
type CfgKeepAlive struct {
	Disabled bool   `json:"disabled" toml:"disabled"`
	Host     string `json:"host" toml:"host"`
	Port     int    `json:"port" toml:"port"`
}

//Addr returns the listen address for the keep-alive server
func (cfg *CfgKeepAlive) Addr() string {
	return cfg.Host + ":" + strconv.Itoa(cfg.Port)
}

//CfgAPIs overrides the public REST endpoints, mostly useful for tests and mirrors
type CfgAPIs struct {
	Meme   string `json:"meme,omitempty" toml:"meme,omitempty"`
	Joke   string `json:"joke,omitempty" toml:"joke,omitempty"`
	Trivia string `json:"trivia,omitempty" toml:"trivia,omitempty"`
	Quote  string `json:"quote,omitempty" toml:"quote,omitempty"`
}

type CfgWolframAlpha struct {
	AppID string `json:"appID" toml:"appID"`
}

type CfgDuckDuckGo struct {
	AppName string `json:"appName" toml:"appName"`
}

//TypeFromPath guesses the configuration type from a file extension, defaulting to JSON
func TypeFromPath(path string) ConfigType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return ConfigTypeTOML
	}
	return ConfigTypeJSON
}

//NewConfig returns an empty configuration with every section allocated
func NewConfig() *Config {
	return &Config{
		Features:     features.Defaults(),
		Discord:      &CfgDiscord{},
		Voice:        &CfgVoice{},
		Moderation:   &CfgModeration{},
		Store:        &CfgStore{},
		KeepAlive:    &CfgKeepAlive{},
		APIs:         &CfgAPIs{},
		WolframAlpha: &CfgWolframAlpha{},
		DuckDuckGo:   &CfgDuckDuckGo{},
	}
}

//LoadConfig creates a new configuration struct with the values in the specified configuration file
func LoadConfig(path string, cfgType ConfigType) (cfg *Config, err error) {
	Log.Trace("--- LoadConfig(", path, ", ", cfgType, ") ---")

	configData, err := os.ReadFile(path)
	if err != nil {
		Log.Error("Error reading configuration file: ", err)
		return nil, err
	}

	cfg = &Config{path: path}

	switch cfgType {
	case ConfigTypeJSON:
		err = json.Unmarshal(configData, cfg)
	case ConfigTypeTOML:
		err = toml.Unmarshal(configData, cfg)
	default:
		Log.Error("Unknown configuration type: ", cfgType)
		return nil, ErrUnknownType
	}
	if err != nil {
		return nil, err
	}

	cfg.fillSections()
	return cfg, nil
}

func SaveConfig(cfg *Config, path string, cfgType ConfigType) (err error) {
	Log.Trace("--- SaveConfig(", path, ", ", cfgType, ") ---")

	var configData []byte
	switch cfgType {
	case ConfigTypeJSON:
		configData, err = json.Marshal(cfg, true)
	case ConfigTypeTOML:
		configData, err = toml.Marshal(cfg)
	default:
		return ErrUnknownType
	}
	if err != nil {
		Log.Error("Error generating config: ", err)
		return err
	}

	err = os.WriteFile(path, configData, 0644)
	if err != nil {
		Log.Error("Error saving config to path: ", err)
	}
	return err
}

//SaveTo saves the current cfg to the specified path
func (cfg *Config) SaveTo(path string, cfgType ConfigType) (err error) {
	return SaveConfig(cfg, path, cfgType)
}

//Path returns where the configuration was loaded from
func (cfg *Config) Path() string {
	return cfg.path
}

//ApplyEnv loads the env file, if any, and lets the environment override secrets and deployment values
func (cfg *Config) ApplyEnv(envFile string) error {
	Log.Trace("--- ApplyEnv(", envFile, ") ---")

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}

	cfg.fillSections()
	if token := os.Getenv("DC_TOKEN"); token != "" {
		cfg.Discord.Token = token
	}
	if vcID := os.Getenv("VC_ID"); vcID != "" {
		cfg.Discord.VoiceChannelID = vcID
	}
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return errors.New("PORT must be a valid integer.")
		}
		cfg.KeepAlive.Port = p
	}
	if dbPath := os.Getenv("DB_PATH"); dbPath != "" {
		cfg.Store.Path = dbPath
	}
	return nil
}

func (cfg *Config) fillSections() {
	if cfg.Discord == nil {
		cfg.Discord = &CfgDiscord{}
	}
	if cfg.Voice == nil {
		cfg.Voice = &CfgVoice{}
	}
	if cfg.Moderation == nil {
		cfg.Moderation = &CfgModeration{}
	}
	if cfg.Store == nil {
		cfg.Store = &CfgStore{}
	}
	if cfg.KeepAlive == nil {
		cfg.KeepAlive = &CfgKeepAlive{}
	}
	if cfg.APIs == nil {
		cfg.APIs = &CfgAPIs{}
	}
	if cfg.WolframAlpha == nil {
		cfg.WolframAlpha = &CfgWolframAlpha{}
	}
	if cfg.DuckDuckGo == nil {
		cfg.DuckDuckGo = &CfgDuckDuckGo{}
	}
}

//Validate checks the values the bot can't run without and fills in defaults for everything else
func (cfg *Config) Validate() error {
	cfg.fillSections()

	if cfg.Discord.Token == "" {
		return ErrMissingToken
	}
	if cfg.Discord.VoiceChannelID == "" {
		return ErrMissingVoiceID
	}
	if _, err := strconv.ParseUint(cfg.Discord.VoiceChannelID, 10, 64); err != nil {
		return ErrInvalidVoiceID
	}

	if cfg.Discord.Prefix == "" {
		cfg.Discord.Prefix = DefaultPrefix
	}
	if cfg.Discord.StatusEvery == "" {
		cfg.Discord.StatusEvery = DefaultStatusEvery
	}
	if _, err := time.ParseDuration(cfg.Discord.StatusEvery); err != nil {
		return errors.New("config: discord.statusEvery: " + err.Error())
	}
	if cfg.Voice.ReconnectEvery == "" {
		cfg.Voice.ReconnectEvery = DefaultReconnectEvery
	}
	if _, err := time.ParseDuration(cfg.Voice.ReconnectEvery); err != nil {
		return errors.New("config: voice.reconnectEvery: " + err.Error())
	}
	if cfg.Voice.TTSLanguage == "" {
		cfg.Voice.TTSLanguage = DefaultTTSLanguage
	}
	if cfg.Voice.TTSMaxChars <= 0 {
		cfg.Voice.TTSMaxChars = DefaultTTSMaxChars
	}

	switch cfg.Moderation.WarnLimitAction {
	case "":
		cfg.Moderation.WarnLimitAction = "none"
	case "kick", "ban", "none":
	default:
		return errors.New("config: moderation.warnLimitAction must be kick, ban or none")
	}
	if cfg.Moderation.WarnLimit < 0 {
		cfg.Moderation.WarnLimit = 0
	}

	if cfg.Store.Path == "" {
		cfg.Store.Path = DefaultStorePath
	}
	if cfg.KeepAlive.Host == "" {
		cfg.KeepAlive.Host = DefaultKeepAliveHost
	}
	if cfg.KeepAlive.Port <= 0 {
		cfg.KeepAlive.Port = DefaultKeepAlivePort
	}
	if cfg.StateDir == "" {
		cfg.StateDir = DefaultStateDir
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.PageSize > maxPageSize {
		cfg.PageSize = maxPageSize
	}
	if len(cfg.Features) == 0 {
		cfg.Features = features.Defaults()
	}
	return nil
}
