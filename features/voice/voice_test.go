package voice

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/Clinet/squadbot/cmds"
	"github.com/Clinet/squadbot/config"
	"github.com/Clinet/squadbot/features"
	"github.com/Clinet/squadbot/services"
	"github.com/Clinet/squadbot/services/servicetest"
	"github.com/Clinet/squadbot/utils/logger"
)

func init() {
	Log = logger.NewLogger("voice", 0)
	cmds.Log = Log
}

const (
	guildID   = "1"
	homeID    = "10"
	lobbyID   = "11"
	textID    = "12"
	callerID  = "100"
	strangeID = "101"
)

func setup(t *testing.T) *servicetest.Service {
	t.Helper()
	services.StateDir = t.TempDir()
	features.SetFeatures(features.Defaults())
	if err := Init(&config.CfgVoice{ReconnectEvery: "1h", TTSLanguage: "de", TTSMaxChars: 20}, homeID); err != nil {
		t.Fatal(err)
	}
	cmds.Reset()
	cmds.Register(Cmds...)

	service := servicetest.New()
	service.Channels[homeID] = &services.Channel{ServerID: guildID, ChannelID: homeID, Voice: true}
	service.Channels[lobbyID] = &services.Channel{ServerID: guildID, ChannelID: lobbyID, Voice: true}
	service.Channels[textID] = &services.Channel{ServerID: guildID, ChannelID: textID}
	service.Servers[guildID] = &services.Server{
		ServerID:    guildID,
		VoiceStates: []*services.VoiceState{{UserID: callerID, ChannelID: lobbyID}},
	}
	return service
}

func run(t *testing.T, service *servicetest.Service, author, content string) *cmds.CmdResp {
	t.Helper()
	msg := &services.Message{AuthorID: author, ChannelID: textID, ServerID: guildID, Content: content}
	_, resps, err := cmds.CmdHandler(msg, service)
	if err != nil {
		t.Fatalf("%s: %v", content, err)
	}
	if len(resps) != 1 {
		t.Fatalf("%s: got %d responses", content, len(resps))
	}
	return resps[0]
}

func TestKeeperCheck(t *testing.T) {
	service := setup(t)
	keeper := NewKeeper(service, homeID, time.Hour)

	keeper.Check()
	if service.Voice[guildID] != homeID || !keeper.Connected() {
		t.Fatalf("keeper didn't join, voice = %v", service.Voice)
	}
	keeper.Check()
	if service.VoiceJoins != 1 {
		t.Errorf("joined %d times while already connected", service.VoiceJoins)
	}

	//Dragged elsewhere, it should leave and come back
	service.Voice[guildID] = lobbyID
	keeper.Check()
	if service.VoiceLeaves != 1 || service.Voice[guildID] != homeID {
		t.Errorf("leaves = %d, voice = %v", service.VoiceLeaves, service.Voice)
	}
	//Its own leave must not pause it
	keeper.OnVoiceStateUpdate(guildID, lobbyID, "")
	if !keeper.Active() {
		t.Error("keeper paused on its own leave")
	}

	service.JoinErr = services.Error("no route")
	delete(service.Voice, guildID)
	keeper.Check()
	if keeper.Connected() {
		t.Error("connected despite the join failing")
	}
}

func TestKeeperSkipsBadChannels(t *testing.T) {
	service := setup(t)

	NewKeeper(service, textID, time.Hour).Check()
	NewKeeper(service, "404", time.Hour).Check()
	if service.VoiceJoins != 0 {
		t.Errorf("joined %d times", service.VoiceJoins)
	}
}

func TestKeeperManualDisconnect(t *testing.T) {
	service := setup(t)
	keeper := NewKeeper(service, homeID, time.Hour)
	if err := keeper.Start(); err != nil {
		t.Fatal(err)
	}
	defer keeper.Stop()

	keeper.OnVoiceStateUpdate("elsewhere", homeID, "")
	keeper.OnVoiceStateUpdate(guildID, homeID, lobbyID)
	if !keeper.Active() {
		t.Fatal("moves and other servers shouldn't pause the keeper")
	}

	delete(service.Voice, guildID)
	keeper.OnVoiceStateUpdate(guildID, homeID, "")
	if keeper.Active() {
		t.Fatal("manual disconnect didn't pause the keeper")
	}
	keeper.Check()
	if service.VoiceJoins != 1 {
		t.Error("paused keeper rejoined")
	}

	//The pause survives a restart
	if err := Storage.LoadFrom("voice"); err != nil {
		t.Fatal(err)
	}
	if keeper.Active() {
		t.Error("pause wasn't persisted")
	}
}

func TestVoiceCommands(t *testing.T) {
	service := setup(t)
	if err := StartKeeper(service); err != nil {
		t.Fatal(err)
	}
	defer StopKeeper()
	if service.Voice[guildID] != homeID {
		t.Fatal("keeper didn't join on start")
	}

	resp := run(t, service, callerID, "!voice join")
	if resp.Content != "I'm in your voice channel now!" || service.Voice[guildID] != lobbyID {
		t.Errorf("join = %q, voice = %v", resp.Content, service.Voice)
	}
	if Presence.Active() {
		t.Error("joining elsewhere should pause the keeper")
	}

	resp = run(t, service, callerID, "!voice stay")
	if !strings.HasPrefix(resp.Content, "🔁") || service.Voice[guildID] != homeID {
		t.Errorf("stay = %q, voice = %v", resp.Content, service.Voice)
	}

	resp = run(t, service, callerID, "!voice leave")
	if !strings.HasPrefix(resp.Content, "I left the voice channel!") || service.Voice[guildID] != "" {
		t.Errorf("leave = %q, voice = %v", resp.Content, service.Voice)
	}
	if Presence.Active() {
		t.Error("leave should pause the keeper")
	}

	resp = run(t, service, callerID, "!voice leave")
	if resp.Content != "I'm not in a voice channel!" {
		t.Errorf("second leave = %q", resp.Content)
	}

	resp = run(t, service, strangeID, "!voice join")
	if resp.Content != "You need to be in a voice channel first!" {
		t.Errorf("join from outside voice = %q", resp.Content)
	}
}

func TestChunkText(t *testing.T) {
	tests := []struct {
		text string
		max  int
		want []string
	}{
		{"hello there general kenobi", 11, []string{"hello there", "general", "kenobi"}},
		{"  spaced   out  ", 20, []string{"spaced out"}},
		{"abcdefghij xy", 4, []string{"abcd", "efgh", "ij", "xy"}},
		{"abcdefgh", 4, []string{"abcd", "efgh"}},
		{"héllo wörld", 5, []string{"héllo", "wörld"}},
		{"", 10, nil},
		{"anything", 0, nil},
	}
	for _, test := range tests {
		got := ChunkText(test.text, test.max)
		if strings.Join(got, "|") != strings.Join(test.want, "|") || len(got) != len(test.want) {
			t.Errorf("ChunkText(%q, %d) = %q, want %q", test.text, test.max, got, test.want)
		}
	}
}

func TestTTSURL(t *testing.T) {
	raw := TTSURL("hi & bye?", "en")
	parsed, err := url.Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	if parsed.Host != "translate.google.com" || parsed.Path != "/translate_tts" {
		t.Errorf("endpoint = %s", raw)
	}
	query := parsed.Query()
	if query.Get("q") != "hi & bye?" || query.Get("tl") != "en" || query.Get("client") != "tw-ob" || query.Get("ie") != "UTF-8" {
		t.Errorf("query = %v", query)
	}
}

func TestSay(t *testing.T) {
	service := setup(t)

	release := make(chan struct{})
	started := make(chan struct{}, 4)
	service.PlayHook = func(serverID, mediaURL string) {
		started <- struct{}{}
		<-release
	}

	resp := run(t, service, strangeID, "!say hello")
	if resp.Content != "You need to be in a voice channel first!" {
		t.Errorf("say from outside voice = %q", resp.Content)
	}

	resp = run(t, service, callerID, "!say this sentence is long enough to need two chunks")
	if resp.Content != "🗣️ Speaking..." || service.Voice[guildID] != lobbyID {
		t.Fatalf("say = %q, voice = %v", resp.Content, service.Voice)
	}
	<-started

	resp = run(t, service, callerID, "!say me too")
	if resp.Content != "I'm already speaking, wait for me to finish!" {
		t.Errorf("busy say = %q", resp.Content)
	}

	close(release)
	Speech.Wait()

	if len(service.Played) < 2 {
		t.Fatalf("played %d chunks", len(service.Played))
	}
	first, _ := url.Parse(service.Played[0])
	if first.Query().Get("tl") != "de" || first.Query().Get("q") != "this sentence is" {
		t.Errorf("first chunk = %s", service.Played[0])
	}
	if Speech.Busy(guildID) {
		t.Error("still speaking after playback finished")
	}
}

func TestSayDisabled(t *testing.T) {
	services.StateDir = t.TempDir()
	features.SetFeatures([]*features.Feature{{Name: features.TTS, Toggle: false}})
	if err := Init(nil, ""); err != nil {
		t.Fatal(err)
	}
	for _, cmd := range Cmds {
		if cmd.Name == "say" {
			t.Error("say registered with tts disabled")
		}
	}
}
