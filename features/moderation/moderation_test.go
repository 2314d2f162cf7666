package moderation

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/Clinet/squadbot/cmds"
	"github.com/Clinet/squadbot/config"
	"github.com/Clinet/squadbot/features"
	"github.com/Clinet/squadbot/services"
	"github.com/Clinet/squadbot/services/servicetest"
	"github.com/Clinet/squadbot/store"
	"github.com/Clinet/squadbot/utils/logger"
)

func init() {
	Log = logger.NewLogger("moderation", 0)
	cmds.Log = Log
}

const (
	modID   = "100"
	userID  = "200"
	guildID = "300"
)

func setup(t *testing.T, cfg *config.CfgModeration) (*servicetest.Service, *store.Store) {
	t.Helper()
	services.StateDir = t.TempDir()
	features.SetFeatures(features.Defaults())

	db, err := store.Open(filepath.Join(t.TempDir(), "moderation.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	if err := Init(db, cfg, 5); err != nil {
		t.Fatal(err)
	}
	cmds.Reset()
	cmds.Register(Cmds...)

	service := servicetest.New()
	service.Perms[modID] = &services.Perms{Kick: true, MuteMembers: true, ManageMessages: true}
	service.Servers[guildID] = &services.Server{
		ServerID: guildID,
		Name:     "Squad",
		VoiceStates: []*services.VoiceState{
			{UserID: userID, ChannelID: "voice"},
		},
	}
	return service, db
}

func run(t *testing.T, service *servicetest.Service, author, content string) *cmds.CmdResp {
	t.Helper()
	return runIn(t, service, guildID, author, content)
}

func runIn(t *testing.T, service *servicetest.Service, serverID, author, content string) *cmds.CmdResp {
	t.Helper()
	msg := &services.Message{AuthorID: author, ChannelID: "chan", ServerID: serverID, Content: content}
	_, resps, err := cmds.CmdHandler(msg, service)
	if err != nil {
		t.Fatalf("%s: %v", content, err)
	}
	if len(resps) != 1 {
		t.Fatalf("%s: got %d responses", content, len(resps))
	}
	return resps[0]
}

func TestFilter(t *testing.T) {
	filter := NewFilter([]string{"Darn", " heck ", "darn", "c++", ""})
	if words := filter.Words(); len(words) != 3 || words[0] != "c++" || words[1] != "darn" {
		t.Fatalf("words = %v", words)
	}

	tests := []struct {
		content string
		word    string
		matched bool
	}{
		{"well DARN it", "darn", true},
		{"heck!", "heck", true},
		{"i love c++ so much", "c++", true},
		{"darned if i know", "", false},
		{"checkmate", "", false},
		{"nothing to see", "", false},
	}
	for _, test := range tests {
		word, matched := filter.Match(test.content)
		if matched != test.matched || word != test.word {
			t.Errorf("Match(%q) = %q, %v", test.content, word, matched)
		}
	}

	if !filter.Add("gosh") || filter.Add("GOSH") {
		t.Error("Add should only accept new words")
	}
	if _, ok := filter.Match("oh my gosh"); !ok {
		t.Error("added word didn't match")
	}
	if !filter.Remove("Darn") || filter.Remove("darn") {
		t.Error("Remove should only remove banned words")
	}
	if _, ok := filter.Match("darn"); ok {
		t.Error("removed word still matched")
	}

	empty := NewFilter(nil)
	if _, ok := empty.Match("anything"); ok {
		t.Error("empty filter matched")
	}
}

func TestMute(t *testing.T) {
	service, db := setup(t, nil)

	resp := run(t, service, userID, "!mute <@"+modID+">")
	if *resp.Color != services.ColorError {
		t.Error("users without Mute Members shouldn't mute")
	}

	resp = run(t, service, modID, "!mute <@"+userID+">")
	if resp.Content != "🔇 <@200> has been muted." || !service.Muted[userID] {
		t.Errorf("mute = %q", resp.Content)
	}
	resp = run(t, service, modID, "!unmute <@"+userID+">")
	if resp.Content != "🔊 <@200> has been unmuted." || service.Muted[userID] {
		t.Errorf("unmute = %q", resp.Content)
	}

	resp = run(t, service, modID, "!mute <@999>")
	if resp.Content != "<@999> is not in a voice channel!" {
		t.Errorf("not in voice = %q", resp.Content)
	}

	service.MuteErr = services.ErrForbidden
	resp = run(t, service, modID, "!mute <@"+userID+">")
	if resp.Content != "⚠️ I don't have permission to mute members!" {
		t.Errorf("forbidden = %q", resp.Content)
	}

	service.MuteErr = services.Error("gateway hiccup")
	resp = run(t, service, modID, "!mute <@"+userID+">")
	if resp.Content != "❌ Error: gateway hiccup" {
		t.Errorf("other error = %q", resp.Content)
	}

	entries, _ := db.ModLog(guildID, 0)
	if len(entries) != 2 {
		t.Errorf("mod log has %d entries, want 2", len(entries))
	}
}

func TestWarnAndLimit(t *testing.T) {
	service, db := setup(t, &config.CfgModeration{WarnLimit: 2, WarnLimitAction: "kick"})

	resp := run(t, service, userID, "!warn <@"+modID+"> no")
	if *resp.Color != services.ColorError {
		t.Error("users without perms shouldn't warn")
	}

	resp = run(t, service, modID, "!warn <@"+userID+"> spamming the chat")
	if resp.Content != "⚠️ <@200> has been warned." {
		t.Errorf("warn = %q", resp.Content)
	}
	dm := service.Sent[0]
	if dm.ChannelID != userID || dm.Title != "Squad" || !strings.Contains(dm.Content, "spamming the chat") {
		t.Errorf("DM = %+v", dm)
	}
	if len(service.Kicked) != 0 {
		t.Fatal("kicked before reaching the limit")
	}

	resp = run(t, service, modID, "!warn <@"+userID+">")
	if !strings.Contains(resp.Content, "reached 2 warnings and were kicked") {
		t.Errorf("second warn = %q", resp.Content)
	}
	if len(service.Kicked) != 1 || service.Kicked[0] != userID {
		t.Errorf("kicked = %v", service.Kicked)
	}

	warnings, _ := db.Warnings(guildID, userID)
	if len(warnings) != 2 || warnings[1].Reason != "No reason provided." || warnings[0].ModeratorID != modID {
		t.Errorf("warnings = %+v", warnings)
	}
}

func TestWarningsAndClear(t *testing.T) {
	service, _ := setup(t, nil)

	run(t, service, modID, "!warn <@"+userID+"> first")
	run(t, service, modID, "!warn <@"+userID+"> second")

	resp := run(t, service, userID, "!warnings")
	if resp.Title != "Warnings (2)" || len(resp.Fields) != 2 {
		t.Fatalf("own warnings = %+v", resp.Message)
	}
	if !strings.HasPrefix(resp.Fields[0].Value, "first\nBy <@100>") {
		t.Errorf("first warning = %q", resp.Fields[0].Value)
	}

	resp = run(t, service, userID, "!warnings <@"+modID+">")
	if *resp.Color != services.ColorError {
		t.Error("users shouldn't read others' warnings")
	}

	resp = run(t, service, modID, "!clearwarnings <@"+userID+">")
	if resp.Content != "🧹 Cleared 2 warnings of <@200>." {
		t.Errorf("clear = %q", resp.Content)
	}
	resp = run(t, service, modID, "!warnings <@"+userID+">")
	if resp.Content != "<@200> has no warnings." {
		t.Errorf("after clear = %q", resp.Content)
	}
}

func TestModLog(t *testing.T) {
	service, _ := setup(t, nil)

	resp := run(t, service, modID, "!modlog")
	if resp.Content != "The moderation log is empty." {
		t.Errorf("empty modlog = %q", resp.Content)
	}

	run(t, service, modID, "!warn <@"+userID+"> one")
	run(t, service, modID, "!warn <@"+userID+"> two")
	resp = run(t, service, modID, "!modlog")
	if len(resp.Fields) != 2 || !strings.HasSuffix(resp.Fields[0].Value, ": two") {
		t.Errorf("modlog = %+v", resp.Fields)
	}

	resp = run(t, service, userID, "!modlog")
	if *resp.Color != services.ColorError {
		t.Error("users shouldn't read the modlog")
	}
}

func TestScan(t *testing.T) {
	service, db := setup(t, &config.CfgModeration{BannedWords: []string{"darn"}})
	msg := &services.Message{MessageID: "m1", AuthorID: userID, ChannelID: "chan", ServerID: guildID, Content: "well darn"}

	if Scan(&services.Message{AuthorID: userID, ServerID: guildID, Content: "all good"}, service) {
		t.Error("clean message was removed")
	}
	if !Scan(msg, service) {
		t.Fatal("banned word wasn't caught")
	}
	if len(service.Removed) != 1 || service.Removed[0].MessageID != "m1" {
		t.Errorf("removed = %+v", service.Removed)
	}
	notice := service.LastSent()
	if notice == nil || notice.ChannelID != "chan" || !strings.Contains(notice.Content, "<@200>") {
		t.Errorf("notice = %+v", notice)
	}
	warnings, _ := db.Warnings(guildID, userID)
	if len(warnings) != 1 || warnings[0].Reason != "auto-moderation: darn" {
		t.Errorf("warnings = %+v", warnings)
	}

	resp := run(t, service, modID, "!automod off")
	if resp.Content != "🛡️ Auto-moderation is now off." {
		t.Errorf("off = %q", resp.Content)
	}
	if Scan(msg, service) {
		t.Error("scan ran with auto-moderation off in the guild")
	}
	run(t, service, modID, "!automod on")

	features.SetFeatures([]*features.Feature{{Name: features.AutoMod, Toggle: false}})
	if Scan(msg, service) {
		t.Error("scan ran with the feature disabled")
	}
	features.SetFeatures(features.Defaults())

	if Scan(&services.Message{AuthorID: userID, Content: "darn"}, service) {
		t.Error("direct messages shouldn't be scanned")
	}
}

func TestAutoModWords(t *testing.T) {
	service, _ := setup(t, &config.CfgModeration{BannedWords: []string{"darn"}})

	resp := run(t, service, userID, "!automod add heck")
	if *resp.Color != services.ColorError {
		t.Error("users shouldn't edit the word list")
	}

	run(t, service, modID, "!automod add Heck")
	resp = run(t, service, modID, "!automod add heck")
	if *resp.Color != services.ColorWarning {
		t.Errorf("duplicate add = %q", resp.Content)
	}
	run(t, service, modID, "!automod remove darn")

	resp = run(t, service, modID, "!automod list")
	if resp.Content != "||heck||" {
		t.Errorf("list = %q", resp.Content)
	}

	//A fresh load picks up the saved list instead of the configured one
	if err := Init(Store, &config.CfgModeration{BannedWords: []string{"darn"}}, 5); err != nil {
		t.Fatal(err)
	}
	if words := filterFor(guildID).Words(); len(words) != 1 || words[0] != "heck" {
		t.Errorf("reloaded words = %v", words)
	}
	if !AutoModEnabled(guildID) {
		t.Error("auto-moderation should default to on")
	}
}

func TestAutoModPerGuild(t *testing.T) {
	const otherGuild = "999"
	service, db := setup(t, &config.CfgModeration{BannedWords: []string{"darn"}})

	run(t, service, modID, "!automod add hello")
	run(t, service, modID, "!automod remove darn")

	if Scan(&services.Message{MessageID: "a", AuthorID: userID, ChannelID: "chan", ServerID: otherGuild, Content: "hello everyone"}, service) {
		t.Error("a word banned in one guild was enforced in another")
	}
	if !Scan(&services.Message{MessageID: "b", AuthorID: userID, ChannelID: "chan", ServerID: otherGuild, Content: "well darn"}, service) {
		t.Error("a word unbanned in one guild stopped being enforced in another")
	}
	if !Scan(&services.Message{MessageID: "c", AuthorID: userID, ChannelID: "chan", ServerID: guildID, Content: "hello everyone"}, service) {
		t.Error("the guild's own word wasn't enforced")
	}

	resp := runIn(t, service, otherGuild, modID, "!automod list")
	if resp.Content != "||darn||" {
		t.Errorf("other guild list = %q", resp.Content)
	}
	otherWarnings, _ := db.Warnings(otherGuild, userID)
	if len(otherWarnings) != 1 || otherWarnings[0].Reason != "auto-moderation: darn" {
		t.Errorf("other guild warnings = %+v", otherWarnings)
	}

	//Both lists survive a reload
	if err := Init(Store, &config.CfgModeration{BannedWords: []string{"darn"}}, 5); err != nil {
		t.Fatal(err)
	}
	if words := filterFor(guildID).Words(); len(words) != 1 || words[0] != "hello" {
		t.Errorf("reloaded guild words = %v", words)
	}
	if words := filterFor(otherGuild).Words(); len(words) != 1 || words[0] != "darn" {
		t.Errorf("reloaded other guild words = %v", words)
	}
}

func TestScanSkipsManagers(t *testing.T) {
	service, db := setup(t, &config.CfgModeration{BannedWords: []string{"darn"}})
	filters := []func(*services.Message, services.Service) bool{Scan}

	//Messages pass the filters before reaching the commands
	handle := func(author, content string) []*cmds.CmdResp {
		msg := &services.Message{MessageID: "m", AuthorID: author, ChannelID: "chan", ServerID: guildID, Content: content}
		for _, filter := range filters {
			if filter(msg, service) {
				return nil
			}
		}
		_, resps, err := cmds.CmdHandler(msg, service)
		if err != nil {
			t.Fatalf("%s: %v", content, err)
		}
		return resps
	}

	resps := handle(modID, "!automod remove darn")
	if len(resps) != 1 || resps[0].Content != "🛡️ Word unbanned." {
		t.Fatalf("remove through the filters = %+v", resps)
	}
	if len(service.Removed) != 0 {
		t.Errorf("a manager's message was removed: %+v", service.Removed)
	}
	if warnings, _ := db.Warnings(guildID, modID); len(warnings) != 0 {
		t.Errorf("a manager was warned: %+v", warnings)
	}
	if words := filterFor(guildID).Words(); len(words) != 0 {
		t.Errorf("words = %v", words)
	}

	handle(modID, "!automod add heck")
	if resps := handle(userID, "oh heck"); resps != nil {
		t.Errorf("a member's banned word reached the commands: %+v", resps)
	}
	if len(service.Removed) != 1 {
		t.Errorf("removed = %+v", service.Removed)
	}
}
