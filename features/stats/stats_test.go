package stats

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/Clinet/squadbot/cmds"
	"github.com/Clinet/squadbot/services"
	"github.com/Clinet/squadbot/services/servicetest"
	"github.com/Clinet/squadbot/store"
	"github.com/Clinet/squadbot/utils/logger"
)

func init() {
	Log = logger.NewLogger("stats", 0)
	cmds.Log = Log
}

func setup(t *testing.T) *servicetest.Service {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "stats.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	if err := Init(db, 2); err != nil {
		t.Fatal(err)
	}
	cmds.Reset()
	cmds.Register(Cmds...)

	service := servicetest.New()
	service.Perms["100"] = &services.Perms{Administrator: true}
	return service
}

func run(t *testing.T, service *servicetest.Service, author, content string) *cmds.CmdResp {
	t.Helper()
	msg := &services.Message{AuthorID: author, ChannelID: "chan", ServerID: "guild", Content: content}
	_, resps, err := cmds.CmdHandler(msg, service)
	if err != nil {
		t.Fatalf("%s: %v", content, err)
	}
	if len(resps) != 1 {
		t.Fatalf("%s: got %d responses", content, len(resps))
	}
	return resps[0]
}

func field(msg *services.Message, name string) string {
	for _, f := range msg.Fields {
		if f.Name == name {
			return f.Value
		}
	}
	return ""
}

func TestTeamMatches(t *testing.T) {
	service := setup(t)

	resp := run(t, service, "200", "!match 10 2500 1")
	if *resp.Color != services.ColorError {
		t.Error("team matches should need Manage Messages")
	}

	resp = run(t, service, "100", "!stats")
	if resp.Content != "No team matches recorded yet." {
		t.Errorf("empty stats = %q", resp.Content)
	}

	resp = run(t, service, "100", "!match 10 2500 1")
	if field(resp.Message, "Placement") != "1st" || field(resp.Message, "Damage") != "2,500" {
		t.Errorf("recorded = %+v", resp.Fields)
	}
	run(t, service, "100", "!match kills:4 damage:1200 placement:3")

	resp = run(t, service, "200", "!stats")
	checks := map[string]string{
		"Matches":        "2",
		"Wins":           "1",
		"Best Placement": "1st",
		"Kills":          "14",
		"Damage":         "3,700",
		"Avg Placement":  "2.0",
		"Avg Kills":      "7.0",
		"Avg Damage":     "1,850",
	}
	for name, want := range checks {
		if got := field(resp.Message, name); got != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}

	resp = run(t, service, "100", "!match 1 1 0")
	if !strings.HasPrefix(resp.Content, "Invalid match: ") {
		t.Errorf("placement 0 = %q", resp.Content)
	}
}

func TestPlayerMatches(t *testing.T) {
	service := setup(t)

	run(t, service, "300", "!mymatch 8 1900 2")
	run(t, service, "300", "!mymatch 2 400 9")
	run(t, service, "400", "!mymatch 12 3000 1")
	run(t, service, "500", "!mymatch 1 100 20")

	resp := run(t, service, "300", "!playerstats")
	if resp.Content != "<@300>" || field(resp.Message, "Kills") != "10" {
		t.Errorf("own stats = %q %+v", resp.Content, resp.Fields)
	}

	resp = run(t, service, "300", "!playerstats <@!400>")
	if resp.Content != "<@400>" || field(resp.Message, "Wins") != "1" {
		t.Errorf("mentioned stats = %q %+v", resp.Content, resp.Fields)
	}

	resp = run(t, service, "300", "!playerstats 999")
	if resp.Content != "No matches recorded for <@999> yet." {
		t.Errorf("unknown player = %q", resp.Content)
	}

	resp = run(t, service, "300", "!leaderboard")
	if resp.Pages == nil || resp.Pages.TotalPages != 2 {
		t.Fatalf("leaderboard should be paged, got %+v", resp.Pages)
	}
	if resp.Fields[0].Name != "1st place" || !strings.HasPrefix(resp.Fields[0].Value, "<@400> · 12 kills") {
		t.Errorf("first place = %+v", resp.Fields[0])
	}
	if !strings.HasPrefix(resp.Fields[1].Value, "<@300> · 10 kills") {
		t.Errorf("second place = %+v", resp.Fields[1])
	}
}

func TestLeaderboardEmpty(t *testing.T) {
	service := setup(t)
	resp := run(t, service, "300", "!leaderboard")
	if resp.Content != "No player matches recorded yet." {
		t.Errorf("empty leaderboard = %q", resp.Content)
	}
}
