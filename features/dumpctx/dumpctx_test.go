package dumpctx

import (
	"strings"
	"testing"

	"github.com/Clinet/squadbot/cmds"
	"github.com/Clinet/squadbot/services"
	"github.com/Clinet/squadbot/services/servicetest"
	"github.com/Clinet/squadbot/utils/logger"
)

func init() {
	cmds.Log = logger.NewLogger("dumpctx", 0)
}

func run(t *testing.T, author string) *cmds.CmdResp {
	t.Helper()
	msg := &services.Message{AuthorID: author, ChannelID: "2", ServerID: "3", Content: "!dumpctx hello world"}
	_, resps, err := cmds.CmdHandler(msg, servicetest.New())
	if err != nil {
		t.Fatal(err)
	}
	if len(resps) != 1 {
		t.Fatalf("got %d responses", len(resps))
	}
	return resps[0]
}

func TestDumpCtx(t *testing.T) {
	if err := Init("1"); err != nil {
		t.Fatal(err)
	}
	cmds.Reset()
	cmds.Register(Cmds...)

	resp := run(t, "1")
	if resp.Title != "Dump of ctx (*cmds.CmdCtx)" {
		t.Fatalf("unexpected title %q", resp.Title)
	}
	if !strings.Contains(resp.Content, "hello world") || !strings.Contains(resp.Content, `"Alias": "dumpctx"`) {
		t.Fatalf("context is missing from the dump: %s", resp.Content)
	}

	if resp := run(t, "2"); resp.Content != "Only the bot owner can do that!" {
		t.Fatalf("unexpected response %q", resp.Content)
	}
}
