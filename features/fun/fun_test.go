package fun

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Clinet/squadbot/apis"
	"github.com/Clinet/squadbot/cmds"
	"github.com/Clinet/squadbot/services"
	"github.com/Clinet/squadbot/services/servicetest"
	"github.com/Clinet/squadbot/utils/logger"
)

func init() {
	Log = logger.NewLogger("fun", 0)
	cmds.Log = Log
}

var bodies = map[string]string{
	"/meme":   `{"title":"Funny","url":"https://i.redd.it/x.png","subreddit":"memes","nsfw":false}`,
	"/joke":   `{"setup":"Why did the scrim end early?","punchline":"Someone pulled the plug."}`,
	"/trivia": `{"response_code":0,"results":[{"category":"Video Games","difficulty":"easy","question":"Which is &quot;best&quot;?","correct_answer":"Yes","incorrect_answers":["No","Maybe","Later"]}]}`,
	"/quote":  `[{"q":"Practice makes perfect.","a":"Someone"}]`,
}

func setup(t *testing.T, status int) *servicetest.Service {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(bodies[r.URL.Path]))
	}))
	t.Cleanup(server.Close)

	client := apis.NewClient(apis.Endpoints{
		Meme:   server.URL + "/meme",
		Joke:   server.URL + "/joke",
		Trivia: server.URL + "/trivia",
		Quote:  server.URL + "/quote",
	})
	if err := Init(client); err != nil {
		t.Fatal(err)
	}
	cmds.Reset()
	cmds.Register(Cmds...)
	return servicetest.New()
}

func run(t *testing.T, service *servicetest.Service, content string) *cmds.CmdResp {
	t.Helper()
	msg := &services.Message{AuthorID: "1", ChannelID: "2", ServerID: "3", Content: content}
	_, resps, err := cmds.CmdHandler(msg, service)
	if err != nil {
		t.Fatalf("%s: %v", content, err)
	}
	if len(resps) != 1 {
		t.Fatalf("%s: got %d responses", content, len(resps))
	}
	return resps[0]
}

func TestFun(t *testing.T) {
	service := setup(t, http.StatusOK)

	resp := run(t, service, "!meme")
	if resp.Title != "Funny" || resp.Image != "https://i.redd.it/x.png" || resp.Footer != "r/memes" {
		t.Errorf("meme = %+v", resp.Message)
	}

	resp = run(t, service, "!joke")
	if resp.Title != "😂 Why did the scrim end early?" || resp.Content != "||Someone pulled the plug.||" {
		t.Errorf("joke = %+v", resp.Message)
	}

	resp = run(t, service, "!trivia")
	if resp.Title != `❓ Which is "best"?` || resp.Footer != "Video Games · easy" {
		t.Errorf("trivia = %+v", resp.Message)
	}
	if strings.Count(resp.Content, "\n") != 3 || !strings.HasPrefix(resp.Content, "**A.** ") {
		t.Errorf("answers = %q", resp.Content)
	}
	if len(resp.Fields) != 1 || !strings.HasSuffix(resp.Fields[0].Value, ". Yes||") {
		t.Fatalf("answer field = %+v", resp.Fields)
	}
	letter := strings.TrimPrefix(resp.Fields[0].Value, "||")[:1]
	if !strings.Contains(resp.Content, "**"+letter+".** Yes") {
		t.Errorf("answer %s doesn't point at the right choice in %q", letter, resp.Content)
	}

	resp = run(t, service, "!quote")
	if resp.Content != "> Practice makes perfect.\n- Someone" {
		t.Errorf("quote = %q", resp.Content)
	}
}

func TestFunErrors(t *testing.T) {
	service := setup(t, http.StatusServiceUnavailable)

	for _, cmd := range []string{"!meme", "!joke", "!trivia", "!quote"} {
		resp := run(t, service, cmd)
		if *resp.Color != services.ColorError || !strings.Contains(resp.Content, "try again later") {
			t.Errorf("%s = %+v", cmd, resp.Message)
		}
	}
}
