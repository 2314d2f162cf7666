package apis

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestMeme(t *testing.T) {
	server := serve(t, http.StatusOK, `{"postLink":"https://redd.it/x","subreddit":"memes","title":"Funny","url":"https://i.redd.it/x.png","nsfw":false}`)
	meme, err := NewClient(Endpoints{Meme: server.URL}).Meme(context.Background())
	if err != nil {
		t.Fatalf("Meme: %v", err)
	}
	if meme.Title != "Funny" || meme.URL != "https://i.redd.it/x.png" || meme.Subreddit != "memes" {
		t.Errorf("meme = %+v", meme)
	}
}

func TestMemeSkipsNSFW(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Write([]byte(`{"title":"nope","url":"https://x/nsfw.png","nsfw":true}`))
			return
		}
		w.Write([]byte(`{"title":"fine","url":"https://x/ok.png","nsfw":false}`))
	}))
	defer server.Close()

	meme, err := NewClient(Endpoints{Meme: server.URL}).Meme(context.Background())
	if err != nil || meme.Title != "fine" {
		t.Errorf("meme = %+v, %v", meme, err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}

	always := serve(t, http.StatusOK, `{"title":"nope","url":"https://x/nsfw.png","nsfw":true}`)
	if _, err := NewClient(Endpoints{Meme: always.URL}).Meme(context.Background()); !errors.Is(err, ErrEmpty) {
		t.Errorf("only NSFW memes: err = %v", err)
	}
}

func TestJoke(t *testing.T) {
	server := serve(t, http.StatusOK, `{"type":"general","setup":"Why?","punchline":"Because.","id":1}`)
	joke, err := NewClient(Endpoints{Joke: server.URL}).Joke(context.Background())
	if err != nil || joke.Setup != "Why?" || joke.Punchline != "Because." {
		t.Errorf("joke = %+v, %v", joke, err)
	}

	empty := serve(t, http.StatusOK, `{}`)
	if _, err := NewClient(Endpoints{Joke: empty.URL}).Joke(context.Background()); !errors.Is(err, ErrEmpty) {
		t.Errorf("empty joke: err = %v", err)
	}
}

func TestTrivia(t *testing.T) {
	server := serve(t, http.StatusOK, `{"response_code":0,"results":[{"category":"Science &amp; Nature","type":"multiple","difficulty":"easy",
		"question":"What&#039;s H&quot;2&quot;O?","correct_answer":"Water","incorrect_answers":["Salt","Fire &amp; Ice","Air"]}]}`)

	client := NewClient(Endpoints{Trivia: server.URL})
	client.shuffle = func(n int, swap func(i, j int)) { swap(0, n-1) }

	trivia, err := client.Trivia(context.Background())
	if err != nil {
		t.Fatalf("Trivia: %v", err)
	}
	if trivia.Question != `What's H"2"O?` || trivia.Category != "Science & Nature" {
		t.Errorf("entities not decoded: %+v", trivia)
	}
	if trivia.Correct != "Water" || len(trivia.Answers) != 4 {
		t.Fatalf("answers = %v, correct %q", trivia.Answers, trivia.Correct)
	}
	if trivia.Answers[0] != "Air" || trivia.Answers[3] != "Water" || trivia.Answers[2] != "Fire & Ice" {
		t.Errorf("answers were not shuffled and decoded: %v", trivia.Answers)
	}

	noResults := serve(t, http.StatusOK, `{"response_code":1,"results":[]}`)
	if _, err := NewClient(Endpoints{Trivia: noResults.URL}).Trivia(context.Background()); !errors.Is(err, ErrEmpty) {
		t.Errorf("no results: err = %v", err)
	}
}

func TestQuote(t *testing.T) {
	server := serve(t, http.StatusOK, `[{"q":"Stay hungry.","a":"Steve Jobs","h":"<blockquote/>"}]`)
	quote, err := NewClient(Endpoints{Quote: server.URL}).Quote(context.Background())
	if err != nil || quote.Text != "Stay hungry." || quote.Author != "Steve Jobs" {
		t.Errorf("quote = %+v, %v", quote, err)
	}

	empty := serve(t, http.StatusOK, `[]`)
	if _, err := NewClient(Endpoints{Quote: empty.URL}).Quote(context.Background()); !errors.Is(err, ErrEmpty) {
		t.Errorf("empty quote list: err = %v", err)
	}
}

func TestBadStatusAndCancel(t *testing.T) {
	server := serve(t, http.StatusTooManyRequests, `{"error":"slow down"}`)
	if _, err := NewClient(Endpoints{Joke: server.URL}).Joke(context.Background()); !errors.Is(err, ErrBadStatus) {
		t.Errorf("429: err = %v", err)
	}

	blank := serve(t, http.StatusOK, ``)
	if _, err := NewClient(Endpoints{Joke: blank.URL}).Joke(context.Background()); !errors.Is(err, ErrEmpty) {
		t.Errorf("blank body: err = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ok := serve(t, http.StatusOK, `{"setup":"a","punchline":"b"}`)
	if _, err := NewClient(Endpoints{Joke: ok.URL}).Joke(ctx); err == nil {
		t.Error("a cancelled context should fail the request")
	}
}

func TestDefaults(t *testing.T) {
	client := NewClient(Endpoints{})
	if client.endpoints.Meme != DefaultMemeURL || client.endpoints.Quote != DefaultQuoteURL {
		t.Errorf("endpoints = %+v", client.endpoints)
	}
}
