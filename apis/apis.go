package apis

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"math/rand"
	"net/http"
	"time"

	"github.com/Clinet/squadbot/utils/logger"
	"github.com/JoshuaDoes/json"
)

var Log *logger.Logger

var (
	ErrBadStatus = errors.New("apis: unexpected status")
	ErrEmpty     = errors.New("apis: empty response")
)

//Public endpoints used when no override is configured
const (
	DefaultMemeURL   = "https://meme-api.com/gimme"
	DefaultJokeURL   = "https://official-joke-api.appspot.com/random_joke"
	DefaultTriviaURL = "https://opentdb.com/api.php?amount=1&type=multiple"
	DefaultQuoteURL  = "https://zenquotes.io/api/random"
)

//memeAttempts bounds how many times an NSFW meme is rerolled
const memeAttempts = 3

type Endpoints struct {
	Meme   string
	Joke   string
	Trivia string
	Quote  string
}

//Client proxies the public fun APIs
type Client struct {
	http      *http.Client
	endpoints Endpoints
	shuffle   func(n int, swap func(i, j int))
}

//NewClient returns a client for the given endpoints, falling back to the public ones for anything left empty
func NewClient(endpoints Endpoints) *Client {
	if endpoints.Meme == "" {
		endpoints.Meme = DefaultMemeURL
	}
	if endpoints.Joke == "" {
		endpoints.Joke = DefaultJokeURL
	}
	if endpoints.Trivia == "" {
		endpoints.Trivia = DefaultTriviaURL
	}
	if endpoints.Quote == "" {
		endpoints.Quote = DefaultQuoteURL
	}
	return &Client{
		http:      &http.Client{Timeout: 10 * time.Second},
		endpoints: endpoints,
		shuffle:   rand.Shuffle,
	}
}

type Meme struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	PostLink  string `json:"postLink"`
	Subreddit string `json:"subreddit"`
	Author    string `json:"author"`
	NSFW      bool   `json:"nsfw"`
}

type Joke struct {
	Setup     string `json:"setup"`
	Punchline string `json:"punchline"`
}

type Trivia struct {
	Category   string   `json:"category"`
	Difficulty string   `json:"difficulty"`
	Question   string   `json:"question"`
	Answers    []string `json:"answers"` //Shuffled, includes the correct answer
	Correct    string   `json:"correct"`
}

type Quote struct {
	Text   string `json:"q"`
	Author string `json:"a"`
}

func (c *Client) getJSON(ctx context.Context, url string, v interface{}) error {
	if Log != nil {
		Log.Trace("--- apis.getJSON(", url, ") ---")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "squadbot")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("%w: %s from %s", ErrBadStatus, resp.Status, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return ErrEmpty
	}
	return json.Unmarshal(body, v)
}

//Meme returns a random safe-for-work meme
func (c *Client) Meme(ctx context.Context) (*Meme, error) {
	for i := 0; i < memeAttempts; i++ {
		meme := &Meme{}
		if err := c.getJSON(ctx, c.endpoints.Meme, meme); err != nil {
			return nil, err
		}
		if meme.URL == "" {
			return nil, ErrEmpty
		}
		if !meme.NSFW {
			return meme, nil
		}
	}
	return nil, ErrEmpty
}

func (c *Client) Joke(ctx context.Context) (*Joke, error) {
	joke := &Joke{}
	if err := c.getJSON(ctx, c.endpoints.Joke, joke); err != nil {
		return nil, err
	}
	if joke.Setup == "" || joke.Punchline == "" {
		return nil, ErrEmpty
	}
	return joke, nil
}

type triviaResponse struct {
	ResponseCode int `json:"response_code"`
	Results      []struct {
		Category         string   `json:"category"`
		Difficulty       string   `json:"difficulty"`
		Question         string   `json:"question"`
		CorrectAnswer    string   `json:"correct_answer"`
		IncorrectAnswers []string `json:"incorrect_answers"`
	} `json:"results"`
}

//Trivia returns a multiple choice question with its entities decoded
func (c *Client) Trivia(ctx context.Context) (*Trivia, error) {
	resp := &triviaResponse{}
	if err := c.getJSON(ctx, c.endpoints.Trivia, resp); err != nil {
		return nil, err
	}
	if resp.ResponseCode != 0 || len(resp.Results) == 0 {
		return nil, ErrEmpty
	}

	result := resp.Results[0]
	trivia := &Trivia{
		Category:   html.UnescapeString(result.Category),
		Difficulty: result.Difficulty,
		Question:   html.UnescapeString(result.Question),
		Correct:    html.UnescapeString(result.CorrectAnswer),
	}
	trivia.Answers = append(trivia.Answers, trivia.Correct)
	for _, answer := range result.IncorrectAnswers {
		trivia.Answers = append(trivia.Answers, html.UnescapeString(answer))
	}
	c.shuffle(len(trivia.Answers), func(i, j int) {
		trivia.Answers[i], trivia.Answers[j] = trivia.Answers[j], trivia.Answers[i]
	})
	return trivia, nil
}

func (c *Client) Quote(ctx context.Context) (*Quote, error) {
	var quotes []*Quote
	if err := c.getJSON(ctx, c.endpoints.Quote, &quotes); err != nil {
		return nil, err
	}
	if len(quotes) == 0 || quotes[0].Text == "" {
		return nil, ErrEmpty
	}
	return quotes[0], nil
}
