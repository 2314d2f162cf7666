package fun

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Clinet/squadbot/apis"
	"github.com/Clinet/squadbot/cmds"
	"github.com/Clinet/squadbot/services"
	"github.com/Clinet/squadbot/utils/logger"
)

var Log *logger.Logger
var Cmds []*cmds.Cmd
var API *apis.Client

//Timeout bounds each call to a remote API
var Timeout = 10 * time.Second

func Init(client *apis.Client) error {
	if client == nil {
		return errors.New("fun: no API client")
	}
	API = client

	Cmds = []*cmds.Cmd{
		cmds.NewCmd("meme", "Fetches a random meme", handleMeme),
		cmds.NewCmd("joke", "Tells a random joke", handleJoke),
		cmds.NewCmd("trivia", "Asks a random trivia question", handleTrivia),
		cmds.NewCmd("quote", "Shares an inspirational quote", handleQuote),
	}
	return nil
}

func apiErr(what string, err error) *cmds.CmdResp {
	Log.Error("Unable to fetch ", what, ": ", err)
	if errors.Is(err, context.DeadlineExceeded) {
		return cmds.NewCmdRespErr(fmt.Sprintf("The %s service took too long to answer, try again later!", what))
	}
	return cmds.NewCmdRespErr(fmt.Sprintf("Couldn't fetch a %s right now, try again later!", what))
}

func handleMeme(ctx *cmds.CmdCtx) *cmds.CmdResp {
	reqCtx, cancel := context.WithTimeout(context.Background(), Timeout)
	defer cancel()

	meme, err := API.Meme(reqCtx)
	if err != nil {
		return apiErr("meme", err)
	}

	msg := services.NewMessage().
		SetTitle(meme.Title).
		SetImage(meme.URL).
		SetColor(services.ColorInfo)
	if meme.Subreddit != "" {
		msg.SetFooter("r/" + meme.Subreddit)
	}
	return cmds.CmdRespFromMsg(msg).SetReady(true)
}

func handleJoke(ctx *cmds.CmdCtx) *cmds.CmdResp {
	reqCtx, cancel := context.WithTimeout(context.Background(), Timeout)
	defer cancel()

	joke, err := API.Joke(reqCtx)
	if err != nil {
		return apiErr("joke", err)
	}

	msg := services.NewMessage().
		SetTitle("😂 " + joke.Setup).
		SetContent("||" + joke.Punchline + "||").
		SetColor(services.ColorInfo)
	return cmds.CmdRespFromMsg(msg).SetReady(true)
}

func handleTrivia(ctx *cmds.CmdCtx) *cmds.CmdResp {
	reqCtx, cancel := context.WithTimeout(context.Background(), Timeout)
	defer cancel()

	trivia, err := API.Trivia(reqCtx)
	if err != nil {
		return apiErr("trivia question", err)
	}

	correct := ""
	answers := make([]string, len(trivia.Answers))
	for i, answer := range trivia.Answers {
		letter := string(rune('A' + i))
		answers[i] = fmt.Sprintf("**%s.** %s", letter, answer)
		if answer == trivia.Correct {
			correct = letter + ". " + answer
		}
	}

	msg := services.NewMessage().
		SetTitle("❓ "+trivia.Question).
		SetContent(strings.Join(answers, "\n")).
		AddField("Answer", "||"+correct+"||", false).
		SetColor(services.ColorInfo)
	if trivia.Category != "" {
		footer := trivia.Category
		if trivia.Difficulty != "" {
			footer += " · " + trivia.Difficulty
		}
		msg.SetFooter(footer)
	}
	return cmds.CmdRespFromMsg(msg).SetReady(true)
}

func handleQuote(ctx *cmds.CmdCtx) *cmds.CmdResp {
	reqCtx, cancel := context.WithTimeout(context.Background(), Timeout)
	defer cancel()

	quote, err := API.Quote(reqCtx)
	if err != nil {
		return apiErr("quote", err)
	}

	author := quote.Author
	if author == "" {
		author = "Unknown"
	}
	msg := services.NewMessage().
		SetContent(fmt.Sprintf("> %s\n- %s", quote.Text, author)).
		SetColor(services.ColorInfo)
	return cmds.CmdRespFromMsg(msg).SetReady(true)
}
