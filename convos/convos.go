package convos

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/Clinet/squadbot/utils/logger"
	duckduckgo "github.com/JoshuaDoes/duckduckgolang"
	"github.com/JoshuaDoes/go-wolfram"
)

var Log *logger.Logger

//Conversations older than ConvoExpiry start over, and only the last HistoryLimit states are kept
var (
	ConvoExpiry  = 30 * time.Minute
	HistoryLimit = 10
)

//QueryService answers a conversation query, optionally following up on the last state
type QueryService interface {
	Query(query *ConversationQuery, lastState *ConversationState) (*ConversationResponse, error)
}

//ErrNoAnswer is returned by a source that understood the query but had nothing to say
var ErrNoAnswer = errors.New("convos: no answer")

//Sources set up by AuthDuckDuckGo and AuthWolframAlpha, nil until then
var (
	DuckDuckGo   *ClientDuckDuckGo
	WolframAlpha *ClientWolframAlpha
)

//ClientDuckDuckGo answers from DuckDuckGo's instant answers, which never follow up
type ClientDuckDuckGo struct {
	client *duckduckgo.Client
}

func AuthDuckDuckGo(appName string) {
	DuckDuckGo = &ClientDuckDuckGo{client: &duckduckgo.Client{AppName: appName}}
}

func (ddg *ClientDuckDuckGo) Query(query *ConversationQuery, _ *ConversationState) (*ConversationResponse, error) {
	result, err := ddg.client.GetQueryResult(query.Text)
	if err != nil {
		return nil, err
	}
	return instantAnswer(result)
}

//instantAnswer picks the most specific text of an instant answer
func instantAnswer(result *duckduckgo.QueryResult) (*ConversationResponse, error) {
	resp := &ConversationResponse{Source: "DuckDuckGo"}
	for _, text := range []string{result.Definition, result.Answer, result.AbstractText} {
		if text = strings.TrimSpace(text); text != "" {
			resp.TextSimple = text
			break
		}
	}
	if resp.TextSimple == "" {
		return nil, ErrNoAnswer
	}

	switch {
	case result.Image == "":
	case strings.HasPrefix(result.Image, "/"):
		resp.ImageURL = "https://duckduckgo.com" + result.Image
	default:
		resp.ImageURL = result.Image
	}
	return resp, nil
}

//ClientWolframAlpha answers through Wolfram|Alpha's conversational API, carrying its state between questions
type ClientWolframAlpha struct {
	client *wolfram.Client
}

func AuthWolframAlpha(appID string) {
	WolframAlpha = &ClientWolframAlpha{client: &wolfram.Client{AppID: appID}}
}

func (wa *ClientWolframAlpha) Query(query *ConversationQuery, lastState *ConversationState) (*ConversationResponse, error) {
	var followUp *wolfram.Conversation
	if lastState != nil && lastState.Response != nil {
		followUp = lastState.Response.WolframAlpha
	}

	convo, err := wa.client.GetConversationalQuery(query.Text, wolfram.Metric, followUp)
	if err != nil {
		return nil, err
	}
	return wolframReply(convo)
}

//wolframReply turns a conversational result into a response, keeping the result as the next follow-up state
func wolframReply(convo *wolfram.Conversation) (*ConversationResponse, error) {
	if convo.ErrorMessage != "" {
		return nil, errors.New("wolframalpha: " + convo.ErrorMessage)
	}
	text := strings.TrimSpace(convo.Result)
	if text == "" {
		return nil, ErrNoAnswer
	}
	if !strings.HasSuffix(text, ".") {
		text += "."
	}
	return &ConversationResponse{
		TextSimple:   text,
		Source:       "Wolfram|Alpha",
		WolframAlpha: convo,
	}, nil
}

type Conversation struct {
	History []*ConversationState //Conversation state history in order
	Sources []QueryService       `json:"-"` //Queried in order until one responds
}

//NewConversation returns an empty conversation using every authenticated source, DuckDuckGo first
func NewConversation() *Conversation {
	sources := make([]QueryService, 0)
	if DuckDuckGo != nil {
		sources = append(sources, DuckDuckGo)
	}
	if WolframAlpha != nil {
		sources = append(sources, WolframAlpha)
	}
	return &Conversation{
		History: make([]*ConversationState, 0),
		Sources: sources,
	}
}

//QueryText returns a new conversation state for the given query text and appends it to the convo history
func (convo *Conversation) QueryText(queryText string) *ConversationState {
	newState := &ConversationState{
		Query: &ConversationQuery{
			Time: time.Now(),
			Text: queryText,
		},
		Errors: make([]error, 0),
	}

	for _, source := range convo.Sources {
		resp, err := source.Query(newState.Query, convo.LastState())
		if err != nil {
			newState.Errors = append(newState.Errors, err)
			continue
		}
		newState.Response = resp
		break
	}

	if newState.Response != nil {
		convo.History = append(convo.History, newState) //Only add successful responses to the history
		if len(convo.History) > HistoryLimit {
			convo.History = convo.History[len(convo.History)-HistoryLimit:]
		}
	}

	return newState
}

//LastState returns the most recent conversation state
func (convo *Conversation) LastState() *ConversationState {
	if len(convo.History) == 0 {
		return nil
	}
	return convo.History[len(convo.History)-1]
}

//Conversations keeps one conversation per channel so follow-up questions work
type Conversations struct {
	sync.Mutex
	convos map[string]*Conversation
	now    func() time.Time
	create func() *Conversation
}

func NewConversations() *Conversations {
	return &Conversations{
		convos: make(map[string]*Conversation),
		now:    time.Now,
		create: NewConversation,
	}
}

//Query asks the channel's conversation, starting a fresh one when the last went stale
func (c *Conversations) Query(channelID, queryText string) *ConversationState {
	Log.Trace("--- Conversations.Query(", channelID, ", ", queryText, ") ---")

	c.Lock()
	defer c.Unlock()

	convo, ok := c.convos[channelID]
	if ok {
		if last := convo.LastState(); last != nil && c.now().Sub(last.Query.Time) > ConvoExpiry {
			ok = false
		}
	}
	if !ok {
		convo = c.create()
		c.convos[channelID] = convo
	}

	state := convo.QueryText(queryText)
	state.Query.Time = c.now()
	return state
}

//Forget drops the conversation for a channel
func (c *Conversations) Forget(channelID string) {
	c.Lock()
	defer c.Unlock()
	delete(c.convos, channelID)
}
