package convos

import (
	"time"

	"github.com/JoshuaDoes/go-wolfram"
)

type ConversationState struct {
	Query    *ConversationQuery    `json:"query"`    //Conversation query
	Response *ConversationResponse `json:"response"` //Conversation response
	Errors   []error               `json:"errors"`   //Errors encountered while processing this state
}

type ConversationQuery struct {
	Time time.Time `json:"time"` //Time of query request
	Text string    `json:"text"` //Query as typed
}

type ConversationResponse struct {
	TextSimple string `json:"text"`   //Simple text response to query
	ImageURL   string `json:"image"`  //URL to image supplied with response
	Source     string `json:"source"` //Name of the service that answered

	//Service conversation states
	WolframAlpha *wolfram.Conversation `json:"stateWolfram"` //Conversation state from Wolfram|Alpha, if present
}

//Fallback is the reply when no source could answer
const Fallback = "I'm not sure how to respond to that yet!"

//Reply returns the text to send back for this state
func (state *ConversationState) Reply() string {
	if state.Response == nil || state.Response.TextSimple == "" {
		return Fallback
	}
	return state.Response.TextSimple
}
