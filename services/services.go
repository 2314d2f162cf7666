package services

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrForbidden    = errors.New("services: missing permissions")
	ErrNotConnected = errors.New("services: not connected to voice")
	ErrBusy         = errors.New("services: voice connection busy")
)

//Colors shared by every feature's responses
const (
	ColorError   = 0xFF0000
	ColorWarning = 0xCCCC09 //Dirty yellow?
	ColorOK      = 0x1C1C1C
	ColorInfo    = 0x5865F2
)

//Service requires various methods for the rest of the command framework to function.
// A dummy service can be used if you're looking to import a particular feature absent a service.
type Service interface {
	CmdPrefix() string //Prefix for text commands, empty when every message is a command

	//Messages are the backbone of how the command framework responds to interactions and interacts with the service.
	// In the case of other concepts such as Discord's interaction events, use Message.Context to track the alternative type.
	MsgEdit(msg *Message) (ret *Message, err error) //Edits any type of message
	MsgRemove(msg *Message) (err error)             //Removes a message
	MsgSend(msg *Message) (ret *Message, err error) //Sends any type of message

	GetUser(serverID, userID string) (user *User, err error)
	GetUserPerms(serverID, channelID, userID string) (perms *Perms, err error)
	GetServer(serverID string) (server *Server, err error)
	GetChannel(channelID string) (channel *Channel, err error)

	UserMute(user *User, mute bool) (err error) //Server-wide voice mute
	UserKick(user *User, reason string) (err error)
	UserBan(user *User, reason string) (err error)

	VoiceChannelOf(serverID string) (channelID string) //Voice channel the bot is connected to, empty when it isn't
	VoiceJoin(serverID, channelID string, muted, deafened bool) (err error)
	VoiceLeave(serverID string) (err error)
	VoicePlay(serverID, mediaURL string) (err error) //Blocks until the media finishes playing
}

func Error(format string, replacements ...interface{}) error {
	return fmt.Errorf(format, replacements...)
}

type Message struct {
	AuthorID  string          `json:"authorID,omitempty"`
	MessageID string          `json:"messageID,omitempty"`
	ChannelID string          `json:"channelID,omitempty"`
	ServerID  string          `json:"serverID,omitempty"`
	Title     string          `json:"title,omitempty"`
	Content   string          `json:"content,omitempty"`
	Image     string          `json:"image,omitempty"`
	Thumbnail string          `json:"thumbnail,omitempty"`
	Footer    string          `json:"footer,omitempty"`
	Color     *int            `json:"color,omitempty"`
	Fields    []*MessageField `json:"fields,omitempty"`
	Context   interface{}     `json:"-"`
}

func NewMessage() *Message {
	return &Message{}
}
func (msg *Message) SetContent(content string) *Message {
	msg.Content = content
	return msg
}
func (msg *Message) SetTitle(title string) *Message {
	msg.Title = title
	return msg
}
func (msg *Message) SetColor(clr int) *Message {
	msg.Color = &clr
	return msg
}
func (msg *Message) SetImage(image string) *Message {
	msg.Image = image
	return msg
}
func (msg *Message) SetThumbnail(thumbnail string) *Message {
	msg.Thumbnail = thumbnail
	return msg
}
func (msg *Message) SetFooter(footer string) *Message {
	msg.Footer = footer
	return msg
}
func (msg *Message) AddField(name, value string, inline bool) *Message {
	msg.Fields = append(msg.Fields, &MessageField{Name: name, Value: value, Inline: inline})
	return msg
}

//IsEmbed reports whether the message needs rich formatting to be displayed
func (msg *Message) IsEmbed() bool {
	return msg.Title != "" || msg.Color != nil || msg.Image != "" || msg.Thumbnail != "" || msg.Footer != "" || len(msg.Fields) > 0
}

//String returns a plain-text rendition for services that can only send text
func (msg *Message) String() string {
	text := ""
	if msg.Title != "" {
		text += "**" + msg.Title + "**\n"
	}
	text += msg.Content
	for _, field := range msg.Fields {
		if text != "" {
			text += "\n"
		}
		text += "**" + field.Name + "**: " + field.Value
	}
	if msg.Footer != "" {
		text += "\n_" + msg.Footer + "_"
	}
	return text
}

type MessageField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type User struct {
	ServerID string  `json:"serverID,omitempty"`
	UserID   string  `json:"userID"`
	Username string  `json:"username,omitempty"`
	Nickname string  `json:"nickname,omitempty"`
	Bot      bool    `json:"bot,omitempty"`
	Roles    []*Role `json:"roles,omitempty"`
}

func (user *User) Mention() string {
	return "<@" + user.UserID + ">"
}

type Role struct {
	RoleID string `json:"roleID"`
	Name   string `json:"name,omitempty"`
}

func (role *Role) Mention() string {
	return "<@&" + role.RoleID + ">"
}

type Channel struct {
	ServerID  string `json:"serverID,omitempty"`
	ChannelID string `json:"channelID"`
	Name      string `json:"name,omitempty"`
	Voice     bool   `json:"voice,omitempty"`
}

type Server struct {
	ServerID       string        `json:"serverID"`
	Name           string        `json:"name,omitempty"`
	OwnerID        string        `json:"ownerID,omitempty"`
	MemberCount    int           `json:"memberCount,omitempty"`
	CreatedAt      time.Time     `json:"createdAt,omitempty"`
	IconURL        string        `json:"iconURL,omitempty"`
	BoostLevel     int           `json:"boostLevel,omitempty"`
	BoostCount     int           `json:"boostCount,omitempty"`
	DefaultChannel string        `json:"defaultChannel,omitempty"`
	Roles          []*Role       `json:"roles,omitempty"` //Excludes the default role everyone has
	VoiceStates    []*VoiceState `json:"voiceStates,omitempty"`
}

//VoiceStateOf returns the voice state of a user, or nil when they aren't in a voice channel
func (server *Server) VoiceStateOf(userID string) *VoiceState {
	for _, vs := range server.VoiceStates {
		if vs.UserID == userID && vs.ChannelID != "" {
			return vs
		}
	}
	return nil
}

type VoiceState struct {
	ChannelID string `json:"channelID"`
	UserID    string `json:"userID"`
	SessionID string `json:"sessionID,omitempty"`
	Deaf      bool   `json:"deaf,omitempty"`
	Mute      bool   `json:"mute,omitempty"`
	SelfDeaf  bool   `json:"selfDeaf,omitempty"`
	SelfMute  bool   `json:"selfMute,omitempty"`
}

type Perms struct {
	Administrator  bool `json:"administrator"`
	Ban            bool `json:"ban"`
	Kick           bool `json:"kick"`
	MuteMembers    bool `json:"muteMembers"`
	ManageMessages bool `json:"manageMessages"`
}

func (perms *Perms) CanBan() bool {
	return perms.Administrator || perms.Ban
}
func (perms *Perms) CanKick() bool {
	return perms.Administrator || perms.Kick
}
func (perms *Perms) CanMute() bool {
	return perms.Administrator || perms.MuteMembers
}
func (perms *Perms) CanManageMessages() bool {
	return perms.Administrator || perms.ManageMessages
}
