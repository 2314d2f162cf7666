// Package servicetest provides an in-memory services.Service for feature tests.
package servicetest

import (
	"strconv"
	"sync"

	"github.com/Clinet/squadbot/services"
)

// Service records everything features ask of it
type Service struct {
	sync.Mutex

	Prefix  string
	Perms   map[string]*services.Perms //By user ID, missing users have no permissions
	Servers map[string]*services.Server
	Users   map[string]*services.User

	Sent    []*services.Message
	Edited  []*services.Message
	Removed []*services.Message
	Muted   map[string]bool
	Kicked  []string
	Banned  []string
	Played  []string

	Channels    map[string]*services.Channel
	Voice       map[string]string //Server ID to the voice channel the bot is in
	VoiceJoins  int
	VoiceLeaves int

	MuteErr  error
	JoinErr  error
	PlayErr  error
	PlayHook func(serverID, mediaURL string)

	nextID int
}

func New() *Service {
	return &Service{
		Prefix:   "!",
		Perms:    make(map[string]*services.Perms),
		Servers:  make(map[string]*services.Server),
		Users:    make(map[string]*services.User),
		Muted:    make(map[string]bool),
		Channels: make(map[string]*services.Channel),
		Voice:    make(map[string]string),
	}
}

// LastSent returns the most recently sent message, or nil
func (s *Service) LastSent() *services.Message {
	s.Lock()
	defer s.Unlock()
	if len(s.Sent) == 0 {
		return nil
	}
	return s.Sent[len(s.Sent)-1]
}

func (s *Service) CmdPrefix() string {
	return s.Prefix
}

func (s *Service) MsgEdit(msg *services.Message) (*services.Message, error) {
	s.Lock()
	defer s.Unlock()
	s.Edited = append(s.Edited, msg)
	return msg, nil
}
func (s *Service) MsgRemove(msg *services.Message) error {
	s.Lock()
	defer s.Unlock()
	s.Removed = append(s.Removed, msg)
	return nil
}
func (s *Service) MsgSend(msg *services.Message) (*services.Message, error) {
	s.Lock()
	defer s.Unlock()
	s.nextID++
	msg.MessageID = strconv.Itoa(s.nextID)
	s.Sent = append(s.Sent, msg)
	return msg, nil
}

func (s *Service) GetUser(serverID, userID string) (*services.User, error) {
	s.Lock()
	defer s.Unlock()
	if user, ok := s.Users[userID]; ok {
		return user, nil
	}
	return &services.User{ServerID: serverID, UserID: userID, Username: "user" + userID}, nil
}
func (s *Service) GetUserPerms(serverID, channelID, userID string) (*services.Perms, error) {
	s.Lock()
	defer s.Unlock()
	if perms, ok := s.Perms[userID]; ok {
		return perms, nil
	}
	return &services.Perms{}, nil
}
func (s *Service) GetServer(serverID string) (*services.Server, error) {
	s.Lock()
	defer s.Unlock()
	if server, ok := s.Servers[serverID]; ok {
		return server, nil
	}
	return nil, services.Error("servicetest: unknown server %s", serverID)
}
func (s *Service) GetChannel(channelID string) (*services.Channel, error) {
	s.Lock()
	defer s.Unlock()
	if channel, ok := s.Channels[channelID]; ok {
		return channel, nil
	}
	return nil, services.Error("servicetest: unknown channel %s", channelID)
}

func (s *Service) UserMute(user *services.User, mute bool) error {
	s.Lock()
	defer s.Unlock()
	if s.MuteErr != nil {
		return s.MuteErr
	}
	s.Muted[user.UserID] = mute
	return nil
}
func (s *Service) UserKick(user *services.User, reason string) error {
	s.Lock()
	defer s.Unlock()
	s.Kicked = append(s.Kicked, user.UserID)
	return nil
}
func (s *Service) UserBan(user *services.User, reason string) error {
	s.Lock()
	defer s.Unlock()
	s.Banned = append(s.Banned, user.UserID)
	return nil
}

func (s *Service) VoiceChannelOf(serverID string) string {
	s.Lock()
	defer s.Unlock()
	return s.Voice[serverID]
}
func (s *Service) VoiceJoin(serverID, channelID string, muted, deafened bool) error {
	s.Lock()
	defer s.Unlock()
	if s.JoinErr != nil {
		return s.JoinErr
	}
	s.VoiceJoins++
	s.Voice[serverID] = channelID
	return nil
}
func (s *Service) VoiceLeave(serverID string) error {
	s.Lock()
	defer s.Unlock()
	if _, ok := s.Voice[serverID]; !ok {
		return services.ErrNotConnected
	}
	s.VoiceLeaves++
	delete(s.Voice, serverID)
	return nil
}
func (s *Service) VoicePlay(serverID, mediaURL string) error {
	s.Lock()
	hook := s.PlayHook
	if s.PlayErr != nil {
		s.Unlock()
		return s.PlayErr
	}
	if _, ok := s.Voice[serverID]; !ok {
		s.Unlock()
		return services.ErrNotConnected
	}
	s.Played = append(s.Played, mediaURL)
	s.Unlock()

	if hook != nil {
		hook(serverID, mediaURL)
	}
	return nil
}
