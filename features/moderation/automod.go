package moderation

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/Clinet/squadbot/cmds"
	"github.com/Clinet/squadbot/features"
	"github.com/Clinet/squadbot/services"
	"github.com/Clinet/squadbot/store"
)

//Filter matches messages against a list of banned words, ignoring case.
// Words only match on their own, so "class" doesn't trip on "ass".
type Filter struct {
	sync.RWMutex
	words []string
	regex *regexp.Regexp
}

func NewFilter(words []string) *Filter {
	filter := &Filter{}
	filter.SetWords(words)
	return filter
}

func normalizeWord(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}

//SetWords replaces the whole word list
func (filter *Filter) SetWords(words []string) {
	filter.Lock()
	defer filter.Unlock()

	filter.words = make([]string, 0, len(words))
	seen := make(map[string]bool)
	for _, word := range words {
		word = normalizeWord(word)
		if word == "" || seen[word] {
			continue
		}
		seen[word] = true
		filter.words = append(filter.words, word)
	}
	filter.compile()
}

//compile must be called with the lock held
func (filter *Filter) compile() {
	if len(filter.words) == 0 {
		filter.regex = nil
		return
	}
	quoted := make([]string, len(filter.words))
	for i, word := range filter.words {
		quoted[i] = regexp.QuoteMeta(word)
	}
	filter.regex = regexp.MustCompile(`(?i)(?:^|\W)(` + strings.Join(quoted, "|") + `)(?:\W|$)`)
}

//Add returns false when the word was already banned
func (filter *Filter) Add(word string) bool {
	word = normalizeWord(word)
	if word == "" {
		return false
	}

	filter.Lock()
	defer filter.Unlock()
	for _, w := range filter.words {
		if w == word {
			return false
		}
	}
	filter.words = append(filter.words, word)
	filter.compile()
	return true
}

//Remove returns false when the word wasn't banned
func (filter *Filter) Remove(word string) bool {
	word = normalizeWord(word)

	filter.Lock()
	defer filter.Unlock()
	for i, w := range filter.words {
		if w == word {
			filter.words = append(filter.words[:i], filter.words[i+1:]...)
			filter.compile()
			return true
		}
	}
	return false
}

//Words returns a sorted copy of the word list
func (filter *Filter) Words() []string {
	filter.RLock()
	defer filter.RUnlock()
	words := make([]string, len(filter.words))
	copy(words, filter.words)
	sort.Strings(words)
	return words
}

//Match returns the first banned word found in content
func (filter *Filter) Match(content string) (string, bool) {
	filter.RLock()
	defer filter.RUnlock()
	if filter.regex == nil {
		return "", false
	}
	match := filter.regex.FindStringSubmatch(content)
	if match == nil {
		return "", false
	}
	return strings.ToLower(match[1]), true
}

//Every guild edits its own word list, starting from the configured one
var (
	filtersMu    sync.Mutex
	filters      = make(map[string]*Filter)
	defaultWords []string
)

//filterFor returns the word filter of a guild, loading it from storage the first time
func filterFor(serverID string) *Filter {
	filtersMu.Lock()
	defer filtersMu.Unlock()
	if filter, ok := filters[serverID]; ok {
		return filter
	}

	words, err := services.AsStrings(Storage.ServerGet(serverID, "words"))
	if err != nil {
		words = defaultWords
	}
	filter := NewFilter(words)
	filters[serverID] = filter
	return filter
}

func resetFilters(words []string) {
	filtersMu.Lock()
	defer filtersMu.Unlock()
	filters = make(map[string]*Filter)
	defaultWords = words
}

//AutoModEnabled reports whether a guild has auto-moderation on, which it is unless turned off
func AutoModEnabled(serverID string) bool {
	enabled, err := services.AsBool(Storage.ServerGet(serverID, "automod"))
	if err != nil {
		return true
	}
	return enabled
}

//Scan checks a message against the guild's banned words and punishes the author, returning true when the message was removed.
// Messages from bots must be filtered out by the caller, and members who can manage messages are never punished.
func Scan(msg *services.Message, service services.Service) bool {
	if msg == nil || msg.ServerID == "" || msg.Content == "" {
		return false
	}
	if !features.IsEnabled(features.AutoMod) || !AutoModEnabled(msg.ServerID) {
		return false
	}

	word, ok := filterFor(msg.ServerID).Match(msg.Content)
	if !ok {
		return false
	}
	//Moderators have to be able to name the words they manage
	if authorPerms, err := service.GetUserPerms(msg.ServerID, msg.ChannelID, msg.AuthorID); err == nil && authorPerms.CanManageMessages() {
		Log.Trace("Auto-moderation ignoring ", word, " from manager ", msg.AuthorID)
		return false
	}
	Log.Debug("Auto-moderation matched ", word, " in message ", msg.MessageID, " from ", msg.AuthorID)

	if err := service.MsgRemove(msg); err != nil {
		Log.Error("Unable to remove message ", msg.MessageID, ": ", err)
	}

	user := &services.User{ServerID: msg.ServerID, UserID: msg.AuthorID}
	warning := &store.Warning{
		GuildID: msg.ServerID,
		UserID:  msg.AuthorID,
		Reason:  "auto-moderation: " + word,
	}
	if err := Store.AddWarning(warning); err != nil {
		Log.Error(err)
	}
	logAction(msg.ServerID, fmt.Sprintf("auto-moderation removed a message from %s for containing %q", user.Mention(), word))

	notice := services.NewMessage().
		SetContent(fmt.Sprintf("⚠️ %s, your message was removed for containing a banned word.", user.Mention())).
		SetColor(services.ColorWarning)
	notice.ChannelID = msg.ChannelID
	notice.ServerID = msg.ServerID
	if _, err := service.MsgSend(notice); err != nil {
		Log.Error(err)
	}

	enforceWarnLimit(service, user, warning.Reason)
	return true
}

func saveWords(serverID string, filter *Filter) {
	Storage.ServerSet(serverID, "words", filter.Words())
	if err := Storage.Save(); err != nil {
		Log.Error(err)
	}
}

func automodCmd() *cmds.Cmd {
	return cmds.NewCmd("automod", "Configures auto-moderation", nil).AddSubCmds(
		cmds.NewCmd("on", "Turns auto-moderation on for this server", handleAutoModToggle(true)),
		cmds.NewCmd("off", "Turns auto-moderation off for this server", handleAutoModToggle(false)),
		cmds.NewCmd("add", "Bans a word", handleAutoModAdd).AddArgs(
			cmds.NewCmdArg("word", "Word to ban", "").SetRequired(),
		),
		cmds.NewCmd("remove", "Unbans a word", handleAutoModRemove).AddArgs(
			cmds.NewCmdArg("word", "Word to unban", "").SetRequired(),
		),
		cmds.NewCmd("list", "Lists banned words", handleAutoModList),
	)
}

func handleAutoModToggle(on bool) func(*cmds.CmdCtx) *cmds.CmdResp {
	return func(ctx *cmds.CmdCtx) *cmds.CmdResp {
		if resp := requireManager(ctx); resp != nil {
			return resp
		}
		Storage.ServerSet(ctx.Server.ServerID, "automod", on)
		if err := Storage.Save(); err != nil {
			Log.Error(err)
		}

		state := "off"
		if on {
			state = "on"
		}
		logAction(ctx.Server.ServerID, fmt.Sprintf("%s turned auto-moderation %s", ctx.User.Mention(), state))
		resp := cmds.NewCmdRespOK("🛡️ Auto-moderation is now " + state + ".")
		if on && !features.IsEnabled(features.AutoMod) {
			resp.SetContent(resp.Content + " It's disabled in the bot configuration though, so nothing will be removed.")
		}
		return resp
	}
}

func handleAutoModAdd(ctx *cmds.CmdCtx) *cmds.CmdResp {
	if resp := requireManager(ctx); resp != nil {
		return resp
	}
	filter := filterFor(ctx.Server.ServerID)
	if !filter.Add(ctx.GetArg("word").GetString()) {
		return cmds.NewCmdRespWarn("That word is already banned.")
	}
	saveWords(ctx.Server.ServerID, filter)
	logAction(ctx.Server.ServerID, fmt.Sprintf("%s banned a word", ctx.User.Mention()))
	return cmds.NewCmdRespOK("🛡️ Word banned.")
}

func handleAutoModRemove(ctx *cmds.CmdCtx) *cmds.CmdResp {
	if resp := requireManager(ctx); resp != nil {
		return resp
	}
	filter := filterFor(ctx.Server.ServerID)
	if !filter.Remove(ctx.GetArg("word").GetString()) {
		return cmds.NewCmdRespWarn("That word isn't banned.")
	}
	saveWords(ctx.Server.ServerID, filter)
	logAction(ctx.Server.ServerID, fmt.Sprintf("%s unbanned a word", ctx.User.Mention()))
	return cmds.NewCmdRespOK("🛡️ Word unbanned.")
}

func handleAutoModList(ctx *cmds.CmdCtx) *cmds.CmdResp {
	if resp := requireManager(ctx); resp != nil {
		return resp
	}
	words := filterFor(ctx.Server.ServerID).Words()
	if len(words) == 0 {
		return cmds.NewCmdRespOK("No words are banned.")
	}
	for i, word := range words {
		words[i] = "||" + word + "||"
	}

	state := "on"
	if !AutoModEnabled(ctx.Server.ServerID) {
		state = "off"
	}
	msg := services.NewMessage().
		SetTitle(fmt.Sprintf("Banned words (%d)", len(words))).
		SetContent(strings.Join(words, ", ")).
		SetFooter("Auto-moderation is " + state + " in this server").
		SetColor(services.ColorInfo)
	return cmds.CmdRespFromMsg(msg).SetReady(true)
}
