package cmds

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Clinet/squadbot/services"
)

//ArgTypeUser marks an argument as a user mention when used as its value
var ArgTypeUser = &services.User{}

var mentionRegex = regexp.MustCompile(`^<@!?(\d+)>$`)

type CmdArg struct {
	Name        string      //Display name for argument
	Description string      //Description for command usage
	Value       interface{} //Value for argument, set to default value (or zero value if required argument) when creating command
	Required    bool        //True when argument must be changed
	Greedy      bool        //True when argument consumes the rest of the message

	filled bool
}

func NewCmdArg(name, desc string, value interface{}) *CmdArg {
	return &CmdArg{
		Name:        name,
		Description: desc,
		Value:       value,
	}
}

func (arg *CmdArg) SetRequired() *CmdArg {
	arg.Required = true
	return arg
}

func (arg *CmdArg) SetGreedy() *CmdArg {
	arg.Greedy = true
	return arg
}

//IsSet reports whether the caller supplied this argument
func (arg *CmdArg) IsSet() bool {
	return arg.filled
}

func (arg *CmdArg) clone() *CmdArg {
	clone := *arg
	clone.filled = false
	return &clone
}

//Set fills the argument with a value of the same kind as its default
func (arg *CmdArg) Set(raw string) error {
	switch arg.Value.(type) {
	case int:
		val, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%s must be a whole number", arg.Name)
		}
		arg.Value = val
	case bool:
		val, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("%s must be true or false", arg.Name)
		}
		arg.Value = val
	case *services.User:
		userID := ParseMention(raw)
		if userID == "" {
			return fmt.Errorf("%s must mention a user", arg.Name)
		}
		arg.Value = &services.User{UserID: userID}
	default:
		arg.Value = raw
	}
	arg.filled = true
	return nil
}

//SetValue fills the argument with an already typed value, as platforms with native arguments provide
func (arg *CmdArg) SetValue(val interface{}) {
	arg.Value = val
	arg.filled = true
}

func (arg *CmdArg) GetString() string {
	if arg == nil || arg.Value == nil {
		return ""
	}
	if str, ok := arg.Value.(string); ok {
		return str
	}
	return fmt.Sprint(arg.Value)
}

func (arg *CmdArg) GetInt() int {
	if arg == nil {
		return 0
	}
	switch val := arg.Value.(type) {
	case int:
		return val
	case int64:
		return int(val)
	case float64:
		return int(val)
	case string:
		i, _ := strconv.Atoi(val)
		return i
	}
	return 0
}

func (arg *CmdArg) GetBool() bool {
	if arg == nil {
		return false
	}
	switch val := arg.Value.(type) {
	case bool:
		return val
	case string:
		b, _ := strconv.ParseBool(val)
		return b
	}
	return false
}

//GetUser returns the mentioned user, or nil when the argument was left empty
func (arg *CmdArg) GetUser() *services.User {
	if arg == nil {
		return nil
	}
	user, ok := arg.Value.(*services.User)
	if !ok || user == ArgTypeUser || user.UserID == "" {
		return nil
	}
	return user
}

//ParseMention returns the user ID in a mention, accepting bare IDs too
func ParseMention(raw string) string {
	if match := mentionRegex.FindStringSubmatch(raw); match != nil {
		return match[1]
	}
	if raw == "" {
		return ""
	}
	if _, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64); err == nil {
		return strings.TrimSpace(raw)
	}
	return ""
}
