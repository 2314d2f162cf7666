package cmds

import (
	"fmt"
	"strings"

	"github.com/Clinet/squadbot/services"
)

//CmdHandler parses a text message into a command call and runs it, returning nothing when the message isn't a command
func CmdHandler(serviceMsg *services.Message, service services.Service) (string, []*CmdResp, error) {
	if serviceMsg == nil || serviceMsg.Content == "" {
		return "", nil, ErrCmdEmptyMsg
	}

	cmdPrefix := service.CmdPrefix()
	rawMsg := strings.TrimSpace(serviceMsg.Content)
	if cmdPrefix != "" {
		if len(rawMsg) <= len(cmdPrefix) || !strings.HasPrefix(rawMsg, cmdPrefix) {
			return "", nil, nil
		}
		rawMsg = rawMsg[len(cmdPrefix):] //Only the leftmost instance of the prefix
	}

	tokens := strings.Fields(rawMsg)
	if len(tokens) == 0 {
		return "", nil, nil
	}
	cmd := GetCmd(strings.ToLower(tokens[0]))
	if cmd == nil {
		return "", nil, nil
	}
	tokens = tokens[1:]

	for len(cmd.Subcommands) > 0 {
		if len(tokens) == 0 {
			return cmd.FullName(), nil, usageError(cmd, cmdPrefix, "must specify one of the available subcommands")
		}
		subCmd := cmd.GetSubCmd(strings.ToLower(tokens[0]))
		if subCmd == nil {
			return cmd.FullName(), nil, usageError(cmd, cmdPrefix, "unknown subcommand "+tokens[0])
		}
		cmd = subCmd
		tokens = tokens[1:]
	}

	cmdArgs, err := ParseArgs(cmd, tokens)
	if err != nil {
		return cmd.FullName(), nil, usageError(cmd, cmdPrefix, err.Error())
	}

	user := &services.User{
		ServerID: serviceMsg.ServerID,
		UserID:   serviceMsg.AuthorID,
	}
	channel := &services.Channel{
		ServerID:  serviceMsg.ServerID,
		ChannelID: serviceMsg.ChannelID,
	}
	server := &services.Server{
		ServerID: serviceMsg.ServerID,
	}
	for _, arg := range cmdArgs {
		if mentioned := arg.GetUser(); mentioned != nil {
			mentioned.ServerID = serviceMsg.ServerID
		}
	}

	cmdCtx := NewCmdCtx().
		SetAlias(cmd.Name).
		SetPrefix(cmdPrefix).
		SetUser(user).
		SetChannel(channel).
		SetServer(server).
		SetMessage(serviceMsg).
		SetService(service).
		AddArgs(cmdArgs...)
	cmdRuntime := CmdBatch(CmdBuildCommand(cmd, cmdCtx))

	return cmd.FullName(), cmdRuntime.Run(), nil
}

//ParseArgs fills a copy of the command's arguments from message tokens.
// Tokens are either key:value (or key=value) pairs naming an argument, or positional values in declaration order.
// A greedy argument takes every remaining token.
func ParseArgs(cmd *Cmd, tokens []string) ([]*CmdArg, error) {
	args := make([]*CmdArg, len(cmd.Args))
	for i, arg := range cmd.Args {
		args[i] = arg.clone()
	}

	next := 0
	for i := 0; i < len(tokens); i++ {
		token := tokens[i]

		if key, val, ok := splitKeyValue(token); ok {
			if arg := findArg(args, key); arg != nil {
				if arg.Greedy {
					if err := arg.Set(strings.Join(append([]string{val}, tokens[i+1:]...), " ")); err != nil {
						return nil, err
					}
					break
				}
				if err := arg.Set(val); err != nil {
					return nil, err
				}
				continue
			}
		}

		for next < len(args) && args[next].filled {
			next++
		}
		if next >= len(args) {
			return nil, fmt.Errorf("unexpected argument %s", token)
		}

		arg := args[next]
		if arg.Greedy {
			if err := arg.Set(strings.Join(tokens[i:], " ")); err != nil {
				return nil, err
			}
			break
		}
		if err := arg.Set(token); err != nil {
			return nil, err
		}
	}

	for _, arg := range args {
		if arg.Required && !arg.filled {
			return nil, fmt.Errorf("must specify %s", arg.Name)
		}
	}
	return args, nil
}

func splitKeyValue(token string) (key, val string, ok bool) {
	idx := strings.IndexAny(token, ":=")
	if idx <= 0 {
		return "", "", false
	}
	return token[:idx], token[idx+1:], true
}

func findArg(args []*CmdArg, name string) *CmdArg {
	for _, arg := range args {
		if arg.Name == name {
			return arg
		}
	}
	return nil
}

func usageError(cmd *Cmd, prefix, reason string) error {
	return services.Error("%s\nUsage: `%s`", reason, cmd.UsageText(prefix))
}
