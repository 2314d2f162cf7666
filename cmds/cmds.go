package cmds

import (
	"errors"
	"sort"
	"sync"

	"github.com/Clinet/squadbot/utils/logger"
)

var Log *logger.Logger

var (
	ErrCmdEmptyMsg = errors.New("cmd: nil message")
	ErrCmdNotFound = errors.New("cmd: no commands to handle message")
	ErrCmdNoResp   = errors.New("cmd: no resp")
)

//Commands holds the complete command list
var Commands []*Cmd
var commandsMutex sync.RWMutex

//Register adds commands to the command list, replacing any with the same name
func Register(cmds ...*Cmd) {
	commandsMutex.Lock()
	defer commandsMutex.Unlock()

	for _, cmd := range cmds {
		replaced := false
		for i := range Commands {
			if Commands[i].Name == cmd.Name {
				Commands[i] = cmd
				replaced = true
				break
			}
		}
		if !replaced {
			Commands = append(Commands, cmd)
		}
	}
}

//Reset empties the command list
func Reset() {
	commandsMutex.Lock()
	defer commandsMutex.Unlock()
	Commands = nil
}

//GetCmd returns a cmd that matches the given alias
func GetCmd(alias string) *Cmd {
	commandsMutex.RLock()
	defer commandsMutex.RUnlock()
	for _, cmd := range Commands {
		if cmd.Name == alias {
			return cmd
		}
	}
	return nil
}

//List returns a sorted snapshot of the command list
func List() []*Cmd {
	commandsMutex.RLock()
	list := make([]*Cmd, len(Commands))
	copy(list, Commands)
	commandsMutex.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		return list[i].Name < list[j].Name
	})
	return list
}

//CmdBuilder builds a list of Cmd paired to a CmdCtx
type CmdBuilder struct {
	Commands []*CmdBuilderCommand
}

func CmdBatch(cmds ...*CmdBuilderCommand) *CmdBuilder {
	return &CmdBuilder{
		Commands: cmds,
	}
}

type CmdBuilderCommand struct {
	Command *Cmd    //Command to execute
	Context *CmdCtx //Context for command
}

func CmdBuildCommand(cmd *Cmd, ctx *CmdCtx) *CmdBuilderCommand {
	return &CmdBuilderCommand{Command: cmd, Context: ctx}
}

func (cmdBuild *CmdBuilder) Run() []*CmdResp {
	if cmdBuild == nil || len(cmdBuild.Commands) == 0 {
		return nil
	}
	resps := make([]*CmdResp, 0)
	for _, command := range cmdBuild.Commands {
		if resp := command.Command.Exec(command.Context); resp != nil {
			resps = append(resps, resp)
		}
	}
	return resps
}
