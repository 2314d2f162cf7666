package cmds

import (
	"strings"
)

//Cmd holds a command that can be executed with arguments
type Cmd struct {
	Name        string                 //Name used to call this command
	Description string                 //Description of this command
	Handler     func(*CmdCtx) *CmdResp //Go handler for this command, nil when it only groups subcommands
	Args        []*CmdArg              //Arguments in positional order
	Subcommands []*Cmd                 //Subcommands, one of which must be chosen when present
	Usage       string                 //Overrides the generated usage line

	parent *Cmd
}

func NewCmd(name, desc string, handler func(*CmdCtx) *CmdResp) *Cmd {
	return &Cmd{
		Name:        name,
		Description: desc,
		Handler:     handler,
	}
}

func (cmd *Cmd) AddArgs(args ...*CmdArg) *Cmd {
	cmd.Args = append(cmd.Args, args...)
	return cmd
}

func (cmd *Cmd) AddSubCmds(subCmds ...*Cmd) *Cmd {
	for _, subCmd := range subCmds {
		subCmd.parent = cmd
	}
	cmd.Subcommands = append(cmd.Subcommands, subCmds...)
	return cmd
}

func (cmd *Cmd) SetUsage(usage string) *Cmd {
	cmd.Usage = usage
	return cmd
}

func (cmd *Cmd) GetSubCmd(name string) *Cmd {
	for _, subCmd := range cmd.Subcommands {
		if subCmd.Name == name {
			return subCmd
		}
	}
	return nil
}

//FullName returns the command name prefixed by its parents, such as "scrim add"
func (cmd *Cmd) FullName() string {
	if cmd.parent == nil {
		return cmd.Name
	}
	return cmd.parent.FullName() + " " + cmd.Name
}

//UsageText returns how to call this command from a text message
func (cmd *Cmd) UsageText(prefix string) string {
	if cmd.Usage != "" {
		return prefix + cmd.FullName() + " " + cmd.Usage
	}

	usage := prefix + cmd.FullName()
	if len(cmd.Subcommands) > 0 {
		names := make([]string, len(cmd.Subcommands))
		for i, subCmd := range cmd.Subcommands {
			names[i] = subCmd.Name
		}
		return usage + " <" + strings.Join(names, "|") + ">"
	}

	for _, arg := range cmd.Args {
		name := arg.Name
		if arg.Greedy {
			name += "..."
		}
		if arg.Required {
			usage += " <" + name + ">"
		} else {
			usage += " [" + name + "]"
		}
	}
	return usage
}

//Exec runs the handler, turning a panic into an error response
func (cmd *Cmd) Exec(ctx *CmdCtx) (resp *CmdResp) {
	if cmd.Handler == nil {
		return NewCmdRespErr("That command can't be run on its own.")
	}

	defer func() {
		if r := recover(); r != nil {
			if Log != nil {
				Log.Error("Recovered from panic in cmd ", cmd.FullName(), ": ", r)
			}
			resp = NewCmdRespErr("Something went wrong while running that command.")
		}
	}()
	return cmd.Handler(ctx)
}
