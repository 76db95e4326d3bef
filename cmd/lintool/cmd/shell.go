package cmd

import (
	"context"
	"fmt"

	"github.com/abiosoft/ishell"
	"github.com/roffe/golin"
	"github.com/spf13/cobra"
)

// linShell is the state shared by the interactive shell commands
type linShell struct {
	ctx     context.Context
	m       *golin.Master
	version golin.Version
}

const linShellKey = "$lin"

func linShellFrom(c *ishell.Context) *linShell {
	return c.Get(linShellKey).(*linShell)
}

func (s *linShell) prompt() string {
	return fmt.Sprintf("%s %s > ", s.m.Name(), s.version)
}

func (s *linShell) setVersion(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: version <1|2>")
	}
	switch args[0] {
	case "1":
		s.version = golin.V1
	case "2":
		s.version = golin.V2
	default:
		return fmt.Errorf("invalid LIN version %q", args[0])
	}
	return nil
}

var shellCmds = []*ishell.Cmd{
	{
		Name:    "req",
		Aliases: []string{"r"},
		Help:    "ID [DATA...] send master request",
		Func: func(c *ishell.Context) {
			s := linShellFrom(c)
			f, err := sendRequest(s.ctx, s.m, s.version, c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			c.Println(f.ColorString())
		},
	},
	{
		Name:    "resp",
		Aliases: []string{"s"},
		Help:    "ID N poll slave response",
		Func: func(c *ishell.Context) {
			s := linShellFrom(c)
			f, err := receiveResponse(s.ctx, s.m, s.version, c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			c.Println(f.ColorString())
		},
	},
	{
		Name: "version",
		Help: "1|2 select LIN version",
		Func: func(c *ishell.Context) {
			s := linShellFrom(c)
			if err := s.setVersion(c.Args); err != nil {
				c.Err(err)
				return
			}
			c.SetPrompt(s.prompt())
		},
	},
	{
		Name: "stats",
		Help: "print frame statistics",
		Func: func(c *ishell.Context) {
			st := linShellFrom(c).m.Stats()
			c.Println(st.String())
		},
	},
	{
		Name: "state",
		Help: "print state and latched errors",
		Func: func(c *ishell.Context) {
			m := linShellFrom(c).m
			c.Printf("%s %s\n", m.State(), m.Error())
		},
	},
	{
		Name: "pid",
		Help: "ID print protected id",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Err(fmt.Errorf("usage: pid <id>"))
				return
			}
			id, err := parseID(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			c.Printf("0x%02X -> 0x%02X\n", id, golin.ProtectedID(id))
		},
	},
}

var shellCmd = &cobra.Command{
	Use:   "shell [command...]",
	Short: "interactive LIN shell",
	Long:  `Open the bus once and send frames interactively, or run a single shell command`,
	RunE: func(cmd *cobra.Command, args []string) error {
		version, err := getVersion(cmd)
		if err != nil {
			return err
		}
		m, err := initMaster(cmd)
		if err != nil {
			return err
		}
		defer m.Close()

		s := &linShell{ctx: cmd.Context(), m: m, version: version}
		sh := ishell.New()
		sh.Set(linShellKey, s)
		sh.SetPrompt(s.prompt())
		for _, c := range shellCmds {
			sh.AddCmd(c)
		}
		if len(args) > 0 {
			return sh.Process(args...)
		}
		go func() {
			<-cmd.Context().Done()
			sh.Close()
		}()
		sh.Run()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(shellCmd)
}
