package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/jprybylski/batchrun/internal/core"
	"github.com/jprybylski/batchrun/internal/editor"
	"github.com/jprybylski/batchrun/internal/handlers/command"
	"github.com/jprybylski/batchrun/internal/prompt"
	"github.com/jprybylski/batchrun/internal/resolve"
	"github.com/jprybylski/batchrun/internal/runtime"
	"github.com/jprybylski/batchrun/internal/uri"
)

// app holds the global flags shared by every subcommand.
type app struct {
	cfgPath     string
	cfgSet      bool
	historyPath string
	active      string
	verbose     bool

	logger *log.Logger
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "batchrun",
		Short: "Run the script an editor points at",
		Long: `batchrun - run batch and shell scripts from an editor

ARG is optional and may be a URI, a path, or the JSON argument of an editor
command (a serialized URI, {"resourceUri": ...}, or {"original": ...,
"modified": ...} from a diff view). Without ARG the editor's active document
is used (--active, $BATCHRUN_ACTIVE_FILE, or the configured state file).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			a.cfgSet = cmd.Flags().Changed("config")
			if a.verbose {
				a.logger.SetLevel(log.DebugLevel)
			}
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})

	root.PersistentFlags().StringVar(&a.cfgPath, "config", ".batchrun.yaml", "path to config YAML")
	root.PersistentFlags().StringVar(&a.historyPath, "history", "", "path to run history YAML (default from config)")
	root.PersistentFlags().StringVar(&a.active, "active", "", "URI or path of the editor's active document")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		a.newCommandCmd("run-file", core.CmdRunFile, "Run the file without arguments"),
		a.newCommandCmd("run-file-with-args", core.CmdRunFileWithArgs, "Prompt for arguments, then run the file"),
		a.newCommandCmd("run-file-elevated", core.CmdRunFileElevated, "Run the file with administrator rights"),
		a.newExecCmd(),
	)
	return root
}

func (a *app) newCommandCmd(use, commandID, short string) *cobra.Command {
	var argsLine string
	cmd := &cobra.Command{
		Use:   use + " [ARG]",
		Short: short,
		Args:  maxOneArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			var preset *string
			if cmd.Flags().Changed("args") {
				preset = &argsLine
			}
			return a.invoke(cmd.Context(), commandID, firstArg(args), preset)
		},
	}
	if commandID == core.CmdRunFileWithArgs {
		cmd.Flags().StringVar(&argsLine, "args", "", "argument line to use instead of prompting")
	}
	return cmd
}

func (a *app) newExecCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exec COMMAND-ID [ARG]",
		Short: "Dispatch an editor command ID",
		Long: fmt.Sprintf("Dispatch an editor command ID (%s).",
			strings.Join([]string{core.CmdRunFile, core.CmdRunFileWithArgs, core.CmdRunFileElevated}, ", ")),
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) < 1 || len(args) > 2 {
				return usageError{fmt.Errorf("accepts a command ID and an optional argument, received %d args", len(args))}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.invoke(cmd.Context(), args[0], firstArg(args[1:]), nil)
		},
	}
}

// invoke converts the raw argument once, builds the service and runs one
// command.
func (a *app) invoke(ctx context.Context, commandID, rawArg string, argsLine *string) error {
	arg, err := resolve.ParseArgument(rawArg)
	if err != nil {
		return usageError{err}
	}
	svc, err := a.service(argsLine)
	if err != nil {
		return err
	}
	ok, err := svc.Execute(ctx, commandID, arg)
	if err != nil {
		return err
	}
	if ok {
		a.logger.Debug("[OK  ] " + commandID)
	}
	return nil
}

func (a *app) service(argsLine *string) (*core.Service, error) {
	cfg, err := core.LoadConfig(a.cfgPath, a.cfgSet)
	if err != nil {
		return nil, usageError{fmt.Errorf("config error: %w", err)}
	}
	if a.historyPath != "" {
		cfg.Defaults.History = a.historyPath
	}
	command.RegisterSchemes(cfg.Schemes)

	var active resolve.ContextProvider
	if a.active != "" {
		id, err := uri.Parse(a.active)
		if err != nil {
			return nil, usageError{fmt.Errorf("--active: %w", err)}
		}
		active = editor.Fixed(id)
	} else {
		active = editor.Chain(editor.Env(cfg.Defaults.ActiveEnv), editor.StateFile(cfg.Defaults.ActiveState))
	}

	var p core.Prompter = prompt.New(func(id uri.ID) []string {
		return core.LastArgs(cfg.Defaults.History, id)
	})
	if argsLine != nil {
		p = prompt.Static(*argsLine)
	}

	launcher := runtime.NewLauncher(cfg.Interpreters, a.logger)
	return &core.Service{
		Active:   active,
		Prompter: p,
		Executor: core.NewFileExecutor(cfg, launcher, a.logger),
		Logger:   a.logger,
	}, nil
}

func maxOneArg(_ *cobra.Command, args []string) error {
	if len(args) > 1 {
		return usageError{fmt.Errorf("accepts at most 1 arg, received %d", len(args))}
	}
	return nil
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
