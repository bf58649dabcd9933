package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// newRootCommand builds the command tree. Every subcommand opens the app
// before running; argument errors are reported as usage errors.
func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "artist-hub",
		Short: "Artist marketplace client",
		Long: `artist-hub talks to the marketplace backend: direct messages with other
artists, service projects and their threads, credits and the AI advisor.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("%w %q", errUnknownCommand, args[0])
			}
			return nil
		},
		RunE: func(*cobra.Command, []string) error {
			return errUsage
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.HasParent() || cmd.Name() == "help" {
				return nil
			}
			return a.open()
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", errUsage, err)
	})
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override LOG_LEVEL (DEBUG, INFO, WARN, ERROR)")

	root.AddCommand(
		&cobra.Command{
			Use:   "register <username> <password>",
			Short: "Create an account and sign in",
			Args:  usage(cobra.ExactArgs(2)),
			RunE:  a.runE(register),
		},
		&cobra.Command{
			Use:   "login <username> <password>",
			Short: "Sign in and keep the session token",
			Args:  usage(cobra.ExactArgs(2)),
			RunE:  a.runE(login),
		},
		&cobra.Command{
			Use:   "logout",
			Short: "Forget the session token",
			Args:  usage(cobra.NoArgs),
			RunE:  a.runE(logout),
		},
		&cobra.Command{
			Use:   "watch",
			Short: "Follow messages and projects live, type @user message to send",
			Args:  usage(cobra.NoArgs),
			RunE:  a.runE(watch),
		},
		&cobra.Command{
			Use:   "send <to> <message...>",
			Short: "Send a direct message",
			Args:  usage(cobra.MinimumNArgs(2)),
			RunE:  a.runE(send),
		},
		&cobra.Command{
			Use:   "chats",
			Short: "List conversations",
			Args:  usage(cobra.NoArgs),
			RunE:  a.runE(chats),
		},
		&cobra.Command{
			Use:   "thread <with> [older-pages]",
			Short: "Print a conversation, optionally with older pages",
			Args:  usage(cobra.RangeArgs(1, 2), countArg(1)),
			RunE:  a.runE(thread),
		},
		&cobra.Command{
			Use:   "projects",
			Short: "List projects",
			Args:  usage(cobra.NoArgs),
			RunE:  a.runE(projects),
		},
		&cobra.Command{
			Use:   "new-project <service> <name> [description...]",
			Short: "Create a project without a plan",
			Args:  usage(cobra.MinimumNArgs(2)),
			RunE:  a.runE(newProject),
		},
		&cobra.Command{
			Use:   "status <project-id> <status>",
			Short: "Change the status of a project",
			Args:  usage(cobra.ExactArgs(2)),
			RunE:  a.runE(status),
		},
		&cobra.Command{
			Use:   "note <project-id> <content...>",
			Short: "Add a message to a project thread",
			Args:  usage(cobra.MinimumNArgs(2)),
			RunE:  a.runE(note),
		},
		&cobra.Command{
			Use:   "delete <project-id>",
			Short: "Delete a project",
			Args:  usage(cobra.ExactArgs(1)),
			RunE:  a.runE(deleteProject),
		},
		&cobra.Command{
			Use:   "plans [service]",
			Short: "List service plans",
			Args:  usage(cobra.MaximumNArgs(1)),
			RunE:  a.runE(plans),
		},
		&cobra.Command{
			Use:   "purchase <service> <plan> [key=value...]",
			Short: "Buy a plan and open its project",
			Args:  usage(cobra.MinimumNArgs(2), pairArgs(2)),
			RunE:  a.runE(purchase),
		},
		&cobra.Command{
			Use:   "credits",
			Short: "Show the balance and transactions",
			Args:  usage(cobra.NoArgs),
			RunE:  a.runE(balance),
		},
		&cobra.Command{
			Use:   "buy-credits <amount>",
			Short: "Add credits to the balance",
			Args:  usage(cobra.ExactArgs(1), countArg(0)),
			RunE:  a.runE(buyCredits),
		},
		&cobra.Command{
			Use:   "advise <prompt...>",
			Short: "Ask the AI advisor for career suggestions",
			Args:  usage(cobra.MinimumNArgs(1)),
			RunE:  a.runE(advise),
		},
		&cobra.Command{
			Use:   "artwork <prompt...>",
			Short: "Ask the AI advisor for a cover artwork brief",
			Args:  usage(cobra.MinimumNArgs(1)),
			RunE:  a.runE(artwork),
		},
		&cobra.Command{
			Use:   "inspect [prefix]",
			Short: "Dump local database keys",
			Args:  usage(cobra.MaximumNArgs(1)),
			RunE:  a.runE(inspect),
		},
	)
	for _, cmd := range root.Commands() {
		cmd.DisableFlagsInUseLine = true
	}
	return root
}

func (a *app) runE(handler func(context.Context, *app, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return handler(cmd.Context(), a, args)
	}
}

// usage marks argument errors so run answers them with the usage line.
func usage(validators ...cobra.PositionalArgs) cobra.PositionalArgs {
	check := cobra.MatchAll(validators...)
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return fmt.Errorf("%w: %w", errUsage, err)
		}
		return nil
	}
}

// countArg requires the optional argument at index to be a non-negative integer.
func countArg(index int) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if index >= len(args) {
			return nil
		}
		if n, err := strconv.Atoi(args[index]); err != nil || n < 0 {
			return fmt.Errorf("%q is not a count", args[index])
		}
		return nil
	}
}

// pairArgs requires every argument from position from onwards to be key=value.
func pairArgs(from int) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		for i := from; i < len(args); i++ {
			if !strings.Contains(args[i], "=") {
				return fmt.Errorf("%q is not key=value", args[i])
			}
		}
		return nil
	}
}
