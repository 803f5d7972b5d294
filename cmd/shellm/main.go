// Command shellm turns a natural-language task description into a shell
// command via an OpenAI-compatible chat-completions API, then prints a
// best-effort safety assessment of the result. It never executes the command.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"shellm"
	"shellm/llm"
)

// Version is set at build time via -ldflags.
var Version = "0.1.0"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shellm <description>",
		Short: "Convert natural language to shell commands",
		Long: `shellm converts a natural language description into a shell command
using a chat-completion API, then prints a short safety assessment of it.
The command is only printed, never executed.`,
		Example: `  shellm "list all python files"
  shellm "find files larger than 100MB"
  shellm "show disk usage for current directory"`,
		Args:          cobra.ExactArgs(1),
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}
	cmd.SetVersionTemplate("shellm {{.Version}}\n")
	cmd.Flags().BoolP("version", "v", false, "print version and exit")
	return cmd
}

// run drives the whole flow: config, prompts, generate, assess. It returns an
// error only for fatal cases; a failed assessment degrades to a sentinel line
// and still exits 0.
func run(cmd *cobra.Command, args []string) error {
	cfg, err := shellm.LoadOrCreate(cmd.InOrStdin(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if err := shellm.Validate(cfg, shellm.ConfigPath()); err != nil {
		return err
	}

	prompts := shellm.LoadPrompts()

	client, err := llm.NewClient(cfg.API, cfg.Network)
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	command, err := client.GenerateCommand(ctx, prompts.SystemPrompt, args[0])
	if err != nil {
		return fmt.Errorf("failed to generate command: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), command)

	assessment := client.AssessCommand(ctx, prompts.Description(), command)
	fmt.Fprintln(cmd.OutOrStdout(), assessment)

	return nil
}

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if err := newRootCmd().Execute(); err != nil {
		slog.Error("shellm failed", "error", err)
		os.Exit(1)
	}
}
