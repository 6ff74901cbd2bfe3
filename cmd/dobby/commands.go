package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/simplcli/dobby/internal/agent"
	"github.com/simplcli/dobby/internal/config"
	"github.com/simplcli/dobby/internal/session"
)

func newNewCommand(configPath *string) *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Start a new interactive session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(*configPath)
			if err != nil {
				return err
			}
			defer a.close()

			s, err := a.manager.StartNew(agent.MemoryMode(mode))
			if err != nil {
				return &startupError{cause: err}
			}
			fmt.Printf("Session %s started (%s memory). Type !quit to exit.\n", s.ID, s.Mode)
			return runREPL(cmd.Context(), a, os.Stdin)
		},
	}
	cmd.Flags().StringVar(&mode, "memory", string(agent.MemoryLinear),
		"memory mode: linear (this session only) or cross (recall across sessions)")
	return cmd
}

func newResumeCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "resume <session-id>",
		Short: "Resume a previously started session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(*configPath)
			if err != nil {
				return err
			}
			defer a.close()

			s, err := a.manager.Resume(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Session %s resumed (%s memory, %d turns). Type !quit to exit.\n",
				s.ID, s.Mode, len(s.Turns))
			return runREPL(cmd.Context(), a, os.Stdin)
		},
	}
}

func newListCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Listing needs only the config and the file store, not the
			// full stack; a missing API key must not block it.
			_ = godotenv.Load()
			cfg, err := config.Load(*configPath)
			if err != nil {
				return &startupError{cause: err}
			}
			files, err := session.NewFileStore(cfg.SessionsDir())
			if err != nil {
				return &startupError{cause: err}
			}

			ids, err := files.List()
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				fmt.Println("No stored sessions.")
				return nil
			}
			for _, id := range ids {
				s, err := files.Load(id)
				if err != nil {
					fmt.Printf("%s  (unreadable: %v)\n", id, err)
					continue
				}
				fmt.Printf("%s  %-6s  %d turns\n", s.ID, s.Mode, len(s.Turns))
			}
			return nil
		},
	}
}
