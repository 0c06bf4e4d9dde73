package cli

import (
	"github.com/spf13/cobra"
)

// RootCommand assembles the intake command tree around cfg.
func RootCommand(cfg AppConfig) *cobra.Command {
	root := &cobra.Command{
		Use:   "intake",
		Short: "Grievance intake assistant",
		Long: `Conversational grievance intake for securities-market complaints.

The assistant classifies a free-text complaint, resolves the regulated
entity it is about against the configured registries, collects and verifies
the complainant's details and files a complaint reference.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		ServeCommand(cfg),
		ChatCommand(cfg),
		SuggestCommand(cfg),
		MigrateCommand(cfg),
		ExportCommand(cfg),
	)
	return root
}
