package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Chative-core-poc-v1/intake/internal/intake/model"
	"github.com/Chative-core-poc-v1/intake/internal/intake/registry"
)

// SuggestCommand creates the registry autocomplete command
func SuggestCommand(cfg AppConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suggest <kind> <query>",
		Short: "Look up registry names",
		Long: `Print registry suggestions for a partial name.

kind is one of brokers, exchanges, companies, mutualfunds, advisers.

Examples:
  intake suggest brokers zerodha
  intake suggest mutualfunds "hdfc flexi cap"`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := registry.NewSet(registry.FileSources(cfg.Registry))
			reg.Load()
			return runSuggest(reg, args[0], strings.Join(args[1:], " "), cmd.OutOrStdout())
		},
	}
	return cmd
}

func runSuggest(reg *registry.Set, kind, query string, out io.Writer) error {
	k, err := model.ParseEntityKind(kind)
	if err != nil {
		return err
	}
	names, err := reg.Suggest(k, query)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Fprintf(out, "🔍 no %s match %q\n", k, query)
		return nil
	}
	fmt.Fprintf(out, "🔍 %d %s suggestion(s) for %q\n", len(names), k, query)
	for i, n := range names {
		fmt.Fprintf(out, "  %d. %s\n", i+1, n)
	}
	return nil
}
