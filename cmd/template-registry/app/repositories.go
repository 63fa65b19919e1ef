package app

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/stacklok/template-registry-server/internal/repository"
)

func newRepositoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "repositories",
		Aliases: []string{"repos"},
		Short:   "List the persisted template repositories",
		Long: `List the template repositories in the repository list file named by the
configuration. The server does not need to be running.`,
		RunE: runRepositories,
	}
	cmd.Flags().String("format", "table", "Output format (table or json)")
	return cmd
}

func runRepositories(cmd *cobra.Command, _ []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("error retrieving format flag: %w", err)
	}
	if format != "table" && format != "json" {
		return fmt.Errorf("unsupported format %q", format)
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	var opts []repository.StoreOption
	if !cfg.ShouldSeedDefaults() {
		opts = append(opts, repository.WithSeed(nil))
	}
	store := repository.NewStore(repository.NewFileStorage(cfg.GetRepositoryFilePath()), opts...)

	repos, err := store.List(cmd.Context())
	if err != nil {
		return err
	}

	if format == "json" {
		output, err := json.MarshalIndent(repos, "", "  ")
		if err != nil {
			return fmt.Errorf("error formatting repositories as JSON: %w", err)
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(output))
		return err
	}
	return writeRepositoryTable(cmd.OutOrStdout(), repos)
}

func writeRepositoryTable(w io.Writer, repos []repository.Repository) error {
	table := tablewriter.NewWriter(w)
	table.Header("URL", "Enabled", "Protected", "Styles", "Description")
	for _, r := range repos {
		row := []string{
			r.URL,
			strconv.FormatBool(r.IsEnabled()),
			strconv.FormatBool(r.Protected),
			strings.Join(r.ProjectStyles, ","),
			r.Description,
		}
		if err := table.Append(row); err != nil {
			return fmt.Errorf("failed to render repository table: %w", err)
		}
	}
	return table.Render()
}
