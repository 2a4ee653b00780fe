package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/community-network/labkeeper/internal/archive"
	"github.com/community-network/labkeeper/internal/cmlapi"
	"github.com/community-network/labkeeper/internal/output"
)

var (
	outputFormat string
	noHeaders    bool
)

var labsCmd = &cobra.Command{
	Use:   "labs",
	Short: "List all labs on the controller",
	Long: `List every lab on the controller, including labs owned by other
users, with node counts and local archive status.

Output formats:
  -o table  Human-readable table (default)
  -o yaml   YAML listing
  -o json   JSON listing`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := output.ValidateFormat(outputFormat); err != nil {
			return err
		}

		cfg, logger, err := setup()
		if err != nil {
			return err
		}

		client := cmlapi.New(cfg.APIBaseURL, logger)
		store := archive.NewStore(cfg.ArchiveDir, logger)
		ctx := cmd.Context()

		token, status, err := client.Authenticate(ctx, cfg.AdminUsername, cfg.AdminPassword)
		if err != nil {
			return fmt.Errorf("failed to reach the controller: %w", err)
		}
		if status != http.StatusOK || token == "" {
			return fmt.Errorf("authentication failed with status %d", status)
		}

		labIDs, status, err := client.ListLabs(ctx, token)
		if err != nil {
			return fmt.Errorf("failed to list labs: %w", err)
		}
		if status != http.StatusOK {
			return fmt.Errorf("failed to list labs: status %d", status)
		}

		labs := make([]output.LabSummary, 0, len(labIDs))
		for _, id := range labIDs {
			summary := output.LabSummary{ID: id}

			// Node counts are best-effort; a lab that refuses enumeration
			// still shows up in the listing.
			if nodes, status, err := client.ListNodes(ctx, token, id); err == nil && status == http.StatusOK {
				summary.Nodes = len(nodes)
			}

			if data, err := os.ReadFile(store.Path(id)); err == nil {
				summary.Archived = true
				summary.Title = archive.Title(string(data))
			}

			labs = append(labs, summary)
		}

		formatter, err := output.NewFormatter(output.Options{
			Format:    output.Format(outputFormat),
			NoHeaders: noHeaders,
		})
		if err != nil {
			return err
		}

		result, err := formatter.FormatLabs(labs)
		if err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}

		fmt.Print(result)
		return nil
	},
}

func init() {
	labsCmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "output format (table, yaml, json)")
	labsCmd.Flags().BoolVar(&noHeaders, "no-headers", false, "omit the header row in table output")
}
