package main

import (
	"context"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/aihub/internal/aggregate"
	"github.com/pdiddy/aihub/internal/source"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Run one ranked search across all sources",
	Long: `Search queries every configured source concurrently, splits the result
budget across them, and prints the merged results ranked by relevance.
Failing sources are reported as warnings and skipped.

Use --save to keep the results in a YAML file and --load to print a saved
file again without calling the sources.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().String("filters", "", "comma-separated sources: "+joinIDs(source.Known))
	searchCmd.Flags().Int("max-results", 0, "total number of results (default 25)")
	searchCmd.Flags().Int("page", 1, "page number")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	searchCmd.Flags().String("save", "", "write query and results to a YAML file")
	searchCmd.Flags().String("load", "", "print results from a saved YAML file instead of searching")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")

	if path, _ := cmd.Flags().GetString("load"); path != "" {
		qf, err := aggregate.ReadQueryFile(path)
		if err != nil {
			return err
		}
		return printResponse(qf.Response(), asJSON)
	}

	if len(args) == 0 {
		return errors.New("provide a search query")
	}

	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	maxResults, _ := cmd.Flags().GetInt("max-results")
	if maxResults == 0 {
		maxResults = viper.GetInt("sources.max_results")
	}
	page, _ := cmd.Flags().GetInt("page")
	filters, _ := cmd.Flags().GetString("filters")

	reg, _, err := source.New(cfg.Sources, log)
	if err != nil {
		return err
	}
	pipeline := aggregate.NewPipeline(reg, cfg.Sources.Timeout, log)

	req := aggregate.Request{
		Query:      args[0],
		MaxResults: maxResults,
		Filters:    source.ParseFilters(filters),
		Page:       page,
	}
	resp, err := pipeline.Run(context.Background(), req)
	if err != nil {
		return err
	}

	if path, _ := cmd.Flags().GetString("save"); path != "" {
		if err := aggregate.WriteQueryFile(path, req, resp); err != nil {
			return err
		}
		log.Info().Str("path", path).Msg("saved search")
	}
	return printResponse(resp, asJSON)
}

func printResponse(resp aggregate.Response, asJSON bool) error {
	if asJSON {
		return aggregate.FormatJSON(resp, os.Stdout)
	}
	aggregate.FormatTable(resp, os.Stdout)
	return nil
}

func joinIDs(ids []source.ID) string {
	out := ""
	for i, id := range ids {
		if i > 0 {
			out += ", "
		}
		out += string(id)
	}
	return out
}
