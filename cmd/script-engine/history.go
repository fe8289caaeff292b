// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/script-engine/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Query the run archive (list, search, show, export)",
	Long: `History manages the local SQLite archive of completed runs. Use
subcommands to list recent runs, search archived scripts with full-text
queries, print a script by run ID, or export the archive.`,
}

// --- list subcommand ---

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs, newest first",
	RunE:  runHistoryList,
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	s, err := openArchive(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	records, err := s.Recent(context.Background(), limit)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatRecords(records, jsonOutput)
}

// --- search subcommand ---

var historySearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Full-text search over archived scripts and frameworks",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runHistorySearch,
}

func runHistorySearch(cmd *cobra.Command, args []string) error {
	s, err := openArchive(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	records, err := s.Search(context.Background(), strings.Join(args, " "), limit)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatRecords(records, jsonOutput)
}

// --- show subcommand ---

var historyShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Print the full script of an archived run",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid run ID %q", args[0])
	}

	s, err := openArchive(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	script, err := s.Script(context.Background(), id)
	if err != nil {
		return err
	}
	fmt.Println(script)
	return nil
}

// --- export subcommand ---

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the run archive to YAML or JSON",
	RunE:  runHistoryExport,
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	s, err := openArchive(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	switch format {
	case "yaml", "":
		if err := s.ExportYAML(context.Background()); err != nil {
			return err
		}
		fmt.Println("Exported to index/runs.yaml")
	case "json":
		if err := s.ExportJSON(context.Background()); err != nil {
			return err
		}
		fmt.Println("Exported to index/runs.json")
	default:
		return fmt.Errorf("unknown format %q: use yaml or json", format)
	}
	return nil
}

func openArchive(cmd *cobra.Command) (*store.Store, error) {
	cfg := pipelineConfig(cmd)
	return store.Open(cfg.Output.Dir)
}

func formatRecords(records []store.RunRecord, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	if len(records) == 0 {
		fmt.Println("No runs found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-20s  %-25s  %-9s  %-7s  %s\n",
		"ID", "Timestamp", "Framework", "Sections", "Words", "Script")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))

	for _, r := range records {
		framework := r.Framework
		if len(framework) > 25 {
			framework = framework[:22] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-20s  %-25s  %4d/%-4d  %-7d  %s\n",
			r.ID, r.Timestamp, framework,
			r.SectionsGenerated, r.SectionsPlanned, r.WordCount, r.ScriptPath)
	}

	fmt.Fprintf(os.Stdout, "\n%d runs\n", len(records))
	return nil
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	historyCmd.PersistentFlags().Int("limit", 0, "maximum results (0 = default)")
	historyCmd.PersistentFlags().Bool("json", false, "output results as JSON")

	historyExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historySearchCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyExportCmd)

	rootCmd.AddCommand(historyCmd)
}
