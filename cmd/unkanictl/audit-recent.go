package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/unkani/unkani/pkg/audit"
)

// auditRecentCmd represents the audit recent command
var auditRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "Print the most recent audit records",
	Long: `Print the most recent audit records, newest first.

Example:
  unkanictl audit recent
  unkanictl audit recent -n 50 --output json`,
	Run: func(cmd *cobra.Command, args []string) {
		limit, _ := cmd.Flags().GetInt("limit")
		output, _ := cmd.Flags().GetString("output")

		cfg, err := loadConfig()
		if err != nil {
			fail("%v", err)
		}
		if cfg.AuditDatabaseURL == "" {
			fail("audit_database_url is not configured")
		}

		store, err := audit.NewStore(cfg.AuditDatabaseURL)
		if err != nil {
			fail("Failed to open audit database: %v", err)
		}
		defer func() { _ = store.Close() }()

		if err := printRecentAudit(os.Stdout, store, limit, output); err != nil {
			fail("Failed to read audit records: %v", err)
		}
	},
}

func init() {
	auditCmd.AddCommand(auditRecentCmd)
	auditRecentCmd.Flags().IntP("limit", "n", 20, "number of records to print")
	auditRecentCmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
}

func printRecentAudit(w io.Writer, store *audit.Store, limit int, output string) error {
	if limit <= 0 {
		return errors.New("limit must be positive")
	}

	messages, err := store.Recent(limit)
	if err != nil {
		return err
	}

	if output == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if messages == nil {
			messages = []audit.Message{}
		}
		return enc.Encode(messages)
	}

	for _, m := range messages {
		if _, err := fmt.Fprintf(w, "%s %s %s\n", m.Timestamp.UTC().Format(time.RFC3339), m.Msgid, m.Message); err != nil {
			return err
		}
	}
	return nil
}
