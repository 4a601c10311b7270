package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/QCWLTF/consensus-Ai/discuss/consensus"
	"github.com/QCWLTF/consensus-Ai/discuss/store"
)

func newSessionsCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "sessions [sessionID]",
		Short: "List or show archived discussion results",
		Long: "Without arguments, lists archived sessions newest first. With a session ID,\n" +
			"prints that session's full result as JSON.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			archive, err := openStore(dbPath)
			if err != nil {
				return err
			}
			if archive == nil {
				return errors.New("no archive configured: pass --db or set MYSQL_DSN")
			}
			defer archive.Close()

			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				ids, err := archive.ListSessions(ctx)
				if err != nil {
					return err
				}
				if len(ids) == 0 {
					fmt.Fprintln(out, "No archived sessions.")
					return nil
				}
				for _, id := range ids {
					fmt.Fprintln(out, id)
				}
				return nil
			}

			rec, err := archive.LoadResult(ctx, args[0])
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("session %s not found", args[0])
			}
			if err != nil {
				return err
			}

			var result consensus.Result
			if err := json.Unmarshal(rec.Result, &result); err != nil {
				return fmt.Errorf("corrupt archived result for session %s: %w", args[0], err)
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(&result)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite file the results were archived in (MYSQL_DSN env overrides with MySQL)")
	return cmd
}
