package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rebeliceyang/lazyssms/internal/db/metadata"
	"github.com/rebeliceyang/lazyssms/internal/mirror"
)

var (
	mirrorFrom   loginFlags
	mirrorTo     loginFlags
	mirrorTables []string
	mirrorBatch  int
)

var mirrorCmd = &cobra.Command{
	Use:   "mirror",
	Short: "Copy table rows from one database to another",
	Long: `Copy the rows of whole tables from a source database into existing
tables of the same name in a destination database, in batches.

Nothing is created or truncated on the destination, and rows already
copied stay in place when a later batch fails.

Passwords come from the keyring for saved connections, or from
LAZYSSMS_FROM_PASSWORD and LAZYSSMS_TO_PASSWORD.`,
	Example: `  lazyssms mirror --from prod --from-db sales --to dev --to-db sales
  lazyssms mirror --from prod --from-db sales --to-host localhost --to-user sa --to-db sales --table dbo.orders`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if mirrorFrom.database == "" || mirrorTo.database == "" {
			return fmt.Errorf("both --from-db and --to-db are required")
		}

		env, err := setup()
		if err != nil {
			return err
		}
		defer env.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		source, err := openLogin(ctx, env, &mirrorFrom)
		if err != nil {
			return fmt.Errorf("source: %w", err)
		}
		dest, err := openLogin(ctx, env, &mirrorTo)
		if err != nil {
			source.Close()
			return fmt.Errorf("destination: %w", err)
		}

		tables := mirrorTables
		if len(tables) == 0 {
			tables, err = metadata.ListTables(ctx, source, mirrorFrom.database)
			if err != nil {
				source.Close()
				dest.Close()
				return err
			}
		}

		job := mirror.NewJob(source, dest, mirrorFrom.database, mirrorTo.database, tables, true)
		if mirrorBatch > 0 {
			job.BatchSize = mirrorBatch
		} else if env.Config.Data.MirrorBatchSize > 0 {
			job.BatchSize = env.Config.Data.MirrorBatchSize
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Mirroring %d tables from %s/%s to %s/%s\n",
			len(tables), source.Label(), mirrorFrom.database, dest.Label(), mirrorTo.database)

		current := -1
		err = job.Run(ctx, func(p mirror.Progress) {
			if p.TableIndex != current && p.Table != "" {
				current = p.TableIndex
				fmt.Fprintln(out, p.TableLine())
			}
			if p.Batches > 0 && p.Batches%10 == 0 {
				fmt.Fprintf(out, "  %s\n", p.RowsLine())
			}
		})

		p := job.Progress()
		if len(p.Skipped) > 0 {
			fmt.Fprintf(out, "Skipped (no columns): %s\n", strings.Join(p.Skipped, ", "))
		}
		if err != nil {
			fmt.Fprintf(out, "%d rows copied before the failure\n", p.TotalCopied)
			return err
		}

		fmt.Fprintf(out, "%s %d rows copied.\n", mirror.SuccessMessage, p.TotalCopied)
		return nil
	},
}

func init() {
	mirrorFrom.register(mirrorCmd, "from", "LAZYSSMS_FROM_PASSWORD")
	mirrorTo.register(mirrorCmd, "to", "LAZYSSMS_TO_PASSWORD")
	mirrorCmd.Flags().StringSliceVar(&mirrorTables, "table", nil, "schema.table to copy, repeatable (default: every table)")
	mirrorCmd.Flags().IntVar(&mirrorBatch, "batch-size", 0, "rows per insert batch (default: from config)")
}
