package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/josh-kwaku/ledger-mapping-engine/internal/domain"
	"github.com/josh-kwaku/ledger-mapping-engine/internal/repository"
	"github.com/josh-kwaku/ledger-mapping-engine/internal/service"
	"github.com/josh-kwaku/ledger-mapping-engine/internal/taxonomy"
)

func newValidateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check a taxonomy file for missing fields and duplicate items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := taxonomy.Load(opts.file)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d items ok\n", sourceName(opts.file), len(items))
			return nil
		},
	}
}

func newSyncCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Upsert the taxonomy file into the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := taxonomy.Load(opts.file)
			if err != nil {
				return err
			}

			db, err := opts.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			syncer := service.NewTaxonomySyncService(repository.NewTaxonomyRepository(db), db)
			n, err := syncer.Sync(cmd.Context(), items)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "synced %d items from %s\n", n, sourceName(opts.file))
			return nil
		},
	}
}

func newListCmd(opts *rootOptions) *cobra.Command {
	var fromFile bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the stored taxonomy in display order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if fromFile {
				items, err := taxonomy.Load(opts.file)
				if err != nil {
					return err
				}
				return printItems(cmd.OutOrStdout(), items)
			}

			db, err := opts.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			items, err := repository.NewTaxonomyRepository(db).List(cmd.Context())
			if err != nil {
				return err
			}
			return printItems(cmd.OutOrStdout(), items)
		},
	}
	cmd.Flags().BoolVar(&fromFile, "from-file", false, "list the file contents instead of the database")
	return cmd
}

func printItems(w io.Writer, items []domain.TaxonomyItem) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ORDER\tITEM\tSECTION\tSUB-SECTION\tTYPE\tCREDIT+")
	for _, it := range items {
		sub := "-"
		if it.ReportSubSection != nil {
			sub = *it.ReportSubSection
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%t\n",
			it.DisplayOrder, it.ItemName, it.ReportSection, sub, it.ReportType, it.IsCreditPositive)
	}
	return tw.Flush()
}

func sourceName(file string) string {
	if file == "" {
		return "bundled taxonomy"
	}
	return file
}
