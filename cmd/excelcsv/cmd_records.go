package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kjk/excelcsv/excelcsv"
	"github.com/kjk/excelcsv/log"
	"github.com/kjk/excelcsv/u"
)

func newConvertChoiceCmd() *cobra.Command {
	opts := excelcsv.DefaultChoiceOptions()
	cmd := &cobra.Command{
		Use:   "convert-choice FIELD",
		Short: "Split a multiple choice field into Y/N fields, one per choice",
		Long: `Adds a field for every choice right after FIELD. A new field is Y if
the choice is one of the comma-separated values of FIELD, N otherwise.
If FIELD is "No data", new fields are empty.
Choices are collected from the data unless given with --choice.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore()
			if err != nil {
				return err
			}
			if len(opts.Choices) == 0 {
				opts.Choices = nil
			}
			if len(opts.NewFields) == 0 {
				opts.NewFields = nil
			}
			if err = s.ConvertChoiceField(args[0], opts); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s.Schema())
			return nil
		},
	}
	f := cmd.Flags()
	f.StringArrayVar(&opts.Choices, "choice", nil, "a possible choice, can be repeated")
	f.StringArrayVar(&opts.NewFields, "name", nil, "name of the field for the choice at the same position, can be repeated")
	f.StringVar(&opts.Delimiter, "delimiter", opts.Delimiter, "separator of choices")
	f.StringVar(&opts.Checked, "checked", opts.Checked, "value for a picked choice")
	f.StringVar(&opts.Unchecked, "unchecked", opts.Unchecked, `value for a choice not picked, can be ""`)
	f.StringVar(&opts.NullMarker, "null", opts.NullMarker, "value meaning there is no data")
	return cmd
}

// parseWhere parses field=v1|v2 conditions
func parseWhere(conds []string) (map[string][]string, error) {
	res := map[string][]string{}
	for _, c := range conds {
		field, values, ok := strings.Cut(c, "=")
		if !ok || field == "" {
			return nil, fmt.Errorf("invalid condition '%s', should be field=value", c)
		}
		res[field] = append(res[field], strings.Split(values, "|")...)
	}
	return res, nil
}

func newFilterCmd() *cobra.Command {
	var where []string
	var out string
	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Keep only records matching all conditions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			want, err := parseWhere(where)
			if err != nil {
				return err
			}
			s, err := openStore()
			if err != nil {
				return err
			}
			for field := range want {
				if !s.Schema().Has(field) {
					return fmt.Errorf("filter on '%s': %w", field, excelcsv.ErrFieldNotFound)
				}
			}
			return s.Filter(excelcsv.MatchesFields(want), outputOpts(out)...)
		},
	}
	cmd.Flags().StringArrayVar(&where, "where", nil, "condition field=v1|v2, can be repeated")
	cmd.Flags().StringVarP(&out, "output", "o", "", "write result to this file instead")
	return cmd
}

func newSnapshotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot DST",
		Short: "Copy the file, compressed based on DST extension (.gz, .zst, .br)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore()
			if err != nil {
				return err
			}
			if err = s.Snapshot(args[0]); err != nil {
				return err
			}
			size, snapSize := u.FileSize(s.Path()), u.FileSize(args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s", args[0], u.FormatSize(snapSize))
			if size > 0 && size != snapSize {
				fmt.Fprintf(cmd.OutOrStdout(), " (%.1f%% of %s)", u.Percent(size, snapSize), u.FormatSize(size))
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}
}

func newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Print changes recorded in the events log of --log-dir",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flgLogDir == "" {
				return fmt.Errorf("must provide --log-dir")
			}
			events, err := log.ReadEvents(flgLogDir)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, e := range events {
				data := strings.ReplaceAll(e.Data, "\n", " ")
				fmt.Fprintf(w, "%s %s %s\n", e.Timestamp.Format("2006-01-02 15:04:05"), e.Name, data)
			}
			return nil
		},
	}
}
