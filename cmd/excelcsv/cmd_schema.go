package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/toon-format/toon-go"

	"github.com/kjk/excelcsv/excelcsv"
)

func newFieldsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fields",
		Short: "Print field names, one per line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore()
			if err != nil {
				return err
			}
			for _, f := range s.Schema() {
				fmt.Fprintln(cmd.OutOrStdout(), f)
			}
			return nil
		},
	}
}

func newCatCmd() *cobra.Command {
	var asToon bool
	cmd := &cobra.Command{
		Use:   "cat",
		Short: "Print all records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore()
			if err != nil {
				return err
			}
			records, err := s.Read()
			if err != nil {
				return err
			}
			schema := s.Schema()
			if !asToon {
				return excelcsv.EncodeWriter(cmd.OutOrStdout(), schema, records)
			}
			rows := make([][]string, 0, len(records))
			for _, r := range records {
				row, err := r.Values(schema)
				if err != nil {
					return err
				}
				rows = append(rows, row)
			}
			d, err := toon.Marshal(map[string]any{
				"fields": []string(schema),
				"rows":   rows,
			})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(d))
			return err
		},
	}
	cmd.Flags().BoolVar(&asToon, "toon", false, "print in toon format")
	return cmd
}

func newAddFieldsCmd() *cobra.Command {
	var prepend bool
	var after string
	cmd := &cobra.Command{
		Use:   "add-fields NAME...",
		Short: "Add fields, only the header is rewritten",
		Long: `Add fields at the end (default), at the beginning (--prepend) or after
a given field (--after). Data rows are not changed, so values of existing
rows are read under the new header by position.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if prepend && after != "" {
				return fmt.Errorf("--prepend and --after can't be used together")
			}
			s, err := openStore()
			if err != nil {
				return err
			}
			switch {
			case prepend:
				err = s.PrependFields(args...)
			case after != "":
				err = s.InsertFieldsAfter(after, args...)
			default:
				err = s.AppendFields(args...)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s.Schema())
			return nil
		},
	}
	cmd.Flags().BoolVar(&prepend, "prepend", false, "add fields at the beginning")
	cmd.Flags().StringVar(&after, "after", "", "add fields after this field")
	return cmd
}

func newRenameFieldCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename-field OLD NEW",
		Short: "Rename a field, only the header is rewritten",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore()
			if err != nil {
				return err
			}
			if err = s.RenameField(args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s.Schema())
			return nil
		},
	}
}

func newRemoveFieldCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "remove-field NAME",
		Short: "Remove a field from the header and all rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore()
			if err != nil {
				return err
			}
			if err = s.RemoveField(args[0], outputOpts(out)...); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s.Schema())
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "write result to this file instead")
	return cmd
}

func newReorderCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "reorder NAME...",
		Short: "Change order of fields, all fields must be listed",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore()
			if err != nil {
				return err
			}
			if err = s.ReorderFields(excelcsv.Schema(args), outputOpts(out)...); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s.Schema())
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "write result to this file instead")
	return cmd
}

func outputOpts(out string) []excelcsv.Option {
	if out == "" {
		return nil
	}
	return []excelcsv.Option{excelcsv.OutputPath(out)}
}
