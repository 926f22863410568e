package main

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/spf13/cobra"

	"github.com/kjk/excelcsv/excelcsv"
	"github.com/kjk/excelcsv/log"
	"github.com/kjk/excelcsv/minioutil"
	"github.com/kjk/excelcsv/u"
)

func newPublishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "publish REMOTE",
		Short: "Upload the file to S3-compatible storage, brotli compressed if REMOTE ends with .br",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if flgFile == "" {
				return fmt.Errorf("must provide CSV file with --file")
			}
			mc, err := minioutil.New(minioutil.ConfigFromEnv())
			if err != nil {
				return err
			}
			remote := args[0]
			if _, err = mc.Publish(remote, flgFile); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), mc.URLForPath(remote))
			return nil
		},
	}
}

func newFetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch REMOTE",
		Short: "Download REMOTE from S3-compatible storage and replace the file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if flgFile == "" {
				return fmt.Errorf("must provide CSV file with --file")
			}
			mc, err := minioutil.New(minioutil.ConfigFromEnv())
			if err != nil {
				return err
			}
			if !mc.Exists(args[0]) {
				return fmt.Errorf("'%s' not found in bucket '%s'", args[0], mc.Bucket)
			}
			dir, err := os.MkdirTemp("", "excelcsv-fetch-")
			if err != nil {
				return err
			}
			defer os.RemoveAll(dir)
			// keep the name so that compression is detected from extension
			tmpPath := filepath.Join(dir, path.Base(args[0]))
			if err = mc.DownloadFileAtomically(tmpPath, args[0]); err != nil {
				return err
			}
			return replaceFromSnapshot(flgFile, tmpPath)
		},
	}
}

// replaceFromSnapshot decodes a possibly compressed CSV file and
// atomically replaces dst with it
func replaceFromSnapshot(dst string, src string) error {
	schema, records, err := excelcsv.ReadSnapshot(src)
	if err != nil {
		return err
	}
	if err = excelcsv.Encode(dst, schema, records); err != nil {
		return err
	}
	log.Verbosef("replaced '%s' with %d records from '%s'\n", dst, len(records), src)
	return nil
}

func newRemoteLsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remote-ls [PREFIX]",
		Short: "List published files",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mc, err := minioutil.New(minioutil.ConfigFromEnv())
			if err != nil {
				return err
			}
			prefix := ""
			if len(args) > 0 {
				prefix = args[0]
			}
			return printObjects(cmd.OutOrStdout(), mc.ListObjects(prefix))
		},
	}
}

// printObjects prints one line per object: time, size and key
func printObjects(w io.Writer, objects <-chan minio.ObjectInfo) error {
	for o := range objects {
		if o.Err != nil {
			return o.Err
		}
		fmt.Fprintf(w, "%s %10s %s\n", o.LastModified.UTC().Format("2006-01-02 15:04"), u.FormatSize(o.Size), o.Key)
	}
	return nil
}

func newRemoteRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remote-rm REMOTE",
		Short: "Delete a published file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mc, err := minioutil.New(minioutil.ConfigFromEnv())
			if err != nil {
				return err
			}
			if !mc.Exists(args[0]) {
				return fmt.Errorf("'%s' not found in bucket '%s'", args[0], mc.Bucket)
			}
			if err = mc.Remove(args[0]); err != nil {
				return err
			}
			log.Event("minio.remove", "remote", args[0])
			return nil
		},
	}
}
