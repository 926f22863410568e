package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/kjk/excelcsv/excelcsv"
	"github.com/kjk/excelcsv/log"
)

var (
	flgFile    string
	flgVerbose bool
	flgLogDir  string
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "excelcsv",
		Short: "Inspect and evolve Excel-compatible CSV files",
		Long: `excelcsv reads and writes CSV files with a header row in the dialect
Excel understands: UTF-8 with byte order marker, CRLF line endings.
Adding or renaming fields only rewrites the header, data rows are not touched.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// S3 credentials for publish / fetch can come from .env
			_ = godotenv.Load()
			log.Out = os.Stderr
			log.Verbose = flgVerbose
			if flgLogDir == "" {
				flgLogDir = os.Getenv("EXCELCSV_LOG_DIR")
			}
			if flgLogDir != "" {
				log.Init(&log.Config{Dir: flgLogDir})
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			log.Close()
		},
	}
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flgFile, "file", "f", "", "path of the CSV file")
	pf.BoolVarP(&flgVerbose, "verbose", "v", false, "verbose logging")
	pf.StringVar(&flgLogDir, "log-dir", "", "directory for logs and events (default $EXCELCSV_LOG_DIR)")

	rootCmd.AddCommand(
		newFieldsCmd(),
		newCatCmd(),
		newAddFieldsCmd(),
		newRenameFieldCmd(),
		newRemoveFieldCmd(),
		newReorderCmd(),
		newConvertChoiceCmd(),
		newFilterCmd(),
		newSnapshotCmd(),
		newHistoryCmd(),
		newPublishCmd(),
		newFetchCmd(),
		newRemoteLsCmd(),
		newRemoteRmCmd(),
	)
	return rootCmd
}

// openStore opens the store given with --file
func openStore() (*excelcsv.Store, error) {
	if flgFile == "" {
		return nil, fmt.Errorf("must provide CSV file with --file")
	}
	return excelcsv.Open(flgFile)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
