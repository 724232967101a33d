// Command pipelines runs one pipeline operation (copy, delete, share-dataset-version) per
// invocation, following the source's click-per-operation entry point convention: a process
// is spawned fresh for each job rather than serving a long-running daemon.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pipelines",
	Short: "Data-pipeline workers for copy, delete and dataset-share jobs",
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "path to an optional config file overlay")
	rootCmd.AddCommand(copyCmd, deleteCmd, shareCmd)
}
