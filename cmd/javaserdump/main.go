// Command javaserdump decodes a Java Object Serialization Stream and
// prints its top-level values as JSON.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/victorgawk/javaser"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var maxBlock int
	var indent bool
	var cycleLabel string

	cmd := &cobra.Command{
		Use:   "javaserdump [file]",
		Short: "Decode a Java Object Serialization Stream and print it as JSON",
		Long: "javaserdump reads a byte buffer containing a Java Object Serialization " +
			"Stream (protocol version 5) from a file argument, or from stdin when no " +
			"argument is given, and prints the decoded top-level value sequence as JSON.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, err := readInput(args)
			if err != nil {
				return err
			}

			p := javaser.NewParser(buf)
			if maxBlock > 0 {
				p.SetMaxDataBlockSize(maxBlock)
			}
			if cycleLabel != "" {
				p.SetCycleReferenceValue(cycleLabel)
			}

			values, err := p.Parse()
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			if indent {
				enc.SetIndent("", "  ")
			}
			return enc.Encode(values)
		},
	}

	cmd.Flags().IntVar(&maxBlock, "max-block", 0, "maximum size in bytes of any single block-data run (0 keeps the built-in default)")
	cmd.Flags().BoolVar(&indent, "indent", true, "pretty-print the JSON output")
	cmd.Flags().StringVar(&cycleLabel, "cycle-label", "", "value substituted for a reference to a handle still being constructed (empty keeps the default null)")

	return cmd
}

func readInput(args []string) ([]byte, error) {
	if len(args) == 1 {
		return os.ReadFile(args[0])
	}
	return io.ReadAll(os.Stdin)
}
