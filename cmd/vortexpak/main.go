// Command vortexpak is a CLI front end over pkg/pak: list, inspect, and
// extract Unreal Engine PAK archives.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/insomnious/vortexpak/internal/extract"
	"github.com/insomnious/vortexpak/internal/humanize"
	"github.com/insomnious/vortexpak/internal/pakerr"
	"github.com/insomnious/vortexpak/internal/vlog"
	"github.com/insomnious/vortexpak/pkg/pak"
)

var rootCmd = &cobra.Command{
	Use:   "vortexpak",
	Short: "Read and extract Unreal Engine PAK archives",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		if verbose {
			h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{}
					}
					return a
				},
			})
			vlog.SetLogger(slog.New(h))
		}
		return nil
	},
}

var infoCmd = &cobra.Command{
	Use:   "info <archive>",
	Short: "Print trailer and index summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := pak.Open(args[0], pak.DefaultSettings())
		if err != nil {
			return err
		}
		defer a.Close()

		entries := a.Entries()
		var totalUncompressed int64
		for _, e := range entries {
			totalUncompressed += e.UncompressedSize
		}

		fmt.Printf("version:     %d\n", a.Version())
		fmt.Printf("mount point: %s\n", a.MountPoint())
		fmt.Printf("entries:     %s\n", humanize.Count(int64(len(entries))))
		fmt.Printf("total size:  %s\n", humanize.FileSize(totalUncompressed, true))
		return nil
	},
}

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list <archive>",
	Short: "List every file contained in the archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := pak.Open(args[0], pak.DefaultSettings())
		if err != nil {
			return err
		}
		defer a.Close()

		entries := a.Entries()
		if listJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(entries)
		}

		for _, e := range entries {
			fmt.Printf("%12s  %12s  %-8s  %s\n",
				humanize.FileSize(e.CompressedSize, false),
				humanize.FileSize(e.UncompressedSize, false),
				e.CompressionMethod, e.Path)
		}
		return nil
	},
}

var (
	extractOutputRoot string
	extractFile       string
)

var extractCmd = &cobra.Command{
	Use:   "extract <archive>",
	Short: "Extract the archive (or a single --file) to --out",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := pak.Open(args[0], pak.DefaultSettings())
		if err != nil {
			return err
		}
		defer a.Close()

		if extractFile != "" {
			rel := extract.NormalizePath(extractFile, "", "")
			f, err := extract.CreateSink(extractOutputRoot, rel)
			if err != nil {
				return err
			}
			defer f.Close()
			return a.Extract(context.Background(), extractFile, f)
		}

		results := a.ExtractAll(context.Background(), extractOutputRoot)
		failed := 0
		for _, r := range results {
			if r.Err != nil {
				failed++
				fmt.Fprintf(os.Stderr, "%s: %v\n", r.Path, r.Err)
			}
		}
		if failed > 0 {
			return extractPartialFailure{count: failed}
		}
		return nil
	},
}

// extractPartialFailure maps to exit code 3 without reusing a pakerr.Kind,
// since the failure here is a count across many files, not a single
// decode error.
type extractPartialFailure struct{ count int }

func (e extractPartialFailure) Error() string {
	return fmt.Sprintf("%d file(s) failed to extract", e.count)
}

func init() {
	rootCmd.PersistentFlags().Bool("verbose", false, "log decode and extraction events to stderr")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "print entries as JSON")
	extractCmd.Flags().StringVar(&extractOutputRoot, "out", ".", "directory to extract into")
	extractCmd.Flags().StringVar(&extractFile, "file", "", "extract only this entry's logical path")
	rootCmd.AddCommand(infoCmd, listCmd, extractCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}

func exitCodeFor(err error) int {
	if _, ok := err.(extractPartialFailure); ok {
		return 3
	}
	kind := pakerr.KindOf(err)
	if kind == pakerr.KindUnknown {
		return 1
	}
	return pakerr.ExitCode(kind)
}
