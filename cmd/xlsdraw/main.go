// Package main provides the CLI entry point for xlsdraw-go.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ukaji3/xlsdraw-go/pkg/xlsdraw"
	"github.com/ukaji3/xlsdraw-go/pkg/xlsdraw/models"
	"github.com/ukaji3/xlsdraw-go/pkg/xlsdraw/output"
)

var warnColor = color.New(color.FgYellow, color.Bold)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	s := &settings{}
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "xlsdraw [input.xls...]",
		Short: "Inspect the drawing layer of legacy Excel files",
		Long: `xlsdraw-go reads the Escher drawing records of BIFF8 (.xls) workbooks
and reports drawings, shapes and their OBJ/TXO records as JSON or msgpack.`,
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				if err := applyConfig(configPath, s, cmd.Flags()); err != nil {
					return err
				}
			}
			return run(cmd.Context(), *s, args, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&s.Output, "output", "o", "", "Output file path, or directory with several inputs (default: stdout)")
	flags.StringVar(&s.Format, "format", formatJSON, "Output format: json, msgpack")
	flags.BoolVar(&s.Pretty, "pretty", false, "Pretty-print JSON output")
	flags.StringVar(&s.Xlsx, "xlsx", "", "Also write a summary workbook (.xlsx) to this path")
	flags.BoolVar(&s.Verify, "verify", false, "Re-serialize every drawing and check it parses back unchanged")
	flags.StringVar(&s.Placement, "placement", "appended", "Descriptor placement used by --verify: appended, interleaved")
	flags.BoolVar(&s.Strict, "strict", false, "Fail on the first drawing that does not parse")
	flags.StringVar(&s.Range, "range", "", "Only report shapes anchored over this cell range, e.g. A1:F20")
	flags.IntVarP(&s.Jobs, "jobs", "j", 0, "Number of files inspected in parallel (default: GOMAXPROCS)")
	flags.StringVar(&configPath, "config", "", "TOML configuration file")

	return rootCmd
}

func run(ctx context.Context, s settings, inputs []string, stdout, stderr io.Writer) error {
	opts, err := s.validate()
	if err != nil {
		return err
	}

	books := make([]*models.WorkbookDrawings, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.jobs(len(inputs)))
	for i, path := range inputs {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			wb, err := xlsdraw.Inspect(path, opts)
			if err != nil {
				return fmt.Errorf("%s: inspection failed: %w", path, err)
			}
			books[i] = wb
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, wb := range books {
		warn(stderr, wb)
	}

	if err := writeReports(s, inputs, books, stdout); err != nil {
		return err
	}
	if s.Xlsx != "" {
		if err := output.WriteWorkbook(s.Xlsx, books...); err != nil {
			return fmt.Errorf("failed to write summary workbook: %w", err)
		}
	}
	return nil
}

// warn prints the errors recorded in a report.
func warn(w io.Writer, wb *models.WorkbookDrawings) {
	if wb.Group != nil && wb.Group.Error != "" {
		warnColor.Fprintf(w, "warning: %s: drawing group: %s\n", wb.BookName, wb.Group.Error)
	}
	for _, sheet := range wb.Sheets {
		if sheet.Error != "" {
			warnColor.Fprintf(w, "warning: %s: sheet %q: %s\n", wb.BookName, sheet.Name, sheet.Error)
		}
		if sheet.Verify != nil && !sheet.Verify.Stable {
			warnColor.Fprintf(w, "warning: %s: sheet %q: drawing is not stable under %s placement\n", wb.BookName, sheet.Name, sheet.Verify.Placement)
		}
	}
}

func encode(s settings, wb *models.WorkbookDrawings) ([]byte, error) {
	if s.Format == formatMsgpack {
		return output.ToMsgpack(wb)
	}
	return output.ToJSON(wb, s.Pretty)
}

func writeReports(s settings, inputs []string, books []*models.WorkbookDrawings, stdout io.Writer) error {
	switch {
	case s.Output == "":
		for _, wb := range books {
			data, err := encode(s, wb)
			if err != nil {
				return fmt.Errorf("serialization failed: %w", err)
			}
			if _, err := stdout.Write(data); err != nil {
				return err
			}
			if s.Format == formatJSON {
				fmt.Fprintln(stdout)
			}
		}
		return nil
	case len(books) == 1:
		data, err := encode(s, books[0])
		if err != nil {
			return fmt.Errorf("serialization failed: %w", err)
		}
		if err := os.WriteFile(s.Output, data, 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	default:
		if err := os.MkdirAll(s.Output, 0755); err != nil {
			return err
		}
		for i, wb := range books {
			data, err := encode(s, wb)
			if err != nil {
				return fmt.Errorf("serialization failed: %w", err)
			}
			if err := os.WriteFile(reportPath(s, inputs[i]), data, 0644); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		}
		return nil
	}
}

// reportPath names the report of one input inside the output directory.
func reportPath(s settings, input string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return filepath.Join(s.Output, base+"."+s.Format)
}
