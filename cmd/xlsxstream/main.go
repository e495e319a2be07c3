// Package main provides the CLI entry point for xlsxstream.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xlsxstream/xlsxstream"
)

var (
	sheet      string
	startCell  string
	endCell    string
	headerRow  bool
	fillMerged bool
	pretty     bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "xlsxstream [input.xlsx]",
		Short: "Stream an .xlsx worksheet as newline-delimited JSON rows",
		Args:  cobra.ExactArgs(1),
		RunE:  run,
	}

	rootCmd.Flags().StringVar(&sheet, "sheet", "", "sheet name (default: the workbook's active sheet)")
	rootCmd.Flags().StringVar(&startCell, "start-cell", "A1", "top-left cell to start reading from")
	rootCmd.Flags().StringVar(&endCell, "end-cell", "", "bottom-right cell bound (RangeFilter); unset streams the whole sheet")
	rootCmd.Flags().BoolVar(&headerRow, "header-row", false, "treat the first read row as column labels")
	rootCmd.Flags().BoolVar(&fillMerged, "fill-merged", false, "propagate merge-anchor values to slave cells")
	rootCmd.Flags().BoolVar(&pretty, "pretty", false, "pretty-print each row's JSON")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	doc, err := xlsxstream.Open(inputPath, xlsxstream.WithFillMergedCells(fillMerged))
	if err != nil {
		return fmt.Errorf("opening %s: %w", inputPath, err)
	}
	defer doc.Close()

	var it *xlsxstream.RowIterator
	if endCell != "" {
		it, err = doc.QueryRange(sheet, startCell, endCell, headerRow)
	} else {
		it, err = doc.Query(sheet, startCell, headerRow)
	}
	if err != nil {
		return fmt.Errorf("querying sheet: %w", err)
	}
	defer it.Close()

	enc := json.NewEncoder(cmd.OutOrStdout())
	if pretty {
		enc.SetIndent("", "  ")
	}

	for it.Next() {
		row := it.Row()
		record := make(map[string]interface{}, len(row.Labels))
		for _, label := range row.Labels {
			record[label] = row.Get(label).Interface()
		}
		if err := enc.Encode(record); err != nil {
			return fmt.Errorf("encoding row %d: %w", row.Index, err)
		}
	}
	if err := it.Err(); err != nil {
		return fmt.Errorf("streaming rows: %w", err)
	}
	return nil
}
