package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zhouzirui/idol-oracle/backend/internal/service/divination"
)

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Run the divination extractor on a saved model reply",
	Args:  cobra.ExactArgs(1),
	RunE:  runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	text, method := divination.NewExtractor(zap.NewNop()).Extract(string(raw))

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s\n", color.CyanString("method:"), method)
	if violations := divination.CheckCompliance(text); len(violations) > 0 {
		fmt.Fprintf(out, "%s %v\n", color.RedString("fatalistic:"), violations)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, text)
	return nil
}
