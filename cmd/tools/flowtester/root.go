package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "flowtester",
	Short: "Drive the idol oracle conversation flow from a terminal",
	Long: `flowtester exercises the conversation engine without the HTTP layer.

Use "chat" for an interactive session against the configured LLM provider
(or an offline echo model) and "extract" to run the divination extractor on
a saved model reply.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// .env is optional
		_ = godotenv.Load()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print engine logs to stderr")
}
