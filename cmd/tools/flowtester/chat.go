package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zhouzirui/idol-oracle/backend/internal/config"
	"github.com/zhouzirui/idol-oracle/backend/internal/service/conversation"
	"github.com/zhouzirui/idol-oracle/backend/internal/service/llm"
	"github.com/zhouzirui/idol-oracle/backend/internal/service/session"
)

var (
	chatEcho    bool
	chatSession string
	chatTimeout time.Duration
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation",
	Long: `Start an interactive conversation with the engine.

Each line typed is one user turn. The prompt shows the current stage.
Type /quit or press Ctrl-D to leave.`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().BoolVar(&chatEcho, "echo", false, "use the offline echo model instead of the configured provider")
	chatCmd.Flags().StringVar(&chatSession, "session", "", "session id to use (generated when empty)")
	chatCmd.Flags().DurationVar(&chatTimeout, "timeout", 2*time.Minute, "per-turn timeout")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	logger := zap.NewNop()
	if verbose {
		dev, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		logger = dev
	}
	defer func() { _ = logger.Sync() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	var completer llm.Completer
	if chatEcho {
		completer = llm.Wrap(echoCompleter{}, cfg.LLM, logger)
	} else {
		completer, err = llm.New(ctx, cfg.LLM, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize llm provider (try --echo): %w", err)
		}
	}

	store := session.NewStore(logger)
	engine := conversation.NewEngine(store, completer, conversation.Options{
		HistoryLimit: cfg.Conversation.HistoryLimit,
	}, logger)

	sess, _, err := store.Create(ctx, chatSession)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s\n", color.CyanString("session"), sess.ID)
	fmt.Fprintln(out, color.HiBlackString("告诉我你想占卜的方向：爱情、事业、运势或学业。"))

	return chatLoop(ctx, engine, sess.ID, string(sess.Stage), cmd.InOrStdin(), out)
}

func chatLoop(ctx context.Context, engine *conversation.Engine, sessionID, stage string, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprintf(out, "%s ", color.YellowString("[%s]>", stage))
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		text := strings.TrimSpace(scanner.Text())
		switch text {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		}

		turnCtx, cancel := context.WithTimeout(ctx, chatTimeout)
		reply, err := engine.Handle(turnCtx, sessionID, text)
		cancel()
		if err != nil {
			fmt.Fprintln(out, color.RedString("error: %v", err))
			continue
		}

		fmt.Fprintln(out, color.GreenString("%s", reply.Text))
		if reply.Translation != "" {
			fmt.Fprintln(out, color.HiBlackString("【中文翻译】%s", reply.Translation))
		}
		if reply.VirtualReminder != "" {
			fmt.Fprintln(out, color.HiBlackString("%s", reply.VirtualReminder))
		}

		stage = string(reply.Stage)
		if reply.TransitionStep != "" {
			stage += "/" + string(reply.TransitionStep)
		}
	}
}
