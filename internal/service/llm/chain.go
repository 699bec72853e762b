package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
)

// ChainCompleter runs each prompt through an eino chain: template -> chat model.
type ChainCompleter struct {
	chain compose.Runnable[map[string]any, *schema.Message]
}

// NewChainCompleter compiles the chain around chatModel.
func NewChainCompleter(ctx context.Context, chatModel model.ChatModel) (*ChainCompleter, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.UserMessage("{prompt}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile completion chain: %w", err)
	}
	return &ChainCompleter{chain: runnable}, nil
}

// Complete implements Completer.
func (c *ChainCompleter) Complete(ctx context.Context, text string) (string, error) {
	response, err := c.chain.Invoke(ctx, map[string]any{"prompt": text})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if response == nil || strings.TrimSpace(response.Content) == "" {
		return "", fmt.Errorf("%w: empty response", ErrUpstream)
	}
	return response.Content, nil
}
