package command

import (
	"context"
	"fmt"
)

type ModelSwitcher interface {
	GetProvider() string
	GetModel() string
	SetModel(ctx context.Context, model string) error
}

type ModelCommand struct {
	llm       ModelSwitcher
	formatter *ResponseFormatter
}

func NewModelCommand(llm ModelSwitcher) *ModelCommand {
	return &ModelCommand{
		llm:       llm,
		formatter: NewResponseFormatter(),
	}
}

func (c *ModelCommand) Name() string {
	return "model"
}

func (c *ModelCommand) Description() string {
	return "Show or change the chat model"
}

func (c *ModelCommand) Execute(ctx context.Context, args []string) (string, error) {
	if len(args) == 0 {
		return c.formatter.Combine(
			c.formatter.Info("Current Model"),
			c.formatter.Label("Provider", c.llm.GetProvider()),
			c.formatter.Label("Model", c.llm.GetModel()),
			c.formatter.Usage("/model [model]"),
		), nil
	}

	if err := c.llm.SetModel(ctx, args[0]); err != nil {
		return "", fmt.Errorf("failed to set model: %w", err)
	}

	return c.formatter.Success(fmt.Sprintf("Model changed to: `%s/%s`", c.llm.GetProvider(), c.llm.GetModel())), nil
}
