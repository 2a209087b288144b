package command

import (
	"github.com/sandevgo/lobug/internal/core"
)

func NewCommands(
	inspector core.MemoryInspector,
	memory MemoryActions,
	llm ModelSwitcher,
) []core.Command {
	cmds := []core.Command{
		NewMemoryCommand(inspector),
		NewFactsCommand(inspector),
		NewRememberCommand(memory),
		NewConsolidateCommand(memory),
	}
	if llm != nil {
		cmds = append(cmds, NewModelCommand(llm))
	}
	return cmds
}
