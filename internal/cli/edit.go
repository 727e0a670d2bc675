package cli

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gridlayout/pkg/grid"
)

// editCommand creates the interactive "edit" command.
func (c *CLI) editCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "edit <layout-id>",
		Short: "Edit a layout interactively in the terminal",
		Long: `Open a layout in a terminal editor. The canvas is drawn as text at the
current breakpoint with stored positions, overlaps included. Changes stay
in memory until saved with s.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			l, err := store.Get(ctx, args[0])
			if err != nil {
				return err
			}

			// Editor logging would corrupt the alternate screen.
			ed := grid.NewEditor(l, grid.WithScan(c.cfg.Placement))
			save := func(l *grid.Layout) error {
				_, err := store.Save(context.WithoutCancel(ctx), l)
				return err
			}

			p := tea.NewProgram(NewEditorModel(ed, save),
				tea.WithAltScreen(),
				tea.WithContext(ctx),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()))
			final, err := p.Run()
			if err != nil {
				return err
			}
			if m, ok := final.(EditorModel); ok && m.Dirty() {
				printWarning(cmd.ErrOrStderr(), "Discarded unsaved changes to %s", l.ID)
			}
			return nil
		},
	}
}
