package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/lumipallolabs/walletmap/internal/ui/tui"
)

type viewOptions struct {
	chart   chartFlags
	noWatch bool
}

func init() {
	rootCmd.AddCommand(newViewCmd())
}

func newViewCmd() *cobra.Command {
	o := &viewOptions{}
	cmd := &cobra.Command{
		Use:   "view <file>",
		Short: "Preview a tree document in the terminal",
		Long: `The view command shows the treemap in the terminal and reloads it when
the file changes. Arrow keys move between wallets, o opens the selected
wallet in its block explorer, r reloads and q quits.

Example:
  walletmap view wallets.json
  walletmap view wallets.yaml --threshold 100`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			opts, err := o.chart.options(cmd, cfg)
			if err != nil {
				return err
			}

			p := tea.NewProgram(
				tui.NewApp(version, args[0], opts, !o.noWatch),
				tea.WithAltScreen(),
			)
			_, err = p.Run()
			return err
		},
	}
	o.chart.register(cmd)
	cmd.Flags().BoolVar(&o.noWatch, "no-watch", false, "Do not reload when the file changes")
	return cmd
}
