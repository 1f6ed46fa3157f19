package cli

import (
	"github.com/spf13/cobra"

	"github.com/andy/clientes/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Abrir la interfaz interactiva",
	Long:  `Abre la interfaz interactiva de clientes en la terminal.`,
	RunE:  launchTUI,
}

func launchTUI(cmd *cobra.Command, args []string) error {
	appInstance.Logger.Debug("launching tui")
	return tui.Run(appInstance)
}
