package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/andy/clientes/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Mostrar la configuración efectiva",
	Long: `Muestra la configuración efectiva en YAML, después de aplicar el archivo,
.env y las variables de entorno. Con --save la escribe en el archivo de
configuración por defecto.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := yaml.Marshal(appInstance.Config)
		if err != nil {
			return fmt.Errorf("no se pudo serializar la configuración: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), string(out))

		save, _ := cmd.Flags().GetBool("save")
		if !save {
			return nil
		}
		if err := appInstance.SaveConfig(); err != nil {
			return fmt.Errorf("no se pudo guardar la configuración: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\n✓ Configuración guardada en %s\n", config.DefaultConfigPath())
		return nil
	},
}

func init() {
	configCmd.Flags().Bool("save", false, "Guardar la configuración efectiva en el archivo por defecto")
}
