package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andy/clientes/internal/credentials"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Guardar el token de acceso al servicio",
	Long: fmt.Sprintf(`Pide el token de acceso y lo guarda en el llavero del sistema.

Donde no hay llavero disponible, exporte %s en su lugar.`, credentials.EnvToken),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !appInstance.Keyring.IsAvailable() {
			return fmt.Errorf("no hay llavero disponible: exporte %s con el token", credentials.EnvToken)
		}

		token, err := readSecret(cmd, "Token: ")
		if err != nil {
			return err
		}
		if token == "" {
			return errors.New("el token no puede estar vacío")
		}

		if err := appInstance.Keyring.SetToken(token); err != nil {
			return fmt.Errorf("no se pudo guardar el token: %w", err)
		}

		appInstance.Logger.Info("api token stored in keyring")
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Token guardado")
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Borrar el token guardado",
	RunE: func(cmd *cobra.Command, args []string) error {
		err := appInstance.Keyring.DeleteToken()
		switch {
		case errors.Is(err, credentials.ErrNoToken):
			fmt.Fprintln(cmd.OutOrStdout(), "No había token guardado")
			return nil
		case errors.Is(err, credentials.ErrUnsupported):
			return fmt.Errorf("no hay llavero disponible: quite %s del entorno", credentials.EnvToken)
		case err != nil:
			return fmt.Errorf("no se pudo borrar el token: %w", err)
		}

		appInstance.Logger.Info("api token removed from keyring")
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Token borrado")
		return nil
	},
}
