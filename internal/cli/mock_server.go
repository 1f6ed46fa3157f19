package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/andy/clientes/internal/mockserver"
)

var mockServerCmd = &cobra.Command{
	Use:   "mock-server",
	Short: "Levantar un servicio de clientes en memoria",
	Long: `Levanta una versión en memoria del servicio de clientes, útil para
desarrollo. Las rutas cuelgan de /api, así que la URL base es
http://localhost:8080/api con la dirección por defecto.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		seed, _ := cmd.Flags().GetBool("seed")
		token, _ := cmd.Flags().GetString("token")

		logger := appInstance.Logger
		if logger.IsLevelEnabled(logrus.DebugLevel) {
			gin.SetMode(gin.DebugMode)
		} else {
			gin.SetMode(gin.ReleaseMode)
		}

		store := mockserver.NewStore()
		if seed {
			store.Seed()
		}

		opts := []mockserver.Option{mockserver.WithLogger(logger)}
		if token != "" {
			opts = append(opts, mockserver.WithToken(token))
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		fmt.Fprintf(cmd.OutOrStdout(), "Servicio de clientes en http://%s/api (Ctrl+C para salir)\n", displayAddr(addr))
		return mockserver.New(store, opts...).Run(ctx, addr)
	},
}

func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}

func init() {
	mockServerCmd.Flags().String("addr", ":8080", "Dirección de escucha")
	mockServerCmd.Flags().Bool("seed", false, "Cargar clientes de ejemplo")
	mockServerCmd.Flags().String("token", "", "Exigir este token Bearer en /api")
}
