package cli

import (
	"bytes"
	"errors"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/andy/clientes/internal/app"
	"github.com/andy/clientes/internal/config"
	"github.com/andy/clientes/internal/credentials"
	"github.com/andy/clientes/internal/domain"
	"github.com/andy/clientes/internal/mockserver"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type stubKeyring struct {
	token string
	err   error
}

func (k *stubKeyring) GetToken() (string, error) { return k.token, k.err }
func (k *stubKeyring) SetToken(t string) error {
	if k.err != nil {
		return k.err
	}
	k.token = t
	return nil
}
func (k *stubKeyring) DeleteToken() error {
	if k.err != nil {
		return k.err
	}
	k.token = ""
	return nil
}
func (k *stubKeyring) IsAvailable() bool { return k.err == nil }

// setup points the CLI at a seeded mock service
func setup(t *testing.T) *stubKeyring {
	t.Helper()
	store := mockserver.NewStore()
	store.Seed()
	srv := httptest.NewServer(mockserver.New(store).Handler())
	t.Cleanup(srv.Close)

	cfg := config.DefaultConfig()
	cfg.API.BaseURL = srv.URL + "/api"
	a := app.NewWithDeps(cfg, nil, "")
	kr := &stubKeyring{}
	a.Keyring = kr
	SetApp(a)
	t.Cleanup(func() { SetApp(nil) })
	return kr
}

func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// run executes the root command with args and optional stdin
func run(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	t.Cleanup(func() { resetFlags(rootCmd) })

	err = rootCmd.Execute()
	resetFlags(rootCmd)
	return out.String(), errOut.String(), err
}

func TestList(t *testing.T) {
	setup(t)

	out, _, err := run(t, "", "list")
	require.NoError(t, err)
	require.Contains(t, out, "Juan Pérez")
	require.Contains(t, out, "15/06/1990")
	require.Contains(t, out, "Total: 3 cliente(s)")

	out, _, err = run(t, "", "list", "--search", "gómez")
	require.NoError(t, err)
	require.Contains(t, out, "María Gómez")
	require.NotContains(t, out, "Juan Pérez")

	out, _, err = run(t, "", "list", "-s", "nadie")
	require.NoError(t, err)
	require.Contains(t, out, `No se encontraron clientes con el nombre "nadie"`)
}

func TestGet_Formats(t *testing.T) {
	setup(t)

	out, _, err := run(t, "", "get", "1")
	require.NoError(t, err)
	require.Contains(t, out, "Estado:")
	require.Contains(t, out, "Activo")
	require.Contains(t, out, "12/03/1985")
	require.Contains(t, out, "No disponible")

	out, _, err = run(t, "", "get", "1", "-o", "json")
	require.NoError(t, err)
	require.Contains(t, out, `"cuit": "20-12345678-6"`)

	out, _, err = run(t, "", "get", "3", "-o", "yaml")
	require.NoError(t, err)
	require.Contains(t, out, "nombres: Carlos Alberto")
	require.Contains(t, out, "eliminado: false")

	_, _, err = run(t, "", "get", "1", "-o", "xml")
	require.Error(t, err)

	_, _, err = run(t, "", "get", "abc")
	require.ErrorContains(t, err, "id de cliente inválido")

	_, _, err = run(t, "", "get", "99")
	require.ErrorContains(t, err, "Cliente no encontrado")
}

func TestCreate_ValidatesBeforeSending(t *testing.T) {
	setup(t)

	_, stderr, err := run(t, "", "create", "--nombres", "Ana", "--apellidos", "López", "--cuit", "20-12345678-0", "--telefono", "1")
	require.True(t, errors.Is(err, domain.ErrInvalidForm))
	require.Contains(t, stderr, "--cuit: El CUIT debe ser válido")
	require.Contains(t, stderr, "--email: El email es obligatorio")

	out, _, err := run(t, "", "list")
	require.NoError(t, err)
	require.Contains(t, out, "Total: 3 cliente(s)")
}

func TestCreate(t *testing.T) {
	setup(t)

	out, _, err := run(t, "", "create",
		"--nombres", "Ana", "--apellidos", "López",
		"--fecha-nacimiento", "02011990",
		"--cuit", "20123456786", "--telefono", "11-5555-0000",
		"--email", "ana@example.com")
	require.NoError(t, err)
	require.Contains(t, out, "Cliente creado exitosamente: Ana López (ID: 4)")

	out, _, err = run(t, "", "get", "4")
	require.NoError(t, err)
	require.Contains(t, out, "02/01/1990")
	require.Contains(t, out, "20-12345678-6")
}

func TestUpdate_OnlyChangedFlags(t *testing.T) {
	setup(t)

	out, _, err := run(t, "", "update", "2", "--domicilio", "Mitre 100")
	require.NoError(t, err)
	require.Contains(t, out, "Cliente actualizado exitosamente: María Gómez")

	out, _, err = run(t, "", "get", "2", "-o", "json")
	require.NoError(t, err)
	require.Contains(t, out, `"domicilio": "Mitre 100"`)
	require.Contains(t, out, `"email": "maria.gomez@example.com"`)
	require.Contains(t, out, `"fechaNacimiento": "1990-06-15T00:00:00"`)
}

func TestDelete_Confirmation(t *testing.T) {
	setup(t)

	out, _, err := run(t, "n\n", "delete", "1")
	require.NoError(t, err)
	require.Contains(t, out, "¿Estás seguro de que quieres eliminar a Juan Pérez?")
	require.Contains(t, out, "Cancelado.")

	out, _, err = run(t, "s\n", "delete", "1")
	require.NoError(t, err)
	require.Contains(t, out, "Cliente eliminado exitosamente: Juan Pérez")

	out, _, err = run(t, "", "delete", "2", "--yes")
	require.NoError(t, err)
	require.Contains(t, out, "María Gómez")

	out, _, err = run(t, "", "list")
	require.NoError(t, err)
	require.Contains(t, out, "Total: 1 cliente(s)")
}

func TestLoginLogout(t *testing.T) {
	kr := setup(t)

	_, _, err := run(t, "\n", "login")
	require.ErrorContains(t, err, "vacío")

	out, _, err := run(t, "s3cret\n", "login")
	require.NoError(t, err)
	require.Contains(t, out, "Token guardado")
	require.Equal(t, "s3cret", kr.token)

	_, _, err = run(t, "", "logout")
	require.NoError(t, err)
	require.Empty(t, kr.token)

	kr.err = credentials.ErrNoToken
	out, _, err = run(t, "", "logout")
	require.NoError(t, err)
	require.Contains(t, out, "No había token guardado")

	kr.err = credentials.ErrUnsupported
	out, _, err = run(t, "x\n", "login")
	require.ErrorContains(t, err, "exporte CLIENTES_API_TOKEN")
	require.NotContains(t, out, "Token guardado")

	_, _, err = run(t, "", "logout")
	require.ErrorContains(t, err, "quite CLIENTES_API_TOKEN")
}

func TestConfig_PrintsYAML(t *testing.T) {
	setup(t)

	out, _, err := run(t, "", "config")
	require.NoError(t, err)
	require.Contains(t, out, "base_url: http://")
	require.Contains(t, out, "list_stale: 5m0s")
	require.Contains(t, out, "debounce: 300ms")
}
