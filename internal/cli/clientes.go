package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/andy/clientes/internal/domain"
	"github.com/andy/clientes/internal/format"
	"github.com/andy/clientes/internal/repository"
)

// flagFields maps each cliente flag to the form field it fills
var flagFields = []struct {
	flag  string
	field string
	usage string
}{
	{"nombres", domain.FieldNombres, "Nombres"},
	{"apellidos", domain.FieldApellidos, "Apellidos"},
	{"fecha-nacimiento", domain.FieldFechaNacimiento, "Fecha de nacimiento (DD/MM/YYYY)"},
	{"cuit", domain.FieldCUIT, "CUIT (XX-XXXXXXXX-X)"},
	{"domicilio", domain.FieldDomicilio, "Domicilio"},
	{"telefono", domain.FieldTelefonoCelular, "Teléfono celular"},
	{"email", domain.FieldEmail, "Email"},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Listar clientes",
	Long:  `Lista los clientes activos. Con --search filtra por nombre o apellido.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		query, _ := cmd.Flags().GetString("search")

		var (
			clientes []domain.Cliente
			err      error
		)
		if repository.SearchActive(query) {
			clientes, err = appInstance.Clientes.Search(ctx, query)
		} else {
			clientes, err = appInstance.Clientes.List(ctx)
		}
		if err != nil {
			return fmt.Errorf("no se pudieron obtener los clientes: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(clientes) == 0 {
			if repository.SearchActive(query) {
				fmt.Fprintf(out, "No se encontraron clientes con el nombre %q\n", query)
			} else {
				fmt.Fprintln(out, "No hay clientes cargados")
			}
			return nil
		}

		printClientesTable(out, clientes)
		fmt.Fprintf(out, "\nTotal: %d cliente(s)\n", len(clientes))
		return nil
	},
}

var getCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Mostrar el detalle de un cliente",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		output, _ := cmd.Flags().GetString("output")

		detalle, err := appInstance.Clientes.Get(ctx, &id)
		if err != nil {
			return fmt.Errorf("no se pudo obtener el cliente: %w", err)
		}
		if detalle == nil {
			return fmt.Errorf("no se encontró información del cliente %d", id)
		}

		out := cmd.OutOrStdout()
		switch output {
		case "yaml":
			enc := yaml.NewEncoder(out)
			enc.SetIndent(2)
			if err := enc.Encode(detalle); err != nil {
				return err
			}
			return enc.Close()
		case "json":
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(detalle)
		case "table", "":
			printDetalle(out, detalle)
			return nil
		default:
			return fmt.Errorf("formato de salida desconocido %q (use table, yaml o json)", output)
		}
	},
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Crear un cliente",
	Long: `Crea un cliente con los datos indicados por flags. Se aplican las mismas
reglas que en el formulario de la interfaz.

Ejemplo:
  clientes create --nombres Ana --apellidos López --cuit 20123456786 \
    --telefono 11-5555-0000 --email ana@example.com`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		form := formFromFlags(cmd, domain.ClienteForm{})
		dto, err := form.ToCreate()
		if err != nil {
			return formError(cmd, err)
		}

		created, err := appInstance.Clientes.Create(ctx, dto)
		if err != nil {
			return fmt.Errorf("error al crear cliente: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ Cliente creado exitosamente: %s (ID: %d)\n", created.FullName(), created.ID)
		return nil
	},
}

var updateCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Actualizar un cliente",
	Long:  `Actualiza un cliente. Solo se modifican los campos indicados por flags.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		current, err := appInstance.Clientes.Get(ctx, &id)
		if err != nil {
			return fmt.Errorf("no se pudo obtener el cliente: %w", err)
		}
		if current == nil {
			return fmt.Errorf("no se encontró información del cliente %d", id)
		}

		form := formFromFlags(cmd, domain.FormFromCliente(current.Cliente))
		dto, err := form.ToUpdate(id)
		if err != nil {
			return formError(cmd, err)
		}

		if err := appInstance.Clientes.Update(ctx, id, dto); err != nil {
			return fmt.Errorf("error al actualizar cliente: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ Cliente actualizado exitosamente: %s %s\n", dto.Nombres, dto.Apellidos)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Eliminar un cliente",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		current, err := appInstance.Clientes.Get(ctx, &id)
		if err != nil {
			return fmt.Errorf("no se pudo obtener el cliente: %w", err)
		}
		if current == nil {
			return fmt.Errorf("no se encontró información del cliente %d", id)
		}

		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			msg := fmt.Sprintf("¿Estás seguro de que quieres eliminar a %s? Esta acción no se puede deshacer.", current.FullName())
			if !confirmPrompt(cmd, msg) {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelado.")
				return nil
			}
		}

		if err := appInstance.Clientes.Delete(ctx, id); err != nil {
			return fmt.Errorf("error al eliminar cliente: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ Cliente eliminado exitosamente: %s\n", current.FullName())
		return nil
	},
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("id de cliente inválido: %q", s)
	}
	return id, nil
}

// formFromFlags overwrites the fields of base whose flag was set
func formFromFlags(cmd *cobra.Command, base domain.ClienteForm) domain.ClienteForm {
	set := func(flag string, dst *string) {
		if cmd.Flags().Changed(flag) {
			*dst, _ = cmd.Flags().GetString(flag)
		}
	}
	set("nombres", &base.Nombres)
	set("apellidos", &base.Apellidos)
	set("fecha-nacimiento", &base.FechaNacimiento)
	set("cuit", &base.CUIT)
	set("domicilio", &base.Domicilio)
	set("telefono", &base.TelefonoCelular)
	set("email", &base.Email)

	// same masks the form dialog applies while typing
	if cmd.Flags().Changed("fecha-nacimiento") {
		base.FechaNacimiento = format.DateInput(base.FechaNacimiento)
	}
	if cmd.Flags().Changed("cuit") {
		base.CUIT = format.CUIT(base.CUIT)
	}
	return base
}

// formError prints one line per invalid field, keyed by flag name
func formError(cmd *cobra.Command, err error) error {
	var fe domain.FieldErrors
	if !errors.As(err, &fe) {
		return err
	}

	byField := make(map[string]string, len(flagFields))
	for _, f := range flagFields {
		byField[f.field] = f.flag
	}
	fields := make([]string, 0, len(fe))
	for field := range fe {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	w := cmd.ErrOrStderr()
	for _, field := range fields {
		name := field
		if flag, ok := byField[field]; ok {
			name = "--" + flag
		}
		fmt.Fprintf(w, "  %s: %s\n", name, fe[field])
	}
	return domain.ErrInvalidForm
}

func printClientesTable(w io.Writer, clientes []domain.Cliente) {
	fmt.Fprintf(w, "%-5s %s %s %s %s %s\n",
		"ID",
		pad("Nombre y Apellido", 30),
		pad("Nacimiento", 11),
		pad("CUIT", 14),
		pad("Teléfono", 16),
		"Email",
	)
	fmt.Fprintln(w, strings.Repeat("-", 110))

	for _, c := range clientes {
		fmt.Fprintf(w, "%-5d %s %s %s %s %s\n",
			c.ID,
			pad(truncate(c.FullName(), 30), 30),
			pad(format.DateDisplay(c.FechaNacimiento), 11),
			pad(c.CUIT, 14),
			pad(truncate(c.TelefonoCelular, 16), 16),
			truncate(c.Email, 30),
		)
	}
}

func printDetalle(w io.Writer, d *domain.ClienteDetalle) {
	line := func(label, value string) {
		fmt.Fprintf(w, "  %s %s\n", pad(label+":", 22), value)
	}

	fmt.Fprintf(w, "Cliente %d\n\n", d.ID)
	line("Nombres", d.Nombres)
	line("Apellidos", d.Apellidos)
	line("Fecha de Nacimiento", orNotSpecified(format.DateDisplay(d.FechaNacimiento)))
	line("CUIT", d.CUIT)
	line("Domicilio", orNotSpecified(d.Domicilio))
	line("Teléfono Celular", d.TelefonoCelular)
	line("Email", d.Email)
	line("Estado", d.Estado())
	line("Fecha de Creación", format.DateTime(d.FechaCreacion.Ptr()))
	line("Última Modificación", format.DateTime(d.FechaModificacion.Ptr()))
}

func orNotSpecified(s string) string {
	if strings.TrimSpace(s) == "" {
		return "No especificado"
	}
	return s
}

// truncate shortens s to maxLen runes, ending in "..."
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

// pad right-pads s with spaces to width runes
func pad(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

func init() {
	listCmd.Flags().StringP("search", "s", "", "Filtrar por nombre o apellido")

	getCmd.Flags().StringP("output", "o", "table", "Formato de salida: table, yaml o json")

	for _, f := range flagFields {
		createCmd.Flags().String(f.flag, "", f.usage)
		updateCmd.Flags().String(f.flag, "", f.usage)
	}

	deleteCmd.Flags().BoolP("yes", "y", false, "No pedir confirmación")
}
