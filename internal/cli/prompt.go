package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// confirmPrompt asks a yes/no question; anything but yes is a no
func confirmPrompt(cmd *cobra.Command, message string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [s/N] ", message)
	reader := bufio.NewReader(cmd.InOrStdin())
	input, err := reader.ReadString('\n')
	if err != nil && input == "" {
		return false
	}
	switch strings.TrimSpace(strings.ToLower(input)) {
	case "s", "si", "sí", "y", "yes":
		return true
	}
	return false
}

// readSecret reads a line without echo when stdin is a terminal, or a plain
// line otherwise (pipes, tests)
func readSecret(cmd *cobra.Command, message string) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), message)

	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.OutOrStdout())
		if err != nil {
			return "", fmt.Errorf("no se pudo leer el token: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("no se pudo leer el token: %w", err)
	}
	return strings.TrimSpace(line), nil
}
