package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/andy/clientes/internal/config"
)

func TestSetup_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "clientes.log")

	logger, closer, err := Setup(config.LogConfig{Level: "debug", Format: "json", File: path})
	require.NoError(t, err)
	require.Equal(t, logrus.DebugLevel, logger.GetLevel())

	logger.WithField("id", 3).Info("cliente created")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var line map[string]any
	require.NoError(t, json.Unmarshal(data, &line))
	require.Equal(t, "cliente created", line["msg"])
	require.EqualValues(t, 3, line["id"])
}

func TestSetup_BadLevelFallsBackToInfo(t *testing.T) {
	logger, closer, err := Setup(config.LogConfig{Level: "chatty", File: ""})
	require.NoError(t, err)
	defer closer.Close()
	require.Equal(t, logrus.InfoLevel, logger.GetLevel())
}

func TestSetup_Stderr(t *testing.T) {
	logger, closer, err := Setup(config.LogConfig{Level: "warn", File: "-"})
	require.NoError(t, err)
	require.NoError(t, closer.Close())
	require.Equal(t, os.Stderr, logger.Out)
}
