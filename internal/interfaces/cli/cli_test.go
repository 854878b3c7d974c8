package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orderflow/intake/internal/domain/order"
)

const testCatalogCSV = `Product_Name,Product_Code,Min_Order_Quantity,Available_in_Stock,Price
SuperWidget,ABC-123,1,100,9.99
MegaBracket,DEF-456,20,50,4.50
`

// writeFixtures lays out a config file, catalog, and email body in a temp
// directory and returns their paths.
func writeFixtures(t *testing.T, emailBody string) (configPath, emailPath string) {
	t.Helper()
	dir := t.TempDir()

	catalogPath := filepath.Join(dir, "catalog.csv")
	require.NoError(t, os.WriteFile(catalogPath, []byte(testCatalogCSV), 0o644))

	configPath = filepath.Join(dir, "config.yaml")
	cfg := "catalog:\n  path: " + catalogPath + "\nlog:\n  level: error\n"
	require.NoError(t, os.WriteFile(configPath, []byte(cfg), 0o644))

	emailPath = filepath.Join(dir, "email.txt")
	require.NoError(t, os.WriteFile(emailPath, []byte(emailBody), 0o644))
	return configPath, emailPath
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestProcessCommand(t *testing.T) {
	configPath, emailPath := writeFixtures(t, "5 x SuperWidget\nShip to: 123 Main Street, Springfield\n")

	out, err := runCLI(t,
		"--config", configPath,
		"process", emailPath,
		"--sender", "buyer@example.com",
		"--received-at", "2024-03-15T09:30:45Z",
	)
	require.NoError(t, err)

	var o order.Order
	require.NoError(t, json.Unmarshal([]byte(out), &o))
	assert.Equal(t, "ORD-20240315093045", o.ID)
	assert.Equal(t, "buyer@example.com", o.CustomerEmail)
	require.Len(t, o.Items, 1)
	assert.Equal(t, "ABC-123", o.Items[0].SKU)
	assert.Equal(t, "123 Main Street, Springfield", o.Delivery.Address)
}

func TestProcessCommandRejectsBadTimestamp(t *testing.T) {
	configPath, emailPath := writeFixtures(t, "5 x SuperWidget\n")

	_, err := runCLI(t, "--config", configPath, "process", emailPath, "--received-at", "yesterday")
	assert.Error(t, err)
}

func TestCatalogValidateCommand(t *testing.T) {
	configPath, _ := writeFixtures(t, "")

	out, err := runCLI(t, "--config", configPath, "catalog", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "catalog ok: 2 products")
}

func TestCatalogLookupCommand(t *testing.T) {
	configPath, _ := writeFixtures(t, "")

	t.Run("resolves exact name", func(t *testing.T) {
		out, err := runCLI(t, "--config", configPath, "catalog", "lookup", "SuperWidget")
		require.NoError(t, err)
		assert.Contains(t, out, "SuperWidget (ABC-123)")
	})

	t.Run("suggests near misses", func(t *testing.T) {
		out, err := runCLI(t, "--config", configPath, "catalog", "lookup", "SuperWidgt")
		require.NoError(t, err)
		assert.Contains(t, out, "SuperWidget")
	})
}
