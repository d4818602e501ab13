package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf(`
app:
  name: pantry
database:
  path: %s
backup:
  storage_path: %s
exports:
  path: %s
pantry:
  timezone: UTC
  default_categories: [Dairy, Bread]
barcode:
  disabled: true
logging:
  level: error
  output: stderr
`, filepath.Join(dir, "pantry.db"), filepath.Join(dir, "backups"), filepath.Join(dir, "exports"))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func resetFlags() {
	itemsListCategory = ""
	itemName, itemCategory, itemExpires, itemBarcode = "", "", "", ""
	itemCount = 1
	categoryColor, categoryIcon = "", ""
	categoryCascade = false
	exportDir = ""
	importFile = "configs/items.yaml"
}

func execute(t *testing.T, cfg string, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(append([]string{"--config", cfg}, args...))
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRootHelp(t *testing.T) {
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"--help"})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "items")
	assert.Contains(t, buf.String(), "categories")
}

func TestItemsLifecycle(t *testing.T) {
	cfg := writeConfig(t)

	out, err := execute(t, cfg, "items", "add", "--name", "Milk", "--category", "Dairy", "--expires", "2099-01-01", "--count", "2")
	require.NoError(t, err)
	assert.Contains(t, out, `Added item #1 "Milk" (Dairy)`)

	out, err = execute(t, cfg, "items", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "1\tMilk\tDairy\t2\t2099-01-01")

	out, err = execute(t, cfg, "items", "consume", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "1 left")

	out, err = execute(t, cfg, "items", "consume", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "used up and removed")

	_, err = execute(t, cfg, "items", "delete", "1")
	assert.Error(t, err)
}

func TestItemsAdd_Validation(t *testing.T) {
	cfg := writeConfig(t)

	_, err := execute(t, cfg, "items", "add", "--name", "Milk", "--category", "Dairy", "--expires", "tomorrow")
	assert.ErrorContains(t, err, "invalid date")

	_, err = execute(t, cfg, "items", "add", "--category", "Dairy")
	assert.ErrorContains(t, err, "name is required")

	_, err = execute(t, cfg, "items", "consume", "abc")
	assert.ErrorContains(t, err, "invalid id")
}

func TestCategoriesCommands(t *testing.T) {
	cfg := writeConfig(t)

	out, err := execute(t, cfg, "categories", "add", "Snacks", "--color", "#FF112233", "--icon", "cookie")
	require.NoError(t, err)
	assert.Contains(t, out, "#FF112233")

	out, err = execute(t, cfg, "categories", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "1\tSnacks\t0\t#FF112233\tcookie")
	assert.Contains(t, out, "2\tDairy")

	out, err = execute(t, cfg, "categories", "move", "1", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "[Dairy Bread Snacks]")

	_, err = execute(t, cfg, "items", "add", "--name", "Chips", "--category", "Snacks")
	require.NoError(t, err)

	_, err = execute(t, cfg, "categories", "delete", "Snacks")
	assert.Error(t, err)

	out, err = execute(t, cfg, "categories", "delete", "Snacks", "--cascade")
	require.NoError(t, err)
	assert.Contains(t, out, "1 items removed")

	_, err = execute(t, cfg, "categories", "move", "0", "1")
	assert.ErrorContains(t, err, "invalid from position")
}

func TestCheckExportBackup(t *testing.T) {
	cfg := writeConfig(t)
	today := time.Now().UTC().Format("2006-01-02")

	_, err := execute(t, cfg, "items", "add", "--name", "Yogurt", "--category", "Dairy", "--expires", today)
	require.NoError(t, err)

	out, err := execute(t, cfg, "check")
	require.NoError(t, err)
	assert.Contains(t, out, "Due today or overdue: 1")
	assert.Contains(t, out, "#1 Yogurt")
	assert.Contains(t, out, "Expiring soon: 0")

	out, err = execute(t, cfg, "export")
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 1 items")

	out, err = execute(t, cfg, "backup")
	require.NoError(t, err)
	assert.Contains(t, out, "Backup written to")
}

func TestImport(t *testing.T) {
	cfg := writeConfig(t)
	file := filepath.Join(t.TempDir(), "items.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
categories: [Frozen, Spices]
items:
  - name: Peas
    category: Frozen
    expires: 2099-05-01
    count: 3
  - name: Salt
    category: Spices
`), 0o600))

	out, err := execute(t, cfg, "import", "--file", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 categories, 2 items (0 skipped)")

	out, err = execute(t, cfg, "import", "--file", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 0 categories, 0 items (2 skipped)")

	out, err = execute(t, cfg, "categories", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "1\tFrozen")
	assert.Contains(t, out, "2\tSpices")
}
