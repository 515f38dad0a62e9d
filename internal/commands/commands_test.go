package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizdash/internal/core"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func baseEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("PORT", "8080")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("AMQP_URL", "")
	t.Setenv("MIRROR_SCHEDULE", "@every 15m")
	t.Setenv("DASHBOARD_CACHE_TTL", "30s")
	t.Setenv("SQLITE_DB_PATH", filepath.Join(dir, "db", "bizdash.db"))
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := NewRootCommand()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"serve", "migrate", "import", "stats"}, names)
	assert.NotEmpty(t, root.Version)
}

func TestStatsMemoryBackend(t *testing.T) {
	dir := baseEnv(t)
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("DATA_DIR", dir)
	writeFile(t, filepath.Join(dir, "services.json"),
		`[{"id":"s1","title":"Haircut","details":"30 min","price":150,"available":true},
		  {"id":"s2","title":"Massage","details":"60 min","price":"1200","available":false}]`)
	writeFile(t, filepath.Join(dir, "transactions.json"),
		`[{"price":100,"finishedAt":"2024-01-01T10:00:00Z"},
		  {"price":"50","finishedAt":"2024-01-01T12:00:00Z"},
		  {"price":30,"finishedAt":"2024-01-02T09:00:00Z"}]`)
	writeFile(t, filepath.Join(dir, "expenses.json"), `[{"description":"Rent","amount":1000}]`)

	out, err := execute(t, "stats", "--range", "monthly")
	require.NoError(t, err)

	assert.Contains(t, out, "Total Services:     2")
	assert.Contains(t, out, "Available Services: 1")
	assert.Contains(t, out, "Total Revenue:      ₱180")
	assert.Contains(t, out, "Total Expenses:     ₱1,000")
	assert.Contains(t, out, "Net Income:         -₱820")
	assert.Contains(t, out, "Monthly Revenue (total ₱180)")
	assert.Contains(t, out, "January 2024")
}

func TestStatsRejectsUnknownRange(t *testing.T) {
	baseEnv(t)
	_, err := execute(t, "stats", "--range", "yearly")
	assert.ErrorIs(t, err, core.ErrInvalidGranularity)
}

func TestImportThenStatsSQLite(t *testing.T) {
	dir := baseEnv(t)
	t.Setenv("DATA_BACKEND", "sqlite")
	file := filepath.Join(dir, "import.json")
	writeFile(t, file, `{
		"services": [
			{"title":"Haircut","details":"30 min","price":150,"available":true},
			{"title":"","details":"no title","price":10}
		],
		"transactions": [
			{"id":"t1","price":100,"finishedAt":"2024-01-01T10:00:00Z"},
			{"id":"t2","price":"50","finishedAt":"2024-01-01T12:00:00Z"},
			{"id":"t3","price":"abc","finishedAt":"2024-01-02T09:00:00Z"}
		],
		"expenses": [{"description":"Rent","amount":"1000"}]
	}`)

	out, err := execute(t, "import", file)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 1 services (1 skipped), 3 transactions, 1 expenses")

	out, err = execute(t, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Total Services:     1")
	assert.Contains(t, out, "Total Revenue:      ₱150")
	assert.Contains(t, out, "Daily Revenue (total ₱150)")
	assert.Contains(t, out, "1/1/2024")
	assert.Contains(t, out, "1/2/2024")
}

func TestImportRejectsMalformedFile(t *testing.T) {
	dir := baseEnv(t)
	file := filepath.Join(dir, "broken.json")
	writeFile(t, file, `{"services": [`)

	_, err := execute(t, "import", file)
	assert.Error(t, err)

	_, err = execute(t, "import")
	assert.Error(t, err)
}

func TestMigrateCommand(t *testing.T) {
	dir := baseEnv(t)
	dbPath := filepath.Join(dir, "nested", "m.db")

	out, err := execute(t, "migrate", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "schema version 1")
	assert.FileExists(t, dbPath)
}

func TestPrintStatsEmptyChart(t *testing.T) {
	var out bytes.Buffer
	printStats(&out, core.Summary{TotalRevenue: decimal.Zero}, core.Chart{}, core.Weekly)

	assert.Contains(t, out.String(), "Weekly Revenue (total ₱0)")
	assert.Contains(t, out.String(), "no transactions")
}
