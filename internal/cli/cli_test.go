package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ansel1/merry"
	"github.com/fpawel/curtains/internal/quote"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, home string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := Run(context.Background(), append([]string{"--home", home}, args...), &out, &out)
	return out.String(), err
}

func mustRun(t *testing.T, home string, args ...string) string {
	t.Helper()
	out, err := runCLI(t, home, args...)
	require.NoErrorf(t, err, "%v: %s", args, out)
	return out
}

func TestRootHasCommands(t *testing.T) {
	cmd := newRootCommand(&env{})
	for _, args := range [][]string{
		{"customer", "add"},
		{"product", "variation", "add"},
		{"product", "link", "add"},
		{"product", "import"},
		{"quote", "add-item"},
		{"quote", "pdf"},
		{"quote", "copy"},
		{"payment", "add"},
		{"employee", "list"},
		{"assignment", "status"},
		{"backup", "restore"},
		{"settings", "set"},
		{"stats"},
		{"migrate", "legacy"},
		{"seed"},
	} {
		c, _, err := cmd.Find(args)
		require.NoErrorf(t, err, "%v", args)
		require.Equal(t, args[len(args)-1], c.Name())
	}
}

func TestFirstRunCreatesLayout(t *testing.T) {
	home := t.TempDir()
	out := mustRun(t, home, "migrate", "status")
	require.Contains(t, out, "Latest version")

	for _, name := range []string{"config.toml", "data", "backup", "logs", filepath.Join("media", "products")} {
		_, err := os.Stat(filepath.Join(home, name))
		require.NoError(t, err, name)
	}

	out = mustRun(t, home, "migrate")
	require.Contains(t, out, "schema version")
	out = mustRun(t, home, "migrate", "status")
	require.Regexp(t, `Pending:\s+0\n`, out)
}

func TestCustomerCommands(t *testing.T) {
	home := t.TempDir()
	require.Contains(t, mustRun(t, home, "customer", "add", "--name", "Sara", "--phone", "0551234567"), "customer 1 added")
	require.Contains(t, mustRun(t, home, "customer", "add", "--type", "company", "--name", "Omar",
		"--company", "Al Noor", "--vat", "300000000000003"), "customer 2 added")

	out := mustRun(t, home, "customer", "list", "--phone", "055")
	require.Contains(t, out, "Sara")
	require.NotContains(t, out, "Al Noor")

	mustRun(t, home, "customer", "edit", "1", "--email", "sara@example.com")
	out = mustRun(t, home, "customer", "show", "1")
	require.Contains(t, out, "sara@example.com")
	require.Contains(t, out, "0551234567")

	_, err := runCLI(t, home, "customer", "add", "--type", "company", "--name", "NoCompany")
	require.True(t, merry.Is(err, quote.ErrInvalid))

	_, err = runCLI(t, home, "customer", "rm", "abc")
	require.True(t, merry.Is(err, quote.ErrInvalid))
	require.Equal(t, `wrong customer id: "abc"`, UserMessage(err))

	mustRun(t, home, "customer", "rm", "2")
	_, err = runCLI(t, home, "customer", "show", "2")
	require.True(t, merry.Is(err, quote.ErrNotFound))
}

func TestQuotationWorkflow(t *testing.T) {
	home := t.TempDir()
	dir := t.TempDir()
	serial := fmt.Sprintf("Q-%d-000001", time.Now().UTC().Year())

	mustRun(t, home, "customer", "add", "--name", "Sara", "--phone", "0551234567")
	mustRun(t, home, "product", "add", "--name", "Blackout", "--unit", "area", "--price", "320")
	mustRun(t, home, "product", "add", "--name", "Rod", "--unit", "width", "--price", "45")
	mustRun(t, home, "product", "variation", "add", "1", "--name", "Grey")
	mustRun(t, home, "product", "link", "add", "1", "2")

	out := mustRun(t, home, "product", "show", "1")
	require.Contains(t, out, "Grey")
	require.Contains(t, out, "Rod")

	require.Contains(t, mustRun(t, home, "quote", "new", "1"), serial)
	out = mustRun(t, home, "quote", "add-item", serial, "--product", "1", "--variation", "1",
		"--width", "2.5", "--height", "2")
	require.Contains(t, out, "Blackout x 1 = 1600.00")

	out = mustRun(t, home, "quote", "show", "1")
	require.Contains(t, out, serial)
	require.Contains(t, out, "1840.00")

	out = mustRun(t, home, "quote", "discount", "1", "percent", "10")
	require.Contains(t, out, "grand total 1656.00")

	_, err := runCLI(t, home, "quote", "tax", "1", "1.5")
	require.True(t, merry.Is(err, quote.ErrInvalid))

	out = mustRun(t, home, "quote", "list", "--status", "draft")
	require.Contains(t, out, serial)
	mustRun(t, home, "quote", "status", serial, "sent")
	out = mustRun(t, home, "quote", "list", "--status", "draft")
	require.NotContains(t, out, serial)

	out = mustRun(t, home, "quote", "copy", "1")
	require.Contains(t, out, "Blackout")

	out = mustRun(t, home, "quote", "csv", "1")
	require.Contains(t, out, "Grand total SAR,1656.00")

	pdfFile := filepath.Join(dir, "q.pdf")
	mustRun(t, home, "quote", "pdf", "1", "-o", pdfFile)
	b, err := os.ReadFile(pdfFile)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(b, []byte("%PDF-")))

	out = mustRun(t, home, "payment", "add", "1", "656", "--method", "card")
	require.Contains(t, out, "balance 1000.00")

	_, err = runCLI(t, home, "customer", "rm", "1")
	require.True(t, merry.Is(err, quote.ErrInUse))
	_, err = runCLI(t, home, "product", "rm", "1")
	require.True(t, merry.Is(err, quote.ErrInUse))

	mustRun(t, home, "quote", "rm-item", "1")
	out = mustRun(t, home, "payment", "list", "1")
	require.Contains(t, out, "-656.00")

	mustRun(t, home, "quote", "rm", serial)
	mustRun(t, home, "customer", "rm", "1")
}

func TestScheduleCommands(t *testing.T) {
	home := t.TempDir()
	mustRun(t, home, "customer", "add", "--name", "Sara")
	mustRun(t, home, "quote", "new", "1")
	require.Contains(t, mustRun(t, home, "employee", "add", "Khalid", "--role", "installer"), "employee 1 added")

	out := mustRun(t, home, "assignment", "add", "1", "--date", "2030-03-10", "--start", "09:00",
		"--end", "11:00", "--location", "Riyadh", "--employee", "1")
	require.Contains(t, out, "planned on 2030-03-10")

	out = mustRun(t, home, "assignment", "list", "--from", "2030-03-01", "--to", "2030-03-31")
	require.Contains(t, out, "09:00-11:00")
	require.Contains(t, out, "Khalid")

	mustRun(t, home, "assignment", "status", "1", "done")
	out = mustRun(t, home, "assignment", "list", "--status", "planned")
	require.NotContains(t, out, "Riyadh")

	mustRun(t, home, "employee", "deactivate", "1")
	require.NotContains(t, mustRun(t, home, "employee", "list"), "Khalid")
	require.Contains(t, mustRun(t, home, "employee", "list", "--all"), "Khalid")

	mustRun(t, home, "assignment", "rm", "1")
}

func TestSettingsAndStats(t *testing.T) {
	home := t.TempDir()
	mustRun(t, home, "settings", "set", "--company", "Silk Line", "--tax", "0.05", "--currency", "USD")
	out := mustRun(t, home, "settings", "show")
	require.Contains(t, out, "company_name: Silk Line")
	require.Contains(t, out, "default_currency: USD")

	_, err := runCLI(t, home, "settings", "set", "--tax", "2")
	require.True(t, merry.Is(err, quote.ErrInvalid))

	mustRun(t, home, "seed")
	_, err = runCLI(t, home, "seed")
	require.True(t, merry.Is(err, quote.ErrInUse))

	out = mustRun(t, home, "stats")
	require.Contains(t, out, "Customers:")
	require.Regexp(t, `Products:\s+6\n`, out)
}

func TestCatalogExportImport(t *testing.T) {
	home := t.TempDir()
	file := filepath.Join(t.TempDir(), "catalog.yaml")
	mustRun(t, home, "seed")
	mustRun(t, home, "product", "export", "-o", file)

	other := t.TempDir()
	out := mustRun(t, other, "product", "import", file)
	require.Contains(t, out, "products created: 6, updated: 0")
	out = mustRun(t, other, "product", "list", "-q", "Accessories")
	require.Contains(t, out, "Curtain rings")
}

func TestBackupCommands(t *testing.T) {
	home := t.TempDir()
	mustRun(t, home, "customer", "add", "--name", "Sara")

	out := mustRun(t, home, "backup", "create")
	require.Contains(t, out, "curtains_")
	name := filepath.Base(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(out), "saved ")))

	mustRun(t, home, "customer", "add", "--name", "Omar")
	require.Contains(t, mustRun(t, home, "backup", "list"), name)

	out = mustRun(t, home, "backup", "restore", name)
	require.Contains(t, out, "restored")
	out = mustRun(t, home, "customer", "list")
	require.Contains(t, out, "Sara")
	require.NotContains(t, out, "Omar")

	_, err := os.Stat(filepath.Join(home, "data", "curtains.db.before-restore"))
	require.NoError(t, err)

	out = mustRun(t, home, "backup", "prune", "--keep", "1")
	require.Contains(t, out, "removed 0 backups")
}
