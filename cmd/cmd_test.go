package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/billbatista/acasinha-splitter/config"
	"github.com/billbatista/acasinha-splitter/ledger"
)

// writeConfig points the file driver at a temp dir and returns the config path.
func writeConfig(t *testing.T, people ...string) (cfgPath, ledgerPath string) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Storage.Path = filepath.Join(dir, "ledger.json")
	cfg.Events.Enabled = false
	if len(people) > 0 {
		cfg.Ledger.People = people
	}
	cfgPath = filepath.Join(dir, "config.toml")
	if err := config.Save(cfgPath, cfg); err != nil {
		t.Fatalf("config.Save: %v", err)
	}
	return cfgPath, cfg.Storage.Path
}

func run(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	flagYes, flagForce, flagAddr = false, false, ""

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func loadLedger(t *testing.T, path string) ledger.State {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading ledger: %v", err)
	}
	s, err := ledger.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return s
}

func TestCommands_Flow(t *testing.T) {
	cfgPath, ledgerPath := writeConfig(t, "Ana", "Bea", "Cy")

	out, err := run(t, cfgPath, "bill", "90")
	if err != nil {
		t.Fatalf("bill: %v", err)
	}
	if !strings.Contains(out, "€90.00") {
		t.Errorf("bill output missing amount:\n%s", out)
	}

	if _, err := run(t, cfgPath, "pay", "30", "Ana", "Bea"); err != nil {
		t.Fatalf("pay: %v", err)
	}
	if _, err := run(t, cfgPath, "add", "Dee"); err != nil {
		t.Fatalf("add: %v", err)
	}

	s := loadLedger(t, ledgerPath)
	if !slices.Equal(s.People, []string{"Ana", "Bea", "Cy", "Dee"}) {
		t.Errorf("People = %v", s.People)
	}
	if len(s.Transactions) != 1 || s.RemainingAmount.String() != "60" {
		t.Errorf("after pay: %d transactions, remaining %s", len(s.Transactions), s.RemainingAmount)
	}

	if _, err := run(t, cfgPath, "remove", "--yes", "Bea"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	s = loadLedger(t, ledgerPath)
	if s.HasPerson("Bea") {
		t.Error("Bea still present")
	}
	if got := s.Payments["Ana"].String(); got != "30" {
		t.Errorf("Payments[Ana] = %s, want 30", got)
	}

	out, err = run(t, cfgPath, "show")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.Contains(out, "Final split") {
		t.Errorf("show output:\n%s", out)
	}

	if _, err := run(t, cfgPath, "delete-tx", "0"); err != nil {
		t.Fatalf("delete-tx: %v", err)
	}
	if s = loadLedger(t, ledgerPath); len(s.Transactions) != 0 || !s.RemainingAmount.Equal(s.BillAmount) {
		t.Errorf("after delete-tx: %+v", s)
	}

	if _, err := run(t, cfgPath, "reset"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, err := os.Stat(ledgerPath); !os.IsNotExist(err) {
		t.Errorf("ledger file still present after reset: %v", err)
	}
}

func TestCommands_RejectedInput(t *testing.T) {
	cfgPath, _ := writeConfig(t, "Ana")

	if _, err := run(t, cfgPath, "pay", "10", "Ana"); err == nil || err.Error() != "Set the bill amount first!" {
		t.Errorf("pay before bill: err = %v", err)
	}
	if _, err := run(t, cfgPath, "bill", "abc"); err == nil || err.Error() != "Please enter a valid bill amount!" {
		t.Errorf("bad bill: err = %v", err)
	}
	if _, err := run(t, cfgPath, "bill", "20"); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, cfgPath, "pay", "25", "Ana"); err == nil || err.Error() != "Amount exceeds remaining (€20.00)!" {
		t.Errorf("overpay: err = %v", err)
	}
	if _, err := run(t, cfgPath, "delete-tx", "x"); err == nil {
		t.Error("non-numeric index accepted")
	}
	out, err := run(t, cfgPath, "delete-tx", "3")
	if err != nil || !strings.Contains(out, "no transaction at index 3") {
		t.Errorf("delete-tx out of range: %q, %v", out, err)
	}
}

func TestCommands_RemoveUnknownPerson(t *testing.T) {
	cfgPath, _ := writeConfig(t, "Ana")
	if _, err := run(t, cfgPath, "bill", "20"); err != nil {
		t.Fatal(err)
	}
	out, err := run(t, cfgPath, "remove", "--yes", "Zed")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Zed was not removed") {
		t.Errorf("out = %q", out)
	}
}

func TestConfigInit(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "nested", "config.toml")

	if _, err := run(t, cfgPath, "config", "init"); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if _, err := run(t, cfgPath, "config", "init"); err == nil {
		t.Error("second init overwrote the file without --force")
	}
	if _, err := run(t, cfgPath, "config", "init", "--force"); err != nil {
		t.Errorf("config init --force: %v", err)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != ":5000" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}

	out, err := run(t, cfgPath, "config", "show")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `driver = "file"`) {
		t.Errorf("config show:\n%s", out)
	}
}

func TestOpenApp_SQLite(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Storage.Driver = "sqlite"
	cfg.Storage.DSN = filepath.Join(dir, "ledger.db")
	cfgPath := filepath.Join(dir, "config.toml")
	if err := config.Save(cfgPath, cfg); err != nil {
		t.Fatal(err)
	}

	if _, err := run(t, cfgPath, "bill", "50"); err != nil {
		t.Fatalf("bill: %v", err)
	}
	if _, err := run(t, cfgPath, "pay", "20", "Apurv"); err != nil {
		t.Fatalf("pay: %v", err)
	}

	flagConfig = cfgPath
	a, err := openApp(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()
	if got := a.engine.State().RemainingAmount.String(); got != "30" {
		t.Errorf("RemainingAmount = %s, want 30", got)
	}
}
