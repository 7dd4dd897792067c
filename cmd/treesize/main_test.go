package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/sadopc/treesize/internal/disk"
	"github.com/sadopc/treesize/internal/ops"
	"github.com/sadopc/treesize/internal/scanner"
)

type cliResult struct {
	stdout string
	stderr string
	err    error
}

// runCLI executes the command tree in-process with an isolated config file.
func runCLI(t *testing.T, args ...string) cliResult {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append(args, "--config", filepath.Join(t.TempDir(), "absent.yaml")))
	err := cmd.Execute()
	return cliResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func createScanFixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]int{
		"a.txt":          100,
		"sub/b.txt":      200,
		"sub/deep/c.bin": 300,
		".hidden/secret": 5,
	}
	for rel, size := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, make([]byte, size), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestScan_PrintsSummary(t *testing.T) {
	root := createScanFixture(t)

	res := runCLI(t, "scan", "--mode", "sequential", root)
	if res.err != nil {
		t.Fatalf("scan failed: %v\nstderr:\n%s", res.err, res.stderr)
	}
	for _, want := range []string{"Scanned " + root, "Files:", "605 B", "Largest entries", "sub" + string(filepath.Separator)} {
		if !strings.Contains(res.stdout, want) {
			t.Errorf("summary missing %q:\n%s", want, res.stdout)
		}
	}
}

func TestScan_ExportRoundTrip(t *testing.T) {
	root := createScanFixture(t)
	exportPath := filepath.Join(t.TempDir(), "scan.json.zst")

	res := runCLI(t, "scan", "--mode", "parallel", "-j", "4", "--export", exportPath, root)
	if res.err != nil {
		t.Fatalf("scan failed: %v", res.err)
	}
	if !strings.Contains(res.stdout, "Exported to "+exportPath) {
		t.Fatalf("expected export confirmation, got:\n%s", res.stdout)
	}

	imported, err := ops.ImportJSON(exportPath)
	if err != nil {
		t.Fatalf("importing export failed: %v", err)
	}
	if imported.Size != 605 {
		t.Fatalf("imported size = %d, want 605", imported.Size)
	}
	if imported.Children[0].Name != "sub" || imported.Children[0].Size != 500 {
		t.Errorf("largest child = %s (%d), want sub (500)", imported.Children[0].Name, imported.Children[0].Size)
	}
}

func TestScan_VerboseLogsAtConfiguredLevel(t *testing.T) {
	root := createScanFixture(t)

	res := runCLI(t, "scan", "-q", "-v", "--log-level", "info", "--mode", "sequential", root)
	if res.err != nil {
		t.Fatalf("scan failed: %v", res.err)
	}
	if !strings.Contains(res.stderr, "scan complete") {
		t.Errorf("stderr missing scan log:\n%s", res.stderr)
	}

	res = runCLI(t, "scan", "-q", "-v", "--log-level", "error", "--mode", "sequential", root)
	if res.err != nil {
		t.Fatalf("scan failed: %v", res.err)
	}
	if strings.Contains(res.stderr, "scan complete") {
		t.Errorf("info log leaked at error level:\n%s", res.stderr)
	}
}

func TestScan_Quiet(t *testing.T) {
	root := createScanFixture(t)
	res := runCLI(t, "scan", "-q", root)
	if res.err != nil {
		t.Fatal(res.err)
	}
	if res.stdout != "" {
		t.Errorf("quiet scan wrote output:\n%s", res.stdout)
	}
}

func TestScan_MissingPath(t *testing.T) {
	res := runCLI(t, "scan", filepath.Join(t.TempDir(), "nope"))
	if !errors.Is(res.err, scanner.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", res.err)
	}
}

func TestScan_InvalidMode(t *testing.T) {
	res := runCLI(t, "scan", "--mode", "turbo", t.TempDir())
	if res.err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestRoot_ImportReexport(t *testing.T) {
	root := createScanFixture(t)
	first := filepath.Join(t.TempDir(), "scan.json")
	if res := runCLI(t, "scan", "-q", "--export", first, root); res.err != nil {
		t.Fatal(res.err)
	}

	second := filepath.Join(t.TempDir(), "again.json")
	res := runCLI(t, "--import", first, "--export", second)
	if res.err != nil {
		t.Fatalf("re-export failed: %v", res.err)
	}
	if !strings.Contains(res.stdout, "Exported to "+second) {
		t.Fatalf("expected re-export confirmation, got:\n%s", res.stdout)
	}

	a, err := ops.ImportJSON(first)
	if err != nil {
		t.Fatal(err)
	}
	b, err := ops.ImportJSON(second)
	if err != nil {
		t.Fatal(err)
	}
	af, ad := a.Counts()
	bf, bd := b.Counts()
	if a.Size != b.Size || af != bf || ad != bd {
		t.Fatalf("re-export changed the tree: %d/%d/%d vs %d/%d/%d", a.Size, af, ad, b.Size, bf, bd)
	}
}

func TestRoot_ImportMissingFile(t *testing.T) {
	exportPath := filepath.Join(t.TempDir(), "out.json")
	res := runCLI(t, "--import", filepath.Join(t.TempDir(), "missing.json"), "--export", exportPath)
	if res.err == nil {
		t.Fatal("expected error for missing import file")
	}
	if _, err := os.Stat(exportPath); !os.IsNotExist(err) {
		t.Fatalf("expected no output file, stat err=%v", err)
	}
}

func TestRoot_ImportRejectsScanPath(t *testing.T) {
	res := runCLI(t, "--import", "scan.json", t.TempDir())
	if res.err == nil || !strings.Contains(res.err.Error(), "--import cannot be used") {
		t.Fatalf("err = %v", res.err)
	}
}

func TestRoot_MissingPathFailsBeforeTUI(t *testing.T) {
	res := runCLI(t, filepath.Join(t.TempDir(), "nope"))
	if !errors.Is(res.err, scanner.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", res.err)
	}
}

func TestGlobalFlags_OverrideConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "scan:\n  mode: sequential\n  workers: 3\n  parallel_depth: 1\nlog_level: warn\n"
	if err := os.WriteFile(cfgPath, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	g := &globalFlags{}
	cmd := &cobra.Command{Use: "x"}
	g.register(cmd.PersistentFlags())
	if err := cmd.ParseFlags([]string{"--config", cfgPath, "--workers", "5"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := g.load(cmd)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Scan.Workers != 5 {
		t.Errorf("Workers = %d, want flag value 5", cfg.Scan.Workers)
	}
	if cfg.Scan.Mode != "sequential" || *cfg.Scan.ParallelDepth != 1 || cfg.LogLevel != "warn" {
		t.Errorf("file values lost: %+v", cfg.Scan)
	}
}

func TestGlobalFlags_RejectsBadLogLevel(t *testing.T) {
	g := &globalFlags{}
	cmd := &cobra.Command{Use: "x"}
	g.register(cmd.PersistentFlags())
	args := []string{"--config", filepath.Join(t.TempDir(), "none.yaml"), "--log-level", "loud"}
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatal(err)
	}
	if _, err := g.load(cmd); err == nil {
		t.Fatal("expected error for unknown log level")
	}
}

func TestVolumeTable(t *testing.T) {
	out := volumeTable([]disk.Volume{{
		MountPoint: "/data",
		Device:     "/dev/sdb1",
		FSType:     "ext4",
		TotalBytes: 1 << 30,
		FreeBytes:  1 << 29,
		Kind:       disk.KindHDD,
	}})
	for _, want := range []string{"MOUNT", "/data", "HDD", "1.0 GiB", "50%"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestDisks_Runs(t *testing.T) {
	if res := runCLI(t, "disks"); res.err != nil {
		t.Fatalf("disks failed: %v", res.err)
	}
}
