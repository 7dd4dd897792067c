package ops

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sadopc/treesize/internal/model"
)

func sampleTree() *model.Node {
	root := model.NewDir("/root")
	sub := model.NewDir("/root/sub")
	sub.AddChild(model.NewFile("/root/sub/b.txt", 200))
	root.AddChild(sub)
	root.AddChild(model.NewFile("/root/a.txt", 100))
	return root
}

func TestExportJSON_Stdout(t *testing.T) {
	root := sampleTree()

	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	defer r.Close()
	os.Stdout = w

	done := make(chan []byte)
	go func() {
		data, _ := io.ReadAll(r)
		done <- data
	}()

	exportErr := ExportJSON(root, "-", "test-version")
	closeErr := w.Close()
	os.Stdout = oldStdout
	data := <-done

	if exportErr != nil {
		t.Fatalf("ExportJSON returned error: %v", exportErr)
	}
	if closeErr != nil {
		t.Fatalf("closing pipe writer failed: %v", closeErr)
	}

	out := strings.TrimSpace(string(data))
	if !strings.Contains(out, `"progver":"test-version"`) {
		t.Fatalf("expected version in export output, got:\n%s", out)
	}
	if !strings.Contains(out, `"progname":"treesize"`) {
		t.Fatalf("expected program name in export output, got:\n%s", out)
	}
	if !strings.Contains(out, `"name":"/root"`) || !strings.Contains(out, `"name":"b.txt"`) {
		t.Fatalf("expected entries in export output, got:\n%s", out)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(out), &raw); err != nil {
		t.Fatalf("export output is not valid JSON: %v\n%s", err, out)
	}
	if len(raw) < 4 {
		t.Fatalf("expected ncdu format array with >=4 elements, got %d", len(raw))
	}
}

func TestExportJSON_RoundTrip(t *testing.T) {
	tmp := t.TempDir()
	for _, name := range []string{"scan.json", "scan.json.zst"} {
		target := filepath.Join(tmp, name)
		if err := ExportJSON(sampleTree(), target, "test"); err != nil {
			t.Fatalf("%s: export: %v", name, err)
		}

		got, err := ImportJSON(target)
		if err != nil {
			t.Fatalf("%s: import: %v", name, err)
		}
		if got.Path != "/root" || got.Size != 300 || !got.Expanded {
			t.Fatalf("%s: root = %+v", name, got)
		}
		if len(got.Children) != 2 || got.Children[0].Name != "sub" {
			t.Fatalf("%s: children not sorted by size", name)
		}
		b := got.Find(filepath.Join("/root", "sub", "b.txt"))
		if b == nil || !b.IsFile || b.Size != 200 {
			t.Fatalf("%s: nested file lost: %+v", name, b)
		}
	}
}

func TestExportJSON_CompressedIsNotPlainJSON(t *testing.T) {
	target := filepath.Join(t.TempDir(), "scan.json.zst")
	if err := ExportJSON(sampleTree(), target, "test"); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	// zstd frame magic number, little endian.
	if len(data) < 4 || data[0] != 0x28 || data[1] != 0xB5 || data[2] != 0x2F || data[3] != 0xFD {
		t.Fatalf("expected zstd frame, got % x", data[:min(4, len(data))])
	}
}

func TestExportJSON_AtomicNoPartialFile(t *testing.T) {
	tmp := t.TempDir()
	target := filepath.Join(tmp, "output.json")

	if err := ExportJSON(sampleTree(), target, "test"); err != nil {
		t.Fatalf("export: %v", err)
	}
	entries, err := os.ReadDir(tmp)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "output.json" {
		t.Fatalf("expected only output.json, found %d entries", len(entries))
	}

	missingDir := filepath.Join(tmp, "missing", "out.json")
	if err := ExportJSON(sampleTree(), missingDir, "test"); err == nil {
		t.Fatal("expected error exporting into a missing directory")
	}
}

func TestExportJSON_OverwriteExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.json")

	rootA := model.NewDir("/root")
	rootA.AddChild(model.NewFile("/root/a.txt", 1))
	if err := ExportJSON(rootA, path, "test"); err != nil {
		t.Fatalf("first export failed: %v", err)
	}

	rootB := model.NewDir("/root")
	rootB.AddChild(model.NewFile("/root/b.txt", 7))
	if err := ExportJSON(rootB, path, "test"); err != nil {
		t.Fatalf("second export failed: %v", err)
	}

	imported, err := ImportJSON(path)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if imported.Size != 7 {
		t.Fatalf("expected overwritten export size 7, got %d", imported.Size)
	}
	if len(imported.Children) != 1 || imported.Children[0].Name != "b.txt" {
		t.Fatalf("expected overwritten export to contain b.txt, got %+v", imported.Children)
	}
}

func TestExportJSON_FileRoot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.json")
	if err := ExportJSON(model.NewFile("/data/big.iso", 4096), path, "test"); err != nil {
		t.Fatal(err)
	}
	imported, err := ImportJSON(path)
	if err != nil {
		t.Fatal(err)
	}
	if imported.Size != 4096 || len(imported.Children) != 1 || !imported.Children[0].IsFile {
		t.Fatalf("imported = %+v", imported)
	}
}
