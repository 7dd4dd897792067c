package ui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/treesize/internal/model"
	"github.com/sadopc/treesize/internal/scanner"
)

// sampleTree builds r/{big/{x 300, y 100}, a 50, .hidden 10}.
func sampleTree() *model.Node {
	root := model.NewDir(filepath.FromSlash("/r"))
	big := model.NewDir(filepath.Join(root.Path, "big"))
	big.AddChild(model.NewFile(filepath.Join(big.Path, "x"), 300))
	big.AddChild(model.NewFile(filepath.Join(big.Path, "y"), 100))
	root.AddChild(big)
	root.AddChild(model.NewFile(filepath.Join(root.Path, "a"), 50))
	root.AddChild(model.NewFile(filepath.Join(root.Path, ".hidden"), 10))
	model.SortTreeBySize(root)
	return root
}

func browsingApp(t *testing.T) *App {
	t.Helper()
	app := NewApp(filepath.FromSlash("/r"), nil, nil)
	app.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	app.setRoot(sampleTree())
	return app
}

func rowNames(a *App) []string {
	names := make([]string, len(a.rows))
	for i, r := range a.rows {
		names[i] = r.Node.Name
	}
	return names
}

func equalNames(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestAppFatalError_SetOnImportError(t *testing.T) {
	app := NewAppFromImport("missing.json", nil)
	importErr := errors.New("bad export")

	_, cmd := app.Update(ImportDoneMsg{Err: importErr})
	if !errors.Is(app.FatalError(), importErr) {
		t.Fatalf("expected fatal error %v, got %v", importErr, app.FatalError())
	}
	if cmd == nil {
		t.Fatal("expected quit command on import error")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
}

func TestAppFatalError_NotSetByStatusMessages(t *testing.T) {
	app := browsingApp(t)

	_, _ = app.Update(ExportDoneMsg{Path: "out.json"})
	if app.FatalError() != nil {
		t.Fatalf("expected nil fatal error, got %v", app.FatalError())
	}
	if app.statusMsg == "" {
		t.Fatal("expected status message to be set for successful export")
	}
}

func TestApp_ScanCompletesIntoBrowsing(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), make([]byte, 100), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "sub", "b.txt"), make([]byte, 200), 0o644); err != nil {
		t.Fatal(err)
	}

	engine := scanner.NewEngine(scanner.DefaultOptions().WithMode(scanner.ModeSequential), nil, nil)
	app := NewApp(dir, scanner.NewSession(engine), nil)
	app.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	if app.Init() == nil {
		t.Fatal("Init should start polling")
	}

	deadline := time.Now().Add(5 * time.Second)
	for app.state == StateScanning {
		if time.Now().After(deadline) {
			t.Fatal("scan never finished")
		}
		app.Update(tickMsg(time.Now()))
		time.Sleep(5 * time.Millisecond)
	}

	if app.root == nil || app.root.Size != 300 {
		t.Fatalf("root = %+v", app.root)
	}
	if app.files != 2 || app.dirs != 1 {
		t.Errorf("counts = %d files %d dirs, want 2 and 1", app.files, app.dirs)
	}
	if got := rowNames(app); !equalNames(got, []string{"sub", "a.txt"}) {
		t.Fatalf("rows = %v", got)
	}
	if app.progress.FilesScanned != 2 {
		t.Errorf("final progress = %+v", app.progress)
	}

	app.Update(tea.KeyMsg{Type: tea.KeyRight})
	if got := rowNames(app); !equalNames(got, []string{"sub", "b.txt", "a.txt"}) {
		t.Fatalf("rows after expand = %v", got)
	}
	if app.View() == "" {
		t.Fatal("empty view")
	}
}

func TestApp_CancelledFirstScanQuits(t *testing.T) {
	app := NewApp("/r", nil, nil)
	cmd := app.finishScan(scanner.Outcome{Status: scanner.StatusCancelled})
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("cancelled first scan should quit")
	}
}

func TestApp_CancelledRescanKeepsTree(t *testing.T) {
	app := browsingApp(t)
	prev := app.root
	app.state = StateScanning

	app.finishScan(scanner.Outcome{Status: scanner.StatusCancelled})
	if app.state != StateBrowsing || app.root != prev {
		t.Fatal("cancelled rescan should keep the previous tree")
	}
	if app.statusMsg != scanner.MsgCancelled {
		t.Errorf("statusMsg = %q", app.statusMsg)
	}
}

func TestApp_FailedScanIsFatal(t *testing.T) {
	app := NewApp("/r", nil, nil)
	cmd := app.finishScan(scanner.Outcome{Status: scanner.StatusFailed, Err: scanner.ErrNotFound})
	if !errors.Is(app.FatalError(), scanner.ErrNotFound) {
		t.Fatalf("FatalError() = %v", app.FatalError())
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("failed scan should quit")
	}
}

func TestApp_ExpandCollapseAndHidden(t *testing.T) {
	app := browsingApp(t)
	if got := rowNames(app); !equalNames(got, []string{"big", "a", ".hidden"}) {
		t.Fatalf("rows = %v", got)
	}

	app.expandAll(true)
	if got := rowNames(app); !equalNames(got, []string{"big", "x", "y", "a", ".hidden"}) {
		t.Fatalf("rows after expand all = %v", got)
	}

	// Left on a file jumps to its parent row, then collapses it.
	app.cursor = 2
	app.collapseOrParent()
	if app.cursor != 0 {
		t.Fatalf("cursor = %d, want parent row 0", app.cursor)
	}
	app.collapseOrParent()
	if len(app.rows) != 3 {
		t.Fatalf("rows after collapse = %v", rowNames(app))
	}

	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'.'}})
	if got := rowNames(app); !equalNames(got, []string{"big", "a"}) {
		t.Fatalf("rows without hidden = %v", got)
	}
}

func TestApp_SortByNameKeepsCursorNode(t *testing.T) {
	app := browsingApp(t)
	app.cursor = 1 // "a"

	app.toggleSort(model.SortByName)
	if got := rowNames(app); !equalNames(got, []string{".hidden", "a", "big"}) {
		t.Fatalf("rows sorted by name = %v", got)
	}
	if app.selected().Name != "a" {
		t.Errorf("cursor moved to %q", app.selected().Name)
	}
}

func TestApp_DeleteDoneUpdatesTree(t *testing.T) {
	app := browsingApp(t)
	app.expandAll(true)
	x := filepath.Join(app.root.Path, "big", "x")

	app.Update(DeleteDoneMsg{Deleted: []string{x}})
	if app.root.Size != 160 {
		t.Errorf("root size = %d, want 160", app.root.Size)
	}
	if big := app.root.Find(filepath.Join(app.root.Path, "big")); big.Size != 100 {
		t.Errorf("big size = %d, want 100", big.Size)
	}
	if app.files != 3 {
		t.Errorf("files = %d, want 3", app.files)
	}
	if app.statusMsg != "Deleted 1 item(s)" {
		t.Errorf("statusMsg = %q", app.statusMsg)
	}
}

func TestApp_PendingDeletesDropsNested(t *testing.T) {
	app := browsingApp(t)
	big := filepath.Join(app.root.Path, "big")
	app.marked = map[string]bool{
		big:                                  true,
		filepath.Join(big, "x"):              true,
		filepath.Join(app.root.Path, "a"):    true,
		filepath.Join(app.root.Path, "gone"): true,
	}

	nodes := app.pendingDeletes()
	if len(nodes) != 2 {
		t.Fatalf("pendingDeletes() = %d nodes, want 2", len(nodes))
	}
	if got := app.markedSize(); got != 450 {
		t.Errorf("markedSize() = %d, want 450", got)
	}
}

func TestApp_ImportModeDisablesDelete(t *testing.T) {
	app := browsingApp(t)
	app.imported = true

	app.prepareDelete()
	if app.state != StateBrowsing {
		t.Fatalf("state = %v, want browsing", app.state)
	}
	if app.statusMsg == "" {
		t.Fatal("expected a status message")
	}
}

func TestApp_ConfirmDeleteShowsScanRoot(t *testing.T) {
	app := browsingApp(t)
	app.marked[filepath.Join(app.root.Path, "a")] = true

	app.prepareDelete()
	if app.state != StateConfirmDelete {
		t.Fatalf("state = %v, want confirm", app.state)
	}
	view := app.View()
	for _, want := range []string{"Delete 1 item(s)?", "under " + app.root.Path, "a"} {
		if !strings.Contains(view, want) {
			t.Errorf("confirm view missing %q", want)
		}
	}
}
