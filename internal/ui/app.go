package ui

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/treesize/internal/model"
	"github.com/sadopc/treesize/internal/ops"
	"github.com/sadopc/treesize/internal/scanner"
	"github.com/sadopc/treesize/internal/ui/components"
	"github.com/sadopc/treesize/internal/ui/style"
)

// AppState represents the application state.
type AppState int

const (
	StateScanning AppState = iota
	StateBrowsing
	StateConfirmDelete
	StateHelp
	StateExporting
)

// tickInterval is how often the UI polls the scan session.
const tickInterval = 60 * time.Millisecond

// ImportDoneMsg is sent when loading an export completes.
type ImportDoneMsg struct {
	Root *model.Node
	Err  error
}

// DeleteDoneMsg is sent when deletion completes.
type DeleteDoneMsg struct {
	Deleted []string
	Errors  []error
}

// ExportDoneMsg is sent when export completes.
type ExportDoneMsg struct {
	Path string
	Err  error
}

type tickMsg time.Time

// App is the root Bubble Tea model.
type App struct {
	ScanPath   string
	ImportPath string
	ExportPath string
	Version    string

	session *scanner.Session
	log     *slog.Logger

	state  AppState
	width  int
	height int

	root       *model.Node
	files      int64
	dirs       int64
	rows       []components.Row
	sortConfig model.SortConfig

	cursor int
	offset int

	marked      map[string]bool
	markedItems []components.ConfirmItem

	showHidden bool
	imported   bool

	progress scanner.Snapshot

	theme  style.Theme
	keys   KeyMap
	layout style.Layout

	statusMsg string
	fatalErr  error
}

// NewApp creates an App that scans scanPath with session.
func NewApp(scanPath string, session *scanner.Session, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &App{
		ScanPath:   scanPath,
		session:    session,
		log:        logger,
		state:      StateScanning,
		sortConfig: model.DefaultSort(),
		marked:     make(map[string]bool),
		showHidden: true,
		theme:      style.DefaultTheme(),
		keys:       DefaultKeyMap(),
	}
}

// NewAppFromImport creates an App that loads a previously exported tree.
func NewAppFromImport(importPath string, logger *slog.Logger) *App {
	a := NewApp("", nil, logger)
	a.ImportPath = importPath
	a.imported = true
	return a
}

func (a *App) Init() tea.Cmd {
	if a.ImportPath != "" {
		return a.importCmd()
	}
	return a.startScan()
}

func (a *App) startScan() tea.Cmd {
	a.state = StateScanning
	a.progress = scanner.Snapshot{}
	a.session.Start(context.Background(), a.ScanPath)
	return a.tickCmd()
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.layout = style.NewLayout(msg.Width, msg.Height)
		return a, nil

	case tickMsg:
		return a, a.poll()

	case ImportDoneMsg:
		if msg.Err != nil {
			a.fatalErr = msg.Err
			return a, tea.Quit
		}
		a.setRoot(msg.Root)
		return a, tea.ClearScreen

	case DeleteDoneMsg:
		removed := 0
		for _, p := range msg.Deleted {
			if _, ok := a.root.RemovePath(p); ok {
				removed++
			}
		}
		a.files, a.dirs = a.root.Counts()
		a.state = StateBrowsing
		a.clearMarks()
		a.refreshRows()
		if len(msg.Errors) > 0 {
			a.statusMsg = fmt.Sprintf("Delete: %d failed (%v)", len(msg.Errors), msg.Errors[0])
		} else if removed > 0 {
			a.statusMsg = fmt.Sprintf("Deleted %d item(s)", removed)
		}
		return a, tea.ClearScreen

	case ExportDoneMsg:
		a.state = StateBrowsing
		if msg.Err != nil {
			a.statusMsg = fmt.Sprintf("Export failed: %v", msg.Err)
		} else {
			a.statusMsg = fmt.Sprintf("Exported to %s", msg.Path)
		}
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	return a, nil
}

// poll reads the session without blocking. A snapshot that is busy at this
// instant is simply picked up on the next tick.
func (a *App) poll() tea.Cmd {
	if a.state != StateScanning || a.session == nil {
		return nil
	}
	if snap, ok := a.session.PollProgress(); ok {
		a.progress = snap
	}
	out, ok := a.session.PollOutcome()
	if !ok {
		return a.tickCmd()
	}
	a.progress = a.session.Progress().Load()
	return a.finishScan(out)
}

func (a *App) finishScan(out scanner.Outcome) tea.Cmd {
	switch out.Status {
	case scanner.StatusComplete:
		a.setRoot(out.Root)
		return tea.ClearScreen

	case scanner.StatusCancelled:
		if a.root == nil {
			return tea.Quit
		}
		a.state = StateBrowsing
		a.statusMsg = scanner.MsgCancelled
		return tea.ClearScreen

	default:
		a.fatalErr = out.Err
		return tea.Quit
	}
}

func (a *App) setRoot(root *model.Node) {
	a.root = root
	a.root.Expanded = true
	a.files, a.dirs = root.Counts()
	if a.sortConfig != model.DefaultSort() {
		model.SortTree(a.root, a.sortConfig)
	}
	a.cursor = 0
	a.offset = 0
	a.state = StateBrowsing
	a.clearMarks()
	a.refreshRows()
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, a.keys.ForceQuit) {
		a.cancelScan()
		return a, tea.Quit
	}

	switch a.state {
	case StateScanning:
		switch {
		case key.Matches(msg, a.keys.Quit):
			a.cancelScan()
			return a, tea.Quit
		case key.Matches(msg, a.keys.Cancel):
			a.cancelScan()
		}
		return a, nil

	case StateHelp:
		if key.Matches(msg, a.keys.Help) || msg.String() == "esc" {
			a.state = StateBrowsing
			return a, tea.ClearScreen
		}
		return a, nil

	case StateConfirmDelete:
		if key.Matches(msg, a.keys.ConfirmYes) {
			return a, a.executeDelete()
		}
		if key.Matches(msg, a.keys.ConfirmNo) {
			a.state = StateBrowsing
			return a, tea.ClearScreen
		}
		return a, nil

	case StateBrowsing:
		return a.handleBrowsingKey(msg)
	}

	return a, nil
}

func (a *App) cancelScan() {
	if a.session != nil {
		a.session.Cancel()
	}
}

func (a *App) handleBrowsingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a.statusMsg = ""
	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keys.Help):
		a.state = StateHelp
		return a, tea.ClearScreen

	case key.Matches(msg, a.keys.Up):
		a.moveCursor(-1)
	case key.Matches(msg, a.keys.Down):
		a.moveCursor(1)
	case key.Matches(msg, a.keys.PageUp):
		a.moveCursor(-a.layout.ContentHeight())
	case key.Matches(msg, a.keys.PageDown):
		a.moveCursor(a.layout.ContentHeight())

	case key.Matches(msg, a.keys.Expand):
		a.setExpanded(true)
	case key.Matches(msg, a.keys.Collapse):
		a.collapseOrParent()
	case key.Matches(msg, a.keys.Toggle):
		if n := a.selected(); n != nil && n.IsDir() {
			a.setExpanded(!n.Expanded)
		}
	case key.Matches(msg, a.keys.ExpandAll):
		a.expandAll(true)
	case key.Matches(msg, a.keys.CollapseAll):
		a.expandAll(false)

	case key.Matches(msg, a.keys.SortSize):
		a.toggleSort(model.SortBySize)
	case key.Matches(msg, a.keys.SortName):
		a.toggleSort(model.SortByName)
	case key.Matches(msg, a.keys.ToggleHidden):
		a.showHidden = !a.showHidden
		a.clearMarks()
		a.refreshRows()

	case key.Matches(msg, a.keys.Mark):
		a.toggleMark()

	case key.Matches(msg, a.keys.Delete):
		a.prepareDelete()
		if a.state == StateConfirmDelete {
			return a, tea.ClearScreen
		}

	case key.Matches(msg, a.keys.Export):
		return a, a.exportCmd()

	case key.Matches(msg, a.keys.Rescan):
		if a.imported {
			a.statusMsg = "Rescan is disabled in import mode"
			return a, nil
		}
		a.clearMarks()
		return a, tea.Batch(tea.ClearScreen, a.startScan())
	}

	return a, nil
}

func (a *App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	switch a.state {
	case StateScanning:
		return components.RenderScanProgress(a.theme, a.progress, a.width, a.height)

	case StateHelp:
		return components.RenderHelp(a.theme, a.keys.HelpSections(), a.width, a.height)

	case StateConfirmDelete:
		return components.RenderConfirmDialog(a.theme, components.DeletePlan{
			Root:     a.root.Path,
			RootSize: a.root.Size,
			Items:    a.markedItems,
		}, a.width, a.height)

	case StateBrowsing, StateExporting:
		return a.renderBrowsing()
	}

	return ""
}

func (a *App) renderBrowsing() string {
	header := components.RenderHeader(a.theme, components.HeaderInfo{
		Root:  a.root,
		Files: a.files,
		Dirs:  a.dirs,
	}, a.width)
	breadcrumb := components.RenderBreadcrumb(a.theme, a.root, a.selected(), a.width)
	infoBar := components.RenderInfoBar(a.theme, a.progress, a.sortConfig, a.width)

	tv := &components.TreeView{
		Theme:  a.theme,
		Layout: a.layout,
		Rows:   a.rows,
		Cursor: a.cursor,
		Offset: a.offset,
		Marked: a.marked,
	}
	tv.EnsureVisible()
	a.offset = tv.Offset
	content := tv.Render()

	statusBar := components.RenderStatusBar(a.theme, components.StatusInfo{
		Selected:    a.selected(),
		RowCount:    len(a.rows),
		MarkedCount: len(a.marked),
		MarkedSize:  a.markedSize(),
		ShowHidden:  a.showHidden,
		Imported:    a.imported,
		Message:     a.statusMsg,
	}, a.width)

	return header + "\n" + breadcrumb + "\n" + infoBar + "\n" + content + "\n" + statusBar
}

func (a *App) selected() *model.Node {
	if a.cursor < 0 || a.cursor >= len(a.rows) {
		return nil
	}
	return a.rows[a.cursor].Node
}

func (a *App) moveCursor(delta int) {
	a.cursor = min(max(a.cursor+delta, 0), max(len(a.rows)-1, 0))
}

// refreshRows rebuilds the visible rows, keeping the cursor on the same
// node when it is still visible.
func (a *App) refreshRows() {
	current := a.selected()
	a.rows = components.FlattenTree(a.root, a.showHidden)
	if current != nil {
		for i, r := range a.rows {
			if r.Node == current {
				a.cursor = i
				return
			}
		}
	}
	a.moveCursor(0)
}

func (a *App) setExpanded(expanded bool) {
	n := a.selected()
	if n == nil || !n.IsDir() || n.Expanded == expanded {
		return
	}
	n.Expanded = expanded
	a.refreshRows()
}

// collapseOrParent collapses an open directory, or jumps to the parent row.
func (a *App) collapseOrParent() {
	n := a.selected()
	if n == nil {
		return
	}
	if n.IsDir() && n.Expanded {
		a.setExpanded(false)
		return
	}
	depth := a.rows[a.cursor].Depth
	for i := a.cursor - 1; i >= 0; i-- {
		if a.rows[i].Depth < depth {
			a.cursor = i
			return
		}
	}
}

func (a *App) expandAll(expanded bool) {
	if a.root == nil {
		return
	}
	a.root.ExpandAll(expanded)
	a.root.Expanded = true
	a.refreshRows()
}

func (a *App) toggleSort(field model.SortField) {
	if a.sortConfig.Field == field {
		if a.sortConfig.Order == model.SortDesc {
			a.sortConfig.Order = model.SortAsc
		} else {
			a.sortConfig.Order = model.SortDesc
		}
	} else {
		a.sortConfig.Field = field
		a.sortConfig.Order = model.SortDesc
		if field == model.SortByName {
			a.sortConfig.Order = model.SortAsc
		}
	}
	if a.root != nil {
		model.SortTree(a.root, a.sortConfig)
	}
	a.refreshRows()
}

func (a *App) toggleMark() {
	n := a.selected()
	if n == nil {
		return
	}
	if a.marked[n.Path] {
		delete(a.marked, n.Path)
	} else {
		a.marked[n.Path] = true
	}
	a.moveCursor(1)
}

func (a *App) clearMarks() {
	a.marked = make(map[string]bool)
}

func (a *App) importCmd() tea.Cmd {
	path := a.ImportPath
	return func() tea.Msg {
		root, err := ops.ImportJSON(path)
		return ImportDoneMsg{Root: root, Err: err}
	}
}

func (a *App) tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// pendingDeletes resolves the marked paths, or the cursor row when nothing
// is marked. Entries inside another selected directory are dropped.
func (a *App) pendingDeletes() []*model.Node {
	var nodes []*model.Node
	if len(a.marked) == 0 {
		if n := a.selected(); n != nil {
			nodes = append(nodes, n)
		}
		return nodes
	}

	paths := make([]string, 0, len(a.marked))
	for p := range a.marked {
		paths = append(paths, p)
	}
	slices.Sort(paths)

	var kept []string
	for _, p := range paths {
		if slices.ContainsFunc(kept, func(dir string) bool { return within(dir, p) }) {
			continue
		}
		if n := a.root.Find(p); n != nil {
			kept = append(kept, p)
			nodes = append(nodes, n)
		}
	}
	return nodes
}

func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && rel != "." && filepath.IsLocal(rel)
}

func (a *App) prepareDelete() {
	if a.imported {
		a.statusMsg = "Delete is disabled in import mode"
		return
	}
	if a.root == nil {
		return
	}

	var items []components.ConfirmItem
	for _, n := range a.pendingDeletes() {
		items = append(items, components.ConfirmItem{
			Name:  n.Name,
			Path:  n.Path,
			Size:  n.Size,
			IsDir: n.IsDir(),
		})
	}
	if len(items) == 0 {
		return
	}

	a.markedItems = items
	a.state = StateConfirmDelete
}

// executeDelete removes the confirmed items from disk. The tree itself is
// only updated on the event loop when DeleteDoneMsg arrives.
func (a *App) executeDelete() tea.Cmd {
	items := a.markedItems
	rootPath := a.root.Path
	logger := a.log

	return func() tea.Msg {
		var deleted []string
		var errs []error

		for _, item := range items {
			if err := ops.Delete(item.Path, rootPath); err != nil {
				logger.Warn("delete failed", "path", item.Path, "error", err)
				errs = append(errs, err)
				continue
			}
			logger.Info("deleted", "path", item.Path, "bytes", item.Size)
			deleted = append(deleted, item.Path)
		}

		return DeleteDoneMsg{Deleted: deleted, Errors: errs}
	}
}

// FatalError returns a fatal scan/import error, if any.
func (a *App) FatalError() error { return a.fatalErr }

func (a *App) markedSize() int64 {
	if len(a.marked) == 0 {
		return 0
	}
	var total int64
	for _, n := range a.pendingDeletes() {
		total += n.Size
	}
	return total
}

func (a *App) exportCmd() tea.Cmd {
	if a.root == nil {
		return nil
	}

	exportPath := a.ExportPath
	if exportPath == "" {
		exportPath = "treesize-export.json"
	}

	a.state = StateExporting
	root := a.root
	version := a.Version
	return func() tea.Msg {
		err := ops.ExportJSON(root, exportPath, version)
		return ExportDoneMsg{Path: exportPath, Err: err}
	}
}
