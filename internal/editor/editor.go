// Package editor holds the editor session: the virtual file tree, open tabs,
// the active file, appearance preferences and the last execution result.
// An Editor is built once at startup and handed to every front end.
package editor

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/interpretive-systems/codecraft/internal/execution"
	"github.com/interpretive-systems/codecraft/internal/history"
	"github.com/interpretive-systems/codecraft/internal/langs"
	"github.com/interpretive-systems/codecraft/internal/logging"
	"github.com/interpretive-systems/codecraft/internal/metrics"
	"github.com/interpretive-systems/codecraft/internal/prefs"
	"github.com/interpretive-systems/codecraft/internal/store"
	"github.com/interpretive-systems/codecraft/internal/vfs"
)

// NewFolderName is the name given to folders created from the explorer.
const NewFolderName = "New Folder"

const storageTimeout = 5 * time.Second

// Buffer is the visible editor widget. The editor pushes the active file's
// content into it; the widget holds no state of its own beyond the edit in
// progress.
type Buffer interface {
	SetValue(content string)
	Value() string
}

// Runner executes code. *execution.Runner satisfies it.
type Runner interface {
	Run(ctx context.Context, language, code string) (execution.Result, error)
	Running() bool
}

// Options wires an Editor. Store nil means memory-only operation.
type Options struct {
	Store    store.KV
	Prefs    *prefs.Prefs
	Runner   Runner
	History  history.Sink
	Identity history.Identity
	Buffer   Buffer
	Tree     *vfs.Tree
	Logger   *zap.Logger
}

// Editor is the session context object. All methods are safe for concurrent
// use; each operation reads and writes state under one lock.
type Editor struct {
	kv       store.KV
	runner   Runner
	history  history.Sink
	identity history.Identity
	log      *zap.Logger

	mu           sync.Mutex
	tree         *vfs.Tree
	buffer       Buffer
	activeID     string
	openIDs      []string
	language     string
	theme        string
	fontSize     int
	autocomplete bool
	autoDelay    time.Duration

	output   string
	runError string
	result   *execution.Result
	degraded bool

	pending sync.WaitGroup
}

// New builds an editor. Preferences are read from the store unless given.
func New(opts Options) *Editor {
	e := &Editor{
		kv:       opts.Store,
		runner:   opts.Runner,
		history:  opts.History,
		identity: opts.Identity,
		log:      opts.Logger,
		tree:     opts.Tree,
		buffer:   opts.Buffer,
	}
	if e.log == nil {
		e.log = logging.Named("editor")
	}
	if e.tree == nil {
		e.tree = vfs.New()
	}
	if e.history == nil {
		e.history = history.Nop{}
	}
	if e.kv == nil {
		e.degraded = true
	}

	p := prefs.Defaults()
	switch {
	case opts.Prefs != nil:
		p = *opts.Prefs
	case e.kv != nil:
		ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
		p = prefs.Load(ctx, e.kv)
		cancel()
	}
	if !langs.Known(p.Language) {
		p.Language = langs.Default
	}
	e.language = p.Language
	e.theme = p.Theme
	e.fontSize = prefs.ClampFontSize(p.FontSize)
	e.autocomplete = p.Autocomplete
	e.autoDelay = p.AutoDelay
	return e
}

// SetBuffer attaches (or with nil detaches) the editor widget and pushes the
// active content into it.
func (e *Editor) SetBuffer(b Buffer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.buffer = b
	e.pushActiveLocked()
}

// Degraded reports whether the session has stopped persisting.
func (e *Editor) Degraded() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.degraded
}

// InitializeFileSystem loads the persisted tree, or seeds a single starter
// file when nothing usable was saved. A saved empty tree stays empty. It
// does nothing once the tree has nodes.
func (e *Editor) InitializeFileSystem() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.tree.Len() > 0 {
		return
	}

	if !e.degraded {
		ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
		snap, ok, err := store.LoadSnapshot(ctx, e.kv)
		cancel()
		switch {
		case errors.Is(err, store.ErrCorruptSnapshot):
			e.log.Warn("discarding unreadable snapshot", zap.Error(err))
		case err != nil:
			e.log.Warn("storage unavailable, continuing in memory", zap.Error(err))
			e.degraded = true
		case ok:
			e.restoreLocked(snap)
			return
		}
	}

	lang := e.language
	code := langs.DefaultCode(lang)
	n, err := e.tree.CreateFile("", langs.FileName("main", lang), lang, code)
	if err != nil {
		e.log.Error("seeding default file", zap.Error(err))
		return
	}
	e.openIDs = []string{n.ID}
	e.activeID = n.ID
	e.pushLocked(code)
	e.persistLocked()
}

func (e *Editor) restoreLocked(snap store.Snapshot) {
	files := make(map[string]vfs.Node, len(snap.Files))
	for id, n := range snap.Files {
		if n.IsFile() && n.Language == "" {
			n.Language = e.language
		}
		files[id] = n
	}
	e.tree.Load(files)

	e.openIDs = e.openIDs[:0]
	for _, id := range snap.OpenFileIDs {
		if _, ok := e.tree.File(id); ok && !slices.Contains(e.openIDs, id) {
			e.openIDs = append(e.openIDs, id)
		}
	}
	e.activeID = ""
	if f, ok := e.tree.File(snap.ActiveFileID); ok {
		e.activeID = f.ID
		if !slices.Contains(e.openIDs, f.ID) {
			e.openIDs = append(e.openIDs, f.ID)
		}
	} else if len(e.openIDs) > 0 {
		e.activeID = e.openIDs[len(e.openIDs)-1]
	}
	e.adoptActiveLanguageLocked()
	e.pushActiveLocked()
	metrics.SetTreeSize(e.tree.Len())
}

// CreateFile adds a starter file for the session language under parentID
// ("" for the root), opens it and makes it active.
func (e *Editor) CreateFile(parentID string) (vfs.Node, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	lang := e.language
	return e.addFileLocked(parentID, langs.FileName("untitled", lang), lang, langs.DefaultCode(lang))
}

// AddFile creates a named file with content, taking the language from the
// extension when it is a known one. The file is opened and made active.
func (e *Editor) AddFile(parentID, name, content string) (vfs.Node, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	lang := e.language
	if l, ok := langs.ByExtension(name); ok {
		lang = l.ID
	}
	return e.addFileLocked(parentID, name, lang, content)
}

func (e *Editor) addFileLocked(parentID, name, lang, content string) (vfs.Node, error) {
	n, err := e.tree.CreateFile(parentID, name, lang, content)
	if err != nil {
		return vfs.Node{}, err
	}
	e.openIDs = append(e.openIDs, n.ID)
	e.activeID = n.ID
	e.language = lang
	e.pushLocked(content)
	e.persistLocked()
	return n, nil
}

// CreateFolder adds an expanded "New Folder". It does not change the active
// file.
func (e *Editor) CreateFolder(parentID string) (vfs.Node, error) {
	return e.CreateFolderNamed(parentID, NewFolderName)
}

// CreateFolderNamed is CreateFolder with an explicit name.
func (e *Editor) CreateFolderNamed(parentID, name string) (vfs.Node, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	n, err := e.tree.CreateFolder(parentID, name)
	if err != nil {
		return vfs.Node{}, err
	}
	e.persistLocked()
	return n, nil
}

// RenameNode sets a node's name verbatim. Unknown ids are ignored.
func (e *Editor) RenameNode(id, name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.tree.Rename(id, name) {
		e.persistLocked()
	}
}

// ToggleFolderOpen flips a folder's expanded state.
func (e *Editor) ToggleFolderOpen(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.tree.ToggleOpen(id) {
		e.persistLocked()
	}
}

// MoveNode reparents a node. Invalid targets fail with vfs.ErrInvalidParent
// or vfs.ErrCycle.
func (e *Editor) MoveNode(id, parentID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.tree.Move(id, parentID); err != nil {
		return err
	}
	e.persistLocked()
	return nil
}

// DeleteNode removes a node and its descendants, closes their tabs and
// repairs the active file. It returns the removed ids.
func (e *Editor) DeleteNode(id string) []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	removed := e.tree.Delete(id)
	if len(removed) == 0 {
		return nil
	}
	gone := make(map[string]bool, len(removed))
	for _, rid := range removed {
		gone[rid] = true
	}
	e.openIDs = slices.DeleteFunc(e.openIDs, func(id string) bool { return gone[id] })
	if gone[e.activeID] {
		e.activeID = lastOr(e.openIDs, "")
		e.adoptActiveLanguageLocked()
		e.pushActiveLocked()
	}
	e.persistLocked()
	return removed
}

// SetActiveFile opens id in a tab and makes it active. Anything but an
// existing file is ignored.
func (e *Editor) SetActiveFile(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.tree.File(id); !ok {
		return
	}
	if !slices.Contains(e.openIDs, id) {
		e.openIDs = append(e.openIDs, id)
	}
	e.activeID = id
	e.adoptActiveLanguageLocked()
	e.pushActiveLocked()
	e.persistLocked()
}

// CloseFileTab closes a tab. Closing the active tab activates the last
// remaining one.
func (e *Editor) CloseFileTab(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	i := slices.Index(e.openIDs, id)
	if i < 0 {
		return
	}
	e.openIDs = slices.Delete(e.openIDs, i, i+1)
	if e.activeID == id {
		e.activeID = lastOr(e.openIDs, "")
		e.adoptActiveLanguageLocked()
		e.pushActiveLocked()
	}
	e.persistLocked()
}

// UpdateActiveFileContent stores the edited content of the active file and
// keeps the last result's code in step with it.
func (e *Editor) UpdateActiveFileContent(content string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.activeID == "" {
		return
	}
	if !e.tree.SetContent(e.activeID, content) {
		return
	}
	if e.result != nil {
		e.result.Code = content
	}
	e.persistLocked()
}

// ReplaceActiveContent overwrites the active file and the widget, as when
// accepting a suggested fix.
func (e *Editor) ReplaceActiveContent(content string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.tree.SetContent(e.activeID, content) {
		return false
	}
	if e.result != nil {
		e.result.Code = content
	}
	e.pushLocked(content)
	e.persistLocked()
	return true
}

// ResetToDefault replaces the active file with its language's starter code.
func (e *Editor) ResetToDefault() {
	e.mu.Lock()
	defer e.mu.Unlock()
	f, ok := e.tree.File(e.activeID)
	if !ok {
		return
	}
	code := langs.DefaultCode(f.Language)
	e.tree.SetContent(f.ID, code)
	e.pushLocked(code)
	e.persistLocked()
}

// SetLanguage changes the session language and the active file's language,
// and clears the previous run's output.
func (e *Editor) SetLanguage(lang string) error {
	if _, err := langs.Lookup(lang); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.language = lang
	e.tree.SetLanguage(e.activeID, lang)
	e.output = ""
	e.runError = ""
	e.savePref(func(ctx context.Context) error { return prefs.SaveLanguage(ctx, e.kv, lang) })
	e.persistLocked()
	return nil
}

func (e *Editor) SetTheme(theme string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.theme = theme
	e.savePref(func(ctx context.Context) error { return prefs.SaveTheme(ctx, e.kv, theme) })
}

// SetFontSize stores n clamped to the supported range and returns it.
func (e *Editor) SetFontSize(n int) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fontSize = prefs.ClampFontSize(n)
	e.savePref(func(ctx context.Context) error {
		_, err := prefs.SaveFontSize(ctx, e.kv, e.fontSize)
		return err
	})
	return e.fontSize
}

func (e *Editor) SetAutocompleteEnabled(v bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.autocomplete = v
	e.savePref(func(ctx context.Context) error { return prefs.SaveAutocompleteEnabled(ctx, e.kv, v) })
}

func (e *Editor) SetAutocompleteDelay(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.autoDelay = d
	e.savePref(func(ctx context.Context) error { return prefs.SaveAutocompleteDelay(ctx, e.kv, d) })
}

// Code is the code to run: the live widget value when attached, otherwise
// the active file's stored content.
func (e *Editor) Code() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.codeLocked()
}

func (e *Editor) codeLocked() string {
	if e.buffer != nil {
		return e.buffer.Value()
	}
	if f, ok := e.tree.File(e.activeID); ok {
		return f.Content
	}
	return ""
}

// RunCode runs the current code in the session language. While a run is in
// flight it returns execution.ErrAlreadyRunning and changes nothing. A
// finished run by a signed-in user is logged to history in the background.
func (e *Editor) RunCode(ctx context.Context) (execution.Result, error) {
	if e.runner == nil {
		return execution.Result{}, errors.New("editor: no runner configured")
	}
	e.mu.Lock()
	code := e.codeLocked()
	lang := e.language
	if code != "" && !e.runner.Running() {
		e.output = ""
		e.runError = ""
	}
	e.mu.Unlock()

	res, err := e.runner.Run(ctx, lang, code)
	if errors.Is(err, execution.ErrAlreadyRunning) {
		return res, err
	}

	e.mu.Lock()
	e.runError = res.ErrorText()
	e.output = res.Output
	if err == nil {
		r := res
		e.result = &r
	}
	e.mu.Unlock()

	if err == nil && e.identity.SignedIn() {
		e.logRun(lang, res)
	}
	return res, err
}

func (e *Editor) logRun(lang string, res execution.Result) {
	rec := history.Record{
		UserID:    e.identity.UserID,
		Language:  lang,
		Code:      res.Code,
		Output:    res.Output,
		Error:     res.ErrorText(),
		CreatedAt: time.Now().UTC(),
	}
	e.pending.Add(1)
	go func() {
		defer e.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := e.history.Save(ctx, rec)
		metrics.RecordHistoryWrite(err)
		if err != nil {
			e.log.Warn("saving run history", zap.Error(err))
		}
	}()
}

// Close waits for background history writes.
func (e *Editor) Close() {
	e.pending.Wait()
}

func (e *Editor) adoptActiveLanguageLocked() {
	if f, ok := e.tree.File(e.activeID); ok && f.Language != "" {
		e.language = f.Language
	}
}

func (e *Editor) pushActiveLocked() {
	content := ""
	if f, ok := e.tree.File(e.activeID); ok {
		content = f.Content
	}
	e.pushLocked(content)
}

func (e *Editor) pushLocked(content string) {
	if e.buffer != nil {
		e.buffer.SetValue(content)
	}
}

// persistLocked writes the snapshot. A failure switches the session to
// memory-only operation.
func (e *Editor) persistLocked() {
	metrics.SetTreeSize(e.tree.Len())
	if e.degraded {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
	defer cancel()
	err := store.SaveSnapshot(ctx, e.kv, e.snapshotLocked())
	metrics.RecordSnapshotSave(err)
	if err != nil {
		e.log.Warn("persisting snapshot failed, continuing in memory", zap.Error(err))
		e.degraded = true
	}
}

func (e *Editor) savePref(save func(ctx context.Context) error) {
	if e.degraded {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
	defer cancel()
	if err := save(ctx); err != nil {
		e.log.Warn("saving preference", zap.Error(err))
	}
}

func lastOr(ids []string, def string) string {
	if len(ids) == 0 {
		return def
	}
	return ids[len(ids)-1]
}
