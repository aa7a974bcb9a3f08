package bootstrap

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	sessioninadapter "folio/internal/modules/session/adapter/in"
	sessionoutadapter "folio/internal/modules/session/adapter/out"
	sessiondto "folio/internal/modules/session/dto"
	sessionin "folio/internal/modules/session/port/in"
	sessionservice "folio/internal/modules/session/service"
	sessionusecase "folio/internal/modules/session/usecase"
	viewportinadapter "folio/internal/modules/viewport/adapter/in"
	viewportoutadapter "folio/internal/modules/viewport/adapter/out"
	viewportin "folio/internal/modules/viewport/port/in"
	viewportout "folio/internal/modules/viewport/port/out"
	viewportservice "folio/internal/modules/viewport/service"
	viewportusecase "folio/internal/modules/viewport/usecase"
	"folio/internal/platform/clock"
	"folio/internal/platform/config"
	"folio/internal/platform/id"
	uiapp "folio/internal/ui/app"
	readerview "folio/internal/ui/views/reader"
)

// App holds the document-independent wiring: the session clock, its history
// store, and the CLI handlers. Viewers are opened per document.
type App struct {
	Config     config.Config
	SessionUC  sessionin.Usecase
	SessionCLI sessioninadapter.CLIHandler

	clk   clock.Clock
	store io.Closer
}

func New(cfg config.Config) (*App, error) {
	clk := clock.SystemClock{}
	ids := id.RandomHex{}

	historyStore, err := sessionoutadapter.NewSQLiteHistoryStore(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("new history store: %w", err)
	}

	sessionUC := sessionusecase.NewInteractor(
		sessionservice.NewSessionService(clk, ids),
		historyStore,
	)

	closer, _ := historyStore.(io.Closer)
	return &App{
		Config:     cfg,
		SessionUC:  sessionUC,
		SessionCLI: sessioninadapter.NewCLIHandler(sessionUC),
		clk:        clk,
		store:      closer,
	}, nil
}

// Close releases the history store.
func (a *App) Close() error {
	if a.store != nil {
		return a.store.Close()
	}
	return nil
}

// Viewer is the viewport engine bound to one open document.
type Viewer struct {
	UC      viewportin.Usecase
	CLI     viewportinadapter.CLIHandler
	Mailbox *viewportoutadapter.ScrollMailbox

	path    string
	watcher viewportout.ChangeWatcher
	done    chan struct{}
}

// OpenViewer opens the document at path and assembles the render scheduler,
// visibility tracker and navigator around it. With watch set, file writes
// invalidate rendered pages.
func (a *App) OpenViewer(path string, watch bool) (*Viewer, error) {
	doc, err := viewportoutadapter.OpenDocument(path)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}

	mailbox := viewportoutadapter.NewScrollMailbox()
	vcfg := a.Config.Viewer
	uc := viewportusecase.NewInteractor(
		a.clk,
		doc,
		viewportservice.NewScheduler(doc, viewportoutadapter.NewStderrRenderSink(), vcfg.Scale, vcfg.PixelRatio),
		viewportservice.NewTracker(vcfg.Debounce()),
		viewportservice.NewNavigator(vcfg.Settle(), mailbox),
		viewportoutadapter.NewSessionPageSink(a.SessionUC),
	)

	v := &Viewer{
		UC:      uc,
		CLI:     viewportinadapter.NewCLIHandler(uc),
		Mailbox: mailbox,
		path:    path,
		done:    make(chan struct{}),
	}

	if watch {
		watcher, err := viewportoutadapter.NewFileWatcher(path)
		if err != nil {
			uc.Shutdown(context.Background())
			return nil, err
		}
		v.watcher = watcher
		go v.invalidateLoop()
	}
	return v, nil
}

func (v *Viewer) invalidateLoop() {
	for {
		select {
		case <-v.done:
			return
		case <-v.watcher.Changes():
			v.UC.InvalidateAll(context.Background())
		}
	}
}

// Markdown reports whether the open document should be rendered as markdown.
func (v *Viewer) Markdown() bool {
	switch strings.ToLower(filepath.Ext(v.path)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

// Close stops the watcher and cancels in-flight renders.
func (v *Viewer) Close() {
	close(v.done)
	if v.watcher != nil {
		_ = v.watcher.Close()
	}
	v.UC.Shutdown(context.Background())
}

// RunTUI opens path, starts a reading session resuming from the stored
// position, and runs the interactive reader until quit. The session is
// persisted on exit.
func RunTUI(app *App, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	viewer, err := app.OpenViewer(abs, true)
	if err != nil {
		return err
	}
	defer viewer.Close()

	ctx := context.Background()
	started, err := app.SessionUC.Start(ctx, sessiondto.StartInput{DocumentPath: abs})
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	if started.PageIndex > 1 {
		if err := viewer.UC.RequestPage(ctx, started.PageIndex); err != nil {
			return fmt.Errorf("resume at page %d: %w", started.PageIndex, err)
		}
	}

	readView := readerview.New(viewer.UC, viewer.Mailbox, viewer.Markdown(), app.Config.Viewer.Prefetch)
	model := uiapp.NewModel(filepath.Base(abs), readView, app.SessionUC)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return err
	}

	if _, err := app.SessionUC.End(ctx); err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	return nil
}
