// Package cli hosts the sync engine behind a small interactive REPL: auth,
// note CRUD, sharing, and the background sync loop.
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/akraslov/notesync/internal/api"
	"github.com/akraslov/notesync/internal/config"
	"github.com/akraslov/notesync/internal/filex"
	"github.com/akraslov/notesync/internal/logging"
	"github.com/akraslov/notesync/internal/models"
	"github.com/akraslov/notesync/internal/repositories"
	"github.com/akraslov/notesync/internal/services"

	_ "modernc.org/sqlite"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config *config.Config
	log    logging.Logger
	db     *sql.DB

	client api.Client
	notes  *services.NoteService
	users  *services.UserService
	shares *services.ShareService
	worker *services.SyncWorker

	reader *bufio.Reader

	// mu guards session and mode: both are read by the connectivity
	// watcher goroutine while the REPL goroutine mutates them.
	mu      sync.Mutex
	mode    Mode
	session *models.Session

	cancelSync context.CancelFunc
}

func NewApp(cfg *config.Config, log logging.Logger) (*App, error) {
	ctx := context.Background()

	if err := filex.EnsureParentDir(cfg.DatabasePath); err != nil {
		return nil, fmt.Errorf("failed to prepare database directory: %w", err)
	}
	db, err := repositories.InitDatabase(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	client := api.NewHTTPClient(cfg.ServerBaseURL, cfg.RequestTimeout)

	ns := services.NewNoteService(db, client, log)
	us := services.NewUserService(db, client, log)
	ss := services.NewShareService(db, client, log)
	worker := services.NewSyncWorker(ns, us, ss, cfg.SyncInterval, log)

	return &App{
		config: cfg,
		log:    log,
		db:     db,
		client: client,
		notes:  ns,
		users:  us,
		shares: ss,
		worker: worker,
		reader: bufio.NewReader(os.Stdin),
		mode:   ModeOffline,
	}, nil
}

func (app *App) setSession(sess *models.Session) {
	app.mu.Lock()
	app.session = sess
	app.mu.Unlock()
}

func (app *App) currentSession() *models.Session {
	app.mu.Lock()
	defer app.mu.Unlock()
	return app.session
}

// setMode flips the connectivity mode and reports whether the app just came
// back online.
func (app *App) setMode(mode Mode) bool {
	app.mu.Lock()
	defer app.mu.Unlock()
	if app.mode == mode {
		return false
	}
	wasOffline := app.mode == ModeOffline
	app.mode = mode
	fmt.Printf("switched to %s mode\n", mode)
	return wasOffline && mode == ModeOnline
}

// watchConnectivity probes the server on the sync cadence and kicks a drain
// pass whenever connectivity comes back.
func (app *App) watchConnectivity(ctx context.Context) {
	ticker := time.NewTicker(app.config.SyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if err := app.client.Ping(ctx); err != nil {
			app.setMode(ModeOffline)
			continue
		}
		if app.setMode(ModeOnline) {
			app.worker.Kick(ctx, app.ownerID())
		}
	}
}

// startSync launches the background runner for the current identity. Any
// previous runner is cancelled first.
func (app *App) startSync(ctx context.Context) {
	app.stopSync()
	syncCtx, cancel := context.WithCancel(ctx)
	app.cancelSync = cancel
	go func() {
		_ = app.worker.Run(syncCtx, app.ownerID())
	}()
}

func (app *App) stopSync() {
	if app.cancelSync != nil {
		app.cancelSync()
		app.cancelSync = nil
	}
}

func (app *App) ownerID() *int64 {
	sess := app.currentSession()
	if sess == nil {
		return nil
	}
	id := sess.UserID
	return &id
}

func (app *App) Run(ctx context.Context) error {
	defer app.db.Close()
	defer app.stopSync()

	// Resume a persisted session, if any.
	sess, err := app.users.Session(ctx)
	if err != nil {
		return err
	}
	app.setSession(sess)
	if sess != nil {
		fmt.Printf("logged in as %s\n", sess.Username)
	}
	app.startSync(ctx)

	go app.watchConnectivity(ctx)

	fmt.Println("notesync — type 'help' for commands")
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line, err := app.readLine("> ")
		if err != nil {
			return nil
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "help":
			app.printHelp()
		case "register":
			app.handleRegister(ctx)
		case "login":
			app.handleLogin(ctx)
		case "logout":
			app.handleLogout(ctx)
		case "add":
			app.handleAdd(ctx)
		case "edit":
			app.handleEdit(ctx, fields[1:])
		case "del":
			app.handleDelete(ctx, fields[1:])
		case "list":
			app.handleList(ctx)
		case "sync":
			app.handleSync(ctx)
		case "share":
			app.handleShare(ctx, fields[1:])
		case "shared":
			app.handleSharedWithMe(ctx)
		case "mine":
			app.handleSharedByMe(ctx)
		case "quit", "exit":
			return nil
		default:
			fmt.Printf("unknown command %q\n", fields[0])
		}
	}
}

func (app *App) printHelp() {
	fmt.Print(`commands:
  register           create an account
  login              log in
  logout             log out and clear local data
  add                create a note (works offline)
  edit <local-id>    edit a note
  del <local-id>     delete a note
  list               list cached notes
  sync               drain pending notes and refresh from the server
  share <note-id> <user-id>  share a synced note
  shared             notes shared with me
  mine               notes I shared
  quit               exit
`)
}
