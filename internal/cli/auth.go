package cli

import (
	"context"
	"fmt"

	"github.com/akraslov/notesync/internal/models"
)

func (app *App) handleRegister(ctx context.Context) {
	username, err := app.readLine("username: ")
	if err != nil {
		return
	}
	password, err := app.readPassword("password: ")
	if err != nil {
		return
	}

	u, err := app.users.Register(ctx, username, password)
	if err != nil {
		fmt.Printf("registration failed: %v\n", err)
		return
	}
	if !u.Synced() {
		fmt.Println("server unreachable; registration queued and will be retried")
		return
	}

	app.afterLogin(ctx, &models.Session{UserID: *u.RemoteID, Username: u.Username})
}

func (app *App) handleLogin(ctx context.Context) {
	username, err := app.readLine("username: ")
	if err != nil {
		return
	}
	password, err := app.readPassword("password: ")
	if err != nil {
		return
	}

	sess, err := app.users.Login(ctx, username, password)
	if err != nil {
		fmt.Printf("login failed: %v\n", err)
		return
	}
	app.afterLogin(ctx, sess)
}

// afterLogin links anonymous notes to the account, flushes the queue, pulls
// remote state, and restarts the background runner under the new identity.
func (app *App) afterLogin(ctx context.Context, sess *models.Session) {
	app.setSession(sess)
	fmt.Printf("logged in as %s\n", sess.Username)

	if err := app.notes.SyncOnLogin(ctx, sess.UserID); err != nil {
		fmt.Printf("initial sync incomplete, will retry in background: %v\n", err)
	}
	if err := app.shares.SyncShares(ctx, sess.UserID); err != nil {
		fmt.Printf("share sync incomplete, will retry in background: %v\n", err)
	}
	app.startSync(ctx)
}

func (app *App) handleLogout(ctx context.Context) {
	// Stop background sync before touching the cache so a half-finished
	// pass cannot write into the next session's empty state.
	app.stopSync()

	if err := app.users.Logout(ctx); err != nil {
		fmt.Printf("logout failed: %v\n", err)
		return
	}
	app.setSession(nil)
	app.notes.Refresh(ctx)
	app.startSync(ctx)
	fmt.Println("logged out")
}
