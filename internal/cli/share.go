package cli

import (
	"context"
	"fmt"

	"github.com/akraslov/notesync/internal/models"
)

func (app *App) handleShare(ctx context.Context, args []string) {
	sess := app.currentSession()
	if sess == nil {
		fmt.Println("log in to share notes")
		return
	}
	if len(args) != 2 {
		fmt.Println("usage: share <note-id> <user-id>")
		return
	}

	noteID, err := parseID(args[0])
	if err != nil {
		fmt.Println(err)
		return
	}
	friendID, err := parseID(args[1])
	if err != nil {
		fmt.Println(err)
		return
	}

	row, err := app.shares.ShareNote(ctx, sess.UserID, noteID, friendID)
	if err != nil {
		fmt.Printf("share failed: %v\n", err)
		return
	}
	fmt.Printf("shared note %d with user %d (%s)\n", row.NoteID, row.TargetID, row.Status)
}

func (app *App) handleSharedWithMe(ctx context.Context) {
	sess := app.currentSession()
	if sess == nil {
		fmt.Println("log in to see shared notes")
		return
	}
	rows, err := app.shares.SharedWithMe(ctx, sess.UserID)
	if err != nil {
		fmt.Printf("failed to fetch shared notes: %v\n", err)
		return
	}
	printShares(rows)
}

func (app *App) handleSharedByMe(ctx context.Context) {
	sess := app.currentSession()
	if sess == nil {
		fmt.Println("log in to see shared notes")
		return
	}
	rows, err := app.shares.SharedByMe(ctx, sess.UserID)
	if err != nil {
		fmt.Printf("failed to fetch shared notes: %v\n", err)
		return
	}
	printShares(rows)
}

func printShares(rows []models.SharedNote) {
	if len(rows) == 0 {
		fmt.Println("nothing shared")
		return
	}
	for _, s := range rows {
		fmt.Printf("share %d: note %d, owner %d -> user %d (%s)\n",
			s.RemoteID, s.NoteID, s.OwnerID, s.TargetID, s.Status)
	}
}
