package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/akraslov/notesync/internal/models"
)

func (app *App) handleAdd(ctx context.Context) {
	title, err := app.readLine("title: ")
	if err != nil {
		return
	}
	description, err := app.readLine("description: ")
	if err != nil {
		return
	}
	tag, err := app.readLine("tag: ")
	if err != nil {
		return
	}
	priority := app.readPriority()

	n, err := app.notes.CreateLocal(ctx, models.Note{
		Title:       title,
		Description: description,
		Tag:         tag,
		Priority:    priority,
	}, app.ownerID())
	if err != nil {
		fmt.Printf("failed to add note: %v\n", err)
		return
	}

	fmt.Printf("added %s (queued for sync)\n", n.LocalID)
	app.worker.Kick(ctx, app.ownerID())
}

func (app *App) handleEdit(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Println("usage: edit <local-id>")
		return
	}

	n, err := app.notes.Get(ctx, args[0])
	if err != nil {
		fmt.Printf("failed to load note: %v\n", err)
		return
	}

	if title, err := app.readLine(fmt.Sprintf("title [%s]: ", n.Title)); err == nil && title != "" {
		n.Title = title
	}
	if desc, err := app.readLine(fmt.Sprintf("description [%s]: ", n.Description)); err == nil && desc != "" {
		n.Description = desc
	}
	if done, err := app.readLine(fmt.Sprintf("finished [%t] (y/n): ", n.Finished)); err == nil && done != "" {
		n.Finished = done == "y"
	}

	if n.Synced() {
		if err := app.notes.Update(ctx, *n, app.ownerID()); err != nil {
			fmt.Printf("update rejected: %v\n", err)
			return
		}
	} else {
		// Still pending: the edit rides along with the queued create.
		saved, err := app.notes.CreateLocal(ctx, *n, app.ownerID())
		if err != nil {
			fmt.Printf("failed to save note: %v\n", err)
			return
		}
		if saved.Synced() {
			// A background drain posted the note while it was being
			// edited; push the edit as a regular update.
			if err := app.notes.Update(ctx, *saved, app.ownerID()); err != nil {
				fmt.Printf("update rejected: %v\n", err)
				return
			}
		} else {
			app.worker.Kick(ctx, app.ownerID())
		}
	}
	fmt.Println("saved")
}

func (app *App) handleDelete(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Println("usage: del <local-id>")
		return
	}
	if err := app.notes.Delete(ctx, args[0]); err != nil {
		fmt.Printf("delete failed, note kept locally: %v\n", err)
		return
	}
	fmt.Println("deleted")
}

func (app *App) handleList(ctx context.Context) {
	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch, err := app.notes.Watch(watchCtx)
	if err != nil {
		fmt.Printf("failed to list notes: %v\n", err)
		return
	}

	// One snapshot is enough for a single list command; the same channel
	// keeps emitting while a screen stays subscribed.
	snapshot := <-ch
	if len(snapshot) == 0 {
		fmt.Println("no notes")
		return
	}
	for _, n := range snapshot {
		state := "synced"
		if n.PendingCreate {
			state = "pending"
		}
		fmt.Printf("%s  [%s] %-10s %s\n", n.LocalID, state, priorityLabel(n.Priority), n.Title)
	}
}

func (app *App) handleSync(ctx context.Context) {
	out := app.worker.RunOnce(ctx, app.ownerID())
	fmt.Printf("sync: %s\n", out)

	if sess := app.currentSession(); sess != nil {
		if err := app.worker.Poll(ctx, sess.UserID); err != nil {
			fmt.Printf("refresh failed: %v\n", err)
		}
	}
}

func (app *App) readPriority() models.Priority {
	s, err := app.readLine("priority (0=low 1=medium 2=high) [0]: ")
	if err != nil || s == "" {
		return models.PriorityLow
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < int(models.PriorityLow) || v > int(models.PriorityHigh) {
		return models.PriorityLow
	}
	return models.Priority(v)
}

func priorityLabel(p models.Priority) string {
	switch p {
	case models.PriorityHigh:
		return "high"
	case models.PriorityMedium:
		return "medium"
	default:
		return "low"
	}
}
