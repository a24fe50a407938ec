package cli

import (
	"bufio"
	"context"
	"fmt"
	"sort"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

type command struct {
	usage string
	// auth marks commands that need a running session.
	auth bool
	run  func(ctx context.Context, args []string) error
}

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	commands() map[string]command
}

// runREPL starts a simple read–eval–print loop for the notes CLI.
//
// It reads a line from reader, takes the first token as the command and the
// rest as its arguments, and dispatches through the command table of 'a'.
// Commands that prompt read from the same reader. The loop exits on EOF or
// when the user types "exit" or "quit". Handler errors are printed and the
// loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	table := a.commands()

	for {
		printlnFn(fmt.Sprintf("notes %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		name, args := parts[0], parts[1:]

		switch name {
		case "help":
			printlnFn(helpText(table, a.isLoggedIn()))
			continue
		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		cmd, ok := table[name]
		if !ok {
			printlnFn("Unknown command:", name)
			continue
		}
		if cmd.auth && !a.isLoggedIn() {
			printlnFn("Please login first")
			continue
		}
		if err := cmd.run(ctx, args); err != nil {
			printlnFn("Error:", err)
		}
	}
}

func helpText(table map[string]command, loggedIn bool) string {
	var lines []string
	for name, cmd := range table {
		if cmd.auth != loggedIn {
			continue
		}
		lines = append(lines, fmt.Sprintf("  %-12s %s", name, cmd.usage))
	}
	sort.Strings(lines)
	return "Available commands:\n" + strings.Join(lines, "\n") + "\n  exit"
}

func (a *App) commands() map[string]command {
	return map[string]command{
		"login": {usage: "sign in with an access token", run: a.Login},

		"logout":    {usage: "end the session and forget the token", auth: true, run: a.Logout},
		"status":    {usage: "show collection and feed state", auth: true, run: a.Status},
		"reconnect": {usage: "reload collections whose load or feed failed", auth: true, run: a.Reconnect},

		"notes":      {usage: "[-r] list notes, newest first (-r: oldest first)", auth: true, run: a.ListNotes},
		"trash":      {usage: "list trashed notes", auth: true, run: a.ListTrash},
		"show":       {usage: "<id> print a note and its tasks", auth: true, run: a.ShowNote},
		"addnote":    {usage: "create a note", auth: true, run: a.AddNote},
		"editnote":   {usage: "<id> replace a note's text", auth: true, run: a.EditNote},
		"trashnote":  {usage: "<id> move a note to the trash", auth: true, run: a.TrashNote},
		"restore":    {usage: "<id> restore a note from the trash", auth: true, run: a.RestoreNote},
		"restoreall": {usage: "restore every trashed note", auth: true, run: a.RestoreAll},
		"emptytrash": {usage: "permanently delete trashed notes", auth: true, run: a.EmptyTrash},
		"delnote":    {usage: "<id> permanently delete a note", auth: true, run: a.DeleteNote},
		"setcat":     {usage: "<note id> [category id] set or clear a note's category", auth: true, run: a.SetCategory},

		"tasks":   {usage: "[note id] list open tasks", auth: true, run: a.ListTasks},
		"addtask": {usage: "create a task", auth: true, run: a.AddTask},
		"done":    {usage: "<id> mark a task completed", auth: true, run: a.CompleteTask},
		"undone":  {usage: "<id> reopen a task", auth: true, run: a.ReopenTask},
		"deltask": {usage: "<id> delete a task", auth: true, run: a.DeleteTask},
		"extract": {usage: "<note id> create tasks from a note's action items", auth: true, run: a.Extract},

		"categories": {usage: "list categories", auth: true, run: a.ListCategories},
		"addcat":     {usage: "<label> create a category", auth: true, run: a.AddCategory},
		"renamecat":  {usage: "<id> <label> rename a category", auth: true, run: a.RenameCategory},
		"delcat":     {usage: "<id> delete a category", auth: true, run: a.DeleteCategory},

		"profile":    {usage: "show your profile", auth: true, run: a.ShowProfile},
		"setprofile": {usage: "<name|username|website> <value> update your profile", auth: true, run: a.SetProfile},
		"avatar":     {usage: "<image file> upload a new avatar", auth: true, run: a.SetAvatar},
	}
}
