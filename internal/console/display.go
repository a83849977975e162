package console

import (
	"fmt"
	"strings"
)

const (
	okMark  = "✓"
	errMark = "✗"

	welcomeText = "Welcome to Todo App! Type 'help' for available commands."
	goodbyeText = "Goodbye!"
	emptyText   = "No tasks yet. Use 'add <title>' to create one."
	updateUsage = "Usage: update <id> title <value> or update <id> desc <value>"

	helpText = `Available commands:
  add <title> [| description]  - Add a new task
  list                         - View all tasks
  complete <id>                - Toggle task completion
  update <id> title <value>    - Update task title
  update <id> desc <value>     - Update task description
  delete <id>                  - Delete a task
  help                         - Show this help message
  exit                         - Exit the application`
)

func formatError(msg string) string {
	return fmt.Sprintf("%s Error: %s", errMark, msg)
}

func formatAdded(t *Task) string {
	return fmt.Sprintf("%s Task added: [%d] %s", okMark, t.ID, t.Title)
}

func formatList(tasks []*Task) string {
	if len(tasks) == 0 {
		return emptyText
	}

	var b strings.Builder
	b.WriteString("Tasks:")
	for _, t := range tasks {
		status := "[ ]"
		if t.Completed {
			status = "[x]"
		}
		fmt.Fprintf(&b, "\n  %s %d. %s", status, t.ID, t.Title)
		if t.Description != nil {
			fmt.Fprintf(&b, "\n      └─ %s", *t.Description)
		}
	}
	return b.String()
}

func formatToggled(t *Task) string {
	status := "pending"
	if t.Completed {
		status = "completed"
	}
	return fmt.Sprintf("%s Task %d marked as %s", okMark, t.ID, status)
}

func formatTitleUpdated(t *Task) string {
	return fmt.Sprintf("%s Task %d title updated to: %s", okMark, t.ID, t.Title)
}

func formatDescriptionUpdated(id int64) string {
	return fmt.Sprintf("%s Task %d description updated", okMark, id)
}

func formatDeleted(id int64) string {
	return fmt.Sprintf("%s Task %d deleted", okMark, id)
}

func formatUnknown(cmd string) string {
	return fmt.Sprintf("%s Unknown command: %s. Type 'help' for available commands.", errMark, cmd)
}
