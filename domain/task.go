package domain

import (
	"strings"
	"time"
)

// TaskStatus is the fixed four-state task lifecycle.
type TaskStatus int

const (
	StatusNeedsAction TaskStatus = 0
	StatusCompleted   TaskStatus = 1
	StatusHidden      TaskStatus = 2
	StatusDeleted     TaskStatus = 3
)

var statusNames = map[TaskStatus]string{
	StatusNeedsAction: "needsAction",
	StatusCompleted:   "completed",
	StatusHidden:      "hidden",
	StatusDeleted:     "deleted",
}

var statusIDs = func() map[string]TaskStatus {
	m := make(map[string]TaskStatus, len(statusNames))
	for id, name := range statusNames {
		m[name] = id
	}
	return m
}()

func (s TaskStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return statusNames[StatusNeedsAction]
}

// ParseTaskStatus maps a wire status name back to its id.
func ParseTaskStatus(name string) (TaskStatus, error) {
	if id, ok := statusIDs[name]; ok {
		return id, nil
	}
	return 0, NewError(ErrCodeInvalid, "unknown task status: "+name)
}

// Task is a single to-do item. Title and notes are derived from the free-text
// body: the first line is the title, the remainder the notes.
type Task struct {
	ID        int64      `json:"id"`
	ListID    int64      `json:"list_id"`
	Status    TaskStatus `json:"status"`
	Text      string     `json:"text"`
	Created   time.Time  `json:"created"`
	Updated   time.Time  `json:"updated"`
	Completed *time.Time `json:"completed,omitempty"`
}

// Title returns the first line of the task text.
func (t *Task) Title() string {
	head, _, _ := strings.Cut(t.Text, "\n")
	return strings.TrimRight(strings.TrimLeft(head, "\r\n"), " \t\r\n")
}

// Notes returns everything after the first line, or "" when there is none.
func (t *Task) Notes() string {
	_, rest, found := strings.Cut(t.Text, "\n")
	if !found {
		return ""
	}
	return strings.TrimRight(strings.TrimLeft(rest, "\r\n"), " \t\r\n")
}

// CleanTaskText strips leading blank lines and trailing whitespace while
// preserving interior whitespace.
func CleanTaskText(text string) string {
	return strings.TrimRight(strings.TrimLeft(text, "\r\n"), " \t\r\n")
}
