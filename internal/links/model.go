package links

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status is the read state of a link. It only ever moves from unread to read.
type Status string

const (
	StatusUnread Status = "unread"
	StatusRead   Status = "read"
)

// ParseStatus accepts exactly "unread" or "read".
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusUnread, StatusRead:
		return Status(s), nil
	default:
		return "", fmt.Errorf("status must be one of: %s, %s", StatusUnread, StatusRead)
	}
}

// CategoryRef is the category joined onto a listed link.
type CategoryRef struct {
	ID    uuid.UUID
	Name  string
	Color string
}

type Link struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	URL        string
	Title      *string
	Status     Status
	CategoryID *uuid.UUID
	Category   *CategoryRef // set by List only
	CreatedAt  time.Time
}

// ListFilter narrows List. Nil fields do not filter; set fields combine with AND.
type ListFilter struct {
	Status     *Status
	CategoryID *uuid.UUID
}

// Patch carries the fields Update may change. Nil leaves a field as is.
type Patch struct {
	URL        *string
	Title      *string
	ClearTitle bool // sets the title to NULL; wins over Title
	Status     *Status
}
