package domain

import "time"

// List display statuses.
const (
	ListStatusActive = "active"
	ListStatusHidden = "hidden"
)

// List is a named collection of tasks owned by a single user. LastUpdated is
// bumped on every structural change so conditional reads stay sound.
type List struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Status      string    `json:"status"`
	Title       string    `json:"title"`
	LastUpdated time.Time `json:"last_updated"`
}

// OwnedBy reports whether the list belongs to the given user.
func (l *List) OwnedBy(userID int64) bool {
	return l != nil && l.UserID == userID
}

// ValidateListTitle rejects empty titles for create and rename.
func ValidateListTitle(title string) error {
	if len(title) == 0 {
		return NewError(ErrCodeInvalid, "title is required")
	}
	return nil
}
