package models

import "time"

// MediaCategory is the closed set of media categories.
type MediaCategory string

const (
	CategoryAI      MediaCategory = "ai"
	CategoryNatural MediaCategory = "natural"
)

// Valid reports whether the category is one of the known values.
func (c MediaCategory) Valid() bool {
	return c == CategoryAI || c == CategoryNatural
}

// Teacher represents a directory entry owning media and quotes.
// Media and Quotes are populated only by the local document store;
// in remote mode they are queried live and left nil here.
type Teacher struct {
	ID          string    `json:"id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Description string    `json:"description,omitempty"`
	PhotoURL    string    `json:"photo_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`

	Media  []Media `json:"media,omitempty"`
	Quotes []Quote `json:"quotes,omitempty"`
}

// FullName returns "FirstName LastName".
func (t *Teacher) FullName() string {
	return t.FirstName + " " + t.LastName
}

// Media represents an uploaded image or video owned by one teacher.
type Media struct {
	ID           string        `json:"id"`
	TeacherID    string        `json:"teacher_id"`
	Category     MediaCategory `json:"category"`
	BlobRef      string        `json:"blob_ref"`
	URL          string        `json:"url"`
	MimeType     string        `json:"mime_type"`
	OriginalName string        `json:"original_name"`
	CreatedAt    time.Time     `json:"created_at"`
}

// RecentMedia is a media row joined with its owner's name, used by the
// recently-added strip.
type RecentMedia struct {
	Media
	TeacherName string `json:"teacher_name"`
}

// Quote represents an attributed text snippet owned by one teacher.
type Quote struct {
	ID        string    `json:"id"`
	TeacherID string    `json:"teacher_id"`
	Text      string    `json:"text"`
	Author    string    `json:"author,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// User represents an administrator account in the remote user store.
type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	IsActive     bool       `json:"is_active"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// SessionMode tags a session with the backing it was minted against.
type SessionMode string

const (
	SessionRemote SessionMode = "remote"
	SessionLocal  SessionMode = "local"
)

// Session is the proof-of-login artifact held for one browsing session.
// UserID is empty in local mode.
type Session struct {
	Token    string      `json:"token"`
	UserID   string      `json:"user_id,omitempty"`
	Username string      `json:"username"`
	Mode     SessionMode `json:"mode"`
}
