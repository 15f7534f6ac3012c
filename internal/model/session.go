package model

const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Session is the server-side state behind the session cookie.
type Session struct {
	ID             string `json:"id"`
	UserID         string `json:"user_id"`
	PendingUserID  string `json:"pending_user_id"`
	PendingPurpose string `json:"pending_purpose"`
	PendingProfile string `json:"-"`
	Flash          string `json:"flash"`
	FlashKind      string `json:"flash_kind"`
	Ctime          int64  `json:"ctime"`
	Mtime          int64  `json:"mtime"`
	ExpiresAt      int64  `json:"expires_at"`
}

func (s *Session) Authenticated() bool {
	return s != nil && s.UserID != ""
}

func (s *Session) Pending() bool {
	return s != nil && s.PendingUserID != "" && s.PendingPurpose != ""
}

func (s *Session) SetPending(userID, purpose string) {
	s.PendingUserID = userID
	s.PendingPurpose = purpose
}

// ClearPending drops the pending verification together with any staged profile edit.
func (s *Session) ClearPending() {
	s.PendingUserID = ""
	s.PendingPurpose = ""
	s.PendingProfile = ""
}

func (s *Session) SetFlash(kind, msg string) {
	s.FlashKind = kind
	s.Flash = msg
}

// PopFlash returns the current flash message once and clears it.
func (s *Session) PopFlash() (kind, msg string) {
	kind, msg = s.FlashKind, s.Flash
	s.FlashKind, s.Flash = "", ""
	return kind, msg
}
