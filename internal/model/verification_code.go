package model

const (
	PurposeRegister = "register"
	PurposeLogin    = "login"
	PurposeSettings = "settings"
)

// VerificationCode is a single-use credential. ID grows with issue order, so the highest ID
// for a user and purpose is the newest code.
type VerificationCode struct {
	ID        int64  `json:"id"`
	UserID    string `json:"user_id"`
	Purpose   string `json:"purpose"`
	CodeHash  string `json:"-"`
	Used      bool   `json:"used"`
	Ctime     int64  `json:"ctime"`
	ExpiresAt int64  `json:"expires_at"`
}

func ValidPurpose(purpose string) bool {
	switch purpose {
	case PurposeRegister, PurposeLogin, PurposeSettings:
		return true
	}
	return false
}
