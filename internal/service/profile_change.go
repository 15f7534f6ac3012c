package service

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/prezentenergy/caasweb/internal/model"
)

// ProfileChange is an account edit waiting for a settings code. Nil fields are left alone.
// The password is hashed before staging so plaintext never reaches the session table.
type ProfileChange struct {
	FullName       *string `json:"full_name,omitempty"`
	Address        *string `json:"address,omitempty"`
	Organization   *string `json:"organization,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	AdditionalInfo *string `json:"additional_info,omitempty"`
	PasswordHash   string  `json:"password_hash,omitempty"`
}

// Stage stores the change on the session under the settings purpose.
func (p *ProfileChange) Stage(sess *model.Session, userID string) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile change: %w", err)
	}
	sess.SetPending(userID, model.PurposeSettings)
	sess.PendingProfile = string(raw)
	return nil
}

// Apply copies the provided fields onto user. A blank full name is ignored.
func (p *ProfileChange) Apply(user *model.User) {
	if p.FullName != nil && strings.TrimSpace(*p.FullName) != "" {
		user.FullName = strings.TrimSpace(*p.FullName)
	}
	if p.Address != nil {
		user.Address = *p.Address
	}
	if p.Organization != nil {
		user.Organization = *p.Organization
	}
	if p.Phone != nil {
		user.Phone = *p.Phone
	}
	if p.AdditionalInfo != nil {
		user.AdditionalInfo = *p.AdditionalInfo
	}
	if p.PasswordHash != "" {
		user.PasswordHash = p.PasswordHash
	}
}

// DiscardProfileChange drops a staged change along with the pending settings verification.
func DiscardProfileChange(sess *model.Session) {
	sess.ClearPending()
}

func stagedProfileChange(sess *model.Session) (*ProfileChange, error) {
	change := &ProfileChange{}
	if sess.PendingProfile == "" {
		return change, nil
	}
	if err := json.Unmarshal([]byte(sess.PendingProfile), change); err != nil {
		return nil, fmt.Errorf("decode profile change: %w", err)
	}
	return change, nil
}
