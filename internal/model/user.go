package model

type User struct {
	ID             string `json:"id"`
	FullName       string `json:"full_name"`
	Email          string `json:"email"`
	PasswordHash   string `json:"-"`
	Address        string `json:"address"`
	Organization   string `json:"organization"`
	Phone          string `json:"phone"`
	AdditionalInfo string `json:"additional_info"`
	IsVerified     bool   `json:"is_verified"`
	Ctime          int64  `json:"ctime"`
	Mtime          int64  `json:"mtime"`
}
