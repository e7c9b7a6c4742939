package models

// User is the marketplace account as stored by the web layer.
// The relay only reads it: to refuse suspended accounts and to resolve chat peers.
type User struct {
	ID       string `gorm:"primaryKey" json:"id"`
	Username string `gorm:"uniqueIndex;not null" json:"username"`
	Bio      string `json:"bio,omitempty"`
	// IsActive is cleared by moderation when the account is suspended.
	IsActive bool `gorm:"default:true" json:"is_active"`
}

// TableName keeps the table name used by the marketplace schema.
func (User) TableName() string {
	return "user"
}

// CanChat reports whether the account may hold a chat connection.
func (u *User) CanChat() bool {
	return u != nil && u.IsActive
}
