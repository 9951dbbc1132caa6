package entities

import "time"

type User struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	Email            string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash     string     `gorm:"size:255;not null" json:"-"`
	FailedLoginCount int        `gorm:"default:0" json:"-"`
	LockedUntil      *time.Time `json:"-"`
	LastLoginAt      *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// Book is owned by exactly one user. RowVersion is the concurrency token
// behind the book's ETag and is replaced on every successful mutation.
type Book struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	OwnerUserID   uint      `gorm:"index;not null" json:"-"`
	Title         string    `gorm:"size:200;not null" json:"title"`
	Author        string    `gorm:"size:200;not null" json:"author"`
	Genre         string    `gorm:"size:100" json:"genre"`
	PublishedDate time.Time `gorm:"index" json:"publishedDate"`
	Rating        int       `gorm:"not null" json:"rating"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	RowVersion    []byte    `gorm:"not null" json:"-"`
}

type Favorite struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"userId"`
	BookID    string    `gorm:"primaryKey;size:36;index" json:"bookId"`
	CreatedAt time.Time `json:"createdAt"`
}

// BookRead is a single "I read this" event used by the analytics views.
type BookRead struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	BookID     string    `gorm:"index;size:36;not null" json:"bookId"`
	UserID     uint      `gorm:"index;not null" json:"userId"`
	OccurredAt time.Time `gorm:"index" json:"occurredAt"`
}

// StatsVersion is the per-user change counter clients compare against
// before refetching aggregate views. A missing row means version 0.
type StatsVersion struct {
	UserID     uint      `gorm:"primaryKey;autoIncrement:false" json:"userId"`
	Version    uint64    `gorm:"not null;default:0" json:"version"`
	UpdatedAt  time.Time `json:"updatedAt"`
	RowVersion []byte    `gorm:"not null" json:"-"`
}

func (StatsVersion) TableName() string {
	return "user_stats_versions"
}
