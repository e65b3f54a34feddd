package models

import (
	"time"

	"gorm.io/gorm"
)

// Blog is an article shown in the mobile app's content feed
type Blog struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Title     string         `gorm:"size:255;not null" json:"title"`
	Slug      string         `gorm:"uniqueIndex;size:255;not null" json:"slug"`
	Excerpt   string         `gorm:"size:512" json:"excerpt"`
	Body      string         `gorm:"type:text" json:"body"`
	CoverURL  string         `gorm:"size:512" json:"cover_url"`
	Published bool           `gorm:"not null;default:false" json:"published"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Blog model
func (Blog) TableName() string {
	return "blog"
}

// BeforeSave hook keeps UpdatedAt current
func (b *Blog) BeforeSave(tx *gorm.DB) error {
	b.UpdatedAt = time.Now()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = b.UpdatedAt
	}
	return nil
}

// FAQ is a question/answer pair shown in the app's help section,
// ordered by Position ascending
type FAQ struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Question  string    `gorm:"size:512;not null" json:"question"`
	Answer    string    `gorm:"type:text;not null" json:"answer"`
	Position  int       `gorm:"not null;default:0;index" json:"position"`
	Published bool      `gorm:"not null;default:true" json:"published"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// TableName specifies the table name for the FAQ model
func (FAQ) TableName() string {
	return "faq"
}

// BeforeSave hook keeps UpdatedAt current
func (f *FAQ) BeforeSave(tx *gorm.DB) error {
	f.UpdatedAt = time.Now()
	if f.CreatedAt.IsZero() {
		f.CreatedAt = f.UpdatedAt
	}
	return nil
}

// CreateBlogRequest represents the data needed to create a blog post
type CreateBlogRequest struct {
	Title     string `json:"title" binding:"required,max=255"`
	Slug      string `json:"slug" binding:"required,max=255"`
	Excerpt   string `json:"excerpt" binding:"max=512"`
	Body      string `json:"body" binding:"required"`
	Published bool   `json:"published"`
}

// CreateFAQRequest represents the data needed to create an FAQ entry
type CreateFAQRequest struct {
	Question  string `json:"question" binding:"required,max=512"`
	Answer    string `json:"answer" binding:"required"`
	Position  int    `json:"position"`
	Published *bool  `json:"published"`
}
