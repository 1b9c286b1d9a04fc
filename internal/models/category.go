package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrCategoryNameRequired = errors.New("category name is required")
	ErrCategoryNoFamily     = errors.New("category family ID is required")
)

// Category groups a family's transactions and carries the tag list used to
// auto-classify imported statement entries. Every family must have exactly one
// default category; imported entries that match no tag land there.
type Category struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	FamilyID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"family_id"`
	Name      string     `gorm:"type:varchar(100);not null" json:"name"`
	Tags      StringList `gorm:"type:text" json:"tags"`
	IsDefault bool       `gorm:"not null;default:false" json:"is_default"`
	CreatedAt time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null" json:"updated_at"`
}

// BeforeCreate hook for Category
func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}

	now := time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = now
	}

	return c.Validate()
}

// BeforeUpdate hook for Category
func (c *Category) BeforeUpdate(tx *gorm.DB) error {
	c.UpdatedAt = time.Now()
	return c.Validate()
}

// Validate validates the category fields
func (c *Category) Validate() error {
	if c.FamilyID == uuid.Nil {
		return ErrCategoryNoFamily
	}
	if c.Name == "" {
		return ErrCategoryNameRequired
	}
	return nil
}

func (c *Category) TableName() string {
	return "categories"
}

// StringList represents a JSON-encoded list of strings stored in a text
// column so the same model works on PostgreSQL and SQLite.
type StringList []string

// Value implements driver.Valuer interface
func (l StringList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return nil, nil
	}
	bytes, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(bytes), nil
}

// Scan implements sql.Scanner interface
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into StringList", value)
	}

	if len(bytes) == 0 {
		*l = nil
		return nil
	}

	return json.Unmarshal(bytes, l)
}

// MarshalJSON ensures an empty list serializes as [] rather than null
func (l StringList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}
