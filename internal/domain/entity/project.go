package entity

import (
	"strings"
	"time"
)

// Project groups sources under shared keyword and hashtag rules.
type Project struct {
	ID              string    `json:"id" bson:"_id"`
	Name            string    `json:"name" bson:"name"`
	Keywords        []string  `json:"keywords,omitempty" bson:"keywords,omitempty"`
	ExcludeKeywords []string  `json:"exclude_keywords,omitempty" bson:"exclude_keywords,omitempty"`
	Hashtags        []string  `json:"hashtags,omitempty" bson:"hashtags,omitempty"`
	IsActive        bool      `json:"is_active" bson:"is_active"`
	CreatedAt       time.Time `json:"created_at" bson:"created_at"`
}

// Validate validates the Project entity fields.
func (p *Project) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	return nil
}
