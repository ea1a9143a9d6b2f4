package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// DraftStatus tracks a draft through the production pipeline.
type DraftStatus string

const (
	StatusDraft      DraftStatus = "draft"
	StatusScheduled  DraftStatus = "scheduled"
	StatusSentToMake DraftStatus = "sent-to-make"
	StatusProcessing DraftStatus = "processing"
	StatusPublished  DraftStatus = "published"
	StatusError      DraftStatus = "error"
)

// ParseDraftStatus maps a wire tag to a DraftStatus, rejecting unknown values.
func ParseDraftStatus(s string) (DraftStatus, error) {
	switch DraftStatus(strings.ToLower(strings.TrimSpace(s))) {
	case StatusDraft:
		return StatusDraft, nil
	case StatusScheduled:
		return StatusScheduled, nil
	case StatusSentToMake:
		return StatusSentToMake, nil
	case StatusProcessing:
		return StatusProcessing, nil
	case StatusPublished:
		return StatusPublished, nil
	case StatusError:
		return StatusError, nil
	default:
		return "", fmt.Errorf("unknown draft status %q", s)
	}
}

// DraftContent holds the structured business-description answers a user
// submits. The field order here is also the order used when the answers are
// assembled into a single prompt draft.
type DraftContent struct {
	BusinessName string `json:"business_name"`
	Offering     string `json:"offering"`
	Problem      string `json:"problem"`
	Story        string `json:"story"`
	Territory    string `json:"territory"`
	CallToAction string `json:"call_to_action"`
	Contact      string `json:"contact"`
}

// Scan implements the sql.Scanner interface
func (c *DraftContent) Scan(value interface{}) error {
	return scanJSON(value, c, "DraftContent")
}

// Value implements the driver.Valuer interface
func (c DraftContent) Value() (driver.Value, error) {
	return json.Marshal(c)
}

// ContentMap holds the generated text per platform, stored as jsonb.
type ContentMap map[Platform]string

// Scan implements the sql.Scanner interface
func (m *ContentMap) Scan(value interface{}) error {
	return scanJSON(value, m, "ContentMap")
}

// Value implements the driver.Valuer interface
func (m ContentMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	return json.Marshal(m)
}

// StringArray represents a PostgreSQL text[] type
type StringArray []string

// Scan implements the sql.Scanner interface
func (s *StringArray) Scan(value interface{}) error {
	if value == nil {
		*s = StringArray{}
		return nil
	}

	var raw string
	switch v := value.(type) {
	case string:
		raw = v
	case []byte:
		// Try JSON first, some drivers hand text[] back as a JSON blob.
		var arr []string
		if err := json.Unmarshal(v, &arr); err == nil {
			*s = arr
			return nil
		}
		raw = string(v)
	default:
		return fmt.Errorf("cannot scan %T into StringArray", value)
	}

	trimmed := strings.Trim(raw, "{}")
	if trimmed == "" {
		*s = StringArray{}
		return nil
	}

	parts := strings.Split(trimmed, ",")
	result := make([]string, len(parts))
	for i, part := range parts {
		result[i] = strings.Trim(strings.TrimSpace(part), "\"")
	}
	*s = result
	return nil
}

// Value implements the driver.Valuer interface
func (s StringArray) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "{}", nil
	}

	quoted := make([]string, len(s))
	for i, v := range s {
		escaped := strings.ReplaceAll(v, "\"", "\\\"")
		quoted[i] = fmt.Sprintf("\"%s\"", escaped)
	}
	return fmt.Sprintf("{%s}", strings.Join(quoted, ",")), nil
}

// Draft is a submitted content draft. Rows are append-only from the
// application's perspective; only the dispatcher and the downstream pipeline
// callback move the status after submission.
type Draft struct {
	ID              string         `gorm:"primaryKey;size:36" json:"id"`
	UserID          string         `gorm:"not null;index;size:36" json:"user_id"`
	Title           string         `gorm:"not null;size:500" json:"title"`
	City            string         `gorm:"size:100" json:"city"`
	Content         DraftContent   `gorm:"type:jsonb" json:"content"`
	Platforms       PlatformList   `gorm:"type:text[]" json:"platforms"`
	PlatformContent ContentMap     `gorm:"type:jsonb" json:"platform_content"`
	MediaURLs       StringArray    `gorm:"type:text[]" json:"media_urls"`
	Status          DraftStatus    `gorm:"size:50;default:'draft';index" json:"status"`
	StatusMessage   string         `gorm:"type:text" json:"status_message"`
	ScheduledAt     *time.Time     `json:"scheduled_at"`
	DispatchedAt    *time.Time     `json:"dispatched_at"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"deleted_at"`
}

func scanJSON(value interface{}, dest interface{}, typeName string) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("cannot scan %T into %s", value, typeName)
	}
}
