package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// Platform identifies a publishing target for generated content.
type Platform string

const (
	PlatformFacebook    Platform = "facebook"
	PlatformInstagram   Platform = "instagram"
	PlatformWordPress   Platform = "wordpress"
	PlatformMarketplace Platform = "marketplace"
)

// AllPlatforms lists every platform a draft can target.
var AllPlatforms = []Platform{
	PlatformFacebook,
	PlatformInstagram,
	PlatformWordPress,
	PlatformMarketplace,
}

// GeneratedPlatforms lists the platforms whose content comes from the model.
// Marketplace listings copy the offering text verbatim and never hit the model.
var GeneratedPlatforms = []Platform{
	PlatformFacebook,
	PlatformInstagram,
	PlatformWordPress,
}

// ParsePlatform maps a wire tag to a Platform, rejecting unknown values.
func ParsePlatform(s string) (Platform, error) {
	switch Platform(strings.ToLower(strings.TrimSpace(s))) {
	case PlatformFacebook:
		return PlatformFacebook, nil
	case PlatformInstagram:
		return PlatformInstagram, nil
	case PlatformWordPress:
		return PlatformWordPress, nil
	case PlatformMarketplace:
		return PlatformMarketplace, nil
	default:
		return "", fmt.Errorf("unknown platform %q", s)
	}
}

// RequiresGeneration reports whether the platform's content is model-generated.
func (p Platform) RequiresGeneration() bool {
	return p != PlatformMarketplace
}

// DisplayName returns the capitalized name used in prompts and UI labels.
func (p Platform) DisplayName() string {
	switch p {
	case PlatformFacebook:
		return "Facebook"
	case PlatformInstagram:
		return "Instagram"
	case PlatformWordPress:
		return "WordPress"
	case PlatformMarketplace:
		return "Marketplace"
	default:
		return string(p)
	}
}

func (p Platform) String() string {
	return string(p)
}

// PlatformList represents a PostgreSQL text[] column of platform tags.
type PlatformList []Platform

// Scan implements the sql.Scanner interface
func (l *PlatformList) Scan(value interface{}) error {
	if value == nil {
		*l = PlatformList{}
		return nil
	}

	var raw string
	switch v := value.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("cannot scan %T into PlatformList", value)
	}

	trimmed := strings.Trim(raw, "{}")
	if trimmed == "" {
		*l = PlatformList{}
		return nil
	}

	parts := strings.Split(trimmed, ",")
	result := make(PlatformList, 0, len(parts))
	for _, part := range parts {
		tag := strings.Trim(strings.TrimSpace(part), "\"")
		p, err := ParsePlatform(tag)
		if err != nil {
			return err
		}
		result = append(result, p)
	}
	*l = result
	return nil
}

// Value implements the driver.Valuer interface
func (l PlatformList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "{}", nil
	}

	quoted := make([]string, len(l))
	for i, p := range l {
		quoted[i] = fmt.Sprintf("\"%s\"", p)
	}
	return fmt.Sprintf("{%s}", strings.Join(quoted, ",")), nil
}

// Contains reports whether the list includes the given platform.
func (l PlatformList) Contains(p Platform) bool {
	for _, item := range l {
		if item == p {
			return true
		}
	}
	return false
}
