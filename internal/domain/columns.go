package domain

import (
	"database/sql/driver"
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// StringList is stored as a JSON array in a text column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	return string(b), err
}

func (l *StringList) Scan(src any) error {
	raw, err := textOf(src)
	if err != nil || raw == "" {
		*l = nil
		return err
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return fmt.Errorf("scan StringList: %w", err)
	}
	*l = out
	return nil
}

// SocialLinks maps a platform (facebook, instagram ...) to a profile URL.
type SocialLinks map[string]string

func (s SocialLinks) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]string(s))
	return string(b), err
}

func (s *SocialLinks) Scan(src any) error {
	raw, err := textOf(src)
	if err != nil || raw == "" {
		*s = nil
		return err
	}
	out := map[string]string{}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return fmt.Errorf("scan SocialLinks: %w", err)
	}
	*s = out
	return nil
}

func textOf(src any) (string, error) {
	switch v := src.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	}
	return "", fmt.Errorf("unsupported column type %T", src)
}
