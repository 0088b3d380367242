package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type Talk struct {
	ID            int64      `db:"id" json:"id"`
	Title         string     `db:"title" json:"title"`
	Subtitle      string     `db:"subtitle" json:"subtitle"`
	Abstract      string     `db:"abstract" json:"abstract"`
	KeyTakeaways  StringList `db:"key_takeaways" json:"keyTakeaways"`
	AudienceFit   string     `db:"audience_fit" json:"audienceFit"`
	FormatOptions StringList `db:"format_options" json:"formatOptions"`
	Order         int        `db:"sort_order" json:"order"`
	CreatedAt     time.Time  `db:"created_at" json:"createdAt"`
}

// StringList is an ordered list of strings stored as a JSON array in a text column.
// Stored text that is not a JSON string array reads back as a single-element
// list holding the raw text; empty text reads back as an empty list.
type StringList []string

// ParseStringList decodes stored text into a StringList.
func ParseStringList(raw string) StringList {
	if strings.TrimSpace(raw) == "" {
		return StringList{}
	}
	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil || items == nil {
		return StringList{raw}
	}
	return StringList(items)
}

// Encode renders the list as stored text.
func (l StringList) Encode() string {
	if l == nil {
		l = StringList{}
	}
	data, _ := json.Marshal([]string(l))
	return string(data)
}

func (l StringList) Value() (driver.Value, error) {
	return l.Encode(), nil
}

func (l *StringList) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*l = StringList{}
	case string:
		*l = ParseStringList(v)
	case []byte:
		*l = ParseStringList(string(v))
	default:
		return fmt.Errorf("scan StringList: unsupported type %T", src)
	}
	return nil
}

func (l StringList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

// UnmarshalJSON accepts either an array of strings or the stored text form.
func (l *StringList) UnmarshalJSON(data []byte) error {
	var items []string
	if err := json.Unmarshal(data, &items); err == nil {
		if items == nil {
			items = []string{}
		}
		*l = StringList(items)
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode StringList: %w", err)
	}
	*l = ParseStringList(raw)
	return nil
}
