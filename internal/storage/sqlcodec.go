package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// EncodeWeekdays stores a weekday set as a JSON array. A nil set (every day)
// is stored as NULL so it survives a round trip distinct from an empty set.
func EncodeWeekdays(days []int) (sql.NullString, error) {
	if days == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(days)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to encode days of week: %w", err)
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

// DecodeWeekdays reverses EncodeWeekdays.
func DecodeWeekdays(ns sql.NullString) ([]int, error) {
	if !ns.Valid {
		return nil, nil
	}
	days := []int{}
	if err := json.Unmarshal([]byte(ns.String), &days); err != nil {
		return nil, fmt.Errorf("failed to decode days of week: %w", err)
	}
	return days, nil
}

// EncodeTags stores tags as a JSON array.
func EncodeTags(tags []string) (string, error) {
	if tags == nil {
		return "[]", nil
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("failed to encode tags: %w", err)
	}
	return string(b), nil
}

// DecodeTags reverses EncodeTags. An empty list decodes to nil.
func DecodeTags(s string) ([]string, error) {
	if s == "" || s == "[]" {
		return nil, nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(s), &tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags: %w", err)
	}
	return tags, nil
}
