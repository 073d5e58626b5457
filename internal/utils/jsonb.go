package utils

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

type JSONMap map[string]any

func (j JSONMap) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil // Store NULL if the map is nil
	}
	return json.Marshal(j)
}

func (j *JSONMap) Scan(value any) error {
	if value == nil {
		*j = nil
		return nil
	}

	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("JSONMap: Scan failed, expected []byte but got %T", value)
	}

	return json.Unmarshal(b, j)
}

// StringSlice maps a JSONB array column to []string.
type StringSlice []string

func (s StringSlice) Value() (driver.Value, error) {
	if s == nil {
		return json.Marshal([]string{})
	}
	return json.Marshal([]string(s))
}

func (s *StringSlice) Scan(value any) error {
	if value == nil {
		*s = nil
		return nil
	}

	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("StringSlice: Scan failed, expected []byte but got %T", value)
	}

	return json.Unmarshal(b, (*[]string)(s))
}

// IntSlice maps a JSONB array column to []int.
type IntSlice []int

func (s IntSlice) Value() (driver.Value, error) {
	if s == nil {
		return json.Marshal([]int{})
	}
	return json.Marshal([]int(s))
}

func (s *IntSlice) Scan(value any) error {
	if value == nil {
		*s = nil
		return nil
	}

	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("IntSlice: Scan failed, expected []byte but got %T", value)
	}

	return json.Unmarshal(b, (*[]int)(s))
}
