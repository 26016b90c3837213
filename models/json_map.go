package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// JSONMap is a JSON object column, jsonb on postgres and text elsewhere.
type JSONMap map[string]any

// Scan implements the sql.Scanner interface for JSONMap.
func (m *JSONMap) Scan(value any) error {
	if value == nil {
		*m = nil
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("cannot scan %T into JSONMap", value)
	}
	if len(raw) == 0 {
		*m = nil
		return nil
	}

	out := JSONMap{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("failed to decode JSONMap: %w", err)
	}
	*m = out
	return nil
}

// Value implements the driver.Valuer interface for JSONMap.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSONMap: %w", err)
	}
	return string(b), nil
}

// GormDataType keeps gorm from parsing the map as a relation.
func (JSONMap) GormDataType() string {
	return "json"
}

// GormDBDataType picks the column type per dialect.
func (JSONMap) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "jsonb"
	}
	return "text"
}
