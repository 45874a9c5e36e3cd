package db

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// EvaluationCriterion is one weighted scoring rule attached to a tender.
type EvaluationCriterion struct {
	Criteria string  `json:"criteria"`
	Weight   float64 `json:"weight"`
}

// CriteriaList is stored as a JSONB array in the tenders table.
type CriteriaList []EvaluationCriterion

func (c CriteriaList) Value() (driver.Value, error) {
	if c == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c)
}

func (c *CriteriaList) Scan(src interface{}) error {
	if src == nil {
		*c = CriteriaList{}
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	default:
		return fmt.Errorf("cannot scan %T into CriteriaList", src)
	}
}
