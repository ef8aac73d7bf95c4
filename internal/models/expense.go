package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Expense is a single spending record. ID doubles as the document key and
// UserID as the partition key.
type Expense struct {
	ID          string  `json:"id" bson:"_id"`
	UserID      string  `json:"userId" bson:"userId"`
	Amount      float64 `json:"amount" bson:"amount"`
	Category    string  `json:"category" bson:"category"`
	Description *string `json:"description" bson:"description"`
	Date        string  `json:"date" bson:"date"`
}

// Amount is a monetary value sent either as a JSON number or as a numeric
// string, which is what HTML form inputs produce.
type Amount float64

func (a *Amount) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		raw = []byte(strings.TrimSpace(s))
	}

	v, err := strconv.ParseFloat(string(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("amount must be a number, got %s", data)
	}
	*a = Amount(v)
	return nil
}

// ExpenseInput is the create payload. Required fields only need to be
// present; empty strings are accepted. ID is assigned by the service when
// empty.
type ExpenseInput struct {
	ID          string  `json:"id,omitempty"`
	UserID      *string `json:"userId" validate:"required"`
	Amount      *Amount `json:"amount" validate:"required"`
	Category    *string `json:"category" validate:"required"`
	Description *string `json:"description,omitempty"`
	Date        *string `json:"date" validate:"required"`
}

func (in ExpenseInput) Expense() Expense {
	e := Expense{
		ID:          in.ID,
		UserID:      deref(in.UserID),
		Category:    deref(in.Category),
		Description: in.Description,
		Date:        deref(in.Date),
	}
	if in.Amount != nil {
		e.Amount = float64(*in.Amount)
	}
	return e
}

// ExpensePatch is the update payload. UserID locates the document; every
// other non-nil field replaces the stored one. A field sent as JSON null
// decodes to nil and is left unchanged, so a description cannot be cleared
// through an update.
type ExpensePatch struct {
	UserID      *string `json:"userId" validate:"required"`
	Amount      *Amount `json:"amount,omitempty"`
	Category    *string `json:"category,omitempty"`
	Description *string `json:"description,omitempty"`
	Date        *string `json:"date,omitempty"`
}

// Owner returns the partition key the patch is addressed to.
func (p ExpensePatch) Owner() string {
	return deref(p.UserID)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
