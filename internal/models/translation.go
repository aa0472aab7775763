package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type TranslationStatus string

const (
	TranslationPending   TranslationStatus = "pending"
	TranslationCompleted TranslationStatus = "completed"
	TranslationFailed    TranslationStatus = "failed"
)

// Translation is one row of translation history. Synchronous translations
// are stored completed; queued jobs start pending and carry a JobID.
type Translation struct {
	ID         uuid.UUID         `json:"id" db:"id"`
	JobID      *uuid.UUID        `json:"job_id,omitempty" db:"job_id"`
	Provider   string            `json:"provider" db:"provider"`
	SourceText string            `json:"source_text" db:"source_text"`
	FromLang   string            `json:"from" db:"from_lang"`
	ToLang     string            `json:"to" db:"to_lang"`
	Result     json.RawMessage   `json:"result,omitempty" db:"result"`
	Status     TranslationStatus `json:"status" db:"status"`
	Error      string            `json:"error,omitempty" db:"error"`
	CreatedAt  time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at" db:"updated_at"`
}
