package core

import (
	"strings"
	"time"
)

type FactType string

const (
	FactPersonal   FactType = "personal"
	FactPreference FactType = "preference"
	FactKnowledge  FactType = "knowledge"
	FactEvent      FactType = "event"
)

// NormalizeFactType maps free-form model output onto the known set.
// Anything unrecognized becomes knowledge.
func NormalizeFactType(s string) FactType {
	switch t := FactType(strings.ToLower(strings.TrimSpace(s))); t {
	case FactPersonal, FactPreference, FactKnowledge, FactEvent:
		return t
	}
	return FactKnowledge
}

const (
	SourceExtraction = "extraction"
	SourceManual     = "manual"
)

type StoredMessage struct {
	ID         int64     `json:"id"`
	Role       Role      `json:"role"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
	Summarized bool      `json:"summarized"`
}

type Fact struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	Embedding []float32 `json:"-"`
	Source    string    `json:"source"`
	Type      FactType  `json:"fact_type"`
	CreatedAt time.Time `json:"created_at"`
}

// FactMatch is a fact with its cosine distance to a query, in [0, 2].
type FactMatch struct {
	Fact
	Distance float64 `json:"distance"`
}

type Summary struct {
	ID           int64     `json:"id"`
	Content      string    `json:"content"`
	SourceFromID int64     `json:"source_from_id"`
	SourceToID   int64     `json:"source_to_id"`
	CreatedAt    time.Time `json:"created_at"`
	Incorporated bool      `json:"incorporated"`
}

type BaseMemory struct {
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MemoryContext is assembled per turn and never stored.
type MemoryContext struct {
	BaseMemory    string
	RelevantFacts []string
	Formatted     string
}

type Stats struct {
	Messages                int `json:"messages"`
	UnsummarizedMessages    int `json:"unsummarized_messages"`
	Facts                   int `json:"facts"`
	Summaries               int `json:"summaries"`
	UnincorporatedSummaries int `json:"unincorporated_summaries"`
	BaseMemoryChars         int `json:"base_memory_chars"`
}
