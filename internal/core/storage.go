package core

import "context"

type MessageLog interface {
	AppendMessage(ctx context.Context, role Role, content string) (int64, error)
	RecentMessages(ctx context.Context, n int) ([]StoredMessage, error)
	UnsummarizedCount(ctx context.Context) (int, error)
	UnsummarizedMessages(ctx context.Context) ([]StoredMessage, error)
	MarkSummarized(ctx context.Context, uptoID int64) error
}

type FactIndex interface {
	InsertFact(ctx context.Context, content string, embedding []float32, source string, factType FactType) (int64, error)
	DeleteFact(ctx context.Context, id int64) error
	ReplaceFact(ctx context.Context, oldID int64, content string, embedding []float32, source string, factType FactType) (int64, error)
	SearchFacts(ctx context.Context, query []float32, k int) ([]FactMatch, error)
}

type SummaryLog interface {
	InsertSummary(ctx context.Context, content string, fromID, toID int64) (int64, error)
	UnincorporatedCount(ctx context.Context) (int, error)
	UnincorporatedSummaries(ctx context.Context) ([]Summary, error)
	MarkIncorporated(ctx context.Context, uptoID int64) error
}

type BaseMemoryStore interface {
	GetBaseMemory(ctx context.Context) (string, error)
	SetBaseMemory(ctx context.Context, content string) error
}

// MemoryStore is the full persistent surface used by the memory service.
type MemoryStore interface {
	MessageLog
	FactIndex
	SummaryLog
	BaseMemoryStore
}

// MemoryInspector exposes read-only views for operators.
type MemoryInspector interface {
	BaseMemoryInfo(ctx context.Context) (BaseMemory, error)
	ListFacts(ctx context.Context, limit int) ([]Fact, error)
	ListSummaries(ctx context.Context, limit int) ([]Summary, error)
	Stats(ctx context.Context) (Stats, error)
}
