package core

import "context"

// ChatModel turns a conversation into one assistant reply.
type ChatModel interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}

// Embedder maps text to a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dims() int
}
