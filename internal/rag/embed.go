package rag

import (
	"context"
	"errors"

	"google.golang.org/genai"

	"salesagent-backend/internal/metrics"
)

type Embedding struct {
	Values     []float32 `json:"embedding"`
	TokenCount int       `json:"tokenCount"`
}

type Embedder interface {
	Embed(ctx context.Context, texts []string) ([]Embedding, error)
}

// GenAIEmbedder computes embeddings through the Vertex backend of the genai
// SDK.
type GenAIEmbedder struct {
	client *genai.Client
	model  string
}

func NewGenAIEmbedder(ctx context.Context, projectID, location, model string) (*GenAIEmbedder, error) {
	if projectID == "" {
		return nil, ErrNotConfigured
	}
	if location == "" {
		location = DefaultLocation
	}
	if model == "" {
		model = DefaultEmbeddingModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend:  genai.BackendVertexAI,
		Project:  projectID,
		Location: location,
	})
	if err != nil {
		return nil, err
	}
	return &GenAIEmbedder{client: client, model: model}, nil
}

func (e *GenAIEmbedder) Embed(ctx context.Context, texts []string) ([]Embedding, error) {
	if len(texts) == 0 {
		return nil, errors.New("no texts to embed")
	}
	contents := make([]*genai.Content, 0, len(texts))
	for _, t := range texts {
		contents = append(contents, genai.NewContentFromText(t, genai.RoleUser))
	}
	resp, err := e.client.Models.EmbedContent(ctx, e.model, contents, nil)
	if err != nil {
		metrics.IncrementRAGRequest("embed", "error")
		return nil, err
	}
	metrics.IncrementRAGRequest("embed", "ok")

	out := make([]Embedding, 0, len(resp.Embeddings))
	for _, emb := range resp.Embeddings {
		if emb == nil {
			continue
		}
		item := Embedding{Values: emb.Values}
		if emb.Statistics != nil {
			item.TokenCount = int(emb.Statistics.TokenCount)
		}
		out = append(out, item)
	}
	return out, nil
}
