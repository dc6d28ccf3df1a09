// Package rag proxies the Vertex AI RAG Engine: corpus and file management,
// context retrieval and embeddings.
package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/aiplatform/apiv1/aiplatformpb"
	"cloud.google.com/go/auth"
	"google.golang.org/protobuf/types/known/timestamppb"

	"salesagent-backend/internal/metrics"
)

const (
	DefaultLocation       = "us-central1"
	DefaultEmbeddingModel = "text-embedding-005"
	DefaultChunkSize      = 1024
	DefaultChunkOverlap   = 200
	defaultTopK           = 5
)

var ErrNotConfigured = errors.New("vertex rag not configured")

type Config struct {
	ProjectID    string
	Location     string
	ChunkSize    int
	ChunkOverlap int
	// Endpoint overrides {location}-aiplatform.googleapis.com:443.
	Endpoint string
	// Credentials defaults to Application Default Credentials.
	Credentials *auth.Credentials
}

type Client struct {
	cfg Config
	api vertexAPI
}

// NewClient dials the Vertex RAG data and retrieval services.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	cfg, err := normalize(cfg)
	if err != nil {
		return nil, err
	}
	api, err := dialVertex(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("dial vertex rag: %w", err)
	}
	return &Client{cfg: cfg, api: api}, nil
}

func newClient(cfg Config, api vertexAPI) (*Client, error) {
	cfg, err := normalize(cfg)
	if err != nil {
		return nil, err
	}
	return &Client{cfg: cfg, api: api}, nil
}

func normalize(cfg Config) (Config, error) {
	cfg.ProjectID = strings.TrimSpace(cfg.ProjectID)
	if cfg.ProjectID == "" {
		return cfg, ErrNotConfigured
	}
	if cfg.Location == "" {
		cfg.Location = DefaultLocation
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.ChunkOverlap <= 0 {
		cfg.ChunkOverlap = DefaultChunkOverlap
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = cfg.Location + "-aiplatform.googleapis.com:443"
	}
	return cfg, nil
}

func (c *Client) Close() error {
	return c.api.Close()
}

func (c *Client) parent() string {
	return fmt.Sprintf("projects/%s/locations/%s", c.cfg.ProjectID, c.cfg.Location)
}

// CorpusName expands a short corpus id to its full resource name. Full
// names pass through.
func (c *Client) CorpusName(id string) string {
	if strings.HasPrefix(id, "projects/") {
		return id
	}
	return c.parent() + "/ragCorpora/" + id
}

// ProjectCorpusDisplayName is the display name of the corpus holding a
// project's documents.
func ProjectCorpusDisplayName(projectID string) string {
	return "salesagent-project-" + projectID
}

type Corpus struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Description string `json:"description,omitempty"`
	CreateTime  string `json:"createTime,omitempty"`
	UpdateTime  string `json:"updateTime,omitempty"`
}

type File struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	CreateTime  string `json:"createTime,omitempty"`
	UpdateTime  string `json:"updateTime,omitempty"`
	Status      string `json:"status,omitempty"`
}

type Chunk struct {
	ID      string
	Content string
	Source  string
	Score   float64
}

// CreateCorpus waits for the create operation, so the returned corpus
// carries its final resource name.
func (c *Client) CreateCorpus(ctx context.Context, displayName, description string) (Corpus, error) {
	pb, err := c.api.CreateCorpus(ctx, &aiplatformpb.CreateRagCorpusRequest{
		Parent: c.parent(),
		RagCorpus: &aiplatformpb.RagCorpus{
			DisplayName: displayName,
			Description: description,
		},
	})
	c.observe("corpus_create", err)
	if err != nil {
		return Corpus{}, err
	}
	return corpusFrom(pb), nil
}

func (c *Client) GetCorpus(ctx context.Context, name string) (Corpus, error) {
	pb, err := c.api.GetCorpus(ctx, &aiplatformpb.GetRagCorpusRequest{Name: c.CorpusName(name)})
	c.observe("corpus_get", err)
	if err != nil {
		return Corpus{}, err
	}
	return corpusFrom(pb), nil
}

func (c *Client) ListCorpora(ctx context.Context) ([]Corpus, error) {
	items, err := c.api.ListCorpora(ctx, &aiplatformpb.ListRagCorporaRequest{Parent: c.parent()})
	c.observe("corpus_list", err)
	if err != nil {
		return nil, err
	}
	out := make([]Corpus, 0, len(items))
	for _, pb := range items {
		out = append(out, corpusFrom(pb))
	}
	return out, nil
}

// DeleteCorpus removes a corpus together with its files. Vertex finishes the
// deletion in the background.
func (c *Client) DeleteCorpus(ctx context.Context, name string) error {
	err := c.api.DeleteCorpus(ctx, &aiplatformpb.DeleteRagCorpusRequest{Name: c.CorpusName(name), Force: true})
	c.observe("corpus_delete", err)
	return err
}

// ImportFile starts an import of a Cloud Storage object. Vertex processes
// it asynchronously, so the returned file carries the operation name and a
// PENDING status.
func (c *Client) ImportFile(ctx context.Context, corpusName, gcsURI, displayName string) (File, error) {
	op, err := c.api.ImportFiles(ctx, &aiplatformpb.ImportRagFilesRequest{
		Parent: c.CorpusName(corpusName),
		ImportRagFilesConfig: &aiplatformpb.ImportRagFilesConfig{
			ImportSource: &aiplatformpb.ImportRagFilesConfig_GcsSource{
				GcsSource: &aiplatformpb.GcsSource{Uris: []string{gcsURI}},
			},
			RagFileTransformationConfig: &aiplatformpb.RagFileTransformationConfig{
				RagFileChunkingConfig: &aiplatformpb.RagFileChunkingConfig{
					ChunkingConfig: &aiplatformpb.RagFileChunkingConfig_FixedLengthChunking_{
						FixedLengthChunking: &aiplatformpb.RagFileChunkingConfig_FixedLengthChunking{
							ChunkSize:    int32(c.cfg.ChunkSize),
							ChunkOverlap: int32(c.cfg.ChunkOverlap),
						},
					},
				},
			},
		},
	})
	c.observe("file_import", err)
	if err != nil {
		return File{}, err
	}
	return File{Name: op, DisplayName: displayName, Status: "PENDING"}, nil
}

func (c *Client) ListFiles(ctx context.Context, corpusName string) ([]File, error) {
	items, err := c.api.ListFiles(ctx, &aiplatformpb.ListRagFilesRequest{Parent: c.CorpusName(corpusName)})
	c.observe("file_list", err)
	if err != nil {
		return nil, err
	}
	out := make([]File, 0, len(items))
	for _, pb := range items {
		out = append(out, File{
			Name:        pb.GetName(),
			DisplayName: pb.GetDisplayName(),
			CreateTime:  stamp(pb.GetCreateTime()),
			UpdateTime:  stamp(pb.GetUpdateTime()),
		})
	}
	return out, nil
}

func (c *Client) DeleteFile(ctx context.Context, name string) error {
	err := c.api.DeleteFile(ctx, &aiplatformpb.DeleteRagFileRequest{Name: name})
	c.observe("file_delete", err)
	return err
}

// Search runs RetrieveContexts against one corpus.
func (c *Client) Search(ctx context.Context, corpusName, query string, topK int) ([]Chunk, error) {
	if topK <= 0 {
		topK = defaultTopK
	}
	resp, err := c.api.RetrieveContexts(ctx, &aiplatformpb.RetrieveContextsRequest{
		Parent: c.parent(),
		DataSource: &aiplatformpb.RetrieveContextsRequest_VertexRagStore_{
			VertexRagStore: &aiplatformpb.RetrieveContextsRequest_VertexRagStore{
				RagResources: []*aiplatformpb.RetrieveContextsRequest_VertexRagStore_RagResource{
					{RagCorpus: c.CorpusName(corpusName)},
				},
			},
		},
		Query: &aiplatformpb.RagQuery{
			Query:              &aiplatformpb.RagQuery_Text{Text: query},
			RagRetrievalConfig: &aiplatformpb.RagRetrievalConfig{TopK: int32(topK)},
		},
	})
	c.observe("search", err)
	if err != nil {
		return nil, err
	}
	contexts := resp.GetContexts().GetContexts()
	chunks := make([]Chunk, 0, len(contexts))
	for i, rc := range contexts {
		chunks = append(chunks, Chunk{
			ID:      fmt.Sprintf("chunk-%d", i),
			Content: rc.GetText(),
			Source:  rc.GetSourceUri(),
			Score:   rc.GetScore(),
		})
	}
	return chunks, nil
}

// RelevantContext formats the best chunks for a prompt. Chunks under
// minScore are dropped; an empty string means nothing matched.
func (c *Client) RelevantContext(ctx context.Context, corpusName, query string, maxChunks int, minScore float64) (string, error) {
	if maxChunks <= 0 {
		maxChunks = 3
	}
	chunks, err := c.Search(ctx, corpusName, query, maxChunks)
	if err != nil {
		return "", err
	}
	return FormatChunks(FilterByScore(chunks, minScore), "Source"), nil
}

func FilterByScore(chunks []Chunk, minScore float64) []Chunk {
	if minScore <= 0 {
		return chunks
	}
	out := make([]Chunk, 0, len(chunks))
	for _, ch := range chunks {
		if ch.Score >= minScore {
			out = append(out, ch)
		}
	}
	return out
}

// FormatChunks numbers chunks as "[label n] (Relevance: x%)" blocks.
func FormatChunks(chunks []Chunk, label string) string {
	parts := make([]string, 0, len(chunks))
	for i, ch := range chunks {
		parts = append(parts, fmt.Sprintf("[%s %d] (Relevance: %s)\n%s", label, i+1, ScorePercent(ch.Score), ch.Content))
	}
	return strings.Join(parts, "\n\n---\n\n")
}

func ScorePercent(score float64) string {
	return fmt.Sprintf("%.1f%%", score*100)
}

func (c *Client) observe(op string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.IncrementRAGRequest(op, status)
}

func corpusFrom(pb *aiplatformpb.RagCorpus) Corpus {
	return Corpus{
		Name:        pb.GetName(),
		DisplayName: pb.GetDisplayName(),
		Description: pb.GetDescription(),
		CreateTime:  stamp(pb.GetCreateTime()),
		UpdateTime:  stamp(pb.GetUpdateTime()),
	}
}

func stamp(ts *timestamppb.Timestamp) string {
	if ts == nil {
		return ""
	}
	return ts.AsTime().UTC().Format(time.RFC3339)
}
