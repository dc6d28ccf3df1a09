package rag

import (
	"context"
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/aiplatform/apiv1/aiplatformpb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// fakeVertex answers retrieval calls with a JSON-encoded
// RetrieveContextsResponse and records every request.
type fakeVertex struct {
	retrieveJSON string
	err          error
	retrieve     *aiplatformpb.RetrieveContextsRequest
	created      *aiplatformpb.CreateRagCorpusRequest
	imported     *aiplatformpb.ImportRagFilesRequest
	deleted      *aiplatformpb.DeleteRagCorpusRequest
	corpora      []*aiplatformpb.RagCorpus
	files        []*aiplatformpb.RagFile
}

func (f *fakeVertex) CreateCorpus(_ context.Context, req *aiplatformpb.CreateRagCorpusRequest) (*aiplatformpb.RagCorpus, error) {
	f.created = req
	if f.err != nil {
		return nil, f.err
	}
	return &aiplatformpb.RagCorpus{
		Name:        req.GetParent() + "/ragCorpora/9",
		DisplayName: req.GetRagCorpus().GetDisplayName(),
		Description: req.GetRagCorpus().GetDescription(),
	}, nil
}

func (f *fakeVertex) GetCorpus(_ context.Context, req *aiplatformpb.GetRagCorpusRequest) (*aiplatformpb.RagCorpus, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &aiplatformpb.RagCorpus{Name: req.GetName()}, nil
}

func (f *fakeVertex) ListCorpora(context.Context, *aiplatformpb.ListRagCorporaRequest) ([]*aiplatformpb.RagCorpus, error) {
	return f.corpora, f.err
}

func (f *fakeVertex) DeleteCorpus(_ context.Context, req *aiplatformpb.DeleteRagCorpusRequest) error {
	f.deleted = req
	return f.err
}

func (f *fakeVertex) ImportFiles(_ context.Context, req *aiplatformpb.ImportRagFilesRequest) (string, error) {
	f.imported = req
	if f.err != nil {
		return "", f.err
	}
	return "operations/42", nil
}

func (f *fakeVertex) ListFiles(context.Context, *aiplatformpb.ListRagFilesRequest) ([]*aiplatformpb.RagFile, error) {
	return f.files, f.err
}

func (f *fakeVertex) DeleteFile(context.Context, *aiplatformpb.DeleteRagFileRequest) error {
	return f.err
}

func (f *fakeVertex) RetrieveContexts(_ context.Context, req *aiplatformpb.RetrieveContextsRequest) (*aiplatformpb.RetrieveContextsResponse, error) {
	f.retrieve = req
	if f.err != nil {
		return nil, f.err
	}
	resp := &aiplatformpb.RetrieveContextsResponse{}
	if f.retrieveJSON != "" {
		if err := protojson.Unmarshal([]byte(f.retrieveJSON), resp); err != nil {
			return nil, err
		}
	}
	return resp, nil
}

func (f *fakeVertex) Close() error { return nil }

func newTestClient(t *testing.T, api vertexAPI) *Client {
	t.Helper()
	client, err := newClient(Config{ProjectID: "proj", Location: "europe-west3"}, api)
	require.NoError(t, err)
	return client
}

func TestNewClientRequiresProject(t *testing.T) {
	_, err := NewClient(context.Background(), Config{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestConfigDefaults(t *testing.T) {
	cfg, err := normalize(Config{ProjectID: " proj "})
	require.NoError(t, err)
	assert.Equal(t, "proj", cfg.ProjectID)
	assert.Equal(t, DefaultLocation, cfg.Location)
	assert.Equal(t, "us-central1-aiplatform.googleapis.com:443", cfg.Endpoint)
	assert.Equal(t, DefaultChunkSize, cfg.ChunkSize)
	assert.Equal(t, DefaultChunkOverlap, cfg.ChunkOverlap)
}

func TestCorpusName(t *testing.T) {
	client, err := newClient(Config{ProjectID: "proj"}, &fakeVertex{})
	require.NoError(t, err)
	assert.Equal(t, "projects/proj/locations/us-central1/ragCorpora/abc", client.CorpusName("abc"))
	full := "projects/other/locations/x/ragCorpora/1"
	assert.Equal(t, full, client.CorpusName(full))
	assert.Equal(t, "salesagent-project-p1", ProjectCorpusDisplayName("p1"))
}

func TestSearchSendsRetrieveContexts(t *testing.T) {
	api := &fakeVertex{retrieveJSON: `{"contexts":{"contexts":[{"sourceUri":"gs://b/a.pdf","text":"Budget 450k","score":0.91},{"sourceUri":"gs://b/c.pdf","text":"Frist","score":0.2}]}}`}
	client := newTestClient(t, api)

	chunks, err := client.Search(context.Background(), "c1", "Budget", 0)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "chunk-0", chunks[0].ID)
	assert.Equal(t, "gs://b/a.pdf", chunks[0].Source)
	assert.InDelta(t, 0.91, chunks[0].Score, 1e-9)

	req := api.retrieve
	assert.Equal(t, "projects/proj/locations/europe-west3", req.GetParent())
	assert.Equal(t, "Budget", req.GetQuery().GetText())
	assert.Equal(t, int32(5), req.GetQuery().GetRagRetrievalConfig().GetTopK())
	resources := req.GetVertexRagStore().GetRagResources()
	require.Len(t, resources, 1)
	assert.Equal(t, "projects/proj/locations/europe-west3/ragCorpora/c1", resources[0].GetRagCorpus())
}

func TestSearchWithoutContexts(t *testing.T) {
	client := newTestClient(t, &fakeVertex{})
	chunks, err := client.Search(context.Background(), "c1", "x", 3)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestRelevantContextFormatsAndFilters(t *testing.T) {
	client := newTestClient(t, &fakeVertex{retrieveJSON: `{"contexts":{"contexts":[{"text":"Eins","score":0.875},{"text":"Zwei","score":0.4}]}}`})
	text, err := client.RelevantContext(context.Background(), "c1", "q", 3, 0.5)
	require.NoError(t, err)
	assert.Equal(t, "[Source 1] (Relevance: 87.5%)\nEins", text)

	text, err = client.RelevantContext(context.Background(), "c1", "q", 3, 0.9)
	require.NoError(t, err)
	assert.Equal(t, "", text)
}

func TestUpstreamErrorPassesThrough(t *testing.T) {
	denied := status.Error(codes.PermissionDenied, "permission denied")
	client := newTestClient(t, &fakeVertex{err: denied})
	_, err := client.ListCorpora(context.Background())
	require.Error(t, err)
	assert.Equal(t, codes.PermissionDenied, status.Code(err))
	assert.True(t, errors.Is(err, denied))
}

func TestCorpusLifecycleRequests(t *testing.T) {
	created := timestamppb.New(mustTime(t, "2026-02-01T09:30:00Z"))
	api := &fakeVertex{
		corpora: []*aiplatformpb.RagCorpus{{Name: "projects/proj/locations/europe-west3/ragCorpora/9", DisplayName: "salesagent-project-p1", CreateTime: created}},
		files:   []*aiplatformpb.RagFile{{Name: "projects/proj/locations/europe-west3/ragCorpora/9/ragFiles/1", DisplayName: "rfp.pdf"}},
	}
	client := newTestClient(t, api)
	ctx := context.Background()

	corpus, err := client.CreateCorpus(ctx, ProjectCorpusDisplayName("p1"), "d")
	require.NoError(t, err)
	assert.Equal(t, "projects/proj/locations/europe-west3/ragCorpora/9", corpus.Name)
	assert.Equal(t, "projects/proj/locations/europe-west3", api.created.GetParent())
	assert.Equal(t, "salesagent-project-p1", api.created.GetRagCorpus().GetDisplayName())

	file, err := client.ImportFile(ctx, "9", "gs://bucket/rfp.pdf", "rfp.pdf")
	require.NoError(t, err)
	assert.Equal(t, "operations/42", file.Name)
	assert.Equal(t, "PENDING", file.Status)
	cfg := api.imported.GetImportRagFilesConfig()
	assert.Equal(t, "projects/proj/locations/europe-west3/ragCorpora/9", api.imported.GetParent())
	assert.Equal(t, []string{"gs://bucket/rfp.pdf"}, cfg.GetGcsSource().GetUris())
	chunking := cfg.GetRagFileTransformationConfig().GetRagFileChunkingConfig().GetFixedLengthChunking()
	assert.Equal(t, int32(1024), chunking.GetChunkSize())
	assert.Equal(t, int32(200), chunking.GetChunkOverlap())

	corpora, err := client.ListCorpora(ctx)
	require.NoError(t, err)
	require.Len(t, corpora, 1)
	assert.Equal(t, "2026-02-01T09:30:00Z", corpora[0].CreateTime)
	assert.Empty(t, corpora[0].UpdateTime)

	files, err := client.ListFiles(ctx, "9")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "rfp.pdf", files[0].DisplayName)

	require.NoError(t, client.DeleteCorpus(ctx, "9"))
	assert.Equal(t, "projects/proj/locations/europe-west3/ragCorpora/9", api.deleted.GetName())
	assert.True(t, api.deleted.GetForce())
}

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return ts
}
