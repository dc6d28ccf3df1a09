package rag

import (
	"context"
	"errors"

	aiplatform "cloud.google.com/go/aiplatform/apiv1"
	"cloud.google.com/go/aiplatform/apiv1/aiplatformpb"
	"cloud.google.com/go/auth"
	"cloud.google.com/go/auth/credentials"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// vertexAPI is the part of the Vertex RAG Engine the client calls.
type vertexAPI interface {
	CreateCorpus(ctx context.Context, req *aiplatformpb.CreateRagCorpusRequest) (*aiplatformpb.RagCorpus, error)
	GetCorpus(ctx context.Context, req *aiplatformpb.GetRagCorpusRequest) (*aiplatformpb.RagCorpus, error)
	ListCorpora(ctx context.Context, req *aiplatformpb.ListRagCorporaRequest) ([]*aiplatformpb.RagCorpus, error)
	DeleteCorpus(ctx context.Context, req *aiplatformpb.DeleteRagCorpusRequest) error
	// ImportFiles returns the name of the long-running import operation.
	ImportFiles(ctx context.Context, req *aiplatformpb.ImportRagFilesRequest) (string, error)
	ListFiles(ctx context.Context, req *aiplatformpb.ListRagFilesRequest) ([]*aiplatformpb.RagFile, error)
	DeleteFile(ctx context.Context, req *aiplatformpb.DeleteRagFileRequest) error
	RetrieveContexts(ctx context.Context, req *aiplatformpb.RetrieveContextsRequest) (*aiplatformpb.RetrieveContextsResponse, error)
	Close() error
}

// NewGoogleCredentials resolves Application Default Credentials
// (GOOGLE_APPLICATION_CREDENTIALS, gcloud login or the metadata server).
func NewGoogleCredentials() (*auth.Credentials, error) {
	return credentials.DetectDefault(&credentials.DetectOptions{
		Scopes: []string{cloudPlatformScope},
	})
}

type sdkVertex struct {
	data      *aiplatform.VertexRagDataClient
	retrieval *aiplatform.VertexRagClient
}

func dialVertex(ctx context.Context, cfg Config) (*sdkVertex, error) {
	opts := []option.ClientOption{option.WithEndpoint(cfg.Endpoint)}
	if cfg.Credentials != nil {
		opts = append(opts, option.WithAuthCredentials(cfg.Credentials))
	}
	data, err := aiplatform.NewVertexRagDataClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	retrieval, err := aiplatform.NewVertexRagClient(ctx, opts...)
	if err != nil {
		_ = data.Close()
		return nil, err
	}
	return &sdkVertex{data: data, retrieval: retrieval}, nil
}

func (v *sdkVertex) CreateCorpus(ctx context.Context, req *aiplatformpb.CreateRagCorpusRequest) (*aiplatformpb.RagCorpus, error) {
	op, err := v.data.CreateRagCorpus(ctx, req)
	if err != nil {
		return nil, err
	}
	return op.Wait(ctx)
}

func (v *sdkVertex) GetCorpus(ctx context.Context, req *aiplatformpb.GetRagCorpusRequest) (*aiplatformpb.RagCorpus, error) {
	return v.data.GetRagCorpus(ctx, req)
}

func (v *sdkVertex) ListCorpora(ctx context.Context, req *aiplatformpb.ListRagCorporaRequest) ([]*aiplatformpb.RagCorpus, error) {
	it := v.data.ListRagCorpora(ctx, req)
	var out []*aiplatformpb.RagCorpus
	for {
		corpus, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, corpus)
	}
}

func (v *sdkVertex) DeleteCorpus(ctx context.Context, req *aiplatformpb.DeleteRagCorpusRequest) error {
	_, err := v.data.DeleteRagCorpus(ctx, req)
	return err
}

func (v *sdkVertex) ImportFiles(ctx context.Context, req *aiplatformpb.ImportRagFilesRequest) (string, error) {
	op, err := v.data.ImportRagFiles(ctx, req)
	if err != nil {
		return "", err
	}
	return op.Name(), nil
}

func (v *sdkVertex) ListFiles(ctx context.Context, req *aiplatformpb.ListRagFilesRequest) ([]*aiplatformpb.RagFile, error) {
	it := v.data.ListRagFiles(ctx, req)
	var out []*aiplatformpb.RagFile
	for {
		file, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, file)
	}
}

func (v *sdkVertex) DeleteFile(ctx context.Context, req *aiplatformpb.DeleteRagFileRequest) error {
	_, err := v.data.DeleteRagFile(ctx, req)
	return err
}

func (v *sdkVertex) RetrieveContexts(ctx context.Context, req *aiplatformpb.RetrieveContextsRequest) (*aiplatformpb.RetrieveContextsResponse, error) {
	return v.retrieval.RetrieveContexts(ctx, req)
}

func (v *sdkVertex) Close() error {
	return errors.Join(v.data.Close(), v.retrieval.Close())
}
