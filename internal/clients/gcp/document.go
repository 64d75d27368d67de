package gcp

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/api/option"
	"google.golang.org/protobuf/types/known/fieldmaskpb"

	"github.com/pitstop/pitstop-backend/internal/logger"
)

// Document extracts plain text from uploaded syllabus files. Unreadable or
// corrupt documents surface as an error from ExtractText; the caller decides
// how to report it.
type Document interface {
	ExtractText(ctx context.Context, mimeType string, data []byte) (string, error)
	Close() error
}

type docAI struct {
	log       *logger.Logger
	client    *documentai.DocumentProcessorClient
	processor string
}

func NewDocument(ctx context.Context, log *logger.Logger) (Document, error) {
	projectID := strings.TrimSpace(os.Getenv("DOCAI_PROJECT_ID"))
	if projectID == "" {
		return nil, fmt.Errorf("missing DOCAI_PROJECT_ID")
	}
	processorID := strings.TrimSpace(os.Getenv("DOCAI_PROCESSOR_ID"))
	if processorID == "" {
		return nil, fmt.Errorf("missing DOCAI_PROCESSOR_ID")
	}
	location := strings.TrimSpace(os.Getenv("DOCAI_LOCATION"))
	if location == "" {
		location = "us"
	}

	opts := append(ClientOptionsFromEnv(),
		option.WithEndpoint(fmt.Sprintf("%s-documentai.googleapis.com:443", location)))
	client, err := documentai.NewDocumentProcessorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("documentai client: %w", err)
	}

	return &docAI{
		log:       log.With("client", "DocumentAI"),
		client:    client,
		processor: fmt.Sprintf("projects/%s/locations/%s/processors/%s", projectID, location, processorID),
	}, nil
}

func (d *docAI) ExtractText(ctx context.Context, mimeType string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty document")
	}

	// Plain text and markdown skip the round-trip entirely.
	if strings.HasPrefix(mimeType, "text/") {
		return string(data), nil
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	resp, err := d.client.ProcessDocument(ctx, &documentaipb.ProcessRequest{
		Name: d.processor,
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  data,
				MimeType: mimeType,
			},
		},
		FieldMask: &fieldmaskpb.FieldMask{Paths: []string{"text"}},
	})
	if err != nil {
		return "", fmt.Errorf("documentai process: %w", err)
	}

	text := resp.GetDocument().GetText()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("document produced no text")
	}
	return text, nil
}

func (d *docAI) Close() error {
	return d.client.Close()
}
