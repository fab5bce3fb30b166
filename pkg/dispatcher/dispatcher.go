package dispatcher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Dispatcher pushes outbound calls to the surrounding document and AI
// services over their REST APIs.
type Dispatcher struct {
	client     *http.Client
	docAddress string
	aiAddress  string
}

func New(docAddress, aiAddress string) *Dispatcher {
	return &Dispatcher{
		client:     &http.Client{Timeout: 30 * time.Second},
		docAddress: docAddress,
		aiAddress:  aiAddress,
	}
}

// NotifyDocumentLabelled tells the document service a document reached the
// labelled state in some project.
func (d *Dispatcher) NotifyDocumentLabelled(ctx context.Context, docId string, labelled bool) error {
	url := fmt.Sprintf("%s/api/v1/documents/%s", d.docAddress, docId)
	body := map[string]interface{}{"labelled": labelled}
	return d.do(ctx, http.MethodPatch, url, body)
}

// RequestTraining asks the AI service to retrain on a project's labelled
// documents.
func (d *Dispatcher) RequestTraining(ctx context.Context, payload interface{}) error {
	url := fmt.Sprintf("%s/api/v1/train", d.aiAddress)
	return d.do(ctx, http.MethodPost, url, payload)
}

// RequestPrediction asks the AI service to predict annotations for a
// document. Results come back asynchronously on the annotation bus.
func (d *Dispatcher) RequestPrediction(ctx context.Context, payload interface{}) error {
	url := fmt.Sprintf("%s/api/v1/pred", d.aiAddress)
	return d.do(ctx, http.MethodPost, url, payload)
}

func (d *Dispatcher) do(ctx context.Context, method, url string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: status %d: %s", method, url, resp.StatusCode, snippet)
	}
	return nil
}
