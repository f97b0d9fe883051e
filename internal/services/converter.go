package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"SP-DOCS/internal/packs"
)

// DefaultConvertTimeout is the hard deadline applied to one conversion
// call when none is configured.
const DefaultConvertTimeout = 120 * time.Second

// ConvertRequest is the wire body sent to the external renderer.
type ConvertRequest struct {
	InputPath string   `json:"inputPath"`
	OutputDir string   `json:"outputDir"`
	Sheets    []string `json:"sheets"`
	Mode      string   `json:"mode"`
	TimeoutMs int64    `json:"timeoutMs,omitempty"`
}

// ConvertResult is the renderer's success response. Files are in the
// order the renderer produced them; in perSheet mode they correspond
// 1:1, positionally, to the requested sheet names.
type ConvertResult struct {
	Files []string        `json:"files"`
	Logs  json.RawMessage `json:"logs,omitempty"`
}

// ConversionClient calls the external rendering service that turns a
// filled workbook into PDF pages. It applies its own deadline regardless
// of the timeout echoed to the service, and never retries: re-submitting
// to the renderer can duplicate its side effects, so retry policy is an
// explicit caller decision (and today there is none).
type ConversionClient struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	log        *logrus.Logger
}

func NewConversionClient(baseURL string, timeout time.Duration, log *logrus.Logger) *ConversionClient {
	if timeout <= 0 {
		timeout = DefaultConvertTimeout
	}
	return &ConversionClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		timeout:    timeout,
		log:        log,
	}
}

// Convert renders the workbook and returns the produced file paths. A
// deadline expiry is reported as a ConversionError with Timeout set,
// distinct from a service-reported failure, which carries the parsed
// error field (or raw status text) and the captured response payload.
func (c *ConversionClient) Convert(ctx context.Context, workbookPath, outputDir string, sheets []string, mode packs.PDFMode) (*ConvertResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(ConvertRequest{
		InputPath: workbookPath,
		OutputDir: outputDir,
		Sheets:    sheets,
		Mode:      string(mode),
		TimeoutMs: c.timeout.Milliseconds(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode convert request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/convert", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build convert request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &ConversionError{
				Timeout: true,
				Detail:  fmt.Sprintf("renderer did not respond within %s", c.timeout),
			}
		}
		return nil, &ConversionError{Detail: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ConversionError{Detail: fmt.Sprintf("failed to read renderer response: %v", err)}
	}

	if resp.StatusCode != http.StatusOK {
		detail := strings.TrimSpace(resp.Status)
		var svcErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &svcErr) == nil && svcErr.Error != "" {
			detail = svcErr.Error
		}
		return nil, &ConversionError{
			StatusCode: resp.StatusCode,
			Detail:     detail,
			Logs:       raw,
		}
	}

	var result ConvertResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, &ConversionError{Detail: fmt.Sprintf("malformed renderer response: %v", err), Logs: raw}
	}
	if len(result.Files) == 0 {
		return nil, &ConversionError{Detail: "renderer returned no files", Logs: raw}
	}

	c.log.WithFields(logrus.Fields{
		"module": "converter",
		"input":  workbookPath,
		"files":  len(result.Files),
	}).Debug("conversion completed")

	return &result, nil
}
