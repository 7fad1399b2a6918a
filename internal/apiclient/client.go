// Package apiclient talks to the remote document service: a multipart upload
// endpoint, a processing trigger, and a health probe. Calls are
// fire-and-forget; all per-file status bookkeeping stays with the caller.
package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dkarademir/docstage/internal/config"
	"github.com/dkarademir/docstage/internal/logging"
)

// Outcome is the result of one remote call attempt. Message carries the
// classified error text when Success is false.
type Outcome struct {
	Success   bool
	Message   string
	FilesSent int
	BytesSent int64
}

// Client is safe for concurrent use.
type Client struct {
	baseURL        string
	http           *http.Client
	supported      map[string]struct{}
	uploadTimeout  time.Duration
	processTimeout time.Duration
	healthTimeout  time.Duration
	logger         logging.Logger
}

func New(cfg *config.Config, logger logging.Logger) *Client {
	supported := make(map[string]struct{}, len(cfg.SupportedExtensions))
	for _, e := range cfg.SupportedExtensions {
		supported[strings.ToLower(e)] = struct{}{}
	}
	return &Client{
		baseURL:        strings.TrimRight(cfg.APIBaseURL, "/"),
		http:           &http.Client{},
		supported:      supported,
		uploadTimeout:  cfg.UploadTimeout,
		processTimeout: cfg.ProcessTimeout,
		healthTimeout:  cfg.HealthTimeout,
		logger:         logger,
	}
}

// serviceResponse is the JSON envelope both endpoints answer with.
type serviceResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// UploadAll sends every supported file in one multipart request. An empty or
// fully-unsupported batch fails locally without any network call.
func (c *Client) UploadAll(ctx context.Context, paths []string) Outcome {
	if len(paths) == 0 {
		return Outcome{Message: "no files to upload"}
	}

	var files []string
	for _, p := range paths {
		if _, ok := c.supported[strings.ToLower(filepath.Ext(p))]; ok {
			files = append(files, p)
		}
	}
	if len(files) == 0 {
		return Outcome{Message: "no supported files to upload"}
	}

	ctx, cancel := context.WithTimeout(ctx, c.uploadTimeout)
	defer cancel()

	opID := uuid.NewString()
	c.logger.Info(ctx, "uploading batch", "op_id", opID, "files", len(files))

	body, contentType := multipartBody(files)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/embeddings/upload", body)
	if err != nil {
		return Outcome{Message: err.Error()}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Request-ID", opID)

	out := c.do(ctx, req, opID)
	if out.Success {
		out.FilesSent = len(files)
		for _, f := range files {
			if fi, err := os.Stat(f); err == nil {
				out.BytesSent += fi.Size()
			}
		}
	}
	return out
}

// ProcessUploads triggers server-side processing of everything uploaded so
// far. recursive asks the service to descend into its upload subfolders.
func (c *Client) ProcessUploads(ctx context.Context, recursive bool) Outcome {
	ctx, cancel := context.WithTimeout(ctx, c.processTimeout)
	defer cancel()

	opID := uuid.NewString()
	c.logger.Info(ctx, "triggering processing", "op_id", opID, "recursive", recursive)

	form := url.Values{"recursive": {strconv.FormatBool(recursive)}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/embeddings/process-uploads", strings.NewReader(form.Encode()))
	if err != nil {
		return Outcome{Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Request-ID", opID)

	return c.do(ctx, req, opID)
}

// do executes the request and folds transport errors, HTTP errors and the
// JSON envelope into a single Outcome.
func (c *Client) do(ctx context.Context, req *http.Request, opID string) Outcome {
	resp, err := c.http.Do(req)
	if err != nil {
		msg := classify(err)
		c.logger.Warn(ctx, "remote call failed", "op_id", opID, "error", msg)
		return Outcome{Message: msg}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Outcome{Message: classify(err)}
	}

	if resp.StatusCode != http.StatusOK {
		msg := fmt.Sprintf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
		c.logger.Warn(ctx, "remote call rejected", "op_id", opID, "status", resp.StatusCode)
		return Outcome{Message: msg}
	}

	var sr serviceResponse
	if err := json.Unmarshal(raw, &sr); err != nil {
		return Outcome{Message: fmt.Sprintf("bad response: %v", err)}
	}
	if !sr.Success {
		msg := sr.Error
		if msg == "" {
			msg = sr.Message
		}
		if msg == "" {
			msg = "server reported failure"
		}
		return Outcome{Message: msg}
	}

	c.logger.Info(ctx, "remote call succeeded", "op_id", opID)
	return Outcome{Success: true, Message: sr.Message}
}

// multipartBody streams the files as repeated "files" parts. Read errors
// surface through the pipe and abort the request.
func multipartBody(files []string) (io.Reader, string) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		for _, path := range files {
			if err := writePart(mw, path); err != nil {
				pw.CloseWithError(err)
				return
			}
		}
		pw.CloseWithError(mw.Close())
	}()

	return pr, mw.FormDataContentType()
}

func writePart(mw *multipart.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	part, err := mw.CreatePart(partHeader(filepath.Base(path)))
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("send %s: %w", path, err)
	}
	return nil
}
