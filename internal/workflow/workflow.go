// Package workflow drives the two-phase remote pipeline: it owns the ledger
// transitions wrapped around each remote call and guards against concurrent
// submissions of the same operation.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/dkarademir/docstage/internal/apiclient"
	"github.com/dkarademir/docstage/internal/ledger"
	"github.com/dkarademir/docstage/internal/logging"
	"github.com/dkarademir/docstage/internal/models"
	"github.com/dkarademir/docstage/internal/staging"
)

// ErrBusy is returned when an operation of the same kind is still running.
var ErrBusy = errors.New("operation already in progress")

// RemoteClient is the slice of the API client the coordinator needs.
type RemoteClient interface {
	UploadAll(ctx context.Context, paths []string) apiclient.Outcome
	ProcessUploads(ctx context.Context, recursive bool) apiclient.Outcome
}

// Coordinator sequences ledger transitions around the remote calls. The
// remote service itself is fire-and-forget: after a successful call the whole
// in-flight cohort is marked at once, never per file.
type Coordinator struct {
	store  *staging.Store
	repo   ledger.Repository
	client RemoteClient
	logger logging.Logger

	uploadBusy  atomic.Bool
	processBusy atomic.Bool
}

func NewCoordinator(store *staging.Store, repo ledger.Repository, client RemoteClient, logger logging.Logger) *Coordinator {
	return &Coordinator{store: store, repo: repo, client: client, logger: logger}
}

// UploadStaged sends every supported staged file in one batch. Only rows in
// selected enter the batch; rows parked in upload_failed stay put until a
// fresh selection of the same file re-enters the pipeline.
func (c *Coordinator) UploadStaged(ctx context.Context, user string) (apiclient.Outcome, error) {
	if !c.uploadBusy.CompareAndSwap(false, true) {
		return apiclient.Outcome{}, ErrBusy
	}
	defer c.uploadBusy.Store(false)

	files, err := c.store.ListSupported()
	if err != nil {
		return apiclient.Outcome{}, fmt.Errorf("list staged files: %w", err)
	}
	if len(files) == 0 {
		return apiclient.Outcome{Message: "no files to upload"}, nil
	}

	var totalSize int64
	for _, f := range files {
		if fi, err := os.Stat(f); err == nil {
			totalSize += fi.Size()
		}
	}

	opID, err := c.repo.StartOperation(ctx, models.OperationUpload, user, int64(len(files)), totalSize)
	if err != nil {
		return apiclient.Outcome{}, fmt.Errorf("start operation: %w", err)
	}

	moved, err := c.repo.MarkUploading(ctx)
	if err != nil {
		return apiclient.Outcome{}, fmt.Errorf("mark uploading: %w", err)
	}
	c.logger.Info(ctx, "upload started", "files", len(files), "rows", moved)

	out := c.client.UploadAll(ctx, files)
	if out.Success {
		if _, err := c.repo.MarkUploaded(ctx); err != nil {
			return out, fmt.Errorf("mark uploaded: %w", err)
		}
		if err := c.repo.FinishOperation(ctx, opID, moved, 0, ""); err != nil {
			return out, fmt.Errorf("finish operation: %w", err)
		}
		c.logger.Info(ctx, "upload finished", "rows", moved)
		return out, nil
	}

	if _, err := c.repo.MarkUploadFailed(ctx, out.Message); err != nil {
		return out, fmt.Errorf("mark upload failed: %w", err)
	}
	if err := c.repo.FinishOperation(ctx, opID, 0, moved, out.Message); err != nil {
		return out, fmt.Errorf("finish operation: %w", err)
	}
	c.logger.Warn(ctx, "upload failed", "rows", moved, "error", out.Message)
	return out, nil
}

// ProcessStaged triggers server-side processing for everything uploaded so
// far and moves the uploaded cohort through the processing states.
func (c *Coordinator) ProcessStaged(ctx context.Context, user string, recursive bool) (apiclient.Outcome, error) {
	if !c.processBusy.CompareAndSwap(false, true) {
		return apiclient.Outcome{}, ErrBusy
	}
	defer c.processBusy.Store(false)

	count, err := c.repo.CountByUploadStatus(ctx, models.UploadUploaded)
	if err != nil {
		return apiclient.Outcome{}, fmt.Errorf("count uploaded: %w", err)
	}
	if count == 0 {
		return apiclient.Outcome{Message: "no uploaded files to process"}, nil
	}

	opID, err := c.repo.StartOperation(ctx, models.OperationProcess, user, count, 0)
	if err != nil {
		return apiclient.Outcome{}, fmt.Errorf("start operation: %w", err)
	}

	moved, err := c.repo.MarkProcessing(ctx)
	if err != nil {
		return apiclient.Outcome{}, fmt.Errorf("mark processing: %w", err)
	}
	c.logger.Info(ctx, "processing started", "rows", moved)

	out := c.client.ProcessUploads(ctx, recursive)
	if out.Success {
		if _, err := c.repo.MarkProcessingCompleted(ctx); err != nil {
			return out, fmt.Errorf("mark completed: %w", err)
		}
		if err := c.repo.FinishOperation(ctx, opID, moved, 0, ""); err != nil {
			return out, fmt.Errorf("finish operation: %w", err)
		}
		c.logger.Info(ctx, "processing finished", "rows", moved)
		return out, nil
	}

	if _, err := c.repo.MarkProcessingFailed(ctx, out.Message); err != nil {
		return out, fmt.Errorf("mark failed: %w", err)
	}
	if err := c.repo.FinishOperation(ctx, opID, 0, moved, out.Message); err != nil {
		return out, fmt.Errorf("finish operation: %w", err)
	}
	c.logger.Warn(ctx, "processing failed", "rows", moved, "error", out.Message)
	return out, nil
}
