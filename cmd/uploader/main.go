package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/KhoaHuuDeang/MDHH-sub001/internal/client/api"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/client/coordinator"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/client/transfer"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/config"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/domain"

	"github.com/google/uuid"
)

type options struct {
	title            string
	description      string
	visibility       string
	category         string
	folderID         string
	newFolder        string
	classificationID string
	tagIDs           string
}

func main() {
	var opts options
	flag.StringVar(&opts.title, "title", "", "Resource title (required)")
	flag.StringVar(&opts.description, "description", "", "Resource description")
	flag.StringVar(&opts.visibility, "visibility", "public", "public, private or restricted")
	flag.StringVar(&opts.category, "category", "document", "Category of the resource and its files")
	flag.StringVar(&opts.folderID, "folder", "", "Existing folder id")
	flag.StringVar(&opts.newFolder, "new-folder", "", "Name of a folder to create")
	flag.StringVar(&opts.classificationID, "classification", "", "Classification level id of the new folder")
	flag.StringVar(&opts.tagIDs, "tags", "", "Comma separated tag ids of the new folder")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if opts.title == "" || flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: uploader -title T (-folder ID | -new-folder NAME -classification ID) FILE...")
		os.Exit(2)
	}

	cfg, err := config.LoadClient()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, opts, flag.Args(), logger); err != nil {
		logger.Error("upload failed", "kind", domain.KindOf(err), "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.ClientConfig, opts options, paths []string, logger *slog.Logger) error {
	client := api.NewClient(cfg.APIURL, cfg.Token,
		api.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}),
		api.WithRetry(cfg.APIRetries, cfg.APIBackoff),
		api.WithLogger(logger),
	)
	wizard := coordinator.New(client, transfer.NewUploader(logger), logger, coordinator.WithParallelism(cfg.Parallelism))

	events, unsubscribe := wizard.Subscribe(256)
	go logEvents(events, logger)
	defer unsubscribe()

	ids := make(map[uuid.UUID]string, len(paths))
	for _, path := range paths {
		f, err := fileFromPath(path)
		if err != nil {
			return err
		}
		id, err := wizard.AddFile(f)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		ids[id] = f.Name
	}

	if err := wizard.Start(ctx); err != nil {
		return err
	}
	retryFailed(ctx, wizard, cfg.MaxFileRetries, logger)

	if _, err := wizard.Next(); err != nil {
		return err
	}

	visibility := domain.Visibility(opts.visibility)
	for id, name := range ids {
		meta := coordinator.FileMetadata{
			Title:      strings.TrimSuffix(name, filepath.Ext(name)),
			Category:   opts.category,
			Visibility: visibility,
		}
		if err := wizard.SetFileMetadata(id, meta); err != nil {
			return err
		}
	}
	wizard.SetResource(coordinator.ResourceDraft{
		Title:       opts.title,
		Description: opts.description,
		Visibility:  visibility,
		Category:    opts.category,
	})
	if err := setFolder(wizard, opts); err != nil {
		return err
	}

	if _, err := wizard.Next(); err != nil {
		return err
	}
	result, err := wizard.Submit(ctx)
	if err != nil {
		return err
	}
	logger.Info("resource created", "resource_id", result.Resource.ID, "uploads", len(result.Uploads))

	report, err := client.CompleteResource(ctx, result.Resource.ID)
	if err != nil {
		return err
	}
	logger.Info("resource verified", "status", report.Status, "completed", report.Completed, "pending", report.Pending, "missing", report.Missing)

	for _, left := range wizard.Snapshot() {
		logger.Warn("file was not submitted", "file", left.Name, "state", left.Status.State())
	}
	return nil
}

func fileFromPath(path string) (coordinator.File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return coordinator.File{}, err
	}
	if info.IsDir() {
		return coordinator.File{}, fmt.Errorf("%s is a directory", path)
	}

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType, err = sniff(path)
		if err != nil {
			return coordinator.File{}, err
		}
	}
	// drop parameters such as charset
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		contentType = mediaType
	}

	return coordinator.File{
		Name:     filepath.Base(path),
		MimeType: contentType,
		Size:     info.Size(),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}

func sniff(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	return http.DetectContentType(head[:n]), nil
}

func setFolder(wizard *coordinator.Coordinator, opts options) error {
	if opts.folderID != "" {
		id, err := uuid.Parse(opts.folderID)
		if err != nil {
			return fmt.Errorf("invalid folder id: %w", domain.ErrInvalidFolderDirective)
		}
		wizard.SelectFolder(id)
		return nil
	}

	classificationID, err := uuid.Parse(opts.classificationID)
	if err != nil {
		return fmt.Errorf("invalid classification id: %w", domain.ErrMissingField)
	}
	folder := domain.NewFolderData{Name: opts.newFolder, ClassificationID: classificationID}
	for _, raw := range strings.Split(opts.tagIDs, ",") {
		if raw = strings.TrimSpace(raw); raw == "" {
			continue
		}
		tagID, err := uuid.Parse(raw)
		if err != nil {
			return fmt.Errorf("invalid tag id %q: %w", raw, domain.ErrTagNotFound)
		}
		folder.TagIDs = append(folder.TagIDs, tagID)
	}
	wizard.NewFolder(folder)
	return nil
}

// retryFailed retries every failed file whose failure is worth another attempt
func retryFailed(ctx context.Context, wizard *coordinator.Coordinator, maxRetries int, logger *slog.Logger) {
	for round := 0; round < maxRetries; round++ {
		retried := false
		for _, f := range wizard.Snapshot() {
			failed, ok := f.Status.(coordinator.Failed)
			if !ok || (failed.Kind != domain.KindNetworkTransient && failed.Kind != domain.KindAuthExpired) {
				continue
			}
			retried = true
			if err := wizard.Retry(ctx, f.ID); err != nil {
				logger.Warn("retry refused", "file", f.Name, "error", err)
			}
		}
		if !retried || ctx.Err() != nil {
			return
		}
	}
}

func logEvents(events <-chan coordinator.Event, logger *slog.Logger) {
	for ev := range events {
		switch s := ev.Status.(type) {
		case coordinator.Uploading:
			logger.Debug("uploading", "file", ev.FileID, "progress", s.Progress)
		case coordinator.Completed:
			logger.Info("file uploaded", "file", ev.FileID)
		case coordinator.Failed:
			logger.Warn("file failed", "file", ev.FileID, "kind", s.Kind, "message", s.Message)
		}
	}
}
