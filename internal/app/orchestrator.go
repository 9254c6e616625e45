// Package app provides the core application logic.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/sm2x/neos-backups/internal/compress"
	"github.com/sm2x/neos-backups/internal/config"
	"github.com/sm2x/neos-backups/internal/domain"
	"github.com/sm2x/neos-backups/internal/namegen"
	"github.com/sm2x/neos-backups/internal/step"
)

// Orchestrator coordinates the backup pipelines: create, restore, and
// delete. All operations on the same backup name are serialized; operations
// on different names may run concurrently.
type Orchestrator struct {
	cfg           *config.Config
	names         *namegen.Generator
	runner        step.Runner
	index         domain.Index
	store         domain.RemoteStore
	metricsPusher domain.MetricsPusher
	notifier      domain.Notifier
	logger        *slog.Logger
	hostname      string
	locks         *nameLocks
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithMetricsPusher sets the metrics pusher.
func WithMetricsPusher(m domain.MetricsPusher) Option {
	return func(o *Orchestrator) {
		o.metricsPusher = m
	}
}

// WithNotifier sets the notifier.
func WithNotifier(n domain.Notifier) Option {
	return func(o *Orchestrator) {
		o.notifier = n
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = l
	}
}

// WithNameGenerator sets the backup name generator.
func WithNameGenerator(g *namegen.Generator) Option {
	return func(o *Orchestrator) {
		o.names = g
	}
}

// New creates an Orchestrator.
func New(cfg *config.Config, index domain.Index, store domain.RemoteStore, opts ...Option) *Orchestrator {
	hostname, _ := os.Hostname()

	o := &Orchestrator{
		cfg:      cfg,
		names:    namegen.New(),
		index:    index,
		store:    store,
		notifier: &domain.NopNotifier{},
		logger:   slog.Default(),
		hostname: hostname,
		locks:    newNameLocks(),
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// Create runs the configured step pipeline, archives its output, uploads the
// archive, and commits the backup to the index. The index entry is the last
// thing written: a failure anywhere earlier leaves the catalog untouched.
func (o *Orchestrator) Create(ctx context.Context) (*domain.Backup, error) {
	name := o.names.Generate()

	release := o.locks.acquire(name)
	defer release()

	result := domain.NewOperationResult(domain.OperationCreate, name)
	result.Steps = len(o.cfg.Steps)

	o.logger.Info("starting backup", "name", name, "steps", len(o.cfg.Steps))

	backup, err := o.create(ctx, name, result)
	result.Complete(err)
	o.report(ctx, result)

	if err != nil {
		o.logger.Error("backup failed", "name", name, "error", err)
		return nil, err
	}

	o.logger.Info("backup created",
		"name", name,
		"archive_bytes", result.ArchiveBytes,
		"duration", result.Duration,
	)
	return backup, nil
}

func (o *Orchestrator) create(ctx context.Context, name string, result *domain.OperationResult) (*domain.Backup, error) {
	workDir := filepath.Join(o.cfg.TempPath, name)
	if err := os.MkdirAll(workDir, 0o750); err != nil {
		return nil, fmt.Errorf("create working directory: %w", err)
	}

	steps, err := o.runner.Instantiate(workDir, o.cfg.Steps, nil)
	if err != nil {
		_ = os.RemoveAll(workDir)
		return nil, err
	}

	for _, s := range steps {
		o.logger.Debug("running backup step", "name", name, "step", s.Name())
		if err := s.Backup(ctx); err != nil {
			_ = os.RemoveAll(workDir)
			return nil, fmt.Errorf("step %s: %w", s.Name(), err)
		}
	}

	comp, err := compress.New(o.cfg.Compressor)
	if err != nil {
		_ = os.RemoveAll(workDir)
		return nil, err
	}

	archivePath, err := comp.Compress(ctx, workDir, o.cfg.TempPath)
	if err != nil {
		// The captured state survives in the working directory so an
		// operator can inspect or salvage it.
		o.logger.Error("compression failed, leaving working directory for inspection",
			"name", name,
			"working_dir", workDir,
			"error", err,
		)
		return nil, fmt.Errorf("compress: %w", err)
	}

	if info, err := os.Stat(archivePath); err == nil {
		result.ArchiveBytes = info.Size()
	}

	uploadErr := o.upload(ctx, comp.Filename(name), archivePath)
	_ = os.Remove(archivePath)
	if uploadErr != nil {
		_ = os.RemoveAll(workDir)
		return nil, fmt.Errorf("upload: %w", uploadErr)
	}

	_ = os.RemoveAll(workDir)

	backup := domain.Backup{
		Name:      name,
		CreatedAt: time.Now().UTC(),
		Meta: domain.Meta{
			Steps:      o.cfg.Steps,
			Compressor: comp.Name(),
		},
	}
	if err := o.index.Add(backup); err != nil {
		return nil, fmt.Errorf("commit to index: %w", err)
	}

	return &backup, nil
}

func (o *Orchestrator) upload(ctx context.Context, key, archivePath string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer f.Close()
	return o.store.Write(ctx, key, f)
}

// Restore downloads a backup's archive, unpacks it, and replays the step
// pipeline recorded in the backup's metadata. Steps that defer their changes
// are committed in a final pass once every step has restored.
func (o *Orchestrator) Restore(ctx context.Context, name string) error {
	release := o.locks.acquire(name)
	defer release()

	result := domain.NewOperationResult(domain.OperationRestore, name)

	err := o.restore(ctx, name, result)
	result.Complete(err)
	o.report(ctx, result)

	if err != nil {
		o.logger.Error("restore failed", "name", name, "error", err)
		return err
	}

	o.logger.Info("restore completed", "name", name, "duration", result.Duration)
	return nil
}

func (o *Orchestrator) restore(ctx context.Context, name string, result *domain.OperationResult) error {
	// Resolve the backup before touching the filesystem so an unknown name
	// leaves no trace.
	backup, err := o.index.Get(name)
	if err != nil {
		return err
	}
	result.Steps = len(backup.Meta.Steps)

	comp, err := compress.New(backup.Meta.Compressor)
	if err != nil {
		return err
	}

	workDir := filepath.Join(o.cfg.TempPath, name)
	if err := os.MkdirAll(workDir, 0o750); err != nil {
		return fmt.Errorf("create working directory: %w", err)
	}
	archivePath := filepath.Join(o.cfg.TempPath, comp.Filename(name))
	defer func() {
		_ = os.RemoveAll(workDir)
		_ = os.Remove(archivePath)
	}()

	if err := o.download(ctx, comp.Filename(name), archivePath); err != nil {
		return fmt.Errorf("download: %w", err)
	}
	if info, err := os.Stat(archivePath); err == nil {
		result.ArchiveBytes = info.Size()
	}

	if err := comp.Decompress(ctx, archivePath, workDir); err != nil {
		return fmt.Errorf("decompress: %w", err)
	}

	// The pipeline replayed is the one recorded at creation time, not the
	// live configuration.
	steps, err := o.runner.Instantiate(workDir, backup.Meta.Steps, nil)
	if err != nil {
		return err
	}

	for _, s := range steps {
		o.logger.Debug("running restore step", "name", name, "step", s.Name())
		if err := s.Restore(ctx); err != nil {
			return fmt.Errorf("step %s: %w", s.Name(), err)
		}
	}

	for _, s := range steps {
		committer, ok := s.(domain.Committer)
		if !ok {
			continue
		}
		o.logger.Debug("committing restore step", "name", name, "step", s.Name())
		if err := committer.Commit(ctx); err != nil {
			return fmt.Errorf("commit step %s: %w", s.Name(), err)
		}
	}

	return nil
}

func (o *Orchestrator) download(ctx context.Context, key, archivePath string) (retErr error) {
	rc, err := o.store.Read(ctx, key)
	if err != nil {
		return err
	}
	defer rc.Close()

	f, err := os.Create(archivePath)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); retErr == nil {
			retErr = cerr
		}
	}()

	_, err = io.Copy(f, rc)
	return err
}

// Delete removes a backup from the index and then its archive from the
// remote store. The index entry goes first so a half-finished delete leaves
// an orphaned object rather than a catalog entry pointing at nothing.
func (o *Orchestrator) Delete(ctx context.Context, name string) error {
	release := o.locks.acquire(name)
	defer release()

	result := domain.NewOperationResult(domain.OperationDelete, name)

	err := o.delete(ctx, name)
	result.Complete(err)
	o.report(ctx, result)

	if err != nil {
		o.logger.Error("delete failed", "name", name, "error", err)
		return err
	}

	o.logger.Info("backup deleted", "name", name)
	return nil
}

func (o *Orchestrator) delete(ctx context.Context, name string) error {
	backup, err := o.index.Get(name)
	if err != nil {
		return err
	}

	// The archive filename comes from the compressor recorded with the
	// backup, not the currently configured one.
	comp, err := compress.New(backup.Meta.Compressor)
	if err != nil {
		return err
	}
	key := comp.Filename(name)

	if err := o.index.Delete(name); err != nil {
		return err
	}

	exists, err := o.store.Has(ctx, key)
	if err != nil {
		o.logger.Error("archive may be orphaned in remote store", "name", name, "key", key, "error", err)
		return fmt.Errorf("check remote archive: %w", err)
	}
	if !exists {
		o.logger.Warn("archive already absent from remote store", "name", name, "key", key)
		return nil
	}

	if err := o.store.Delete(ctx, key); err != nil {
		o.logger.Error("archive may be orphaned in remote store", "name", name, "key", key, "error", err)
		return fmt.Errorf("delete remote archive: %w", err)
	}

	return nil
}

// List returns catalog entries in insertion order.
func (o *Orchestrator) List(offset, limit int) ([]domain.Backup, error) {
	return o.index.List(offset, limit)
}

// Get returns one catalog entry by name.
func (o *Orchestrator) Get(name string) (domain.Backup, error) {
	return o.index.Get(name)
}

// report pushes metrics and sends notifications for a finished operation.
// Reporting failures are logged, never propagated.
func (o *Orchestrator) report(ctx context.Context, result *domain.OperationResult) {
	if o.metricsPusher != nil {
		metrics := domain.NewMetrics(o.hostname)
		metrics.AddResult(result)
		if n, err := o.index.Count(); err == nil {
			metrics.IndexEntries = n
		}
		if err := o.metricsPusher.Push(ctx, metrics); err != nil {
			o.logger.Error("failed to push metrics", "error", err)
		}
	}

	if err := o.sendNotification(ctx, result); err != nil {
		o.logger.Error("failed to send notification", "error", err)
	}
}

// sendNotification notifies based on the result and the configured level.
func (o *Orchestrator) sendNotification(ctx context.Context, result *domain.OperationResult) error {
	if o.notifier == nil {
		return nil
	}

	notifyLevel := o.cfg.Apprise.Notify

	var notification *domain.Notification
	switch {
	case !result.Success && (notifyLevel == config.NotifyError || notifyLevel == config.NotifyAlways):
		notification = domain.ErrorNotification(
			fmt.Sprintf("Backup %s failed", result.Operation),
			fmt.Sprintf("%s of %s failed on %s: %s", result.Operation, result.BackupName, o.hostname, result.Error),
		)

	case result.Success && notifyLevel == config.NotifyAlways:
		notification = domain.InfoNotification(
			fmt.Sprintf("Backup %s completed", result.Operation),
			fmt.Sprintf("%s of %s completed on %s in %s", result.Operation, result.BackupName, o.hostname, result.Duration.Round(100*time.Millisecond)),
		)
	}

	if notification == nil {
		return nil
	}

	return o.notifier.Notify(ctx, notification)
}
