package services

import (
	"archive/zip"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/student-records/internal/models"
)

// BackupServiceProvider defines the interface for backup services.
type BackupServiceProvider interface {
	CreateBackup(ctx context.Context, name string) (models.Backup, error)
	ListBackups(ctx context.Context) ([]models.Backup, error)
}

// SnapshotSource is a snapshot file that can be copied consistently.
type SnapshotSource interface {
	Path() string
	CopyTo(w io.Writer) (int64, error)
}

// BackupService archives the data snapshots.
type BackupService struct {
	db         *sql.DB
	sources    []SnapshotSource
	events     EventRecorder
	backupPath string
	now        func() time.Time
}

// NewBackupService creates a new BackupService. events may be nil.
func NewBackupService(db *sql.DB, events EventRecorder, backupPath string, sources ...SnapshotSource) *BackupService {
	return &BackupService{
		db:         db,
		sources:    sources,
		events:     events,
		backupPath: backupPath,
		now:        time.Now,
	}
}

// CreateBackup zips every snapshot into a new archive under the backup path.
func (s *BackupService) CreateBackup(ctx context.Context, name string) (models.Backup, error) {
	backup, err := s.createBackup(ctx, name)
	if err != nil {
		recordEvent(ctx, s.events, EventBackupCreateFail, "error", fmt.Sprintf("Backup '%s' failed: %v", name, err), "", nil)
		return models.Backup{}, err
	}
	recordEvent(ctx, s.events, EventBackupCreate, "info", fmt.Sprintf("Backup '%s' created.", name), "", nil)
	return backup, nil
}

func (s *BackupService) createBackup(ctx context.Context, name string) (models.Backup, error) {
	if name == "" {
		return models.Backup{}, fmt.Errorf("%w: backup name is required", ErrInvalidInput)
	}
	if err := os.MkdirAll(s.backupPath, 0o755); err != nil {
		return models.Backup{}, fmt.Errorf("could not create backup directory: %w", err)
	}

	backup := models.Backup{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: s.now().UTC(),
	}
	backupFileName := fmt.Sprintf("snapshot_%s_%s.zip", backup.CreatedAt.Format("20060102150405"), backup.ID[:8])
	backup.Path = filepath.Join(s.backupPath, backupFileName)

	size, err := s.writeArchive(backup.Path)
	if err != nil {
		os.Remove(backup.Path)
		return models.Backup{}, err
	}
	backup.Size = size

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO backups (id, name, path, size, created_at) VALUES (?, ?, ?, ?, ?)",
		backup.ID, backup.Name, backup.Path, backup.Size, backup.CreatedAt)
	if err != nil {
		os.Remove(backup.Path)
		return models.Backup{}, fmt.Errorf("failed to record backup: %w", err)
	}
	return backup, nil
}

func (s *BackupService) writeArchive(path string) (int64, error) {
	backupFile, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("could not create backup file: %w", err)
	}
	defer backupFile.Close()

	zipWriter := zip.NewWriter(backupFile)
	for _, src := range s.sources {
		writer, err := zipWriter.Create(filepath.Base(src.Path()))
		if err != nil {
			return 0, err
		}
		if _, err := src.CopyTo(writer); err != nil {
			return 0, fmt.Errorf("could not archive %s: %w", src.Path(), err)
		}
	}
	if err := zipWriter.Close(); err != nil {
		return 0, err
	}

	info, err := backupFile.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// ListBackups returns all recorded backups, newest first.
func (s *BackupService) ListBackups(ctx context.Context) ([]models.Backup, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, path, size, created_at FROM backups ORDER BY created_at DESC, rowid DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	backups := []models.Backup{}
	for rows.Next() {
		var b models.Backup
		if err := rows.Scan(&b.ID, &b.Name, &b.Path, &b.Size, &b.CreatedAt); err != nil {
			return nil, err
		}
		backups = append(backups, b)
	}
	return backups, rows.Err()
}
