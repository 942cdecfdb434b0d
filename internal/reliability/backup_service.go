// Package reliability backs up the draft database and price model to S3-compatible storage
// and runs periodic database maintenance.
package reliability

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/aristath/draftboard/internal/database"
	"github.com/aristath/draftboard/internal/metrics"
	"github.com/aristath/draftboard/internal/modules/pricing"
	"github.com/rs/zerolog"
)

const (
	backupNamePrefix   = "draftboard-backup-"
	backupNameSuffix   = ".tar.gz"
	backupTimeLayout   = "2006-01-02-150405"
	metadataFile       = "backup-metadata.json"
	databaseFile       = "draft.db"
	minBackupsToKeep   = 3
	backupFormatVersion = "1"
)

// BackupMetadata contains metadata about a backup
type BackupMetadata struct {
	Timestamp time.Time      `json:"timestamp"`
	Version   string         `json:"version"`
	Files     []FileMetadata `json:"files"`
}

// FileMetadata describes one file in the archive
type FileMetadata struct {
	Filename  string `json:"filename"`
	SizeBytes int64  `json:"size_bytes"`
	Checksum  string `json:"checksum"`
}

// BackupInfo represents a backup stored in the bucket
type BackupInfo struct {
	Key       string    `json:"key"`
	Timestamp time.Time `json:"timestamp"`
	SizeBytes int64     `json:"size_bytes"`
	AgeHours  int64     `json:"age_hours"`
}

// BackupService snapshots the database and model artifacts into a tar.gz and uploads it
type BackupService struct {
	store    ObjectStore
	db       *database.DB
	modelDir string
	dataDir  string
	prefix   string
	metrics  *metrics.Manager
	log      zerolog.Logger
	now      func() time.Time
}

// NewBackupService creates a new backup service. metrics may be nil.
func NewBackupService(
	store ObjectStore,
	db *database.DB,
	modelDir string,
	dataDir string,
	prefix string,
	metrics *metrics.Manager,
	log zerolog.Logger,
) *BackupService {
	return &BackupService{
		store:    store,
		db:       db,
		modelDir: modelDir,
		dataDir:  dataDir,
		prefix:   strings.Trim(prefix, "/"),
		metrics:  metrics,
		log:      log.With().Str("service", "backup").Logger(),
		now:      time.Now,
	}
}

func (s *BackupService) key(name string) string {
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}

// CreateAndUploadBackup creates a backup archive and uploads it.
// Returns the object key of the uploaded archive.
func (s *BackupService) CreateAndUploadBackup(ctx context.Context) (key string, err error) {
	defer func() { s.metrics.RecordBackup(err) }()

	s.log.Info().Msg("Starting backup")
	startTime := time.Now()

	stagingDir, err := os.MkdirTemp(s.dataDir, "backup-staging-")
	if err != nil {
		return "", fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer os.RemoveAll(stagingDir)

	timestamp := s.now().UTC()
	metadata := BackupMetadata{Timestamp: timestamp, Version: backupFormatVersion}

	if err := s.db.Snapshot(ctx, filepath.Join(stagingDir, databaseFile)); err != nil {
		return "", fmt.Errorf("failed to snapshot database: %w", err)
	}
	files := []string{databaseFile}

	artifact := filepath.Join(s.modelDir, pricing.ArtifactFile)
	if err := copyFile(artifact, filepath.Join(stagingDir, pricing.ArtifactFile)); err == nil {
		files = append(files, pricing.ArtifactFile)
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("failed to stage model artifacts: %w", err)
	}

	for _, name := range files {
		fm, err := describeFile(filepath.Join(stagingDir, name))
		if err != nil {
			return "", err
		}
		metadata.Files = append(metadata.Files, fm)
	}

	if err := writeMetadata(filepath.Join(stagingDir, metadataFile), metadata); err != nil {
		return "", fmt.Errorf("failed to write metadata: %w", err)
	}
	files = append(files, metadataFile)

	archiveName := backupNamePrefix + timestamp.Format(backupTimeLayout) + backupNameSuffix
	archivePath := filepath.Join(stagingDir, archiveName)
	if err := createArchive(archivePath, stagingDir, files); err != nil {
		return "", fmt.Errorf("failed to create archive: %w", err)
	}

	archive, err := os.Open(archivePath)
	if err != nil {
		return "", fmt.Errorf("failed to open archive: %w", err)
	}
	defer archive.Close()

	key = s.key(archiveName)
	if err := s.store.Upload(ctx, key, archive); err != nil {
		return "", err
	}

	s.log.Info().
		Dur("duration_ms", time.Since(startTime)).
		Str("key", key).
		Int("files", len(files)).
		Msg("Backup completed successfully")

	return key, nil
}

// ListBackups lists stored backups newest first
func (s *BackupService) ListBackups(ctx context.Context) ([]BackupInfo, error) {
	objects, err := s.store.List(ctx, s.key(backupNamePrefix))
	if err != nil {
		return nil, fmt.Errorf("failed to list backups: %w", err)
	}

	now := s.now()
	backups := make([]BackupInfo, 0, len(objects))
	for _, obj := range objects {
		name := path.Base(obj.Key)
		if !strings.HasPrefix(name, backupNamePrefix) || !strings.HasSuffix(name, backupNameSuffix) {
			continue
		}

		raw := strings.TrimSuffix(strings.TrimPrefix(name, backupNamePrefix), backupNameSuffix)
		timestamp, err := time.Parse(backupTimeLayout, raw)
		if err != nil {
			s.log.Warn().Str("key", obj.Key).Msg("Failed to parse timestamp from backup name")
			continue
		}

		backups = append(backups, BackupInfo{
			Key:       obj.Key,
			Timestamp: timestamp,
			SizeBytes: obj.Size,
			AgeHours:  int64(now.Sub(timestamp).Hours()),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})
	return backups, nil
}

// RotateOldBackups deletes backups older than retentionDays.
// The newest three are always kept; retentionDays <= 0 keeps everything.
func (s *BackupService) RotateOldBackups(ctx context.Context, retentionDays int) (int, error) {
	backups, err := s.ListBackups(ctx)
	if err != nil {
		return 0, err
	}
	if len(backups) <= minBackupsToKeep || retentionDays <= 0 {
		return 0, nil
	}

	cutoff := s.now().AddDate(0, 0, -retentionDays)
	deleted := 0
	for _, backup := range backups[minBackupsToKeep:] {
		if !backup.Timestamp.Before(cutoff) {
			continue
		}
		if err := s.store.Delete(ctx, backup.Key); err != nil {
			s.log.Error().Err(err).Str("key", backup.Key).Msg("Failed to delete old backup")
			continue
		}
		deleted++
	}

	s.log.Info().
		Int("deleted", deleted).
		Int("remaining", len(backups)-deleted).
		Msg("Backup rotation completed")
	return deleted, nil
}

func describeFile(filePath string) (FileMetadata, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return FileMetadata{}, err
	}
	defer file.Close()

	hash := sha256.New()
	n, err := io.Copy(hash, file)
	if err != nil {
		return FileMetadata{}, fmt.Errorf("failed to checksum %s: %w", filePath, err)
	}

	return FileMetadata{
		Filename:  filepath.Base(filePath),
		SizeBytes: n,
		Checksum:  fmt.Sprintf("sha256:%x", hash.Sum(nil)),
	}, nil
}

func writeMetadata(path string, metadata BackupMetadata) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(metadata)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// createArchive creates a tar.gz archive of the named files in sourceDir
func createArchive(archivePath, sourceDir string, names []string) error {
	archiveFile, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("failed to create archive file: %w", err)
	}
	defer archiveFile.Close()

	gzipWriter := gzip.NewWriter(archiveFile)
	tarWriter := tar.NewWriter(gzipWriter)

	for _, name := range names {
		if err := addFileToArchive(tarWriter, filepath.Join(sourceDir, name), name); err != nil {
			return fmt.Errorf("failed to add %s to archive: %w", name, err)
		}
	}

	if err := tarWriter.Close(); err != nil {
		return err
	}
	return gzipWriter.Close()
}

func addFileToArchive(tarWriter *tar.Writer, filePath, nameInArchive string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}

	header := &tar.Header{
		Name:    nameInArchive,
		Size:    info.Size(),
		Mode:    int64(info.Mode()),
		ModTime: info.ModTime(),
	}
	if err := tarWriter.WriteHeader(header); err != nil {
		return err
	}

	_, err = io.Copy(tarWriter, file)
	return err
}
