package history

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"

	"github.com/energyops/forecast-guard/internal/artifact"
	"github.com/energyops/forecast-guard/internal/errors"
	"github.com/energyops/forecast-guard/internal/models"
)

// FileStore keeps the history as one JSON-lines artifact. Appending loads
// the existing blob, adds the new record, and rewrites the whole artifact;
// the artifact store's atomic write keeps concurrent readers consistent.
type FileStore struct {
	store  artifact.Store
	key    string
	logger *slog.Logger
}

// NewFileStore creates a history store persisting under the given artifact key.
func NewFileStore(store artifact.Store, key string, logger *slog.Logger) *FileStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{store: store, key: key, logger: logger.With(slog.String("component", "history_store"))}
}

func (s *FileStore) Append(ctx context.Context, record models.RunRecord) error {
	records, err := s.Load(ctx)
	if err != nil {
		return err
	}
	records = append(records, record)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			return errors.New(errors.ClassStorageWrite, "history_store", "marshal record", err)
		}
	}

	if err := s.store.Write(ctx, s.key, buf.Bytes()); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "run recorded",
		slog.String("run_id", record.RunID),
		slog.Int("total_runs", len(records)))
	return nil
}

func (s *FileStore) Load(ctx context.Context) ([]models.RunRecord, error) {
	data, err := s.store.Read(ctx, s.key)
	if err != nil {
		if stderrors.Is(err, artifact.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var records []models.RunRecord
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		var r models.RunRecord
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, errors.New(errors.ClassStorageRead, "history_store",
				fmt.Sprintf("parse line %d", line), err)
		}
		records = append(records, r)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.New(errors.ClassStorageRead, "history_store", "scan history", err)
	}

	sortRecords(records)
	return records, nil
}

func (s *FileStore) Close() error { return nil }
