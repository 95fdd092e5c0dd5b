package fetch

import (
	"context"
	"fmt"
	"time"

	"elexmd/internal/config"
	"elexmd/internal/storage"
)

type Service struct {
	db     *storage.DB
	client *Client
	cfg    config.Config
}

func NewService(db *storage.DB, cfg config.Config) *Service {
	return &Service{db: db, client: NewClient(cfg), cfg: cfg}
}

type FetchResult struct {
	Discovered int
	Downloaded int
}

// FetchAndStore discovers result files on the configured index page
// and downloads them into the raw directory.
func (s *Service) FetchAndStore(ctx context.Context) (FetchResult, error) {
	files, err := s.client.DiscoverResultFiles(ctx, s.cfg.FetchBaseURL)
	if err != nil {
		return FetchResult{}, err
	}

	result := FetchResult{Discovered: len(files)}
	for _, file := range files {
		dest, err := s.client.Download(ctx, file, s.cfg.RawDir)
		if err != nil {
			return result, fmt.Errorf("download %s: %w", file.URL, err)
		}
		_ = s.db.SetMetadata("fetch.file."+file.Name, dest)
		result.Downloaded++
	}

	_ = s.db.SetMetadata("fetch.last_run", time.Now().UTC().Format(time.RFC3339))
	return result, nil
}
