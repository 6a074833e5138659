package level

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// fileLoader implements Loader for reading ladder files from the local
// file system.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based ladder loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "level-loader").Logger(),
	}
}

// Load reads a JSON ladder file and returns the parsed, validated Ladder.
func (l *fileLoader) Load(ctx context.Context, filePath string) (Ladder, error) {
	l.logger.Info().Str("file", filePath).Msg("loading level ladder file")

	data, err := os.ReadFile(filePath)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to read ladder file")
		return Ladder{}, fmt.Errorf("failed to read ladder file %s: %w", filePath, err)
	}

	var ladder Ladder
	if err := json.Unmarshal(data, &ladder); err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to parse ladder file")
		return Ladder{}, fmt.Errorf("failed to parse ladder file %s: %w", filePath, err)
	}

	if err := ladder.Validate(); err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("invalid ladder definition")
		return Ladder{}, fmt.Errorf("invalid ladder definition in %s: %w", filePath, err)
	}

	l.logger.Info().
		Str("file", filePath).
		Int("tiers", len(ladder.Tiers)).
		Msg("level ladder loaded successfully")

	return ladder, nil
}
