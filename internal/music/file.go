package music

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// GenerateFile renders a track into path. The audio is written to a temporary
// file in the same directory and renamed into place on success.
func (r *GeneratorRouter) GenerateFile(ctx context.Context, engine string, req Request, path string) (*Result, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".track-*.wav")
	if err != nil {
		return nil, fmt.Errorf("create temp track: %w", err)
	}
	defer os.Remove(tmp.Name())

	res, err := r.Generate(ctx, engine, req, tmp)
	if cerr := tmp.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close temp track: %w", cerr)
	}
	if err != nil {
		return nil, err
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return nil, fmt.Errorf("save track: %w", err)
	}
	return res, nil
}
