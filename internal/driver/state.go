package driver

import (
	"context"

	"annogen/internal/config"
	"annogen/internal/interp"
	"annogen/internal/store"
)

// LoadState rebuilds the state an output file describes without taking the
// lock. Outputs are replaced by rename, so a reader never sees a partial
// file. A missing output yields an empty state.
func LoadState(ctx context.Context, path string, cfg config.Config) (*store.State, error) {
	prev, err := readPrevious(path)
	if err != nil {
		return nil, err
	}
	in := interp.New(store.NewState(), interp.Options{
		MaxName:    cfg.Limits.MaxName,
		MaxReplays: cfg.Limits.MaxReplays,
	})
	if !prev.exists {
		return in.State(), nil
	}
	if err := Replay(ctx, in, path, prev.content, cfg.Limits.MaxLine); err != nil {
		return nil, err
	}
	return in.State(), nil
}
