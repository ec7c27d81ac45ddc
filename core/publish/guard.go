package publish

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"wav2hls/logger"
	"wav2hls/storage"
)

// ErrNoAnswer is returned when the confirmation source ends without a yes or no.
var ErrNoAnswer = errors.New("no confirmation answer given")

// Confirmer decides whether existing objects under a prefix may be deleted.
// Deleting is irreversible, so implementations must never guess.
type Confirmer interface {
	Confirm(ctx context.Context, prefix string, existing int) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prefix string, existing int) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, prefix string, existing int) (bool, error) {
	return f(ctx, prefix, existing)
}

var (
	// AlwaysAllow overwrites without asking.
	AlwaysAllow Confirmer = ConfirmFunc(func(context.Context, string, int) (bool, error) { return true, nil })
	// AlwaysDeny keeps existing objects and skips the publish.
	AlwaysDeny Confirmer = ConfirmFunc(func(context.Context, string, int) (bool, error) { return false, nil })
)

// PromptConfirmer asks on out and reads y/n answers from in, re-prompting on anything else.
type PromptConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

func NewPromptConfirmer(in io.Reader, out io.Writer) *PromptConfirmer {
	return &PromptConfirmer{in: bufio.NewReader(in), out: out}
}

func (p *PromptConfirmer) Confirm(ctx context.Context, prefix string, existing int) (bool, error) {
	for {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		fmt.Fprintf(p.out, "%d files already exist under '%s'. Do you want to delete them and continue? (y/n): ", existing, prefix)

		line, err := p.in.ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		if err != nil {
			fmt.Fprintln(p.out)
			if errors.Is(err, io.EOF) {
				return false, ErrNoAnswer
			}
			return false, fmt.Errorf("read confirmation: %w", err)
		}
		fmt.Fprintln(p.out, "Invalid input. Please enter 'y' or 'n'.")
	}
}

// Guard protects a remote prefix from being silently mixed with a previous upload.
type Guard struct {
	store     storage.ObjectStore
	confirmer Confirmer
	console   *logger.Console
}

// NewGuard uses AlwaysDeny when confirmer is nil.
func NewGuard(store storage.ObjectStore, confirmer Confirmer, console *logger.Console) *Guard {
	if confirmer == nil {
		confirmer = AlwaysDeny
	}
	return &Guard{store: store, confirmer: confirmer, console: console}
}

// Existing lists the objects under prefix without side effects.
// The trailing slash keeps "audio/song" from matching "audio/song2".
func (g *Guard) Existing(ctx context.Context, bucket, prefix string) ([]storage.ObjectInfo, error) {
	if err := ValidatePrefix(prefix); err != nil {
		return nil, err
	}
	objects, err := g.store.ListObjects(ctx, bucket, strings.TrimRight(prefix, "/")+"/")
	if err != nil {
		return nil, fmt.Errorf("list existing objects under %s: %w", prefix, err)
	}
	return objects, nil
}

// Check returns true when prefix is empty or its objects were deleted after confirmation,
// and false when the caller declined. A declined check is not an error.
func (g *Guard) Check(ctx context.Context, bucket, prefix string) (bool, error) {
	objects, err := g.Existing(ctx, bucket, prefix)
	if err != nil {
		return false, err
	}
	if len(objects) == 0 {
		logger.Debug("prefix is empty", logger.String("bucket", bucket), logger.String("prefix", prefix))
		return true, nil
	}

	g.console.Infof("Found %d files under '%s'.", len(objects), prefix)
	ok, err := g.confirmer.Confirm(ctx, prefix, len(objects))
	if err != nil {
		return false, fmt.Errorf("confirm deletion under %s: %w", prefix, err)
	}
	if !ok {
		logger.Info("overwrite declined", logger.String("prefix", prefix), logger.Int("existing", len(objects)))
		return false, nil
	}

	keys := make([]string, 0, len(objects))
	for _, obj := range objects {
		keys = append(keys, obj.Key)
	}
	if err := g.store.RemoveObjects(ctx, bucket, keys); err != nil {
		return false, fmt.Errorf("delete existing objects under %s: %w", prefix, err)
	}
	logger.Info("existing objects deleted", logger.String("prefix", prefix), logger.Int("count", len(keys)))
	g.console.Infof("All %d files deleted.", len(keys))
	return true, nil
}
