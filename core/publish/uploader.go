package publish

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"wav2hls/core/audio"
	"wav2hls/logger"
	"wav2hls/storage"
)

const DefaultWorkers = 4

var (
	// ErrPlaylistSkipped marks a playlist that was held back because a segment failed.
	ErrPlaylistSkipped = errors.New("playlist not uploaded because a segment failed")
	// ErrPlaylistMissing is recorded when the artifact has no playlist file.
	ErrPlaylistMissing = errors.New("playlist not found in artifact")
)

// UploadError is the outcome of one failed file upload.
type UploadError struct {
	Key string
	Err error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload %s: %v", e.Key, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// PublishResult collects per-file outcomes of one publish.
type PublishResult struct {
	PlaylistURL string
	Uploaded    []string
	Failures    []UploadError
	// Aborted is set when the overwrite guard declined and nothing was uploaded.
	Aborted bool
}

// Err joins every failure, or returns nil when all files were uploaded.
func (r *PublishResult) Err() error {
	if r == nil || len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, 0, len(r.Failures))
	for i := range r.Failures {
		errs = append(errs, &r.Failures[i])
	}
	return errors.Join(errs...)
}

// PublishError reports a publish where at least one file did not reach the store.
type PublishError struct {
	Prefix   string
	Failures []UploadError
}

func (e *PublishError) Error() string {
	keys := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		keys = append(keys, f.Key)
	}
	return fmt.Sprintf("%d file(s) failed to upload under %s: %s", len(e.Failures), e.Prefix, strings.Join(keys, ", "))
}

func (e *PublishError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for i := range e.Failures {
		errs = append(errs, &e.Failures[i])
	}
	return errs
}

// Uploader mirrors an artifact directory to the object store.
type Uploader struct {
	store        storage.ObjectStore
	publicBase   string
	workers      int
	playlistName string
	console      *logger.Console
}

// NewUploader falls back to DefaultWorkers when workers is not positive.
func NewUploader(store storage.ObjectStore, publicBase string, workers int, console *logger.Console) *Uploader {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Uploader{
		store:        store,
		publicBase:   publicBase,
		workers:      workers,
		playlistName: audio.PlaylistName,
		console:      console,
	}
}

type localFile struct {
	path string
	key  string
}

// Publish uploads every regular file under dir to prefix. Segments go first on the
// worker pool; the playlist goes last and only if every segment made it.
// The returned error is non-nil only when dir cannot be walked.
func (u *Uploader) Publish(ctx context.Context, dir, bucket, prefix string) (*PublishResult, error) {
	var segments []localFile
	var playlist *localFile

	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		f := localFile{path: p, key: ObjectKey(prefix, rel)}
		if filepath.ToSlash(rel) == u.playlistName {
			playlist = &f
			return nil
		}
		segments = append(segments, f)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk artifact %s: %w", dir, err)
	}

	result := &PublishResult{PlaylistURL: PlaylistURL(u.publicBase, bucket, prefix, u.playlistName)}

	errs := make([]error, len(segments))
	var g errgroup.Group
	g.SetLimit(u.workers)
	for i, f := range segments {
		g.Go(func() error {
			errs[i] = u.put(ctx, bucket, f)
			return nil
		})
	}
	_ = g.Wait()

	for i, f := range segments {
		if errs[i] != nil {
			result.Failures = append(result.Failures, UploadError{Key: f.key, Err: errs[i]})
			continue
		}
		result.Uploaded = append(result.Uploaded, f.key)
	}
	sort.Strings(result.Uploaded)
	sort.Slice(result.Failures, func(i, j int) bool { return result.Failures[i].Key < result.Failures[j].Key })

	playlistKey := ObjectKey(prefix, u.playlistName)
	switch {
	case playlist == nil:
		result.Failures = append(result.Failures, UploadError{Key: playlistKey, Err: ErrPlaylistMissing})
	case len(result.Failures) > 0:
		logger.Warn("playlist held back", logger.String("key", playlistKey), logger.Int("failed_segments", len(result.Failures)))
		result.Failures = append(result.Failures, UploadError{Key: playlistKey, Err: ErrPlaylistSkipped})
	default:
		if err := u.put(ctx, bucket, *playlist); err != nil {
			result.Failures = append(result.Failures, UploadError{Key: playlistKey, Err: err})
		} else {
			result.Uploaded = append(result.Uploaded, playlistKey)
		}
	}

	logger.Info("publish finished",
		logger.String("bucket", bucket),
		logger.String("prefix", prefix),
		logger.Int("uploaded", len(result.Uploaded)),
		logger.Int("failed", len(result.Failures)))
	return result, nil
}

func (u *Uploader) put(ctx context.Context, bucket string, f localFile) error {
	if err := u.store.PutFile(ctx, bucket, f.key, f.path, ContentType(f.path)); err != nil {
		logger.Error("upload failed", logger.String("key", f.key), logger.ErrorField(err))
		u.console.Errorf("Failed to upload %s: %v", f.key, err)
		return err
	}
	logger.Debug("uploaded", logger.String("key", f.key))
	u.console.Uploadf("%s", f.key)
	return nil
}

// ContentType picks the object content type from the file extension.
func ContentType(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".m3u8":
		return "application/vnd.apple.mpegurl"
	case ".ts":
		return "video/mp2t"
	case ".wav":
		return "audio/wav"
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/octet-stream"
}
