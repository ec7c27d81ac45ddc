package publish

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// RootPrefix is the key namespace every published asset lives under.
const RootPrefix = "audio"

// ErrUnsafePrefix rejects a prefix that does not name a single track below RootPrefix.
var ErrUnsafePrefix = errors.New("prefix does not name a track")

// PrefixFor derives the remote prefix from the input file name:
// "./input/song.wav" becomes "audio/song". A leading-dot name such as ".wav"
// keeps its extension and becomes "audio/.wav".
func PrefixFor(inputPath string) string {
	base := filepath.Base(inputPath)
	if stem := strings.TrimSuffix(base, filepath.Ext(base)); stem != "" {
		base = stem
	}
	return RootPrefix + "/" + base
}

// ValidatePrefix accepts only prefixes of the form "audio/<name>" with a usable name.
func ValidatePrefix(prefix string) error {
	name, ok := strings.CutPrefix(strings.Trim(prefix, "/"), RootPrefix+"/")
	if !ok || name == "" || name == "." || name == ".." || strings.Contains(name, "/") {
		return fmt.Errorf("%w: %q", ErrUnsafePrefix, prefix)
	}
	return nil
}

// ObjectKey joins prefix and a path relative to the artifact root with forward slashes.
// Distinct clean relative paths always yield distinct keys.
func ObjectKey(prefix, relPath string) string {
	rel := path.Clean(filepath.ToSlash(relPath))
	return strings.TrimRight(prefix, "/") + "/" + strings.TrimLeft(rel, "/")
}

// PlaylistURL is the public playback URL: <base>/<bucket>/<prefix>/<playlist>.
func PlaylistURL(base, bucket, prefix, playlist string) string {
	return strings.TrimRight(base, "/") + "/" + bucket + "/" + strings.Trim(prefix, "/") + "/" + playlist
}
