package audio

import (
	"bufio"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

// ParsePlaylist returns the media URIs of an m3u8 playlist in order.
// Tags, comments and blank lines are skipped.
func ParsePlaylist(r io.Reader) ([]string, error) {
	var uris []string
	scanner := bufio.NewScanner(r)
	first := true
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if first {
			line = strings.TrimPrefix(line, "\ufeff")
			if line != "#EXTM3U" {
				return nil, fmt.Errorf("playlist does not start with #EXTM3U")
			}
			first = false
			continue
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		uris = append(uris, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read playlist: %w", err)
	}
	if first {
		return nil, fmt.Errorf("playlist is empty")
	}
	return uris, nil
}

// ArtifactMismatchError means the playlist and the segment files on disk disagree.
type ArtifactMismatchError struct {
	Dir        string
	Unlisted   []string // present on disk, missing from the playlist
	Missing    []string // listed, missing on disk
	OutOfOrder bool
}

func (e *ArtifactMismatchError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing on disk: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Unlisted) > 0 {
		parts = append(parts, "not in playlist: "+strings.Join(e.Unlisted, ", "))
	}
	if e.OutOfOrder {
		parts = append(parts, "segments listed out of creation order")
	}
	return fmt.Sprintf("artifact %s does not match its playlist: %s", e.Dir, strings.Join(parts, "; "))
}

// Artifact is a directory holding one playlist and the segments it references.
type Artifact struct {
	Dir      string
	Playlist string   // file name relative to Dir
	Segments []string // file names relative to Dir, playlist order
}

// PlaylistPath is the absolute path of the playlist file.
func (a *Artifact) PlaylistPath() string {
	return filepath.Join(a.Dir, a.Playlist)
}

// VerifyArtifact checks that the playlist in dir lists exactly the segment files present,
// in the order the muxer numbered them.
func VerifyArtifact(dir, playlistName string) (*Artifact, error) {
	f, err := os.Open(filepath.Join(dir, playlistName))
	if err != nil {
		return nil, fmt.Errorf("open playlist: %w", err)
	}
	defer f.Close()

	uris, err := ParsePlaylist(f)
	if err != nil {
		return nil, err
	}

	listed := make([]string, 0, len(uris))
	for _, uri := range uris {
		listed = append(listed, segmentName(uri))
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read artifact dir: %w", err)
	}
	var present []string
	for _, entry := range entries {
		if entry.Type().IsRegular() && entry.Name() != playlistName {
			present = append(present, entry.Name())
		}
	}

	mismatch := &ArtifactMismatchError{Dir: dir}
	for _, name := range listed {
		if !slices.Contains(present, name) {
			mismatch.Missing = append(mismatch.Missing, name)
		}
	}
	for _, name := range present {
		if !slices.Contains(listed, name) {
			mismatch.Unlisted = append(mismatch.Unlisted, name)
		}
	}
	mismatch.OutOfOrder = !inCreationOrder(listed)
	if len(mismatch.Missing) > 0 || len(mismatch.Unlisted) > 0 || mismatch.OutOfOrder {
		return nil, mismatch
	}

	return &Artifact{Dir: dir, Playlist: playlistName, Segments: listed}, nil
}

// inCreationOrder reports whether the segment counters strictly increase.
// The counter is padded to three digits only, so segment_1000 must follow segment_999.
// Names without a counter fall back to lexical order.
func inCreationOrder(names []string) bool {
	for i := 1; i < len(names); i++ {
		prev, okPrev := segmentCounter(names[i-1])
		next, okNext := segmentCounter(names[i])
		if okPrev && okNext {
			if next <= prev {
				return false
			}
			continue
		}
		if names[i] <= names[i-1] {
			return false
		}
	}
	return true
}

// segmentCounter extracts n from a name like segment_n.ext.
func segmentCounter(name string) (int, bool) {
	stem := strings.TrimSuffix(name, path.Ext(name))
	i := strings.LastIndexByte(stem, '_')
	if i < 0 {
		return 0, false
	}
	n, err := strconv.Atoi(stem[i+1:])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// segmentName reduces a playlist URI to the file name it points at.
func segmentName(uri string) string {
	if u, err := url.Parse(uri); err == nil && u.Path != "" {
		uri = u.Path
	}
	return path.Base(filepath.ToSlash(uri))
}
