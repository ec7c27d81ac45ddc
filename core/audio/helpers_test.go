package audio

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// writeWav writes a canonical 44-byte-header PCM WAV file followed by dataBytes of silence.
func writeWav(t *testing.T, dir, name string, sampleRate, bitDepth, channels, dataBytes int) string {
	t.Helper()
	blockAlign := channels * bitDepth / 8
	header := make([]byte, 44)
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(36+dataBytes))
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], 1)
	binary.LittleEndian.PutUint16(header[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(sampleRate*blockAlign))
	binary.LittleEndian.PutUint16(header[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(header[34:36], uint16(bitDepth))
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(dataBytes))

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, append(header, make([]byte, dataBytes)...), 0o644); err != nil {
		t.Fatalf("write wav: %v", err)
	}
	return path
}

type call struct {
	dir  string
	name string
	args []string
}

func (c call) String() string {
	return strings.Join(append([]string{c.name}, c.args...), " ")
}

// fakeExec records launches and lets a test simulate what the transcoder writes.
type fakeExec struct {
	mu       sync.Mutex
	calls    []call
	simulate func(ctx context.Context, dir string, args []string) ([]byte, error)
}

func (f *fakeExec) execCmdCtx(ctx context.Context, dir, name string, args ...string) Cmd {
	return &fakeCmd{run: func() ([]byte, error) {
		f.mu.Lock()
		f.calls = append(f.calls, call{dir: dir, name: name, args: args})
		f.mu.Unlock()
		if f.simulate == nil {
			return nil, nil
		}
		return f.simulate(ctx, dir, args)
	}}
}

type fakeCmd struct {
	run func() ([]byte, error)
}

func (c *fakeCmd) Run() ([]byte, error) { return c.run() }

type fakeExitError struct{ code int }

func (e *fakeExitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }
func (e *fakeExitError) ExitCode() int { return e.code }

// segmentList simulates the ffmpeg segment muxer: segments land next to the
// output pattern, the playlist lands in the working directory.
func segmentList(count int) func(context.Context, string, []string) ([]byte, error) {
	return func(_ context.Context, dir string, args []string) ([]byte, error) {
		pattern := args[len(args)-1]
		var b strings.Builder
		b.WriteString("#EXTM3U\n#EXT-X-VERSION:3\n#EXT-X-MEDIA-SEQUENCE:0\n#EXT-X-ALLOW-CACHE:YES\n#EXT-X-TARGETDURATION:10\n")
		for i := range count {
			name := fmt.Sprintf(pattern, i)
			if err := os.WriteFile(name, []byte("RIFF"), 0o644); err != nil {
				return nil, err
			}
			fmt.Fprintf(&b, "#EXTINF:10.000000,\n%s\n", filepath.Base(name))
		}
		b.WriteString("#EXT-X-ENDLIST\n")
		return nil, os.WriteFile(filepath.Join(dir, PlaylistName), []byte(b.String()), 0o644)
	}
}

// hlsMuxer simulates the ffmpeg hls muxer writing .ts segments and the playlist into OutputDir.
func hlsMuxer(count int) func(context.Context, string, []string) ([]byte, error) {
	return func(_ context.Context, _ string, args []string) ([]byte, error) {
		playlist := args[len(args)-1]
		outDir := filepath.Dir(playlist)
		var b strings.Builder
		b.WriteString("#EXTM3U\n#EXT-X-VERSION:3\n#EXT-X-TARGETDURATION:10\n#EXT-X-MEDIA-SEQUENCE:0\n#EXT-X-PLAYLIST-TYPE:VOD\n")
		for i := range count {
			name := fmt.Sprintf(TSSegmentPattern, i)
			if err := os.WriteFile(filepath.Join(outDir, name), []byte{0x47}, 0o644); err != nil {
				return nil, err
			}
			fmt.Fprintf(&b, "#EXTINF:10.005333,\n%s\n", name)
		}
		b.WriteString("#EXT-X-ENDLIST\n")
		return nil, os.WriteFile(playlist, []byte(b.String()), 0o644)
	}
}
