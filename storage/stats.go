package storage

import (
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"time"
)

// BucketStats 存储桶统计信息
type BucketStats struct {
	TotalObjects int64
	TotalSize    int64
	LastModified time.Time
}

// Summarize folds a listing into totals.
func Summarize(objects []ObjectInfo) BucketStats {
	var stats BucketStats
	for _, obj := range objects {
		stats.TotalObjects++
		stats.TotalSize += obj.Size
		if obj.LastModified.After(stats.LastModified) {
			stats.LastModified = obj.LastModified
		}
	}
	return stats
}

// FormatSize 格式化文件大小
func FormatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}

// WriteTree prints objects grouped by directory, directories sorted, files under their directory.
func WriteTree(w io.Writer, objects []ObjectInfo) {
	byDir := make(map[string][]ObjectInfo)
	for _, obj := range objects {
		dir := path.Dir(obj.Key)
		byDir[dir] = append(byDir[dir], obj)
	}

	dirs := make([]string, 0, len(byDir))
	for dir := range byDir {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	for _, dir := range dirs {
		indent := ""
		if dir != "." {
			level := strings.Count(dir, "/")
			indent = strings.Repeat("  ", level)
			fmt.Fprintf(w, "%s📁 %s/\n", indent, dir)
			indent += "  "
		}
		files := byDir[dir]
		sort.Slice(files, func(i, j int) bool { return files[i].Key < files[j].Key })
		for _, obj := range files {
			fmt.Fprintf(w, "%s📄 %s (%s)\n", indent, path.Base(obj.Key), FormatSize(obj.Size))
		}
	}
}
