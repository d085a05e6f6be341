package workset

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/hashicorp/go-hclog"
)

// File is one scannable text file with its content loaded. Name is the base
// name, it is what chunk headers and findings refer to, Path keeps the
// location relative to the collection root for logging.
type File struct {
	Path    string
	Name    string
	Content string
}

// DefaultMaxTargetSize caps scan targets at 1 GiB unless configured otherwise.
const DefaultMaxTargetSize int64 = 1 << 30

// Options controls collection behavior.
type Options struct {
	// MaxTotalSize aborts collection when the target exceeds this many
	// bytes. Zero disables the cap.
	MaxTotalSize int64
}

var excludedDirs = map[string]bool{
	"node_modules": true,
	"build":        true,
	"dist":         true,
	".git":         true,
	"__pycache__":  true,
	".venv":        true,
	"venv":         true,
	"env":          true,
}

var excludedExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".pdf": true, ".zip": true, ".tar": true, ".gz": true,
	".exe": true, ".dll": true, ".so": true, ".dylib": true,
}

var textExtensions = map[string]bool{
	".py": true, ".js": true, ".ts": true, ".jsx": true, ".tsx": true,
	".java": true, ".go": true, ".rb": true, ".php": true,
	".yml": true, ".yaml": true, ".json": true, ".xml": true,
	".html": true, ".css": true, ".sh": true, ".bash": true, ".zsh": true,
	".md": true, ".txt": true, ".env": true,
	".properties": true, ".conf": true, ".config": true,
	".tf": true, ".tfvars": true, ".sql": true,
}

var configExtensions = map[string]bool{
	".env": true, ".properties": true, ".conf": true, ".config": true,
	".yaml": true, ".yml": true, ".json": true, ".tf": true, ".tfvars": true,
}

var configFileNames = map[string]bool{
	".env":            true,
	".env.local":      true,
	".env.production": true,
	"firebase.json":   true,
	"rules.json":      true,
}

// criticalMarkers bump a file to the front of the scan order when its
// relative path contains one of them. These files are where leaked
// credentials and broken access rules usually live.
var criticalMarkers = []string{".env", "config", "firebase", "aws", "app.py", "main.py", "main.js", "settings"}

// TargetTooLargeError reports a scan target exceeding the configured size cap.
type TargetTooLargeError struct {
	Path  string
	Size  int64
	Limit int64
}

func (e *TargetTooLargeError) Error() string {
	return fmt.Sprintf("target %q is too large to scan: %s exceeds the %s limit",
		e.Path, FormatSize(e.Size), FormatSize(e.Limit))
}

// Collector walks scan targets and loads the text files worth analyzing.
type Collector struct {
	logger  hclog.Logger
	options Options
}

func NewCollector(logger hclog.Logger, options Options) *Collector {
	return &Collector{logger: logger, options: options}
}

// Collect gathers the scannable files from target, which may be a single
// file or a directory tree. Binary files, excluded directories, unreadable
// and empty files are skipped. The result is ordered so that configuration
// and credential-prone files are analyzed first.
func (c *Collector) Collect(target string) ([]File, error) {
	info, err := os.Stat(target)
	if err != nil {
		return nil, fmt.Errorf("cannot access scan target: %w", err)
	}

	if c.options.MaxTotalSize > 0 {
		size := info.Size()
		if info.IsDir() {
			size = DirectorySize(target)
		}
		if size > c.options.MaxTotalSize {
			return nil, &TargetTooLargeError{Path: target, Size: size, Limit: c.options.MaxTotalSize}
		}
	}

	if !info.IsDir() {
		file, ok := c.loadFile(target, filepath.Base(target))
		if !ok {
			return nil, fmt.Errorf("target %q is not a scannable text file", target)
		}
		return []File{file}, nil
	}

	var files []File
	err = filepath.WalkDir(target, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			c.logger.Warn("skipping unreadable path", "path", path, "error", walkErr)
			if entry != nil && entry.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if entry.IsDir() {
			if excludedDirs[entry.Name()] {
				return fs.SkipDir
			}
			return nil
		}
		if !entry.Type().IsRegular() {
			return nil
		}

		relPath, relErr := filepath.Rel(target, path)
		if relErr != nil {
			relPath = path
		}
		if file, ok := c.loadFile(path, relPath); ok {
			files = append(files, file)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking scan target failed: %w", err)
	}

	return promoteCritical(prioritize(files)), nil
}

func (c *Collector) loadFile(path, relPath string) (File, bool) {
	if IsBinaryFile(path) {
		c.logger.Debug("skipping binary file", "path", relPath)
		return File{}, false
	}

	content, err := os.ReadFile(path)
	if err != nil {
		c.logger.Warn("skipping unreadable file", "path", relPath, "error", err)
		return File{}, false
	}
	if strings.TrimSpace(string(content)) == "" {
		c.logger.Debug("skipping empty file", "path", relPath)
		return File{}, false
	}

	return File{
		Path:    filepath.ToSlash(relPath),
		Name:    filepath.Base(path),
		Content: string(content),
	}, true
}

// IsBinaryFile reports whether path looks like a binary file, judged by its
// extension and then by a sample of its content.
func IsBinaryFile(path string) bool {
	if excludedExtensions[strings.ToLower(filepath.Ext(path))] {
		return true
	}

	f, err := os.Open(path)
	if err != nil {
		return true
	}
	defer f.Close()

	sample := make([]byte, 1024)
	n, err := f.Read(sample)
	if err != nil && err != io.EOF {
		return true
	}
	sample = sample[:n]
	if n == 0 {
		return false
	}
	if bytes.IndexByte(sample, 0) != -1 {
		return true
	}
	return !looksLikeText(sample)
}

// looksLikeText accepts valid UTF-8, tolerating a multi-byte sequence cut
// off at the end of the sample.
func looksLikeText(sample []byte) bool {
	for trim := 0; trim <= 3 && trim < len(sample); trim++ {
		if utf8.Valid(sample[:len(sample)-trim]) {
			return true
		}
	}
	return false
}

// prioritize orders files as configuration first, then recognized source
// code, then everything else. Order within each group is preserved.
func prioritize(files []File) []File {
	var configFiles, sourceFiles, otherFiles []File
	for _, file := range files {
		switch classify(file.Name) {
		case priorityConfig:
			configFiles = append(configFiles, file)
		case prioritySource:
			sourceFiles = append(sourceFiles, file)
		default:
			otherFiles = append(otherFiles, file)
		}
	}

	ordered := make([]File, 0, len(files))
	ordered = append(ordered, configFiles...)
	ordered = append(ordered, sourceFiles...)
	return append(ordered, otherFiles...)
}

const (
	priorityConfig = iota
	prioritySource
	priorityOther
)

func classify(name string) int {
	ext := strings.ToLower(filepath.Ext(name))
	lower := strings.ToLower(name)

	if configExtensions[ext] || configFileNames[lower] ||
		strings.Contains(lower, "config") || strings.Contains(lower, "firebase") {
		return priorityConfig
	}
	if textExtensions[ext] {
		return prioritySource
	}
	return priorityOther
}

// promoteCritical moves files whose path matches a critical marker to the
// front, keeping relative order on both sides.
func promoteCritical(files []File) []File {
	var critical, rest []File
	for _, file := range files {
		if isCriticalPath(file.Path) {
			critical = append(critical, file)
		} else {
			rest = append(rest, file)
		}
	}
	return append(critical, rest...)
}

func isCriticalPath(path string) bool {
	lower := strings.ToLower(path)
	for _, marker := range criticalMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// DirectorySize sums the size of all regular files under root. Unreadable
// entries count as zero.
func DirectorySize(root string) int64 {
	var total int64
	filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if entry.Type().IsRegular() {
			if info, infoErr := entry.Info(); infoErr == nil {
				total += info.Size()
			}
		}
		return nil
	})
	return total
}

// FormatSize renders a byte count as a human readable string.
func FormatSize(size int64) string {
	value := float64(size)
	for _, unit := range []string{"B", "KB", "MB", "GB"} {
		if value < 1024.0 {
			return fmt.Sprintf("%.2f %s", value, unit)
		}
		value /= 1024.0
	}
	return fmt.Sprintf("%.2f TB", value)
}
