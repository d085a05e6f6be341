package files

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDetermineFileFullPath(t *testing.T) {
	type testCase struct {
		name         string
		inputPath    string
		nameTemplate string
		expectFile   string
		expectFolder string
		setup        func(t *testing.T) (inputPath, expectFile, expectFolder string)
	}

	tmpDir := t.TempDir()

	tests := []testCase{
		{
			name:         "Directory path with name template",
			inputPath:    tmpDir,
			nameTemplate: "output.json",
			expectFile:   filepath.Join(tmpDir, "output.json"),
			expectFolder: tmpDir,
		},
		{
			name:         "File path with extension",
			inputPath:    filepath.Join(tmpDir, "data.json"),
			nameTemplate: "ignored.txt",
			expectFile:   filepath.Join(tmpDir, "data.json"),
			expectFolder: tmpDir,
			setup: func(t *testing.T) (string, string, string) {
				f := filepath.Join(tmpDir, "data.json")
				_ = os.WriteFile(f, []byte("test"), 0644)
				return f, f, tmpDir
			},
		},
		{
			name:         "Path with no extension, treat as folder",
			inputPath:    filepath.Join(tmpDir, "output_folder"),
			nameTemplate: "report.log",
			expectFile:   filepath.Join(tmpDir, "output_folder", "report.log"),
			expectFolder: filepath.Join(tmpDir, "output_folder"),
		},
		{
			name:         "Non-existent file with extension",
			inputPath:    filepath.Join(tmpDir, "nonexistent.yaml"),
			nameTemplate: "ignored.txt",
			expectFile:   filepath.Join(tmpDir, "nonexistent.yaml"),
			expectFolder: tmpDir,
		},
		{
			name:         "Non-existent folder",
			inputPath:    filepath.Join(tmpDir, "missing_folder"),
			nameTemplate: "result.json",
			expectFile:   filepath.Join(tmpDir, "missing_folder", "result.json"),
			expectFolder: filepath.Join(tmpDir, "missing_folder"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actualPath := tt.inputPath
			expectFile := tt.expectFile
			expectFolder := tt.expectFolder

			if tt.setup != nil {
				actualPath, expectFile, expectFolder = tt.setup(t)
			}

			filePath, folderPath, err := DetermineFileFullPath(actualPath, tt.nameTemplate)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if filePath != expectFile {
				t.Errorf("Expected file path %s, got %s", expectFile, filePath)
			}
			if folderPath != expectFolder {
				t.Errorf("Expected folder path %s, got %s", expectFolder, folderPath)
			}
		})
	}
}

func TestReadLines(t *testing.T) {
	tmpDir := t.TempDir()
	listFile := filepath.Join(tmpDir, "targets.txt")
	content := "src/app.py\n\n  config/settings.yml  \n\nmain.go\n"
	if err := os.WriteFile(listFile, []byte(content), 0644); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	lines, err := ReadLines(listFile)
	if err != nil {
		t.Fatalf("ReadLines() error = %v", err)
	}

	want := []string{"src/app.py", "config/settings.yml", "main.go"}
	if len(lines) != len(want) {
		t.Fatalf("ReadLines() returned %d lines, want %d", len(lines), len(want))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("ReadLines()[%d] = %q, want %q", i, lines[i], want[i])
		}
	}

	if _, err := ReadLines(filepath.Join(tmpDir, "missing.txt")); err == nil {
		t.Error("ReadLines() expected error for missing file")
	}
}

func TestValidatePath(t *testing.T) {
	tmpDir := t.TempDir()

	regular := filepath.Join(tmpDir, "report.json")
	if err := os.WriteFile(regular, []byte("{}"), 0644); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := ValidatePath(regular); err != nil {
		t.Errorf("ValidatePath() error = %v, want nil", err)
	}

	if err := ValidatePath(tmpDir); err == nil {
		t.Error("ValidatePath() expected error for directory")
	}
	if err := ValidatePath(filepath.Join(tmpDir, "missing.json")); err == nil {
		t.Error("ValidatePath() expected error for missing file")
	}
}

func TestEnsureWithinRoot(t *testing.T) {
	root := t.TempDir()

	inside, err := EnsureWithinRoot(root, filepath.Join(root, "sub", "file.go"))
	if err != nil {
		t.Fatalf("EnsureWithinRoot() error = %v", err)
	}
	if !filepath.IsAbs(inside) {
		t.Errorf("EnsureWithinRoot() = %q, want absolute path", inside)
	}

	if _, err := EnsureWithinRoot(root, filepath.Join(root, "..", "escape.go")); err == nil {
		t.Error("EnsureWithinRoot() expected error for escaping path")
	}

	cleaned, err := EnsureWithinRoot("", "a/b/../c")
	if err != nil {
		t.Fatalf("EnsureWithinRoot() error = %v", err)
	}
	if cleaned != filepath.Clean("a/c") {
		t.Errorf("EnsureWithinRoot() = %q, want %q", cleaned, filepath.Clean("a/c"))
	}
}
