package workset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, relPath string, content []byte) {
	t.Helper()

	path := filepath.Join(root, relPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, content, 0644))
}

func collectNames(files []File) []string {
	names := make([]string, 0, len(files))
	for _, file := range files {
		names = append(names, file.Name)
	}
	return names
}

func TestCollectSkipsExcludedAndBinary(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "app.py", []byte("import os\n"))
	writeFile(t, root, "node_modules/lib.js", []byte("module.exports = {}\n"))
	writeFile(t, root, ".git/HEAD", []byte("ref: refs/heads/main\n"))
	writeFile(t, root, "logo.png", []byte("not really an image"))
	writeFile(t, root, "data.bin", []byte{0x7f, 0x45, 0x4c, 0x46, 0x00, 0x01})
	writeFile(t, root, "empty.py", []byte("   \n\t\n"))

	collector := NewCollector(hclog.NewNullLogger(), Options{})
	files, err := collector.Collect(root)

	require.NoError(t, err)
	assert.Equal(t, []string{"app.py"}, collectNames(files))
	assert.Equal(t, "import os\n", files[0].Content)
}

func TestCollectOrdersConfigAndCriticalFirst(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "Makefile", []byte("all:\n\ttrue\n"))
	writeFile(t, root, "app.py", []byte("print('hi')\n"))
	writeFile(t, root, "data.yaml", []byte("volume: 1\n"))
	writeFile(t, root, "main.js", []byte("console.log(1)\n"))
	writeFile(t, root, "notes.txt", []byte("reminder\n"))
	writeFile(t, root, "settings.json", []byte("{}\n"))

	collector := NewCollector(hclog.NewNullLogger(), Options{})
	files, err := collector.Collect(root)

	require.NoError(t, err)
	// settings.json, app.py and main.js are critical, ahead of the rest of
	// their config > source > other ordering.
	assert.Equal(t, []string{"settings.json", "app.py", "main.js", "data.yaml", "notes.txt", "Makefile"}, collectNames(files))
}

func TestCollectSingleFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "server.py", []byte("PASSWORD = \"x\"\n"))

	collector := NewCollector(hclog.NewNullLogger(), Options{})
	files, err := collector.Collect(filepath.Join(root, "server.py"))

	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "server.py", files[0].Name)
	assert.Equal(t, "PASSWORD = \"x\"\n", files[0].Content)
}

func TestCollectSingleBinaryFileFails(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "tool.exe", []byte{0x4d, 0x5a, 0x00})

	collector := NewCollector(hclog.NewNullLogger(), Options{})
	_, err := collector.Collect(filepath.Join(root, "tool.exe"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a scannable text file")
}

func TestCollectMissingTarget(t *testing.T) {
	collector := NewCollector(hclog.NewNullLogger(), Options{})
	_, err := collector.Collect(filepath.Join(t.TempDir(), "nope"))

	require.Error(t, err)
}

func TestCollectEnforcesSizeCap(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "big.py", []byte("x = 1\n# padding padding padding padding\n"))

	collector := NewCollector(hclog.NewNullLogger(), Options{MaxTotalSize: 10})
	_, err := collector.Collect(root)

	require.Error(t, err)
	var tooLarge *TargetTooLargeError
	require.ErrorAs(t, err, &tooLarge)
	assert.Equal(t, int64(10), tooLarge.Limit)
	assert.Greater(t, tooLarge.Size, tooLarge.Limit)
}

func TestCollectKeepsRelativePaths(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "sub/deploy/aws.tf", []byte("resource \"aws_s3_bucket\" \"b\" {}\n"))

	collector := NewCollector(hclog.NewNullLogger(), Options{})
	files, err := collector.Collect(root)

	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "sub/deploy/aws.tf", files[0].Path)
	assert.Equal(t, "aws.tf", files[0].Name)
}

func TestIsBinaryFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "image.png", []byte("irrelevant"))
	writeFile(t, root, "nulls.dat", []byte{0x01, 0x00, 0x02})
	writeFile(t, root, "plain.txt", []byte("hello world\n"))
	writeFile(t, root, "utf8.txt", []byte("héllo wörld\n"))

	assert.True(t, IsBinaryFile(filepath.Join(root, "image.png")), "excluded extension")
	assert.True(t, IsBinaryFile(filepath.Join(root, "nulls.dat")), "null bytes")
	assert.True(t, IsBinaryFile(filepath.Join(root, "missing.txt")), "unreadable")
	assert.False(t, IsBinaryFile(filepath.Join(root, "plain.txt")))
	assert.False(t, IsBinaryFile(filepath.Join(root, "utf8.txt")))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		want int
	}{
		{name: ".env", want: priorityConfig},
		{name: "firebase.json", want: priorityConfig},
		{name: "app.config", want: priorityConfig},
		{name: "MyConfigLoader.java", want: priorityConfig},
		{name: "server.py", want: prioritySource},
		{name: "index.html", want: prioritySource},
		{name: "Makefile", want: priorityOther},
		{name: "LICENSE", want: priorityOther},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, classify(tc.name))
		})
	}
}

func TestDirectorySize(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", []byte("12345"))
	writeFile(t, root, "sub/b.txt", []byte("1234567890"))

	assert.Equal(t, int64(15), DirectorySize(root))
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		size int64
		want string
	}{
		{size: 512, want: "512.00 B"},
		{size: 2048, want: "2.00 KB"},
		{size: 5 * 1024 * 1024, want: "5.00 MB"},
		{size: 3 * 1024 * 1024 * 1024, want: "3.00 GB"},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, FormatSize(tc.size))
	}
}
