package llm

import (
	"testing"

	"github.com/devguard-io/devguard/internal/batch"
	"github.com/devguard-io/devguard/internal/chunker"
	"github.com/stretchr/testify/assert"
)

func TestSerializeBatch(t *testing.T) {
	b := batch.Batch{
		Index: 1,
		Chunks: []chunker.Chunk{
			{SourceFile: "app.py", StartLine: 1, EndLine: 15, Text: "password = \"x\""},
			{SourceFile: "config.yml", StartLine: 16, EndLine: 30, Text: "debug: true"},
		},
	}

	text := SerializeBatch(b)

	want := "File: app.py\nLines 1-15:\npassword = \"x\"" +
		"\n\n--- CHUNK ---\n\n" +
		"File: config.yml\nLines 16-30:\ndebug: true"
	assert.Equal(t, want, text)
}

func TestSerializeBatchSingleChunk(t *testing.T) {
	b := batch.Batch{
		Index:  1,
		Chunks: []chunker.Chunk{{SourceFile: "main.go", StartLine: 31, EndLine: 45, Text: "x := 1"}},
	}

	assert.Equal(t, "File: main.go\nLines 31-45:\nx := 1", SerializeBatch(b))
}

func TestBuildPromptEmbedsBatchText(t *testing.T) {
	client := &Client{promptCharLimit: DefaultPromptCharLimit}

	prompt := client.buildPrompt("File: app.py\nLines 1-15:\nsecret = \"hunter2\"")

	assert.Contains(t, prompt, "File: app.py")
	assert.Contains(t, prompt, "secret = \"hunter2\"")
	assert.Contains(t, prompt, "CRITICAL INSTRUCTIONS FOR FILE NAMES")
	assert.Contains(t, prompt, "OUTPUT FORMAT")
	assert.Contains(t, prompt, `"findings": []`)
}

func TestBuildPromptTruncatesBatchText(t *testing.T) {
	client := &Client{promptCharLimit: 10}

	prompt := client.buildPrompt("0123456789OVERFLOW")

	assert.Contains(t, prompt, "0123456789")
	assert.NotContains(t, prompt, "OVERFLOW")
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		limit int
		want  string
	}{
		{name: "unlimited", text: "abc", limit: 0, want: "abc"},
		{name: "shorter than limit", text: "abc", limit: 10, want: "abc"},
		{name: "exact", text: "abc", limit: 3, want: "abc"},
		{name: "cut", text: "abcdef", limit: 3, want: "abc"},
		{name: "multibyte", text: "héllo wörld", limit: 5, want: "héllo"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, truncate(tc.text, tc.limit))
		})
	}
}
