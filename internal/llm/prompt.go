package llm

import (
	"fmt"
	"strings"

	"github.com/devguard-io/devguard/internal/batch"
)

// ChunkSeparator joins serialized chunks inside a batch payload.
const ChunkSeparator = "\n\n--- CHUNK ---\n\n"

// SerializeBatch turns a batch into the model payload. Every chunk is
// prefixed with a header naming its source file and line range so findings
// can be attributed back afterwards.
func SerializeBatch(b batch.Batch) string {
	parts := make([]string, 0, len(b.Chunks))
	for _, chunk := range b.Chunks {
		parts = append(parts, fmt.Sprintf("File: %s\nLines %d-%d:\n%s",
			chunk.SourceFile, chunk.StartLine, chunk.EndLine, chunk.Text))
	}
	return strings.Join(parts, ChunkSeparator)
}

var analysisPromptTemplate = `You are analyzing FILTERED RISKY CODE SECTIONS that were pre-identified as potentially containing security vulnerabilities.

The content below contains multiple code chunks from DIFFERENT files. Each chunk starts with a header line "File: <name>" followed by "Lines <start>-<end>:" describing where the chunk came from.

CRITICAL INSTRUCTIONS FOR FILE NAMES:
- Each finding MUST use the exact file name from the chunk header it was found in (e.g. "File: app.py" -> file_name "app.py")
- DO NOT use generic names like "filtered_code_chunks" or "code_chunks"
- DO NOT invent file names that do not appear in a chunk header

Code Chunks:
` + "```\n%s\n```" + `

Analyze the chunks for these security issues:
1. Hardcoded secrets: passwords, API keys, tokens, credentials embedded in the code
2. Injection vulnerabilities: SQL injection, command injection, XSS
3. Insecure configuration: open permissions, 0.0.0.0/0 exposure, debug mode enabled
4. Unsafe execution and deserialization: eval, exec, pickle, unsafe YAML loading
5. Authentication and authorization flaws
6. Sensitive data exposure and logging of secrets
7. Cryptographic weaknesses: weak algorithms, hardcoded encryption keys

OUTPUT FORMAT (return ONLY this JSON object, nothing else, no prose, no markdown):
{
  "findings": [
    {
      "file_name": "exact file name from the chunk header",
      "line_number": 42,
      "risk_type": "short category of the issue",
      "severity": "High, Medium or Low",
      "description": "what was found",
      "why_problem": "why this is a security problem",
      "fix_suggestion": "how to fix it",
      "what_to_change": "the concrete code change to make"
    }
  ]
}

If no issues are found return {"findings": []}.`

func (c *Client) buildPrompt(batchText string) string {
	return fmt.Sprintf(analysisPromptTemplate, truncate(batchText, c.promptCharLimit))
}

// truncate cuts text to at most limit characters. Counting is rune based so
// a cut never splits a multi-byte sequence.
func truncate(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
