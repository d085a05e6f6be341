package risk

import (
	"sort"
	"strings"

	"github.com/devguard-io/devguard/internal/chunker"
	"github.com/devguard-io/devguard/pkg/shared/config"
)

// Defaults for the whole-file fallback stage.
const (
	DefaultConfigChunkKeep = 5
	DefaultSmallFileChunks = 3
)

// Options tunes the filter stages.
type Options struct {
	// WindowSize is the chunking window used by RiskySections.
	WindowSize int
	// ConfigChunkKeep is how many leading chunks are kept for config-like
	// file names when no content heuristic matched.
	ConfigChunkKeep int
	// SmallFileChunks is the largest chunk count at which a file is kept
	// wholesale when no content heuristic matched.
	SmallFileChunks int
}

func (o Options) withDefaults() Options {
	o.WindowSize = config.SetThen(o.WindowSize, chunker.RiskWindowSize)
	o.ConfigChunkKeep = config.SetThen(o.ConfigChunkKeep, DefaultConfigChunkKeep)
	o.SmallFileChunks = config.SetThen(o.SmallFileChunks, DefaultSmallFileChunks)
	return o
}

// Filter narrows a file's chunks to the ones most likely to carry
// security-sensitive content. The signature and keyword tables are shared
// package state compiled once; the filter itself only carries tuning.
type Filter struct {
	opts Options
}

// NewFilter creates a filter with the given options, falling back to
// defaults for unset values.
func NewFilter(opts Options) *Filter {
	return &Filter{opts: opts.withDefaults()}
}

// RiskySections chunks a file's content and narrows it to the sections most
// likely to carry security-sensitive code, strongest evidence first.
func (f *Filter) RiskySections(content, fileName string) []chunker.Chunk {
	return f.FilterChunks(chunker.Split(content, fileName, f.opts.WindowSize), fileName)
}

// FilterChunks selects and ranks the risky chunks of one file, strongest
// evidence first. The layered fallbacks keep small or config-shaped files
// from being skipped entirely when no signature fires: first a broader
// keyword scan, then a whole-file heuristic on the file name and size.
func (f *Filter) FilterChunks(chunks []chunker.Chunk, fileName string) []chunker.Chunk {
	if len(chunks) == 0 {
		return nil
	}

	candidates := matchSignatures(chunks)
	if len(candidates) == 0 {
		candidates = matchKeywords(chunks)
	}
	if len(candidates) == 0 {
		candidates = f.keepWholeFile(chunks, fileName)
	}
	if len(candidates) == 0 {
		return nil
	}
	return rankByScore(candidates)
}

// matchSignatures keeps chunks matching at least one filter signature.
// Matching stops at the first hit per chunk.
func matchSignatures(chunks []chunker.Chunk) []chunker.Chunk {
	var kept []chunker.Chunk
	for _, chunk := range chunks {
		for _, signature := range keepSignatures {
			if signature.Pattern.MatchString(chunk.Text) {
				kept = append(kept, chunk)
				break
			}
		}
	}
	return kept
}

// matchKeywords keeps chunks containing at least one security keyword as a
// case-insensitive substring.
func matchKeywords(chunks []chunker.Chunk) []chunker.Chunk {
	var kept []chunker.Chunk
	for _, chunk := range chunks {
		text := strings.ToLower(chunk.Text)
		for _, keyword := range securityKeywords {
			if strings.Contains(text, keyword) {
				kept = append(kept, chunk)
				break
			}
		}
	}
	return kept
}

// keepWholeFile keeps chunks purely on file shape: config-like names keep
// their leading chunks, small files are kept wholesale.
func (f *Filter) keepWholeFile(chunks []chunker.Chunk, fileName string) []chunker.Chunk {
	if IsConfigName(fileName) {
		if len(chunks) > f.opts.ConfigChunkKeep {
			return chunks[:f.opts.ConfigChunkKeep]
		}
		return chunks
	}
	if len(chunks) <= f.opts.SmallFileChunks {
		return chunks
	}
	return nil
}

// IsConfigName reports whether a file name looks like configuration.
func IsConfigName(fileName string) bool {
	name := strings.ToLower(fileName)
	for _, marker := range configNameMarkers {
		if strings.Contains(name, marker) {
			return true
		}
	}
	return false
}

// rankByScore sorts candidates by weighted signature score, descending and
// stable, then drops zero-scoring ones. When every candidate scores zero
// the unscored candidate list is returned unchanged rather than an empty
// result, so the fallback stages keep their effect.
func rankByScore(candidates []chunker.Chunk) []chunker.Chunk {
	scored := make([]chunker.Chunk, len(candidates))
	for i, chunk := range candidates {
		chunk.RiskScore = Score(chunk.Text)
		scored[i] = chunk
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].RiskScore > scored[j].RiskScore
	})

	ranked := make([]chunker.Chunk, 0, len(scored))
	for _, chunk := range scored {
		if chunk.RiskScore > 0 {
			ranked = append(ranked, chunk)
		}
	}
	if len(ranked) == 0 {
		return candidates
	}
	return ranked
}

// Score sums the weights of all scoring signatures matching the text.
func Score(text string) int {
	score := 0
	for _, signature := range scoreSignatures {
		if signature.Pattern.MatchString(text) {
			score += signature.Weight
		}
	}
	return score
}
