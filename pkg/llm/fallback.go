package llm

import (
	"crypto/sha256"
	"encoding/binary"
	"math/rand"
	"strings"
	"unicode"

	"github.com/jinzhu/inflection"
)

// FallbackGenerator produces business names locally with no network calls.
// It is the hard-required degradation path when every provider fails: a
// session must still complete with usable output. Output is deterministic
// for a given (description, mode) pair.
type FallbackGenerator struct{}

// NewFallbackGenerator creates the deterministic local generator.
func NewFallbackGenerator() *FallbackGenerator {
	return &FallbackGenerator{}
}

var fallbackStopWords = map[string]bool{
	"a": true, "an": true, "and": true, "the": true, "for": true, "of": true,
	"to": true, "in": true, "on": true, "with": true, "that": true, "is": true,
	"are": true, "my": true, "our": true, "your": true, "who": true, "app": true,
}

var fallbackPrefixes = map[string][]string{
	"creative":     {"Whimsy", "Zest", "Spark", "Wander", "Fable"},
	"professional": {"Prime", "Summit", "Sterling", "Meridian", "Vanguard"},
	"brandable":    {"Novo", "Luma", "Vexa", "Orbi", "Zylo"},
	"tech-focused": {"Byte", "Stack", "Pixel", "Quantum", "Logic"},
}

var fallbackSuffixes = map[string][]string{
	"creative":     {"ly", "ish", "loft", "nest", "works"},
	"professional": {"Group", "Partners", "Solutions", "Labs", "Co"},
	"brandable":    {"io", "ora", "ify", "ent", "ave"},
	"tech-focused": {"Hub", "Grid", "Stack", "Base", "Forge"},
}

// Generate produces count deterministic names from the description keywords.
func (g *FallbackGenerator) Generate(description, mode string, count int) []string {
	if count <= 0 {
		count = DefaultNameCount
	}

	keywords := extractKeywords(description)
	if len(keywords) == 0 {
		keywords = []string{"Venture"}
	}

	prefixes := fallbackPrefixes[mode]
	if prefixes == nil {
		prefixes = fallbackPrefixes["brandable"]
	}
	suffixes := fallbackSuffixes[mode]
	if suffixes == nil {
		suffixes = fallbackSuffixes["brandable"]
	}

	// Seed from the normalized (description, mode) pair so repeated runs
	// produce identical output.
	seedSum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(description)) + "|" + mode))
	rng := rand.New(rand.NewSource(int64(binary.BigEndian.Uint64(seedSum[:8]))))

	candidates := make([]string, 0, len(keywords)*(len(prefixes)+len(suffixes)+1))
	for _, kw := range keywords {
		singular := titleCase(inflection.Singular(kw))
		plural := titleCase(inflection.Plural(kw))

		for _, suffix := range suffixes {
			candidates = append(candidates, singular+suffix)
		}
		for _, prefix := range prefixes {
			candidates = append(candidates, prefix+singular)
		}
		if plural != singular {
			candidates = append(candidates, "The "+plural)
		}
	}

	rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	seen := make(map[string]bool, count)
	names := make([]string, 0, count)
	for _, c := range candidates {
		if seen[c] {
			continue
		}
		seen[c] = true
		names = append(names, c)
		if len(names) == count {
			break
		}
	}

	return names
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// extractKeywords pulls the content-bearing words out of a description.
func extractKeywords(description string) []string {
	fields := strings.FieldsFunc(strings.ToLower(description), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	keywords := make([]string, 0, len(fields))
	seen := make(map[string]bool)
	for _, f := range fields {
		if len(f) < 3 || fallbackStopWords[f] || seen[f] {
			continue
		}
		seen[f] = true
		keywords = append(keywords, f)
	}
	return keywords
}
