// Package responses supplies canned answers for incoming questions.
package responses

import (
	"encoding/json"
	"math/rand/v2"
	"os"

	"github.com/rs/zerolog"
)

// Provider returns an answer string on demand.
type Provider interface {
	RandomAnswer() string
}

// fallbackAnswers are served when the configured source is missing or invalid.
// The service must keep answering even with a broken answer file.
var fallbackAnswers = []string{
	"I'm having trouble finding my response file.",
	"Something went wrong with my responses.",
	"Please check my configuration.",
}

// FileProvider serves a uniformly random answer from a JSON file of the form
// {"responses": ["...", ...]}.
type FileProvider struct {
	answers []string
}

// NewFileProvider loads the answer list from path. A missing file, invalid
// JSON or an empty list degrades to the fallback set rather than failing.
func NewFileProvider(path string, log zerolog.Logger) *FileProvider {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn().Err(err).Str("file", path).Msg("responses file unavailable, using fallback answers")
		return &FileProvider{answers: fallbackAnswers}
	}

	var doc struct {
		Responses []string `json:"responses"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		log.Warn().Err(err).Str("file", path).Msg("responses file invalid, using fallback answers")
		return &FileProvider{answers: fallbackAnswers}
	}
	if len(doc.Responses) == 0 {
		log.Warn().Str("file", path).Msg("responses file empty, using fallback answers")
		return &FileProvider{answers: fallbackAnswers}
	}

	log.Info().Int("count", len(doc.Responses)).Str("file", path).Msg("loaded responses")
	return &FileProvider{answers: doc.Responses}
}

// NewStaticProvider wraps a fixed answer list (used by tests and seeding).
func NewStaticProvider(answers []string) *FileProvider {
	if len(answers) == 0 {
		answers = fallbackAnswers
	}
	return &FileProvider{answers: answers}
}

func (p *FileProvider) RandomAnswer() string {
	return p.answers[rand.IntN(len(p.answers))]
}

// Answers returns a copy of the loaded answer set.
func (p *FileProvider) Answers() []string {
	out := make([]string, len(p.answers))
	copy(out, p.answers)
	return out
}
