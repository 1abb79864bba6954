package resume

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/abhinav2805-ux/resumeP/internal/completion"
	"github.com/abhinav2805-ux/resumeP/internal/interview"
)

// ErrExtractionFailed means the document text or the model's JSON output
// could not be recovered into structured data.
var ErrExtractionFailed = errors.New("resume extraction failed")

// fenceRE strips leading/trailing markdown code fences around a JSON body.
var fenceRE = regexp.MustCompile("(?ms)^```(?:json)?\\s*|\\s*```$")

// ExtractorConfig carries the model settings for structured extraction.
// Temperature stays low; this is a parsing task, not a generative one.
type ExtractorConfig struct {
	Model       string
	Temperature float64
	MaxChars    int
}

// StructuredExtractor turns raw resume text into a candidate profile via one
// JSON-mode completion call.
type StructuredExtractor struct {
	provider completion.Provider
	log      *zap.Logger
	cfg      ExtractorConfig
}

func NewStructuredExtractor(provider completion.Provider, log *zap.Logger, cfg ExtractorConfig) *StructuredExtractor {
	if log == nil {
		log = zap.NewNop()
	}
	return &StructuredExtractor{provider: provider, log: log, cfg: cfg}
}

// Extract sends the resume text to the provider and recovers a profile from
// the reply. Empty input yields an empty profile rather than an error, so an
// unreadable upload still produces a consistent shape for the caller.
func (e *StructuredExtractor) Extract(ctx context.Context, text string) (interview.Profile, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return emptyProfile(), nil
	}

	if runes := []rune(text); e.cfg.MaxChars > 0 && len(runes) > e.cfg.MaxChars {
		e.log.Warn("resume text truncated",
			zap.Int("original_chars", len(runes)),
			zap.Int("max_chars", e.cfg.MaxChars),
		)
		text = string(runes[:e.cfg.MaxChars])
	}

	reply, err := e.provider.Complete(ctx, completion.Request{
		Model: e.cfg.Model,
		Messages: []completion.Message{
			{Role: completion.RoleSystem, Content: extractionSystemPrompt},
			{Role: completion.RoleUser, Content: buildExtractionPrompt(text)},
		},
		Temperature: e.cfg.Temperature,
		JSONMode:    true,
	})
	if err != nil {
		return interview.Profile{}, err
	}

	profile, err := recoverProfile(reply)
	if err != nil {
		e.log.Warn("structured extraction unrecoverable", zap.Error(err))
		return interview.Profile{}, err
	}
	return profile, nil
}

const extractionSystemPrompt = "You are an expert resume parser. Your sole task is to extract information and return it as a valid JSON object according to the user's specified format. Respond ONLY with the JSON object."

func buildExtractionPrompt(text string) string {
	return fmt.Sprintf(`**Task:** Extract key information from the following resume text.
**Output Format:** Return ONLY a valid JSON object with these exact keys: "name" (string), "skills" (list of strings), "experience" (list of objects, each representing a job), and "projects" (list of objects, each representing a project). If information for a key isn't found, use an empty string or empty list as appropriate.

**Resume Text:**
`+"```"+`
%s
`+"```"+`

**JSON Output:**`, text)
}

// recoverProfile parses the model reply into a profile. Recovery is bounded:
// direct parse, then fence stripping, then the span from the first '{' to the
// last '}'. Anything still unparseable fails instead of being guessed at.
func recoverProfile(reply string) (interview.Profile, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(reply), &raw); err == nil {
		return backfill(raw), nil
	}

	cleaned := fenceRE.ReplaceAllString(strings.TrimSpace(reply), "")
	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end <= start {
		return interview.Profile{}, fmt.Errorf("%w: no JSON object in model reply", ErrExtractionFailed)
	}
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &raw); err != nil {
		return interview.Profile{}, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	return backfill(raw), nil
}

// backfill fills any missing required key with an empty value of the right
// shape. Partial structured output beats a hard failure here.
func backfill(raw map[string]json.RawMessage) interview.Profile {
	p := emptyProfile()
	if v, ok := raw["name"]; ok {
		_ = json.Unmarshal(v, &p.Name)
	}
	if v, ok := raw["skills"]; ok {
		var skills []string
		if json.Unmarshal(v, &skills) == nil && skills != nil {
			p.Skills = skills
		}
	}
	if v, ok := raw["experience"]; ok {
		var exp []map[string]any
		if json.Unmarshal(v, &exp) == nil && exp != nil {
			p.Experience = exp
		}
	}
	if v, ok := raw["projects"]; ok {
		var projects []map[string]any
		if json.Unmarshal(v, &projects) == nil && projects != nil {
			p.Projects = projects
		}
	}
	return p
}

func emptyProfile() interview.Profile {
	return interview.Profile{
		Skills:     []string{},
		Experience: []map[string]any{},
		Projects:   []map[string]any{},
	}
}
