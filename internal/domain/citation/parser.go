package citation

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/Azamsaif47/Alfred-app/internal/domain/conversation"
)

var (
	// ErrMalformedEnvelope means the tool content is not a JSON object. Callers
	// treat it as "no citations".
	ErrMalformedEnvelope = errors.New("malformed tool envelope")

	// ErrCitationSkip marks a single context element that was dropped.
	ErrCitationSkip = errors.New("citation element skipped")
)

// SkipReason explains why a context element produced no citation.
type SkipReason string

const (
	SkipMalformedEnvelope SkipReason = "malformed_envelope"
	SkipNotString         SkipReason = "not_string"
	SkipNoMatch           SkipReason = "no_match"
	SkipBadMetadata       SkipReason = "bad_metadata"
)

const contextField = "context"

// documentPattern finds `metadata={...}, page_content='...'` pairs. The
// metadata group stops at the first "}, page_content=" and the content group
// runs to the next unescaped quote of the same kind.
var documentPattern = regexp.MustCompile(`(?s)metadata=\{(.*?)\}, page_content=(?:'((?:[^'\\]|\\.)*)'|"((?:[^"\\]|\\.)*)")`)

// Citation is a source/content pair recovered from a tool turn. PageContent
// has its backslash escapes decoded, so `\n` becomes a newline and `\\` a
// single backslash; it is not the raw matched text.
type Citation struct {
	Source      *string        `json:"source"`
	PageContent string         `json:"page_content"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	GroupID     string         `json:"message_id,omitempty"`
}

// SkippedElement records one context element that did not yield a citation.
type SkippedElement struct {
	Index  int
	Reason SkipReason
	Err    error
}

// Extraction is the full outcome of parsing one tool payload.
type Extraction struct {
	Citations []Citation
	Skipped   []SkippedElement
}

// Recorder observes parser outcomes, typically for metrics.
type Recorder interface {
	CitationsExtracted(count int)
	CitationSkipped(reason string)
}

type nopRecorder struct{}

func (nopRecorder) CitationsExtracted(int) {}
func (nopRecorder) CitationSkipped(string) {}

// Parser turns tool turn payloads into citations. It is safe for concurrent use.
type Parser struct {
	log          zerolog.Logger
	recentWindow int
	recorder     Recorder
}

// NewParser creates a parser. recentWindow is the number of trailing run turns
// Recent inspects; values below one fall back to 2.
func NewParser(log zerolog.Logger, recentWindow int, recorder Recorder) *Parser {
	if recentWindow < 1 {
		recentWindow = 2
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Parser{
		log:          log.With().Str("component", "citation-parser").Logger(),
		recentWindow: recentWindow,
		recorder:     recorder,
	}
}

// Parse decodes the JSON envelope and extracts every citation from its
// context list. Only ErrMalformedEnvelope is returned; per-element failures
// are reported in Extraction.Skipped.
func (p *Parser) Parse(content string) (Extraction, error) {
	var envelope map[string]any
	if err := json.Unmarshal([]byte(content), &envelope); err != nil {
		return Extraction{}, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	if envelope == nil {
		return Extraction{}, fmt.Errorf("%w: envelope is not an object", ErrMalformedEnvelope)
	}

	elements, ok := envelope[contextField].([]any)
	if !ok {
		return Extraction{}, nil
	}

	var result Extraction
	for i, element := range elements {
		text, ok := element.(string)
		if !ok {
			result.Skipped = append(result.Skipped, SkippedElement{
				Index:  i,
				Reason: SkipNotString,
				Err:    fmt.Errorf("%w: element is %T", ErrCitationSkip, element),
			})
			continue
		}

		matches := documentPattern.FindAllStringSubmatch(text, -1)
		if len(matches) == 0 {
			result.Skipped = append(result.Skipped, SkippedElement{Index: i, Reason: SkipNoMatch})
			continue
		}

		for _, match := range matches {
			metadata, err := parseMetadata(match[1])
			if err != nil {
				result.Skipped = append(result.Skipped, SkippedElement{
					Index:  i,
					Reason: SkipBadMetadata,
					Err:    fmt.Errorf("%w: %v", ErrCitationSkip, err),
				})
				continue
			}

			raw := match[2]
			if raw == "" && match[3] != "" {
				raw = match[3]
			}
			result.Citations = append(result.Citations, Citation{
				Source:      sourceOf(metadata),
				PageContent: unescapeLiteral(raw),
				Metadata:    metadata,
			})
		}
	}
	return result, nil
}

// Extract is Parse with every failure absorbed: a malformed envelope or a bad
// element is logged and yields fewer citations, never an error.
func (p *Parser) Extract(content string) []Citation {
	result, err := p.Parse(content)
	if err != nil {
		p.log.Warn().Err(err).Msg("tool payload is not a JSON envelope, no citations")
		p.recorder.CitationSkipped(string(SkipMalformedEnvelope))
		return nil
	}

	for _, skipped := range result.Skipped {
		p.recorder.CitationSkipped(string(skipped.Reason))
		event := p.log.Debug()
		if skipped.Reason == SkipBadMetadata {
			event = p.log.Warn()
		}
		event.Int("element", skipped.Index).
			Str("reason", string(skipped.Reason)).
			AnErr("cause", skipped.Err).
			Msg("context element skipped")
	}
	p.recorder.CitationsExtracted(len(result.Citations))
	return result.Citations
}

// FromTurn extracts citations from a stored tool turn and tags each with the
// turn's group id. Non-tool turns yield nothing.
func (p *Parser) FromTurn(turn conversation.Turn) []Citation {
	if turn.Role != conversation.RoleTool {
		return nil
	}
	citations := p.Extract(turn.Content)
	for i := range citations {
		citations[i].GroupID = turn.GroupID
	}
	return citations
}

// Recent extracts citations for an immediate response. Only the last tool
// turn among the final recentWindow turns of the run is considered.
func (p *Parser) Recent(run []conversation.RawTurn) []Citation {
	floor := len(run) - p.recentWindow
	if floor < 0 {
		floor = 0
	}
	for i := len(run) - 1; i >= floor; i-- {
		if run[i].Role == conversation.RoleTool {
			return p.Extract(run[i].Content)
		}
	}
	return nil
}

// parseMetadata evaluates the captured metadata body as a literal dict. Line
// breaks are dropped and backslashes taken literally so Windows paths in
// source names survive.
func parseMetadata(body string) (map[string]any, error) {
	body = strings.ReplaceAll(body, `\`, `\\`)
	body = strings.NewReplacer("\r", "", "\n", "").Replace(body)

	value, err := ParseLiteral("{" + body + "}")
	if err != nil {
		return nil, err
	}
	metadata, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: metadata is %T, not a dict", ErrNotLiteral, value)
	}
	return metadata, nil
}

func sourceOf(metadata map[string]any) *string {
	raw, ok := metadata["source"]
	if !ok || raw == nil {
		return nil
	}
	source, ok := raw.(string)
	if !ok {
		source = fmt.Sprint(raw)
	}
	return &source
}

// unescapeLiteral resolves backslash escapes in quoted page content. Content
// with a broken escape is returned unchanged.
func unescapeLiteral(raw string) string {
	if !strings.Contains(raw, `\`) {
		return raw
	}
	p := &literalParser{src: raw}
	var b strings.Builder
	for p.pos < len(p.src) {
		if p.src[p.pos] == '\\' {
			if err := p.escape(&b); err != nil {
				return raw
			}
			continue
		}
		r, size := utf8.DecodeRuneInString(p.src[p.pos:])
		b.WriteRune(r)
		p.pos += size
	}
	return b.String()
}
