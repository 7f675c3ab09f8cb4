package dialog

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/munes-ai/munes/internal/gemma"
)

// clarityPattern pulls a numeric clarity hint out of the analysis text,
// e.g. «مستوى الوضوح المعرفي: 0.7» or «وضوح 7/10».
var clarityPattern = regexp.MustCompile(`وضوح.*?([0-9]*\.?[0-9]+)`)

// Analyzer turns one raw patient utterance into InputSignals. The primary
// path asks the generation service for an Arabic analysis and parses it with
// fixed keyword tables; when the service is unavailable the same tables run
// against the raw input directly.
type Analyzer struct {
	svc    gemma.Service
	logger *zap.Logger
}

func NewAnalyzer(svc gemma.Service, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{svc: svc, logger: logger}
}

func (a *Analyzer) Analyze(ctx context.Context, rawInput, audioRef, imageRef string) InputSignals {
	if a.svc != nil {
		prompt := gemma.InputAnalysisPrompt(rawInput, audioRef != "", imageRef != "")
		var (
			reply string
			err   error
		)
		if audioRef != "" || imageRef != "" {
			reply, err = a.svc.GenerateMultimodal(ctx, prompt, imageRef, audioRef)
		} else {
			reply, err = a.svc.GenerateText(ctx, prompt, gemma.SystemPersona)
		}
		if err == nil {
			return parseAnalysis(reply, rawInput)
		}
		a.logger.Warn("input analysis failed, using keyword fallback", zap.Error(err))
	}
	return fallbackAnalysis(rawInput)
}

// parseAnalysis extracts signals from the service's free-form analysis.
// Tone and crisis cues are read from the analysis text; topics, engagement
// and crisis cues also consider the raw input itself.
func parseAnalysis(analysis, rawInput string) InputSignals {
	lowAnalysis := strings.ToLower(analysis)
	lowInput := strings.ToLower(rawInput)

	tone := "neutral"
	for _, name := range toneOrder {
		if containsAny(lowAnalysis, toneIndicators[name]) {
			tone = name
			break
		}
	}

	clarity := 0.7
	if m := clarityPattern.FindStringSubmatch(analysis); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			if v > 1 {
				v /= 10
			}
			clarity = clampUnit(v)
		}
	}

	crisis := containsAny(lowInput, crisisIndicators) || containsAny(lowAnalysis, crisisIndicators)

	engagement := float64(len(strings.Fields(rawInput))) / 20
	if containsAny(lowInput, affirmativeWords) {
		engagement += 0.2
	}

	return InputSignals{
		EmotionalTone:   tone,
		CognitiveLoad:   clampUnit(1 - clarity),
		CrisisDetected:  crisis,
		Topics:          detectTopics(lowInput),
		EngagementLevel: clampUnit(engagement),
		Confidence:      0.8,
	}
}

// fallbackAnalysis applies the keyword tables directly to the raw input.
func fallbackAnalysis(rawInput string) InputSignals {
	low := strings.ToLower(rawInput)

	tone := "neutral"
	for _, name := range toneOrder {
		if containsAny(low, toneIndicators[name]) {
			tone = name
			break
		}
	}

	load := 0.3
	if containsAny(low, complexityIndicators) {
		load = 0.7
	}

	engagement := float64(len(strings.Fields(rawInput))) / 15
	if containsAny(low, affirmativeWords) {
		engagement += 0.2
	}

	return InputSignals{
		EmotionalTone:   tone,
		CognitiveLoad:   load,
		CrisisDetected:  containsAny(low, crisisIndicators),
		Topics:          detectTopics(low),
		EngagementLevel: clampUnit(engagement),
		Confidence:      0.6,
	}
}

func detectTopics(lowInput string) []string {
	var topics []string
	for _, topic := range topicOrder {
		if containsAny(lowInput, topicIndicators[topic]) {
			topics = append(topics, topic)
		}
	}
	return topics
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, strings.ToLower(n)) {
			return true
		}
	}
	return false
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
