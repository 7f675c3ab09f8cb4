package memory

import (
	"context"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/munes-ai/munes/internal/gemma"
)

const queryCacheSize = 256

// QueryAnalyzer turns a free-text query plus a context type into a structured
// QueryContext. The primary path delegates to the generation service and
// parses its reply with fixed keyword tables; the fallback is fully
// deterministic. Results are memoized: the analysis is pure given the same
// inputs and the same service reply, so caching only spares round-trips.
type QueryAnalyzer struct {
	svc    gemma.Service
	cache  *lru.Cache[queryKey, QueryContext]
	logger *zap.Logger
}

type queryKey struct {
	query       string
	contextType string
}

func NewQueryAnalyzer(svc gemma.Service, logger *zap.Logger) *QueryAnalyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	cache, _ := lru.New[queryKey, QueryContext](queryCacheSize)
	return &QueryAnalyzer{svc: svc, cache: cache, logger: logger}
}

func (a *QueryAnalyzer) Analyze(ctx context.Context, query, contextType string) QueryContext {
	key := queryKey{query: query, contextType: contextType}
	if qc, ok := a.cache.Get(key); ok {
		return qc
	}

	qc := a.analyze(ctx, query, contextType)
	a.cache.Add(key, qc)
	return qc
}

func (a *QueryAnalyzer) analyze(ctx context.Context, query, contextType string) QueryContext {
	if a.svc != nil {
		analysis, err := a.svc.GenerateText(ctx, gemma.QueryPrompt(query, contextType), "")
		if err == nil && strings.TrimSpace(analysis) != "" {
			return parseQueryAnalysis(analysis, query)
		}
		if err != nil {
			a.logger.Debug("query analysis fell back", zap.Error(err))
		}
	}
	return fallbackQueryContext(query, contextType)
}

// parseQueryAnalysis maps the service's free-text reply onto the structured
// filter via fixed keyword tables. Keywords always come from the original
// query, not the analysis.
func parseQueryAnalysis(analysis, query string) QueryContext {
	lower := strings.ToLower(analysis)

	var types []Type
	if containsAny(lower, "شخصية", "عائلة", "personal", "family") {
		types = append(types, TypeEpisodic)
	}
	if containsAny(lower, "عملية", "مهارة", "procedural", "skill") {
		types = append(types, TypeProcedural)
	}
	if containsAny(lower, "عامة", "معلومات", "semantic", "general") {
		types = append(types, TypeSemantic)
	}
	if len(types) == 0 {
		types = []Type{TypeEpisodic, TypeSemantic, TypeProcedural}
	}

	return QueryContext{
		Keywords:         queryKeywords(query),
		MemoryTypes:      types,
		EmotionalContext: extractEmotion(lower),
		TimeFrame:        extractTimeFrame(lower),
		MediaPreference:  extractMediaPreference(lower),
	}
}

// fallbackQueryContext is the deterministic path used when the service is
// unavailable or its output is unparsable.
func fallbackQueryContext(query, contextType string) QueryContext {
	var types []Type
	switch contextType {
	case "personal", "family":
		types = []Type{TypeEpisodic}
	case "work":
		types = []Type{TypeProcedural, TypeSemantic}
	case "health":
		types = []Type{TypeSemantic, TypeEpisodic}
	default:
		types = []Type{TypeEpisodic, TypeSemantic, TypeProcedural}
	}

	return QueryContext{
		Keywords:         queryKeywords(query),
		MemoryTypes:      types,
		EmotionalContext: EmotionNeutral,
		TimeFrame:        TimeFrameAny,
		MediaPreference:  MediaAny,
	}
}

// queryKeywords keeps tokens longer than two characters.
func queryKeywords(query string) []string {
	var keywords []string
	for _, tok := range strings.Fields(query) {
		tok = strings.TrimSpace(tok)
		if len([]rune(tok)) > 2 {
			keywords = append(keywords, tok)
		}
	}
	return keywords
}

func extractEmotion(lower string) Emotion {
	switch {
	case containsAny(lower, "إيجابي", "سعيد", "فرح", "positive", "happy", "joy"):
		return EmotionPositive
	case containsAny(lower, "سلبي", "حزين", "غضب", "negative", "sad", "anger"):
		return EmotionNegative
	default:
		return EmotionNeutral
	}
}

func extractTimeFrame(lower string) TimeFrame {
	switch {
	case containsAny(lower, "حديث", "مؤخراً", "recent", "lately", "recently"):
		return TimeFrameRecent
	case containsAny(lower, "قديم", "سابق", "old", "past", "previous"):
		return TimeFrameOld
	case containsAny(lower, "طفولة", "صغر", "childhood", "young"):
		return TimeFrameChildhood
	default:
		return TimeFrameAny
	}
}

func extractMediaPreference(lower string) MediaPreference {
	switch {
	case containsAny(lower, "صورة", "صور", "image", "photo", "visual"):
		return MediaImage
	case containsAny(lower, "صوت", "أصوات", "audio", "sound", "voice"):
		return MediaAudio
	default:
		return MediaAny
	}
}

func containsAny(haystack string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
