package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/munes-ai/munes/internal/dialog"
	"github.com/munes-ai/munes/internal/gemma"
	"github.com/munes-ai/munes/internal/memory"
	"github.com/munes-ai/munes/internal/observability"
	"github.com/munes-ai/munes/internal/policy"
)

// liveSession wraps a session with its own lock: turns within one session
// are strictly sequential, sessions across patients run concurrently.
type liveSession struct {
	mu           sync.Mutex
	s            *Session
	lastActivity time.Time
	ended        bool
}

// Manager runs the per-turn therapeutic pipeline and owns the live session
// table.
type Manager struct {
	mu      sync.RWMutex
	live    map[string]*liveSession
	history []*Session

	analyzer    *dialog.Analyzer
	store       *memory.Store
	svc         gemma.Service
	scorer      Scorer
	persister   Persister
	logger      *zap.Logger
	metrics     *observability.Metrics
	idleTimeout time.Duration

	now func() time.Time
}

type ManagerConfig struct {
	Analyzer    *dialog.Analyzer
	Store       *memory.Store
	Service     gemma.Service
	Scorer      Scorer
	Persister   Persister
	Logger      *zap.Logger
	Metrics     *observability.Metrics
	IdleTimeout time.Duration
}

func NewManager(cfg ManagerConfig) *Manager {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Scorer == nil {
		cfg.Scorer = HeuristicScorer{}
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 30 * time.Minute
	}
	return &Manager{
		live:        make(map[string]*liveSession),
		analyzer:    cfg.Analyzer,
		store:       cfg.Store,
		svc:         cfg.Service,
		scorer:      cfg.Scorer,
		persister:   cfg.Persister,
		logger:      cfg.Logger,
		metrics:     cfg.Metrics,
		idleTimeout: cfg.IdleTimeout,
		now:         time.Now,
	}
}

// StartSession creates a session in the greeting state and appends the
// opening assistant turn.
func (m *Manager) StartSession(ctx context.Context, patientID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	now := m.now()
	s := &Session{
		ID:               uuid.NewString(),
		PatientID:        patientID,
		StartTime:        now,
		StatesVisited:    []dialog.State{dialog.StateGreeting},
		AssessmentScores: make(map[string]float64),
	}
	s.Turns = append(s.Turns, Turn{
		Timestamp:     now,
		Speaker:       SpeakerAssistant,
		Content:       dialog.Greeting(now),
		EmotionalTone: "warm",
		CognitiveLoad: 0.1,
		Confidence:    1.0,
	})

	m.mu.Lock()
	m.live[s.ID] = &liveSession{s: s, lastActivity: now}
	count := len(m.live)
	m.mu.Unlock()

	m.metrics.SetLiveSessions(count)
	m.logger.Info("session started",
		zap.String("session_id", s.ID),
		zap.String("patient_id", patientID))
	return s.ID, nil
}

func (m *Manager) lookup(sessionID string) (*liveSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ls, ok := m.live[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return ls, nil
}

// ProcessInput runs one patient turn through analysis, state transition,
// memory retrieval, and response generation.
func (m *Manager) ProcessInput(ctx context.Context, sessionID, text, audioRef, imageRef string) (TurnResult, error) {
	ls, err := m.lookup(sessionID)
	if err != nil {
		return TurnResult{}, err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()
	if ls.ended {
		return TurnResult{}, ErrSessionNotFound
	}

	start := m.now()
	s := ls.s
	sig := m.analyzer.Analyze(ctx, text, audioRef, imageRef)

	current := s.CurrentState()
	newState := dialog.Next(current, sig, len(s.Turns))
	if !dialog.LegalTransition(current, newState) {
		m.logger.Warn("illegal state transition clamped",
			zap.String("session_id", s.ID),
			zap.String("from", string(current)),
			zap.String("to", string(newState)))
		newState = current
	}
	if newState != current {
		s.StatesVisited = append(s.StatesVisited, newState)
	}
	if sig.CrisisDetected {
		m.metrics.CrisisIntervention()
		preview, _ := policy.RedactPII(previewText(text, 80))
		m.logger.Warn("crisis intervention triggered",
			zap.String("session_id", s.ID),
			zap.String("patient_id", s.PatientID),
			zap.String("input_preview", preview))
	}

	s.Turns = append(s.Turns, Turn{
		Timestamp:     start,
		Speaker:       SpeakerPatient,
		Content:       text,
		AudioRef:      audioRef,
		ImageRef:      imageRef,
		EmotionalTone: sig.EmotionalTone,
		CognitiveLoad: sig.CognitiveLoad,
		Confidence:    sig.Confidence,
	})

	memoryContext := m.memoryContext(ctx, text, sig)
	response, generated := m.generateResponse(ctx, s, sig, newState, memoryContext)

	end := m.now()
	assistantLoad, assistantConfidence := 0.2, 0.6
	if generated {
		assistantLoad, assistantConfidence = 0.3, 0.8
	}
	s.Turns = append(s.Turns, Turn{
		Timestamp:           end,
		Speaker:             SpeakerAssistant,
		Content:             response,
		EmotionalTone:       "supportive",
		CognitiveLoad:       assistantLoad,
		ResponseTimeSeconds: end.Sub(start).Seconds(),
		Confidence:          assistantConfidence,
	})

	updates := m.recordOutcomes(s, sig, newState, end)
	ls.lastActivity = end
	m.metrics.TurnProcessed(string(newState))

	var triggers []string
	if newState == dialog.StateMemoryExercise {
		triggers = append(triggers, dialog.MemoryTriggers...)
	}

	return TurnResult{
		ResponseText:           response,
		NewState:               newState,
		TherapeuticSuggestions: dialog.TherapeuticSuggestions(sig),
		MemoryTriggers:         triggers,
		AssessmentUpdates:      updates,
		EmotionDetected:        sig.EmotionalTone,
		CognitiveLoad:          sig.CognitiveLoad,
		SessionProgress:        progressOf(s, end),
	}, nil
}

// memoryContext retrieves memories relevant to the patient's input when any
// topic was detected, as a bullet list. The generation prompt supplies the
// section header.
func (m *Manager) memoryContext(ctx context.Context, text string, sig dialog.InputSignals) string {
	if m.store == nil || len(sig.Topics) == 0 {
		return ""
	}
	memories, err := m.store.Retrieve(ctx, text, "therapeutic", 2, true)
	if err != nil || len(memories) == 0 {
		if err != nil {
			m.logger.Warn("memory retrieval failed", zap.Error(err))
		}
		return ""
	}
	var b strings.Builder
	for _, mem := range memories {
		content := mem.Content
		if runes := []rune(content); len(runes) > 100 {
			content = string(runes[:100]) + "..."
		}
		fmt.Fprintf(&b, "- %s\n", content)
	}
	return b.String()
}

// generateResponse asks the generation service for a therapeutic reply and
// falls back to the state's template on any failure. The second return
// value reports whether the service produced the text.
func (m *Manager) generateResponse(ctx context.Context, s *Session, sig dialog.InputSignals, state dialog.State, memoryContext string) (string, bool) {
	if m.svc != nil {
		prompt := gemma.ResponsePrompt(string(state), sig.EmotionalTone, sig.CognitiveLoad,
			sig.Topics, recentConversation(s.Turns, 4), memoryContext)
		reply, err := m.svc.GenerateText(ctx, prompt, gemma.SystemPersona)
		if err == nil && strings.TrimSpace(reply) != "" {
			return reply, true
		}
		if err != nil {
			m.logger.Warn("response generation failed, using template",
				zap.String("session_id", s.ID), zap.Error(err))
		}
		m.metrics.GenerationFallback()
	}
	return dialog.TemplateResponse(state, sig.EmotionalTone, len(s.Turns)), false
}

func recentConversation(turns []Turn, n int) string {
	if len(turns) > n {
		turns = turns[len(turns)-n:]
	}
	var b strings.Builder
	for _, turn := range turns {
		who := "المساعد"
		if turn.Speaker == SpeakerPatient {
			who = "المريض"
		}
		fmt.Fprintf(&b, "%s: %s\n", who, turn.Content)
	}
	return b.String()
}

// recordOutcomes updates assessment scores, achieved goals, and the outcome
// time series for one turn. Returns the assessment updates, if any.
func (m *Manager) recordOutcomes(s *Session, sig dialog.InputSignals, state dialog.State, now time.Time) map[string]float64 {
	var updates map[string]float64
	if state == dialog.StateAssessment {
		updates = m.scorer.Score(sig)
		for k, v := range updates {
			s.AssessmentScores[k] = v
		}
	}

	if sig.EngagementLevel > 0.7 {
		s.GoalsAchieved = appendGoal(s.GoalsAchieved, "patient_engagement")
	}
	if sig.EmotionalTone == "positive" {
		s.GoalsAchieved = appendGoal(s.GoalsAchieved, "positive_emotional_state")
	}

	s.Outcomes.EmotionalProgression = append(s.Outcomes.EmotionalProgression,
		ToneSample{Timestamp: now, Tone: sig.EmotionalTone})
	s.Outcomes.CognitiveClarity = append(s.Outcomes.CognitiveClarity,
		ScoreSample{Timestamp: now, Value: 1 - sig.CognitiveLoad})
	s.Outcomes.EngagementLevels = append(s.Outcomes.EngagementLevels,
		ScoreSample{Timestamp: now, Value: sig.EngagementLevel})
	return updates
}

func previewText(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}

func appendGoal(goals []string, goal string) []string {
	for _, g := range goals {
		if g == goal {
			return goals
		}
	}
	return append(goals, goal)
}

// EndSession finalizes a session: persistence completes before the session
// leaves the live table, so a summary is never produced for an unsaved
// session.
func (m *Manager) EndSession(ctx context.Context, sessionID string) (Summary, error) {
	ls, err := m.lookup(sessionID)
	if err != nil {
		return Summary{}, err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()
	if ls.ended {
		return Summary{}, ErrSessionNotFound
	}

	s := ls.s
	s.EndTime = m.now()

	if m.persister != nil {
		if err := m.persister.Save(ctx, s); err != nil {
			m.metrics.PersistenceFailure()
			m.logger.Warn("session persistence failed",
				zap.String("session_id", s.ID), zap.Error(err))
		}
	}
	ls.ended = true

	m.mu.Lock()
	delete(m.live, sessionID)
	m.history = append(m.history, s)
	count := len(m.live)
	m.mu.Unlock()
	m.metrics.SetLiveSessions(count)

	progress := progressOf(s, s.EndTime)
	m.logger.Info("session ended",
		zap.String("session_id", s.ID),
		zap.Float64("duration_minutes", progress.SessionDurationMinutes),
		zap.Int("turns", progress.TotalTurns))

	return Summary{
		SessionID:        s.ID,
		PatientID:        s.PatientID,
		DurationMinutes:  progress.SessionDurationMinutes,
		TotalTurns:       len(s.Turns),
		StatesVisited:    progress.StatesVisited,
		GoalsAchieved:    append([]string(nil), s.GoalsAchieved...),
		AssessmentScores: copyScores(s.AssessmentScores),
		Outcomes:         s.Outcomes,
		Progress:         progress,
	}, nil
}

// CurrentContext returns a snapshot of a live session without mutating it.
func (m *Manager) CurrentContext(sessionID string) (ContextSnapshot, error) {
	ls, err := m.lookup(sessionID)
	if err != nil {
		return ContextSnapshot{}, err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()
	if ls.ended {
		return ContextSnapshot{}, ErrSessionNotFound
	}

	s := ls.s
	lastTone := ""
	for i := len(s.Turns) - 1; i >= 0; i-- {
		if s.Turns[i].Speaker == SpeakerPatient {
			lastTone = s.Turns[i].EmotionalTone
			break
		}
	}
	// Freeze the duration at the last activity so repeated snapshots with
	// no intervening turns are identical.
	return ContextSnapshot{
		SessionID: s.ID,
		PatientID: s.PatientID,
		State:     s.CurrentState(),
		TurnCount: len(s.Turns),
		LastTone:  lastTone,
		Progress:  progressOf(s, ls.lastActivity),
	}, nil
}

// ActiveCount reports the number of live sessions.
func (m *Manager) ActiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.live)
}

// StartJanitor ends sessions idle past the configured timeout. Expired
// sessions go through the same EndSession path, so they are persisted.
func (m *Manager) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.expireIdle(ctx)
			}
		}
	}()
}

func (m *Manager) expireIdle(ctx context.Context) {
	cutoff := m.now().Add(-m.idleTimeout)

	// Snapshot the table first: taking a session lock while holding the
	// table lock would invert EndSession's lock order.
	m.mu.RLock()
	candidates := make(map[string]*liveSession, len(m.live))
	for id, ls := range m.live {
		candidates[id] = ls
	}
	m.mu.RUnlock()

	var stale []string
	for id, ls := range candidates {
		ls.mu.Lock()
		idle := !ls.ended && ls.lastActivity.Before(cutoff)
		ls.mu.Unlock()
		if idle {
			stale = append(stale, id)
		}
	}

	for _, id := range stale {
		if _, err := m.EndSession(ctx, id); err != nil && err != ErrSessionNotFound {
			m.logger.Warn("idle session cleanup failed",
				zap.String("session_id", id), zap.Error(err))
		} else if err == nil {
			m.logger.Info("idle session ended", zap.String("session_id", id))
		}
	}
}

func copyScores(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
