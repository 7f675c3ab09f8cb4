// Package session owns the lifecycle of therapeutic conversation sessions:
// turn processing, outcome tracking, summaries, and persistence.
package session

import (
	"errors"
	"time"

	"github.com/munes-ai/munes/internal/dialog"
)

var ErrSessionNotFound = errors.New("session not found")

type Speaker string

const (
	SpeakerPatient   Speaker = "patient"
	SpeakerAssistant Speaker = "assistant"
)

// Turn is one utterance in a session. Turns are immutable once appended.
type Turn struct {
	Timestamp           time.Time `json:"timestamp"`
	Speaker             Speaker   `json:"speaker"`
	Content             string    `json:"content"`
	AudioRef            string    `json:"audio_ref,omitempty"`
	ImageRef            string    `json:"image_ref,omitempty"`
	EmotionalTone       string    `json:"emotional_tone"`
	CognitiveLoad       float64   `json:"cognitive_load"`
	ResponseTimeSeconds float64   `json:"response_time_seconds"`
	Confidence          float64   `json:"confidence"`
}

// ToneSample records the patient's emotional tone at a point in time.
type ToneSample struct {
	Timestamp time.Time `json:"timestamp"`
	Tone      string    `json:"tone"`
}

// ScoreSample records a unit-interval score at a point in time.
type ScoreSample struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// Outcomes are the therapeutic time series accumulated over a session.
type Outcomes struct {
	EmotionalProgression []ToneSample  `json:"emotional_progression"`
	CognitiveClarity     []ScoreSample `json:"cognitive_clarity"`
	EngagementLevels     []ScoreSample `json:"engagement_levels"`
}

// Session is a complete therapeutic conversation.
type Session struct {
	ID               string             `json:"session_id"`
	PatientID        string             `json:"patient_id"`
	StartTime        time.Time          `json:"start_time"`
	EndTime          time.Time          `json:"end_time,omitempty"`
	Turns            []Turn             `json:"turns"`
	StatesVisited    []dialog.State     `json:"states_visited"`
	AssessmentScores map[string]float64 `json:"assessment_scores"`
	GoalsAchieved    []string           `json:"goals_achieved"`
	Outcomes         Outcomes           `json:"therapeutic_outcomes"`
}

// CurrentState returns the last state visited, Greeting for a fresh session.
func (s *Session) CurrentState() dialog.State {
	if len(s.StatesVisited) == 0 {
		return dialog.StateGreeting
	}
	return s.StatesVisited[len(s.StatesVisited)-1]
}

// Progress summarizes how a session is going so far.
type Progress struct {
	SessionDurationMinutes float64        `json:"session_duration_minutes"`
	TotalTurns             int            `json:"total_turns"`
	EmotionalPositivity    float64        `json:"emotional_positivity"`
	AverageEngagement      float64        `json:"average_engagement"`
	ConversationFlowScore  float64        `json:"conversation_flow_score"`
	GoalsAchieved          int            `json:"goals_achieved"`
	StatesVisited          []dialog.State `json:"states_visited"`
}

// TurnResult is what one processed patient input produces.
type TurnResult struct {
	ResponseText           string             `json:"response"`
	NewState               dialog.State       `json:"conversation_state"`
	TherapeuticSuggestions []string           `json:"therapeutic_suggestions"`
	MemoryTriggers         []string           `json:"memory_triggers"`
	AssessmentUpdates      map[string]float64 `json:"assessment_updates"`
	EmotionDetected        string             `json:"emotion_detected"`
	CognitiveLoad          float64            `json:"cognitive_load"`
	SessionProgress        Progress           `json:"session_progress"`
}

// Summary is the durable record produced when a session ends.
type Summary struct {
	SessionID        string             `json:"session_id"`
	PatientID        string             `json:"patient_id"`
	DurationMinutes  float64            `json:"duration_minutes"`
	TotalTurns       int                `json:"total_turns"`
	StatesVisited    []dialog.State     `json:"states_visited"`
	GoalsAchieved    []string           `json:"goals_achieved"`
	AssessmentScores map[string]float64 `json:"final_assessment_scores"`
	Outcomes         Outcomes           `json:"therapeutic_outcomes"`
	Progress         Progress           `json:"session_progress"`
}

// ContextSnapshot is a read-only view of a live session. Two snapshots
// taken with no intervening turns are structurally identical.
type ContextSnapshot struct {
	SessionID string       `json:"session_id"`
	PatientID string       `json:"patient_id"`
	State     dialog.State `json:"state"`
	TurnCount int          `json:"turn_count"`
	LastTone  string       `json:"last_tone"`
	Progress  Progress     `json:"progress"`
}
