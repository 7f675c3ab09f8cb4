package session

import (
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/munes-ai/munes/internal/dialog"
)

// progressOf computes the running progress metrics of a session. Engagement
// is read as the inverse of patient cognitive load: the less loaded the
// patient, the more present they are in the conversation.
func progressOf(s *Session, now time.Time) Progress {
	var patientLoads []float64
	positive := 0
	patientTurns := 0
	for _, turn := range s.Turns {
		if turn.Speaker != SpeakerPatient {
			continue
		}
		patientTurns++
		patientLoads = append(patientLoads, turn.CognitiveLoad)
		if turn.EmotionalTone == "positive" || turn.EmotionalTone == "happy" {
			positive++
		}
	}

	positivity := 0.0
	if patientTurns > 0 {
		positivity = float64(positive) / float64(patientTurns)
	}

	engagement := 0.5
	if len(patientLoads) > 0 {
		engagement = 1 - stat.Mean(patientLoads, nil)
	}

	unique := make(map[string]struct{}, len(s.StatesVisited))
	for _, st := range s.StatesVisited {
		unique[string(st)] = struct{}{}
	}
	flow := float64(len(unique)) / 5
	if flow > 1 {
		flow = 1
	}

	end := now
	if !s.EndTime.IsZero() {
		end = s.EndTime
	}

	states := make([]dialog.State, len(s.StatesVisited))
	copy(states, s.StatesVisited)

	return Progress{
		SessionDurationMinutes: end.Sub(s.StartTime).Minutes(),
		TotalTurns:             len(s.Turns),
		EmotionalPositivity:    positivity,
		AverageEngagement:      engagement,
		ConversationFlowScore:  flow,
		GoalsAchieved:          len(s.GoalsAchieved),
		StatesVisited:          states,
	}
}
