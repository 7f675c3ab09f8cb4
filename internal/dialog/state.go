// Package dialog implements the therapeutic conversation engine: input
// analysis, the conversation state machine, and template-based responses.
package dialog

// State identifies where a therapeutic session currently is.
type State string

const (
	StateGreeting           State = "greeting"
	StateAssessment         State = "assessment"
	StateMemoryExercise     State = "memory_exercise"
	StateEmotionalSupport   State = "emotional_support"
	StateCognitiveTraining  State = "cognitive_training"
	StateMedicationReminder State = "medication_reminder"
	StateFamilyInteraction  State = "family_interaction"
	StateCrisisIntervention State = "crisis_intervention"
	StateClosing            State = "closing"
)

// AllStates lists every state in declaration order.
var AllStates = []State{
	StateGreeting,
	StateAssessment,
	StateMemoryExercise,
	StateEmotionalSupport,
	StateCognitiveTraining,
	StateMedicationReminder,
	StateFamilyInteraction,
	StateCrisisIntervention,
	StateClosing,
}

// Valid reports whether s is one of the known states.
func (s State) Valid() bool {
	for _, known := range AllStates {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether the state has no outgoing transitions.
func (s State) Terminal() bool { return s == StateClosing }

// InputSignals is the structured result of analyzing one patient turn.
type InputSignals struct {
	EmotionalTone   string   `json:"emotional_tone"`
	CognitiveLoad   float64  `json:"cognitive_load"`
	CrisisDetected  bool     `json:"crisis_detected"`
	Topics          []string `json:"topics"`
	EngagementLevel float64  `json:"engagement_level"`
	Confidence      float64  `json:"confidence"`
}

// HasTopic reports whether the named topic was detected.
func (s InputSignals) HasTopic(topic string) bool {
	for _, t := range s.Topics {
		if t == topic {
			return true
		}
	}
	return false
}
