package dialog

// defaultProgression drives the session forward once enough turns have
// accumulated and no topic pulls the conversation elsewhere. States missing
// from the table hold their position.
var defaultProgression = map[State]State{
	StateGreeting:          StateAssessment,
	StateAssessment:        StateCognitiveTraining,
	StateCognitiveTraining: StateMemoryExercise,
	StateMemoryExercise:    StateEmotionalSupport,
	StateEmotionalSupport:  StateClosing,
}

// Next computes the state for the upcoming turn. It is pure: the same
// inputs always yield the same state. Priority, highest first:
//
//  1. crisis detected
//  2. memory topic (unless already exercising memory)
//  3. emotions topic with negative or anxious tone
//  4. health topic
//  5. family topic
//  6. cognitive load above 0.7 triggers assessment
//  7. default progression once past six turns
//  8. stay put
//
// Closing is terminal; only a crisis can pull a session out of it.
func Next(current State, sig InputSignals, turnCount int) State {
	if sig.CrisisDetected {
		return StateCrisisIntervention
	}
	if current == StateClosing {
		return StateClosing
	}

	if sig.HasTopic("memory") && current != StateMemoryExercise {
		return StateMemoryExercise
	}
	if sig.HasTopic("emotions") && (sig.EmotionalTone == "negative" || sig.EmotionalTone == "anxious") {
		return StateEmotionalSupport
	}
	if sig.HasTopic("health") {
		return StateMedicationReminder
	}
	if sig.HasTopic("family") {
		return StateFamilyInteraction
	}
	if sig.CognitiveLoad > 0.7 {
		return StateAssessment
	}

	if turnCount > 6 {
		if next, ok := defaultProgression[current]; ok {
			return next
		}
	}
	return current
}

// LegalTransition reports whether moving from to next is a jump the engine
// itself could produce. Session bookkeeping checks recorded paths against
// this table and clamps violations rather than crashing.
func LegalTransition(from, to State) bool {
	if from == to {
		return true
	}
	if from == StateClosing {
		// Terminal except for a crisis escalation.
		return to == StateCrisisIntervention
	}
	// Signal-driven targets are reachable from any live state.
	switch to {
	case StateCrisisIntervention, StateMemoryExercise, StateEmotionalSupport,
		StateMedicationReminder, StateFamilyInteraction, StateAssessment:
		return true
	}
	return defaultProgression[from] == to
}
