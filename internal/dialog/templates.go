package dialog

import "time"

// Per-state response templates. Selection is deterministic: template index
// is turnCount modulo the table length, so sessions cycle through variants
// instead of repeating one line.
var stateTemplates = map[State][]string{
	StateGreeting: {
		"أهلاً وسهلاً! كيف حالك اليوم؟",
		"مرحباً! أتمنى أن تكون في حالة جيدة.",
		"صباح الخير! كيف تشعر اليوم؟",
	},
	StateAssessment: {
		"حدثني أكثر عن يومك. كيف كانت الأمور؟",
		"أريد أن أفهم حالتك أكثر. هل تشعر بالراحة الآن؟",
	},
	StateMemoryExercise: {
		"دعنا نتذكر شيئاً جميلاً من الماضي.",
		"هل تتذكر مكاناً كان يجعلك سعيداً؟",
		"حدثني عن ذكرى جميلة تحتفظ بها.",
	},
	StateEmotionalSupport: {
		"أفهم مشاعرك. هذا طبيعي تماماً.",
		"أنت لست وحدك في هذا. نحن هنا لمساعدتك.",
		"مشاعرك مهمة ومفهومة. دعنا نتحدث عنها.",
	},
	StateCognitiveTraining: {
		"دعنا نقوم بتمرين بسيط للذهن.",
		"ما رأيك في لعبة صغيرة لتحفيز الذاكرة؟",
		"هل تريد أن نمارس بعض التمارين المفيدة؟",
	},
	StateMedicationReminder: {
		"هل تناولت دواءك اليوم؟ صحتك تهمنا.",
		"دعنا نتأكد من مواعيد الدواء معاً.",
	},
	StateFamilyInteraction: {
		"عائلتك تحبك كثيراً. حدثني عنهم.",
		"هل تحدثت مع أحد من العائلة اليوم؟",
	},
	StateCrisisIntervention: {
		"أنا هنا معك الآن. خذ نفساً عميقاً، كل شيء سيكون بخير.",
		"لا تقلق، لن أتركك وحدك. هل تريد أن أتصل بأحد من عائلتك؟",
	},
	StateClosing: {
		"سعدت بحديثنا اليوم. اعتن بنفسك.",
		"إلى اللقاء! أتطلع لحديثنا القادم.",
	},
}

var fallbackTemplate = "كيف يمكنني مساعدتك اليوم؟"

// tonePrefixes soften the template when the patient's tone calls for it.
var tonePrefixes = map[string]string{
	"negative": "أعلم أن الأمور قد تبدو صعبة أحياناً. ",
	"anxious":  "لا تقلق، كل شيء سيكون بخير. ",
	"positive": "يسعدني أن أراك في حالة جيدة! ",
}

// MemoryTriggers prompts offered during memory exercises.
var MemoryTriggers = []string{
	"عائلتك",
	"منزل طفولتك",
	"عملك السابق",
	"أصدقاء قدامى",
	"مناسبات سعيدة",
}

var negativeToneSuggestions = []string{
	"تمارين التنفس العميق",
	"الاستماع للموسيقى المفضلة",
	"النظر إلى الصور العائلية",
}

var highLoadSuggestions = []string{
	"أخذ استراحة قصيرة",
	"شرب كوب من الماء",
	"التركيز على التنفس",
}

// TemplateResponse renders the deterministic fallback reply for a state.
func TemplateResponse(state State, tone string, turnCount int) string {
	templates, ok := stateTemplates[state]
	if !ok || len(templates) == 0 {
		templates = []string{fallbackTemplate}
	}
	idx := turnCount % len(templates)
	if idx < 0 {
		idx += len(templates)
	}
	return tonePrefixes[tone] + templates[idx]
}

// TherapeuticSuggestions returns coping suggestions warranted by the turn's
// signals: grounding exercises for negative tone, rest cues for high load.
func TherapeuticSuggestions(sig InputSignals) []string {
	var out []string
	if sig.EmotionalTone == "negative" {
		out = append(out, negativeToneSuggestions...)
	}
	if sig.CognitiveLoad > 0.6 {
		out = append(out, highLoadSuggestions...)
	}
	return out
}

// Greeting builds the opening assistant line, varied by time of day.
func Greeting(now time.Time) string {
	timeGreeting := "مساء الخير"
	if now.Hour() < 12 {
		timeGreeting = "صباح الخير"
	}
	variants := []string{
		timeGreeting + "! كيف حالك اليوم؟",
		timeGreeting + "! أتمنى أن تكون في أحسن حال.",
		timeGreeting + "! كيف تشعر اليوم؟",
	}
	return variants[now.Minute()%len(variants)]
}
