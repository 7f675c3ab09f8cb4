package dialog

// Keyword tables driving input analysis. All matching is case-insensitive
// substring matching against lowercased text; Arabic needs no case folding
// but English indicator words do.

// Emotional tones in detection priority order: the first set with a match
// wins, so positive statements that also mention sadness are still read as
// the dominant term listed first.
var toneOrder = []string{"positive", "negative", "anxious", "confused", "angry", "neutral"}

var toneIndicators = map[string][]string{
	"positive": {"إيجابي", "سعيد", "مرتاح", "جيد", "ممتاز", "رائع", "positive", "happy", "comfortable", "good", "great", "wonderful"},
	"negative": {"سلبي", "حزين", "مكتئب", "سيء", "تعب", "negative", "sad", "depressed", "bad", "tired"},
	"anxious":  {"قلق", "متوتر", "خائف", "anxious", "worried", "fearful", "afraid", "nervous"},
	"confused": {"مرتبك", "مشوش", "لا أعرف", "confused", "disoriented", "don't know"},
	"angry":    {"غاضب", "منزعج", "angry", "frustrated"},
	"neutral":  {"محايد", "عادي", "neutral", "normal"},
}

// Topic labels and their trigger keywords.
var topicIndicators = map[string][]string{
	"family":           {"عائلة", "أسرة", "زوج", "زوجة", "أطفال", "family", "spouse", "children"},
	"health":           {"صحة", "دواء", "طبيب", "مرض", "health", "medicine", "doctor", "illness"},
	"memory":           {"ذاكرة", "تذكر", "نسيان", "memory", "remember", "forget"},
	"daily_activities": {"أكل", "نوم", "استحمام", "eat", "sleep", "shower", "daily"},
	"emotions":         {"مشاعر", "حزن", "فرح", "emotions", "feelings", "sad", "happy"},
}

// topicOrder fixes the output ordering of detected topics.
var topicOrder = []string{"family", "health", "memory", "daily_activities", "emotions"}

// Distress and self-harm indicators. Matching any of these, in the raw
// input or in the analysis text, escalates to crisis intervention.
var crisisIndicators = []string{
	"أزمة", "مساعدة", "خطر", "ألم",
	"crisis", "help", "emergency", "pain",
	"لا أستطيع", "أريد أن أموت",
	"can't", "want to die",
}

var affirmativeWords = []string{"نعم", "أريد", "yes", "want", "like"}

var complexityIndicators = []string{"لا أستطيع", "صعب", "مشكلة", "can't", "difficult", "problem"}
