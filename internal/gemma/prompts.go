package gemma

import (
	"fmt"
	"strings"
)

// Prompt builders mirror the therapeutic Arabic prompts the assistant uses.
// Analyzers parse the replies with fixed keyword tables, so the prompts ask
// for short labelled answers rather than free-form JSON.

// SystemPersona is the assistant persona sent with response generation.
const SystemPersona = "أنت مساعد ذكي متخصص في رعاية مرضى الزهايمر. تفاعل بشكل علاجي ومفيد، وكن دافئاً ومتفهماً، واستخدم لغة بسيطة وواضحة."

func yesNo(b bool, yes string) string {
	if b {
		return yes
	}
	return "لا"
}

// ImportancePrompt asks for an overall importance score for a new memory.
func ImportancePrompt(content, emotionalContext string, hasImage, hasAudio bool) string {
	var b strings.Builder
	b.WriteString("تحليل أهمية الذكرى للمريض:\n\n")
	fmt.Fprintf(&b, "المحتوى: %s\n", content)
	fmt.Fprintf(&b, "السياق العاطفي: %s\n", emotionalContext)
	fmt.Fprintf(&b, "وسائط مرفقة: %s, %s\n\n", yesNo(hasImage, "صورة"), yesNo(hasAudio, "صوت"))
	b.WriteString("قم بتقييم الأهمية العاطفية والأهمية للحياة اليومية والقابلية للتذكر،\n")
	b.WriteString("واكتب تحليلاً مختصراً وأعط درجة أهمية إجمالية (0-1):")
	return b.String()
}

// QueryPrompt asks the service to characterize a memory-retrieval query.
func QueryPrompt(query, contextType string) string {
	var b strings.Builder
	b.WriteString("تحليل استعلام البحث عن الذكريات:\n\n")
	fmt.Fprintf(&b, "الاستعلام: %s\n", query)
	fmt.Fprintf(&b, "نوع السياق: %s\n\n", contextType)
	b.WriteString("حدد نوع الذكرى المطلوبة (شخصية، عملية، عامة)، والإطار الزمني المحتمل،\n")
	b.WriteString("والسياق العاطفي المطلوب، ونوع الوسائط المفيدة (صور، صوت).\n")
	b.WriteString("اكتب تحليلاً مختصراً:")
	return b.String()
}

// InputAnalysisPrompt asks for turn-level signals about patient input.
func InputAnalysisPrompt(inputText string, hasAudio, hasImage bool) string {
	var b strings.Builder
	b.WriteString("تحليل مدخلات المريض في جلسة علاجية:\n\n")
	fmt.Fprintf(&b, "النص: %s\n", inputText)
	fmt.Fprintf(&b, "وسائط إضافية: %s, %s\n\n", yesNo(hasAudio, "صوت"), yesNo(hasImage, "صورة"))
	b.WriteString("حلل الحالة العاطفية (إيجابي، سلبي، قلق، حزن، فرح، غضب)،\n")
	b.WriteString("ومستوى الوضوح المعرفي (0-1)، وعلامات الارتباك،\n")
	b.WriteString("والمواضيع المذكورة، وعلامات الضيق أو الأزمة، ومستوى المشاركة.\n")
	b.WriteString("اكتب تحليلاً مفصلاً:")
	return b.String()
}

// SuggestionPrompt asks which stored memories could help the given context.
func SuggestionPrompt(context string) string {
	var b strings.Builder
	b.WriteString("اقتراح ذكريات مفيدة للسياق الحالي:\n\n")
	fmt.Fprintf(&b, "السياق: %s\n\n", context)
	b.WriteString("ما هي الذكريات التي قد تكون مفيدة أو ذات صلة؟\n")
	b.WriteString("فكر في الأنشطة المشابهة والأشخاص المرتبطين والأماكن ذات الصلة:")
	return b.String()
}

// ResponsePrompt composes the full therapeutic response request.
func ResponsePrompt(state, tone string, cognitiveLoad float64, topics []string, conversation, memoryContext string) string {
	var b strings.Builder
	b.WriteString("السياق:\n")
	fmt.Fprintf(&b, "حالة المحادثة: %s\n", state)
	fmt.Fprintf(&b, "الحالة العاطفية للمريض: %s\n", tone)
	fmt.Fprintf(&b, "مستوى الضغط المعرفي: %.1f\n", cognitiveLoad)
	fmt.Fprintf(&b, "المواضيع المذكورة: %s\n\n", strings.Join(topics, ", "))
	b.WriteString("المحادثة الحديثة:\n")
	b.WriteString(conversation)
	if memoryContext != "" {
		b.WriteString("\n\nذكريات ذات صلة:\n")
		b.WriteString(memoryContext)
	}
	b.WriteString("\n\nاكتب رداً علاجياً مناسباً: كن دافئاً ومتفهماً، وقدم الدعم العاطفي المناسب،\n")
	b.WriteString("واقترح أنشطة أو تمارين مفيدة إذا كان مناسباً، وتجنب المعلومات المعقدة أو المربكة.")
	return b.String()
}
