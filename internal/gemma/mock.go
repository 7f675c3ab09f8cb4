package gemma

import (
	"context"
	"strings"
)

// MockService produces deterministic Arabic replies keyed on the prompt kind,
// so the full engine can run offline and tests stay reproducible.
type MockService struct{}

func NewMockService() *MockService { return &MockService{} }

func (s *MockService) GenerateText(ctx context.Context, prompt, _ string) (string, error) {
	select {
	case <-ctx.Done():
		return "", &ServiceError{Op: "generate_text", Err: ctx.Err()}
	default:
	}
	return mockReply(prompt), nil
}

func (s *MockService) GenerateMultimodal(ctx context.Context, text, _, _ string) (string, error) {
	select {
	case <-ctx.Done():
		return "", &ServiceError{Op: "generate_multimodal", Err: ctx.Err()}
	default:
	}
	return mockReply(text), nil
}

func mockReply(prompt string) string {
	switch {
	case strings.Contains(prompt, "تحليل أهمية الذكرى"):
		return "ذكرى مرتبطة بالحياة اليومية للمريض وتستحق الحفظ. درجة أهمية: 0.8"
	case strings.Contains(prompt, "تحليل استعلام البحث"):
		return "ذكريات شخصية عائلية، الإطار الزمني: أي وقت، السياق العاطفي: محايد، الوسائط: أي"
	case strings.Contains(prompt, "تحليل مدخلات المريض"):
		return "الحالة العاطفية: محايد. مستوى الوضوح المعرفي: 0.7. المشاركة جيدة ولا توجد علامات أزمة."
	case strings.Contains(prompt, "اقتراح ذكريات"):
		return "الأنشطة العائلية\nالأماكن المألوفة\nالمناسبات السعيدة"
	case strings.Contains(prompt, "memory_exercise"):
		return "جميل أوي إنك بتفتكر. احكيلي أكتر عن الذكرى دي، مين كان معاك؟"
	case strings.Contains(prompt, "emotional_support"):
		return "أنا حاسس بيك، ومشاعرك دي طبيعية خالص. أنا معاك وخليك مطمن."
	default:
		return "أنا سامعك كويس. احكيلي أكتر، أنا معاك خطوة بخطوة."
	}
}
