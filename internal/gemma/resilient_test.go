package gemma

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

type flakyService struct {
	calls    atomic.Int32
	failures int32
	reply    string
}

func (f *flakyService) GenerateText(ctx context.Context, prompt, system string) (string, error) {
	n := f.calls.Add(1)
	if n <= f.failures {
		return "", &ServiceError{Op: "generate_text", Err: errors.New("transient")}
	}
	return f.reply, nil
}

func (f *flakyService) GenerateMultimodal(ctx context.Context, text, imagePath, audioPath string) (string, error) {
	return f.GenerateText(ctx, text, "")
}

func TestResilientRetriesOnce(t *testing.T) {
	inner := &flakyService{failures: 1, reply: "تمام"}
	svc := NewResilient(inner, time.Second, 1, zap.NewNop())

	got, err := svc.GenerateText(context.Background(), "p", "")
	if err != nil {
		t.Fatalf("GenerateText() error = %v", err)
	}
	if got != "تمام" {
		t.Fatalf("GenerateText() = %q, want %q", got, "تمام")
	}
	if calls := inner.calls.Load(); calls != 2 {
		t.Fatalf("inner calls = %d, want 2", calls)
	}
}

func TestResilientBoundedRetries(t *testing.T) {
	inner := &flakyService{failures: 10}
	svc := NewResilient(inner, time.Second, 1, zap.NewNop())

	_, err := svc.GenerateText(context.Background(), "p", "")
	if err == nil {
		t.Fatalf("GenerateText() expected error")
	}
	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("error = %T, want *ServiceError", err)
	}
	if calls := inner.calls.Load(); calls != 2 {
		t.Fatalf("inner calls = %d, want 2 (one attempt plus one retry)", calls)
	}
}

type rejectingService struct {
	calls atomic.Int32
}

func (r *rejectingService) GenerateText(ctx context.Context, prompt, system string) (string, error) {
	r.calls.Add(1)
	return "", &ServiceError{Op: "generate_text", Status: 400, Err: errors.New("bad request")}
}

func (r *rejectingService) GenerateMultimodal(ctx context.Context, text, imagePath, audioPath string) (string, error) {
	return r.GenerateText(ctx, text, "")
}

func TestResilientDoesNotRetryClientErrors(t *testing.T) {
	inner := &rejectingService{}
	svc := NewResilient(inner, time.Second, 1, zap.NewNop())

	_, err := svc.GenerateText(context.Background(), "p", "")
	if err == nil {
		t.Fatalf("GenerateText() expected error")
	}
	if calls := inner.calls.Load(); calls != 1 {
		t.Fatalf("inner calls = %d, want 1 (400 is not retryable)", calls)
	}
}

type hangingService struct{}

func (hangingService) GenerateText(ctx context.Context, prompt, system string) (string, error) {
	<-ctx.Done()
	return "", &ServiceError{Op: "generate_text", Err: ctx.Err()}
}

func (h hangingService) GenerateMultimodal(ctx context.Context, text, imagePath, audioPath string) (string, error) {
	return h.GenerateText(ctx, text, "")
}

func TestResilientTimesOutSlowBackend(t *testing.T) {
	svc := NewResilient(hangingService{}, 20*time.Millisecond, 0, zap.NewNop())

	start := time.Now()
	_, err := svc.GenerateText(context.Background(), "p", "")
	if err == nil {
		t.Fatalf("GenerateText() expected timeout error")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("call blocked for %v, timeout not enforced", elapsed)
	}
}
