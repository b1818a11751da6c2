package model

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/jkautto/letterpress/internal/prompt"
)

// stubClient scripts backend behavior per call.
type stubClient struct {
	chatText       string
	completionText string
	err            error
	delay          time.Duration

	chatCalls       int32
	completionCalls int32
}

func (s *stubClient) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	atomic.AddInt32(&s.chatCalls, 1)
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return openai.ChatCompletionResponse{}, ctx.Err()
		}
	}
	if s.err != nil {
		return openai.ChatCompletionResponse{}, s.err
	}
	return openai.ChatCompletionResponse{Choices: []openai.ChatCompletionChoice{
		{Message: openai.ChatCompletionMessage{Content: s.chatText}},
	}}, nil
}

func (s *stubClient) CreateCompletion(ctx context.Context, req openai.CompletionRequest) (openai.CompletionResponse, error) {
	atomic.AddInt32(&s.completionCalls, 1)
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return openai.CompletionResponse{}, ctx.Err()
		}
	}
	if s.err != nil {
		return openai.CompletionResponse{}, s.err
	}
	return openai.CompletionResponse{Choices: []openai.CompletionChoice{{Text: s.completionText}}}, nil
}

func registryWith(stub *stubClient) *Registry {
	r := NewRegistry("http://localhost:8080/v1", "")
	r.newClient = func(cfg Config) (Client, error) { return stub, nil }
	return r
}

func spec(kind prompt.SectionKind) prompt.Spec {
	return prompt.Spec{Kind: kind, Audience: prompt.Business, Text: "prompt text", MaxNewTokens: 20}
}

func TestRun_BaseModelUsesCompletion(t *testing.T) {
	stub := &stubClient{completionText: "  Faster Billing Lands  "}
	runner := &Runner{Registry: registryWith(stub)}

	res := runner.Run(context.Background(), GPT2, spec(prompt.Headline))
	if !res.Succeeded {
		t.Fatalf("expected success")
	}
	if res.RawText != "Faster Billing Lands" {
		t.Fatalf("expected trimmed completion text, got %q", res.RawText)
	}
	if stub.completionCalls != 1 || stub.chatCalls != 0 {
		t.Fatalf("base model must use the completion endpoint (chat=%d completion=%d)", stub.chatCalls, stub.completionCalls)
	}
}

func TestRun_InstructModelUsesChat(t *testing.T) {
	stub := &stubClient{chatText: "A headline"}
	runner := &Runner{Registry: registryWith(stub)}

	res := runner.Run(context.Background(), Phi3Mini, spec(prompt.Headline))
	if !res.Succeeded || res.RawText != "A headline" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if stub.chatCalls != 1 || stub.completionCalls != 0 {
		t.Fatalf("instruct model must use the chat endpoint (chat=%d completion=%d)", stub.chatCalls, stub.completionCalls)
	}
}

func TestRun_BackendErrorYieldsFailedResult(t *testing.T) {
	stub := &stubClient{err: errors.New("backend out of memory")}
	runner := &Runner{Registry: registryWith(stub)}

	res := runner.Run(context.Background(), GPT2, spec(prompt.Section))
	if res.Succeeded || res.RawText != "" {
		t.Fatalf("expected failed result, got %+v", res)
	}
	if res.Kind != prompt.Section {
		t.Fatalf("result must keep its section kind, got %v", res.Kind)
	}
}

func TestRun_TimeoutYieldsFailedResult(t *testing.T) {
	stub := &stubClient{completionText: "late", delay: 500 * time.Millisecond}
	runner := &Runner{Registry: registryWith(stub), Timeout: 20 * time.Millisecond}

	res := runner.Run(context.Background(), GPT2, spec(prompt.CTA))
	if res.Succeeded {
		t.Fatalf("expected timeout to fail the generation, got %+v", res)
	}
}

func TestRun_EmptyOutputYieldsFailedResult(t *testing.T) {
	stub := &stubClient{completionText: "   "}
	runner := &Runner{Registry: registryWith(stub)}

	res := runner.Run(context.Background(), GPT2, spec(prompt.Introduction))
	if res.Succeeded {
		t.Fatalf("whitespace-only output must not count as success")
	}
}

func TestRun_UnknownModel(t *testing.T) {
	runner := &Runner{Registry: registryWith(&stubClient{})}
	res := runner.Run(context.Background(), ID("mystery"), spec(prompt.Headline))
	if res.Succeeded {
		t.Fatalf("unknown model must fail the generation, not panic")
	}
}

func TestRun_CacheRoundTrip(t *testing.T) {
	stub := &stubClient{completionText: "cached section text"}
	runner := &Runner{Registry: registryWith(stub), Cache: &GenCache{Dir: t.TempDir()}}

	first := runner.Run(context.Background(), GPT2, spec(prompt.Section))
	second := runner.Run(context.Background(), GPT2, spec(prompt.Section))
	if first.RawText != second.RawText {
		t.Fatalf("cache changed the result: %q vs %q", first.RawText, second.RawText)
	}
	if stub.completionCalls != 1 {
		t.Fatalf("expected second run to hit the cache, got %d backend calls", stub.completionCalls)
	}
}

func TestRegistry_FirstLoadDeduplicated(t *testing.T) {
	var created int32
	r := NewRegistry("http://localhost:8080/v1", "")
	r.newClient = func(cfg Config) (Client, error) {
		atomic.AddInt32(&created, 1)
		return &stubClient{completionText: "x"}, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := r.acquire(GPT2); err != nil {
				t.Errorf("acquire: %v", err)
			}
		}()
	}
	wg.Wait()
	if n := atomic.LoadInt32(&created); n != 1 {
		t.Fatalf("expected exactly one client instantiation, got %d", n)
	}
}

func TestParseID(t *testing.T) {
	if id, err := ParseID("EleutherAI/gpt-neo-125M"); err != nil || id != GPTNeo125M {
		t.Fatalf("upstream name should resolve, got %v, %v", id, err)
	}
	if id, err := ParseID(""); err != nil || id != GPT2 {
		t.Fatalf("empty id should default to gpt2, got %v, %v", id, err)
	}
	if _, err := ParseID("gpt5"); err == nil {
		t.Fatalf("expected error for unknown id")
	}
}
