package model

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	openai "github.com/sashabaranov/go-openai"
)

// Client is the minimal backend interface the runner needs. It mirrors the
// two go-openai calls used here so any OpenAI-compatible local server can
// back it, and tests can stub it.
type Client interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
	CreateCompletion(ctx context.Context, request openai.CompletionRequest) (openai.CompletionResponse, error)
}

// handle pairs a lazily-created backend client with the lock serializing
// generation for its model. Local inference against one in-memory model
// must not run concurrently.
type handle struct {
	client Client
	mu     sync.Mutex
}

// Registry holds one lazily-initialized handle per model id. It is
// constructed once and passed explicitly to the Runner; there is no
// ambient global cache. Handle creation is guarded by the registry lock,
// so a concurrent first use of the same id instantiates exactly one
// client. Generations against different ids proceed independently; each
// handle carries its own generation lock.
type Registry struct {
	baseURL string
	apiKey  string

	// newClient is swappable in tests.
	newClient func(cfg Config) (Client, error)

	mu      sync.Mutex
	handles map[ID]*handle
}

// NewRegistry creates a registry for an OpenAI-compatible backend at
// baseURL. apiKey may be empty for local servers.
func NewRegistry(baseURL, apiKey string) *Registry {
	r := &Registry{baseURL: baseURL, apiKey: apiKey, handles: make(map[ID]*handle)}
	r.newClient = r.openaiClient
	return r
}

func (r *Registry) openaiClient(cfg Config) (Client, error) {
	transportCfg := openai.DefaultConfig(r.apiKey)
	if r.baseURL != "" {
		transportCfg.BaseURL = r.baseURL
	}
	transportCfg.HTTPClient = &http.Client{}
	return openai.NewClientWithConfig(transportCfg), nil
}

// acquire returns the handle and capability record for id, creating the
// handle on first use.
func (r *Registry) acquire(id ID) (*handle, Config, error) {
	cfg, ok := Lookup(id)
	if !ok {
		return nil, Config{}, fmt.Errorf("model %q not in catalogue", id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.handles[id]; ok {
		return h, cfg, nil
	}
	client, err := r.newClient(cfg)
	if err != nil {
		return nil, Config{}, fmt.Errorf("init model %q: %w", id, err)
	}
	h := &handle{client: client}
	r.handles[id] = h
	return h, cfg, nil
}
