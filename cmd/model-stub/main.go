// model-stub is a development stand-in for the local model server. It
// speaks just enough of the OpenAI-compatible API for the newsletter
// pipeline: list models, chat completions for instruct models, and plain
// completions for base models. Replies are canned per section so the full
// pipeline can be exercised without any model weights.
package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strings"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

type completionRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

// reply picks a canned generation by recognizing which section the prompt
// asks for. The call-to-action check runs first because instruct CTA
// prompts also mention the headline.
func reply(promptText string) string {
	lower := strings.ToLower(promptText)
	switch {
	case strings.Contains(lower, "call to action"):
		return "Subscribe now and get the next edition in your inbox."
	case strings.Contains(lower, "introduction"):
		return "This week we look at one story in depth. The details matter more than the summary suggests. Read on for the full picture."
	case strings.Contains(lower, "headline"):
		return "Stub Newsletter Covers The Week In Depth"
	default:
		return "The source article walks through the change step by step, and this section summarizes the part of it assigned to this slot."
	}
}

func main() {
	addr := os.Getenv("ADDR")
	if strings.TrimSpace(addr) == "" {
		addr = ":8081"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"id": "gpt2", "object": "model"},
				{"id": "distilgpt2", "object": "model"},
				{"id": "EleutherAI/gpt-neo-125M", "object": "model"},
				{"id": "microsoft/Phi-3-mini-4k-instruct", "object": "model"},
			},
		})
	})
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var req chatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		var promptText strings.Builder
		for _, m := range req.Messages {
			promptText.WriteString(m.Content)
			promptText.WriteString("\n")
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": reply(promptText.String())}},
			},
		})
	})
	mux.HandleFunc("/v1/completions", func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var req completionRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"text": reply(req.Prompt)}},
		})
	})

	log.Printf("model-stub listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal(err)
	}
}
