package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jkautto/letterpress/internal/app"
	"github.com/jkautto/letterpress/internal/extract"
	"github.com/jkautto/letterpress/internal/model"
	"github.com/jkautto/letterpress/internal/prompt"
	"github.com/jkautto/letterpress/internal/server"
)

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var (
		serve      bool
		listenAddr string
		configPath string

		sourceURL  string
		sourceFile string
		modelID    string
		audience   string
		outputPath string
		pdfPath    string
		asJSON     bool

		llmBaseURL string
		llmKey     string
		cacheDir   string
		verbose    bool
	)

	flag.BoolVar(&serve, "serve", false, "Run the HTTP API server instead of a one-shot generation")
	flag.StringVar(&listenAddr, "listen", os.Getenv("LISTEN_ADDR"), "HTTP listen address (with -serve)")
	flag.StringVar(&configPath, "config", os.Getenv("LETTERPRESS_CONFIG"), "Optional YAML config file; flags and env take precedence")
	flag.StringVar(&sourceURL, "url", "", "Article URL to generate a newsletter from")
	flag.StringVar(&sourceFile, "file", "", "PDF or DOCX file to generate a newsletter from")
	flag.StringVar(&modelID, "model", os.Getenv("LLM_MODEL"), "Model id (gpt2, distilgpt2, gpt-neo-125m, phi-3-mini)")
	flag.StringVar(&audience, "audience", "", "Audience framing: business or technical")
	flag.StringVar(&outputPath, "out", "", "Write the newsletter Markdown to this path instead of stdout")
	flag.StringVar(&pdfPath, "pdf", "", "Also write the newsletter as a PDF to this path")
	flag.BoolVar(&asJSON, "json", false, "Emit the newsletter as JSON instead of Markdown")
	flag.StringVar(&llmBaseURL, "llm.base", os.Getenv("LLM_BASE_URL"), "OpenAI-compatible base URL of the local model server")
	flag.StringVar(&llmKey, "llm.key", os.Getenv("LLM_API_KEY"), "API key for the model server (usually unused locally)")
	flag.StringVar(&cacheDir, "cache.dir", os.Getenv("CACHE_DIR"), "Directory for the generation cache; empty disables caching")
	flag.BoolVar(&verbose, "v", false, "Verbose logging")
	flag.Parse()

	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	cfg := app.Config{
		ListenAddr: listenAddr,
		LLMBaseURL: llmBaseURL,
		LLMAPIKey:  llmKey,
		CacheDir:   cacheDir,
		Verbose:    verbose,
	}
	if strings.TrimSpace(configPath) != "" {
		if err := app.MergeFileConfig(&cfg, configPath); err != nil {
			log.Error().Err(err).Msg("config file")
			os.Exit(1)
		}
		if cfg.Verbose {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		}
	}

	if err := run(cfg, serve, sourceURL, sourceFile, modelID, audience, outputPath, pdfPath, asJSON); err != nil {
		log.Error().Err(err).Msg("run failed")
		os.Exit(exitCode(err))
	}
}

// exitCode maps the error taxonomy to distinct exit codes so scripts can
// tell input problems from model problems.
func exitCode(err error) int {
	if e, ok := app.AsError(err); ok {
		switch e.Kind {
		case app.KindNetwork:
			return 2
		case app.KindSizeLimit:
			return 3
		case app.KindParse:
			return 4
		case app.KindModel:
			return 5
		}
	}
	return 1
}

func run(cfg app.Config, serve bool, sourceURL, sourceFile, modelID, audience, outputPath, pdfPath string, asJSON bool) error {
	a := app.New(cfg)

	if serve {
		srv := server.New(a)
		if cfg.MaxUploadBytes > 0 {
			srv.MaxUploadBytes = cfg.MaxUploadBytes
		}
		addr := cfg.ListenAddr
		if addr == "" {
			addr = ":5000"
		}
		log.Info().Str("addr", addr).Msg("serving newsletter API")
		return http.ListenAndServe(addr, srv.Routes())
	}

	if sourceURL == "" && sourceFile == "" {
		return fmt.Errorf("either -url or -file is required (or -serve)")
	}

	id, err := model.ParseID(modelID)
	if err != nil {
		return err
	}
	aud, err := prompt.ParseAudience(audience)
	if err != nil {
		return err
	}

	req := app.Request{Model: id, Audience: aud}
	switch {
	case sourceURL != "":
		req.URL = sourceURL
	default:
		data, err := os.ReadFile(sourceFile)
		if err != nil {
			return fmt.Errorf("read source file: %w", err)
		}
		switch strings.ToLower(filepath.Ext(sourceFile)) {
		case ".pdf":
			req.DocumentKind = extract.OriginPDF
		case ".docx":
			req.DocumentKind = extract.OriginDOCX
		default:
			return errors.New("unsupported file type, expected .pdf or .docx")
		}
		req.Document = data
	}

	n, err := a.Generate(context.Background(), req)
	if err != nil {
		return err
	}

	var rendered string
	if asJSON {
		b, err := json.MarshalIndent(n, "", "  ")
		if err != nil {
			return err
		}
		rendered = string(b) + "\n"
	} else {
		rendered = app.RenderMarkdown(n)
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, []byte(rendered), 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	} else {
		fmt.Print(rendered)
	}

	if pdfPath != "" {
		if err := app.WritePDF(n, pdfPath); err != nil {
			return fmt.Errorf("write pdf: %w", err)
		}
		log.Info().Str("path", pdfPath).Msg("wrote PDF")
	}
	return nil
}
