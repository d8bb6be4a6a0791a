package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgallion1/docqa/internal/chunker"
	"github.com/dgallion1/docqa/internal/config"
	"github.com/dgallion1/docqa/internal/embed"
	"github.com/dgallion1/docqa/internal/ingest"
	"github.com/dgallion1/docqa/internal/ollama"
	"github.com/dgallion1/docqa/internal/prompt"
	"github.com/dgallion1/docqa/internal/qa"
	"github.com/dgallion1/docqa/internal/store"
	"github.com/spf13/cobra"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:           "docqa",
	Short:         "Document question answering over a local corpus",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config/settings.yaml", "settings file")
	rootCmd.AddCommand(buildCmd, askCmd, batchCmd, serveCmd)
}

// app bundles everything a command needs after setup.
type app struct {
	cfg      config.Config
	log      *slog.Logger
	llm      *ollama.Client
	store    store.Store
	pipeline *qa.Pipeline
	builder  *ingest.Builder
}

func newApp(ctx context.Context) (*app, error) {
	log := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(log)

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	llm := ollama.New(cfg.Ollama.URL, cfg.Models.Embed, cfg.Models.Query, cfg.Ollama.Timeout)
	embedder := embed.NewE5(llm)

	var st store.Store
	switch cfg.Store.Backend {
	case "milvus":
		st, err = store.NewMilvus(ctx, store.MilvusConfig{
			Address:    cfg.Store.Milvus.Address,
			Username:   cfg.Store.Milvus.Username,
			Password:   cfg.Store.Milvus.Password,
			Database:   cfg.Store.Milvus.Database,
			Collection: cfg.Store.Collection,
			Dim:        cfg.Store.Milvus.Dim,
			MMRLambda:  cfg.Retrieval.MMRLambda,
		}, embedder)
		if err != nil {
			llm.Close()
			return nil, fmt.Errorf("connect milvus: %w", err)
		}
	default:
		st = store.NewLocal(cfg.Store.Dir, cfg.Store.Collection, embedder, cfg.Retrieval.MMRLambda)
	}

	prompts, err := prompt.Load(cfg.Prompts, prompt.RoleExtract, prompt.RoleVerify)
	if err != nil {
		llm.Close()
		return nil, err
	}

	extractor := qa.NewExtractor(llm, prompts, cfg.Answer.Sentinel)
	verifier := qa.NewVerifier(llm, prompts)
	pipeline := qa.NewPipeline(st, extractor, verifier, log, qa.Config{
		TopK:            cfg.Retrieval.TopK,
		MinRelevance:    cfg.Gate.MinRelevance,
		MinGap:          cfg.Gate.MinGap,
		MMR:             cfg.Retrieval.MMR,
		MaxContextChars: cfg.Answer.MaxContextChars,
		Sentinel:        cfg.Answer.Sentinel,
		Mode:            qa.ExtractMode(cfg.Answer.ExtractMode),
	})

	builder := ingest.NewBuilder(st, log, chunker.Config{
		ChunkSize:    cfg.Retrieval.ChunkSize,
		ChunkOverlap: cfg.Retrieval.ChunkOverlap,
	})

	return &app{
		cfg:      cfg,
		log:      log,
		llm:      llm,
		store:    st,
		pipeline: pipeline,
		builder:  builder,
	}, nil
}

func (a *app) close() {
	a.llm.Close()
	if c, ok := a.store.(interface{ Close(context.Context) error }); ok {
		c.Close(context.Background())
	}
}
