// Command finsight answers questions about a local corpus of financial
// report documents using a local Ollama instance.
package main

import (
	"fmt"
	"os"

	"github.com/custodia-labs/finsight-cli/internal/adapters/driven/config/file"
	embedollama "github.com/custodia-labs/finsight-cli/internal/adapters/driven/embedding/ollama"
	llmollama "github.com/custodia-labs/finsight-cli/internal/adapters/driven/llm/ollama"
	"github.com/custodia-labs/finsight-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/finsight-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/finsight-cli/internal/connectors/filesystem"
	"github.com/custodia-labs/finsight-cli/internal/core/services"
)

// version is injected at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	settingsStore, err := file.NewSettingsStore("")
	if err != nil {
		return fmt.Errorf("opening settings: %w", err)
	}
	settings, err := settingsStore.Load()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	store, err := sqlite.NewStore(settings.DataDir)
	if err != nil {
		return fmt.Errorf("opening collection store: %w", err)
	}
	defer store.Close()

	llm := llmollama.NewLLMService(llmollama.LLMConfig{
		BaseURL: settings.LLM.BaseURL,
		Model:   settings.LLM.Model,
		Timeout: settings.LLM.Timeout,
	})
	defer llm.Close()

	embedder := embedollama.NewEmbeddingService(embedollama.Config{
		BaseURL: settings.Embedding.BaseURL,
		Model:   settings.Embedding.Model,
		Timeout: settings.Embedding.Timeout,
	})
	defer embedder.Close()

	source := filesystem.New(settings.DocsDir)

	indexer := services.NewIndexerService(settings, source, embedder, store)
	expander := services.NewQueryExpander(llm, settings.HyDE)
	retriever := services.NewRetriever(store, embedder, settings.Collection, settings.RetrieveK)
	reranker := services.NewReranker(llm, settings.RerankK, settings.RerankBatch)
	ask := services.NewAnswerService(settings, expander, retriever, reranker, llm)

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Ask:       ask,
		Index:     indexer,
		LLM:       llm,
		Embedding: embedder,
		Settings:  settings,
	})

	return cli.Execute()
}
