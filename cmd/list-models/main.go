// Command list-models prints the generation-capable models available to
// the configured credential. Useful for checking what flash-tier model
// the analyzer will resolve to.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"google.golang.org/genai"

	"github.com/dvloznov/expense-guardian/internal/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg := config.Load()
	apiKey := cfg.ResolveAPIKey()
	if apiKey == "" {
		return fmt.Errorf("API Key not found: set API_KEY, GEMINI_API_KEY, or %s", cfg.SecretsFile)
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return fmt.Errorf("create genai client: %w", err)
	}

	fmt.Println("Listing available models:")
	for model, err := range client.Models.All(ctx) {
		if err != nil {
			return fmt.Errorf("list models: %w", err)
		}
		for _, action := range model.SupportedActions {
			if action == "generateContent" {
				fmt.Println(model.Name)
				break
			}
		}
	}

	return nil
}
