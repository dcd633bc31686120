package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/seniornav/careplan/backend/internal/domain/providers"
	"github.com/seniornav/careplan/backend/internal/engine"
	"github.com/seniornav/careplan/backend/internal/evaluation"
	"github.com/seniornav/careplan/backend/internal/infrastructure/clients/openai"
	"github.com/seniornav/careplan/backend/internal/infrastructure/observability"
	"github.com/seniornav/careplan/backend/internal/policy"
	"github.com/seniornav/careplan/backend/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, "development")
	logger := observability.GetLogger()

	eng := engine.NewDefaultEngine()

	policyDoc := policy.LoadDocumentOrDefault(cfg.Engine.PolicyPath, logger)

	// The advisor is optional: without an API key the run scores the
	// deterministic path only.
	var advisor providers.TierAdvisor
	if cfg.OpenAI.APIKey != "" {
		client, err := openai.NewClient(&cfg.OpenAI)
		if err != nil {
			log.Fatalf("Failed to initialize OpenAI client: %v", err)
		}
		advisor = client
	}

	mediator := policy.NewMediator(policyDoc, advisor, logger)

	goldenPath := "config/golden_assessments.json"
	if len(os.Args) > 1 {
		goldenPath = os.Args[1]
	}

	assessments, err := evaluation.LoadGoldenAssessments(goldenPath)
	if err != nil {
		log.Fatalf("Failed to load golden assessments: %v", err)
	}
	if err := evaluation.ValidateGoldenAssessments(assessments); err != nil {
		log.Fatalf("Invalid golden assessments: %v", err)
	}

	runner := evaluation.NewRunner(eng, mediator)
	summary, err := runner.Run(context.Background(), assessments)
	if err != nil {
		log.Fatalf("Evaluation failed: %v", err)
	}

	// Output results as JSON
	out, _ := json.MarshalIndent(summary, "", "  ")
	fmt.Println(string(out))
}
