package e2e

import (
	"github.com/cucumber/godog"

	"fantamorto/e2e/steps/pipeline"
)

// RegisterSteps registers all step definitions from modular packages.
func RegisterSteps(ctx *godog.ScenarioContext, w *World) {
	pipeline.RegisterSteps(ctx, w)
}
