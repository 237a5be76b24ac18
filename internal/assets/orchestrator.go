package assets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Minalinnski/ai-art-generation/internal/artstyle"
	"github.com/Minalinnski/ai-art-generation/internal/domain"
)

// Orchestrator ties decomposition, style resolution and execution into
// module and complete-game jobs.
type Orchestrator struct {
	registry   *Registry
	decomposer *Decomposer
	resolver   *artstyle.Resolver
	executor   *Executor
	logger     zerolog.Logger
}

func NewOrchestrator(registry *Registry, resolver *artstyle.Resolver, executor *Executor, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		registry:   registry,
		decomposer: NewDecomposer(registry),
		resolver:   resolver,
		executor:   executor,
		logger:     logger.With().Str("component", "orchestrator").Logger(),
	}
}

// Registry exposes the module registry for listing endpoints.
func (o *Orchestrator) Registry() *Registry { return o.registry }

// ValidationSummary is the dry-run report for a module request.
type ValidationSummary struct {
	Module     string         `json:"module"`
	Provider   string         `json:"provider"`
	Model      string         `json:"model"`
	TotalTasks int            `json:"total_tasks"`
	ByCategory map[string]int `json:"tasks_by_category"`
}

// Validate runs decomposition and model checks without generating
// anything.
func (o *Orchestrator) Validate(req domain.GenerationRequest) (ValidationSummary, error) {
	if err := req.Style.Validate(); err != nil {
		return ValidationSummary{}, err
	}
	tasks, err := o.decomposer.Decompose(req)
	if err != nil {
		return ValidationSummary{}, err
	}
	providerID, model, err := o.resolveModel(req)
	if err != nil {
		return ValidationSummary{}, err
	}
	byCategory := make(map[string]int)
	for _, t := range tasks {
		byCategory[t.Category]++
	}
	return ValidationSummary{
		Module:     req.Module,
		Provider:   providerID,
		Model:      model,
		TotalTasks: len(tasks),
		ByCategory: byCategory,
	}, nil
}

// RunModule executes one module job end to end. styleImages feed the
// reference_image style mode; upstream style resolution failures
// degrade to the generic fallback descriptor, while invalid style
// input (an image mode with no images) fails the job. Task failures
// are isolated by the executor.
func (o *Orchestrator) RunModule(ctx context.Context, req domain.GenerationRequest, refs *domain.ReferenceBundle, styleImages []artstyle.ReferenceImage) (domain.ModuleJobResult, error) {
	started := time.Now()
	jobID := newJobID(req.Module)
	log := o.logger.With().Str("job_id", jobID).Str("module", req.Module).Logger()

	if err := req.Style.Validate(); err != nil {
		return domain.ModuleJobResult{}, err
	}

	tasks, err := o.tasksFor(req, refs)
	if err != nil {
		return domain.ModuleJobResult{}, err
	}
	providerID, model, err := o.resolveModel(req)
	if err != nil {
		return domain.ModuleJobResult{}, err
	}

	style, err := o.resolver.Resolve(ctx, req.Style, styleImages)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return domain.ModuleJobResult{}, err
		}
		log.Warn().Err(err).Msg("art style resolution failed, using fallback style")
		style = artstyle.Fallback()
	}

	log.Info().Int("tasks", len(tasks)).Str("provider", providerID).Str("model", model).
		Str("style_mode", string(style.Mode)).Msg("module job started")

	outputs, failures, err := o.executor.Execute(ctx, jobID, req.Module, providerID, model, tasks, style, refs)
	if err != nil {
		return domain.ModuleJobResult{}, err
	}

	result := domain.ModuleJobResult{
		JobID:        jobID,
		Module:       req.Module,
		Status:       domain.StatusFor(len(outputs), len(tasks)),
		Outputs:      outputs,
		SuccessCount: len(outputs),
		TotalCount:   len(tasks),
		Style:        style,
		Duration:     time.Since(started),
	}
	if len(failures) > 0 {
		result.Error = failureSummary(failures)
	}
	log.Info().Str("status", string(result.Status)).
		Int("completed", result.SuccessCount).Int("total", result.TotalCount).
		Dur("duration", result.Duration).Msg("module job finished")
	return result, nil
}

// RunComposite runs a complete-game job: every module request is
// validated up front, then modules run concurrently. A failing module
// becomes a failed entry in the composite result, never an error.
func (o *Orchestrator) RunComposite(ctx context.Context, req domain.CompositeRequest) (domain.CompositeJobResult, error) {
	started := time.Now()
	jobID := newJobID("game")
	log := o.logger.With().Str("job_id", jobID).Logger()

	if len(req.Modules) == 0 {
		return domain.CompositeJobResult{}, fmt.Errorf("%w: composite request declares no modules", domain.ErrValidation)
	}

	moduleReqs := make(map[string]domain.GenerationRequest, len(req.Modules))
	for name, content := range req.Modules {
		mreq := domain.GenerationRequest{
			Module:            name,
			Model:             req.Model,
			Provider:          req.Provider,
			Style:             req.GlobalStyle,
			Content:           content.Content,
			CustomContent:     content.CustomContent,
			DefaultResolution: req.DefaultResolution,
		}
		if content.Style != nil {
			mreq.Style = *content.Style
		}
		if content.DefaultResolution != "" {
			mreq.DefaultResolution = content.DefaultResolution
		}
		if _, err := o.Validate(mreq); err != nil {
			return domain.CompositeJobResult{}, fmt.Errorf("module %s: %w", name, err)
		}
		moduleReqs[name] = mreq
	}

	log.Info().Int("modules", len(moduleReqs)).Msg("composite job started")

	var mu sync.Mutex
	results := make(map[string]domain.ModuleJobResult, len(moduleReqs))

	g, gctx := errgroup.WithContext(ctx)
	for name, mreq := range moduleReqs {
		name, mreq := name, mreq
		g.Go(func() error {
			res, err := o.RunModule(gctx, mreq, nil, nil)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Error().Err(err).Str("module", name).Msg("composite module failed")
				results[name] = domain.ModuleJobResult{
					Module: name,
					Status: domain.StatusFailed,
					Error:  err.Error(),
				}
				return nil
			}
			results[name] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.CompositeJobResult{}, err
	}

	total := 0
	for _, res := range results {
		total += len(res.Outputs)
	}
	composite := domain.CompositeJobResult{
		JobID:        jobID,
		Status:       domain.CompositeStatusFor(results),
		TotalOutputs: total,
		Modules:      results,
		Duration:     time.Since(started),
	}
	log.Info().Str("status", string(composite.Status)).Int("outputs", total).
		Dur("duration", composite.Duration).Msg("composite job finished")
	return composite, nil
}

// tasksFor prefers declared request content; with an empty request and
// a reference bundle, the bundle's discovered tree drives the job.
func (o *Orchestrator) tasksFor(req domain.GenerationRequest, refs *domain.ReferenceBundle) ([]domain.GenerationTask, error) {
	if req.Content.Empty() && len(req.CustomContent) == 0 && refs != nil && !refs.Items.Empty() {
		schema, ok := o.registry.Module(req.Module)
		if !ok {
			return nil, fmt.Errorf("%w: unknown module %q, available: %v", domain.ErrConfiguration, req.Module, o.registry.Names())
		}
		fallbackRes := req.DefaultResolution
		if fallbackRes == "" {
			fallbackRes = schema.DefaultResolution
		}
		return ExpandTree(refs.Items, fallbackRes, domain.ProvenanceReference)
	}
	return o.decomposer.Decompose(req)
}

func (o *Orchestrator) resolveModel(req domain.GenerationRequest) (providerID, model string, err error) {
	schema, ok := o.registry.Module(req.Module)
	if !ok {
		return "", "", fmt.Errorf("%w: unknown module %q", domain.ErrConfiguration, req.Module)
	}
	providerID = req.Provider
	if providerID == "" {
		providerID = schema.DefaultProvider
	}
	model = req.Model
	if model == "" {
		model = schema.DefaultModel
	}
	if !schema.SupportsModel(model) {
		return "", "", fmt.Errorf("%w: model %q is not supported by module %s, supported: %v",
			domain.ErrValidation, model, req.Module, schema.SupportedModels)
	}
	return providerID, model, nil
}

func newJobID(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func failureSummary(failures []TaskFailure) string {
	parts := make([]string, 0, len(failures))
	for _, f := range failures {
		parts = append(parts, fmt.Sprintf("%s: %v", f.Task.Identity(), f.Err))
	}
	return fmt.Sprintf("%d task(s) failed: %s", len(failures), strings.Join(parts, "; "))
}
