package assets

import (
	"context"
	"encoding/base64"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Minalinnski/ai-art-generation/internal/domain"
	"github.com/Minalinnski/ai-art-generation/internal/providers/ai"
	"github.com/Minalinnski/ai-art-generation/internal/storage"
)

// ExecutorOptions configures the fan-out executor.
type ExecutorOptions struct {
	Providers  *ai.Factory
	Store      storage.ObjectStore
	OutputBase string
	MaxWorkers int
	Logger     zerolog.Logger
}

// Executor runs a module's generation tasks concurrently. A failing
// task is recorded and skipped; it never cancels its siblings.
type Executor struct {
	providers  *ai.Factory
	store      storage.ObjectStore
	outputBase string
	maxWorkers int
	logger     zerolog.Logger
}

func NewExecutor(opts ExecutorOptions) *Executor {
	outputBase := opts.OutputBase
	if outputBase == "" {
		outputBase = "generated"
	}
	maxWorkers := opts.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 5
	}
	return &Executor{
		providers:  opts.Providers,
		store:      opts.Store,
		outputBase: outputBase,
		maxWorkers: maxWorkers,
		logger:     opts.Logger.With().Str("component", "executor").Logger(),
	}
}

// TaskFailure records one failed task without aborting the batch.
type TaskFailure struct {
	Task domain.GenerationTask
	Err  error
}

// Execute fans the task list out across the worker pool and collects
// per-task outputs and failures. The returned error is non-nil only for
// batch-level problems such as an unusable provider.
func (e *Executor) Execute(
	ctx context.Context,
	jobID, module, providerID, model string,
	tasks []domain.GenerationTask,
	style domain.StyleDescriptor,
	refs *domain.ReferenceBundle,
) ([]domain.GenerationResult, []TaskFailure, error) {
	provider, err := e.providers.Get(providerID)
	if err != nil {
		return nil, nil, err
	}
	if !provider.ValidateModel(model) {
		return nil, nil, fmt.Errorf("%w: model %q is not available for provider %s", domain.ErrConfiguration, model, provider.Name())
	}
	info, ok := provider.ModelInfo(model)
	if !ok || !info.HasCapability(ai.CapabilityImageGeneration) {
		return nil, nil, fmt.Errorf("%w: model %q does not support image generation", domain.ErrConfiguration, model)
	}

	var (
		mu       sync.Mutex
		outputs  []domain.GenerationResult
		failures []TaskFailure
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.maxWorkers)
	for _, task := range tasks {
		task := task
		g.Go(func() error {
			result, err := e.runTask(gctx, jobID, module, provider, model, task, style, refs)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				e.logger.Error().Err(err).
					Str("job_id", jobID).
					Str("module", module).
					Str("task", task.Identity()).
					Msg("generation task failed")
				failures = append(failures, TaskFailure{Task: task, Err: err})
				return nil
			}
			outputs = append(outputs, result)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	sort.Slice(outputs, func(i, j int) bool { return outputs[i].StorageKey < outputs[j].StorageKey })
	return outputs, failures, nil
}

func (e *Executor) runTask(
	ctx context.Context,
	jobID, module string,
	provider ai.Provider,
	model string,
	task domain.GenerationTask,
	style domain.StyleDescriptor,
	refs *domain.ReferenceBundle,
) (domain.GenerationResult, error) {
	var ref *ReferenceInfo
	var imageURLs []string
	if refs != nil {
		ref = &ReferenceInfo{
			AssetDescription: refs.Description,
			ReferencePrompt:  refs.PromptFor(task),
		}
		if url := refs.ImageURLFor(task); url != "" {
			imageURLs = append(imageURLs, url)
		}
	}
	prompt := ComposePrompt(module, task, style, ref)

	payload, err := provider.RunInference(ctx, model, ai.Params{
		Prompt:    prompt,
		Size:      task.Resolution,
		Quality:   "high",
		ImageURLs: imageURLs,
	})
	if err != nil {
		return domain.GenerationResult{}, err
	}

	data, err := decodePayload(payload)
	if err != nil {
		return domain.GenerationResult{}, err
	}

	key := fmt.Sprintf("%s/%s/%s/%s/%s_%02d.png",
		e.outputBase, module, task.Category, task.Subcategory, task.Filename, task.Index)
	uploaded, err := e.store.Upload(ctx, data, key, "image/png", map[string]string{
		"job_id":      jobID,
		"module":      module,
		"category":    task.Category,
		"subcategory": task.Subcategory,
		"resolution":  task.Resolution,
	})
	if err != nil {
		return domain.GenerationResult{}, fmt.Errorf("%w: store %s: %v", domain.ErrStorage, key, err)
	}

	return domain.GenerationResult{
		StorageKey:  uploaded.Key,
		URL:         uploaded.URL,
		FileSize:    uploaded.Size,
		Category:    task.Category,
		Subcategory: task.Subcategory,
		Filename:    task.Filename,
		Index:       task.Index,
		Resolution:  task.Resolution,
	}, nil
}

// decodePayload turns a provider response into raw image bytes. It
// accepts a data URI, bare base64, or raw bytes in that order.
func decodePayload(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, fmt.Errorf("%w: provider returned an empty image payload", domain.ErrUpstreamAI)
	}
	if strings.HasPrefix(payload, "data:") {
		if idx := strings.Index(payload, ","); idx >= 0 {
			payload = payload[idx+1:]
		}
	}
	if data, err := base64.StdEncoding.DecodeString(payload); err == nil {
		return data, nil
	}
	return []byte(payload), nil
}
