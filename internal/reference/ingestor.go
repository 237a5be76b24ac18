package reference

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Minalinnski/ai-art-generation/internal/assets"
	"github.com/Minalinnski/ai-art-generation/internal/domain"
	"github.com/Minalinnski/ai-art-generation/internal/storage"
)

var (
	resolutionSuffix = regexp.MustCompile(`_\d+x\d+$`)
	numberSuffix     = regexp.MustCompile(`_\d+$`)
	resolutionToken  = regexp.MustCompile(`\d+x\d+`)
)

var imageContentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".bmp":  "image/bmp",
}

// Ingestor parses uploaded reference archives into bundles the
// orchestrator can consume. Images found in the archive are staged to
// temporary storage and exposed through time-bounded signed URLs.
type Ingestor struct {
	registry   *assets.Registry
	store      storage.ObjectStore
	tempPrefix string
	signTTL    time.Duration
	logger     zerolog.Logger
}

// IngestorOptions configures archive ingestion.
type IngestorOptions struct {
	Registry   *assets.Registry
	Store      storage.ObjectStore
	TempPrefix string
	SignTTL    time.Duration
	Logger     zerolog.Logger
}

func NewIngestor(opts IngestorOptions) *Ingestor {
	prefix := opts.TempPrefix
	if prefix == "" {
		prefix = "reference/temp"
	}
	ttl := opts.SignTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Ingestor{
		registry:   opts.Registry,
		store:      opts.Store,
		tempPrefix: prefix,
		signTTL:    ttl,
		logger:     opts.Logger.With().Str("component", "reference").Logger(),
	}
}

// Ingest parses a zip archive laid out as category/subcategory/file.
// Files outside that shape are skipped with a warning; a corrupt
// archive is a validation error. Structural mismatches against the
// module schema go into the coverage report and never block ingestion.
func (in *Ingestor) Ingest(ctx context.Context, module string, archive []byte) (*domain.ReferenceBundle, error) {
	reader, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid zip archive: %v", domain.ErrValidation, err)
	}

	bundle := &domain.ReferenceBundle{
		Items:     make(domain.ContentTree),
		Prompts:   make(map[string]string),
		ImageURLs: make(map[string]string),
	}
	imageCounts := make(map[string]map[string]int)
	root := archiveRoot(reader.File)

	for _, file := range reader.File {
		if file.FileInfo().IsDir() {
			continue
		}
		parts := strings.Split(strings.TrimPrefix(file.Name, root), "/")
		if len(parts) != 3 {
			in.logger.Warn().Str("path", file.Name).Msg("skipping file outside category/subcategory layout")
			bundle.Coverage.Warnings = append(bundle.Coverage.Warnings,
				fmt.Sprintf("skipped %s: expected category/subcategory/filename layout", file.Name))
			continue
		}
		category, subcategory, fullName := parts[0], parts[1], parts[2]
		identifier := strings.TrimSuffix(fullName, path.Ext(fullName))
		description := describeFilename(identifier)
		resolution := resolutionToken.FindString(identifier)

		ext := strings.ToLower(path.Ext(fullName))
		if contentType, isImage := imageContentTypes[ext]; isImage {
			url, key, upErr := in.stageImage(ctx, file, category, subcategory, fullName, contentType)
			if upErr != nil {
				in.logger.Error().Err(upErr).Str("path", file.Name).Msg("reference image staging failed")
				bundle.Coverage.Warnings = append(bundle.Coverage.Warnings,
					fmt.Sprintf("could not stage image %s: %v", file.Name, upErr))
			} else {
				bundle.TempKeys = append(bundle.TempKeys, key)
				bundle.ImageURLs[fmt.Sprintf("%s.%s.%s", category, subcategory, identifier)] = url
				if imageCounts[category] == nil {
					imageCounts[category] = make(map[string]int)
				}
				imageCounts[category][subcategory]++
			}
		}

		if bundle.Items[category] == nil {
			bundle.Items[category] = make(map[string][]domain.AssetItem)
		}
		bundle.Items[category][subcategory] = append(bundle.Items[category][subcategory], domain.AssetItem{
			Filename:    identifier,
			Description: description,
			Count:       1,
			Resolution:  resolution,
		})

		prompt := buildReferencePrompt(module, category, subcategory, description, resolution, fullName)
		bundle.Prompts[fmt.Sprintf("%s.%s.%s", category, subcategory, identifier)] = prompt
		coarse := fmt.Sprintf("%s.%s", category, subcategory)
		if _, seen := bundle.Prompts[coarse]; !seen {
			bundle.Prompts[coarse] = prompt
		}
		if _, seen := bundle.Prompts[category]; !seen {
			bundle.Prompts[category] = prompt
		}
	}

	if bundle.Items.Empty() {
		return nil, fmt.Errorf("%w: archive contains no usable files", domain.ErrValidation)
	}

	in.buildCoverage(module, bundle, imageCounts)

	in.logger.Info().Str("module", module).
		Int("prompts", len(bundle.Prompts)).
		Int("images", len(bundle.ImageURLs)).
		Int("warnings", len(bundle.Coverage.Warnings)).
		Msg("reference archive ingested")
	return bundle, nil
}

// Cleanup removes every staged temporary object behind the bundle.
func (in *Ingestor) Cleanup(ctx context.Context, bundle *domain.ReferenceBundle) {
	if bundle == nil {
		return
	}
	for _, key := range bundle.TempKeys {
		if _, err := in.store.Delete(ctx, key); err != nil {
			in.logger.Warn().Err(err).Str("key", key).Msg("reference temp object cleanup failed")
		}
	}
	bundle.TempKeys = nil
}

func (in *Ingestor) stageImage(ctx context.Context, file *zip.File, category, subcategory, fullName, contentType string) (url, key string, err error) {
	rc, err := file.Open()
	if err != nil {
		return "", "", err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return "", "", err
	}

	key = fmt.Sprintf("%s/%s/%s/%s_%s", in.tempPrefix, category, subcategory,
		strings.ReplaceAll(uuid.NewString(), "-", "")[:8], fullName)
	info, err := in.store.Upload(ctx, data, key, contentType, map[string]string{
		"original_filename": fullName,
		"category":          category,
		"subcategory":       subcategory,
		"purpose":           "reference-temp-image",
	})
	if err != nil {
		return "", "", err
	}
	url, err = in.store.SignedURL(info.Key, in.signTTL)
	if err != nil {
		return "", "", err
	}
	return url, info.Key, nil
}

func (in *Ingestor) buildCoverage(module string, bundle *domain.ReferenceBundle, imageCounts map[string]map[string]int) {
	report := &bundle.Coverage
	report.Categories = make(map[string]domain.CategoryCoverage)

	schema, ok := in.registry.Module(module)
	if !ok {
		report.Warnings = append(report.Warnings, fmt.Sprintf("unknown module %q, structural checks skipped", module))
		return
	}

	for _, expected := range schema.Categories {
		if _, present := bundle.Items[expected.Name]; !present {
			report.MissingCategories = append(report.MissingCategories, expected.Name)
			report.Warnings = append(report.Warnings, fmt.Sprintf("missing expected category: %s", expected.Name))
		}
	}
	for _, actual := range sortedKeys(bundle.Items) {
		if _, expected := schema.Category(actual); !expected {
			report.UnexpectedCategories = append(report.UnexpectedCategories, actual)
			report.Warnings = append(report.Warnings, fmt.Sprintf("unexpected category: %s", actual))
			continue
		}
		catSchema, _ := schema.Category(actual)
		subcategories := bundle.Items[actual]
		actualSubs := sortedKeys(subcategories)

		covered := 0
		for _, sub := range catSchema.Subcategories {
			if _, present := subcategories[sub]; present {
				covered++
			}
		}
		percent := 0.0
		if len(catSchema.Subcategories) > 0 {
			percent = float64(covered) / float64(len(catSchema.Subcategories)) * 100
		}

		items, images := 0, 0
		for _, subItems := range subcategories {
			items += len(subItems)
		}
		for _, count := range imageCounts[actual] {
			images += count
		}
		report.Categories[actual] = domain.CategoryCoverage{
			Expected:        catSchema.Subcategories,
			Actual:          actualSubs,
			CoveragePercent: percent,
			ItemCount:       items,
			ImageCount:      images,
		}
	}
}

// archiveRoot detects a single wrapper directory shared by every file
// in the archive, the usual result of zipping a folder. Returns the
// prefix to strip ("root/"), or "" when files sit at multiple roots or
// stripping would leave less than category/subcategory/filename.
func archiveRoot(files []*zip.File) string {
	root := ""
	for _, file := range files {
		if file.FileInfo().IsDir() {
			continue
		}
		parts := strings.Split(file.Name, "/")
		if len(parts) < 4 {
			return ""
		}
		if root == "" {
			root = parts[0]
		} else if parts[0] != root {
			return ""
		}
	}
	if root == "" {
		return ""
	}
	return root + "/"
}

// describeFilename turns an archive filename into a readable asset
// description: resolution and trailing-number suffixes are dropped,
// separators become spaces and each word is title-cased.
func describeFilename(identifier string) string {
	clean := resolutionSuffix.ReplaceAllString(identifier, "")
	clean = numberSuffix.ReplaceAllString(clean, "")
	clean = strings.NewReplacer("_", " ", "-", " ").Replace(clean)
	clean = strings.Join(strings.Fields(clean), " ")
	if clean == "" {
		return identifier
	}
	return cases.Title(language.English).String(clean)
}

var referencePromptLeads = map[string]string{
	"symbols":     "Create a slot machine symbol for %s",
	"ui":          "Create a user interface element for %s",
	"backgrounds": "Create a background scene for %s",
}

func buildReferencePrompt(module, category, subcategory, description, resolution, fullName string) string {
	lead, ok := referencePromptLeads[module]
	if !ok {
		lead = "Create a " + module + " asset for %s"
	}
	parts := []string{
		fmt.Sprintf(lead, description),
		fmt.Sprintf("in %s category", category),
		fmt.Sprintf("%s subcategory", subcategory),
	}
	if resolution != "" {
		parts = append(parts, fmt.Sprintf("with %s resolution", resolution))
	}
	ext := strings.ToLower(path.Ext(fullName))
	if _, isImage := imageContentTypes[ext]; isImage {
		parts = append(parts, "matching the style and composition of the reference image")
	} else {
		parts = append(parts, fmt.Sprintf("based on the reference file %s", fullName))
	}
	parts = append(parts,
		"Maintain consistent visual style with other assets",
		"Keep the same artistic approach and quality level")
	return strings.Join(parts, ", ")
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
