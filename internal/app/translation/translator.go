// Package translation translates a transcript into several target languages and stores one
// text object per language.
package translation

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"voice-relay/internal/app/api"
	apperrors "voice-relay/internal/app/errors"
	"voice-relay/internal/app/locator"
	"voice-relay/internal/app/metrics"
	"voice-relay/internal/app/model"
	"voice-relay/internal/app/storage"
)

// Request is the input of one batch translation.
type Request struct {
	SourceURI       string   `json:"source_text_location"`
	TargetLanguages []string `json:"target_languages"`
	Bucket          string   `json:"bucket"`
	// Filename names the outputs. Empty means the base name of the source object.
	Filename string `json:"original_filename"`
}

// Result holds the translations that succeeded and the reason of every language that did not.
type Result struct {
	Translations model.TranslationResultSet `json:"translations"`
	Failures     map[string]string          `json:"failures,omitempty"`
}

// Options control the failure policy and parallelism of a batch.
type Options struct {
	// SourceLanguage of the transcript; empty lets the service detect it.
	SourceLanguage string
	// FailFast aborts the batch on the first failed language.
	FailFast bool
	// Concurrency bounds the languages translated at once. Values below 2 run sequentially.
	Concurrency int
	// Provider labels the metrics.
	Provider string
}

// BatchTranslator fans one source text out to several languages.
type BatchTranslator struct {
	translator api.Translator
	store      storage.Store
	opts       Options
	metrics    metrics.Recorder
	logger     *zap.Logger
}

func NewBatchTranslator(translator api.Translator, store storage.Store, opts Options, recorder metrics.Recorder, logger *zap.Logger) *BatchTranslator {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchTranslator{
		translator: translator,
		store:      store,
		opts:       opts,
		metrics:    recorder,
		logger:     logger,
	}
}

// Translate reads the source once, translates it into every target language and writes each
// translation to translations/{filename}_{lang}.txt. With FailFast unset, a language that
// fails is reported in Result.Failures and the others still complete; an error is returned
// only when no language succeeded.
func (b *BatchTranslator) Translate(ctx context.Context, req Request) (Result, error) {
	languages := NormalizeLanguages(req.TargetLanguages)
	if len(languages) == 0 {
		return Result{}, apperrors.ErrNoTargetLanguages
	}
	if req.SourceURI == "" {
		return Result{}, apperrors.RequiredField("source_text_location")
	}
	source, err := locator.ParseURI(req.SourceURI)
	if err != nil {
		return Result{}, apperrors.Validation(err.Error())
	}

	bucket := req.Bucket
	if bucket == "" {
		bucket = source.Bucket
	}
	filename := req.Filename
	if filename == "" {
		filename = locator.BaseName(source.Key)
	}

	text, err := storage.ReadText(ctx, b.store, source)
	if err != nil {
		return Result{}, err
	}
	if strings.TrimSpace(text) == "" {
		return Result{}, apperrors.Validationf("source text %s is empty", source)
	}

	var (
		mu     sync.Mutex
		errs   = make(map[string]error)
		result = Result{Translations: make(model.TranslationResultSet, len(languages))}
	)
	translateOne := func(ctx context.Context, lang string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		translation, err := b.translateLanguage(ctx, text, bucket, filename, lang)
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			if result.Failures == nil {
				result.Failures = make(map[string]string)
			}
			result.Failures[lang] = err.Error()
			errs[lang] = err
			b.logger.Warn("Translation failed", zap.String("language", lang), zap.Error(err))
			if b.opts.FailFast {
				return apperrors.Wrapf(err, "translation to %s", lang)
			}
			return nil
		}
		result.Translations[lang] = translation
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(b.opts.Concurrency, 1))
	for _, lang := range languages {
		g.Go(func() error { return translateOne(gctx, lang) })
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	if len(result.Translations) == 0 {
		return result, apperrors.Wrapf(firstFailure(errs), "all %d translations failed", len(languages))
	}
	b.logger.Info("Batch translation finished",
		zap.String("bucket", bucket),
		zap.String("key", filename),
		zap.Int("translated", len(result.Translations)),
		zap.Int("failed", len(result.Failures)))
	return result, nil
}

func (b *BatchTranslator) translateLanguage(ctx context.Context, text, bucket, filename, lang string) (model.Translation, error) {
	var translated string
	err := metrics.Observe(b.metrics, b.opts.Provider, "translate", func() error {
		var err error
		translated, err = b.translator.Translate(ctx, text, sourceLanguage(b.opts.SourceLanguage), lang)
		return err
	})
	if err != nil {
		return model.Translation{}, err
	}

	ref := locator.Translation(bucket, filename, lang)
	if err := storage.PutText(ctx, b.store, ref, translated); err != nil {
		return model.Translation{}, err
	}
	return model.Translation{URI: ref.URI(), Text: translated}, nil
}

// NormalizeLanguages trims, deduplicates and sorts language codes, dropping blanks.
func NormalizeLanguages(languages []string) []string {
	out := lo.Uniq(lo.Compact(lo.Map(languages, func(l string, _ int) string {
		return strings.TrimSpace(l)
	})))
	sort.Strings(out)
	return out
}

// sourceLanguage reduces a transcription locale such as en-US to the language code the
// translation services accept.
func sourceLanguage(code string) string {
	base, _, _ := strings.Cut(code, "-")
	return base
}

// firstFailure returns the error of the alphabetically first language.
func firstFailure(errs map[string]error) error {
	langs := lo.Keys(errs)
	sort.Strings(langs)
	return errs[langs[0]]
}
