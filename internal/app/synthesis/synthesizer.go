// Package synthesis turns translated texts into speech and stores one mp3 per language.
package synthesis

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"voice-relay/internal/app/api"
	apperrors "voice-relay/internal/app/errors"
	"voice-relay/internal/app/jobs"
	"voice-relay/internal/app/locator"
	"voice-relay/internal/app/metrics"
	"voice-relay/internal/app/model"
	"voice-relay/internal/app/storage"
	"voice-relay/internal/config"
)

// TaskPrefix is where long-form synthesis tasks write before their output is copied to the
// deterministic key.
const TaskPrefix = locator.AudioFolder + "/tasks/"

// Request is the input of one batch synthesis.
type Request struct {
	Bucket   string            `json:"bucket"`
	Texts    map[string]string `json:"translated_texts"`
	Filename string            `json:"original_filename"`
}

// Result maps each language to its audio URI and lists the languages that failed.
type Result struct {
	Audio    map[string]string `json:"audio"`
	Failures map[string]string `json:"failures,omitempty"`
}

// Options control the failure policy and the synchronous size limit.
type Options struct {
	FailFast    bool
	Concurrency int
	// SyncLimit is the longest text, in characters, sent to the synchronous API.
	SyncLimit int
	Provider  string
}

// TaskStarter starts long-form synthesis tasks.
type TaskStarter interface {
	StartSynthesis(ctx context.Context, in jobs.SynthesisInput) (jobs.LaunchResult, error)
}

// JobWaiter blocks until a job is terminal.
type JobWaiter interface {
	Wait(ctx context.Context, kind model.JobKind, jobID string) (model.Job, error)
}

// LongForm routes texts above the synchronous limit through an asynchronous task. Without
// it, long texts are split and the audio of the parts concatenated.
type LongForm struct {
	Starter TaskStarter
	Waiter  JobWaiter
}

// BatchSynthesizer speaks every translation with the voice configured for its language.
type BatchSynthesizer struct {
	synthesizer api.SpeechSynthesizer
	store       storage.Store
	voices      config.VoiceTable
	longForm    *LongForm
	opts        Options
	metrics     metrics.Recorder
	logger      *zap.Logger
}

func NewBatchSynthesizer(synthesizer api.SpeechSynthesizer, store storage.Store, voices config.VoiceTable, longForm *LongForm, opts Options, recorder metrics.Recorder, logger *zap.Logger) *BatchSynthesizer {
	if opts.SyncLimit <= 0 {
		opts.SyncLimit = config.DefaultSyncSynthesisChars
	}
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchSynthesizer{
		synthesizer: synthesizer,
		store:       store,
		voices:      voices,
		longForm:    longForm,
		opts:        opts,
		metrics:     recorder,
		logger:      logger,
	}
}

// Synthesize writes audio_outputs/{filename}_{lang}.mp3 for every language. An empty
// mapping is rejected before any call is made. Failures are isolated per language unless
// FailFast is set; an error is returned only when no language succeeded.
func (b *BatchSynthesizer) Synthesize(ctx context.Context, req Request) (Result, error) {
	if len(req.Texts) == 0 {
		return Result{}, apperrors.ErrNoTranslatedTexts
	}
	if req.Bucket == "" {
		return Result{}, apperrors.RequiredField("bucket")
	}
	if req.Filename == "" {
		return Result{}, apperrors.RequiredField("original_filename")
	}

	languages := lo.Keys(req.Texts)
	sort.Strings(languages)

	var (
		mu     sync.Mutex
		errs   = make(map[string]error)
		result = Result{Audio: make(map[string]string, len(languages))}
	)
	synthesizeOne := func(ctx context.Context, lang string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		uri, err := b.synthesizeLanguage(ctx, req.Bucket, req.Filename, lang, req.Texts[lang])
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			if result.Failures == nil {
				result.Failures = make(map[string]string)
			}
			result.Failures[lang] = err.Error()
			errs[lang] = err
			b.logger.Warn("Synthesis failed", zap.String("language", lang), zap.Error(err))
			if b.opts.FailFast {
				return apperrors.Wrapf(err, "synthesis for %s", lang)
			}
			return nil
		}
		result.Audio[lang] = uri
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(b.opts.Concurrency, 1))
	for _, lang := range languages {
		g.Go(func() error { return synthesizeOne(gctx, lang) })
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	if len(result.Audio) == 0 {
		return result, apperrors.Wrapf(errs[languages[0]], "all %d syntheses failed", len(languages))
	}
	b.logger.Info("Batch synthesis finished",
		zap.String("bucket", req.Bucket),
		zap.String("key", req.Filename),
		zap.Int("synthesized", len(result.Audio)),
		zap.Int("failed", len(result.Failures)))
	return result, nil
}

func (b *BatchSynthesizer) synthesizeLanguage(ctx context.Context, bucket, filename, lang, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", apperrors.Validationf("translated text for %s is empty", lang)
	}
	voice := b.voices.Resolve(lang)
	dst := locator.Audio(bucket, filename, lang)

	var err error
	switch {
	case utf8.RuneCountInString(text) <= b.opts.SyncLimit:
		err = b.synthesizeSync(ctx, dst, text, voice)
	case b.longForm != nil:
		err = b.synthesizeTask(ctx, dst, text, voice)
	default:
		err = b.synthesizeChunks(ctx, dst, text, voice)
	}
	if err != nil {
		return "", err
	}

	b.logger.Debug("Audio stored",
		zap.String("language", lang),
		zap.String("voice", voice),
		zap.String("key", dst.Key))
	return dst.URI(), nil
}

func (b *BatchSynthesizer) speak(ctx context.Context, text, voice string) (io.ReadCloser, error) {
	var audio io.ReadCloser
	err := metrics.Observe(b.metrics, b.opts.Provider, "synthesize", func() error {
		var err error
		audio, err = b.synthesizer.SynthesizeSpeech(ctx, text, voice)
		return err
	})
	return audio, err
}

func (b *BatchSynthesizer) synthesizeSync(ctx context.Context, dst locator.Ref, text, voice string) error {
	audio, err := b.speak(ctx, text, voice)
	if err != nil {
		return err
	}
	defer audio.Close()
	return b.store.Put(ctx, dst, audio, -1, storage.ContentTypeAudio)
}

// synthesizeChunks concatenates the mp3 streams of consecutive parts; mp3 frames are
// self-delimiting so the result plays as one file.
func (b *BatchSynthesizer) synthesizeChunks(ctx context.Context, dst locator.Ref, text, voice string) error {
	var buf bytes.Buffer
	for _, part := range SplitText(text, b.opts.SyncLimit) {
		audio, err := b.speak(ctx, part, voice)
		if err != nil {
			return err
		}
		_, err = io.Copy(&buf, audio)
		audio.Close()
		if err != nil {
			return apperrors.Wrap(err, "failed to read synthesized audio")
		}
	}
	return b.store.Put(ctx, dst, &buf, int64(buf.Len()), storage.ContentTypeAudio)
}

func (b *BatchSynthesizer) synthesizeTask(ctx context.Context, dst locator.Ref, text, voice string) error {
	task, err := b.longForm.Starter.StartSynthesis(ctx, jobs.SynthesisInput{
		Bucket:    dst.Bucket,
		KeyPrefix: TaskPrefix,
		Text:      text,
		Voice:     voice,
	})
	if err != nil {
		return err
	}

	job, err := b.longForm.Waiter.Wait(ctx, model.JobKindSynthesis, task.JobName)
	if err != nil {
		return err
	}
	if job.Status == model.JobStatusFailed {
		return apperrors.Service("synthesis task "+task.JobName, apperrors.New(job.FailureReason))
	}

	location := job.ResultLocation
	if location == "" {
		location = task.ResultURI
	}
	src, err := locator.ParseURI(location)
	if err != nil {
		return err
	}
	return b.store.Copy(ctx, src, dst)
}

// SplitText cuts text into parts of at most limit characters, preferring sentence ends and
// then spaces as cut points.
func SplitText(text string, limit int) []string {
	var parts []string
	rest := []rune(strings.TrimSpace(text))
	for len(rest) > limit {
		cut := lastBreak(rest[:limit], ".!?。")
		if cut <= 0 {
			cut = lastBreak(rest[:limit], " \n\t")
		}
		if cut <= 0 {
			cut = limit
		}
		if part := strings.TrimSpace(string(rest[:cut])); part != "" {
			parts = append(parts, part)
		}
		rest = []rune(strings.TrimSpace(string(rest[cut:])))
	}
	if len(rest) > 0 {
		parts = append(parts, string(rest))
	}
	return parts
}

// lastBreak returns the index just past the last rune of window found in set.
func lastBreak(window []rune, set string) int {
	for i := len(window) - 1; i >= 0; i-- {
		if strings.ContainsRune(set, window[i]) {
			return i + 1
		}
	}
	return 0
}
