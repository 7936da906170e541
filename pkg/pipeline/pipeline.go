package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shouni/mnemonic-image-kit/pkg/adapters"
	"github.com/shouni/mnemonic-image-kit/pkg/domain"
	"github.com/shouni/mnemonic-image-kit/pkg/generator"
	"github.com/shouni/mnemonic-image-kit/pkg/imgutil"
	"github.com/shouni/mnemonic-image-kit/pkg/prompt"
	"github.com/shouni/mnemonic-image-kit/pkg/store"
)

var (
	// ErrNoImageAvailable は画像生成に失敗し、フォールバック画像もなかったことを示します。
	ErrNoImageAvailable = errors.New("no image available")
	// ErrPersistFailed は画像の取得・デコード・保存のいずれかに失敗したことを示します。
	ErrPersistFailed = errors.New("image persist failed")
)

// ImageFetcher は画像参照からバイト列を取得します。
type ImageFetcher interface {
	Fetch(ctx context.Context, ref domain.ImageReference) ([]byte, error)
}

// ImageStore は PNG データを出力ディレクトリに保存し、そのパスを返します。
type ImageStore interface {
	Save(ctx context.Context, filename string, data []byte) (string, error)
}

// Options はパイプラインの読み取り専用設定です。
type Options struct {
	NegativePrompt    string
	FallbackImagePath string
	// CallTimeout はリモート呼び出し1回あたりの上限です。0 以下なら親 context に従います。
	CallTimeout time.Duration
}

// Pipeline はパスフレーズから記憶画像を作り、ローカルに保存します。
// 呼び出し間で共有する可変状態を持たないため、複数のゴルーチンから同時に呼び出せます。
type Pipeline struct {
	prompts prompt.Synthesizer
	images  generator.ImageSynthesizer
	fetcher ImageFetcher
	store   ImageStore
	opts    Options
}

// New は依存関係を注入して Pipeline を初期化します。
func New(prompts prompt.Synthesizer, images generator.ImageSynthesizer, fetcher ImageFetcher, imageStore ImageStore, opts Options) (*Pipeline, error) {
	if prompts == nil {
		return nil, fmt.Errorf("prompt synthesizer is required")
	}
	if images == nil {
		return nil, fmt.Errorf("image synthesizer is required")
	}
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}
	if imageStore == nil {
		return nil, fmt.Errorf("store is required")
	}
	if opts.CallTimeout < 0 {
		return nil, fmt.Errorf("call timeout must not be negative")
	}

	return &Pipeline{
		prompts: prompts,
		images:  images,
		fetcher: fetcher,
		store:   imageStore,
		opts:    opts,
	}, nil
}

// Generate はプロンプト生成、画像生成、保存を順に実行し、保存先パスを返します。
// 各段階は失敗してもリトライせず、可能な限り品質を落として先へ進みます。
// 失敗時に返すのは ErrNoImageAvailable か ErrPersistFailed をラップしたエラーで、
// 対象パスに新しいファイルは残りません。
func (p *Pipeline) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	start := time.Now()
	defer func() { pipelineDuration.Observe(time.Since(start).Seconds()) }()

	if err := store.ValidateFilename(req.OutputFilename); err != nil {
		return "", err
	}

	// パスフレーズはログに出さない。呼び出しは invocation_id で識別する。
	log := slog.With("invocation_id", uuid.NewString(), "output_filename", req.OutputFilename)
	log.InfoContext(ctx, "記憶画像の生成を開始します", "passphrase_len", len(req.Passphrase))

	effectivePrompt := p.synthesizePrompt(ctx, log, req.Passphrase)

	ref, err := p.resolveImage(ctx, log, effectivePrompt)
	if err != nil {
		return "", err
	}

	path, err := p.persist(ctx, log, ref, req.OutputFilename)
	if err != nil {
		persistTotal.WithLabelValues(outcomeFailure).Inc()
		log.ErrorContext(ctx, "画像を保存できませんでした", "reference", ref.Kind.String(), "error", err)
		return "", err
	}

	persistTotal.WithLabelValues(outcomeSuccess).Inc()
	log.InfoContext(ctx, "記憶画像を保存しました", "path", path, "reference", ref.Kind.String(), "elapsed", time.Since(start))
	return path, nil
}

// synthesizePrompt は失敗時にパスフレーズそのものをプロンプトとして返します。
func (p *Pipeline) synthesizePrompt(ctx context.Context, log *slog.Logger, passphrase string) string {
	callCtx, cancel := p.callContext(ctx)
	defer cancel()

	generated, err := p.prompts.Synthesize(callCtx, passphrase)
	if err != nil {
		promptStageTotal.WithLabelValues(outcomeDegraded).Inc()
		log.WarnContext(ctx, "プロンプト生成に失敗したため、パスフレーズをそのまま使います", "error", err)
		return passphrase
	}

	promptStageTotal.WithLabelValues(outcomeGenerated).Inc()
	log.DebugContext(ctx, "プロンプトを生成しました", "prompt", generated)
	return generated
}

// resolveImage は生成画像のURLか、フォールバック画像の参照を返します。
func (p *Pipeline) resolveImage(ctx context.Context, log *slog.Logger, effectivePrompt string) (domain.ImageReference, error) {
	callCtx, cancel := p.callContext(ctx)
	defer cancel()

	ref, err := p.images.GenerateImage(callCtx, effectivePrompt, p.opts.NegativePrompt)
	if err == nil && !ref.IsZero() {
		imageStageTotal.WithLabelValues(outcomeRemote).Inc()
		return ref, nil
	}
	if err == nil {
		err = generator.ErrNoImage
	}

	fallback := p.opts.FallbackImagePath
	if fallback != "" && adapters.FileExists(fallback) {
		imageStageTotal.WithLabelValues(outcomeFallback).Inc()
		log.WarnContext(ctx, "画像生成に失敗したため、フォールバック画像を使います", "fallback", fallback, "error", err)
		return domain.NewLocalReference(fallback), nil
	}

	imageStageTotal.WithLabelValues(outcomeUnavailable).Inc()
	log.ErrorContext(ctx, "画像生成に失敗し、フォールバック画像も見つかりません", "fallback", fallback, "error", err)
	return domain.ImageReference{}, fmt.Errorf("%w: %v", ErrNoImageAvailable, err)
}

func (p *Pipeline) persist(ctx context.Context, log *slog.Logger, ref domain.ImageReference, filename string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrPersistFailed, err)
	}

	fetchCtx, cancel := p.callContext(ctx)
	defer cancel()

	data, err := p.fetcher.Fetch(fetchCtx, ref)
	if err != nil {
		return "", fmt.Errorf("%w: fetch: %w", ErrPersistFailed, err)
	}

	pngData, srcFormat, err := imgutil.EncodePNG(data)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrPersistFailed, err)
	}
	log.DebugContext(ctx, "画像をPNGに変換しました", "source_format", srcFormat, "size_bytes", len(pngData))

	path, err := p.store.Save(ctx, filename, pngData)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrPersistFailed, err)
	}
	return path, nil
}

func (p *Pipeline) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.opts.CallTimeout > 0 {
		return context.WithTimeout(ctx, p.opts.CallTimeout)
	}
	return context.WithCancel(ctx)
}
