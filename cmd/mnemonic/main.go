package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	_ "go.uber.org/automaxprocs"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/shouni/mnemonic-image-kit/internal/config"
	"github.com/shouni/mnemonic-image-kit/internal/logger"
	"github.com/shouni/mnemonic-image-kit/pkg/adapters"
	"github.com/shouni/mnemonic-image-kit/pkg/generator"
	"github.com/shouni/mnemonic-image-kit/pkg/pipeline"
	"github.com/shouni/mnemonic-image-kit/pkg/prompt"
	"github.com/shouni/mnemonic-image-kit/pkg/store"
	"github.com/shouni/mnemonic-image-kit/pkg/transport"
)

const jobName = "mnemonic-image"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, usage)
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "設定の読み込みに失敗しました: %v\n", err)
		return 2
	}

	sl, zl, err := logger.NewSlog(cfg.Logger)
	if err != nil {
		fmt.Fprintf(stderr, "ロガーの初期化に失敗しました: %v\n", err)
		return 2
	}
	defer func() { _ = zl.Sync() }()
	slog.SetDefault(sl)

	p, err := buildPipeline(ctx, cfg)
	if err != nil {
		slog.ErrorContext(ctx, "パイプラインを初期化できませんでした", "error", err)
		return 2
	}
	defer pushMetrics(ctx, cfg.PushGatewayURL)

	switch args[0] {
	case "generate":
		err = runGenerate(ctx, p, args[1:], stdin, stdout, stderr, time.Now)
	case "batch":
		opts := pipeline.BatchOptions{
			Concurrency: cfg.BatchConcurrency,
			Limiter:     rate.NewLimiter(rate.Limit(cfg.BatchRatePerSec), 1),
		}
		err = runBatch(ctx, p, opts, args[1:], stdout, stderr)
	default:
		err = fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
	return exitCode(err, stderr)
}

func exitCode(err error, stderr io.Writer) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		fmt.Fprintf(stderr, "%v\n%s\n", err, usage)
		return 2
	default:
		slog.Error("記憶画像の生成に失敗しました", "error", err)
		return 1
	}
}

func buildPipeline(ctx context.Context, cfg *config.Config) (*pipeline.Pipeline, error) {
	httpClient := transport.New(cfg.RequestTimeout)

	prompts, err := buildPromptSynthesizer(ctx, cfg, httpClient)
	if err != nil {
		return nil, err
	}
	images, err := generator.NewLocalAIGenerator(httpClient, cfg.ImageEndpoint)
	if err != nil {
		return nil, err
	}
	fetcher, err := adapters.NewReferenceFetcher(httpClient, adapters.NewLocalReader())
	if err != nil {
		return nil, err
	}
	imageStore, err := store.NewImageStore(cfg.OutputDirectory)
	if err != nil {
		return nil, err
	}

	return pipeline.New(prompts, images, fetcher, imageStore, pipeline.Options{
		NegativePrompt:    cfg.NegativePrompt,
		FallbackImagePath: cfg.FallbackImagePath,
		CallTimeout:       cfg.RequestTimeout,
	})
}

func buildPromptSynthesizer(ctx context.Context, cfg *config.Config, httpClient prompt.HTTPClient) (prompt.Synthesizer, error) {
	if cfg.PromptBackend != config.BackendGemini {
		return prompt.NewChatSynthesizer(httpClient, cfg.LLMEndpoint, cfg.LLMModel, cfg.PromptTemplate)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	aiClient, err := prompt.NewModelsGenerator(client.Models)
	if err != nil {
		return nil, err
	}
	return prompt.NewGeminiSynthesizer(aiClient, cfg.GeminiModel, cfg.PromptTemplate)
}

// pushMetrics は CLI 実行1回分のメトリクスを Pushgateway に送ります。url が空なら何もしません。
func pushMetrics(ctx context.Context, url string) {
	if url == "" {
		return
	}
	hostname, _ := os.Hostname()
	pusher := push.New(url, jobName).
		Grouping("instance", hostname).
		Gatherer(prometheus.DefaultGatherer)
	if err := pusher.PushContext(ctx); err != nil {
		slog.WarnContext(ctx, "Pushgateway へのメトリクス送信に失敗しました", "url", url, "error", err)
		return
	}
	slog.DebugContext(ctx, "メトリクスを送信しました", "url", url)
}
