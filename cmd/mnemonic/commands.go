package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shouni/mnemonic-image-kit/pkg/domain"
	"github.com/shouni/mnemonic-image-kit/pkg/pipeline"
)

// imageGenerator は CLI から見たパイプラインです。
type imageGenerator interface {
	Generate(ctx context.Context, req domain.GenerationRequest) (string, error)
	GenerateAll(ctx context.Context, reqs []domain.GenerationRequest, opts pipeline.BatchOptions) []pipeline.Result
}

var (
	errUsage        = errors.New("usage error")
	errGeneration   = errors.New("generation failed")
	errBatchFailure = errors.New("batch had failures")
)

const usage = `usage:
  mnemonic generate -user USER -website SITE [-passphrase PASS]
  mnemonic batch -file requests.json`

// runGenerate はエントリ1件分の画像を生成し、エントリを JSON で出力します。
// 生成に失敗しても image_path が None のエントリを出力し、errGeneration を返します。
func runGenerate(ctx context.Context, gen imageGenerator, args []string, stdin io.Reader, stdout, stderr io.Writer, now func() time.Time) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	user := fs.String("user", "", "ユーザー名")
	website := fs.String("website", "", "Webサイト")
	passphrase := fs.String("passphrase", "", "パスフレーズ（省略時は標準入力の1行目）")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if *user == "" || *website == "" {
		return fmt.Errorf("%w: -user and -website are required", errUsage)
	}

	pass := *passphrase
	if pass == "" {
		line, err := readFirstLine(stdin)
		if err != nil {
			return fmt.Errorf("%w: read passphrase: %v", errUsage, err)
		}
		pass = line
	}
	if pass == "" {
		return fmt.Errorf("%w: passphrase is empty", errUsage)
	}

	req := domain.GenerationRequest{
		Passphrase:     pass,
		OutputFilename: domain.OutputFilename(*user, *website),
	}
	path, genErr := gen.Generate(ctx, req)

	record := domain.NewMnemonicRecord(*website, pass, now(), path, genErr)
	if err := json.NewEncoder(stdout).Encode(record); err != nil {
		return err
	}
	if genErr != nil {
		return fmt.Errorf("%w: %w", errGeneration, genErr)
	}
	return nil
}

type batchLine struct {
	OutputFilename string `json:"output_filename"`
	Path           string `json:"path,omitempty"`
	Error          string `json:"error,omitempty"`
}

// runBatch は JSON 配列のリクエストをまとめて処理し、1リクエスト1行で結果を出力します。
func runBatch(ctx context.Context, gen imageGenerator, opts pipeline.BatchOptions, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("batch", flag.ContinueOnError)
	fs.SetOutput(stderr)
	file := fs.String("file", "", "リクエストのJSONファイル（- で標準入力）")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if *file == "" {
		return fmt.Errorf("%w: -file is required", errUsage)
	}

	reqs, err := readRequests(*file)
	if err != nil {
		return err
	}

	results := gen.GenerateAll(ctx, reqs, opts)

	enc := json.NewEncoder(stdout)
	failed := 0
	for _, r := range results {
		line := batchLine{OutputFilename: r.Request.OutputFilename, Path: r.Path}
		if r.Err != nil {
			failed++
			line.Error = r.Err.Error()
		}
		if err := enc.Encode(line); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d/%d", errBatchFailure, failed, len(results))
	}
	return nil
}

func readRequests(path string) ([]domain.GenerationRequest, error) {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errUsage, err)
		}
		defer f.Close()
		r = f
	}

	var reqs []domain.GenerationRequest
	if err := json.NewDecoder(r).Decode(&reqs); err != nil {
		return nil, fmt.Errorf("%w: decode requests: %v", errUsage, err)
	}
	return reqs, nil
}

func readFirstLine(r io.Reader) (string, error) {
	sc := bufio.NewScanner(r)
	if sc.Scan() {
		return strings.TrimSpace(sc.Text()), nil
	}
	return "", sc.Err()
}
