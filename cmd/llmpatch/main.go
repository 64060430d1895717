// Command llmpatch generates a patch for an issue with Gemini and safely
// applies it to a git working tree, repairing and retrying within a bounded
// attempt budget.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fwojciec/llmpatch"
	"github.com/fwojciec/llmpatch/fs"
	"github.com/fwojciec/llmpatch/gemini"
	"github.com/fwojciec/llmpatch/git"
	"github.com/fwojciec/llmpatch/gitdiff"
	"github.com/fwojciec/llmpatch/jsonl"
	"github.com/fwojciec/llmpatch/toml"
)

// maxTreeFiles bounds the repository file listing included in prompts.
const maxTreeFiles = 120

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath = flag.String("config", "llmpatch.toml", "path to the TOML configuration file")
		dir        = flag.String("dir", "", "git working tree to apply the patch to (default: current directory)")
		title      = flag.String("title", "", "issue title (required)")
		bodyFile   = flag.String("body-file", "", "file containing the issue body")
		reviewFile = flag.String("review-file", "", "file containing the latest review feedback")
		issue      = flag.Int("issue", 0, "issue number; when set, the issue context is written under .ai/")
		logPath    = flag.String("log", "", "append per-attempt JSONL records to this file")
	)
	flag.Parse()

	if *title == "" {
		return errors.New("usage: llmpatch -title <issue title> [-body-file FILE] [flags]")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := toml.LoadConfig(*configPath)
	if err != nil {
		return err
	}
	model := cfg.Model
	if model == "" {
		model = gemini.DefaultModel
	}

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return errors.New("GEMINI_API_KEY environment variable required")
	}
	client, err := gemini.NewClient(ctx, apiKey)
	if err != nil {
		return fmt.Errorf("failed to create Gemini client: %w", err)
	}
	defer client.Close()

	body, err := readOptional(*bodyFile)
	if err != nil {
		return err
	}
	review, err := readOptional(*reviewFile)
	if err != nil {
		return err
	}

	if *issue > 0 {
		writer := fs.NewIssueWriter(fs.DefaultDir)
		if path, werr := writer.Write(*issue, *title, body); werr == nil {
			fmt.Printf("wrote %s\n", path)
		}
	}

	runner := git.NewRunner(*dir)

	req := llmpatch.GenerateRequest{
		IssueTitle: *title,
		IssueBody:  body,
		Review:     review,
	}
	if files, lerr := runner.LsFiles(ctx); lerr == nil {
		req.FileTree = gemini.FormatFileTree(files, maxTreeFiles)
	}

	pipeline := &llmpatch.Pipeline{
		Generator: gemini.NewGenerator(client, model, cfg.Policy),
		Parser:    gitdiff.NewParser(),
		Applier:   runner,
		Config:    cfg,
	}
	if *logPath != "" {
		pipeline.Recorder = jsonl.NewRecorder(*logPath)
	}

	res, err := pipeline.Run(ctx, req)
	if err != nil {
		var exhausted *llmpatch.ExhaustedError
		if errors.As(err, &exhausted) {
			fmt.Printf("patch not applied after %d attempts (last state %s, %s)\n",
				exhausted.Attempts, exhausted.State, llmpatch.KindOf(exhausted.Err))
			fmt.Printf("last failure: %v\n", exhausted.Err)
			if exhausted.RawPreview != "" {
				fmt.Printf("raw preview:\n%s\n", exhausted.RawPreview)
			}
		}
		return err
	}

	fmt.Printf("patch applied (%s) on attempt %d\n", res.Mode, res.Attempts)
	if res.Notes != "" {
		fmt.Printf("notes: %s\n", res.Notes)
	}
	return nil
}

func readOptional(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
