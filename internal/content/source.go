package content

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var (
	// ErrNoMarkdownFiles is returned when an input directory contains no .md files.
	ErrNoMarkdownFiles = errors.New("input directory contains no markdown files")

	// ErrInputNotFound is returned when the input path does not exist.
	ErrInputNotFound = errors.New("input path not found")
)

// resolveText obtains markdown text for the input path, in order of
// preference: a directory of .md files, a single .md file, or text extraction
// from a PDF/image. The returned cleanup func removes any temporary
// extraction artifacts and is safe to call unconditionally.
func (v *Validator) resolveText(ctx context.Context, inputPath string) (string, func(), error) {
	noop := func() {}

	info, err := os.Stat(inputPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", noop, fmt.Errorf("%w: %s", ErrInputNotFound, inputPath)
		}
		return "", noop, fmt.Errorf("failed to access input: %w", err)
	}

	if info.IsDir() {
		text, err := readMarkdownDir(inputPath)
		return text, noop, err
	}

	if strings.ToLower(filepath.Ext(inputPath)) == ".md" {
		data, err := os.ReadFile(inputPath)
		if err != nil {
			return "", noop, fmt.Errorf("failed to read markdown file: %w", err)
		}
		return string(data), noop, nil
	}

	// PDF or image: extract into a temp dir that lives only for this validation.
	tempDir, err := os.MkdirTemp("", "content-val-*")
	if err != nil {
		return "", noop, fmt.Errorf("failed to create extraction dir: %w", err)
	}
	cleanup := func() { os.RemoveAll(tempDir) }

	extractor, err := v.newExtractor(ctx)
	if err != nil {
		return "", cleanup, fmt.Errorf("failed to create markdown from input: %w", err)
	}

	result, err := extractor.ExtractMarkdown(ctx, inputPath, tempDir)
	if err != nil {
		return "", cleanup, fmt.Errorf("failed to create markdown from input: %w", err)
	}

	v.log.Debug().
		Str("input", inputPath).
		Int("pages", result.PageCount).
		Str("engine", result.Engine).
		Msg("Extracted markdown from input")

	return result.Markdown, cleanup, nil
}

// readMarkdownDir concatenates every .md file in dir, sorted by file name,
// with blank-line separators.
func readMarkdownDir(dir string) (string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.md"))
	if err != nil {
		return "", fmt.Errorf("failed to list markdown files: %w", err)
	}
	if len(files) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNoMarkdownFiles, dir)
	}
	sort.Strings(files)

	parts := make([]string, 0, len(files))
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", file, err)
		}
		parts = append(parts, string(data))
	}
	return strings.Join(parts, "\n\n"), nil
}
