// Package gemini implements patch generation using Google Gemini.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/fwojciec/llmpatch"
)

// Compile-time interface verification.
var _ llmpatch.Generator = (*Generator)(nil)

// Generator implements llmpatch.Generator using Google Gemini. The policy is
// rendered into the prompt so the model avoids forbidden paths up front; the
// pipeline still enforces it on the result.
type Generator struct {
	client GenerativeClient
	model  string
	policy llmpatch.Policy
}

// NewGenerator creates a new Generator.
func NewGenerator(client GenerativeClient, model string, policy llmpatch.Policy) *Generator {
	return &Generator{client: client, model: model, policy: policy}
}

// Generate requests raw patch text for the given request. The returned text
// carries no structural guarantees; the pipeline sanitizes and repairs it.
func (g *Generator) Generate(ctx context.Context, req llmpatch.GenerateRequest) (string, error) {
	prompt := BuildPrompt(req, g.policy)

	contents := []*Content{{
		Parts: []*Part{{Text: prompt}},
	}}

	resp, err := g.client.GenerateContent(ctx, g.model, contents, BuildConfig())
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", fmt.Errorf("gemini: returned nil response")
	}
	return resp.Text, nil
}

// BuildPrompt creates the user prompt for the Gemini API. On repair attempts
// the prior failure reason is folded in so the model can correct it.
func BuildPrompt(req llmpatch.GenerateRequest, policy llmpatch.Policy) string {
	var sb strings.Builder

	sb.WriteString("You are a senior software engineer acting as a code agent.\n\n")
	sb.WriteString("Return ONLY a valid JSON object with EXACT keys:\n")
	sb.WriteString("- \"patch\": string (a unified diff for `git apply`)\n")
	sb.WriteString("- \"notes\": string (1-2 short lines)\n\n")
	sb.WriteString("Rules for JSON:\n")
	sb.WriteString("- Output MUST be valid JSON (double quotes, no trailing commas).\n")
	sb.WriteString("- No markdown, no code fences, no extra text before/after JSON.\n\n")
	sb.WriteString("Rules for patch:\n")
	sb.WriteString("- patch MUST start with \"diff --git a/\".\n")
	sb.WriteString("- Do NOT include lines starting with: \"index \", \"new file mode\", \"deleted file mode\".\n")
	sb.WriteString("- For new files you MUST use exactly: \"--- /dev/null\" and \"+++ b/<path>\".\n")
	sb.WriteString("- NEVER output '--- dev/null' (without slash).\n")
	sb.WriteString("- Every changed file MUST have at least one @@ hunk.\n")
	sb.WriteString("- Inside hunks, every line MUST start with '+', '-', ' ', or '\\'.\n")
	sb.WriteString("- Keep changes minimal and directly related to the issue / review feedback.\n\n")

	sb.WriteString("Safety constraints:\n")
	fmt.Fprintf(&sb, "- Forbidden exact files: %v\n", policy.DenyExact)
	fmt.Fprintf(&sb, "- Forbidden path prefixes: %v\n", policy.DenyPrefixes)
	fmt.Fprintf(&sb, "- Allowed path prefixes: %v\n", policy.AllowPrefixes)
	fmt.Fprintf(&sb, "- Allowed exact files: %v\n\n", policy.AllowExact)

	if req.FileTree != "" {
		sb.WriteString("Repository file list (partial):\n")
		sb.WriteString(req.FileTree)
		sb.WriteString("\n\n")
	}

	fmt.Fprintf(&sb, "Issue title:\n%s\n\n", req.IssueTitle)
	fmt.Fprintf(&sb, "Issue body:\n%s\n\n", req.IssueBody)

	if req.Review != "" {
		fmt.Fprintf(&sb, "Latest review feedback (fix these issues):\n%s\n\n", req.Review)
	}

	if req.Failure != "" {
		sb.WriteString("Your previous patch attempt failed. ")
		sb.WriteString("Return a NEW patch that WILL apply cleanly with `git apply`. ")
		sb.WriteString("If a file exists, MODIFY it. If missing, CREATE it with --- /dev/null and +++ b/<path>.\n")
		fmt.Fprintf(&sb, "Failure reason:\n%s\n\n", req.Failure)
	}

	sb.WriteString("OUTPUT (JSON only):")
	return sb.String()
}

// BuildConfig returns the GenerateContentConfig for patch generation.
func BuildConfig() *GenerateContentConfig {
	temp := float32(0.2)
	return &GenerateContentConfig{
		SystemInstruction: &Content{
			Parts: []*Part{{
				Text: "You produce minimal, valid unified diffs. You never write prose outside the JSON object.",
			}},
		},
		Temperature:      &temp,
		ResponseMIMEType: "application/json",
	}
}

// FormatFileTree renders a bounded repository file listing for the prompt,
// preferring likely-relevant directories. Keeping this small avoids huge
// prompts that push the model into reasoning-only replies.
func FormatFileTree(files []string, max int) string {
	preferred := make([]string, 0, len(files))
	var rest []string
	for _, f := range files {
		if strings.HasPrefix(f, "build/") {
			continue
		}
		if strings.HasPrefix(f, "src/") || strings.HasPrefix(f, "tests/") || strings.HasPrefix(f, "agents/") {
			preferred = append(preferred, f)
		} else {
			rest = append(rest, f)
		}
	}
	ordered := append(preferred, rest...)
	if max > 0 && len(ordered) > max {
		ordered = ordered[:max]
	}
	return strings.Join(ordered, "\n")
}

// GenerativeClient abstracts the Gemini API for testing.
type GenerativeClient interface {
	GenerateContent(ctx context.Context, model string, contents []*Content, config *GenerateContentConfig) (*GenerateContentResponse, error)
}

// Content represents a message in a Gemini conversation.
type Content struct {
	Parts []*Part
}

// Part represents a part of a message.
type Part struct {
	Text string
}

// GenerateContentConfig holds configuration for content generation.
type GenerateContentConfig struct {
	SystemInstruction *Content
	Temperature       *float32
	ResponseMIMEType  string
}

// GenerateContentResponse holds the response from content generation.
type GenerateContentResponse struct {
	Text string
}

// MockGenerativeClient is a mock implementation of GenerativeClient for testing.
type MockGenerativeClient struct {
	GenerateContentFn func(ctx context.Context, model string, contents []*Content, config *GenerateContentConfig) (*GenerateContentResponse, error)
}

func (m *MockGenerativeClient) GenerateContent(ctx context.Context, model string, contents []*Content, config *GenerateContentConfig) (*GenerateContentResponse, error) {
	return m.GenerateContentFn(ctx, model, contents, config)
}

// APIError represents an error from the Gemini API with HTTP status code.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}
