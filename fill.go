package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
)

// fillOptions controls one fill run.
type fillOptions struct {
	Write  bool // false is a dry run: report what would change
	Force  bool // ignore status and placeholder preconditions
	Gate   bool // enforce the content contract with retries
	QA     bool // enforce the structural invariants
	Block  bool // flip exhausted articles to status: blocked
	Strict bool // raise the QA word floor
}

// fillEngine drives the placeholder→prose rewrite for articles on disk.
// It never raises across the remote-call boundary: every per-article
// failure becomes an outcome and a journal line.
type fillEngine struct {
	cfg     *Config
	client  *modelClient
	journal *journal
	costs   *costLedger
	conv    *md.Converter
	opts    fillOptions
	today   func() string
}

func newFillEngine(cfg *Config, client *modelClient, j *journal, costs *costLedger, opts fillOptions) *fillEngine {
	return &fillEngine{
		cfg:     cfg,
		client:  client,
		journal: j,
		costs:   costs,
		conv:    newBodyConverter(),
		opts:    opts,
		today:   func() string { return time.Now().Format("2006-01-02") },
	}
}

// FillAll processes the content tree in sorted filename order. slugFilter
// restricts the run to one article; limit caps the number processed.
func (e *fillEngine) FillAll(limit int, slugFilter string) ([]FillResult, error) {
	paths, err := listArticleFiles(e.cfg.ArticlesDir())
	if err != nil {
		return nil, err
	}

	var results []FillResult
	processed := 0
	for i, path := range paths {
		if limit > 0 && processed >= limit {
			break
		}
		if slugFilter != "" && !strings.HasPrefix(filepath.Base(path), slugFilter) {
			continue
		}
		log.Printf("[%d/%d] %s", i+1, len(paths), filepath.Base(path))
		result := e.FillArticle(path)
		results = append(results, result)
		if result.Outcome != OutcomeSkip {
			processed++
		}
		switch result.Outcome {
		case OutcomeWrote:
			log.Printf("✓ Filled: %s", result.Slug)
		case OutcomeWouldFill:
			log.Printf("→ Would fill: %s", result.Slug)
		case OutcomeSkip:
			log.Printf("→ Skipped: %s", result.Slug)
		default:
			log.Printf("✗ %s: %s %v", result.Outcome, result.Slug, result.Reasons)
		}
	}
	return results, nil
}

// FillArticle runs the full pipeline for one article path.
func (e *fillEngine) FillArticle(path string) FillResult {
	article, err := readArticleFile(path, e.conv)
	if err != nil {
		slug := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		e.journal.Warn(slug, err.Error())
		return FillResult{Path: path, Slug: slug, Outcome: OutcomeSkip, Err: err}
	}
	slug := article.Slug()
	result := FillResult{Path: path, Slug: slug}

	// Preconditions, bypassed under force (refresh refills filled articles).
	if !e.opts.Force {
		status := article.FM.Get(keyStatus)
		if status == StatusFilled || status == StatusBlocked {
			result.Outcome = OutcomeSkip
			result.Reasons = []string{"status " + status}
			return result
		}
		if !hasBracketPlaceholders(article.Body) {
			result.Outcome = OutcomeSkip
			result.Reasons = []string{"no placeholders"}
			return result
		}
	}

	if !e.opts.Write {
		result.Outcome = OutcomeWouldFill
		return result
	}

	contentType, _ := normalizeContentType(article.FM.Get(keyContentType))
	instructions := buildInstructions(contentType, article.FM.ToolList())
	input := buildUserInput(article.FM, article.Body)

	filled, rawLen, err := e.callAndClean(instructions, input)
	if err != nil {
		e.journal.Error(slug, err.Error())
		result.Outcome = OutcomeAPIFail
		result.Err = err
		return result
	}

	// Quality gate: retry with feedback until the contract holds.
	if e.opts.Gate {
		missing := missingMarkers(filled, contentType)
		for attempt := 1; len(missing) > 0 && attempt <= e.cfg.Settings.QualityRetries; attempt++ {
			log.Printf("  → Quality retry %d/%d, missing: %s", attempt, e.cfg.Settings.QualityRetries, strings.Join(missing, ", "))
			retryBody, retryLen, err := e.callAndClean(qualityFeedback(missing)+instructions, input)
			if err != nil {
				e.journal.Error(slug, err.Error())
				result.Outcome = OutcomeAPIFail
				result.Err = err
				return result
			}
			filled, rawLen = retryBody, retryLen
			missing = missingMarkers(filled, contentType)
		}
		if len(missing) > 0 {
			reason := "quality gate exhausted, missing markers: " + strings.Join(missing, ", ")
			e.journal.Error(slug, reason)
			result.Reasons = []string{reason}
			if e.opts.Block {
				if err := e.writeBlocked(article); err != nil {
					result.Err = err
					result.Outcome = OutcomeSkip
					return result
				}
				result.Outcome = OutcomeBlocked
				return result
			}
			result.Outcome = OutcomeQualityFail
			return result
		}
	}

	// Structural QA.
	if e.opts.QA {
		if reasons := structuralQA(article.Body, filled, e.opts.Strict); len(reasons) > 0 {
			e.journal.Error(slug, "structural QA failed: "+strings.Join(reasons, "; "))
			result.Reasons = reasons
			if e.opts.Block {
				if err := e.writeBlocked(article); err != nil {
					result.Err = err
					result.Outcome = OutcomeSkip
					return result
				}
				result.Outcome = OutcomeBlocked
				return result
			}
			result.Outcome = OutcomeQAFail
			return result
		}
	}

	if err := e.writeFilled(article, filled); err != nil {
		e.journal.Error(slug, err.Error())
		result.Outcome = OutcomeSkip
		result.Err = err
		return result
	}

	tokens := estimateTokens(instructions) + estimateTokens(input) + rawLen/4
	if err := e.costs.Add(e.today(), costForTokens(tokens)); err != nil {
		e.journal.Warn(slug, "cost ledger: "+err.Error())
	}

	result.Outcome = OutcomeWrote
	return result
}

// callAndClean performs one model call and the unconditional post-
// processing: frontmatter unwrap, vocabulary sanitisation, editor-note
// removal. rawLen is the response size for cost estimation.
func (e *fillEngine) callAndClean(instructions, input string) (body string, rawLen int, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), remoteTimeout)
	defer cancel()
	response, err := e.client.Complete(ctx, instructions, input)
	if err != nil {
		return "", 0, err
	}
	body = stripResponseFrontmatter(response)
	body, counts := sanitizeBody(body)
	for phrase, n := range counts {
		log.Printf("  → Sanitised %q ×%d", phrase, n)
	}
	body = stripEditorNotes(body)
	return body, len(response), nil
}

// writeFilled commits the fill in two steps: the .bak carries the previous
// bytes, then the filled version overwrites. If the backup fails the
// overwrite must not run. Legacy HTML sources are rewritten as canonical
// markdown.
func (e *fillEngine) writeFilled(article *articleFile, filled string) error {
	if err := writeBackup(article.Path, article.Raw); err != nil {
		return err
	}
	content := serializeFrontmatter(article.FM, StatusFilled) + "\n" + strings.TrimLeft(filled, "\n")
	return writeCanonical(article, content)
}

// writeBlocked flips the article to status: blocked, body preserved.
func (e *fillEngine) writeBlocked(article *articleFile) error {
	if err := writeBackup(article.Path, article.Raw); err != nil {
		return err
	}
	content := serializeFrontmatter(article.FM, StatusBlocked) + "\n" + strings.TrimLeft(article.Body, "\n")
	return writeCanonical(article, content)
}

func writeBackup(path, raw string) error {
	if err := os.WriteFile(path+".bak", []byte(raw), 0644); err != nil {
		return fmt.Errorf("writing backup for %s: %w", path, err)
	}
	return nil
}

// writeCanonical writes markdown output; a .html source is replaced by its
// .md successor. A failed overwrite is rolled back from the in-memory
// previous bytes so a partial write never survives.
func writeCanonical(article *articleFile, content string) error {
	outPath := article.Path
	if article.HTML {
		outPath = strings.TrimSuffix(article.Path, filepath.Ext(article.Path)) + ".md"
	}
	if err := os.WriteFile(outPath, []byte(content), 0644); err != nil {
		if article.HTML {
			os.Remove(outPath)
		} else {
			os.WriteFile(outPath, []byte(article.Raw), 0644)
		}
		return fmt.Errorf("writing %s: %w", outPath, err)
	}
	if article.HTML {
		os.Remove(article.Path)
	}
	return nil
}

// stripResponseFrontmatter unwraps a response the model returned inside a
// frontmatter block of its own.
func stripResponseFrontmatter(text string) string {
	trimmed := strings.TrimLeft(text, "\n")
	if !strings.HasPrefix(trimmed, "---") {
		return text
	}
	if _, body, _, err := parseFrontmatter(trimmed); err == nil {
		return body
	}
	return text
}

// Vocabulary sanitisation applied outside heading lines. Longer forms run
// first so guarantee never strands a trailing d.
var sanitizeRules = []struct {
	re          *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`(?i)\bguaranteed\b`), "assured"},
	{regexp.MustCompile(`(?i)\bguarantee\b`), "assure"},
	{regexp.MustCompile(`(?i)\bthe best\b`), "a strong option"},
	{regexp.MustCompile(`(?i)\bpricing\b`), "cost"},
}

// sanitizeBody rewrites denied vocabulary line by line, skipping headings,
// and returns per-phrase replacement counts.
func sanitizeBody(body string) (string, map[string]int) {
	counts := map[string]int{}
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, "#") {
			continue
		}
		for _, rule := range sanitizeRules {
			if n := len(rule.re.FindAllString(line, -1)); n > 0 {
				line = rule.re.ReplaceAllString(line, rule.replacement)
				counts[rule.replacement] += n
			}
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n"), counts
}

// Editor-note bracket lines the model sometimes echoes back.
var editorNoteMarkers = []string{"internal-links", "cta", "disclosure"}

// stripEditorNotes drops whole lines that are bracket-only editor notes.
func stripEditorNotes(body string) string {
	lines := strings.Split(body, "\n")
	out := lines[:0]
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			lower := strings.ToLower(trimmed)
			note := false
			for _, marker := range editorNoteMarkers {
				if strings.Contains(lower, marker) {
					note = true
					break
				}
			}
			if note {
				continue
			}
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
