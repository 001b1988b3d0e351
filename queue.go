package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"
)

// dedupeUseCases drops repeated problems: case-insensitive equality, or
// substring containment when both problems are at least 10 characters.
func dedupeUseCases(cases []UseCase) []UseCase {
	var kept []UseCase
	for _, uc := range cases {
		problem := strings.ToLower(strings.TrimSpace(uc.Problem))
		if problem == "" {
			continue
		}
		duplicate := false
		for _, prev := range kept {
			prevProblem := strings.ToLower(strings.TrimSpace(prev.Problem))
			if problem == prevProblem {
				duplicate = true
				break
			}
			if len(problem) >= 10 && len(prevProblem) >= 10 &&
				(strings.Contains(problem, prevProblem) || strings.Contains(prevProblem, problem)) {
				duplicate = true
				break
			}
		}
		if !duplicate {
			kept = append(kept, uc)
		}
	}
	return kept
}

// toolAssignment is the JSON shape the model returns for mapping fill-in.
type toolAssignment struct {
	Problem string   `json:"problem"`
	Tools   []string `json:"tools"`
}

const assignInstructions = `You assign affiliate tools to business problems for an editorial pipeline.
For every problem, pick the one or two tools from the catalogue that solve it most directly.
Use the exact tool names from the catalogue.
Respond with a JSON array only, no prose: [{"problem": "...", "tools": ["..."]}]`

// assignToolsWithModel asks the model to map unassigned problems to
// catalogue tools. Assignments whose tool names do not resolve (exactly,
// then case-insensitively) against the catalogue are dropped.
func assignToolsWithModel(client *modelClient, problems []string, tools []Tool, j *journal) []MappingEntry {
	if len(problems) == 0 || len(tools) == 0 {
		return nil
	}

	var input strings.Builder
	input.WriteString("Tool catalogue:\n")
	for _, t := range tools {
		fmt.Fprintf(&input, "- %s (%s)\n", t.Name, t.Category)
	}
	input.WriteString("\nProblems:\n")
	for _, p := range problems {
		fmt.Fprintf(&input, "- %s\n", p)
	}

	ctx, cancel := context.WithTimeout(context.Background(), remoteTimeout)
	defer cancel()
	response, err := client.Complete(ctx, assignInstructions, input.String())
	if err != nil {
		j.Error("mapping", "tool assignment: "+err.Error())
		return nil
	}

	var assignments []toolAssignment
	if err := json.Unmarshal([]byte(stripCodeFence(response)), &assignments); err != nil {
		j.Error("mapping", "tool assignment returned malformed JSON: "+err.Error())
		return nil
	}

	asked := map[string]bool{}
	for _, p := range problems {
		asked[p] = true
	}

	var entries []MappingEntry
	for _, a := range assignments {
		if !asked[a.Problem] {
			continue
		}
		var resolved []string
		for _, name := range a.Tools {
			if canonical, ok := resolveToolName(name, tools); ok {
				resolved = append(resolved, canonical)
			} else {
				j.Warn("mapping", fmt.Sprintf("dropping unknown tool %q for %q", name, a.Problem))
			}
		}
		if len(resolved) == 0 {
			continue
		}
		if len(resolved) > 2 {
			resolved = resolved[:2]
		}
		entries = append(entries, MappingEntry{Problem: a.Problem, Tools: resolved})
	}
	return entries
}

// resolveToolName matches a name against the catalogue, exactly first and
// case-insensitively as a fallback, returning the canonical name.
func resolveToolName(name string, tools []Tool) (string, bool) {
	for _, t := range tools {
		if t.Name == name {
			return t.Name, true
		}
	}
	for _, t := range tools {
		if strings.EqualFold(t.Name, name) {
			return t.Name, true
		}
	}
	return "", false
}

// stripCodeFence unwraps a ```json fenced response.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.Index(s, "\n"); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}

// generateStats summarises one generate run.
type generateStats struct {
	Assigned  int // mapping entries gained
	Queued    int // queue entries appended
	Skeletons int // drafts written to disk
}

// runGenerate drives the queue mutator and the skeleton renderer: use
// cases gain tool assignments, become queue entries, and todo entries are
// materialised as drafts.
func runGenerate(cfg *Config, client *modelClient, j *journal) (generateStats, error) {
	var stats generateStats

	cases, err := loadUseCases(cfg.UseCasesPath(), j)
	if err != nil {
		return stats, err
	}
	tools, err := loadTools(cfg.ToolsPath(), j)
	if err != nil {
		return stats, err
	}
	mapping, err := loadMapping(cfg.MappingPath(), j)
	if err != nil {
		return stats, err
	}
	queue, err := loadQueue(cfg.QueuePath(), j)
	if err != nil {
		return stats, err
	}

	cases = dedupeUseCases(cases)

	mapped := map[string]MappingEntry{}
	for _, m := range mapping {
		mapped[m.Problem] = m
	}

	// Ask the model to cover unmapped problems.
	var unmapped []string
	for _, uc := range cases {
		if uc.Status != StatusTodo {
			continue
		}
		if _, ok := mapped[uc.Problem]; !ok {
			unmapped = append(unmapped, uc.Problem)
		}
	}
	if len(unmapped) > 0 && client != nil {
		log.Printf("→ Assigning tools to %d unmapped problem(s)", len(unmapped))
		assigned := assignToolsWithModel(client, unmapped, tools, j)
		for _, m := range assigned {
			mapping = append(mapping, m)
			mapped[m.Problem] = m
		}
		stats.Assigned = len(assigned)
		if len(assigned) > 0 {
			if err := saveMapping(cfg.MappingPath(), mapping); err != nil {
				return stats, fmt.Errorf("saving mapping: %w", err)
			}
		}
	}

	// Queue entries, deduplicated on (title, primary_tool, content_type).
	seen := map[string]bool{}
	for _, q := range queue {
		seen[queueKey(q.Title, q.PrimaryTool, q.ContentType)] = true
	}
	for i := range cases {
		uc := &cases[i]
		if uc.Status != StatusTodo {
			continue
		}
		m, ok := mapped[uc.Problem]
		if !ok {
			continue
		}
		entry := queueEntryFromUseCase(*uc, m)
		if seen[queueKey(entry.Title, entry.PrimaryTool, entry.ContentType)] {
			uc.Status = StatusGenerated
			continue
		}
		seen[queueKey(entry.Title, entry.PrimaryTool, entry.ContentType)] = true
		queue = append(queue, entry)
		uc.Status = StatusGenerated
		stats.Queued++
	}

	// Materialise todo queue entries as drafts.
	store := newTemplateStore(cfg.TemplatesDir())
	conv := newBodyConverter()
	today := time.Now().Format("2006-01-02")
	for i := range queue {
		if queue[i].Status != StatusTodo {
			continue
		}
		candidates := loadLinkCandidates(cfg.ArticlesDir(), conv, j)
		path, err := writeSkeleton(cfg, store, queue[i], candidates, today)
		if err != nil {
			j.Error(slugify(queue[i].PrimaryKeyword), "skeleton: "+err.Error())
			continue
		}
		log.Printf("✓ Draft: %s", path)
		queue[i].Status = StatusGenerated
		stats.Skeletons++
	}

	if err := saveQueue(cfg.QueuePath(), queue); err != nil {
		return stats, fmt.Errorf("saving queue: %w", err)
	}
	if err := saveUseCases(cfg.UseCasesPath(), cases); err != nil {
		return stats, fmt.Errorf("saving use cases: %w", err)
	}
	return stats, nil
}

func queueKey(title, primaryTool, contentType string) string {
	return title + "\x00" + primaryTool + "\x00" + contentType
}

// queueEntryFromUseCase builds the materialisation directive for one use
// case and its editorial tool assignment.
func queueEntryFromUseCase(uc UseCase, m MappingEntry) QueueEntry {
	entry := QueueEntry{
		Title:          uc.Problem,
		ContentType:    uc.SuggestedContentType,
		Category:       uc.CategorySlug,
		PrimaryKeyword: strings.ToLower(uc.Problem),
		AudienceType:   uc.AudienceType,
		BatchID:        uc.BatchID,
		Status:         StatusTodo,
	}
	if ct, known := normalizeContentType(uc.SuggestedContentType); !known {
		entry.ContentType = ct
	}
	if len(m.Tools) > 0 {
		entry.PrimaryTool = m.Tools[0]
	}
	if len(m.Tools) > 1 {
		entry.SecondaryTool = m.Tools[1]
	}
	entry.Tools = strings.Join(m.Tools, ", ")
	return entry
}
