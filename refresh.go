package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

var filenameDateRe = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})-`)

// staleArticle pairs a path with its resolved last-updated date.
type staleArticle struct {
	Path        string
	LastUpdated time.Time
}

// articleLastUpdated resolves an article's age from its frontmatter
// last_updated, falling back to a YYYY-MM-DD- filename prefix.
func articleLastUpdated(path string, fm *Frontmatter) (time.Time, bool) {
	if raw := fm.Get(keyLastUpdated); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			return t, true
		}
	}
	if m := filenameDateRe.FindStringSubmatch(filepath.Base(path)); m != nil {
		if t, err := time.Parse("2006-01-02", m[1]); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// selectStaleArticles returns articles older than the threshold, oldest
// first, optionally capped.
func selectStaleArticles(dir string, thresholdDays, limit int, now time.Time, j *journal) ([]staleArticle, error) {
	paths, err := listArticleFiles(dir)
	if err != nil {
		return nil, err
	}
	cutoff := now.AddDate(0, 0, -thresholdDays)
	conv := newBodyConverter()

	var stale []staleArticle
	for _, path := range paths {
		a, err := readArticleFile(path, conv)
		if err != nil {
			if j != nil {
				j.Warn(filepath.Base(path), err.Error())
			}
			continue
		}
		updated, ok := articleLastUpdated(path, a.FM)
		if !ok || !updated.Before(cutoff) {
			continue
		}
		stale = append(stale, staleArticle{Path: path, LastUpdated: updated})
	}
	sort.SliceStable(stale, func(i, j int) bool {
		return stale[i].LastUpdated.Before(stale[j].LastUpdated)
	})
	if limit > 0 && len(stale) > limit {
		stale = stale[:limit]
	}
	return stale, nil
}

// runRefresh re-fills every stale article in write+force mode with the
// quality gate on. Only a successful fill advances last_updated.
func runRefresh(cfg *Config, client *modelClient, j *journal, costs *costLedger, thresholdDays, limit int, dryRun bool) ([]FillResult, error) {
	stale, err := selectStaleArticles(cfg.ArticlesDir(), thresholdDays, limit, time.Now(), j)
	if err != nil {
		return nil, err
	}
	log.Printf("Refreshing %d article(s) older than %d days", len(stale), thresholdDays)

	engine := newFillEngine(cfg, client, j, costs, fillOptions{
		Write:  !dryRun,
		Force:  true,
		Gate:   true,
		QA:     true,
		Block:  cfg.Settings.BlockOnFailure,
		Strict: cfg.Settings.StrictQA,
	})

	today := time.Now().Format("2006-01-02")
	var results []FillResult
	for i, s := range stale {
		log.Printf("[%d/%d] %s (last updated %s)", i+1, len(stale), filepath.Base(s.Path), s.LastUpdated.Format("2006-01-02"))
		result := engine.FillArticle(s.Path)
		if result.Outcome == OutcomeWrote {
			if err := bumpLastUpdated(result.Path, today); err != nil {
				j.Warn(result.Slug, "updating last_updated: "+err.Error())
			} else {
				log.Printf("✓ Refreshed: %s", result.Slug)
			}
		}
		results = append(results, result)
	}
	return results, nil
}

// bumpLastUpdated rewrites the last_updated line inside the frontmatter
// block, leaving every other byte alone. The fill engine rewrites HTML
// sources as markdown, so only the canonical format needs handling here.
func bumpLastUpdated(path, today string) error {
	// The fill may have replaced a .html source with its .md successor.
	if strings.EqualFold(filepath.Ext(path), ".html") {
		md := strings.TrimSuffix(path, filepath.Ext(path)) + ".md"
		if _, err := os.Stat(md); err == nil {
			path = md
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	lines := strings.Split(string(data), "\n")
	inHeader := false
	for i, line := range lines {
		if strings.TrimRight(line, "\r") == "---" {
			if !inHeader && i == 0 {
				inHeader = true
				continue
			}
			break // end of frontmatter
		}
		if inHeader && strings.HasPrefix(line, keyLastUpdated+":") {
			lines[i] = fmt.Sprintf("%s: \"%s\"", keyLastUpdated, today)
			return os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0644)
		}
	}
	return fmt.Errorf("no last_updated line in %s", path)
}
