package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
)

// articleFile is one on-disk article loaded for processing. Markdown files
// with `---` frontmatter are canonical; legacy `.html` files with a leading
// comment header stay readable, their bodies converted to markdown.
type articleFile struct {
	Path string
	Raw  string
	FM   *Frontmatter
	Body string
	HTML bool
}

// Slug returns the article's identity: the frontmatter slug when present,
// otherwise the filename stem minus any audience suffix.
func (a *articleFile) Slug() string {
	if slug := a.FM.Get(keySlug); slug != "" {
		return slug
	}
	stem := strings.TrimSuffix(filepath.Base(a.Path), filepath.Ext(a.Path))
	if i := strings.Index(stem, ".audience_"); i >= 0 {
		stem = stem[:i]
	}
	return stem
}

// newBodyConverter builds the HTML→markdown converter used for legacy
// article bodies.
func newBodyConverter() *md.Converter {
	return md.NewConverter("", true, nil)
}

// readArticleFile loads and parses one article in either storage format.
func readArticleFile(path string, conv *md.Converter) (*articleFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading article %s: %w", path, err)
	}
	raw := string(data)

	if strings.EqualFold(filepath.Ext(path), ".html") {
		fm, htmlBody, err := parseHTMLHeader(raw)
		if err != nil {
			return nil, fmt.Errorf("article %s: %w", path, err)
		}
		body, err := conv.ConvertString(htmlBody)
		if err != nil {
			return nil, fmt.Errorf("converting %s body: %w", path, err)
		}
		return &articleFile{Path: path, Raw: raw, FM: fm, Body: body, HTML: true}, nil
	}

	fm, body, _, err := parseFrontmatter(raw)
	if err != nil {
		return nil, fmt.Errorf("article %s: %w", path, err)
	}
	return &articleFile{Path: path, Raw: raw, FM: fm, Body: body}, nil
}

// listArticleFiles enumerates the content tree in sorted filename order,
// covering both storage formats and skipping backups.
func listArticleFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing articles: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".md", ".html":
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// loadLinkCandidates reads every article's metadata for the link selector.
// Unreadable files are skipped; the selector only loses a candidate.
func loadLinkCandidates(dir string, conv *md.Converter, j *journal) []linkCandidate {
	paths, err := listArticleFiles(dir)
	if err != nil {
		if j != nil {
			j.Warn("links", err.Error())
		}
		return nil
	}
	var candidates []linkCandidate
	for _, path := range paths {
		a, err := readArticleFile(path, conv)
		if err != nil {
			if j != nil {
				j.Warn("links", err.Error())
			}
			continue
		}
		candidates = append(candidates, linkCandidate{
			Title:        a.FM.Get(keyTitle),
			Slug:         a.Slug(),
			Category:     a.FM.Get(keyCategory),
			ContentType:  a.FM.Get(keyContentType),
			BatchID:      a.FM.Get(keyBatchID),
			AudienceType: a.FM.Get(keyAudienceType),
			Tools:        a.FM.ToolList(),
		})
	}
	return candidates
}
