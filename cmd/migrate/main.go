// migrate converts legacy .html articles (frontmatter in a leading HTML
// comment) into canonical .md files with --- frontmatter.
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: migrate <articles-directory>")
	}
	if err := migrateDir(os.Args[1]); err != nil {
		log.Fatal(err)
	}
}

func migrateDir(dir string) error {
	converter := md.NewConverter("", true, nil)
	converted := 0

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // continue past unreadable entries
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".html") {
			return nil
		}
		if err := migrateFile(path, converter); err != nil {
			log.Printf("Error migrating %s: %v", path, err)
			return nil
		}
		converted++
		return nil
	})
	if err != nil {
		return fmt.Errorf("walking %s: %w", dir, err)
	}

	fmt.Printf("Converted %d file(s)\n", converted)
	return nil
}

func migrateFile(path string, converter *md.Converter) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	header, htmlBody, err := splitCommentHeader(string(data))
	if err != nil {
		return err
	}
	body, err := converter.ConvertString(htmlBody)
	if err != nil {
		return fmt.Errorf("converting body: %w", err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	for _, line := range strings.Split(header, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !strings.Contains(line, ":") {
			continue
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("---\n\n")
	b.WriteString(strings.TrimLeft(body, "\n"))

	outPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".md"
	if err := os.WriteFile(outPath, []byte(b.String()), 0644); err != nil {
		return err
	}
	log.Printf("Converted %s -> %s", filepath.Base(path), filepath.Base(outPath))
	return os.Remove(path)
}

// splitCommentHeader separates the leading <!-- ... --> metadata comment
// from the HTML body.
func splitCommentHeader(text string) (header, body string, err error) {
	rest, found := strings.CutPrefix(text, "<!--")
	if !found {
		return "", "", fmt.Errorf("no leading comment header")
	}
	header, body, found = strings.Cut(rest, "-->")
	if !found {
		return "", "", fmt.Errorf("unterminated comment header")
	}
	return header, body, nil
}
