// Package parser converts document files into ordered, cleaned page texts.
package parser

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Page is one unit of citable document text. For PDFs it is a physical page;
// for sectioned formats it is a top-level section.
type Page struct {
	Num  int // 1-based
	Text string
}

// Parser converts raw document bytes into ordered pages.
type Parser interface {
	Parse(r io.Reader, filename string) ([]Page, error)
}

// SupportedExtensions lists file extensions this module can index.
var SupportedExtensions = map[string]bool{
	".txt":  true,
	".md":   true,
	".html": true,
	".htm":  true,
	".pdf":  true,
	".docx": true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// ReadPages opens a file, picks a parser by extension, and returns its
// cleaned, non-empty pages.
func ReadPages(path string) ([]Page, error) {
	p, err := ForFile(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	defer f.Close()
	return p.Parse(f, filepath.Base(path))
}

// IterDocs lists supported document files directly under dir, sorted.
func IterDocs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read document dir: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !IsSupportedExtension(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	return paths, nil
}

var (
	tabRunRe      = regexp.MustCompile(`[ \t]+`)
	trailingWSRe  = regexp.MustCompile(`[ \t]+\n`)
	newlineRunsRe = regexp.MustCompile(`\n{3,}`)
)

// CleanText strips control characters and normalizes whitespace.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\x00", " ")
	s = strings.ReplaceAll(s, "\u200b", " ")
	s = tabRunRe.ReplaceAllString(s, " ")
	s = trailingWSRe.ReplaceAllString(s, "\n")
	s = newlineRunsRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// pagesFromTexts cleans the given texts and assigns 1-based page numbers,
// dropping pages that come out empty.
func pagesFromTexts(texts []string) []Page {
	var pages []Page
	for i, t := range texts {
		t = CleanText(t)
		if t == "" {
			continue
		}
		pages = append(pages, Page{Num: i + 1, Text: t})
	}
	return pages
}
