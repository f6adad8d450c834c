package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"petsc-chat-be/pkg/utils"
)

// Parser turns one source file into human-readable text, stripped of markup.
type Parser func(path string) (string, error)

// parsers is the extension dispatch table. Unlisted extensions fall back to
// the plain-text parser.
var parsers = map[string]Parser{
	".html": parseHTML,
	".htm":  parseHTML,
}

// ParserFor returns the parser registered for the file's extension.
func ParserFor(path string) Parser {
	if p, ok := parsers[strings.ToLower(filepath.Ext(path))]; ok {
		return p
	}
	return parseText
}

func parseText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return utils.NormalizeWhitespace(string(data)), nil
}

func parseHTML(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	// Scripts and styles are markup noise, not content
	doc.Find("script, style, noscript").Remove()

	sel := doc.Find("body")
	if sel.Length() == 0 {
		sel = doc.Selection
	}
	return utils.NormalizeWhitespace(sel.Text()), nil
}
