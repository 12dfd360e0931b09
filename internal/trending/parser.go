package trending

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/Dawn-Aurora/github-trending-crawler/internal/metrics"
)

// rowSelector matches one trending repository entry on the page.
const rowSelector = "article.Box-row"

// Parser extracts repository records from trending page markup.
type Parser struct {
	logger *zap.Logger
}

// NewParser builds a Parser.
func NewParser(logger *zap.Logger) *Parser {
	return &Parser{logger: logger}
}

// Parse returns the repositories found in the markup, in document order.
// Rows whose name cannot be resolved are dropped; all other fields degrade
// to defaults. A structural failure in one row skips that row only.
func (p *Parser) Parse(html string) ([]Repository, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse markup: %w", err)
	}

	rows := doc.Find(rowSelector)
	repos := make([]Repository, 0, rows.Length())

	rows.Each(func(i int, row *goquery.Selection) {
		repo, err := p.parseRow(row)
		if err != nil {
			p.logger.Warn("skipping unparseable row", zap.Int("row", i), zap.Error(err))
			return
		}
		if repo.Name == "" {
			return
		}
		repos = append(repos, repo)
	})

	metrics.ObserveParse(rows.Length(), len(repos))
	p.logger.Info("parsed trending page",
		zap.Int("rows_found", rows.Length()),
		zap.Int("rows_parsed", len(repos)),
	)
	return repos, nil
}

// parseRow resolves the four record fields independently. Goquery lookups do
// not fail on absent elements, but a malformed document can still panic deep
// in a selection; the recover keeps one bad row from aborting the rest.
func (p *Parser) parseRow(row *goquery.Selection) (repo Repository, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("row panicked: %v", r)
		}
	}()

	name, _ := lookupName(row)
	desc, ok := lookupDescription(row)
	if !ok {
		desc = ""
	}
	lang, ok := lookupLanguage(row)
	if !ok {
		lang = ""
	}
	stars, ok := lookupStars(row)
	if !ok {
		stars = "0"
	}

	return Repository{
		Name:        name,
		Description: desc,
		Language:    lang,
		Stars:       stars,
	}, nil
}

// lookupName resolves the owner/repo identifier from the first heading link.
func lookupName(row *goquery.Selection) (string, bool) {
	href, ok := row.Find("h2 a").First().Attr("href")
	if !ok {
		return "", false
	}
	name := strings.Trim(strings.TrimSpace(href), "/")
	return name, name != ""
}

// lookupDescription resolves the first paragraph-level text block.
func lookupDescription(row *goquery.Selection) (string, bool) {
	para := row.Find("p").First()
	if para.Length() == 0 {
		return "", false
	}
	return strings.TrimSpace(para.Text()), true
}

// lookupLanguage resolves the programming-language tag.
func lookupLanguage(row *goquery.Selection) (string, bool) {
	span := row.Find(`span[itemprop="programmingLanguage"]`).First()
	if span.Length() == 0 {
		return "", false
	}
	return strings.TrimSpace(span.Text()), true
}

// lookupStars resolves the stargazers link text with thousands separators
// stripped.
func lookupStars(row *goquery.Selection) (string, bool) {
	var stars string
	found := false
	row.Find("a[href]").EachWithBreak(func(_ int, link *goquery.Selection) bool {
		href, ok := link.Attr("href")
		if !ok || !strings.HasSuffix(href, "/stargazers") {
			return true
		}
		stars = strings.ReplaceAll(strings.TrimSpace(link.Text()), ",", "")
		found = true
		return false
	})
	return stars, found
}
