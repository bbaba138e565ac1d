// Package serp extracts organic results from a rendered Bing results page.
package serp

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Result is one organic search result.
type Result struct {
	Title   string
	URL     string
	Snippet string
}

// Parse pulls the organic result blocks out of Bing SERP HTML. Ads, sidebars
// and answer boxes are not li.b_algo nodes and fall through.
func Parse(html string) ([]Result, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	var results []Result
	doc.Find("li.b_algo").Each(func(_ int, s *goquery.Selection) {
		link := s.Find("h2 a").First()
		title := clean(link.Text())
		if title == "" {
			return
		}
		href, _ := link.Attr("href")
		snippet := clean(s.Find(".b_caption p").First().Text())
		if snippet == "" {
			snippet = clean(s.Find("p").First().Text())
		}
		results = append(results, Result{
			Title:   title,
			URL:     strings.TrimSpace(href),
			Snippet: snippet,
		})
	})
	return results, nil
}

func clean(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
