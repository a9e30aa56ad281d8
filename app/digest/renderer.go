package digest

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/lysyi3m/news-digest/app/database"
)

// Telegram HTML supports only inline tags, so the digest is line-oriented.
const digestTemplate = `<b>News digest for {{.GeneratedAt}} ({{.ItemCount}} items)</b>
{{range .Items}}
{{.Index}}. <a href="{{.Link}}">{{.Title}}</a>
<i>{{.Source}} · {{.PublishedAt}}</i>{{if .MatchedTerms}}
Matched: {{.MatchedTerms}}{{end}}{{if .Summary}}
{{.Summary}}{{end}}{{if .RelevanceSummary}}
<i>{{.RelevanceSummary}}</i>{{end}}
{{end}}`

type templateItem struct {
	Index            int
	Title            string
	Link             string
	Source           string
	PublishedAt      string
	MatchedTerms     string
	Summary          string
	RelevanceSummary string
}

type templateData struct {
	GeneratedAt string
	ItemCount   int
	Items       []templateItem
}

// Renderer turns an unsent batch into a single digest message. Pure
// stateless transform; the orchestrator owns everything around it.
type Renderer struct {
	tmpl *template.Template
}

func NewRenderer() *Renderer {
	return &Renderer{
		tmpl: template.Must(template.New("digest").Parse(digestTemplate)),
	}
}

func (r *Renderer) Run(items []database.Item) (string, error) {
	data := templateData{
		GeneratedAt: time.Now().Format("2006-01-02 15:04"),
		ItemCount:   len(items),
		Items:       make([]templateItem, 0, len(items)),
	}

	for i, item := range items {
		data.Items = append(data.Items, templateItem{
			Index:            i + 1,
			Title:            item.Title,
			Link:             item.Link,
			Source:           item.Source,
			PublishedAt:      item.PublishedAt.Format("2006-01-02 15:04"),
			MatchedTerms:     strings.Join(item.MatchedTerms, " · "),
			Summary:          item.Summary,
			RelevanceSummary: item.RelevanceSummary,
		})
	}

	var sb strings.Builder
	if err := r.tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("failed to render digest: %w", err)
	}

	return sb.String(), nil
}
