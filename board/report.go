package board

import (
	"strings"
	"text/template"
	"time"
)

const reportDateLayout = "02/01/2006 15:04"

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"upper": strings.ToUpper,
	"join":  strings.Join,
	"orElse": func(s, fallback string) string {
		if s == "" {
			return fallback
		}
		return s
	},
}).Parse(`=== RAPPORT KANBANFLOW ===
Date: {{.Date}}

STATISTIQUES:
- Tâches totales: {{.Total}}
{{- range .Columns}}
- {{.Title}}: {{len .Tasks}}
{{- end}}
- Membres impliqués: {{.Members}}

DÉTAILS:
{{- range .Columns}}
{{upper .Title}} ({{len .Tasks}}):
{{- range .Tasks}}
  [{{.Priority}}] {{.Title}}
     Assigné à: {{orElse .Assignee "Non assigné"}}
     Échéance: {{orElse .DueDate "Non définie"}}
     Créé le: {{.CreatedAt}}
     Labels: {{join .Labels ", "}}
{{- end}}
{{- end}}

=== FIN DU RAPPORT ===
`))

type reportData struct {
	Date    string
	Total   int
	Members int
	Columns Columns
}

// Report renders the board as a plain-text French summary, the same shape
// the export button produces.
func Report(cols Columns, now time.Time) string {
	total := 0
	members := make(map[string]struct{})
	for _, col := range cols {
		total += len(col.Tasks)
		for _, t := range col.Tasks {
			if t.Assignee != "" {
				members[t.Assignee] = struct{}{}
			}
		}
	}

	var sb strings.Builder
	data := reportData{
		Date:    now.Format(reportDateLayout),
		Total:   total,
		Members: len(members),
		Columns: cols,
	}
	if err := reportTemplate.Execute(&sb, data); err != nil {
		// The template is static and the data plain values; execution
		// cannot fail outside programmer error.
		panic(err)
	}
	return sb.String()
}

// ReportFilename names the exported report after the render time.
func ReportFilename(now time.Time) string {
	return "kanbanflow-" + now.Format("2006-01-02-1504") + ".txt"
}
