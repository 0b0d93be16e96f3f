package cli

const userTemplate = `
Username: {{.Username}}
Email:    {{.Email}}
Role:     {{.Role}}
Level:    {{.Level}} ({{.TotalXP}} XP)
Streak:   {{.CurrentStreak}} day(s), longest {{.LongestStreak}}
{{- if .Avatar }}
Avatar:   {{.Avatar}}
{{- end}}
{{- if not .LastActiveDate.IsZero }}
Active:   {{.LastActiveDate.Format "2006-01-02"}}
{{- end}}
`

const subscriptionTemplate = `
=== Subscription ===

Plan:    {{.Plan}}
Status:  {{.Status}}
Premium: {{if .Premium}}yes{{else}}no{{end}}

{{- if eq (len .Features) 0 }}

No feature limits.
{{- else }}

Features:
{{- range .Features }}
  {{ printf "%-22s" .Name }} {{ if .Unlimited }}unlimited{{ else }}{{ .Used }}/{{ .Limit }} used, {{ .Remaining }} left{{ end }}
{{- end }}
{{- end }}
`

const lessonsListTemplate = `
{{- if eq (len .) 0 }}
No lessons found.
{{ else }}
Found {{len .}} lesson(s):
{{ range . }}
- {{ .Title }}
   ID:       {{ .Key }}
   {{- if .Language }}
   Language: {{ .Language }}
   {{- end }}
   {{- if .Level }}
   Level:    {{ .Level }}
   {{- end }}
   {{- if .Category }}
   Category: {{ .Category }}
   {{- end }}
{{- end }}

Use 'lingua lessons show <id>' to view a lesson.
{{- end }}
`

const leaderboardTemplate = `
=== Leaderboard ===
{{ if eq (len .) 0 }}
No entries yet.
{{- else }}
{{- range $i, $e := . }}
{{ printf "%3d." (rank $i $e.Rank) }} {{ printf "%-20s" $e.Username }} level {{ $e.Level }}, {{ $e.TotalXP }} XP
{{- end }}
{{- end }}
`
