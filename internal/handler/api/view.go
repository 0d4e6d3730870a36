package api

import (
	"html/template"

	"AstroPull/internal/domain/models"
	"AstroPull/internal/services/pivot"
)

type pageData struct {
	Session   models.SessionSnapshot
	Venue     string
	Prompt    string
	Table     *pivot.Formatted
	AllLabels bool
}

var pageTmpl = template.Must(template.New("page").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Astro-Trading</title>
<style>
body{font-family:system-ui,sans-serif;margin:2rem;}
table{border-collapse:collapse;margin-top:1rem;}
th,td{border:1px solid #ccc;padding:.3rem .6rem;text-align:right;}
th{background:#f4f4f4;}
.info{color:#225;background:#eef;padding:.5rem;}
.ok{color:#252;background:#efe;padding:.5rem;}
.err{color:#522;background:#fee;padding:.5rem;white-space:pre-wrap;}
form{display:inline-block;margin-right:1rem;}
</style>
</head>
<body>
<h1>Astro-Trading Dashboard</h1>
<form method="post" action="/fetch"><button type="submit">Fetch latest trades</button></form>
<form method="post" action="/enrich">
<label><input type="checkbox" name="all_labels" value="true"{{if .AllLabels}} checked{{end}}> all labels</label>
<button type="submit">Enrich + show</button>
</form>
{{with .Session.LastError}}<p class="err">{{.}}</p>{{end}}
{{if eq .Session.State "fetched"}}<p class="ok">Pulled {{.Session.Fills}} {{.Venue}} fills</p>{{end}}
{{with .Prompt}}<p class="info">{{.}}</p>{{end}}
{{with .Table}}
{{if .Rows}}
<table>
<tr><th>moon \ sun</th>{{range .Cols}}<th>{{.}}</th>{{end}}<th>total</th></tr>
{{range $i, $row := .Rows}}<tr><th>{{$row}}</th>{{range index $.Table.Cells $i}}<td>{{.}}</td>{{end}}<td>{{index $.Table.RowTotals $i}}</td></tr>
{{end}}<tr><th>total</th>{{range .ColTotals}}<td>{{.}}</td>{{end}}<td>{{.Total}}</td></tr>
</table>
{{else}}<p class="info">No dated fills to show.</p>{{end}}
{{end}}
</body>
</html>
`))
