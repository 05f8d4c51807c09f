package main

import (
	"html/template"
	"net/url"
	"strings"
)

const appCSS = `:root { --bg:#0b1224; --panel:#0f172a; --accent:#38bdf8; --muted:#94a3b8; --line:rgba(255,255,255,0.1); }
body { margin:0; font-family: "Space Grotesk", "Segoe UI", sans-serif; background:var(--bg); color:#e2e8f0; }
header { display:flex; align-items:center; justify-content:space-between; padding:14px 24px; border-bottom:1px solid var(--line); }
header h1 { margin:0; font-size:20px; color:var(--accent); }
main { display:grid; grid-template-columns: minmax(260px, 1fr) 3fr; gap:18px; padding:18px 24px; }
.card { background:var(--panel); border:1px solid var(--line); border-radius:14px; padding:18px 22px; }
.mono { font-family: "IBM Plex Mono", "SFMono-Regular", Consolas, monospace; color:#cbd5e1; }
ul.tree, ul.tree ul { list-style:none; margin:0; padding-left:16px; }
ul.tree a { color:#e2e8f0; text-decoration:none; cursor:pointer; }
ul.tree a:hover { color:var(--accent); }
table.bordered { border-collapse:collapse; width:100%; }
table.bordered td, table.bordered th { border:1px solid var(--line); padding:6px 8px; vertical-align:top; text-align:left; }
button { border:0; border-radius:8px; padding:6px 10px; font-weight:600; background:var(--accent); color:#062238; cursor:pointer; }
.error { color:#fca5a5; min-height:1em; }
form.login { display:grid; gap:14px; margin-top:18px; }
input { background:#0b1224; border:1px solid var(--line); color:#e2e8f0; border-radius:10px; padding:10px 12px; font-size:15px; }
label { font-size:13px; color:var(--muted); letter-spacing:0.3px; text-transform:uppercase; }
.login-wrap { display:flex; align-items:center; justify-content:center; min-height:100vh; padding:24px; }
.login-wrap .card { max-width:520px; width:100%; }
`

const pageTemplates = `
{{define "login"}}<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>Resource Browser</title>
  <link rel="stylesheet" href="/static/app.css">
</head>
<body>
  <div class="login-wrap">
    <div class="card">
      <h1>Resource Browser</h1>
      <p class="mono">{{.Context}}/{{.BaseID}}</p>
      {{if .Error}}<div class="error">{{.Error}}</div>{{end}}
      <form class="login" method="post" action="/login">
        <input type="hidden" name="sclId" value="{{.BaseID}}">
        <input type="hidden" name="context" value="{{.Context}}">
        <div>
          <label for="username">Username</label>
          <input id="username" name="username" autocomplete="username">
        </div>
        <div>
          <label for="password">Password</label>
          <input id="password" name="password" type="password" autocomplete="current-password">
        </div>
        <button type="submit">Login</button>
      </form>
    </div>
  </div>
</body>
</html>
{{end}}

{{define "browse"}}<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>Resource Browser</title>
  <link rel="stylesheet" href="/static/app.css">
  <script type="module" src="{{.Script}}"></script>
</head>
<body>
  <header>
    <h1>Resource Browser</h1>
    {{template "url" .View.URL}}
    <form method="post" action="/logout"><button type="submit">Logout {{.Username}}</button></form>
  </header>
  <main>
    <section class="card">
      <ul class="tree" id="resources">
        {{if .View.IsBase}}{{template "tree-root" .View}}{{else}}{{template "tree-children" .View.Children}}{{end}}
      </ul>
    </section>
    <section class="card">
      {{template "error" .Error}}
      {{template "attributes" .View.Attributes}}
      {{template "response" .Response}}
    </section>
  </main>
</body>
</html>
{{end}}

{{define "url"}}<div id="url" class="mono">{{.}}</div>{{end}}

{{define "error"}}<div id="error" class="error">{{.}}</div>{{end}}

{{define "tree-root"}}<li><a href="{{browseURL .ID}}" data-on:click__prevent="@get({{nodeURL .ID}})">{{.ID}}</a><ul id="{{.ContainerID}}">{{template "tree-children" .Children}}</ul></li>{{end}}

{{define "tree-children"}}{{range .}}{{template "tree-node" .}}{{end}}{{end}}

{{define "tree-node"}}{{if .IsCollection}}<li><a href="{{browseURL .Target}}" data-on:click__prevent="@get({{nodeURL .Target}})">{{.Label}}</a><ul id="{{.ContainerID}}">{{template "tree-children" .Items}}</ul></li>{{else}}<li><a href="{{browseURL .Target}}" data-on:click__prevent="@get({{nodeURL .Target}})">{{.Label}}</a><ul id="{{.ContainerID}}"></ul></li>{{end}}{{end}}

{{define "attributes"}}<table id="attributes" class="bordered">{{range .}}{{template "attribute" .}}{{end}}</table>{{end}}

{{define "attribute"}}<tr><td class="{{.Name}}">{{.Name}}</td><td>
{{- if eq .Kind "content"}}{{template "content" .Content}}
{{- else if eq .Kind "link"}}<button type="button" data-on:click="@get({{nodeURL .Text}})">{{.Text}}</button>
{{- else if eq .Kind "permissions"}}<table class="bordered"><thead><tr><th>permission</th><th>flags &amp; holders</th></tr></thead>
{{- range .Permissions}}<tr><td>{{.ID}}</td><td><table class="bordered"><thead><tr><th colspan="{{len .Flags}}">flags</th></tr></thead><tr>{{range .Flags}}<td>{{.}}</td>{{end}}</tr></table><table class="bordered"><thead><tr><th>holders</th></tr></thead>{{range .Holders}}<tr><td>{{.}}</td></tr>{{end}}</table></td></tr>{{end}}</table>
{{- else if eq .Kind "uri_list"}}<table class="bordered"><thead><tr><th>URI</th></tr></thead>{{range .Values}}<tr><td>{{.}}</td></tr>{{end}}</table>
{{- else if eq .Kind "search_strings"}}<table class="bordered"><thead><tr><th>searchString</th></tr></thead>{{range .Values}}<tr><td>{{.}}</td></tr>{{end}}</table>
{{- else if eq .Kind "announce_to"}}<table class="bordered"><thead><tr><th>name</th><th>value</th></tr></thead>{{range .Pairs}}<tr><td>{{.Name}}</td><td>{{.Value}}</td></tr>{{end}}</table>
{{- else if eq .Kind "apoc_paths"}}<table class="bordered"><thead><tr><th>path</th><th>accessRightID</th><th>searchStrings</th></tr></thead>{{range .Paths}}<tr><td>{{.Path}}</td><td>{{.AccessRightID}}</td><td>{{lines .SearchStrings}}</td></tr>{{end}}</table>
{{- else}}{{.Text}}{{end -}}
</td></tr>{{end}}

{{define "content"}}<table class="bordered content-table"><thead><tr><th>Attribute</th><th>Value</th></tr></thead>
{{- if .Error}}<tr><td colspan="2" class="error">{{.Error}}</td></tr>{{end}}
{{- range .Entries}}{{if .Action}}<tr><td><button type="button" data-on:click="@post({{actionURL .Action}})">{{.Action.Name}}</button></td><td>{{.Action.Href}}</td></tr>{{else if .Row}}<tr><td>{{.Row.Name}}</td><td>{{.Row.Value}}</td></tr>{{end}}{{end -}}
</table>{{end}}

{{define "response"}}<div id="response">{{with .}}<h4>{{.Message}}</h4>{{if .OK}}{{if .Rows}}<table class="bordered"><thead><tr><th>Name</th><th>Value</th></tr></thead>{{range .Rows}}<tr><td>{{.Name}}</td><td>{{.Value}}</td></tr>{{end}}</table>{{end}}{{end}}{{end}}</div>{{end}}
`

var templates = template.Must(template.New("pages").Funcs(template.FuncMap{
	"nodeURL":   nodeURL,
	"browseURL": browseURL,
	"actionURL": actionURL,
	"lines":     lines,
}).Parse(pageTemplates))

func nodeURL(id string) string {
	return "/ui/node?id=" + url.QueryEscape(id)
}

func browseURL(id string) string {
	return "/browse?id=" + url.QueryEscape(id)
}

func actionURL(action *contentAction) string {
	q := url.Values{}
	q.Set("href", action.Href)
	if action.Payload != "" {
		q.Set("payload", action.Payload)
	}
	return "/ui/actions/" + string(action.Kind) + "?" + q.Encode()
}

// lines renders newline-separated values with <br> between them.
func lines(s string) template.HTML {
	parts := strings.Split(s, "\n")
	for i, p := range parts {
		parts[i] = template.HTMLEscapeString(p)
	}
	return template.HTML(strings.Join(parts, "<br/>"))
}
