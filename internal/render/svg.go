package render

import (
	"fmt"
	"html/template"
	"io"
	"strconv"
	"strings"
)

var funcMap = template.FuncMap{
	"num": formatNum,
	// logo passes through data URIs produced by InlineLogos; anything else
	// goes through the template's URL sanitizer
	"logo": func(s string) any {
		if strings.HasPrefix(s, "data:image/") {
			return template.URL(s)
		}
		return s
	},
}

const svgTemplate = `{{define "svg"}}<svg xmlns="http://www.w3.org/2000/svg" width="{{num .Width}}" height="{{num .Height}}" viewBox="0 0 {{num .Width}} {{num .Height}}">
<style>
.leaf .leaf-bg { opacity: 0.1; transition: opacity 100ms; }
.leaf:hover .leaf-bg { opacity: 1; }
.leaf .leaf-logo { opacity: 0.7; transition: opacity 100ms; }
.leaf:hover .leaf-logo { opacity: 1; }
</style>
{{- range .Groups}}
<rect class="chain" data-chain="{{.Chain}}" x="{{num .X}}" y="{{num .Y}}" width="{{num .Width}}" height="{{num .Height}}" rx="20" ry="20" fill="none" stroke="white" stroke-width="1" opacity="0.1"/>
{{- end}}
{{- range .Leaves}}
{{- if .Href}}
<a class="leaf" data-address="{{.Address}}" href="{{.Href}}" target="_blank" rel="noopener noreferrer">{{template "leaf" .}}</a>
{{- else}}
<g class="leaf" data-address="{{.Address}}">{{template "leaf" .}}</g>
{{- end}}
{{- end}}
</svg>
{{end}}
{{define "leaf"}}<rect class="leaf-bg" x="{{num .X}}" y="{{num .Y}}" width="{{num .Width}}" height="{{num .Height}}" rx="10" ry="10" stroke="#e5e5e5" fill="#e5e5e5"/><image class="leaf-logo" href="{{logo .LogoURL}}" x="{{num .X}}" y="{{num .Y}}" width="{{num .Width}}" height="{{num .Height}}" preserveAspectRatio="xMidYMid meet"/>{{end}}`

var svgTmpl = template.Must(template.New("render").Funcs(funcMap).Parse(svgTemplate))

// WriteSVG writes the scene as an SVG document
func WriteSVG(w io.Writer, scene Scene) error {
	if err := svgTmpl.ExecuteTemplate(w, "svg", scene); err != nil {
		return fmt.Errorf("execute svg template: %w", err)
	}
	return nil
}

// NewPageTemplate parses text together with the SVG definitions so that an
// HTML page can embed a scene with {{template "svg" .}}
func NewPageTemplate(name, text string) (*template.Template, error) {
	t, err := template.New(name).Funcs(funcMap).Parse(svgTemplate)
	if err != nil {
		return nil, err
	}
	return t.Parse(text)
}

// formatNum prints coordinates with at most two decimals
func formatNum(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}
