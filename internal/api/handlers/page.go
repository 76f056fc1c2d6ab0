package handlers

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lumipallolabs/walletmap/internal/model"
	"github.com/lumipallolabs/walletmap/internal/render"
)

const pageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Name}} · walletmap</title>
<style>
body { background: #111; color: #e5e5e5; font-family: sans-serif; margin: 0; padding: 16px; }
h1 { font-size: 16px; font-weight: normal; margin: 0 0 12px; }
.meta { opacity: 0.6; }
</style>
</head>
<body>
<h1>{{.Name}} <span class="meta">{{len .Scene.Leaves}} wallets, total {{printf "%.2f" .Total}}</span></h1>
{{template "svg" .Scene}}
</body>
</html>
`

var pageTmpl = template.Must(render.NewPageTemplate("page", pageHTML))

type pageData struct {
	Name  string
	Total float64
	Scene render.Scene
}

// Page renders an HTML page embedding a stored tree
// GET /trees/:name?width=&height=
func (h *TreeHandler) Page(c *gin.Context) {
	props, chart, ok := h.props(c)
	if !ok {
		return
	}

	data := pageData{
		Name:  c.Param("name"),
		Total: model.Filter(props.Data, model.FilterOptions{Threshold: chart.Options().Threshold}).TotalValue(),
		Scene: chart.Scene(props),
	}

	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, data); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}
