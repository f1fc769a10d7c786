package ui

import (
	"bytes"
	"html/template"
	"log"
	"math"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// renderTemplate executes a template with the given data
func (s *Server) renderTemplate(c *gin.Context, templateName string, data interface{}) {
	// Render to a buffer first so a failed template does not send half a page.
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, templateName, data); err != nil {
		log.Printf("Template error for %s: %v", templateName, err)
		log.Printf("Template data type: %T", data)
		c.AbortWithStatusJSON(500, gin.H{"error": "Template rendering failed", "details": err.Error()})
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Writer.WriteHeader(200)
	if _, err := buf.WriteTo(c.Writer); err != nil {
		log.Printf("Error writing template response: %v", err)
	}
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"figure":  formatFigure,
		"percent": formatPercent,
		"add":     func(a, b float64) float64 { return a + b },
	}
}

// formatFigure renders a number with thousands separators and at most two
// decimals: 1234567.5 -> "1,234,567.5".
func formatFigure(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "—"
	}
	s := strconv.FormatFloat(math.Abs(v), 'f', 2, 64)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")

	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}

	var b strings.Builder
	if v < 0 && s != "0" {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteString(frac)
	return b.String()
}

// formatPercent renders a percentage with one decimal
func formatPercent(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "—"
	}
	return strconv.FormatFloat(v, 'f', 1, 64) + "%"
}
