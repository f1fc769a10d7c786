package ui

import (
	"net/http"
	"strings"

	"bookingsdash/app"
	"bookingsdash/domain/bookings"
	"bookingsdash/internal/errors"

	"github.com/gin-gonic/gin"
)

const dashboardTitle = "Financial Data Analysis Case Study"

// Selector defaults
const (
	defaultPeriod   = bookings.PeriodJan
	defaultCategory = bookings.CategoryDollars
)

// categoryOrder is the order of the category selector
var categoryOrder = []bookings.Category{bookings.CategoryDollars, bookings.CategoryUnits, bookings.CategoryMQLs}

// Option is one entry of a select control
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// DashboardPage is the data behind dashboard.html
type DashboardPage struct {
	Title      string
	Heading    string
	Period     bookings.PeriodLayout
	Brand      string
	Category   bookings.Category
	Periods    []Option
	Brands     []Option
	Categories []Option
	Rows       []bookings.NormalizedRow
	Summary    app.Summary
	Compare    BarChart
	Variance   VarianceChart
	Excluded   []string
	Share      DonutChart
	Captions   Captions
	RunID      string
}

// dashboardQuery holds the parsed selector values
type dashboardQuery struct {
	layout   bookings.PeriodLayout
	brand    string
	category bookings.Category
}

func parseDashboardQuery(c *gin.Context) (dashboardQuery, error) {
	q := dashboardQuery{brand: app.AllBrands, category: defaultCategory}

	period := defaultPeriod
	if raw := strings.TrimSpace(c.Query("period")); raw != "" {
		p, err := bookings.ParsePeriod(raw)
		if err != nil {
			return q, errors.InvalidInput(err.Error())
		}
		period = p
	}
	q.layout, _ = bookings.LayoutFor(period)

	if raw := strings.TrimSpace(c.Query("category")); raw != "" {
		cat, err := bookings.ParseCategory(raw)
		if err != nil {
			return q, errors.InvalidInput(err.Error())
		}
		q.category = cat
	}

	if raw := strings.TrimSpace(c.Query("brand")); raw != "" {
		q.brand = raw
	}
	return q, nil
}

func (s *Server) handleDashboard(c *gin.Context) {
	q, err := parseDashboardQuery(c)
	if err != nil {
		s.respondError(c, err)
		return
	}

	presenter, err := s.presenterFor(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}

	brands, err := presenter.Brands(q.layout.Period)
	if err != nil {
		s.respondError(c, err)
		return
	}
	// A brand from another period falls back to All, like a reset selector.
	if !containsString(brands, q.brand) {
		q.brand = app.AllBrands
	}

	view, err := presenter.Filter(q.layout.Period, q.brand)
	if err != nil {
		s.respondError(c, err)
		return
	}

	variance := presenter.Variance(view, q.category)
	summary := presenter.Summary(view, q.category)

	page := DashboardPage{
		Title:      dashboardTitle,
		Heading:    q.layout.Heading,
		Period:     q.layout,
		Brand:      q.brand,
		Category:   q.category,
		Periods:    periodOptions(presenter.Periods(), q.layout.Period),
		Brands:     brandOptions(brands, q.brand),
		Categories: categoryOptions(q.category),
		Rows:       view,
		Summary:    summary,
		Compare:    buildBarChart(presenter.Compare(view, q.category)),
		Variance:   buildVarianceChart(variance),
		Excluded:   variance.Excluded,
		Share:      buildDonutChart(presenter.Share(view, q.category)),
		Captions:   buildCaptions(q.layout, q.category, variance, summary),
	}
	if snap := presenter.Snapshot(); snap != nil {
		page.RunID = snap.RunID.String()
	}

	s.renderTemplate(c, "dashboard.html", page)
}

func (s *Server) handleBrands(c *gin.Context) {
	raw := c.DefaultQuery("period", string(defaultPeriod))
	period, err := bookings.ParsePeriod(raw)
	if err != nil {
		s.respondError(c, errors.InvalidInput(err.Error()))
		return
	}

	presenter, err := s.presenterFor(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	brands, err := presenter.Brands(period)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"period": period,
		"brands": brands,
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// respondError maps err onto a status code; HTML pages get plain text
func (s *Server) respondError(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		c.JSON(status, gin.H{"error": err.Error(), "code": errors.GetCode(err)})
		return
	}
	c.String(status, err.Error())
}

func periodOptions(layouts []bookings.PeriodLayout, selected bookings.Period) []Option {
	out := make([]Option, len(layouts))
	for i, l := range layouts {
		out[i] = Option{Value: l.DisplayName, Label: l.DisplayName, Selected: l.Period == selected}
	}
	return out
}

func brandOptions(brands []string, selected string) []Option {
	out := make([]Option, len(brands))
	for i, b := range brands {
		out[i] = Option{Value: b, Label: b, Selected: b == selected}
	}
	return out
}

func categoryOptions(selected bookings.Category) []Option {
	out := make([]Option, len(categoryOrder))
	for i, c := range categoryOrder {
		out[i] = Option{Value: string(c), Label: string(c), Selected: c == selected}
	}
	return out
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
