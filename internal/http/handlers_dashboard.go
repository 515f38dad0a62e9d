package http

import (
	"context"
	"net/http"

	"bizdash/internal/core"
	"bizdash/internal/services"
)

type statView struct {
	Label string
	Value string
	Class string
}

type bucketJSON struct {
	Label   string  `json:"label"`
	Revenue float64 `json:"revenue"`
}

type chartJSON struct {
	Range      core.Granularity `json:"range"`
	ShownRange core.Granularity `json:"shown_range"`
	Total      float64          `json:"total"`
	Buckets    []bucketJSON     `json:"buckets"`
}

type summaryJSON struct {
	TotalServices     int     `json:"total_services"`
	AvailableServices int     `json:"available_services"`
	TotalRevenue      float64 `json:"total_revenue"`
	TotalExpenses     float64 `json:"total_expenses"`
	NetIncome         float64 `json:"net_income"`
	Version           uint64  `json:"version"`
}

type granularityOption struct {
	Value    core.Granularity
	Label    string
	Selected bool
}

type incomeView struct {
	Requested core.Granularity
	Shown     core.Granularity
	Title     string
	Total     string
	Options   []granularityOption
	// Chart is the JSON payload consumed by the chart script.
	Chart chartJSON
}

func statsFor(sum core.Summary) []statView {
	netClass := ""
	if sum.NetIncome.IsNegative() {
		netClass = "stat-number--negative"
	}
	return []statView{
		{Label: "Total Services", Value: itoa(sum.TotalServices)},
		{Label: "Available Services", Value: itoa(sum.AvailableServices)},
		{Label: "Total Revenue", Value: formatPeso(sum.TotalRevenue)},
		{Label: "Total Expenses", Value: formatPeso(sum.TotalExpenses)},
		{Label: "Net Income", Value: formatPeso(sum.NetIncome), Class: netClass},
	}
}

func toChartJSON(requested core.Granularity, c core.Chart) chartJSON {
	out := chartJSON{
		Range:      requested,
		ShownRange: c.Granularity,
		Total:      toFloat(c.Total),
		Buckets:    make([]bucketJSON, 0, len(c.Buckets)),
	}
	for _, b := range c.Buckets {
		out.Buckets = append(out.Buckets, bucketJSON{Label: b.Label, Revenue: toFloat(b.Revenue)})
	}
	return out
}

// incomeFor builds the income summary for g from snap. The chart may still
// show an earlier granularity when there are no transactions yet.
func (s *Server) incomeFor(snap services.Snapshot, g core.Granularity) incomeView {
	chart := s.dashboard.ChartOf(snap, g)
	shown := chart.Granularity
	if shown == "" {
		shown = g
	}
	v := incomeView{
		Requested: g,
		Shown:     shown,
		Title:     shown.Title(),
		Total:     formatPeso(chart.Total),
		Chart:     toChartJSON(g, chart),
	}
	for _, opt := range core.Granularities() {
		v.Options = append(v.Options, granularityOption{
			Value:    opt,
			Label:    opt.Title() + " Income",
			Selected: opt == g,
		})
	}
	return v
}

// handleDashboardPage renders the dashboard with its counters and the
// income summary for the requested range.
func (s *Server) handleDashboardPage(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	g := ParseGranularityParam(r.URL.Query())
	snap := s.dashboard.Snapshot(ctx)
	data := struct {
		Stats  []statView
		Income incomeView
	}{
		Stats:  statsFor(snap.Summary),
		Income: s.incomeFor(snap, g),
	}
	s.render(w, r, "dashboard_page", data)
}

// handleDashboardStats returns the five counters partial.
func (s *Server) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	s.render(w, r, "dashboard_stats", struct{ Stats []statView }{Stats: statsFor(s.dashboard.Summary(ctx))})
}

// handleDashboardIncome returns the income summary partial (selector,
// period total and chart data) for ?range=.
func (s *Server) handleDashboardIncome(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	s.render(w, r, "income_summary", s.incomeFor(s.dashboard.Snapshot(ctx), ParseGranularityParam(r.URL.Query())))
}

func (s *Server) handleSummaryJSON(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	snap := s.dashboard.Snapshot(ctx)
	sum := snap.Summary
	writeJSON(w, r, http.StatusOK, summaryJSON{
		TotalServices:     sum.TotalServices,
		AvailableServices: sum.AvailableServices,
		TotalRevenue:      toFloat(sum.TotalRevenue),
		TotalExpenses:     toFloat(sum.TotalExpenses),
		NetIncome:         toFloat(sum.NetIncome),
		Version:           snap.Version,
	})
}

// handleChartJSON returns revenue buckets for ?range=daily|weekly|monthly.
// An unknown range is answered with 400.
func (s *Server) handleChartJSON(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	g := core.Daily
	if raw := r.URL.Query().Get("range"); raw != "" {
		parsed, err := core.ParseGranularity(raw)
		if err != nil {
			writeJSON(w, r, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		g = parsed
	}
	writeJSON(w, r, http.StatusOK, toChartJSON(g, s.dashboard.Chart(ctx, g)))
}
