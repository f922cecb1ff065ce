package handlers

import (
	"log"
	"net/http"
)

type AnalyticsHandler struct {
	profiles      ProfileStore
	projects      ProjectStore
	subscriptions SubscriptionStore
	funnels       FunnelStore
}

func NewAnalyticsHandler(profiles ProfileStore, projects ProjectStore, subscriptions SubscriptionStore, funnels FunnelStore) *AnalyticsHandler {
	return &AnalyticsHandler{
		profiles:      profiles,
		projects:      projects,
		subscriptions: subscriptions,
		funnels:       funnels,
	}
}

type AnalyticsSummary struct {
	ProfileCount        int64            `json:"profile_count"`
	ProjectsByStatus    map[string]int64 `json:"projects_by_status"`
	ActiveSubscriptions int64            `json:"active_subscriptions"`
	MonthlyRevenue      int64            `json:"monthly_revenue"` // cents
	CompletedFunnels    int64            `json:"completed_funnels"`
}

// --- GET /api/analytics/summary ---

func (h *AnalyticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	var summary AnalyticsSummary
	var err error

	if summary.ProfileCount, err = h.profiles.Count(r.Context()); err != nil {
		log.Printf("Error counting profiles: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if summary.ProjectsByStatus, err = h.projects.CountByStatus(r.Context()); err != nil {
		log.Printf("Error counting projects: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if summary.ActiveSubscriptions, err = h.subscriptions.CountActive(r.Context()); err != nil {
		log.Printf("Error counting subscriptions: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if summary.MonthlyRevenue, err = h.subscriptions.SumActiveAmount(r.Context()); err != nil {
		log.Printf("Error summing revenue: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if summary.CompletedFunnels, err = h.funnels.CountCompleted(r.Context()); err != nil {
		log.Printf("Error counting funnels: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, summary)
}
