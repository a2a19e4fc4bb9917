package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"cinetrack/handlers"
)

// corsMiddleware handles CORS for API routes
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Register mounts API endpoints onto the provided router.
func Register(
	r *mux.Router,
	authHandler *handlers.AuthHandler,
	contentHandler *handlers.ContentHandler,
	watchlistHandler *handlers.WatchlistHandler,
	analyticsHandler *handlers.AnalyticsHandler,
	goalsHandler *handlers.GoalsHandler,
	listsHandler *handlers.ListsHandler,
	authMiddleware func(http.Handler) http.Handler,
) {
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(handlers.RequestIDMiddleware)
	api.Use(handlers.LoggingMiddleware)
	api.Use(corsMiddleware)

	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)

	// Public auth endpoints
	api.HandleFunc("/auth/register", authHandler.Register).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost, http.MethodOptions)

	// Everything below requires a bearer token
	protected := api.PathPrefix("").Subrouter()
	protected.Use(authMiddleware)

	protected.HandleFunc("/auth/me", authHandler.Me).Methods(http.MethodGet)

	// Catalog
	protected.HandleFunc("/content/search", contentHandler.Search).Methods(http.MethodGet)
	protected.HandleFunc("/content/trending", contentHandler.Trending).Methods(http.MethodGet)
	protected.HandleFunc("/content/genres", contentHandler.Genres).Methods(http.MethodGet)
	protected.HandleFunc("/content/lookup", contentHandler.Lookup).Methods(http.MethodGet)
	protected.HandleFunc("/content/schedule", contentHandler.Schedule).Methods(http.MethodGet)
	protected.HandleFunc("/content/schedule/web", contentHandler.WebSchedule).Methods(http.MethodGet)
	protected.HandleFunc("/content/shows", contentHandler.Shows).Methods(http.MethodGet)
	protected.HandleFunc("/content/shows/{id}", contentHandler.Show).Methods(http.MethodGet)
	protected.HandleFunc("/content/shows/{id}/credits", contentHandler.Credits).Methods(http.MethodGet)
	protected.HandleFunc("/content/shows/{id}/similar", contentHandler.Similar).Methods(http.MethodGet)
	protected.HandleFunc("/content/episodes/{id}", contentHandler.Episode).Methods(http.MethodGet)
	protected.HandleFunc("/content/people", contentHandler.People).Methods(http.MethodGet)
	protected.HandleFunc("/content/people/{id}", contentHandler.Person).Methods(http.MethodGet)
	protected.HandleFunc("/content/db/{id}", contentHandler.LocalContent).Methods(http.MethodGet)
	protected.HandleFunc("/content/refresh", contentHandler.Refresh).Methods(http.MethodPost)

	// Watchlist
	protected.HandleFunc("/watchlist", watchlistHandler.List).Methods(http.MethodGet)
	protected.HandleFunc("/watchlist", watchlistHandler.Add).Methods(http.MethodPost)
	protected.HandleFunc("/watchlist/{id}", watchlistHandler.Update).Methods(http.MethodPut)
	protected.HandleFunc("/watchlist/{id}", watchlistHandler.Delete).Methods(http.MethodDelete)

	// History and statistics
	protected.HandleFunc("/analytics/history", analyticsHandler.AppendHistory).Methods(http.MethodPost)
	protected.HandleFunc("/analytics/history", analyticsHandler.QueryHistory).Methods(http.MethodGet)
	protected.HandleFunc("/analytics/history/{id}", analyticsHandler.DeleteHistory).Methods(http.MethodDelete)
	protected.HandleFunc("/analytics/stats/weekly", analyticsHandler.WeeklyStats).Methods(http.MethodGet)
	protected.HandleFunc("/analytics/stats/monthly", analyticsHandler.MonthlyStats).Methods(http.MethodGet)
	protected.HandleFunc("/analytics/stats/yearly", analyticsHandler.YearlyStats).Methods(http.MethodGet)
	protected.HandleFunc("/analytics/stats/heatmap", analyticsHandler.Heatmap).Methods(http.MethodGet)

	// Goals and achievements
	protected.HandleFunc("/goals/goals", goalsHandler.List).Methods(http.MethodGet)
	protected.HandleFunc("/goals/goals", goalsHandler.Create).Methods(http.MethodPost)
	protected.HandleFunc("/goals/goals/check", goalsHandler.CheckGoals).Methods(http.MethodPost)
	protected.HandleFunc("/goals/goals/{id}", goalsHandler.Get).Methods(http.MethodGet)
	protected.HandleFunc("/goals/goals/{id}", goalsHandler.Update).Methods(http.MethodPut)
	protected.HandleFunc("/goals/goals/{id}", goalsHandler.Delete).Methods(http.MethodDelete)
	protected.HandleFunc("/goals/achievements", goalsHandler.Achievements).Methods(http.MethodGet)
	protected.HandleFunc("/goals/achievements/user", goalsHandler.UserAchievements).Methods(http.MethodGet)
	protected.HandleFunc("/goals/achievements/check", goalsHandler.CheckAchievements).Methods(http.MethodPost)

	// Curation
	protected.HandleFunc("/bucketlist", listsHandler.BucketList).Methods(http.MethodGet)
	protected.HandleFunc("/bucketlist", listsHandler.AddToBucketList).Methods(http.MethodPost)
	protected.HandleFunc("/bucketlist/{id}/watched", listsHandler.MarkBucketWatched).Methods(http.MethodPut)
	protected.HandleFunc("/bucketlist/{id}", listsHandler.DeleteBucketItem).Methods(http.MethodDelete)

	protected.HandleFunc("/lists", listsHandler.CustomLists).Methods(http.MethodGet)
	protected.HandleFunc("/lists", listsHandler.CreateCustomList).Methods(http.MethodPost)
	protected.HandleFunc("/lists/{id}", listsHandler.GetCustomList).Methods(http.MethodGet)
	protected.HandleFunc("/lists/{id}", listsHandler.UpdateCustomList).Methods(http.MethodPut)
	protected.HandleFunc("/lists/{id}", listsHandler.DeleteCustomList).Methods(http.MethodDelete)
	protected.HandleFunc("/lists/{id}/items", listsHandler.AddListItem).Methods(http.MethodPost)
	protected.HandleFunc("/lists/{id}/items/{itemID}", listsHandler.RemoveListItem).Methods(http.MethodDelete)

	protected.HandleFunc("/recommendations", listsHandler.Recommendations).Methods(http.MethodGet)
	protected.HandleFunc("/recommendations", listsHandler.CreateRecommendation).Methods(http.MethodPost)
	protected.HandleFunc("/recommendations/{id}", listsHandler.DeleteRecommendation).Methods(http.MethodDelete)

	protected.HandleFunc("/reviews", listsHandler.Reviews).Methods(http.MethodGet)
	protected.HandleFunc("/reviews", listsHandler.CreateReview).Methods(http.MethodPost)
	protected.HandleFunc("/reviews/{id}", listsHandler.UpdateReview).Methods(http.MethodPut)
	protected.HandleFunc("/reviews/{id}", listsHandler.DeleteReview).Methods(http.MethodDelete)

	protected.HandleFunc("/ratings/{contentID}", listsHandler.GetRating).Methods(http.MethodGet)
	protected.HandleFunc("/ratings/{contentID}", listsHandler.PutRating).Methods(http.MethodPut)
	protected.HandleFunc("/ratings/{contentID}", listsHandler.DeleteRating).Methods(http.MethodDelete)
}
