package handlers

import "net/http"

// Health is the liveness probe. It answers as long as the process is
// up; the queue worker runs on its own goroutine so a long render
// never blocks this endpoint.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"status": "ok", "service": "shortreel"})
}
