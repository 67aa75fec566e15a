package main

import "net/http"

func (s *server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	snap, err := s.finance.Snapshot(r.Context(), ownerIDFrom(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	s.metrics.DashboardSnapshots.Inc()
	writeJSON(w, http.StatusOK, snap)
}
