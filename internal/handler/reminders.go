package handler

import (
	"log"
	"net/http"
	"time"

	"github.com/sehatlink/sehat/internal/reminder"
)

// SendVitalsReminders runs the daily vitals SMS sweep.
func SendVitalsReminders(svc *reminder.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := svc.SendVitalsReminders(r.Context())
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			log.Printf("%v", err)
			return
		}
		respondJSON(w, http.StatusOK, report)
	}
}

// SendAppointmentReminders reminds patients with an appointment inside the
// window_minutes horizon (default 90, max 180).
func SendAppointmentReminders(svc *reminder.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		minutes := queryInt(r, "window_minutes", 90)
		if minutes < 1 || minutes > 180 {
			respondError(w, http.StatusBadRequest, "window_minutes must be between 1 and 180.")
			return
		}

		report, err := svc.SendAppointmentReminders(r.Context(), time.Duration(minutes)*time.Minute)
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			log.Printf("%v", err)
			return
		}
		respondJSON(w, http.StatusOK, report)
	}
}
