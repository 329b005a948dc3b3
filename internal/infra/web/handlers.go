package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"classroom-ai-assistant/internal/domain"
	"classroom-ai-assistant/internal/domain/model"
	"classroom-ai-assistant/internal/domain/ports/repository"
	"classroom-ai-assistant/internal/infra/events"
	"classroom-ai-assistant/internal/infra/metrics"
	"classroom-ai-assistant/internal/usecase"
)

// The expected JSON request body for an attendance report.
type attendanceRequest struct {
	ClassID   string `json:"classId"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

type attendanceResponse struct {
	AttendanceData []model.AttendanceRow `json:"attendanceData"`
}

// Handler for computing an attendance report over a class window.
func attendanceHandler(attendanceUC usecase.AttendanceUseCase, log *zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req attendanceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			metrics.IncAttendanceRequest("bad_request")
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		start := time.Now()
		rows, err := attendanceUC.Compute(ctx, req.ClassID, req.StartTime, req.EndTime)
		metrics.ObserveAttendanceDuration(time.Since(start))
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrInvalidArgument):
				metrics.IncAttendanceRequest("bad_request")
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, domain.ErrNotFound):
				metrics.IncAttendanceRequest("not_found")
				http.Error(w, "Class not found", http.StatusNotFound)
			default:
				metrics.IncAttendanceRequest("error")
				log.Error().Err(err).Str("class_id", req.ClassID).Msg("attendance computation failed")
				http.Error(w, "Failed to compute attendance", http.StatusInternalServerError)
			}
			return
		}

		metrics.IncAttendanceRequest("ok")
		writeJSON(w, http.StatusOK, attendanceResponse{AttendanceData: rows})
	}
}

// Handler for purging a class's screenshot events in a time range.
// Query parameters: classId, startTime, endTime (RFC3339).
func screenshotsPurgeHandler(events repository.ScreenshotEventRepository, log *zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		classID := q.Get("classId")
		if classID == "" {
			http.Error(w, "classId is required", http.StatusBadRequest)
			return
		}
		from, err := time.Parse(time.RFC3339, q.Get("startTime"))
		if err != nil {
			http.Error(w, "startTime must be RFC3339", http.StatusBadRequest)
			return
		}
		to, err := time.Parse(time.RFC3339, q.Get("endTime"))
		if err != nil {
			http.Error(w, "endTime must be RFC3339", http.StatusBadRequest)
			return
		}

		deleted, err := events.DeleteRange(r.Context(), classID, from, to)
		if err != nil {
			log.Error().Err(err).Str("class_id", classID).Msg("screenshot purge failed")
			http.Error(w, "Failed to purge screenshots", http.StatusInternalServerError)
			return
		}

		log.Info().Str("class_id", classID).Int("deleted", deleted).Msg("screenshot events purged")
		writeJSON(w, http.StatusOK, map[string]int{"deleted": deleted})
	}
}

// The expected JSON request body for a capture client's video job report.
type videoJobReportRequest struct {
	ID           string    `json:"id"`
	ClassID      string    `json:"classId"`
	StudentEmail string    `json:"studentEmail"`
	Status       string    `json:"status"`
	MediaPath    string    `json:"mediaPath"`
	StartTime    time.Time `json:"startTime"`
	EndTime      time.Time `json:"endTime"`
	Error        string    `json:"error"`
}

// Handler for capture clients reporting video job state. The update is
// persisted and the before/after pair is published on the change feed,
// which is what drives session-completion detection.
func videoJobReportHandler(
	videoJobs repository.VideoJobRepository,
	pub Publisher,
	log *zerolog.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req videoJobReportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		status := model.VideoJobStatus(req.Status)
		if req.ID == "" || !status.Valid() {
			http.Error(w, "id and a valid status are required", http.StatusBadRequest)
			return
		}

		now := time.Now()
		kind := events.KindUpdated
		var before *model.VideoJob
		existing, err := videoJobs.FindByID(ctx, repository.NoTX, req.ID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			kind = events.KindCreated
		case err != nil:
			log.Error().Err(err).Str("job_id", req.ID).Msg("video job lookup failed")
			http.Error(w, "Failed to load video job", http.StatusInternalServerError)
			return
		default:
			snapshot := *existing
			before = &snapshot
		}

		var after model.VideoJob
		if existing != nil {
			if existing.Status != status && !existing.Status.CanTransitionTo(status) {
				http.Error(w, fmt.Sprintf("illegal transition %s -> %s", existing.Status, status), http.StatusConflict)
				return
			}
			after = *existing
		} else {
			after = model.VideoJob{ID: req.ID, StartedAt: now}
		}
		if req.ClassID != "" {
			after.ClassID = req.ClassID
		}
		if req.StudentEmail != "" {
			after.StudentEmail = model.NormalizeEmail(req.StudentEmail)
		}
		if req.MediaPath != "" {
			after.MediaPath = req.MediaPath
		}
		if !req.StartTime.IsZero() {
			after.StartTime = req.StartTime
		}
		if !req.EndTime.IsZero() {
			after.EndTime = req.EndTime
		}
		after.Status = status
		after.Error = req.Error
		if status.Terminal() && after.FinishedAt.IsZero() {
			after.FinishedAt = now
		}

		if err := videoJobs.Save(ctx, repository.NoTX, &after); err != nil {
			log.Error().Err(err).Str("job_id", after.ID).Msg("failed to save video job")
			http.Error(w, "Failed to save video job", http.StatusInternalServerError)
			return
		}

		if err := pub.Publish(events.Record{
			Collection: "video_jobs",
			ID:         after.ID,
			Kind:       kind,
			Before:     before,
			After:      &after,
		}); err != nil {
			// The job state is saved, but nothing downstream saw the
			// transition. Telling the client to retry keeps the event
			// alive; re-reporting the same state is idempotent.
			log.Error().Err(err).Str("job_id", after.ID).Msg("video job record not published")
			http.Error(w, "Event queue saturated, retry", http.StatusServiceUnavailable)
			return
		}

		writeJSON(w, http.StatusAccepted, map[string]string{
			"id":     after.ID,
			"status": string(after.Status),
		})
	}
}

// The expected JSON request body for a capture client's screenshot report.
type screenshotIngestRequest struct {
	ClassID     string    `json:"classId"`
	Email       string    `json:"email"`
	StudentUID  string    `json:"studentUid"`
	CurrentTask string    `json:"currentTask"`
	Timestamp   time.Time `json:"timestamp"`
}

// Handler for ingesting a screenshot capture report. The presence sample
// is stored for attendance; when the report names a current task, a
// task-observation record is published for the task-timer aggregator.
func screenshotIngestHandler(
	eventsRepo repository.ScreenshotEventRepository,
	directory repository.UserDirectory,
	pub Publisher,
	log *zerolog.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req screenshotIngestRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		req.Email = model.NormalizeEmail(req.Email)
		if req.ClassID == "" || req.Email == "" {
			http.Error(w, "classId and email are required", http.StatusBadRequest)
			return
		}
		if req.Timestamp.IsZero() {
			req.Timestamp = time.Now()
		}

		event := &model.ScreenshotEvent{
			ID:        ulid.Make().String(),
			ClassID:   req.ClassID,
			Email:     req.Email,
			Timestamp: req.Timestamp,
		}
		if err := eventsRepo.Save(ctx, repository.NoTX, event); err != nil {
			log.Error().Err(err).Str("class_id", req.ClassID).Msg("failed to save screenshot event")
			http.Error(w, "Failed to record screenshot", http.StatusInternalServerError)
			return
		}

		if req.CurrentTask != "" {
			uid := req.StudentUID
			if uid == "" {
				resolved, err := directory.FindUIDByEmail(ctx, repository.NoTX, req.Email)
				if err != nil {
					if !errors.Is(err, domain.ErrNotFound) {
						log.Error().Err(err).Str("email", req.Email).Msg("directory lookup failed")
					}
					// Presence sample is stored either way.
					writeJSON(w, http.StatusAccepted, map[string]string{"id": event.ID})
					return
				}
				uid = resolved
			}
			err := pub.Publish(events.Record{
				Collection: "task_observations",
				ID:         event.ID,
				Kind:       events.KindCreated,
				After: &model.TaskObservation{
					StudentUID:  uid,
					ClassID:     req.ClassID,
					CurrentTask: req.CurrentTask,
					Timestamp:   req.Timestamp,
				},
			})
			if err != nil {
				log.Error().Err(err).Str("event_id", event.ID).Msg("task observation not published")
				http.Error(w, "Event queue saturated, retry", http.StatusServiceUnavailable)
				return
			}
		}

		writeJSON(w, http.StatusAccepted, map[string]string{"id": event.ID})
	}
}

// Handler for resolving a roster email to its directory UID.
// Query parameter: email.
func userResolveHandler(directory repository.UserDirectory, log *zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := model.NormalizeEmail(r.URL.Query().Get("email"))
		if email == "" {
			http.Error(w, "email is required", http.StatusBadRequest)
			return
		}

		uid, err := directory.FindUIDByEmail(r.Context(), repository.NoTX, email)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				http.NotFound(w, r)
				return
			}
			log.Error().Err(err).Msg("directory lookup failed")
			http.Error(w, "Failed to resolve user", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"email": email, "uid": uid})
	}
}

// Handler for reading a class's running usage total.
// Query parameter: classId.
func usageHandler(usage repository.UsageRepository, log *zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		classID := r.URL.Query().Get("classId")
		if classID == "" {
			http.Error(w, "classId is required", http.StatusBadRequest)
			return
		}

		counter, err := usage.FindByClass(r.Context(), repository.NoTX, classID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// A class with no recorded jobs has a zero counter.
				counter = &model.UsageCounter{ClassID: classID}
			} else {
				log.Error().Err(err).Str("class_id", classID).Msg("usage lookup failed")
				http.Error(w, "Failed to read usage", http.StatusInternalServerError)
				return
			}
		}

		writeJSON(w, http.StatusOK, struct {
			ClassID   string  `json:"classId"`
			TotalCost float64 `json:"totalCost"`
		}{
			ClassID:   counter.ClassID,
			TotalCost: counter.TotalCost,
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
