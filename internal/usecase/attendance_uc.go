package usecase

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/rs/zerolog"

	"classroom-ai-assistant/internal/domain"
	"classroom-ai-assistant/internal/domain/model"
	"classroom-ai-assistant/internal/domain/ports/repository"
	"classroom-ai-assistant/internal/infra/logging"
)

// Compile-time check
var _ AttendanceUseCase = (*attendanceUC)(nil)

// AttendanceUseCase computes per-student per-minute presence for a
// lesson window from the sparse screenshot-event stream.
type AttendanceUseCase interface {
	// Compute accepts the window bounds as wall-clock strings which are
	// resolved in the class's configured time zone (RFC3339 inputs keep
	// their own offset).
	Compute(ctx context.Context, classID, start, end string) ([]model.AttendanceRow, error)
}

// chunkWindow bounds the size of any single event query; the constant
// number of extra round trips buys bounded memory per chunk.
const chunkWindow = 15 * time.Minute

type attendanceUC struct {
	classes repository.ClassConfigRepository
	events  repository.ScreenshotEventRepository
	log     *zerolog.Logger
}

func NewAttendanceUseCase(classes repository.ClassConfigRepository, events repository.ScreenshotEventRepository, logger *zerolog.Logger) *attendanceUC {
	l := logger.With().Str("component", "AttendanceUC").Logger()
	return &attendanceUC{classes: classes, events: events, log: &l}
}

func (a *attendanceUC) Compute(ctx context.Context, classID, start, end string) ([]model.AttendanceRow, error) {
	defer logging.TraceDuration(a.log, "AttendanceUC.Compute")()

	if classID == "" || start == "" || end == "" {
		return nil, domain.ErrInvalidArgument
	}

	class, err := a.classes.FindByID(ctx, repository.NoTX, classID)
	if err != nil {
		return nil, err
	}

	loc := time.UTC
	if class.TimeZone != "" {
		if l, lerr := time.LoadLocation(class.TimeZone); lerr == nil {
			loc = l
		} else {
			a.log.Warn().Str("class_id", classID).Str("tz", class.TimeZone).Msg("unknown time zone, falling back to UTC")
		}
	}
	startAt, err := parseWindowBound(start, loc)
	if err != nil {
		return nil, domain.ErrInvalidArgument
	}
	endAt, err := parseWindowBound(end, loc)
	if err != nil {
		return nil, domain.ErrInvalidArgument
	}

	durationMinutes := int(math.Round(endAt.Sub(startAt).Minutes()))
	if durationMinutes <= 0 {
		return []model.AttendanceRow{}, nil
	}

	roster := class.Roster()
	index := make(map[string]int, len(roster))
	bitmaps := make([][]int, len(roster))
	for i, entry := range roster {
		index[entry.Email] = i
		bitmaps[i] = make([]int, durationMinutes)
	}

	// Closed-closed chunk ranges overlap only at a single instant; an
	// event there maps to one minute index, so it is never double
	// counted.
	for chunkStart := startAt; chunkStart.Before(endAt); chunkStart = chunkStart.Add(chunkWindow) {
		chunkEnd := chunkStart.Add(chunkWindow)
		if chunkEnd.After(endAt) {
			chunkEnd = endAt
		}
		events, err := a.events.FindInRange(ctx, repository.NoTX, classID, chunkStart, chunkEnd)
		if err != nil {
			return nil, err
		}
		for _, ev := range events {
			i, ok := index[model.NormalizeEmail(ev.Email)]
			if !ok {
				// Non-roster emails are silently ignored.
				continue
			}
			minute := int(ev.Timestamp.Sub(startAt) / time.Minute)
			if minute >= 0 && minute < durationMinutes {
				bitmaps[i][minute] = 1
			}
		}
	}

	rows := make([]model.AttendanceRow, len(roster))
	for i, entry := range roster {
		total := 0
		for _, bit := range bitmaps[i] {
			total += bit
		}
		rows[i] = model.AttendanceRow{
			Email:        entry.Email,
			TotalMinutes: total,
			Percentage:   model.FormatPercentage(total, durationMinutes),
			Attendance:   bitmaps[i],
		}
	}
	return rows, nil
}

func parseWindowBound(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02T15:04"} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New("unparseable window bound: " + s)
}
