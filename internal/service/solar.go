package service

import (
	"context"
	"errors"
	"html"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/helios/internal/geo"
	"github.com/UnknownOlympus/helios/internal/geocoding"
	"github.com/UnknownOlympus/helios/internal/metrics"
	"github.com/UnknownOlympus/helios/internal/models"
	"github.com/UnknownOlympus/helios/internal/overlay"
	"github.com/UnknownOlympus/helios/internal/scene"
	"github.com/UnknownOlympus/helios/internal/session"
	"github.com/UnknownOlympus/helios/internal/solar"
	"github.com/UnknownOlympus/helios/internal/solarapi"
)

// Outcome is the result of one click.
type Outcome string

const (
	OutcomeRendered          Outcome = "rendered"
	OutcomeAPIError          Outcome = "api_error"
	OutcomeTransportError    Outcome = "transport_error"
	OutcomeInvalidCoordinate Outcome = "invalid_coordinate"
	OutcomeStale             Outcome = "stale"
)

// User-facing messages written to the info panel.
const (
	MsgFetchFailed       = "An error occurred while fetching data."
	MsgInvalidCoordinate = "Invalid location."
)

// SolarService turns map clicks into rendered solar potential. It owns no map state:
// every call works on the session it is given.
type SolarService struct {
	log      *slog.Logger       // Logger for logging service activities
	fetcher  solarapi.Fetcher   // Building insights client
	geocoder geocoding.Provider // Reverse geocoder for the summary address
	metrics  *metrics.Metrics   // Metrics for tracking service performance
	timeout  time.Duration      // Upper bound for one click, address lookup included
}

// NewSolarService creates a new instance of SolarService.
func NewSolarService(
	log *slog.Logger,
	fetcher solarapi.Fetcher,
	geocoder geocoding.Provider,
	metrics *metrics.Metrics,
	timeout time.Duration,
) *SolarService {
	if geocoder == nil {
		geocoder = geocoding.NoopProvider{}
	}

	return &SolarService{
		log:      log,
		fetcher:  fetcher,
		geocoder: geocoder,
		metrics:  metrics,
		timeout:  timeout,
	}
}

// FetchAndRender issues one building-insights request for coord and shows the result in sess.
//
// The click takes a fresh token from the session. When the answer arrives after a newer
// click was issued it is dropped and OutcomeStale is returned; otherwise the surface is
// cleared and redrawn, or the info panel shows an error. Failures are never retried.
func (s *SolarService) FetchAndRender(ctx context.Context, sess *session.Session, coord models.Coordinate) Outcome {
	click := sess.Begin(coord)
	log := s.log.With("session", sess.ID, "token", click.Token)

	if err := geo.Validate(coord); err != nil {
		log.WarnContext(ctx, "Rejected click", "lat", coord.Latitude, "lng", coord.Longitude, "error", err)
		return s.commit(sess, click, OutcomeInvalidCoordinate, func(sc *scene.Scene) {
			sc.SetInfo(MsgInvalidCoordinate)
			sc.Log("Invalid click coordinate: " + err.Error())
		})
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	s.metrics.InFlightClicks.Inc()
	startTime := time.Now()
	body, err := s.fetcher.FindClosest(ctx, coord)
	s.metrics.RequestSeconds.Observe(time.Since(startTime).Seconds())
	s.metrics.InFlightClicks.Dec()

	if err != nil {
		log.ErrorContext(ctx, "Failed to fetch building insights", "error", err)
		return s.commit(sess, click, OutcomeTransportError, transportFailure(err))
	}

	log.DebugContext(ctx, "Received data", "body", string(body))

	potential, err := solar.Normalize(body)
	var apiErr *solar.APIError
	switch {
	case errors.As(err, &apiErr):
		log.WarnContext(ctx, "Solar API reported an error", "code", apiErr.Code, "status", apiErr.Status,
			"message", apiErr.Message)
		return s.commit(sess, click, OutcomeAPIError, func(sc *scene.Scene) {
			sc.SetInfo("Error: " + html.EscapeString(apiErr.Message))
			sc.Log("API error: " + apiErr.Message)
		})
	case err != nil:
		log.ErrorContext(ctx, "Failed to decode building insights", "error", err)
		return s.commit(sess, click, OutcomeTransportError, transportFailure(err))
	}

	if sess.Current(click.Token) {
		potential.Building.Address = s.lookupAddress(ctx, log, coord)
	}

	var report overlay.Report
	outcome := s.commit(sess, click, OutcomeRendered, func(sc *scene.Scene) {
		sc.Clear()
		report = overlay.NewRenderer(sc, sc, sc, log).Render(potential, coord)
	})
	if outcome == OutcomeRendered {
		s.metrics.RoofSegments.WithLabelValues("drawn").Add(float64(report.Drawn))
		s.metrics.RoofSegments.WithLabelValues("skipped").Add(float64(len(report.Skipped)))
		log.InfoContext(ctx, "Rendered solar potential",
			"drawn", report.Drawn, "skipped", len(report.Skipped))
	}

	return outcome
}

// commit applies the result if the click is still current and records the outcome.
func (s *SolarService) commit(
	sess *session.Session,
	click models.Click,
	outcome Outcome,
	apply func(sc *scene.Scene),
) Outcome {
	if !sess.Commit(click.Token, apply) {
		s.log.Debug("Discarding stale response", "session", sess.ID, "token", click.Token,
			"outcome", string(outcome))
		s.metrics.StaleResponses.Inc()
		s.metrics.SolarRequests.WithLabelValues(string(OutcomeStale)).Inc()
		return OutcomeStale
	}

	s.metrics.SolarRequests.WithLabelValues(string(outcome)).Inc()
	return outcome
}

func (s *SolarService) lookupAddress(ctx context.Context, log *slog.Logger, coord models.Coordinate) string {
	address, err := s.geocoder.ReverseGeocode(ctx, coord)
	if err != nil {
		s.metrics.GeocoderErrors.Inc()
		log.WarnContext(ctx, "Failed to resolve address", "error", err)
		return ""
	}

	return address
}

func transportFailure(err error) func(sc *scene.Scene) {
	return func(sc *scene.Scene) {
		sc.SetInfo(MsgFetchFailed)
		sc.Log("Fetch error: " + err.Error())
	}
}
