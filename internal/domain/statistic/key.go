package statistic

import (
	"fmt"

	"github.com/georef-lab/backend/internal/entity"
)

// Ranking metric names accepted from callers.
const (
	MetricGeolocation = "n_geoloc"
	MetricCorrection  = "n_corr"
	MetricObservation = "n_obs"
)

// metricSpec maps a metric name to the submission kind and the state in which
// a record of that kind counts toward the metric.
func metricSpec(orderedBy string) (entity.SubmissionKind, entity.SubmissionState, error) {
	switch orderedBy {
	case MetricGeolocation:
		return entity.KindGeolocation, entity.SubmissionValidated, nil
	case MetricCorrection:
		return entity.KindCorrection, entity.SubmissionAccepted, nil
	case MetricObservation:
		return entity.KindObservation, entity.SubmissionValidated, nil
	}

	return "", "", fmt.Errorf("expected ordered by %s, %s or %s, but got %s",
		MetricGeolocation, MetricCorrection, MetricObservation, orderedBy)
}

// metricForKind is the metric a newly accepted submission of a kind bumps.
func metricForKind(kind entity.SubmissionKind) string {
	switch kind {
	case entity.KindCorrection:
		return MetricCorrection
	case entity.KindObservation:
		return MetricObservation
	default:
		return MetricGeolocation
	}
}

func redisKeyLeaderBoard(collectionID, orderedBy string) (string, error) {
	if _, _, err := metricSpec(orderedBy); err != nil {
		return "", err
	}

	return fmt.Sprintf("leaderboard:%s:%s", collectionID, orderedBy), nil
}
