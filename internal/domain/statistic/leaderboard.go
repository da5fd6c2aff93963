package statistic

import (
	"context"

	"github.com/georef-lab/backend/internal/entity"
	"github.com/georef-lab/backend/internal/model"
	"github.com/georef-lab/backend/internal/repository"
	"github.com/georef-lab/backend/pkg/errorx"
	"github.com/georef-lab/backend/pkg/xcontext"
	"github.com/georef-lab/backend/pkg/xredis"
	"github.com/redis/go-redis/v9"
)

// Leaderboard keeps per-collection contribution counts in redis sorted sets,
// one set per metric, lazily loaded from the database on first access.
type Leaderboard interface {
	GetLeaderBoard(
		ctx context.Context,
		collectionID, orderedBy string,
		offset, limit int,
	) ([]model.RankingRow, error)

	GetRank(ctx context.Context, userID, collectionID, orderedBy string) (uint64, error)

	// ChangeLeaderboard bumps the author's count of the metric matching the
	// kind of a just-accepted submission.
	ChangeLeaderboard(ctx context.Context, value int64, userID, collectionID string, kind entity.SubmissionKind) error
}

type leaderboard struct {
	submissionRepo repository.SubmissionRepository
	redisClient    xredis.Client
}

func New(
	submissionRepo repository.SubmissionRepository,
	redisClient xredis.Client,
) *leaderboard {
	return &leaderboard{submissionRepo: submissionRepo, redisClient: redisClient}
}

func (l *leaderboard) GetLeaderBoard(
	ctx context.Context,
	collectionID, orderedBy string,
	offset, limit int,
) ([]model.RankingRow, error) {
	key, err := redisKeyLeaderBoard(collectionID, orderedBy)
	if err != nil {
		xcontext.Logger(ctx).Debugf("Invalid ordered by field: %v", err)
		return nil, errorx.New(errorx.BadRequest, "Invalid ordered by field")
	}

	ok, err := l.redisClient.Exist(ctx, key)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot call exist redis: %v", err)
		return nil, errorx.Unknown
	}

	// If the key didn't exist in redis, load it from database.
	if !ok {
		if err := l.loadLeaderboardFromDB(ctx, collectionID, orderedBy); err != nil {
			return nil, err
		}
	}

	results, err := l.redisClient.ZRevRangeWithScores(ctx, key, offset, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get revrange redis: %v", err)
		return nil, errorx.Unknown
	}

	rows := []model.RankingRow{}
	for _, z := range results {
		row := model.RankingRow{ID: z.Member.(string)}
		switch orderedBy {
		case MetricCorrection:
			row.NCorr = int(z.Score)
		case MetricObservation:
			row.NObs = int(z.Score)
		default:
			row.NGeoloc = int(z.Score)
		}

		rows = append(rows, row)
	}

	return rows, nil
}

func (l *leaderboard) GetRank(
	ctx context.Context, userID, collectionID, orderedBy string,
) (uint64, error) {
	key, err := redisKeyLeaderBoard(collectionID, orderedBy)
	if err != nil {
		xcontext.Logger(ctx).Debugf("Invalid ordered by field: %v", err)
		return 0, errorx.New(errorx.BadRequest, "Invalid ordered by field")
	}

	ok, err := l.redisClient.Exist(ctx, key)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot call exist redis: %v", err)
		return 0, errorx.Unknown
	}

	// If the key didn't exist in redis, load it from database.
	if !ok {
		if err := l.loadLeaderboardFromDB(ctx, collectionID, orderedBy); err != nil {
			return 0, err
		}
	}

	rank, err := l.redisClient.ZRevRank(ctx, key, userID)
	if err != nil {
		xcontext.Logger(ctx).Debugf("Cannot get rev rank redis: %v", err)
		return 0, nil
	}

	return rank + 1, nil
}

func (l *leaderboard) ChangeLeaderboard(
	ctx context.Context,
	value int64,
	userID, collectionID string,
	kind entity.SubmissionKind,
) error {
	key, err := redisKeyLeaderBoard(collectionID, metricForKind(kind))
	if err != nil {
		xcontext.Logger(ctx).Debugf("Invalid ordered by field: %v", err)
		return errorx.New(errorx.BadRequest, "Invalid ordered by field")
	}

	ok, err := l.redisClient.Exist(ctx, key)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot call exist redis: %v", err)
		return errorx.Unknown
	}

	// If the key didn't exist in redis, no need to update. The next read
	// loads fresh counts from database anyway.
	if !ok {
		return nil
	}

	if err := l.redisClient.ZIncrBy(ctx, key, value, userID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot call ZIncrBy redis: %v", err)
	}

	return nil
}

func (l *leaderboard) loadLeaderboardFromDB(
	ctx context.Context, collectionID, orderedBy string,
) error {
	kind, state, err := metricSpec(orderedBy)
	if err != nil {
		xcontext.Logger(ctx).Debugf("Invalid ordered by field: %v", err)
		return errorx.New(errorx.BadRequest, "Invalid ordered by field")
	}

	counts, err := l.submissionRepo.CountByUserForKind(
		ctx, kind, state, repository.RankingFilter{CollectionID: collectionID})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot load statistic from database: %v", err)
		return errorx.Unknown
	}

	key, err := redisKeyLeaderBoard(collectionID, orderedBy)
	if err != nil {
		return errorx.Unknown
	}

	for _, c := range counts {
		err := l.redisClient.ZAdd(ctx, key, redis.Z{Member: c.UserID, Score: float64(c.N)})
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot zadd redis: %v", err)
			return errorx.Unknown
		}
	}

	return nil
}
