package domain

import (
	"context"
	"sort"
	"time"

	"github.com/georef-lab/backend/internal/domain/statistic"
	"github.com/georef-lab/backend/internal/entity"
	"github.com/georef-lab/backend/internal/model"
	"github.com/georef-lab/backend/internal/repository"
	"github.com/georef-lab/backend/pkg/errorx"
	"github.com/georef-lab/backend/pkg/xcontext"
	"golang.org/x/sync/errgroup"
)

type StatisticDomain interface {
	GetRanking(ctx context.Context, req *model.GetRankingRequest) (*model.GetRankingResponse, error)
	GetRank(ctx context.Context, req *model.GetRankRequest) (*model.GetRankResponse, error)
}

type statisticDomain struct {
	submissionRepo repository.SubmissionRepository
	userRepo       repository.UserRepository
	leaderboard    statistic.Leaderboard
}

func NewStatisticDomain(
	submissionRepo repository.SubmissionRepository,
	userRepo repository.UserRepository,
	leaderboard statistic.Leaderboard,
) *statisticDomain {
	return &statisticDomain{
		submissionRepo: submissionRepo,
		userRepo:       userRepo,
		leaderboard:    leaderboard,
	}
}

func parseRankingDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}

	return time.Parse("2006-01-02", value)
}

func selectMetric(row model.RankingRow, orderBy string) int {
	switch orderBy {
	case statistic.MetricCorrection:
		return row.NCorr
	case statistic.MetricObservation:
		return row.NObs
	default:
		return row.NGeoloc
	}
}

func (d *statisticDomain) GetRanking(
	ctx context.Context, req *model.GetRankingRequest,
) (*model.GetRankingResponse, error) {
	orderBy := req.OrderBy
	if orderBy == "" {
		orderBy = statistic.MetricGeolocation
	}

	switch orderBy {
	case statistic.MetricGeolocation, statistic.MetricCorrection, statistic.MetricObservation:
	default:
		return nil, errorx.New(errorx.BadRequest, "Invalid order by field %s", req.OrderBy)
	}

	orderDir := req.OrderDir
	if orderDir == "" {
		orderDir = "DESC"
	}

	if orderDir != "ASC" && orderDir != "DESC" {
		return nil, errorx.New(errorx.BadRequest, "Order dir must be ASC or DESC")
	}

	filter := repository.RankingFilter{
		CollectionID: req.CollectionID,
		OwnerID:      req.OwnerID,
	}

	if req.DateMin != "" {
		t, err := parseRankingDate(req.DateMin)
		if err != nil {
			return nil, errorx.New(errorx.BadRequest, "Invalid date min %s", req.DateMin)
		}

		filter.DateMin = t
	}

	if req.DateMax != "" {
		t, err := parseRankingDate(req.DateMax)
		if err != nil {
			return nil, errorx.New(errorx.BadRequest, "Invalid date max %s", req.DateMax)
		}

		filter.DateMax = t
	}

	limit, err := normalizeLimit(ctx, req.Limit)
	if err != nil {
		return nil, err
	}

	if req.Offset < 0 {
		return nil, errorx.New(errorx.BadRequest, "Offset must not be negative")
	}

	var geolocCounts, corrCounts, obsCounts []repository.UserCount
	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		var err error
		geolocCounts, err = d.submissionRepo.CountByUserForKind(
			groupCtx, entity.KindGeolocation, entity.SubmissionValidated, filter)
		return err
	})

	group.Go(func() error {
		var err error
		corrCounts, err = d.submissionRepo.CountByUserForKind(
			groupCtx, entity.KindCorrection, entity.SubmissionAccepted, filter)
		return err
	})

	group.Go(func() error {
		var err error
		obsCounts, err = d.submissionRepo.CountByUserForKind(
			groupCtx, entity.KindObservation, entity.SubmissionValidated, filter)
		return err
	})

	if err := group.Wait(); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count contributions: %v", err)
		return nil, errorx.Unknown
	}

	byUser := map[string]*model.RankingRow{}
	rowOf := func(userID string) *model.RankingRow {
		if _, ok := byUser[userID]; !ok {
			byUser[userID] = &model.RankingRow{ID: userID}
		}

		return byUser[userID]
	}

	for _, c := range geolocCounts {
		rowOf(c.UserID).NGeoloc = c.N
	}

	for _, c := range corrCounts {
		rowOf(c.UserID).NCorr = c.N
	}

	for _, c := range obsCounts {
		rowOf(c.UserID).NObs = c.N
	}

	// A user appears in the ranking only with a positive count of the
	// selected metric, whatever the other counts are.
	rows := []model.RankingRow{}
	for _, row := range byUser {
		if selectMetric(*row, orderBy) > 0 {
			rows = append(rows, *row)
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		mi, mj := selectMetric(rows[i], orderBy), selectMetric(rows[j], orderBy)
		if mi != mj {
			if orderDir == "ASC" {
				return mi < mj
			}

			return mi > mj
		}

		return rows[i].ID < rows[j].ID
	})

	// Count reflects the whole filtered ranking, not only the current page.
	count := len(rows)

	if req.Offset >= len(rows) {
		rows = []model.RankingRow{}
	} else {
		end := req.Offset + limit
		if end > len(rows) {
			end = len(rows)
		}

		rows = rows[req.Offset:end]
	}

	userIDs := []string{}
	for _, row := range rows {
		userIDs = append(userIDs, row.ID)
	}

	users, err := d.userRepo.GetByIDs(ctx, userIDs)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get ranked users: %v", err)
		return nil, errorx.Unknown
	}

	nameOf := map[string]string{}
	for _, u := range users {
		nameOf[u.ID] = u.Name
	}

	for i := range rows {
		rows[i].Username = nameOf[rows[i].ID]
	}

	return &model.GetRankingResponse{Count: count, Rows: rows}, nil
}

func (d *statisticDomain) GetRank(
	ctx context.Context, req *model.GetRankRequest,
) (*model.GetRankResponse, error) {
	userID := req.UserID
	if userID == "" {
		userID = xcontext.RequestUserID(ctx)
	}

	if userID == "" {
		return nil, errorx.New(errorx.Unauthenticated, "Not allow an anonymous rank lookup")
	}

	orderBy := req.OrderBy
	if orderBy == "" {
		orderBy = statistic.MetricGeolocation
	}

	rank, err := d.leaderboard.GetRank(ctx, userID, req.CollectionID, orderBy)
	if err != nil {
		return nil, err
	}

	return &model.GetRankResponse{Rank: rank}, nil
}
