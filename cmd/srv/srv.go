package main

import (
	"context"
	"net/http"
	"os"

	"github.com/georef-lab/backend/config"
	"github.com/georef-lab/backend/internal/domain"
	"github.com/georef-lab/backend/internal/domain/statistic"
	"github.com/georef-lab/backend/internal/repository"
	"github.com/georef-lab/backend/pkg/idutil"
	"github.com/georef-lab/backend/pkg/logger"
	"github.com/georef-lab/backend/pkg/router"
	"github.com/georef-lab/backend/pkg/xcontext"
	"github.com/georef-lab/backend/pkg/xredis"
	"github.com/urfave/cli/v2"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

type srv struct {
	app *cli.App
	ctx context.Context

	configs *config.Configs
	logger  logger.Logger

	db          *gorm.DB
	redisClient xredis.Client
	idGenerator *idutil.Generator

	userRepo        repository.UserRepository
	ownerRepo       repository.OwnerRepository
	ownerMemberRepo repository.OwnerMemberRepository
	collectionRepo  repository.CollectionRepository
	imageRepo       repository.ImageRepository
	submissionRepo  repository.SubmissionRepository

	leaderboard statistic.Leaderboard

	submissionDomain domain.SubmissionDomain
	imageDomain      domain.ImageDomain
	collectionDomain domain.CollectionDomain
	ownerDomain      domain.OwnerDomain
	statisticDomain  domain.StatisticDomain

	router *router.Router
	server *http.Server
}

func (s *srv) loadConfig(cctx *cli.Context) {
	path := cctx.String("config")
	if env := os.Getenv("CONFIG_PATH"); env != "" {
		path = env
	}

	configs, err := config.Load(path)
	if err != nil {
		panic(err)
	}

	s.configs = &configs
	s.ctx = xcontext.WithConfigs(context.Background(), configs)
}

func (s *srv) loadLogger() {
	s.logger = logger.NewLogger()
	s.ctx = xcontext.WithLogger(s.ctx, s.logger)
}

func (s *srv) loadDatabase() {
	db, err := gorm.Open(mysql.Open(s.configs.Database.ConnectionString()), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	s.db = db
	s.ctx = xcontext.WithDB(s.ctx, db)
}

func (s *srv) loadRedis() {
	redisClient, err := xredis.NewClient(s.ctx)
	if err != nil {
		panic(err)
	}

	s.redisClient = redisClient
}

func (s *srv) loadRepos() {
	s.userRepo = repository.NewUserRepository()
	s.ownerRepo = repository.NewOwnerRepository(s.redisClient)
	s.ownerMemberRepo = repository.NewOwnerMemberRepository()
	s.collectionRepo = repository.NewCollectionRepository()
	s.imageRepo = repository.NewImageRepository()
	s.submissionRepo = repository.NewSubmissionRepository()
}

func (s *srv) loadDomains() {
	idGenerator, err := idutil.NewGenerator(1)
	if err != nil {
		panic(err)
	}

	s.idGenerator = idGenerator
	s.leaderboard = statistic.New(s.submissionRepo, s.redisClient)

	s.submissionDomain = domain.NewSubmissionDomain(
		s.submissionRepo, s.imageRepo, s.collectionRepo,
		s.ownerMemberRepo, s.userRepo, s.leaderboard, s.idGenerator)
	s.imageDomain = domain.NewImageDomain(
		s.imageRepo, s.collectionRepo, s.ownerMemberRepo, s.userRepo)
	s.collectionDomain = domain.NewCollectionDomain(
		s.collectionRepo, s.ownerMemberRepo, s.userRepo)
	s.ownerDomain = domain.NewOwnerDomain(s.ownerRepo, s.ownerMemberRepo, s.userRepo)
	s.statisticDomain = domain.NewStatisticDomain(s.submissionRepo, s.userRepo, s.leaderboard)
}
