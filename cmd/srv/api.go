package main

import (
	"fmt"
	"net/http"

	"github.com/georef-lab/backend/internal/middleware"
	"github.com/georef-lab/backend/pkg/router"
	"github.com/rs/cors"
	"github.com/urfave/cli/v2"
)

func (s *srv) startApi(cctx *cli.Context) error {
	s.loadConfig(cctx)
	s.loadLogger()
	s.loadDatabase()
	s.loadRedis()
	s.loadRepos()
	s.loadDomains()
	s.loadRouter()

	c := cors.New(cors.Options{
		AllowedOrigins:   s.configs.ApiServer.AllowCORS,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%s", s.configs.ApiServer.Port),
		Handler: c.Handler(s.router.Handler()),
	}

	s.logger.Infof("Starting server on port %s", s.configs.ApiServer.Port)
	if err := s.server.ListenAndServe(); err != nil {
		panic(err)
	}

	return nil
}

func (s *srv) loadRouter() {
	s.router = router.New(s.db, *s.configs, s.logger)
	s.router.Before(middleware.WithAuthentication())
	s.router.AddCloser(middleware.Logger())

	// These APIs require an authenticated user.
	authRouter := s.router.Branch()
	authRouter.Before(middleware.Authenticate())
	{
		router.POST(authRouter, "/submit", s.submissionDomain.Submit)
		router.POST(authRouter, "/review", s.submissionDomain.Review)
		router.POST(authRouter, "/startGeoreferencing", s.imageDomain.StartGeoreferencing)
		router.POST(authRouter, "/markImageImpossible", s.imageDomain.MarkImpossible)
		router.GET(authRouter, "/getRank", s.statisticDomain.GetRank)
	}

	// Public API. Visibility policy narrows results for guests.
	router.GET(s.router, "/getSubmission", s.submissionDomain.Get)
	router.GET(s.router, "/getListSubmission", s.submissionDomain.GetList)
	router.GET(s.router, "/getImage", s.imageDomain.Get)
	router.GET(s.router, "/getListCollection", s.collectionDomain.GetList)
	router.GET(s.router, "/getListOwner", s.ownerDomain.GetList)
	router.GET(s.router, "/getRanking", s.statisticDomain.GetRanking)
}
