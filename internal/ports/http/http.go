package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	enrollmentapp "gitlab.com/teachcorps/recruitment-backend/internal/application/enrollment"
	cataloghttp "gitlab.com/teachcorps/recruitment-backend/internal/ports/http/catalog"
	enrollmenthttp "gitlab.com/teachcorps/recruitment-backend/internal/ports/http/enrollment"
	"gitlab.com/teachcorps/recruitment-backend/internal/ports/http/middlewares"
	"gitlab.com/teachcorps/recruitment-backend/pkg/httpx"
)

type Port struct {
	enrollment *enrollmenthttp.HTTP
	catalog    *cataloghttp.HTTP
}

type Args struct {
	EnrollmentApp *enrollmentapp.App
	Campaigns     cataloghttp.CampaignLister
	Trainings     cataloghttp.TrainingLister
	Errhandler    *httpx.ErrorHandler
}

func NewPort(args Args) *Port {
	return &Port{
		enrollment: enrollmenthttp.NewHTTP(enrollmenthttp.Args{
			App:        args.EnrollmentApp,
			Errhandler: args.Errhandler,
		}),
		catalog: cataloghttp.NewHTTP(cataloghttp.Args{
			Campaigns:  args.Campaigns,
			Trainings:  args.Trainings,
			Errhandler: args.Errhandler,
		}),
	}
}

func (p *Port) Route(r chi.Router) chi.Router {
	if r == nil {
		r = chi.NewRouter()
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewares.OTel)
	r.Use(middlewares.Logger)
	r.Use(middlewares.Actor)
	r.Use(middleware.Recoverer)

	p.enrollment.Route(r)
	p.catalog.Route(r)

	return r
}
