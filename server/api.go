package server

import (
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"gorm.io/gorm"

	"github.com/labelforge/labelforge/pkg/www"
	"github.com/labelforge/labelforge/server/labeldb"
)

// port example: ":8080"
func (s *Server) SetupHTTP(port string) error {
	router := httprouter.New()
	s.RegisterRoutes(router)

	s.Log.Infof("Listening on %v", port)
	return http.ListenAndServe(port, router)
}

func (s *Server) RegisterRoutes(router *httprouter.Router) {
	www.Handle(s.Log, router, "POST", "/api/project", s.httpCreateProject)
	www.Handle(s.Log, router, "GET", "/api/project/:projectID", s.httpGetProject)
	www.Handle(s.Log, router, "POST", "/api/project/:projectID/label", s.httpCreateLabel)
	www.Handle(s.Log, router, "GET", "/api/label/:labelID", s.httpGetLabel)
	www.Handle(s.Log, router, "PUT", "/api/label/:labelID/annotations", s.httpSetAnnotations)
	www.Handle(s.Log, router, "POST", "/api/label/:labelID/convert", s.httpConvertLabel)
	www.Handle(s.Log, router, "GET", "/api/label/:labelID/response", s.httpGetResponse)
}

func (s *Server) getProject(id string) *labeldb.Project {
	project, err := s.DB.GetProject(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		www.PanicNotFoundf("Project %v not found", id)
	}
	www.Check(err)
	return project
}

func (s *Server) getLabel(id string) *labeldb.Label {
	label, err := s.DB.GetLabel(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		www.PanicNotFoundf("Label %v not found", id)
	}
	www.Check(err)
	return label
}
