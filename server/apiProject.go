package server

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/labelforge/labelforge/pkg/anno"
	"github.com/labelforge/labelforge/pkg/www"
)

type createProjectJSON struct {
	Name      string         `json:"name"`
	InputType string         `json:"inputType"`
	Interface anno.Interface `json:"interface"`
}

func (s *Server) httpCreateProject(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	body := createProjectJSON{}
	www.ReadJSON(w, r, &body, 1024*1024)
	if body.Name == "" {
		www.PanicBadRequestf("Must specify a project name")
	}
	if len(body.Interface.Jobs) == 0 {
		www.PanicBadRequestf("Project interface declares no jobs")
	}

	project, err := s.DB.CreateProject(body.Name, body.InputType, body.Interface)
	www.Check(err)
	s.Log.Infof("Created project %v (%v)", project.ID, project.Name)
	www.SendID(w, project.ID)
}

func (s *Server) httpGetProject(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	project := s.getProject(params.ByName("projectID"))
	www.SendJSON(w, project)
}

func (s *Server) httpCreateLabel(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	project := s.getProject(params.ByName("projectID"))
	assetID := www.RequiredQueryValue(r, "assetID")

	label, err := s.DB.CreateLabel(project.ID, assetID)
	www.Check(err)
	www.SendID(w, label.ID)
}
