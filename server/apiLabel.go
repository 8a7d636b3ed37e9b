package server

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/labelforge/labelforge/pkg/anno"
	"github.com/labelforge/labelforge/pkg/www"
)

func (s *Server) httpGetLabel(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	label := s.getLabel(params.ByName("labelID"))
	www.SendJSON(w, label)
}

func (s *Server) httpSetAnnotations(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	label := s.getLabel(params.ByName("labelID"))

	annotations := []anno.Annotation{}
	www.ReadJSON(w, r, &annotations, 32*1024*1024)

	www.Check(s.DB.ReplaceAnnotations(label.ID, annotations))
	www.SendOK(w)
}

// httpConvertLabel rebuilds the label's response from its annotation records
// and persists it. Converting twice with the same records produces the same
// response, so clients are free to retry.
func (s *Server) httpConvertLabel(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	label := s.getLabel(params.ByName("labelID"))
	project := s.getProject(label.ProjectID)

	annotations, err := s.DB.AnnotationsForLabel(label.ID)
	www.Check(err)

	var iface *anno.Interface
	if project.Interface != nil {
		iface = &project.Interface.Data
	}
	var existing map[string]any
	if label.Response != nil && len(label.Response.Data) != 0 {
		www.Check(json.Unmarshal(label.Response.Data, &existing))
	}

	// Nothing to convert: serve the stored response byte-for-byte. Running it
	// through the map and back would reorder a video response's frame keys.
	if anno.RetainsExisting(annotations, iface, existing) {
		www.SendJSONRaw(w, label.Response.Data)
		return
	}

	response, err := anno.Convert(project.InputType, annotations, iface, existing)
	www.CheckClient(err)

	raw, err := json.Marshal(response)
	www.Check(err)
	www.Check(s.DB.SetResponse(label.ID, raw))

	www.SendJSONRaw(w, raw)
}

func (s *Server) httpGetResponse(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	label := s.getLabel(params.ByName("labelID"))
	if label.Response == nil || len(label.Response.Data) == 0 {
		www.PanicNotFoundf("Label %v has no response yet", label.ID)
	}
	www.SendJSONRaw(w, label.Response.Data)
}
