package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/classiccarrry/classic-carrry-admin/internal/models"
	"github.com/classiccarrry/classic-carrry-admin/internal/viewmodel"
)

func (s *Server) ListResourceTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.ResourceTypes())
}

// coordinator mounts the view for the {type} URL parameter, answering 404
// for unknown types.
func (s *Server) coordinator(w http.ResponseWriter, r *http.Request) (*viewmodel.Coordinator, bool) {
	return s.mount(w, chi.URLParam(r, "type"))
}

func (s *Server) mount(w http.ResponseWriter, resource string) (*viewmodel.Coordinator, bool) {
	c, err := s.Views.Mount(resource)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return nil, false
	}
	return c, true
}

// ListResources returns the view of a resource type. The first request
// loads it; later requests reload only when the server-side filter changes
// or reload=true is passed, and otherwise just re-run the local search.
func (s *Server) ListResources(w http.ResponseWriter, r *http.Request) {
	c, ok := s.coordinator(w, r)
	if !ok {
		return
	}
	list := c.List()
	rt := list.ResourceType()
	q := r.URL.Query()

	f := list.Filter()
	if rt.FilterParam != "" && q.Has(rt.FilterParam) {
		f.Server = q.Get(rt.FilterParam)
	}
	if q.Has("q") {
		f.Query = q.Get("q")
	}

	var err error
	if !list.Loaded() || q.Get("reload") == "true" {
		err = list.Load(r.Context(), f)
	} else {
		list.SetQuery(f.Query)
		err = list.SetFilter(r.Context(), f.Server)
	}
	if err != nil {
		writeFailure(w, err, "Failed to fetch "+rt.Label)
		return
	}
	writeJSON(w, http.StatusOK, list.Snapshot())
}

func (s *Server) GetResource(w http.ResponseWriter, r *http.Request) {
	c, ok := s.coordinator(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	if item, found := c.List().Find(id); found {
		writeJSON(w, http.StatusOK, item)
		return
	}
	item, err := s.Client.Get(r.Context(), c.List().ResourceType(), id)
	if err != nil {
		writeFailure(w, err, c.List().ResourceType().Entity+" not found")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) CreateResource(w http.ResponseWriter, r *http.Request) {
	c, ok := s.coordinator(w, r)
	if !ok {
		return
	}
	var form models.Resource
	if !decodeJSON(w, r, &form) {
		return
	}
	if err := c.Create(r.Context(), form); err != nil {
		writeFailure(w, err, "Failed to save")
		return
	}
	writeJSON(w, http.StatusCreated, c.List().Snapshot())
}

func (s *Server) UpdateResource(w http.ResponseWriter, r *http.Request) {
	c, ok := s.coordinator(w, r)
	if !ok {
		return
	}
	var form models.Resource
	if !decodeJSON(w, r, &form) {
		return
	}
	if err := c.Update(r.Context(), chi.URLParam(r, "id"), form); err != nil {
		writeFailure(w, err, "Failed to save")
		return
	}
	writeJSON(w, http.StatusOK, c.List().Snapshot())
}

// DeleteResource requires confirm=true; without it the request is refused
// with 428 and nothing is sent to the storefront.
func (s *Server) DeleteResource(w http.ResponseWriter, r *http.Request) {
	c, ok := s.coordinator(w, r)
	if !ok {
		return
	}
	var confirm viewmodel.Confirmer
	if r.URL.Query().Get("confirm") == "true" {
		confirm = viewmodel.Confirmed
	}
	if err := c.Delete(r.Context(), chi.URLParam(r, "id"), confirm); err != nil {
		writeFailure(w, err, "Failed to delete")
		return
	}
	writeJSON(w, http.StatusOK, c.List().Snapshot())
}

func (s *Server) ToggleResource(w http.ResponseWriter, r *http.Request) {
	c, ok := s.coordinator(w, r)
	if !ok {
		return
	}
	if err := c.Toggle(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeFailure(w, err, "Failed to update status")
		return
	}
	writeJSON(w, http.StatusOK, c.List().Snapshot())
}
