package http

import (
	"bytes"
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"bizdash/internal/amqp"
	"bizdash/internal/core"
	applog "bizdash/internal/log"
)

// MsgAdminOnly is returned when a non-admin tries to delete a service.
const MsgAdminOnly = "Only admin can delete services."

type serviceView struct {
	ID        string
	Title     string
	Details   string
	Price     string
	Available bool
}

type serviceListView struct {
	Services  []serviceView
	CanDelete bool
	LoadError bool
}

type serviceFormView struct {
	Editing bool
	Service serviceView
	// PriceInput is the unformatted price for the number input.
	PriceInput string
}

func toServiceView(svc core.Service) serviceView {
	return serviceView{
		ID:        svc.ID,
		Title:     svc.Title,
		Details:   svc.Details,
		Price:     formatPeso(svc.Price),
		Available: svc.Available,
	}
}

// listView re-fetches the whole services collection.
func (s *Server) listView(ctx context.Context, r *http.Request) serviceListView {
	v := serviceListView{CanDelete: canDelete(r)}
	list, err := s.store.ListServices(ctx)
	if err != nil {
		applog.LogError(ctx, "List services failed", err, applog.ComponentCatalog, "list")
		v.LoadError = true
		return v
	}
	for _, svc := range list {
		v.Services = append(v.Services, toServiceView(svc))
	}
	return v
}

// handleServicesPage renders the services page with an empty form and the
// current list.
func (s *Server) handleServicesPage(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	data := struct {
		Form serviceFormView
		List serviceListView
	}{
		Form: serviceFormView{Service: serviceView{Available: true}},
		List: s.listView(ctx, r),
	}
	s.render(w, r, "services_page", data)
}

func (s *Server) handleServiceList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	s.render(w, r, "service_list", s.listView(ctx, r))
}

// handleServiceForm returns the blank form, or the edit form for {id}.
func (s *Server) handleServiceForm(w http.ResponseWriter, r *http.Request) {
	id, editing := mux.Vars(r)["id"]
	if !editing {
		s.render(w, r, "service_form", serviceFormView{Service: serviceView{Available: true}})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	svc, err := s.findService(ctx, id)
	if err != nil {
		s.writeStoreError(w, r, err, "edit")
		return
	}
	s.render(w, r, "service_form", serviceFormView{
		Editing:    true,
		Service:    toServiceView(svc),
		PriceInput: formPrice(svc.Price),
	})
}

func (s *Server) handleCreateService(w http.ResponseWriter, r *http.Request) {
	svc, resp := s.parseService(r)
	if resp != nil {
		resp.Write(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	id, err := s.store.CreateService(ctx, svc)
	if err != nil {
		s.writeStoreError(w, r, err, "create")
		return
	}
	applog.LogServiceChanged(ctx, "create", id, svc.Title, svc.Price.String())
	s.respondMutation(ctx, w, r, id, amqp.ActionCreated, "Service added")
}

func (s *Server) handleUpdateService(w http.ResponseWriter, r *http.Request) {
	svc, resp := s.parseService(r)
	if resp != nil {
		resp.Write(w)
		return
	}
	svc.ID = mux.Vars(r)["id"]

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := s.store.UpdateService(ctx, svc); err != nil {
		s.writeStoreError(w, r, err, "update")
		return
	}
	applog.LogServiceChanged(ctx, "update", svc.ID, svc.Title, svc.Price.String())
	s.respondMutation(ctx, w, r, svc.ID, amqp.ActionUpdated, "Service updated")
}

// handleToggleService flips availability based on the stored value.
func (s *Server) handleToggleService(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	svc, err := s.findService(ctx, id)
	if err != nil {
		s.writeStoreError(w, r, err, "toggle")
		return
	}
	if err := s.store.SetAvailability(ctx, id, !svc.Available); err != nil {
		s.writeStoreError(w, r, err, "toggle")
		return
	}
	applog.LogServiceChanged(ctx, "toggle", id, svc.Title, svc.Price.String())

	msg := "Service marked available"
	if svc.Available {
		msg = "Service marked unavailable"
	}
	s.respondMutation(ctx, w, r, id, amqp.ActionAvailability, msg)
}

// handleDeleteService is admin-only; the role comes from the userRole cookie.
func (s *Server) handleDeleteService(w http.ResponseWriter, r *http.Request) {
	if !canDelete(r) {
		applog.FromContext(r.Context()).WithComponent(applog.ComponentSecurity).WarnContext(r.Context(),
			"Delete denied", "role", roleFromRequest(r), applog.FieldPath, r.URL.Path)
		ForbiddenError(MsgAdminOnly).TriggerErrorNotification(MsgAdminOnly).Write(w)
		return
	}
	id := mux.Vars(r)["id"]

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := s.store.DeleteService(ctx, id); err != nil {
		s.writeStoreError(w, r, err, "delete")
		return
	}
	applog.LogServiceChanged(ctx, "delete", id, "", "")
	s.respondMutation(ctx, w, r, id, amqp.ActionDeleted, "Service deleted")
}

// parseService reads and validates the service form. A non-nil response
// means the request was rejected.
func (s *Server) parseService(r *http.Request) (core.Service, *HTMXResponseBuilder) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		return core.Service{}, BadRequestError("Invalid request format")
	}
	svc, err := ParseServiceForm(p)
	switch {
	case err == nil:
		return svc, nil
	case errors.Is(err, errMissingFields), errors.Is(err, core.ErrEmptyTitle), errors.Is(err, core.ErrEmptyDetails):
		return svc, UnprocessableEntityError(MsgFillAllFields).TriggerErrorNotification(MsgFillAllFields)
	case errors.Is(err, core.ErrInvalidPrice):
		return svc, UnprocessableEntityError("Invalid price").TriggerErrorNotification("Invalid price")
	default:
		return svc, UnprocessableEntityError(err.Error())
	}
}

func (s *Server) findService(ctx context.Context, id string) (core.Service, error) {
	list, err := s.store.ListServices(ctx)
	if err != nil {
		return core.Service{}, err
	}
	for _, svc := range list {
		if svc.ID == id {
			return svc, nil
		}
	}
	return core.Service{}, core.ErrServiceNotFound
}

// respondMutation invalidates the dashboard snapshot and answers with the
// freshly fetched list.
func (s *Server) respondMutation(ctx context.Context, w http.ResponseWriter, r *http.Request, id, action, message string) {
	s.dashboard.Invalidate()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	b := NewHTMXResponse().
		TriggerServiceChanged(id, action).
		TriggerSuccessNotification(message)
	if action == amqp.ActionCreated || action == amqp.ActionUpdated {
		b.TriggerFormReset()
	}

	if s.templates == nil {
		b.BodyHTML(`<div class="success">` + message + `</div>`).Write(w)
		return
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "service_list", s.listView(ctx, r)); err != nil {
		applog.LogError(ctx, "Template execution failed", err, applog.ComponentTemplate, "service_list")
		b.BodyHTML(`<div class="success">` + message + `</div>`).Write(w)
		return
	}
	b.Body(buf.Bytes()).Write(w)
}

func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, err error, op string) {
	if errors.Is(err, core.ErrServiceNotFound) {
		NotFoundError("Service not found").Write(w)
		return
	}
	applog.LogError(r.Context(), "Service store operation failed", err, applog.ComponentCatalog, op)
	InternalServerError("Could not save the service").
		TriggerErrorNotification("Could not save the service").
		Write(w)
}
