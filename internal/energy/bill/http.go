package bill

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fercen/fercen/internal/platform/middleware"
	"github.com/fercen/fercen/internal/platform/request"
	"github.com/fercen/fercen/internal/platform/respond"
	"github.com/fercen/fercen/internal/platform/sec"
	"github.com/fercen/fercen/internal/platform/validate"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (handler *Handler) RegisterRoutes(router chi.Router) {
	// The dashboard list is public; mutations require capabilities.
	router.Get("/", handler.list)
	router.With(middleware.RequirePermission(sec.PermissionCreateElectricityBill)).Post("/", handler.create)
	router.With(middleware.RequirePermission(sec.PermissionUpdateElectricityBill)).Put("/", handler.update)
	router.With(middleware.RequirePermission(sec.PermissionUpdateElectricityBill)).Delete("/", handler.delete)
}

// listEnvelope carries the bills plus the cache lifetime hint on hits, so
// the frontend can schedule its next refresh instead of polling blindly.
type listEnvelope struct {
	Message       string          `json:"message"`
	Bills         json.RawMessage `json:"bills"`
	ExpireSeconds *int64          `json:"expireSeconds,omitempty"`
}

func (handler *Handler) list(writer http.ResponseWriter, req *http.Request) {
	bills, expireSeconds, err := handler.service.List(req.Context())
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	respond.OK(writer, listEnvelope{
		Message:       "Contas de energia elétrica listadas com sucesso.",
		Bills:         bills,
		ExpireSeconds: expireSeconds,
	})
}

func (handler *Handler) create(writer http.ResponseWriter, req *http.Request) {
	body, err := request.DecodeBody(req)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	input, err := validate.Decode[CreateInput](body, validate.Keys{
		"year":               validate.Required,
		"month":              validate.Required,
		"peakConsumption":    validate.Required,
		"offpeakConsumption": validate.Required,
		"totalPrice":         validate.Required,
		"items":              validate.Optional,
	})
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	created, err := handler.service.Create(req.Context(), input)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	respond.Created(writer, created)
}

func (handler *Handler) update(writer http.ResponseWriter, req *http.Request) {
	body, err := request.DecodeBody(req)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	input, err := validate.Decode[UpdateInput](body, validate.Keys{
		"id":                 validate.Required,
		"year":               validate.Optional,
		"month":              validate.Optional,
		"peakConsumption":    validate.Optional,
		"offpeakConsumption": validate.Optional,
		"totalPrice":         validate.Optional,
		"items":              validate.Optional,
	})
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	updated, err := handler.service.Update(req.Context(), input)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	respond.OK(writer, updated)
}

func (handler *Handler) delete(writer http.ResponseWriter, req *http.Request) {
	body, err := request.DecodeBody(req)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	sanitized, err := validate.Validate(body, validate.Keys{
		"id": validate.Required,
	})
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	if err := handler.service.Delete(req.Context(), sanitized["id"].(string)); err != nil {
		respond.Error(writer, req, err)
		return
	}

	respond.NoContent(writer)
}
