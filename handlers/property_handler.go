package handlers

import (
	"net/http"

	"github.com/AilenFranco43/Booked/casbinAuthorization"
	"github.com/AilenFranco43/Booked/domain"
	"github.com/AilenFranco43/Booked/errors"
	application "github.com/AilenFranco43/Booked/service"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type PropertyHandler struct {
	service  *application.PropertyService
	tracer   trace.Tracer
	logger   *logrus.Logger
	validate *validator.Validate
}

func NewPropertyHandler(service *application.PropertyService, tracer trace.Tracer, logger *logrus.Logger) *PropertyHandler {
	return &PropertyHandler{
		service:  service,
		tracer:   tracer,
		logger:   logger,
		validate: validator.New(),
	}
}

func (handler *PropertyHandler) Init(router *mux.Router) {
	router.HandleFunc("/property", handler.GetAll).Methods(http.MethodGet)
	router.HandleFunc("/property/cities/unique", handler.GetUniqueCities).Methods(http.MethodGet)
	router.HandleFunc("/property/user/properties", handler.GetByOwner).Methods(http.MethodGet)
	router.HandleFunc("/property/register", handler.Create).Methods(http.MethodPost)
	router.HandleFunc("/property/delete/{id}", handler.Delete).Methods(http.MethodDelete)
	router.HandleFunc("/property/{id}", handler.Get).Methods(http.MethodGet)
	router.HandleFunc("/property/{id}", handler.Update).Methods(http.MethodPatch)
}

type PropertyRequest struct {
	Title       string              `json:"title" validate:"required"`
	Description string              `json:"description"`
	Price       float64             `json:"price" validate:"gt=0"`
	MaxPeople   int                 `json:"max_people" validate:"gt=0"`
	Tags        []string            `json:"tags"`
	Address     string              `json:"address" validate:"required"`
	Coordinates *domain.Coordinates `json:"coordinates"`
	Photos      []string            `json:"photos"`
}

func (handler *PropertyHandler) GetAll(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "PropertyHandler.GetAll")
	defer span.End()

	filter, err := parsePropertyFilter(req.URL.Query(), handler.validate)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeError(writer, handler.logger, err)
		return
	}

	properties, err := handler.service.List(ctx, filter)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeError(writer, handler.logger, err)
		return
	}
	jsonResponse(properties, writer, http.StatusOK)
}

func (handler *PropertyHandler) Get(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "PropertyHandler.Get")
	defer span.End()

	id, err := parseObjectID(mux.Vars(req)["id"])
	if err != nil {
		writeError(writer, handler.logger, err)
		return
	}

	property, err := handler.service.FindByID(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeError(writer, handler.logger, err)
		return
	}
	jsonResponse(property, writer, http.StatusOK)
}

func (handler *PropertyHandler) GetByOwner(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "PropertyHandler.GetByOwner")
	defer span.End()

	identity, ok := casbinAuthorization.IdentityFrom(ctx)
	if !ok {
		writeUnauthorized(writer)
		return
	}
	ownerID, err := parseObjectID(identity.UserID)
	if err != nil {
		writeError(writer, handler.logger, err)
		return
	}

	properties, err := handler.service.FindAllByOwner(ctx, ownerID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeError(writer, handler.logger, err)
		return
	}
	jsonResponse(properties, writer, http.StatusOK)
}

func (handler *PropertyHandler) GetUniqueCities(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "PropertyHandler.GetUniqueCities")
	defer span.End()

	cities, err := handler.service.UniqueCities(ctx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeError(writer, handler.logger, err)
		return
	}
	jsonResponse(cities, writer, http.StatusOK)
}

func (handler *PropertyHandler) Create(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "PropertyHandler.Create")
	defer span.End()

	identity, ok := casbinAuthorization.IdentityFrom(ctx)
	if !ok {
		writeUnauthorized(writer)
		return
	}
	ownerID, err := parseObjectID(identity.UserID)
	if err != nil {
		writeError(writer, handler.logger, err)
		return
	}

	var request PropertyRequest
	if err := decodeBody(req, &request); err != nil {
		writeError(writer, handler.logger, err)
		return
	}
	if err := handler.validate.Struct(request); err != nil {
		writeError(writer, handler.logger, errors.Validation(err.Error()))
		return
	}

	property := &domain.Property{
		Title:       request.Title,
		Description: request.Description,
		Price:       request.Price,
		MaxPeople:   request.MaxPeople,
		Tags:        request.Tags,
		Address:     request.Address,
		Coordinates: request.Coordinates,
		Photos:      request.Photos,
	}
	if property.Tags == nil {
		property.Tags = []string{}
	}
	if property.Photos == nil {
		property.Photos = []string{}
	}

	created, err := handler.service.Create(ctx, property, ownerID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeError(writer, handler.logger, err)
		return
	}
	jsonResponse(created, writer, http.StatusCreated)
}

func (handler *PropertyHandler) Update(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "PropertyHandler.Update")
	defer span.End()

	id, err := parseObjectID(mux.Vars(req)["id"])
	if err != nil {
		writeError(writer, handler.logger, err)
		return
	}

	var patch domain.PropertyPatch
	if err := decodePatch(req, &patch, "id", "_id", "userId", "averageRating", "createdAt", "updatedAt"); err != nil {
		writeError(writer, handler.logger, err)
		return
	}
	if err := handler.validate.Struct(patch); err != nil {
		writeError(writer, handler.logger, errors.Validation(err.Error()))
		return
	}

	updated, err := handler.service.Update(ctx, id, &patch)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeError(writer, handler.logger, err)
		return
	}
	jsonResponse(updated, writer, http.StatusOK)
}

// Delete answers 200 with a null body when the property did not exist.
func (handler *PropertyHandler) Delete(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "PropertyHandler.Delete")
	defer span.End()

	id, err := parseObjectID(mux.Vars(req)["id"])
	if err != nil {
		writeError(writer, handler.logger, err)
		return
	}

	deleted, err := handler.service.Remove(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeError(writer, handler.logger, err)
		return
	}
	jsonResponse(deleted, writer, http.StatusOK)
}
