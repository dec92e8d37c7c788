package handlers

import (
	"net/http"

	"github.com/AilenFranco43/Booked/domain"
	"github.com/AilenFranco43/Booked/errors"
	application "github.com/AilenFranco43/Booked/service"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type ReviewHandler struct {
	service  *application.ReviewService
	tracer   trace.Tracer
	logger   *logrus.Logger
	validate *validator.Validate
}

func NewReviewHandler(service *application.ReviewService, tracer trace.Tracer, logger *logrus.Logger) *ReviewHandler {
	return &ReviewHandler{
		service:  service,
		tracer:   tracer,
		logger:   logger,
		validate: validator.New(),
	}
}

func (handler *ReviewHandler) Init(router *mux.Router) {
	router.HandleFunc("/reviews/create", handler.Create).Methods(http.MethodPost)
	router.HandleFunc("/reviews/all", handler.GetAll).Methods(http.MethodGet)
	router.HandleFunc("/reviews/review/{id}", handler.Get).Methods(http.MethodGet)
	router.HandleFunc("/reviews/property/{propertyId}", handler.GetByProperty).Methods(http.MethodGet)
	router.HandleFunc("/reviews/update/{id}", handler.Update).Methods(http.MethodPatch)
	router.HandleFunc("/reviews/delete/{id}", handler.Delete).Methods(http.MethodDelete)
	router.HandleFunc("/reviews/migrate-data", handler.MigrateData).Methods(http.MethodPost)
}

type ReviewRequest struct {
	Property string   `json:"property" validate:"required"`
	Guest    string   `json:"guest" validate:"required"`
	Rating   *float64 `json:"rating" validate:"omitempty,min=1,max=5"`
	Comment  string   `json:"comment"`
}

type ReviewPatchRequest struct {
	Property *string  `mapstructure:"property"`
	Guest    *string  `mapstructure:"guest"`
	Rating   *float64 `mapstructure:"rating" validate:"omitempty,min=1,max=5"`
	Comment  *string  `mapstructure:"comment"`
}

func (request ReviewPatchRequest) toPatch() (*domain.ReviewPatch, error) {
	patch := &domain.ReviewPatch{Rating: request.Rating, Comment: request.Comment}
	if request.Property != nil {
		id, err := parseObjectID(*request.Property)
		if err != nil {
			return nil, err
		}
		patch.Property = &id
	}
	if request.Guest != nil {
		id, err := parseObjectID(*request.Guest)
		if err != nil {
			return nil, err
		}
		patch.Guest = &id
	}
	return patch, nil
}

func (handler *ReviewHandler) Create(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "ReviewHandler.Create")
	defer span.End()

	var request ReviewRequest
	if err := decodeBody(req, &request); err != nil {
		writeError(writer, handler.logger, err)
		return
	}
	if err := handler.validate.Struct(request); err != nil {
		writeError(writer, handler.logger, errors.Validation(err.Error()))
		return
	}

	var propertyID, guestID primitive.ObjectID
	var err error
	if propertyID, err = parseObjectID(request.Property); err != nil {
		writeError(writer, handler.logger, err)
		return
	}
	if guestID, err = parseObjectID(request.Guest); err != nil {
		writeError(writer, handler.logger, err)
		return
	}

	review, err := handler.service.Create(ctx, &domain.Review{
		Property: propertyID,
		Guest:    guestID,
		Rating:   request.Rating,
		Comment:  request.Comment,
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeError(writer, handler.logger, err)
		return
	}
	jsonResponse(review, writer, http.StatusCreated)
}

func (handler *ReviewHandler) GetAll(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "ReviewHandler.GetAll")
	defer span.End()

	reviews, err := handler.service.FindAll(ctx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeError(writer, handler.logger, err)
		return
	}
	jsonResponse(reviews, writer, http.StatusOK)
}

func (handler *ReviewHandler) Get(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "ReviewHandler.Get")
	defer span.End()

	id, err := parseObjectID(mux.Vars(req)["id"])
	if err != nil {
		writeError(writer, handler.logger, err)
		return
	}

	review, err := handler.service.FindOne(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeError(writer, handler.logger, err)
		return
	}
	jsonResponse(review, writer, http.StatusOK)
}

func (handler *ReviewHandler) GetByProperty(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "ReviewHandler.GetByProperty")
	defer span.End()

	propertyID, err := parseObjectID(mux.Vars(req)["propertyId"])
	if err != nil {
		writeError(writer, handler.logger, err)
		return
	}

	result, err := handler.service.FindByProperty(ctx, propertyID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeError(writer, handler.logger, err)
		return
	}
	jsonResponse(result, writer, http.StatusOK)
}

func (handler *ReviewHandler) Update(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "ReviewHandler.Update")
	defer span.End()

	id, err := parseObjectID(mux.Vars(req)["id"])
	if err != nil {
		writeError(writer, handler.logger, err)
		return
	}

	var request ReviewPatchRequest
	if err := decodePatch(req, &request, "id", "_id", "createdAt", "updatedAt"); err != nil {
		writeError(writer, handler.logger, err)
		return
	}
	if err := handler.validate.Struct(request); err != nil {
		writeError(writer, handler.logger, errors.Validation(err.Error()))
		return
	}
	patch, err := request.toPatch()
	if err != nil {
		writeError(writer, handler.logger, err)
		return
	}

	review, err := handler.service.Update(ctx, id, patch)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeError(writer, handler.logger, err)
		return
	}
	jsonResponse(review, writer, http.StatusOK)
}

func (handler *ReviewHandler) Delete(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "ReviewHandler.Delete")
	defer span.End()

	id, err := parseObjectID(mux.Vars(req)["id"])
	if err != nil {
		writeError(writer, handler.logger, err)
		return
	}

	review, err := handler.service.Remove(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeError(writer, handler.logger, err)
		return
	}
	jsonResponse(review, writer, http.StatusOK)
}

func (handler *ReviewHandler) MigrateData(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "ReviewHandler.MigrateData")
	defer span.End()

	result, err := handler.service.MigrateLegacyReferences(ctx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeError(writer, handler.logger, err)
		return
	}
	jsonResponse(result, writer, http.StatusOK)
}
