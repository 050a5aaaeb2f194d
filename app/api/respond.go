// Package api holds the request and response plumbing shared by the catalog
// handlers.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/aromadb/aroma-catalog/app/catalog"
	"github.com/aromadb/aroma-catalog/composition"
	"github.com/aromadb/aroma-catalog/logging"
	"github.com/aromadb/aroma-catalog/models"
)

const (
	CodeNotFound          = "not_found"
	CodeReferenceNotFound = "reference_not_found"
	CodeInsufficientStock = "insufficient_stock"
	CodeDuplicateName     = "duplicate_name"
	CodeReferenceInUse    = "reference_in_use"
	CodeInvalidRequest    = "invalid_request"
	CodeUnexpected        = "unexpected_failure"
)

const (
	defaultLimit = 100
	maxLimit     = 100
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error      string   `json:"error"`
	Code       string   `json:"code"`
	MissingIDs []uint   `json:"missing_ids,omitempty"`
	Ingredient string   `json:"ingredient,omitempty"`
	Requested  *float64 `json:"requested,omitempty"`
	Available  *float64 `json:"available,omitempty"`
}

// ErrBadRequest marks malformed paths, query strings and bodies.
var ErrBadRequest = errors.New("bad request")

func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.L().Warn("encode response", zap.Error(err))
	}
}

// WriteError maps err onto a status code and a JSON error body. Anything it
// does not recognise is logged and answered with a 500.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := describe(err)
	if status == http.StatusInternalServerError {
		logging.FromContext(r.Context()).Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	WriteJSON(w, status, body)
}

func describe(err error) (int, ErrorResponse) {
	var (
		notFound   *composition.ReferenceNotFoundError
		stock      *composition.InsufficientStockError
		conversion *composition.ConversionError
		invalid    validator.ValidationErrors
	)

	switch {
	case errors.As(err, &notFound):
		status := http.StatusNotFound
		if notFound.Kind == composition.KindPackagingItem {
			status = http.StatusBadRequest
		}
		return status, ErrorResponse{Error: notFound.Error(), Code: CodeReferenceNotFound, MissingIDs: notFound.IDs}
	case errors.As(err, &stock):
		requested, available := stock.Requested.InexactFloat64(), stock.Available.InexactFloat64()
		return http.StatusBadRequest, ErrorResponse{
			Error:      stock.Error(),
			Code:       CodeInsufficientStock,
			Ingredient: stock.Ingredient,
			Requested:  &requested,
			Available:  &available,
		}
	case errors.As(err, &conversion):
		return http.StatusBadRequest, ErrorResponse{Error: conversion.Error(), Code: CodeInvalidRequest}
	case errors.As(err, &invalid):
		return http.StatusBadRequest, ErrorResponse{Error: validationMessage(invalid), Code: CodeInvalidRequest}
	case errors.Is(err, ErrBadRequest), errors.Is(err, catalog.ErrInvalidInput):
		return http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: CodeInvalidRequest}
	case errors.Is(err, models.ErrIngredientNotFound),
		errors.Is(err, models.ErrPackagingItemNotFound),
		errors.Is(err, models.ErrBundleNotFound),
		errors.Is(err, models.ErrRecipeNotFound):
		return http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: CodeNotFound}
	case errors.Is(err, models.ErrDuplicateName):
		return http.StatusConflict, ErrorResponse{Error: err.Error(), Code: CodeDuplicateName}
	case errors.Is(err, models.ErrReferenceInUse):
		return http.StatusConflict, ErrorResponse{Error: err.Error(), Code: CodeReferenceInUse}
	default:
		return http.StatusInternalServerError, ErrorResponse{Error: "an unexpected error occurred", Code: CodeUnexpected}
	}
}

func validationMessage(errs validator.ValidationErrors) string {
	if len(errs) == 0 {
		return "invalid request body"
	}
	fe := errs[0]
	switch fe.Tag() {
	case "required", "required_if":
		return fmt.Sprintf("%s is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "gt", "gte":
		return fmt.Sprintf("%s must be %s %s", fe.Field(), comparison(fe.Tag()), fe.Param())
	case "excluded_with", "required_without":
		return fmt.Sprintf("%s conflicts with %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

func comparison(tag string) string {
	if tag == "gt" {
		return "greater than"
	}
	return "at least"
}

// Pagination reads skip and limit. Limit defaults to 100 and is clamped to
// 1..100; a negative or malformed skip reads as 0.
func Pagination(r *http.Request) (offset, limit int) {
	limit = defaultLimit

	if sStr := r.URL.Query().Get("skip"); sStr != "" {
		if s, err := strconv.Atoi(sStr); err == nil && s >= 0 {
			offset = s
		}
	}

	if lStr := r.URL.Query().Get("limit"); lStr != "" {
		if l, err := strconv.Atoi(lStr); err == nil {
			switch {
			case l < 1:
				limit = 1
			case l > maxLimit:
				limit = maxLimit
			default:
				limit = l
			}
		}
	}
	return offset, limit
}

// ParseID reads the {id} path value.
func ParseID(r *http.Request) (uint, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseUint(raw, 10, 0)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: invalid id %q", ErrBadRequest, raw)
	}
	return uint(id), nil
}

// Message is the body of a successful delete.
type Message struct {
	Message string `json:"message"`
}
