package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/chicommerce/catalog-api/internal/utils"
)

// respondError maps domain errors onto the response envelope. Anything not
// recognised is logged and reported as INTERNAL_ERROR with fallback as message.
func respondError(c *gin.Context, err error, fallback string) {
	var (
		notFound   *utils.NotFoundError
		mismatch   *utils.ZoneMismatchError
		inUse      *utils.ProductInUseError
		definition *utils.DefinitionError
	)

	switch {
	case errors.As(err, &notFound):
		utils.Error(c, http.StatusNotFound, notFoundCode(notFound.Entity), capitalize(notFound.Error()))
	case errors.Is(err, utils.ErrNotFound):
		utils.Error(c, http.StatusNotFound, "NOT_FOUND", "Resource not found")
	case errors.As(err, &mismatch):
		utils.ErrorWithDetails(c, http.StatusUnprocessableEntity, utils.ErrZoneMismatch.Error(), mismatch.Error(), gin.H{
			"missing": nonNil(mismatch.Missing),
			"extra":   nonNil(mismatch.Extra),
		})
	case errors.As(err, &inUse):
		utils.ErrorWithDetails(c, http.StatusConflict, utils.ErrProductInUse.Error(), inUse.Error(), gin.H{
			"cart_item_count": inUse.Count,
		})
	case errors.As(err, &definition):
		utils.Error(c, http.StatusUnprocessableEntity, utils.ErrInvalidDefinition.Error(), definition.Error())
	case errors.Is(err, utils.ErrDuplicateVersion):
		utils.Error(c, http.StatusConflict, utils.ErrDuplicateVersion.Error(), stripCode(err, utils.ErrDuplicateVersion))
	case errors.Is(err, utils.ErrLastDefaultRemoval):
		utils.Error(c, http.StatusConflict, utils.ErrLastDefaultRemoval.Error(), stripCode(err, utils.ErrLastDefaultRemoval))
	case errors.Is(err, utils.ErrLastTemplateRemoval):
		utils.Error(c, http.StatusConflict, utils.ErrLastTemplateRemoval.Error(), stripCode(err, utils.ErrLastTemplateRemoval))
	case errors.Is(err, utils.ErrInvalidDefinition):
		utils.Error(c, http.StatusUnprocessableEntity, utils.ErrInvalidDefinition.Error(), stripCode(err, utils.ErrInvalidDefinition))
	case errors.Is(err, utils.ErrInvalidQuantity):
		utils.Error(c, http.StatusUnprocessableEntity, utils.ErrInvalidQuantity.Error(), stripCode(err, utils.ErrInvalidQuantity))
	case errors.Is(err, utils.ErrInvalidPrice):
		utils.Error(c, http.StatusUnprocessableEntity, utils.ErrInvalidPrice.Error(), stripCode(err, utils.ErrInvalidPrice))
	case errors.Is(err, utils.ErrInvalidRequest):
		utils.Error(c, http.StatusBadRequest, utils.ErrInvalidRequest.Error(), stripCode(err, utils.ErrInvalidRequest))
	default:
		log.Error().Err(err).Str("request_id", c.GetString("request_id")).Str("path", c.FullPath()).Msg(fallback)
		utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", fallback)
	}
}

// bindError reports a request body that could not be bound.
func bindError(c *gin.Context, err error) {
	log.Debug().Err(err).Str("request_id", c.GetString("request_id")).Msg("request binding failed")
	utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
}

// uuidParam parses a path parameter, writing 400 INVALID_ID on failure.
func uuidParam(c *gin.Context, name, entity string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid "+entity+" ID")
		return uuid.Nil, false
	}
	return id, true
}

func notFoundCode(entity string) string {
	return strings.ToUpper(strings.ReplaceAll(entity, " ", "_")) + "_NOT_FOUND"
}

// stripCode drops the "CODE: " prefix that wrapped sentinels carry.
func stripCode(err, sentinel error) string {
	msg := err.Error()
	if rest, ok := strings.CutPrefix(msg, sentinel.Error()+": "); ok {
		return rest
	}
	if msg == sentinel.Error() {
		return strings.ReplaceAll(strings.ToLower(msg), "_", " ")
	}
	return msg
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
