package handler

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionSetHandler_Lifecycle(t *testing.T) {
	s := newTestServer(t, 5)
	productID := s.createProduct("Shirt", "20.00")

	rec := s.do(http.MethodPost, "/products/"+productID+"/option-sets", map[string]interface{}{"name": "Size"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodPost, "/products/"+productID+"/option-sets", map[string]interface{}{
		"name": "Size",
		"options": []map[string]interface{}{
			{"name": "Small", "value": "S"},
			{"name": "Large", "value": "L", "additionalPrice": 250, "displayOrder": 1},
		},
	}, asAdmin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var set struct {
		ID         string `json:"id"`
		IsRequired bool   `json:"isRequired"`
		Options    []struct {
			ID              string `json:"id"`
			AdditionalPrice int    `json:"additionalPrice"`
		} `json:"options"`
	}
	decodeData(t, rec, &set)
	assert.True(t, set.IsRequired)
	require.Len(t, set.Options, 2)
	assert.Equal(t, 250, set.Options[1].AdditionalPrice)

	rec = s.do(http.MethodGet, "/option-sets/"+set.ID, nil, asAdmin)
	require.Equal(t, http.StatusOK, rec.Code)
	var got map[string]interface{}
	decodeData(t, rec, &got)
	assert.Equal(t, "Shirt", got["productName"])

	rec = s.do(http.MethodPut, "/option-sets/"+set.ID, map[string]interface{}{"isActive": false}, asAdmin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var sets []map[string]interface{}
	rec = s.do(http.MethodGet, "/products/"+productID+"/option-sets?active_only=true", nil, asAdmin)
	decodeData(t, rec, &sets)
	assert.Empty(t, sets)
	rec = s.do(http.MethodGet, "/products/"+productID+"/option-sets", nil, asAdmin)
	decodeData(t, rec, &sets)
	assert.Len(t, sets, 1)

	rec = s.do(http.MethodPost, "/option-sets/"+set.ID+"/options", map[string]interface{}{"name": "Medium", "value": "M"}, asAdmin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var opt struct {
		ID string `json:"id"`
	}
	decodeData(t, rec, &opt)

	rec = s.do(http.MethodPut, "/options/"+opt.ID, map[string]interface{}{"isDefault": true}, asAdmin)
	require.Equal(t, http.StatusOK, rec.Code)
	var updated map[string]interface{}
	decodeData(t, rec, &updated)
	assert.Equal(t, true, updated["isDefault"])
	assert.Equal(t, "Medium", updated["name"])

	var options []map[string]interface{}
	rec = s.do(http.MethodGet, "/option-sets/"+set.ID+"/options", nil, asAdmin)
	decodeData(t, rec, &options)
	assert.Len(t, options, 3)

	rec = s.do(http.MethodDelete, "/options/"+opt.ID, nil, asAdmin)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(http.MethodGet, "/options/"+opt.ID, nil, asAdmin)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "OPTION_NOT_FOUND", decode(t, rec).Error.Code)

	rec = s.do(http.MethodDelete, "/option-sets/"+set.ID, nil, asAdmin)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(http.MethodGet, "/options/"+set.Options[0].ID, nil, asAdmin)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = s.do(http.MethodGet, "/option-sets/"+set.ID, nil, asAdmin)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "OPTION_SET_NOT_FOUND", decode(t, rec).Error.Code)
}

func TestOptionSetHandler_Errors(t *testing.T) {
	s := newTestServer(t, 5)

	rec := s.do(http.MethodPost, "/products/"+uuid.NewString()+"/option-sets", map[string]interface{}{"name": "Size"}, asAdmin)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "PRODUCT_NOT_FOUND", decode(t, rec).Error.Code)

	rec = s.do(http.MethodPost, "/products/x/option-sets", map[string]interface{}{"name": "Size"}, asAdmin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	productID := s.createProduct("Shirt", "20.00")
	rec = s.do(http.MethodPost, "/products/"+productID+"/option-sets", map[string]interface{}{"description": "no name"}, asAdmin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/option-sets/"+uuid.NewString()+"/options", map[string]interface{}{"name": "M", "value": "M"}, asAdmin)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "OPTION_SET_NOT_FOUND", decode(t, rec).Error.Code)
}
