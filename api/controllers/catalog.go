package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rafidahmed/tinbari-backend/api/responses"
	"github.com/rafidahmed/tinbari-backend/api/validators"
	catalogsvc "github.com/rafidahmed/tinbari-backend/internal/catalog"
	"github.com/rafidahmed/tinbari-backend/pkg/db/models"
	"github.com/rafidahmed/tinbari-backend/pkg/enums"
	pkgerrors "github.com/rafidahmed/tinbari-backend/pkg/errors"
	"github.com/rafidahmed/tinbari-backend/pkg/logger"
)

type createGroupRequest struct {
	ProductType     string            `json:"product_type" validate:"required"`
	Brand           string            `json:"brand" validate:"required"`
	Color           string            `json:"color,omitempty"`
	Thickness       string            `json:"thickness,omitempty"`
	CustomValues    map[string]string `json:"custom_values,omitempty"`
	CalculationMode string            `json:"calculation_mode" validate:"required"`
}

func CreateProductGroup(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createGroupRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		group, err := svc.CreateGroup(r.Context(), catalogsvc.CreateGroupInput{
			ProductType:     validators.SanitizeString(payload.ProductType, 120),
			Brand:           validators.SanitizeString(payload.Brand, 120),
			Color:           validators.SanitizeString(payload.Color, 120),
			Thickness:       validators.SanitizeString(payload.Thickness, 120),
			CustomValues:    payload.CustomValues,
			CalculationMode: enums.CalculationMode(payload.CalculationMode),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, group)
	}
}

func ListProductGroups(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groups, err := svc.ListGroups(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, groups)
	}
}

func GetProductGroup(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "groupId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		group, err := svc.GetGroup(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, group)
	}
}

type updateGroupRequest struct {
	ProductType  *string           `json:"product_type,omitempty"`
	Brand        *string           `json:"brand,omitempty"`
	Color        *string           `json:"color,omitempty"`
	Thickness    *string           `json:"thickness,omitempty"`
	CustomValues map[string]string `json:"custom_values,omitempty"`
}

func UpdateProductGroup(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "groupId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateGroupRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		group, err := svc.UpdateGroup(r.Context(), id, catalogsvc.UpdateGroupInput{
			ProductType:  payload.ProductType,
			Brand:        payload.Brand,
			Color:        payload.Color,
			Thickness:    payload.Thickness,
			CustomValues: payload.CustomValues,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, group)
	}
}

func DeleteProductGroup(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "groupId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteGroup(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type variantPriceRequest struct {
	SellingPrice int `json:"selling_price" validate:"min=0"`
}

func SetVariantSellingPrice(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID, err := pathUUID(r, "groupId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		variantID, err := pathUUID(r, "variantId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload variantPriceRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		variant, err := svc.SetVariantSellingPrice(r.Context(), groupID, variantID, payload.SellingPrice)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, variant)
	}
}

func DeleteVariant(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID, err := pathUUID(r, "groupId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		variantID, err := pathUUID(r, "variantId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteVariant(r.Context(), groupID, variantID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func GetStoreSettings(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		settings, err := svc.GetSettings(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, settings)
	}
}

type updateSettingsRequest struct {
	Brands       []string                `json:"brands,omitempty"`
	Colors       []string                `json:"colors,omitempty"`
	Thicknesses  []string                `json:"thicknesses,omitempty"`
	ProductTypes []string                `json:"product_types,omitempty"`
	CustomFields []models.CustomFieldDef `json:"custom_fields,omitempty"`
}

func UpdateStoreSettings(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload updateSettingsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		settings, err := svc.UpdateSettings(r.Context(), catalogsvc.UpdateSettingsInput{
			Brands:       payload.Brands,
			Colors:       payload.Colors,
			Thicknesses:  payload.Thicknesses,
			ProductTypes: payload.ProductTypes,
			CustomFields: payload.CustomFields,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, settings)
	}
}

func pathUUID(r *http.Request, key string) (uuid.UUID, error) {
	raw := chi.URLParam(r, key)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid id").WithDetails(map[string]any{"field": key})
	}
	return id, nil
}
