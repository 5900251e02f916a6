package adminapi

import (
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tropadobruxobr/Produtos-Tropa-do-Bruxo/internal/domain"
	"github.com/tropadobruxobr/Produtos-Tropa-do-Bruxo/internal/webserver"
	"github.com/tropadobruxobr/Produtos-Tropa-do-Bruxo/pkg/common"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9-]{2,64}$`)

type resellerPayload struct {
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Whatsapp string `json:"whatsapp"`
	PixKey   string `json:"pix_key"`
	Active   *bool  `json:"active"`
}

func registerResellerRoutes() {
	webserver.ApiGET("/resellers", listResellers)
	webserver.ApiPOST("/resellers", createReseller)
	webserver.ApiPUT("/resellers/:id", updateReseller)
	webserver.ApiPOST("/resellers/:id/toggle", toggleReseller)
	webserver.ApiDELETE("/resellers/:id", deleteReseller)
}

func listResellers(c echo.Context) error {
	page, pageSize := parsePagination(c)

	db := GetDB(c).Model(&domain.Reseller{})
	if q := strings.TrimSpace(c.QueryParam("q")); q != "" {
		db = db.Where("LOWER(name) LIKE ? OR slug LIKE ?",
			"%"+strings.ToLower(q)+"%", "%"+strings.ToLower(q)+"%")
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query resellers", err.Error())
	}

	var rows []domain.Reseller
	if err := db.Order("name ASC").Offset((page-1)*pageSize).Limit(pageSize).Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query resellers", err.Error())
	}
	return paged(c, rows, total, page, pageSize)
}

func createReseller(c echo.Context) error {
	var payload resellerPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse reseller", err.Error())
	}
	payload.Name = strings.TrimSpace(payload.Name)
	payload.Slug = strings.ToLower(strings.TrimSpace(payload.Slug))
	if payload.Name == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Name is required", nil)
	}
	if !slugPattern.MatchString(payload.Slug) {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Slug must be 2-64 chars of a-z 0-9 -", nil)
	}

	now := time.Now()
	r := domain.Reseller{
		ID:        common.UUIDint64(),
		Name:      payload.Name,
		Slug:      payload.Slug,
		Whatsapp:  strings.TrimSpace(payload.Whatsapp),
		PixKey:    strings.TrimSpace(payload.PixKey),
		Active:    payload.Active == nil || *payload.Active,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := GetDB(c).Create(&r).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create reseller", err.Error())
	}
	return ok(c, r)
}

func updateReseller(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid reseller ID", nil)
	}
	var r domain.Reseller
	if err := GetDB(c).Where("id = ?", id).First(&r).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Reseller not found", nil)
	}

	var payload resellerPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse reseller", err.Error())
	}
	payload.Name = strings.TrimSpace(payload.Name)
	payload.Slug = strings.ToLower(strings.TrimSpace(payload.Slug))
	if payload.Name == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Name is required", nil)
	}
	if !slugPattern.MatchString(payload.Slug) {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Slug must be 2-64 chars of a-z 0-9 -", nil)
	}

	r.Name = payload.Name
	r.Slug = payload.Slug
	r.Whatsapp = strings.TrimSpace(payload.Whatsapp)
	r.PixKey = strings.TrimSpace(payload.PixKey)
	if payload.Active != nil {
		r.Active = *payload.Active
	}
	r.UpdatedAt = time.Now()

	if err := GetDB(c).Save(&r).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update reseller", err.Error())
	}
	return ok(c, r)
}

func toggleReseller(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid reseller ID", nil)
	}
	var r domain.Reseller
	if err := GetDB(c).Where("id = ?", id).First(&r).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Reseller not found", nil)
	}
	r.Active = !r.Active
	r.UpdatedAt = time.Now()
	if err := GetDB(c).Save(&r).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update reseller", err.Error())
	}
	return ok(c, r)
}

func deleteReseller(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid reseller ID", nil)
	}
	if err := GetDB(c).Where("id = ?", id).Delete(&domain.Reseller{}).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete reseller", err.Error())
	}
	return ok(c, map[string]interface{}{"id": id})
}
