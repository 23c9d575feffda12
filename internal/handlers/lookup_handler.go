package handlers

import (
	"jobportal_backend/internal/services"
	"jobportal_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ParentResolver находит id родителя по slug (province для city)
type ParentResolver func(db *gorm.DB, slug string) (string, error)

type parentRoute struct {
	route   string
	column  string
	resolve ParentResolver
}

// LookupHandler - одинаковый CRUD для всех справочников.
// Маршруты: addX, fetchAllXs, fetchX/:slug, updateX/:id, deleteX/:id.
type LookupHandler[T any, P services.LookupEntity[T]] struct {
	*BaseHandler
	service  services.LookupService[T, P]
	path     string
	singular string
	plural   string
	parents  []parentRoute
}

func NewLookupHandler[T any, P services.LookupEntity[T]](
	base *BaseHandler,
	service services.LookupService[T, P],
	path, singular, plural string,
) *LookupHandler[T, P] {
	return &LookupHandler[T, P]{
		BaseHandler: base,
		service:     service,
		path:        path,
		singular:    singular,
		plural:      plural,
	}
}

// WithParent добавляет маршрут выборки по slug родителя
func (h *LookupHandler[T, P]) WithParent(route, column string, resolve ParentResolver) *LookupHandler[T, P] {
	h.parents = append(h.parents, parentRoute{route: route, column: column, resolve: resolve})
	return h
}

func (h *LookupHandler[T, P]) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/" + h.path)
	{
		group.GET("/fetchAll"+h.plural, h.List)
		group.GET("/fetch"+h.singular+"/:slug", h.GetBySlug)
		for _, p := range h.parents {
			group.GET("/"+p.route+"/:slug", h.listByParent(p))
		}
	}

	admin := group.Group("", h.AdminOnly()...)
	{
		admin.POST("/add"+h.singular, h.Create)
		admin.PUT("/update"+h.singular+"/:id", h.Update)
		admin.DELETE("/delete"+h.singular+"/:id", h.Delete)
	}
}

func (h *LookupHandler[T, P]) Create(c *gin.Context) {
	var req dto.LookupRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	entity, err := h.service.Create(h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	RespondCreated(c, h.singular+" created", entity)
}

func (h *LookupHandler[T, P]) List(c *gin.Context) {
	var query dto.ListQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	page, err := h.service.List(h.GetDB(c), &query, nil)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	RespondPage(c, page)
}

func (h *LookupHandler[T, P]) GetBySlug(c *gin.Context) {
	entity, err := h.service.GetBySlug(h.GetDB(c), c.Param("slug"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	RespondSuccess(c, entity)
}

func (h *LookupHandler[T, P]) Update(c *gin.Context) {
	var req dto.LookupRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	entity, err := h.service.Update(h.GetDB(c), c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	RespondSuccess(c, entity)
}

func (h *LookupHandler[T, P]) Delete(c *gin.Context) {
	if err := h.service.Delete(h.GetDB(c), c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	RespondMessage(c, h.singular+" deleted")
}

func (h *LookupHandler[T, P]) listByParent(p parentRoute) gin.HandlerFunc {
	return func(c *gin.Context) {
		var query dto.ListQuery
		if !h.BindAndValidate_Query(c, &query) {
			return
		}

		db := h.GetDB(c)
		parentID, err := p.resolve(db, c.Param("slug"))
		if err != nil {
			h.HandleServiceError(c, err)
			return
		}

		page, err := h.service.List(db, &query, map[string]interface{}{p.column: parentID})
		if err != nil {
			h.HandleServiceError(c, err)
			return
		}
		RespondPage(c, page)
	}
}
