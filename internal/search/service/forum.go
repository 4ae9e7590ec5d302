package service

import (
	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/forum-search-backend/internal/auth/middleware"
	apperrors "github.com/lk2023060901/forum-search-backend/internal/pkg/errors"
	"github.com/lk2023060901/forum-search-backend/internal/pkg/logger"
	"github.com/lk2023060901/forum-search-backend/internal/pkg/response"
	"github.com/lk2023060901/forum-search-backend/internal/search/biz"
	"github.com/lk2023060901/forum-search-backend/internal/search/types"
)

// ForumSearchService 论坛搜索 HTTP 服务
type ForumSearchService struct {
	uc     *biz.ForumSearchUseCase
	logger *logger.Logger
}

// NewForumSearchService 创建论坛搜索服务
func NewForumSearchService(uc *biz.ForumSearchUseCase, logger *logger.Logger) *ForumSearchService {
	return &ForumSearchService{
		uc:     uc,
		logger: logger,
	}
}

// Search 论坛搜索 GET /search?query&searchIn&page&itemsPerPage
func (s *ForumSearchService) Search(c *gin.Context) {
	filters := types.SearchFilters{
		Query:        c.Query("query"),
		SearchIn:     types.Scope(c.Query("searchIn")),
		Page:         queryInt(c, "page"),
		ItemsPerPage: queryInt(c, "itemsPerPage"),
		UID:          middleware.GetUID(c),
	}

	result, err := s.uc.Search(c.Request.Context(), filters)
	if err != nil {
		handleError(c, s.logger, err, apperrors.ErrSearchBackend)
		return
	}

	response.Success(c, result)
}

// AdvancedSearch 高级论坛搜索 POST /search/advanced
func (s *ForumSearchService) AdvancedSearch(c *gin.Context) {
	var body ForumSearchBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := s.uc.AdvancedSearch(c.Request.Context(), body.filters(middleware.GetUID(c)))
	if err != nil {
		handleError(c, s.logger, err, apperrors.ErrSearchBackend)
		return
	}

	response.Success(c, result)
}

// Suggestions 搜索建议 GET /search/suggestions?q
func (s *ForumSearchService) Suggestions(c *gin.Context) {
	response.Success(c, s.uc.Suggestions(c.Request.Context(), c.Query("q"), middleware.GetUID(c)))
}

// GetHistory 获取搜索历史 GET /search/history?limit
func (s *ForumSearchService) GetHistory(c *gin.Context) {
	history, err := s.uc.GetSearchHistory(c.Request.Context(), middleware.GetUID(c), queryInt(c, "limit"))
	if err != nil {
		handleError(c, s.logger, err, apperrors.ErrSearchHistory)
		return
	}

	response.Success(c, history)
}

// ClearHistory 清空搜索历史 DELETE /search/history
func (s *ForumSearchService) ClearHistory(c *gin.Context) {
	if err := s.uc.ClearSearchHistory(c.Request.Context(), middleware.GetUID(c)); err != nil {
		handleError(c, s.logger, err, apperrors.ErrSearchHistory)
		return
	}

	response.SuccessWithMessage(c, "search history cleared", nil)
}

// Popular 热门搜索 GET /search/popular?limit
func (s *ForumSearchService) Popular(c *gin.Context) {
	popular, err := s.uc.PopularSearches(c.Request.Context(), queryInt(c, "limit"))
	if err != nil {
		handleError(c, s.logger, err, apperrors.ErrSearchHistory)
		return
	}

	response.Success(c, popular)
}

// Options 搜索选项 GET /search/options
func (s *ForumSearchService) Options(c *gin.Context) {
	options, err := s.uc.Options(c.Request.Context(), middleware.GetUID(c))
	if err != nil {
		handleError(c, s.logger, err, apperrors.ErrSearchBackend)
		return
	}

	response.Success(c, options)
}

// RegisterRoutes 注册论坛搜索路由
func (s *ForumSearchService) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", s.Search)
	rg.POST("/advanced", s.AdvancedSearch)
	rg.GET("/suggestions", s.Suggestions)
	rg.GET("/history", s.GetHistory)
	rg.DELETE("/history", s.ClearHistory)
	rg.GET("/popular", s.Popular)
	rg.GET("/options", s.Options)
}
