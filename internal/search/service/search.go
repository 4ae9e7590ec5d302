package service

import (
	"github.com/gin-gonic/gin"
	apperrors "github.com/lk2023060901/forum-search-backend/internal/pkg/errors"
	"github.com/lk2023060901/forum-search-backend/internal/pkg/logger"
	"github.com/lk2023060901/forum-search-backend/internal/pkg/pagination"
	"github.com/lk2023060901/forum-search-backend/internal/pkg/response"
	"github.com/lk2023060901/forum-search-backend/internal/search/biz"
	"github.com/lk2023060901/forum-search-backend/internal/search/sanitizer"
	"github.com/lk2023060901/forum-search-backend/internal/search/types"
)

// SearchService 通用表/列搜索 HTTP 服务
type SearchService struct {
	uc     *biz.SearchUseCase
	logger *logger.Logger
}

// NewSearchService 创建通用搜索服务
func NewSearchService(uc *biz.SearchUseCase, logger *logger.Logger) *SearchService {
	return &SearchService{
		uc:     uc,
		logger: logger,
	}
}

// Search 自定义搜索 POST /custom-search
func (s *SearchService) Search(c *gin.Context) {
	var body CustomSearchBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	raw := body.raw()
	if raw.Limit == 0 {
		raw.Limit = sanitizer.DefaultLimit
	}

	result, err := s.uc.Search(c.Request.Context(), raw)
	if err != nil {
		handleError(c, s.logger, err, apperrors.ErrSearchBackend)
		return
	}

	response.Success(c, paged(result, raw.Offset, raw.Limit))
}

// Companies 按股票代码搜索 GET /custom-search/companies?ticker&limit&offset
func (s *SearchService) Companies(c *gin.Context) {
	s.searchPreset(c, biz.PresetCompanies, "ticker")
}

// Users 按用户名搜索 GET /custom-search/users?username&limit&offset
func (s *SearchService) Users(c *gin.Context) {
	s.searchPreset(c, biz.PresetUsers, "username")
}

// Posts 按帖子内容搜索 GET /custom-search/posts?content&limit&offset
func (s *SearchService) Posts(c *gin.Context) {
	s.searchPreset(c, biz.PresetPosts, "content")
}

func (s *SearchService) searchPreset(c *gin.Context, alias, param string) {
	limit := queryInt(c, "limit")
	offset := queryInt(c, "offset")

	result, err := s.uc.SearchByField(c.Request.Context(), alias, c.Query(param), limit, offset)
	if err != nil {
		handleError(c, s.logger, err, apperrors.ErrSearchBackend)
		return
	}

	if limit == 0 {
		limit = sanitizer.DefaultLimit
	}
	response.Success(c, paged(result, offset, limit))
}

// Suggestions 列值自动补全 GET /custom-search/suggestions?query&table&column&limit
func (s *SearchService) Suggestions(c *gin.Context) {
	values := s.uc.GetSuggestions(c.Request.Context(), types.SuggestionRequest{
		Query:  c.Query("query"),
		Table:  c.Query("table"),
		Column: c.Query("column"),
		Limit:  queryInt(c, "limit"),
	})
	response.Success(c, values)
}

// Presets 预设列表 GET /custom-search/presets
func (s *SearchService) Presets(c *gin.Context) {
	response.Success(c, s.uc.Presets())
}

// AdvancedSearch 多查询合并搜索 POST /custom-search/advanced
func (s *SearchService) AdvancedSearch(c *gin.Context) {
	var body AdvancedSearchBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	req := body.request()
	if req.Limit == 0 {
		req.Limit = sanitizer.DefaultLimit
	}

	result, err := s.uc.AdvancedSearch(c.Request.Context(), req)
	if err != nil {
		handleError(c, s.logger, err, apperrors.ErrSearchBackend)
		return
	}

	response.Success(c, &CombinedResponse{
		CombinedResult: result,
		Pagination:     pageInfo(req.Offset, result.TotalCount, req.Limit),
	})
}

// RegisterRoutes 注册通用搜索路由
func (s *SearchService) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", s.Search)
	rg.GET("/companies", s.Companies)
	rg.GET("/users", s.Users)
	rg.GET("/posts", s.Posts)
	rg.GET("/suggestions", s.Suggestions)
	rg.GET("/presets", s.Presets)
	rg.POST("/advanced", s.AdvancedSearch)
}

func paged(result *types.SearchResponse, offset, limit int) *types.PagedResponse {
	return &types.PagedResponse{
		SearchResponse: result,
		Pagination:     pageInfo(offset, result.TotalCount, limit),
	}
}

// pageInfo 按实际生效的 limit/offset 计算分页
func pageInfo(offset int, total int64, limit int) pagination.PageInfo {
	return pagination.FromOffset(max(offset, 0), int(total), sanitizer.ClampLimit(limit))
}
