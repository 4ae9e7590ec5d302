package data

import (
	"context"

	"github.com/lk2023060901/forum-search-backend/internal/pkg/database"
	"github.com/lk2023060901/forum-search-backend/internal/search/biz"
	"github.com/lk2023060901/forum-search-backend/internal/search/types"
	"gorm.io/gorm"
)

// PostPO 帖子
type PostPO struct {
	PID       int64  `gorm:"column:pid;primarykey"`
	TID       int64  `gorm:"column:tid;not null;index"`
	UID       int64  `gorm:"column:uid;not null;index"`
	Content   string `gorm:"type:text"`
	Timestamp int64  `gorm:"not null;index"`
	Deleted   bool   `gorm:"not null;default:false"`
}

func (PostPO) TableName() string { return "posts" }

// TopicPO 主题
type TopicPO struct {
	TID     int64  `gorm:"column:tid;primarykey"`
	CID     int64  `gorm:"column:cid;not null;index"`
	UID     int64  `gorm:"column:uid;not null"`
	Title   string `gorm:"size:255;not null"`
	Tags    string `gorm:"size:512"` // 逗号分隔
	Deleted bool   `gorm:"not null;default:false"`
}

func (TopicPO) TableName() string { return "topics" }

// CategoryPO 分类
type CategoryPO struct {
	CID  int64  `gorm:"column:cid;primarykey"`
	Name string `gorm:"size:255;not null"`
}

func (CategoryPO) TableName() string { return "categories" }

// UserPO 用户
type UserPO struct {
	UID      int64  `gorm:"column:uid;primarykey"`
	Username string `gorm:"size:255;not null;index"`
}

func (UserPO) TableName() string { return "users" }

// BookmarkPO 书签
type BookmarkPO struct {
	UID       int64 `gorm:"column:uid;primarykey"`
	PID       int64 `gorm:"column:pid;primarykey"`
	Timestamp int64 `gorm:"not null"`
}

func (BookmarkPO) TableName() string { return "bookmarks" }

// Models 返回需要迁移的模型
func Models() []interface{} {
	return []interface{}{
		&SearchPrivilegePO{},
		&PostPO{},
		&TopicPO{},
		&CategoryPO{},
		&UserPO{},
		&BookmarkPO{},
	}
}

// scopeColumns 每个搜索范围匹配的列
var scopeColumns = map[types.Scope][]string{
	types.ScopeTitles:      {"t.title"},
	types.ScopePosts:       {"p.content"},
	types.ScopeTitlesPosts: {"t.title", "p.content"},
	types.ScopeUsers:       {"u.username"},
	types.ScopeCategories:  {"c.name"},
	types.ScopeTags:        {"t.tags"},
	types.ScopeBookmarks:   {"t.title", "p.content"},
}

type postRow struct {
	PID       int64  `gorm:"column:pid"`
	TID       int64  `gorm:"column:tid"`
	UID       int64  `gorm:"column:uid"`
	Title     string `gorm:"column:title"`
	Content   string `gorm:"column:content"`
	Username  string `gorm:"column:username"`
	Category  string `gorm:"column:category"`
	Timestamp int64  `gorm:"column:timestamp"`
}

// PostRepo 论坛帖子搜索实现
type PostRepo struct {
	db *gorm.DB
}

// NewPostRepo 创建帖子搜索仓储
func NewPostRepo(db *gorm.DB) *PostRepo {
	return &PostRepo{db: db}
}

var _ biz.PostSearcher = (*PostRepo)(nil)

// Search 按范围搜索帖子，最新的在前
func (r *PostRepo) Search(ctx context.Context, filters *types.SearchFilters) (*types.PostSearchResult, error) {
	columns, ok := scopeColumns[filters.SearchIn]
	if !ok {
		columns = scopeColumns[types.ScopeTitlesPosts]
	}

	query := r.db.WithContext(ctx).
		Table("posts AS p").
		Joins("JOIN topics AS t ON t.tid = p.tid").
		Joins("LEFT JOIN categories AS c ON c.cid = t.cid").
		Joins("LEFT JOIN users AS u ON u.uid = p.uid").
		Where("p.deleted = ? AND t.deleted = ?", false, false)

	// 书签只搜索当前用户收藏的帖子
	if filters.SearchIn == types.ScopeBookmarks {
		query = query.Joins("JOIN bookmarks AS b ON b.pid = p.pid AND b.uid = ?", filters.UID)
	}

	if filters.Query != "" {
		query = query.Scopes(database.ContainsFold(filters.Query, columns...))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, types.NewBackendError(r.db.Dialector.Name(), err)
	}

	var rows []postRow
	err := query.
		Select("p.pid, p.tid, p.uid, t.title, p.content, " +
			"COALESCE(u.username, '') AS username, COALESCE(c.name, '') AS category, p.timestamp").
		Order("p.timestamp DESC, p.pid DESC").
		Scopes(database.Paginate(filters.Page, filters.ItemsPerPage)).
		Scan(&rows).Error
	if err != nil {
		return nil, types.NewBackendError(r.db.Dialector.Name(), err)
	}

	posts := make([]types.Post, len(rows))
	for i, row := range rows {
		posts[i] = types.Post{
			PID:       row.PID,
			TID:       row.TID,
			UID:       row.UID,
			Title:     row.Title,
			Content:   row.Content,
			Username:  row.Username,
			Category:  row.Category,
			Timestamp: row.Timestamp,
		}
	}

	return &types.PostSearchResult{Posts: posts, MatchCount: total}, nil
}
