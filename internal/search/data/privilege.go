package data

import (
	"context"
	"time"

	"github.com/lk2023060901/forum-search-backend/internal/search/biz"
	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SearchPrivilegePO 搜索权限授权记录
type SearchPrivilegePO struct {
	ID        uint      `gorm:"primarykey"`
	UID       int64     `gorm:"column:uid;not null;uniqueIndex:idx_search_privileges_uid_privilege"`
	Privilege string    `gorm:"size:64;not null;uniqueIndex:idx_search_privileges_uid_privilege"`
	CreatedAt time.Time `gorm:"not null"`
}

func (SearchPrivilegePO) TableName() string {
	return "search_privileges"
}

// PrivilegeRepo 搜索权限仓储实现
type PrivilegeRepo struct {
	db       *gorm.DB
	defaults []string
}

// NewPrivilegeRepo 创建权限仓储，defaults 为所有登录用户默认拥有的权限
func NewPrivilegeRepo(db *gorm.DB, defaults []string) *PrivilegeRepo {
	return &PrivilegeRepo{db: db, defaults: defaults}
}

var _ biz.PrivilegeChecker = (*PrivilegeRepo)(nil)

// Can 检查用户是否拥有权限，游客没有任何搜索权限
func (r *PrivilegeRepo) Can(ctx context.Context, privilege string, uid int64) (bool, error) {
	if uid <= 0 {
		return false, nil
	}
	if lo.Contains(r.defaults, privilege) {
		return true, nil
	}

	var count int64
	err := r.db.WithContext(ctx).
		Model(&SearchPrivilegePO{}).
		Where("uid = ? AND privilege = ?", uid, privilege).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Grant 授予权限（幂等）
func (r *PrivilegeRepo) Grant(ctx context.Context, uid int64, privilege string) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&SearchPrivilegePO{UID: uid, Privilege: privilege}).Error
}

// Revoke 撤销权限
func (r *PrivilegeRepo) Revoke(ctx context.Context, uid int64, privilege string) error {
	return r.db.WithContext(ctx).
		Where("uid = ? AND privilege = ?", uid, privilege).
		Delete(&SearchPrivilegePO{}).Error
}
