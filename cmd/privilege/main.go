package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/lk2023060901/forum-search-backend/internal/conf"
	"github.com/lk2023060901/forum-search-backend/internal/pkg/database"
	"github.com/lk2023060901/forum-search-backend/internal/pkg/logger"
	searchdata "github.com/lk2023060901/forum-search-backend/internal/search/data"
	"github.com/lk2023060901/forum-search-backend/internal/search/types"
	"github.com/samber/lo"
)

var (
	configFile = flag.String("config", "configs/config.yaml", "config file path")
	uid        = flag.Int64("uid", 0, "user id")
	grant      = flag.String("grant", "", "comma separated privileges to grant")
	revoke     = flag.String("revoke", "", "comma separated privileges to revoke")
)

var knownPrivileges = []string{
	types.PrivilegeSearchUsers,
	types.PrivilegeSearchContent,
	types.PrivilegeSearchTags,
}

// privilegeStore 授权命令需要的仓储操作
type privilegeStore interface {
	Grant(ctx context.Context, uid int64, privilege string) error
	Revoke(ctx context.Context, uid int64, privilege string) error
	Can(ctx context.Context, privilege string, uid int64) (bool, error)
}

func main() {
	flag.Parse()

	config, err := conf.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	db, err := database.New(&config.Database, logger.NewNop())
	if err != nil {
		log.Fatalf("连接数据库失败: %v", err)
	}
	defer db.Close()

	if err := db.DB.AutoMigrate(&searchdata.SearchPrivilegePO{}); err != nil {
		log.Fatalf("迁移权限表失败: %v", err)
	}

	// 这里不带默认权限，输出反映的是表中实际授予的权限
	repo := searchdata.NewPrivilegeRepo(db.DB, nil)
	if err := run(context.Background(), repo, *uid, splitList(*grant), splitList(*revoke), os.Stdout); err != nil {
		log.Fatal(err)
	}
}

// run 先授予再撤销，最后打印用户的权限状态
func run(ctx context.Context, repo privilegeStore, uid int64, grants, revokes []string, out io.Writer) error {
	if uid <= 0 {
		return errors.New("uid must be > 0")
	}
	if len(grants) == 0 && len(revokes) == 0 {
		return errors.New("nothing to do, pass -grant or -revoke")
	}
	if unknown := lo.Without(lo.Union(grants, revokes), knownPrivileges...); len(unknown) > 0 {
		return fmt.Errorf("unknown privileges: %s (known: %s)", strings.Join(unknown, ", "), strings.Join(knownPrivileges, ", "))
	}

	for _, p := range grants {
		if err := repo.Grant(ctx, uid, p); err != nil {
			return fmt.Errorf("grant %s: %w", p, err)
		}
		fmt.Fprintf(out, "✓ granted %s to uid %d\n", p, uid)
	}
	for _, p := range revokes {
		if err := repo.Revoke(ctx, uid, p); err != nil {
			return fmt.Errorf("revoke %s: %w", p, err)
		}
		fmt.Fprintf(out, "✓ revoked %s from uid %d\n", p, uid)
	}

	for _, p := range knownPrivileges {
		ok, err := repo.Can(ctx, p, uid)
		if err != nil {
			return fmt.Errorf("check %s: %w", p, err)
		}
		fmt.Fprintf(out, "%s: %t\n", p, ok)
	}
	return nil
}

func splitList(s string) []string {
	return lo.Compact(lo.Map(strings.Split(s, ","), func(p string, _ int) string {
		return strings.TrimSpace(p)
	}))
}
