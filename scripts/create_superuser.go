// 手动授予或撤销超级用户权限
//
// 管理接口本身需要一个超级用户才能调用，首次部署时用此脚本指定第一个管理员。
//
// 用法: go run scripts/create_superuser.go -username alice [-revoke]

package main

import (
	"flag"
	"log"
	"snaketests_backend/internal/config"
	"snaketests_backend/internal/repository"
	"snaketests_backend/pkg/database"
	"snaketests_backend/pkg/logger"
)

func main() {
	configDir := flag.String("config", "configs", "配置文件所在目录")
	username := flag.String("username", "", "用户名或邮箱")
	revoke := flag.Bool("revoke", false, "撤销超级用户权限")
	flag.Parse()

	if *username == "" {
		log.Fatal("必须指定 -username")
	}

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	logger.InitLogger(cfg)

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	users := repository.NewUserRepository(db)
	user, err := users.FindByLogin(*username)
	if err != nil {
		log.Fatalf("找不到用户 %s: %v", *username, err)
	}

	if err := users.SetSuperuser(user.ID, !*revoke); err != nil {
		log.Fatalf("更新失败: %v", err)
	}
	log.Printf("用户 %s 超级用户: %t", user.Username, !*revoke)
}
