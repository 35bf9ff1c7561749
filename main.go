package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v3"

	"github.com/tiantingrui/course-manage/internal/config"
	"github.com/tiantingrui/course-manage/internal/middleware"
	"github.com/tiantingrui/course-manage/internal/pkg/database"
	"github.com/tiantingrui/course-manage/internal/pkg/logger"
	"github.com/tiantingrui/course-manage/internal/router"
	"github.com/tiantingrui/course-manage/internal/service"
)

// 版本信息，编译时通过 ldflags 设置
var (
	Version   = "v0.1.0"
	BuildTime = "unknown"
	GoVersion = "unknown"
)

func main() {
	cmd := &cli.Command{
		Name:    "course-manage",
		Usage:   "书法培训机构教务管理系统后端服务",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "配置文件路径",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := resolveConfigPath(cmd.String("config")); err != nil {
				return err
			}
			return startApp()
		},
		Commands: []*cli.Command{
			{
				Name:  "reset-password",
				Usage: "重置指定用户的登录密码",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "配置文件路径",
					},
					&cli.StringFlag{
						Name:     "username",
						Aliases:  []string{"u"},
						Usage:    "用户名",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "password",
						Aliases:  []string{"p"},
						Usage:    "新密码",
						Required: true,
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if err := resolveConfigPath(cmd.String("config")); err != nil {
						return err
					}
					return resetPassword(cmd.String("username"), cmd.String("password"))
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatalf("应用程序启动失败: %v", err)
	}
}

// resolveConfigPath 确定配置文件路径并写入环境变量，供config包读取
func resolveConfigPath(configPath string) error {
	if configPath == "" {
		possiblePaths := []string{
			"config.yaml",
			filepath.Join("config", "config.yaml"),
		}

		found := false
		for _, path := range possiblePaths {
			if _, err := os.Stat(path); err == nil {
				configPath = path
				found = true
				break
			}
		}

		if !found {
			return fmt.Errorf("未指定配置文件且未找到默认配置文件(config.yaml或config/config.yaml)")
		}
	}

	os.Setenv("CONFIG_PATH", configPath)
	return nil
}

// startApp 启动应用程序的主要逻辑
func startApp() error {
	// 加载配置
	_, err := config.Load()
	if err != nil {
		return fmt.Errorf("加载配置失败: %v", err)
	}

	// 初始化日志系统
	err = logger.Setup()
	if err != nil {
		return fmt.Errorf("初始化日志系统失败: %v", err)
	}

	logger.Info("配置加载完成")

	// 初始化数据库
	err = database.Setup()
	if err != nil {
		logger.Fatalf("数据库初始化失败: %v", err)
		return fmt.Errorf("数据库初始化失败: %v", err)
	}

	logger.Info("数据库初始化完成")

	// 保证存在默认管理员账号
	if err := service.Auth.EnsureDefaultAdmin(); err != nil {
		return fmt.Errorf("初始化默认管理员失败: %v", err)
	}

	// 启动定时任务（课时包过期检查）
	service.Cron.Start()
	defer service.Cron.Stop()
	logger.Info("定时任务启动完成")

	// 设置gin模式
	gin.SetMode(config.GlobalConfig.Server.Mode)
	if config.GlobalConfig.Server.Mode == "release" {
		logger.Info("Gin设置为生产模式")
	} else {
		logger.Info("Gin运行在调试模式")
	}

	// 初始化路由（不使用默认中间件）
	r := gin.New()
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())

	router.SetupRoutes(r)
	logger.Info("路由设置完成")

	// 启动服务器
	logger.Infof("服务器启动中，端口: %s", config.GlobalConfig.Server.Port)
	err = r.Run(":" + config.GlobalConfig.Server.Port)
	if err != nil {
		logger.Fatalf("服务器启动失败: %v", err)
		return fmt.Errorf("服务器启动失败: %v", err)
	}

	return nil
}

// resetPassword 连接数据库并重置用户密码
func resetPassword(username, password string) error {
	if _, err := config.Load(); err != nil {
		return fmt.Errorf("加载配置失败: %v", err)
	}
	if err := database.Setup(); err != nil {
		return fmt.Errorf("数据库初始化失败: %v", err)
	}

	if err := service.Auth.ResetPassword(username, password); err != nil {
		return err
	}

	fmt.Printf("用户 %s 的密码已重置\n", username)
	return nil
}
