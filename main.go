package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fachebot/townhall-recap/internal/api"
	"github.com/fachebot/townhall-recap/internal/config"
	"github.com/fachebot/townhall-recap/internal/logger"
	"github.com/fachebot/townhall-recap/internal/scheduler"
	"github.com/fachebot/townhall-recap/internal/svc"
)

var configFile = flag.String("f", "etc/config.yaml", "the config file")

func main() {
	flag.Parse()

	// 读取配置文件
	c, err := config.LoadFromFile(*configFile)
	if err != nil {
		logger.Fatalf("读取配置文件失败, %s", err)
	}
	logger.SetConsoleLevel(c.Log.Level)

	// 创建服务上下文
	svcCtx := svc.NewServiceContext(c)

	// 创建并启动会话清理调度器
	schedulerInstance := scheduler.NewScheduler(svcCtx.Controller, &c.Session)
	if err := schedulerInstance.Start(); err != nil {
		logger.Fatalf("[Scheduler] 启动调度器失败: %s", err)
	}

	// 启动HTTP服务
	apiServer := api.NewServer(svcCtx.Controller, svcCtx.Registrar)
	addr := fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: apiServer.Handler(),
	}

	go func() {
		logger.Infof("[API] HTTP服务已启动, 监听 %s", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("[API] HTTP服务异常退出: %s", err)
		}
	}()

	// 等待程序退出
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch

	// 优雅关闭
	logger.Infof("正在关闭服务...")
	schedulerInstance.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("[API] 关闭HTTP服务失败, %v", err)
	}
	logger.Infof("服务已停止")
}
