package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/pflag"

	"distributed-kmer-table/configs"
	"distributed-kmer-table/internal/api"
	"distributed-kmer-table/internal/util"
)

// kmernode 启动入口

func main() {
	configPath := pflag.StringP("config", "c", "settings.toml", "配置文件路径")
	rankOverride := pflag.Int("rank", -1, "覆盖配置中的本节点 rank（多进程共用一份配置时使用）")
	pflag.Parse()

	appCfg, err := configs.ReadConfig(*configPath)
	if err != nil {
		log.Fatalf("read config failed: %v", err)
	}

	// 同一份配置可以被多个进程复用，各进程用 --rank 区分自己
	if *rankOverride >= 0 {
		applyRankOverride(appCfg, *rankOverride)
		if err := appCfg.Validate(); err != nil {
			log.Fatalf("invalid config after rank override: %v", err)
		}
	}

	// 初始化全局日志（按天写文件到 <settings.toml>/logs/ ）
	initGlobalLogger(*configPath, appCfg)

	ctx, cancel := signalContext()
	defer cancel()

	// 根据运行模式组装 TableService；集群模式会在内部完成握手屏障
	svc, shutdown, err := buildTableService(ctx, appCfg)
	if err != nil {
		log.Fatalf("build table service failed: %v", err)
	}
	defer shutdown()

	if err := api.StartHTTPServer(ctx, appCfg.Self.ClientAddress, svc); err != nil {
		log.Fatalf("http server error: %v", err)
	}
}

// 用指定 rank 替换 Self 节点信息（地址从集群节点列表中取）
func applyRankOverride(appCfg *configs.AppConfig, rank int) {
	appCfg.Self.Rank = rank
	if appCfg.Cluster == nil {
		return
	}
	for _, n := range appCfg.Cluster.Nodes {
		if n.Rank == rank {
			appCfg.Self.ID = n.ID
			appCfg.Self.GRPCAddress = n.GRPCAddress
			return
		}
	}
}

func initGlobalLogger(configPath string, appCfg *configs.AppConfig) {
	baseDir := filepath.Dir(configPath)
	if baseDir == "." {
		if wd, err := os.Getwd(); err == nil {
			baseDir = wd
		}
	}

	// 默认配置
	cfg := &configs.LoggerConfig{
		Enabled:   true,
		Dir:       "logs",
		Extension: "log",
		Prefix:    "kmernode",
		Level:     "info",
		Stdout:    true,
	}
	if appCfg != nil && appCfg.Logger != nil {
		cfg = appCfg.Logger
	}
	if !cfg.Enabled {
		util.SetGlobalLogger(nil)
		return
	}

	l, err := util.NewDailyFileLogger(util.DailyFileLoggerOptions{
		BaseDir:    baseDir,
		Dir:        cfg.Dir,
		Extension:  cfg.Extension,
		Prefix:     cfg.Prefix,
		MinLevel:   util.ParseLogLevel(cfg.Level),
		Stdout:     cfg.Stdout,
		TimeFormat: cfg.TimeFormat,
	})
	if err != nil {
		log.Printf("init file logger failed: %v", err)
		return
	}
	util.SetGlobalLogger(l)
}

// signalContext 返回一个在接收到中断/终止信号时关闭的 Context。
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		cancel()
	}()

	return ctx, cancel
}
