package main

import (
	"context"
	"fmt"
	"net"

	"google.golang.org/grpc"

	"distributed-kmer-table/configs"
	"distributed-kmer-table/internal/cluster"
	"distributed-kmer-table/internal/cluster/cluster_grpc"
	"distributed-kmer-table/internal/errors"
	"distributed-kmer-table/internal/partition"
	"distributed-kmer-table/internal/segment"
	"distributed-kmer-table/internal/services"
	"distributed-kmer-table/internal/table"
	"distributed-kmer-table/internal/table/table_grpc"
	"distributed-kmer-table/internal/util"
)

// 根据配置的运行模式构造对应的 TableService 实现。
// 返回的 shutdown 负责释放内部资源（gRPC server、对端连接）。
func buildTableService(ctx context.Context, appCfg *configs.AppConfig) (services.TableService, func(), error) {
	switch appCfg.Mode {
	case configs.ModeStandalone:
		svc, err := buildStandaloneMode(appCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("build standalone mode: %w", err)
		}
		return svc, func() {}, nil

	case configs.ModeCluster:
		svc, shutdown, err := buildClusterMode(ctx, appCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("build cluster mode: %w", err)
		}
		return svc, shutdown, nil

	default:
		return nil, nil, errors.ErrUnSupportedMode
	}
}

// 单机模式：单 rank 划分 + 本地段存储，不启动任何 gRPC 服务
func buildStandaloneMode(appCfg *configs.AppConfig) (services.TableService, error) {
	plan, err := partition.NewPlan(appCfg.Cluster.Capacity, 1)
	if err != nil {
		return nil, err
	}
	store, err := segment.NewStore(plan, 0)
	if err != nil {
		return nil, err
	}
	tbl, err := table.New(plan, 0, store, nil)
	if err != nil {
		return nil, err
	}
	return services.NewStandaloneTableService(tbl), nil
}

// 集群模式：分配本段存储 -> 暴露 gRPC 服务 -> 握手屏障 -> 构造表视图。
// 段存储必须在任何远程操作之前暴露，Join 返回即全部节点可互相访问。
func buildClusterMode(ctx context.Context, appCfg *configs.AppConfig) (services.TableService, func(), error) {
	plan, err := partition.NewPlan(appCfg.Cluster.Capacity, len(appCfg.Cluster.Nodes))
	if err != nil {
		return nil, nil, err
	}
	store, err := segment.NewStore(plan, appCfg.Self.Rank)
	if err != nil {
		return nil, nil, err
	}

	clusterTransport, err := cluster_grpc.NewGRPCTransport(appCfg.Peers())
	if err != nil {
		return nil, nil, err
	}
	node := cluster.NewNode(appCfg, clusterTransport)

	grpcServer, err := startSegmentGRPCServer(appCfg, store, node)
	if err != nil {
		clusterTransport.Close()
		return nil, nil, err
	}

	memTransport, err := table_grpc.NewGRPCTransport(appCfg.Peers())
	if err != nil {
		grpcServer.Stop()
		clusterTransport.Close()
		return nil, nil, err
	}

	shutdown := func() {
		grpcServer.GracefulStop()
		_ = memTransport.Close()
		_ = clusterTransport.Close()
	}

	// 集体握手：所有节点暴露完成前不放行任何 insert/find 流量
	if err := node.Join(ctx); err != nil {
		shutdown()
		return nil, nil, fmt.Errorf("cluster join: %w", err)
	}

	tbl, err := table.New(plan, appCfg.Self.Rank, store, memTransport)
	if err != nil {
		shutdown()
		return nil, nil, err
	}

	return services.NewClusterTableService(tbl, node), shutdown, nil
}

// 启动段内存 gRPC 服务，监听 Self.GRPCAddress
func startSegmentGRPCServer(appCfg *configs.AppConfig, store *segment.Store, node *cluster.Node) (*grpc.Server, error) {
	addr := appCfg.Self.GRPCAddress
	if addr == "" {
		return nil, fmt.Errorf("grpc address not configured")
	}
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}

	grpcServer := cluster_grpc.NewGRPCServerWrapper()
	// 同一个 server 上注册段内存服务与握手服务
	table_grpc.RegisterSegmentServiceServer(grpcServer, table_grpc.NewSegmentGRPCServer(store))
	cluster_grpc.RegisterClusterServiceServer(grpcServer, cluster_grpc.NewClusterGRPCServer(node))

	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			util.L().Errorf("segment grpc server stopped: %v", err)
		}
	}()

	return grpcServer, nil
}
