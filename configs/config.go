package configs

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"distributed-kmer-table/internal/errors"
	"distributed-kmer-table/internal/kmer"
)

// 运行模式：单机，或多 rank 组成的分布式表
type Mode string

const (
	ModeStandalone Mode = "standalone"
	ModeCluster    Mode = "cluster"
)

// 单个节点"自身"的配置
type NodeConfig struct {
	ID            string // 本节点 ID
	Rank          int    // 本节点在划分中的 rank，[0, len(Nodes))
	GRPCAddress   string // 段内存的 gRPC 暴露地址
	ClientAddress string // 对外 HTTP 服务地址
}

// 集群中的一个参与节点
type ClusterNode struct {
	ID          string
	Rank        int
	GRPCAddress string
}

// 分布式表的集群配置。
// 所有节点必须携带完全相同的 Capacity/K/Epoch/Nodes，握手阶段会校验。
type ClusterConfig struct {
	Capacity uint64 // 逻辑槽位总数，构造后不变
	K        int    // k-mer 长度
	Epoch    uint64 // 一次表构造的代号，用于发现配置不同步的节点
	Nodes    []ClusterNode
}

// 日志配置
type LoggerConfig struct {
	Enabled    bool
	Dir        string
	Extension  string
	Prefix     string
	Level      string
	Stdout     bool
	TimeFormat string
}

// 顶层应用配置
type AppConfig struct {
	// 当前运行模式
	Mode Mode
	// 本节点
	Self NodeConfig
	// 集群模式下的表参数（standalone 模式也复用 Capacity/K）
	Cluster *ClusterConfig
	// 日志
	Logger *LoggerConfig
}

// 从 settings.toml 读取配置
func ReadConfig(path string) (*AppConfig, error) {
	appConfig := &AppConfig{}
	if _, err := toml.DecodeFile(path, appConfig); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrCannotLoadConfig, err)
	}
	if err := appConfig.Validate(); err != nil {
		return nil, err
	}
	return appConfig, nil
}

// Validate 做构造前的参数校验；任何不满足都视为致命错误
func (c *AppConfig) Validate() error {
	if c.Mode != ModeStandalone && c.Mode != ModeCluster {
		return errors.ErrUnSupportedMode
	}
	if c.Cluster == nil {
		return fmt.Errorf("%w: missing [Cluster] section", errors.ErrCannotLoadConfig)
	}
	if c.Cluster.Capacity == 0 {
		return errors.ErrBadCapacity
	}
	if c.Cluster.K <= 0 || c.Cluster.K > kmer.MaxK {
		return errors.ErrBadKmerLen
	}

	if c.Mode == ModeStandalone {
		return nil
	}

	ranks := len(c.Cluster.Nodes)
	if ranks == 0 {
		return errors.ErrBadRankCount
	}
	if c.Self.Rank < 0 || c.Self.Rank >= ranks {
		return errors.ErrBadRank
	}

	// rank 必须恰好覆盖 [0, ranks) 且互不重复
	seen := make(map[int]bool, ranks)
	for _, n := range c.Cluster.Nodes {
		if n.Rank < 0 || n.Rank >= ranks || seen[n.Rank] {
			return errors.ErrBadRank
		}
		seen[n.Rank] = true
	}
	return nil
}

// Peers 返回除自身外的所有集群节点
func (c *AppConfig) Peers() []ClusterNode {
	if c.Cluster == nil {
		return nil
	}
	peers := make([]ClusterNode, 0, len(c.Cluster.Nodes))
	for _, n := range c.Cluster.Nodes {
		if n.Rank == c.Self.Rank {
			continue
		}
		peers = append(peers, n)
	}
	return peers
}
