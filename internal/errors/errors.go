package errors

import "errors"

var (
	ErrClientNotExist   = errors.New("client does not exist")       // 指定 rank 的客户端不存在
	ErrUnSupportedMode  = errors.New("unsupported mode")            // 不支持的运行模式
	ErrBadCapacity      = errors.New("capacity must be positive")   // 表容量非法
	ErrBadRankCount     = errors.New("rank count must be positive") // 参与进程数非法
	ErrBadRank          = errors.New("rank out of range")           // rank 越界
	ErrBadKmerLen       = errors.New("invalid kmer length")         // k-mer 长度非法
	ErrBadBase          = errors.New("invalid base character")      // 非法碱基字符
	ErrSlotOutOfRange   = errors.New("slot index out of range")     // 槽位索引越界
	ErrClusterMismatch  = errors.New("cluster parameters mismatch") // 各节点的表参数不一致
	ErrNotReady         = errors.New("cluster not ready")           // 握手屏障尚未完成
	ErrNoTransport      = errors.New("no transport configured")     // 未配置远程传输
	ErrCannotLoadConfig = errors.New("cannot load config")          // 无法加载配置
)
