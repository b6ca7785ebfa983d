package cluster

type NodeState int

const (
	StateJoining NodeState = iota
	StateReady
)

// 表示一个参与 rank 的成员信息
type Member struct {
	ID          string
	Rank        int
	GRPCAddress string

	State       NodeState
	AnnouncedAt int64 // unix nano，该成员向本节点完成握手的时间
}

// 一次表构造的全局参数。
// 所有 rank 必须携带完全一致的 Params，否则构造失败。
type Params struct {
	Capacity uint64
	Ranks    int
	K        int
	Epoch    uint64
}
