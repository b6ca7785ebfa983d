package kmer

import (
	"encoding/binary"
	"strings"

	"github.com/cespare/xxhash/v2"

	"distributed-kmer-table/internal/errors"
)

// k-mer 记录与键的定义。
// 表核心只依赖 Key 的哈希与相等比较；打包/还原逻辑对核心透明。

// 每个碱基 2 bit 打包进一个 uint64，因此最长支持 32 个碱基
const MaxK = 32

// 无扩展碱基时的终止符
const Terminator = 'F'

// 2-bit 打包后的 k-mer 键
type Key uint64

// 一条 k-mer 记录：键 + 前向/后向扩展碱基
type Record struct {
	Kmer Key
	K    uint8
	ExtF byte // 前向扩展碱基，无则为 'F'
	ExtB byte // 后向扩展碱基，无则为 'F'
}

func (r Record) Key() Key { return r.Kmer }

// Seq 还原记录的碱基序列
func (r Record) Seq() string { return r.Kmer.Unpack(int(r.K)) }

// Hash 返回键的 64 位哈希，所有节点上对同一键结果一致
func (k Key) Hash() uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(k))
	return xxhash.Sum64(buf[:])
}

// 碱基字符到 2-bit 编码
func packBase(b byte) (uint64, error) {
	switch b {
	case 'A', 'a':
		return 0, nil
	case 'C', 'c':
		return 1, nil
	case 'G', 'g':
		return 2, nil
	case 'T', 't':
		return 3, nil
	default:
		return 0, errors.ErrBadBase
	}
}

// 2-bit 编码到碱基字符
func unpackBase(v uint64) byte {
	return "ACGT"[v&0x3]
}

// Pack 将长度不超过 MaxK 的碱基序列打包为 Key
func Pack(seq string) (Key, error) {
	if len(seq) == 0 || len(seq) > MaxK {
		return 0, errors.ErrBadKmerLen
	}

	var k uint64
	for i := 0; i < len(seq); i++ {
		v, err := packBase(seq[i])
		if err != nil {
			return 0, err
		}
		k = k<<2 | v
	}
	return Key(k), nil
}

// Unpack 还原出 kLen 个碱基的序列
func (k Key) Unpack(kLen int) string {
	if kLen <= 0 || kLen > MaxK {
		return ""
	}

	var sb strings.Builder
	sb.Grow(kLen)
	for i := kLen - 1; i >= 0; i-- {
		sb.WriteByte(unpackBase(uint64(k) >> (2 * i)))
	}
	return sb.String()
}

// 校验扩展碱基：合法碱基或终止符
func validExt(b byte) bool {
	if b == Terminator {
		return true
	}
	_, err := packBase(b)
	return err == nil
}

// NewRecord 由碱基序列和两个扩展碱基构造记录
func NewRecord(seq string, extF, extB byte) (Record, error) {
	key, err := Pack(seq)
	if err != nil {
		return Record{}, err
	}
	if !validExt(extF) || !validExt(extB) {
		return Record{}, errors.ErrBadBase
	}
	return Record{Kmer: key, K: uint8(len(seq)), ExtF: extF, ExtB: extB}, nil
}
