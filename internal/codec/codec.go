package codec

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"google.golang.org/grpc/encoding"
)

// gRPC 消息编解码。
// 节点间的请求/响应都是固定的小型结构体，直接用 gob 编码，
// client 与 server 通过 content-subtype 协商选中本编解码器。

const Name = "gob"

type gobCodec struct{}

func (gobCodec) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, fmt.Errorf("gob marshal: %w", err)
	}
	return buf.Bytes(), nil
}

func (gobCodec) Unmarshal(data []byte, v any) error {
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(v); err != nil {
		return fmt.Errorf("gob unmarshal: %w", err)
	}
	return nil
}

func (gobCodec) Name() string { return Name }

func init() {
	encoding.RegisterCodec(gobCodec{})
}
