package idgen

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
)

const defaultNode = "default"

var nodeMap sync.Map // map[string]*snowflake.Node

// InitNode 初始化指定名称的 Snowflake 节点
func InitNode(name string, nodeID int64) error {
	n, err := snowflake.NewNode(nodeID)
	if err != nil {
		return fmt.Errorf("snowflake node %s: %w", name, err)
	}
	nodeMap.Store(name, n)
	return nil
}

// NewFrom 生成指定节点的 ID
func NewFrom(name string) uint64 {
	val, ok := nodeMap.Load(name)
	if !ok {
		panic(fmt.Sprintf("snowflake node not initialized: %s", name))
	}
	return uint64(val.(*snowflake.Node).Generate().Int64())
}

// New 使用默认节点生成 ID
func New() uint64 {
	return NewFrom(defaultNode)
}

// Generator ID 生成器，测试中可替换为固定 ID
type Generator interface {
	Next() uint64
}

type snowflakeGen struct{}

func (snowflakeGen) Next() uint64 { return New() }

// Default 默认节点生成器
var Default Generator = snowflakeGen{}

// CheckSystemClock 检测到时钟回拨时退出，避免生成重复 ID
func CheckSystemClock() {
	last := time.Now().UnixMilli()
	ticker := time.NewTicker(time.Second)
	for now := range ticker.C {
		current := now.UnixMilli()
		if current < last {
			log.Fatalf("[IDGen] system clock moved backward: last=%d, now=%d", last, current)
		}
		last = current
	}
}
