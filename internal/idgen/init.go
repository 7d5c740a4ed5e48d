package idgen

import (
	"log"
)

// Init 初始化默认节点，多实例部署时每个实例的 nodeID 必须不同
func Init(nodeID int64) {
	if err := InitNode(defaultNode, nodeID); err != nil {
		log.Fatalf("[IDGen] init node %d failed: %v", nodeID, err)
	}
	log.Printf("[IDGen] snowflake node initialized: nodeID=%d", nodeID)
}
