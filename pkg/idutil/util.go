package idutil

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Generator hands out snowflake ids. Ids are time-ordered, so sorting by id
// descending yields most-recent-first without touching a timestamp column.
type Generator struct {
	node *snowflake.Node
}

func NewGenerator(nodeID int64) (*Generator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, err
	}

	return &Generator{node: node}, nil
}

func (g *Generator) NewID() int64 {
	return g.node.Generate().Int64()
}

// CreatedAt extracts the creation time embedded in a snowflake id.
func CreatedAt(id int64) time.Time {
	return time.UnixMilli(snowflake.ParseInt64(id).Time())
}
