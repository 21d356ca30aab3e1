package idgen

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	"github.com/smallbiznis/snackbar/internal/config"
	"go.uber.org/fx"
)

const (
	PrefixProduct    = "prod"
	PrefixIngredient = "ing"
	PrefixSale       = "sale"
	PrefixReport     = "rep"
	PrefixLog        = "log"
)

// Generator issues prefixed, time-ordered record ids.
type Generator struct {
	node *snowflake.Node
}

func New(node *snowflake.Node) *Generator {
	return &Generator{node: node}
}

// NewID returns "<prefix>-<snowflake>".
func (g *Generator) NewID(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, g.node.Generate().String())
}

// NewLogID returns "log-<ULID>" for audit entries.
func (g *Generator) NewLogID() string {
	return PrefixLog + "-" + ulid.Make().String()
}

func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	node, err := snowflake.NewNode(cfg.SnowflakeNode)
	if err != nil {
		return nil, fmt.Errorf("snowflake node %d: %w", cfg.SnowflakeNode, err)
	}
	return node, nil
}

var Module = fx.Module("idgen",
	fx.Provide(RegisterSnowflake, New),
)
