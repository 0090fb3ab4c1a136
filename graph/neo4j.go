package graph

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/c360studio/artgraph/entity"
	"github.com/c360studio/artgraph/vocabulary/art"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Neo4jConfig configures the Neo4j connection.
type Neo4jConfig struct {
	URI      string
	User     string
	Password string
	Database string
	Timeout  time.Duration
}

// Neo4jWriter writes assembled nodes to Neo4j. Nodes are merged on their
// identity, so writing the same graph twice leaves one copy.
type Neo4jWriter struct {
	driver   neo4j.DriverWithContext
	database string
	logger   *slog.Logger
}

// DialNeo4j connects to Neo4j and verifies connectivity.
func DialNeo4j(ctx context.Context, cfg Neo4jConfig, logger *slog.Logger) (*Neo4jWriter, error) {
	if cfg.User == "" {
		cfg.User = "neo4j"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.User, cfg.Password, ""), func(c *neo4j.Config) {
		c.SocketConnectTimeout = cfg.Timeout
	})
	if err != nil {
		return nil, fmt.Errorf("neo4j: init driver: %w", err)
	}

	vctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := driver.VerifyConnectivity(vctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("neo4j: verify connectivity: %w", err)
	}
	return NewNeo4jWriter(driver, cfg.Database, logger), nil
}

// NewNeo4jWriter wraps an existing driver.
func NewNeo4jWriter(driver neo4j.DriverWithContext, database string, logger *slog.Logger) *Neo4jWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Neo4jWriter{driver: driver, database: database, logger: logger}
}

// Close closes the driver.
func (w *Neo4jWriter) Close(ctx context.Context) error {
	if w == nil || w.driver == nil {
		return nil
	}
	err := w.driver.Close(ctx)
	w.driver = nil
	return err
}

const (
	cypherEntityConstraint = `CREATE CONSTRAINT artgraph_entity_id IF NOT EXISTS FOR (e:Entity) REQUIRE e.id IS UNIQUE`

	cypherMergeNodes = `
UNWIND $nodes AS n
MERGE (e:Entity {id: n.id})
SET e += n.props, e.kind = n.kind
`

	// Targets are merged too: a relation may point at a work that is only
	// mapped later.
	cypherMergeRels = `
UNWIND $rels AS r
MERGE (a:Entity {id: r.from})
MERGE (b:Entity {id: r.to})
MERGE (a)-[:RELATES {predicate: r.predicate}]->(b)
`
)

// Write merges nodes and their relations.
func (w *Neo4jWriter) Write(ctx context.Context, nodes []*Node) error {
	if w == nil || w.driver == nil || len(nodes) == 0 {
		return nil
	}
	nodeRows, relRows := Neo4jParams(nodes)

	session := w.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: w.database,
	})
	defer session.Close(ctx)

	if res, err := session.Run(ctx, cypherEntityConstraint, nil); err != nil {
		w.logger.Warn("Neo4j schema init failed, continuing", "error", err)
	} else {
		_, _ = res.Consume(ctx)
	}

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if err := runConsume(ctx, tx, cypherMergeNodes, map[string]any{"nodes": nodeRows}); err != nil {
			return nil, err
		}
		if len(relRows) > 0 {
			if err := runConsume(ctx, tx, cypherMergeRels, map[string]any{"rels": relRows}); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("neo4j: write graph: %w", err)
	}
	w.logger.Info("Graph written to Neo4j", "nodes", len(nodeRows), "relations", len(relRows))
	return nil
}

func runConsume(ctx context.Context, tx neo4j.ManagedTransaction, cypher string, params map[string]any) error {
	res, err := tx.Run(ctx, cypher, params)
	if err != nil {
		return err
	}
	_, err = res.Consume(ctx)
	return err
}

// Neo4jParams builds the rows for the node and relation statements. Entity
// links become RELATES relationships named by their predicate; class IRIs go
// to the "types" property and all other values to string list properties
// named after their predicate.
func Neo4jParams(nodes []*Node) (nodeRows, relRows []map[string]any) {
	nodeRows = make([]map[string]any, 0, len(nodes))
	for _, n := range nodes {
		props := make(map[string]any)
		for _, p := range n.predicates {
			var literals []string
			for _, v := range n.values[p] {
				ref, isRef := v.(entity.Ref)
				switch {
				case isRef && p == art.EntityClass:
					literals = append(literals, string(ref))
				case isRef:
					relRows = append(relRows, map[string]any{
						"from":      n.ID,
						"to":        string(ref),
						"predicate": p,
					})
				default:
					literals = append(literals, literal(v))
				}
			}
			if len(literals) == 0 {
				continue
			}
			if p == art.EntityClass {
				props["types"] = literals
				continue
			}
			props[propertyName(p)] = literals
		}
		nodeRows = append(nodeRows, map[string]any{
			"id":    n.ID,
			"kind":  string(n.Kind()),
			"props": props,
		})
	}
	return nodeRows, relRows
}

// propertyName turns a dotted predicate into a Neo4j property key.
func propertyName(predicate string) string {
	return strings.NewReplacer(".", "_", "-", "_").Replace(predicate)
}

func literal(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case entity.LangString:
		if x.Lang == "" {
			return x.Value
		}
		return x.Value + "@" + x.Lang
	case entity.Date:
		return x.String()
	case time.Time:
		return x.UTC().Format(time.RFC3339)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
