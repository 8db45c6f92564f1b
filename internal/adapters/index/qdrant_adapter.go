package index

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"

	qdrant "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"

	"github.com/medkb/billing-kb/internal/domain/providers"
	"github.com/medkb/billing-kb/internal/infrastructure/observability"
	"github.com/medkb/billing-kb/pkg/config"
)

// recordIDKey carries the logical record id in the point payload; point ids
// themselves are numeric hashes of it.
const recordIDKey = "record_id"

// QdrantAdapter implements the VectorIndex provider against a Qdrant
// instance over gRPC.
type QdrantAdapter struct {
	collections qdrant.CollectionsClient
	points      qdrant.PointsClient
	conn        *grpc.ClientConn
	collection  string
	metrics     *observability.Metrics
}

// Ensure QdrantAdapter implements VectorIndex
var _ providers.VectorIndex = (*QdrantAdapter)(nil)

// NewQdrantAdapter connects to Qdrant. Metrics are optional.
func NewQdrantAdapter(cfg *config.QdrantConfig, metrics *observability.Metrics) (*QdrantAdapter, error) {
	conn, err := grpc.Dial(cfg.QdrantAddr(), grpc.WithInsecure())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Qdrant: %w", err)
	}

	return &QdrantAdapter{
		collections: qdrant.NewCollectionsClient(conn),
		points:      qdrant.NewPointsClient(conn),
		conn:        conn,
		collection:  cfg.Collection,
		metrics:     metrics,
	}, nil
}

// Close closes the gRPC connection
func (a *QdrantAdapter) Close() error {
	return a.conn.Close()
}

// EnsureCollection creates the collection if it does not exist
func (a *QdrantAdapter) EnsureCollection(ctx context.Context) error {
	_, err := a.collections.Create(ctx, &qdrant.CreateCollection{
		CollectionName: a.collection,
		VectorsConfig: &qdrant.VectorsConfig{
			Config: &qdrant.VectorsConfig_Params{
				Params: &qdrant.VectorParams{
					Size:     providers.EmbeddingDimension,
					Distance: qdrant.Distance_Cosine,
				},
			},
		},
	})
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		return fmt.Errorf("failed to create collection %s: %w", a.collection, err)
	}
	return nil
}

// Upsert writes records into the collection
func (a *QdrantAdapter) Upsert(ctx context.Context, records []providers.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, 0, len(records))
	for _, record := range records {
		payload := toQdrantPayload(record.Payload)
		payload[recordIDKey] = &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: record.ID}}

		points = append(points, &qdrant.PointStruct{
			Id: &qdrant.PointId{
				PointIdOptions: &qdrant.PointId_Num{Num: pointID(record.ID)},
			},
			Vectors: &qdrant.Vectors{
				VectorsOptions: &qdrant.Vectors_Vector{
					Vector: &qdrant.Vector{Data: record.Vector},
				},
			},
			Payload: payload,
		})
	}

	_, err := a.points.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: a.collection,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert points: %w", err)
	}

	if a.metrics != nil {
		kinds := make(map[string]int)
		for _, record := range records {
			if kind, ok := record.Payload["type"].(string); ok {
				kinds[kind]++
			}
		}
		for kind, count := range kinds {
			observability.RecordUpsertMetric(ctx, a.metrics, kind, count)
		}
	}
	return nil
}

// Search runs a similarity search, optionally restricted to one record kind
func (a *QdrantAdapter) Search(ctx context.Context, vector []float32, topK int, filter *providers.SearchFilter) ([]providers.Match, error) {
	req := &qdrant.SearchPoints{
		CollectionName: a.collection,
		Vector:         vector,
		Limit:          uint64(topK),
		WithPayload: &qdrant.WithPayloadSelector{
			SelectorOptions: &qdrant.WithPayloadSelector_Enable{Enable: true},
		},
	}

	if filter != nil && filter.Kind != "" {
		req.Filter = &qdrant.Filter{
			Must: []*qdrant.Condition{
				{
					ConditionOneOf: &qdrant.Condition_Field{
						Field: &qdrant.FieldCondition{
							Key: "type",
							Match: &qdrant.Match{
								MatchValue: &qdrant.Match_Keyword{Keyword: filter.Kind},
							},
						},
					},
				},
			},
		}
	}

	resp, err := a.points.Search(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to search points: %w", err)
	}

	matches := make([]providers.Match, 0, len(resp.Result))
	for _, point := range resp.Result {
		payload := fromQdrantPayload(point.Payload)
		match := providers.Match{
			Score:   float64(point.Score),
			Payload: payload,
		}
		if id, ok := payload[recordIDKey].(string); ok {
			match.ID = id
		}
		matches = append(matches, match)
	}
	return matches, nil
}

// pointID derives a stable numeric point id from a logical record id
func pointID(recordID string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(recordID))
	return h.Sum64()
}

func toQdrantPayload(payload map[string]any) map[string]*qdrant.Value {
	converted := make(map[string]*qdrant.Value, len(payload))
	for key, value := range payload {
		switch v := value.(type) {
		case string:
			converted[key] = &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: v}}
		case bool:
			converted[key] = &qdrant.Value{Kind: &qdrant.Value_BoolValue{BoolValue: v}}
		case float64:
			converted[key] = &qdrant.Value{Kind: &qdrant.Value_DoubleValue{DoubleValue: v}}
		case int:
			converted[key] = &qdrant.Value{Kind: &qdrant.Value_IntegerValue{IntegerValue: int64(v)}}
		case int64:
			converted[key] = &qdrant.Value{Kind: &qdrant.Value_IntegerValue{IntegerValue: v}}
		case nil:
			continue
		default:
			converted[key] = &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: fmt.Sprintf("%v", v)}}
		}
	}
	return converted
}

func fromQdrantPayload(payload map[string]*qdrant.Value) map[string]any {
	converted := make(map[string]any, len(payload))
	for key, value := range payload {
		switch kind := value.Kind.(type) {
		case *qdrant.Value_StringValue:
			converted[key] = kind.StringValue
		case *qdrant.Value_BoolValue:
			converted[key] = kind.BoolValue
		case *qdrant.Value_DoubleValue:
			converted[key] = kind.DoubleValue
		case *qdrant.Value_IntegerValue:
			converted[key] = float64(kind.IntegerValue)
		}
	}
	return converted
}
