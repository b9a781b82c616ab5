package vectorindex

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"edu-assistant-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// QdrantIndex talks to Qdrant over gRPC.
type QdrantIndex struct {
	client *qdrant.Client
	logger logger.ILogger
}

// NewQdrantIndex accepts the HTTP url ("http://localhost:6333"); the gRPC port is derived as HTTP port + 1.
func NewQdrantIndex(rawURL, apiKey string, log logger.ILogger) (*QdrantIndex, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid qdrant url: %w", err)
	}

	host := parsedURL.Hostname()
	if host == "" {
		host = "localhost"
	}
	port := 6334
	if parsedURL.Port() != "" {
		if httpPort, err := strconv.Atoi(parsedURL.Port()); err == nil {
			port = httpPort + 1
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: parsedURL.Scheme == "https",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &QdrantIndex{client: client, logger: log}, nil
}

func (s *QdrantIndex) EnsureCollection(ctx context.Context, collection string, dimensions int) error {
	exists, err := s.client.CollectionExists(ctx, collection)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if exists {
		return nil
	}

	s.logger.Info("VECTOR", "Creating collection", map[string]interface{}{
		"collection": collection,
		"dimensions": dimensions,
	})
	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dimensions),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	// Keyword index on user_id keeps the per-user filter cheap.
	_, err = s.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: collection,
		FieldName:      "user_id",
		FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
	})
	if err != nil {
		s.logger.Warn("VECTOR", "Failed to create user_id index", map[string]interface{}{"error": err.Error()})
	}
	return nil
}

func (s *QdrantIndex) Upsert(ctx context.Context, collection string, points []Point) error {
	if len(points) == 0 {
		return nil
	}

	qdrantPoints := make([]*qdrant.PointStruct, 0, len(points))
	for _, point := range points {
		p := &qdrant.PointStruct{
			Id:      qdrant.NewID(point.ID),
			Vectors: qdrant.NewVectors(point.Vector...),
		}
		if len(point.Payload) > 0 {
			payload, err := qdrant.TryValueMap(toQdrantPayload(point.Payload))
			if err != nil {
				return fmt.Errorf("invalid payload for point %s: %w", point.ID, err)
			}
			p.Payload = payload
		}
		qdrantPoints = append(qdrantPoints, p)
	}

	wait := true
	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Wait:           &wait,
		Points:         qdrantPoints,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert points: %w", err)
	}
	return nil
}

func (s *QdrantIndex) Search(ctx context.Context, q Query) ([]ScoredPoint, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}

	limit := uint64(q.TopK)
	req := &qdrant.QueryPoints{
		CollectionName: q.Collection,
		Query:          qdrant.NewQuery(q.Vector...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(q.WithPayload),
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatch("user_id", q.Filter.UserID.String())},
		},
	}

	scored, err := s.client.Query(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to search points: %w", err)
	}

	results := make([]ScoredPoint, 0, len(scored))
	for _, hit := range scored {
		id := ""
		if hit.Id != nil {
			id = hit.Id.GetUuid()
		}
		payload := map[string]any{}
		if hit.Payload != nil {
			payload = convertPayloadToMap(hit.Payload)
		}
		results = append(results, ScoredPoint{ID: id, Score: hit.Score, Payload: payload})
	}
	return results, nil
}

func (s *QdrantIndex) DeleteByContent(ctx context.Context, collection string, contentID uuid.UUID) error {
	wait := true
	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: collection,
		Wait:           &wait,
		Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatch("content_id", contentID.String())},
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to delete points for content %s: %w", contentID, err)
	}
	return nil
}

func (s *QdrantIndex) Close() error {
	return s.client.Close()
}

// toQdrantPayload rewrites values qdrant.NewValue does not accept.
func toQdrantPayload(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = toQdrantValue(v)
	}
	return out
}

func toQdrantValue(v any) any {
	switch val := v.(type) {
	case []string:
		list := make([]any, len(val))
		for i, s := range val {
			list[i] = s
		}
		return list
	case uuid.UUID:
		return val.String()
	case time.Time:
		return val.UTC().Format(time.RFC3339)
	case map[string]any:
		return toQdrantPayload(val)
	default:
		return v
	}
}

func convertPayloadToMap(payload map[string]*qdrant.Value) map[string]any {
	result := make(map[string]any, len(payload))
	for k, v := range payload {
		if v == nil {
			continue
		}
		result[k] = convertValue(v)
	}
	return result
}

func convertValue(v *qdrant.Value) any {
	switch val := v.Kind.(type) {
	case *qdrant.Value_BoolValue:
		return val.BoolValue
	case *qdrant.Value_IntegerValue:
		return val.IntegerValue
	case *qdrant.Value_DoubleValue:
		return val.DoubleValue
	case *qdrant.Value_StringValue:
		return val.StringValue
	case *qdrant.Value_ListValue:
		list := make([]any, len(val.ListValue.Values))
		for i, item := range val.ListValue.Values {
			list[i] = convertValue(item)
		}
		return list
	case *qdrant.Value_StructValue:
		return convertPayloadToMap(val.StructValue.Fields)
	default:
		return nil
	}
}
