// Package qdrant stores profiles as Qdrant points over gRPC.
package qdrant

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/kailas-cloud/profilematch/internal/domain"
	domprofile "github.com/kailas-cloud/profilematch/internal/domain/profile"
)

// pointsAPI is the subset of pb.PointsClient used here.
type pointsAPI interface {
	Upsert(ctx context.Context, in *pb.UpsertPoints, opts ...grpc.CallOption) (*pb.PointsOperationResponse, error)
	Get(ctx context.Context, in *pb.GetPoints, opts ...grpc.CallOption) (*pb.GetResponse, error)
	Search(ctx context.Context, in *pb.SearchPoints, opts ...grpc.CallOption) (*pb.SearchResponse, error)
	Scroll(ctx context.Context, in *pb.ScrollPoints, opts ...grpc.CallOption) (*pb.ScrollResponse, error)
	Count(ctx context.Context, in *pb.CountPoints, opts ...grpc.CallOption) (*pb.CountResponse, error)
	Delete(ctx context.Context, in *pb.DeletePoints, opts ...grpc.CallOption) (*pb.PointsOperationResponse, error)
}

// collectionsAPI is the subset of pb.CollectionsClient used here.
type collectionsAPI interface {
	CollectionExists(
		ctx context.Context, in *pb.CollectionExistsRequest, opts ...grpc.CallOption,
	) (*pb.CollectionExistsResponse, error)
	Create(ctx context.Context, in *pb.CreateCollection, opts ...grpc.CallOption) (*pb.CollectionOperationResponse, error)
}

// healthAPI is the subset of pb.QdrantClient used here.
type healthAPI interface {
	HealthCheck(ctx context.Context, in *pb.HealthCheckRequest, opts ...grpc.CallOption) (*pb.HealthCheckReply, error)
}

// Config describes the collection backing a Repo.
type Config struct {
	Addr       string // host:port of the gRPC endpoint
	Collection string
	Dimensions int
}

// Repo implements usecase/profile.Repository over Qdrant.
type Repo struct {
	conn        *grpc.ClientConn
	points      pointsAPI
	collections collectionsAPI
	health      healthAPI
	cfg         Config
}

// Dial connects to Qdrant. The connection is lazy; Open issues the first call.
func Dial(cfg Config) (*Repo, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("qdrant addr is required")
	}
	conn, err := grpc.NewClient(cfg.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("qdrant connect: %w", err)
	}
	r := newRepo(pb.NewPointsClient(conn), pb.NewCollectionsClient(conn), pb.NewQdrantClient(conn), cfg)
	r.conn = conn
	return r, nil
}

func newRepo(points pointsAPI, collections collectionsAPI, health healthAPI, cfg Config) *Repo {
	return &Repo{points: points, collections: collections, health: health, cfg: cfg}
}

// Open creates the collection with cosine distance unless it exists.
func (r *Repo) Open(ctx context.Context) error {
	resp, err := r.collections.CollectionExists(ctx, &pb.CollectionExistsRequest{CollectionName: r.cfg.Collection})
	if err != nil {
		return fmt.Errorf("collection exists %s: %w", r.cfg.Collection, err)
	}
	if resp.GetResult().GetExists() {
		return nil
	}

	_, err = r.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: r.cfg.Collection,
		VectorsConfig: &pb.VectorsConfig{Config: &pb.VectorsConfig_Params{Params: &pb.VectorParams{
			Size:     uint64(r.cfg.Dimensions),
			Distance: pb.Distance_Cosine,
		}}},
	})
	if err != nil {
		return fmt.Errorf("create collection %s: %w", r.cfg.Collection, err)
	}
	return nil
}

// Ping checks the server with the Qdrant health RPC.
func (r *Repo) Ping(ctx context.Context) error {
	if _, err := r.health.HealthCheck(ctx, &pb.HealthCheckRequest{}); err != nil {
		return fmt.Errorf("qdrant health: %w", err)
	}
	return nil
}

// Close releases the gRPC connection.
func (r *Repo) Close() {
	if r.conn != nil {
		_ = r.conn.Close()
	}
}

// Insert upserts a profile point.
func (r *Repo) Insert(ctx context.Context, p *domprofile.Profile, vec []float32) error {
	if len(vec) != r.cfg.Dimensions {
		return fmt.Errorf("%w: got %d, want %d", domain.ErrVectorDimMismatch, len(vec), r.cfg.Dimensions)
	}
	if !isPointID(p.ID()) {
		return fmt.Errorf("qdrant point id %q: not a canonical uuid", p.ID())
	}

	wait := true
	_, err := r.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: r.cfg.Collection,
		Wait:           &wait,
		Points: []*pb.PointStruct{{
			Id:      pointID(p.ID()),
			Vectors: &pb.Vectors{VectorsOptions: &pb.Vectors_Vector{Vector: &pb.Vector{Data: vec}}},
			Payload: buildPayload(p),
		}},
	})
	if err != nil {
		return fmt.Errorf("upsert %s: %w", p.ID(), err)
	}
	return nil
}

// Get returns a profile by ID. Only canonical UUIDs can exist in Qdrant.
func (r *Repo) Get(ctx context.Context, id string) (domprofile.Profile, error) {
	pt, err := r.retrieve(ctx, id)
	if err != nil {
		return domprofile.Profile{}, err
	}
	if pt == nil {
		return domprofile.Profile{}, domain.ErrProfileNotFound
	}
	return parsePayload(pt.GetId().GetUuid(), pt.GetPayload()), nil
}

// Query returns up to k nearest profiles, nearest first, never including excludeID.
func (r *Repo) Query(ctx context.Context, vec []float32, k int, excludeID string) ([]domprofile.Neighbor, error) {
	req := &pb.SearchPoints{
		CollectionName: r.cfg.Collection,
		Vector:         vec,
		Limit:          uint64(domprofile.FetchSize(k, excludeID)),
		WithPayload:    withPayload(),
	}
	if isPointID(excludeID) {
		req.Filter = &pb.Filter{MustNot: []*pb.Condition{{
			ConditionOneOf: &pb.Condition_HasId{HasId: &pb.HasIdCondition{HasId: []*pb.PointId{pointID(excludeID)}}},
		}}}
	}

	resp, err := r.points.Search(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", r.cfg.Collection, err)
	}

	neighbors := make([]domprofile.Neighbor, 0, len(resp.GetResult()))
	for _, sp := range resp.GetResult() {
		neighbors = append(neighbors, domprofile.Neighbor{
			Profile: parsePayload(sp.GetId().GetUuid(), sp.GetPayload()),
			// Qdrant reports cosine similarity for Distance_Cosine.
			Distance: 1 - float64(sp.GetScore()),
		})
	}
	return domprofile.TrimNeighbors(neighbors, k, excludeID), nil
}

// List returns up to limit profiles in point-ID order.
func (r *Repo) List(ctx context.Context, limit int) ([]domprofile.Profile, error) {
	n := uint32(limit)
	resp, err := r.points.Scroll(ctx, &pb.ScrollPoints{
		CollectionName: r.cfg.Collection,
		Limit:          &n,
		WithPayload:    withPayload(),
	})
	if err != nil {
		return nil, fmt.Errorf("scroll %s: %w", r.cfg.Collection, err)
	}
	out := make([]domprofile.Profile, 0, len(resp.GetResult()))
	for _, pt := range resp.GetResult() {
		out = append(out, parsePayload(pt.GetId().GetUuid(), pt.GetPayload()))
	}
	return out, nil
}

// Delete removes a profile and reports whether it existed.
func (r *Repo) Delete(ctx context.Context, id string) (bool, error) {
	pt, err := r.retrieve(ctx, id)
	if err != nil {
		return false, err
	}
	if pt == nil {
		return false, nil
	}

	wait := true
	_, err = r.points.Delete(ctx, &pb.DeletePoints{
		CollectionName: r.cfg.Collection,
		Wait:           &wait,
		Points: &pb.PointsSelector{PointsSelectorOneOf: &pb.PointsSelector_Points{
			Points: &pb.PointsIdsList{Ids: []*pb.PointId{pointID(id)}},
		}},
	})
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", id, err)
	}
	return true, nil
}

// Count returns the exact number of points.
func (r *Repo) Count(ctx context.Context) (int, error) {
	exact := true
	resp, err := r.points.Count(ctx, &pb.CountPoints{CollectionName: r.cfg.Collection, Exact: &exact})
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", r.cfg.Collection, err)
	}
	return int(resp.GetResult().GetCount()), nil
}

// Name returns the collection name.
func (r *Repo) Name() string { return r.cfg.Collection }

// Location returns the Qdrant endpoint.
func (r *Repo) Location() string { return "qdrant://" + r.cfg.Addr }

// retrieve returns nil without error when the point is absent or id is not
// a canonical UUID.
func (r *Repo) retrieve(ctx context.Context, id string) (*pb.RetrievedPoint, error) {
	if !isPointID(id) {
		return nil, nil //nolint:nilnil // absent
	}
	resp, err := r.points.Get(ctx, &pb.GetPoints{
		CollectionName: r.cfg.Collection,
		Ids:            []*pb.PointId{pointID(id)},
		WithPayload:    withPayload(),
	})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", id, err)
	}
	if len(resp.GetResult()) == 0 {
		return nil, nil //nolint:nilnil // absent
	}
	return resp.GetResult()[0], nil
}

// isPointID reports whether id is a UUID in the lowercase hyphenated form
// Qdrant echoes back. Qdrant would resolve "{A-B..}" or "urn:uuid:" forms to
// the same point, but profile IDs match exactly on every backend.
func isPointID(id string) bool {
	u, err := uuid.Parse(id)
	return err == nil && u.String() == id
}

func pointID(id string) *pb.PointId {
	return &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: id}}
}

func withPayload() *pb.WithPayloadSelector {
	return &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}}
}
