package api

import (
	"context"
	"net"
	"testing"
	"time"

	"pantry/internal/config"
	"pantry/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

func newBufconnClient(t *testing.T, cfg *config.APIConfig) (*grpc.ClientConn, *PantryService) {
	t.Helper()
	svc := newTestService(t)
	ctx := context.Background()

	exp := testDay(1)
	require.NoError(t, svc.AddItem(ctx, &models.Item{Name: "Milk", Category: "Dairy", ExpirationDate: &exp}))
	require.NoError(t, svc.AddItem(ctx, &models.Item{Name: "Baguette", Category: "Bread", Count: 2}))

	pantry := NewPantryService(svc, time.UTC)
	pantry.now = func() time.Time { return testNow }
	srv, err := newGRPCServer(cfg, pantry, nil)
	require.NoError(t, err)

	lis := bufconn.Listen(1 << 20)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn, pantry
}

func invoke(ctx context.Context, conn *grpc.ClientConn, method string, req map[string]any) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(req)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := conn.Invoke(ctx, method, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func TestGRPC_ListItems(t *testing.T) {
	conn, _ := newBufconnClient(t, &config.APIConfig{})

	out, err := invoke(context.Background(), conn, grpcListItems, nil)
	require.NoError(t, err)
	items := out.GetFields()["items"].GetListValue().GetValues()
	require.Len(t, items, 2)

	milk := items[0].GetStructValue().AsMap()
	assert.Equal(t, "Milk", milk["name"])
	assert.Equal(t, "2024-03-11", milk["expiration_date"])
	assert.Equal(t, "tomorrow", milk["status"])

	out, err = invoke(context.Background(), conn, grpcListItems, map[string]any{"category": "Bread"})
	require.NoError(t, err)
	items = out.GetFields()["items"].GetListValue().GetValues()
	require.Len(t, items, 1)
	assert.Equal(t, float64(2), items[0].GetStructValue().AsMap()["count"])
}

func TestGRPC_ListExpiring(t *testing.T) {
	conn, _ := newBufconnClient(t, &config.APIConfig{})

	out, err := invoke(context.Background(), conn, grpcListExpiring, nil)
	require.NoError(t, err)
	m := out.AsMap()
	assert.Empty(t, m["due_today"])
	soon := m["due_soon"].([]any)
	require.Len(t, soon, 1)
	assert.Equal(t, "Milk (in 1 days)", soon[0].(map[string]any)["label"])

	out, err = invoke(context.Background(), conn, grpcListExpiring, map[string]any{"date": "2024-03-11"})
	require.NoError(t, err)
	today := out.AsMap()["due_today"].([]any)
	require.Len(t, today, 1)
	assert.Equal(t, "Milk", today[0].(map[string]any)["label"])

	_, err = invoke(context.Background(), conn, grpcListExpiring, map[string]any{"date": "soon"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestGRPC_ListCategories(t *testing.T) {
	conn, _ := newBufconnClient(t, &config.APIConfig{})

	out, err := invoke(context.Background(), conn, grpcListCategories, nil)
	require.NoError(t, err)
	cats := out.AsMap()["categories"].([]any)
	require.Len(t, cats, 2)
	first := cats[0].(map[string]any)
	assert.Equal(t, "Dairy", first["name"])
	assert.Equal(t, float64(1), first["count"])
}

func TestGRPC_Auth(t *testing.T) {
	cfg := &config.APIConfig{
		Enabled: true,
		Auth: config.APIAuthConfig{
			Enabled: true,
			APIKeys: []config.APIClientKey{{Key: "reader", Permissions: []string{permReadItems}}},
		},
	}
	conn, _ := newBufconnClient(t, cfg)

	_, err := invoke(context.Background(), conn, grpcListItems, nil)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	ctx := metadata.AppendToOutgoingContext(context.Background(), "x-api-key", "reader")
	_, err = invoke(ctx, conn, grpcListItems, nil)
	assert.NoError(t, err)

	_, err = invoke(ctx, conn, grpcListCategories, nil)
	assert.Equal(t, codes.PermissionDenied, status.Code(err))
}

func TestAuthInterceptor_RateLimit(t *testing.T) {
	cfg := config.APIConfig{
		Enabled:   true,
		Auth:      config.APIAuthConfig{Enabled: false},
		RateLimit: config.APIRateLimitConfig{RPS: 1, Burst: 1},
	}

	interceptor := NewAuthInterceptor(&cfg).Unary()
	info := &grpc.UnaryServerInfo{FullMethod: "test"}
	handler := func(_ context.Context, req any) (any, error) { return "ok", nil }

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("x-api-key", "key1"))

	// First request - ok
	_, err := interceptor(ctx, "req", info, handler)
	assert.NoError(t, err)

	// Second request - blocked
	_, err = interceptor(ctx, "req", info, handler)
	assert.Error(t, err)
	assert.Equal(t, codes.ResourceExhausted, status.Code(err))
}

func TestAuthInterceptor_MissingMetadata(t *testing.T) {
	cfg := config.APIConfig{Enabled: true, Auth: config.APIAuthConfig{Enabled: true}}
	interceptor := NewAuthInterceptor(&cfg).Unary()
	info := &grpc.UnaryServerInfo{FullMethod: grpcListItems}

	_, err := interceptor(context.Background(), "req", info, func(context.Context, any) (any, error) { return "ok", nil })
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestRequiredPermission(t *testing.T) {
	tests := []struct {
		method string
		want   string
	}{
		{"/pantry.v1.PantryService/ListItems", permReadItems},
		{"/pantry.v1.PantryService/ListExpiring", permReadItems},
		{"/pantry.v1.PantryService/ListCategories", permReadCategories},
		{"other", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, requiredPermission(tt.method))
	}
}

func TestGRPCServer_New(t *testing.T) {
	svc := newTestService(t)
	cfg := config.APIConfig{GRPC: config.APIGRPCConfig{Port: 0, Reflection: true}}

	s, err := NewGRPCServer(&cfg, svc, time.UTC, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, s.Addr())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	s.Shutdown(ctx)
}

func TestBuildTLSConfig(t *testing.T) {
	_, err := buildTLSConfig(config.APITLSConfig{Enabled: true})
	assert.Error(t, err)

	_, err = buildTLSConfig(config.APITLSConfig{Enabled: true, CertFile: "/nonexistent", KeyFile: "/nonexistent"})
	assert.Error(t, err)
}
