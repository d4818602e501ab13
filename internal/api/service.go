package api

import (
	"context"
	"errors"
	"strings"
	"time"

	"pantry/internal/domain"
	"pantry/internal/expiry"
	"pantry/internal/models"
	"pantry/internal/service"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const serviceName = "pantry.v1.PantryService"

// PantryServer is the read-only RPC surface. Requests and responses are
// google.protobuf.Struct documents.
type PantryServer interface {
	ListItems(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListExpiring(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListCategories(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

var pantryServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*PantryServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListItems", Handler: unaryHandler(grpcListItems, PantryServer.ListItems)},
		{MethodName: "ListExpiring", Handler: unaryHandler(grpcListExpiring, PantryServer.ListExpiring)},
		{MethodName: "ListCategories", Handler: unaryHandler(grpcListCategories, PantryServer.ListCategories)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "pantry/v1/pantry.proto",
}

func RegisterPantryServer(s grpc.ServiceRegistrar, srv PantryServer) {
	s.RegisterService(&pantryServiceDesc, srv)
}

func unaryHandler(
	fullMethod string,
	call func(PantryServer, context.Context, *structpb.Struct) (*structpb.Struct, error),
) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(PantryServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(PantryServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// PantryService implements PantryServer on top of the item service.
type PantryService struct {
	svc domain.PantryService
	loc *time.Location
	now func() time.Time
}

func NewPantryService(svc domain.PantryService, loc *time.Location) *PantryService {
	if loc == nil {
		loc = time.Local
	}
	return &PantryService{svc: svc, loc: loc, now: time.Now}
}

func (s *PantryService) ListItems(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var (
		items []*models.Item
		err   error
	)
	if category := strings.TrimSpace(stringField(req, "category")); category != "" {
		items, err = s.svc.ListByCategory(ctx, category)
	} else {
		items, err = s.svc.ListItems(ctx)
	}
	if err != nil {
		return nil, grpcError(err)
	}

	today := expiry.Normalize(s.now().In(s.loc))
	list := make([]any, 0, len(items))
	for _, it := range items {
		list = append(list, itemFields(it, today, s.loc))
	}
	return newStruct(map[string]any{"items": list})
}

func (s *PantryService) ListExpiring(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	now := s.now()
	if raw := strings.TrimSpace(stringField(req, "date")); raw != "" {
		d, err := time.ParseInLocation("2006-01-02", raw, s.loc)
		if err != nil {
			return nil, status.Error(codes.InvalidArgument, "invalid date format; expected YYYY-MM-DD")
		}
		now = d
	}

	dueToday, dueSoon, err := s.svc.Expiring(ctx, now)
	if err != nil {
		return nil, grpcError(err)
	}
	return newStruct(map[string]any{
		"due_today": entryList(dueToday),
		"due_soon":  entryList(dueSoon),
	})
}

func (s *PantryService) ListCategories(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	summaries, err := s.svc.CategorySummaries(ctx)
	if err != nil {
		return nil, grpcError(err)
	}
	list := make([]any, 0, len(summaries))
	for _, c := range summaries {
		list = append(list, map[string]any{
			"name":  c.Name,
			"color": c.Color.Hex(),
			"icon":  c.Icon,
			"count": c.Count,
		})
	}
	return newStruct(map[string]any{"categories": list})
}

func itemFields(it *models.Item, today time.Time, loc *time.Location) map[string]any {
	st := expiry.StatusOf(it, today)
	m := map[string]any{
		"id":       it.ID,
		"name":     it.Name,
		"category": it.Category,
		"count":    it.Count,
		"barcode":  it.Barcode,
		"location": it.StorageLocation,
		"status":   st.Label,
		"severity": string(st.Severity),
	}
	if it.HasExpiration() {
		m["expiration_date"] = it.ExpirationDate.In(loc).Format("2006-01-02")
	}
	return m
}

func entryList(entries []models.ExpiringEntry) []any {
	out := make([]any, 0, len(entries))
	for _, e := range entries {
		out = append(out, map[string]any{
			"item_id": e.ItemID,
			"name":    e.Name,
			"days":    e.Days,
			"label":   e.Label,
		})
	}
	return out
}

func stringField(s *structpb.Struct, key string) string {
	if s == nil {
		return ""
	}
	if v, ok := s.GetFields()[key]; ok {
		return v.GetStringValue()
	}
	return ""
}

func newStruct(m map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, "failed to encode response")
	}
	return out, nil
}

func grpcError(err error) error {
	switch {
	case errors.Is(err, service.ErrItemNotFound), errors.Is(err, service.ErrCategoryNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, service.ErrInvalidItem), errors.Is(err, service.ErrInvalidCategory):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}
