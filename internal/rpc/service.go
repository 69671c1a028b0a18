package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/xtding233/sticker-gacha/internal/gacha"
	"github.com/xtding233/sticker-gacha/internal/game"
	"github.com/xtding233/sticker-gacha/internal/logger"
	"github.com/xtding233/sticker-gacha/internal/session"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "gacha.v1.PullService"

const (
	methodOpenPack   = "/" + ServiceName + "/OpenPack"
	methodPityStatus = "/" + ServiceName + "/PityStatus"
	methodLedger     = "/" + ServiceName + "/Ledger"
)

// PullServiceServer is the server API. Requests and responses are
// google.protobuf.Struct values shaped like the HTTP JSON bodies.
type PullServiceServer interface {
	OpenPack(context.Context, *structpb.Struct) (*structpb.Struct, error)
	PityStatus(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Ledger(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterPullServiceServer registers srv on s.
func RegisterPullServiceServer(s grpc.ServiceRegistrar, srv PullServiceServer) {
	s.RegisterService(&pullServiceDesc, srv)
}

var pullServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PullServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "OpenPack", Handler: unaryHandler(methodOpenPack, PullServiceServer.OpenPack)},
		{MethodName: "PityStatus", Handler: unaryHandler(methodPityStatus, PullServiceServer.PityStatus)},
		{MethodName: "Ledger", Handler: unaryHandler(methodLedger, PullServiceServer.Ledger)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "gacha/v1/pull.proto",
}

type structMethod func(PullServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call structMethod) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(PullServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(PullServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// PullService implements PullServiceServer on top of the session manager.
type PullService struct {
	sessions *session.Manager
}

func NewPullService(sessions *session.Manager) *PullService {
	return &PullService{sessions: sessions}
}

var _ PullServiceServer = (*PullService)(nil)

// OpenPack expects {"session_id", "pack"}.
func (p *PullService) OpenPack(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := requiredString(in, "session_id")
	if err != nil {
		return nil, err
	}
	packID, err := requiredString(in, "pack")
	if err != nil {
		return nil, err
	}
	ctx = logger.WithSessionID(ctx, id)

	var (
		res     gacha.PackResult
		balance int
		opened  bool
	)
	err = p.sessions.With(ctx, id, func(s *session.Session) error {
		pack, ok := s.Game().Pack(packID)
		if !ok {
			return fmt.Errorf("%w: %s", game.ErrUnknownPack, packID)
		}
		var err error
		res, err = s.OpenPack(ctx, pack)
		opened = err == nil
		balance = s.Balance()
		return err
	})
	if opened && errors.Is(err, session.ErrNotSaved) {
		logger.FromContext(ctx).Warn("Pack opened but session not saved", "pack", packID, "error", err)
		err = nil
	}
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	if res.IsDeclined() {
		return toStruct(map[string]any{
			"declined": true,
			"reason":   res.Declined.Reason,
			"cost":     res.Declined.Cost,
			"balance":  balance,
		})
	}
	return toStruct(map[string]any{"results": res.Pulls, "balance": balance})
}

// PityStatus expects {"session_id"}.
func (p *PullService) PityStatus(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := requiredString(in, "session_id")
	if err != nil {
		return nil, err
	}
	var st []gacha.PityStatus
	if err := p.sessions.With(ctx, id, func(s *session.Session) error {
		st = s.PityStatus()
		return nil
	}); err != nil {
		return nil, toStatus(ctx, err)
	}
	return toStruct(map[string]any{"tiers": st})
}

// Ledger expects {"session_id", "limit"?}.
func (p *PullService) Ledger(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := requiredString(in, "session_id")
	if err != nil {
		return nil, err
	}
	limit := 20
	if v, ok := in.GetFields()["limit"]; ok {
		n := v.GetNumberValue()
		if n < 0 || n > 1000 || n != float64(int(n)) {
			return nil, status.Error(codes.InvalidArgument, "limit must be an integer in [0, 1000]")
		}
		limit = int(n)
	}
	var pulls []gacha.PullResult
	if err := p.sessions.With(ctx, id, func(s *session.Session) error {
		pulls = s.Ledger(limit)
		return nil
	}); err != nil {
		return nil, toStatus(ctx, err)
	}
	return toStruct(map[string]any{"results": pulls})
}

func requiredString(in *structpb.Struct, key string) (string, error) {
	v := in.GetFields()[key].GetStringValue()
	if v == "" {
		return "", status.Errorf(codes.InvalidArgument, "%s is required", key)
	}
	return v, nil
}

func toStatus(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, session.ErrSessionNotFound), errors.Is(err, game.ErrUnknownPack):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, gacha.ErrInvalidRequest):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	default:
		logger.FromContext(ctx).Error("Pull service call failed", "error", err)
		return status.Error(codes.Internal, "internal error")
	}
}

// toStruct converts a JSON-shaped value into a protobuf Struct.
func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return s, nil
}
