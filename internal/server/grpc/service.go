package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified name of the admin console API.
const ServiceName = "signin.admin.v1.AccountAdmin"

const (
	SignInMethod            = "/" + ServiceName + "/SignIn"
	ListAccountsMethod      = "/" + ServiceName + "/ListAccounts"
	GetAccountMethod        = "/" + ServiceName + "/GetAccount"
	CreateAccountMethod     = "/" + ServiceName + "/CreateAccount"
	DeactivateAccountMethod = "/" + ServiceName + "/DeactivateAccount"
	ExportAccountsMethod    = "/" + ServiceName + "/ExportAccounts"
)

// AccountAdminServer is the server API of signin.admin.v1.AccountAdmin.
// Messages are protobuf well-known types so no generated code is needed:
// accounts travel as structpb.Struct, emails as wrapperspb.StringValue.
type AccountAdminServer interface {
	SignIn(context.Context, *structpb.Struct) (*wrapperspb.StringValue, error)
	ListAccounts(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetAccount(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	CreateAccount(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeactivateAccount(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
	ExportAccounts(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func RegisterAccountAdminServer(s grpc.ServiceRegistrar, srv AccountAdminServer) {
	s.RegisterService(&AccountAdminServiceDesc, srv)
}

// unary adapts a typed method to a grpc.MethodDesc handler.
func unary[Req any, PReq interface{ *Req }, Resp any](method string, call func(AccountAdminServer, context.Context, PReq) (Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := PReq(new(Req))
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(AccountAdminServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(AccountAdminServer), ctx, req.(PReq))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var AccountAdminServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AccountAdminServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "SignIn",
			Handler:    unary[structpb.Struct](SignInMethod, AccountAdminServer.SignIn),
		},
		{
			MethodName: "ListAccounts",
			Handler:    unary[structpb.Struct](ListAccountsMethod, AccountAdminServer.ListAccounts),
		},
		{
			MethodName: "GetAccount",
			Handler:    unary[wrapperspb.StringValue](GetAccountMethod, AccountAdminServer.GetAccount),
		},
		{
			MethodName: "CreateAccount",
			Handler:    unary[structpb.Struct](CreateAccountMethod, AccountAdminServer.CreateAccount),
		},
		{
			MethodName: "DeactivateAccount",
			Handler:    unary[wrapperspb.StringValue](DeactivateAccountMethod, AccountAdminServer.DeactivateAccount),
		},
		{
			MethodName: "ExportAccounts",
			Handler:    unary[structpb.Struct](ExportAccountsMethod, AccountAdminServer.ExportAccounts),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "signin/admin/v1/account_admin.proto",
}

// AccountAdminClient calls signin.admin.v1.AccountAdmin.
type AccountAdminClient struct {
	cc grpc.ClientConnInterface
}

func NewAccountAdminClient(cc grpc.ClientConnInterface) *AccountAdminClient {
	return &AccountAdminClient{cc: cc}
}

func (c *AccountAdminClient) SignIn(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, SignInMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AccountAdminClient) ListAccounts(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ListAccountsMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AccountAdminClient) GetAccount(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, GetAccountMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AccountAdminClient) CreateAccount(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, CreateAccountMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AccountAdminClient) DeactivateAccount(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, DeactivateAccountMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AccountAdminClient) ExportAccounts(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ExportAccountsMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
