package handler

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// 管理サービスのメソッド名
const (
	AdminServiceName                              = "mobipaid.admin.v1.AdminService"
	AdminService_ProcessRefund_FullMethodName     = "/mobipaid.admin.v1.AdminService/ProcessRefund"
	AdminService_ChangeOrderStatus_FullMethodName = "/mobipaid.admin.v1.AdminService/ChangeOrderStatus"
	AdminService_GetOrder_FullMethodName          = "/mobipaid.admin.v1.AdminService/GetOrder"
	AdminService_GetGateway_FullMethodName        = "/mobipaid.admin.v1.AdminService/GetGateway"
)

// AdminServiceServer 管理サービスのサーバーインターフェース
type AdminServiceServer interface {
	ProcessRefund(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ChangeOrderStatus(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetOrder(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetGateway(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

// RegisterAdminServiceServer 管理サービスを登録
func RegisterAdminServiceServer(s grpc.ServiceRegistrar, srv AdminServiceServer) {
	s.RegisterService(&AdminService_ServiceDesc, srv)
}

// AdminService_ServiceDesc 管理サービスのサービス定義
var AdminService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: AdminServiceName,
	HandlerType: (*AdminServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ProcessRefund", Handler: _AdminService_ProcessRefund_Handler},
		{MethodName: "ChangeOrderStatus", Handler: _AdminService_ChangeOrderStatus_Handler},
		{MethodName: "GetOrder", Handler: _AdminService_GetOrder_Handler},
		{MethodName: "GetGateway", Handler: _AdminService_GetGateway_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "mobipaid/admin/v1/admin.proto",
}

func _AdminService_ProcessRefund_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AdminServiceServer).ProcessRefund(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: AdminService_ProcessRefund_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AdminServiceServer).ProcessRefund(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func _AdminService_ChangeOrderStatus_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AdminServiceServer).ChangeOrderStatus(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: AdminService_ChangeOrderStatus_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AdminServiceServer).ChangeOrderStatus(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func _AdminService_GetOrder_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AdminServiceServer).GetOrder(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: AdminService_GetOrder_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AdminServiceServer).GetOrder(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func _AdminService_GetGateway_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AdminServiceServer).GetGateway(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: AdminService_GetGateway_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AdminServiceServer).GetGateway(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// AdminServiceClient 管理サービスのクライアント
type AdminServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewAdminServiceClient 新しいAdminServiceClientを作成
func NewAdminServiceClient(cc grpc.ClientConnInterface) *AdminServiceClient {
	return &AdminServiceClient{cc: cc}
}

// ProcessRefund 一部返金
func (c *AdminServiceClient) ProcessRefund(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, AdminService_ProcessRefund_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// ChangeOrderStatus 注文ステータス変更
func (c *AdminServiceClient) ChangeOrderStatus(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, AdminService_ChangeOrderStatus_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// GetOrder 注文取得
func (c *AdminServiceClient) GetOrder(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, AdminService_GetOrder_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// GetGateway ゲートウェイ情報取得
func (c *AdminServiceClient) GetGateway(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, AdminService_GetGateway_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
