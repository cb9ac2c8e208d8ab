package grpc

import (
	"context"
	"errors"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/dmitrijs2005/signin/internal/common"
	"github.com/dmitrijs2005/signin/internal/server/admin"
	"github.com/dmitrijs2005/signin/internal/server/forms"
	"github.com/dmitrijs2005/signin/internal/server/models"
)

var _ AccountAdminServer = (*GRPCServer)(nil)

// toStatus maps domain errors onto gRPC status codes.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	if ve, ok := forms.AsValidationError(err); ok {
		return status.Error(codes.InvalidArgument, ve.Error())
	}
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, common.ErrorUnauthorized), errors.Is(err, common.ErrorUnauthenticated):
		return status.Error(codes.Unauthenticated, "unauthorized")
	case errors.Is(err, common.ErrorForbidden):
		return status.Error(codes.PermissionDenied, "forbidden")
	case errors.Is(err, admin.ErrExportUnavailable):
		return status.Error(codes.Unavailable, err.Error())
	}
	s.logger.Error(ctx, err.Error())
	return status.Error(codes.Internal, "internal error")
}

func str(in *structpb.Struct, key string) string {
	return in.GetFields()[key].GetStringValue()
}

func accountStruct(a *models.Account) map[string]any {
	m := map[string]any{
		"id":           a.ID,
		"email":        a.Email,
		"first_name":   a.FirstName,
		"last_name":    a.LastName,
		"title":        a.Title,
		"phone":        a.Phone,
		"is_staff":     a.IsStaff,
		"is_superuser": a.IsSuperuser,
		"is_active":    a.IsActive,
		"date_joined":  a.DateJoined.UTC().Format(time.RFC3339),
		"last_login":   nil,
	}
	if a.LastLogin != nil {
		m["last_login"] = a.LastLogin.UTC().Format(time.RFC3339)
	}
	return m
}

// changeListParams reads {"q": string, "is_staff": bool, "page": number}.
func changeListParams(in *structpb.Struct) admin.ChangeListParams {
	p := admin.ChangeListParams{Query: str(in, "q"), Page: int(in.GetFields()["page"].GetNumberValue())}
	if v, ok := in.GetFields()[admin.FieldIsStaff].GetKind().(*structpb.Value_BoolValue); ok {
		staff := v.BoolValue
		p.IsStaff = &staff
	}
	return p
}

// SignIn exchanges {"email", "password"} for an access token.
func (s *GRPCServer) SignIn(ctx context.Context, req *structpb.Struct) (*wrapperspb.StringValue, error) {

	token, account, err := s.sessions.Login(ctx, str(req, "email"), str(req, "password"))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	s.logger.Info(ctx, "Signed in", "email", account.Email)
	return wrapperspb.String(token), nil

}

func (s *GRPCServer) ListAccounts(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {

	cl, err := s.console.ChangeList(ctx, changeListParams(req))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	list := make([]any, 0, len(cl.Accounts))
	for _, a := range cl.Accounts {
		list = append(list, accountStruct(a))
	}

	out, err := structpb.NewStruct(map[string]any{
		"accounts": list,
		"total":    cl.Total,
		"page":     cl.Params.Page,
		"pages":    cl.Pages,
	})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return out, nil

}

func (s *GRPCServer) GetAccount(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {

	account, err := s.console.Get(ctx, req.GetValue())
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	out, err := structpb.NewStruct(accountStruct(account))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return out, nil

}

// CreateAccount runs the creation form on {"email", "first_name",
// "last_name", "password1", "password2"}.
func (s *GRPCServer) CreateAccount(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {

	f := forms.CreationForm{
		Email:     str(req, models.FieldEmail),
		FirstName: str(req, models.FieldFirstName),
		LastName:  str(req, models.FieldLastName),
		Password1: str(req, forms.FieldPassword1),
		Password2: str(req, forms.FieldPassword2),
	}

	account, err := s.console.Add(ctx, f)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	s.logger.Info(ctx, "Account created", "email", account.Email, "by", actor(ctx))

	out, err := structpb.NewStruct(accountStruct(account))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return out, nil

}

func (s *GRPCServer) DeactivateAccount(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {

	account, err := s.console.Deactivate(ctx, req.GetValue())
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	s.logger.Info(ctx, "Account deactivated", "email", account.Email, "by", actor(ctx))
	return &emptypb.Empty{}, nil

}

// ExportAccounts takes the ListAccounts filters and returns
// {"key", "url", "count"}.
func (s *GRPCServer) ExportAccounts(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {

	res, err := s.console.Export(ctx, changeListParams(req))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	out, err := structpb.NewStruct(map[string]any{
		"key":   res.Key,
		"url":   res.URL,
		"count": res.Count,
	})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return out, nil

}
