package client

import (
	"context"
	"gatepass/pkg/model"
	"gatepass/pkg/viewmodel"
	"net/url"
)

const apiPrefix = "/api"

type RegisterResponse struct {
	Message string             `json:"message"`
	GroupID string             `json:"groupId"`
	Group   model.VisitorGroup `json:"group"`
}

type CheckoutResponse struct {
	Message string             `json:"message"`
	Updated model.VisitorGroup `json:"updated"`
}

// GatepassClient calls the gatepass HTTP API. Admin calls need a token from
// Login, either directly or restored with SetToken.
type GatepassClient struct {
	httpClient *HttpClient
}

func NewGatepassClient(baseURL string) *GatepassClient {
	return &GatepassClient{httpClient: NewHttpClient(baseURL)}
}

func (c *GatepassClient) SetToken(token string) {
	c.httpClient.SetToken(token)
}

func (c *GatepassClient) Login(ctx context.Context, email, password string) (*model.AuthResponse, error) {
	resp, err := c.httpClient.POST(ctx, apiPrefix+"/auth/login", model.Credentials{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	var out model.AuthResponse
	if err := resp.Into(&out); err != nil {
		return nil, err
	}
	c.httpClient.SetToken(out.Token)
	return &out, nil
}

func (c *GatepassClient) SignUp(ctx context.Context, reg model.UserRegistration) (*model.AuthResponse, error) {
	resp, err := c.httpClient.POST(ctx, apiPrefix+"/auth/register", reg)
	if err != nil {
		return nil, err
	}
	var out model.AuthResponse
	if err := resp.Into(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *GatepassClient) SendOTP(ctx context.Context, phone string) (*model.OTPSendResponse, error) {
	resp, err := c.httpClient.POST(ctx, apiPrefix+"/otp/send", model.OTPSendRequest{PhoneNumber: phone})
	if err != nil {
		return nil, err
	}
	var out model.OTPSendResponse
	if err := resp.Into(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *GatepassClient) VerifyOTP(ctx context.Context, phone, code string) (*model.OTPVerifyResponse, error) {
	resp, err := c.httpClient.POST(ctx, apiPrefix+"/otp/verify", model.OTPVerifyRequest{PhoneNumber: phone, Code: code})
	if err != nil {
		return nil, err
	}
	var out model.OTPVerifyResponse
	if err := resp.Into(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RegisterVisitors sends idempotencyKey when set so a retried submit does not
// create a second group.
func (c *GatepassClient) RegisterVisitors(ctx context.Context, reg model.VisitorRegistration, idempotencyKey string) (*RegisterResponse, error) {
	var headers map[string]string
	if idempotencyKey != "" {
		headers = map[string]string{"Idempotency-Key": idempotencyKey}
	}
	resp, err := c.httpClient.POSTWithHeaders(ctx, apiPrefix+"/visitors/register", reg, headers)
	if err != nil {
		return nil, err
	}
	var out RegisterResponse
	if err := resp.Into(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *GatepassClient) Checkout(ctx context.Context, groupID string) (*CheckoutResponse, error) {
	resp, err := c.httpClient.POST(ctx, apiPrefix+"/visitors/exit", model.CheckoutRequest{GroupID: groupID})
	if err != nil {
		return nil, err
	}
	var out CheckoutResponse
	if err := resp.Into(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *GatepassClient) ListVisitors(ctx context.Context) ([]model.VisitorGroup, error) {
	resp, err := c.httpClient.GET(ctx, apiPrefix+"/visitors")
	if err != nil {
		return nil, err
	}
	out := []model.VisitorGroup{}
	if err := resp.Into(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *GatepassClient) GetVisitorGroup(ctx context.Context, groupID string) (*model.VisitorGroup, error) {
	resp, err := c.httpClient.GET(ctx, apiPrefix+"/visitors/"+url.PathEscape(groupID))
	if err != nil {
		return nil, err
	}
	var out model.VisitorGroup
	if err := resp.Into(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *GatepassClient) Dashboard(ctx context.Context, search string, status viewmodel.StatusFilter) (*viewmodel.Dashboard, error) {
	q := url.Values{}
	if search != "" {
		q.Set("search", search)
	}
	if status != "" {
		q.Set("status", string(status))
	}
	path := apiPrefix + "/visitors/dashboard"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	resp, err := c.httpClient.GET(ctx, path)
	if err != nil {
		return nil, err
	}
	var out viewmodel.Dashboard
	if err := resp.Into(&out); err != nil {
		return nil, err
	}
	return &out, nil
}
