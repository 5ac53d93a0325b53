package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Joker-Pro-Max/Pineapple/pkg/logger"

	"github.com/go-resty/resty/v2"
)

// WechatSession jscode2session 返回的会话信息
type WechatSession struct {
	OpenID     string `json:"openid"`
	UnionID    string `json:"unionid"`
	SessionKey string `json:"session_key"`
	ErrCode    int    `json:"errcode"`
	ErrMsg     string `json:"errmsg"`
}

// WechatClient 微信小程序接口
type WechatClient interface {
	// Code2Session 用登录code换取openid/unionid
	Code2Session(ctx context.Context, code string) (*WechatSession, error)
}

// wechatClient resty实现
type wechatClient struct {
	httpClient *resty.Client
	appID      string
	appSecret  string
}

// NewWechatClient 创建微信客户端
func NewWechatClient(baseURL, appID, appSecret string, timeout time.Duration) WechatClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(200*time.Millisecond).
		SetHeader("Accept", "application/json")

	return &wechatClient{
		httpClient: client,
		appID:      appID,
		appSecret:  appSecret,
	}
}

// Code2Session 调用 /sns/jscode2session
func (c *wechatClient) Code2Session(ctx context.Context, code string) (*WechatSession, error) {
	var session WechatSession
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"appid":      c.appID,
			"secret":     c.appSecret,
			"js_code":    code,
			"grant_type": "authorization_code",
		}).
		ForceContentType("application/json").
		SetResult(&session).
		Get("/sns/jscode2session")
	if err != nil {
		logger.Error("[WECHAT] jscode2session request failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrWechatLogin, err)
	}
	if resp.IsError() {
		logger.Error("[WECHAT] jscode2session status=%d", resp.StatusCode())
		return nil, fmt.Errorf("%w: status %d", ErrWechatLogin, resp.StatusCode())
	}
	if session.ErrCode != 0 || session.OpenID == "" {
		logger.Warn("[WECHAT] jscode2session errcode=%d errmsg=%s", session.ErrCode, session.ErrMsg)
		return nil, fmt.Errorf("%w: errcode %d", ErrWechatLogin, session.ErrCode)
	}
	return &session, nil
}
