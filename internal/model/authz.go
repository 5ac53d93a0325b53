package model

import (
	"net/http"
	"strings"
	"time"
)

// 权限校验请求头
const (
	HeaderSystemCode         = "X-System-Code"
	HeaderRequiredPermission = "X-Required-Permission"
	HeaderPermissionLogic    = "X-Permission-Logic"
)

// PermissionLogic 多个权限码的组合方式
type PermissionLogic string

const (
	LogicAnd PermissionLogic = "AND"
	LogicOr  PermissionLogic = "OR"
)

// ParsePermissionLogic 大小写不敏感，无法识别时按OR处理
func ParsePermissionLogic(raw string) PermissionLogic {
	if strings.EqualFold(strings.TrimSpace(raw), string(LogicAnd)) {
		return LogicAnd
	}
	return LogicOr
}

// ParseRequiredPermissions 按逗号拆分，去掉首尾空白并丢弃空项
func ParseRequiredPermissions(raw string) []string {
	var codes []string
	for _, part := range strings.Split(raw, ",") {
		if code := strings.TrimSpace(part); code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}

// AccessRequest 一次授权判定的输入
type AccessRequest struct {
	SystemCode          string
	RequiredPermissions []string
	Logic               PermissionLogic
	BearerToken         string
	Method              string
	Path                string
	ClientIP            string
	UserAgent           string
}

// RequiresCheck 是否声明了权限要求
func (r *AccessRequest) RequiresCheck() bool {
	return r.SystemCode != "" && len(r.RequiredPermissions) > 0
}

// DecisionOutcome 判定结果分类
type DecisionOutcome string

const (
	OutcomeNotRequired     DecisionOutcome = "not_required"
	OutcomeSuperAdmin      DecisionOutcome = "super_admin"
	OutcomeGranted         DecisionOutcome = "granted"
	OutcomeUnauthenticated DecisionOutcome = "unauthenticated"
	OutcomeInvalidToken    DecisionOutcome = "invalid_token"
	OutcomeForbidden       DecisionOutcome = "forbidden"
	OutcomeResolverFailure DecisionOutcome = "resolver_failure"
)

// Decision 授权判定结果
type Decision struct {
	Allowed   bool
	Outcome   DecisionOutcome
	Status    int
	Message   string
	Principal *Principal
	Claims    *TokenClaims
	Err       error
	DecidedAt time.Time
}

// Allow 放行
func Allow(outcome DecisionOutcome, principal *Principal) *Decision {
	return &Decision{
		Allowed:   true,
		Outcome:   outcome,
		Status:    http.StatusOK,
		Principal: principal,
		DecidedAt: time.Now(),
	}
}

// Deny 拒绝，状态码由结果分类决定
func Deny(outcome DecisionOutcome, principal *Principal, err error) *Decision {
	d := &Decision{
		Outcome:   outcome,
		Principal: principal,
		Err:       err,
		DecidedAt: time.Now(),
	}
	switch outcome {
	case OutcomeUnauthenticated:
		d.Status = http.StatusUnauthorized
		d.Message = "未认证或用户不存在"
	case OutcomeInvalidToken:
		d.Status = http.StatusUnauthorized
		d.Message = "Token无效或已过期"
	case OutcomeResolverFailure:
		d.Status = http.StatusServiceUnavailable
		d.Message = "权限服务暂不可用"
	default:
		d.Outcome = OutcomeForbidden
		d.Status = http.StatusForbidden
		d.Message = "您没有执行此操作的权限"
	}
	return d
}
