package boot

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Joker-Pro-Max/Pineapple/internal/audit"
	"github.com/Joker-Pro-Max/Pineapple/internal/model"
	"github.com/Joker-Pro-Max/Pineapple/pkg/config"
	"github.com/Joker-Pro-Max/Pineapple/pkg/metrics"
	"github.com/Joker-Pro-Max/Pineapple/pkg/redis"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// app 完整装配的服务，数据库为内存sqlite
type app struct {
	t        *testing.T
	engine   *gin.Engine
	services *Services
	audit    *AuditComponents
}

func newApp(t *testing.T) *app {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, AutoMigrate(db))

	mr := miniredis.RunT(t)
	redisClient := redis.NewFromAddr(mr.Addr())
	t.Cleanup(func() { _ = redisClient.Close() })

	cfg := &config.Config{
		JWT:    config.JWTConfig{Secret: "boot-test", AccessTokenExpire: 15, RefreshTokenExpire: 60},
		Wechat: config.WechatConfig{BaseURL: "http://127.0.0.1:1", Timeout: 1},
		Audit:  config.AuditConfig{Enabled: true, LogDir: t.TempDir()},
	}

	auditComponents, err := InitAudit(&cfg.Audit)
	require.NoError(t, err)
	t.Cleanup(func() { _ = auditComponents.Close() })

	m := metrics.New()
	services, err := InitServices(cfg, InitRepositories(db, nil), nil, redisClient, m, auditComponents.Recorder)
	require.NoError(t, err)

	engine := gin.New()
	InitRouter(engine, services, InitHandlers(services, auditComponents), auditComponents, m)
	return &app{t: t, engine: engine, services: services, audit: auditComponents}
}

// call 发送请求，headers中的键值成对出现
func (a *app) call(method, path, token string, body interface{}, headers ...string) (int, map[string]interface{}) {
	a.t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(a.t, err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	var resp map[string]interface{}
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "text/plain; charset=utf-8" {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	return w.Code, resp
}

func data(resp map[string]interface{}) map[string]interface{} {
	d, _ := resp["data"].(map[string]interface{})
	return d
}

func (a *app) login(account, password string) string {
	a.t.Helper()
	status, resp := a.call(http.MethodPost, "/api/v1/account/login", "", model.LoginRequest{Account: account, Password: password})
	require.Equal(a.t, http.StatusOK, status, resp)
	return data(resp)["access"].(string)
}

func (a *app) create(path, token string, body interface{}) string {
	a.t.Helper()
	status, resp := a.call(http.MethodPost, path, token, body)
	require.Equal(a.t, http.StatusCreated, status, resp)
	return data(resp)["uuid"].(string)
}

func TestAccessControlEndToEnd(t *testing.T) {
	a := newApp(t)
	ctx := context.Background()

	account, password, created, err := a.services.SuperuserService.EnsureSuperuser(ctx)
	require.NoError(t, err)
	require.True(t, created)
	root := a.login(account, password)

	// 管理员建系统、权限和角色
	a.create("/api/v1/account/systems/create", root, model.CreateSystemRequest{SystemCode: "crm", SystemName: "CRM"})
	readUUID := a.create("/api/v1/account/permission/create", root, model.CreatePermissionRequest{PermissionCode: "doc.read", PermissionName: "读"})
	a.create("/api/v1/account/permission/create", root, model.CreatePermissionRequest{PermissionCode: "doc.write", PermissionName: "写"})
	roleUUID := a.create("/api/v1/account/role/create", root, model.CreateRoleRequest{RoleName: "reader", SystemCode: "crm"})

	status, _ := a.call(http.MethodPut, "/api/v1/account/role/"+roleUUID+"/permissions", root, model.AssignRequest{UUIDs: []string{readUUID}})
	require.Equal(t, http.StatusOK, status)

	// 普通用户注册后授予角色
	status, resp := a.call(http.MethodPost, "/api/v1/account/register", "", model.RegisterRequest{Email: "alice@example.com", Password: "secret1"})
	require.Equal(t, http.StatusCreated, status, resp)
	aliceUUID := data(resp)["user"].(map[string]interface{})["uuid"].(string)
	status, _ = a.call(http.MethodPut, "/api/v1/account/user/"+aliceUUID+"/roles", root, model.AssignRequest{UUIDs: []string{roleUUID}})
	require.Equal(t, http.StatusOK, status)
	alice := a.login("alice@example.com", "secret1")

	myinfo := "/api/v1/account/myinfo"
	gate := func(token, required, logic string) int {
		status, _ := a.call(http.MethodGet, myinfo, token, nil,
			model.HeaderSystemCode, "crm",
			model.HeaderRequiredPermission, required,
			model.HeaderPermissionLogic, logic)
		return status
	}

	assert.Equal(t, http.StatusOK, gate(alice, "doc.read", ""))
	assert.Equal(t, http.StatusForbidden, gate(alice, "doc.write", ""))
	assert.Equal(t, http.StatusOK, gate(alice, "doc.read,doc.write", "OR"))
	assert.Equal(t, http.StatusForbidden, gate(alice, "doc.read,doc.write", "AND"))
	assert.Equal(t, http.StatusOK, gate(root, "doc.read,doc.write", "AND"))
	assert.Equal(t, http.StatusUnauthorized, gate("", "doc.read", ""))
	assert.Equal(t, http.StatusUnauthorized, gate("not-a-jwt", "doc.read", ""))

	// 普通用户不能调用管理接口
	status, _ = a.call(http.MethodPost, "/api/v1/account/systems/create", alice, model.CreateSystemRequest{SystemCode: "erp", SystemName: "ERP"})
	assert.Equal(t, http.StatusForbidden, status)

	// 删除角色后已签发的令牌立即失去权限，撤销删除后恢复
	status, _ = a.call(http.MethodDelete, "/api/v1/account/role/"+roleUUID+"/del", root, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, http.StatusForbidden, gate(alice, "doc.read", ""))
	status, _ = a.call(http.MethodDelete, "/api/v1/account/role/"+roleUUID+"/cancel-del", root, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, http.StatusOK, gate(alice, "doc.read", ""))

	// 注销后访问令牌不可用
	status, _ = a.call(http.MethodPost, "/api/v1/account/logout", alice, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, http.StatusUnauthorized, gate(alice, "doc.read", ""))

	result, err := a.audit.Reader.VerifyPartition("crm")
	require.NoError(t, err)
	assert.True(t, result.Valid)
	logs, _, err := a.audit.Reader.ReadLogs(audit.QueryParams{SystemCode: "crm", EventTypes: []audit.EventType{audit.EventAccessDecision}})
	require.NoError(t, err)
	assert.NotEmpty(t, logs)
}

func TestEditorScenarioEndToEnd(t *testing.T) {
	a := newApp(t)
	ctx := context.Background()

	account, password, _, err := a.services.SuperuserService.EnsureSuperuser(ctx)
	require.NoError(t, err)
	root := a.login(account, password)

	a.create("/api/v1/account/systems/create", root, model.CreateSystemRequest{SystemCode: "cms", SystemName: "CMS"})
	writeUUID := a.create("/api/v1/account/permission/create", root, model.CreatePermissionRequest{PermissionCode: "doc.write", PermissionName: "写"})
	a.create("/api/v1/account/permission/create", root, model.CreatePermissionRequest{PermissionCode: "doc.publish", PermissionName: "发布"})
	editorUUID := a.create("/api/v1/account/role/create", root, model.CreateRoleRequest{RoleName: "editor", SystemCode: "cms"})
	status, _ := a.call(http.MethodPut, "/api/v1/account/role/"+editorUUID+"/permissions", root, model.AssignRequest{UUIDs: []string{writeUUID}})
	require.Equal(t, http.StatusOK, status)

	status, resp := a.call(http.MethodPost, "/api/v1/account/register", "", model.RegisterRequest{Email: "u@example.com", Password: "secret1"})
	require.Equal(t, http.StatusCreated, status, resp)
	userUUID := data(resp)["user"].(map[string]interface{})["uuid"].(string)
	status, _ = a.call(http.MethodPut, "/api/v1/account/user/"+userUUID+"/roles", root, model.AssignRequest{UUIDs: []string{editorUUID}})
	require.Equal(t, http.StatusOK, status)
	user := a.login("u@example.com", "secret1")

	gate := func(token, logic string, required ...string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/account/myinfo", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set(model.HeaderSystemCode, "cms")
		for _, r := range required {
			req.Header.Add(model.HeaderRequiredPermission, r)
		}
		req.Header.Set(model.HeaderPermissionLogic, logic)
		w := httptest.NewRecorder()
		a.engine.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, gate(user, "OR", "doc.write,doc.publish"))
	assert.Equal(t, http.StatusForbidden, gate(user, "AND", "doc.write,doc.publish"))
	// 重复的请求头按逗号合并
	assert.Equal(t, http.StatusForbidden, gate(user, "AND", "doc.write", "doc.publish"))
	assert.Equal(t, http.StatusOK, gate(user, "OR", "doc.publish", "doc.write"))

	// 超级用户没有任何角色也直接放行
	status, resp = a.call(http.MethodGet, "/api/v1/account/myinfo", root, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, data(resp)["roles"])
	assert.Equal(t, true, data(resp)["is_super_admin"])
	assert.Equal(t, http.StatusOK, gate(root, "AND", "doc.write,doc.publish"))
	assert.Equal(t, http.StatusOK, gate(root, "AND", "doc.unknown"))

	// 管理员不能创建或授予superadmin角色
	adminUUID := a.create("/api/v1/account/role/create", root, model.CreateRoleRequest{RoleName: model.RoleAdmin, SystemCode: "cms"})
	superUUID := a.create("/api/v1/account/role/create", root, model.CreateRoleRequest{RoleName: model.RoleSuperAdmin, SystemCode: "cms"})
	status, _ = a.call(http.MethodPut, "/api/v1/account/user/"+userUUID+"/roles", root, model.AssignRequest{UUIDs: []string{editorUUID, adminUUID}})
	require.Equal(t, http.StatusOK, status)

	status, _ = a.call(http.MethodPost, "/api/v1/account/role/create", user, model.CreateRoleRequest{RoleName: model.RoleSuperAdmin, SystemCode: "cms"})
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = a.call(http.MethodPut, "/api/v1/account/user/"+userUUID+"/roles", user, model.AssignRequest{UUIDs: []string{editorUUID, adminUUID, superUUID}})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, http.StatusForbidden, gate(user, "AND", "doc.write,doc.publish"))

	status, _ = a.call(http.MethodPost, "/api/v1/account/role/create", user, model.CreateRoleRequest{RoleName: "reviewer", SystemCode: "cms"})
	assert.Equal(t, http.StatusCreated, status)
}

func TestHealthAndMetrics(t *testing.T) {
	a := newApp(t)

	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())

	w = httptest.NewRecorder()
	a.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pineapple_http_requests_total")
}
